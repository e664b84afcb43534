// AngelaMos | 2026
// entity.go

package reset

import (
	"time"
)

// Token is a stored password-reset capability. Only the SHA-256 of the
// opaque value handed to the member is kept.
type Token struct {
	ID        string     `db:"id"`
	UserID    string     `db:"user_id"`
	TokenHash string     `db:"token_hash"`
	ExpiresAt time.Time  `db:"expires_at"`
	Used      bool       `db:"used"`
	UsedAt    *time.Time `db:"used_at"`
	CreatedAt time.Time  `db:"created_at"`
}

func (t *Token) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// Redeemable is false once the token was used or its expiry has passed.
func (t *Token) Redeemable(now time.Time) bool {
	return !t.Used && !t.IsExpired(now)
}

func (t *Token) MarkUsed(now time.Time) {
	t.Used = true
	t.UsedAt = &now
}

// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

// Profile holds the member fields collected at registration and editable by
// administrators. Optional text fields are stored as empty strings.
type Profile struct {
	Name       string     `db:"name"`
	BirthDate  *time.Time `db:"birth_date"`
	Sex        string     `db:"sex"`
	NationalID string     `db:"national_id"`
	Phone      string     `db:"phone"`
	Address    string     `db:"address"`
	Address2   string     `db:"address2"`
	District   string     `db:"district"`
	City       string     `db:"city"`
	State      string     `db:"state"`
	PostalCode string     `db:"postal_code"`
	Country    string     `db:"country"`
}

type User struct {
	ID           string `db:"id"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
	Profile
	IsAdmin      bool      `db:"is_admin"`
	TokenVersion int       `db:"token_version"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Stats are the member counts shown on the admin dashboard.
type Stats struct {
	Total  int `db:"total"`
	Admins int `db:"admins"`
}

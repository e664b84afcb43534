// AngelaMos | 2026
// entity.go

package taxonomy

import (
	"time"
)

type Breed struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

// Color belongs to one breed. EMSCode is free text; it is not checked
// against the EMS vocabulary.
type Color struct {
	ID        string    `db:"id"`
	BreedID   string    `db:"breed_id"`
	Name      string    `db:"name"`
	EMSCode   string    `db:"ems_code"`
	CreatedAt time.Time `db:"created_at"`
}

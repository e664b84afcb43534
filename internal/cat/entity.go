// AngelaMos | 2026
// entity.go

package cat

import (
	"time"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal statuses are only left through an admin full edit.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

const (
	SexMale   = "Macho"
	SexFemale = "Fêmea"
)

const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// Parent is the sire or dam of a registered cat. Only the name is free
// text; breed and color point into the taxonomy.
type Parent struct {
	Name    string
	BreedID *string
	ColorID *string
}

type Cat struct {
	ID             string     `db:"id"`
	OwnerID        string     `db:"owner_id"`
	Name           string     `db:"name"`
	BirthDate      *time.Time `db:"birth_date"`
	Sex            string     `db:"sex"`
	Neutered       bool       `db:"neutered"`
	Microchip      string     `db:"microchip"`
	RegistryNumber string     `db:"registry_number"`
	RegistryEntity string     `db:"registry_entity"`
	BreederType    string     `db:"breeder_type"`
	BreederName    string     `db:"breeder_name"`
	BreedID        *string    `db:"breed_id"`
	ColorID        *string    `db:"color_id"`
	SireName       string     `db:"sire_name"`
	SireBreedID    *string    `db:"sire_breed_id"`
	SireColorID    *string    `db:"sire_color_id"`
	DamName        string     `db:"dam_name"`
	DamBreedID     *string    `db:"dam_breed_id"`
	DamColorID     *string    `db:"dam_color_id"`
	Status         Status     `db:"status"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

func (c *Cat) Sire() Parent {
	return Parent{Name: c.SireName, BreedID: c.SireBreedID, ColorID: c.SireColorID}
}

func (c *Cat) Dam() Parent {
	return Parent{Name: c.DamName, BreedID: c.DamBreedID, ColorID: c.DamColorID}
}

// References lists every taxonomy id the cat points at, breeds first.
func (c *Cat) References() (breeds, colors []string) {
	for _, id := range []*string{c.BreedID, c.SireBreedID, c.DamBreedID} {
		if id != nil {
			breeds = append(breeds, *id)
		}
	}
	for _, id := range []*string{c.ColorID, c.SireColorID, c.DamColorID} {
		if id != nil {
			colors = append(colors, *id)
		}
	}
	return breeds, colors
}

// BreedColor is one breed slot together with the color chosen for it.
type BreedColor struct {
	BreedID string
	ColorID string
}

// BreedColors lists the own, sire and dam slots where both a breed and a
// color are set. Each such color must belong to that breed.
func (c *Cat) BreedColors() []BreedColor {
	var pairs []BreedColor
	for _, slot := range [][2]*string{
		{c.BreedID, c.ColorID},
		{c.SireBreedID, c.SireColorID},
		{c.DamBreedID, c.DamColorID},
	} {
		if slot[0] != nil && slot[1] != nil {
			pairs = append(pairs, BreedColor{BreedID: *slot[0], ColorID: *slot[1]})
		}
	}
	return pairs
}

// View is a cat joined with the display names used by listings. Missing
// references render as empty strings.
type View struct {
	Cat
	OwnerName string `db:"owner_name"`
	BreedName string `db:"breed_name"`
	ColorName string `db:"color_name"`
	EMSCode   string `db:"ems_code"`
}

type Stats struct {
	Total    int `db:"total"    json:"total"`
	Pending  int `db:"pending"  json:"pending"`
	Approved int `db:"approved" json:"approved"`
	Rejected int `db:"rejected" json:"rejected"`
}

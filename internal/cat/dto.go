// AngelaMos | 2026
// dto.go

package cat

import (
	"strings"
	"time"

	"github.com/catclube/registry/internal/core"
	"github.com/catclube/registry/internal/query"
)

type ParentFields struct {
	Name    string `json:"name"     validate:"max=200"`
	BreedID string `json:"breed_id" validate:"omitempty,uuid"`
	ColorID string `json:"color_id" validate:"omitempty,uuid"`
}

// CatFields is the pedigree form shared by member creation and admin edits.
// Only the name is required.
type CatFields struct {
	Name           string       `json:"name"            validate:"required,max=200"`
	BirthDate      string       `json:"birth_date"      validate:"omitempty,datetime=2006-01-02"`
	Sex            string       `json:"sex"             validate:"omitempty,catsex"`
	Neutered       bool         `json:"neutered"`
	Microchip      string       `json:"microchip"       validate:"max=120"`
	RegistryNumber string       `json:"registry_number" validate:"max=120"`
	RegistryEntity string       `json:"registry_entity" validate:"max=120"`
	BreederType    string       `json:"breeder_type"    validate:"max=40"`
	BreederName    string       `json:"breeder_name"    validate:"max=200"`
	BreedID        string       `json:"breed_id"        validate:"omitempty,uuid"`
	ColorID        string       `json:"color_id"        validate:"omitempty,uuid"`
	Sire           ParentFields `json:"sire"`
	Dam            ParentFields `json:"dam"`
}

func (f *CatFields) normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Sex = strings.TrimSpace(f.Sex)
	f.Microchip = strings.TrimSpace(f.Microchip)
	f.RegistryNumber = strings.TrimSpace(f.RegistryNumber)
	f.RegistryEntity = strings.TrimSpace(f.RegistryEntity)
	f.BreederType = strings.TrimSpace(f.BreederType)
	f.BreederName = strings.TrimSpace(f.BreederName)
	f.Sire.Name = strings.TrimSpace(f.Sire.Name)
	f.Dam.Name = strings.TrimSpace(f.Dam.Name)
}

// apply copies the form onto c. Status, owner and timestamps are untouched.
func (f CatFields) apply(c *Cat) error {
	birth, err := core.ParseDate("birth_date", f.BirthDate)
	if err != nil {
		return err
	}

	c.Name = f.Name
	c.BirthDate = birth
	c.Sex = f.Sex
	c.Neutered = f.Neutered
	c.Microchip = f.Microchip
	c.RegistryNumber = f.RegistryNumber
	c.RegistryEntity = f.RegistryEntity
	c.BreederType = f.BreederType
	c.BreederName = f.BreederName
	c.BreedID = optionalID(f.BreedID)
	c.ColorID = optionalID(f.ColorID)
	c.SireName = f.Sire.Name
	c.SireBreedID = optionalID(f.Sire.BreedID)
	c.SireColorID = optionalID(f.Sire.ColorID)
	c.DamName = f.Dam.Name
	c.DamBreedID = optionalID(f.Dam.BreedID)
	c.DamColorID = optionalID(f.Dam.ColorID)

	return nil
}

type CreateCatRequest struct {
	CatFields
}

// UpdateCatRequest is the admin full overwrite, owner and status included.
type UpdateCatRequest struct {
	CatFields
	OwnerID string `json:"owner_id" validate:"required,uuid"`
	Status  string `json:"status"   validate:"required,catstatus"`
}

type ListCatsParams struct {
	query.Params
	Search  string
	Status  string
	BreedID string
	OwnerID string
}

type ParentResponse struct {
	Name    string `json:"name,omitempty"`
	BreedID string `json:"breed_id,omitempty"`
	ColorID string `json:"color_id,omitempty"`
}

type CatResponse struct {
	ID             string         `json:"id"`
	OwnerID        string         `json:"owner_id"`
	OwnerName      string         `json:"owner_name,omitempty"`
	Name           string         `json:"name"`
	BirthDate      string         `json:"birth_date,omitempty"`
	Sex            string         `json:"sex,omitempty"`
	Neutered       bool           `json:"neutered"`
	Microchip      string         `json:"microchip,omitempty"`
	RegistryNumber string         `json:"registry_number,omitempty"`
	RegistryEntity string         `json:"registry_entity,omitempty"`
	BreederType    string         `json:"breeder_type,omitempty"`
	BreederName    string         `json:"breeder_name,omitempty"`
	BreedID        string         `json:"breed_id,omitempty"`
	BreedName      string         `json:"breed_name,omitempty"`
	ColorID        string         `json:"color_id,omitempty"`
	ColorName      string         `json:"color_name,omitempty"`
	EMSCode        string         `json:"ems_code,omitempty"`
	Sire           ParentResponse `json:"sire"`
	Dam            ParentResponse `json:"dam"`
	Status         Status         `json:"status"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func ToCatResponse(c *Cat) CatResponse {
	return CatResponse{
		ID:             c.ID,
		OwnerID:        c.OwnerID,
		Name:           c.Name,
		BirthDate:      core.FormatDate(c.BirthDate),
		Sex:            c.Sex,
		Neutered:       c.Neutered,
		Microchip:      c.Microchip,
		RegistryNumber: c.RegistryNumber,
		RegistryEntity: c.RegistryEntity,
		BreederType:    c.BreederType,
		BreederName:    c.BreederName,
		BreedID:        deref(c.BreedID),
		ColorID:        deref(c.ColorID),
		Sire:           toParentResponse(c.Sire()),
		Dam:            toParentResponse(c.Dam()),
		Status:         c.Status,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func ToViewResponse(v *View) CatResponse {
	resp := ToCatResponse(&v.Cat)
	resp.OwnerName = v.OwnerName
	resp.BreedName = v.BreedName
	resp.ColorName = v.ColorName
	resp.EMSCode = v.EMSCode
	return resp
}

func ToViewResponseList(views []View) []CatResponse {
	out := make([]CatResponse, 0, len(views))
	for i := range views {
		out = append(out, ToViewResponse(&views[i]))
	}
	return out
}

func toParentResponse(p Parent) ParentResponse {
	return ParentResponse{
		Name:    p.Name,
		BreedID: deref(p.BreedID),
		ColorID: deref(p.ColorID),
	}
}

func optionalID(raw string) *string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	return &raw
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

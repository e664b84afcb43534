// AngelaMos | 2026
// dto.go

package user

import (
	"strings"
	"time"

	"github.com/catclube/registry/internal/core"
	"github.com/catclube/registry/internal/query"
)

// ProfileFields is the editable member profile as it appears on the wire.
type ProfileFields struct {
	Name       string `json:"name"        validate:"required,max=200"`
	BirthDate  string `json:"birth_date"  validate:"omitempty,datetime=2006-01-02"`
	Sex        string `json:"sex"         validate:"max=50"`
	NationalID string `json:"national_id" validate:"omitempty,cpf"`
	Phone      string `json:"phone"       validate:"max=50"`
	Address    string `json:"address"     validate:"max=255"`
	Address2   string `json:"address2"    validate:"max=255"`
	District   string `json:"district"    validate:"max=120"`
	City       string `json:"city"        validate:"max=120"`
	State      string `json:"state"       validate:"max=10"`
	PostalCode string `json:"postal_code" validate:"omitempty,cep"`
	Country    string `json:"country"     validate:"max=120"`
}

func (f *ProfileFields) normalize() {
	for _, field := range []*string{
		&f.Name, &f.BirthDate, &f.Sex, &f.NationalID, &f.Phone, &f.Address,
		&f.Address2, &f.District, &f.City, &f.State, &f.PostalCode, &f.Country,
	} {
		*field = strings.TrimSpace(*field)
	}
}

// ToProfile parses the birth date. Fields are expected to be normalized.
func (f ProfileFields) ToProfile() (Profile, error) {
	birth, err := core.ParseDate("birth_date", f.BirthDate)
	if err != nil {
		return Profile{}, err
	}

	return Profile{
		Name:       f.Name,
		BirthDate:  birth,
		Sex:        f.Sex,
		NationalID: f.NationalID,
		Phone:      f.Phone,
		Address:    f.Address,
		Address2:   f.Address2,
		District:   f.District,
		City:       f.City,
		State:      f.State,
		PostalCode: f.PostalCode,
		Country:    f.Country,
	}, nil
}

type UpdateUserRequest struct {
	Email string `json:"email" validate:"required,email,max=200"`
	ProfileFields
	IsAdmin bool `json:"is_admin"`
}

func (r *UpdateUserRequest) normalize() {
	r.Email = NormalizeEmail(r.Email)
	r.ProfileFields.normalize()
}

type PromoteRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type UserResponse struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	BirthDate  string    `json:"birth_date,omitempty"`
	Sex        string    `json:"sex,omitempty"`
	NationalID string    `json:"national_id,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	Address    string    `json:"address,omitempty"`
	Address2   string    `json:"address2,omitempty"`
	District   string    `json:"district,omitempty"`
	City       string    `json:"city,omitempty"`
	State      string    `json:"state,omitempty"`
	PostalCode string    `json:"postal_code,omitempty"`
	Country    string    `json:"country,omitempty"`
	IsAdmin    bool      `json:"is_admin"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type ListUsersParams struct {
	query.Params
	Search string
	Admin  *bool
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		BirthDate:  core.FormatDate(u.BirthDate),
		Sex:        u.Sex,
		NationalID: u.NationalID,
		Phone:      u.Phone,
		Address:    u.Address,
		Address2:   u.Address2,
		District:   u.District,
		City:       u.City,
		State:      u.State,
		PostalCode: u.PostalCode,
		Country:    u.Country,
		IsAdmin:    u.IsAdmin,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, ToUserResponse(&users[i]))
	}
	return responses
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

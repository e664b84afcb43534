// AngelaMos | 2026
// dto.go

package auth

import (
	"time"
)

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email,max=200"`
	Password string `json:"password" validate:"required,max=128"`
}

// RegisterRequest is the self-service membership form. National ID and
// postal code are optional but checked when present.
type RegisterRequest struct {
	Email           string `json:"email"            validate:"required,email,max=200"`
	Password        string `json:"password"         validate:"required,min=6,max=128"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	Name            string `json:"name"             validate:"required,max=200"`
	BirthDate       string `json:"birth_date"       validate:"omitempty,datetime=2006-01-02"`
	Sex             string `json:"sex"              validate:"max=50"`
	NationalID      string `json:"national_id"      validate:"omitempty,cpf"`
	Phone           string `json:"phone"            validate:"max=50"`
	Address         string `json:"address"          validate:"max=255"`
	Address2        string `json:"address2"         validate:"max=255"`
	District        string `json:"district"         validate:"max=120"`
	City            string `json:"city"             validate:"max=120"`
	State           string `json:"state"            validate:"max=10"`
	PostalCode      string `json:"postal_code"      validate:"omitempty,cep"`
	Country         string `json:"country"          validate:"max=120"`
}

type SessionResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresIn int       `json:"expires_in"`
	ExpiresAt time.Time `json:"expires_at"`
}

type UserResponse struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"is_admin"`
}

type AuthResponse struct {
	User    UserResponse    `json:"user"`
	Session SessionResponse `json:"session"`
}

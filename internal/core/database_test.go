// AngelaMos | 2026
// database_test.go

package core

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func pgError(code, constraint string) error {
	return fmt.Errorf("exec: %w", &pgconn.PgError{Code: code, ConstraintName: constraint})
}

func TestPgErrorClassifiers(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		unique     bool
		foreignKey bool
		malformed  bool
	}{
		{"unique violation", pgError("23505", "users_email_lower_idx"), true, false, false},
		{"foreign key violation", pgError("23503", "cats_owner_id_fkey"), false, true, false},
		{"invalid text representation", pgError("22P02", ""), false, false, true},
		{"check violation", pgError("23514", "cats_status_check"), false, false, false},
		{"not a postgres error", errors.New("connection reset"), false, false, false},
		{"nil", nil, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUniqueViolation(tt.err); got != tt.unique {
				t.Errorf("IsUniqueViolation() = %t, want %t", got, tt.unique)
			}
			if got := IsForeignKeyViolation(tt.err); got != tt.foreignKey {
				t.Errorf("IsForeignKeyViolation() = %t, want %t", got, tt.foreignKey)
			}
			if got := IsMalformedKey(tt.err); got != tt.malformed {
				t.Errorf("IsMalformedKey() = %t, want %t", got, tt.malformed)
			}
		})
	}
}

func TestConstraintName(t *testing.T) {
	if got := ConstraintName(pgError("23503", "cats_breed_color_fkey")); got != "cats_breed_color_fkey" {
		t.Errorf("ConstraintName() = %q", got)
	}
	if got := ConstraintName(errors.New("plain")); got != "" {
		t.Errorf("ConstraintName(plain) = %q", got)
	}
}

func TestToAppErrorStorageErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"translated duplicate", fmt.Errorf("create user: %w", ErrDuplicateKey), http.StatusConflict, "DUPLICATE"},
		{"raw unique violation", pgError("23505", "breeds_name_lower_idx"), http.StatusConflict, "DUPLICATE"},
		{"translated integrity", fmt.Errorf("delete breed: %w", ErrIntegrity), http.StatusConflict, "INTEGRITY_VIOLATION"},
		{"raw foreign key violation", pgError("23503", "cats_color_id_fkey"), http.StatusConflict, "INTEGRITY_VIOLATION"},
		{"malformed id", pgError("22P02", ""), http.StatusNotFound, "NOT_FOUND"},
		{"missing row", fmt.Errorf("get cat: %w", ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"validation", Invalid("name", "is required"), http.StatusBadRequest, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := ToAppError(tt.err)
			if appErr == nil {
				t.Fatal("ToAppError() = nil")
			}
			if appErr.StatusCode != tt.wantStatus || appErr.Code != tt.wantCode {
				t.Errorf("ToAppError() = %d %s, want %d %s",
					appErr.StatusCode, appErr.Code, tt.wantStatus, tt.wantCode)
			}
		})
	}

	if appErr := ToAppError(pgError("23514", "cats_status_check")); appErr != nil {
		t.Errorf("unclassified postgres error mapped to %s", appErr.Code)
	}
}

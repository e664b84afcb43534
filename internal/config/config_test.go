// AngelaMos | 2026
// config_test.go

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaultsWithMemoryDriver(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", StorageDriverMemory)
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("PORT", "9090")
	t.Setenv("RESET_TOKEN_TTL", "2h")

	c, err := load("")
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}

	if c.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", c.Server.Port)
	}
	if c.Reset.TokenTTL != 2*time.Hour {
		t.Errorf("Reset.TokenTTL = %v, want 2h", c.Reset.TokenTTL)
	}
	if c.Session.Expire != 12*time.Hour {
		t.Errorf("Session.Expire = %v, want 12h", c.Session.Expire)
	}
	if c.Mail.Driver != MailDriverLog {
		t.Errorf("Mail.Driver = %q, want log", c.Mail.Driver)
	}
	if !c.IsDevelopment() || c.IsProduction() {
		t.Errorf("environment flags wrong for %q", c.App.Environment)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "database:\n  driver: memory\nlog:\n  level: debug\nrate_limit:\n  requests: 7\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("LOG_LEVEL", "warn")

	c, err := load(path)
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}

	if c.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want env override", c.Log.Level)
	}
	if c.RateLimit.Requests != 7 {
		t.Errorf("RateLimit.Requests = %d, want 7 from file", c.RateLimit.Requests)
	}
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "postgres without url",
			env:     map[string]string{"DATABASE_DRIVER": StorageDriverPostgres, "DATABASE_URL": ""},
			wantErr: "DATABASE_URL",
		},
		{
			name:    "unknown driver",
			env:     map[string]string{"DATABASE_DRIVER": "sqlite"},
			wantErr: "unknown database driver",
		},
		{
			name: "memory in production",
			env: map[string]string{
				"DATABASE_DRIVER": StorageDriverMemory,
				"ENVIRONMENT":     "production",
			},
			wantErr: "memory storage",
		},
		{
			name: "smtp without host",
			env: map[string]string{
				"DATABASE_DRIVER": StorageDriverMemory,
				"MAIL_DRIVER":     MailDriverSMTP,
				"SMTP_HOST":       "",
			},
			wantErr: "SMTP_HOST",
		},
		{
			name: "relative reset url",
			env: map[string]string{
				"DATABASE_DRIVER": StorageDriverMemory,
				"APP_BASE_URL":    "club.example.com",
			},
			wantErr: "APP_BASE_URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := load("")
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("load() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	os.Setenv("DB_PASSWORD", "test_password")
	os.Setenv("JWT_SECRET_KEY", "this_is_a_test_secret_key_with_32_chars_minimum")
	defer func() {
		os.Unsetenv("DB_PASSWORD")
		os.Unsetenv("JWT_SECRET_KEY")
	}()

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.DBPassword != "test_password" {
		t.Errorf("DBPassword = %q, want %q", cfg.DBPassword, "test_password")
	}

	if cfg.DBHost != "localhost" {
		t.Errorf("DBHost = %q, want default %q", cfg.DBHost, "localhost")
	}

	if cfg.LeaderboardLimit != 100 {
		t.Errorf("LeaderboardLimit = %d, want default 100", cfg.LeaderboardLimit)
	}
}

func TestLoadConfig_MissingRequired(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
	}{
		{
			name: "Missing DB_PASSWORD",
			envVars: map[string]string{
				"JWT_SECRET_KEY": "this_is_a_test_secret_key_with_32_chars_minimum",
			},
		},
		{
			name: "Missing JWT_SECRET_KEY",
			envVars: map[string]string{
				"DB_PASSWORD": "password",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear all env vars
			os.Clearenv()

			// Set only the provided env vars
			for k, v := range tt.envVars {
				os.Setenv(k, v)
			}

			_, err := LoadConfig()
			if err == nil {
				t.Error("LoadConfig() expected error for missing required field, got nil")
			}
		})
	}
}

func TestValidate_JWTSecretTooShort(t *testing.T) {
	cfg := &Config{
		DBPassword:       "password",
		JWTSecret:        "short", // Less than 32 chars
		LeaderboardLimit: 100,
	}

	err := cfg.Validate()
	if err == nil {
		t.Error("Validate() expected error for short JWT secret, got nil")
	}
}

func TestValidateProductionSecurity(t *testing.T) {
	cfg := &Config{
		AppEnv:           "production",
		DBPassword:       "password",
		DBSSLMode:        "disable",
		JWTSecret:        "this_is_a_test_secret_key_with_32_chars_minimum",
		LeaderboardLimit: 100,
	}

	if err := cfg.ValidateProductionSecurity(); err == nil {
		t.Error("ValidateProductionSecurity() expected error for sslmode=disable, got nil")
	}

	cfg.DBSSLMode = "require"
	if err := cfg.ValidateProductionSecurity(); err != nil {
		t.Errorf("ValidateProductionSecurity() error = %v", err)
	}
}

func TestGetDSN(t *testing.T) {
	cfg := &Config{
		DBHost:     "db.internal",
		DBPort:     "5433",
		DBUser:     "portal",
		DBPassword: "secret",
		DBName:     "gameverse",
		DBSSLMode:  "require",
	}

	want := "host=db.internal port=5433 user=portal password=secret dbname=gameverse sslmode=require"
	if got := cfg.GetDSN(); got != want {
		t.Errorf("GetDSN() = %q, want %q", got, want)
	}
}

func TestDurationHelpers(t *testing.T) {
	cfg := &Config{
		SubmitLockTimeoutMS:      2500,
		ReconcileIntervalMinutes: 5,
	}

	if got := cfg.GetSubmitLockTimeout(); got != 2500*time.Millisecond {
		t.Errorf("GetSubmitLockTimeout() = %v, want 2.5s", got)
	}
	if got := cfg.GetReconcileInterval(); got != 5*time.Minute {
		t.Errorf("GetReconcileInterval() = %v, want 5m", got)
	}
}

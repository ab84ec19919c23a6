package ercaspay

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// ErrMissingAuthorization means no bearer token was found after loading the
// credential source. The gateway rejects every call without one, so this is
// fatal at construction time.
var ErrMissingAuthorization = errors.New("no Authorization token configured")

// Config is the explicit credential object a Client is built from. Loading
// it from a file is the collaborator's job (LoadConfig); nothing in the
// client reads process environment on its own.
type Config struct {
	// Token is the bearer token sent on every request.
	Token string
	// PublicKey is the optional PEM-encoded RSA key for card payloads.
	PublicKey string
	// BaseURL overrides DefaultBaseURL when set.
	BaseURL string
}

// LoadConfig reads a dotenv-style file and resolves the gateway credentials
// from it. The Authorization key is required; PUBLIC_KEY and
// ERCASPAY_BASE_URL are optional.
func LoadConfig(envFile string) (Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		return Config{}, fmt.Errorf("load env file %q: %w", envFile, err)
	}
	token := os.Getenv("Authorization")
	if token == "" {
		return Config{}, fmt.Errorf("%s: %w", envFile, ErrMissingAuthorization)
	}
	return Config{
		Token:     token,
		PublicKey: os.Getenv("PUBLIC_KEY"),
		BaseURL:   os.Getenv("ERCASPAY_BASE_URL"),
	}, nil
}

package config

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

// AuthConfig implements auth.Config
type AuthConfig struct {
	SigningKey      string   `env:"JWT_SECRET"`
	ExpirationHours int      `env:"JWT_EXPIRATION_HOURS" envDefault:"24"`
	Issuer          string   `env:"JWT_ISSUER" envDefault:"school-api"`
	Audience        []string `env:"JWT_AUDIENCE" envSeparator:"," envDefault:"school-web"`
	ContextKey      string   `env:"JWT_CONTEXT_KEY" envDefault:"user"`
	TokenLookup     string   `env:"JWT_TOKEN_LOOKUP" envDefault:"header:Authorization"`
	AuthScheme      string   `env:"JWT_AUTH_SCHEME" envDefault:"Bearer"`
	BcryptCost      int      `env:"BCRYPT_COST" envDefault:"10"`
}

func (a AuthConfig) GetSigningKey() string    { return a.SigningKey }
func (a AuthConfig) GetSigningMethod() string { return "HS256" }
func (a AuthConfig) GetContextKey() string    { return a.ContextKey }
func (a AuthConfig) GetTokenExpiration() int  { return a.ExpirationHours }
func (a AuthConfig) GetTokenLookup() string   { return a.TokenLookup }
func (a AuthConfig) GetAuthScheme() string    { return a.AuthScheme }
func (a AuthConfig) GetIssuer() string        { return a.Issuer }
func (a AuthConfig) GetAudience() []string    { return a.Audience }

func (a *AuthConfig) Sanitize() {
	a.SigningKey = strings.TrimSpace(a.SigningKey)
	if a.ExpirationHours < 1 {
		a.ExpirationHours = 24
	}
	if a.ContextKey == "" {
		a.ContextKey = "user"
	}
	if a.TokenLookup == "" {
		a.TokenLookup = "header:Authorization"
	}
	if a.AuthScheme == "" {
		a.AuthScheme = "Bearer"
	}

	audience := make([]string, 0, len(a.Audience))
	for _, aud := range a.Audience {
		if aud = strings.TrimSpace(aud); aud != "" {
			audience = append(audience, aud)
		}
	}
	a.Audience = audience

	a.BcryptCost = clampBcryptCost(a.BcryptCost)
}

func (a AuthConfig) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.SigningKey, validation.Required, validation.Length(16, 0)),
	)
}

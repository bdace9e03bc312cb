// internal/auth/user.go
//
// Account model and credential helpers.
// Responsibilities:
//   - User record shape shared by the store and the HTTP layer.
//   - bcrypt hashing/verification.
//   - Registration input rules (username, password strength, source, terms).

package auth

import (
	"strings"
	"time"
	"unicode"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid token")
)

// Registration sources accepted at signup.
const (
	SourceFriend        = "friend"
	SourceSocialMedia   = "social_media"
	SourceAdvertisement = "advertisement"
)

// User is an account able to own games.
type User struct {
	ID                 string    `json:"id"`
	Username           string    `json:"username"`
	PasswordHash       string    `json:"-"`
	RegistrationSource string    `json:"registration_source"`
	HasPlayed          bool      `json:"has_played"`
	AcceptTerms        bool      `json:"accept_terms"`
	CreatedAt          time.Time `json:"created_at"`
}

// RegisterInput is the signup payload.
type RegisterInput struct {
	Username             string `json:"username" validate:"required,min=5,max=255"`
	Password             string `json:"password" validate:"required,min=8,password"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
	RegistrationSource   string `json:"registration_source" validate:"required,oneof=friend social_media advertisement"`
	HasPlayed            *bool  `json:"has_played" validate:"required"`
	AcceptTerms          bool   `json:"accept_terms" validate:"required"`
}

// Normalize trims the username so the length rules see what gets stored.
func (in *RegisterInput) Normalize() { in.Username = NormalizeUsername(in.Username) }

// LoginInput is the login payload.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// NormalizeUsername trims whitespace; adjust here for stricter rules.
func NormalizeUsername(u string) string {
	return strings.TrimSpace(u)
}

// NewValidator returns a validator with the "password" rule registered:
// at least one lowercase letter, one uppercase letter and one digit.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	})
	return v
}

// StrongPassword reports whether pw mixes lower case, upper case and digits.
func StrongPassword(pw string) bool {
	var lower, upper, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return lower && upper && digit
}

// HashPassword bcrypt-hashes pw with the default cost.
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(b), nil
}

// CheckPassword is a bcrypt verifier.
func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

package services

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/kingstonroots/yaadstory/internal/models"
)

// AuthStore abstracts the persistence operations required by AuthService.
type AuthStore interface {
	FindUserByUsername(username string) (*models.User, error)
	CreateUser(u *models.User) (*models.User, error)
}

// TokenSigner issues a signed bearer token for the given user.
type TokenSigner func(u *models.User, ttl time.Duration) (string, error)

type AuthService struct {
	store     AuthStore
	now       func() time.Time
	signToken TokenSigner
	tokenTTL  time.Duration
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

func NewAuthService(store AuthStore, signer TokenSigner) *AuthService {
	return &AuthService{
		store:     store,
		now:       func() time.Time { return time.Now().UTC() },
		signToken: signer,
		tokenTTL:  24 * time.Hour,
	}
}

// Register creates a new user account with the default role. The plaintext
// password is hashed before it reaches the store and is never persisted.
func (s *AuthService) Register(username, password, confirmPassword, name string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, NewInvalidError("username and password are required")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if password != confirmPassword {
		return nil, NewInvalidError("passwords do not match")
	}
	existing, err := s.store.FindUserByUsername(username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, NewConflictError("username already taken")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user, err := s.store.CreateUser(&models.User{
		Username:     username,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(name),
		Role:         models.RoleUser,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return nil, err
	}
	token, err := s.signToken(user, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

// Login verifies credentials and issues a fresh token. Unknown usernames and
// wrong passwords produce the same error so the response does not reveal
// which accounts exist.
func (s *AuthService) Login(username, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, NewInvalidError("username and password are required")
	}
	u, err := s.store.FindUserByUsername(username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, NewUnauthorizedError("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, NewUnauthorizedError("invalid credentials")
	}
	token, err := s.signToken(u, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: u, Token: token}, nil
}

func (s *AuthService) TokenTTL() time.Duration { return s.tokenTTL }

// validatePassword enforces the registration password policy: at least eight
// characters with an upper-case letter, a lower-case letter, and a digit.
func validatePassword(pw string) error {
	if len(pw) < 8 {
		return NewInvalidError("password must be at least 8 characters")
	}
	var upper, lower, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return NewInvalidError("password must contain upper and lower case letters and a digit")
	}
	return nil
}

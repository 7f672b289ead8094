package services

import (
	"testing"
	"time"

	"github.com/kingstonroots/yaadstory/internal/models"
)

type authStubStore struct {
	users  map[string]*models.User
	nextID int64
}

func newAuthStubStore() *authStubStore {
	return &authStubStore{users: map[string]*models.User{}, nextID: 1}
}

func (s *authStubStore) FindUserByUsername(username string) (*models.User, error) {
	if u, ok := s.users[username]; ok {
		copy := *u
		return &copy, nil
	}
	return nil, nil
}

func (s *authStubStore) CreateUser(u *models.User) (*models.User, error) {
	if _, ok := s.users[u.Username]; ok {
		return nil, NewConflictError("username already taken")
	}
	copy := *u
	copy.ID = s.nextID
	s.nextID++
	s.users[u.Username] = &copy
	return &copy, nil
}

func stubSigner(u *models.User, ttl time.Duration) (string, error) {
	return "token:" + u.Username, nil
}

func TestAuthRegisterAndLogin(t *testing.T) {
	store := newAuthStubStore()
	svc := NewAuthService(store, stubSigner)
	svc.now = func() time.Time { return time.Unix(0, 0) }

	res, err := svc.Register("lisa", "Secret123", "Secret123", "Lisa")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if res.User.ID == 0 || res.User.Username != "lisa" || res.User.Role != models.RoleUser {
		t.Fatalf("unexpected user in result: %+v", res.User)
	}
	if res.Token != "token:lisa" {
		t.Fatalf("unexpected token %q", res.Token)
	}
	if res.User.PasswordHash == "Secret123" {
		t.Fatalf("plaintext password stored as hash")
	}

	if _, err := svc.Register("lisa", "Secret123", "Secret123", "Lisa"); err == nil {
		t.Fatalf("expected conflict error on duplicate registration")
	} else if se, ok := AsServiceError(err); !ok || se.Code != ErrorConflict {
		t.Fatalf("expected conflict code, got %v", err)
	}

	loginRes, err := svc.Login("lisa", "Secret123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if loginRes.Token == "" {
		t.Fatalf("expected token in login response")
	}

	if _, err := svc.Login("lisa", "wrong"); err == nil {
		t.Fatalf("expected error for wrong password")
	} else if se, ok := AsServiceError(err); !ok || se.Code != ErrorUnauthorized {
		t.Fatalf("expected unauthorized code, got %v", err)
	}
	if _, err := svc.Login("missing", "Secret123"); err == nil {
		t.Fatalf("expected error for missing user")
	}
}

func TestAuthPasswordPolicy(t *testing.T) {
	store := newAuthStubStore()
	svc := NewAuthService(store, stubSigner)

	cases := []struct {
		name     string
		password string
		confirm  string
	}{
		{"too short", "Ab1", "Ab1"},
		{"no upper", "secret123", "secret123"},
		{"no lower", "SECRET123", "SECRET123"},
		{"no digit", "SecretPass", "SecretPass"},
		{"confirm mismatch", "Secret123", "Secret124"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register("user_"+tc.name, tc.password, tc.confirm, "")
			if err == nil {
				t.Fatalf("expected validation error")
			}
			se, ok := AsServiceError(err)
			if !ok || se.Code != ErrorInvalid {
				t.Fatalf("expected invalid code, got %v", err)
			}
		})
	}

	if _, err := svc.Login("", ""); err == nil {
		t.Fatalf("expected validation error on empty login")
	}
}

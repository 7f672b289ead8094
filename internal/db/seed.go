package db

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/kingstonroots/yaadstory/internal/models"
)

// SeedAdmin creates the admin account on first startup when credentials are
// configured and the username is not taken. Credentials come from the
// deployment environment; nothing is seeded without them.
func SeedAdmin(store *SQLiteStore, username, password, name string, log *zap.Logger) error {
	if username == "" || password == "" {
		log.Info("admin seed skipped: no credentials configured")
		return nil
	}
	existing, err := store.FindUserByUsername(username)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if existing != nil {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if _, err := store.CreateUser(&models.User{
		Username:     username,
		PasswordHash: string(hash),
		Name:         name,
		Role:         models.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	log.Info("seeded admin account", zap.String("username", username))
	return nil
}

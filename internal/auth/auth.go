// Package auth is the admin gate: one fixed, config-supplied credential pair
// guarding every mutating operation. A successful login persists an admin
// session record; anything unreadable or absent means anonymous.
package auth

import (
	"context"
	"crypto/subtle"
	"encoding/json"

	"bitstorm/internal/config"
	"bitstorm/internal/constants"
	"bitstorm/internal/domain"
	"bitstorm/internal/store"

	"github.com/rs/zerolog"
)

type Gate struct {
	store    *store.Store
	logger   zerolog.Logger
	username string
	password string
	email    string
}

func NewGate(cfg *config.Config, st *store.Store, logger zerolog.Logger) *Gate {
	return &Gate{
		store:    st,
		logger:   logger,
		username: cfg.AdminUsername,
		password: cfg.AdminPassword,
		email:    cfg.AdminEmail,
	}
}

// Login reports whether the pair matches the configured credential exactly.
// On success the session record is persisted; a mismatch is a normal false,
// never an error.
func (g *Gate) Login(ctx context.Context, username, password string) (bool, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(g.username))
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(g.password))
	if userOK&passOK != 1 {
		return false, nil
	}

	user := domain.AdminUser{
		ID:       "admin_1",
		Username: g.username,
		Email:    g.email,
		Role:     "admin",
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return false, err
	}
	if err := g.store.Set(ctx, constants.StoreKeyAdminAuth, string(raw)); err != nil {
		return false, err
	}

	g.logger.Info().Str("username", user.Username).Msg("admin logged in")
	return true, nil
}

// Logout clears the session record.
func (g *Gate) Logout(ctx context.Context) error {
	return g.store.Delete(ctx, constants.StoreKeyAdminAuth)
}

// IsAuthenticated reports whether a readable admin session record exists.
// Parse failures and store errors both read as anonymous.
func (g *Gate) IsAuthenticated(ctx context.Context) bool {
	return g.CurrentUser(ctx) != nil
}

// CurrentUser returns the session record when authenticated, else nil.
func (g *Gate) CurrentUser(ctx context.Context) *domain.AdminUser {
	raw, found, err := g.store.Get(ctx, constants.StoreKeyAdminAuth)
	if err != nil {
		g.logger.Warn().Err(err).Msg("failed to read admin session record")
		return nil
	}
	if !found {
		return nil
	}

	var user domain.AdminUser
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil
	}
	if user.Role != "admin" {
		return nil
	}
	return &user
}

// Package auth covers registration, login and the token/hashing
// capabilities behind them. Login failures are reported uniformly so the
// response never reveals whether the username exists.
package auth

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"chirp/apperr"
	"chirp/models"
	"chirp/store"
)

const minPasswordLen = 6

type Accounts struct {
	store  store.Store
	tokens TokenIssuer
	hasher PasswordHasher
	log    *slog.Logger
}

func NewAccounts(st store.Store, tokens TokenIssuer, hasher PasswordHasher, log *slog.Logger) *Accounts {
	if log == nil {
		log = slog.Default()
	}
	return &Accounts{store: st, tokens: tokens, hasher: hasher, log: log}
}

// Register creates a user and returns a signed token. Usernames are unique
// and immutable after creation.
func (a *Accounts) Register(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", apperr.New(apperr.Validation, "username cannot be empty")
	}
	if len(password) < minPasswordLen {
		return "", apperr.Newf(apperr.Validation, "password must be at least %d characters", minPasswordLen)
	}

	hash, err := a.hasher.Hash(password)
	if err != nil {
		return "", err
	}
	user := &models.User{
		ID:           store.NewID(),
		Username:     username,
		PasswordHash: hash,
		PostIDs:      []string{},
		CommentIDs:   []string{},
		LikedPostIDs: []string{},
		FollowerIDs:  []string{},
		FollowingIDs: []string{},
		CreatedAt:    time.Now().UnixMilli(),
	}
	if err := a.store.InsertUser(ctx, user); err != nil {
		return "", err
	}
	a.log.Info("user registered", "username", username)
	return a.tokens.Issue(user.ID)
}

// Login verifies credentials and returns a signed token.
func (a *Accounts) Login(ctx context.Context, username, password string) (string, error) {
	user, err := a.store.UserByUsername(ctx, username)
	if apperr.Is(err, apperr.NotFound) {
		return "", apperr.New(apperr.Unauthenticated, "invalid username or password")
	}
	if err != nil {
		return "", err
	}
	if err := a.hasher.Compare(user.PasswordHash, password); err != nil {
		return "", err
	}
	return a.tokens.Issue(user.ID)
}

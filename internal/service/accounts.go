package service

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/robalobadob/battleship/internal/auth"
	"github.com/robalobadob/battleship/internal/store"
)

// Accounts registers and authenticates users. Input is expected to be
// validated already.
type Accounts struct {
	store store.Store
	now   func() time.Time
}

func NewAccounts(st store.Store) *Accounts {
	return &Accounts{store: st, now: time.Now}
}

// Register creates a user. store.ErrUsernameTaken is returned as is.
func (a *Accounts) Register(ctx context.Context, in auth.RegisterInput) (*auth.User, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &auth.User{
		ID:                 uuid.NewString(),
		Username:           auth.NormalizeUsername(in.Username),
		PasswordHash:       hash,
		RegistrationSource: in.RegistrationSource,
		AcceptTerms:        in.AcceptTerms,
		CreatedAt:          a.now().UTC(),
	}
	if in.HasPlayed != nil {
		u.HasPlayed = *in.HasPlayed
	}
	if err := a.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrUsernameTaken) {
			return nil, err
		}
		return nil, errors.Wrap(err, "create user")
	}
	zerolog.Ctx(ctx).Info().Str("user", u.ID).Str("source", u.RegistrationSource).Msg("user registered")
	return u, nil
}

// Authenticate checks username and password. Unknown users and wrong
// passwords both give auth.ErrInvalidCredentials.
func (a *Accounts) Authenticate(ctx context.Context, username, password string) (*auth.User, error) {
	u, err := a.store.FindUserByUsername(ctx, auth.NormalizeUsername(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, auth.ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, "find user")
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, auth.ErrInvalidCredentials
	}
	return u, nil
}

// User loads an account by id.
func (a *Accounts) User(ctx context.Context, id string) (*auth.User, error) {
	u, err := a.store.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.Wrapf(store.ErrNotFound, "user %s", id)
		}
		return nil, errors.Wrap(err, "find user")
	}
	return u, nil
}

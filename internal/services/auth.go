package services

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"warga/internal/core"
	"warga/internal/log"
	"warga/internal/storage"
)

// Credential is one static login.
type Credential struct {
	Username string
	Password string
	Role     core.Role
}

type account struct {
	username string
	hash     []byte
	role     core.Role
}

// Auth checks static credentials and keeps the logged-in user in State.
// Passwords are only held as bcrypt hashes.
type Auth struct {
	state    *State
	accounts []account
}

// NewAuth hashes the given credentials. cost 0 uses bcrypt.DefaultCost.
func NewAuth(state *State, cost int, creds ...Credential) (*Auth, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	a := &Auth{state: state}
	for _, c := range creds {
		if !c.Role.Valid() {
			return nil, fmt.Errorf("credential %s: invalid role %q", c.Username, c.Role)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(c.Password), cost)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", c.Username, err)
		}
		a.accounts = append(a.accounts, account{username: c.Username, hash: hash, role: c.Role})
	}
	return a, nil
}

// Verify checks a username and password without changing the session.
// Usernames match case-insensitively.
func (a *Auth) Verify(username, password string) (core.User, error) {
	username = strings.TrimSpace(username)
	for _, acc := range a.accounts {
		if !strings.EqualFold(acc.username, username) {
			continue
		}
		if bcrypt.CompareHashAndPassword(acc.hash, []byte(password)) != nil {
			break
		}
		return core.User{Username: acc.username, Role: acc.role}, nil
	}
	return core.User{}, core.ErrInvalidCredentials
}

// Login verifies the credentials and persists the user as the current
// session.
func (a *Auth) Login(ctx context.Context, username, password string) (core.User, error) {
	u, err := a.Verify(username, password)
	if err != nil {
		a.state.logger.WithComponent(log.ComponentAuth).WarnContext(ctx, "Login failed", log.FieldUser, username)
		return core.User{}, err
	}
	err = a.state.mutate(ctx, storage.KeyUser, func() (any, func(), error) {
		prev := a.state.user
		a.state.user = &u
		return u, func() { a.state.user = prev }, nil
	})
	if err != nil {
		return core.User{}, err
	}
	a.state.logger.WithComponent(log.ComponentAuth).InfoContext(ctx, "Login succeeded", log.FieldUser, u.Username, log.FieldRole, string(u.Role))
	return u, nil
}

// Logout clears the persisted session.
func (a *Auth) Logout(ctx context.Context) error {
	return a.state.mutate(ctx, storage.KeyUser, func() (any, func(), error) {
		prev := a.state.user
		a.state.user = nil
		var none *core.User
		return none, func() { a.state.user = prev }, nil
	})
}

// Current returns the persisted session user, or ErrUnauthenticated.
func (a *Auth) Current() (core.User, error) {
	u := a.state.User()
	if u == nil {
		return core.User{}, core.ErrUnauthenticated
	}
	return *u, nil
}

// Require returns the session user when it holds one of roles.
func (a *Auth) Require(roles ...core.Role) (core.User, error) {
	u, err := a.Current()
	if err != nil {
		return core.User{}, err
	}
	if !u.Allows(roles...) {
		return core.User{}, core.ErrForbidden
	}
	return u, nil
}

// Package session supplies the identity of the current user to the catalog
// engine. The engine asks for the user on every operation, so a provider may
// change its answer over time (sign in, sign out).
package session

import (
	"context"
	"sync"
)

// User identifies the signed in user.
type User struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// Provider returns the current user, or false when nobody is signed in.
type Provider interface {
	CurrentUser(ctx context.Context) (User, bool)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) (User, bool)

// CurrentUser implements Provider.
func (f ProviderFunc) CurrentUser(ctx context.Context) (User, bool) {
	return f(ctx)
}

// Static always returns the same user. An empty id means signed out.
func Static(id string) Provider {
	return ProviderFunc(func(context.Context) (User, bool) {
		if id == "" {
			return User{}, false
		}
		return User{ID: id}, true
	})
}

// Anonymous never has a user.
func Anonymous() Provider {
	return Static("")
}

// Switchable is a Provider whose user can be changed at runtime.
type Switchable struct {
	mu   sync.RWMutex
	user *User
}

var _ Provider = (*Switchable)(nil)

// NewSwitchable creates a signed out provider.
func NewSwitchable() *Switchable {
	return &Switchable{}
}

// SignIn sets the current user.
func (s *Switchable) SignIn(user User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &user
}

// SignOut clears the current user.
func (s *Switchable) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
}

// CurrentUser implements Provider.
func (s *Switchable) CurrentUser(context.Context) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil || s.user.ID == "" {
		return User{}, false
	}
	return *s.user, true
}

type userKey struct{}

// WithUser stores user in ctx for FromContext.
func WithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// FromContext is a Provider reading the user stored by WithUser.
func FromContext() Provider {
	return ProviderFunc(func(ctx context.Context) (User, bool) {
		user, ok := ctx.Value(userKey{}).(User)
		if !ok || user.ID == "" {
			return User{}, false
		}
		return user, true
	})
}

// Package session carries the authenticated platform session through API
// calls and automation steps. The pipeline only consumes sessions; how a
// credential is obtained belongs to the provider behind the Provider
// contract.
package session

import (
	"context"
	"errors"
	"sync"
)

// ErrNoSession indicates the provider has no usable credential.
var ErrNoSession = errors.New("no authenticated session available")

// Session is one authenticated platform credential. It is a plain value:
// every API call and automation step receives the session it should use
// instead of reading shared mutable state.
type Session struct {
	// Account identifies the platform account the credential belongs to.
	// Reauthentication serializes per account.
	Account string

	// Cookie is the platform session cookie value.
	Cookie string

	// CSRFToken accompanies write API calls when the platform demands it.
	CSRFToken string
}

// Valid reports whether the session carries a usable credential.
func (s Session) Valid() bool {
	return s.Cookie != ""
}

// Provider supplies sessions. Implementations live outside this module;
// the pipeline calls Current before a run and Refresh when the platform
// rejects the credential mid-run.
type Provider interface {
	// Current returns the present credential without side effects.
	Current(ctx context.Context) (Session, error)

	// Refresh forces a new credential and returns it.
	Refresh(ctx context.Context) (Session, error)
}

// StaticProvider wraps a fixed session, for callers that already hold a
// valid credential (e.g. a cookie from the environment). Refresh cannot
// mint a new one and returns the same session.
type StaticProvider struct {
	Session Session
}

func (p StaticProvider) Current(context.Context) (Session, error) {
	if !p.Session.Valid() {
		return Session{}, ErrNoSession
	}
	return p.Session, nil
}

func (p StaticProvider) Refresh(ctx context.Context) (Session, error) {
	return p.Current(ctx)
}

// Serialized wraps a Provider so that concurrent refreshes for the same
// account take turns. Two browser sessions sharing one account must never
// reauthenticate at the same time: concurrent logins invalidate each
// other's session state.
type Serialized struct {
	inner Provider

	mu       sync.Mutex
	accounts map[string]*sync.Mutex
}

// Serialize wraps a provider with per-account refresh locking.
func Serialize(inner Provider) *Serialized {
	return &Serialized{inner: inner, accounts: make(map[string]*sync.Mutex)}
}

func (s *Serialized) Current(ctx context.Context) (Session, error) {
	return s.inner.Current(ctx)
}

func (s *Serialized) Refresh(ctx context.Context) (Session, error) {
	cur, err := s.inner.Current(ctx)
	if err != nil && !errors.Is(err, ErrNoSession) {
		return Session{}, err
	}

	lock := s.accountLock(cur.Account)
	lock.Lock()
	defer lock.Unlock()

	return s.inner.Refresh(ctx)
}

func (s *Serialized) accountLock(account string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.accounts[account]
	if !ok {
		lock = &sync.Mutex{}
		s.accounts[account] = lock
	}
	return lock
}

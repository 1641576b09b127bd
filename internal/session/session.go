package session

import (
	"context"
	"errors"
	"log"
	"sync"

	"gameghor/internal/apperr"
	"gameghor/internal/models"
)

// Authenticator exchanges credentials for an identity.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (models.Identity, error)
	Register(ctx context.Context, name, email, password string) (models.Identity, error)
}

// Session owns the current identity. It is the only writer; every other
// component reads the identity through Current or a subscription.
type Session struct {
	auth  Authenticator
	store Store

	mu       sync.RWMutex
	identity models.Identity

	subMu   sync.Mutex
	subs    map[int]func(models.Identity)
	nextSub int
}

// New restores the persisted identity from store. A store that cannot be
// read leaves the session anonymous.
func New(ctx context.Context, auth Authenticator, store Store) *Session {
	identity, err := store.Load(ctx)
	if err != nil {
		log.Printf("Warning: could not restore session: %v", err)
		identity = models.Anonymous()
	}
	return &Session{
		auth:     auth,
		store:    store,
		identity: identity,
		subs:     make(map[int]func(models.Identity)),
	}
}

// Current returns the signed-in identity, or the anonymous identity.
func (s *Session) Current() models.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// Token returns the bearer token of the current identity, empty when
// anonymous.
func (s *Session) Token() string {
	return s.Current().Token
}

// Login replaces the current identity on success. On failure the current
// identity is left as it was. Rejected input is reported as an auth failure.
func (s *Session) Login(ctx context.Context, email, password string) (models.Identity, error) {
	identity, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return models.Identity{}, asAuthError(err)
	}
	s.set(ctx, identity)
	return identity, nil
}

// Register creates an account and signs it in. Rejected input is reported
// as an auth failure with the service's message.
func (s *Session) Register(ctx context.Context, name, email, password string) (models.Identity, error) {
	identity, err := s.auth.Register(ctx, name, email, password)
	if err != nil {
		return models.Identity{}, asAuthError(err)
	}
	s.set(ctx, identity)
	return identity, nil
}

// Logout clears the identity. It always succeeds.
func (s *Session) Logout(ctx context.Context) {
	s.set(ctx, models.Anonymous())
}

// Invalidate signs out when err shows the token was rejected. It reports
// whether the session was cleared.
func (s *Session) Invalidate(ctx context.Context, err error) bool {
	if !errors.Is(err, apperr.ErrAuth) || s.Current().IsAnonymous() {
		return false
	}
	log.Printf("Session token rejected, signing out: %v", err)
	s.set(ctx, models.Anonymous())
	return true
}

// Subscribe registers fn to be called with every new identity. The returned
// function removes the subscription.
func (s *Session) Subscribe(fn func(models.Identity)) (cancel func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Session) set(ctx context.Context, identity models.Identity) {
	s.mu.Lock()
	s.identity = identity
	s.mu.Unlock()

	var err error
	if identity.IsAnonymous() {
		err = s.store.Clear(ctx)
	} else {
		err = s.store.Save(ctx, identity)
	}
	if err != nil {
		log.Printf("Warning: could not persist session: %v", err)
	}

	s.subMu.Lock()
	subs := make([]func(models.Identity), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(identity)
	}
}

// asAuthError keeps the service's detail but reports a validation failure
// as an auth failure.
func asAuthError(err error) error {
	if appErr, ok := apperr.As(err); ok && appErr.Kind == apperr.KindValidation {
		return &apperr.Error{Kind: apperr.KindAuth, Detail: appErr.Detail, Err: err}
	}
	return err
}

// Package session caches the caller's session id locally and reconciles it
// with the identity service before anything acts on the caller's behalf.
package session

import (
	"context"
	"fmt"
	"log"
	"strings"

	"campusbite/backend"
	"campusbite/models"
	"campusbite/retry"
)

// SessionKey is the local store key holding the cached session id.
const SessionKey = "sessionId"

// ProfileResolver maps an account to its profile document.
type ProfileResolver interface {
	GetProfile(ctx context.Context, accountID string) (*models.User, error)
}

// Active is a remotely validated session and the profile that owns it.
type Active struct {
	Session   *backend.Session
	AccountID string
	UserID    string // profile id
	Profile   *models.User
}

type Store struct {
	kv       KV
	auth     backend.Auth
	profiles ProfileResolver
	retry    retry.Options
}

func NewStore(kv KV, auth backend.Auth, profiles ProfileResolver, opts retry.Options) *Store {
	return &Store{kv: kv, auth: auth, profiles: profiles, retry: opts}
}

// Save caches a session id. It does not touch remote state.
func (s *Store) Save(token string) error {
	return s.kv.Set(SessionKey, token)
}

// Load returns the cached session id, or "" when there is none.
func (s *Store) Load() (string, error) {
	token, ok, err := s.kv.Get(SessionKey)
	if err != nil || !ok {
		return "", err
	}
	return token, nil
}

// Clear drops the cached session id.
func (s *Store) Clear() error {
	return s.kv.Delete(SessionKey)
}

// Current validates the cached session remotely. A session the identity
// service rejects is dropped from the cache and Current returns nil.
func (s *Store) Current(ctx context.Context) (*Active, error) {
	token, err := s.Load()
	if err != nil || token == "" {
		return nil, err
	}

	sess, err := s.auth.Resume(ctx, token)
	if err != nil {
		if backend.IsUnauthorized(err) || backend.IsNotFound(err) {
			log.Printf("WARN stored session invalid, clearing: %v", err)
			s.clearQuietly()
			return nil, nil
		}
		return nil, err
	}
	return s.resolve(ctx, sess)
}

// Restore is Current, falling back to the session the identity service
// retained on its own. A recovered ambient session is cached again.
func (s *Store) Restore(ctx context.Context) (*Active, error) {
	active, err := s.Current(ctx)
	if err != nil || active != nil {
		return active, err
	}

	sess, err := s.auth.CurrentSession(ctx)
	if err != nil {
		if backend.IsUnauthorized(err) || backend.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	active, err = s.resolve(ctx, sess)
	if err != nil {
		return nil, err
	}
	if err := s.Save(sess.ID); err != nil {
		return nil, err
	}
	log.Printf("Restored ambient session for user %s", active.UserID)
	return active, nil
}

// EnsureActive returns the caller's validated session. When expectedUserID
// is set the session must belong to that profile; on mismatch the cache is
// cleared and the caller has to log in again.
func (s *Store) EnsureActive(ctx context.Context, expectedUserID string) (*Active, error) {
	active, err := s.Restore(ctx)
	if err != nil {
		if backend.IsNotFound(err) {
			return nil, &Error{Reason: "user profile not found, please log in again", Err: err}
		}
		return nil, err
	}
	if active == nil {
		return nil, &Error{Reason: "no session found, please log in to continue"}
	}
	if expectedUserID != "" && active.UserID != expectedUserID {
		log.Printf("Session user %s does not match required user %s", active.UserID, expectedUserID)
		s.clearQuietly()
		return nil, &Error{Reason: "session does not belong to the requested user, please log in with the correct account"}
	}
	return active, nil
}

// EnsureRole is EnsureActive for a profile with the given role.
func (s *Store) EnsureRole(ctx context.Context, role models.UserRole) (*Active, error) {
	active, err := s.EnsureActive(ctx, "")
	if err != nil {
		return nil, err
	}
	if active.Profile.Role != role {
		return nil, &Error{Reason: fmt.Sprintf("this action requires a %s account, signed in as %s", role, active.Profile.Role)}
	}
	return active, nil
}

// Login returns a session for email. A valid cached session of the same
// account is reused; otherwise a new one is created, retrying on rate
// limits. The profile must exist or the fresh session is deleted again.
func (s *Store) Login(ctx context.Context, email, password string) (*Active, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, &Error{Reason: "email and password are required"}
	}
	log.Printf("Attempting login for %s", email)

	if active, err := s.Current(ctx); err != nil {
		log.Printf("WARN existing session unusable, clearing: %v", err)
		s.clearQuietly()
	} else if active != nil {
		if strings.EqualFold(active.Profile.Email, email) {
			log.Printf("Using existing session for user %s", active.UserID)
			return active, nil
		}
		log.Printf("Existing session belongs to another account, deleting it")
		_ = s.auth.DeleteSession(ctx, active.Session.ID)
		s.clearQuietly()
	}

	create := func(ctx context.Context) (*backend.Session, error) {
		return s.auth.CreateSession(ctx, email, password)
	}
	sess, err := retry.Do(ctx, s.retry, create)
	if backend.IsSessionActive(err) {
		if active := s.reuseAmbient(ctx, email); active != nil {
			return active, nil
		}
		log.Printf("Deleting stale active session")
		_ = s.auth.DeleteSession(ctx, backend.CurrentSessionID)
		s.clearQuietly()
		sess, err = retry.Do(ctx, s.retry, create)
	}
	if err != nil {
		if backend.IsUnauthorized(err) {
			return nil, &Error{Reason: "invalid credentials", Err: err}
		}
		return nil, err
	}

	active, err := s.resolve(ctx, sess)
	if err != nil {
		_ = s.auth.DeleteSession(ctx, sess.ID)
		return nil, err
	}
	if err := s.Save(sess.ID); err != nil {
		return nil, err
	}
	log.Printf("Login successful for user %s (%s)", active.UserID, active.Profile.Role)
	return active, nil
}

// Logout deletes the remote session and clears the cache.
func (s *Store) Logout(ctx context.Context) error {
	token, err := s.Load()
	if err != nil {
		return err
	}
	if token == "" {
		token = backend.CurrentSessionID
	}
	if err := s.auth.DeleteSession(ctx, token); err != nil && !backend.IsUnauthorized(err) && !backend.IsNotFound(err) {
		return err
	}
	log.Printf("Logged out")
	return s.Clear()
}

func (s *Store) reuseAmbient(ctx context.Context, email string) *Active {
	sess, err := s.auth.CurrentSession(ctx)
	if err != nil {
		return nil
	}
	active, err := s.resolve(ctx, sess)
	if err != nil || !strings.EqualFold(active.Profile.Email, email) {
		return nil
	}
	if err := s.Save(sess.ID); err != nil {
		return nil
	}
	log.Printf("Reused active session for user %s", active.UserID)
	return active
}

func (s *Store) resolve(ctx context.Context, sess *backend.Session) (*Active, error) {
	profile, err := s.profiles.GetProfile(ctx, sess.UserID)
	if err != nil {
		if backend.IsNotFound(err) {
			s.clearQuietly()
		}
		return nil, err
	}
	return &Active{
		Session:   sess,
		AccountID: sess.UserID,
		UserID:    profile.ID,
		Profile:   profile,
	}, nil
}

func (s *Store) clearQuietly() {
	if err := s.Clear(); err != nil {
		log.Printf("WARN failed to clear cached session: %v", err)
	}
}

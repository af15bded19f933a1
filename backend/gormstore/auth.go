package gormstore

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"campusbite/backend"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ulule/limiter/v3"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type accountRecord struct {
	ID           string `gorm:"primaryKey;size:36"`
	Email        string `gorm:"uniqueIndex;not null"`
	Name         string
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (accountRecord) TableName() string { return "accounts" }

type sessionRecord struct {
	ID        string `gorm:"primaryKey;size:36"`
	AccountID string `gorm:"index;not null"`
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (sessionRecord) TableName() string { return "sessions" }

// sessionClaims carries the session record id (jti) and account id (sub).
type sessionClaims struct {
	jwt.RegisteredClaims
}

// Auth is one caller's handle on the identity service. It remembers the
// session it created last, like a device keeping its session cookie.
type Auth struct {
	db      *gorm.DB
	secret  []byte
	ttl     time.Duration
	limiter *limiter.Limiter

	mu      sync.Mutex
	current string
}

// NewAuth returns a handle with no current session.
func (s *Store) NewAuth() *Auth {
	return &Auth{db: s.DB, secret: s.secret, ttl: s.ttl, limiter: s.limiter}
}

func (a *Auth) CreateAccount(ctx context.Context, email, password, name string) (*backend.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, &backend.Error{Code: http.StatusBadRequest, Type: "general_argument_invalid", Message: "Invalid email"}
	}
	if len(password) < 8 {
		return nil, &backend.Error{Code: http.StatusBadRequest, Type: "general_argument_invalid", Message: "Password must be at least 8 characters"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	rec := accountRecord{
		ID:           backend.NewID(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
	}
	if err := a.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &backend.Error{Code: http.StatusConflict, Type: "user_already_exists", Message: "Email already registered"}
		}
		return nil, err
	}
	return &backend.Account{ID: rec.ID, Email: rec.Email, Name: rec.Name, CreatedAt: rec.CreatedAt}, nil
}

func (a *Auth) CreateSession(ctx context.Context, email, password string) (*backend.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if a.limiter != nil {
		res, err := a.limiter.Get(ctx, email)
		if err != nil {
			return nil, err
		}
		if res.Reached {
			return nil, backend.RateLimited("Rate limit for the current endpoint has been exceeded")
		}
	}
	if cur, err := a.CurrentSession(ctx); err == nil && cur != nil {
		return nil, backend.ErrSessionActive
	}

	var acc accountRecord
	if err := a.db.WithContext(ctx).Where("email = ?", email).First(&acc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, backend.Unauthorized("Invalid credentials. Please check the email and password.")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return nil, backend.Unauthorized("Invalid credentials. Please check the email and password.")
	}

	now := time.Now()
	rec := sessionRecord{ID: backend.NewID(), AccountID: acc.ID, ExpiresAt: now.Add(a.ttl)}
	if err := a.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, err
	}
	token, err := a.sign(rec, now)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.current = token
	a.mu.Unlock()
	return &backend.Session{ID: token, UserID: acc.ID, ExpiresAt: rec.ExpiresAt, Current: true}, nil
}

func (a *Auth) GetSession(ctx context.Context, id string) (*backend.Session, error) {
	token := a.resolve(id)
	if token == "" {
		return nil, backend.Unauthorized("No session found")
	}
	claims, err := a.parse(token)
	if err != nil {
		return nil, backend.Unauthorized("Session is invalid or expired")
	}

	var rec sessionRecord
	if err := a.db.WithContext(ctx).First(&rec, "id = ?", claims.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, backend.Unauthorized("Session has been deleted")
		}
		return nil, err
	}
	if time.Now().After(rec.ExpiresAt) {
		return nil, backend.Unauthorized("Session is invalid or expired")
	}

	a.mu.Lock()
	isCurrent := token == a.current
	a.mu.Unlock()
	return &backend.Session{ID: token, UserID: rec.AccountID, ExpiresAt: rec.ExpiresAt, Current: isCurrent}, nil
}

func (a *Auth) Resume(ctx context.Context, id string) (*backend.Session, error) {
	if id == backend.CurrentSessionID {
		return a.CurrentSession(ctx)
	}
	sess, err := a.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	a.current = id
	a.mu.Unlock()
	sess.Current = true
	return sess, nil
}

func (a *Auth) CurrentSession(ctx context.Context) (*backend.Session, error) {
	return a.GetSession(ctx, backend.CurrentSessionID)
}

func (a *Auth) DeleteSession(ctx context.Context, id string) error {
	token := a.resolve(id)
	if token == "" {
		return backend.Unauthorized("No session found")
	}

	a.mu.Lock()
	if token == a.current {
		a.current = ""
	}
	a.mu.Unlock()

	claims, err := a.parse(token)
	if err != nil {
		return backend.Unauthorized("Session is invalid or expired")
	}
	return a.db.WithContext(ctx).Delete(&sessionRecord{}, "id = ?", claims.ID).Error
}

func (a *Auth) UpdateName(ctx context.Context, name string) error {
	sess, err := a.CurrentSession(ctx)
	if err != nil {
		return err
	}
	return a.db.WithContext(ctx).Model(&accountRecord{}).
		Where("id = ?", sess.UserID).
		Update("name", name).Error
}

func (a *Auth) resolve(id string) string {
	if id != backend.CurrentSessionID {
		return id
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

func (a *Auth) sign(rec sessionRecord, now time.Time) (string, error) {
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        rec.ID,
			Subject:   rec.AccountID,
			ExpiresAt: jwt.NewNumericDate(rec.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

func (a *Auth) parse(tokenStr string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	return claims, nil
}

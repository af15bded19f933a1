// Package apptest holds fixtures shared by package tests: a throwaway
// SQLite store, disk-backed files and tiny valid images.
package apptest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"campusbite/app"
	"campusbite/backend"
	"campusbite/backend/gormstore"
	"campusbite/catalog"
	"campusbite/models"
	"campusbite/profile"
	"campusbite/retry"
	"campusbite/session"

	"github.com/stretchr/testify/require"
)

// PNG is the smallest file that sniffs as image/png.
var PNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4,
	0x89,
}

// GIF sniffs as image/gif.
var GIF = []byte("GIF89a\x01\x00\x01\x00\x80\x00\x00\xff\xff\xff\x00\x00\x00!\xf9\x04\x01\x00\x00\x00\x00,\x00\x00\x00\x00\x01\x00\x01\x00\x00\x02\x02D\x01\x00;")

const (
	Secret   = "test-secret"
	Bucket   = "images"
	Endpoint = "http://localhost:8080/v1"
	Project  = "campusbite-test"
)

type StoreOption func(*gormstore.Options)

// WithLoginLimit caps logins per email per window.
func WithLoginLimit(limit int, window time.Duration) StoreOption {
	return func(o *gormstore.Options) {
		o.LoginLimit = limit
		o.LoginWindow = window
	}
}

// NewStore opens a fresh database under t.TempDir and closes it on cleanup.
func NewStore(t *testing.T, opts ...StoreOption) *gormstore.Store {
	t.Helper()
	o := gormstore.Options{
		Path:       filepath.Join(t.TempDir(), "campusbite.db"),
		JWTSecret:  []byte(Secret),
		SessionTTL: time.Hour,
	}
	for _, opt := range opts {
		opt(&o)
	}
	store, err := gormstore.Open(o)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// NewFiles returns disk file storage under t.TempDir.
func NewFiles(t *testing.T) *gormstore.DiskFiles {
	t.Helper()
	files, err := gormstore.NewDiskFiles(t.TempDir(), Bucket, Endpoint, Project)
	require.NoError(t, err)
	return files
}

// NewClient returns a client with its own session handle over store.
func NewClient(t *testing.T, store *gormstore.Store) *backend.Client {
	t.Helper()
	return store.Client(NewFiles(t))
}

// Password is the password of every registered fixture user.
const Password = "password123"

// FastRetry keeps rate-limit retries short in tests.
var FastRetry = retry.Options{MaxRetries: 2, BaseDelay: time.Millisecond}

// NewApp returns an application with its own session handle and local
// store, like one device, over a shared store.
func NewApp(t *testing.T, store *gormstore.Store) *app.App {
	t.Helper()
	return app.New(NewClient(t, store), session.NewMemoryKV(), app.Options{
		Retry:      FastRetry,
		AvatarBase: Endpoint,
	})
}

// Email is the fixture address of username.
func Email(username string) string {
	return username + "@campus.edu"
}

// Register signs up username with role through a.
func Register(t *testing.T, a *app.App, username string, role models.UserRole) *models.User {
	t.Helper()
	user, err := a.Profiles.Register(context.Background(), profile.RegisterInput{
		Email:    Email(username),
		Password: Password,
		Username: username,
		Role:     role,
	})
	require.NoError(t, err)
	return user
}

// Login signs username in on a.
func Login(t *testing.T, a *app.App, username string) *session.Active {
	t.Helper()
	active, err := a.Sessions.Login(context.Background(), Email(username), Password)
	require.NoError(t, err)
	return active
}

// SignedIn registers username on a fresh device and signs it in there.
func SignedIn(t *testing.T, store *gormstore.Store, username string, role models.UserRole) (*app.App, *models.User) {
	t.Helper()
	a := NewApp(t, store)
	user := Register(t, a, username, role)
	Login(t, a, username)
	return a, user
}

// PostFood posts a food item as the manager signed in on a.
func PostFood(t *testing.T, a *app.App, name string, price float64) *models.FoodItem {
	t.Helper()
	item, err := a.Catalog.PostFood(context.Background(), catalog.FoodInput{
		Name:        name,
		Description: name + " with injera",
		Price:       price,
		Category:    "lunch",
		ImageName:   name + ".png",
		Image:       PNG,
	})
	require.NoError(t, err)
	return item
}

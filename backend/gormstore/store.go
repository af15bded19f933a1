// Package gormstore is the embedded backend driver: accounts, sessions,
// documents and files kept in a local SQLite database and directory.
package gormstore

import (
	"errors"
	"fmt"
	"log"
	"time"

	"campusbite/backend"
	"campusbite/models"

	"github.com/glebarez/sqlite"
	"github.com/ulule/limiter/v3"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Options struct {
	Path        string
	JWTSecret   []byte
	SessionTTL  time.Duration
	LoginLimit  int // session creations per email per window, 0 disables
	LoginWindow time.Duration
}

type Store struct {
	DB      *gorm.DB
	secret  []byte
	ttl     time.Duration
	limiter *limiter.Limiter
}

// Open connects to the database and migrates every table.
func Open(opts Options) (*Store, error) {
	if len(opts.JWTSecret) == 0 {
		return nil, errors.New("gormstore: JWT secret is required")
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * 24 * time.Hour
	}
	if opts.LoginWindow <= 0 {
		opts.LoginWindow = time.Hour
	}

	db, err := gorm.Open(sqlite.Open(opts.Path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	// SQLite serializes writers; one connection avoids "database is locked".
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}

	err = db.AutoMigrate(
		&accountRecord{},
		&sessionRecord{},
		&models.User{},
		&models.Restaurant{},
		&models.FoodItem{},
		&models.Order{},
		&models.OrderStatusHistory{},
		&models.Delivery{},
		&models.Notification{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Printf("✅ Database %s connected and migrated", opts.Path)

	return &Store{
		DB:      db,
		secret:  opts.JWTSecret,
		ttl:     opts.SessionTTL,
		limiter: newLoginLimiter(opts.LoginLimit, opts.LoginWindow),
	}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Client returns a backend client over the store. Each client has its own
// Auth handle, so its current session is independent of other clients.
func (s *Store) Client(files backend.Files) *backend.Client {
	return &backend.Client{
		Auth:          s.NewAuth(),
		Users:         &UserRepository{db: s.DB},
		Restaurants:   &RestaurantRepository{db: s.DB},
		Foods:         &FoodRepository{db: s.DB},
		Orders:        &OrderRepository{db: s.DB},
		Deliveries:    &DeliveryRepository{db: s.DB},
		Notifications: &NotificationRepository{db: s.DB},
		Files:         files,
	}
}

// translate maps gorm errors to backend errors.
func translate(err error, what, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return backend.NotFound("%s %s not found", what, id)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return backend.Conflict("%s %s already exists", what, id)
	default:
		return fmt.Errorf("%s %s: %w", what, id, err)
	}
}

func limitOrDefault(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return limit
}

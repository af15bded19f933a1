package cmd

import (
	"context"
	"fmt"
	"log"

	"campusbite/app"
	"campusbite/backend"
	"campusbite/backend/appwrite"
	"campusbite/backend/gormstore"
	"campusbite/backend/s3files"
	"campusbite/config"
	"campusbite/notify"
	"campusbite/session"
)

// runtime holds what every command shares: a way to build backend clients,
// the file storage and the notification stream.
type runtime struct {
	cfg       *config.Config
	store     *gormstore.Store     // sqlite driver only
	diskFiles *gormstore.DiskFiles // disk file storage only
	files     backend.Files        // nil keeps the backend's own storage
	publisher notify.Publisher
}

func openRuntime(ctx context.Context, cfg *config.Config) (*runtime, error) {
	rt := &runtime{cfg: cfg}

	switch cfg.Files.Driver {
	case "s3":
		files, err := s3files.New(ctx, cfg.S3.Region, cfg.S3.Bucket, cfg.S3.Endpoint, cfg.S3.PublicURL)
		if err != nil {
			return nil, err
		}
		rt.files = files
	case "disk":
		if cfg.Backend.Driver == "sqlite" {
			files, err := gormstore.NewDiskFiles(cfg.Files.Dir, cfg.Files.Bucket, cfg.Files.PublicEndpoint, "campusbite")
			if err != nil {
				return nil, err
			}
			rt.diskFiles = files
			rt.files = files
		}
	}

	if cfg.Backend.Driver == "appwrite" {
		if _, err := appwrite.New(cfg.AppwriteClientConfig()); err != nil {
			return nil, err
		}
	} else {
		store, err := gormstore.Open(gormstore.Options{
			Path:        cfg.SQLite.Path,
			JWTSecret:   []byte(cfg.Auth.JWTSecret),
			SessionTTL:  cfg.Auth.SessionTTL,
			LoginLimit:  cfg.Auth.LoginLimit,
			LoginWindow: cfg.Auth.LoginWindow,
		})
		if err != nil {
			return nil, err
		}
		rt.store = store
	}

	if cfg.Kafka.Enabled {
		pub, err := notify.NewSaramaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("failed to connect to kafka: %w", err)
		}
		rt.publisher = pub
	}
	return rt, nil
}

// client returns a backend client with its own session state.
func (rt *runtime) client() (*backend.Client, error) {
	if rt.store != nil {
		return rt.store.Client(rt.files), nil
	}
	c, err := appwrite.New(rt.cfg.AppwriteClientConfig())
	if err != nil {
		return nil, err
	}
	client := c.Backend()
	if rt.files != nil {
		client.Files = rt.files
	}
	return client, nil
}

// newApp builds an application over kv with a fresh backend client.
func (rt *runtime) newApp(kv session.KV) (*app.App, error) {
	client, err := rt.client()
	if err != nil {
		return nil, err
	}
	return app.New(client, kv, app.Options{
		Retry:      rt.cfg.RetryOptions(),
		AvatarBase: rt.cfg.Files.PublicEndpoint,
		Publisher:  rt.publisher,
	}), nil
}

// deviceApp is the application of this machine, its session kept in the
// local file.
func (rt *runtime) deviceApp() (*app.App, error) {
	return rt.newApp(session.NewFileKV(rt.cfg.Local.Path))
}

func (rt *runtime) Close() {
	if rt.publisher != nil {
		if err := rt.publisher.Close(); err != nil {
			log.Printf("WARN closing publisher: %v", err)
		}
	}
	if rt.store != nil {
		if err := rt.store.Close(); err != nil {
			log.Printf("WARN closing database: %v", err)
		}
	}
}

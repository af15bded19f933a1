// Package app wires a backend client, the local store and the services into
// one application, the way a device runs them for one signed-in user.
package app

import (
	"campusbite/backend"
	"campusbite/catalog"
	"campusbite/notify"
	"campusbite/profile"
	"campusbite/retry"
	"campusbite/session"
	"campusbite/workflow"
)

type Options struct {
	Retry      retry.Options
	AvatarBase string
	Publisher  notify.Publisher // nil publishes nothing
}

type App struct {
	Client   *backend.Client
	KV       session.KV
	Resolver *profile.Resolver
	Sessions *session.Store
	Profiles *profile.Service
	Catalog  *catalog.Catalog
	Notifier *notify.Notifier
	Workflow *workflow.Service
}

func New(client *backend.Client, kv session.KV, opts Options) *App {
	resolver := profile.NewResolver(client.Users)
	sessions := session.NewStore(kv, client.Auth, resolver, opts.Retry)
	profiles := profile.NewService(client, resolver, sessions, opts.AvatarBase)
	cat := catalog.New(client, sessions, resolver)
	profiles.SetRestaurantProvisioner(cat)
	notifier := notify.New(client.Notifications, opts.Publisher)

	return &App{
		Client:   client,
		KV:       kv,
		Resolver: resolver,
		Sessions: sessions,
		Profiles: profiles,
		Catalog:  cat,
		Notifier: notifier,
		Workflow: workflow.New(client, sessions, cat, notifier),
	}
}

// Package storefront assembles the marketplace client SDK: one transport
// client, one notification bus, one durable storage backend, an identity
// slice per actor kind, and a cached resource store per domain. Everything
// hangs off an explicit App value owned by the embedding program; nothing in
// this module is a package-level singleton.
package storefront

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/vendora/storefront-go/config"
	"github.com/vendora/storefront-go/domain"
	"github.com/vendora/storefront-go/identity"
	"github.com/vendora/storefront-go/media"
	"github.com/vendora/storefront-go/notify"
	"github.com/vendora/storefront-go/pkg/logger"
	"github.com/vendora/storefront-go/storage"
	"github.com/vendora/storefront-go/store"
	"github.com/vendora/storefront-go/transport"
)

// App is the application root. Construct one per process (or one per test)
// with New and share it by reference.
type App struct {
	Config *config.Config
	Log    zerolog.Logger
	Bus    *notify.Bus

	API     *transport.Client
	Media   *media.Uploader
	Storage storage.Store

	// Identity slices, one per actor kind.
	Users       *identity.Store
	Sellers     *identity.Store
	Instructors *identity.Store
	Providers   *identity.Store

	// Domain resource stores.
	Events        *store.Events
	Products      *store.Products
	Shops         *store.Shops
	Orders        *store.Orders
	Services      *store.Services
	Venues        *store.Venues
	Coupons       *store.Coupons
	Inbox         *store.Notifications
	Conversations *store.Conversations
	Analytics     *store.Analytics
}

// New wires the full store graph from configuration.
//
// Every resource store is bound to the identity slice owning its dashboard,
// so any action that observes a 401 invalidates that actor's session. The
// original pages did this inconsistently per call site; here the convention
// is uniform: seller dashboards own events, products, coupons, and
// analytics; provider dashboards own services and venues; the end-user owns
// orders, the inbox, and conversations.
func New(ctx context.Context, cfg *config.Config) *App {
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	bus := notify.NewBus()
	kv := storage.Open(ctx, cfg.Storage, log)

	api := transport.New(transport.Config{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.HTTPTimeout,
		Log:     log,
	})
	mediaClient := transport.New(transport.Config{
		BaseURL: cfg.MediaUploadURL,
		Timeout: cfg.HTTPTimeout,
		Log:     log,
	})
	uploader := media.New(mediaClient, log)

	app := &App{
		Config:  cfg,
		Log:     log,
		Bus:     bus,
		API:     api,
		Media:   uploader,
		Storage: kv,
	}

	app.Users = identity.New(domain.ActorUser, api, bus, kv, uploader, log)
	app.Sellers = identity.New(domain.ActorSeller, api, bus, kv, uploader, log)
	app.Instructors = identity.New(domain.ActorInstructor, api, bus, kv, uploader, log)
	app.Providers = identity.New(domain.ActorServiceProvider, api, bus, kv, uploader, log)

	app.Events = store.NewEvents(api, bus, log, app.Sellers.Invalidate)
	app.Products = store.NewProducts(api, bus, log, app.Sellers.Invalidate)
	app.Coupons = store.NewCoupons(api, bus, log, app.Sellers.Invalidate)
	app.Analytics = store.NewAnalytics(api, bus, log, app.Sellers.Invalidate)
	app.Services = store.NewServices(api, bus, log, app.Providers.Invalidate)
	app.Venues = store.NewVenues(api, bus, log, app.Providers.Invalidate)
	app.Orders = store.NewOrders(api, bus, log, app.Users.Invalidate)
	app.Inbox = store.NewNotifications(api, bus, log, app.Users.Invalidate)
	app.Conversations = store.NewConversations(api, bus, log, app.Users.Invalidate)
	app.Shops = store.NewShops(api, bus, log)

	return app
}

// Identity returns the slice for an actor kind.
func (a *App) Identity(kind domain.ActorKind) *identity.Store {
	switch kind {
	case domain.ActorSeller:
		return a.Sellers
	case domain.ActorInstructor:
		return a.Instructors
	case domain.ActorServiceProvider:
		return a.Providers
	default:
		return a.Users
	}
}

// Guard builds a fresh dashboard reconciler for an actor kind. Dashboards
// create one per page mount and Reset it on navigation.
func (a *App) Guard(kind domain.ActorKind) *identity.Reconciler {
	return identity.NewReconciler(a.Identity(kind), a.Config.GraceTimer)
}

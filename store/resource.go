// Package store implements the asynchronous resource-store pattern: one
// client-side cache slice per domain entity type, with loading/error flags,
// pagination, and CRUD actions that call the marketplace API and surface
// outcomes on the notification side-channel.
//
// Every action follows the same state machine:
//
//	Idle -> Loading -> {Success, Failure} -> Idle
//
// List and item fetches are tagged with a monotonically increasing sequence
// number; a completion that lost the race to a newer request is discarded so
// the cache always reflects the latest-issued fetch, not the last-resolved
// one.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vendora/storefront-go/domain"
	"github.com/vendora/storefront-go/metrics"
	"github.com/vendora/storefront-go/notify"
	"github.com/vendora/storefront-go/transport"
	"github.com/vendora/storefront-go/validate"
)

// Entity is any server-owned resource keyed by a server-assigned identifier.
type Entity interface {
	EntityID() string
}

// Options parameterizes a Resource.
type Options struct {
	// Name is the plural resource name ("events"), used in list paths,
	// metrics labels, and log fields.
	Name string
	// Singular is the singular form ("event"), used in item paths and
	// notification messages.
	Singular string
	// BasePath is the API prefix for the resource ("/event").
	BasePath string
	// OnUnauthorized, when set, runs every time an action observes a 401 so
	// the owning identity slice can invalidate itself.
	OnUnauthorized func()
}

// Snapshot is a point-in-time copy of a store's observable state, safe to
// bind UI to.
type Snapshot[T Entity] struct {
	Items   []T
	Item    *T
	Loading bool
	Err     string
	Page    domain.Page
}

// Resource is the generic cached store for one entity type. All methods are
// safe for concurrent use; the cache is a partial, possibly-stale view of
// server state.
type Resource[T Entity] struct {
	opts   Options
	client *transport.Client
	bus    *notify.Bus
	log    zerolog.Logger

	mu      sync.Mutex
	items   []T
	item    *T
	pending int
	errMsg  string
	page    domain.Page

	listSeq     uint64
	listApplied uint64
	itemSeq     uint64
	itemApplied uint64
	lastSig     string
}

// New builds a Resource. Stores are plain values owned by the application
// root, never package-level singletons.
func New[T Entity](client *transport.Client, bus *notify.Bus, log zerolog.Logger, opts Options) *Resource[T] {
	return &Resource[T]{
		opts:   opts,
		client: client,
		bus:    bus,
		log:    log.With().Str("store", opts.Name).Logger(),
	}
}

// Snapshot returns a copy of the store's current observable state.
func (r *Resource[T]) Snapshot() Snapshot[T] {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := make([]T, len(r.items))
	copy(items, r.items)

	var item *T
	if r.item != nil {
		clone := *r.item
		item = &clone
	}

	return Snapshot[T]{
		Items:   items,
		Item:    item,
		Loading: r.pending > 0,
		Err:     r.errMsg,
		Page:    r.page,
	}
}

// listEnvelope mirrors the API's list response shape.
type listEnvelope[T any] struct {
	Data       []T         `json:"data"`
	Pagination domain.Page `json:"pagination"`
}

// itemEnvelope mirrors the API's single-resource response shape.
type itemEnvelope[T any] struct {
	Data T `json:"data"`
}

// FetchList replaces the cached page with the requested one. Changing the
// limit or any filter since the previous fetch resets the page to 1.
func (r *Resource[T]) FetchList(ctx context.Context, token string, q Query) ([]T, domain.Page, error) {
	q = q.normalized()

	r.mu.Lock()
	if sig := q.signature(); sig != r.lastSig {
		q.Page = 1
		r.lastSig = sig
	}
	r.listSeq++
	seq := r.listSeq
	r.mu.Unlock()

	finish := r.begin("fetch_list")

	var env listEnvelope[T]
	err := r.client.Get(ctx, r.listPath()+"?"+q.encode(), token, &env)

	r.mu.Lock()
	stale := seq <= r.listApplied
	if !stale && err == nil {
		r.listApplied = seq
		r.items = env.Data
		r.page = env.Pagination
	}
	r.mu.Unlock()

	if stale {
		metrics.StaleResponsesTotal.WithLabelValues(r.opts.Name).Inc()
		r.log.Debug().Uint64("seq", seq).Msg("stale list response discarded")
		finish(nil, false)
		return nil, domain.Page{}, nil
	}

	finish(err, false)
	if err != nil {
		return nil, domain.Page{}, err
	}
	return env.Data, env.Pagination, nil
}

// FetchOne loads a single resource into the item slot.
func (r *Resource[T]) FetchOne(ctx context.Context, token, id string) (T, error) {
	var zero T

	r.mu.Lock()
	r.itemSeq++
	seq := r.itemSeq
	r.mu.Unlock()

	finish := r.begin("fetch_one")

	var env itemEnvelope[T]
	err := r.client.Get(ctx, r.itemPath("get", id), token, &env)

	r.mu.Lock()
	stale := seq <= r.itemApplied
	if !stale && err == nil {
		r.itemApplied = seq
		item := env.Data
		r.item = &item
	}
	r.mu.Unlock()

	if stale {
		metrics.StaleResponsesTotal.WithLabelValues(r.opts.Name).Inc()
		finish(nil, false)
		return zero, nil
	}

	finish(err, false)
	if err != nil {
		return zero, err
	}
	return env.Data, nil
}

// Create validates the input client-side, then creates the resource and
// appends it to the cache. Validation failures never touch the network and
// never raise the loading flag.
func (r *Resource[T]) Create(ctx context.Context, token string, input any) (T, error) {
	var zero T
	if err := validate.Struct(input); err != nil {
		return zero, err
	}

	finish := r.begin("create")

	var env itemEnvelope[T]
	err := r.client.Post(ctx, r.createPath(), token, input, &env)
	if err == nil {
		r.mu.Lock()
		r.items = append(r.items, env.Data)
		r.page.Total++
		r.mu.Unlock()
	}

	finish(err, true)
	if err != nil {
		return zero, err
	}
	return env.Data, nil
}

// Update validates the patch, applies it server-side, and patches the cached
// element in place by ID.
func (r *Resource[T]) Update(ctx context.Context, token, id string, patch any) (T, error) {
	var zero T
	if err := validate.Struct(patch); err != nil {
		return zero, err
	}

	finish := r.begin("update")

	var env itemEnvelope[T]
	err := r.client.Put(ctx, r.itemPath("update", id), token, patch, &env)
	if err == nil {
		r.mu.Lock()
		for i := range r.items {
			if r.items[i].EntityID() == id {
				r.items[i] = env.Data
				break
			}
		}
		if r.item != nil && (*r.item).EntityID() == id {
			item := env.Data
			r.item = &item
		}
		r.mu.Unlock()
	}

	finish(err, true)
	if err != nil {
		return zero, err
	}
	return env.Data, nil
}

// Delete removes the resource server-side and filters it out of the cache.
func (r *Resource[T]) Delete(ctx context.Context, token, id string) error {
	finish := r.begin("delete")

	err := r.client.Delete(ctx, r.itemPath("delete", id), token, nil)
	if err == nil {
		r.mu.Lock()
		kept := r.items[:0]
		for _, it := range r.items {
			if it.EntityID() != id {
				kept = append(kept, it)
			}
		}
		r.items = kept
		if r.page.Total > 0 {
			r.page.Total--
		}
		if r.item != nil && (*r.item).EntityID() == id {
			r.item = nil
		}
		r.mu.Unlock()
	}

	finish(err, true)
	return err
}

// begin raises the loading flag and clears the previous error. The returned
// finish lowers the flag, records the terminal outcome, and emits the
// notification the action class calls for: mutations toast on success and
// failure, background fetches on failure only. A cancelled context resolves
// silently.
func (r *Resource[T]) begin(action string) func(err error, mutation bool) {
	start := time.Now()

	r.mu.Lock()
	r.pending++
	r.errMsg = ""
	r.mu.Unlock()

	return func(err error, mutation bool) {
		result := "success"
		display := ""
		if err != nil {
			result = "failure"
			display = transport.Message(err)
		}

		r.mu.Lock()
		r.pending--
		if err != nil {
			r.errMsg = display
		}
		r.mu.Unlock()

		metrics.ActionsTotal.WithLabelValues(r.opts.Name, action, result).Inc()
		metrics.ActionDuration.WithLabelValues(r.opts.Name, action).Observe(time.Since(start).Seconds())

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return
		}
		if errors.Is(err, domain.ErrUnauthorized) && r.opts.OnUnauthorized != nil {
			r.opts.OnUnauthorized()
		}

		switch {
		case err != nil:
			r.bus.Error(display)
			r.log.Debug().Str("action", action).Err(err).Msg("action failed")
		case mutation:
			r.bus.Success(fmt.Sprintf("%s %s", r.opts.Singular, pastTense(action)))
		}
	}
}

func pastTense(action string) string {
	switch action {
	case "create":
		return "created"
	case "update":
		return "updated"
	case "delete":
		return "deleted"
	}
	return action
}

func (r *Resource[T]) listPath() string {
	return fmt.Sprintf("%s/get-all-%s", r.opts.BasePath, r.opts.Name)
}

func (r *Resource[T]) createPath() string {
	return fmt.Sprintf("%s/create-%s", r.opts.BasePath, r.opts.Singular)
}

func (r *Resource[T]) itemPath(verb, id string) string {
	return fmt.Sprintf("%s/%s-%s/%s", r.opts.BasePath, verb, r.opts.Singular, id)
}

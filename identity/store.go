// Package identity owns the authenticated session for each actor kind:
// end-user, seller, instructor, and service provider. Exactly one identity
// slice exists per kind, holding the bearer token and minimal profile; the
// slice is write-through persisted to durable client storage and
// rehydrated — pessimistically, as Pending — on startup.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/vendora/storefront-go/domain"
	"github.com/vendora/storefront-go/media"
	"github.com/vendora/storefront-go/metrics"
	"github.com/vendora/storefront-go/notify"
	"github.com/vendora/storefront-go/storage"
	"github.com/vendora/storefront-go/transport"
	"github.com/vendora/storefront-go/validate"
)

// State is the session lifecycle of one actor kind.
//
// Rehydration from storage is optimistic about the token's existence but
// pessimistic about its validity: a stored token yields Pending, and only a
// server-confirmed profile load flips the slice to Authenticated.
type State string

const (
	StatePending         State = "pending"
	StateAuthenticated   State = "authenticated"
	StateUnauthenticated State = "unauthenticated"
)

// persistedSlice is the subset of the store that survives restarts.
type persistedSlice struct {
	Token   string         `json:"token"`
	Profile domain.Profile `json:"profile"`
}

// Snapshot is a point-in-time copy of the identity slice.
type Snapshot struct {
	Kind    domain.ActorKind
	State   State
	Token   string
	Profile *domain.Profile
	Loading bool
	Err     string
}

// Authenticated reports whether the actor currently holds a confirmed
// session. True implies Token is non-empty.
func (s Snapshot) Authenticated() bool {
	return s.State == StateAuthenticated && s.Token != ""
}

// Store is the identity slice and action set for one actor kind.
type Store struct {
	kind     domain.ActorKind
	client   *transport.Client
	bus      *notify.Bus
	storage  storage.Store
	uploader *media.Uploader
	log      zerolog.Logger

	mu      sync.Mutex
	state   State
	token   string
	profile *domain.Profile
	pending int
	errMsg  string
}

// New builds the identity store for kind and rehydrates it from durable
// storage. A stored token that is already expired (local, unverified exp
// check) is discarded immediately; a live one leaves the store Pending until
// LoadProfile confirms it.
func New(kind domain.ActorKind, client *transport.Client, bus *notify.Bus, store storage.Store, uploader *media.Uploader, log zerolog.Logger) *Store {
	s := &Store{
		kind:     kind,
		client:   client,
		bus:      bus,
		storage:  store,
		uploader: uploader,
		log:      log.With().Str("actor", string(kind)).Logger(),
		state:    StateUnauthenticated,
	}
	s.rehydrate(context.Background())
	return s
}

// Snapshot returns a copy of the slice's observable state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	var profile *domain.Profile
	if s.profile != nil {
		clone := *s.profile
		profile = &clone
	}
	return Snapshot{
		Kind:    s.kind,
		State:   s.state,
		Token:   s.token,
		Profile: profile,
		Loading: s.pending > 0,
		Err:     s.errMsg,
	}
}

// Token returns the current bearer token, empty when logged out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Credentials is the login form payload.
type Credentials struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// RegisterInput is the signup form payload. Registration ends with the
// server sending an activation email; no session is created yet.
type RegisterInput struct {
	Name     string `json:"name"     validate:"required,min=2"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone"    validate:"omitempty,e164"`
}

// UpdateProfileInput is the profile edit form payload.
type UpdateProfileInput struct {
	Name  string `json:"name"  validate:"required,min=2"`
	Phone string `json:"phone" validate:"omitempty,e164"`
}

// sessionResponse is the server's answer to login and activation.
type sessionResponse struct {
	Token   string         `json:"token"`
	Profile domain.Profile `json:"profile"`
}

// Login authenticates the actor. On success the slice is persisted and the
// store becomes Authenticated; on failure the slice is untouched and the
// server's message lands in Err and on the side-channel.
func (s *Store) Login(ctx context.Context, creds Credentials) (domain.Profile, error) {
	var zero domain.Profile
	if err := validate.Struct(creds); err != nil {
		return zero, err
	}

	finish := s.begin()

	var resp sessionResponse
	err := s.client.Post(ctx, s.kind.APIPrefix()+"/login", "", creds, &resp)
	if err != nil {
		finish(err)
		s.bus.Error(transport.Message(err))
		return zero, err
	}

	s.establishSession(ctx, resp)
	finish(nil)
	s.bus.Success("login successful")
	return resp.Profile, nil
}

// Register submits a signup request. The account stays inactive until the
// emailed activation token is redeemed via Activate.
func (s *Store) Register(ctx context.Context, input RegisterInput) error {
	if err := validate.Struct(input); err != nil {
		return err
	}

	finish := s.begin()
	err := s.client.Post(ctx, s.kind.APIPrefix()+"/register", "", input, nil)
	finish(err)

	if err != nil {
		s.bus.Error(transport.Message(err))
		return err
	}
	s.bus.Success("check your email to activate your account")
	return nil
}

// Activate redeems an activation token. A successful activation creates the
// session exactly like a login does.
func (s *Store) Activate(ctx context.Context, activationToken string) (domain.Profile, error) {
	var zero domain.Profile

	finish := s.begin()

	var resp sessionResponse
	err := s.client.Post(ctx, s.kind.APIPrefix()+"/activation", "", map[string]string{
		"activation_token": activationToken,
	}, &resp)
	if err != nil {
		finish(err)
		s.bus.Error(transport.Message(err))
		return zero, err
	}

	s.establishSession(ctx, resp)
	finish(nil)
	s.bus.Success("account activated")
	return resp.Profile, nil
}

// LoadProfile confirms the held token against the server. A 401 or 404 means
// the server no longer recognises the session: the slice is invalidated,
// mirroring the token lifecycle rule that profile-load failures of either
// kind clear identity. Transport failures leave the state unchanged; the
// reconciler's grace timer bounds how long a Pending slice may linger.
func (s *Store) LoadProfile(ctx context.Context) (domain.Profile, error) {
	var zero domain.Profile

	s.mu.Lock()
	token := s.token
	s.mu.Unlock()
	if token == "" {
		return zero, domain.ErrMissingToken
	}

	finish := s.begin()

	var resp struct {
		Profile domain.Profile `json:"profile"`
	}
	err := s.client.Get(ctx, s.profilePath(), token, &resp)
	if err != nil {
		finish(err)
		if errors.Is(err, domain.ErrUnauthorized) || errors.Is(err, domain.ErrNotFound) {
			s.Invalidate()
		}
		return zero, err
	}

	s.mu.Lock()
	profile := resp.Profile
	s.profile = &profile
	s.setStateLocked(StateAuthenticated)
	s.mu.Unlock()
	s.persist(ctx)

	finish(nil)
	return resp.Profile, nil
}

// Logout tells the server to drop the session (best effort) and always
// clears the slice and its persisted copy.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()

	finish := s.begin()
	var err error
	if token != "" {
		err = s.client.Get(ctx, s.kind.APIPrefix()+"/logout", token, nil)
		if err != nil {
			s.log.Debug().Err(err).Msg("server-side logout failed, clearing local session anyway")
		}
	}
	finish(nil)

	s.Invalidate()
	s.bus.Success("log out successful")
	return nil
}

// UpdateProfile edits the actor's profile fields and re-persists the slice.
func (s *Store) UpdateProfile(ctx context.Context, input UpdateProfileInput) (domain.Profile, error) {
	var zero domain.Profile
	if err := validate.Struct(input); err != nil {
		return zero, err
	}

	s.mu.Lock()
	token := s.token
	s.mu.Unlock()
	if token == "" {
		return zero, domain.ErrMissingToken
	}

	finish := s.begin()

	var resp struct {
		Profile domain.Profile `json:"profile"`
	}
	err := s.client.Put(ctx, s.kind.APIPrefix()+"/update-profile", token, input, &resp)
	if err != nil {
		finish(err)
		if errors.Is(err, domain.ErrUnauthorized) {
			s.Invalidate()
		}
		s.bus.Error(transport.Message(err))
		return zero, err
	}

	s.mu.Lock()
	profile := resp.Profile
	s.profile = &profile
	s.mu.Unlock()
	s.persist(ctx)

	finish(nil)
	s.bus.Success("profile updated")
	return resp.Profile, nil
}

// UpdateAvatar uploads the image to the media provider, then stores the
// returned URL on the profile.
func (s *Store) UpdateAvatar(ctx context.Context, filename string, r io.Reader) (domain.Profile, error) {
	var zero domain.Profile

	s.mu.Lock()
	token := s.token
	s.mu.Unlock()
	if token == "" {
		return zero, domain.ErrMissingToken
	}

	finish := s.begin()

	url, err := s.uploader.Upload(ctx, "file", filename, r)
	if err != nil {
		finish(err)
		s.bus.Error(transport.Message(err))
		return zero, err
	}

	var resp struct {
		Profile domain.Profile `json:"profile"`
	}
	err = s.client.Put(ctx, s.kind.APIPrefix()+"/update-avatar", token, map[string]string{
		"avatar_url": url,
	}, &resp)
	if err != nil {
		finish(err)
		s.bus.Error(transport.Message(err))
		return zero, err
	}

	s.mu.Lock()
	profile := resp.Profile
	s.profile = &profile
	s.mu.Unlock()
	s.persist(ctx)

	finish(nil)
	s.bus.Success("avatar updated")
	return resp.Profile, nil
}

// Invalidate clears the in-memory slice and its persisted copy. Called on
// logout and whenever any authenticated call observes a 401.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.token = ""
	s.profile = nil
	s.setStateLocked(StateUnauthenticated)
	s.mu.Unlock()

	if err := s.storage.Delete(context.Background(), s.kind.StorageKey()); err != nil {
		s.log.Warn().Err(err).Msg("failed to clear persisted identity")
	}
}

// establishSession installs a fresh token+profile and persists the slice.
func (s *Store) establishSession(ctx context.Context, resp sessionResponse) {
	s.mu.Lock()
	s.token = resp.Token
	profile := resp.Profile
	s.profile = &profile
	s.setStateLocked(StateAuthenticated)
	s.mu.Unlock()
	s.persist(ctx)
}

// rehydrate reads the persisted slice at construction time.
func (s *Store) rehydrate(ctx context.Context) {
	raw, err := s.storage.Load(ctx, s.kind.StorageKey())
	if err != nil {
		if !storage.IsMissing(err) {
			s.log.Warn().Err(err).Msg("identity rehydration failed")
		}
		return
	}

	var slice persistedSlice
	if err := json.Unmarshal(raw, &slice); err != nil || slice.Token == "" {
		_ = s.storage.Delete(ctx, s.kind.StorageKey())
		return
	}

	if tokenExpired(slice.Token) {
		s.log.Debug().Msg("persisted token expired, discarding")
		_ = s.storage.Delete(ctx, s.kind.StorageKey())
		return
	}

	s.mu.Lock()
	s.token = slice.Token
	profile := slice.Profile
	s.profile = &profile
	s.setStateLocked(StatePending)
	s.mu.Unlock()
}

// persist writes the current slice through to durable storage. Storage
// trouble is logged, never surfaced: the session simply degrades to
// in-memory-only.
func (s *Store) persist(ctx context.Context) {
	s.mu.Lock()
	slice := persistedSlice{Token: s.token}
	if s.profile != nil {
		slice.Profile = *s.profile
	}
	s.mu.Unlock()

	raw, err := json.Marshal(slice)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to encode identity slice")
		return
	}
	if err := s.storage.Save(ctx, s.kind.StorageKey(), raw); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist identity slice")
	}
}

func (s *Store) begin() func(err error) {
	s.mu.Lock()
	s.pending++
	s.errMsg = ""
	s.mu.Unlock()

	return func(err error) {
		s.mu.Lock()
		s.pending--
		if err != nil {
			s.errMsg = transport.Message(err)
		}
		s.mu.Unlock()
	}
}

func (s *Store) setStateLocked(next State) {
	if s.state == next {
		return
	}
	s.state = next
	metrics.IdentityTransitionsTotal.WithLabelValues(string(s.kind), string(next)).Inc()
	s.log.Debug().Str("state", string(next)).Msg("identity state changed")
}

// profilePath follows the API's get<actor> convention, e.g. /user/getuser.
func (s *Store) profilePath() string {
	switch s.kind {
	case domain.ActorSeller:
		return "/shop/getshop"
	case domain.ActorInstructor:
		return "/instructor/getinstructor"
	case domain.ActorServiceProvider:
		return "/service-provider/getprovider"
	default:
		return "/user/getuser"
	}
}

// tokenExpired reports whether a JWT's exp claim is in the past. The parse
// is unverified: the client holds no signing key, and the check only exists
// to skip a doomed Pending window. A malformed token counts as expired.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}


package domain

// ActorKind identifies one of the four independently authenticated actor
// types. Each kind carries its own credentials, dashboard, and persisted
// identity slice; a single process may hold several kinds at once.
type ActorKind string

const (
	ActorUser            ActorKind = "user"
	ActorSeller          ActorKind = "seller"
	ActorInstructor      ActorKind = "instructor"
	ActorServiceProvider ActorKind = "service_provider"
)

// actorRoutes maps each kind to its API prefix, login route, and the fixed
// key its identity slice is persisted under.
var actorRoutes = map[ActorKind]struct {
	apiPrefix  string
	loginRoute string
	storageKey string
}{
	ActorUser:            {"/user", "/login", "auth-storage"},
	ActorSeller:          {"/shop", "/shop-login", "seller-storage"},
	ActorInstructor:      {"/instructor", "/instructor-login", "instructor-storage"},
	ActorServiceProvider: {"/service-provider", "/provider-login", "provider-storage"},
}

// Valid reports whether k is one of the known actor kinds.
func (k ActorKind) Valid() bool {
	_, ok := actorRoutes[k]
	return ok
}

// APIPrefix returns the path prefix for the kind's account endpoints,
// e.g. "/shop" for sellers.
func (k ActorKind) APIPrefix() string {
	return actorRoutes[k].apiPrefix
}

// LoginRoute returns the client-side route an unauthenticated actor of this
// kind should be redirected to.
func (k ActorKind) LoginRoute() string {
	return actorRoutes[k].loginRoute
}

// StorageKey returns the durable-storage key for the kind's identity slice.
func (k ActorKind) StorageKey() string {
	return actorRoutes[k].storageKey
}

package apitest

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/vendora/storefront-go/domain"
)

// account is one seeded login for an actor kind.
type account struct {
	kind         domain.ActorKind
	email        string
	passwordHash []byte
	profile      domain.Profile
	active       bool
}

func accountKey(kind domain.ActorKind, email string) string {
	return string(kind) + "/" + email
}

// SeedAccount registers an active account and returns its profile ID.
func (s *Server) SeedAccount(kind domain.ActorKind, email, password, name string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic("apitest: hash password: " + err.Error())
	}

	a := &account{
		kind:         kind,
		email:        email,
		passwordHash: hash,
		active:       true,
		profile: domain.Profile{
			ID:        uuid.NewString(),
			Name:      name,
			Email:     email,
			CreatedAt: time.Now().UTC(),
		},
	}

	s.mu.Lock()
	s.accounts[accountKey(kind, email)] = a
	s.mu.Unlock()
	return a.profile.ID
}

// SeedPendingAccount registers an inactive account and returns the
// activation token that will activate it.
func (s *Server) SeedPendingAccount(kind domain.ActorKind, email, password, name string) string {
	s.SeedAccount(kind, email, password, name)

	token := uuid.NewString()
	s.mu.Lock()
	a := s.accounts[accountKey(kind, email)]
	a.active = false
	s.activations[token] = a
	s.mu.Unlock()
	return token
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone"`
}

type sessionResponse struct {
	Token   string         `json:"token"`
	Profile domain.Profile `json:"profile"`
}

type profileResponse struct {
	Profile domain.Profile `json:"profile"`
}

// registerAccountRoutes mounts login/register/activation/profile routes for
// all four actor kinds under their API prefixes.
func (s *Server) registerAccountRoutes(e *echo.Echo) {
	kinds := []domain.ActorKind{
		domain.ActorUser,
		domain.ActorSeller,
		domain.ActorInstructor,
		domain.ActorServiceProvider,
	}

	for _, kind := range kinds {
		prefix := kind.APIPrefix()
		k := kind

		e.POST(prefix+"/login", func(c echo.Context) error { return s.handleLogin(c, k) })
		e.POST(prefix+"/register", func(c echo.Context) error { return s.handleRegister(c, k) })
		e.POST(prefix+"/activation", func(c echo.Context) error { return s.handleActivation(c, k) })
		e.GET(prefix+"/logout", s.handleLogout)
		e.PUT(prefix+"/update-profile", func(c echo.Context) error { return s.handleUpdateProfile(c, k) })
		e.PUT(prefix+"/update-avatar", func(c echo.Context) error { return s.handleUpdateAvatar(c, k) })
	}

	// Profile lookups follow the backend's get<actor> naming.
	e.GET("/user/getuser", func(c echo.Context) error { return s.handleProfile(c, domain.ActorUser) })
	e.GET("/shop/getshop", func(c echo.Context) error { return s.handleProfile(c, domain.ActorSeller) })
	e.GET("/instructor/getinstructor", func(c echo.Context) error { return s.handleProfile(c, domain.ActorInstructor) })
	e.GET("/service-provider/getprovider", func(c echo.Context) error { return s.handleProfile(c, domain.ActorServiceProvider) })
}

func (s *Server) handleLogin(c echo.Context, kind domain.ActorKind) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid payload")
	}

	s.mu.Lock()
	a, ok := s.accounts[accountKey(kind, req.Email)]
	s.mu.Unlock()

	if !ok || !a.active {
		return fail(c, http.StatusUnauthorized, "invalid email or password")
	}
	if bcrypt.CompareHashAndPassword(a.passwordHash, []byte(req.Password)) != nil {
		return fail(c, http.StatusUnauthorized, "invalid email or password")
	}

	return c.JSON(http.StatusOK, sessionResponse{
		Token:   s.issueToken(a, tokenTTL),
		Profile: a.profile,
	})
}

func (s *Server) handleRegister(c echo.Context, kind domain.ActorKind) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid payload")
	}

	s.mu.Lock()
	_, exists := s.accounts[accountKey(kind, req.Email)]
	s.mu.Unlock()
	if exists {
		return fail(c, http.StatusConflict, "account already exists")
	}

	s.SeedPendingAccount(kind, req.Email, req.Password, req.Name)
	return c.JSON(http.StatusCreated, map[string]string{
		"message": "please check your email to activate your account",
	})
}

func (s *Server) handleActivation(c echo.Context, kind domain.ActorKind) error {
	var req struct {
		ActivationToken string `json:"activation_token"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid payload")
	}

	s.mu.Lock()
	a, ok := s.activations[req.ActivationToken]
	if ok {
		delete(s.activations, req.ActivationToken)
		a.active = true
	}
	s.mu.Unlock()

	if !ok || a.kind != kind {
		return fail(c, http.StatusBadRequest, "invalid activation token")
	}

	return c.JSON(http.StatusCreated, sessionResponse{
		Token:   s.issueToken(a, tokenTTL),
		Profile: a.profile,
	})
}

func (s *Server) handleLogout(c echo.Context) error {
	if _, err := s.authenticate(c); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "logged out"})
}

func (s *Server) handleProfile(c echo.Context, kind domain.ActorKind) error {
	a, err := s.authenticate(c)
	if err != nil {
		return err
	}
	if a.kind != kind {
		return fail(c, http.StatusNotFound, "account not found")
	}
	return c.JSON(http.StatusOK, profileResponse{Profile: a.profile})
}

func (s *Server) handleUpdateProfile(c echo.Context, kind domain.ActorKind) error {
	a, err := s.authenticate(c)
	if err != nil {
		return err
	}
	if a.kind != kind {
		return fail(c, http.StatusNotFound, "account not found")
	}

	var req struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid payload")
	}

	s.mu.Lock()
	if req.Name != "" {
		a.profile.Name = req.Name
	}
	a.profile.Phone = req.Phone
	profile := a.profile
	s.mu.Unlock()

	return c.JSON(http.StatusOK, profileResponse{Profile: profile})
}

func (s *Server) handleUpdateAvatar(c echo.Context, kind domain.ActorKind) error {
	a, err := s.authenticate(c)
	if err != nil {
		return err
	}
	if a.kind != kind {
		return fail(c, http.StatusNotFound, "account not found")
	}

	var req struct {
		AvatarURL string `json:"avatar_url"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid payload")
	}

	s.mu.Lock()
	a.profile.AvatarURL = req.AvatarURL
	profile := a.profile
	s.mu.Unlock()

	return c.JSON(http.StatusOK, profileResponse{Profile: profile})
}

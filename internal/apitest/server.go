// Package apitest runs an in-process double of the marketplace REST API for
// SDK tests: JWT-authenticated account endpoints per actor kind plus
// generic paginated CRUD for every resource, answering with the same JSON
// envelopes the real backend uses.
package apitest

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/vendora/storefront-go/domain"
)

const tokenTTL = time.Hour

// Server is the API double. Base URL is Server.URL; close with Close.
type Server struct {
	*httptest.Server
	JWTSecret string

	mu          sync.Mutex
	accounts    map[string]*account // key: kind/email
	activations map[string]*account // key: activation token
	collections map[string]*collection
}

// echoValidator wraps go-playground/validator so echo can call c.Validate.
type echoValidator struct {
	v *validator.Validate
}

func (ev *echoValidator) Validate(i any) error {
	if err := ev.v.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			msgs := make([]string, 0, len(ve))
			for _, fe := range ve {
				msgs = append(msgs, strings.ToLower(fe.Field())+" failed on "+fe.Tag())
			}
			return echo.NewHTTPError(http.StatusBadRequest, strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// errorEnvelope is the backend's canonical error payload.
type errorEnvelope struct {
	Message string `json:"message"`
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, errorEnvelope{Message: msg})
}

// NewServer starts the double with every route registered.
func NewServer() *Server {
	s := &Server{
		JWTSecret:   "apitest-secret",
		accounts:    make(map[string]*account),
		activations: make(map[string]*account),
		collections: make(map[string]*collection),
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = &echoValidator{v: validator.New()}

	s.registerAccountRoutes(e)
	s.registerResourceRoutes(e)

	s.Server = httptest.NewServer(e)
	return s
}

// issueToken mints an HS256 session token for an account.
func (s *Server) issueToken(a *account, ttl time.Duration) string {
	claims := jwt.MapClaims{
		"sub":   a.profile.ID,
		"email": a.email,
		"kind":  string(a.kind),
		"exp":   time.Now().Add(ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(s.JWTSecret))
	if err != nil {
		panic(fmt.Sprintf("apitest: sign token: %v", err))
	}
	return signed
}

// IssueToken mints a token for a seeded account, with any TTL. Tests use a
// negative TTL to fabricate expired sessions.
func (s *Server) IssueToken(kind domain.ActorKind, email string, ttl time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[accountKey(kind, email)]
	if !ok {
		panic("apitest: IssueToken for unseeded account " + email)
	}
	return s.issueToken(a, ttl)
}

// authenticate resolves the bearer token on a request to its account.
func (s *Server) authenticate(c echo.Context) (*account, error) {
	header := c.Request().Header.Get("Authorization")
	if header == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}

	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.JWTSecret), nil
	})
	if err != nil || !tkn.Valid {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	kind, _ := claims["kind"].(string)
	email, _ := claims["email"].(string)

	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[accountKey(domain.ActorKind(kind), email)]
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "unknown session")
	}
	return a, nil
}

// NewMediaServer starts a double of the third-party media provider: it
// accepts a multipart upload and answers with a stable URL.
func NewMediaServer() *httptest.Server {
	e := echo.New()
	e.HideBanner = true

	e.POST("/", func(c echo.Context) error {
		file, err := c.FormFile("file")
		if err != nil {
			return fail(c, http.StatusBadRequest, "missing file field")
		}
		return c.JSON(http.StatusOK, map[string]string{
			"url": "https://cdn.apitest.local/" + file.Filename,
		})
	})

	return httptest.NewServer(e)
}

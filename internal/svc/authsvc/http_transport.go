package authsvc

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/otebot/otebot-api/internal/domain"
	"github.com/otebot/otebot-api/internal/infra/logging"
	http_ "github.com/otebot/otebot-api/internal/infra/transport/http"
)

var (
	// ErrNoEmail is returned when the email is missing from the request.
	ErrNoEmail = errors.New("no email")
	// ErrNoPassword is returned when the password is missing from the request.
	ErrNoPassword = errors.New("no password")
)

// HTTPTransport handles HTTP requests for the authentication service.
type HTTPTransport struct {
	authSvc *AuthService
	log     logging.Logger
}

// NewHTTPTransport creates a new HTTPTransport instance.
// It requires an AuthService for handling authentication operations.
func NewHTTPTransport(authSvc *AuthService) *HTTPTransport {
	return &HTTPTransport{
		authSvc: authSvc,
		log:     logging.GetLogger("svc.authsvc.http_transport"),
	}
}

// ServeHTTP implements http.Handler and sets up routes for the auth endpoints:
// - POST /auth/login: Login and get a bearer token.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", ht.HandleLogin)
	mux.ServeHTTP(w, r)
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// HandleLogin processes administrator login requests.
// Expects a JSON body with email and password.
// Returns a bearer token on successful login.
func (ht *HTTPTransport) HandleLogin(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleLogin(w, r)
}

func (ht *HTTPTransport) handleLogin(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.WarnContext(ctx, "login request failed", "error", err)
		} else {
			log.DebugContext(ctx, "login request handled")
		}
	}(r.Context())

	var req domain.LoginRequest
	if err := http_.ReadJSON(r, &req); err != nil {
		http_.WriteError(w, http.StatusBadRequest, "email and password are required")

		return fmt.Errorf("read body: %w", err)
	}

	if req.Email == "" {
		http_.WriteError(w, http.StatusBadRequest, "email and password are required")

		return ErrNoEmail
	}

	if req.Password == "" {
		http_.WriteError(w, http.StatusBadRequest, "email and password are required")

		return ErrNoPassword
	}

	token, err := ht.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			http_.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		} else {
			http_.WriteError(w, http.StatusInternalServerError, "internal server error")
		}

		return fmt.Errorf("login: %w", err)
	}

	if err := http_.WriteJSON(w, http.StatusOK, domain.TokenResponse{Token: token}); err != nil {
		return fmt.Errorf("write response: %w", err)
	}

	return nil
}

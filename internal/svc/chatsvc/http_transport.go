package chatsvc

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/otebot/otebot-api/internal/domain"
	context_ "github.com/otebot/otebot-api/internal/infra/context"
	"github.com/otebot/otebot-api/internal/infra/logging"
	http_ "github.com/otebot/otebot-api/internal/infra/transport/http"
)

// appName identifies the service in the health payload.
const appName = "otebot-api"

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status string `json:"status"`
	App    string `json:"app"`
}

// HTTPTransport handles HTTP requests for the chat relay.
// It provides the health endpoint and the token-gated chat endpoint.
type HTTPTransport struct {
	chatSvc  *ChatService
	verifier http_.TokenVerifier
	log      logging.Logger
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// NewHTTPTransport creates a new HTTPTransport instance.
// It requires a ChatService for handling completions and a TokenVerifier for
// gating the chat endpoint.
func NewHTTPTransport(chatSvc *ChatService, verifier http_.TokenVerifier) *HTTPTransport {
	return &HTTPTransport{
		chatSvc:  chatSvc,
		verifier: verifier,
		log:      logging.GetLogger("svc.chatsvc.http_transport"),
	}
}

// ServeHTTP implements http.Handler and sets up routes for the relay endpoints:
// - GET /health: Liveness, no auth
// - POST /chat: Forward a message to the completion API
// The chat route is protected by the authorizing middleware.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", ht.HandleHealth)
	mux.Handle("POST /chat", http_.AuthorizingMiddleware(
		http.HandlerFunc(ht.HandleChat), ht.verifier, ht.log,
	))
	mux.ServeHTTP(w, r)
}

// HandleHealth reports liveness. It succeeds regardless of configuration
// state, including when required secrets are unset.
func (ht *HTTPTransport) HandleHealth(w http.ResponseWriter, r *http.Request) {
	_ = http_.WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok", App: appName})
}

// HandleChat processes chat requests.
// Expects a JSON body with a message; replies with the completion text.
func (ht *HTTPTransport) HandleChat(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleChat(w, r)
}

func (ht *HTTPTransport) handleChat(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.WarnContext(ctx, "chat request failed", "error", err)
		} else {
			log.DebugContext(ctx, "chat request handled")
		}
	}(r.Context())

	if claims, ok := context_.ClaimsFromContext(r.Context()); ok {
		log = log.With(logging.Group("user", "email", claims.Email))
	}

	var req domain.ChatRequest
	if err := http_.ReadJSON(r, &req); err != nil {
		http_.WriteError(w, http.StatusBadRequest, "message is required")

		return fmt.Errorf("read body: %w", err)
	}

	if req.Message == "" {
		http_.WriteError(w, http.StatusBadRequest, "message is required")

		return domain.ErrBadRequest
	}

	reply, err := ht.chatSvc.Complete(r.Context(), req.Message)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBadRequest):
			http_.WriteError(w, http.StatusBadRequest, "message is required")
		case errors.Is(err, domain.ErrUpstream):
			http_.WriteError(w, http.StatusInternalServerError, "upstream completion failed")
		default:
			http_.WriteError(w, http.StatusInternalServerError, "internal server error")
		}

		return fmt.Errorf("complete: %w", err)
	}

	if err := http_.WriteJSON(w, http.StatusOK, domain.ChatReply{Reply: reply}); err != nil {
		return fmt.Errorf("write response: %w", err)
	}

	return nil
}

package chatsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/otebot/otebot-api/internal/domain"
	"github.com/otebot/otebot-api/internal/infra/logging"
)

// ChatConfig contains configuration parameters for the completion relay.
type ChatConfig struct {
	// APIKey is the upstream completion API bearer credential. It is held only
	// in process memory and never logged.
	APIKey string `env:"OPENAI_API_KEY" default:""`

	// BaseURL is the upstream API base URL; any OpenAI-compatible endpoint works
	BaseURL string `env:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`

	// Model is the fixed model identifier sent with every request
	Model string `env:"CHAT_MODEL" default:"gpt-4o-mini"`

	// UpstreamTimeout bounds the upstream call in seconds
	UpstreamTimeout int64 `env:"UPSTREAM_TIMEOUT" default:"30"`
}

// systemPrompt is the fixed persona prepended to every conversation.
const systemPrompt = "You are OtéBot, the assistant of a digital services " +
	"agency. You answer concisely and professionally, with a warm tone. " +
	"Keep replies short and helpful."

// fallbackReply is returned when the upstream answers successfully but yields
// no usable text. A generic reply beats an empty one.
const fallbackReply = "unable to generate a reply at this time"

// ChatService forwards a single user message plus the fixed persona prompt to
// an OpenAI-compatible chat-completions API and extracts the reply text.
// It keeps no conversation state.
type ChatService struct {
	Config     ChatConfig
	HTTPClient *http.Client
	Log        logging.Logger
}

// NewChatService creates a new ChatService with the given configuration.
// If httpClient is nil, http.DefaultClient will be used.
func NewChatService(cfg ChatConfig, httpClient *http.Client) *ChatService {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &ChatService{
		Config:     cfg,
		HTTPClient: httpClient,
		Log:        logging.GetLogger("svc.chatsvc.chat_service"),
	}
}

// completionMessage is one turn of the upstream conversation.
type completionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model    string              `json:"model"`
	Messages []completionMessage `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// maxUpstreamErrorBody bounds how much of an upstream error body is read for
// diagnostic logging.
const maxUpstreamErrorBody = 4 << 10

// Complete sends the message to the upstream completion endpoint and returns
// the reply text.
// Fails with domain.ErrBadRequest if the message is empty, domain.ErrNoAPIKey
// if no API key is configured, and domain.ErrUpstream if the upstream call
// fails. Upstream error bodies are logged server-side and never returned.
func (s *ChatService) Complete(ctx context.Context, message string) (_ string, err error) {
	log := s.Log

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "completion failed", "error", err)
		} else {
			log.DebugContext(ctx, "completion succeeded")
		}
	}()

	if message == "" {
		return "", domain.ErrBadRequest
	}

	if s.Config.APIKey == "" {
		return "", domain.ErrNoAPIKey
	}

	body := completionRequest{
		Model: s.Config.Model,
		Messages: []completionMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: message},
		},
	}

	bodyJSON, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	// The caller's context bounds the call: a client disconnect or the
	// configured timeout aborts the in-flight upstream request.
	ctx, cancel := context.WithTimeout(ctx, time.Duration(s.Config.UpstreamTimeout*int64(time.Second)))
	defer cancel()

	url := s.Config.BaseURL + "/chat/completions"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyJSON))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.Config.APIKey)

	log = log.With(logging.Group("upstream", "url", url, "model", s.Config.Model))

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return "", errors.Join(domain.ErrUpstream, fmt.Errorf("post: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		upstreamBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamErrorBody))
		log.ErrorContext(ctx, "upstream error",
			"status", resp.StatusCode,
			"body", string(upstreamBody),
		)

		return "", fmt.Errorf("%w: status %d", domain.ErrUpstream, resp.StatusCode)
	}

	var completion completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", errors.Join(domain.ErrUpstream, fmt.Errorf("decode response: %w", err))
	}

	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		log.WarnContext(ctx, "upstream returned no reply text, using fallback")

		return fallbackReply, nil
	}

	return completion.Choices[0].Message.Content, nil
}

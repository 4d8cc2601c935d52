package domain

import "errors"

var (
	// ErrBadRequest is returned when required request input is missing or empty.
	ErrBadRequest = errors.New("bad request")
	// ErrNoAPIKey is returned when the upstream API key is not configured.
	ErrNoAPIKey = errors.New("no upstream api key configured")
	// ErrUpstream is returned when the upstream completion call fails for any
	// reason. Upstream detail stays in the server logs.
	ErrUpstream = errors.New("upstream completion failed")
)

// ChatRequest is the /chat request payload.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatReply is the /chat success payload.
type ChatReply struct {
	Reply string `json:"reply"`
}

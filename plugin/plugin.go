package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrBadPayload = errors.New("malformed hook payload")
	ErrUnknown    = errors.New("no handler registered")
)

type (
	Plugin interface {
		Name() string

		// Handlers are bound to forum hook names
		Handlers() []Handler
	}

	Handler interface {
		Hook() string
		Run(c HookContext) (any, error)
	}

	HookContext struct {
		context.Context
		Hook    string
		Payload json.RawMessage
	}

	ActionFunc func(c HookContext) error
	ResultFunc func(c HookContext) (any, error)

	// ActionHandler reacts to fire-and-forget events, nobody waits for it.
	ActionHandler struct {
		Trigger     string
		HandlerFunc ActionFunc
	}

	// FilterHandler receives a payload and returns the (possibly modified) payload.
	FilterHandler struct {
		Trigger     string
		HandlerFunc ResultFunc
	}

	// RequestHandler answers a synchronous request from the forum frontend.
	RequestHandler struct {
		Trigger     string
		HandlerFunc ResultFunc
	}
)

// Bind decodes the payload into v.
func (c HookContext) Bind(v any) error {
	if len(c.Payload) == 0 {
		return fmt.Errorf("%w: empty body for %s", ErrBadPayload, c.Hook)
	}
	if err := json.Unmarshal(c.Payload, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrBadPayload, c.Hook, err)
	}
	return nil
}

func (h *ActionHandler) Hook() string {
	return h.Trigger
}

func (h *ActionHandler) Run(c HookContext) (any, error) {
	return nil, h.HandlerFunc(c)
}

func (h *FilterHandler) Hook() string {
	return h.Trigger
}

func (h *FilterHandler) Run(c HookContext) (any, error) {
	return h.HandlerFunc(c)
}

func (h *RequestHandler) Hook() string {
	return h.Trigger
}

func (h *RequestHandler) Run(c HookContext) (any, error) {
	return h.HandlerFunc(c)
}

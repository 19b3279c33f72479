// Package gateway provides a uniform interface over named model backends.
// A Registry maps display model names (what users pick) to a provider
// client bound to a concrete provider model id. The registry is read-only
// configuration established at startup; pipeline execution never mutates it.
package gateway

import (
	"context"
	"fmt"
	"sort"

	"cotreflect/internal/logging"
)

// Backend is an opaque model endpoint: prompt text in, response text out.
type Backend interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// BackendFunc adapts a plain function to the Backend interface.
type BackendFunc func(ctx context.Context, prompt string) (string, error)

func (f BackendFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// UnknownModelError reports a model name that is not registered.
type UnknownModelError struct {
	Model string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("unknown model: %q", e.Model)
}

// BackendError reports a failed or timed-out backend call, carrying the
// underlying cause.
type BackendError struct {
	Model string
	Err   error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("model %q request failed: %v", e.Model, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// Registry is the process-wide set of registered models.
type Registry struct {
	backends map[string]Backend
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{backends: make(map[string]Backend)}
}

// Register binds a display model name to a backend. Registration happens
// at startup only; the registry is not safe for concurrent mutation.
func (r *Registry) Register(name string, b Backend) {
	r.backends[name] = b
}

// Resolve looks up a backend by display name without invoking it.
func (r *Registry) Resolve(name string) (Backend, error) {
	b, ok := r.backends[name]
	if !ok {
		return nil, &UnknownModelError{Model: name}
	}
	return b, nil
}

// Models returns the registered display names, sorted.
func (r *Registry) Models() []string {
	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke resolves a model by display name and sends it the prompt.
// It fails with *UnknownModelError before any backend work when the name is
// not registered, and wraps backend failures (including timeouts) in
// *BackendError. No retries happen at this level; retry policy belongs to
// the caller.
func (r *Registry) Invoke(ctx context.Context, model, prompt string) (string, error) {
	b, err := r.Resolve(model)
	if err != nil {
		return "", err
	}

	logging.APIDebug("invoking model=%q prompt_len=%d", model, len(prompt))
	text, err := b.Complete(ctx, prompt)
	if err != nil {
		logging.Get(logging.CategoryAPI).Errorf("model %q call failed: %v", model, err)
		return "", &BackendError{Model: model, Err: err}
	}
	logging.APIDebug("model=%q response_len=%d", model, len(text))
	return text, nil
}

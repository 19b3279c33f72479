package gateway

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestInvokeUnknownModel(t *testing.T) {
	reg := NewRegistry()
	reg.Register("Gemini 2.0 Flash", BackendFunc(func(ctx context.Context, prompt string) (string, error) {
		t.Fatal("backend must not be contacted for an unknown model")
		return "", nil
	}))

	_, err := reg.Invoke(context.Background(), "No Such Model", "hi")
	if err == nil {
		t.Fatal("expected error")
	}

	var unknown *UnknownModelError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected *UnknownModelError, got %T: %v", err, err)
	}
	if unknown.Model != "No Such Model" {
		t.Errorf("unexpected model in error: %q", unknown.Model)
	}
}

func TestInvokeBackendError(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	reg := NewRegistry()
	reg.Register("Gemini 2.0 Flash", BackendFunc(func(ctx context.Context, prompt string) (string, error) {
		return "", cause
	}))

	_, err := reg.Invoke(context.Background(), "Gemini 2.0 Flash", "hi")
	var backendErr *BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("expected *BackendError, got %T: %v", err, err)
	}
	if !errors.Is(err, cause) {
		t.Error("BackendError should wrap the underlying cause")
	}
}

func TestInvokePassesPromptThrough(t *testing.T) {
	var gotPrompt string
	reg := NewRegistry()
	reg.Register("Gemini 2.0 Flash", BackendFunc(func(ctx context.Context, prompt string) (string, error) {
		gotPrompt = prompt
		return "4", nil
	}))

	text, err := reg.Invoke(context.Background(), "Gemini 2.0 Flash", "What is 2+2?")
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if text != "4" {
		t.Errorf("unexpected response: %q", text)
	}
	if gotPrompt != "What is 2+2?" {
		t.Errorf("prompt not passed through verbatim: %q", gotPrompt)
	}
}

func TestModelsSorted(t *testing.T) {
	reg := NewRegistry()
	noop := BackendFunc(func(ctx context.Context, prompt string) (string, error) { return "", nil })
	reg.Register("b", noop)
	reg.Register("a", noop)
	reg.Register("c", noop)

	models := reg.Models()
	if len(models) != 3 || models[0] != "a" || models[1] != "b" || models[2] != "c" {
		t.Errorf("unexpected model list: %v", models)
	}
}

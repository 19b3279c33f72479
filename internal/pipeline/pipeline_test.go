package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"go.uber.org/goleak"

	"cotreflect/internal/gateway"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

const testModel = "Gemini 2.0 Flash"

// scriptedBackend answers the unreasoned/direct prompt and the combined CoT
// prompt differently, the way a real model call sequence would.
func scriptedBackend(initial, combined string) gateway.Backend {
	return gateway.BackendFunc(func(ctx context.Context, prompt string) (string, error) {
		if strings.Contains(prompt, "<thinking>") {
			return combined, nil
		}
		return initial, nil
	})
}

func newRunner(b gateway.Backend) *Runner {
	reg := gateway.NewRegistry()
	reg.Register(testModel, b)
	return New(reg)
}

func TestDirectMode(t *testing.T) {
	backend := gateway.BackendFunc(func(ctx context.Context, prompt string) (string, error) {
		return "The answer is 4.", nil
	})

	res := newRunner(backend).Run(context.Background(), Config{
		Model:    testModel,
		Question: "What is 2+2?",
	})

	if res.Status != StatusOK {
		t.Fatalf("unexpected status %q: %s", res.Status, res.Error)
	}
	if res.FinalResponse != "The answer is 4." {
		t.Errorf("final answer must be the backend response verbatim, got %q", res.FinalResponse)
	}
	if res.Thinking != "" || res.Reflection != "" {
		t.Errorf("direct mode must leave thinking/reflection empty: %q / %q", res.Thinking, res.Reflection)
	}
	if res.CotPrompt != "" {
		t.Errorf("direct mode must report the CoT prompt as absent, got %q", res.CotPrompt)
	}
	if res.SystemPrompt != DefaultSystemPrompt {
		t.Errorf("expected default system prompt echo, got %q", res.SystemPrompt)
	}
	if res.RunID == "" {
		t.Error("missing run id")
	}
}

func TestReasonedModeSplitsCombinedResponse(t *testing.T) {
	combined := `<thinking>
step one
<reflection>the steps hold up</reflection>
adjusted
</thinking>
<output>
The answer is 4.
</output>`

	res := newRunner(scriptedBackend("4", combined)).Run(context.Background(), Config{
		Model:    testModel,
		Question: "What is 2+2?",
		UseCoT:   true,
	})

	if res.Status != StatusOK {
		t.Fatalf("unexpected status %q: %s", res.Status, res.Error)
	}
	if res.InitialResponse != "4" {
		t.Errorf("unexpected initial response: %q", res.InitialResponse)
	}
	if !strings.Contains(res.Thinking, "step one") {
		t.Errorf("unexpected thinking: %q", res.Thinking)
	}
	if res.Reflection != "the steps hold up" {
		t.Errorf("unexpected reflection: %q", res.Reflection)
	}
	if res.FinalResponse != "The answer is 4." {
		t.Errorf("unexpected final answer: %q", res.FinalResponse)
	}
	if res.CotPrompt != DefaultCoTPrompt {
		t.Error("reasoned mode must echo the CoT prompt actually used")
	}
}

func TestReasonedModeThinkingOnly(t *testing.T) {
	// No <output> section: the final answer comes from the text outside the
	// thinking block.
	res := newRunner(scriptedBackend("4", "<thinking>because arithmetic</thinking> The answer is 4.")).
		Run(context.Background(), Config{
			Model:    testModel,
			Question: "What is 2+2?",
			UseCoT:   true,
		})

	if res.Status != StatusOK {
		t.Fatalf("unexpected status %q: %s", res.Status, res.Error)
	}
	if res.Thinking != "because arithmetic" {
		t.Errorf("unexpected thinking: %q", res.Thinking)
	}
	if res.FinalResponse != "The answer is 4." {
		t.Errorf("unexpected final answer: %q", res.FinalResponse)
	}
	if res.Reflection != "" {
		t.Errorf("missing reflection section must stay empty, got %q", res.Reflection)
	}
}

func TestReasonedModeExtractionFallback(t *testing.T) {
	raw := "the model ignored the format entirely"
	backend := gateway.BackendFunc(func(ctx context.Context, prompt string) (string, error) {
		if strings.Contains(prompt, "without any explanation") {
			return "4", nil
		}
		return raw, nil
	})

	res := newRunner(backend).Run(context.Background(), Config{
		Model:    testModel,
		Question: "What is 2+2?",
		UseCoT:   true,
	})

	if res.Status != StatusOK {
		t.Fatalf("unexpected status %q: %s", res.Status, res.Error)
	}
	if res.Thinking != raw {
		t.Errorf("thinking must fall back to the full response, got %q", res.Thinking)
	}
	if res.FinalResponse != raw {
		t.Errorf("final answer must fall back to the full response, got %q", res.FinalResponse)
	}
}

func TestUnknownModelNeverContactsBackend(t *testing.T) {
	var calls atomic.Int64
	backend := gateway.BackendFunc(func(ctx context.Context, prompt string) (string, error) {
		calls.Add(1)
		return "", nil
	})

	res := newRunner(backend).Run(context.Background(), Config{
		Model:    "Not A Model",
		Question: "What is 2+2?",
		UseCoT:   true,
	})

	if res.Status != StatusFailed {
		t.Fatal("expected failure for unregistered model")
	}
	if !strings.Contains(res.Error, "unknown model") {
		t.Errorf("unexpected error description: %q", res.Error)
	}
	if calls.Load() != 0 {
		t.Errorf("backend was contacted %d times", calls.Load())
	}
}

func TestBackendFailureBecomesFailedResult(t *testing.T) {
	backend := gateway.BackendFunc(func(ctx context.Context, prompt string) (string, error) {
		return "", fmt.Errorf("upstream timeout")
	})

	res := newRunner(backend).Run(context.Background(), Config{
		Model:    testModel,
		Question: "What is 2+2?",
		UseCoT:   true,
	})

	if res.Status != StatusFailed {
		t.Fatal("expected failed status")
	}
	if !strings.Contains(res.Error, "upstream timeout") {
		t.Errorf("error description should carry the cause: %q", res.Error)
	}
	// The failure must not masquerade as an answer.
	if res.FinalResponse != "" || res.Thinking != "" || res.Reflection != "" {
		t.Errorf("failed result must leave answer fields empty: %+v", res)
	}
}

func TestEmptyQuestionFails(t *testing.T) {
	res := newRunner(scriptedBackend("", "")).Run(context.Background(), Config{
		Model:    testModel,
		Question: "   ",
	})
	if res.Status != StatusFailed {
		t.Fatal("expected failure for empty question")
	}
}

func TestTemplateMissingQuestionPlaceholderFails(t *testing.T) {
	var calls atomic.Int64
	backend := gateway.BackendFunc(func(ctx context.Context, prompt string) (string, error) {
		calls.Add(1)
		return "", nil
	})

	res := newRunner(backend).Run(context.Background(), Config{
		Model:     testModel,
		Question:  "What is 2+2?",
		CoTPrompt: "a template without the required placeholder",
		UseCoT:    true,
	})

	if res.Status != StatusFailed {
		t.Fatal("expected failure for malformed template")
	}
	if calls.Load() != 0 {
		t.Error("malformed template must fail before any backend work")
	}
}

func TestDocumentInsertedVerbatim(t *testing.T) {
	var mu sync.Mutex
	var prompts []string
	backend := gateway.BackendFunc(func(ctx context.Context, prompt string) (string, error) {
		mu.Lock()
		prompts = append(prompts, prompt)
		mu.Unlock()
		return "<thinking>t</thinking><output>a</output>", nil
	})

	doc := "Q3 revenue was $12M.\nHeadcount grew 4%."
	res := newRunner(backend).Run(context.Background(), Config{
		Model:    testModel,
		Question: "Summarize the quarter.",
		Document: doc,
		UseCoT:   true,
	})

	if res.Status != StatusOK {
		t.Fatalf("unexpected status %q: %s", res.Status, res.Error)
	}
	if len(prompts) != 2 {
		t.Fatalf("reasoned mode must issue exactly two calls, got %d", len(prompts))
	}
	for _, p := range prompts {
		if !strings.Contains(p, "Document Content:\n"+doc) {
			t.Errorf("document text missing or altered in prompt:\n%s", p)
		}
	}
}

func TestDirectModeSingleCall(t *testing.T) {
	var calls atomic.Int64
	backend := gateway.BackendFunc(func(ctx context.Context, prompt string) (string, error) {
		calls.Add(1)
		return "ok", nil
	})

	res := newRunner(backend).Run(context.Background(), Config{
		Model:    testModel,
		Question: "What is 2+2?",
	})

	if res.Status != StatusOK {
		t.Fatalf("unexpected status: %s", res.Error)
	}
	if calls.Load() != 1 {
		t.Errorf("direct mode must issue exactly one call, got %d", calls.Load())
	}
}

// Package pipeline orchestrates the two-stage reflection pipeline: an
// unreasoned initial answer plus a combined thinking/reflection/answer call,
// split into its logical parts with the tag extractor.
//
// Run never propagates an error to its caller. Every invocation yields a
// complete, well-typed Result; success and failure are distinguished by the
// explicit Status field, never by inspecting answer text.
package pipeline

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"cotreflect/internal/extract"
	"cotreflect/internal/gateway"
	"cotreflect/internal/logging"
)

// Status discriminates successful runs from failed ones.
type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// Config describes one pipeline invocation.
type Config struct {
	// SystemPrompt provides model context. Empty selects DefaultSystemPrompt.
	SystemPrompt string
	// CoTPrompt is the chain-of-thought template. Empty selects
	// DefaultCoTPrompt. It must contain the {question} placeholder.
	CoTPrompt string
	// Model is the display name to resolve in the gateway registry.
	Model string
	// Question is the user's question.
	Question string
	// Document is optional extracted document text, inserted verbatim.
	Document string
	// UseCoT selects reasoned mode (two calls) over direct mode (one call).
	UseCoT bool
}

// Result is the structured outcome of one pipeline run.
type Result struct {
	RunID  string
	Status Status
	// Error carries a human-readable failure description when Status is
	// StatusFailed. It is never folded into FinalResponse.
	Error string

	Question        string
	InitialResponse string
	Thinking        string
	Reflection      string
	FinalResponse   string

	// Echo of the prompts actually used. CotPrompt is empty in direct mode.
	SystemPrompt string
	CotPrompt    string
}

// Runner drives pipeline runs against a model registry.
type Runner struct {
	registry *gateway.Registry
}

// New creates a Runner bound to a registry.
func New(registry *gateway.Registry) *Runner {
	return &Runner{registry: registry}
}

// Run executes the pipeline. The model is resolved before any backend work;
// gateway and input errors are converted into a failed Result at this
// boundary.
func (r *Runner) Run(ctx context.Context, cfg Config) Result {
	runID := uuid.New().String()

	systemPrompt := cfg.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}

	fail := func(description string) Result {
		logging.Get(logging.CategoryPipeline).Errorf("run %s failed: %s", runID, description)
		return Result{
			RunID:    runID,
			Status:   StatusFailed,
			Error:    description,
			Question: cfg.Question,
		}
	}

	if strings.TrimSpace(cfg.Question) == "" {
		return fail("question must not be empty")
	}
	if _, err := r.registry.Resolve(cfg.Model); err != nil {
		return fail(err.Error())
	}

	if !cfg.UseCoT {
		return r.runDirect(ctx, cfg, systemPrompt, runID, fail)
	}
	return r.runReasoned(ctx, cfg, systemPrompt, runID, fail)
}

// runDirect performs the single-call variant: no thinking, no reflection.
func (r *Runner) runDirect(ctx context.Context, cfg Config, systemPrompt, runID string, fail func(string) Result) Result {
	logging.Pipeline("run %s: direct mode, model=%q", runID, cfg.Model)

	prompt := buildDirectPrompt(systemPrompt, cfg.Document, cfg.Question)
	text, err := r.registry.Invoke(ctx, cfg.Model, prompt)
	if err != nil {
		return fail(err.Error())
	}

	return Result{
		RunID:         runID,
		Status:        StatusOK,
		Question:      cfg.Question,
		FinalResponse: text,
		SystemPrompt:  systemPrompt,
	}
}

// runReasoned performs the two-call variant. The combined call's prompt does
// not depend on the initial call's result, so both are issued concurrently.
func (r *Runner) runReasoned(ctx context.Context, cfg Config, systemPrompt, runID string, fail func(string) Result) Result {
	cotPrompt := cfg.CoTPrompt
	if cotPrompt == "" {
		cotPrompt = DefaultCoTPrompt
	}
	if !strings.Contains(cotPrompt, PlaceholderQuestion) {
		return fail("chain-of-thought template is missing the " + PlaceholderQuestion + " placeholder")
	}

	logging.Pipeline("run %s: reasoned mode, model=%q", runID, cfg.Model)

	initialPrompt := buildInitialPrompt(systemPrompt, cfg.Document, cfg.Question)
	combinedPrompt := renderCoT(cotPrompt, systemPrompt, cfg.Document, cfg.Question)

	var initial, combined string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		text, err := r.registry.Invoke(gctx, cfg.Model, initialPrompt)
		if err != nil {
			return err
		}
		initial = text
		return nil
	})
	g.Go(func() error {
		text, err := r.registry.Invoke(gctx, cfg.Model, combinedPrompt)
		if err != nil {
			return err
		}
		combined = text
		return nil
	})
	if err := g.Wait(); err != nil {
		return fail(err.Error())
	}

	thinking, reflection, final := splitCombined(combined)
	logging.PipelineDebug("run %s: thinking_len=%d reflection_len=%d final_len=%d",
		runID, len(thinking), len(reflection), len(final))

	return Result{
		RunID:           runID,
		Status:          StatusOK,
		Question:        cfg.Question,
		InitialResponse: initial,
		Thinking:        thinking,
		Reflection:      reflection,
		FinalResponse:   final,
		SystemPrompt:    systemPrompt,
		CotPrompt:       cotPrompt,
	}
}

// splitCombined isolates the thinking, reflection, and final-answer parts of
// the combined response. Model output is not schema-guaranteed, so each part
// has defined fallback semantics:
//   - thinking: absent tag falls back to the full unparsed response;
//   - reflection: absent tag yields an empty reflection;
//   - final answer: absent <output> falls back to the text outside the
//     thinking block, or the full response when nothing else remains.
func splitCombined(raw string) (thinking, reflection, final string) {
	// extract.Tag returns the original text on a miss, which is exactly the
	// thinking fallback.
	thinking, _ = extract.Tag("thinking", raw)

	reflection, found := extract.Tag("reflection", raw)
	if !found {
		reflection = ""
	}

	final, found = extract.Tag("output", raw)
	if !found {
		final = extract.Strip("thinking", raw)
		if final == "" {
			final = raw
		}
	}
	return thinking, reflection, final
}

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"cotreflect/internal/config"
	"cotreflect/internal/document"
	"cotreflect/internal/gateway"
	"cotreflect/internal/pipeline"
	"cotreflect/internal/snapshot"
)

var (
	askModel    string
	askDirect   bool
	askFile     string
	askSave     bool
	askName     string
	askTags     string
	askTimeout  time.Duration
	sectionHead = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Run the reflection pipeline on a question",
	Long: `Run the reflection pipeline on a question.

By default the pipeline makes two model calls: one for an unreasoned
initial answer and one combined chain-of-thought call whose response is
split into thinking, reflection, and final answer. --direct skips the
reasoning structure and returns a single comprehensive answer.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askModel, "model", "", "display model name (default from config)")
	askCmd.Flags().BoolVar(&askDirect, "direct", false, "skip chain-of-thought reasoning")
	askCmd.Flags().StringVar(&askFile, "file", "", "UTF-8 text document to ground the question in")
	askCmd.Flags().BoolVar(&askSave, "save", false, "save the run as a snapshot")
	askCmd.Flags().StringVar(&askName, "name", "", "snapshot name (with --save)")
	askCmd.Flags().StringVar(&askTags, "tags", "", "comma-separated snapshot tags (with --save)")
	askCmd.Flags().DurationVar(&askTimeout, "timeout", 5*time.Minute, "per-run timeout")
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.TrimSpace(strings.Join(args, " "))

	ctx, cancel := context.WithTimeout(cmd.Context(), askTimeout)
	defer cancel()

	registry, err := gateway.NewRegistryFromConfig(ctx, cfg)
	if err != nil {
		return err
	}

	model := askModel
	if model == "" {
		model = cfg.Model
	}

	prompts, err := config.LoadPrompts(cfg.PromptsPath)
	if err != nil {
		return err
	}

	docText, err := readDocument(askFile)
	if err != nil {
		return err
	}

	result := pipeline.New(registry).Run(ctx, pipeline.Config{
		SystemPrompt: prompts.SystemPrompt,
		CoTPrompt:    prompts.CoTPrompt,
		Model:        model,
		Question:     question,
		Document:     docText,
		UseCoT:       !askDirect,
	})

	if result.Status != pipeline.StatusOK {
		return fmt.Errorf("pipeline run failed: %s", result.Error)
	}

	printResult(result)

	if askSave {
		id, err := saveSnapshot(result, model)
		if err != nil {
			return err
		}
		fmt.Printf("\nSaved snapshot %d\n", id)
	}
	return nil
}

// readDocument loads and extracts the optional grounding document.
func readDocument(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read document %s: %w", path, err)
	}
	text, err := document.PlainText{}.ExtractText(raw)
	if err != nil {
		return "", err
	}
	return text, nil
}

func printResult(result pipeline.Result) {
	if result.InitialResponse != "" {
		printSection("Initial Response", result.InitialResponse, false)
	}
	if result.Thinking != "" {
		printSection("Thinking", result.Thinking, false)
	}
	if result.Reflection != "" {
		printSection("Reflection", result.Reflection, false)
	}
	printSection("Final Answer", result.FinalResponse, true)
}

// printSection writes one labelled part of the result. The final answer is
// rendered as markdown; intermediate reasoning stays plain.
func printSection(title, body string, markdown bool) {
	fmt.Println(sectionHead.Render("## " + title))
	if markdown {
		if renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		); err == nil {
			if out, err := renderer.Render(body); err == nil {
				fmt.Print(out)
				fmt.Println()
				return
			}
		}
	}
	fmt.Println(body)
	fmt.Println()
}

func saveSnapshot(result pipeline.Result, model string) (int64, error) {
	store, err := snapshot.NewStore(cfg.DBPath)
	if err != nil {
		return 0, err
	}
	defer store.Close()

	name := askName
	if name == "" {
		name = result.Question
	}

	return store.Save(snapshot.Record{
		Name:            name,
		ModelName:       model,
		UserPrompt:      result.Question,
		SystemPrompt:    result.SystemPrompt,
		CotPrompt:       result.CotPrompt,
		InitialResponse: result.InitialResponse,
		Thinking:        result.Thinking,
		Reflection:      result.Reflection,
		FinalResponse:   result.FinalResponse,
		Tags:            askTags,
	})
}

package llm

import (
	"context"
	"fmt"
	"io"
	"time"
)

// EnsureOllamaReady checks that Ollama is running and that the fast and embed
// models are available, pulling missing ones with progress output written to
// w. After the models are present it warms up the fast model so extraction
// calls don't pay the cold-load penalty. Returns a non-nil error if Ollama is
// unreachable.
func EnsureOllamaReady(ctx context.Context, o *Ollama, w io.Writer) error {
	if !o.IsRunning(ctx) {
		return fmt.Errorf("Ollama is not running. Start it with: ollama serve")
	}

	for _, model := range []string{o.fastModel, o.embedModel} {
		if o.HasModel(ctx, model) {
			fmt.Fprintf(w, "model %s: ready\n", model)
			continue
		}

		fmt.Fprintf(w, "model %s: pulling...\n", model)
		err := o.PullModel(ctx, model, func(p PullProgress) {
			if p.Total > 0 {
				pct := float64(p.Completed) / float64(p.Total) * 100
				fmt.Fprintf(w, "  %s %.0f%%\n", p.Status, pct)
			} else {
				fmt.Fprintf(w, "  %s\n", p.Status)
			}
		})
		if err != nil {
			return fmt.Errorf("pulling model %s: %w", model, err)
		}
		fmt.Fprintf(w, "model %s: ready\n", model)
	}

	fmt.Fprintf(w, "model %s: warming up...\n", o.fastModel)
	warmCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	_, err := o.Chat(warmCtx, []Message{
		{Role: "user", Content: "ping"},
	}, nil)
	if err != nil {
		fmt.Fprintf(w, "model %s: warm-up failed (non-fatal): %v\n", o.fastModel, err)
	} else {
		fmt.Fprintf(w, "model %s: warm\n", o.fastModel)
	}

	return nil
}

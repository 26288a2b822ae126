package toolbox

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// CodeInput carries a snippet for the simulated sandbox.
type CodeInput struct {
	Code     string `json:"code" jsonschema:"required,description=Source code to execute"`
	Language string `json:"language,omitempty" jsonschema:"description=Programming language of the snippet (default python)"`
}

// CodeResult reports the simulated execution outcome.
type CodeResult struct {
	Status   string `json:"status"`
	Stdout   string `json:"stdout"`
	Language string `json:"language"`
}

func (tb *Toolbox) executeCode(ctx context.Context, in CodeInput) (CodeResult, error) {
	if in.Code == "" {
		return CodeResult{}, errors.New("code is required")
	}
	language := in.Language
	if language == "" {
		language = "python"
	}

	// Simulated sandbox latency, interruptible.
	timer := time.NewTimer(tb.sandboxDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return CodeResult{}, ctx.Err()
	}

	return CodeResult{
		Status:   "success",
		Stdout:   fmt.Sprintf("Executed %d bytes of %s in the sandbox.", len(in.Code), language),
		Language: language,
	}, nil
}

// KnowledgeInput carries a retrieval query.
type KnowledgeInput struct {
	Query string `json:"query" jsonschema:"required,description=Topic to retrieve knowledge about"`
}

// KnowledgeResult returns retrieved snippets.
type KnowledgeResult struct {
	Status   string   `json:"status"`
	Snippets []string `json:"snippets"`
}

var knowledgeBase = []struct {
	key     string
	snippet string
}{
	{"fan", "The smart fan supports three modes: low, medium, and high. Speed is a percentage from 0 to 100."},
	{"weather", "Weather readings are point-in-time snapshots; repeated queries may return different values."},
	{"github", "Repository search ranks results by stars in descending order and returns at most five entries."},
}

func (tb *Toolbox) retrieveKnowledge(in KnowledgeInput) (KnowledgeResult, error) {
	if in.Query == "" {
		return KnowledgeResult{}, errors.New("query is required")
	}
	q := strings.ToLower(in.Query)
	var snippets []string
	for _, entry := range knowledgeBase {
		if strings.Contains(q, entry.key) {
			snippets = append(snippets, entry.snippet)
		}
	}
	if len(snippets) == 0 {
		snippets = []string{fmt.Sprintf("No knowledge base entries matched %q.", in.Query)}
	}
	return KnowledgeResult{Status: "success", Snippets: snippets}, nil
}

// CritiqueInput carries a snippet for review.
type CritiqueInput struct {
	Code string `json:"code" jsonschema:"required,description=Source code to review"`
}

// CritiqueResult returns review notes.
type CritiqueResult struct {
	Status string   `json:"status"`
	Notes  []string `json:"notes"`
}

func (tb *Toolbox) performCodeCritique(in CritiqueInput) (CritiqueResult, error) {
	if in.Code == "" {
		return CritiqueResult{}, errors.New("code is required")
	}

	var notes []string
	if strings.Contains(in.Code, "TODO") {
		notes = append(notes, "Contains TODO markers; resolve them before shipping.")
	}
	for _, line := range strings.Split(in.Code, "\n") {
		if len(line) > 100 {
			notes = append(notes, "Has lines longer than 100 characters; consider wrapping.")
			break
		}
	}
	if !strings.Contains(in.Code, "//") && !strings.Contains(in.Code, "#") {
		notes = append(notes, "No comments found; document the non-obvious parts.")
	}
	if strings.Contains(in.Code, "panic(") {
		notes = append(notes, "Calls panic; prefer returning errors.")
	}
	if len(notes) == 0 {
		notes = []string{"No issues found."}
	}
	return CritiqueResult{Status: "success", Notes: notes}, nil
}

package events

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ThreeDotsLabs/watermill/message"
	"gopkg.in/yaml.v3"
)

// repoSearchResult matches the payload shape returned by the search_github_repo
// tool. Anything that doesn't parse into this shape falls back to the generic
// key-value dump.
type repoSearchResult struct {
	Status  string `json:"status"`
	Results []struct {
		Name        string `json:"name"`
		URL         string `json:"url"`
		Description string `json:"description"`
		Stars       int    `json:"stars"`
	} `json:"results"`
}

const repoSearchToolName = "search_github_repo"

// StepPrinterFunc returns a watermill handler that renders chat events to w.
// It is the console presentation adapter: a pure sink over the event stream.
func StepPrinterFunc(name string, w io.Writer) func(msg *message.Message) error {
	return func(msg *message.Message) error {
		defer msg.Ack()

		e, err := NewEventFromJson(msg.Payload)
		if err != nil {
			return err
		}

		switch p_ := e.(type) {
		case *EventUserMessage:
			// the REPL echoes user input itself; headless consumers may want it
			return nil

		case *EventStart:
			return nil

		case *EventFinal:
			prefix := ""
			if name != "" {
				prefix = name + ": "
			}
			text := p_.Text
			if !strings.HasSuffix(text, "\n") {
				text += "\n"
			}
			_, err = fmt.Fprintf(w, "\n%s%s", prefix, text)
			return err

		case *EventError:
			_, err = fmt.Fprintf(w, "\n[error] %s\n", p_.ErrorString)
			return err

		case *EventToolCall:
			_, err = fmt.Fprintf(w, "\n[tool] %s requested with %s\n", p_.ToolCall.Name, compactOrRaw(p_.ToolCall.Input))
			return err

		case *EventToolCallExecute:
			_, err = fmt.Fprintf(w, "[tool] calling %s ...\n", p_.ToolCall.Name)
			return err

		case *EventToolCallExecutionResult:
			return printToolResult(w, p_.ToolResult)

		case *EventInfo:
			if _, err := fmt.Fprintf(w, "\n[i] %s\n", p_.Message); err != nil {
				return err
			}
			if len(p_.Data) > 0 {
				v_, err := yaml.Marshal(p_.Data)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(w, "%s", v_)
				return err
			}
			return nil
		}

		return nil
	}
}

func printToolResult(w io.Writer, r ToolResult) error {
	if r.Error != "" {
		_, err := fmt.Fprintf(w, "[tool] %s failed: %s\n", r.Name, r.Error)
		return err
	}

	if r.Name == repoSearchToolName {
		var parsed repoSearchResult
		if err := json.Unmarshal([]byte(r.Result), &parsed); err == nil && parsed.Status == "success" {
			if _, err := fmt.Fprintf(w, "[tool] %s found %d repositories:\n", r.Name, len(parsed.Results)); err != nil {
				return err
			}
			for _, repo := range parsed.Results {
				desc := repo.Description
				if desc == "" {
					desc = "(no description)"
				}
				if _, err := fmt.Fprintf(w, "  - %s (%d stars) %s\n    %s\n", repo.Name, repo.Stars, repo.URL, desc); err != nil {
					return err
				}
			}
			return nil
		}
	}

	// Generic key-value dump for every other tool.
	var generic map[string]any
	if err := json.Unmarshal([]byte(r.Result), &generic); err == nil {
		v_, err := yaml.Marshal(generic)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "[tool] %s returned:\n%s", r.Name, indent(string(v_), "  "))
		return err
	}

	_, err := fmt.Fprintf(w, "[tool] %s returned: %s\n", r.Name, r.Result)
	return err
}

func compactOrRaw(s string) string {
	var tmp any
	if err := json.Unmarshal([]byte(s), &tmp); err != nil {
		return s
	}
	b, err := json.Marshal(tmp)
	if err != nil {
		return s
	}
	return string(b)
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n") + "\n"
}

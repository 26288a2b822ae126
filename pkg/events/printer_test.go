package events

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

func printEvent(t *testing.T, w *bytes.Buffer, e Event) {
	t.Helper()
	b, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	h := StepPrinterFunc("assistant", w)
	if err := h(message.NewMessage(watermill.NewUUID(), b)); err != nil {
		t.Fatalf("printer handler: %v", err)
	}
}

func TestStepPrinterFunc_FinalTextGetsNamePrefix(t *testing.T) {
	var buf bytes.Buffer
	printEvent(t, &buf, NewFinalEvent(EventMetadata{ID: uuid.New()}, "the weather is fine"))

	out := buf.String()
	if !strings.Contains(out, "assistant: the weather is fine") {
		t.Fatalf("unexpected printer output: %q", out)
	}
}

func TestStepPrinterFunc_RendersRepoSearchResultsAsList(t *testing.T) {
	payload := `{"status":"success","results":[` +
		`{"name":"zerolog","url":"https://github.com/rs/zerolog","description":"Zero allocation JSON logger","stars":10000},` +
		`{"name":"watermill","url":"https://github.com/ThreeDotsLabs/watermill","description":"","stars":7000}]}`

	var buf bytes.Buffer
	printEvent(t, &buf, NewToolCallExecutionResultEvent(EventMetadata{ID: uuid.New()},
		ToolResult{ID: "c1", Name: "search_github_repo", Result: payload}))

	out := buf.String()
	if !strings.Contains(out, "found 2 repositories") {
		t.Fatalf("expected repository count in output: %q", out)
	}
	if !strings.Contains(out, "zerolog (10000 stars) https://github.com/rs/zerolog") {
		t.Fatalf("expected repo line in output: %q", out)
	}
	if !strings.Contains(out, "(no description)") {
		t.Fatalf("expected placeholder for empty description: %q", out)
	}
}

func TestStepPrinterFunc_GenericToolResultIsYAMLDump(t *testing.T) {
	var buf bytes.Buffer
	printEvent(t, &buf, NewToolCallExecutionResultEvent(EventMetadata{ID: uuid.New()},
		ToolResult{ID: "c2", Name: "getWeather", Result: `{"temperature":"23° F","location":"Tokyo, JP"}`}))

	out := buf.String()
	if !strings.Contains(out, "getWeather returned:") {
		t.Fatalf("expected generic header: %q", out)
	}
	if !strings.Contains(out, "temperature: 23° F") {
		t.Fatalf("expected yaml key/value in output: %q", out)
	}
}

func TestStepPrinterFunc_FailedToolResult(t *testing.T) {
	var buf bytes.Buffer
	printEvent(t, &buf, NewToolCallExecutionResultEvent(EventMetadata{ID: uuid.New()},
		ToolResult{ID: "c3", Name: "search_github_repo", Error: "connection refused"}))

	out := buf.String()
	if !strings.Contains(out, "search_github_repo failed: connection refused") {
		t.Fatalf("expected failure line: %q", out)
	}
}

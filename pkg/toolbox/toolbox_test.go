package toolbox

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"reflect"
	"regexp"
	"testing"
	"time"

	"github.com/gemchat/gemchat/pkg/tools"
)

func TestRegisterAll_SevenToolsInShippedOrder(t *testing.T) {
	reg := tools.NewInMemoryToolRegistry()
	if err := New().RegisterAll(reg); err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}

	want := []string{
		"getWeather", "getCurrentTime", "controlFan",
		"search_github_repo", "execute_code", "retrieve_knowledge", "perform_code_critique",
	}
	listed := reg.ListTools()
	if len(listed) != len(want) {
		t.Fatalf("expected %d tools, got %d", len(want), len(listed))
	}
	for i, name := range want {
		if listed[i].Name != name {
			t.Fatalf("position %d: expected %s, got %s", i, name, listed[i].Name)
		}
		if listed[i].Parameters == nil {
			t.Fatalf("tool %s has no parameter schema", name)
		}
	}
}

func TestGetWeather_TemperaturePatternAndEcho(t *testing.T) {
	tb := New(WithRandSource(rand.NewSource(1)))
	pattern := regexp.MustCompile(`^[1-4][0-9]° F$`)

	for i := 0; i < 50; i++ {
		res, err := tb.getWeather(WeatherInput{Location: "Tokyo, JP"})
		if err != nil {
			t.Fatalf("getWeather: %v", err)
		}
		if !pattern.MatchString(res.Temperature) {
			t.Fatalf("temperature %q does not match pattern", res.Temperature)
		}
		if res.Location != "Tokyo, JP" {
			t.Fatalf("location not echoed unchanged: %q", res.Location)
		}
		if res.Unit != "fahrenheit" {
			t.Fatalf("expected fahrenheit default, got %q", res.Unit)
		}
	}
}

func TestGetWeather_CelsiusUnit(t *testing.T) {
	tb := New(WithRandSource(rand.NewSource(1)))
	res, err := tb.getWeather(WeatherInput{Location: "Berlin, DE", Unit: "celsius"})
	if err != nil {
		t.Fatalf("getWeather: %v", err)
	}
	if !regexp.MustCompile(`^[1-4][0-9]° C$`).MatchString(res.Temperature) {
		t.Fatalf("unexpected celsius reading: %q", res.Temperature)
	}
}

func TestGetWeather_ParallelBatch(t *testing.T) {
	reg := tools.NewInMemoryToolRegistry()
	if err := New(WithRandSource(rand.NewSource(3))).RegisterAll(reg); err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}

	calls := make([]tools.ToolCall, 8)
	for i := range calls {
		calls[i] = tools.ToolCall{
			ID:        "c" + string(rune('0'+i)),
			Name:      "getWeather",
			Arguments: json.RawMessage(`{"location":"Tokyo, JP"}`),
		}
	}

	// Parallel dispatch shares the toolbox rng across workers; run under -race.
	e := tools.NewDefaultToolExecutor(tools.DefaultToolConfig().WithMaxParallelTools(4))
	results := e.ExecuteToolCalls(context.Background(), calls, reg)

	pattern := regexp.MustCompile(`^[1-4][0-9]° F$`)
	for i, res := range results {
		if res.Error != "" {
			t.Fatalf("call %d failed: %s", i, res.Error)
		}
		weather, ok := res.Result.(WeatherResult)
		if !ok {
			t.Fatalf("call %d: unexpected result type %T", i, res.Result)
		}
		if !pattern.MatchString(weather.Temperature) {
			t.Fatalf("call %d: temperature %q does not match pattern", i, weather.Temperature)
		}
	}
}

func TestGetCurrentTime_Timezones(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tb := New(WithClock(func() time.Time { return fixed }))

	res, err := tb.getCurrentTime(TimeInput{Timezone: "Asia/Tokyo"})
	if err != nil {
		t.Fatalf("getCurrentTime: %v", err)
	}
	if res.Time != "2025-06-01 21:00:00" {
		t.Fatalf("unexpected time: %q", res.Time)
	}
	if res.Timezone != "Asia/Tokyo" {
		t.Fatalf("unexpected timezone: %q", res.Timezone)
	}

	if _, err := tb.getCurrentTime(TimeInput{Timezone: "Not/AZone"}); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}

func TestControlFan_ExactMessage(t *testing.T) {
	tb := New()
	res, err := tb.controlFan(FanInput{Speed: 75, Mode: "high"})
	if err != nil {
		t.Fatalf("controlFan: %v", err)
	}
	if res.Status != "success" {
		t.Fatalf("unexpected status: %q", res.Status)
	}
	if res.Message != "Fan set to 75% speed in high mode." {
		t.Fatalf("message contract broken: %q", res.Message)
	}
}

func TestControlFan_RejectsBadInput(t *testing.T) {
	tb := New()
	if _, err := tb.controlFan(FanInput{Speed: 50, Mode: "turbo"}); err == nil {
		t.Fatal("expected error for invalid mode")
	}
	if _, err := tb.controlFan(FanInput{Speed: 150, Mode: "high"}); err == nil {
		t.Fatal("expected error for out-of-range speed")
	}
}

func TestSearchGithubRepo_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/repositories" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "zerolog" {
			t.Errorf("unexpected query: %s", got)
		}
		_, _ = w.Write([]byte(`{"items":[
			{"full_name":"rs/zerolog","html_url":"https://github.com/rs/zerolog","description":"Zero allocation JSON logger","stargazers_count":10000}
		]}`))
	}))
	defer srv.Close()

	tb := New(WithGithubBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	res, err := tb.searchGithubRepo(context.Background(), SearchInput{Query: "zerolog"})
	if err != nil {
		t.Fatalf("searchGithubRepo: %v", err)
	}
	if res.Status != "success" || len(res.Results) != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	repo := res.Results[0]
	if repo.Name != "rs/zerolog" || repo.Stars != 10000 || repo.URL != "https://github.com/rs/zerolog" {
		t.Fatalf("unexpected repository: %+v", repo)
	}
}

func TestSearchGithubRepo_FailureShapeIsDeterministic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	tb := New(WithGithubBaseURL(srv.URL), WithHTTPClient(srv.Client()))

	first, err := tb.searchGithubRepo(context.Background(), SearchInput{Query: "anything"})
	if err != nil {
		t.Fatalf("failure must be in-band, not an error: %v", err)
	}
	second, err := tb.searchGithubRepo(context.Background(), SearchInput{Query: "anything"})
	if err != nil {
		t.Fatalf("failure must be in-band, not an error: %v", err)
	}

	if first.Status != "failure" || first.Error == "" {
		t.Fatalf("expected failure shape with non-empty error: %+v", first)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same failure cause must yield identical payloads: %+v vs %+v", first, second)
	}
}

func TestSearchGithubRepo_UnreachableHost(t *testing.T) {
	// Closed server: connection refused.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	tb := New(WithGithubBaseURL(base))
	res, err := tb.searchGithubRepo(context.Background(), SearchInput{Query: "anything"})
	if err != nil {
		t.Fatalf("unreachable host must be in-band: %v", err)
	}
	if res.Status != "failure" || res.Error == "" {
		t.Fatalf("expected failure shape: %+v", res)
	}
}

func TestExecuteCode_SimulatedSandbox(t *testing.T) {
	tb := New(WithSandboxDelay(5 * time.Millisecond))
	res, err := tb.executeCode(context.Background(), CodeInput{Code: "print(1)"})
	if err != nil {
		t.Fatalf("executeCode: %v", err)
	}
	if res.Status != "success" || res.Language != "python" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Stdout == "" {
		t.Fatal("expected simulated stdout")
	}
}

func TestExecuteCode_Cancellation(t *testing.T) {
	tb := New(WithSandboxDelay(5 * time.Second))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := tb.executeCode(ctx, CodeInput{Code: "while True: pass"}); err == nil {
		t.Fatal("expected context error")
	}
}

func TestRetrieveKnowledge_CannedSnippets(t *testing.T) {
	tb := New()
	res, err := tb.retrieveKnowledge(KnowledgeInput{Query: "how does the fan work"})
	if err != nil {
		t.Fatalf("retrieveKnowledge: %v", err)
	}
	if len(res.Snippets) != 1 {
		t.Fatalf("expected a single fan snippet, got %v", res.Snippets)
	}

	miss, err := tb.retrieveKnowledge(KnowledgeInput{Query: "quantum gravity"})
	if err != nil {
		t.Fatalf("retrieveKnowledge: %v", err)
	}
	if len(miss.Snippets) != 1 {
		t.Fatalf("expected placeholder snippet, got %v", miss.Snippets)
	}
}

func TestPerformCodeCritique_Heuristics(t *testing.T) {
	tb := New()
	res, err := tb.performCodeCritique(CritiqueInput{Code: "x := 1 // TODO fix\npanic(\"boom\")"})
	if err != nil {
		t.Fatalf("performCodeCritique: %v", err)
	}
	if len(res.Notes) != 2 {
		t.Fatalf("expected TODO and panic notes, got %v", res.Notes)
	}

	clean, err := tb.performCodeCritique(CritiqueInput{Code: "// fine\nx := 1"})
	if err != nil {
		t.Fatalf("performCodeCritique: %v", err)
	}
	if len(clean.Notes) != 1 || clean.Notes[0] != "No issues found." {
		t.Fatalf("unexpected notes for clean code: %v", clean.Notes)
	}
}

func TestTools_InvokableThroughExecutor(t *testing.T) {
	reg := tools.NewInMemoryToolRegistry()
	if err := New(WithRandSource(rand.NewSource(7))).RegisterAll(reg); err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}

	e := tools.NewDefaultToolExecutor(tools.DefaultToolConfig())
	res := e.ExecuteToolCall(context.Background(), tools.ToolCall{
		ID:        "c1",
		Name:      "controlFan",
		Arguments: json.RawMessage(`{"speed":75,"mode":"high"}`),
	}, reg)

	if res.Error != "" {
		t.Fatalf("unexpected failure: %s", res.Error)
	}
	fan, ok := res.Result.(FanResult)
	if !ok {
		t.Fatalf("unexpected result type: %T", res.Result)
	}
	if fan.Message != "Fan set to 75% speed in high mode." {
		t.Fatalf("message contract broken through executor: %q", fan.Message)
	}
}

package toolbox

import (
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/gemchat/gemchat/pkg/tools"
)

// Toolbox bundles the demo tools the chat client ships with. Everything but
// the GitHub search is simulated; the contracts are what matter, the bodies
// exist so the model has something to call.
type Toolbox struct {
	httpClient    *http.Client
	githubBaseURL string
	sandboxDelay  time.Duration
	now           func() time.Time

	// rand.Rand is not safe for concurrent use and batch dispatch runs tools
	// in parallel, so all draws go through randIntn.
	rngMu sync.Mutex
	rng   *rand.Rand
}

func (tb *Toolbox) randIntn(n int) int {
	tb.rngMu.Lock()
	defer tb.rngMu.Unlock()
	return tb.rng.Intn(n)
}

type Option func(*Toolbox)

// WithHTTPClient overrides the client used for live tool calls.
func WithHTTPClient(c *http.Client) Option {
	return func(tb *Toolbox) { tb.httpClient = c }
}

// WithGithubBaseURL points the repository search at a different endpoint.
func WithGithubBaseURL(base string) Option {
	return func(tb *Toolbox) { tb.githubBaseURL = base }
}

// WithSandboxDelay changes the simulated execution latency of execute_code.
func WithSandboxDelay(d time.Duration) Option {
	return func(tb *Toolbox) { tb.sandboxDelay = d }
}

// WithClock overrides the time source for getCurrentTime.
func WithClock(now func() time.Time) Option {
	return func(tb *Toolbox) { tb.now = now }
}

// WithRandSource seeds the weather simulation deterministically.
func WithRandSource(src rand.Source) Option {
	return func(tb *Toolbox) { tb.rng = rand.New(src) }
}

// New creates a Toolbox with production defaults.
func New(opts ...Option) *Toolbox {
	tb := &Toolbox{
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		githubBaseURL: "https://api.github.com",
		sandboxDelay:  1500 * time.Millisecond,
		now:           time.Now,
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(tb)
		}
	}
	return tb
}

// RegisterAll registers the seven demo tools on the registry in their shipped
// order. Registration failures are configuration defects and abort startup.
func (tb *Toolbox) RegisterAll(reg tools.ToolRegistry) error {
	for _, td := range []struct {
		name, description string
		fn                interface{}
	}{
		{"getWeather", "Gets the current weather conditions for a given location.", tb.getWeather},
		{"getCurrentTime", "Gets the current time, optionally in a specific IANA timezone.", tb.getCurrentTime},
		{"controlFan", "Sets the speed and mode of the smart fan.", tb.controlFan},
		{"search_github_repo", "Searches GitHub for repositories matching a query.", tb.searchGithubRepo},
		{"execute_code", "Executes a code snippet in a sandbox and returns its output.", tb.executeCode},
		{"retrieve_knowledge", "Retrieves knowledge base snippets relevant to a query.", tb.retrieveKnowledge},
		{"perform_code_critique", "Reviews a code snippet and returns critique notes.", tb.performCodeCritique},
	} {
		def, err := tools.NewToolFromFunc(td.name, td.description, td.fn)
		if err != nil {
			return errors.Wrapf(err, "failed to build tool %s", td.name)
		}
		if err := reg.RegisterTool(td.name, *def); err != nil {
			return errors.Wrapf(err, "failed to register tool %s", td.name)
		}
	}
	return nil
}

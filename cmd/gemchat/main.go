package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/gemchat/gemchat/pkg/engine"
	"github.com/gemchat/gemchat/pkg/engine/gemini"
	"github.com/gemchat/gemchat/pkg/events"
	"github.com/gemchat/gemchat/pkg/session"
	"github.com/gemchat/gemchat/pkg/toolbox"
	"github.com/gemchat/gemchat/pkg/toolloop"
	"github.com/gemchat/gemchat/pkg/tools"
)

const defaultSystemPrompt = "You are a helpful assistant with access to tools. " +
	"Use them when they help answer the user's question."

var rootCmd = &cobra.Command{
	Use:   "gemchat",
	Short: "Chat with a Gemini model that can call tools",
	Long: `gemchat is a terminal chat client for Google's Gemini models.

The model can call a set of demo tools (weather, time, fan control, GitHub
repository search, a code sandbox, knowledge retrieval, and code critique)
and gemchat drives the tool-calling loop until the model produces an answer.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile := viper.GetString("config"); cfgFile != "" {
			viper.SetConfigFile(cfgFile)
			if err := viper.ReadInConfig(); err != nil {
				return errors.Wrap(err, "failed to read config file")
			}
		}
		lvl, err := zerolog.ParseLevel(viper.GetString("log-level"))
		if err != nil {
			return errors.Wrapf(err, "invalid log level %q", viper.GetString("log-level"))
		}
		zerolog.SetGlobalLevel(lvl)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd, args)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("model", "gemini-2.0-flash", "Gemini model to use")
	pf.String("api-key", "", "Gemini API key (or GEMINI_API_KEY)")
	pf.String("system-prompt", defaultSystemPrompt, "system prompt seeding the conversation")
	pf.Int("max-iterations", 5, "maximum tool-calling round-trips per request")
	pf.Duration("tool-timeout", 30*time.Second, "per-tool execution timeout")
	pf.Int("max-parallel-tools", 3, "maximum tools executed in parallel")
	pf.String("log-level", "warn", "log level (trace, debug, info, warn, error)")
	pf.String("config", "", "config file (default none)")

	for _, name := range []string{
		"model", "api-key", "system-prompt", "max-iterations",
		"tool-timeout", "max-parallel-tools", "log-level", "config",
	} {
		if err := viper.BindPFlag(name, pf.Lookup(name)); err != nil {
			panic(err)
		}
	}
	if err := viper.BindEnv("api-key", "GEMINI_API_KEY"); err != nil {
		panic(err)
	}
}

// buildSession assembles the registry, engine, loop, and session from the
// resolved configuration. Tool registration failures abort startup.
func buildSession() (*session.Session, tools.ToolRegistry, error) {
	registry := tools.NewInMemoryToolRegistry()
	if err := toolbox.New().RegisterAll(registry); err != nil {
		return nil, nil, err
	}

	eng, err := gemini.NewEngine(&engine.Settings{
		Model:        viper.GetString("model"),
		APIKey:       viper.GetString("api-key"),
		SystemPrompt: viper.GetString("system-prompt"),
	})
	if err != nil {
		return nil, nil, err
	}

	loop := toolloop.New(
		toolloop.WithEngine(eng),
		toolloop.WithRegistry(registry),
		toolloop.WithLoopConfig(toolloop.DefaultLoopConfig().
			WithMaxIterations(viper.GetInt("max-iterations"))),
		toolloop.WithToolConfig(tools.DefaultToolConfig().
			WithExecutionTimeout(viper.GetDuration("tool-timeout")).
			WithMaxParallelTools(viper.GetInt("max-parallel-tools"))),
	)

	sess := session.NewSession(loop, session.WithSystemPrompt(viper.GetString("system-prompt")))
	return sess, registry, nil
}

// withRouter runs fn with an event router printing chat events to w. It
// returns once fn is done and the router has drained.
func withRouter(ctx context.Context, w io.Writer, fn func(ctx context.Context) error) error {
	router, err := events.NewEventRouter()
	if err != nil {
		return errors.Wrap(err, "failed to create event router")
	}
	defer func() { _ = router.Close() }()

	router.AddHandler("chat-printer", "chat", events.StepPrinterFunc("", w))
	sink := events.NewWatermillSink(router.Publisher, "chat")

	eg := errgroup.Group{}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eg.Go(func() error {
		defer cancel()
		return router.Run(ctx)
	})
	eg.Go(func() error {
		defer cancel()
		<-router.Running()
		return fn(events.WithEventSinks(ctx, sink))
	})
	err = eg.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

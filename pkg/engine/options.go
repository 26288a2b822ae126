package engine

import (
	"github.com/gemchat/gemchat/pkg/events"
)

// Option is a functional option for configuring inference engines.
type Option func(*Config) error

// Config holds configuration shared by engine implementations.
type Config struct {
	// EventSinks receive inference events in the order they were added.
	EventSinks []events.EventSink
}

// NewConfig creates a new configuration with default values.
func NewConfig() *Config {
	return &Config{
		EventSinks: make([]events.EventSink, 0),
	}
}

// WithSink adds an EventSink to the configuration. Multiple sinks can be
// added and events are published to all of them.
func WithSink(sink events.EventSink) Option {
	return func(c *Config) error {
		c.EventSinks = append(c.EventSinks, sink)
		return nil
	}
}

// ApplyOptions applies a set of options to a configuration.
func ApplyOptions(config *Config, options ...Option) error {
	for _, option := range options {
		if err := option(config); err != nil {
			return err
		}
	}
	return nil
}

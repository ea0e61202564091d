package gateway

import (
	"fmt"
	"net/http"
	"time"

	"github.com/nmirabets/gen-ui-app/core/event"
	"github.com/nmirabets/gen-ui-app/core/protocol"
)

// Gateway kinds accepted by New.
const (
	KindConnect = "connect"
	KindStatic  = "static"
)

// Config holds gateway construction parameters.
type Config struct {
	// Kind selects the transport: "connect" for a remote agent, "static"
	// for the scripted in-process gateway.
	Kind string `json:"kind"`
	// URL is the remote agent base URL (connect kind).
	URL string `json:"url,omitempty"`
	// TimeoutSeconds bounds the HTTP client (connect kind); 0 means no
	// client-side timeout, leaving deadlines to the caller's context.
	TimeoutSeconds int `json:"timeout_seconds,omitempty"`
	// Reply is the canned model result (static kind); empty echoes input.
	Reply string `json:"reply,omitempty"`
	// DelayMillis postpones terminal settlement (static kind).
	DelayMillis int `json:"delay_ms,omitempty"`
}

// DefaultConfig returns a Config for the scripted echo gateway, so a fresh
// checkout works without a running agent.
func DefaultConfig() Config {
	return Config{Kind: KindStatic}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Kind != "" {
		c.Kind = source.Kind
	}
	if source.URL != "" {
		c.URL = source.URL
	}
	if source.TimeoutSeconds > 0 {
		c.TimeoutSeconds = source.TimeoutSeconds
	}
	if source.Reply != "" {
		c.Reply = source.Reply
	}
	if source.DelayMillis > 0 {
		c.DelayMillis = source.DelayMillis
	}
}

// New creates a Gateway from configuration.
func New(cfg *Config) (Gateway, error) {
	switch cfg.Kind {
	case KindConnect:
		httpClient := &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		}
		return NewConnectGateway(httpClient, cfg.URL), nil
	case KindStatic, "":
		g := &Static{Delay: time.Duration(cfg.DelayMillis) * time.Millisecond}
		if cfg.Reply != "" {
			reply := cfg.Reply
			g.Respond = func(protocol.TurnRequest) event.Terminal {
				return event.Single(event.Record{
					ModelInvocation: &event.ModelInvocation{Result: reply},
				})
			}
		}
		return g, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, cfg.Kind)
	}
}

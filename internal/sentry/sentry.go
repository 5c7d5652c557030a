package sentry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/socialchef/edgewatch/internal/monitor"
)

// Metrics receives counter increments. Sentry's Go SDK has no metrics API, so
// counters go to OpenTelemetry instead.
type Metrics interface {
	Add(ctx context.Context, name string, value float64, tags map[string]string) error
}

// Client is a monitor.Client backed by sentry-go. It owns its hub and never
// touches sentry's global hub.
type Client struct {
	hub       *sentry.Hub
	metrics   Metrics
	transport sentry.Transport
	log       *slog.Logger
}

var _ monitor.Client = (*Client)(nil)

type Option func(*Client)

// WithTransport replaces the HTTP transport events are delivered through.
func WithTransport(t sentry.Transport) Option {
	return func(c *Client) {
		c.transport = t
	}
}

// WithLogger sets the logger for local diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

func NewClient(metrics Metrics, opts ...Option) *Client {
	c := &Client{
		metrics: metrics,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Init initializes Sentry with the policy options. An empty DSN yields a
// client that drops every event.
func (c *Client) Init(opts monitor.Options) error {
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:              opts.DSN,
		Environment:      opts.Environment,
		Release:          opts.Release,
		AttachStacktrace: true,
		EnableTracing:    opts.TracesSampleRate > 0,
		TracesSampleRate: opts.TracesSampleRate,
		BeforeSend:       beforeSend(opts.Filter),
		Transport:        c.transport,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize Sentry: %w", err)
	}

	scope := sentry.NewScope()
	scope.SetTags(opts.Tags)
	c.hub = sentry.NewHub(client, scope)

	if opts.ProfilesSampleRate > 0 {
		c.log.Debug("Sentry Go SDK does not profile, ignoring profiles sample rate",
			"profiles_sample_rate", opts.ProfilesSampleRate)
	}
	if opts.DSN == "" && c.transport == nil {
		c.log.Info("Sentry DSN not configured, events will be dropped")
	}
	return nil
}

// Hub returns the root hub, nil before Init.
func (c *Client) Hub() *sentry.Hub {
	return c.hub
}

func (c *Client) AddBreadcrumb(ctx context.Context, b monitor.Breadcrumb) {
	hub := c.hubFor(ctx)
	if hub == nil {
		return
	}

	hub.AddBreadcrumb(&sentry.Breadcrumb{
		Category:  b.Category,
		Message:   b.Message,
		Level:     sentry.Level(b.Level),
		Data:      b.Data,
		Timestamp: time.Now(),
	}, nil)
}

func (c *Client) CaptureException(ctx context.Context, err error, cc monitor.CaptureContext) {
	hub := c.hubFor(ctx)
	if hub == nil {
		return
	}

	hub.WithScope(func(scope *sentry.Scope) {
		if len(cc.Fingerprint) > 0 {
			scope.SetFingerprint(cc.Fingerprint)
		}
		if len(cc.Tags) > 0 {
			scope.SetTags(cc.Tags)
		}
		if len(cc.Extra) > 0 {
			scope.SetContext("extra", cc.Extra)
		}
		hub.CaptureException(err)
	})
}

func (c *Client) IncrementMetric(ctx context.Context, name string, value float64, tags map[string]string) error {
	if c.metrics == nil {
		return fmt.Errorf("no metrics sink configured")
	}
	return c.metrics.Add(ctx, name, value, tags)
}

func (c *Client) StartChildSpan(parent monitor.Span, operation, description string) monitor.Span {
	if parent == nil {
		return monitor.NoopSpan{}
	}
	return parent.StartChild(operation, description)
}

// Flush waits for all pending Sentry events to be sent.
// Call this before the function instance exits.
func (c *Client) Flush(timeout time.Duration) bool {
	if c.hub == nil {
		return true
	}
	return c.hub.Flush(timeout)
}

// Recover captures a panic and forwards it to Sentry.
// Should be used with defer in main and goroutines.
func (c *Client) Recover() {
	if err := recover(); err != nil && c.hub != nil {
		c.hub.Recover(err)
		c.hub.Flush(2 * time.Second)
	}
}

func (c *Client) hubFor(ctx context.Context) *sentry.Hub {
	if ctx != nil {
		if hub := sentry.GetHubFromContext(ctx); hub != nil {
			return hub
		}
	}
	return c.hub
}

func beforeSend(filter monitor.EventFilter) func(*sentry.Event, *sentry.EventHint) *sentry.Event {
	return func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
		if filter == nil || hint == nil || hint.OriginalException == nil {
			return event
		}
		if filter(hint.OriginalException) == monitor.Drop {
			return nil
		}
		return event
	}
}

package monitor

import "context"

// Decision is the outcome of an EventFilter.
type Decision int

const (
	Send Decision = iota
	Drop
)

func (d Decision) String() string {
	if d == Drop {
		return "drop"
	}
	return "send"
}

// EventFilter is consulted by the client before every captured event is
// transmitted. original is the error the event was built from.
type EventFilter func(original error) Decision

// Options is the configuration bundle handed to Client.Init.
type Options struct {
	DSN                string
	Environment        string
	Release            string
	TracesSampleRate   float64
	ProfilesSampleRate float64
	Tags               map[string]string
	Filter             EventFilter
}

type Breadcrumb struct {
	Category string
	Message  string
	Level    Level
	Data     map[string]any
}

// CaptureContext carries optional grouping and enrichment for Capture.
type CaptureContext struct {
	Fingerprint []string
	Tags        map[string]string
	Extra       map[string]any
}

// Client is the capability the monitoring backend must provide. The
// backend owns batching, transport and retries.
type Client interface {
	Init(opts Options) error
	AddBreadcrumb(ctx context.Context, b Breadcrumb)
	CaptureException(ctx context.Context, err error, c CaptureContext)
	IncrementMetric(ctx context.Context, name string, value float64, tags map[string]string) error
	StartChildSpan(parent Span, operation, description string) Span
}

// Span is a timing segment owned by the backend.
type Span interface {
	StartChild(operation, description string) Span
	SetData(key string, value any)
	Finish()
}

// NoopSpan discards everything. It stands in when there is no parent.
type NoopSpan struct{}

func (NoopSpan) StartChild(string, string) Span { return NoopSpan{} }
func (NoopSpan) SetData(string, any)            {}
func (NoopSpan) Finish()                        {}

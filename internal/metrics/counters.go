package metrics

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "edgewatch/functions"

// Counters lazily creates one Float64Counter per metric name so handler code
// can track arbitrary business counters by name.
type Counters struct {
	meter metric.Meter

	mu       sync.Mutex
	counters map[string]metric.Float64Counter
}

// NewCounters returns a registry backed by meter, or by the global meter
// provider when meter is nil.
func NewCounters(meter metric.Meter) *Counters {
	if meter == nil {
		meter = otel.Meter(meterName)
	}
	return &Counters{
		meter:    meter,
		counters: make(map[string]metric.Float64Counter),
	}
}

// Add increments the counter called name by value.
func (c *Counters) Add(ctx context.Context, name string, value float64, tags map[string]string) error {
	if name == "" {
		return fmt.Errorf("metric name is required")
	}
	if value < 0 {
		return fmt.Errorf("counter %s cannot decrease (value %v)", name, value)
	}

	counter, err := c.counter(name)
	if err != nil {
		return err
	}

	counter.Add(ctx, value, metric.WithAttributes(Attributes(tags)...))
	return nil
}

func (c *Counters) counter(name string) (metric.Float64Counter, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if counter, ok := c.counters[name]; ok {
		return counter, nil
	}

	counter, err := c.meter.Float64Counter(name, metric.WithUnit("1"))
	if err != nil {
		return nil, fmt.Errorf("failed to create counter %s: %w", name, err)
	}
	c.counters[name] = counter
	return counter, nil
}

// Attributes converts tags into attributes ordered by key.
func Attributes(tags map[string]string) []attribute.KeyValue {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]attribute.KeyValue, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, attribute.String(k, tags[k]))
	}
	return attrs
}

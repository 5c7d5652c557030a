package monitor

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"strconv"
	"strings"
)

const (
	productionTraceSampleRate = 0.1
	defaultTraceSampleRate    = 1.0

	// KindValidation is the exception kind dropped by the production filter.
	KindValidation = "ValidationError"

	DefaultFunctionName = "edge-function"
	DefaultRuntime      = "go"
	DefaultDeployment   = "supabase-edge"
)

var ErrInvalidSampleRate = errors.New("invalid sample rate")

// Settings are the raw environment inputs a Policy is computed from.
type Settings struct {
	Environment  string
	DSN          string
	SampleRate   string
	Release      string
	FunctionName string
	Runtime      string
	Deployment   string
}

// Policy is the process-wide observability configuration. It is immutable
// once built and safe to share between requests.
type Policy struct {
	mode              Mode
	dsn               string
	traceSampleRate   float64
	profileSampleRate float64
	release           string
	tags              map[string]string
}

// NewPolicy resolves Settings into a Policy. A sample rate override that is
// not a float in [0, 1] is rejected.
func NewPolicy(s Settings) (Policy, error) {
	mode := ParseMode(s.Environment)

	traceRate, err := TraceSampleRate(mode, s.SampleRate)
	if err != nil {
		return Policy{}, err
	}

	return Policy{
		mode:              mode,
		dsn:               s.DSN,
		traceSampleRate:   traceRate,
		profileSampleRate: ProfileSampleRate(mode),
		release:           s.Release,
		tags: map[string]string{
			"function":   orDefault(s.FunctionName, DefaultFunctionName),
			"runtime":    orDefault(s.Runtime, DefaultRuntime),
			"deployment": orDefault(s.Deployment, DefaultDeployment),
		},
	}, nil
}

// TraceSampleRate resolves the trace sampling rate for a mode. A non-empty
// override always wins.
func TraceSampleRate(mode Mode, override string) (float64, error) {
	override = strings.TrimSpace(override)
	if override == "" {
		if mode.IsProduction() {
			return productionTraceSampleRate, nil
		}
		return defaultTraceSampleRate, nil
	}

	rate, err := strconv.ParseFloat(override, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidSampleRate, override)
	}
	if math.IsNaN(rate) || rate < 0 || rate > 1 {
		return 0, fmt.Errorf("%w: %q is outside [0, 1]", ErrInvalidSampleRate, override)
	}
	return rate, nil
}

// ProfileSampleRate is 1 in development and 0 everywhere else.
func ProfileSampleRate(mode Mode) float64 {
	if mode.IsDevelopment() {
		return 1.0
	}
	return 0
}

func (p Policy) Mode() Mode {
	return p.mode
}

func (p Policy) DSN() string {
	return p.dsn
}

func (p Policy) TraceSampleRate() float64 {
	return p.traceSampleRate
}

func (p Policy) ProfileSampleRate() float64 {
	return p.profileSampleRate
}

func (p Policy) Release() string {
	return p.release
}

func (p Policy) IsProduction() bool {
	return p.mode.IsProduction()
}

func (p Policy) IsDevelopment() bool {
	return p.mode.IsDevelopment()
}

// Tags returns a copy of the initial scope tags.
func (p Policy) Tags() map[string]string {
	return maps.Clone(p.tags)
}

// ShouldRecord reports whether a breadcrumb at level is forwarded.
func (p Policy) ShouldRecord(level Level) bool {
	return !(p.mode.IsProduction() && level.Verbose())
}

// Filter returns the predicate the client runs before sending each event.
func (p Policy) Filter() EventFilter {
	production := p.mode.IsProduction()
	return func(original error) Decision {
		if production && original != nil && ErrorKind(original) == KindValidation {
			return Drop
		}
		return Send
	}
}

// Options bundles the policy for Client.Init.
func (p Policy) Options() Options {
	return Options{
		DSN:                p.dsn,
		Environment:        p.mode.String(),
		Release:            p.release,
		TracesSampleRate:   p.traceSampleRate,
		ProfilesSampleRate: p.profileSampleRate,
		Tags:               p.Tags(),
		Filter:             p.Filter(),
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

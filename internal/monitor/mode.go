package monitor

// Mode is the deployment environment a process runs in.
type Mode string

const (
	ModeProduction  Mode = "production"
	ModeDevelopment Mode = "development"
)

// ParseMode maps the ENVIRONMENT value to a Mode. An empty value means
// production; any other value is kept verbatim (staging, preview, ...).
func ParseMode(s string) Mode {
	if s == "" {
		return ModeProduction
	}
	return Mode(s)
}

func (m Mode) IsProduction() bool {
	return m == ModeProduction
}

func (m Mode) IsDevelopment() bool {
	return m == ModeDevelopment
}

func (m Mode) String() string {
	return string(m)
}

package monitor

// Level is a breadcrumb severity.
type Level string

const (
	LevelDebug   Level = "debug"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Normalize returns l when it is a known level and LevelInfo otherwise.
func (l Level) Normalize() Level {
	switch l {
	case LevelDebug, LevelInfo, LevelWarning, LevelError:
		return l
	default:
		return LevelInfo
	}
}

// Verbose reports whether the level is too chatty for production.
func (l Level) Verbose() bool {
	l = l.Normalize()
	return l == LevelDebug || l == LevelInfo
}

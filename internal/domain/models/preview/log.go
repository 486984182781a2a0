package preview

// Severity of a log entry
type Severity string

const (
	SeverityLog   Severity = "log"
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warn"
	SeverityInfo  Severity = "info"
)

// ParseSeverity maps a wire type to a Severity; unknown types become "log"
func ParseSeverity(s string) Severity {
	switch Severity(s) {
	case SeverityError, SeverityWarn, SeverityInfo:
		return Severity(s)
	default:
		return SeverityLog
	}
}

// LogSource tells where an entry came from
type LogSource string

const (
	SourceRemote  LogSource = "remote"  // real-time log channel
	SourceSandbox LogSource = "sandbox" // local bundler console
)

// LogEntry is one message in a project's log sequence.
// Seq is assigned on arrival and strictly increases per project.
type LogEntry struct {
	Seq       uint64    `json:"seq"`
	Severity  Severity  `json:"type"`
	Message   string    `json:"message"`
	Timestamp string    `json:"timestamp"`
	Source    LogSource `json:"source"`
}

// LogEvent is the wire shape pushed by the real-time log channel
type LogEvent struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

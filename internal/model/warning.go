package model

// WarningKind enumerates non-fatal ingest anomalies. None of these affect a
// Finding's validity; they are recorded for forensic inspection only.
type WarningKind string

const (
	WarningMalformedLine    WarningKind = "malformed_line"
	WarningDanglingResult   WarningKind = "dangling_tool_result"
	WarningMissingUsage     WarningKind = "missing_usage"
	WarningUnknownModel     WarningKind = "unknown_model"
	WarningUnrecognizedType WarningKind = "unrecognized_event_type"
)

// Warning is a recorded ingest anomaly attached to a Session.
type Warning struct {
	Kind   WarningKind
	Detail string
	Line   int // 0 when not line-addressable
}

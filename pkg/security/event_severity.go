package security

import "go.uber.org/zap/zapcore"

// Severity is derived from EventType, never caller-provided.
type Severity string

const (
	SeverityINFO     Severity = "INFO"
	SeverityMEDIUM   Severity = "MEDIUM"
	SeverityWARN     Severity = "WARN"
	SeverityHIGH     Severity = "HIGH"
	SeverityCRITICAL Severity = "CRITICAL"
)

var EventSeverityMap = map[EventType]Severity{
	EventLoginFailed:        SeverityWARN,
	EventRateLimitTriggered: SeverityWARN,
	EventUploadRejected:     SeverityWARN,

	EventLoginBlocked:       SeverityHIGH,
	EventBlockCreated:       SeverityHIGH,
	EventUnauthorizedAccess: SeverityHIGH,

	EventWebhookRejected: SeverityCRITICAL,
}

// GetSeverity defaults unmapped events to MEDIUM.
func GetSeverity(eventType EventType) Severity {
	if severity, ok := EventSeverityMap[eventType]; ok {
		return severity
	}
	return SeverityMEDIUM
}

func IsHighOrAbove(eventType EventType) bool {
	severity := GetSeverity(eventType)
	return severity == SeverityHIGH || severity == SeverityCRITICAL
}

func levelFor(event EventType) zapcore.Level {
	if IsHighOrAbove(event) {
		return zapcore.ErrorLevel
	}
	return zapcore.WarnLevel
}

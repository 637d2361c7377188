package log

// Canonical field names for structured logging.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldExchangeID = "exchange_id"
	FieldIntent     = "intent"
	FieldLanguage   = "language"
	FieldPMSStatus  = "pms_status"
	FieldOperation  = "operation"
	FieldDuration   = "duration_ms"
	FieldStatus     = "status"
	FieldPath       = "path"
	FieldMethod     = "method"
	FieldSubject    = "subject"
)

package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldCollection = "collection"
	FieldRecordID   = "record_id"
	FieldTitle      = "title"
	FieldAmount     = "amount_paise"
	FieldStatus     = "status"
	FieldGeneration = "generation"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentStore     = "store"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentReconcile = "reconcile"
	ComponentExport    = "export"
	ComponentBackend   = "backend"
	ComponentService   = "service"
)

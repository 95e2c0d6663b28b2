package log

// Common field names for structured logging.
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldClientIP  = "client_ip"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldDuration  = "duration_ms"
	FieldUserAgent = "user_agent"
	FieldError     = "error"
	FieldUsername  = "username"
	FieldRole      = "role"
	FieldSource    = "source"
	FieldCategory  = "category"
	FieldCents     = "amount_cents"
	FieldBalance   = "balance_cents"
	FieldBackend   = "backend"
)

// Standard component names.
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentAccounts = "accounts"
	ComponentStore    = "store"
	ComponentEvents   = "events"
	ComponentWorker   = "worker"
	ComponentBackend  = "backend"
)

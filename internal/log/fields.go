package log

import "log/slog"

// Attribute keys shared by every component.
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldQuery         = "query"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldUserAgent     = "user_agent"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldTransactionID = "transaction_id"
	FieldProduct       = "product"
	FieldProductID     = "product_id"
	FieldQty           = "qty"
	FieldTotal         = "total"
	FieldSheetsRef     = "sheets_ref"
	FieldCount         = "count"
)

// Component names.
const (
	ComponentApp         = "app"
	ComponentHTTP        = "http"
	ComponentTransaction = "transaction"
	ComponentDashboard   = "dashboard"
	ComponentAMQP        = "amqp"
	ComponentWorker      = "worker"
	ComponentCache       = "cache"
	ComponentSecurity    = "security"
	ComponentRateLimit   = "rate_limit"
	ComponentTrace       = "trace"
	ComponentBackend     = "backend"
	ComponentTemplate    = "template"
)

// Operation names, logged under FieldOperation.
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpRefresh  = "refresh"
	OpExport   = "export"
	OpValidate = "validate"
)

// attrs accumulates key/value pairs in insertion order so log lines stay
// stable between runs.
type attrs []any

func (a attrs) add(key string, value any) attrs {
	return append(a, slog.Any(key, value))
}

// addIf skips empty strings.
func (a attrs) addIf(key, value string) attrs {
	if value == "" {
		return a
	}
	return append(a, slog.String(key, value))
}

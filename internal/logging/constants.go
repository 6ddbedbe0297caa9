package logging

// Standardized field names for structured logging.
const (
	FieldFile          = "file_path"
	FieldParser        = "parser"
	FieldTransactionID = "transaction_id"
	FieldDescription   = "description"
	FieldCategory      = "category"
	FieldKeyword       = "keyword"
	FieldStrategy      = "strategy"
	FieldProvider      = "provider"
	FieldAttempt       = "attempt"
	FieldDelay         = "delay"
	FieldPage          = "page"
	FieldLine          = "line"
	FieldReason        = "reason"
	FieldOperation     = "operation"
	FieldCount         = "count"
	FieldProcessed     = "processed"
	FieldSaved         = "saved"
	FieldDuration      = "duration_ms"
)

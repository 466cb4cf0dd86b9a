package logging

// Standard field names, kept consistent so log output can be filtered.
const (
	FieldUserID      = "user_id"
	FieldAccountID   = "account_id"
	FieldCategoryID  = "category_id"
	FieldRuleID      = "rule_id"
	FieldTxnID       = "transaction_id"
	FieldStrategy    = "strategy"
	FieldOperation   = "operation"
	FieldRow         = "row"
	FieldReason      = "reason"
	FieldCount       = "count"
	FieldDuration    = "duration_ms"
	FieldFile        = "file_path"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatus      = "status"
	FieldRequestID   = "request_id"
	FieldRemoteAddr  = "remote_addr"
	FieldMigration   = "migration_version"
	FieldDirection   = "direction"
	FieldHeaderCount = "header_count"
)

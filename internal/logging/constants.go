package logging

// Standardized field names for structured logging.
const (
	FieldRunID       = "run_id"
	FieldJobID       = "job_id"
	FieldProfile     = "profile"
	FieldDescription = "description"
	FieldCategory    = "category"
	FieldKeyword     = "keyword"
	FieldStrategy    = "strategy"
	FieldProvider    = "provider"
	FieldRow         = "row"
	FieldTotal       = "total"
	FieldCount       = "count"
	FieldInputFile   = "input_file"
	FieldOutputFile  = "output_file"
	FieldRecipient   = "recipient"
	FieldDuration    = "duration_ms"
)

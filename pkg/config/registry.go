package config

// Persistent state keys (Registry)
const (
	KeyThreshold     = "detect_threshold"
	KeyImportedAt    = "table_imported_at"
	KeyImportedFrom  = "table_imported_from"
	KeyImportedCount = "table_imported_count"
)

package ir

// Version constants for the report schema and the tool.
const (
	// SchemaVersion is the version of the JSON/YAML report schema.
	SchemaVersion = "1"

	// ToolVersion is the idensity release version.
	ToolVersion = "0.1.0"
)

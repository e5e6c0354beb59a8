package domain

// ValidationResult is the outcome of validating one document. Errors are
// human-readable messages in the order the schema engine reported them; an
// empty list is the authoritative success signal.
type ValidationResult struct {
	// Errors lists every violation, including a malformed-document message.
	Errors []string `json:"errors"`
	// SchemaFingerprint identifies the snapshot the document was checked against.
	SchemaFingerprint string `json:"schemaFingerprint"`
}

// Valid reports whether the document produced no errors.
func (r ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

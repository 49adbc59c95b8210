package constants

// ExtractionStage is the canonical stage for one schema-extraction run.
type ExtractionStage string

// Stable values (these exact strings appear in logs).
const (
	StageNoSchema  ExtractionStage = "NO_SCHEMA" // resolving a schema for the document
	StageOCR       ExtractionStage = "OCR"       // text recognition in progress
	StageClassify  ExtractionStage = "CLASSIFY"  // observations matched against field mappings
	StageAggregate ExtractionStage = "AGGREGATE" // per-field candidates reduced and normalized
	StageSuccess   ExtractionStage = "SUCCESS"   // terminal, all required fields present
	StageWarning   ExtractionStage = "WARNING"   // terminal, completed with missing-field warnings
	StageFailed    ExtractionStage = "FAILED"    // terminal failure
)

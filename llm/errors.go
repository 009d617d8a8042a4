package llm

import "fmt"

// ClassificationError reports a failed intent-classification call.
// An unrecognized label is not an error; the classifier falls back to
// workout_command and lets extraction fail downstream instead.
type ClassificationError struct {
	Err error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("intent classification failed: %v", e.Err)
}

func (e *ClassificationError) Unwrap() error { return e.Err }

// ExtractionError reports generation output that could not be parsed into
// an ActionPayload. No database writes happen after this error.
type ExtractionError struct {
	Raw string
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("could not parse workout data: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

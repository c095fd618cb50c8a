package pipeline

import "fmt"

// ExternalServiceError reports a failed call to an optional external
// service. The cross-check stage degrades silently on it and the rest of
// the pipeline continues.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// ProcessingError reports an unexpected failure while processing one
// article. The failed run's mutations are rolled back and the message is
// stored on the article for the operator.
type ProcessingError struct {
	ArticleID string
	Stage     string
	Err       error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("failed to process article %s at %s: %v", e.ArticleID, e.Stage, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

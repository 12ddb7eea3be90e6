package reembed

import "errors"

var (
	// ErrPipelineRequired is returned when no embedding pipeline is provided.
	ErrPipelineRequired = errors.New("embedding pipeline required")
)

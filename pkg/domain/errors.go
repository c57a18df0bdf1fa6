package domain

import "fmt"

// BuildError is returned by BuildGraph when the input records cannot form a
// valid graph. It is fatal: there is no partial graph to recover.
type BuildError struct {
	Kind   BuildErrorKind
	NodeID string
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	switch e.Kind {
	case BuildErrorDuplicateNodeID:
		return fmt.Sprintf("duplicate node id %q", e.NodeID)
	case BuildErrorUnknownEndpoint:
		return fmt.Sprintf("edge references unknown node %q", e.NodeID)
	case BuildErrorNonPositiveTime:
		return fmt.Sprintf("edge from %q has non-positive time_min", e.NodeID)
	case BuildErrorSelfLoop:
		return fmt.Sprintf("self-loop at node %q", e.NodeID)
	default:
		return "invalid graph build input"
	}
}

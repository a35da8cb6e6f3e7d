package booking

import "fmt"

// Flow error codes. Every one of these is handled inside the orchestrator
// and translated into a UI payload; none may reach the transport boundary.
const (
	CodeInvalidIntent  = "invalidIntent"
	CodeStaleSelection = "staleSelection"
	CodeSlotConflict   = "slotConflict"
	CodeNoAvailability = "noAvailability"
	CodeSessionExpired = "sessionExpired"
	CodeInfrastructure = "infrastructureError"
)

// FlowError is a typed booking-flow error.
type FlowError struct {
	Code    string
	Message string
}

func (e *FlowError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewFlowError(code, msg string) error {
	return &FlowError{Code: code, Message: msg}
}

// FlowCode extracts the flow error code, or empty for non-flow errors.
func FlowCode(err error) string {
	if fe, ok := err.(*FlowError); ok {
		return fe.Code
	}
	return ""
}

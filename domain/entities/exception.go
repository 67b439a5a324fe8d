package entities

// RuntimeErrorType is the only exception kind the host ever sees.
const RuntimeErrorType = "RuntimeError"

// HostException is the host-visible form of every failure raised at the
// boundary. Its JSON shape matches the Lambda runtime error body.
type HostException struct {
	Type    string `json:"errorType"`
	Message string `json:"errorMessage"`
}

// NewRuntimeError creates a RuntimeError exception with the given message.
func NewRuntimeError(message string) *HostException {
	return &HostException{Type: RuntimeErrorType, Message: message}
}

// Error implements the error interface. The message is returned verbatim.
func (e *HostException) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

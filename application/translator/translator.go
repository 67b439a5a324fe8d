// Package translator maps native failures onto the single exception kind the
// host runtime recognizes.
package translator

import (
	domainerrors "github.com/reglet-dev/lambda-bridge/domain/errors"
	"github.com/reglet-dev/lambda-bridge/domain/entities"
)

// Translate converts err into a RuntimeError carrying its full diagnostic
// text. Errors are not classified: every failure looks the same to the host
// apart from its message. A host exception of any other type is rebuilt as
// a RuntimeError with the same message. Translate(nil) returns nil.
func Translate(err error) *entities.HostException {
	if err == nil {
		return nil
	}
	if exc, ok := err.(*entities.HostException); ok && exc != nil {
		if exc.Type == entities.RuntimeErrorType {
			return exc
		}
		return entities.NewRuntimeError(exc.Message)
	}
	return entities.NewRuntimeError(domainerrors.DiagnosticText(err))
}

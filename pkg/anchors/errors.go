package anchors

import (
	"errors"
	"fmt"

	"github.com/mandelsoft/spaceanchors/pkg/native"
	"github.com/mandelsoft/spaceanchors/pkg/space"
)

var (
	// ErrRejected is reported if the runtime refuses to start an operation.
	ErrRejected = errors.New("request rejected")
	// ErrPrecondition is reported if an operation cannot be started
	// for the current state of its target.
	ErrPrecondition = errors.New("precondition violated")
	// ErrTargetGone is reported if the target of an operation
	// does not exist anymore.
	ErrTargetGone = errors.New("target does not exist anymore")
	// ErrNativeFailure is matched by all CompletionErrors.
	ErrNativeFailure = errors.New("operation failed")
	// ErrDisplaced is reported for a pending request whose id
	// has been returned again for a new request.
	ErrDisplaced = errors.New("request id reused")
)

// Operation is the kind of an asynchronous anchor operation.
type Operation string

const (
	OpCreate             Operation = "create"
	OpErase              Operation = "erase"
	OpSave               Operation = "save"
	OpSetComponentStatus Operation = "setComponentStatus"
	OpQuery              Operation = "query"
	OpSceneCapture       Operation = "sceneCapture"
)

// CompletionError is reported if the runtime signals a failure for
// an accepted operation.
type CompletionError struct {
	Op        Operation
	RequestId space.RequestId
	Result    native.Result
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("%s request %s failed: %s", e.Op, e.RequestId, e.Result)
}

func (e *CompletionError) Is(target error) bool {
	return target == ErrNativeFailure
}

func rejected(op Operation, err error) error {
	return fmt.Errorf("%s %w: %w", op, ErrRejected, err)
}

func precondition(op Operation, msg string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", op, ErrPrecondition, fmt.Sprintf(msg, args...))
}

func missingTarget(op Operation) error {
	return fmt.Errorf("%s: %w: %w", op, ErrPrecondition, ErrTargetGone)
}

func staleTarget(op Operation, id space.RequestId) error {
	return fmt.Errorf("%s request %s: %w", op, id, ErrTargetGone)
}

func displaced(op Operation, id space.RequestId) error {
	return fmt.Errorf("%s request %s: %w", op, id, ErrDisplaced)
}

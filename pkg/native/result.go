package native

import (
	"errors"
	"fmt"
)

// Result is the status code reported by the native runtime.
// Non-negative values indicate success.
type Result int32

const (
	Success                 Result = 0
	SuccessEventUnavailable Result = 1
	SuccessPending          Result = 2

	Failure                    Result = -1000
	FailureInvalidParameter    Result = -1001
	FailureNotInitialized      Result = -1002
	FailureInvalidOperation    Result = -1003
	FailureUnsupported         Result = -1004
	FailureNotYetImplemented   Result = -1005
	FailureOperationFailed     Result = -1006
	FailureInsufficientSize    Result = -1007
	FailureDataIsInvalid       Result = -1008
	FailureDeprecatedOperation Result = -1009

	FailureSpaceCloudStorageDisabled Result = -2000
	FailureSpaceMappingInsufficient  Result = -2001
	FailureSpaceLocalizationFailed   Result = -2002
	FailureSpaceNetworkTimeout       Result = -2003
	FailureSpaceNetworkRequestFailed Result = -2004
)

var resultNames = map[Result]string{
	Success:                 "Success",
	SuccessEventUnavailable: "Success_EventUnavailable",
	SuccessPending:          "Success_Pending",

	Failure:                    "Failure",
	FailureInvalidParameter:    "Failure_InvalidParameter",
	FailureNotInitialized:      "Failure_NotInitialized",
	FailureInvalidOperation:    "Failure_InvalidOperation",
	FailureUnsupported:         "Failure_Unsupported",
	FailureNotYetImplemented:   "Failure_NotYetImplemented",
	FailureOperationFailed:     "Failure_OperationFailed",
	FailureInsufficientSize:    "Failure_InsufficientSize",
	FailureDataIsInvalid:       "Failure_DataIsInvalid",
	FailureDeprecatedOperation: "Failure_DeprecatedOperation",

	FailureSpaceCloudStorageDisabled: "Failure_SpaceCloudStorageDisabled",
	FailureSpaceMappingInsufficient:  "Failure_SpaceMappingInsufficient",
	FailureSpaceLocalizationFailed:   "Failure_SpaceLocalizationFailed",
	FailureSpaceNetworkTimeout:       "Failure_SpaceNetworkTimeout",
	FailureSpaceNetworkRequestFailed: "Failure_SpaceNetworkRequestFailed",
}

func (r Result) Success() bool {
	return r >= 0
}

func (r Result) String() string {
	if n, ok := resultNames[r]; ok {
		return n
	}
	return fmt.Sprintf("Result(%d)", int32(r))
}

// Error is returned for calls rejected by the native runtime.
type Error struct {
	Call   string
	Result Result
}

func (e *Error) Error() string {
	return fmt.Sprintf("native call %s failed: %s", e.Call, e.Result)
}

// Check provides an error for a failed native call.
func Check(call string, r Result) error {
	if r.Success() {
		return nil
	}
	return &Error{Call: call, Result: r}
}

// ResultOf extracts the native result code from an error.
// Errors not caused by the native runtime map to Failure.
func ResultOf(err error) Result {
	if err == nil {
		return Success
	}
	var n *Error
	if errors.As(err, &n) {
		return n.Result
	}
	return Failure
}

package regerrors

import "fmt"

// RegistryError is the error type returned by every layer of the transaction
// registry core. Op names the failing operation/field (e.g. "sanitize.amount",
// "update", "where.compile") for log correlation, matching the
// fmt.Errorf("op: %w", err) wrapping convention used throughout the teacher
// store adapter.
type RegistryError struct {
	Code ErrorCode
	Op   string
	Err  error
}

func New(code ErrorCode, op, msg string) *RegistryError {
	return &RegistryError{Code: code, Op: op, Err: fmt.Errorf("%s", msg)}
}

func Wrap(code ErrorCode, op string, err error) *RegistryError {
	if err == nil {
		return nil
	}
	return &RegistryError{Code: code, Op: op, Err: err}
}

func (e *RegistryError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Op, e.Err)
}

func (e *RegistryError) Unwrap() error {
	return e.Err
}

// CodeOf extracts the ErrorCode from err if it (or something it wraps) is a
// *RegistryError, returning ok=false otherwise.
func CodeOf(err error) (ErrorCode, bool) {
	var re *RegistryError
	if asRegistryError(err, &re) {
		return re.Code, true
	}
	return "", false
}

func asRegistryError(err error, target **RegistryError) bool {
	for err != nil {
		if re, ok := err.(*RegistryError); ok {
			*target = re
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

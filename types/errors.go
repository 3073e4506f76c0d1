package types

import "github.com/pkg/errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyRegistered = errors.New("already registered")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidID         = errors.New("invalid id")

	// Fault kinds. Storage and platform call sites wrap the underlying error with these
	ErrStorageFault  = errors.New("storage fault")
	ErrPlatformFault = errors.New("platform fault")
)

type fault struct {
	kind  error
	cause error
}

func (f *fault) Error() string {
	return f.kind.Error() + ": " + f.cause.Error()
}

func (f *fault) Cause() error {
	return f.cause
}

func (f *fault) Unwrap() error {
	return f.cause
}

func (f *fault) Is(target error) bool {
	return target == f.kind
}

// StorageFault marks err as an I/O failure of the persistence layer
func StorageFault(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &fault{kind: ErrStorageFault, cause: errors.Wrap(err, msg)}
}

// PlatformFault marks err as a failed Discord API call
func PlatformFault(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &fault{kind: ErrPlatformFault, cause: errors.Wrap(err, msg)}
}

func IsStorageFault(err error) bool {
	return errors.Is(err, ErrStorageFault)
}

func IsPlatformFault(err error) bool {
	return errors.Is(err, ErrPlatformFault)
}

package lib

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os/exec"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Execution error classes. Every failure on the execution path is reported as
// one of these via Classify.
var (
	ErrBrokerUnreachable = errors.New("broker unreachable")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrSpawnFailed       = errors.New("spawn failed")
	ErrProcessIO         = errors.New("process i/o failure")
	ErrUnknown           = errors.New("unknown failure")
)

// Classify maps an error onto one of the execution error classes.
// It returns nil for a nil error.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	for _, class := range []error{ErrBrokerUnreachable, ErrPermissionDenied, ErrSpawnFailed, ErrProcessIO, ErrUnknown} {
		if errors.Is(err, class) {
			return class
		}
	}

	if st, ok := status.FromError(err); ok && st.Code() != codes.OK {
		switch st.Code() {
		case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
			return ErrBrokerUnreachable
		case codes.PermissionDenied, codes.Unauthenticated:
			return ErrPermissionDenied
		case codes.Aborted, codes.InvalidArgument, codes.FailedPrecondition, codes.ResourceExhausted:
			return ErrSpawnFailed
		case codes.DataLoss:
			return ErrProcessIO
		}
		return ErrUnknown
	}

	var execErr *exec.Error
	var pathErr *fs.PathError
	switch {
	case errors.As(err, &execErr), errors.Is(err, exec.ErrNotFound):
		return ErrSpawnFailed
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.ErrClosedPipe), errors.As(err, &pathErr):
		return ErrProcessIO
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrBrokerUnreachable
	}
	return ErrUnknown
}

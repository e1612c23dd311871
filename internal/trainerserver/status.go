package trainerserver

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/cory-johannsen/poketrainer/internal/auth"
	"github.com/cory-johannsen/poketrainer/internal/auth/passcode"
	"github.com/cory-johannsen/poketrainer/internal/game/capture"
	"github.com/cory-johannsen/poketrainer/internal/game/roster"
	"github.com/cory-johannsen/poketrainer/internal/game/scan"
	"github.com/cory-johannsen/poketrainer/internal/game/session"
)

// toStatus maps domain errors onto gRPC status codes.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var (
		unrecognized *scan.Unrecognized
		denied       *scan.PermissionDeniedError
		failure      *scan.ScannerFailure
	)
	switch {
	case errors.Is(err, session.ErrGateClosed):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.As(err, &denied):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, session.ErrUnknownAccount):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, session.ErrAlreadySignedIn), errors.Is(err, session.ErrAccountExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, session.ErrSessionClosed):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, capture.ErrBusy), errors.Is(err, capture.ErrNotPresenting),
		errors.Is(err, capture.ErrClosed), errors.Is(err, scan.ErrScannerBusy),
		errors.Is(err, auth.ErrUnavailable), errors.Is(err, capture.ErrNothingDetected),
		errors.Is(err, session.ErrSimulationDisabled):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.As(err, &unrecognized), errors.Is(err, passcode.ErrInvalidPasscode):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, passcode.ErrLockedOut):
		return status.Error(codes.ResourceExhausted, err.Error())
	case errors.Is(err, auth.ErrAuthenticationFailed):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, scan.ErrScanCancelled):
		return status.Error(codes.Canceled, err.Error())
	case errors.As(err, &failure):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, roster.ErrInvalidSnapshot):
		return status.Error(codes.DataLoss, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

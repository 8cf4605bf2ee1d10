package sharding

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	retry "github.com/sethvargo/go-retry"

	"github.com/open-io/oio-sharding/pkg/models/oioerror"
	"github.com/open-io/oio-sharding/pkg/oiolog"
)

// CompensationError is returned when the operation failed and some of the
// undo actions could not be completed either. Unwrap yields the original
// failure.
type CompensationError struct {
	Cause    error
	Failures []error
}

func (ce *CompensationError) Error() string {
	msgs := make([]string, 0, len(ce.Failures))
	for _, f := range ce.Failures {
		msgs = append(msgs, f.Error())
	}
	return fmt.Sprintf("%v (compensation incomplete: %s)", ce.Cause, strings.Join(msgs, "; "))
}

func (ce *CompensationError) Unwrap() error {
	return ce.Cause
}

// compensate runs the undo stack of op and returns the error to hand back
// to the caller.
func (cs *ContainerSharding) compensate(ctx context.Context, op *Operation, cause error) error {
	actions := op.takeUndo()
	if len(actions) == 0 {
		return cause
	}

	oiolog.Zero.Warn().
		Err(cause).
		Str("account", op.RootAccount).
		Str("container", op.RootContainer).
		Int64("timestamp", op.Timestamp).
		Int("actions", len(actions)).
		Msg("sharding: aborting, running compensation")

	// Undo must run even when the caller's context is already done.
	cctx := context.WithoutCancel(ctx)

	var failures []error
	for _, a := range actions {
		backoff := retry.WithMaxRetries(cs.cfg.CompensationRetries, retry.NewFibonacci(cs.cfg.CompensationBackoff))
		err := retry.Do(cctx, backoff, func(ctx context.Context) error {
			err := a.fn(ctx)
			switch {
			case err == nil, isGone(err):
				return nil
			case isDefinitive(err):
				return err
			default:
				return retry.RetryableError(err)
			}
		})
		if err != nil {
			oiolog.Zero.Error().
				Err(err).
				Str("action", a.name).
				Str("container", op.RootContainer).
				Msg("sharding: compensation action failed")
			failures = append(failures, errors.Wrap(err, a.name))
			continue
		}
		oiolog.Zero.Info().
			Str("action", a.name).
			Str("container", op.RootContainer).
			Msg("sharding: compensation action done")
	}

	if len(failures) == 0 {
		return cause
	}
	return &CompensationError{Cause: cause, Failures: failures}
}

func isGone(err error) bool {
	var be *oioerror.BackendError
	return errors.As(err, &be) && be.StatusCode == http.StatusNotFound
}

// isDefinitive tells whether retrying err cannot help: client errors
// returned by the control plane.
func isDefinitive(err error) bool {
	var be *oioerror.BackendError
	return errors.As(err, &be) && be.StatusCode >= 400 && be.StatusCode < 500
}

// maybeApplied tells whether a failed mutating call could still have been
// applied by the backend: a transport failure, a lost response or a server
// side error such as a proxy timeout (504).
func maybeApplied(err error) bool {
	var be *oioerror.BackendError
	return !errors.As(err, &be) || be.StatusCode >= http.StatusInternalServerError
}

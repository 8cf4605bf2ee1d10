package sharding

import (
	"context"
	"sync"

	"go.uber.org/atomic"

	"github.com/open-io/oio-sharding/pkg/cid"
	"github.com/open-io/oio-sharding/pkg/models/shards"
	"github.com/open-io/oio-sharding/pkg/oiolog"
)

type State int32

const (
	StateIdle State = iota
	StateValidated
	StatePrepared
	StateShardsCreated
	StateQueueReady
	StateReplaced
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateValidated:
		return "VALIDATED"
	case StatePrepared:
		return "PREPARED"
	case StateShardsCreated:
		return "SHARDS_CREATED"
	case StateQueueReady:
		return "QUEUE_READY"
	case StateReplaced:
		return "REPLACED"
	case StateAborted:
		return "ABORTED"
	default:
		return "UNKNOWN"
	}
}

type undoAction struct {
	name string
	fn   func(ctx context.Context) error
}

// Operation is one run of the sharding protocol against a root container.
// It only lives for the duration of ReplaceShards.
type Operation struct {
	RootAccount   string
	RootContainer string
	RootCid       string

	Timestamp int64
	QueueURL  string
	Shards    []shards.ShardRange

	// Events counts the work-queue events consumed, DrainErr keeps a
	// drain failure that happened after the shards were replaced.
	Events   int
	DrainErr error

	state atomic.Int32

	mu   sync.Mutex
	undo []undoAction
}

func newOperation(account, container string) *Operation {
	return &Operation{
		RootAccount:   account,
		RootContainer: container,
		RootCid:       cid.FromName(account, container),
	}
}

func (op *Operation) State() State {
	return State(op.state.Load())
}

func (op *Operation) setState(s State) {
	prev := State(op.state.Swap(int32(s)))
	oiolog.Zero.Debug().
		Str("account", op.RootAccount).
		Str("container", op.RootContainer).
		Str("from", prev.String()).
		Str("to", s.String()).
		Msg("sharding: state transition")
}

func (op *Operation) pushUndo(name string, fn func(ctx context.Context) error) {
	op.mu.Lock()
	defer op.mu.Unlock()
	op.undo = append(op.undo, undoAction{name: name, fn: fn})
}

// takeUndo empties the compensation stack and returns it in execution
// (reverse registration) order.
func (op *Operation) takeUndo() []undoAction {
	op.mu.Lock()
	defer op.mu.Unlock()
	res := make([]undoAction, 0, len(op.undo))
	for i := len(op.undo) - 1; i >= 0; i-- {
		res = append(res, op.undo[i])
	}
	op.undo = nil
	return res
}

package sharding

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/open-io/oio-sharding/pkg/cid"
	"github.com/open-io/oio-sharding/pkg/models/oioerror"
	"github.com/open-io/oio-sharding/pkg/models/shards"
	"github.com/open-io/oio-sharding/pkg/oiolog"
	"github.com/open-io/oio-sharding/pkg/queue"
)

var (
	ErrAlreadyShard     = oioerror.New(oioerror.OIO_PRECONDITION, "Container is already a shard container")
	ErrAlreadySharded   = oioerror.New(oioerror.OIO_NOT_IMPLEMENTED, "Sharding an already sharded container is not implemented")
	ErrShardingDisabled = oioerror.New(oioerror.OIO_PRECONDITION, "Sharding is not enabled for this container")
	ErrShardingRunning  = oioerror.New(oioerror.OIO_PRECONDITION, "A sharding is already in progress on this container")
)

// ReplaceShards splits account/container into the shards described by
// candidates. enable must be set to shard a container that has no shard
// yet. The returned operation reports how far the protocol went, also on
// failure.
func (cs *ContainerSharding) ReplaceShards(ctx context.Context, account, container string, candidates []shards.Candidate, enable bool) (*Operation, error) {
	op := newOperation(account, container)

	ranges, err := shards.FormatShards(candidates, true)
	if err != nil {
		op.setState(StateAborted)
		return op, err
	}
	op.Shards = ranges
	op.setState(StateValidated)

	if err := cs.checkPreconditions(ctx, op, enable); err != nil {
		op.setState(StateAborted)
		return op, err
	}

	if err := cs.run(ctx, op); err != nil {
		op.setState(StateAborted)
		return op, cs.compensate(ctx, op, err)
	}

	op.setState(StateReplaced)
	oiolog.Zero.Info().
		Str("account", account).
		Str("container", container).
		Int64("timestamp", op.Timestamp).
		Int("shards", len(op.Shards)).
		Msg("sharding: shards replaced")
	return op, nil
}

func (cs *ContainerSharding) checkPreconditions(ctx context.Context, op *Operation, enable bool) error {
	props, err := cs.dir.GetProperties(ctx, op.RootAccount, op.RootContainer)
	if err != nil {
		return err
	}
	if props.IsShard() {
		return ErrAlreadyShard
	}
	if state, ok := props.ShardingState(); ok && state.InProgress() {
		oiolog.Zero.Debug().
			Str("account", op.RootAccount).
			Str("container", op.RootContainer).
			Str("sharding_state", state.String()).
			Msg("sharding: container busy")
		return ErrShardingRunning
	}

	current, err := cs.cp.Show(ctx, op.RootAccount, op.RootContainer)
	if err != nil {
		return err
	}
	if len(current) > 0 {
		return ErrAlreadySharded
	}
	if !enable {
		return ErrShardingDisabled
	}
	return nil
}

func (cs *ContainerSharding) run(ctx context.Context, op *Operation) error {
	timestamp, queueURL, err := cs.cp.Prepare(ctx, op.RootAccount, op.RootContainer)
	if err != nil {
		// A protocol error comes with a success status: the backend did
		// prepare the sharding.
		if oioerror.IsCode(err, oioerror.OIO_PROTOCOL) || maybeApplied(err) {
			cs.registerAbort(op)
		}
		return err
	}
	op.Timestamp = timestamp
	op.QueueURL = queueURL
	cs.registerAbort(op)
	op.setState(StatePrepared)

	if err := cs.createShards(ctx, op); err != nil {
		return err
	}
	op.setState(StateShardsCreated)

	tube := cid.ShardingTube(op.RootCid, op.Timestamp)
	wq, err := cs.openQueue(op.QueueURL, tube)
	if err != nil {
		return err
	}
	defer func() {
		if err := wq.Close(); err != nil {
			oiolog.Zero.Warn().Err(err).Str("tube", tube).Msg("sharding: failed to close work queue")
		}
	}()
	op.setState(StateQueueReady)

	var drained chan error
	dctx, cancelDrain := context.WithCancel(ctx)
	defer cancelDrain()
	if cs.cfg.DrainQueue {
		drained = make(chan error, 1)
		go func() {
			n, err := wq.Drain(dctx, cs.onEvent(op))
			op.Events = n
			drained <- err
		}()
	}

	if err := cs.cp.Replace(ctx, op.RootAccount, op.RootContainer, op.Shards); err != nil {
		cancelDrain()
		if drained != nil {
			<-drained
		}
		return err
	}

	if drained != nil {
		if err := <-drained; err != nil {
			op.DrainErr = err
			oiolog.Zero.Warn().
				Err(err).
				Str("tube", tube).
				Msg("sharding: work queue not fully drained")
		}
	}
	return nil
}

func (cs *ContainerSharding) registerAbort(op *Operation) {
	account, container := op.RootAccount, op.RootContainer
	op.pushUndo("abort sharding", func(ctx context.Context) error {
		return cs.cp.Abort(ctx, account, container)
	})
}

func (cs *ContainerSharding) createShards(ctx context.Context, op *Operation) error {
	shardAccount := cid.ShardAccount(op.RootAccount)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cs.cfg.CreateConcurrency)

	for i := range op.Shards {
		sr := &op.Shards[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			name := cid.ShardContainer(op.RootContainer, op.RootCid, op.Timestamp, sr.Index)
			info := &shards.ShardInfo{
				RootCid:   op.RootCid,
				Timestamp: op.Timestamp,
				Lower:     sr.Lower,
				Upper:     sr.Upper,
			}
			destroy := func(ctx context.Context) error {
				return cs.dir.Destroy(ctx, shardAccount, name)
			}

			if err := cs.cp.CreateShard(gctx, shardAccount, name, info); err != nil {
				if maybeApplied(err) {
					op.pushUndo(fmt.Sprintf("destroy shard %s/%s", shardAccount, name), destroy)
				}
				return errors.Wrapf(err, "failed to create shard %d", sr.Index)
			}
			op.pushUndo(fmt.Sprintf("destroy shard %s/%s", shardAccount, name), destroy)
			sr.Cid = cid.FromName(shardAccount, name)

			oiolog.Zero.Debug().
				Str("account", shardAccount).
				Str("container", name).
				Str("cid", sr.Cid).
				Int("index", sr.Index).
				Msg("sharding: shard created")
			return nil
		})
	}
	return g.Wait()
}

func (cs *ContainerSharding) onEvent(op *Operation) queue.EventHandler {
	return func(ctx context.Context, ev queue.Event) error {
		oiolog.Zero.Debug().
			Str("container", op.RootContainer).
			Str("tube", ev.Tube).
			Uint64("job", ev.ID).
			Msg("sharding: work queue event")
		if cs.cfg.OnEvent != nil {
			return cs.cfg.OnEvent(ctx, ev)
		}
		return nil
	}
}

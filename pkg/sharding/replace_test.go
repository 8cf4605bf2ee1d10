package sharding_test

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/open-io/oio-sharding/pkg/cid"
	"github.com/open-io/oio-sharding/pkg/models/oioerror"
	"github.com/open-io/oio-sharding/pkg/models/shards"
	"github.com/open-io/oio-sharding/pkg/proxy"
	"github.com/open-io/oio-sharding/pkg/queue"
	"github.com/open-io/oio-sharding/pkg/sharding"
	mock "github.com/open-io/oio-sharding/pkg/sharding/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	account   = "ACCT"
	container = "JFS"
	timestamp = int64(1630000000000000)
	queueURL  = "beanstalk://127.0.0.1:6014"
)

var (
	rootCid      = cid.FromName(account, container)
	shardAccount = cid.ShardAccount(account)
)

func shardName(index int) string {
	return cid.ShardContainer(container, rootCid, timestamp, index)
}

func twoShards() []shards.Candidate {
	return []shards.Candidate{
		shards.NewCandidate(0, "", "m"),
		shards.NewCandidate(1, "m", ""),
	}
}

type fixture struct {
	cp     *mock.MockControlPlane
	dir    *mock.MockDirectory
	wq     *mock.MockWorkQueue
	opened []string
	cs     *sharding.ContainerSharding
}

func newFixture(t *testing.T, cfg sharding.Config) *fixture {
	ctrl := gomock.NewController(t)
	f := &fixture{
		cp:  mock.NewMockControlPlane(ctrl),
		dir: mock.NewMockDirectory(ctrl),
		wq:  mock.NewMockWorkQueue(ctrl),
	}
	if cfg.CompensationBackoff == 0 {
		cfg.CompensationBackoff = time.Millisecond
	}
	f.cs = sharding.NewContainerSharding(f.cp, f.dir, func(url, tube string) (sharding.WorkQueue, error) {
		f.opened = append(f.opened, url+"|"+tube)
		return f.wq, nil
	}, cfg)
	return f
}

func (f *fixture) expectUnsharded() {
	f.dir.EXPECT().GetProperties(gomock.Any(), account, container).
		Return(&proxy.ContainerProperties{System: map[string]string{}}, nil)
	f.cp.EXPECT().Show(gomock.Any(), account, container).Return(nil, nil)
}

func shardInfo(lower, upper string) *shards.ShardInfo {
	return &shards.ShardInfo{RootCid: rootCid, Timestamp: timestamp, Lower: lower, Upper: upper}
}

func TestReplaceShardsSuccess(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t, sharding.Config{})

	expected := []shards.ShardRange{
		{Index: 0, Lower: "", Upper: "m", Cid: cid.FromName(shardAccount, shardName(0))},
		{Index: 1, Lower: "m", Upper: "", Cid: cid.FromName(shardAccount, shardName(1))},
	}

	f.expectUnsharded()
	gomock.InOrder(
		f.cp.EXPECT().Prepare(gomock.Any(), account, container).Return(timestamp, queueURL, nil),
		f.cp.EXPECT().CreateShard(gomock.Any(), shardAccount, shardName(0), shardInfo("", "m")).Return(nil),
		f.cp.EXPECT().CreateShard(gomock.Any(), shardAccount, shardName(1), shardInfo("m", "")).Return(nil),
		f.cp.EXPECT().Replace(gomock.Any(), account, container, expected).Return(nil),
		f.wq.EXPECT().Close().Return(nil),
	)

	op, err := f.cs.ReplaceShards(context.Background(), account, container, twoShards(), true)
	assert.NoError(err)
	assert.Equal(sharding.StateReplaced, op.State())
	assert.Equal(timestamp, op.Timestamp)
	assert.Equal(queueURL, op.QueueURL)
	assert.Equal(rootCid, op.RootCid)
	assert.Equal(expected, op.Shards)
	assert.Equal([]string{queueURL + "|" + rootCid + ".sharding-1630000000000000"}, f.opened)
}

func TestReplaceShardsDrainsQueue(t *testing.T) {
	assert := assert.New(t)

	var events []string
	f := newFixture(t, sharding.Config{
		DrainQueue: true,
		OnEvent: func(ctx context.Context, ev queue.Event) error {
			events = append(events, string(ev.Body))
			return nil
		},
	})

	f.expectUnsharded()
	f.cp.EXPECT().Prepare(gomock.Any(), account, container).Return(timestamp, queueURL, nil)
	f.cp.EXPECT().CreateShard(gomock.Any(), shardAccount, gomock.Any(), gomock.Any()).Return(nil).Times(2)
	f.cp.EXPECT().Replace(gomock.Any(), account, container, gomock.Any()).Return(nil)
	f.wq.EXPECT().Drain(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, handler queue.EventHandler) (int, error) {
			for i, body := range []string{"saving", "locked", "sharded"} {
				if err := handler(ctx, queue.Event{ID: uint64(i), Body: []byte(body)}); err != nil {
					return i, err
				}
			}
			return 3, nil
		})
	f.wq.EXPECT().Close().Return(nil)

	op, err := f.cs.ReplaceShards(context.Background(), account, container, twoShards(), true)
	assert.NoError(err)
	assert.Equal(sharding.StateReplaced, op.State())
	assert.Equal(3, op.Events)
	assert.NoError(op.DrainErr)
	assert.Equal([]string{"saving", "locked", "sharded"}, events)
}

func TestReplaceShardsDrainFailureAfterReplace(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t, sharding.Config{DrainQueue: true})

	f.expectUnsharded()
	f.cp.EXPECT().Prepare(gomock.Any(), account, container).Return(timestamp, queueURL, nil)
	f.cp.EXPECT().CreateShard(gomock.Any(), shardAccount, gomock.Any(), gomock.Any()).Return(nil).Times(2)
	f.cp.EXPECT().Replace(gomock.Any(), account, container, gomock.Any()).Return(nil)
	f.wq.EXPECT().Drain(gomock.Any(), gomock.Any()).Return(1, errors.New("connection reset"))
	f.wq.EXPECT().Close().Return(nil)

	op, err := f.cs.ReplaceShards(context.Background(), account, container, twoShards(), true)
	assert.NoError(err)
	assert.Equal(sharding.StateReplaced, op.State())
	assert.ErrorContains(op.DrainErr, "connection reset")
}

func TestReplaceShardsCreateFailureCompensates(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t, sharding.Config{})

	f.expectUnsharded()
	gomock.InOrder(
		f.cp.EXPECT().Prepare(gomock.Any(), account, container).Return(timestamp, queueURL, nil),
		f.cp.EXPECT().CreateShard(gomock.Any(), shardAccount, shardName(0), gomock.Any()).Return(nil),
		f.cp.EXPECT().CreateShard(gomock.Any(), shardAccount, shardName(1), gomock.Any()).
			Return(oioerror.NewBackendError(http.StatusBadRequest, []byte(`{"status":400,"message":"no meta2"}`))),
		f.dir.EXPECT().Destroy(gomock.Any(), shardAccount, shardName(0)).Return(nil),
		f.cp.EXPECT().Abort(gomock.Any(), account, container).Return(nil),
	)

	op, err := f.cs.ReplaceShards(context.Background(), account, container, twoShards(), true)
	assert.Error(err)
	assert.True(oioerror.IsCode(err, oioerror.OIO_BACKEND))
	assert.Equal(sharding.StateAborted, op.State())
	assert.Empty(f.opened)

	var be *oioerror.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal("no meta2", be.Message)
}

func TestReplaceShardsCreateServerErrorDestroysShard(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t, sharding.Config{})

	f.expectUnsharded()
	gomock.InOrder(
		f.cp.EXPECT().Prepare(gomock.Any(), account, container).Return(timestamp, queueURL, nil),
		f.cp.EXPECT().CreateShard(gomock.Any(), shardAccount, shardName(0), gomock.Any()).Return(nil),
		f.cp.EXPECT().CreateShard(gomock.Any(), shardAccount, shardName(1), gomock.Any()).
			Return(oioerror.NewBackendError(http.StatusGatewayTimeout, nil)),
		// The shard may exist although the proxy gave up waiting for it.
		f.dir.EXPECT().Destroy(gomock.Any(), shardAccount, shardName(1)).
			Return(oioerror.NewBackendError(http.StatusNotFound, nil)),
		f.dir.EXPECT().Destroy(gomock.Any(), shardAccount, shardName(0)).Return(nil),
		f.cp.EXPECT().Abort(gomock.Any(), account, container).Return(nil),
	)

	op, err := f.cs.ReplaceShards(context.Background(), account, container, twoShards(), true)
	assert.True(oioerror.IsCode(err, oioerror.OIO_BACKEND))
	assert.ErrorContains(err, "failed to create shard 1")
	assert.Equal(sharding.StateAborted, op.State())
}

func TestReplaceShardsPrepareServerErrorAborts(t *testing.T) {
	f := newFixture(t, sharding.Config{})

	f.expectUnsharded()
	gomock.InOrder(
		f.cp.EXPECT().Prepare(gomock.Any(), account, container).
			Return(int64(0), "", oioerror.NewBackendError(http.StatusGatewayTimeout, nil)),
		f.cp.EXPECT().Abort(gomock.Any(), account, container).Return(nil),
	)

	op, err := f.cs.ReplaceShards(context.Background(), account, container, twoShards(), true)
	assert.True(t, oioerror.IsCode(err, oioerror.OIO_BACKEND))
	assert.Equal(t, sharding.StateAborted, op.State())
}

func TestReplaceShardsAlreadyAShard(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t, sharding.Config{})

	f.dir.EXPECT().GetProperties(gomock.Any(), account, container).
		Return(&proxy.ContainerProperties{System: map[string]string{proxy.PropShardInfo: "{}"}}, nil)

	op, err := f.cs.ReplaceShards(context.Background(), account, container, twoShards(), true)
	assert.ErrorIs(err, sharding.ErrAlreadyShard)
	assert.True(oioerror.IsPrecondition(err))
	assert.Equal(sharding.StateAborted, op.State())
	assert.Empty(f.opened)
}

func TestReplaceShardsAlreadyRunning(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t, sharding.Config{})

	f.dir.EXPECT().GetProperties(gomock.Any(), account, container).
		Return(&proxy.ContainerProperties{System: map[string]string{proxy.PropShardingState: "2"}}, nil)

	op, err := f.cs.ReplaceShards(context.Background(), account, container, twoShards(), true)
	assert.ErrorIs(err, sharding.ErrShardingRunning)
	assert.True(oioerror.IsPrecondition(err))
	assert.Equal(sharding.StateAborted, op.State())
}

func TestReplaceShardsAfterAbortedSharding(t *testing.T) {
	f := newFixture(t, sharding.Config{})

	f.dir.EXPECT().GetProperties(gomock.Any(), account, container).
		Return(&proxy.ContainerProperties{System: map[string]string{proxy.PropShardingState: "4"}}, nil)
	f.cp.EXPECT().Show(gomock.Any(), account, container).Return(nil, nil)

	_, err := f.cs.ReplaceShards(context.Background(), account, container, twoShards(), false)
	assert.ErrorIs(t, err, sharding.ErrShardingDisabled)
}

func TestReplaceShardsAlreadySharded(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t, sharding.Config{})

	f.dir.EXPECT().GetProperties(gomock.Any(), account, container).
		Return(&proxy.ContainerProperties{}, nil)
	f.cp.EXPECT().Show(gomock.Any(), account, container).Return([]shards.ShardRange{
		{Index: 0, Lower: "", Upper: "m", Cid: cid.FromName("a", "b")},
		{Index: 1, Lower: "m", Upper: "", Cid: cid.FromName("a", "c")},
	}, nil)

	_, err := f.cs.ReplaceShards(context.Background(), account, container, twoShards(), true)
	assert.ErrorIs(err, sharding.ErrAlreadySharded)
	assert.True(oioerror.IsCode(err, oioerror.OIO_NOT_IMPLEMENTED))
	assert.True(oioerror.IsPrecondition(err))
}

func TestReplaceShardsNotEnabled(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t, sharding.Config{})

	for i := 0; i < 2; i++ {
		f.expectUnsharded()

		op, err := f.cs.ReplaceShards(context.Background(), account, container, twoShards(), false)
		assert.ErrorIs(err, sharding.ErrShardingDisabled)
		assert.Equal(sharding.StateAborted, op.State())
	}
	assert.Empty(f.opened)
}

func TestReplaceShardsInvalidInput(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t, sharding.Config{})

	op, err := f.cs.ReplaceShards(context.Background(), account, container, []shards.Candidate{
		shards.NewCandidate(0, "", "m"),
		shards.NewCandidate(2, "m", ""),
	}, true)
	assert.True(oioerror.IsCode(err, oioerror.OIO_VALIDATION))
	assert.Equal(sharding.StateAborted, op.State())
	assert.Nil(op.Shards)
}

func TestReplaceShardsPrepareRejected(t *testing.T) {
	f := newFixture(t, sharding.Config{})

	f.expectUnsharded()
	f.cp.EXPECT().Prepare(gomock.Any(), account, container).
		Return(int64(0), "", oioerror.NewBackendError(http.StatusConflict, nil))

	op, err := f.cs.ReplaceShards(context.Background(), account, container, twoShards(), true)
	assert.True(t, oioerror.IsCode(err, oioerror.OIO_BACKEND))
	assert.Equal(t, sharding.StateAborted, op.State())
}

func TestReplaceShardsPrepareMissingTimestamp(t *testing.T) {
	f := newFixture(t, sharding.Config{})

	f.expectUnsharded()
	gomock.InOrder(
		f.cp.EXPECT().Prepare(gomock.Any(), account, container).
			Return(int64(0), "", oioerror.New(oioerror.OIO_PROTOCOL, "Missing timestamp")),
		f.cp.EXPECT().Abort(gomock.Any(), account, container).Return(nil),
	)

	_, err := f.cs.ReplaceShards(context.Background(), account, container, twoShards(), true)
	assert.ErrorContains(t, err, "Missing timestamp")
}

func TestReplaceShardsReplaceFailureCompensatesEverything(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t, sharding.Config{})

	f.expectUnsharded()
	gomock.InOrder(
		f.cp.EXPECT().Prepare(gomock.Any(), account, container).Return(timestamp, queueURL, nil),
		f.cp.EXPECT().CreateShard(gomock.Any(), shardAccount, shardName(0), gomock.Any()).Return(nil),
		f.cp.EXPECT().CreateShard(gomock.Any(), shardAccount, shardName(1), gomock.Any()).Return(nil),
		f.cp.EXPECT().Replace(gomock.Any(), account, container, gomock.Any()).
			Return(oioerror.NewBackendError(http.StatusBadRequest, []byte("bad shards"))),
		f.wq.EXPECT().Close().Return(nil),
		f.dir.EXPECT().Destroy(gomock.Any(), shardAccount, shardName(1)).Return(nil),
		f.dir.EXPECT().Destroy(gomock.Any(), shardAccount, shardName(0)).Return(nil),
		f.cp.EXPECT().Abort(gomock.Any(), account, container).Return(nil),
	)

	op, err := f.cs.ReplaceShards(context.Background(), account, container, twoShards(), true)
	assert.ErrorContains(err, "bad shards")
	assert.Equal(sharding.StateAborted, op.State())
}

func TestReplaceShardsQueueFailureCompensates(t *testing.T) {
	assert := assert.New(t)
	ctrl := gomock.NewController(t)
	cp := mock.NewMockControlPlane(ctrl)
	dir := mock.NewMockDirectory(ctrl)

	cs := sharding.NewContainerSharding(cp, dir, func(string, string) (sharding.WorkQueue, error) {
		return nil, errors.New("queue unreachable")
	}, sharding.Config{CompensationBackoff: time.Millisecond})

	dir.EXPECT().GetProperties(gomock.Any(), account, container).Return(&proxy.ContainerProperties{}, nil)
	cp.EXPECT().Show(gomock.Any(), account, container).Return(nil, nil)
	cp.EXPECT().Prepare(gomock.Any(), account, container).Return(timestamp, queueURL, nil)
	cp.EXPECT().CreateShard(gomock.Any(), shardAccount, gomock.Any(), gomock.Any()).Return(nil).Times(2)
	dir.EXPECT().Destroy(gomock.Any(), shardAccount, gomock.Any()).Return(nil).Times(2)
	cp.EXPECT().Abort(gomock.Any(), account, container).Return(nil)

	op, err := cs.ReplaceShards(context.Background(), account, container, twoShards(), true)
	assert.ErrorContains(err, "queue unreachable")
	assert.Equal(sharding.StateAborted, op.State())
}

func TestCompensationRetriesAndReports(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t, sharding.Config{CompensationRetries: 2})

	cause := oioerror.NewBackendError(http.StatusInternalServerError, []byte("replace failed"))

	f.expectUnsharded()
	f.cp.EXPECT().Prepare(gomock.Any(), account, container).Return(timestamp, queueURL, nil)
	f.cp.EXPECT().CreateShard(gomock.Any(), shardAccount, gomock.Any(), gomock.Any()).Return(nil).Times(2)
	f.cp.EXPECT().Replace(gomock.Any(), account, container, gomock.Any()).Return(cause)
	f.wq.EXPECT().Close().Return(nil)
	// 404: already gone, no retry.
	f.dir.EXPECT().Destroy(gomock.Any(), shardAccount, shardName(1)).
		Return(oioerror.NewBackendError(http.StatusNotFound, nil))
	// 5xx: retried, then reported.
	f.dir.EXPECT().Destroy(gomock.Any(), shardAccount, shardName(0)).
		Return(oioerror.NewBackendError(http.StatusServiceUnavailable, nil)).Times(3)
	// 4xx: not retried, reported.
	f.cp.EXPECT().Abort(gomock.Any(), account, container).
		Return(oioerror.NewBackendError(http.StatusBadRequest, []byte("no sharding in progress")))

	op, err := f.cs.ReplaceShards(context.Background(), account, container, twoShards(), true)
	assert.Equal(sharding.StateAborted, op.State())

	var ce *sharding.CompensationError
	require.ErrorAs(t, err, &ce)
	assert.Len(ce.Failures, 2)
	assert.ErrorIs(err, cause)
	assert.Contains(err.Error(), "compensation incomplete")
	assert.Contains(err.Error(), "no sharding in progress")
}

func TestReplaceShardsConcurrentCreation(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t, sharding.Config{CreateConcurrency: 4})

	candidates := []shards.Candidate{
		shards.NewCandidate(0, "", "d"),
		shards.NewCandidate(1, "d", "k"),
		shards.NewCandidate(2, "k", "s"),
		shards.NewCandidate(3, "s", ""),
	}

	var mu sync.Mutex
	var created, destroyed []string

	f.expectUnsharded()
	f.cp.EXPECT().Prepare(gomock.Any(), account, container).Return(timestamp, queueURL, nil)
	f.cp.EXPECT().CreateShard(gomock.Any(), shardAccount, gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, acct, name string, info *shards.ShardInfo) error {
			mu.Lock()
			defer mu.Unlock()
			created = append(created, name)
			if name == shardName(2) {
				// The request went out but the answer was lost.
				return context.DeadlineExceeded
			}
			return nil
		}).MinTimes(1).MaxTimes(4)
	f.dir.EXPECT().Destroy(gomock.Any(), shardAccount, gomock.Any()).DoAndReturn(
		func(ctx context.Context, acct, name string) error {
			mu.Lock()
			defer mu.Unlock()
			destroyed = append(destroyed, name)
			return nil
		}).AnyTimes()
	f.cp.EXPECT().Abort(gomock.Any(), account, container).Return(nil)

	op, err := f.cs.ReplaceShards(context.Background(), account, container, candidates, true)
	assert.Equal(sharding.StateAborted, op.State())

	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(err.Error(), "failed to create shard 2")

	sort.Strings(created)
	sort.Strings(destroyed)
	assert.Equal(created, destroyed)
}

func TestReplaceShardsConcurrentSuccess(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t, sharding.Config{CreateConcurrency: 3})

	candidates := []shards.Candidate{
		shards.NewCandidate(2, "k", ""),
		shards.NewCandidate(0, "", "d"),
		shards.NewCandidate(1, "d", "k"),
	}

	f.expectUnsharded()
	f.cp.EXPECT().Prepare(gomock.Any(), account, container).Return(timestamp, queueURL, nil)
	f.cp.EXPECT().CreateShard(gomock.Any(), shardAccount, gomock.Any(), gomock.Any()).Return(nil).Times(3)
	f.cp.EXPECT().Replace(gomock.Any(), account, container, gomock.Any()).DoAndReturn(
		func(ctx context.Context, acct, ref string, ranges []shards.ShardRange) error {
			for i, sr := range ranges {
				assert.Equal(i, sr.Index)
				assert.Equal(cid.FromName(shardAccount, shardName(i)), sr.Cid)
			}
			return nil
		})
	f.wq.EXPECT().Close().Return(nil)

	op, err := f.cs.ReplaceShards(context.Background(), account, container, candidates, true)
	assert.NoError(err)
	assert.Equal(sharding.StateReplaced, op.State())
}

func TestShowShards(t *testing.T) {
	f := newFixture(t, sharding.Config{})
	f.cp.EXPECT().Show(gomock.Any(), account, container).Return(nil, nil)

	ranges, err := f.cs.ShowShards(context.Background(), account, container)
	assert.NoError(t, err)
	assert.Empty(t, ranges)
}

func TestStateString(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("IDLE", sharding.StateIdle.String())
	assert.Equal("QUEUE_READY", sharding.StateQueueReady.String())
	assert.Equal("ABORTED", sharding.StateAborted.String())
	assert.Equal("UNKNOWN", sharding.State(99).String())
}

package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type job struct {
	id   uint64
	body string
}

type fakeConn struct {
	jobs       []job
	reserveErr error
	deleted    []uint64
	reserves   int
	closed     bool
}

func (fc *fakeConn) Reserve(timeout time.Duration) (uint64, []byte, error) {
	fc.reserves++
	if fc.reserveErr != nil {
		return 0, nil, fc.reserveErr
	}
	if len(fc.jobs) == 0 {
		return 0, nil, ErrNoMessage
	}
	j := fc.jobs[0]
	fc.jobs = fc.jobs[1:]
	return j.id, []byte(j.body), nil
}

func (fc *fakeConn) Delete(id uint64) error {
	fc.deleted = append(fc.deleted, id)
	return nil
}

func (fc *fakeConn) Close() error {
	fc.closed = true
	return nil
}

func openFake(t *testing.T, fc *fakeConn, idle int) *Channel {
	ch, err := Open("beanstalk://127.0.0.1:6014", "ROOT.sharding-12", Options{
		ReserveTimeout: time.Millisecond,
		IdleRounds:     idle,
		Dial: func(queueURL, tube string, timeout time.Duration) (Conn, error) {
			assert.Equal(t, "beanstalk://127.0.0.1:6014", queueURL)
			assert.Equal(t, "ROOT.sharding-12", tube)
			return fc, nil
		},
	})
	assert.NoError(t, err)
	return ch
}

func TestDrainConsumesEverything(t *testing.T) {
	assert := assert.New(t)

	fc := &fakeConn{jobs: []job{{1, "a"}, {2, "b"}, {3, "c"}}}
	ch := openFake(t, fc, 2)

	var seen []string
	n, err := ch.Drain(context.Background(), func(ctx context.Context, ev Event) error {
		assert.Equal("ROOT.sharding-12", ev.Tube)
		seen = append(seen, string(ev.Body))
		return nil
	})
	assert.NoError(err)
	assert.Equal(3, n)
	assert.Equal([]string{"a", "b", "c"}, seen)
	assert.Equal([]uint64{1, 2, 3}, fc.deleted)
	// three jobs plus two empty reservations
	assert.Equal(5, fc.reserves)

	assert.NoError(ch.Close())
	assert.True(fc.closed)
}

func TestDrainStopsOnRequest(t *testing.T) {
	assert := assert.New(t)

	fc := &fakeConn{jobs: []job{{1, "progress"}, {2, "done"}, {3, "late"}}}
	ch := openFake(t, fc, 1)

	n, err := ch.Drain(context.Background(), func(ctx context.Context, ev Event) error {
		if string(ev.Body) == "done" {
			return ErrStopDraining
		}
		return nil
	})
	assert.NoError(err)
	assert.Equal(2, n)
	assert.Equal([]uint64{1, 2}, fc.deleted)
	assert.Len(fc.jobs, 1)
}

func TestDrainHandlerFailureKeepsJob(t *testing.T) {
	assert := assert.New(t)

	boom := errors.New("boom")
	fc := &fakeConn{jobs: []job{{7, "x"}}}
	ch := openFake(t, fc, 1)

	n, err := ch.Drain(context.Background(), func(ctx context.Context, ev Event) error {
		return boom
	})
	assert.ErrorIs(err, boom)
	assert.Equal(0, n)
	assert.Empty(fc.deleted)
}

func TestDrainReserveFailure(t *testing.T) {
	fc := &fakeConn{reserveErr: errors.New("connection reset")}
	ch := openFake(t, fc, 1)

	_, err := ch.Drain(context.Background(), nil)
	assert.ErrorContains(t, err, "connection reset")
}

func TestDrainCancelled(t *testing.T) {
	fc := &fakeConn{jobs: []job{{1, "a"}}}
	ch := openFake(t, fc, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ch.Drain(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, fc.reserves)
}

func TestOpenDialFailure(t *testing.T) {
	_, err := Open("beanstalk://127.0.0.1:6014", "tube", Options{
		Dial: func(string, string, time.Duration) (Conn, error) {
			return nil, errors.New("refused")
		},
	})
	assert.ErrorContains(t, err, "refused")
}

func TestAddr(t *testing.T) {
	assert := assert.New(t)

	addr, err := Addr("beanstalk://127.0.0.1:6014")
	assert.NoError(err)
	assert.Equal("127.0.0.1:6014", addr)

	addr, err = Addr("10.0.0.1:11300")
	assert.NoError(err)
	assert.Equal("10.0.0.1:11300", addr)

	_, err = Addr("kafka://127.0.0.1:9092")
	assert.Error(err)
	_, err = Addr("beanstalk://")
	assert.Error(err)
	_, err = Addr("localhost")
	assert.Error(err)
}

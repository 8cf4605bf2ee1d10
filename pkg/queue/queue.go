// Package queue handles the work-queue channel (a beanstalkd tube) the
// backend publishes sharding events to.
package queue

import (
	"context"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/beanstalkd/go-beanstalk"
	"github.com/pkg/errors"

	"github.com/open-io/oio-sharding/pkg/oiolog"
)

// ErrNoMessage is returned by Conn.Reserve when nothing was published
// before the reservation timeout.
var ErrNoMessage = errors.New("no message reserved")

// ErrStopDraining may be returned by an EventHandler to end Drain early.
var ErrStopDraining = errors.New("stop draining")

// Conn is a connection watching a single tube.
type Conn interface {
	Reserve(timeout time.Duration) (uint64, []byte, error)
	Delete(id uint64) error
	Close() error
}

// DialFunc opens a Conn on tube at queueURL.
type DialFunc func(queueURL, tube string, timeout time.Duration) (Conn, error)

type Event struct {
	ID   uint64
	Tube string
	Body []byte
}

type EventHandler func(ctx context.Context, ev Event) error

type Options struct {
	DialTimeout    time.Duration
	ReserveTimeout time.Duration
	// IdleRounds is the number of consecutive empty reservations after
	// which the channel is considered drained.
	IdleRounds int
	Dial       DialFunc
}

// Channel is an open tube dedicated to one sharding epoch.
type Channel struct {
	conn Conn
	tube string
	opts Options
}

// Open connects to queueURL and watches tube.
func Open(queueURL, tube string, opts Options) (*Channel, error) {
	if opts.Dial == nil {
		opts.Dial = DialBeanstalk
	}
	if opts.ReserveTimeout <= 0 {
		opts.ReserveTimeout = time.Second
	}
	if opts.IdleRounds <= 0 {
		opts.IdleRounds = 1
	}

	conn, err := opts.Dial(queueURL, tube, opts.DialTimeout)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open queue %s", queueURL)
	}

	oiolog.Zero.Debug().
		Str("queue", queueURL).
		Str("tube", tube).
		Msg("queue: channel opened")

	return &Channel{conn: conn, tube: tube, opts: opts}, nil
}

// Drain reserves messages until the tube stays empty for IdleRounds
// reservations, the handler asks to stop, or ctx is done. Every handled
// message is deleted. It returns the number of handled messages.
func (ch *Channel) Drain(ctx context.Context, handler EventHandler) (int, error) {
	handled := 0
	idle := 0
	for idle < ch.opts.IdleRounds {
		if err := ctx.Err(); err != nil {
			return handled, err
		}

		id, body, err := ch.conn.Reserve(ch.opts.ReserveTimeout)
		if errors.Is(err, ErrNoMessage) {
			idle++
			continue
		}
		if err != nil {
			return handled, errors.Wrapf(err, "failed to reserve from tube %s", ch.tube)
		}
		idle = 0

		var herr error
		if handler != nil {
			herr = handler(ctx, Event{ID: id, Tube: ch.tube, Body: body})
		}
		if herr != nil && !errors.Is(herr, ErrStopDraining) {
			return handled, herr
		}
		if err := ch.conn.Delete(id); err != nil {
			return handled, errors.Wrapf(err, "failed to delete job %d from tube %s", id, ch.tube)
		}
		handled++

		oiolog.Zero.Debug().
			Str("tube", ch.tube).
			Uint64("job", id).
			Int("size", len(body)).
			Msg("queue: event consumed")

		if herr != nil {
			return handled, nil
		}
	}
	return handled, nil
}

func (ch *Channel) Close() error {
	return ch.conn.Close()
}

// Addr extracts the host:port of a queue location such as
// "beanstalk://127.0.0.1:6014".
func Addr(queueURL string) (string, error) {
	if !strings.Contains(queueURL, "://") {
		if _, _, err := net.SplitHostPort(queueURL); err != nil {
			return "", errors.Wrapf(err, "invalid queue address %q", queueURL)
		}
		return queueURL, nil
	}
	u, err := url.Parse(queueURL)
	if err != nil {
		return "", errors.Wrapf(err, "invalid queue address %q", queueURL)
	}
	if u.Scheme != "beanstalk" && u.Scheme != "beanstalkd" {
		return "", errors.Errorf("unsupported queue scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", errors.Errorf("invalid queue address %q", queueURL)
	}
	return u.Host, nil
}

type beanstalkConn struct {
	conn *beanstalk.Conn
	set  *beanstalk.TubeSet
}

// DialBeanstalk is the default DialFunc.
func DialBeanstalk(queueURL, tube string, timeout time.Duration) (Conn, error) {
	addr, err := Addr(queueURL)
	if err != nil {
		return nil, err
	}
	var conn *beanstalk.Conn
	if timeout > 0 {
		conn, err = beanstalk.DialTimeout("tcp", addr, timeout)
	} else {
		conn, err = beanstalk.Dial("tcp", addr)
	}
	if err != nil {
		return nil, err
	}
	return &beanstalkConn{
		conn: conn,
		set:  beanstalk.NewTubeSet(conn, tube),
	}, nil
}

func (bc *beanstalkConn) Reserve(timeout time.Duration) (uint64, []byte, error) {
	id, body, err := bc.set.Reserve(timeout)
	if err != nil {
		var cerr beanstalk.ConnError
		if errors.As(err, &cerr) && cerr.Err == beanstalk.ErrTimeout {
			return 0, nil, ErrNoMessage
		}
		return 0, nil, err
	}
	return id, body, nil
}

func (bc *beanstalkConn) Delete(id uint64) error {
	return bc.conn.Delete(id)
}

func (bc *beanstalkConn) Close() error {
	return bc.conn.Close()
}

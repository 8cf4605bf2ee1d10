// Package sharding splits a container into shard containers through the
// control plane.
//
// ReplaceShards validates the requested shard ranges, checks the root
// container can be sharded, then prepares the sharding, creates one shard
// container per range, opens the work-queue channel of the sharding epoch
// and finally replaces the shard mapping of the root container. Each step
// that changes backend state registers an undo action; when a later step
// fails the undo actions run in reverse order before the error is
// returned.
package sharding

import (
	"context"
	"net/http"
	"time"

	"github.com/open-io/oio-sharding/pkg/config"
	"github.com/open-io/oio-sharding/pkg/models/shards"
	"github.com/open-io/oio-sharding/pkg/proxy"
	"github.com/open-io/oio-sharding/pkg/queue"
)

type ControlPlane interface {
	Prepare(ctx context.Context, account, container string) (int64, string, error)
	CreateShard(ctx context.Context, shardAccount, shardContainer string, info *shards.ShardInfo) error
	Replace(ctx context.Context, account, container string, ranges []shards.ShardRange) error
	Abort(ctx context.Context, account, container string) error
	Show(ctx context.Context, account, container string) ([]shards.ShardRange, error)
}

type Directory interface {
	GetProperties(ctx context.Context, account, container string) (*proxy.ContainerProperties, error)
	Destroy(ctx context.Context, account, container string) error
}

type WorkQueue interface {
	Drain(ctx context.Context, handler queue.EventHandler) (int, error)
	Close() error
}

// QueueOpener opens the work-queue channel named tube at queueURL.
type QueueOpener func(queueURL, tube string) (WorkQueue, error)

type Config struct {
	CreateConcurrency   int
	DrainQueue          bool
	CompensationRetries uint64
	CompensationBackoff time.Duration
	OnEvent             queue.EventHandler
}

type ContainerSharding struct {
	cp        ControlPlane
	dir       Directory
	openQueue QueueOpener
	cfg       Config
}

func NewContainerSharding(cp ControlPlane, dir Directory, openQueue QueueOpener, cfg Config) *ContainerSharding {
	if cfg.CreateConcurrency <= 0 {
		cfg.CreateConcurrency = config.DefaultCreateConcurrency
	}
	if cfg.CompensationRetries == 0 {
		cfg.CompensationRetries = config.DefaultCompensationRetries
	}
	if cfg.CompensationBackoff <= 0 {
		cfg.CompensationBackoff = config.DefaultCompensationBackoff
	}
	return &ContainerSharding{
		cp:        cp,
		dir:       dir,
		openQueue: openQueue,
		cfg:       cfg,
	}
}

// NewFromConfig wires the proxy clients and the beanstalkd work queue
// described by cfg.
func NewFromConfig(cfg *config.Sharding) (*ContainerSharding, error) {
	pcfg := proxy.Config{
		ProxyURL:  cfg.ProxyURL,
		Namespace: cfg.Namespace,
		Timeout:   cfg.RequestTimeout.Duration,
	}
	tlsConfig, err := cfg.ProxyTLS.Init()
	if err != nil {
		return nil, err
	}
	if tlsConfig != nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = tlsConfig
		pcfg.HTTPClient = &http.Client{Transport: transport}
	}
	qopts := queue.Options{
		DialTimeout:    cfg.RequestTimeout.Duration,
		ReserveTimeout: cfg.QueueReserveTimeout.Duration,
		IdleRounds:     cfg.QueueIdleRounds,
	}
	return NewContainerSharding(
		proxy.NewShardingClient(pcfg),
		proxy.NewContainerClient(pcfg),
		func(queueURL, tube string) (WorkQueue, error) {
			return queue.Open(queueURL, tube, qopts)
		},
		Config{
			CreateConcurrency:   cfg.CreateConcurrency,
			DrainQueue:          cfg.Draining(),
			CompensationRetries: cfg.CompensationRetries,
			CompensationBackoff: cfg.CompensationBackoff.Duration,
		},
	), nil
}

// ShowShards returns the current shards of account/container.
func (cs *ContainerSharding) ShowShards(ctx context.Context, account, container string) ([]shards.ShardRange, error) {
	return cs.cp.Show(ctx, account, container)
}

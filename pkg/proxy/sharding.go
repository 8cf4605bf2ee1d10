package proxy

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/open-io/oio-sharding/pkg/models/oioerror"
	"github.com/open-io/oio-sharding/pkg/models/shards"
	"github.com/open-io/oio-sharding/pkg/oiolog"
)

// ShardingClient wraps the /container/sharding requests of the proxy.
type ShardingClient struct {
	cl *Client
}

func NewShardingClient(cfg Config) *ShardingClient {
	return &ShardingClient{cl: newClient(cfg, "/container/sharding")}
}

// Prepare announces a sharding operation on account/container and returns
// the sharding timestamp and the address of the work queue.
func (sc *ShardingClient) Prepare(ctx context.Context, account, container string) (int64, string, error) {
	resp, err := sc.cl.request(ctx, http.MethodPost, "/prepare",
		Target{Account: account, Reference: container}, nil, nil)
	if err != nil {
		return 0, "", err
	}
	if resp.StatusCode != http.StatusNoContent {
		return 0, "", oioerror.NewBackendError(resp.StatusCode, resp.Body)
	}

	timestamp, err := strconv.ParseInt(resp.Header.Get(HeaderShardingTimestamp), 10, 64)
	if err != nil || timestamp == 0 {
		return 0, "", oioerror.New(oioerror.OIO_PROTOCOL, "Missing timestamp")
	}
	queueURL := resp.Header.Get(HeaderShardingQueueURL)
	if queueURL == "" {
		return 0, "", oioerror.New(oioerror.OIO_PROTOCOL, "Missing queue URL")
	}

	oiolog.Zero.Debug().
		Str("account", account).
		Str("container", container).
		Int64("timestamp", timestamp).
		Str("queue", queueURL).
		Msg("sharding prepared")
	return timestamp, queueURL, nil
}

// CreateShard materializes one shard as the container
// shardAccount/shardContainer.
func (sc *ShardingClient) CreateShard(ctx context.Context, shardAccount, shardContainer string, info *shards.ShardInfo) error {
	resp, err := sc.cl.request(ctx, http.MethodPost, "/create_shard",
		Target{Account: shardAccount, Reference: shardContainer}, nil, info)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusNoContent {
		return oioerror.NewBackendError(resp.StatusCode, resp.Body)
	}
	return nil
}

// Replace swaps the shard mapping of the root container.
func (sc *ShardingClient) Replace(ctx context.Context, account, container string, ranges []shards.ShardRange) error {
	resp, err := sc.cl.request(ctx, http.MethodPost, "/replace",
		Target{Account: account, Reference: container}, nil, ranges)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusNoContent {
		return oioerror.NewBackendError(resp.StatusCode, resp.Body)
	}
	return nil
}

// Abort tells the control plane the sharding operation failed.
func (sc *ShardingClient) Abort(ctx context.Context, account, container string) error {
	resp, err := sc.cl.request(ctx, http.MethodPost, "/abort",
		Target{Account: account, Reference: container}, nil, nil)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusNoContent {
		return oioerror.NewBackendError(resp.StatusCode, resp.Body)
	}
	return nil
}

// Show returns the current shards of account/container, empty when the
// container is not sharded.
func (sc *ShardingClient) Show(ctx context.Context, account, container string) ([]shards.ShardRange, error) {
	resp, err := sc.cl.request(ctx, http.MethodGet, "/show",
		Target{Account: account, Reference: container}, nil, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, oioerror.NewBackendError(resp.StatusCode, resp.Body)
	}
	if len(resp.Body) == 0 {
		return nil, nil
	}

	var ranges []shards.ShardRange
	if err := json.Unmarshal(resp.Body, &ranges); err != nil {
		return nil, oioerror.Newf(oioerror.OIO_PROTOCOL, "failed to decode shards: %v", err)
	}
	return ranges, nil
}

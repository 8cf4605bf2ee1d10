package proxy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/open-io/oio-sharding/pkg/models/oioerror"
	"github.com/open-io/oio-sharding/pkg/models/shards"
)

const (
	// PropShardInfo is set in the system properties of every shard container.
	PropShardInfo = "sys.m2.sharding.shard_info"
	// PropShardingState holds the meta2 sharding state of a container.
	PropShardingState = "sys.m2.sharding.state"
)

type ContainerProperties struct {
	Properties map[string]string `json:"properties"`
	System     map[string]string `json:"system"`
}

func (cp *ContainerProperties) IsShard() bool {
	_, ok := cp.System[PropShardInfo]
	return ok
}

// ShardingState decodes the sharding state published by meta2. ok is false
// when the container never took part in a sharding or the value is not a
// number.
func (cp *ContainerProperties) ShardingState() (state shards.ShardingState, ok bool) {
	raw, ok := cp.System[PropShardingState]
	if !ok {
		return shards.StateNone, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return shards.StateNone, false
	}
	return shards.ShardingState(v), true
}

// ContainerClient wraps the /container requests needed around sharding.
type ContainerClient struct {
	cl *Client
}

func NewContainerClient(cfg Config) *ContainerClient {
	return &ContainerClient{cl: newClient(cfg, "/container")}
}

func (cc *ContainerClient) GetProperties(ctx context.Context, account, container string) (*ContainerProperties, error) {
	return cc.GetPropertiesOf(ctx, Target{Account: account, Reference: container})
}

func (cc *ContainerClient) GetPropertiesOf(ctx context.Context, target Target) (*ContainerProperties, error) {
	resp, err := cc.cl.request(ctx, http.MethodPost, "/get_properties", target, nil, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, oioerror.NewBackendError(resp.StatusCode, resp.Body)
	}

	props := &ContainerProperties{}
	if len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, props); err != nil {
			return nil, oioerror.Newf(oioerror.OIO_PROTOCOL, "failed to decode container properties: %v", err)
		}
	}
	if props.System == nil {
		props.System = map[string]string{}
	}
	return props, nil
}

// Destroy removes a container even if it still holds objects.
func (cc *ContainerClient) Destroy(ctx context.Context, account, container string) error {
	resp, err := cc.cl.request(ctx, http.MethodPost, "/destroy",
		Target{Account: account, Reference: container}, url.Values{"force": {"1"}}, nil)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusNoContent {
		return oioerror.NewBackendError(resp.StatusCode, resp.Body)
	}
	return nil
}

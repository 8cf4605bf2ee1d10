package shards

import (
	"sort"
	"strings"
)

// ShardRange is one segment of a container's key space. Lower is inclusive,
// Upper is exclusive, and an empty bound means the segment is unbounded on
// that side.
type ShardRange struct {
	Index int    `json:"index"`
	Lower string `json:"lower"`
	Upper string `json:"upper"`
	Cid   string `json:"cid,omitempty"`
}

// ShardInfo is the description sent to the control plane when a shard
// container is created.
type ShardInfo struct {
	RootCid   string `json:"root_cid"`
	Timestamp int64  `json:"timestamp"`
	Lower     string `json:"lower"`
	Upper     string `json:"upper"`
}

func (sr *ShardRange) BoundFree() bool {
	return sr.Lower == "" && sr.Upper == ""
}

func (sr *ShardRange) Contains(path string) bool {
	if sr.Lower != "" && path < sr.Lower {
		return false
	}
	if sr.Upper != "" && path >= sr.Upper {
		return false
	}
	return true
}

// FindShard returns the range of a canonical partition owning path.
func FindShard(ranges []ShardRange, path string) (*ShardRange, bool) {
	i := sort.Search(len(ranges), func(i int) bool {
		return ranges[i].Upper == "" || path < ranges[i].Upper
	})
	if i == len(ranges) || !ranges[i].Contains(path) {
		return nil, false
	}
	return &ranges[i], true
}

// ShardingState mirrors the sharding states published by meta2.
type ShardingState int

const (
	StateNone ShardingState = 0

	StateSavingWrites ShardingState = iota
	StateLocked
	StateSharded
	StateAborted

	StateApplyingSavedWrites ShardingState = 128
	StateCleanedUp           ShardingState = 129
)

func (s ShardingState) String() string {
	switch s {
	case StateNone:
		return "NONE"
	case StateSavingWrites:
		return "SAVING_WRITES"
	case StateLocked:
		return "LOCKED"
	case StateSharded:
		return "SHARDED"
	case StateAborted:
		return "ABORTED"
	case StateApplyingSavedWrites:
		return "APPLYING_SAVED_WRITES"
	case StateCleanedUp:
		return "CLEANED_UP"
	default:
		return "UNKNOWN"
	}
}

// InProgress tells whether a root container is in the middle of a
// sharding operation.
func (s ShardingState) InProgress() bool {
	return s == StateSavingWrites || s == StateLocked
}

func normalizeCid(id string) string {
	return strings.ToUpper(id)
}

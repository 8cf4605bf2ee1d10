package shards

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/open-io/oio-sharding/pkg/cid"
	"github.com/open-io/oio-sharding/pkg/models/oioerror"
)

// Candidate is a shard range as supplied by a caller, before validation.
// A nil field means the key was absent.
type Candidate struct {
	Index *int
	Lower *string
	Upper *string
	Cid   *string
}

func NewCandidate(index int, lower, upper string) Candidate {
	return Candidate{Index: &index, Lower: &lower, Upper: &upper}
}

func (c Candidate) WithCid(id string) Candidate {
	c.Cid = &id
	return c
}

// CandidatesFromRanges turns already built ranges back into candidates,
// keeping their container ids when set.
func CandidatesFromRanges(ranges []ShardRange) []Candidate {
	res := make([]Candidate, 0, len(ranges))
	for _, r := range ranges {
		c := NewCandidate(r.Index, r.Lower, r.Upper)
		if r.Cid != "" {
			c = c.WithCid(r.Cid)
		}
		res = append(res, c)
	}
	return res
}

// ParseCandidates decodes a JSON document describing shard ranges. The
// index may be a JSON number or a numeric string; bounds and cid must be
// strings.
func ParseCandidates(data []byte) ([]Candidate, error) {
	// encoding/json replaces invalid bytes with U+FFFD, which would merge
	// distinct bounds.
	if !utf8.Valid(data) {
		return nil, oioerror.New(oioerror.OIO_VALIDATION, "Expected UTF-8 encoded shard ranges")
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, oioerror.Newf(oioerror.OIO_VALIDATION, "failed to decode shard ranges: %v", err)
	}
	list, ok := doc.([]any)
	if !ok {
		return nil, oioerror.New(oioerror.OIO_VALIDATION, "Expected a list of shard ranges")
	}

	res := make([]Candidate, 0, len(list))
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, oioerror.New(oioerror.OIO_VALIDATION, "Expected an object to describe a shard range")
		}
		var c Candidate
		if v, ok := obj["index"]; ok && v != nil {
			idx, err := parseIndex(v)
			if err != nil {
				return nil, err
			}
			c.Index = &idx
		}
		for _, f := range []struct {
			key string
			dst **string
		}{{"lower", &c.Lower}, {"upper", &c.Upper}, {"cid", &c.Cid}} {
			key, dst := f.key, f.dst
			v, ok := obj[key]
			if !ok || v == nil {
				continue
			}
			s, ok := v.(string)
			if !ok {
				return nil, oioerror.Newf(oioerror.OIO_VALIDATION, "Expected a string for the %q", key)
			}
			*dst = &s
		}
		res = append(res, c)
	}
	return res, nil
}

func parseIndex(v any) (int, error) {
	switch t := v.(type) {
	case float64:
		if t != math.Trunc(t) || t > math.MaxInt32 || t < math.MinInt32 {
			return 0, oioerror.New(oioerror.OIO_VALIDATION, `Expected a number for the "index"`)
		}
		return int(t), nil
	case string:
		idx, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, oioerror.New(oioerror.OIO_VALIDATION, `Expected a number for the "index"`)
		}
		return idx, nil
	default:
		return 0, oioerror.New(oioerror.OIO_VALIDATION, `Expected a number for the "index"`)
	}
}

// FormatShard validates a single candidate. Existing shards (newShard
// false) and entries without bounds must name their container.
func FormatShard(c Candidate, newShard bool) (ShardRange, error) {
	var sr ShardRange

	if c.Index == nil {
		return sr, oioerror.New(oioerror.OIO_VALIDATION, `Expected an "index" in the shard range`)
	}
	if *c.Index < 0 {
		return sr, oioerror.New(oioerror.OIO_VALIDATION, `Expected a positive number for the "index"`)
	}
	sr.Index = *c.Index

	if c.Lower == nil {
		return sr, oioerror.New(oioerror.OIO_VALIDATION, `Expected a "lower" in the shard range`)
	}
	sr.Lower = *c.Lower

	if c.Upper == nil {
		return sr, oioerror.New(oioerror.OIO_VALIDATION, `Expected a "upper" in the shard range`)
	}
	sr.Upper = *c.Upper

	if sr.Lower != "" && sr.Upper != "" && sr.Lower >= sr.Upper {
		return sr, oioerror.New(oioerror.OIO_VALIDATION, `Expected a "upper" greater the "lower"`)
	}

	if c.Cid != nil {
		if !cid.IsHexa(*c.Cid, cid.StrlenCid) {
			return sr, oioerror.New(oioerror.OIO_VALIDATION, `Expected a container ID for the "cid"`)
		}
		sr.Cid = normalizeCid(*c.Cid)
	} else if !newShard || sr.BoundFree() {
		return sr, oioerror.New(oioerror.OIO_VALIDATION, `Expected a "cid" in the shard range`)
	}

	return sr, nil
}

// FormatShards validates candidates and returns them as a canonical
// partition: sorted by index, indices 0..N-1, only the first lower and the
// last upper empty, and each upper equal to the next lower.
func FormatShards(candidates []Candidate, newShards bool) ([]ShardRange, error) {
	if len(candidates) < 2 {
		return nil, oioerror.New(oioerror.OIO_VALIDATION, "Expected at least 2 shards")
	}

	ranges := make([]ShardRange, 0, len(candidates))
	for _, c := range candidates {
		sr, err := FormatShard(c, newShards)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, sr)
	}

	sort.SliceStable(ranges, func(i, j int) bool {
		return ranges[i].Index < ranges[j].Index
	})

	for i, sr := range ranges {
		if sr.Index < i {
			return nil, oioerror.Newf(oioerror.OIO_VALIDATION, `Duplicate "index" %d`, sr.Index)
		}
		if sr.Index != i {
			return nil, oioerror.Newf(oioerror.OIO_VALIDATION, `Missing "index" %d`, i)
		}
	}

	last := len(ranges) - 1
	previousUpper := ""
	for i, sr := range ranges {
		if sr.Lower != previousUpper {
			if i == 0 {
				return nil, oioerror.New(oioerror.OIO_VALIDATION, `Expected an empty "lower" for the first shard`)
			}
			return nil, oioerror.New(oioerror.OIO_VALIDATION, `Expected the same "lower" as the "upper" of the previous shard`)
		}
		previousUpper = sr.Upper

		if i < last && sr.Upper == "" {
			return nil, oioerror.Newf(oioerror.OIO_VALIDATION, `Expected a non-empty "upper" for the shard %d`, i)
		}
		if i == last && sr.Upper != "" {
			return nil, oioerror.New(oioerror.OIO_VALIDATION, `Expected an empty "upper" for the last shard`)
		}
	}

	return ranges, nil
}

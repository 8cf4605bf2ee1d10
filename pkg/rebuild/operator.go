// Package rebuild runs maintenance operations on chunks.
package rebuild

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/open-io/oio-sharding/pkg/models/oioerror"
	"github.com/open-io/oio-sharding/pkg/oiolog"
)

// ErrContentNotFound must be returned (or wrapped) by ContentFactory.Get
// when the object does not exist.
var ErrContentNotFound = errors.New("content not found")

// chunkIDMinLen is the length under which a chunk reference is a position
// rather than a chunk id.
const chunkIDMinLen = 32

type Chunk struct {
	ID   string
	Host string
	URL  string
	Pos  string
}

type Content interface {
	ChunkByID(id string) (*Chunk, bool)
	RebuildChunk(ctx context.Context, chunkID string, allowFrozenContainer, allowSameRawx bool, chunkPos string) (int64, error)
	DeleteChunk(ctx context.Context, url string) error
}

type ContentFactory interface {
	Get(ctx context.Context, containerID, contentID string) (Content, error)
}

type RdirClient interface {
	ChunkDelete(ctx context.Context, rawxHost, containerID, contentID, chunkID string) error
}

type Options struct {
	// RawxID, when set, must be the host of the chunk to rebuild.
	RawxID               string
	TryChunkDelete       bool
	AllowFrozenContainer bool
	AllowSameRawx        bool
}

func DefaultOptions() Options {
	return Options{
		AllowFrozenContainer: true,
		AllowSameRawx:        true,
	}
}

type ChunkOperator struct {
	contents ContentFactory
	rdir     RdirClient
}

func NewChunkOperator(contents ContentFactory, rdir RdirClient) *ChunkOperator {
	return &ChunkOperator{contents: contents, rdir: rdir}
}

// ParseChunkRef tells whether ref designates a chunk id or a chunk
// position. A chunk id may be given as a full chunk URL.
func ParseChunkRef(ref string) (chunkID string, chunkPos string) {
	if len(ref) < chunkIDMinLen {
		return "", ref
	}
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[i+1:], ""
	}
	return ref, ""
}

// Rebuild finds the chunk in the metadata of the object then rebuilds it.
// It returns the number of bytes rebuilt.
func (co *ChunkOperator) Rebuild(ctx context.Context, containerID, contentID, chunkIDOrPos string, opts Options) (int64, error) {
	content, err := co.contents.Get(ctx, containerID, contentID)
	if errors.Is(err, ErrContentNotFound) {
		return 0, oioerror.New(oioerror.OIO_ORPHAN_CHUNK, "Content not found: possible orphan chunk")
	}
	if err != nil {
		return 0, err
	}

	chunkID, chunkPos := ParseChunkRef(chunkIDOrPos)

	var chunk *Chunk
	if chunkID != "" {
		var ok bool
		chunk, ok = content.ChunkByID(chunkID)
		if !ok {
			return 0, oioerror.New(oioerror.OIO_ORPHAN_CHUNK, "Chunk not found in content: possible orphan chunk")
		}
		if opts.RawxID != "" && chunk.Host != opts.RawxID {
			return 0, oioerror.New(oioerror.OIO_VALIDATION, "Chunk does not belong to this rawx")
		}
	}

	rebuilt, err := content.RebuildChunk(ctx, chunkID, opts.AllowFrozenContainer, opts.AllowSameRawx, chunkPos)
	if err != nil {
		return 0, err
	}

	if chunk == nil {
		return rebuilt, nil
	}

	if opts.TryChunkDelete {
		if err := content.DeleteChunk(ctx, chunk.URL); err != nil {
			oiolog.Zero.Warn().Err(err).Str("chunk", chunk.URL).Msg("failed to delete old chunk")
		} else {
			oiolog.Zero.Info().Str("chunk", chunk.URL).Msg("old chunk deleted")
		}
	}

	// Does not fail when the chunk is not referenced.
	if err := co.rdir.ChunkDelete(ctx, chunk.Host, containerID, contentID, chunkID); err != nil {
		oiolog.Zero.Warn().
			Err(err).
			Str("chunk", chunkID).
			Str("rawx", chunk.Host).
			Msg("failed to delete chunk entry from the rdir")
	}

	return rebuilt, nil
}

// seehuhn.de/go/pdfview - render PDF operator lists and edit annotations
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package render

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/blake2b"

	"seehuhn.de/go/pdfview"
	"seehuhn.de/go/pdfview/annotation"
	"seehuhn.de/go/pdfview/graphics/content"
)

// IntentKey identifies an operator list.  Render requests with the same
// key share the list.
type IntentKey struct {
	PageIndex int
	Intent    pdfview.RenderingIntent
	CacheKey  string
}

// ChunkSource produces operator lists.
type ChunkSource interface {
	// Stream starts producing the operator list for the given key.
	// Cancelling ctx aborts the stream.
	Stream(ctx context.Context, key IntentKey) (ChunkReader, error)
}

// ChunkReader delivers the chunks of one operator list.
type ChunkReader interface {
	// Next returns the next chunk.  After the chunk with LastChunk set,
	// io.EOF is returned.
	Next(ctx context.Context) (content.Chunk, error)
}

// makeIntentKey computes the key for an intent.  Annotation data only
// enters the key when the intent uses it: the storage content for
// [pdfview.IntentAnnotationsStorage] and the list of edited annotations
// for [pdfview.IntentIsEditing].
func makeIntentKey(pageIndex int, ri pdfview.RenderingIntent, src annotation.Source) IntentKey {
	var storageHash, modifiedHash string
	if src != nil {
		if ri&pdfview.IntentAnnotationsStorage != 0 {
			storageHash = src.Serializable().Hash
		}
		if ri&pdfview.IntentIsEditing != 0 {
			if ids := src.ModifiedIDs(); ids != nil {
				modifiedHash = ids.Hash
			}
		}
	}

	sum := blake2b.Sum256([]byte(fmt.Sprintf("%d_%s_%s", ri, storageHash, modifiedHash)))
	return IntentKey{
		PageIndex: pageIndex,
		Intent:    ri,
		CacheKey:  hex.EncodeToString(sum[:16]),
	}
}

// MemorySource is a [ChunkSource] which serves the same, fixed operator
// list for every key.
type MemorySource struct {
	Chunks []content.Chunk
}

// NewMemorySource returns a source which delivers l as a single chunk.
func NewMemorySource(l *content.List) *MemorySource {
	c := l.Chunk()
	c.LastChunk = true
	return &MemorySource{Chunks: []content.Chunk{c}}
}

// Stream implements the [ChunkSource] interface.
func (s *MemorySource) Stream(ctx context.Context, key IntentKey) (ChunkReader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &sliceReader{chunks: s.Chunks}, nil
}

type sliceReader struct {
	chunks []content.Chunk
	pos    int
	done   bool
}

func (r *sliceReader) Next(ctx context.Context) (content.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return content.Chunk{}, err
	}
	if r.done || r.pos >= len(r.chunks) {
		return content.Chunk{}, io.EOF
	}
	c := r.chunks[r.pos]
	r.pos++
	if c.LastChunk || r.pos == len(r.chunks) {
		c.LastChunk = true
		r.done = true
	}
	return c, nil
}

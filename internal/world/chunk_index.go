package world

import (
	"errors"
	"fmt"
	"sync"
)

// ErrChunkExists is returned when inserting a coordinate that is already indexed.
var ErrChunkExists = errors.New("chunk already indexed")

// ChunkIndex maps chunk coordinates to live chunks.
// Mutation happens on the tick goroutine only; reads may come from anywhere.
type ChunkIndex struct {
	chunks   map[ChunkCoord]*Chunk
	mu       sync.RWMutex
	modCount uint64 // Increases on any chunk add/remove
}

// NewChunkIndex creates an empty index.
func NewChunkIndex() *ChunkIndex {
	return &ChunkIndex{
		chunks: make(map[ChunkCoord]*Chunk),
	}
}

// Insert registers a chunk. Inserting a coordinate twice is a caller bug.
func (ci *ChunkIndex) Insert(c *Chunk) error {
	ci.mu.Lock()
	defer ci.mu.Unlock()

	if _, ok := ci.chunks[c.Coord]; ok {
		return fmt.Errorf("insert %v: %w", c.Coord, ErrChunkExists)
	}
	ci.chunks[c.Coord] = c
	ci.modCount++
	return nil
}

// Remove evicts the chunk at coord. It is a no-op when the coordinate is
// absent and refuses chunks that have not been marked for unloading.
func (ci *ChunkIndex) Remove(coord ChunkCoord) bool {
	ci.mu.Lock()
	defer ci.mu.Unlock()

	c, ok := ci.chunks[coord]
	if !ok || !c.unloading() {
		return false
	}
	delete(ci.chunks, coord)
	ci.modCount++
	return true
}

// Get returns the chunk at coord.
func (ci *ChunkIndex) Get(coord ChunkCoord) (*Chunk, bool) {
	ci.mu.RLock()
	c, ok := ci.chunks[coord]
	ci.mu.RUnlock()
	return c, ok
}

// Has checks if a chunk exists.
func (ci *ChunkIndex) Has(coord ChunkCoord) bool {
	ci.mu.RLock()
	_, ok := ci.chunks[coord]
	ci.mu.RUnlock()
	return ok
}

// Chunks returns a snapshot of all indexed chunks in unspecified order.
func (ci *ChunkIndex) Chunks() []*Chunk {
	ci.mu.RLock()
	defer ci.mu.RUnlock()
	out := make([]*Chunk, 0, len(ci.chunks))
	for _, c := range ci.chunks {
		out = append(out, c)
	}
	return out
}

// Coords returns a snapshot of the indexed coordinates.
func (ci *ChunkIndex) Coords() map[ChunkCoord]struct{} {
	ci.mu.RLock()
	defer ci.mu.RUnlock()
	out := make(map[ChunkCoord]struct{}, len(ci.chunks))
	for coord := range ci.chunks {
		out[coord] = struct{}{}
	}
	return out
}

// Len returns the number of indexed chunks.
func (ci *ChunkIndex) Len() int {
	ci.mu.RLock()
	defer ci.mu.RUnlock()
	return len(ci.chunks)
}

// ModCount returns the current modification count of the index.
func (ci *ChunkIndex) ModCount() uint64 {
	ci.mu.RLock()
	defer ci.mu.RUnlock()
	return ci.modCount
}

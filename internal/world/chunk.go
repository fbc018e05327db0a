package world

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// LoadState tracks whether a chunk should be present around the observers.
// Values are ordered; a chunk only ever moves to a larger value.
type LoadState int32

const (
	ShouldLoad LoadState = iota
	Loaded
	ShouldUnload
	Unloaded
)

func (s LoadState) String() string {
	switch s {
	case ShouldLoad:
		return "ShouldLoad"
	case Loaded:
		return "Loaded"
	case ShouldUnload:
		return "ShouldUnload"
	case Unloaded:
		return "Unloaded"
	}
	return fmt.Sprintf("LoadState(%d)", int32(s))
}

// GenerationState tracks content sampling progress. Ordered like LoadState.
type GenerationState int32

const (
	NotStarted GenerationState = iota
	Generating
	Done
)

func (s GenerationState) String() string {
	switch s {
	case NotStarted:
		return "NotStarted"
	case Generating:
		return "Generating"
	case Done:
		return "Done"
	}
	return fmt.Sprintf("GenerationState(%d)", int32(s))
}

// Voxel is the content of a single cell.
type Voxel uint8

const (
	VoxelAir Voxel = iota
	VoxelSolid
)

// Chunk is a cubic region of edge³ voxels.
type Chunk struct {
	Coord ChunkCoord
	edge  int

	load atomic.Int32
	gen  atomic.Int32
	// inFlight is set while a generator worker owns the chunk.
	inFlight atomic.Bool

	// transitionMu serializes load-state transitions with the renderer
	// notifications that accompany them.
	transitionMu sync.Mutex

	// voxels is written only by the generator that won the admission gate
	// and read by others only after the chunk is Done.
	voxels []Voxel
	solid  int
}

// NewChunk creates a chunk in (ShouldLoad, NotStarted) with an empty buffer.
func NewChunk(coord ChunkCoord, edge int) *Chunk {
	if edge <= 0 {
		panic(fmt.Sprintf("world: invalid chunk edge %d", edge))
	}
	return &Chunk{
		Coord:  coord,
		edge:   edge,
		voxels: make([]Voxel, edge*edge*edge),
	}
}

// Edge returns the chunk edge length in voxels.
func (c *Chunk) Edge() int { return c.edge }

// LoadState returns the current load state.
func (c *Chunk) LoadState() LoadState { return LoadState(c.load.Load()) }

// GenerationState returns the current generation state.
func (c *Chunk) GenerationState() GenerationState { return GenerationState(c.gen.Load()) }

// TryBeginGeneration is the exclusive admission gate: it moves the chunk
// from NotStarted to Generating and reports whether this caller won.
func (c *Chunk) TryBeginGeneration() bool {
	if !c.gen.CompareAndSwap(int32(NotStarted), int32(Generating)) {
		return false
	}
	c.inFlight.Store(true)
	return true
}

// Generating reports whether a generator currently owns the chunk.
func (c *Chunk) Generating() bool { return c.inFlight.Load() }

// advanceLoad moves the load state forward to s. It returns false when the
// chunk is already at or past s. Callers hold transitionMu.
func (c *Chunk) advanceLoad(s LoadState) bool {
	for {
		cur := c.load.Load()
		if cur >= int32(s) {
			return false
		}
		if c.load.CompareAndSwap(cur, int32(s)) {
			return true
		}
	}
}

// unloading reports whether the chunk has left the loaded set.
func (c *Chunk) unloading() bool {
	return c.LoadState() >= ShouldUnload
}

func (c *Chunk) index(x, y, z int) int {
	return x*c.edge*c.edge + y*c.edge + z
}

func (c *Chunk) inBounds(x, y, z int) bool {
	return x >= 0 && x < c.edge && y >= 0 && y < c.edge && z >= 0 && z < c.edge
}

// Voxel returns the voxel at local coordinates; out of range is air.
func (c *Chunk) Voxel(x, y, z int) Voxel {
	if !c.inBounds(x, y, z) {
		return VoxelAir
	}
	return c.voxels[c.index(x, y, z)]
}

// Solid reports whether the voxel at local coordinates is solid.
func (c *Chunk) Solid(x, y, z int) bool {
	return c.Voxel(x, y, z) == VoxelSolid
}

// SolidCount returns the number of solid voxels written by generation.
func (c *Chunk) SolidCount() int { return c.solid }

func (c *Chunk) setVoxel(x, y, z int, v Voxel) {
	i := c.index(x, y, z)
	old := c.voxels[i]
	if old == v {
		return
	}
	if old == VoxelSolid {
		c.solid--
	}
	if v == VoxelSolid {
		c.solid++
	}
	c.voxels[i] = v
}

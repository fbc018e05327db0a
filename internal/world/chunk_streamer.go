package world

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ChunkStreamer keeps the indexed chunk set in sync with observer positions.
// All methods must be called from the tick goroutine.
type ChunkStreamer struct {
	index    *ChunkIndex
	renderer Renderer

	edge   int
	radius int // render distance in chunks
	// thresholdSq is (radius*edge)², shared by the load and unload passes so
	// both compare against the exact same value.
	thresholdSq float64
}

// NewChunkStreamer creates a streamer. edge and radius must be positive.
func NewChunkStreamer(index *ChunkIndex, renderer Renderer, edge, radius int) *ChunkStreamer {
	if edge <= 0 || radius <= 0 {
		panic(fmt.Sprintf("world: invalid streamer params edge=%d radius=%d", edge, radius))
	}
	if renderer == nil {
		renderer = NopRenderer{}
	}
	units := float64(radius * edge)
	return &ChunkStreamer{
		index:       index,
		renderer:    renderer,
		edge:        edge,
		radius:      radius,
		thresholdSq: units * units,
	}
}

// ThresholdSq returns the squared render distance in world units.
func (cs *ChunkStreamer) ThresholdSq() float64 { return cs.thresholdSq }

// nearestDistSq returns the squared distance from the chunk center to the
// closest observer, or +Inf when there are none.
func (cs *ChunkStreamer) nearestDistSq(coord ChunkCoord, observers []mgl32.Vec3) float64 {
	best := math.Inf(1)
	for _, p := range observers {
		if d := coord.DistSq(cs.edge, p); d < best {
			best = d
		}
	}
	return best
}

// UnloadPass marks every chunk that is out of range of all observers as
// ShouldUnload and tells the renderer to drop it. Returns the number of
// chunks newly marked.
func (cs *ChunkStreamer) UnloadPass(observers []mgl32.Vec3) int {
	marked := 0
	for _, c := range cs.index.Chunks() {
		if c.unloading() {
			continue
		}
		if cs.nearestDistSq(c.Coord, observers) < cs.thresholdSq {
			continue
		}
		c.transitionMu.Lock()
		if c.advanceLoad(ShouldUnload) {
			cs.renderer.ChunkRemoved(c.Coord)
			marked++
		}
		c.transitionMu.Unlock()
	}
	return marked
}

// EvictPass removes unloading chunks that no generator owns. Chunks still
// being generated are evicted on a later tick once their worker returns.
func (cs *ChunkStreamer) EvictPass() int {
	evicted := 0
	for _, c := range cs.index.Chunks() {
		if !c.unloading() || c.Generating() {
			continue
		}
		c.transitionMu.Lock()
		c.advanceLoad(Unloaded)
		c.transitionMu.Unlock()
		if cs.index.Remove(c.Coord) {
			evicted++
		}
	}
	return evicted
}

// LoadPass creates every missing chunk whose center lies strictly within
// render distance of some observer. Existing coordinates are snapshotted
// once before any creation. Candidates span [-radius, +radius] around the
// observer's chunk; the distance test decides membership.
func (cs *ChunkStreamer) LoadPass(observers []mgl32.Vec3) []*Chunk {
	existing := cs.index.Coords()
	var created []*Chunk

	r := cs.radius
	for _, p := range observers {
		base := CoordFromWorld(p, cs.edge)
		for dx := -r; dx <= r; dx++ {
			for dy := -r; dy <= r; dy++ {
				for dz := -r; dz <= r; dz++ {
					coord := ChunkCoord{X: base.X + dx, Y: base.Y + dy, Z: base.Z + dz}
					if _, ok := existing[coord]; ok {
						continue
					}
					if coord.DistSq(cs.edge, p) >= cs.thresholdSq {
						continue
					}
					c := NewChunk(coord, cs.edge)
					if err := cs.index.Insert(c); err != nil {
						// The snapshot check above makes this unreachable.
						panic(err)
					}
					existing[coord] = struct{}{}
					cs.renderer.ChunkCreated(coord, coord.Origin(cs.edge))
					created = append(created, c)
				}
			}
		}
	}
	return created
}

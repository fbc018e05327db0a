package world

import (
	"context"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// expectedCoords brute-forces every chunk whose center is strictly within
// render distance of at least one observer.
func expectedCoords(edge, radius int, observers []mgl32.Vec3) map[ChunkCoord]struct{} {
	thr := float64(radius*edge) * float64(radius*edge)
	out := make(map[ChunkCoord]struct{})
	for _, p := range observers {
		base := CoordFromWorld(p, edge)
		span := radius + 2
		for x := base.X - span; x <= base.X+span; x++ {
			for y := base.Y - span; y <= base.Y+span; y++ {
				for z := base.Z - span; z <= base.Z+span; z++ {
					c := ChunkCoord{x, y, z}
					if c.DistSq(edge, p) < thr {
						out[c] = struct{}{}
					}
				}
			}
		}
	}
	return out
}

func newTestStreamer(radius int) (*ChunkIndex, *Recorder, *ChunkStreamer) {
	index := NewChunkIndex()
	rec := NewRecorder()
	return index, rec, NewChunkStreamer(index, rec, 16, radius)
}

func TestChunkCenter(t *testing.T) {
	tests := []struct {
		coord ChunkCoord
		want  [3]float64
	}{
		{ChunkCoord{0, 0, 0}, [3]float64{8, 8, 8}},
		{ChunkCoord{1, 0, 0}, [3]float64{24, 8, 8}},
		{ChunkCoord{-1, 2, -3}, [3]float64{-8, 40, -40}},
	}
	for _, tt := range tests {
		if got := tt.coord.Center(16); got != tt.want {
			t.Errorf("Center(%v) = %v, want %v", tt.coord, got, tt.want)
		}
	}
}

func TestCoordFromWorldFloors(t *testing.T) {
	tests := []struct {
		p    mgl32.Vec3
		want ChunkCoord
	}{
		{mgl32.Vec3{0, 0, 0}, ChunkCoord{0, 0, 0}},
		{mgl32.Vec3{15.9, 16, -0.1}, ChunkCoord{0, 1, -1}},
		{mgl32.Vec3{-16, -16.5, -32}, ChunkCoord{-1, -2, -2}},
	}
	for _, tt := range tests {
		if got := CoordFromWorld(tt.p, 16); got != tt.want {
			t.Errorf("CoordFromWorld(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestThresholdComputedOnce(t *testing.T) {
	_, _, cs := newTestStreamer(3)
	if cs.ThresholdSq() != 48*48 {
		t.Fatalf("ThresholdSq = %v, want %v", cs.ThresholdSq(), 48*48)
	}
}

func TestLoadPassOriginScenario(t *testing.T) {
	index, rec, cs := newTestStreamer(1)
	created := cs.LoadPass([]mgl32.Vec3{{0, 0, 0}})

	if len(created) != 8 || index.Len() != 8 {
		t.Fatalf("created %d chunks (index %d), want 8", len(created), index.Len())
	}
	for x := -1; x <= 0; x++ {
		for y := -1; y <= 0; y++ {
			for z := -1; z <= 0; z++ {
				c, ok := index.Get(ChunkCoord{x, y, z})
				if !ok {
					t.Fatalf("missing chunk (%d,%d,%d)", x, y, z)
				}
				if c.LoadState() != ShouldLoad || c.GenerationState() != NotStarted {
					t.Errorf("chunk %v state (%v,%v), want (ShouldLoad,NotStarted)", c.Coord, c.LoadState(), c.GenerationState())
				}
				if !rec.Live(c.Coord) {
					t.Errorf("renderer was not told about %v", c.Coord)
				}
			}
		}
	}
	if index.Has(ChunkCoord{1, 0, 0}) {
		t.Errorf("chunk (1,0,0) at distance ~26.6 must not load")
	}
}

func TestLoadPassMatchesDirectComputation(t *testing.T) {
	observers := []mgl32.Vec3{{15.5, -20, 40.25}}
	index, _, cs := newTestStreamer(3)
	cs.LoadPass(observers)

	want := expectedCoords(16, 3, observers)
	if index.Len() != len(want) {
		t.Fatalf("index has %d chunks, want %d", index.Len(), len(want))
	}
	for coord := range want {
		if !index.Has(coord) {
			t.Errorf("missing %v", coord)
		}
	}
}

func TestLoadPassOverlappingObserversNoDuplicates(t *testing.T) {
	observers := []mgl32.Vec3{{0, 0, 0}, {10, 4, -3}, {40, 0, 0}}
	index, rec, cs := newTestStreamer(2)
	created := cs.LoadPass(observers)

	want := expectedCoords(16, 2, observers)
	if len(created) != len(want) || index.Len() != len(want) {
		t.Fatalf("created %d, indexed %d, want %d", len(created), index.Len(), len(want))
	}
	seen := make(map[ChunkCoord]bool)
	for _, c := range created {
		if seen[c.Coord] {
			t.Fatalf("duplicate creation of %v", c.Coord)
		}
		seen[c.Coord] = true
	}
	if c, _, _ := rec.Totals(); c != len(want) {
		t.Errorf("renderer saw %d creations, want %d", c, len(want))
	}
}

func TestUnloadPassMarksOutOfRange(t *testing.T) {
	index, rec, cs := newTestStreamer(1)
	cs.LoadPass([]mgl32.Vec3{{0, 0, 0}})
	c, _ := index.Get(ChunkCoord{0, 0, 0})

	if n := cs.UnloadPass([]mgl32.Vec3{{0, 0, 0}}); n != 0 {
		t.Fatalf("unloaded %d chunks with observer unmoved", n)
	}
	if n := cs.UnloadPass([]mgl32.Vec3{{500, 0, 0}}); n != 8 {
		t.Fatalf("unloaded %d chunks, want 8", n)
	}
	if c.LoadState() != ShouldUnload {
		t.Fatalf("state %v, want ShouldUnload", c.LoadState())
	}
	if rec.LiveCount() != 0 {
		t.Errorf("renderer still holds %d chunks", rec.LiveCount())
	}
	// Already unloading: not marked or reported again.
	if n := cs.UnloadPass([]mgl32.Vec3{{500, 0, 0}}); n != 0 {
		t.Errorf("re-marked %d chunks", n)
	}
	if _, removed, _ := rec.Totals(); removed != 8 {
		t.Errorf("renderer saw %d removals, want 8", removed)
	}
}

func TestUnloadPassUnionAcrossObservers(t *testing.T) {
	index, _, cs := newTestStreamer(1)
	cs.LoadPass([]mgl32.Vec3{{0, 0, 0}})

	// One observer far away, one still at the origin: nothing may unload.
	if n := cs.UnloadPass([]mgl32.Vec3{{500, 0, 0}, {0, 0, 0}}); n != 0 {
		t.Fatalf("unloaded %d chunks still in range of an observer", n)
	}
	for _, c := range index.Chunks() {
		if c.LoadState() != ShouldLoad {
			t.Errorf("chunk %v changed state to %v", c.Coord, c.LoadState())
		}
	}
}

func TestUnloadPassBoundaryIsInclusive(t *testing.T) {
	index, _, cs := newTestStreamer(1)
	c := NewChunk(ChunkCoord{0, 0, 0}, 16)
	if err := index.Insert(c); err != nil {
		t.Fatal(err)
	}
	// Exactly 16 units from the center (8,8,8).
	if n := cs.UnloadPass([]mgl32.Vec3{{24, 8, 8}}); n != 1 {
		t.Fatalf("chunk at exactly render distance must unload, got %d", n)
	}
}

func TestUnloadPassWithoutObserversUnloadsAll(t *testing.T) {
	index, _, cs := newTestStreamer(1)
	cs.LoadPass([]mgl32.Vec3{{0, 0, 0}})
	if n := cs.UnloadPass(nil); n != index.Len() {
		t.Fatalf("unloaded %d of %d", n, index.Len())
	}
}

func TestEvictPassSkipsInFlightGeneration(t *testing.T) {
	index, _, cs := newTestStreamer(1)
	cs.LoadPass([]mgl32.Vec3{{0, 0, 0}})
	busy, _ := index.Get(ChunkCoord{0, 0, 0})
	if !busy.TryBeginGeneration() {
		t.Fatal("admission gate refused a fresh chunk")
	}

	cs.UnloadPass([]mgl32.Vec3{{500, 0, 0}})
	if n := cs.EvictPass(); n != 7 {
		t.Fatalf("evicted %d, want 7", n)
	}
	if !index.Has(busy.Coord) {
		t.Fatalf("in-flight chunk was evicted")
	}

	// Worker aborts at its next checkpoint.
	g := NewGenerator(NewNoiseField(NoiseSimplex, 1), nil, nil, GeneratorOptions{})
	if err := g.fill(context.Background(), busy); err == nil {
		t.Fatalf("expected cancellation")
	}
	if n := cs.EvictPass(); n != 1 {
		t.Fatalf("evicted %d after abort, want 1", n)
	}
	if busy.LoadState() != Unloaded {
		t.Errorf("state %v, want Unloaded", busy.LoadState())
	}
}

func TestLoadPassSkipsIndexedCoordinates(t *testing.T) {
	index, _, cs := newTestStreamer(1)
	pre := NewChunk(ChunkCoord{0, 0, 0}, 16)
	if err := index.Insert(pre); err != nil {
		t.Fatal(err)
	}
	created := cs.LoadPass([]mgl32.Vec3{{0, 0, 0}})
	if len(created) != 7 {
		t.Fatalf("created %d, want 7", len(created))
	}
	if got, _ := index.Get(pre.Coord); got != pre {
		t.Errorf("existing record was replaced")
	}
}

func TestNewChunkStreamerRejectsInvalidParams(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for zero render distance")
		}
	}()
	NewChunkStreamer(NewChunkIndex(), nil, 16, 0)
}

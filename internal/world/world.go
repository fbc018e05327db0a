package world

import (
	"context"
	"log"
	"sort"
	"time"

	"mini-voxel/internal/profiling"

	"github.com/go-gl/mathgl/mgl32"
)

// Options configures a World. Zero values take the documented defaults.
type Options struct {
	Edge           int // chunk edge length, default DefaultChunkEdge
	RenderDistance int // radius in chunks, must be positive
	Noise          NoiseField
	Renderer       Renderer
	Mesher         Mesher
	Generator      GeneratorOptions
}

// World owns the chunk index and runs the per-tick streaming pipeline.
type World struct {
	edge     int
	noise    NoiseField
	index    *ChunkIndex
	streamer *ChunkStreamer
	gen      *Generator
	ticks    uint64
}

// TickReport summarizes what one tick changed.
type TickReport struct {
	Unloaded int // chunks newly marked ShouldUnload
	Evicted  int // chunks removed from the index
	Created  int // chunks inserted
	Admitted int // chunks admitted for generation
}

// Stats counts indexed chunks per state.
type Stats struct {
	Chunks       int
	ByLoad       [Unloaded + 1]int
	ByGeneration [Done + 1]int
	Queued       int
}

// New builds a World from opts.
func New(opts Options) *World {
	if opts.Edge == 0 {
		opts.Edge = DefaultChunkEdge
	}
	if opts.Noise == nil {
		opts.Noise = NewNoiseField(NoiseSimplex, RandomSeed())
	}
	if opts.Renderer == nil {
		opts.Renderer = NopRenderer{}
	}
	index := NewChunkIndex()
	return &World{
		edge:     opts.Edge,
		noise:    opts.Noise,
		index:    index,
		streamer: NewChunkStreamer(index, opts.Renderer, opts.Edge, opts.RenderDistance),
		gen:      NewGenerator(opts.Noise, opts.Renderer, opts.Mesher, opts.Generator),
	}
}

// Edge returns the chunk edge length.
func (w *World) Edge() int { return w.edge }

// Index returns the chunk index. Callers outside the tick must treat it as read-only.
func (w *World) Index() *ChunkIndex { return w.index }

// Noise returns the world's noise field.
func (w *World) Noise() NoiseField { return w.noise }

// Generator returns the chunk generator.
func (w *World) Generator() *Generator { return w.gen }

// Streamer returns the chunk streamer.
func (w *World) Streamer() *ChunkStreamer { return w.streamer }

// Ticks returns how many ticks have run.
func (w *World) Ticks() uint64 { return w.ticks }

// Tick runs one streaming step: unload, evict, load, then generate.
func (w *World) Tick(ctx context.Context, observers []mgl32.Vec3) TickReport {
	defer profiling.Track("world.Tick")()
	w.ticks++

	var rep TickReport
	func() {
		defer profiling.Track("world.UnloadPass")()
		rep.Unloaded = w.streamer.UnloadPass(observers)
	}()
	func() {
		defer profiling.Track("world.EvictPass")()
		rep.Evicted = w.streamer.EvictPass()
	}()
	func() {
		defer profiling.Track("world.LoadPass")()
		rep.Created = len(w.streamer.LoadPass(observers))
	}()
	func() {
		defer profiling.Track("world.GeneratePass")()
		rep.Admitted = w.gen.GeneratePass(ctx, w.pendingGeneration(observers))
	}()
	return rep
}

// pendingGeneration returns loadable, never-generated chunks nearest first.
func (w *World) pendingGeneration(observers []mgl32.Vec3) []*Chunk {
	var pending []*Chunk
	for _, c := range w.index.Chunks() {
		if c.GenerationState() == NotStarted && !c.unloading() {
			pending = append(pending, c)
		}
	}
	dist := make(map[ChunkCoord]float64, len(pending))
	for _, c := range pending {
		dist[c.Coord] = w.streamer.nearestDistSq(c.Coord, observers)
	}
	sort.Slice(pending, func(i, j int) bool {
		di, dj := dist[pending[i].Coord], dist[pending[j].Coord]
		if di != dj {
			return di < dj
		}
		return lessCoord(pending[i].Coord, pending[j].Coord)
	})
	return pending
}

func lessCoord(a, b ChunkCoord) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.Z < b.Z
}

// Run ticks every interval until ctx is done, pulling observer positions
// from source once per tick.
func (w *World) Run(ctx context.Context, source ObserverSource, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	lastLog := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rep := w.Tick(ctx, source.ObserverPositions())
			if time.Since(lastLog) >= time.Second {
				st := w.Stats()
				log.Printf("world: tick=%d chunks=%d loaded=%d queued=%d last=%+v",
					w.ticks, st.Chunks, st.ByLoad[Loaded], st.Queued, rep)
				lastLog = time.Now()
			}
		}
	}
}

// Stats counts indexed chunks by state.
func (w *World) Stats() Stats {
	var st Stats
	for _, c := range w.index.Chunks() {
		st.Chunks++
		st.ByLoad[c.LoadState()]++
		st.ByGeneration[c.GenerationState()]++
	}
	st.Queued = w.gen.QueueLength()
	return st
}

// SolidAt reports whether the world voxel is solid, reading generated
// chunks when available and sampling the noise field otherwise.
func (w *World) SolidAt(wx, wy, wz int) bool {
	coord := ChunkCoord{X: floorDiv(wx, w.edge), Y: floorDiv(wy, w.edge), Z: floorDiv(wz, w.edge)}
	if c, ok := w.index.Get(coord); ok && c.GenerationState() == Done {
		return c.Solid(mod(wx, w.edge), mod(wy, w.edge), mod(wz, w.edge))
	}
	return w.gen.SolidAt(wx, wy, wz)
}

// Wait blocks until all dispatched generation has finished.
func (w *World) Wait() { w.gen.Wait() }

// Close stops the generator workers.
func (w *World) Close() { w.gen.Close() }

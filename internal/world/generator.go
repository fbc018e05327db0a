package world

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/alitto/pond/v2"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrAlreadyGenerating is returned when a chunk failed the admission gate.
	ErrAlreadyGenerating = errors.New("chunk generation already started")
	// ErrGenerationCancelled is returned when sampling stopped early because
	// the chunk left render distance or the context ended.
	ErrGenerationCancelled = errors.New("chunk generation cancelled")
)

// DefaultNoiseScale divides world coordinates before sampling the noise field.
const DefaultNoiseScale = 16.0

// SolidFunc reports whether the voxel at world coordinates is solid.
type SolidFunc func(wx, wy, wz int) bool

// Mesher turns a generated chunk into an interleaved vertex list.
// outside answers solidity queries for positions beyond the chunk bounds.
type Mesher func(c *Chunk, outside SolidFunc) []float32

// GeneratorOptions configures a Generator.
type GeneratorOptions struct {
	// Scale divides world coordinates before sampling; 0 means DefaultNoiseScale.
	Scale float64
	// Workers is the pool size; 0 generates inline on the calling goroutine.
	Workers int
	// MaxPerTick bounds admissions per GeneratePass; 0 means unbounded.
	MaxPerTick int
}

// Generator fills chunks from a noise field exactly once.
type Generator struct {
	noise    NoiseField
	renderer Renderer
	voxels   VoxelRenderer
	mesher   Mesher
	scale    float64
	maxPer   int

	pool   pond.Pool
	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

// NewGenerator creates a generator. If renderer also implements
// VoxelRenderer, every solid voxel of a completed chunk is reported.
func NewGenerator(noise NoiseField, renderer Renderer, mesher Mesher, opts GeneratorOptions) *Generator {
	if renderer == nil {
		renderer = NopRenderer{}
	}
	g := &Generator{
		noise:    noise,
		renderer: renderer,
		mesher:   mesher,
		scale:    opts.Scale,
		maxPer:   opts.MaxPerTick,
	}
	if g.scale == 0 {
		g.scale = DefaultNoiseScale
	}
	if vr, ok := renderer.(VoxelRenderer); ok {
		g.voxels = vr
	}
	if opts.Workers > 0 {
		g.pool = pond.NewPool(opts.Workers)
	}
	return g
}

// SolidAt samples the noise field at a world voxel position.
func (g *Generator) SolidAt(wx, wy, wz int) bool {
	return g.noise.Sample(float64(wx)/g.scale, float64(wy)/g.scale, float64(wz)/g.scale) <= 0
}

// GeneratePass admits chunks in the given order and generates them, either
// inline or on the worker pool. Chunks that are unloading or already past
// the admission gate are skipped. Returns the number admitted.
func (g *Generator) GeneratePass(ctx context.Context, chunks []*Chunk) int {
	admitted := 0
	for _, c := range chunks {
		if g.maxPer > 0 && admitted >= g.maxPer {
			break
		}
		if c.unloading() || !c.TryBeginGeneration() {
			continue
		}
		admitted++
		g.dispatch(ctx, c)
	}
	return admitted
}

// Generate admits and generates a single chunk synchronously.
func (g *Generator) Generate(ctx context.Context, c *Chunk) error {
	if !c.TryBeginGeneration() {
		return fmt.Errorf("generate %v: %w", c.Coord, ErrAlreadyGenerating)
	}
	return g.fill(ctx, c)
}

func (g *Generator) dispatch(ctx context.Context, c *Chunk) {
	g.mu.Lock()
	closed := g.closed
	if !closed {
		g.wg.Add(1)
	}
	g.mu.Unlock()
	if closed {
		c.inFlight.Store(false)
		return
	}

	run := func() {
		defer g.wg.Done()
		if err := g.fill(ctx, c); err != nil && !errors.Is(err, ErrGenerationCancelled) {
			log.Printf("world: generate %v: %v", c.Coord, err)
		}
	}
	if g.pool == nil {
		run()
		return
	}
	g.pool.Submit(run)
}

// fill samples every voxel of an admitted chunk, then publishes the result.
func (g *Generator) fill(ctx context.Context, c *Chunk) error {
	defer c.inFlight.Store(false)

	edge := c.edge
	bx, by, bz := c.Coord.X*edge, c.Coord.Y*edge, c.Coord.Z*edge
	for lx := range edge {
		// Checkpoint once per slice.
		if c.unloading() {
			return fmt.Errorf("generate %v: %w", c.Coord, ErrGenerationCancelled)
		}
		if err := ctx.Err(); err != nil {
			g.release(c)
			return fmt.Errorf("generate %v: %w: %w", c.Coord, ErrGenerationCancelled, err)
		}
		for ly := range edge {
			for lz := range edge {
				if g.SolidAt(bx+lx, by+ly, bz+lz) {
					c.setVoxel(lx, ly, lz, VoxelSolid)
				}
			}
		}
	}

	var vertices []float32
	if g.mesher != nil {
		vertices = g.mesher(c, g.SolidAt)
	}

	c.transitionMu.Lock()
	defer c.transitionMu.Unlock()
	c.gen.Store(int32(Done))
	if !c.advanceLoad(Loaded) {
		// Left render distance while meshing; the renderer already dropped it.
		return nil
	}
	if g.voxels != nil {
		g.emitVoxels(c, bx, by, bz)
	}
	if g.mesher != nil {
		g.renderer.ChunkMeshed(c.Coord, vertices)
	}
	return nil
}

// release hands a chunk whose sampling was abandoned back to the streamer.
// It can never be admitted again, so it is marked for eviction and the load
// pass creates a fresh record if it is still in range.
func (g *Generator) release(c *Chunk) {
	c.transitionMu.Lock()
	defer c.transitionMu.Unlock()
	if c.advanceLoad(ShouldUnload) {
		g.renderer.ChunkRemoved(c.Coord)
	}
}

func (g *Generator) emitVoxels(c *Chunk, bx, by, bz int) {
	edge := c.edge
	for lx := range edge {
		for ly := range edge {
			for lz := range edge {
				if c.Solid(lx, ly, lz) {
					g.voxels.VoxelSolid(mgl32.Vec3{float32(bx + lx), float32(by + ly), float32(bz + lz)})
				}
			}
		}
	}
}

// Wait blocks until every dispatched chunk has finished or aborted.
func (g *Generator) Wait() {
	g.wg.Wait()
}

// Close stops accepting work and waits for in-flight chunks.
func (g *Generator) Close() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
	g.wg.Wait()
	if g.pool != nil {
		g.pool.StopAndWait()
	}
}

// QueueLength returns the number of chunks waiting for a worker.
func (g *Generator) QueueLength() int {
	if g.pool == nil {
		return 0
	}
	return int(g.pool.WaitingTasks())
}

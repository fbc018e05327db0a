package world

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Renderer receives chunk lifecycle notifications from the core.
// ChunkMeshed is called from generator workers and must be safe for
// concurrent use.
type Renderer interface {
	ChunkCreated(coord ChunkCoord, origin mgl32.Vec3)
	ChunkRemoved(coord ChunkCoord)
	ChunkMeshed(coord ChunkCoord, vertices []float32)
}

// VoxelRenderer is implemented by renderers that want one notification per
// solid voxel instead of (or in addition to) a combined mesh.
type VoxelRenderer interface {
	VoxelSolid(pos mgl32.Vec3)
}

// ObserverSource supplies observer world positions, pulled once per tick.
type ObserverSource interface {
	ObserverPositions() []mgl32.Vec3
}

// StaticObservers is an ObserverSource that never moves.
type StaticObservers []mgl32.Vec3

func (s StaticObservers) ObserverPositions() []mgl32.Vec3 { return s }

// NopRenderer ignores all notifications.
type NopRenderer struct{}

func (NopRenderer) ChunkCreated(ChunkCoord, mgl32.Vec3) {}
func (NopRenderer) ChunkRemoved(ChunkCoord)             {}
func (NopRenderer) ChunkMeshed(ChunkCoord, []float32)   {}

// Recorder is a Renderer and VoxelRenderer that keeps the renderable set in
// memory. Used by the headless simulator and tests.
type Recorder struct {
	mu      sync.Mutex
	live    map[ChunkCoord]mgl32.Vec3
	meshes  map[ChunkCoord]int
	voxels  map[mgl32.Vec3]int
	created int
	removed int
	meshed  int
	// Voxels enables VoxelSolid recording; it is off by default since a
	// single chunk can report thousands of positions.
	Voxels bool
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		live:   make(map[ChunkCoord]mgl32.Vec3),
		meshes: make(map[ChunkCoord]int),
		voxels: make(map[mgl32.Vec3]int),
	}
}

func (r *Recorder) ChunkCreated(coord ChunkCoord, origin mgl32.Vec3) {
	r.mu.Lock()
	r.live[coord] = origin
	r.created++
	r.mu.Unlock()
}

func (r *Recorder) ChunkRemoved(coord ChunkCoord) {
	r.mu.Lock()
	delete(r.live, coord)
	delete(r.meshes, coord)
	r.removed++
	r.mu.Unlock()
}

func (r *Recorder) ChunkMeshed(coord ChunkCoord, vertices []float32) {
	r.mu.Lock()
	if _, ok := r.live[coord]; ok {
		r.meshes[coord] = len(vertices)
	}
	r.meshed++
	r.mu.Unlock()
}

func (r *Recorder) VoxelSolid(pos mgl32.Vec3) {
	if !r.Voxels {
		return
	}
	r.mu.Lock()
	r.voxels[pos]++
	r.mu.Unlock()
}

// Live reports whether coord currently has a renderable representation.
func (r *Recorder) Live(coord ChunkCoord) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.live[coord]
	return ok
}

// LiveCount returns the number of chunks with a renderable representation.
func (r *Recorder) LiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

// MeshFloats returns the vertex float count reported for coord.
func (r *Recorder) MeshFloats(coord ChunkCoord) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.meshes[coord]
	return n, ok
}

// VoxelCount returns how many times pos was reported solid.
func (r *Recorder) VoxelCount(pos mgl32.Vec3) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.voxels[pos]
}

// Totals returns cumulative created, removed and meshed notification counts.
func (r *Recorder) Totals() (created, removed, meshed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.created, r.removed, r.meshed
}

// VoxelReports returns the total number of VoxelSolid calls recorded.
func (r *Recorder) VoxelReports() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.voxels {
		n += c
	}
	return n
}

// Package uploads buffers renderer notifications from the streaming core
// until the GL thread can apply them.
package uploads

import (
	"sync"

	"mini-voxel/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// Kind is the type of a pending change.
type Kind uint8

const (
	Created Kind = iota
	Removed
	Meshed
)

// Event is one pending change for a chunk.
type Event struct {
	Kind     Kind
	Coord    world.ChunkCoord
	Origin   mgl32.Vec3
	Vertices []float32
}

// Queue implements world.Renderer. Notifications may arrive from any
// goroutine; Drain hands them to the consumer in arrival order.
type Queue struct {
	mu      sync.Mutex
	pending []Event
	spare   []Event
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{pending: make([]Event, 0, 256)}
}

func (q *Queue) push(e Event) {
	q.mu.Lock()
	q.pending = append(q.pending, e)
	q.mu.Unlock()
}

func (q *Queue) ChunkCreated(coord world.ChunkCoord, origin mgl32.Vec3) {
	q.push(Event{Kind: Created, Coord: coord, Origin: origin})
}

func (q *Queue) ChunkRemoved(coord world.ChunkCoord) {
	q.push(Event{Kind: Removed, Coord: coord})
}

func (q *Queue) ChunkMeshed(coord world.ChunkCoord, vertices []float32) {
	q.push(Event{Kind: Meshed, Coord: coord, Vertices: vertices})
}

// Drain returns everything queued so far and resets the queue. The
// returned slice is valid until the next Drain.
func (q *Queue) Drain() []Event {
	q.mu.Lock()
	out := q.pending
	q.pending = q.spare[:0]
	q.spare = out
	q.mu.Unlock()
	return out
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Apply replays events onto a set of live chunks keyed by coordinate.
// Meshes for chunks that are no longer live are dropped. It returns the
// coordinates whose mesh changed, plus those removed.
func Apply[T any](live map[world.ChunkCoord]*T, events []Event, create func(Event) *T, mesh func(*T, []float32), release func(*T)) (changed, removed int) {
	for _, e := range events {
		switch e.Kind {
		case Created:
			if old, ok := live[e.Coord]; ok {
				release(old)
			}
			live[e.Coord] = create(e)
		case Removed:
			if old, ok := live[e.Coord]; ok {
				release(old)
				delete(live, e.Coord)
				removed++
			}
		case Meshed:
			if t, ok := live[e.Coord]; ok {
				mesh(t, e.Vertices)
				changed++
			}
		}
	}
	return changed, removed
}

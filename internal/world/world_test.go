package world

import (
	"context"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

func newTestWorld(radius int, rec *Recorder, gen GeneratorOptions) *World {
	return New(Options{
		RenderDistance: radius,
		Noise:          NewNoiseField(NoiseSimplex, 31337),
		Renderer:       rec,
		Mesher:         countingMesher,
		Generator:      gen,
	})
}

func TestTickFixedPoint(t *testing.T) {
	rec := NewRecorder()
	w := newTestWorld(2, rec, GeneratorOptions{})
	defer w.Close()
	obs := []mgl32.Vec3{{3, 70, -12}}

	first := w.Tick(context.Background(), obs)
	if first.Created == 0 || first.Admitted != first.Created {
		t.Fatalf("first tick %+v", first)
	}
	mods := w.Index().ModCount()

	second := w.Tick(context.Background(), obs)
	if second != (TickReport{}) {
		t.Fatalf("second tick changed state: %+v", second)
	}
	if w.Index().ModCount() != mods {
		t.Errorf("index modified on an idle tick")
	}
	created, removed, meshed := rec.Totals()
	if created != first.Created || removed != 0 || meshed != first.Created {
		t.Errorf("renderer totals created=%d removed=%d meshed=%d", created, removed, meshed)
	}
}

func TestTickMoveAwayScenario(t *testing.T) {
	rec := NewRecorder()
	w := newTestWorld(1, rec, GeneratorOptions{})
	defer w.Close()

	w.Tick(context.Background(), []mgl32.Vec3{{0, 0, 0}})
	c, ok := w.Index().Get(ChunkCoord{0, 0, 0})
	if !ok {
		t.Fatalf("chunk (0,0,0) not loaded on tick 1")
	}
	if c.LoadState() != Loaded || c.GenerationState() != Done {
		t.Fatalf("tick 1 state (%v,%v)", c.LoadState(), c.GenerationState())
	}
	if !rec.Live(c.Coord) {
		t.Fatalf("chunk not renderable after tick 1")
	}

	rep := w.Tick(context.Background(), []mgl32.Vec3{{1000, 0, 0}})
	if rep.Unloaded != 8 {
		t.Fatalf("tick 2 unloaded %d, want 8", rep.Unloaded)
	}
	if c.LoadState() < ShouldUnload {
		t.Fatalf("tick 2 state %v", c.LoadState())
	}
	if rec.Live(c.Coord) {
		t.Errorf("chunk still renderable after tick 2")
	}
	if w.Index().Has(c.Coord) {
		t.Errorf("unloaded chunk still indexed after tick 2")
	}

	// Coming back creates a fresh record; the old one stays unloaded.
	w.Tick(context.Background(), []mgl32.Vec3{{0, 0, 0}})
	again, ok := w.Index().Get(ChunkCoord{0, 0, 0})
	if !ok || again == c {
		t.Fatalf("expected a new record for (0,0,0)")
	}
	if c.LoadState() != Unloaded {
		t.Errorf("old record revived to %v", c.LoadState())
	}
}

func TestTickGeneratesNearestFirst(t *testing.T) {
	w := newTestWorld(1, NewRecorder(), GeneratorOptions{MaxPerTick: 1})
	defer w.Close()
	obs := []mgl32.Vec3{{1, 1, 1}}

	rep := w.Tick(context.Background(), obs)
	if rep.Created != 8 || rep.Admitted != 1 {
		t.Fatalf("tick 1 %+v", rep)
	}
	c, _ := w.Index().Get(ChunkCoord{0, 0, 0})
	if c.GenerationState() != Done {
		t.Fatalf("nearest chunk was not generated first")
	}
	for i := 0; i < 7; i++ {
		w.Tick(context.Background(), obs)
	}
	st := w.Stats()
	if st.ByGeneration[Done] != 8 || st.ByLoad[Loaded] != 8 {
		t.Errorf("stats after budgeted ticks %+v", st)
	}
}

func TestTickRecoversAfterCancelledGeneration(t *testing.T) {
	rec := NewRecorder()
	w := newTestWorld(1, rec, GeneratorOptions{})
	defer w.Close()
	obs := []mgl32.Vec3{{0, 0, 0}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	first := w.Tick(ctx, obs)
	if first.Created != 8 || first.Admitted != 8 {
		t.Fatalf("cancelled tick %+v", first)
	}
	if rec.LiveCount() != 0 {
		t.Fatalf("renderer holds %d abandoned chunks", rec.LiveCount())
	}

	second := w.Tick(context.Background(), obs)
	if second.Evicted != 8 || second.Created != 8 || second.Admitted != 8 {
		t.Fatalf("recovery tick %+v", second)
	}
	st := w.Stats()
	if st.ByGeneration[Generating] != 0 || st.ByGeneration[Done] != 8 || st.ByLoad[Loaded] != 8 {
		t.Errorf("stats after recovery %+v", st)
	}
	if rec.LiveCount() != 8 {
		t.Errorf("renderer holds %d chunks, want 8", rec.LiveCount())
	}
}

func TestTickWithWorkerPool(t *testing.T) {
	rec := NewRecorder()
	w := newTestWorld(2, rec, GeneratorOptions{Workers: 4})
	defer w.Close()
	obs := []mgl32.Vec3{{-40, 12, 7}}

	rep := w.Tick(context.Background(), obs)
	w.Wait()

	st := w.Stats()
	if st.Chunks != rep.Created || st.ByGeneration[Done] != rep.Created {
		t.Fatalf("stats %+v after tick %+v", st, rep)
	}
	if _, _, meshed := rec.Totals(); meshed != rep.Created {
		t.Errorf("meshed %d, want %d", meshed, rep.Created)
	}
	if next := w.Tick(context.Background(), obs); next != (TickReport{}) {
		t.Errorf("idle tick after generation: %+v", next)
	}
}

func TestWorldSolidAtMatchesChunks(t *testing.T) {
	w := newTestWorld(1, NewRecorder(), GeneratorOptions{})
	defer w.Close()
	w.Tick(context.Background(), []mgl32.Vec3{{0, 0, 0}})

	for _, p := range [][3]int{{0, 0, 0}, {-1, -1, -1}, {-16, 5, 15}, {7, -9, -3}, {40, 40, 40}} {
		want := w.Generator().SolidAt(p[0], p[1], p[2])
		if got := w.SolidAt(p[0], p[1], p[2]); got != want {
			t.Errorf("SolidAt(%v) = %v, want %v", p, got, want)
		}
	}
}

type movingObserver struct {
	pos mgl32.Vec3
}

func (m *movingObserver) ObserverPositions() []mgl32.Vec3 {
	m.pos[0] += 4
	return []mgl32.Vec3{m.pos}
}

func TestRunStopsOnContextDone(t *testing.T) {
	w := newTestWorld(1, NewRecorder(), GeneratorOptions{})
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := w.Run(ctx, &movingObserver{}, time.Millisecond)
	if err != context.DeadlineExceeded {
		t.Fatalf("Run returned %v", err)
	}
	if w.Ticks() == 0 {
		t.Errorf("Run never ticked")
	}
}

// Benchmark streaming around a slowly moving point
func BenchmarkStreamAround(b *testing.B) {
	w := New(Options{RenderDistance: 4, Noise: NewNoiseField(NoiseSimplex, 1)})
	defer w.Close()
	ctx := context.Background()
	w.Tick(ctx, []mgl32.Vec3{{0, 0, 0}})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Tick(ctx, []mgl32.Vec3{{float32(i % 3), 0, float32((i / 3) % 3)}})
	}
}

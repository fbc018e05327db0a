// Command voxelsim streams chunks around a synthetic observer without a
// window and logs what each tick changed.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mini-voxel/internal/config"
	"mini-voxel/internal/meshing"
	"mini-voxel/internal/profiling"
	"mini-voxel/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// lineObserver walks along dir by step units every time it is polled.
type lineObserver struct {
	pos  mgl32.Vec3
	step mgl32.Vec3
}

func (o *lineObserver) ObserverPositions() []mgl32.Vec3 {
	o.pos = o.pos.Add(o.step)
	return []mgl32.Vec3{o.pos}
}

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML config file (optional)")
		ticks      = flag.Int("ticks", 200, "number of ticks to simulate (ignored when -duration is set)")
		speed      = flag.Float64("speed", 4, "observer speed in world units per tick")
		duration   = flag.Duration("duration", 0, "run on the wall clock at the configured tick rate for this long")
		every      = flag.Int("log_every", 20, "log a report every N ticks")
		mesh       = flag.Bool("mesh", true, "build greedy meshes for generated chunks")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[voxelsim] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	opts, err := cfg.World.WorldOptions()
	if err != nil {
		logger.Fatalf("world options: %v", err)
	}
	rec := world.NewRecorder()
	opts.Renderer = rec
	if *mesh {
		opts.Mesher = meshing.Mesher()
	}

	w := world.New(opts)
	defer w.Close()
	logger.Printf("seed=%d noise=%s edge=%d render_distance=%d workers=%d",
		cfg.World.Seed(), cfg.World.NoiseKind, w.Edge(), cfg.World.RenderDistanceChunks, cfg.World.Workers)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs := &lineObserver{step: mgl32.Vec3{float32(*speed), 0, 0}}
	start := time.Now()

	if *duration > 0 {
		runCtx, cancel := context.WithTimeout(ctx, *duration)
		defer cancel()
		interval := time.Second / time.Duration(cfg.World.TickRateHz)
		if err := w.Run(runCtx, obs, interval); err != nil && err != context.DeadlineExceeded {
			logger.Printf("run stopped: %v", err)
		}
	} else {
		for i := 1; i <= *ticks; i++ {
			if ctx.Err() != nil {
				logger.Printf("interrupted at tick %d", i)
				break
			}
			profiling.ResetFrame()
			rep := w.Tick(ctx, obs.ObserverPositions())
			if *every > 0 && i%*every == 0 {
				st := w.Stats()
				logger.Printf("tick=%d pos=%.0f unloaded=%d evicted=%d created=%d admitted=%d chunks=%d done=%d queued=%d [%s]",
					i, obs.pos.X(), rep.Unloaded, rep.Evicted, rep.Created, rep.Admitted,
					st.Chunks, st.ByGeneration[world.Done], st.Queued, profiling.TopN(3))
			}
		}
	}
	w.Wait()

	created, removed, meshed := rec.Totals()
	st := w.Stats()
	logger.Printf("done in %v: ticks=%d live=%d indexed=%d created=%d removed=%d meshed=%d",
		time.Since(start).Round(time.Millisecond), w.Ticks(), rec.LiveCount(), st.Chunks, created, removed, meshed)
}

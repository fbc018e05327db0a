// Command voxelview opens a window and streams chunks around a fly camera.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"runtime"
	"time"

	"mini-voxel/internal/camera"
	"mini-voxel/internal/config"
	"mini-voxel/internal/game"
	"mini-voxel/internal/graphics/renderables/chunks"
	"mini-voxel/internal/graphics/renderables/crosshair"
	"mini-voxel/internal/graphics/renderables/wireframe"
	renderer "mini-voxel/internal/graphics/renderer"
	"mini-voxel/internal/input"
	"mini-voxel/internal/meshing"
	"mini-voxel/internal/profiling"
	"mini-voxel/internal/world"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML config file (optional)")
		fpsLimit   = flag.Int("fps", 120, "frame cap when vsync is off (0 for none)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[voxelview] ", log.LstdFlags)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	if err := glfw.Init(); err != nil {
		logger.Fatalf("glfw init: %v", err)
	}
	defer glfw.Terminate()

	window, err := setupWindow(cfg.Viewer)
	if err != nil {
		logger.Fatalf("create window: %v", err)
	}

	edge := cfg.World.ChunkEdgeLength
	chunkRenderer := chunks.NewChunks(edge, float32(cfg.World.RenderDistanceChunks*edge))
	r, err := renderer.NewRenderer(cfg.Viewer.WindowWidth, cfg.Viewer.WindowHeight, cfg.Viewer.FOVDegrees,
		chunkRenderer,
		wireframe.NewWireframe(edge, chunkRenderer.Origins),
		crosshair.NewCrosshair(),
	)
	if err != nil {
		logger.Fatalf("init renderer: %v", err)
	}
	defer r.Dispose()

	opts, err := cfg.World.WorldOptions()
	if err != nil {
		logger.Fatalf("world options: %v", err)
	}
	opts.Renderer = chunkRenderer
	opts.Mesher = meshing.Mesher()
	if opts.Generator.Workers == 0 {
		opts.Generator.Workers = max(1, runtime.NumCPU()-1)
	}
	w := world.New(opts)
	defer w.Close()
	logger.Printf("seed=%d noise=%s render_distance=%d workers=%d",
		cfg.World.Seed(), cfg.World.NoiseKind, cfg.World.RenderDistanceChunks, opts.Generator.Workers)

	cam := camera.NewFlyCamera(mgl32.Vec3{0, 0, 0})
	cam.Speed = cfg.Viewer.MoveSpeed

	im := input.NewInputManager()
	im.SetCallbacks(window)
	window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		r.UpdateViewport(width, height)
	})
	if fw, fh := window.GetFramebufferSize(); fw > 0 && fh > 0 {
		r.UpdateViewport(fw, fh)
	}

	runLoop(window, r, chunkRenderer, w, cam, im, cfg, *fpsLimit, logger)
}

func runLoop(window *glfw.Window, r *renderer.Renderer, cr *chunks.Chunks, w *world.World, cam *camera.FlyCamera,
	im *input.InputManager, cfg *config.Config, fpsLimit int, logger *log.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limiter := game.NewFPSLimiter(fpsLimit)
	if cfg.Viewer.VSync {
		limiter = game.NewFPSLimiter(0)
	}
	clock := game.NewTickClock(cfg.World.TickRateHz)
	showProfiling := false

	frames := 0
	lastStatus := time.Now()
	lastTime := time.Now()

	for !window.ShouldClose() {
		profiling.ResetFrame()
		now := time.Now()
		dt := now.Sub(lastTime)
		lastTime = now

		if im.JustPressed(input.ActionQuit) {
			window.SetShouldClose(true)
		}
		if im.JustPressed(input.ActionToggleWireframe) {
			r.Wireframe = !r.Wireframe
		}
		if im.JustPressed(input.ActionToggleProfiling) {
			showProfiling = !showProfiling
		}

		dx, dy := im.MouseDelta()
		cam.Update(camera.Intent{
			Forward:  im.IsActive(input.ActionMoveForward),
			Backward: im.IsActive(input.ActionMoveBackward),
			Left:     im.IsActive(input.ActionMoveLeft),
			Right:    im.IsActive(input.ActionMoveRight),
			Fast:     im.IsActive(input.ActionFast),
			Look:     im.IsActive(input.ActionLook),
			MouseDX:  dx,
			MouseDY:  dy,
		}, float32(dt.Seconds()))
		im.PostUpdate()

		for n := clock.Advance(dt); n > 0; n-- {
			w.Tick(ctx, cam.ObserverPositions())
		}

		r.Render(cam.Position, cam.ViewMatrix(), dt.Seconds())
		frames++

		func() { defer profiling.Track("glfw.SwapBuffers")(); window.SwapBuffers() }()
		func() { defer profiling.Track("glfw.PollEvents")(); glfw.PollEvents() }()

		if time.Since(lastStatus) >= time.Second {
			st := w.Stats()
			live, drawn := cr.Live()
			logger.Printf("FPS: %d chunks=%d generated=%d queued=%d live=%d drawn=%d pos=(%.0f,%.0f,%.0f)",
				frames, st.Chunks, st.ByGeneration[world.Done], st.Queued, live, drawn,
				cam.Position.X(), cam.Position.Y(), cam.Position.Z())
			if showProfiling {
				logger.Printf("profile: %s", profiling.TopN(5))
			}
			frames = 0
			lastStatus = time.Now()
		}

		limiter.Wait()
	}
}

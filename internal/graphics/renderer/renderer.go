package renderer

import (
	"mini-voxel/internal/graphics"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// Renderer orchestrates rendering via renderable features
type Renderer struct {
	renderables []Renderable
	camera      *graphics.Camera
	Wireframe   bool
}

// NewRenderer creates a new renderer with the given renderables
func NewRenderer(width, height int, fov float32, rs ...Renderable) (*Renderer, error) {
	// Configure OpenGL
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)

	renderer := &Renderer{
		renderables: rs,
		camera:      graphics.NewCamera(width, height, fov),
	}

	// Initialize all renderables
	for _, r := range rs {
		if err := r.Init(); err != nil {
			return nil, err
		}
		r.SetViewport(width, height)
	}

	return renderer, nil
}

// Render draws one frame from the given eye position and view matrix
func (r *Renderer) Render(eye mgl32.Vec3, view mgl32.Mat4, dt float64) {
	gl.ClearColor(0.53, 0.81, 0.92, 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	ctx := RenderContext{
		Camera:    r.camera,
		Eye:       eye,
		DT:        dt,
		View:      view,
		Proj:      r.camera.GetProjectionMatrix(),
		Wireframe: r.Wireframe,
	}

	for _, renderable := range r.renderables {
		renderable.Render(ctx)
	}
}

// Dispose cleans up all renderables in reverse order
func (r *Renderer) Dispose() {
	for i := len(r.renderables) - 1; i >= 0; i-- {
		r.renderables[i].Dispose()
	}
}

// GetCamera returns the camera instance
func (r *Renderer) GetCamera() *graphics.Camera {
	return r.camera
}

// UpdateViewport updates the camera and every renderable after a resize
func (r *Renderer) UpdateViewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
	r.camera.SetViewport(width, height)
	for _, rr := range r.renderables {
		rr.SetViewport(width, height)
	}
}

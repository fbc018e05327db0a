package wireframe

import (
	_ "embed"

	"mini-voxel/internal/graphics"
	"mini-voxel/internal/graphics/frustum"
	renderer "mini-voxel/internal/graphics/renderer"
	"mini-voxel/internal/profiling"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	//go:embed shaders/wireframe.vert
	vertSource string
	//go:embed shaders/wireframe.frag
	fragSource string
)

// OriginSource appends the origin of every chunk to outline
type OriginSource func(dst []mgl32.Vec3) []mgl32.Vec3

// Wireframe outlines chunk boundaries while wireframe mode is on
type Wireframe struct {
	shader  *graphics.Shader
	vao     uint32
	vbo     uint32
	edge    float32
	origins OriginSource
	scratch []mgl32.Vec3
}

// NewWireframe creates a chunk-bounds renderable
func NewWireframe(edge int, origins OriginSource) *Wireframe {
	return &Wireframe{edge: float32(edge), origins: origins}
}

// Init initializes the wireframe rendering system
func (w *Wireframe) Init() error {
	var err error
	w.shader, err = graphics.NewShader(vertSource, fragSource)
	if err != nil {
		return err
	}
	w.setupWireframeVAO()
	return nil
}

// Render outlines every chunk inside the frustum
func (w *Wireframe) Render(ctx renderer.RenderContext) {
	if !ctx.Wireframe || w.origins == nil {
		return
	}
	defer profiling.Track("renderer.renderChunkBounds")()

	w.shader.Use()
	w.shader.SetMat4("proj", ctx.Proj)
	w.shader.SetMat4("view", ctx.View)
	w.shader.SetVec3("color", mgl32.Vec3{0.9, 0.2, 0.2})

	f := frustum.FromMatrix(ctx.Proj.Mul4(ctx.View))
	w.scratch = w.origins(w.scratch[:0])
	gl.BindVertexArray(w.vao)
	gl.LineWidth(1.0)
	for _, o := range w.scratch {
		// Voxel centers sit on integer positions, so the box starts half a voxel early.
		corner := o.Sub(mgl32.Vec3{0.5, 0.5, 0.5})
		if !f.IntersectsCube(corner, w.edge) {
			continue
		}
		model := mgl32.Translate3D(corner.X(), corner.Y(), corner.Z()).Mul4(mgl32.Scale3D(w.edge, w.edge, w.edge))
		w.shader.SetMat4("model", model)
		gl.DrawArrays(gl.LINES, 0, 24) // 24 vertices for cube wireframe
	}
	gl.BindVertexArray(0)
}

// Dispose cleans up OpenGL resources
func (w *Wireframe) Dispose() {
	if w.vao != 0 {
		gl.DeleteVertexArrays(1, &w.vao)
	}
	if w.vbo != 0 {
		gl.DeleteBuffers(1, &w.vbo)
	}
	if w.shader != nil {
		w.shader.Delete()
	}
}

func (w *Wireframe) SetViewport(width, height int) {}

func (w *Wireframe) setupWireframeVAO() {
	gl.GenVertexArrays(1, &w.vao)
	gl.BindVertexArray(w.vao)

	gl.GenBuffers(1, &w.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, w.vbo)

	// Unit cube edges from (0,0,0) to (1,1,1)
	vertices := []float32{
		// Front face
		0, 0, 1, 1, 0, 1,
		1, 0, 1, 1, 1, 1,
		1, 1, 1, 0, 1, 1,
		0, 1, 1, 0, 0, 1,

		// Back face
		0, 0, 0, 1, 0, 0,
		1, 0, 0, 1, 1, 0,
		1, 1, 0, 0, 1, 0,
		0, 1, 0, 0, 0, 0,

		// Connecting edges
		0, 0, 1, 0, 0, 0,
		1, 0, 1, 1, 0, 0,
		1, 1, 1, 1, 1, 0,
		0, 1, 1, 0, 1, 0,
	}

	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
	gl.BindVertexArray(0)
}

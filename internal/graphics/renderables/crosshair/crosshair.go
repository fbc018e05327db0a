package crosshair

import (
	_ "embed"

	"mini-voxel/internal/graphics"
	renderer "mini-voxel/internal/graphics/renderer"
	"mini-voxel/internal/profiling"

	"github.com/go-gl/gl/v4.1-core/gl"
)

var (
	//go:embed shaders/crosshair.vert
	vertSource string
	//go:embed shaders/crosshair.frag
	fragSource string
)

var Vertices = []float32{
	-0.02, 0.0,
	0.02, 0.0,
	0.0, -0.02,
	0.0, 0.02,
}

// Crosshair marks the screen center so the view direction is readable while flying
type Crosshair struct {
	shader *graphics.Shader
	vao    uint32
	vbo    uint32
}

// NewCrosshair creates a new crosshair renderable
func NewCrosshair() *Crosshair {
	return &Crosshair{}
}

// Init initializes the crosshair rendering system
func (c *Crosshair) Init() error {
	var err error
	c.shader, err = graphics.NewShader(vertSource, fragSource)
	if err != nil {
		return err
	}
	c.setupCrosshairVAO()
	return nil
}

// Render renders the crosshair
func (c *Crosshair) Render(ctx renderer.RenderContext) {
	defer profiling.Track("renderer.renderCrosshair")()
	gl.Disable(gl.DEPTH_TEST)
	defer gl.Enable(gl.DEPTH_TEST)

	c.shader.Use()
	c.shader.SetFloat("aspectRatio", ctx.Camera.AspectRatio)
	gl.BindVertexArray(c.vao)
	gl.LineWidth(1.0)
	gl.DrawArrays(gl.LINES, 0, 4)
	gl.BindVertexArray(0)
}

// Dispose cleans up OpenGL resources
func (c *Crosshair) Dispose() {
	if c.vao != 0 {
		gl.DeleteVertexArrays(1, &c.vao)
	}
	if c.vbo != 0 {
		gl.DeleteBuffers(1, &c.vbo)
	}
	if c.shader != nil {
		c.shader.Delete()
	}
}

func (c *Crosshair) SetViewport(width, height int) {}

func (c *Crosshair) setupCrosshairVAO() {
	gl.GenVertexArrays(1, &c.vao)
	gl.BindVertexArray(c.vao)

	gl.GenBuffers(1, &c.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, c.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(Vertices)*4, gl.Ptr(Vertices), gl.STATIC_DRAW)

	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, 2*4, 0)
	gl.BindVertexArray(0)
}

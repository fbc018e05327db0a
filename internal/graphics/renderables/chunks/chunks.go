package chunks

import (
	_ "embed"

	"mini-voxel/internal/graphics"
	"mini-voxel/internal/graphics/frustum"
	renderer "mini-voxel/internal/graphics/renderer"
	"mini-voxel/internal/graphics/uploads"
	"mini-voxel/internal/meshing"
	"mini-voxel/internal/profiling"
	"mini-voxel/internal/world"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	//go:embed shaders/chunk.vert
	vertSource string
	//go:embed shaders/chunk.frag
	fragSource string
)

type chunkMesh struct {
	origin      mgl32.Vec3
	vao         uint32
	vbo         uint32
	vertexCount int32
}

func (m *chunkMesh) release() {
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
		m.vao = 0
	}
	if m.vbo != 0 {
		gl.DeleteBuffers(1, &m.vbo)
		m.vbo = 0
	}
	m.vertexCount = 0
}

// Chunks draws streamed chunk meshes. It is the world.Renderer handed to
// the streaming core: notifications are queued from any goroutine and
// applied to GL buffers at the start of each frame.
type Chunks struct {
	*uploads.Queue

	shader *graphics.Shader
	edge   float32
	fogEnd float32
	meshes map[world.ChunkCoord]*chunkMesh

	visible []*chunkMesh
	drawn   int
}

// NewChunks creates a chunk renderable for chunks of the given edge length.
// renderDistance is in world units and sets where fog reaches full strength.
func NewChunks(edge int, renderDistance float32) *Chunks {
	return &Chunks{
		Queue:   uploads.NewQueue(),
		edge:    float32(edge),
		fogEnd:  renderDistance,
		meshes:  make(map[world.ChunkCoord]*chunkMesh),
		visible: make([]*chunkMesh, 0, 1024),
	}
}

// Init initializes the chunk rendering system
func (c *Chunks) Init() error {
	var err error
	c.shader, err = graphics.NewShader(vertSource, fragSource)
	return err
}

// Render applies pending uploads and draws every chunk inside the frustum
func (c *Chunks) Render(ctx renderer.RenderContext) {
	func() {
		defer profiling.Track("renderer.chunks.upload")()
		uploads.Apply(c.meshes, c.Drain(), c.create, c.upload, (*chunkMesh).release)
	}()

	if ctx.Wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
		defer gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}

	defer profiling.Track("renderer.chunks.draw")()
	c.shader.Use()
	c.shader.SetMat4("proj", ctx.Proj)
	c.shader.SetMat4("view", ctx.View)
	c.shader.SetVec3("lightDir", mgl32.Vec3{0.3, 1.0, 0.3}.Normalize())
	c.shader.SetVec3("eye", ctx.Eye)
	c.shader.SetFloat("fogEnd", c.fogEnd)

	f := frustum.FromMatrix(ctx.Proj.Mul4(ctx.View))
	half := mgl32.Vec3{0.5, 0.5, 0.5}
	c.visible = c.visible[:0]
	for _, m := range c.meshes {
		if m.vertexCount == 0 {
			continue
		}
		if f.IntersectsCube(m.origin.Sub(half), c.edge) {
			c.visible = append(c.visible, m)
		}
	}
	for _, m := range c.visible {
		gl.BindVertexArray(m.vao)
		gl.DrawArrays(gl.TRIANGLES, 0, m.vertexCount)
	}
	gl.BindVertexArray(0)
	c.drawn = len(c.visible)
}

func (c *Chunks) create(e uploads.Event) *chunkMesh {
	return &chunkMesh{origin: e.Origin}
}

func (c *Chunks) upload(m *chunkMesh, vertices []float32) {
	if len(vertices) == 0 {
		m.vertexCount = 0
		return
	}
	if m.vao == 0 {
		gl.GenVertexArrays(1, &m.vao)
		gl.GenBuffers(1, &m.vbo)
	}
	gl.BindVertexArray(m.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)

	stride := int32(meshing.VertexStride * 4)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)
	gl.BindVertexArray(0)

	m.vertexCount = int32(len(vertices) / meshing.VertexStride)
}

// Live returns the number of chunks with GL state and the number drawn last frame
func (c *Chunks) Live() (live, drawn int) {
	return len(c.meshes), c.drawn
}

// Origins appends the origin of every live chunk to dst
func (c *Chunks) Origins(dst []mgl32.Vec3) []mgl32.Vec3 {
	for _, m := range c.meshes {
		dst = append(dst, m.origin)
	}
	return dst
}

// Dispose cleans up OpenGL resources
func (c *Chunks) Dispose() {
	for _, m := range c.meshes {
		m.release()
	}
	clear(c.meshes)
	if c.shader != nil {
		c.shader.Delete()
	}
}

func (c *Chunks) SetViewport(width, height int) {}

package meshing

import (
	"mini-voxel/internal/profiling"
	"mini-voxel/internal/world"
)

// VertexStride is number of float32 per vertex (pos.xyz + normal.xyz)
const VertexStride = 6

// FloatsPerQuad is two triangles of VertexStride floats each.
const FloatsPerQuad = 6 * VertexStride

// BuildGreedyMesh builds a greedy-meshed triangle list (pos+normal interleaved)
// for a generated chunk. Faces on the chunk border are culled against
// outside, which answers for world positions beyond the chunk; a nil outside
// treats the exterior as air.
//
// Voxel centers sit on integer world positions, so every face is shifted by
// -0.5 to match a unit cube drawn at the voxel's position.
func BuildGreedyMesh(c *world.Chunk, outside world.SolidFunc) []float32 {
	if c == nil {
		return nil
	}
	defer profiling.Track("meshing.BuildGreedyMesh")()

	b := &builder{
		c:        c,
		edge:     c.Edge(),
		outside:  outside,
		vertices: make([]float32, 0, 1024),
	}
	origin := c.Coord
	b.base = [3]int{origin.X * b.edge, origin.Y * b.edge, origin.Z * b.edge}

	for axis := 0; axis < 3; axis++ {
		b.direction(axis, +1)
		b.direction(axis, -1)
	}
	return b.vertices
}

// Mesher adapts BuildGreedyMesh to the world.Mesher signature.
func Mesher() world.Mesher {
	return BuildGreedyMesh
}

type builder struct {
	c        *world.Chunk
	edge     int
	base     [3]int
	outside  world.SolidFunc
	vertices []float32
	mask     []bool
}

// solid answers for local coordinates, which may step one voxel outside.
func (b *builder) solid(p [3]int) bool {
	if p[0] >= 0 && p[0] < b.edge && p[1] >= 0 && p[1] < b.edge && p[2] >= 0 && p[2] < b.edge {
		return b.c.Solid(p[0], p[1], p[2])
	}
	if b.outside == nil {
		return false
	}
	return b.outside(b.base[0]+p[0], b.base[1]+p[1], b.base[2]+p[2])
}

// direction performs 2D greedy meshing for faces whose normal is sign along
// axis. The face plane is spanned by u = axis+1 and v = axis+2 (mod 3), so
// u × v points along +axis.
func (b *builder) direction(axis, sign int) {
	e := b.edge
	u := (axis + 1) % 3
	v := (axis + 2) % 3
	if cap(b.mask) < e*e {
		b.mask = make([]bool, e*e)
	}
	mask := b.mask[:e*e]

	for layer := 0; layer < e; layer++ {
		// Mask of visible faces in this layer, indexed [i*e+j] with i along u, j along v.
		for i := 0; i < e; i++ {
			for j := 0; j < e; j++ {
				var p [3]int
				p[axis], p[u], p[v] = layer, i, j
				visible := false
				if b.solid(p) {
					p[axis] += sign
					visible = !b.solid(p)
				}
				mask[i*e+j] = visible
			}
		}

		// Greedy merge: grow along v first, then along u.
		for i := 0; i < e; i++ {
			for j := 0; j < e; {
				if !mask[i*e+j] {
					j++
					continue
				}
				width := 1
				for j+width < e && mask[i*e+j+width] {
					width++
				}
				height := 1
			grow:
				for i+height < e {
					for k := j; k < j+width; k++ {
						if !mask[(i+height)*e+k] {
							break grow
						}
					}
					height++
				}
				b.emit(axis, u, v, sign, layer, i, j, height, width)
				for ii := i; ii < i+height; ii++ {
					for jj := j; jj < j+width; jj++ {
						mask[ii*e+jj] = false
					}
				}
				j += width
			}
		}
	}
}

// emit appends one quad covering [i, i+du) × [j, j+dv) on the given layer.
func (b *builder) emit(axis, u, v, sign, layer, i, j, du, dv int) {
	plane := b.base[axis] + layer
	if sign > 0 {
		plane++
	}
	u0 := b.base[u] + i
	v0 := b.base[v] + j
	u1 := u0 + du
	v1 := v0 + dv

	corner := func(cu, cv int) [3]float32 {
		var p [3]float32
		p[axis] = float32(plane) - 0.5
		p[u] = float32(cu) - 0.5
		p[v] = float32(cv) - 0.5
		return p
	}
	var n [3]float32
	n[axis] = float32(sign)

	// Counter-clockwise when viewed from the side the normal points to.
	q := [4][3]float32{corner(u0, v0), corner(u1, v0), corner(u1, v1), corner(u0, v1)}
	if sign < 0 {
		q[1], q[3] = q[3], q[1]
	}
	for _, idx := range [6]int{0, 1, 2, 2, 3, 0} {
		p := q[idx]
		b.vertices = append(b.vertices, p[0], p[1], p[2], n[0], n[1], n[2])
	}
}

package meshing

import (
	"context"
	"testing"

	"mini-voxel/internal/world"
)

// solidSet is a noise field that is solid exactly at the listed world positions.
type solidSet map[[3]int]bool

func (s solidSet) Sample(x, y, z float64) float64 {
	if s[[3]int{int(x), int(y), int(z)}] {
		return -1
	}
	return 1
}

func (s solidSet) Seed() uint32 { return 0 }

func (s solidSet) solidAt(wx, wy, wz int) bool { return s[[3]int{wx, wy, wz}] }

// generate builds chunk (0,0,0) with the given solid positions.
func generate(t testing.TB, solids solidSet, edge int) *world.Chunk {
	t.Helper()
	g := world.NewGenerator(solids, world.NopRenderer{}, nil, world.GeneratorOptions{Scale: 1})
	c := world.NewChunk(world.ChunkCoord{}, edge)
	if err := g.Generate(context.Background(), c); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return c
}

func TestSingleBlockMesh(t *testing.T) {
	solids := solidSet{{0, 0, 0}: true}
	verts := BuildGreedyMesh(generate(t, solids, 16), solids.solidAt)
	expectedFloats := 36 * 6 // 12 triangles * 3 verts * 6 floats
	if len(verts) != expectedFloats {
		t.Fatalf("single block: got %d floats, want %d", len(verts), expectedFloats)
	}
}

func TestTwoBlocksSeparated(t *testing.T) {
	solids := solidSet{{0, 0, 0}: true, {2, 0, 0}: true}
	verts := BuildGreedyMesh(generate(t, solids, 16), solids.solidAt)
	expectedFloats := 72 * 6 // 24 triangles * 3 verts * 6 floats
	if len(verts) != expectedFloats {
		t.Fatalf("two separated blocks: got %d floats, want %d", len(verts), expectedFloats)
	}
}

func TestTwoBlocksTouchingGreedy(t *testing.T) {
	solids := solidSet{{0, 0, 0}: true, {1, 0, 0}: true}
	verts := BuildGreedyMesh(generate(t, solids, 16), solids.solidAt)
	// Union is a 2x1x1 cuboid => 12 triangles
	expectedFloats := 36 * 6
	if len(verts) != expectedFloats {
		t.Fatalf("two touching blocks (greedy merge): got %d floats, want %d", len(verts), expectedFloats)
	}
}

func TestFullLayerMergesToOneQuadPerFace(t *testing.T) {
	const edge = 8
	solids := solidSet{}
	for x := 0; x < edge; x++ {
		for z := 0; z < edge; z++ {
			solids[[3]int{x, 0, z}] = true
		}
	}
	verts := BuildGreedyMesh(generate(t, solids, edge), nil)
	// A flat 8x1x8 slab: 6 faces, each a single merged quad.
	if want := 6 * FloatsPerQuad; len(verts) != want {
		t.Fatalf("slab: got %d floats, want %d", len(verts), want)
	}
}

func TestCrossChunkFaceCulling(t *testing.T) {
	// One block at the +X edge of chunk (0,0,0) and its neighbour in chunk (1,0,0).
	solids := solidSet{{15, 0, 0}: true, {16, 0, 0}: true}
	verts := BuildGreedyMesh(generate(t, solids, 16), solids.solidAt)
	// One face hidden due to neighbor => 10 triangles = 30 verts
	expectedFloats := 30 * 6
	if len(verts) != expectedFloats {
		t.Fatalf("cross-chunk culling: got %d floats, want %d", len(verts), expectedFloats)
	}
}

func TestNilOutsideTreatsBorderAsAir(t *testing.T) {
	solids := solidSet{{15, 0, 0}: true, {16, 0, 0}: true}
	verts := BuildGreedyMesh(generate(t, solids, 16), nil)
	if want := 36 * 6; len(verts) != want {
		t.Fatalf("got %d floats, want %d", len(verts), want)
	}
}

func TestNormalsAndCenteredCorners(t *testing.T) {
	solids := solidSet{{3, 4, 5}: true}
	verts := BuildGreedyMesh(generate(t, solids, 16), nil)
	for i := 0; i < len(verts); i += VertexStride {
		nx, ny, nz := verts[i+3], verts[i+4], verts[i+5]
		if nx*nx+ny*ny+nz*nz != 1 {
			t.Fatalf("vertex %d: normal (%v,%v,%v) is not an axis unit vector", i/VertexStride, nx, ny, nz)
		}
		for k, center := range [3]float32{3, 4, 5} {
			d := verts[i+k] - center
			if d != 0.5 && d != -0.5 {
				t.Fatalf("vertex %d axis %d: %v is not a corner of the voxel at %v", i/VertexStride, k, verts[i+k], center)
			}
		}
	}
}

func TestWindingFacesOutward(t *testing.T) {
	solids := solidSet{{0, 0, 0}: true}
	verts := BuildGreedyMesh(generate(t, solids, 16), nil)
	for tri := 0; tri < len(verts); tri += 3 * VertexStride {
		a := verts[tri : tri+3]
		b := verts[tri+VertexStride : tri+VertexStride+3]
		c := verts[tri+2*VertexStride : tri+2*VertexStride+3]
		n := verts[tri+3 : tri+6]
		e1 := [3]float32{b[0] - a[0], b[1] - a[1], b[2] - a[2]}
		e2 := [3]float32{c[0] - a[0], c[1] - a[1], c[2] - a[2]}
		cross := [3]float32{
			e1[1]*e2[2] - e1[2]*e2[1],
			e1[2]*e2[0] - e1[0]*e2[2],
			e1[0]*e2[1] - e1[1]*e2[0],
		}
		if cross[0]*n[0]+cross[1]*n[1]+cross[2]*n[2] <= 0 {
			t.Fatalf("triangle %d winds against its normal %v", tri/(3*VertexStride), n)
		}
	}
}

func TestNilChunk(t *testing.T) {
	if v := BuildGreedyMesh(nil, nil); v != nil {
		t.Fatalf("expected nil vertices for nil chunk")
	}
}

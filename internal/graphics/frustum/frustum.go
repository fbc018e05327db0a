// Package frustum extracts view-frustum planes and tests boxes against them.
package frustum

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Margin in world units that inflates boxes before testing
var Margin float32 = 1.0

type plane struct {
	a, b, c, d float32
}

// Frustum holds six planes in order: left, right, bottom, top, near, far.
// Normals point inward.
type Frustum [6]plane

// FromMatrix builds the planes from a combined projection*view matrix.
func FromMatrix(clip mgl32.Mat4) Frustum {
	// Matrix is in column-major order in mgl32
	m00, m01, m02, m03 := clip[0], clip[4], clip[8], clip[12]
	m10, m11, m12, m13 := clip[1], clip[5], clip[9], clip[13]
	m20, m21, m22, m23 := clip[2], clip[6], clip[10], clip[14]
	m30, m31, m32, m33 := clip[3], clip[7], clip[11], clip[15]

	var f Frustum
	f[0] = normalize(plane{m30 + m00, m31 + m01, m32 + m02, m33 + m03})
	f[1] = normalize(plane{m30 - m00, m31 - m01, m32 - m02, m33 - m03})
	f[2] = normalize(plane{m30 + m10, m31 + m11, m32 + m12, m33 + m13})
	f[3] = normalize(plane{m30 - m10, m31 - m11, m32 - m12, m33 - m13})
	f[4] = normalize(plane{m30 + m20, m31 + m21, m32 + m22, m33 + m23})
	f[5] = normalize(plane{m30 - m20, m31 - m21, m32 - m22, m33 - m23})
	return f
}

func normalize(p plane) plane {
	l := float32(math.Sqrt(float64(p.a*p.a + p.b*p.b + p.c*p.c)))
	if l == 0 {
		return p
	}
	return plane{p.a / l, p.b / l, p.c / l, p.d / l}
}

// IntersectsBox reports whether the axis-aligned box [min,max] is at least
// partly inside. Conservative: boxes near corners may pass.
func (f *Frustum) IntersectsBox(min, max mgl32.Vec3) bool {
	for i := range f {
		p := f[i]
		// Select the positive vertex for this plane normal
		px := max.X()
		if p.a < 0 {
			px = min.X()
		}
		py := max.Y()
		if p.b < 0 {
			py = min.Y()
		}
		pz := max.Z()
		if p.c < 0 {
			pz = min.Z()
		}
		if p.a*px+p.b*py+p.c*pz+p.d < 0 {
			return false
		}
	}
	return true
}

// IntersectsCube tests a cube with corner origin and the given edge, inflated by Margin.
func (f *Frustum) IntersectsCube(origin mgl32.Vec3, edge float32) bool {
	m := mgl32.Vec3{Margin, Margin, Margin}
	return f.IntersectsBox(origin.Sub(m), origin.Add(mgl32.Vec3{edge, edge, edge}).Add(m))
}

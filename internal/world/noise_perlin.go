package world

import (
	"math/rand"
)

// Gradient directions for improved Perlin noise: the twelve cube edge
// midpoints padded to sixteen entries.
var (
	gradX = [16]float64{1, -1, 1, -1, 1, -1, 1, -1, 0, 0, 0, 0, 1, 0, -1, 0}
	gradY = [16]float64{1, 1, -1, -1, 0, 0, 0, 0, 1, -1, 1, -1, 1, -1, 1, -1}
	gradZ = [16]float64{0, 0, 0, 0, 1, 1, -1, -1, 1, 1, -1, -1, 0, 1, 0, -1}
)

// perlinField is improved Perlin gradient noise with a seeded permutation
// table and a seeded lattice offset, so seed 0 does not sit on the origin.
type perlinField struct {
	seed  uint32
	perm  [512]int
	shift [3]float64
}

func newPerlinField(seed uint32) *perlinField {
	rnd := rand.New(rand.NewSource(int64(seed)))
	f := &perlinField{
		seed:  seed,
		shift: [3]float64{rnd.Float64() * 256, rnd.Float64() * 256, rnd.Float64() * 256},
	}
	for i := 0; i < 256; i++ {
		f.perm[i] = i
	}
	for i := 0; i < 256; i++ {
		j := rnd.Intn(256-i) + i
		f.perm[i], f.perm[j] = f.perm[j], f.perm[i]
		f.perm[i+256] = f.perm[i]
	}
	return f
}

func (f *perlinField) grad(hash int, x, y, z float64) float64 {
	i := hash & 15
	return gradX[i]*x + gradY[i]*y + gradZ[i]*z
}

func (f *perlinField) Sample(x, y, z float64) float64 {
	x += f.shift[0]
	y += f.shift[1]
	z += f.shift[2]

	xi, yi, zi := floorToInt(x), floorToInt(y), floorToInt(z)
	x -= float64(xi)
	y -= float64(yi)
	z -= float64(zi)
	xi &= 255
	yi &= 255
	zi &= 255

	u, v, w := fade(x), fade(y), fade(z)
	p := &f.perm

	a := p[xi] + yi
	aa, ab := p[a]+zi, p[a+1]+zi
	b := p[xi+1] + yi
	ba, bb := p[b]+zi, p[b+1]+zi

	x0 := lerp(lerp(f.grad(p[aa], x, y, z), f.grad(p[ba], x-1, y, z), u),
		lerp(f.grad(p[ab], x, y-1, z), f.grad(p[bb], x-1, y-1, z), u), v)
	x1 := lerp(lerp(f.grad(p[aa+1], x, y, z-1), f.grad(p[ba+1], x-1, y, z-1), u),
		lerp(f.grad(p[ab+1], x, y-1, z-1), f.grad(p[bb+1], x-1, y-1, z-1), u), v)
	n := lerp(x0, x1, w)

	// The gradient set can overshoot ±1 by a few percent near lattice diagonals.
	return max(-1, min(1, n))
}

func (f *perlinField) Seed() uint32 { return f.seed }

// floorToInt floors d and converts, unlike int(d) which truncates toward zero.
func floorToInt(d float64) int {
	i := int(d)
	if d < float64(i) {
		i--
	}
	return i
}

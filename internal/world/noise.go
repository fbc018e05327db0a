package world

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/ojrac/opensimplex-go"
)

// NoiseField is a deterministic 3D scalar field in roughly [-1, 1].
// Implementations are immutable and safe for concurrent use.
type NoiseField interface {
	Sample(x, y, z float64) float64
	Seed() uint32
}

// NoiseKind selects a NoiseField implementation.
type NoiseKind string

const (
	NoiseSimplex NoiseKind = "simplex"
	NoiseValue   NoiseKind = "value"
	NoisePerlin  NoiseKind = "perlin"
)

// ParseNoiseKind validates a noise kind name.
func ParseNoiseKind(s string) (NoiseKind, error) {
	switch NoiseKind(s) {
	case NoiseSimplex, NoiseValue, NoisePerlin:
		return NoiseKind(s), nil
	case "":
		return NoiseSimplex, nil
	}
	return "", fmt.Errorf("unknown noise kind %q", s)
}

// RandomSeed returns a uniformly random 32-bit seed.
func RandomSeed() uint32 {
	return rand.Uint32()
}

// NewNoiseField builds the field of the given kind. Unknown kinds fall back
// to simplex.
func NewNoiseField(kind NoiseKind, seed uint32) NoiseField {
	switch kind {
	case NoiseValue:
		return &valueField{seed: seed, octaves: 3, persistence: 0.5, lacunarity: 2.0}
	case NoisePerlin:
		return newPerlinField(seed)
	}
	return &simplexField{seed: seed, noise: opensimplex.New(int64(seed))}
}

type simplexField struct {
	seed  uint32
	noise opensimplex.Noise
}

func (f *simplexField) Sample(x, y, z float64) float64 {
	return f.noise.Eval3(x, y, z)
}

func (f *simplexField) Seed() uint32 { return f.seed }

// valueField is multi-octave lattice value noise remapped to [-1, 1].
type valueField struct {
	seed        uint32
	octaves     int
	persistence float64
	lacunarity  float64
}

func (f *valueField) Sample(x, y, z float64) float64 {
	return octaveNoise3D(x, y, z, int64(f.seed), f.octaves, f.persistence, f.lacunarity)*2 - 1
}

func (f *valueField) Seed() uint32 { return f.seed }

// fade is the quintic smoothstep 6t^5 - 15t^4 + 10t^3.
func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// hash3 is a SplitMix64-style integer hash with a distinct multiplier per axis.
func hash3(x, y, z int64, seed int64) uint64 {
	v := uint64(x)*0x9E3779B97F4A7C15 + uint64(y)*0x517CC1B727220A95 + uint64(z)*0x6C62272E07BB0142 + uint64(seed)
	v += 0x9E3779B97F4A7C15
	v = (v ^ (v >> 30)) * 0xBF58476D1CE4E5B9
	v = (v ^ (v >> 27)) * 0x94D049BB133111EB
	return v ^ (v >> 31)
}

// latticeValue3D maps a lattice point to [0,1].
func latticeValue3D(x, y, z int64, seed int64) float64 {
	h := hash3(x, y, z, seed)
	return float64(h&0xFFFFFFFF) / float64(0xFFFFFFFF)
}

func valueNoise3D(x, y, z float64, seed int64) float64 {
	x0, y0, z0 := math.Floor(x), math.Floor(y), math.Floor(z)
	ix, iy, iz := int64(x0), int64(y0), int64(z0)

	fx := fade(x - x0)
	fy := fade(y - y0)
	fz := fade(z - z0)

	// Trilinear over the 8 cube corners: X first, then Y, then Z.
	i00 := lerp(latticeValue3D(ix, iy, iz, seed), latticeValue3D(ix+1, iy, iz, seed), fx)
	i10 := lerp(latticeValue3D(ix, iy+1, iz, seed), latticeValue3D(ix+1, iy+1, iz, seed), fx)
	i01 := lerp(latticeValue3D(ix, iy, iz+1, seed), latticeValue3D(ix+1, iy, iz+1, seed), fx)
	i11 := lerp(latticeValue3D(ix, iy+1, iz+1, seed), latticeValue3D(ix+1, iy+1, iz+1, seed), fx)

	return lerp(lerp(i00, i10, fy), lerp(i01, i11, fy), fz) // [0,1]
}

func octaveNoise3D(x, y, z float64, seed int64, octaves int, persistence, lacunarity float64) float64 {
	amplitude := 1.0
	frequency := 1.0
	sum := 0.0
	norm := 0.0
	for i := range octaves {
		sum += valueNoise3D(x*frequency, y*frequency, z*frequency, seed+int64(i*131)) * amplitude
		norm += amplitude
		amplitude *= persistence
		frequency *= lacunarity
	}
	if norm == 0 {
		return 0
	}
	return sum / norm // [0,1]
}

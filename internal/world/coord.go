package world

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// DefaultChunkEdge is the edge length of a cubic chunk in voxels.
const DefaultChunkEdge = 16

// ChunkCoord identifies a chunk in chunk space.
// World position of the chunk's minimum corner is coord * edge.
type ChunkCoord struct {
	X, Y, Z int
}

// Origin returns the world-space minimum corner of the chunk.
func (c ChunkCoord) Origin(edge int) mgl32.Vec3 {
	return mgl32.Vec3{
		float32(c.X * edge),
		float32(c.Y * edge),
		float32(c.Z * edge),
	}
}

// Center returns the world-space center of the chunk: coord*edge + edge/2 per axis.
func (c ChunkCoord) Center(edge int) [3]float64 {
	half := edge / 2
	return [3]float64{
		float64(c.X*edge + half),
		float64(c.Y*edge + half),
		float64(c.Z*edge + half),
	}
}

// DistSq returns the squared distance between the chunk center and p.
func (c ChunkCoord) DistSq(edge int, p mgl32.Vec3) float64 {
	ctr := c.Center(edge)
	dx := ctr[0] - float64(p[0])
	dy := ctr[1] - float64(p[1])
	dz := ctr[2] - float64(p[2])
	return dx*dx + dy*dy + dz*dz
}

// CoordFromWorld returns the chunk containing world position p.
func CoordFromWorld(p mgl32.Vec3, edge int) ChunkCoord {
	return ChunkCoord{
		X: floorDiv(int(math.Floor(float64(p[0]))), edge),
		Y: floorDiv(int(math.Floor(float64(p[1]))), edge),
		Z: floorDiv(int(math.Floor(float64(p[2]))), edge),
	}
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// mod returns a non-negative remainder.
func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

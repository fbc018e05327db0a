// Package camera implements a free-flying first-person camera.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	MouseSensitivity = 0.005 // radians per pixel
	MoveSpeed        = 5.0   // units per second
	FastMultiplier   = 5.0
	MaxPitch         = math.Pi/2 - 0.005
)

// Intent is one frame of user input, already mapped from devices.
type Intent struct {
	Forward, Backward bool
	Left, Right       bool
	Fast              bool

	// Look enables mouse rotation; motion is ignored while false.
	Look             bool
	MouseDX, MouseDY float64
}

// FlyCamera moves freely along its view direction. Yaw rotates about +Y
// and pitch about the camera's X axis; zero yaw looks down -Z.
type FlyCamera struct {
	Position mgl32.Vec3
	Yaw      float32
	Pitch    float32
	Speed    float32
}

// NewFlyCamera places a camera at pos looking down -Z.
func NewFlyCamera(pos mgl32.Vec3) *FlyCamera {
	return &FlyCamera{Position: pos, Speed: MoveSpeed}
}

// Forward returns the unit view direction.
func (c *FlyCamera) Forward() mgl32.Vec3 {
	sy, cy := math.Sincos(float64(c.Yaw))
	sp, cp := math.Sincos(float64(c.Pitch))
	return mgl32.Vec3{float32(-sy * cp), float32(sp), float32(-cy * cp)}
}

// Left returns the unit direction to the camera's left in the horizontal plane.
func (c *FlyCamera) Left() mgl32.Vec3 {
	sy, cy := math.Sincos(float64(c.Yaw))
	return mgl32.Vec3{float32(-cy), 0, float32(sy)}
}

// Update applies one frame of input over dt seconds.
func (c *FlyCamera) Update(in Intent, dt float32) {
	if in.Look {
		c.Yaw -= float32(in.MouseDX * MouseSensitivity)
		c.Pitch -= float32(in.MouseDY * MouseSensitivity)
		c.Pitch = mgl32.Clamp(c.Pitch, -MaxPitch, MaxPitch)
	}

	speed := c.Speed
	if speed == 0 {
		speed = MoveSpeed
	}
	if in.Fast {
		speed *= FastMultiplier
	}
	step := speed * dt

	var move mgl32.Vec3
	if in.Forward {
		move = move.Add(c.Forward())
	}
	if in.Backward {
		move = move.Sub(c.Forward())
	}
	if in.Left {
		move = move.Add(c.Left())
	}
	if in.Right {
		move = move.Sub(c.Left())
	}
	c.Position = c.Position.Add(move.Mul(step))
}

// ViewMatrix returns the world-to-camera transform.
func (c *FlyCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Forward()), mgl32.Vec3{0, 1, 0})
}

// ObserverPositions reports the camera as the single observer.
func (c *FlyCamera) ObserverPositions() []mgl32.Vec3 {
	return []mgl32.Vec3{c.Position}
}

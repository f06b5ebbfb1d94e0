// Package camera provides the first-person camera for mesh navigation.
package camera

import (
	gomath "math"

	"github.com/splatworks/splatview/pkg/math"
)

// MoveDirection selects a movement axis for Move.
type MoveDirection int

// Movement directions. Forward/Backward/Left/Right move on the horizontal
// plane derived from yaw; Up/Down are world-space vertical.
const (
	MoveForward MoveDirection = iota
	MoveBackward
	MoveLeft
	MoveRight
	MoveUp
	MoveDown
)

// Pitch is clamped short of straight up/down to avoid gimbal flip.
const pitchLimit = 89.0

// FlyCamera is a free first-person camera driven by mouse-look and
// keyboard movement. Angles are in degrees.
type FlyCamera struct {
	Position math.Vec3
	Yaw      float32
	Pitch    float32

	// Speed is movement in world units per second, Sensitivity scales raw
	// mouse counts into degrees.
	Speed       float32
	Sensitivity float32
}

// New creates a camera at the given position with the given orientation.
func New(position math.Vec3, yaw, pitch, speed, sensitivity float32) *FlyCamera {
	c := &FlyCamera{
		Position:    position,
		Yaw:         yaw,
		Pitch:       pitch,
		Speed:       speed,
		Sensitivity: sensitivity,
	}
	c.clampPitch()
	return c
}

// ApplyLookDelta accumulates a relative mouse motion into yaw and pitch.
// Positive dy (mouse moved down) pitches the view down.
func (c *FlyCamera) ApplyLookDelta(dx, dy float32) {
	c.Yaw += dx * c.Sensitivity
	c.Pitch -= dy * c.Sensitivity
	c.clampPitch()
}

// Move translates the camera along the given direction, scaled by the
// elapsed frame time so the rate is frame-rate independent.
func (c *FlyCamera) Move(dir MoveDirection, dt float32) {
	velocity := c.Speed * dt
	forward := c.groundForward()
	right := forward.Cross(math.Vec3{X: 0, Y: 1, Z: 0}).Normalize()

	switch dir {
	case MoveForward:
		c.Position = c.Position.Add(forward.Scale(velocity))
	case MoveBackward:
		c.Position = c.Position.Sub(forward.Scale(velocity))
	case MoveLeft:
		c.Position = c.Position.Sub(right.Scale(velocity))
	case MoveRight:
		c.Position = c.Position.Add(right.Scale(velocity))
	case MoveUp:
		c.Position.Y += velocity
	case MoveDown:
		c.Position.Y -= velocity
	}
}

// ViewMatrix returns the view matrix for the current position and
// orientation. It is recomputed from state on every call.
func (c *FlyCamera) ViewMatrix() math.Mat4 {
	target := c.Position.Add(c.Forward())
	return math.LookAt(c.Position, target, math.Vec3{X: 0, Y: 1, Z: 0})
}

// Forward returns the full look direction including pitch.
func (c *FlyCamera) Forward() math.Vec3 {
	yaw := float64(math.Radians(c.Yaw))
	pitch := float64(math.Radians(c.Pitch))

	return math.Vec3{
		X: float32(gomath.Cos(yaw) * gomath.Cos(pitch)),
		Y: float32(gomath.Sin(pitch)),
		Z: float32(gomath.Sin(yaw) * gomath.Cos(pitch)),
	}.Normalize()
}

// groundForward returns the look direction flattened onto the horizontal
// plane, so walking forward while looking down does not sink the camera.
func (c *FlyCamera) groundForward() math.Vec3 {
	yaw := float64(math.Radians(c.Yaw))
	return math.Vec3{
		X: float32(gomath.Cos(yaw)),
		Z: float32(gomath.Sin(yaw)),
	}.Normalize()
}

func (c *FlyCamera) clampPitch() {
	if c.Pitch > pitchLimit {
		c.Pitch = pitchLimit
	}
	if c.Pitch < -pitchLimit {
		c.Pitch = -pitchLimit
	}
}

// Orientation is a fixed model-space rotation correcting how the source
// mesh was authored. It is configuration, not camera state.
type Orientation struct {
	Pitch float32 // degrees, around X
	Yaw   float32 // degrees, around Y
	Roll  float32 // degrees, around Z
}

// ModelMatrix composes the correction as rotate X, then Y, then Z.
// The zero Orientation yields the identity matrix.
func (o Orientation) ModelMatrix() math.Mat4 {
	if o == (Orientation{}) {
		return math.Identity()
	}
	return math.RotateX(math.Radians(o.Pitch)).
		Mul(math.RotateY(math.Radians(o.Yaw))).
		Mul(math.RotateZ(math.Radians(o.Roll)))
}

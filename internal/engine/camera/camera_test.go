package camera

import (
	gomath "math"
	"testing"

	"github.com/splatworks/splatview/pkg/math"
)

const eps = 1e-4

func newTestCamera() *FlyCamera {
	return New(math.Vec3{X: 0, Y: 2, Z: 20}, -90, 0, 5, 0.1)
}

func TestMove_ForwardBackRoundTrip(t *testing.T) {
	c := newTestCamera()
	start := c.Position

	c.Move(MoveForward, 0.25)
	c.Move(MoveBackward, 0.25)

	if c.Position.Distance(start) > eps {
		t.Errorf("forward+back did not return to start: %v vs %v", c.Position, start)
	}
}

func TestMove_LeftRightRoundTrip(t *testing.T) {
	c := newTestCamera()
	start := c.Position

	c.Move(MoveLeft, 0.5)
	c.Move(MoveRight, 0.5)

	if c.Position.Distance(start) > eps {
		t.Errorf("left+right did not return to start: %v vs %v", c.Position, start)
	}
}

func TestMove_VerticalIsWorldSpace(t *testing.T) {
	c := newTestCamera()
	c.Pitch = 45 // looking up must not affect vertical movement
	start := c.Position

	c.Move(MoveUp, 1)
	if gomath.Abs(float64(c.Position.Y-start.Y-5)) > eps {
		t.Errorf("up moved Y by %f, expected 5", c.Position.Y-start.Y)
	}
	if c.Position.X != start.X || c.Position.Z != start.Z {
		t.Error("vertical movement changed horizontal position")
	}
}

func TestMove_ForwardIgnoresPitch(t *testing.T) {
	c := newTestCamera()
	c.Pitch = -80 // looking almost straight down
	startY := c.Position.Y

	c.Move(MoveForward, 1)

	if gomath.Abs(float64(c.Position.Y-startY)) > eps {
		t.Errorf("forward while pitched changed Y by %f", c.Position.Y-startY)
	}
	// Still covers the full speed on the horizontal plane.
	moved := math.Vec3{X: c.Position.X, Z: c.Position.Z}.
		Distance(math.Vec3{X: 0, Z: 20})
	if gomath.Abs(float64(moved-5)) > eps {
		t.Errorf("horizontal distance = %f, expected 5", moved)
	}
}

func TestMove_SpeedScalesWithDt(t *testing.T) {
	a := newTestCamera()
	b := newTestCamera()

	a.Move(MoveForward, 0.1)
	for i := 0; i < 10; i++ {
		b.Move(MoveForward, 0.01)
	}

	if a.Position.Distance(b.Position) > eps {
		t.Errorf("one 0.1s step and ten 0.01s steps diverge: %v vs %v", a.Position, b.Position)
	}
}

func TestApplyLookDelta_Accumulates(t *testing.T) {
	c := newTestCamera()

	c.ApplyLookDelta(10, 0)
	c.ApplyLookDelta(10, 0)

	if gomath.Abs(float64(c.Yaw-(-88))) > eps {
		t.Errorf("yaw = %f, expected -88", c.Yaw)
	}
}

func TestApplyLookDelta_PitchClamp(t *testing.T) {
	c := newTestCamera()

	// A huge downward drag must clamp, not wrap.
	c.ApplyLookDelta(0, 100000)
	if c.Pitch < -89 {
		t.Errorf("pitch = %f, expected clamp at -89", c.Pitch)
	}

	c.ApplyLookDelta(0, -200000)
	if c.Pitch > 89 {
		t.Errorf("pitch = %f, expected clamp at +89", c.Pitch)
	}

	// The view matrix stays well-formed at the clamp limits.
	view := c.ViewMatrix()
	for i, v := range view {
		if gomath.IsNaN(float64(v)) {
			t.Fatalf("view matrix has NaN at %d", i)
		}
	}
}

func TestViewMatrix_Pure(t *testing.T) {
	c := newTestCamera()
	first := c.ViewMatrix()
	second := c.ViewMatrix()

	if first != second {
		t.Error("ViewMatrix is not deterministic for unchanged state")
	}
	if c.Position != (math.Vec3{X: 0, Y: 2, Z: 20}) {
		t.Error("ViewMatrix mutated camera position")
	}
}

func TestViewMatrix_EyeAtOrigin(t *testing.T) {
	c := newTestCamera()
	view := c.ViewMatrix()

	p := view.TransformPoint(c.Position)
	if p.Length() > eps {
		t.Errorf("camera position in view space = %v, expected origin", p)
	}
}

func TestOrientation_IdentityDefault(t *testing.T) {
	var o Orientation
	if o.ModelMatrix() != math.Identity() {
		t.Error("zero orientation should produce identity")
	}
}

func TestOrientation_ModelMatrix(t *testing.T) {
	o := Orientation{Pitch: 90}
	m := o.ModelMatrix()

	// +Y rotated 90 degrees around X lands on +Z.
	p := m.TransformPoint(math.Vec3{Y: 1})
	if gomath.Abs(float64(p.Y)) > eps || gomath.Abs(float64(p.Z-1)) > eps {
		t.Errorf("rotated point = %v, expected (0,0,1)", p)
	}
}

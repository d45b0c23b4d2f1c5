package common

import (
	"math"
	"testing"
)

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-5
}

func TestMul4Identity(t *testing.T) {
	var id, m, out [16]float32
	Identity(id[:])
	BuildModelMatrix(m[:], 1, 2, 3, 0.3, -0.7, 1.1, 2, 1, 0.5)

	Mul4(out[:], id[:], m[:])
	for i := range out {
		if !approx(out[i], m[i]) {
			t.Fatalf("id*m differs at %d: %v != %v", i, out[i], m[i])
		}
	}

	Mul4(out[:], m[:], id[:])
	for i := range out {
		if !approx(out[i], m[i]) {
			t.Fatalf("m*id differs at %d: %v != %v", i, out[i], m[i])
		}
	}
}

func TestOrthographicMapsCorners(t *testing.T) {
	var m [16]float32
	Orthographic(m[:], 0, 800, 600, 0, 0, 1)

	// Top-left pixel maps to NDC (-1, 1).
	x := m[0]*0 + m[12]
	y := m[5]*0 + m[13]
	if !approx(x, -1) || !approx(y, 1) {
		t.Errorf("(0,0) -> (%v, %v), want (-1, 1)", x, y)
	}

	// Bottom-right pixel maps to NDC (1, -1).
	x = m[0]*800 + m[12]
	y = m[5]*600 + m[13]
	if !approx(x, 1) || !approx(y, -1) {
		t.Errorf("(800,600) -> (%v, %v), want (1, -1)", x, y)
	}
}

func TestBuildModelMatrixNoRotation(t *testing.T) {
	var m [16]float32
	BuildModelMatrix(m[:], 5, 6, 7, 0, 0, 0, 2, 3, 4)

	if !approx(m[0], 2) || !approx(m[5], 3) || !approx(m[10], 4) {
		t.Errorf("scale diagonal = (%v, %v, %v), want (2, 3, 4)", m[0], m[5], m[10])
	}
	if !approx(m[12], 5) || !approx(m[13], 6) || !approx(m[14], 7) {
		t.Errorf("translation = (%v, %v, %v), want (5, 6, 7)", m[12], m[13], m[14])
	}
}

func TestBuildModelMatrixYawRotatesZAxis(t *testing.T) {
	var m [16]float32
	BuildModelMatrix(m[:], 0, 0, 0, 0, float32(math.Pi/2), 0, 1, 1, 1)

	// A quarter-turn yaw sends +X to -Z (column-major, column 0 is the image of X).
	if !approx(m[0], 0) || !approx(m[2], -1) {
		t.Errorf("X image = (%v, %v, %v), want (0, 0, -1)", m[0], m[1], m[2])
	}
}

func TestLookToIsRigid(t *testing.T) {
	var m [16]float32
	LookTo(m[:], 1, 2, 3, 0, 0, 1, 0, 1, 0)

	// The eye position must map to the origin.
	x := m[0]*1 + m[4]*2 + m[8]*3 + m[12]
	y := m[1]*1 + m[5]*2 + m[9]*3 + m[13]
	z := m[2]*1 + m[6]*2 + m[10]*3 + m[14]
	if !approx(x, 0) || !approx(y, 0) || !approx(z, 0) {
		t.Errorf("eye maps to (%v, %v, %v), want origin", x, y, z)
	}
}

func TestCoalesce(t *testing.T) {
	if got := Coalesce(0, 0, 7, 3); got != 7 {
		t.Errorf("Coalesce = %d, want 7", got)
	}
	if got := Coalesce("", "a"); got != "a" {
		t.Errorf("Coalesce = %q, want a", got)
	}
	if got := Coalesce(0, 0); got != 0 {
		t.Errorf("Coalesce = %d, want zero value", got)
	}
}

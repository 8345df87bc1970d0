package lang

import "testing"

func approxEq(a, b float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-5
}

func TestFillSplitEqualsFillWhole(t *testing.T) {
	shapes := []Shape{ShapeHold, ShapeLinear, ShapeExp, ShapeLog}
	for _, shape := range shapes {
		r := Ramp{V0: 0, Vt: 1, TimeMs: 100, Shape: shape, Flags: RampState | RampGoal}

		whole := make([]float32, 100)
		curWhole := NewFillCursor(r)
		Fill(r, curWhole, whole, 100, nil)

		split := make([]float32, 100)
		curSplit := NewFillCursor(r)
		Fill(r, curSplit, split[:40], 40, nil)
		Fill(r, curSplit, split[40:], 60, nil)

		for i := range whole {
			if !approxEq(whole[i], split[i]) {
				t.Fatalf("shape %v: sample %d differs: whole=%v split=%v", shape, i, whole[i], split[i])
			}
		}
	}
}

func TestExpLogReversal(t *testing.T) {
	v0, vt := float32(0), float32(1)
	timeMs := uint32(100)
	exp := Ramp{V0: v0, Vt: vt, TimeMs: timeMs, Shape: ShapeExp}
	log := Ramp{V0: vt, Vt: v0, TimeMs: timeMs, Shape: ShapeLog}

	for pos := uint32(0); pos < timeMs; pos++ {
		e := sampleAt(exp, pos)
		l := sampleAt(log, timeMs-pos)
		if !approxEq(e, l) {
			t.Fatalf("pos %d: exp=%v reversed-log=%v", pos, e, l)
		}
	}
}

func TestHoldShapeConstant(t *testing.T) {
	r := Ramp{V0: 5, Vt: 9, TimeMs: 10, Shape: ShapeHold}
	cur := NewFillCursor(r)
	out := make([]float32, 10)
	Fill(r, cur, out, 10, nil)
	for i, v := range out {
		if v != 5 {
			t.Fatalf("hold shape sample %d = %v, want 5", i, v)
		}
	}
}

func TestFillPastTimeReturnsGoal(t *testing.T) {
	r := Ramp{V0: 0, Vt: 2, TimeMs: 5, Shape: ShapeLinear}
	if v := sampleAt(r, 100); v != 2 {
		t.Fatalf("past-end sample = %v, want vt=2", v)
	}
}

func TestRampMultiplierBuffer(t *testing.T) {
	r := Ramp{V0: 1, Vt: 1, TimeMs: 4, Shape: ShapeHold}
	cur := NewFillCursor(r)
	mul := []float32{0.5, 1, 2, 0}
	out := make([]float32, 4)
	Fill(r, cur, out, 4, mul)
	want := []float32{0.5, 1, 2, 0}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("sample %d = %v, want %v", i, out[i], want[i])
		}
	}
}

package lang

// DefaultRampTimeMs is the FIXME-marked default ramp duration from the
// original source, now a documented, overridable constant (see
// internal/projectcfg for how a project manifest can override it).
const DefaultRampTimeMs uint32 = 1000

// FillCursor tracks an in-progress ramp evaluation so that filling N then M
// samples equals filling N+M samples in one call.
type FillCursor struct {
	Pos    uint32 // samples already produced
	TimeMs uint32 // r.TimeMs, fixed at cursor creation
}

// NewFillCursor starts a cursor at the beginning of r.
func NewFillCursor(r Ramp) *FillCursor {
	return &FillCursor{Pos: 0, TimeMs: r.TimeMs}
}

// Fill writes n samples of r into dst (len(dst) >= n), continuing from the
// cursor's current position, and optionally multiplying each value by a
// parallel multiplier buffer (used when RampStateRatio/RampGoalRatio are
// set and the parent's resolved value isn't known until render time).
func Fill(r Ramp, cur *FillCursor, dst []float32, n int, mul []float32) {
	for i := 0; i < n; i++ {
		pos := cur.Pos + uint32(i)
		v := sampleAt(r, pos)
		if mul != nil {
			v *= mul[i]
		}
		dst[i] = v
	}
	cur.Pos += uint32(n)
}

func sampleAt(r Ramp, pos uint32) float32 {
	if r.TimeMs == 0 || pos >= r.TimeMs {
		return r.Vt
	}
	x := float64(pos) / float64(r.TimeMs)
	switch r.Shape {
	case ShapeHold:
		return r.V0
	case ShapeLinear:
		return lerp(r.V0, r.Vt, x)
	case ShapeExp:
		return earExp(r.V0, r.Vt, x)
	case ShapeLog:
		return earLog(r.V0, r.Vt, x)
	default:
		return r.V0
	}
}

func lerp(v0, vt float32, x float64) float32 {
	return v0 + float32(x)*(vt-v0)
}

// earExp and earLog are deliberately NOT mathematical exp/log: they are
// polynomial curves symmetric around the diagonal x == y, tuned so the
// perceived loudness/pitch ramp feels even rather than front- or
// back-loaded. earLog(vt, v0, 1-x) == earExp(v0, vt, x) by construction,
// which is what the reversal property in the test suite checks.
func earExp(v0, vt float32, x float64) float32 {
	return lerp(v0, vt, x*x)
}

func earLog(v0, vt float32, x float64) float32 {
	inv := 1 - x
	shaped := 1 - inv*inv
	return lerp(v0, vt, shaped)
}

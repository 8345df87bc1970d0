package lang

// UseKind identifies the role of a modulator edge: carrier, compound
// amp-mod, amp-mod, ring-amp-mod, freq-mod, ring-freq-mod, phase-mod, or
// frequency-phase-mod.
type UseKind int

const (
	UseCarr UseKind = iota
	UseCAM
	UseAM
	UseRAM
	UseFM
	UseRFM
	UsePM
	UseFPM
)

func (k UseKind) String() string {
	switch k {
	case UseCarr:
		return "CARR"
	case UseCAM:
		return "cAM"
	case UseAM:
		return "AM"
	case UseRAM:
		return "rAM"
	case UseFM:
		return "FM"
	case UseRFM:
		return "rFM"
	case UsePM:
		return "PM"
	case UseFPM:
		return "fPM"
	default:
		return "?"
	}
}

// ObjectType names the operator's generator kind.
type ObjectType int

const (
	ObjWave ObjectType = iota
	ObjNoise
	ObjLine
)

// RampFlag bits for a Line/Ramp value.
type RampFlag uint8

const (
	RampState      RampFlag = 1 << iota // v0 is meaningful
	RampGoal                            // vt + shape are meaningful
	RampTime                            // time_ms was explicitly set
	RampStateRatio                      // v0 is a multiplier of a parent value
	RampGoalRatio                       // vt is a multiplier of a parent value
)

// Shape selects a ramp's interpolation curve. See ramp.go for Fill.
type Shape uint8

const (
	ShapeHold Shape = iota
	ShapeLinear
	ShapeExp // "ear-tuned" exponential, not mathematical exp
	ShapeLog // "ear-tuned" logarithmic, not mathematical log
)

// Ramp is the Line value-ramp model: a scalar moving from v0 toward vt over
// time_ms samples using Shape, optionally scaled relative to a parent.
type Ramp struct {
	V0      float32
	Vt      float32
	TimeMs  uint32
	Shape   Shape
	Flags   RampFlag
}

func (r Ramp) HasState() bool { return r.Flags&RampState != 0 }
func (r Ramp) HasGoal() bool  { return r.Flags&RampGoal != 0 }
func (r Ramp) HasTime() bool  { return r.Flags&RampTime != 0 }

// TimeFlag bits for a TimeSpec.
type TimeFlag uint8

const (
	TimeSet      TimeFlag = 1 << iota // explicit
	TimeLinked                        // "as long as the carrier"; inherits
	TimeImplicit                      // defaulted
)

type TimeSpec struct {
	Ms    uint32
	Flags TimeFlag
}

func (t TimeSpec) IsSet() bool    { return t.Flags&TimeSet != 0 }
func (t TimeSpec) IsLinked() bool { return t.Flags&TimeLinked != 0 }

// OpFlag bits for a ParseOperator.
type OpFlag uint32

const (
	OpNested OpFlag = 1 << iota
	OpHasComposite
	OpMultiple
	OpSilenceAdded
	OpLaterUsed
	OpAddCarrier
	OpPoppTime // cleared when a composite link inherits timing
)

// ModSublist is a modulator list of one UseKind attached to an operator
// at a particular event. Append means "concatenate onto the object's
// previous list of this kind"; otherwise the list replaces it.
type ModSublist struct {
	Kind    UseKind
	Ops     []*ParseOperator
	Append  bool
}

// ParseOperator is the central parse-graph entity: one operator node,
// reached either as the root of an event or as a member of a modulator
// sublist.
type ParseOperator struct {
	ObjID int // stable object id, assigned at first definition

	PrevRef *ParseOperator // earlier event's node for the same object
	Event   *ParseEvent    // containing event

	Type ObjectType
	// Selector holds the wave/noise/line-shape name id chosen for this
	// operator's generator, resolved against the runtime's NameTable.
	Selector   uint32
	SelectorOK bool

	Time       TimeSpec
	SilenceMs  uint32

	Freq, Freq2 Ramp
	Amp, Amp2   Ramp
	Pan         Ramp
	Phase       Ramp

	Flags OpFlag

	Mods []*ModSublist

	// Seed is set for stochastic generators (noise); left zero otherwise.
	Seed uint64

	// visited is lowering-scratch state for cycle detection (C8); it is
	// not meaningful outside a single lowering pass.
	visited bool

	Label string // the most recent "'name" binding on this object, if any

	// Line/Col is the 1-based source position where this node was first
	// defined, kept around so a later diagnostic (notably C8's cycle
	// detection) can point back at it as a Related location.
	Line, Col int
}

func (o *ParseOperator) HasFlag(f OpFlag) bool { return o.Flags&f != 0 }
func (o *ParseOperator) SetFlag(f OpFlag)       { o.Flags |= f }
func (o *ParseOperator) ClearFlag(f OpFlag)     { o.Flags &^= f }

// EventFlag bits for a ParseEvent.
type EventFlag uint32

const (
	EventVoiceSetDur EventFlag = 1 << iota
	EventAssignVoice
	EventAddWaitDuration
	EventVoiceLaterUsed
)

// DurationGroup is a range of top-level events whose unspecified operator
// times are jointly backfilled to the group's longest member.
type DurationGroup struct {
	FirstEvent *ParseEvent
	LastEvent  *ParseEvent
}

// ParseEvent is one scheduled point: a wait offset, a root object, the flat
// list of operators reached from that root, a composite-extension side
// chain, and the main-sequence link.
type ParseEvent struct {
	WaitMs       uint32
	RootObj      *ParseOperator
	ObjectList   []*ParseOperator
	CompositeHead *ParseEvent // sub-events chained via Next
	Next         *ParseEvent // composite chain link (not main sequence)
	NextInMain   *ParseEvent
	DurGroupRef  *DurationGroup
	Flags        EventFlag

	// VoiceID is assigned by lowering (C8); -1 until then.
	VoiceID int
}

func (e *ParseEvent) HasFlag(f EventFlag) bool { return e.Flags&f != 0 }
func (e *ParseEvent) SetFlag(f EventFlag)       { e.Flags |= f }

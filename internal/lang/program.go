package lang

// Program is the final, fully-resolved output the compiler hands to the
// runtime (C10). It owns no parse-graph references; everything needed to
// render is copied in by lowering (C8).
type Program struct {
	Name          string `json:"name"`
	Mode          string `json:"mode"`
	VoiceCount    int    `json:"voice_count"`
	OperatorCount int    `json:"operator_count"`
	OpNestDepth   int    `json:"op_nest_depth"`
	DurationMs    uint32 `json:"duration_ms"`
	Events        []ProgEvent `json:"events"`

	// AmpDivVoices tells the runtime whether it must divide each carrier's
	// amp by the active voice count itself. It is true only when the
	// script never supplied an "S a=" multiplier: when it did (scenario 5
	// of spec.md §8), the multiplier was already folded into every carrier
	// amp ramp at compile time by applyAmpMult, so the runtime must not also
	// divide.
	AmpDivVoices bool `json:"amp_div_voices"`
}

// ProgEvent mirrors the spec's Event: a wait offset, the voice it targets,
// optional freshly-built voice graph data, and the operator parameter
// updates carried by this event.
type ProgEvent struct {
	WaitMs    uint32    `json:"wait_ms"`
	VoiceID   int       `json:"voice_id"`
	VoiceData *VoData   `json:"voice_data,omitempty"`
	OpData    []OpData  `json:"op_data"`
}

// VoData carries a newly (re)built voice graph: the post-order operator
// reference list produced by the C8 depth-first traversal.
type VoData struct {
	OpList []OpRef `json:"op_list"`
}

// OpRef is one entry of a voice's op_list.
type OpRef struct {
	OpID      int     `json:"op_id"`
	UseKind   UseKind `json:"use_kind"`
	NestLevel int     `json:"nest_level"`
}

// ParamsMask bits record which fields of an OpData are actually set, so the
// runtime can distinguish "left at default" from "explicitly zero".
type ParamsMask uint32

const (
	ParamTime ParamsMask = 1 << iota
	ParamSilence
	ParamFreq
	ParamFreq2
	ParamAmp
	ParamAmp2
	ParamPan
	ParamPhase
	ParamWaveNoiseShape
	ParamSeed
	ParamCAMods
	ParamAMods
	ParamRAMods
	ParamFMods
	ParamRFMods
	ParamPMods
	ParamFPMods
)

// OpData is the per-operator parameter update attached to an event.
type OpData struct {
	OpID       int        `json:"op_id"`
	UseKind    UseKind    `json:"use_kind"`
	ObjectType ObjectType `json:"object_type"`
	ParamsMask ParamsMask `json:"params_mask"`
	TimeMs     uint32     `json:"time_ms"`
	SilenceMs  uint32     `json:"silence_ms"`
	Selector   uint32     `json:"selector"`
	Seed       uint64     `json:"seed"`
	Freq       Ramp       `json:"freq"`
	Freq2      Ramp       `json:"freq2"`
	Amp        Ramp       `json:"amp"`
	Amp2       Ramp       `json:"amp2"`
	Pan        Ramp       `json:"pan"`
	Phase      Ramp       `json:"phase"`

	CAMods []int `json:"ca_mods,omitempty"`
	AMods  []int `json:"a_mods,omitempty"`
	RAMods []int `json:"ra_mods,omitempty"`
	FMods  []int `json:"f_mods,omitempty"`
	RFMods []int `json:"rf_mods,omitempty"`
	PMods  []int `json:"p_mods,omitempty"`
	FPMods []int `json:"fp_mods,omitempty"`
}

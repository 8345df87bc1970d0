package lang

import "scorelang/internal/debug"

// PVOMaxID and POPMaxID are the hard ceilings on voice/operator counts
// (C8): both implementation-chosen but required to be at least 2^16 and
// 2^32 respectively. Exceeding either is a hard Overflow error.
const (
	PVOMaxID = 1 << 16
	POPMaxID = 1 << 32
)

type voiceSlot struct {
	id          int
	remainingMs int64
	laterUsed   bool
}

// Lower performs C8: allocates voice/operator ids, builds ProgramOpData per
// operator, resolves modulator ID-arrays, and (when an event's graph
// changed) constructs the voice's op_list by depth-first traversal with
// cycle detection. events must already be timed (C6) and flattened (C7).
func Lower(events []*ParseEvent, sink *Sink) *Program {
	prog := &Program{Mode: "score"}

	objOpID := make(map[int]int)
	nextOpID := 0

	// objMods tracks, per object id, the last-known ID array for each of
	// the seven typed modulator kinds, so an APPEND list can be
	// concatenated and a no-op replacement elided.
	objMods := make(map[int]*modState)

	// objPos records where each object id was first defined, so a later
	// diagnostic (cycle detection below) can report a Related location
	// instead of just the offending id.
	objPos := make(map[int]DiagnosticLocation)
	for _, ev := range events {
		for _, op := range ev.ObjectList {
			if _, ok := objPos[op.ObjID]; !ok && (op.Line > 0 || op.Col > 0) {
				objPos[op.ObjID] = DiagnosticLocation{File: sink.File, Line: op.Line, Column: op.Col, Message: "operator originally defined here"}
			}
		}
	}

	var voices []*voiceSlot
	voiceByID := make(map[int]*voiceSlot)
	nextVoiceID := 0

	// objVoice remembers which voice currently holds each labeled object, so
	// an explicit root_event back-link (a ":name" reference, flagged
	// EventAssignVoice at parse time) can reuse that voice directly instead
	// of going through allocVoice's elapsed-duration scan.
	objVoice := make(map[int]int)

	var totalWaitMs uint32
	var maxRemaining int64

	for _, ev := range events {
		totalWaitMs += ev.WaitMs
		for _, v := range voices {
			v.remainingMs -= int64(ev.WaitMs)
		}

		var voiceID int
		if ev.RootObj != nil && ev.HasFlag(EventAssignVoice) {
			if vid, ok := objVoice[ev.RootObj.ObjID]; ok {
				voiceID = vid
				sink.trace(debug.ComponentLower, 0, 0, map[string]interface{}{"voice_id": voiceID, "obj_id": ev.RootObj.ObjID}, "explicit root_event back-link reuses voice %d", voiceID)
			} else {
				voiceID, _ = allocVoice(&voices, voiceByID, &nextVoiceID, sink)
			}
		} else {
			voiceID, _ = allocVoice(&voices, voiceByID, &nextVoiceID, sink)
		}
		ev.VoiceID = voiceID
		if ev.RootObj != nil {
			objVoice[ev.RootObj.ObjID] = voiceID
		}

		progEv := ProgEvent{WaitMs: ev.WaitMs, VoiceID: voiceID}

		graphChanged := false
		var evMaxTime uint32

		for _, op := range ev.ObjectList {
			opID, isNew := allocOpID(objOpID, &nextOpID, op.ObjID)
			if nextOpID > POPMaxID {
				sink.Errorf(StageLowering, CategoryOverflow, 0, 0, "operator count exceeds maximum")
				return prog
			}
			if op.HasFlag(OpMultiple) {
				sink.Warnf(StageLowering, CategorySemanticReject, 0, 0, "ignoring MULTIPLE-flagged operator node (binding not supported)")
				continue
			}

			od := OpData{OpID: opID, ObjectType: op.Type, TimeMs: op.Time.Ms, SilenceMs: op.SilenceMs}
			if op.Time.Ms > evMaxTime {
				evMaxTime = op.Time.Ms
			}
			od.ParamsMask |= ParamTime
			if op.SilenceMs != 0 {
				od.ParamsMask |= ParamSilence
			}
			if op.Freq.HasState() || op.Freq.HasGoal() {
				od.Freq = op.Freq
				od.ParamsMask |= ParamFreq
			}
			if op.Freq2.HasState() || op.Freq2.HasGoal() {
				od.Freq2 = op.Freq2
				od.ParamsMask |= ParamFreq2
			}
			if op.Amp.HasState() || op.Amp.HasGoal() {
				od.Amp = op.Amp
				od.ParamsMask |= ParamAmp
			}
			if op.Amp2.HasState() || op.Amp2.HasGoal() {
				od.Amp2 = op.Amp2
				od.ParamsMask |= ParamAmp2
			}
			if op.Pan.HasState() || op.Pan.HasGoal() {
				od.Pan = op.Pan
				od.ParamsMask |= ParamPan
			}
			if op.Phase.HasState() || op.Phase.HasGoal() {
				od.Phase = op.Phase
				od.ParamsMask |= ParamPhase
			}
			if op.SelectorOK {
				od.Selector = op.Selector
				od.ParamsMask |= ParamWaveNoiseShape
			}

			st, ok := objMods[op.ObjID]
			if !ok {
				st = &modState{lists: make(map[UseKind][]int)}
				objMods[op.ObjID] = st
			}
			changed := false
			for _, sub := range op.Mods {
				ids := make([]int, 0, len(sub.Ops))
				for _, modOp := range sub.Ops {
					id, _ := allocOpID(objOpID, &nextOpID, modOp.ObjID)
					ids = append(ids, id)
				}
				prevList := st.lists[sub.Kind]
				var newList []int
				if sub.Append {
					newList = append(append([]int{}, prevList...), ids...)
				} else {
					newList = ids
				}
				if !intSliceEqual(prevList, newList) {
					st.lists[sub.Kind] = newList
					changed = true
					setModField(&od, sub.Kind, newList)
				}
			}
			if changed {
				od.ParamsMask |= modKindMasks(op.Mods)
				graphChanged = true
			}
			if isNew {
				graphChanged = true
			}

			progEv.OpData = append(progEv.OpData, od)
		}

		if slot, ok := voiceByID[voiceID]; ok {
			slot.remainingMs = int64(evMaxTime)
			// VOICE_LATER_USED (set on the defining event once a later
			// ":name" reference is parsed) protects the slot from
			// allocVoice's reuse scan until the event that actually
			// performs that reference (EventAssignVoice) consumes it.
			if ev.HasFlag(EventVoiceLaterUsed) {
				slot.laterUsed = true
			}
			if ev.HasFlag(EventAssignVoice) {
				slot.laterUsed = false
			}
		}

		sink.trace(debug.ComponentLower, 0, 0, map[string]interface{}{
			"voice_id":          voiceID,
			"explicit_duration": ev.HasFlag(EventVoiceSetDur),
		}, "lowered event onto voice %d (wait=%dms)", voiceID, ev.WaitMs)

		if graphChanged && ev.RootObj != nil {
			rootOpID, _ := allocOpID(objOpID, &nextOpID, ev.RootObj.ObjID)
			opList, nestDepth := buildVoiceGraph(rootOpID, objOpID, objMods, objPos, sink)
			progEv.VoiceData = &VoData{OpList: opList}
			if nestDepth > prog.OpNestDepth {
				prog.OpNestDepth = nestDepth
			}
			sink.trace(debug.ComponentLower, 0, 0, map[string]interface{}{
				"voice_id": voiceID,
				"op_count": len(opList),
				"nest":     nestDepth,
			}, "rebuilt voice %d graph with %d op(s)", voiceID, len(opList))
		}

		prog.Events = append(prog.Events, progEv)
	}

	for _, v := range voices {
		if v.remainingMs > maxRemaining {
			maxRemaining = v.remainingMs
		}
	}
	prog.VoiceCount = nextVoiceID
	prog.OperatorCount = nextOpID
	prog.DurationMs = totalWaitMs + uint32(maxRemaining)
	sink.trace(debug.ComponentLower, 0, 0, map[string]interface{}{
		"voice_count":    prog.VoiceCount,
		"operator_count": prog.OperatorCount,
		"duration_ms":    prog.DurationMs,
	}, "lowered to %d voice(s), %d operator(s), %dms", prog.VoiceCount, prog.OperatorCount, prog.DurationMs)
	return prog
}

func allocOpID(m map[int]int, next *int, objID int) (int, bool) {
	if id, ok := m[objID]; ok {
		return id, false
	}
	id := *next
	*next++
	m[objID] = id
	return id, true
}

// allocVoice scans existing slots for one whose duration has elapsed and
// isn't marked later-used, reusing it; otherwise it extends the vector.
func allocVoice(voices *[]*voiceSlot, voiceByID map[int]*voiceSlot, next *int, sink *Sink) (int, bool) {
	for _, v := range *voices {
		if v.remainingMs <= 0 && !v.laterUsed {
			sink.trace(debug.ComponentLower, 0, 0, map[string]interface{}{"voice_id": v.id}, "reused elapsed voice %d", v.id)
			return v.id, true
		}
	}
	if *next+1 > PVOMaxID {
		sink.Errorf(StageLowering, CategoryOverflow, 0, 0, "voice count exceeds maximum")
	}
	id := *next
	*next++
	slot := &voiceSlot{id: id}
	*voices = append(*voices, slot)
	voiceByID[id] = slot
	sink.trace(debug.ComponentLower, 0, 0, map[string]interface{}{"voice_id": id}, "allocated new voice %d", id)
	return id, false
}

func intSliceEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func setModField(od *OpData, kind UseKind, ids []int) {
	switch kind {
	case UseCAM:
		od.CAMods = ids
	case UseAM:
		od.AMods = ids
	case UseRAM:
		od.RAMods = ids
	case UseFM:
		od.FMods = ids
	case UseRFM:
		od.RFMods = ids
	case UsePM:
		od.PMods = ids
	case UseFPM:
		od.FPMods = ids
	}
}

func modKindMasks(mods []*ModSublist) ParamsMask {
	var mask ParamsMask
	for _, m := range mods {
		switch m.Kind {
		case UseCAM:
			mask |= ParamCAMods
		case UseAM:
			mask |= ParamAMods
		case UseRAM:
			mask |= ParamRAMods
		case UseFM:
			mask |= ParamFMods
		case UseRFM:
			mask |= ParamRFMods
		case UsePM:
			mask |= ParamPMods
		case UseFPM:
			mask |= ParamFPMods
		}
	}
	return mask
}

// buildVoiceGraph performs the C8 depth-first traversal over the seven
// typed modulator arrays, starting from the carrier and emitting each
// operator after its modulators (post-order), guarding against cycles
// with a per-operator visited set on the current path (keyed by program op id, since
// the traversal is per voice-rebuild and ids are stable for its duration).
func buildVoiceGraph(carrierOpID int, objOpID map[int]int, objMods map[int]*modState, objPos map[int]DiagnosticLocation, sink *Sink) ([]OpRef, int) {
	visited := make(map[int]bool)
	var out []OpRef
	maxDepth := 0

	var visit func(opID int, kind UseKind, level int)
	visit = func(opID int, kind UseKind, level int) {
		if visited[opID] {
			var related []DiagnosticLocation
			if loc, ok := objPos[objIDForOpID(objOpID, opID)]; ok {
				related = append(related, loc)
			}
			sink.WarnfRelated(StageLowering, CategorySemanticReject, 0, 0, related, "circular references unsupported; edge to operator %d skipped", opID)
			return
		}
		visited[opID] = true
		if level > maxDepth {
			maxDepth = level
		}
		objID := objIDForOpID(objOpID, opID)
		if st, ok := objMods[objID]; ok {
			for _, k := range []UseKind{UseCAM, UseAM, UseRAM, UseFM, UseRFM, UsePM, UseFPM} {
				for _, childID := range st.lists[k] {
					visit(childID, k, level+1)
				}
			}
		}
		out = append(out, OpRef{OpID: opID, UseKind: kind, NestLevel: level})
		visited[opID] = false
	}
	visit(carrierOpID, UseCarr, 0)
	return out, maxDepth
}

func objIDForOpID(objOpID map[int]int, opID int) int {
	for obj, id := range objOpID {
		if id == opID {
			return obj
		}
	}
	return -1
}

type modState struct {
	lists map[UseKind][]int
}

package lang

import "scorelang/internal/debug"

// RunTimingPass fills in defaults for operator time, ramp durations,
// duration-group alignment and composite-chain timing (C6). It mutates the
// parse graph in place and must run after parsing, before the event
// flattener (C7): the flattener needs every operator's Time.Ms resolved so
// it can decide splice order by elapsed time.
func RunTimingPass(events []*ParseEvent, sink *Sink) {
	RunTimingPassWithDefault(events, sink, DefaultRampTimeMs)
}

// RunTimingPassWithDefault is RunTimingPass with the operator-time/ramp
// default (spec §9a's FIXME-marked constant) overridable per-compile, so a
// project manifest (internal/projectcfg) can change it without a global.
func RunTimingPassWithDefault(events []*ParseEvent, sink *Sink, defaultMs uint32) {
	sink.trace(debug.ComponentTiming, 0, 0, map[string]interface{}{
		"event_count": len(events),
		"default_ms":  defaultMs,
	}, "timing pass over %d event(s), default=%dms", len(events), defaultMs)
	for _, ev := range events {
		timeEvent(ev, sink, defaultMs)
	}
	for _, ev := range events {
		if ev.DurGroupRef != nil && ev.DurGroupRef.LastEvent == ev {
			closeDurationGroup(ev.DurGroupRef, sink)
		}
	}
}

func timeEvent(ev *ParseEvent, sink *Sink, defaultMs uint32) {
	for _, op := range ev.ObjectList {
		timeOperator(op, ev, sink, defaultMs)
	}
	timeComposites(ev, sink, defaultMs)
}

func timeOperator(op *ParseOperator, ev *ParseEvent, sink *Sink, defaultMs uint32) {
	if op.HasFlag(OpNested) && !op.Time.IsSet() {
		if op.HasFlag(OpHasComposite) {
			op.Time.Ms = defaultMs * 4
			op.Time.Flags |= TimeImplicit
		} else {
			op.Time.Flags |= TimeLinked
		}
	}
	if op.Time.Ms == 0 && !op.Time.IsSet() && !op.Time.IsLinked() {
		op.Time.Ms = defaultMs
		op.Time.Flags |= TimeImplicit
	}

	if !op.Time.IsLinked() {
		defaultRampTime(&op.Freq, op.Time.Ms)
		defaultRampTime(&op.Freq2, op.Time.Ms)
		defaultRampTime(&op.Amp, op.Time.Ms)
		defaultRampTime(&op.Amp2, op.Time.Ms)

		if !op.HasFlag(OpSilenceAdded) {
			op.Time.Ms += op.SilenceMs
			op.SetFlag(OpSilenceAdded)
		}
	}

	if op == ev.RootObj && ev.HasFlag(EventAddWaitDuration) {
		if ev.NextInMain != nil {
			ev.NextInMain.WaitMs += op.Time.Ms
		}
		ev.Flags &^= EventAddWaitDuration
	}

	sink.trace(debug.ComponentTiming, 0, 0, map[string]interface{}{
		"obj_id":     op.ObjID,
		"time_ms":    op.Time.Ms,
		"silence_ms": op.SilenceMs,
	}, "resolved operator id=%d time=%dms", op.ObjID, op.Time.Ms)
}

func defaultRampTime(r *Ramp, opTimeMs uint32) {
	if r.HasGoal() && !r.HasTime() {
		r.TimeMs = opTimeMs
		r.Flags |= RampTime
	}
}

// timeComposites walks an event's composite chain, accumulating wait_ms on
// the composite side and filling each link's time from the previous
// link's (time - silence), per 4.6 step 2.
func timeComposites(ev *ParseEvent, sink *Sink, defaultMs uint32) {
	if ev.CompositeHead == nil {
		return
	}
	prevOp := ev.RootObj
	linked := prevOp.Time.IsLinked()
	for link := ev.CompositeHead; link != nil; link = link.Next {
		link.WaitMs += prevOp.Time.Ms
		op := link.RootObj
		if !op.Time.IsSet() {
			if op.HasFlag(OpNested) && link.Next == nil {
				op.Time.Flags |= TimeLinked
			} else {
				base := prevOp.Time.Ms
				if prevOp.Time.Ms >= prevOp.SilenceMs {
					base = prevOp.Time.Ms - prevOp.SilenceMs
				}
				op.Time.Ms = base
			}
		}
		op.ClearFlag(OpPoppTime)
		timeOperator(op, link, sink, defaultMs)
		prevOp = op
		linked = linked || op.Time.IsLinked()
	}
	_ = linked
}

// closeDurationGroup backfills every unset-time operator in the group's
// event range to the longest time among the group's unlinked, unset-time
// operators (plus the cumulative wait remaining to the group's end), then
// bumps the post-group event's wait. Operators with an explicit time are
// neither counted in that maximum nor changed.
func closeDurationGroup(g *DurationGroup, sink *Sink) {
	if g.FirstEvent == nil {
		return
	}

	var maxTime uint32
	type memberTime struct {
		ev       *ParseEvent
		waitFromHere uint32
	}
	var members []memberTime
	var cumulative uint32
	for ev := g.FirstEvent; ; ev = ev.NextInMain {
		members = append(members, memberTime{ev: ev, waitFromHere: cumulative})
		for _, op := range ev.ObjectList {
			if op.Time.IsLinked() || op.Time.IsSet() {
				continue
			}
			if op.Time.Ms > maxTime {
				maxTime = op.Time.Ms
			}
		}
		if ev == g.LastEvent {
			break
		}
		cumulative += ev.NextInMain.WaitMs
	}

	for _, m := range members {
		remaining := cumulative - m.waitFromHere
		for _, op := range m.ev.ObjectList {
			if op.Time.IsSet() {
				continue
			}
			op.Time.Ms = maxTime + remaining
		}
	}

	if g.LastEvent.NextInMain != nil {
		g.LastEvent.NextInMain.WaitMs += maxTime
	}
}

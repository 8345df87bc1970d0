package lang

import "scorelang/internal/debug"

// FlattenEvents merges each event's composite chain into the main
// next_in_main sequence, preserving relative wait-times (C7). It must run
// after RunTimingPass, since splice order depends on resolved Time.Ms. sink
// may be nil (tests that don't care about tracing pass nil).
func FlattenEvents(events []*ParseEvent, sink *Sink) []*ParseEvent {
	for _, ev := range events {
		flattenOne(ev, sink)
	}
	// Rebuild the flat slice by walking NextInMain from the first event,
	// since splicing may have inserted events ahead of their original
	// slice position.
	if len(events) == 0 {
		return events
	}
	var out []*ParseEvent
	for ev := events[0]; ev != nil; ev = ev.NextInMain {
		out = append(out, ev)
	}
	if sink != nil {
		sink.trace(debug.ComponentFlatten, 0, 0, map[string]interface{}{
			"event_count": len(out),
		}, "flattened to %d event(s) in play order", len(out))
	}
	return out
}

func flattenOne(ev *ParseEvent, sink *Sink) {
	if ev.CompositeHead == nil {
		return
	}
	composite := ev.CompositeHead
	ev.CompositeHead = nil

	se := ev.NextInMain
	var mainWaitAccum uint32
	var addedWaitAccum uint32

	prev := ev
	for composite != nil {
		due := addedWaitAccum + composite.WaitMs
		if se == nil || due <= mainWaitAccum+se.WaitMs {
			// Splice composite before se (or at the tail if se is nil).
			next := composite.Next
			composite.Next = nil
			composite.WaitMs = due - mainWaitAccum
			prev.NextInMain = composite
			composite.NextInMain = se
			if se != nil {
				se.WaitMs = (mainWaitAccum + se.WaitMs) - due
			}
			if sink != nil {
				sink.trace(debug.ComponentFlatten, 0, 0, map[string]interface{}{
					"root_obj_id": ev.RootObj.ObjID,
					"spliced_at":  due,
				}, "spliced composite link into main sequence at wait=%dms", due)
			}
			mainWaitAccum = due
			addedWaitAccum = due
			prev = composite
			composite = next
		} else {
			mainWaitAccum += se.WaitMs
			prev = se
			se = se.NextInMain
		}
	}
}

package lang

import "testing"

func parseTimeFlatten(t *testing.T, src string) []*ParseEvent {
	t.Helper()
	events := parseAndTime(t, src)
	return FlattenEvents(events, nil)
}

func TestFlattenSplicesCompositeBeforeLaterMainEvent(t *testing.T) {
	events := parseTimeFlatten(t, "W f440 t1 ; t0.01\n\\1.5\nW f220 a1")
	if len(events) != 3 {
		t.Fatalf("want 3 events after flattening (root, composite, second main), got %d", len(events))
	}
	if events[1].WaitMs != 1000 {
		t.Fatalf("want composite spliced at wait=1000ms, got %d", events[1].WaitMs)
	}
	if events[2].WaitMs != 500 {
		t.Fatalf("want remaining wait to second main event 500ms, got %d", events[2].WaitMs)
	}
}

func TestFlattenNoCompositeLeavesEventsUnchanged(t *testing.T) {
	events := parseTimeFlatten(t, "W f440 a1\nW f220 a1")
	if len(events) != 2 {
		t.Fatalf("want 2 events, got %d", len(events))
	}
	if events[0].CompositeHead != nil || events[1].CompositeHead != nil {
		t.Fatalf("expected no composite chains to flatten")
	}
}

func TestFlattenCompositeAfterMainEventWait(t *testing.T) {
	// Composite's accumulated wait exceeds the following main event's wait,
	// so it splices after that event instead of before it.
	events := parseTimeFlatten(t, "W f440 t2 ; t0.01\n\\0.5\nW f220 a1")
	if len(events) != 3 {
		t.Fatalf("want 3 events, got %d", len(events))
	}
	if events[1].WaitMs != 500 {
		t.Fatalf("want second main event spliced first at wait=500ms, got %d", events[1].WaitMs)
	}
	if events[2].WaitMs != 1500 {
		t.Fatalf("want composite spliced after at wait=1500ms (2000ms after the root), got %d", events[2].WaitMs)
	}
}

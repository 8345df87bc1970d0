package lang

import (
	"testing"

	"scorelang/internal/iobuf"
	"scorelang/internal/symtab"
)

func parseAndTime(t *testing.T, src string) []*ParseEvent {
	t.Helper()
	sink := NewSink("test", false)
	syms := symtab.New()
	s := NewScanner(iobuf.NewFromString(src), syms, sink)
	p := NewParser(s, syms, sink, DefaultNamedConst, DefaultMathFunc)
	events := p.ParseScript()
	if sink.HasErrors() {
		for _, d := range sink.Diags {
			t.Logf("diag: %s", d.Error())
		}
		t.Fatalf("parse of %q produced errors", src)
	}
	RunTimingPass(events, sink)
	return events
}

func TestTimingDefaultsUnsetOperatorTime(t *testing.T) {
	events := parseAndTime(t, "W f440 a1")
	if events[0].RootObj.Time.Ms != DefaultRampTimeMs {
		t.Fatalf("want default time %dms, got %d", DefaultRampTimeMs, events[0].RootObj.Time.Ms)
	}
}

func TestTimingExplicitTimeWins(t *testing.T) {
	events := parseAndTime(t, "W f440 t2")
	if events[0].RootObj.Time.Ms != 2000 {
		t.Fatalf("want explicit 2000ms, got %d", events[0].RootObj.Time.Ms)
	}
}

func TestTimingAddsSilenceOnce(t *testing.T) {
	events := parseAndTime(t, "W f440 t1 s0.25")
	op := events[0].RootObj
	if op.Time.Ms != 1250 {
		t.Fatalf("want time+silence=1250ms, got %d", op.Time.Ms)
	}
	if !op.HasFlag(OpSilenceAdded) {
		t.Fatalf("expected OpSilenceAdded to be set after timing pass")
	}
}

func TestTimingCompositeAccumulatesWait(t *testing.T) {
	events := parseAndTime(t, "W f440 t1 ; t0.5 ; t0.25")
	root := events[0]
	link := root.CompositeHead
	if link == nil {
		t.Fatalf("expected a composite chain")
	}
	if link.WaitMs != 1000 {
		t.Fatalf("want first composite wait 1000ms, got %d", link.WaitMs)
	}
	if link.Next == nil {
		t.Fatalf("expected a second composite link")
	}
	if link.Next.WaitMs != 500 {
		t.Fatalf("want second composite wait 500ms, got %d", link.Next.WaitMs)
	}
}

func TestTimingDurationGroupKeepsExplicitTimes(t *testing.T) {
	events := parseAndTime(t, "< W t0.1 W t0.5 >")
	if len(events) != 2 {
		t.Fatalf("want 2 events in group, got %d", len(events))
	}
	// Both operators set an explicit time, so neither is eligible for
	// backfill; the group's longest member stays as parsed.
	if events[0].RootObj.Time.Ms != 100 {
		t.Fatalf("want first op time 100ms (explicit, not backfilled), got %d", events[0].RootObj.Time.Ms)
	}
	if events[1].RootObj.Time.Ms != 500 {
		t.Fatalf("want second op time 500ms, got %d", events[1].RootObj.Time.Ms)
	}
}

func TestTimingDurationGroupBackfillsUnsetMember(t *testing.T) {
	events := parseAndTime(t, "< W a1 W t0.5 >")
	if events[0].RootObj.Time.Ms != 1000 {
		t.Fatalf("want unset-time op backfilled to group max 1000ms, got %d", events[0].RootObj.Time.Ms)
	}
}

package lang

import "testing"

func TestLowerAllocatesStableOperatorIDs(t *testing.T) {
	prog := mustCompile(t, "'c W f440 t1\n:c a0.8 t1")
	if prog.OperatorCount != 1 {
		t.Fatalf("want 1 distinct operator across label reuse, got %d", prog.OperatorCount)
	}
}

func TestLowerVoiceReuseAfterElapsedDuration(t *testing.T) {
	// Second top-level event starts well after the first voice's duration
	// has elapsed, so it should reuse voice 0 rather than allocate a new one.
	prog := mustCompile(t, "W f440 t0.1\n\\1\nW f220 a1")
	if prog.VoiceCount != 1 {
		t.Fatalf("want voice reuse (1 voice total), got %d", prog.VoiceCount)
	}
}

func TestLowerVoiceNoReuseWhileOverlapping(t *testing.T) {
	// Second event starts immediately, well before the first voice's 1s
	// duration elapses, so a second voice must be allocated.
	prog := mustCompile(t, "W f440 t1\nW f220 a1")
	if prog.VoiceCount != 2 {
		t.Fatalf("want 2 distinct voices while overlapping, got %d", prog.VoiceCount)
	}
}

func TestBuildVoiceGraphTraversesCarrierAndModulator(t *testing.T) {
	objOpID := map[int]int{10: 0, 11: 1}
	objMods := map[int]*modState{
		10: {lists: map[UseKind][]int{UseAM: {1}}},
	}
	sink := NewSink("test", false)
	opList, depth := buildVoiceGraph(0, objOpID, objMods, nil, sink)
	if len(opList) != 2 {
		t.Fatalf("want carrier + 1 modulator, got %d entries", len(opList))
	}
	if opList[0].UseKind != UseAM || opList[0].NestLevel != 1 {
		t.Fatalf("want AM modulator first (post-order) at level 1, got %+v", opList[0])
	}
	if opList[1].UseKind != UseCarr || opList[1].NestLevel != 0 {
		t.Fatalf("want carrier last at level 0, got %+v", opList[1])
	}
	if depth != 1 {
		t.Fatalf("want max nest depth 1, got %d", depth)
	}
	if len(sink.Diags) != 0 {
		t.Fatalf("expected no diagnostics for an acyclic graph, got %v", sink.Diags)
	}
}

func TestBuildVoiceGraphKeepsMultipleEdgesIntoSameOperator(t *testing.T) {
	// Two distinct modulator kinds both targeting operator 2: both edges
	// should still appear, since they're not a cycle back to an ancestor.
	objOpID := map[int]int{10: 0, 11: 1, 12: 2}
	objMods := map[int]*modState{
		10: {lists: map[UseKind][]int{UseAM: {2}, UseFM: {2}}},
	}
	sink := NewSink("test", false)
	opList, _ := buildVoiceGraph(0, objOpID, objMods, nil, sink)
	if len(opList) != 3 {
		t.Fatalf("want carrier + 2 modulators, got %d entries: %+v", len(opList), opList)
	}
}

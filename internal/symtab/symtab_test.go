package symtab

import "testing"

func TestInternStableIdentity(t *testing.T) {
	tab := New()
	a := tab.Intern("carrier")
	b := tab.Intern("carrier")
	if &a == &b {
		t.Fatalf("comparing address of local copies, not useful")
	}
	if a != b {
		t.Fatalf("interned strings should be equal")
	}
}

func TestLookupVariableLazyCreate(t *testing.T) {
	tab := New()
	item, found := tab.Lookup("x", TypeVariable)
	if found {
		t.Fatalf("expected no pre-existing variable item")
	}
	if item == nil || item.Type != TypeVariable {
		t.Fatalf("expected lazily-created variable item, got %+v", item)
	}
	item2, found2 := tab.Lookup("x", TypeVariable)
	if !found2 {
		t.Fatalf("second lookup should find the lazily-created item")
	}
	if item2 != item {
		t.Fatalf("expected same item pointer on repeated lookup")
	}
}

func TestLookupNonVariableMissing(t *testing.T) {
	tab := New()
	item, found := tab.Lookup("sine", TypeWave)
	if found || item != nil {
		t.Fatalf("expected no item for unregistered wave name, got %+v found=%v", item, found)
	}
}

func TestInsertAndLookupByType(t *testing.T) {
	tab := New()
	tab.Insert("sine", TypeWave, Payload{NameID: 3})
	item, found := tab.Lookup("sine", TypeWave)
	if !found {
		t.Fatalf("expected to find inserted wave item")
	}
	if item.Payload.NameID != 3 {
		t.Fatalf("got NameID %d, want 3", item.Payload.NameID)
	}
	// Same key, different type: independent slot.
	_, found = tab.Lookup("sine", TypeNoise)
	if found {
		t.Fatalf("expected no noise item for key only registered as wave")
	}
}

func TestInsertUpsertReplacesSameType(t *testing.T) {
	tab := New()
	tab.Insert("pi", TypeMathFunc, Payload{Number: 3.14})
	tab.Insert("pi", TypeMathFunc, Payload{Number: 3.14159})
	item, found := tab.Lookup("pi", TypeMathFunc)
	if !found {
		t.Fatalf("expected item present")
	}
	if item.Payload.Number != 3.14159 {
		t.Fatalf("expected upsert to replace value, got %v", item.Payload.Number)
	}
}

func TestBulkInsert(t *testing.T) {
	tab := New()
	tab.BulkInsert([]BulkEntry{
		{Name: "sine", Type: TypeWave, ID: 0},
		{Name: "saw", Type: TypeWave, ID: 1},
		{Name: "white", Type: TypeNoise, ID: 0},
	})
	item, found := tab.Lookup("saw", TypeWave)
	if !found || item.Payload.NameID != 1 {
		t.Fatalf("expected saw/wave id 1, got %+v found=%v", item, found)
	}
	_, found = tab.Lookup("saw", TypeNoise)
	if found {
		t.Fatalf("saw should not be registered as noise")
	}
}

func TestMultipleTypesPerKeyCoexist(t *testing.T) {
	tab := New()
	tab.Insert("w", TypeWave, Payload{NameID: 5})
	tab.Lookup("w", TypeVariable) // lazily creates a variable item too
	waveItem, _ := tab.Lookup("w", TypeWave)
	varItem, _ := tab.Lookup("w", TypeVariable)
	if waveItem == varItem {
		t.Fatalf("expected distinct items per type tag for the same key")
	}
}

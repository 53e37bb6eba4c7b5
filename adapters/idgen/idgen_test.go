package idgen_test

import (
	"testing"

	"github.com/agencyos/growthmeter/adapters/idgen"
)

func TestUUID_GeneratesUniqueIDs(t *testing.T) {
	gen := idgen.UUID{}

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := gen.New()
		if len(id) != 36 {
			t.Fatalf("len(id) = %d, want 36", len(id))
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestSequential_CountsFromOne(t *testing.T) {
	gen := idgen.NewSequential("evt_")

	if got := gen.New(); got != "evt_1" {
		t.Errorf("first id = %q, want evt_1", got)
	}
	if got := gen.New(); got != "evt_2" {
		t.Errorf("second id = %q, want evt_2", got)
	}

	gen.Reset()
	if got := gen.New(); got != "evt_1" {
		t.Errorf("id after Reset = %q, want evt_1", got)
	}
}

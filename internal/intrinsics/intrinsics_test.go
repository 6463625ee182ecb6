package intrinsics

import (
	"testing"

	"github.com/wuu-lang/wuu/internal/types"
)

func argsStr(values ...string) []types.Value {
	out := make([]types.Value, len(values))
	for i, v := range values {
		out[i] = types.StringValue(v)
	}
	return out
}

func TestInventoryMatchesNames(t *testing.T) {
	entries, err := LoadInventory()
	if err != nil {
		t.Fatalf("LoadInventory: %v", err)
	}
	if len(entries) != len(Names) {
		t.Fatalf("inventory has %d entries, Names has %d", len(entries), len(Names))
	}
	for i, entry := range entries {
		if entry.Name != Names[i] {
			t.Errorf("inventory[%d] = %q, want %q", i, entry.Name, Names[i])
		}
		if _, ok := Table[entry.Name]; !ok {
			t.Errorf("inventory lists %q but Table has no implementation", entry.Name)
		}
		if _, ok := Signatures()[entry.Name]; !ok {
			t.Errorf("inventory lists %q but Signatures has no entry", entry.Name)
		}
	}
}

func TestNamesMatchTableAndSignatures(t *testing.T) {
	sigs := Signatures()
	if len(sigs) != len(Names) {
		t.Fatalf("Signatures has %d entries, Names has %d", len(sigs), len(Names))
	}
	if len(Table) != len(Names) {
		t.Fatalf("Table has %d entries, Names has %d", len(Table), len(Names))
	}
	for _, name := range Names {
		if _, ok := sigs[name]; !ok {
			t.Errorf("Signatures missing %q", name)
		}
		if _, ok := Table[name]; !ok {
			t.Errorf("Table missing %q", name)
		}
	}
}

func TestStrEq(t *testing.T) {
	v, err := Call("__str_eq", argsStr("hi", "hi"))
	if err != nil {
		t.Fatal(err)
	}
	if b, _ := v.Bool(); !b {
		t.Fatal("expected true")
	}
}

func TestStrHeadTailConcat(t *testing.T) {
	v, err := Call("__str_concat", argsStr("hi", "!"))
	if err != nil {
		t.Fatal(err)
	}
	s, _ := v.StringOrEmpty()
	if s != "hi!" {
		t.Fatalf("got %q", s)
	}

	tail, err := Call("__str_tail", argsStr(s))
	if err != nil {
		t.Fatal(err)
	}
	ts, _ := tail.StringOrEmpty()
	if ts != "i!" {
		t.Fatalf("got %q", ts)
	}
}

func TestStrHeadEmptyErrors(t *testing.T) {
	_, err := Call("__str_head", argsStr(""))
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestUnknownBuiltin(t *testing.T) {
	_, err := Call("__nope", nil)
	if err == nil {
		t.Fatal("expected an error")
	}
}

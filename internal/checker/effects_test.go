package checker

import (
	"strings"
	"testing"
)

func TestCheckEffectsAllowsDirectCapabilityCall(t *testing.T) {
	// Direct qualified calls (len(Callee) > 1) are capability calls and are
	// not subject to effect-subset checking themselves, matching the
	// original implementation: only propagation through a named user
	// function is checked.
	module := mustParse(t, `
workflow run() {
    step "fetch" {
        Net.Http.get();
    }
}
`)
	if err := CheckEffects(module); err != nil {
		t.Fatalf("CheckEffects: %v", err)
	}
}

func TestCheckEffectsRejectsUndeclaredTransitiveCall(t *testing.T) {
	module := mustParse(t, `
fn needsNet() effects { Net.Http } {
    return;
}
fn caller() {
    needsNet();
    return;
}
`)
	err := CheckEffects(module)
	if err == nil {
		t.Fatal("expected an effect error")
	}
	if !strings.Contains(err.Error(), "requiring { Net.Http }") {
		t.Fatalf("error = %v", err)
	}
}

func TestCheckEffectsAcceptsDeclaredTransitiveCall(t *testing.T) {
	module := mustParse(t, `
fn needsNet() effects { Net.Http } {
    return;
}
fn caller() effects { Net.Http } {
    needsNet();
    return;
}
`)
	if err := CheckEffects(module); err != nil {
		t.Fatalf("CheckEffects: %v", err)
	}
}

func TestSubsumesIsSubsetCheck(t *testing.T) {
	a := EffectSet{"Net.Http": struct{}{}}
	b := EffectSet{"Net.Http": struct{}{}, "Fs.Read": struct{}{}}
	if !Subsumes(a, b) {
		t.Fatal("a should be subsumed by the larger set b")
	}
	if Subsumes(b, a) {
		t.Fatal("b should not be subsumed by the smaller set a")
	}
}

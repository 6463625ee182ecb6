package evidence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wuu-lang/wuu/internal/types"
)

const doc = "example: identity\n" +
	"```wuu\n" +
	"fn main() -> String {\n" +
	"    return \"hi\";\n" +
	"}\n" +
	"```\n" +
	"expect: \"hi\"\n" +
	"\n" +
	"property: same_arg\n" +
	"```wuu\n" +
	"fn main(x: Bool) -> Bool {\n" +
	"    return x;\n" +
	"}\n" +
	"```\n" +
	"case: [true] => true\n" +
	"case: [false] => false\n" +
	"\n" +
	"bench: tight_loop\n" +
	"```wuu\n" +
	"fn main() -> Unit {\n" +
	"    return;\n" +
	"}\n" +
	"```\n" +
	"iterations: 3\n" +
	"max_ms: 1000\n"

func writeDoc(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fixture.md")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestCollectParsesAllBlockKinds(t *testing.T) {
	dir := writeDoc(t)
	col, err := Collect(dir)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(col.Examples) != 1 || col.Examples[0].Name != "identity" {
		t.Fatalf("examples = %+v", col.Examples)
	}
	if len(col.Properties) != 1 || len(col.Properties[0].Cases) != 2 {
		t.Fatalf("properties = %+v", col.Properties)
	}
	if len(col.Benches) != 1 || col.Benches[0].Iterations != 3 || col.Benches[0].MaxMs != 1000 {
		t.Fatalf("benches = %+v", col.Benches)
	}
}

func TestRunExamplesPasses(t *testing.T) {
	col, err := Collect(writeDoc(t))
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if err := RunExamples(col); err != nil {
		t.Fatalf("RunExamples: %v", err)
	}
}

func TestRunExamplesDetectsMismatch(t *testing.T) {
	col := &Collection{Examples: []Example{{
		Name:   "bad",
		Source: "fn main() -> String {\n    return \"hi\";\n}\n",
		Expect: types.StringValue("nope"),
	}}}
	if err := RunExamples(col); err == nil {
		t.Fatal("expected a mismatch error")
	}
}

func TestRunPropertiesPasses(t *testing.T) {
	col, err := Collect(writeDoc(t))
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if err := RunProperties(col); err != nil {
		t.Fatalf("RunProperties: %v", err)
	}
}

func TestRunBenchesRecordsTiming(t *testing.T) {
	col, err := Collect(writeDoc(t))
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	results, berr := RunBenches(col, func(run func() *Error) (uint64, *Error) {
		if err := run(); err != nil {
			return 0, err
		}
		return 5, nil
	})
	if berr != nil {
		t.Fatalf("RunBenches: %v", berr)
	}
	if len(results) != 1 || results[0].ElapsedMs != 5 {
		t.Fatalf("results = %+v", results)
	}
}

// TestCheckedInEvidenceDocs exercises internal/evidence against the
// checked-in fixtures under testdata/evidence, the way
// original_source/tests/evidence_tests.rs points collect_evidence at a
// real docs directory rather than only an inline string.
func TestCheckedInEvidenceDocs(t *testing.T) {
	col, err := Collect("../../testdata/evidence")
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(col.Examples) == 0 {
		t.Fatal("expected at least 1 example block")
	}
	if len(col.Properties) == 0 {
		t.Fatal("expected at least 1 property block")
	}
	if len(col.Benches) == 0 {
		t.Fatal("expected at least 1 bench block")
	}

	if err := RunExamples(col); err != nil {
		t.Fatalf("RunExamples: %v", err)
	}
	if err := RunProperties(col); err != nil {
		t.Fatalf("RunProperties: %v", err)
	}
	if _, err := RunBenches(col, func(run func() *Error) (uint64, *Error) {
		if err := run(); err != nil {
			return 0, err
		}
		return 1, nil
	}); err != nil {
		t.Fatalf("RunBenches: %v", err)
	}
}

func TestReportJSON(t *testing.T) {
	r := NewReport()
	r.AddExample("identity", true, "")
	r.AddProperty("same_arg", false, "mismatch")
	r.AddBench(BenchResult{Name: "tight_loop", Iterations: 3, ElapsedMs: 5, MaxMs: 1000}, true, "")

	if !r.Passed("examples") {
		t.Fatal("expected examples section to pass")
	}
	if r.Passed("properties") {
		t.Fatal("expected properties section to fail")
	}
}

package evidence

import (
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Report is a JSON summary of one evidence run, built incrementally
// with sjson.Set and read back with gjson (see Passed).
type Report struct {
	json string
}

// NewReport starts an empty report document.
func NewReport() *Report { return &Report{json: "{}"} }

// AddExample records one example's pass/fail outcome.
func (r *Report) AddExample(name string, ok bool, message string) {
	r.set("examples", name, ok, message)
}

// AddProperty records one property's pass/fail outcome.
func (r *Report) AddProperty(name string, ok bool, message string) {
	r.set("properties", name, ok, message)
}

// AddBench records one bench's timing result.
func (r *Report) AddBench(result BenchResult, ok bool, message string) {
	path := "benches." + gjsonEscape(result.Name)
	r.json, _ = sjson.Set(r.json, path+".ok", ok)
	r.json, _ = sjson.Set(r.json, path+".iterations", result.Iterations)
	r.json, _ = sjson.Set(r.json, path+".elapsed_ms", result.ElapsedMs)
	r.json, _ = sjson.Set(r.json, path+".max_ms", result.MaxMs)
	if message != "" {
		r.json, _ = sjson.Set(r.json, path+".message", message)
	}
}

func (r *Report) set(section, name string, ok bool, message string) {
	path := section + "." + gjsonEscape(name)
	r.json, _ = sjson.Set(r.json, path+".ok", ok)
	if message != "" {
		r.json, _ = sjson.Set(r.json, path+".message", message)
	}
}

// JSON returns the accumulated report document.
func (r *Report) JSON() string { return r.json }

// Passed reports whether every recorded entry in section succeeded.
func (r *Report) Passed(section string) bool {
	result := gjson.Get(r.json, section)
	passed := true
	result.ForEach(func(_, value gjson.Result) bool {
		if !value.Get("ok").Bool() {
			passed = false
			return false
		}
		return true
	})
	return passed
}

// gjsonEscape escapes path metacharacters (`.`, `*` and `?`) sjson/gjson use
// for path traversal, so names containing them address one JSON key.
func gjsonEscape(name string) string {
	out := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		switch name[i] {
		case '.', '*', '?':
			out = append(out, '\\')
		}
		out = append(out, name[i])
	}
	return string(out)
}

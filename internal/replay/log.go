// Package replay implements C10: the CBOR effect log codec and the
// workflow replay engine that checks a log against a workflow's
// declared step/effect-call shape.
package replay

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/fxamacker/cbor/v2"
)

// Outcome is the terminal status of a step or workflow run.
type Outcome int

const (
	OutcomeOk Outcome = iota
	OutcomeErr
)

func outcomeToInt(o Outcome) int64 {
	if o == OutcomeErr {
		return 1
	}
	return 0
}

func outcomeFromInt(v int64) (Outcome, bool) {
	switch v {
	case 0:
		return OutcomeOk, true
	case 1:
		return OutcomeErr, true
	default:
		return 0, false
	}
}

// Kind tags which variant a decoded Record holds.
type Kind int

const (
	KindWorkflowStart Kind = iota
	KindStepStart
	KindEffectCall
	KindEffectResult
	KindStepEnd
	KindWorkflowEnd
)

// Record is one effect-log entry. Only the fields relevant to Kind are
// populated, mirroring the tagged-union shape of the CBOR records.
type Record struct {
	Kind Kind

	WorkflowName string
	Args         []byte
	RunID        string

	StepID uint64
	Attempt uint32

	CallID     uint64
	Capability string
	Op         string
	Input      []byte

	Outcome Outcome
	Output  []byte

	StepName string
}

// EncodeRecord renders one record as a CBOR map keyed by small integers
// (field 0 is always the kind tag), matching the wire format consumed
// by the original workflow runtime.
func EncodeRecord(r Record) ([]byte, error) {
	var m map[int]any
	switch r.Kind {
	case KindWorkflowStart:
		m = map[int]any{0: int64(0), 1: r.WorkflowName, 2: r.Args, 3: r.RunID}
	case KindStepStart:
		m = map[int]any{0: int64(1), 1: r.StepID, 2: r.StepName, 3: r.Attempt}
	case KindEffectCall:
		m = map[int]any{0: int64(2), 1: r.CallID, 2: r.Capability, 3: r.Op, 4: r.Input}
	case KindEffectResult:
		m = map[int]any{0: int64(3), 1: r.CallID, 2: outcomeToInt(r.Outcome), 3: r.Output}
	case KindStepEnd:
		m = map[int]any{0: int64(4), 1: r.StepID, 2: outcomeToInt(r.Outcome)}
	case KindWorkflowEnd:
		m = map[int]any{0: int64(5), 1: outcomeToInt(r.Outcome)}
	default:
		return nil, fmt.Errorf("encode error: unknown record kind %d", r.Kind)
	}
	return cbor.Marshal(m)
}

// DecodeRecord parses a single CBOR-encoded record.
func DecodeRecord(data []byte) (Record, error) {
	var m map[int]cbor.RawMessage
	if err := cbor.Unmarshal(data, &m); err != nil {
		return Record{}, fmt.Errorf("decode error: %w", err)
	}

	kindRaw, ok := m[0]
	if !ok {
		return Record{}, fmt.Errorf("decode error: missing field kind")
	}
	var kind int64
	if err := cbor.Unmarshal(kindRaw, &kind); err != nil {
		return Record{}, fmt.Errorf("decode error: field kind must be integer")
	}

	switch kind {
	case 0:
		name, err := decodeText(m, 1, "workflow_name")
		if err != nil {
			return Record{}, err
		}
		args, err := decodeBytes(m, 2, "args")
		if err != nil {
			return Record{}, err
		}
		runID, err := decodeText(m, 3, "run_id")
		if err != nil {
			return Record{}, err
		}
		return Record{Kind: KindWorkflowStart, WorkflowName: name, Args: args, RunID: runID}, nil

	case 1:
		stepID, err := decodeU64(m, 1, "step_id")
		if err != nil {
			return Record{}, err
		}
		name, err := decodeText(m, 2, "step_name")
		if err != nil {
			return Record{}, err
		}
		attempt, err := decodeU64(m, 3, "attempt")
		if err != nil {
			return Record{}, err
		}
		if attempt > math.MaxUint32 {
			return Record{}, fmt.Errorf("decode error: field attempt out of range")
		}
		return Record{Kind: KindStepStart, StepID: stepID, StepName: name, Attempt: uint32(attempt)}, nil

	case 2:
		callID, err := decodeU64(m, 1, "call_id")
		if err != nil {
			return Record{}, err
		}
		capability, err := decodeText(m, 2, "capability")
		if err != nil {
			return Record{}, err
		}
		op, err := decodeText(m, 3, "op")
		if err != nil {
			return Record{}, err
		}
		input, err := decodeBytes(m, 4, "input")
		if err != nil {
			return Record{}, err
		}
		return Record{Kind: KindEffectCall, CallID: callID, Capability: capability, Op: op, Input: input}, nil

	case 3:
		callID, err := decodeU64(m, 1, "call_id")
		if err != nil {
			return Record{}, err
		}
		outcomeInt, err := decodeU64(m, 2, "outcome")
		if err != nil {
			return Record{}, err
		}
		outcome, ok := outcomeFromInt(int64(outcomeInt))
		if !ok {
			return Record{}, fmt.Errorf("decode error: field outcome invalid outcome")
		}
		output, err := decodeBytes(m, 3, "output")
		if err != nil {
			return Record{}, err
		}
		return Record{Kind: KindEffectResult, CallID: callID, Outcome: outcome, Output: output}, nil

	case 4:
		stepID, err := decodeU64(m, 1, "step_id")
		if err != nil {
			return Record{}, err
		}
		outcomeInt, err := decodeU64(m, 2, "outcome")
		if err != nil {
			return Record{}, err
		}
		outcome, ok := outcomeFromInt(int64(outcomeInt))
		if !ok {
			return Record{}, fmt.Errorf("decode error: field outcome invalid outcome")
		}
		return Record{Kind: KindStepEnd, StepID: stepID, Outcome: outcome}, nil

	case 5:
		outcomeInt, err := decodeU64(m, 1, "outcome")
		if err != nil {
			return Record{}, err
		}
		outcome, ok := outcomeFromInt(int64(outcomeInt))
		if !ok {
			return Record{}, fmt.Errorf("decode error: field outcome invalid outcome")
		}
		return Record{Kind: KindWorkflowEnd, Outcome: outcome}, nil

	default:
		return Record{}, fmt.Errorf("decode error: unknown record kind %d", kind)
	}
}

func decodeText(m map[int]cbor.RawMessage, key int, name string) (string, error) {
	raw, ok := m[key]
	if !ok {
		return "", fmt.Errorf("decode error: missing field %s", name)
	}
	var s string
	if err := cbor.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("decode error: field %s must be text", name)
	}
	return s, nil
}

func decodeBytes(m map[int]cbor.RawMessage, key int, name string) ([]byte, error) {
	raw, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("decode error: missing field %s", name)
	}
	var b []byte
	if err := cbor.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("decode error: field %s must be bytes", name)
	}
	return b, nil
}

func decodeU64(m map[int]cbor.RawMessage, key int, name string) (uint64, error) {
	raw, ok := m[key]
	if !ok {
		return 0, fmt.Errorf("decode error: missing field %s", name)
	}
	var v uint64
	if err := cbor.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("decode error: field %s must be integer", name)
	}
	return v, nil
}

// DecodeLog splits a concatenated CBOR byte stream into records, one
// per top-level CBOR item, using a streaming decoder so records need
// not be individually length-prefixed.
func DecodeLog(data []byte) ([]Record, error) {
	dec := cbor.NewDecoder(bytes.NewReader(data))
	var records []Record
	for {
		var raw cbor.RawMessage
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("decode error: %w", err)
		}
		record, err := DecodeRecord(raw)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// Package event models the terminal event of an agent turn. The agent's
// contract is shape-varying: the event resolves to either a single record or
// an ordered pair of records, depending on which execution path ran. This
// package inspects the raw shape once at the boundary and converts it into a
// tagged Terminal value plus a normalized Outcome, so nothing downstream
// branches on raw structure.
package event

import (
	"encoding/json"
	"fmt"
)

// Shape discriminates the two terminal event layouts.
type Shape string

const (
	ShapeSingle Shape = "single"
	ShapePair   Shape = "pair"
)

// ModelInvocation carries the textual result of a direct model response.
type ModelInvocation struct {
	Result string `json:"result"`
}

// ToolInvocation carries the value produced by a tool execution.
type ToolInvocation struct {
	ToolResult any `json:"tool_result"`
}

// Record is one element of a terminal event. At most one of the two variants
// is set; a record with neither set is legal and carries no outcome.
type Record struct {
	ModelInvocation *ModelInvocation `json:"invoke_model,omitempty"`
	ToolInvocation  *ToolInvocation  `json:"invoke_tools,omitempty"`
}

// Terminal is a terminal event with an explicit shape discriminator.
// The zero value is not valid; construct via Single, Pair, Normalize, or
// ParseJSON.
type Terminal struct {
	shape   Shape
	records []Record
}

// Single builds a Terminal holding one record.
func Single(r Record) Terminal {
	return Terminal{shape: ShapeSingle, records: []Record{r}}
}

// Pair builds a Terminal holding an ordered pair of records.
func Pair(first, second Record) Terminal {
	return Terminal{shape: ShapePair, records: []Record{first, second}}
}

// Shape returns the layout discriminator.
func (t Terminal) Shape() Shape {
	return t.shape
}

// Records returns a copy of the underlying records: one element for
// ShapeSingle, two for ShapePair.
func (t Terminal) Records() []Record {
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

// OutcomeKind identifies which agent path produced the outcome text.
type OutcomeKind string

const (
	OutcomeModel OutcomeKind = "model"
	OutcomeTool  OutcomeKind = "tool"
)

// Outcome is the normalized result of a terminal event: the text to append
// to the transcript and the path that produced it.
type Outcome struct {
	Kind OutcomeKind
	Text string
}

// Outcome extracts the normalized outcome, applying the contract's strict
// precedence: for a pair, a model result in the first record wins over a tool
// result in the second; for a single record only a model result counts.
// Returns false when the event carries no extractable outcome.
func (t Terminal) Outcome() (Outcome, bool) {
	switch t.shape {
	case ShapePair:
		if mi := t.records[0].ModelInvocation; mi != nil && mi.Result != "" {
			return Outcome{Kind: OutcomeModel, Text: mi.Result}, true
		}
		if ti := t.records[1].ToolInvocation; ti != nil {
			return Outcome{Kind: OutcomeTool, Text: "Tool result: " + serialize(ti.ToolResult)}, true
		}
	case ShapeSingle:
		if mi := t.records[0].ModelInvocation; mi != nil && mi.Result != "" {
			return Outcome{Kind: OutcomeModel, Text: mi.Result}, true
		}
	}
	return Outcome{}, false
}

// Normalize converts a decoded JSON value (as produced by encoding/json or
// structpb) into a Terminal by structural inspection: a two-element array is
// a pair, an object is a single record. Anything else is a malformed shape.
func Normalize(v any) (Terminal, error) {
	switch raw := v.(type) {
	case []any:
		if len(raw) != 2 {
			return Terminal{}, fmt.Errorf("%w: array of %d records", ErrMalformedShape, len(raw))
		}
		first, err := recordFromAny(raw[0])
		if err != nil {
			return Terminal{}, err
		}
		second, err := recordFromAny(raw[1])
		if err != nil {
			return Terminal{}, err
		}
		return Pair(first, second), nil
	case map[string]any:
		rec, err := recordFromAny(raw)
		if err != nil {
			return Terminal{}, err
		}
		return Single(rec), nil
	default:
		return Terminal{}, fmt.Errorf("%w: %T", ErrMalformedShape, v)
	}
}

// ParseJSON decodes raw JSON bytes and normalizes them into a Terminal.
func ParseJSON(data []byte) (Terminal, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return Terminal{}, fmt.Errorf("%w: %s", ErrMalformedShape, err)
	}
	return Normalize(v)
}

// WireValue renders the Terminal back into the decoded-JSON form used on the
// wire: a map for ShapeSingle, a two-element slice for ShapePair.
func (t Terminal) WireValue() any {
	if t.shape == ShapePair {
		return []any{recordToAny(t.records[0]), recordToAny(t.records[1])}
	}
	return recordToAny(t.records[0])
}

func recordFromAny(v any) (Record, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return Record{}, fmt.Errorf("%w: record is %T", ErrMalformedShape, v)
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %s", ErrMalformedShape, err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("%w: %s", ErrMalformedShape, err)
	}
	return rec, nil
}

func recordToAny(rec Record) any {
	out := map[string]any{}
	if rec.ModelInvocation != nil {
		out["invoke_model"] = map[string]any{"result": rec.ModelInvocation.Result}
	}
	if rec.ToolInvocation != nil {
		out["invoke_tools"] = map[string]any{"tool_result": rec.ToolInvocation.ToolResult}
	}
	return out
}

func serialize(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

package gateway

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/nmirabets/gen-ui-app/core/protocol"
)

// Frame keys for the two-phase response stream. The first frame carries the
// immediate fragment under "ui"; the second carries the terminal event under
// "last_event".
const (
	frameKeyUI        = "ui"
	frameKeyLastEvent = "last_event"
)

// requestToStruct renders a TurnRequest as a schemaless frame:
// input, chat_history as [role, content] pairs, and the optional file block.
func requestToStruct(req protocol.TurnRequest) (*structpb.Struct, error) {
	history := make([]any, 0, len(req.History))
	for _, pair := range req.HistoryPairs() {
		history = append(history, []any{pair[0], pair[1]})
	}

	fields := map[string]any{
		"input":        req.Input,
		"chat_history": history,
	}
	if req.Attachment != nil {
		fields["file"] = map[string]any{
			"base64":    req.Attachment.Base64,
			"extension": req.Attachment.Extension,
		}
	}

	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encode turn request: %w", err)
	}
	return st, nil
}

// requestFromStruct decodes the wire frame back into a TurnRequest.
func requestFromStruct(st *structpb.Struct) protocol.TurnRequest {
	fields := st.AsMap()

	req := protocol.TurnRequest{}
	if input, ok := fields["input"].(string); ok {
		req.Input = input
	}

	if history, ok := fields["chat_history"].([]any); ok {
		for _, raw := range history {
			pair, ok := raw.([]any)
			if !ok || len(pair) != 2 {
				continue
			}
			role, _ := pair[0].(string)
			content, _ := pair[1].(string)
			req.History = append(req.History, protocol.Message{
				Role:    protocol.Role(role),
				Content: content,
			})
		}
	}

	if file, ok := fields["file"].(map[string]any); ok {
		att := &protocol.Attachment{}
		att.Base64, _ = file["base64"].(string)
		att.Extension, _ = file["extension"].(string)
		req.Attachment = att
	}

	return req
}

// frameStruct wraps a value under a single frame key, passing it through a
// JSON round trip so any JSON-marshalable payload (including struct types)
// becomes structpb-compatible.
func frameStruct(key string, v any) (*structpb.Struct, error) {
	plain, err := toPlainValue(v)
	if err != nil {
		return nil, err
	}
	st, err := structpb.NewStruct(map[string]any{key: plain})
	if err != nil {
		return nil, fmt.Errorf("encode %s frame: %w", key, err)
	}
	return st, nil
}

func toPlainValue(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode frame payload: %w", err)
	}
	var plain any
	if err := json.Unmarshal(data, &plain); err != nil {
		return nil, fmt.Errorf("encode frame payload: %w", err)
	}
	return plain, nil
}

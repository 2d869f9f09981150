package feedback

import "encoding/json"

// AI provider replies arrive in one of a handful of shapes. Rather
// than sniffing properties ad hoc at every call site, replies are
// classified into an explicit variant first and extraction matches on
// the variant. Shapes matching nothing degrade to the opaque-object
// serialize path so downstream JSON parsing still yields the original
// object back.
type replyVariant int

const (
	replyEmpty replyVariant = iota
	replyPlainText
	replyNestedMessageString
	replyNestedMessageSequence
	replyOpaqueObject
)

// ExtractText pulls the best-effort textual payload out of a provider
// reply of unknown shape. It never fails: unknown structured shapes
// are serialized whole, nil degrades to the empty string.
func ExtractText(reply any) string {
	switch classifyReply(reply) {
	case replyEmpty:
		return ""
	case replyPlainText:
		return reply.(string)
	case replyNestedMessageString:
		return messageContent(reply).(string)
	case replyNestedMessageSequence:
		first := messageContent(reply).([]any)[0].(map[string]any)
		return first["text"].(string)
	default:
		raw, err := json.Marshal(reply)
		if err != nil {
			return ""
		}
		return string(raw)
	}
}

func classifyReply(reply any) replyVariant {
	if reply == nil {
		return replyEmpty
	}
	if _, ok := reply.(string); ok {
		return replyPlainText
	}
	switch content := messageContent(reply).(type) {
	case string:
		return replyNestedMessageString
	case []any:
		if len(content) > 0 {
			if part, ok := content[0].(map[string]any); ok {
				if _, ok := part["text"].(string); ok {
					return replyNestedMessageSequence
				}
			}
		}
	}
	return replyOpaqueObject
}

// messageContent returns reply.message.content, or nil when the reply
// does not carry that nesting.
func messageContent(reply any) any {
	m, ok := reply.(map[string]any)
	if !ok {
		return nil
	}
	msg, ok := m["message"].(map[string]any)
	if !ok {
		return nil
	}
	return msg["content"]
}

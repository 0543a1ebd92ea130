// Package protocol holds the JSON envelopes exchanged with the browser and
// with the realtime assistant.
package protocol

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Upstream and client event types the bridge looks at.
const (
	TypeSessionUpdate          = "session.update"
	TypeSessionCreated         = "session.created"
	TypeInputAudioAppend       = "input_audio_buffer.append"
	TypeInputAudioCommit       = "input_audio_buffer.commit"
	TypeInputAudioClear        = "input_audio_buffer.clear"
	TypeConversationItemCreate = "conversation.item.create"
	TypeResponseCreate         = "response.create"
	TypeResponseCancel         = "response.cancel"
	TypeFunctionCallDone       = "response.function_call_arguments.done"
	TypeError                  = "error"

	// Frames that originate in this service rather than the assistant.
	TypeContextUpdate = "context_update"
	TypeNavigation    = "navigation"
)

// relayed is the set of upstream events forwarded to the browser. Everything
// else is consumed here.
var relayed = map[string]bool{
	"session.created":                                       true,
	"session.updated":                                       true,
	"response.audio.delta":                                  true,
	"response.audio.done":                                   true,
	"response.audio_transcript.delta":                       true,
	"response.audio_transcript.done":                        true,
	"response.text.delta":                                   true,
	"response.text.done":                                    true,
	"response.done":                                         true,
	"response.created":                                      true,
	"input_audio_buffer.speech_started":                     true,
	"input_audio_buffer.speech_stopped":                     true,
	"input_audio_buffer.committed":                          true,
	"conversation.item.created":                             true,
	"conversation.item.input_audio_transcription.completed": true,
	"conversation.item.input_audio_transcription.failed":    true,
	"error": true,
}

// Relayed reports whether an upstream event type goes to the browser.
func Relayed(eventType string) bool { return relayed[eventType] }

// clientForwarded is the set of browser events passed upstream verbatim.
var clientForwarded = map[string]bool{
	TypeInputAudioAppend:       true,
	TypeInputAudioCommit:       true,
	TypeInputAudioClear:        true,
	TypeConversationItemCreate: true,
	TypeResponseCreate:         true,
	TypeResponseCancel:         true,
}

// ClientForwarded reports whether a browser event type is passed upstream.
func ClientForwarded(eventType string) bool { return clientForwarded[eventType] }

type envelope struct {
	Type string `json:"type"`
}

// PeekType decodes only the "type" discriminator.
func PeekType(raw []byte) (string, error) {
	var e envelope
	if err := json.Unmarshal(raw, &e); err != nil {
		return "", err
	}
	if e.Type == "" {
		return "", fmt.Errorf("event has no type")
	}
	return e.Type, nil
}

// FunctionCall is the completed tool call emitted by the assistant.
type FunctionCall struct {
	Type       string `json:"type"`
	EventID    string `json:"event_id,omitempty"`
	ResponseID string `json:"response_id,omitempty"`
	ItemID     string `json:"item_id,omitempty"`
	CallID     string `json:"call_id"`
	Name       string `json:"name"`
	Arguments  string `json:"arguments"`
}

func ParseFunctionCall(raw []byte) (FunctionCall, error) {
	var fc FunctionCall
	if err := json.Unmarshal(raw, &fc); err != nil {
		return FunctionCall{}, err
	}
	if fc.CallID == "" || fc.Name == "" {
		return FunctionCall{}, fmt.Errorf("function call without call_id or name")
	}
	return fc, nil
}

// AudioAppend wraps raw PCM16 bytes from the browser.
func AudioAppend(pcm []byte) ([]byte, error) {
	return json.Marshal(map[string]string{
		"type":  TypeInputAudioAppend,
		"audio": base64.StdEncoding.EncodeToString(pcm),
	})
}

// FunctionOutput returns the tool result as a conversation item. The
// assistant expects output to be a JSON-encoded string.
func FunctionOutput(callID string, output any) ([]byte, error) {
	encoded, err := json.Marshal(output)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]any{
		"type": TypeConversationItemCreate,
		"item": map[string]any{
			"type":    "function_call_output",
			"call_id": callID,
			"output":  string(encoded),
		},
	})
}

// ResponseCreate asks the assistant to answer after a tool result.
func ResponseCreate() []byte {
	return []byte(`{"type":"response.create"}`)
}

// ContextUpdate carries a UI hint to the browser.
func ContextUpdate(data map[string]any) ([]byte, error) {
	return json.Marshal(map[string]any{"type": TypeContextUpdate, "data": data})
}

// Navigation carries a routing instruction to the browser.
func Navigation(data any) ([]byte, error) {
	return json.Marshal(map[string]any{"type": TypeNavigation, "data": data})
}

// ErrorFrame is the structured error sent before a connection is closed.
func ErrorFrame(code, message string) []byte {
	raw, _ := json.Marshal(map[string]string{"type": TypeError, "code": code, "message": message})
	return raw
}

// Ready tells the browser the assistant is configured.
func Ready() []byte {
	raw, _ := json.Marshal(map[string]string{
		"type":    TypeSessionCreated,
		"message": "Voice assistant connected. You can start speaking.",
	})
	return raw
}

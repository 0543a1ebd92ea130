package protocol

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/yungbote/neurobridge-voice/internal/voice/tools"
)

func TestRelayAllowList(t *testing.T) {
	for _, typ := range []string{"response.audio.delta", "error", "conversation.item.input_audio_transcription.completed"} {
		if !Relayed(typ) {
			t.Fatalf("expected %q relayed", typ)
		}
	}
	for _, typ := range []string{TypeFunctionCallDone, "response.function_call_arguments.delta", "rate_limits.updated", ""} {
		if Relayed(typ) {
			t.Fatalf("expected %q dropped", typ)
		}
	}
	if ClientForwarded(TypeSessionUpdate) {
		t.Fatalf("browser must not reconfigure the session")
	}
	if !ClientForwarded(TypeInputAudioCommit) {
		t.Fatalf("commit should pass through")
	}
}

func TestPeekType(t *testing.T) {
	if typ, err := PeekType([]byte(`{"type":"response.done","x":1}`)); err != nil || typ != "response.done" {
		t.Fatalf("PeekType: %q %v", typ, err)
	}
	if _, err := PeekType([]byte(`{"x":1}`)); err == nil {
		t.Fatalf("expected error for missing type")
	}
	if _, err := PeekType([]byte(`not json`)); err == nil {
		t.Fatalf("expected error for bad json")
	}
}

func TestParseFunctionCall(t *testing.T) {
	fc, err := ParseFunctionCall([]byte(`{"type":"response.function_call_arguments.done","call_id":"c1","name":"start_quiz","arguments":"{\"quiz_number\":1}"}`))
	if err != nil {
		t.Fatalf("ParseFunctionCall: %v", err)
	}
	if fc.CallID != "c1" || fc.Name != "start_quiz" || !strings.Contains(fc.Arguments, "quiz_number") {
		t.Fatalf("unexpected call: %+v", fc)
	}
	if _, err := ParseFunctionCall([]byte(`{"type":"response.function_call_arguments.done","name":"x"}`)); err == nil {
		t.Fatalf("expected error without call_id")
	}
}

func TestAudioAppendEncodesBase64(t *testing.T) {
	raw, err := AudioAppend([]byte{0x01, 0x02, 0xff})
	if err != nil {
		t.Fatalf("AudioAppend: %v", err)
	}
	var got map[string]string
	_ = json.Unmarshal(raw, &got)
	if got["type"] != TypeInputAudioAppend {
		t.Fatalf("type=%q", got["type"])
	}
	pcm, err := base64.StdEncoding.DecodeString(got["audio"])
	if err != nil || len(pcm) != 3 || pcm[2] != 0xff {
		t.Fatalf("audio round trip failed: %v %v", pcm, err)
	}
}

func TestFunctionOutputIsStringEncoded(t *testing.T) {
	raw, err := FunctionOutput("c9", map[string]any{"success": true, "message": "ok"})
	if err != nil {
		t.Fatalf("FunctionOutput: %v", err)
	}
	var got struct {
		Type string `json:"type"`
		Item struct {
			Type   string `json:"type"`
			CallID string `json:"call_id"`
			Output string `json:"output"`
		} `json:"item"`
	}
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Type != TypeConversationItemCreate || got.Item.Type != "function_call_output" || got.Item.CallID != "c9" {
		t.Fatalf("unexpected envelope: %+v", got)
	}
	var inner map[string]any
	if err := json.Unmarshal([]byte(got.Item.Output), &inner); err != nil || inner["success"] != true {
		t.Fatalf("output should be a JSON string: %q", got.Item.Output)
	}
}

func TestErrorAndReadyFrames(t *testing.T) {
	var e map[string]string
	_ = json.Unmarshal(ErrorFrame("unauthorized", "Invalid or expired token"), &e)
	if e["type"] != "error" || e["code"] != "unauthorized" || e["message"] == "" {
		t.Fatalf("unexpected error frame: %v", e)
	}
	var r map[string]string
	_ = json.Unmarshal(Ready(), &r)
	if r["type"] != TypeSessionCreated {
		t.Fatalf("unexpected ready frame: %v", r)
	}
}

func TestSessionUpdate(t *testing.T) {
	cat, err := tools.LoadCatalog()
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	cfg := SessionConfig{
		Voice:              "alloy",
		TranscriptionModel: "gpt-4o-transcribe",
		Temperature:        0.8,
		TurnDetection:      TurnDetection{Type: "server_vad", Threshold: 0.3, PrefixPaddingMS: 500, SilenceDurationMS: 800},
	}
	raw, err := SessionUpdate(cfg, "Ada Lovelace", cat.Tools)
	if err != nil {
		t.Fatalf("SessionUpdate: %v", err)
	}
	var got struct {
		Type    string `json:"type"`
		Session struct {
			Instructions  string        `json:"instructions"`
			Voice         string        `json:"voice"`
			InputFormat   string        `json:"input_audio_format"`
			TurnDetection TurnDetection `json:"turn_detection"`
			ToolChoice    string        `json:"tool_choice"`
			Tools         []struct {
				Type string `json:"type"`
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"session"`
	}
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Type != TypeSessionUpdate || got.Session.Voice != "alloy" || got.Session.InputFormat != "pcm16" {
		t.Fatalf("unexpected session: %+v", got)
	}
	if !strings.HasSuffix(got.Session.Instructions, "Current user: Ada Lovelace (Student)") {
		t.Fatalf("instructions not personalized")
	}
	if got.Session.TurnDetection.SilenceDurationMS != 800 || got.Session.ToolChoice != "auto" {
		t.Fatalf("unexpected tunables: %+v", got.Session)
	}
	if len(got.Session.Tools) != len(cat.Tools) {
		t.Fatalf("tools=%d want %d", len(got.Session.Tools), len(cat.Tools))
	}
	for _, tl := range got.Session.Tools {
		if tl.Type != "function" || tl.Name == "" {
			t.Fatalf("bad tool entry: %+v", tl)
		}
	}
}

func TestPersonalizedInstructionsBlankName(t *testing.T) {
	if !strings.HasSuffix(PersonalizedInstructions("  "), "Current user: Student (Student)") {
		t.Fatalf("blank name should fall back")
	}
}

package events

import (
	"encoding/json"
	"testing"
)

func TestUpdateMessageNamesIndex(t *testing.T) {
	if got := UpdateMessage(0); got != "update_message#0" {
		t.Fatalf("UpdateMessage(0) = %q", got)
	}
	if got := UpdateMessage(42); got != "update_message#42" {
		t.Fatalf("UpdateMessage(42) = %q", got)
	}
}

func TestPlayAudioEnvelope(t *testing.T) {
	env, err := PlayAudio("data:audio/mp3;base64,AAAA", 1712345678901)
	if err != nil {
		t.Fatalf("PlayAudio() error = %v", err)
	}
	if env.Event != NamePlayAudio {
		t.Fatalf("event = %q, want play_audio", env.Event)
	}

	var payload PlayAudioData
	if err := json.Unmarshal([]byte(env.Data), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.DataURI != "data:audio/mp3;base64,AAAA" {
		t.Fatalf("data_uri = %q", payload.DataURI)
	}
	if payload.GenerationTime != 1712345678901 {
		t.Fatalf("generation_time = %d", payload.GenerationTime)
	}
}

func TestEnvelopeWireFormat(t *testing.T) {
	raw, err := json.Marshal(Envelope{Event: NameNewMessage, Data: "<div>hi</div>"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"event":"new_message","data":"<div>hi</div>"}`
	var got, exp map[string]string
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := json.Unmarshal([]byte(want), &exp); err != nil {
		t.Fatalf("unmarshal expectation: %v", err)
	}
	if got["event"] != exp["event"] || got["data"] != exp["data"] {
		t.Fatalf("wire format = %s", raw)
	}
}

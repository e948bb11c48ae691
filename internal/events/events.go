package events

import (
	"encoding/json"
	"fmt"
)

// Name identifies outbound event variants pushed to the subscriber.
type Name string

const (
	NameNewMessage  Name = "new_message"
	NameChatHistory Name = "chat_history"
	NameQueueAudio  Name = "queue_audio"
	NamePlayAudio   Name = "play_audio"

	// updateMessagePrefix is completed with the transcript index of the
	// message being grown, e.g. "update_message#3".
	updateMessagePrefix = "update_message#"
)

// UpdateMessage returns the per-index event name for incremental growth of an
// existing transcript entry.
func UpdateMessage(index int) Name {
	return Name(fmt.Sprintf("%s%d", updateMessagePrefix, index))
}

// Envelope is the wire format for one pushed event.
type Envelope struct {
	Event Name   `json:"event"`
	Data  string `json:"data"`
}

// PlayAudioData is the payload carried by a play_audio event. DataURI is a
// base64 data: URI the client can hand straight to an <audio> element, and
// GenerationTime is the unix-millis dispatch timestamp matching the earlier
// queue_audio event.
type PlayAudioData struct {
	DataURI        string `json:"data_uri"`
	GenerationTime int64  `json:"generation_time"`
}

// PlayAudio builds a play_audio envelope for an encoded clip.
func PlayAudio(dataURI string, generationTime int64) (Envelope, error) {
	raw, err := json.Marshal(PlayAudioData{DataURI: dataURI, GenerationTime: generationTime})
	if err != nil {
		return Envelope{}, fmt.Errorf("encode play_audio payload: %w", err)
	}
	return Envelope{Event: NamePlayAudio, Data: string(raw)}, nil
}

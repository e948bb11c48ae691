package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/openai/openai-go"
)

// Synthesize converts a text span into mp3 speech audio.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	res, err := c.api.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          openai.SpeechModel(c.cfg.TTSModel),
		Voice:          openai.AudioSpeechNewParamsVoice(c.cfg.TTSVoice),
		Input:          text,
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return nil, fmt.Errorf("speech request: %w", err)
	}
	defer res.Body.Close()

	audio, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read speech response: %w", err)
	}
	return audio, nil
}

// Transcribe converts recorded audio into prompt text.
func (c *Client) Transcribe(ctx context.Context, audio []byte) (string, error) {
	res, err := c.api.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		Model: openai.AudioModel(c.cfg.TranscriptionModel),
		File:  openai.File(bytes.NewReader(audio), "audio.mp3", "audio/mpeg"),
	})
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}
	return res.Text, nil
}

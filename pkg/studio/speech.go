package studio

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/tools/toolbox"
)

// voices are the espeak voice variants selectable by voice_id.
var voices = []string{"en", "en+f3", "en+m3"}

type speechInput struct {
	Text         string `json:"text"`
	VoiceSpeed   int    `json:"voice_speed"`
	VoiceID      int    `json:"voice_id"`
	OutputFormat string `json:"output_format"`
}

func (in *speechInput) Validate() error {
	if strings.TrimSpace(in.Text) == "" {
		return fmt.Errorf("text is required")
	}

	in.VoiceSpeed = max(100, min(300, in.VoiceSpeed))
	if in.OutputFormat != "mp3" {
		in.OutputFormat = "wav"
	}

	return nil
}

func (in *speechInput) voice() string {
	if in.VoiceID >= 0 && in.VoiceID < len(voices) {
		return voices[in.VoiceID]
	}

	return voices[0]
}

func (s *Studio) speechTool() toolbox.Tool {
	return toolbox.Tool{
		Name:        "text_to_speech",
		Description: "Convert text to a speech audio file, for example a voiceover script.",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"text":{"type":"string","description":"The text to convert to speech"},"voice_speed":{"type":"integer","description":"Speaking rate in words per minute (100-300)","default":150},"voice_id":{"type":"integer","description":"Voice selection (0-2)","default":0},"output_format":{"type":"string","enum":["mp3","wav"],"description":"Audio format","default":"mp3"}},"required":["text"]}`),
		Handler:     s.handleSpeech,
	}
}

func (s *Studio) handleSpeech(ctx context.Context, args map[string]any) (any, error) {
	in := speechInput{
		VoiceSpeed:   150,
		OutputFormat: "mp3",
	}
	if err := decode("text_to_speech", args, &in); err != nil {
		return nil, err
	}

	path, err := s.speech(ctx, in)
	if err != nil {
		return failure("Failed to generate speech: %v", err), nil
	}

	words := len(strings.Fields(in.Text))
	seconds := float64(words) / float64(in.VoiceSpeed) * 60

	return success(path, Result{
		"word_count":         words,
		"estimated_duration": fmt.Sprintf("%.1fs", seconds),
		"voice_speed":        in.VoiceSpeed,
		"format":             in.OutputFormat,
	}), nil
}

func (s *Studio) speech(ctx context.Context, in speechInput) (string, error) {
	espeak, err := s.requireProgram("espeak-ng", "espeak")
	if err != nil {
		return "", err
	}

	var ffmpeg string
	if in.OutputFormat == "mp3" {
		if ffmpeg, err = s.requireProgram("ffmpeg"); err != nil {
			return "", err
		}
	}

	path, err := s.outputPath("speech", in.OutputFormat)
	if err != nil {
		return "", err
	}

	wav := path
	if ffmpeg != "" {
		wav = strings.TrimSuffix(path, ".mp3") + ".wav"
		defer os.Remove(wav)
	}

	script := strings.TrimSuffix(path, "."+in.OutputFormat) + ".txt"
	if err := os.WriteFile(script, []byte(in.Text), 0o600); err != nil {
		return "", fmt.Errorf("write script: %w", err)
	}
	defer os.Remove(script)

	if err := s.run(ctx, espeak, "-s", strconv.Itoa(in.VoiceSpeed), "-v", in.voice(), "-w", wav, "-f", script); err != nil {
		return "", err
	}

	if ffmpeg != "" {
		if err := s.run(ctx, ffmpeg, "-hide_banner", "-loglevel", "error", "-y", "-i", wav, "-codec:a", "libmp3lame", path); err != nil {
			return "", err
		}
	}

	return path, nil
}

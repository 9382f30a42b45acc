package studio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(path, data string) error {
	return os.WriteFile(path, []byte(data), 0o600)
}

func argAfter(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func TestSpeech_DefaultsToMP3(t *testing.T) {
	runner := &fakeRunner{}
	s := newTestStudio(t, WithCommandRunner(runner.run), WithLookPath(lookPathFor("espeak-ng", "ffmpeg")))

	out := decodeResult(t, callTool(t, s, "text_to_speech", `{"text":"Hello world from Go"}`))

	assert.Equal(t, "success", out["status"])
	assert.Equal(t, "speech_deadbeef.mp3", out["filename"])
	assert.Equal(t, float64(4), out["word_count"])
	assert.Equal(t, "1.6s", out["estimated_duration"])
	assert.Equal(t, float64(150), out["voice_speed"])
	assert.Equal(t, "mp3", out["format"])

	require.Len(t, runner.calls, 2)

	espeak := runner.calls[0]
	assert.Equal(t, "/usr/bin/espeak-ng", espeak.name)
	assert.Equal(t, "150", argAfter(espeak.args, "-s"))
	assert.Equal(t, "en", argAfter(espeak.args, "-v"))
	wav := filepath.Join(s.Dir(), "speech_deadbeef.wav")
	assert.Equal(t, wav, argAfter(espeak.args, "-w"))
	script := argAfter(espeak.args, "-f")
	assert.NotEmpty(t, script)
	assert.NoFileExists(t, script)

	ffmpeg := runner.calls[1]
	assert.Equal(t, "/usr/bin/ffmpeg", ffmpeg.name)
	assert.Equal(t, wav, argAfter(ffmpeg.args, "-i"))
	assert.Equal(t, filepath.Join(s.Dir(), "speech_deadbeef.mp3"), ffmpeg.args[len(ffmpeg.args)-1])
}

func TestSpeech_WavClampsSpeedAndPicksVoice(t *testing.T) {
	runner := &fakeRunner{}
	s := newTestStudio(t, WithCommandRunner(runner.run), WithLookPath(lookPathFor("espeak")))

	out := decodeResult(t, callTool(t, s, "text_to_speech",
		`{"text":"fast words","voice_speed":1000,"voice_id":2,"output_format":"wav"}`))

	assert.Equal(t, "speech_deadbeef.wav", out["filename"])
	assert.Equal(t, float64(300), out["voice_speed"])
	assert.Equal(t, "wav", out["format"])
	assert.Equal(t, "0.4s", out["estimated_duration"])

	require.Len(t, runner.calls, 1)
	assert.Equal(t, "/usr/bin/espeak", runner.calls[0].name)
	assert.Equal(t, "300", argAfter(runner.calls[0].args, "-s"))
	assert.Equal(t, "en+m3", argAfter(runner.calls[0].args, "-v"))
	assert.Equal(t, filepath.Join(s.Dir(), "speech_deadbeef.wav"), argAfter(runner.calls[0].args, "-w"))
}

func TestSpeech_SlowSpeedAndUnknownFormat(t *testing.T) {
	runner := &fakeRunner{}
	s := newTestStudio(t, WithCommandRunner(runner.run), WithLookPath(lookPathFor("espeak-ng")))

	out := decodeResult(t, callTool(t, s, "text_to_speech",
		`{"text":"x","voice_speed":10,"voice_id":9,"output_format":"ogg"}`))

	assert.Equal(t, float64(100), out["voice_speed"])
	assert.Equal(t, "wav", out["format"])
	require.Len(t, runner.calls, 1)
	assert.Equal(t, "en", argAfter(runner.calls[0].args, "-v"))
}

func TestSpeech_NoEngine(t *testing.T) {
	s := newTestStudio(t, WithLookPath(lookPathFor("ffmpeg")))

	out := decodeResult(t, callTool(t, s, "text_to_speech", `{"text":"hi"}`))

	assert.Equal(t, "error", out["status"])
	assert.Equal(t, "Failed to generate speech: espeak-ng not found in PATH", out["message"])
}

func TestSpeech_MP3NeedsFFmpeg(t *testing.T) {
	runner := &fakeRunner{}
	s := newTestStudio(t, WithCommandRunner(runner.run), WithLookPath(lookPathFor("espeak-ng")))

	out := decodeResult(t, callTool(t, s, "text_to_speech", `{"text":"hi","output_format":"mp3"}`))

	assert.Equal(t, "Failed to generate speech: ffmpeg not found in PATH", out["message"])
	assert.Empty(t, runner.calls)
}

func TestSpeech_BlankText(t *testing.T) {
	s := newTestStudio(t)

	tr := callTool(t, s, "text_to_speech", `{"text":"   "}`)

	require.True(t, tr.IsError)
	assert.Contains(t, tr.Content, "text is required")
}

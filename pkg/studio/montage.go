package studio

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"os"
	"strconv"
	"strings"

	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/tools/toolbox"
)

type montageInput struct {
	ImagePaths         []string `json:"image_paths"`
	DurationPerImage   float64  `json:"duration_per_image"`
	TransitionDuration float64  `json:"transition_duration"`
	OutputFPS          int      `json:"output_fps"`
}

// Validate clamps the transition to [0, duration/2] so neighbouring fades
// never overlap.
func (in *montageInput) Validate() error {
	if in.DurationPerImage <= 0 {
		return fmt.Errorf("duration_per_image must be positive")
	}
	if in.OutputFPS < 1 {
		return fmt.Errorf("output_fps must be positive")
	}

	in.TransitionDuration = max(0, min(in.TransitionDuration, in.DurationPerImage/2))

	return nil
}

func (s *Studio) montageTool() toolbox.Tool {
	return toolbox.Tool{
		Name:        "create_video_montage",
		Description: "Create a video montage from a list of images with smooth fade transitions.",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"image_paths":{"type":"array","items":{"type":"string"},"description":"Paths of the images to include, in order (at least 2)"},"duration_per_image":{"type":"number","description":"Seconds each image is displayed","default":3.0},"transition_duration":{"type":"number","description":"Fade transition seconds","default":0.5},"output_fps":{"type":"integer","description":"Frames per second of the output video","default":24}},"required":["image_paths"]}`),
		Handler:     s.handleMontage,
	}
}

func (s *Studio) handleMontage(ctx context.Context, args map[string]any) (any, error) {
	in := montageInput{
		DurationPerImage:   3.0,
		TransitionDuration: 0.5,
		OutputFPS:          24,
	}
	if err := decode("create_video_montage", args, &in); err != nil {
		return nil, err
	}

	if len(in.ImagePaths) < 2 {
		return failure("Need at least 2 images to create a video montage"), nil
	}

	for _, p := range in.ImagePaths {
		if _, err := os.Stat(p); err != nil {
			return failure("Image not found: %s", p), nil
		}
	}

	ffmpeg, err := s.requireProgram("ffmpeg")
	if err != nil {
		return failure("Failed to create video montage: %v", err), nil
	}

	path, err := s.montage(ctx, ffmpeg, in)
	if err != nil {
		return failure("Failed to create video montage: %v", err), nil
	}

	total := float64(len(in.ImagePaths)) * in.DurationPerImage

	return success(path, Result{
		"num_images":     len(in.ImagePaths),
		"total_duration": fmt.Sprintf("%.1fs", total),
		"fps":            in.OutputFPS,
	}), nil
}

func (s *Studio) montage(ctx context.Context, ffmpeg string, in montageInput) (string, error) {
	frame, err := frameSize(in.ImagePaths[0])
	if err != nil {
		return "", err
	}

	path, err := s.outputPath("montage", "mp4")
	if err != nil {
		return "", err
	}

	if err := s.run(ctx, ffmpeg, montageArgs(in, frame, path)...); err != nil {
		return "", err
	}

	return path, nil
}

// frameSize reads the first image's dimensions, rounded down to even values
// as libx264 requires.
func frameSize(path string) (image.Point, error) {
	f, err := os.Open(path) //nolint:gosec // path supplied by the caller on purpose
	if err != nil {
		return image.Point{}, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return image.Point{}, fmt.Errorf("decode %s: %w", path, err)
	}

	return image.Point{X: max(2, cfg.Width&^1), Y: max(2, cfg.Height&^1)}, nil
}

// montageArgs builds an ffmpeg invocation that letterboxes every image to
// the frame size and joins them with crossfades, or a plain concat when the
// transition is zero.
func montageArgs(in montageInput, frame image.Point, out string) []string {
	dur := formatSeconds(in.DurationPerImage)

	args := []string{"-hide_banner", "-loglevel", "error", "-y"}
	for _, p := range in.ImagePaths {
		args = append(args, "-loop", "1", "-t", dur, "-i", p)
	}

	var filters []string
	for i := range in.ImagePaths {
		filters = append(filters, fmt.Sprintf(
			"[%d:v]scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1,format=yuv420p[v%d]",
			i, frame.X, frame.Y, frame.X, frame.Y, i))
	}

	n := len(in.ImagePaths)
	if t := in.TransitionDuration; t > 0 {
		prev := "v0"
		for i := 1; i < n; i++ {
			next := fmt.Sprintf("x%d", i)
			if i == n-1 {
				next = "out"
			}
			offset := float64(i) * (in.DurationPerImage - t)
			filters = append(filters, fmt.Sprintf("[%s][v%d]xfade=transition=fade:duration=%s:offset=%s[%s]",
				prev, i, formatSeconds(t), formatSeconds(offset), next))
			prev = next
		}
	} else {
		var inputs strings.Builder
		for i := range n {
			fmt.Fprintf(&inputs, "[v%d]", i)
		}
		filters = append(filters, fmt.Sprintf("%sconcat=n=%d:v=1:a=0[out]", inputs.String(), n))
	}

	return append(args,
		"-filter_complex", strings.Join(filters, ";"),
		"-map", "[out]",
		"-r", strconv.Itoa(in.OutputFPS),
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-an",
		out,
	)
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

package util

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// LessonVideo is what ffmpeg reports about an uploaded lesson video.
type LessonVideo struct {
	Duration float64 // seconds
	Width    int
	Height   int
	Codec    string
}

// InspectLessonVideo reads the streams of a local upload. A file without a
// video stream is rejected as ErrInvalidVideo.
func InspectLessonVideo(videoPath string) (*LessonVideo, error) {
	out, err := ffmpeg.Probe(videoPath)
	if err != nil {
		return nil, fmt.Errorf("inspect %s: %w", videoPath, err)
	}
	return parseStreamReport(out)
}

type streamReport struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		CodecName string `json:"codec_name"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
		Duration  string `json:"duration"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func parseStreamReport(out string) (*LessonVideo, error) {
	var p streamReport
	if err := json.Unmarshal([]byte(out), &p); err != nil {
		return nil, fmt.Errorf("decode stream report: %w", err)
	}
	for _, s := range p.Streams {
		if s.CodecType != "video" {
			continue
		}
		v := &LessonVideo{Width: s.Width, Height: s.Height, Codec: s.CodecName}
		// Containers report the duration more reliably than a single stream.
		if d, err := strconv.ParseFloat(p.Format.Duration, 64); err == nil {
			v.Duration = d
		} else if d, err := strconv.ParseFloat(s.Duration, 64); err == nil {
			v.Duration = d
		}
		return v, nil
	}
	return nil, fmt.Errorf("%w: no video stream", ErrInvalidVideo)
}

// ThumbnailOffset picks the frame for a lesson thumbnail, in seconds: a
// tenth of the way in, one second for short clips, the first frame below two seconds.
func ThumbnailOffset(duration float64) string {
	switch {
	case duration > 0 && duration < 2:
		return "0"
	case duration >= 10:
		return strconv.Itoa(int(duration / 10))
	default:
		return "1"
	}
}

// ExtractThumbnail writes one JPEG frame at offset, scaled to the catalog card width.
func ExtractThumbnail(videoPath, thumbPath, offset string) error {
	return ffmpeg.Input(videoPath, ffmpeg.KwArgs{"ss": offset}).
		Output(thumbPath, ffmpeg.KwArgs{
			"vframes": "1",
			"vf":      "scale=640:-2",
			"q:v":     "3",
		}).
		OverWriteOutput().
		Run()
}

// FFmpegVersion is reported by the health check.
func FFmpegVersion() (string, error) {
	var out, errOut bytes.Buffer
	cmd := exec.Command("ffmpeg", "-version", "-hide_banner")
	cmd.Stdout = &out
	cmd.Stderr = &errOut
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg unavailable: %v, %s", err, errOut.String())
	}
	return out.String(), nil
}

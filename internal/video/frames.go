package video

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

const framesDirName = "frames"

// FrameExtractor turns an annotated video into preview frames.
type FrameExtractor interface {
	// ExtractFrames writes frames into outDir/frames and returns their file
	// names and the video that should be served, which may be a re-encoded
	// copy. A video that cannot be handled yields no frames, not an error.
	ExtractFrames(ctx context.Context, videoPath, outDir string) (frames []string, playable string)
}

type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// FFmpeg extracts frames with the ffmpeg binary.
type FFmpeg struct {
	path      string
	frameRate int
	run       commandRunner
}

func NewFFmpeg(path string, frameRate int) *FFmpeg {
	if frameRate <= 0 {
		frameRate = 1
	}
	return &FFmpeg{path: path, frameRate: frameRate, run: runCommand}
}

func (f *FFmpeg) ExtractFrames(ctx context.Context, videoPath, outDir string) ([]string, string) {
	framesDir := filepath.Join(outDir, framesDirName)
	if err := os.MkdirAll(framesDir, 0o755); err != nil {
		log.Errorf("create frames dir %s: %s", framesDir, err)
		return nil, videoPath
	}

	frames, err := f.extract(ctx, videoPath, framesDir)
	if err == nil {
		return frames, videoPath
	}
	log.Warnf("extract frames from [%s]: %s; re-encoding", filepath.Base(videoPath), err)

	reencoded := filepath.Join(outDir, strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))+"_h264.mp4")
	if err := f.reencode(ctx, videoPath, reencoded); err != nil {
		log.Warnf("re-encode [%s]: %s; no frames", filepath.Base(videoPath), err)
		return nil, videoPath
	}

	frames, err = f.extract(ctx, reencoded, framesDir)
	if err != nil {
		log.Warnf("extract frames from re-encoded [%s]: %s", filepath.Base(reencoded), err)
		return nil, reencoded
	}
	return frames, reencoded
}

func (f *FFmpeg) extract(ctx context.Context, videoPath, framesDir string) ([]string, error) {
	out, err := f.run(ctx, f.path,
		"-y", "-loglevel", "error",
		"-i", videoPath,
		"-vf", "fps="+strconv.Itoa(f.frameRate),
		filepath.Join(framesDir, "frame_%04d.jpg"),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out)))
	}

	frames, err := listFrames(framesDir)
	if err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, errors.New("no frames written")
	}
	return frames, nil
}

// reencode converts videoPath to H.264 / yuv420p with the index up front so
// browsers can play it.
func (f *FFmpeg) reencode(ctx context.Context, videoPath, target string) error {
	out, err := f.run(ctx, f.path,
		"-y", "-loglevel", "error",
		"-i", videoPath,
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		"-an",
		target,
	)
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func listFrames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	frames := []string{}
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".jpg") {
			frames = append(frames, e.Name())
		}
	}
	sort.Strings(frames)
	return frames, nil
}

package video

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFFmpeg records invocations; extraction writes two frames unless the
// input matches failOn.
type fakeFFmpeg struct {
	calls        [][]string
	failOn       func(input string) bool
	reencodeFail bool
}

func (f *fakeFFmpeg) run(_ context.Context, _ string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, args)
	input := args[indexOf(args, "-i")+1]
	target := args[len(args)-1]

	if indexOf(args, "-c:v") >= 0 {
		if f.reencodeFail {
			return []byte("Unknown encoder 'libx264'"), errors.New("exit status 1")
		}
		return nil, os.WriteFile(target, []byte("h264"), 0o644)
	}

	if f.failOn != nil && f.failOn(input) {
		return []byte("Invalid data found when processing input"), errors.New("exit status 1")
	}
	dir := filepath.Dir(target)
	for _, name := range []string{"frame_0002.jpg", "frame_0001.jpg"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("jpg"), 0o644); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func indexOf(args []string, flag string) int {
	for i, a := range args {
		if a == flag {
			return i
		}
	}
	return -1
}

func newTestFFmpeg(fake *fakeFFmpeg) *FFmpeg {
	f := NewFFmpeg("ffmpeg", 2)
	f.run = fake.run
	return f
}

func TestFFmpeg_ExtractFrames(t *testing.T) {
	fake := &fakeFFmpeg{}
	outDir := t.TempDir()
	video := filepath.Join(outDir, "annotated.mp4")

	frames, playable := newTestFFmpeg(fake).ExtractFrames(context.Background(), video, outDir)
	assert.Equal(t, []string{"frame_0001.jpg", "frame_0002.jpg"}, frames)
	assert.Equal(t, video, playable)
	require.Len(t, fake.calls, 1)
	assert.Contains(t, fake.calls[0], "fps=2")
}

func TestFFmpeg_ReencodeFallback(t *testing.T) {
	fake := &fakeFFmpeg{failOn: func(input string) bool { return !strings.HasSuffix(input, "_h264.mp4") }}
	outDir := t.TempDir()
	video := filepath.Join(outDir, "annotated.avi")

	frames, playable := newTestFFmpeg(fake).ExtractFrames(context.Background(), video, outDir)
	assert.Len(t, frames, 2)
	assert.Equal(t, filepath.Join(outDir, "annotated_h264.mp4"), playable)
	require.Len(t, fake.calls, 3)
	assert.Contains(t, fake.calls[1], "yuv420p")
	assert.Contains(t, fake.calls[1], "+faststart")
}

func TestFFmpeg_BothFail(t *testing.T) {
	fake := &fakeFFmpeg{failOn: func(string) bool { return true }, reencodeFail: true}
	outDir := t.TempDir()
	video := filepath.Join(outDir, "annotated.mp4")

	frames, playable := newTestFFmpeg(fake).ExtractFrames(context.Background(), video, outDir)
	assert.Nil(t, frames)
	assert.Equal(t, video, playable)
	assert.Len(t, fake.calls, 2)
}

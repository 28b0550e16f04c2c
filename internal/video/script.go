package video

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

var (
	// x = input("Enter video path: ")
	inputAssignment = regexp.MustCompile(`(?m)^([ \t]*)([A-Za-z_][A-Za-z0-9_]*)[ \t]*=[ \t]*input\(.*$`)
	// output_dir = "results" in any letter case
	outputDirAssignment = regexp.MustCompile(`(?mi)^([ \t]*)(output_dir)[ \t]*=.*$`)

	videoExtensions = map[string]bool{".mp4": true, ".avi": true, ".mov": true, ".webm": true}
)

const patchedPrefix = "patched_"

// SubprocessError is a failed analysis run. Stderr holds what the script
// printed before exiting.
type SubprocessError struct {
	Script string
	Stderr string
	Err    error
}

func (e *SubprocessError) Error() string {
	return fmt.Sprintf("analysis script %s failed: %v", filepath.Base(e.Script), e.Err)
}

func (e *SubprocessError) Unwrap() error {
	return e.Err
}

// ScriptAnalyzer runs an activity script with an external interpreter. The
// scripts were written for interactive use, so a patched copy is run in which
// the video prompt and the output directory are replaced by literals.
type ScriptAnalyzer struct {
	Interpreter string
	ScriptPath  string
	// Timeout of zero waits for the script indefinitely.
	Timeout time.Duration
}

func (a *ScriptAnalyzer) Run(ctx context.Context, videoPath, outDir string) (Output, error) {
	src, err := os.ReadFile(a.ScriptPath)
	if err != nil {
		return Output{}, &SubprocessError{Script: a.ScriptPath, Err: err}
	}

	absVideo, err := filepath.Abs(videoPath)
	if err != nil {
		return Output{}, &SubprocessError{Script: a.ScriptPath, Err: err}
	}
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return Output{}, &SubprocessError{Script: a.ScriptPath, Err: err}
	}

	patchedPath := filepath.Join(absOut, patchedPrefix+filepath.Base(a.ScriptPath))
	if err := os.WriteFile(patchedPath, []byte(PatchScript(string(src), absVideo, absOut)), 0o644); err != nil {
		return Output{}, &SubprocessError{Script: a.ScriptPath, Err: err}
	}

	if a.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, a.Interpreter, patchedPath)
	cmd.Dir = absOut
	cmd.Env = append(os.Environ(), "VIDEO_PATH="+absVideo, "OUTPUT_DIR="+absOut)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	started := time.Now()
	if err := cmd.Run(); err != nil {
		return Output{}, &SubprocessError{Script: a.ScriptPath, Stderr: stderr.String(), Err: err}
	}
	log.Debugf("analysis script [%s] finished in %s", filepath.Base(a.ScriptPath), time.Since(started))

	out, err := Harvest(absOut)
	if err != nil {
		return Output{}, err
	}
	out.Stdout = stdout.String()
	return out, nil
}

// PatchScript replaces the first input() assignment, which the analysis
// scripts use to ask for the video path, with videoPath. Later input() calls
// are left alone. Every output_dir assignment is set to outDir.
func PatchScript(src, videoPath, outDir string) string {
	src = replaceFirstAssignment(inputAssignment, src, videoPath)
	return replaceAssignments(outputDirAssignment, src, outDir)
}

func assignment(re *regexp.Regexp, line, value string) string {
	m := re.FindStringSubmatch(line)
	return m[1] + m[2] + " = " + strconv.Quote(value)
}

func replaceFirstAssignment(re *regexp.Regexp, src, value string) string {
	loc := re.FindStringIndex(src)
	if loc == nil {
		return src
	}
	return src[:loc[0]] + assignment(re, src[loc[0]:loc[1]], value) + src[loc[1]:]
}

func replaceAssignments(re *regexp.Regexp, src, value string) string {
	return re.ReplaceAllStringFunc(src, func(line string) string {
		return assignment(re, line, value)
	})
}

// Harvest picks the first CSV file and the first video file in dir.
func Harvest(dir string) (Output, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Output{}, err
	}

	var out Output
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), patchedPrefix) {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		switch {
		case ext == ".csv" && out.CSVPath == "":
			out.CSVPath = filepath.Join(dir, e.Name())
		case videoExtensions[ext] && out.VideoPath == "":
			out.VideoPath = filepath.Join(dir, e.Name())
		}
	}
	return out, nil
}

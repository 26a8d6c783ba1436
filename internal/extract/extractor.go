// Package extract pulls the audio track out of a video with ffmpeg.
package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const AudioExtension = ".mp3"

var ErrExtractFailed = errors.New("audio extraction failed")

// Error reports an ffmpeg run that failed for any reason other than an
// existing output file; it carries the captured process output.
type Error struct {
	VideoPath  string
	OutputPath string
	Result     CommandResult
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("extract audio from %s: ffmpeg exited with code %d", e.VideoPath, e.Result.ExitCode)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if detail := lastLine(e.Result.Stderr); detail != "" {
		msg += " (" + detail + ")"
	}
	return msg
}

func (e *Error) Unwrap() []error {
	return []error{ErrExtractFailed, e.Err}
}

// Result is the outcome of a successful extraction.
type Result struct {
	Path string
	// Reused is set when the audio file was left over from an earlier run.
	Reused bool
}

// Extractor demuxes audio tracks into a temp directory with ffmpeg.
type Extractor struct {
	ffmpegPath string
	tempDir    string
	runner     CommandRunner
	logger     *zap.Logger
	stat       func(name string) (os.FileInfo, error)
}

// Option configures an Extractor.
type Option func(*Extractor)

func WithFFmpegPath(path string) Option {
	return func(e *Extractor) {
		if strings.TrimSpace(path) != "" {
			e.ffmpegPath = path
		}
	}
}

func WithTempDir(dir string) Option {
	return func(e *Extractor) {
		if strings.TrimSpace(dir) != "" {
			e.tempDir = dir
		}
	}
}

func WithCommandRunner(runner CommandRunner) Option {
	return func(e *Extractor) {
		e.runner = runner
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// New returns an Extractor that runs "ffmpeg" from PATH and writes to
// os.TempDir() unless overridden.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		ffmpegPath: "ffmpeg",
		tempDir:    os.TempDir(),
		runner:     ExecCommandRunner{},
		stat:       os.Stat,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	return e
}

// AudioPath is the deterministic location of the audio extracted from videoPath.
func AudioPath(tempDir, videoPath string) string {
	base := filepath.Base(videoPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(tempDir, stem+AudioExtension)
}

func (e *Extractor) OutputPath(videoPath string) string {
	return AudioPath(e.tempDir, videoPath)
}

func buildFFmpegArgs(videoPath, outPath string) []string {
	return []string{
		"-nostdin",
		"-hide_banner",
		"-n",
		"-i", videoPath,
		"-q:a", "0",
		"-map", "a",
		outPath,
	}
}

// Extract writes the audio of videoPath to OutputPath(videoPath). A leftover
// file from an earlier run is reused and reported through Result.Reused.
func (e *Extractor) Extract(ctx context.Context, videoPath string) (Result, error) {
	if strings.TrimSpace(videoPath) == "" {
		return Result{}, errors.New("video path is required")
	}

	outPath := e.OutputPath(videoPath)
	args := buildFFmpegArgs(videoPath, outPath)

	e.logger.Info("splitting audio track", zap.String("video", videoPath))
	e.logger.Debug("running ffmpeg", zap.String("ffmpeg", e.ffmpegPath), zap.Strings("args", args))

	result, runErr := e.runner.Run(ctx, e.ffmpegPath, args...)
	if runErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, fmt.Errorf("extract audio from %s: %w", videoPath, ctxErr)
		}

		if e.outputAlreadyExists(result, outPath) {
			e.logger.Info("audio file already exists, continuing", zap.String("audio", outPath))
			return Result{Path: outPath, Reused: true}, nil
		}

		e.logger.Error("ffmpeg failed",
			zap.Int("exit_code", result.ExitCode),
			zap.String("stdout", result.Stdout),
			zap.String("stderr", result.Stderr),
		)
		return Result{}, &Error{
			VideoPath:  videoPath,
			OutputPath: outPath,
			Result:     result,
			Err:        runErr,
		}
	}

	e.logger.Info("audio track saved", zap.String("audio", outPath))
	return Result{Path: outPath}, nil
}

// VerifyInstalled checks that the configured ffmpeg can be executed.
func (e *Extractor) VerifyInstalled(ctx context.Context) error {
	if _, err := e.runner.Run(ctx, e.ffmpegPath, "-hide_banner", "-version"); err != nil {
		return fmt.Errorf("ffmpeg not found or not executable (%s): %w", e.ffmpegPath, err)
	}
	return nil
}

// outputAlreadyExists reports a failed run as benign when ffmpeg refused to
// overwrite outPath and that file is really there.
func (e *Extractor) outputAlreadyExists(result CommandResult, outPath string) bool {
	if !IsAlreadyExists(result.Stderr) {
		return false
	}
	// The message alone is locale and version dependent; require the file too.
	info, err := e.stat(outPath)
	return err == nil && !info.IsDir()
}

// IsAlreadyExists reports whether ffmpeg output says it refused to overwrite.
func IsAlreadyExists(stderr string) bool {
	value := strings.ToLower(stderr)
	return strings.Contains(value, "not overwriting") || strings.Contains(value, "already exists")
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

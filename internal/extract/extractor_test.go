package extract

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeRunner struct {
	calls  [][]string
	result CommandResult
	err    error
	onRun  func(args []string)
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (CommandResult, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.onRun != nil {
		f.onRun(args)
	}
	return f.result, f.err
}

func TestAudioPathUsesVideoStem(t *testing.T) {
	t.Parallel()

	require.Equal(t, filepath.Join("/tmp", "lecture.mp3"), AudioPath("/tmp", "to_transcribe/lecture.mp4"))
	require.Equal(t, filepath.Join("/tmp", "my.talk.mp3"), AudioPath("/tmp", "/videos/my.talk.mp4"))
	require.Equal(t, filepath.Join("/tmp", "noext.mp3"), AudioPath("/tmp", "noext"))
}

func TestExtractSuccessInvokesFFmpeg(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	runner := &fakeRunner{}
	e := New(WithTempDir(tempDir), WithFFmpegPath("/opt/ffmpeg"), WithCommandRunner(runner))

	res, err := e.Extract(context.Background(), "to_transcribe/clip.mp4")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(tempDir, "clip.mp3"), res.Path)
	require.False(t, res.Reused)

	require.Len(t, runner.calls, 1)
	require.Equal(t, []string{
		"/opt/ffmpeg", "-nostdin", "-hide_banner", "-n",
		"-i", "to_transcribe/clip.mp4",
		"-q:a", "0",
		"-map", "a",
		filepath.Join(tempDir, "clip.mp3"),
	}, runner.calls[0])
}

func TestExtractTreatsExistingOutputAsSuccess(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	existing := filepath.Join(tempDir, "clip.mp3")
	require.NoError(t, os.WriteFile(existing, []byte("audio"), 0o644))

	core, logs := observer.New(zapcore.InfoLevel)
	runner := &fakeRunner{
		result: CommandResult{ExitCode: 1, Stderr: "File '" + existing + "' already exists. Exiting.\n"},
		err:    errors.New("exit status 1"),
	}
	e := New(WithTempDir(tempDir), WithCommandRunner(runner), WithLogger(zap.New(core)))

	res, err := e.Extract(context.Background(), "clip.mp4")
	require.NoError(t, err)
	require.Equal(t, existing, res.Path)
	require.True(t, res.Reused)
	require.Equal(t, 1, logs.FilterMessage("audio file already exists, continuing").Len())
}

func TestExtractAlreadyExistsMessageWithoutFileIsFatal(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{
		result: CommandResult{ExitCode: 1, Stderr: "Not overwriting - exiting"},
		err:    errors.New("exit status 1"),
	}
	e := New(WithTempDir(t.TempDir()), WithCommandRunner(runner))

	_, err := e.Extract(context.Background(), "clip.mp4")
	require.ErrorIs(t, err, ErrExtractFailed)

	var extractErr *Error
	require.True(t, errors.As(err, &extractErr))
	require.Equal(t, "clip.mp4", extractErr.VideoPath)
	require.NoFileExists(t, extractErr.OutputPath)
}

func TestExtractPropagatesUnrelatedFailure(t *testing.T) {
	t.Parallel()

	runErr := errors.New("exit status 1")
	runner := &fakeRunner{
		result: CommandResult{ExitCode: 1, Stderr: "missing.mp4: No such file or directory\n"},
		err:    runErr,
	}
	e := New(WithTempDir(t.TempDir()), WithCommandRunner(runner))

	res, err := e.Extract(context.Background(), "missing.mp4")
	require.Error(t, err)
	require.Empty(t, res.Path)
	require.ErrorIs(t, err, ErrExtractFailed)
	require.ErrorIs(t, err, runErr)
	require.Contains(t, err.Error(), "No such file or directory")

	var extractErr *Error
	require.True(t, errors.As(err, &extractErr))
	require.Equal(t, "missing.mp4", extractErr.VideoPath)
	require.Equal(t, 1, extractErr.Result.ExitCode)
}

func TestExtractReturnsContextError(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	runner := &fakeRunner{
		err:   errors.New("signal: killed"),
		onRun: func([]string) { cancel() },
	}
	e := New(WithTempDir(t.TempDir()), WithCommandRunner(runner))

	_, err := e.Extract(ctx, "clip.mp4")
	require.ErrorIs(t, err, context.Canceled)
}

func TestExtractRequiresVideoPath(t *testing.T) {
	t.Parallel()

	_, err := New(WithCommandRunner(&fakeRunner{})).Extract(context.Background(), " ")
	require.Error(t, err)
}

func TestIsAlreadyExists(t *testing.T) {
	t.Parallel()

	require.True(t, IsAlreadyExists("File '/tmp/a.mp3' already exists. Exiting."))
	require.True(t, IsAlreadyExists("Not overwriting - exiting"))
	require.True(t, IsAlreadyExists("NOT OVERWRITING"))
	require.False(t, IsAlreadyExists("Invalid data found when processing input"))
	require.False(t, IsAlreadyExists(""))
}

func writeFFmpegStub(t *testing.T, script string) string {
	t.Helper()

	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	path := filepath.Join(t.TempDir(), "ffmpeg")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestExtractWithStubFFmpegWritesOutput(t *testing.T) {
	stub := writeFFmpegStub(t, `#!/bin/sh
for last; do :; done
echo "audio" > "$last"
`)
	tempDir := t.TempDir()

	res, err := New(WithFFmpegPath(stub), WithTempDir(tempDir)).Extract(context.Background(), "talk.mp4")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(tempDir, "talk.mp3"), res.Path)
	require.FileExists(t, res.Path)
}

func TestExtractWithStubFFmpegCapturesStderr(t *testing.T) {
	stub := writeFFmpegStub(t, `#!/bin/sh
>&2 echo "talk.mp4: Invalid data found when processing input"
exit 1
`)

	_, err := New(WithFFmpegPath(stub), WithTempDir(t.TempDir())).Extract(context.Background(), "talk.mp4")
	require.ErrorIs(t, err, ErrExtractFailed)

	var extractErr *Error
	require.True(t, errors.As(err, &extractErr))
	require.Equal(t, 1, extractErr.Result.ExitCode)
	require.Contains(t, extractErr.Result.Stderr, "Invalid data found")
}

func TestExtractWithStubFFmpegReusesExistingAudio(t *testing.T) {
	stub := writeFFmpegStub(t, `#!/bin/sh
for last; do :; done
>&2 echo "File '$last' already exists. Exiting."
exit 1
`)
	tempDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "talk.mp3"), []byte("audio"), 0o644))

	res, err := New(WithFFmpegPath(stub), WithTempDir(tempDir)).Extract(context.Background(), "talk.mp4")
	require.NoError(t, err)
	require.True(t, res.Reused)
}

func TestVerifyInstalled(t *testing.T) {
	t.Parallel()

	require.NoError(t, New(WithCommandRunner(&fakeRunner{})).VerifyInstalled(context.Background()))

	err := New(WithCommandRunner(&fakeRunner{err: exec.ErrNotFound})).VerifyInstalled(context.Background())
	require.ErrorIs(t, err, exec.ErrNotFound)
	require.Contains(t, err.Error(), "ffmpeg not found")
}

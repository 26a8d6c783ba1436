package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fmueller/vidtranslate/internal/config"
	"github.com/fmueller/vidtranslate/internal/logging"
	"github.com/fmueller/vidtranslate/internal/platform"
	"github.com/fmueller/vidtranslate/internal/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
)

var (
	ErrNoTarget = errors.New("failed to find video clip to translate")
	ErrNoAudio  = errors.New("failed to split audio from video clip")
)

type flagValues struct {
	inputDir   string
	extension  string
	outputDir  string
	tempDir    string
	ffmpegPath string
	model      string
	apiBaseURL string
	timeout    time.Duration
}

type appState struct {
	verbose    bool
	jsonLogs   bool
	noProgress bool
	configPath string
	flags      flagValues

	cfg    config.Config
	logger *zap.Logger
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	preflightFn func(ctx context.Context) error
	selectFn    func(in io.Reader, prompt io.Writer) string
	extractFn   func(ctx context.Context, videoPath string) (string, error)
	translateFn func(ctx context.Context, audioPath string) (string, error)
}

func NewRootCmd() *cobra.Command {
	defaults := config.Default()
	app := &appState{
		cfg: defaults,
		flags: flagValues{
			inputDir:   defaults.Paths.InputDirectory,
			extension:  defaults.Paths.VideoExtension,
			outputDir:  defaults.Paths.OutputDirectory,
			tempDir:    defaults.Paths.TempDirectory,
			ffmpegPath: defaults.FFmpeg.Path,
			model:      defaults.Translation.Model,
		},
	}
	app.preflightFn = app.ensurePipelineReady
	app.selectFn = app.selectTarget
	app.extractFn = app.extractAudio
	app.translateFn = app.translateAndSave

	cmd := &cobra.Command{
		Use:           "vidtranslate",
		Short:         "Pick a video, extract its audio and save an English translation of the speech",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Resolve(),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			app.setupIO(cmd)

			if err := config.LoadEnv(); err != nil {
				app.log().Warn("ignoring unreadable .env file", zap.Error(err))
			}

			cfg, err := app.loadConfig()
			if err != nil {
				return err
			}
			app.cfg = applyFlags(cfg, cmd, app.flags)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runDefault(cmd.Context())
		},
	}

	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	bindLoggingFlags(cmd, app)
	bindPathFlags(cmd, app)
	bindTranslationFlags(cmd, app)

	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newExtractCmd(app))
	cmd.AddCommand(newTranslateCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func bindLoggingFlags(cmd *cobra.Command, app *appState) {
	flags := cmd.PersistentFlags()
	flags.BoolVar(&app.verbose, "verbose", app.verbose, "Enable verbose logs")
	flags.BoolVar(&app.jsonLogs, "json", app.jsonLogs, "Enable JSON logging")
	flags.BoolVar(&app.noProgress, "no-progress", app.noProgress, "Disable progress indicators")
	flags.StringVar(&app.configPath, "config", app.configPath, "Path to a YAML config file (default: per-user config directory)")
	flags.DurationVar(&app.flags.timeout, "timeout", app.flags.timeout, "Abort the run after this long, e.g. 10m; 0 waits forever")
}

func bindPathFlags(cmd *cobra.Command, app *appState) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&app.flags.inputDir, "input-dir", app.flags.inputDir, "Directory holding candidate videos")
	flags.StringVar(&app.flags.extension, "ext", app.flags.extension, "Video file extension to list")
	flags.StringVar(&app.flags.outputDir, "output-dir", app.flags.outputDir, "Directory where translations are written")
	flags.StringVar(&app.flags.tempDir, "temp-dir", app.flags.tempDir, "Directory for extracted audio files")
	flags.StringVar(&app.flags.ffmpegPath, "ffmpeg", app.flags.ffmpegPath, "ffmpeg executable")
}

func bindTranslationFlags(cmd *cobra.Command, app *appState) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&app.flags.model, "model", app.flags.model, "Speech translation model")
	flags.StringVar(&app.flags.apiBaseURL, "api-base-url", app.flags.apiBaseURL, "Override the translation API base URL (also OPENAI_BASE_URL)")
}

func (a *appState) setupIO(cmd *cobra.Command) {
	a.logger = logging.New(logging.Options{Verbose: a.verbose, JSON: a.jsonLogs})
	a.in = cmd.InOrStdin()
	a.out = cmd.OutOrStdout()
	a.errOut = cmd.ErrOrStderr()
}

// loadConfig reads --config when given, otherwise the per-user file if present.
func (a *appState) loadConfig() (config.Config, error) {
	if strings.TrimSpace(a.configPath) != "" {
		path, err := platform.ResolveConfigPath(a.configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg, err := config.Load(path)
		if err != nil {
			return config.Config{}, fmt.Errorf("load config %s: %w", path, err)
		}
		a.log().Debug("loaded config", zap.String("path", path))
		return cfg, nil
	}

	path, err := platform.ResolveConfigPath("")
	if err != nil {
		a.log().Debug("no default config location", zap.Error(err))
		return config.Default(), nil
	}
	return config.LoadOptional(path)
}

func applyFlags(cfg config.Config, cmd *cobra.Command, values flagValues) config.Config {
	changed := func(name string) bool {
		return cmd.Flags().Changed(name)
	}

	if changed("input-dir") {
		cfg.Paths.InputDirectory = values.inputDir
	}
	if changed("ext") {
		cfg.Paths.VideoExtension = values.extension
	}
	if changed("output-dir") {
		cfg.Paths.OutputDirectory = values.outputDir
	}
	if changed("temp-dir") {
		cfg.Paths.TempDirectory = values.tempDir
	}
	if changed("ffmpeg") {
		cfg.FFmpeg.Path = values.ffmpegPath
	}
	if changed("model") {
		cfg.Translation.Model = values.model
	}
	if changed("api-base-url") {
		cfg.Translation.BaseURL = values.apiBaseURL
	}
	if changed("timeout") {
		cfg.Timeout = values.timeout
	}
	return cfg
}

func (a *appState) runDefault(ctx context.Context) error {
	preflightFn := a.preflightFn
	if preflightFn == nil {
		preflightFn = a.ensurePipelineReady
	}

	selectFn := a.selectFn
	if selectFn == nil {
		selectFn = a.selectTarget
	}

	extractFn := a.extractFn
	if extractFn == nil {
		extractFn = a.extractAudio
	}

	translateFn := a.translateFn
	if translateFn == nil {
		translateFn = a.translateAndSave
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := preflightFn(ctx); err != nil {
		return err
	}

	target := selectFn(a.inReader(), a.errWriter())
	if !fileExists(target) {
		a.log().Error("failed to find video clip to translate")
		return ErrNoTarget
	}

	audioPath, err := extractFn(ctx, target)
	if err != nil {
		return err
	}
	if !fileExists(audioPath) {
		a.log().Error("failed to split audio from video clip", zap.String("audio", audioPath))
		return ErrNoAudio
	}

	savedPath, err := translateFn(ctx, audioPath)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.outWriter(), savedPath)
	return nil
}

func (a *appState) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if a.cfg.Timeout > 0 {
		return context.WithTimeout(ctx, a.cfg.Timeout)
	}
	return context.WithCancel(ctx)
}

func (a *appState) log() *zap.Logger {
	if a.logger == nil {
		return zap.NewNop()
	}
	return a.logger
}

func (a *appState) progressEnabled() bool {
	if a.noProgress {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

func (a *appState) inReader() io.Reader {
	if a.in == nil {
		return os.Stdin
	}
	return a.in
}

func (a *appState) outWriter() io.Writer {
	if a.out == nil {
		return os.Stdout
	}
	return a.out
}

func (a *appState) errWriter() io.Writer {
	if a.errOut == nil {
		return os.Stderr
	}
	return a.errOut
}

func fileExists(path string) bool {
	if strings.TrimSpace(path) == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

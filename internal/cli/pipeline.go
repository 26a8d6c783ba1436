package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fmueller/vidtranslate/internal/extract"
	"github.com/fmueller/vidtranslate/internal/selector"
	"github.com/fmueller/vidtranslate/internal/translate"
	"go.uber.org/zap"
)

func (a *appState) ensurePipelineReady(ctx context.Context) error {
	if err := a.newExtractor().VerifyInstalled(ctx); err != nil {
		return err
	}
	if _, err := a.newTranslator(); err != nil {
		return err
	}
	return nil
}

func (a *appState) newSelector() *selector.Selector {
	return selector.New(a.cfg.Paths.InputDirectory, a.cfg.Paths.VideoExtension, a.log())
}

func (a *appState) newExtractor() *extract.Extractor {
	return extract.New(
		extract.WithFFmpegPath(a.cfg.FFmpeg.Path),
		extract.WithTempDir(a.cfg.Paths.TempDirectory),
		extract.WithLogger(a.log()),
	)
}

func (a *appState) newTranslator() (translate.Translator, error) {
	cfg := translate.OpenAIConfigFromEnv()
	if a.cfg.Translation.BaseURL != "" {
		cfg.BaseURL = a.cfg.Translation.BaseURL
	}
	cfg.Model = a.cfg.Translation.Model
	cfg.Logger = a.log()

	translator, err := translate.NewOpenAITranslator(cfg)
	if err != nil {
		return nil, fmt.Errorf("configure translation client: %w", err)
	}
	return translator, nil
}

func (a *appState) selectTarget(in io.Reader, prompt io.Writer) string {
	return a.newSelector().Select(in, prompt)
}

func (a *appState) extractAudio(ctx context.Context, videoPath string) (string, error) {
	res, err := a.newExtractor().Extract(ctx, videoPath)
	if err != nil {
		return "", err
	}
	return res.Path, nil
}

func (a *appState) translateAndSave(ctx context.Context, audioPath string) (string, error) {
	translator, err := a.newTranslator()
	if err != nil {
		return "", err
	}

	svc := &translate.Service{
		Translator: &progressTranslator{next: translator, enabled: a.progressEnabled(), logger: a.log()},
		OutputDir:  a.cfg.Paths.OutputDirectory,
		Logger:     a.log(),
	}
	return svc.TranslateAndSave(ctx, audioPath)
}

// progressTranslator shows a spinner while the remote call is in flight.
type progressTranslator struct {
	next    translate.Translator
	enabled bool
	logger  *zap.Logger
}

func (p *progressTranslator) Translate(ctx context.Context, audioPath string) (translate.Response, error) {
	stopSpinner := startSpinner(p.enabled, "Translating")
	started := time.Now()

	resp, err := p.next.Translate(ctx, audioPath)
	stopSpinner()
	if err != nil {
		p.logger.Warn("translation failed", zap.Duration("elapsed", time.Since(started)), zap.Error(err))
		return translate.Response{}, err
	}

	p.logger.Info("translation finished",
		zap.Duration("elapsed", time.Since(started)),
		zap.String("language", resp.Language),
		zap.Float64("audio_seconds", resp.Duration),
	)
	return resp, nil
}

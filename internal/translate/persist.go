package translate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const (
	DefaultOutputDir = "./translations"
	OutputSuffix     = "_translation.txt"
)

var ErrMissingText = errors.New("translation response has no text")

// FormatSentences puts every sentence ending in ". " on its own line.
// Abbreviations and decimals are split too.
func FormatSentences(text string) string {
	return strings.ReplaceAll(text, ". ", ".\n")
}

func OutputPath(outputDir, audioPath string) string {
	if strings.TrimSpace(outputDir) == "" {
		outputDir = DefaultOutputDir
	}
	base := filepath.Base(audioPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outputDir, stem+OutputSuffix)
}

// Save writes the formatted translation next to its siblings in outputDir.
// Nothing is written when the response carries no text.
func Save(outputDir, audioPath string, resp Response, logger *zap.Logger) (string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if resp.Text == "" {
		return "", fmt.Errorf("%w (language=%q, duration=%.2fs)", ErrMissingText, resp.Language, resp.Duration)
	}

	savePath := OutputPath(outputDir, audioPath)
	if err := os.MkdirAll(filepath.Dir(savePath), 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(savePath, []byte(FormatSentences(resp.Text)), 0o644); err != nil {
		return "", fmt.Errorf("write translation: %w", err)
	}

	logger.Info("translation saved", zap.String("path", savePath))
	return savePath, nil
}

// Service translates one audio file and saves the result under OutputDir.
type Service struct {
	Translator Translator
	OutputDir  string
	Logger     *zap.Logger
}

// TranslateAndSave returns the path of the written translation file.
func (s *Service) TranslateAndSave(ctx context.Context, audioPath string) (string, error) {
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if s.Translator == nil {
		return "", errors.New("no translator configured")
	}

	logger.Info("translating and saving", zap.String("audio", audioPath))
	resp, err := s.Translator.Translate(ctx, audioPath)
	if err != nil {
		return "", err
	}

	return Save(s.OutputDir, audioPath, resp, logger)
}

// Package translate sends extracted audio to the speech translation API and
// stores the resulting text.
package translate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const (
	DefaultModel = openai.Whisper1

	APIKeyEnv  = "OPENAI_API_KEY"
	BaseURLEnv = "OPENAI_BASE_URL"
)

var ErrMissingAPIKey = errors.New(APIKeyEnv + " is not set")

// Response is the part of the API reply the pipeline cares about.
type Response struct {
	Text     string
	Language string
	Duration float64
}

// Translator turns an audio file into English text.
type Translator interface {
	Translate(ctx context.Context, audioPath string) (Response, error)
}

type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// OpenAIConfigFromEnv fills the API key and base URL from the environment.
func OpenAIConfigFromEnv() OpenAIConfig {
	return OpenAIConfig{
		APIKey:  strings.TrimSpace(os.Getenv(APIKeyEnv)),
		BaseURL: strings.TrimSpace(os.Getenv(BaseURLEnv)),
	}
}

type OpenAITranslator struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewOpenAITranslator fails with ErrMissingAPIKey when cfg has no key.
func NewOpenAITranslator(cfg OpenAIConfig) (*OpenAITranslator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.BaseURL = strings.TrimRight(base, "/")
	}
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &OpenAITranslator{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		logger: logger,
	}, nil
}

func (t *OpenAITranslator) Translate(ctx context.Context, audioPath string) (Response, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return Response{}, fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	t.logger.Debug("requesting translation", zap.String("audio", audioPath), zap.String("model", t.model))
	resp, err := t.client.CreateTranslation(ctx, openai.AudioRequest{
		Model:    t.model,
		FilePath: audioPath,
		Reader:   f,
	})
	if err != nil {
		return Response{}, fmt.Errorf("translate %s: %w", audioPath, err)
	}

	return Response{
		Text:     resp.Text,
		Language: resp.Language,
		Duration: resp.Duration,
	}, nil
}

package ai

import (
	"errors"
	"time"

	"github.com/rs/zerolog"
)

const defaultMetisBaseURL = "https://api.metisai.ir/openai/v1"

// NewMetisAdapter targets Metis's OpenAI-compatible gateway with the same SDK.
func NewMetisAdapter(apiKey, model, base string, maxOut int, timeout time.Duration, logger *zerolog.Logger) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("metis api key empty")
	}
	if base == "" {
		base = defaultMetisBaseURL
	}
	return NewOpenAIAdapter(OpenAIOptions{
		Provider:  "metis",
		APIKey:    apiKey,
		BaseURL:   base,
		Model:     model,
		MaxOutput: maxOut,
		Timeout:   timeout,
	}, logger)
}

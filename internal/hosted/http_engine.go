package hosted

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const huggingFaceInference = "https://api-inference.huggingface.co/models/"

// HTTPEngine calls an inference server speaking the Hugging Face
// text2text protocol.
type HTTPEngine struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

type inferenceRequest struct {
	Inputs     []string          `json:"inputs"`
	Parameters map[string]string `json:"parameters,omitempty"`
}

type inferenceOutput struct {
	TranslationText string `json:"translation_text"`
	GeneratedText   string `json:"generated_text"`
}

type inferenceError struct {
	Error string `json:"error"`
}

// NewHTTPEngine creates an engine posting to config.Endpoint, or to the
// hosted inference API for config.Model when no endpoint is set.
func NewHTTPEngine(config *Config) (*HTTPEngine, error) {
	endpoint := config.Endpoint
	if endpoint == "" {
		model := config.Model
		if model == "" {
			model = DefaultModel
		}
		endpoint = huggingFaceInference + model
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("invalid hosted endpoint %q: %w", endpoint, err)
	}

	return &HTTPEngine{
		endpoint: endpoint,
		apiKey:   config.APIKey,
		client:   &http.Client{},
	}, nil
}

// Name returns the engine name
func (e *HTTPEngine) Name() string {
	return "http"
}

// Translate posts the tagged batch and decodes one output per sentence
func (e *HTTPEngine) Translate(ctx context.Context, batch Batch) ([]string, error) {
	body, err := json.Marshal(inferenceRequest{
		Inputs: batch.Tagged(),
		Parameters: map[string]string{
			"src_lang": batch.Source,
			"tgt_lang": batch.Target,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inference request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr inferenceError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("inference server returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("inference server returned %d", resp.StatusCode)
	}

	var outputs []inferenceOutput
	if err := json.Unmarshal(data, &outputs); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	texts := make([]string, len(outputs))
	for i, o := range outputs {
		texts[i] = o.TranslationText
		if texts[i] == "" {
			texts[i] = o.GeneratedText
		}
	}
	if err := checkCount(batch, texts); err != nil {
		return nil, err
	}
	return texts, nil
}

package hosted

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
)

const defaultFunction = "agritranslate-indictrans2"

// invoker is the part of the Lambda client the engine uses
type invoker interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// LambdaEngine invokes a translator Lambda function in chunked mode
type LambdaEngine struct {
	client   invoker
	function string
}

// translatorRequest is the request format of translator Lambdas
type translatorRequest struct {
	Chunks     [][]string `json:"chunks"`
	SourceLang string     `json:"source_lang,omitempty"`
	TargetLang string     `json:"target_lang,omitempty"`
}

// translatorResponse is the response format of translator Lambdas
type translatorResponse struct {
	Translations [][]string `json:"translations"`
	Error        string     `json:"error,omitempty"`
}

// NewLambdaEngine creates an engine using the default AWS credential chain
func NewLambdaEngine(ctx context.Context, cfg *Config) (*LambdaEngine, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return newLambdaEngine(lambda.NewFromConfig(awsCfg), cfg.Function), nil
}

func newLambdaEngine(client invoker, function string) *LambdaEngine {
	if function == "" {
		function = defaultFunction
	}
	return &LambdaEngine{client: client, function: function}
}

// Name returns the engine name
func (e *LambdaEngine) Name() string {
	return "lambda"
}

// Translate sends the batch as a single chunk
func (e *LambdaEngine) Translate(ctx context.Context, batch Batch) ([]string, error) {
	payload, err := json.Marshal(translatorRequest{
		Chunks:     [][]string{batch.Sentences},
		SourceLang: batch.Source,
		TargetLang: batch.Target,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	result, err := e.client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName: &e.function,
		Payload:      payload,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke %s: %w", e.function, err)
	}
	if result.FunctionError != nil {
		return nil, fmt.Errorf("lambda error: %s", *result.FunctionError)
	}

	var resp translatorResponse
	if err := json.Unmarshal(result.Payload, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("translator error: %s", resp.Error)
	}
	if len(resp.Translations) != 1 {
		return nil, fmt.Errorf("expected 1 chunk, got %d", len(resp.Translations))
	}

	if err := checkCount(batch, resp.Translations[0]); err != nil {
		return nil, err
	}
	return resp.Translations[0], nil
}

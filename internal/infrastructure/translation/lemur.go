package translation

import (
	"context"
	"fmt"
	"strings"

	"github.com/AssemblyAI/assemblyai-go-sdk"
)

const lemurMaxOutput = 4000

// LeMURClient asks an AssemblyAI LeMUR model to translate the text.
type LeMURClient struct {
	client *assemblyai.Client
	model  string
}

// NewLeMURClient creates a LeMUR task client
func NewLeMURClient(apiKey, model string) *LeMURClient {
	c := &LeMURClient{model: model}
	if apiKey != "" {
		c.client = assemblyai.NewClient(apiKey)
	}
	return c
}

func (c *LeMURClient) Name() string { return "lemur" }

// Translate asks the LeMUR task endpoint for a translation
func (c *LeMURClient) Translate(ctx context.Context, req Request) (string, error) {
	if c.client == nil {
		return "", fmt.Errorf("%w: AAI_API_KEY is empty", ErrNotConfigured)
	}

	var params assemblyai.LeMURTaskParams
	params.Prompt = assemblyai.String(translationPrompt(req))
	params.InputText = assemblyai.String(req.Text)
	params.FinalModel = assemblyai.LeMURModel(c.model)
	params.MaxOutputSize = assemblyai.Int64(lemurMaxOutput)
	params.Temperature = assemblyai.Float64(0)

	response, err := c.client.LeMUR.Task(ctx, params)
	if err != nil {
		return "", fmt.Errorf("lemur task failed: %w", err)
	}
	if response.Response == nil || strings.TrimSpace(*response.Response) == "" {
		return "", ErrEmptyResult
	}
	return strings.TrimSpace(*response.Response), nil
}

func translationPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("Translate the input text")
	if req.SourceLang != "" {
		fmt.Fprintf(&b, " from %s", NormalizeLang(req.SourceLang))
	}
	fmt.Fprintf(&b, " to %s. ", NormalizeLang(req.TargetLang))
	b.WriteString("Reply with the translation only, keeping line breaks and formatting, with no preamble.")
	return b.String()
}

package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DeepLClient calls the DeepL v2 translate endpoint.
type DeepLClient struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// NewDeepLClient creates a DeepL client posting to endpoint
func NewDeepLClient(apiKey, endpoint string, timeout time.Duration) *DeepLClient {
	return &DeepLClient{
		apiKey:     apiKey,
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type deepLRequest struct {
	Text       []string `json:"text"`
	TargetLang string   `json:"target_lang"`
	SourceLang string   `json:"source_lang,omitempty"`
}

type deepLResponse struct {
	Translations []struct {
		DetectedSourceLanguage string `json:"detected_source_language"`
		Text                   string `json:"text"`
	} `json:"translations"`
	Message string `json:"message"`
}

func (c *DeepLClient) Name() string { return "deepl" }

// Translate calls the DeepL translate endpoint
func (c *DeepLClient) Translate(ctx context.Context, req Request) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: DEEPL_API_KEY is empty", ErrNotConfigured)
	}

	body, err := json.Marshal(deepLRequest{
		Text:       []string{req.Text},
		TargetLang: NormalizeLang(req.TargetLang),
		SourceLang: sourceLang(req.SourceLang),
	})
	if err != nil {
		return "", fmt.Errorf("encode deepl request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build deepl request: %w", err)
	}
	httpReq.Header.Set("Authorization", "DeepL-Auth-Key "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("deepl request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read deepl response: %w", err)
	}

	var decoded deepLResponse
	if resp.StatusCode != http.StatusOK {
		if json.Unmarshal(raw, &decoded) == nil && decoded.Message != "" {
			return "", fmt.Errorf("deepl returned %d: %s", resp.StatusCode, decoded.Message)
		}
		return "", fmt.Errorf("deepl returned %d", resp.StatusCode)
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("decode deepl response: %w", err)
	}
	if len(decoded.Translations) == 0 {
		return "", ErrEmptyResult
	}
	return decoded.Translations[0].Text, nil
}

// sourceLang drops regional variants, which DeepL rejects as a source.
func sourceLang(code string) string {
	normalized := NormalizeLang(code)
	if len(normalized) > 2 {
		return normalized[:2]
	}
	return normalized
}

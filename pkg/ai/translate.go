package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultTranslateBaseURL = "https://translation.googleapis.com/language/translate/v2"

// TranslateClient calls the Google Cloud Translation REST API.
type TranslateClient struct {
	apiKey  string
	baseURL string
	http    *resty.Client
}

// NewTranslateClient constructs a client with the provided API key.
func NewTranslateClient(apiKey string) (*TranslateClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("translate api key required")
	}
	return &TranslateClient{
		apiKey:  apiKey,
		baseURL: defaultTranslateBaseURL,
		http:    resty.New().SetTimeout(15 * time.Second),
	}, nil
}

// SetBaseURL overrides the API endpoint, used by tests.
func (c *TranslateClient) SetBaseURL(url string) {
	c.baseURL = strings.TrimRight(url, "/")
}

type translateResponse struct {
	Data struct {
		Translations []struct {
			TranslatedText string `json:"translatedText"`
		} `json:"translations"`
	} `json:"data"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// TranslateSentence returns the sentence translated into targetLang.
// Plain-text format keeps punctuation and adds no quoting.
func (c *TranslateClient) TranslateSentence(ctx context.Context, sentence, targetLang string) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetFormData(map[string]string{
			"q":      sentence,
			"target": targetLang,
			"format": "text",
		}).
		Post(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("call translate api: %w", err)
	}
	var parsed translateResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil && !resp.IsError() {
		return "", fmt.Errorf("decode translate response: %w", err)
	}
	if resp.IsError() {
		return "", &UpstreamError{Status: resp.StatusCode(), Message: parsed.Error.Message}
	}
	if len(parsed.Data.Translations) == 0 {
		return "", &UpstreamError{Status: resp.StatusCode(), Message: "empty translation response"}
	}
	return parsed.Data.Translations[0].TranslatedText, nil
}

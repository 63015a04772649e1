package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"
)

/* ─── OpenAI HTTP client ─────────────────────────────────────────────── */

// aiCompleter sends a chat conversation to a generative-AI endpoint and returns
// the raw JSON content of the reply, constrained to schema.
type aiCompleter interface {
	complete(ctx context.Context, messages []openAIMessage, schema responseSchema) (string, error)
}

// openAIMessage is a single message in the OpenAI chat completions request.
// Content is either a string or a []contentPart (text plus images).
type openAIMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// contentPart is one element of a multi-part user message.
type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

// responseSchema is a named strict JSON schema for structured output.
type responseSchema struct {
	Name   string
	Schema map[string]any
}

// openAIRequest is the request body for the OpenAI chat completions API.
type openAIRequest struct {
	Model          string          `json:"model"`
	Messages       []openAIMessage `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat map[string]any  `json:"response_format"`
}

// openAIClient talks to the chat completions API over raw net/http.
type openAIClient struct {
	baseURL string // overridable for tests
	apiKey  string
	model   string
	http    *http.Client
}

func newOpenAIClient(baseURL, apiKey, model string) *openAIClient {
	return &openAIClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// complete sends a chat completions request and returns the content string
// from the first choice.
func (o *openAIClient) complete(ctx context.Context, messages []openAIMessage, schema responseSchema) (string, error) {
	if o.apiKey == "" {
		return "", errors.New("OPENAI_API_KEY not set")
	}

	reqBody := openAIRequest{
		Model:       o.model,
		Messages:    messages,
		Temperature: 0,
		ResponseFormat: map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   schema.Name,
				"strict": true,
				"schema": schema.Schema,
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/v1/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai returned status %d: %s", resp.StatusCode, string(respBytes))
	}

	// Parse the response to extract choices[0].message.content
	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
				Refusal string `json:"refusal"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBytes, &result); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	if r := result.Choices[0].Message.Refusal; r != "" {
		return "", fmt.Errorf("model refused: %s", r)
	}

	return result.Choices[0].Message.Content, nil
}

// completeInto runs a completion and decodes the reply into out.
func completeInto(ctx context.Context, ai aiCompleter, messages []openAIMessage, schema responseSchema, out any) error {
	content, err := ai.complete(ctx, messages, schema)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("decode %s: %w", schema.Name, err)
	}
	return nil
}

/* ─── Schema helpers ─────────────────────────────────────────────────── */

// object builds a strict object schema: every property is required and no
// extra properties are allowed.
func object(props map[string]any) map[string]any {
	required := make([]string, 0, len(props))
	for name := range props {
		required = append(required, name)
	}
	sort.Strings(required)
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

func typed(t string) map[string]any { return map[string]any{"type": t} }

func arrayOf(items map[string]any) map[string]any {
	return map[string]any{"type": "array", "items": items}
}

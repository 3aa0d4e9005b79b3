// Package anthropic implements the pipeline's LLM collaborator on the
// Anthropic Messages API: continuity judgment, chain meta info, multi-theme
// summarization, and keyword extraction.
package anthropic

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/becomeliminal/memtier/memory"
)

// Config configures the backend.
type Config struct {
	// Model is the Claude model to use. Empty selects DefaultModel.
	Model string

	// MaxTokens is the maximum response tokens. Zero selects 1024; the
	// backend's outputs are short structured fragments, not prose.
	MaxTokens int64
}

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-sonnet-4-20250514"

// Backend is a memory.Backend over the Anthropic Messages API.
type Backend struct {
	client    *anthropic.Client
	model     string
	maxTokens int64
}

// New creates a backend with the given Anthropic client.
func New(client *anthropic.Client, cfg Config) *Backend {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1024
	}
	return &Backend{
		client:    client,
		model:     model,
		maxTokens: maxTokens,
	}
}

// CheckContinuity judges whether curr continues the exchange prev belongs to.
func (b *Backend) CheckContinuity(ctx context.Context, prev, curr *memory.Page) (bool, error) {
	if prev == nil {
		return false, nil
	}

	prompt := fmt.Sprintf(`Previous exchange:
User: %s
Assistant: %s

Current exchange:
User: %s
Assistant: %s

Does the current exchange directly continue the conversation of the previous one (same ongoing topic or task)? Answer with exactly "true" or "false".`,
		prev.UserInput, prev.AgentResponse, curr.UserInput, curr.AgentResponse)

	text, err := b.complete(ctx, continuitySystemPrompt, prompt)
	if err != nil {
		return false, fmt.Errorf("check continuity: %w", err)
	}
	return parseBool(text), nil
}

// GeneratePageMetaInfo produces chain-level descriptive text for a page. A
// non-empty prevMeta is evolved to cover the new exchange; an empty one
// starts a fresh description.
func (b *Backend) GeneratePageMetaInfo(ctx context.Context, prevMeta string, page *memory.Page) (string, error) {
	var prompt string
	if prevMeta != "" {
		prompt = fmt.Sprintf(`Current thread description:
%s

New exchange in the same thread:
User: %s
Assistant: %s

Update the thread description so it still covers the whole thread including this exchange. Reply with the updated description only.`,
			prevMeta, page.UserInput, page.AgentResponse)
	} else {
		prompt = fmt.Sprintf(`New conversation thread:
User: %s
Assistant: %s

Write a one-sentence description of what this thread is about. Reply with the description only.`,
			page.UserInput, page.AgentResponse)
	}

	text, err := b.complete(ctx, metaInfoSystemPrompt, prompt)
	if err != nil {
		return "", fmt.Errorf("generate page meta info: %w", err)
	}
	return text, nil
}

// GenerateMultiSummary splits batch text into theme-labeled summaries.
// Returning zero themes is a valid outcome.
func (b *Backend) GenerateMultiSummary(ctx context.Context, text string) ([]memory.ThemeSummary, error) {
	prompt := fmt.Sprintf(`Conversation batch:
%s

Identify the distinct themes discussed in this batch. For each theme produce a short label, a two-to-three sentence summary, and up to five keywords. Respond with JSON only, in the form:
{"summaries": [{"theme": "...", "content": "...", "keywords": ["..."]}]}

If the batch has no identifiable theme, respond with {"summaries": []}.`, text)

	raw, err := b.complete(ctx, summarySystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate multi summary: %w", err)
	}

	summaries, err := parseMultiSummary(raw)
	if err != nil {
		return nil, fmt.Errorf("parse multi summary response: %w", err)
	}
	return summaries, nil
}

// ExtractKeywords pulls salient keywords out of free text.
func (b *Backend) ExtractKeywords(ctx context.Context, text string) ([]string, error) {
	prompt := fmt.Sprintf(`Text:
%s

Extract up to ten salient keywords. Respond with a JSON array of strings only, e.g. ["keyword one", "keyword two"].`, text)

	raw, err := b.complete(ctx, keywordSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("extract keywords: %w", err)
	}

	keywords, err := parseKeywords(raw)
	if err != nil {
		return nil, fmt.Errorf("parse keyword response: %w", err)
	}
	return keywords, nil
}

// complete sends one user turn and returns the concatenated text response.
func (b *Backend) complete(ctx context.Context, system, user string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(b.model),
		MaxTokens: b.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
	}

	resp, err := b.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude API error: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		log.Printf("[LLM] Empty text response from model %s", b.model)
	}
	return text, nil
}

const continuitySystemPrompt = `You judge whether two adjacent conversation exchanges belong to the same ongoing exchange. Answer only "true" or "false".`

const metaInfoSystemPrompt = `You maintain one-sentence running descriptions of conversation threads. Reply with the description text only, no preamble.`

const summarySystemPrompt = `You summarize conversation batches into distinct themes. Respond with valid JSON only, no prose outside the JSON.`

const keywordSystemPrompt = `You extract keywords from text. Respond with a JSON array of strings only.`

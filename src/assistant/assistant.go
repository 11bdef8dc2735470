// Package assistant answers free-text questions about a processed ledger using a
// Gemini chat with the analytics functions as tools.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/username/tradeledger/src/logger"
	"github.com/username/tradeledger/src/models"
)

var (
	ErrNotConfigured = errors.New("assistant is not configured")
	ErrNoAnswer      = errors.New("assistant returned no answer")
)

// maxToolRounds bounds the function-call exchanges of one question.
const maxToolRounds = 8

// Assistant answers a question about the given ledger rows.
type Assistant interface {
	Ask(ctx context.Context, rows []models.NormalizedTransaction, question string) (string, error)
}

type GeminiAssistant struct {
	client *genai.Client
	model  string
	tools  []Tool
}

// NewGeminiAssistant creates a client for the Gemini API. An empty key yields ErrNotConfigured.
func NewGeminiAssistant(ctx context.Context, apiKey, model string) (*GeminiAssistant, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiAssistant{client: client, model: model, tools: Tools()}, nil
}

func (a *GeminiAssistant) Ask(ctx context.Context, rows []models.NormalizedTransaction, question string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Tools:             []*genai.Tool{{FunctionDeclarations: Declarations(a.tools)}},
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction(rows)}}},
	}
	chat, err := a.client.Chats.Create(ctx, a.model, cfg, nil)
	if err != nil {
		return "", fmt.Errorf("start chat: %w", err)
	}

	library := NewLibrary(a.tools, rows)
	parts := []*genai.Part{{Text: question}}
	for round := 0; round < maxToolRounds; round++ {
		resp, err := chat.Send(ctx, parts...)
		if err != nil {
			return "", fmt.Errorf("send to %s: %w", a.model, err)
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			return "", ErrNoAnswer
		}

		calls, text := splitParts(resp.Candidates[0].Content)
		if len(calls) == 0 {
			if text == "" {
				return "", ErrNoAnswer
			}
			return text, nil
		}

		parts = make([]*genai.Part, 0, len(calls))
		for _, call := range calls {
			logger.FromContext(ctx).Debug("Assistant tool call", "function", call.Name, "args", call.Args)
			parts = append(parts, &genai.Part{FunctionResponse: library(ctx, call)})
		}
	}
	return "", fmt.Errorf("%w: too many tool calls", ErrNoAnswer)
}

func splitParts(content *genai.Content) ([]*genai.FunctionCall, string) {
	var calls []*genai.FunctionCall
	var text strings.Builder
	for _, p := range content.Parts {
		if p == nil {
			continue
		}
		if p.FunctionCall != nil {
			calls = append(calls, p.FunctionCall)
			continue
		}
		text.WriteString(p.Text)
	}
	return calls, strings.TrimSpace(text.String())
}

func systemInstruction(rows []models.NormalizedTransaction) string {
	return fmt.Sprintf(`You answer questions about a brokerage transaction ledger of %d rows.
Each row has a posted date, ticker, optional option contract (expiry, strike, Put or Call),
a type such as "Stock Buy" or "Put Sell", quantity, price, fees, amount and an Open or Close status.
Amounts are signed: money received is positive, money paid is negative.
Use the analyzeTrades and calculateStats functions for any figure; never guess numbers.
Answer concisely in plain text.`, len(rows))
}

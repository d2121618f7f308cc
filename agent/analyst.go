// Package agent wraps a generative model into a portfolio analyst that
// comments on rendered review reports.
package agent

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const model = "gemini-2.5-pro"

const systemPrompt = `You are an experienced investment analyst reviewing a
private investor's portfolio report. The report is a markdown document with
per security and aggregated performance figures: invested and received
amounts, current values, profit and loss, ROI, money weighted returns, and
price based risk measures.

Comment on what stands out: concentrations, laggards, stocks trading far
below their recent high, unusually volatile holdings. Be concrete, cite the
figures from the report, and keep it short. Do not invent data that is not
in the report, and do not give regulated financial advice.`

// Analyst is a chat session seeded with a review report. Follow-up
// questions keep the report and earlier answers in context.
type Analyst struct {
	chat *genai.Chat
}

// NewAnalyst creates the model client and the chat session. The API key is
// taken from the environment (GEMINI_API_KEY).
func NewAnalyst(ctx context.Context) (*Analyst, error) {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("creating model client: %w", err)
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}},
	}
	chat, err := client.Chats.Create(ctx, model, config, nil)
	if err != nil {
		return nil, fmt.Errorf("creating chat session: %w", err)
	}
	return &Analyst{chat: chat}, nil
}

// Review sends a rendered report and returns the analyst's commentary.
func (a *Analyst) Review(ctx context.Context, report string) (string, error) {
	return a.ask(ctx, "Here is the portfolio review to analyse:\n\n"+report)
}

// Ask sends a follow-up question about the report already under review.
func (a *Analyst) Ask(ctx context.Context, question string) (string, error) {
	return a.ask(ctx, question)
}

func (a *Analyst) ask(ctx context.Context, text string) (string, error) {
	resp, err := a.chat.Send(ctx, &genai.Part{Text: text})
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from analyst")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidate(reason genai.FinishReason, parts ...genai.Part) *genai.Candidate {
	return &genai.Candidate{
		FinishReason: reason,
		Content:      &genai.Content{Role: "model", Parts: parts},
	}
}

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			candidate(genai.FinishReasonStop, genai.Text("Dear Hiring Team,"), genai.Text("\n\nRegards")),
			candidate(genai.FinishReasonStop, genai.Text("ignored")),
		},
	}

	text, err := responseText(resp)
	require.NoError(t, err)
	assert.Equal(t, "Dear Hiring Team,\n\nRegards", text)
}

func TestResponseText_Failures(t *testing.T) {
	tests := []struct {
		name    string
		resp    *genai.GenerateContentResponse
		blocked bool
		empty   bool
	}{
		{name: "nil response", resp: nil},
		{name: "no candidates", resp: &genai.GenerateContentResponse{}},
		{
			name:    "prompt blocked",
			resp:    &genai.GenerateContentResponse{PromptFeedback: &genai.PromptFeedback{BlockReason: genai.BlockReasonSafety}},
			blocked: true,
		},
		{
			name:    "answer stopped for safety",
			resp:    &genai.GenerateContentResponse{Candidates: []*genai.Candidate{candidate(genai.FinishReasonSafety)}},
			blocked: true,
		},
		{
			name:  "no content",
			resp:  &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonStop}}},
			empty: true,
		},
		{
			name:  "empty text",
			resp:  &genai.GenerateContentResponse{Candidates: []*genai.Candidate{candidate(genai.FinishReasonStop, genai.Text(""))}},
			empty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := responseText(tt.resp)
			require.Error(t, err)

			var blocked *BlockedError
			assert.Equal(t, tt.blocked, errors.As(err, &blocked))
			if tt.empty {
				assert.ErrorIs(t, err, ErrEmptyCompletion)
			}
		})
	}
}

func TestNewGeminiClient_RequiresKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), DefaultGeminiConfig(), "")
	assert.ErrorContains(t, err, "API key is required")
}

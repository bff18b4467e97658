package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
)

type AIService struct {
	client *openai.Client
}

// TaskDraft is an AI-suggested task. Drafts are never persisted directly;
// they are returned to the client for review and submitted through the
// normal creation flow.
type TaskDraft struct {
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Priority       string     `json:"priority"`
	Category       string     `json:"category"`
	EstimatedHours float64    `json:"estimated_hours"`
	DueDate        *time.Time `json:"due_date"`
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		client: openai.NewClient(apiKey),
	}
}

// GenerateTaskDrafts analyzes free text and extracts task drafts using OpenAI
func (s *AIService) GenerateTaskDrafts(ctx context.Context, text string) ([]TaskDraft, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	currentTime := time.Now().Format("2006-01-02 15:04:05")
	prompt := fmt.Sprintf(`You are a task extraction assistant. Extract concrete work tasks from the text below.

Current time: %s

Text:
%s

Return a JSON array of the extracted tasks in this exact shape:
[
  {
    "title": "short task title",
    "description": "detailed description",
    "priority": "one of: low, medium, high, urgent",
    "category": "one of: development, design, testing, documentation, meeting, research, other",
    "estimated_hours": 2.5,
    "due_date": "deadline in ISO8601 (e.g. 2025-10-28T23:59:59Z), or null when no deadline is stated"
  }
]

Rules:
- Return an empty array [] when the text contains no tasks
- Convert relative deadlines ("tomorrow", "next week") to concrete timestamps
- due_date must be an ISO8601 string or null
- Return only the JSON, no surrounding prose`, currentTime, text)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)

	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := resp.Choices[0].Message.Content

	var drafts []TaskDraft
	if err := json.Unmarshal([]byte(content), &drafts); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	return drafts, nil
}

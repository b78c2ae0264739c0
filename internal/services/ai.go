package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/isp-kanban/internal/models"
)

// ChatCompleter is the part of the OpenAI client the drafting service uses
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type AIService struct {
	client ChatCompleter
}

type GeneratedTask struct {
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	Node            string              `json:"node"`
	ResponsibleName string              `json:"responsible_name"`
	Priority        models.TaskPriority `json:"priority"`
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		client: openai.NewClient(apiKey),
	}
}

// NewAIServiceWithClient is used by tests to stub the model
func NewAIServiceWithClient(client ChatCompleter) *AIService {
	return &AIService{client: client}
}

const draftPrompt = `You turn incident reports from an internet service provider's field and support teams into kanban tasks.

Report:
%s

Answer with a JSON array only, no prose:
[
  {
    "title": "short imperative title",
    "description": "what has to be done",
    "node": "network node or site named in the report, empty if none",
    "responsible_name": "technician named in the report, empty if none",
    "priority": "one of Baja, Media, Alta, Crítica"
  }
]

Use Crítica only for outages affecting many customers. Return [] when the report contains no actionable work.`

// DraftTasksFromIncident asks the model for task drafts describing the work in text
func (s *AIService) DraftTasksFromIncident(ctx context.Context, text string) ([]GeneratedTask, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: fmt.Sprintf(draftPrompt, text),
				},
			},
			Temperature: 0.2,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := stripCodeFence(resp.Choices[0].Message.Content)

	var tasks []GeneratedTask
	if err := json.Unmarshal([]byte(content), &tasks); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	return tasks, nil
}

// stripCodeFence removes a markdown ```json fence the model sometimes adds
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

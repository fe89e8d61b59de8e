package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/omarioz/BiyoKaab/pkg/config"

	openai "github.com/sashabaranov/go-openai"
)

const planSystemPrompt = "You are a water management assistant helping farmers and nomads in Somalia manage their water resources efficiently."

const chatSystemPrompt = `You are Biyokaab AI, a helpful water management assistant for farmers and nomads in Somalia.
You help users understand their water systems, provide recommendations, and answer questions about:
- Water usage and conservation
- Irrigation planning
- Livestock watering schedules
- Sensor readings and system health
- Climate and rainfall patterns
- Water storage management

Be concise, practical, and culturally aware. You can respond in Somali or English based on the user's preference.`

// OpenAIPlanner implements PlanGenerator against the OpenAI chat API.
type OpenAIPlanner struct {
	client *openai.Client
	model  string
}

// NewOpenAIPlanner builds a planner from configuration. An empty API key is
// rejected here so callers fail at startup rather than on first request.
func NewOpenAIPlanner(cfg config.OpenAIConfig) (*OpenAIPlanner, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not configured")
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIPlanner{
		client: openai.NewClient(cfg.APIKey),
		model:  model,
	}, nil
}

// GeneratePlan implements PlanGenerator.
func (o *OpenAIPlanner) GeneratePlan(ctx context.Context, pc PlanContext) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: planSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPlanPrompt(pc)},
		},
		Temperature: 0.3,
		MaxTokens:   800,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("empty response returned")
	}
	return content, nil
}

// Chat implements PlanGenerator.
func (o *OpenAIPlanner) Chat(ctx context.Context, messages []ChatMessage, cc *ChatContext) (string, error) {
	system := chatSystemPrompt
	if cc != nil {
		system += fmt.Sprintf(`

Current system context:
- Available water: %g liters
- Daily demand: %g liters
- Storage capacity: %g liters
- Climate: %s
`, cc.AvailableLiters, cc.DailyDemandLiters, cc.StorageCapacity, cc.ClimateInfo)
	}

	chatMessages := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	chatMessages = append(chatMessages, openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleSystem, Content: system,
	})
	for _, msg := range messages {
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role: msg.Role, Content: msg.Content,
		})
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    chatMessages,
		Temperature: 0.7,
		MaxTokens:   1000,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("empty response returned")
	}
	return content, nil
}

// buildPlanPrompt renders the Somali planning prompt from prepared context.
func buildPlanPrompt(pc PlanContext) string {
	var demandLines []string
	for _, u := range pc.DemandUnits {
		demandLines = append(demandLines, fmt.Sprintf("- %s: %d x %s -> %g L/d",
			u.Category, u.Count, u.Name, u.DailyNeedLiters))
	}
	var storageLines []string
	for _, s := range pc.Storages {
		storageLines = append(storageLines, fmt.Sprintf("- %s: %g / %g L (system %s)",
			s.Name, s.CurrentVolumeLiters, s.CapacityLiters, s.SystemID))
	}
	var systemLines []string
	for _, s := range pc.Systems {
		systemLines = append(systemLines, fmt.Sprintf("- %s: %s", s.Name, s.SystemType))
	}

	climateText := "Xog roob: lama hayo."
	if pc.Climate != nil {
		climateText = fmt.Sprintf("Xilli: %s, Roob: %d maalmood.",
			pc.Climate.Season, pc.Climate.DaysUntilRainfall)
	}

	location := "lama cayimin"
	if pc.Profile.LocationID != nil {
		location = *pc.Profile.LocationID
	}

	return fmt.Sprintf(`Samee jadwal biyo oo %d maalmood ah oo ku qoran Soomaali.
Ka fogow khasaaro, mudnee badbaado: dadka -> xoolaha -> dalagga.
Ha xusin AI.

Macluumaad isticmaal:
- Nooca isticmaale: %s
- Goob: %s
- Nidaamyada ceeryaanta:
%s
- Haamaha:
%s
- Baahida biyo maalintii:
%s
- Xaalad cimilada: %s
Wax soo saar: liis maalinle ah oo leh qiyaasta litir, mudnaanta (aad u sare, sare, caadi), sabab kooban, iyo talo kaydin.`,
		pc.HorizonDays,
		pc.Profile.UserType,
		location,
		joinOrNone(systemLines),
		joinOrNone(storageLines),
		joinOrNone(demandLines),
		climateText,
	)
}

func joinOrNone(lines []string) string {
	if len(lines) == 0 {
		return "- lama hayo"
	}
	return strings.Join(lines, "\n")
}

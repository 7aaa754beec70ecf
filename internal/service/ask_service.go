package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"offline-chat-be/internal/apperror"
	"offline-chat-be/internal/dto"
	"offline-chat-be/internal/entity"
	"offline-chat-be/internal/pkg/logger"
	"offline-chat-be/pkg/attachment"
	"offline-chat-be/pkg/events"
	"offline-chat-be/pkg/llm"
	"offline-chat-be/pkg/llm/contextwindow"
)

const (
	MaxSystemPromptRunes = 2000
	StoppedMessage       = "Processing was stopped"
	ImageProvidedMarker  = "[Image was provided]"

	defaultTargetOutputTokens = 2048

	OutcomeCompleted = "completed"
	OutcomeStopped   = "stopped"
	OutcomeFailed    = "failed"
)

type IAskService interface {
	Ask(ctx context.Context, req *dto.AskRequest) (*dto.AskResponse, error)
	Stop(ctx context.Context) (*dto.StopResponse, error)
}

type AskServiceConfig struct {
	Model              string
	MaxContextTokens   int
	TargetOutputTokens int
	Temperature        float64
}

type askService struct {
	chatService        IChatService
	personalityService IPersonalityService
	provider           llm.LLMProvider
	tracker            *GenerationTracker
	budget             contextwindow.Budget
	targetOutput       int
	model              string
	temperature        float64
	analysisPublisher  IPublisherService
	eventPublisher     events.Publisher
	logger             logger.ILogger
	now                func() time.Time
}

func NewAskService(
	chatService IChatService,
	personalityService IPersonalityService,
	provider llm.LLMProvider,
	tracker *GenerationTracker,
	analysisPublisher IPublisherService,
	eventPublisher events.Publisher,
	logger logger.ILogger,
	cfg AskServiceConfig,
) IAskService {
	target := cfg.TargetOutputTokens
	if target <= 0 {
		target = defaultTargetOutputTokens
	}
	return &askService{
		chatService:        chatService,
		personalityService: personalityService,
		provider:           provider,
		tracker:            tracker,
		budget:             contextwindow.NewBudget(cfg.MaxContextTokens),
		targetOutput:       target,
		model:              cfg.Model,
		temperature:        cfg.Temperature,
		analysisPublisher:  analysisPublisher,
		eventPublisher:     eventPublisher,
		logger:             logger,
		now:                time.Now,
	}
}

// TruncateSystemPrompt caps prompt at MaxSystemPromptRunes, preferring to cut
// after a sentence end in the last 50 runes or at a space in the last 20.
func TruncateSystemPrompt(prompt string) (string, bool) {
	runes := []rune(prompt)
	if len(runes) <= MaxSystemPromptRunes {
		return prompt, false
	}

	cut := []rune(strings.TrimSpace(string(runes[:MaxSystemPromptRunes])))
	lastPeriod, lastSpace := -1, -1
	for i, r := range cut {
		switch r {
		case '.':
			lastPeriod = i
		case ' ':
			lastSpace = i
		}
	}

	switch {
	case lastPeriod > MaxSystemPromptRunes-50:
		cut = cut[:lastPeriod+1]
	case lastSpace > MaxSystemPromptRunes-20:
		cut = cut[:lastSpace]
	}
	return string(cut), true
}

// buildMessages lays out system prompt, prior turns and the current user
// message. Stored image payloads are never resent; a marker stands in.
func buildMessages(systemPrompt string, chat *entity.Chat, text string, input attachment.Extracted) []llm.Message {
	messages := []llm.Message{{Role: llm.RoleSystem, Content: systemPrompt}}

	if chat != nil {
		for _, turn := range chat.Conversation {
			var parts []string
			if turn.Question != "" {
				parts = append(parts, turn.Question)
			}
			if turn.HasImage {
				parts = append(parts, ImageProvidedMarker)
			}
			if len(parts) > 0 {
				messages = append(messages, llm.Message{Role: llm.RoleUser, Content: strings.Join(parts, "\n")})
			}
			if turn.Response != "" {
				messages = append(messages, llm.Message{Role: llm.RoleAssistant, Content: turn.Response})
			}
		}
	}

	var parts []string
	if input.Text != "" {
		parts = append(parts, input.Text)
	}
	parts = append(parts, text)
	messages = append(messages, llm.Message{
		Role:    llm.RoleUser,
		Content: strings.Join(parts, "\n\n"),
		Images:  input.Images,
	})
	return messages
}

func (s *askService) resolveSystemPrompt(ctx context.Context, requested string) string {
	if strings.TrimSpace(requested) != "" {
		return requested
	}
	resolved, err := s.personalityService.ResolveSystemPrompt(ctx, "")
	if err != nil {
		s.logger.Warn("ASK", "Failed to resolve personality, using default prompt", map[string]interface{}{
			"error": err.Error(),
		})
		return entity.DefaultPersonalityDetails
	}
	return resolved.SystemPrompt
}

func (s *askService) extractInput(req *dto.AskRequest) attachment.Extracted {
	if req.Attachment != nil {
		return attachment.Extract(req.Attachment.Filename, req.Attachment.ContentType, req.Attachment.Content)
	}
	if image, ok := attachment.DecodeDataURI(req.ImageData); ok {
		return attachment.Extracted{Kind: attachment.KindImage, Images: []string{image}}
	}
	return attachment.Extracted{}
}

func (s *askService) Ask(ctx context.Context, req *dto.AskRequest) (*dto.AskResponse, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, apperror.Validation("text", "message text is required")
	}

	var history *entity.Chat
	if req.ChatId != "" {
		chat, err := s.chatService.Find(ctx, req.ChatId)
		if err != nil {
			return nil, err
		}
		history = chat
	}

	systemPrompt, truncated := TruncateSystemPrompt(s.resolveSystemPrompt(ctx, req.SystemPrompt))
	if truncated {
		s.logger.Warn("ASK", "System prompt truncated", map[string]interface{}{
			"max_runes": MaxSystemPromptRunes,
		})
	}

	input := s.extractInput(req)
	fit := s.budget.Fit(buildMessages(systemPrompt, history, req.Text, input), s.targetOutput)
	if fit.Dropped > 0 {
		s.logger.Info("ASK", "History trimmed to fit context window", map[string]interface{}{
			"chat_id": req.ChatId,
			"dropped": fit.Dropped,
		})
	}

	genCtx, gen := s.tracker.Start(ctx)
	publishEvent(ctx, s.eventPublisher, s.logger, events.GenerationStarted, map[string]interface{}{
		"request_id": gen.Id,
		"chat_id":    req.ChatId,
	})

	started := s.now()
	reply, callErr := s.provider.Chat(genCtx, fit.Messages, llm.WithMaxTokens(fit.OutputTokens), llm.WithTemperature(s.temperature))
	duration := s.now().Sub(started).Seconds()
	accepted := s.tracker.Finish(gen)

	analysis := &dto.GenerationAnalysisMessage{
		RequestId:       gen.Id,
		ChatId:          req.ChatId,
		Model:           s.model,
		DurationSeconds: duration,
		InputTokens:     fit.InputTokens,
		OutputTokens:    contextwindow.EstimateTokens(reply),
		DroppedMessages: fit.Dropped,
		HasImage:        input.HasImage(),
		SystemTruncated: truncated,
		OccurredAt:      s.now().UTC().Format(time.RFC3339),
	}

	if !accepted {
		analysis.Outcome = OutcomeStopped
		s.publishAnalysis(ctx, analysis)
		s.logger.Info("ASK", "Generation discarded after stop", map[string]interface{}{
			"request_id": gen.Id,
			"chat_id":    req.ChatId,
		})
		return &dto.AskResponse{
			ChatId:  req.ChatId,
			Error:   StoppedMessage,
			Stopped: true,
		}, nil
	}

	if callErr != nil {
		analysis.Outcome = OutcomeFailed
		analysis.Error = callErr.Error()
		s.publishAnalysis(ctx, analysis)
		publishEvent(ctx, s.eventPublisher, s.logger, events.GenerationFailed, map[string]interface{}{
			"request_id": gen.Id,
			"chat_id":    req.ChatId,
			"error":      callErr.Error(),
		})
		if errors.Is(callErr, context.Canceled) {
			return nil, &apperror.CancelledError{Reason: StoppedMessage}
		}
		return nil, &apperror.NetworkError{Op: "Model error", Err: callErr}
	}

	turn := &entity.Turn{
		Timestamp: s.now(),
		Question:  req.Text,
		Response:  reply,
		HasImage:  req.Attachment != nil || req.ImageData != "",
	}
	if req.ImageData != "" {
		imageData := req.ImageData
		turn.ImageData = &imageData
	}

	chat, err := s.chatService.AppendTurn(ctx, req.ChatId, turn)
	if err != nil {
		return nil, err
	}

	analysis.ChatId = chat.Id
	analysis.Outcome = OutcomeCompleted
	s.publishAnalysis(ctx, analysis)

	return &dto.AskResponse{
		Response:     reply,
		ChatId:       chat.Id,
		Conversation: ToTurnResponses(chat.Conversation),
		Performance: &dto.Performance{
			DurationSeconds: duration,
			InputTokens:     fit.InputTokens,
			OutputTokens:    analysis.OutputTokens,
			DroppedMessages: fit.Dropped,
		},
	}, nil
}

func (s *askService) Stop(ctx context.Context) (*dto.StopResponse, error) {
	gen := s.tracker.Stop()
	if gen == nil {
		return &dto.StopResponse{Message: "No request in progress", Stopped: false}, nil
	}

	s.logger.Info("ASK", "Generation stop requested", map[string]interface{}{
		"request_id": gen.Id,
	})
	publishEvent(ctx, s.eventPublisher, s.logger, events.GenerationStopped, map[string]interface{}{
		"request_id": gen.Id,
	})

	return &dto.StopResponse{Message: "Processing stop requested", Stopped: true}, nil
}

// publishAnalysis is best effort; the analysis pipeline is diagnostic only.
func (s *askService) publishAnalysis(ctx context.Context, msg *dto.GenerationAnalysisMessage) {
	if s.analysisPublisher == nil {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := s.analysisPublisher.Publish(ctx, payload); err != nil {
		s.logger.Warn("ASK", "Failed to publish analysis message", map[string]interface{}{
			"request_id": msg.RequestId,
			"error":      err.Error(),
		})
	}
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"offline-chat-be/internal/dto"
	"offline-chat-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
)

const (
	analysisFilePrefix = "generation_"
	analysisLogLimit   = 200
)

// AnalysisLog is the isolated log the analysis pipeline writes to.
type AnalysisLog interface {
	logger.ILogger
	Truncate() error
}

type IAnalysisService interface {
	// Consume subscribes to the analysis topic and writes one file per
	// generation until ctx is done.
	Consume(ctx context.Context) error
	List(ctx context.Context) (*dto.AnalysisListResponse, error)
	Clear(ctx context.Context) (*dto.ClearAnalysisResponse, error)
}

type analysisService struct {
	subscriber  message.Subscriber
	topicName   string
	dir         string
	analysisLog AnalysisLog
	logger      logger.ILogger
}

func NewAnalysisService(
	subscriber message.Subscriber,
	topicName string,
	dir string,
	analysisLog AnalysisLog,
	logger logger.ILogger,
) IAnalysisService {
	return &analysisService{
		subscriber:  subscriber,
		topicName:   topicName,
		dir:         dir,
		analysisLog: analysisLog,
		logger:      logger,
	}
}

func (as *analysisService) Consume(ctx context.Context) error {
	if err := os.MkdirAll(as.dir, 0o755); err != nil {
		return err
	}

	messages, err := as.subscriber.Subscribe(ctx, as.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			as.processMessage(msg)
		}
	}()

	return nil
}

func (as *analysisService) processMessage(msg *message.Message) {
	// Malformed payloads are acked; redelivery would never fix them.
	defer msg.Ack()

	var payload dto.GenerationAnalysisMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		as.logger.Error("ANALYSIS", "Failed to unmarshal analysis message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		return
	}

	if err := as.writeFile(&payload); err != nil {
		as.logger.Error("ANALYSIS", "Failed to write analysis file", map[string]interface{}{
			"request_id": payload.RequestId,
			"error":      err.Error(),
		})
	}

	as.analysisLog.Info("ANALYSIS", "Generation "+payload.Outcome, map[string]interface{}{
		"request_id":       payload.RequestId,
		"chat_id":          payload.ChatId,
		"model":            payload.Model,
		"outcome":          payload.Outcome,
		"duration_seconds": payload.DurationSeconds,
		"input_tokens":     payload.InputTokens,
		"output_tokens":    payload.OutputTokens,
		"dropped_messages": payload.DroppedMessages,
		"has_image":        payload.HasImage,
		"system_truncated": payload.SystemTruncated,
		"error":            payload.Error,
	})
}

func (as *analysisService) writeFile(payload *dto.GenerationAnalysisMessage) error {
	stamp := time.Now().UTC().Format("20060102T150405.000000000")
	name := fmt.Sprintf("%s%s_%s.json", analysisFilePrefix, stamp, payload.RequestId)

	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(as.dir, name), b, 0o644)
}

func (as *analysisService) files() ([]string, error) {
	entries, err := os.ReadDir(as.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), analysisFilePrefix) {
			continue
		}
		names = append(names, e.Name())
	}
	// Names embed the timestamp, so reverse order is newest first.
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

func (as *analysisService) List(ctx context.Context) (*dto.AnalysisListResponse, error) {
	names, err := as.files()
	if err != nil {
		return nil, err
	}

	logs, err := as.analysisLog.GetLogs("", analysisLogLimit, 0)
	if err != nil {
		return nil, err
	}
	entries := make([]interface{}, 0, len(logs))
	for _, l := range logs {
		entries = append(entries, l)
	}

	return &dto.AnalysisListResponse{
		Files:   names,
		Entries: entries,
	}, nil
}

func (as *analysisService) Clear(ctx context.Context) (*dto.ClearAnalysisResponse, error) {
	names, err := as.files()
	if err != nil {
		return nil, err
	}

	deleted := make([]string, 0, len(names))
	for _, name := range names {
		if err := os.Remove(filepath.Join(as.dir, name)); err != nil && !os.IsNotExist(err) {
			as.logger.Warn("ANALYSIS", "Failed to remove analysis file", map[string]interface{}{
				"file":  name,
				"error": err.Error(),
			})
			continue
		}
		deleted = append(deleted, name)
	}

	if err := as.analysisLog.Truncate(); err != nil {
		return nil, err
	}

	as.logger.Info("ANALYSIS", "Analysis data cleared", map[string]interface{}{
		"count": len(deleted),
	})

	return &dto.ClearAnalysisResponse{
		Message:      fmt.Sprintf("Cleared %d analysis files", len(deleted)),
		DeletedFiles: deleted,
		Count:        len(deleted),
	}, nil
}

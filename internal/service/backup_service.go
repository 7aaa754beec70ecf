package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"offline-chat-be/internal/dto"
	"offline-chat-be/internal/entity"
	"offline-chat-be/internal/pkg/logger"
	"offline-chat-be/internal/repository/contract"
	"offline-chat-be/internal/repository/specification"
	"offline-chat-be/internal/repository/unitofwork"
	"offline-chat-be/pkg/events"
)

const (
	PathChats          = "conversations/chats.json"
	PathChatCategories = "conversations/categories.json"
	PathNotes          = "notes/notes.json"
	PathNoteCategories = "notes/categories.json"
	PathPersonalities  = "personalities/personalities.json"
	PathPreferences    = "settings/preferences.json"
	PathPromptHistory  = "settings/prompt_history.json"

	backupReadme = "Offline chat backup. Each entry in \"structure\" is the JSON text of one " +
		"collection, keyed by a folder-like path. Attachment payloads are not included; " +
		"turns that carried one keep the marker \"" + entity.AttachmentPlaceholder + "\"."
)

type IBackupService interface {
	Export(ctx context.Context) (*dto.BackupDocument, error)
	// Import replaces every collection present in raw. Collections the document
	// does not mention keep their current contents. Nothing is written unless
	// the whole document parses.
	Import(ctx context.Context, raw []byte) (*dto.RestoreResponse, error)
}

type backupService struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  events.Publisher
	logger     logger.ILogger
	now        func() time.Time
}

func NewBackupService(
	uowFactory unitofwork.RepositoryFactory,
	publisher events.Publisher,
	logger logger.ILogger,
) IBackupService {
	return &backupService{
		uowFactory: uowFactory,
		publisher:  publisher,
		logger:     logger,
		now:        time.Now,
	}
}

// restoreSet holds the parsed collections. A nil field was absent from the
// document.
type restoreSet struct {
	chats          []*entity.Chat
	chatCategories []*entity.Category
	notes          []*entity.Note
	noteCategories []*entity.Category
	personalities  []*entity.Personality
	preferences    *entity.Preferences
	promptHistory  []string
}

func (s *restoreSet) empty() bool {
	return s.chats == nil && s.chatCategories == nil && s.notes == nil &&
		s.noteCategories == nil && s.personalities == nil && s.preferences == nil &&
		s.promptHistory == nil
}

func (s *restoreSet) counts() map[string]int {
	counts := make(map[string]int)
	if s.chats != nil {
		counts["chats"] = len(s.chats)
	}
	if s.chatCategories != nil {
		counts["categories"] = len(s.chatCategories)
	}
	if s.notes != nil {
		counts["notes"] = len(s.notes)
	}
	if s.noteCategories != nil {
		counts["note_categories"] = len(s.noteCategories)
	}
	if s.personalities != nil {
		counts["personalities"] = len(s.personalities)
	}
	if s.preferences != nil {
		counts["preferences"] = 1
	}
	if s.promptHistory != nil {
		counts["prompt_history"] = len(s.promptHistory)
	}
	return counts
}

func attachmentMarker(data *string) *string {
	if data == nil {
		return nil
	}
	marker := entity.AttachmentPlaceholder
	return &marker
}

func (c *backupService) Export(ctx context.Context) (*dto.BackupDocument, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	chats, err := uow.ChatRepository().FindAll(ctx, specification.MostRecentFirst{})
	if err != nil {
		return nil, err
	}
	chatCategories, err := uow.CategoryRepository(entity.CategoryKindChat).FindAll(ctx, specification.OrderBy{Field: "name"})
	if err != nil {
		return nil, err
	}
	notes, err := uow.NoteRepository().FindAll(ctx, specification.OrderBy{Field: "created_at", Desc: true})
	if err != nil {
		return nil, err
	}
	noteCategories, err := uow.CategoryRepository(entity.CategoryKindNote).FindAll(ctx, specification.OrderBy{Field: "name"})
	if err != nil {
		return nil, err
	}
	personalities, err := uow.PersonalityRepository().FindAll(ctx, specification.OrderBy{Field: "name"})
	if err != nil {
		return nil, err
	}
	prefs, err := loadPreferences(ctx, uow.DocumentRepository())
	if err != nil {
		return nil, err
	}
	history, err := uow.PromptHistoryRepository().FindRecent(ctx, entity.PromptHistoryLimit)
	if err != nil {
		return nil, err
	}

	backupChats := make([]*dto.BackupChat, 0, len(chats))
	for _, chat := range chats {
		turns := make([]*dto.BackupTurn, 0, len(chat.Conversation))
		for _, t := range chat.Conversation {
			turns = append(turns, &dto.BackupTurn{
				Timestamp: t.Timestamp,
				Question:  t.Question,
				Response:  t.Response,
				HasImage:  t.HasImage,
				ImageData: attachmentMarker(t.ImageData),
			})
		}
		backupChats = append(backupChats, &dto.BackupChat{
			Id:           chat.Id,
			Name:         chat.Name,
			CategoryId:   chat.CategoryId,
			Conversation: turns,
			Timestamp:    chat.Timestamp,
		})
	}

	backupNotes := make([]*dto.BackupNote, 0, len(notes))
	for _, n := range notes {
		backupNotes = append(backupNotes, &dto.BackupNote{
			Id:        n.Id,
			Title:     n.Title,
			Content:   n.Content,
			Category:  n.Category,
			CreatedAt: n.CreatedAt,
			Timestamp: n.Timestamp,
		})
	}

	backupPersonalities := make([]*dto.BackupPersonality, 0, len(personalities))
	for _, p := range personalities {
		backupPersonalities = append(backupPersonalities, &dto.BackupPersonality{
			Id:        p.Id,
			Name:      p.Name,
			Details:   p.Details,
			IsDefault: isDefaultPersonality(p),
		})
	}

	prompts := make([]string, 0, len(history))
	for _, h := range history {
		prompts = append(prompts, h.Text)
	}

	collections := []struct {
		path  string
		value interface{}
	}{
		{PathChats, backupChats},
		{PathChatCategories, toBackupCategories(chatCategories)},
		{PathNotes, backupNotes},
		{PathNoteCategories, toBackupCategories(noteCategories)},
		{PathPersonalities, backupPersonalities},
		{PathPreferences, &dto.BackupPreferences{
			ButtonSize:            prefs.ButtonSize,
			TextSize:              prefs.TextSize,
			SelectedPersonalityId: prefs.SelectedPersonalityId,
		}},
		{PathPromptHistory, prompts},
	}

	structure := make(map[string]string, len(collections))
	for _, col := range collections {
		b, err := json.Marshal(col.value)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", col.path, err)
		}
		structure[col.path] = string(b)
	}

	return &dto.BackupDocument{
		README:    backupReadme,
		Structure: structure,
		Metadata: dto.BackupMetadata{
			ExportedAt: c.now().UTC(),
			Version:    dto.BackupVersion,
			Counts: map[string]int{
				"chats":           len(chats),
				"categories":      len(chatCategories),
				"notes":           len(notes),
				"note_categories": len(noteCategories),
				"personalities":   len(personalities),
				"prompt_history":  len(prompts),
			},
		},
	}, nil
}

func toBackupCategories(categories []*entity.Category) []*dto.BackupCategory {
	result := make([]*dto.BackupCategory, 0, len(categories))
	for _, cat := range categories {
		result = append(result, &dto.BackupCategory{Id: cat.Id, Name: cat.Name})
	}
	return result
}

func (c *backupService) Import(ctx context.Context, raw []byte) (*dto.RestoreResponse, error) {
	set, err := parseBackup(raw)
	if err != nil {
		return nil, err
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := c.apply(ctx, uow, set); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	counts := set.counts()
	c.logger.Info("BACKUP", "Backup restored", map[string]interface{}{
		"counts": counts,
	})
	publishEvent(ctx, c.publisher, c.logger, events.DataRestored, map[string]interface{}{
		"counts": counts,
	})

	return &dto.RestoreResponse{
		Message:  "Backup restored",
		Restored: counts,
	}, nil
}

func (c *backupService) apply(ctx context.Context, uow unitofwork.UnitOfWork, set *restoreSet) error {
	chatCategoryRepo := uow.CategoryRepository(entity.CategoryKindChat)
	noteCategoryRepo := uow.CategoryRepository(entity.CategoryKindNote)

	if set.chatCategories != nil {
		if err := replaceCategories(ctx, chatCategoryRepo, set.chatCategories); err != nil {
			return err
		}
	}
	if set.noteCategories != nil {
		if err := replaceCategories(ctx, noteCategoryRepo, set.noteCategories); err != nil {
			return err
		}
	}

	chatRepo := uow.ChatRepository()
	if set.chats != nil {
		if err := chatRepo.DeleteAll(ctx); err != nil {
			return err
		}
		for _, chat := range set.chats {
			if err := chatRepo.Create(ctx, chat); err != nil {
				return err
			}
		}
	}

	noteRepo := uow.NoteRepository()
	if set.notes != nil {
		if err := noteRepo.DeleteAll(ctx); err != nil {
			return err
		}
		for _, note := range set.notes {
			if err := noteRepo.Create(ctx, note); err != nil {
				return err
			}
		}
	}

	personalityRepo := uow.PersonalityRepository()
	if set.personalities != nil {
		if err := personalityRepo.DeleteAll(ctx); err != nil {
			return err
		}
		hasDefault := false
		for _, p := range set.personalities {
			hasDefault = hasDefault || p.Id == entity.DefaultPersonalityId
			if err := personalityRepo.Create(ctx, p); err != nil {
				return err
			}
		}
		if !hasDefault {
			if err := personalityRepo.Create(ctx, entity.DefaultPersonality()); err != nil {
				return err
			}
		}
	}

	if set.promptHistory != nil {
		historyRepo := uow.PromptHistoryRepository()
		if err := historyRepo.DeleteAll(ctx); err != nil {
			return err
		}
		// Oldest first so the first entry ends up most recent.
		for i := len(set.promptHistory) - 1; i >= 0; i-- {
			if err := historyRepo.Touch(ctx, &entity.PromptEntry{Text: set.promptHistory[i], UsedAt: c.now()}); err != nil {
				return err
			}
		}
		if err := historyRepo.Trim(ctx, entity.PromptHistoryLimit); err != nil {
			return err
		}
	}

	if set.chats != nil || set.chatCategories != nil {
		if err := reassignOrphanChats(ctx, uow); err != nil {
			return err
		}
	}
	if set.notes != nil || set.noteCategories != nil {
		if err := reassignOrphanNotes(ctx, uow); err != nil {
			return err
		}
	}

	docs := uow.DocumentRepository()
	prefs := set.preferences
	if prefs == nil {
		var err error
		if prefs, err = loadPreferences(ctx, docs); err != nil {
			return err
		}
	}
	selected, err := personalityRepo.Count(ctx, specification.ByID{ID: prefs.SelectedPersonalityId})
	if err != nil {
		return err
	}
	if selected == 0 {
		prefs.SelectedPersonalityId = entity.DefaultPersonalityId
	}
	if set.preferences != nil || selected == 0 {
		if err := docs.Put(ctx, PreferencesDocumentKey, prefs); err != nil {
			return err
		}
	}

	return nil
}

func replaceCategories(ctx context.Context, repo contract.CategoryRepository, categories []*entity.Category) error {
	if err := repo.DeleteAll(ctx); err != nil {
		return err
	}
	hasDefault := false
	for _, cat := range categories {
		hasDefault = hasDefault || cat.Id == entity.UncategorizedId
		cat.Kind = repo.Kind()
		if err := repo.Create(ctx, cat); err != nil {
			return err
		}
	}
	if hasDefault {
		return nil
	}
	return repo.Create(ctx, entity.DefaultCategory(repo.Kind()))
}

// reassignOrphanChats moves chats whose category no longer exists into the
// uncategorized bucket.
func reassignOrphanChats(ctx context.Context, uow unitofwork.UnitOfWork) error {
	categories, err := uow.CategoryRepository(entity.CategoryKindChat).FindAll(ctx)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(categories))
	for _, cat := range categories {
		known[cat.Id] = true
	}

	chatRepo := uow.ChatRepository()
	chats, err := chatRepo.FindAll(ctx)
	if err != nil {
		return err
	}
	for _, chat := range chats {
		if known[chat.CategoryId] {
			continue
		}
		chat.CategoryId = entity.UncategorizedId
		if err := chatRepo.Update(ctx, chat); err != nil {
			return err
		}
	}
	return nil
}

func reassignOrphanNotes(ctx context.Context, uow unitofwork.UnitOfWork) error {
	categories, err := uow.CategoryRepository(entity.CategoryKindNote).FindAll(ctx)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(categories))
	for _, cat := range categories {
		known[cat.Name] = true
	}

	noteRepo := uow.NoteRepository()
	notes, err := noteRepo.FindAll(ctx)
	if err != nil {
		return err
	}
	for _, note := range notes {
		if known[note.Category] {
			continue
		}
		note.Category = entity.UncategorizedName
		if err := noteRepo.Update(ctx, note); err != nil {
			return err
		}
	}
	return nil
}

package client

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode/utf8"

	"offline-chat-be/pkg/search"

	"go.uber.org/zap"
)

// ViewMode is the one panel the UI shows. Exactly one mode is active.
type ViewMode int

const (
	ViewNone ViewMode = iota
	ViewChatList
	ViewSettings
	ViewImageBrowser
	ViewPersonalities
	ViewNotes
	ViewSearch
	ViewAnalysis
)

func (m ViewMode) String() string {
	switch m {
	case ViewChatList:
		return "chats"
	case ViewSettings:
		return "settings"
	case ViewImageBrowser:
		return "images"
	case ViewPersonalities:
		return "personalities"
	case ViewNotes:
		return "notes"
	case ViewSearch:
		return "search"
	case ViewAnalysis:
		return "analysis"
	default:
		return "none"
	}
}

const minPromptHistoryRunes = 3

var ErrNotConfirmed = errors.New("client: action not confirmed")

// ConfirmFunc asks the user to approve a destructive action.
type ConfirmFunc func(prompt string) bool

// Snapshot is a copy of the workspace for rendering.
type Snapshot struct {
	Mode         ViewMode
	MovingChatID string
	MovingNoteID string
	OpenChatID   string
	Conversation []*Turn
	Draft        string
	Attachment   *Attachment
	Response     string
	State        State

	SearchQuery    string
	SearchResults  []SearchHit
	SearchSelected int
}

// Workspace holds the transient session state of one browser tab and commits
// request outcomes to it.
type Workspace struct {
	mu sync.Mutex

	mode         ViewMode
	movingChatID string
	movingNoteID string

	openChatID   string
	conversation []*Turn
	draft        string
	attachment   *Attachment
	response     string

	searchQuery   string
	searchResults []SearchHit
	searchCursor  *search.Cursor
	searchSeq     uint64

	controller *Controller
	transport  Transport
	confirm    ConfirmFunc
	logger     *zap.Logger
}

func NewWorkspace(transport Transport, confirm ConfirmFunc, logger *zap.Logger) *Workspace {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workspace{
		mode:         ViewChatList,
		searchCursor: search.NewCursor(0),
		controller:   NewController(transport, logger),
		transport:    transport,
		confirm:      confirm,
		logger:       logger,
	}
}

func (w *Workspace) Controller() *Controller {
	return w.controller
}

func (w *Workspace) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Snapshot{
		Mode:         w.mode,
		MovingChatID: w.movingChatID,
		MovingNoteID: w.movingNoteID,
		OpenChatID:   w.openChatID,
		Conversation: append([]*Turn(nil), w.conversation...),
		Draft:        w.draft,
		Attachment:   w.attachment,
		Response:     w.response,
		State:        w.controller.State(),

		SearchQuery:    w.searchQuery,
		SearchResults:  append([]SearchHit(nil), w.searchResults...),
		SearchSelected: w.searchCursor.Index(),
	}
}

// SetMode switches panels. Any move in progress is abandoned.
func (w *Workspace) SetMode(mode ViewMode) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.mode = mode
	w.movingChatID = ""
	w.movingNoteID = ""
}

func (w *Workspace) BeginMoveChat(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.movingChatID = id
	w.movingNoteID = ""
}

func (w *Workspace) BeginMoveNote(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.movingNoteID = id
	w.movingChatID = ""
}

func (w *Workspace) SetDraft(text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft = text
}

func (w *Workspace) Attach(a *Attachment) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.attachment = a
}

// OpenChat points the workspace at a stored chat. A pending request belongs
// to the chat being left and is cancelled.
func (w *Workspace) OpenChat(id string, conversation []*Turn) {
	w.controller.Cancel()
	w.controller.Reset()

	w.mu.Lock()
	defer w.mu.Unlock()
	w.openChatID = id
	w.conversation = conversation
	w.response = ""
}

// NewChat starts an empty session. Nothing is stored until the first turn
// completes; a pending request is cancelled.
func (w *Workspace) NewChat() {
	w.controller.Cancel()
	w.controller.Reset()

	w.mu.Lock()
	defer w.mu.Unlock()
	w.openChatID = ""
	w.conversation = nil
	w.draft = ""
	w.attachment = nil
	w.response = ""
}

// Submit sends the current draft to the open chat. The returned channel
// receives the outcome after it has been applied to the workspace.
func (w *Workspace) Submit(ctx context.Context, systemPrompt string) (<-chan Outcome, error) {
	w.mu.Lock()
	sub := Submission{
		Text:         w.draft,
		SystemPrompt: systemPrompt,
		ChatID:       w.openChatID,
		Attachment:   w.attachment,
	}
	w.mu.Unlock()

	if strings.TrimSpace(sub.Text) == "" {
		return nil, errors.New("client: message text is required")
	}

	outcomes, err := w.controller.Submit(ctx, sub)
	if err != nil {
		return nil, err
	}

	applied := make(chan Outcome, 1)
	go func() {
		outcome := <-outcomes
		w.apply(ctx, sub, outcome)
		applied <- outcome
	}()
	return applied, nil
}

func (w *Workspace) apply(ctx context.Context, sub Submission, outcome Outcome) {
	switch outcome.State {
	case StateCompleted:
		w.mu.Lock()
		if w.openChatID != sub.ChatID {
			w.mu.Unlock()
			w.logger.Debug("discarding result for a chat no longer open",
				zap.String("chat_id", outcome.Result.ChatID),
				zap.String("open_chat_id", w.openChatID))
			return
		}
		w.openChatID = outcome.Result.ChatID
		w.conversation = outcome.Result.Conversation
		w.response = outcome.Result.Response
		w.draft = ""
		w.attachment = nil
		w.mu.Unlock()

		w.recordPrompt(ctx, sub.Text)

	case StateFailed:
		w.mu.Lock()
		w.response = "Error: " + outcome.Err.Error()
		w.mu.Unlock()

	case StateCancelled:
		w.mu.Lock()
		w.response = ""
		w.mu.Unlock()
	}
}

func (w *Workspace) recordPrompt(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < minPromptHistoryRunes {
		return
	}
	if err := w.transport.RecordPrompt(ctx, text); err != nil {
		w.logger.Warn("failed to record prompt history", zap.Error(err))
	}
}

// Search runs query and switches to the search panel with the first hit
// selected. A blank query clears the results without asking the server. When
// searches overlap only the newest one is applied.
func (w *Workspace) Search(ctx context.Context, query string) error {
	w.mu.Lock()
	w.searchSeq++
	seq := w.searchSeq
	w.mode = ViewSearch
	w.movingChatID = ""
	w.movingNoteID = ""
	w.mu.Unlock()

	var hits []SearchHit
	if strings.TrimSpace(query) != "" {
		var err error
		hits, err = w.transport.Search(ctx, query)
		if err != nil {
			return err
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if seq != w.searchSeq {
		return nil
	}
	w.searchQuery = query
	w.searchResults = hits
	w.searchCursor.Reset(len(hits))
	return nil
}

// SearchNext moves the selection down one hit and returns it. The selection
// stops at the last hit.
func (w *Workspace) SearchNext() (SearchHit, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.searchHit(w.searchCursor.Next())
}

// SearchPrev moves the selection up one hit and stops at the first.
func (w *Workspace) SearchPrev() (SearchHit, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.searchHit(w.searchCursor.Prev())
}

func (w *Workspace) SelectedSearchHit() (SearchHit, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.searchHit(w.searchCursor.Index())
}

// searchHit must be called with mu held.
func (w *Workspace) searchHit(i int) (SearchHit, bool) {
	if i < 0 || i >= len(w.searchResults) {
		return SearchHit{}, false
	}
	return w.searchResults[i], true
}

// DeleteChat removes a chat after confirmation. Deleting the open chat
// leaves the workspace on an empty session.
func (w *Workspace) DeleteChat(ctx context.Context, id string) error {
	if w.confirm != nil && !w.confirm("Delete this chat? This cannot be undone.") {
		return ErrNotConfirmed
	}
	if err := w.transport.DeleteChat(ctx, id); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.openChatID == id {
		w.openChatID = ""
		w.conversation = nil
		w.response = ""
	}
	if w.movingChatID == id {
		w.movingChatID = ""
	}
	return nil
}

// DeleteCategory removes a category and every chat or note in it after
// confirmation. The open chat pointer is cleared by the caller's next
// refresh when the chat no longer exists.
func (w *Workspace) DeleteCategory(ctx context.Context, kind CategoryKind, id string) error {
	if w.confirm != nil && !w.confirm("Delete this category and everything in it? This cannot be undone.") {
		return ErrNotConfirmed
	}
	return w.transport.DeleteCategory(ctx, kind, id)
}

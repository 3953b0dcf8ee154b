// Package agent implements the self-correcting generation loop: a context
// assembler feeding a draft producer and an answer reviewer, driven by a
// bounded refinement orchestrator.
package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"docuchat/internal/model"
)

// Completer is the text-completion capability of the inference backend.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// MessageSource supplies the most recent messages of a session, newest first.
type MessageSource interface {
	ListRecentBySessionID(sessionID uint, limit int) ([]model.Message, error)
}

// DocumentSource supplies the documents attached to a session.
type DocumentSource interface {
	ListBySessionID(sessionID uint) ([]model.Document, error)
}

// HistoryTurn is one labeled entry of the rendered conversation history.
type HistoryTurn struct {
	Role    string
	Content string
}

// GenerationContext is the transient bundle fed to one generation attempt.
// It is assembled fresh per request and never cached.
type GenerationContext struct {
	// History holds the most recent turns, oldest first.
	History []HistoryTurn
	// Documents is the concatenated text of all documents that extracted to
	// something non-empty. Empty-extraction documents are skipped but still
	// count toward HasDocuments.
	Documents string
	// HasDocuments reports whether any document record exists for the
	// session, usable text or not.
	HasDocuments bool
}

// HasDocumentText reports whether there is actual document text to ground an
// answer on. The reviewer's document-usage criterion only applies when this
// is true.
func (c GenerationContext) HasDocumentText() bool {
	return strings.TrimSpace(c.Documents) != ""
}

// Assembler builds a GenerationContext from persisted session state. It is a
// pure read projection with no side effects.
type Assembler struct {
	messages      MessageSource
	documents     DocumentSource
	historyWindow int
}

const defaultHistoryWindow = 5

func NewAssembler(messages MessageSource, documents DocumentSource, historyWindow int) *Assembler {
	if historyWindow <= 0 {
		historyWindow = defaultHistoryWindow
	}
	return &Assembler{
		messages:      messages,
		documents:     documents,
		historyWindow: historyWindow,
	}
}

// Assemble reads the latest persisted state of the session and returns the
// context for one resolution.
func (a *Assembler) Assemble(sessionID uint) (GenerationContext, error) {
	recent, err := a.messages.ListRecentBySessionID(sessionID, a.historyWindow)
	if err != nil {
		return GenerationContext{}, fmt.Errorf("load session history failed: %w", err)
	}

	// Chronological oldest-first regardless of retrieval order.
	sort.SliceStable(recent, func(i, j int) bool {
		if recent[i].CreatedAt.Equal(recent[j].CreatedAt) {
			return recent[i].ID < recent[j].ID
		}
		return recent[i].CreatedAt.Before(recent[j].CreatedAt)
	})

	history := make([]HistoryTurn, 0, len(recent))
	for _, msg := range recent {
		history = append(history, HistoryTurn{Role: msg.Role, Content: msg.Content})
	}

	docs, err := a.documents.ListBySessionID(sessionID)
	if err != nil {
		return GenerationContext{}, fmt.Errorf("load session documents failed: %w", err)
	}

	var docText strings.Builder
	for _, doc := range docs {
		if strings.TrimSpace(doc.Content) == "" {
			continue
		}
		docText.WriteString(fmt.Sprintf("Document '%s':\n%s\n---\n", doc.Title, doc.Content))
	}

	return GenerationContext{
		History:      history,
		Documents:    docText.String(),
		HasDocuments: len(docs) > 0,
	}, nil
}

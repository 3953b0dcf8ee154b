package agent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docuchat/internal/model"
)

type completerFunc func(ctx context.Context, prompt string) (string, error)

func (f completerFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

type fakeMessageSource struct {
	messages []model.Message
	err      error
}

// ListRecentBySessionID mimics the repository: newest first, capped at limit.
func (f *fakeMessageSource) ListRecentBySessionID(sessionID uint, limit int) ([]model.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.Message, 0, limit)
	for i := len(f.messages) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.messages[i])
	}
	return out, nil
}

type fakeDocumentSource struct {
	documents []model.Document
	err       error
}

func (f *fakeDocumentSource) ListBySessionID(sessionID uint) ([]model.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.documents, nil
}

func storedMessages(n int) []model.Message {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	messages := make([]model.Message, 0, n)
	for i := 0; i < n; i++ {
		role := model.RoleUser
		if i%2 == 1 {
			role = model.RoleAssistant
		}
		messages = append(messages, model.Message{
			ID:        uint(i + 1),
			SessionID: 1,
			Role:      role,
			Content:   string(rune('a' + i)),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	return messages
}

func TestAssembleHistoryWindow(t *testing.T) {
	assembler := NewAssembler(
		&fakeMessageSource{messages: storedMessages(7)},
		&fakeDocumentSource{},
		5,
	)

	genCtx, err := assembler.Assemble(1)
	require.NoError(t, err)

	require.Len(t, genCtx.History, 5)
	// The two oldest messages fall off; the rest come back oldest first.
	assert.Equal(t, "c", genCtx.History[0].Content)
	assert.Equal(t, "g", genCtx.History[4].Content)
	for i := 1; i < len(genCtx.History); i++ {
		assert.True(t, genCtx.History[i-1].Content < genCtx.History[i].Content,
			"history must be chronological")
	}
}

func TestAssembleShortHistory(t *testing.T) {
	assembler := NewAssembler(
		&fakeMessageSource{messages: storedMessages(2)},
		&fakeDocumentSource{},
		5,
	)

	genCtx, err := assembler.Assemble(1)
	require.NoError(t, err)
	require.Len(t, genCtx.History, 2)
	assert.Equal(t, "a", genCtx.History[0].Content)
}

func TestAssembleDocuments(t *testing.T) {
	t.Run("no documents is the sentinel state", func(t *testing.T) {
		assembler := NewAssembler(&fakeMessageSource{}, &fakeDocumentSource{}, 5)

		genCtx, err := assembler.Assemble(1)
		require.NoError(t, err)
		assert.False(t, genCtx.HasDocuments)
		assert.False(t, genCtx.HasDocumentText())
	})

	t.Run("empty extraction is distinguishable from no documents", func(t *testing.T) {
		assembler := NewAssembler(&fakeMessageSource{}, &fakeDocumentSource{
			documents: []model.Document{{ID: 1, SessionID: 1, Title: "scan.pdf", Content: ""}},
		}, 5)

		genCtx, err := assembler.Assemble(1)
		require.NoError(t, err)
		assert.True(t, genCtx.HasDocuments)
		assert.False(t, genCtx.HasDocumentText())
		assert.Empty(t, genCtx.Documents)
	})

	t.Run("concatenates titled documents and skips empty ones", func(t *testing.T) {
		assembler := NewAssembler(&fakeMessageSource{}, &fakeDocumentSource{
			documents: []model.Document{
				{ID: 1, Title: "guide.pdf", Content: "first body"},
				{ID: 2, Title: "scan.pdf", Content: "   "},
				{ID: 3, Title: "notes.pdf", Content: "second body"},
			},
		}, 5)

		genCtx, err := assembler.Assemble(1)
		require.NoError(t, err)
		assert.True(t, genCtx.HasDocuments)
		assert.Contains(t, genCtx.Documents, "Document 'guide.pdf':\nfirst body")
		assert.Contains(t, genCtx.Documents, "Document 'notes.pdf':\nsecond body")
		assert.NotContains(t, genCtx.Documents, "scan.pdf")
		assert.Contains(t, genCtx.Documents, "---")
	})
}

package app

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docuchat/internal/model"
)

type fakeMessageFinder struct {
	messages map[uint]*model.Message
	err      error
}

func (f *fakeMessageFinder) GetByID(id uint) (*model.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.messages[id], nil
}

type fakeFeedbackStore struct {
	created []model.Feedback
}

func (f *fakeFeedbackStore) Create(feedback *model.Feedback) error {
	feedback.ID = uint(len(f.created) + 1)
	f.created = append(f.created, *feedback)
	return nil
}

func (f *fakeFeedbackStore) ListBySessionID(sessionID uint) ([]model.Feedback, error) {
	var out []model.Feedback
	for _, fb := range f.created {
		if fb.SessionID == sessionID {
			out = append(out, fb)
		}
	}
	return out, nil
}

func TestSubmitFeedback(t *testing.T) {
	finder := &fakeMessageFinder{messages: map[uint]*model.Message{
		42: {ID: 42, SessionID: 9, Role: model.RoleAssistant, Content: "an answer"},
	}}

	t.Run("stores rating linked to the message's session", func(t *testing.T) {
		store := &fakeFeedbackStore{}
		service := NewFeedbackService(finder, store)

		feedback, err := service.Submit(SubmitFeedbackInput{
			MessageID: 42,
			Rating:    "good",
			Comments:  "clear and complete",
		})
		require.NoError(t, err)

		assert.Equal(t, uint(9), feedback.SessionID)
		assert.Equal(t, uint(42), feedback.MessageID)
		assert.Equal(t, model.RatingGood, feedback.Rating)
		assert.Equal(t, "clear and complete", feedback.Comments)
		require.Len(t, store.created, 1)
	})

	t.Run("normalizes rating case and whitespace", func(t *testing.T) {
		store := &fakeFeedbackStore{}
		service := NewFeedbackService(finder, store)

		feedback, err := service.Submit(SubmitFeedbackInput{MessageID: 42, Rating: "  BAD "})
		require.NoError(t, err)
		assert.Equal(t, model.RatingBad, feedback.Rating)
	})

	t.Run("rejects unknown ratings before touching storage", func(t *testing.T) {
		store := &fakeFeedbackStore{}
		service := NewFeedbackService(finder, store)

		_, err := service.Submit(SubmitFeedbackInput{MessageID: 42, Rating: "excellent"})
		assert.ErrorIs(t, err, ErrInvalidRating)
		assert.Empty(t, store.created)
	})

	t.Run("rejects unknown message ids", func(t *testing.T) {
		store := &fakeFeedbackStore{}
		service := NewFeedbackService(finder, store)

		_, err := service.Submit(SubmitFeedbackInput{MessageID: 999, Rating: "good"})
		assert.ErrorIs(t, err, ErrMessageNotFound)
		assert.Empty(t, store.created)
	})

	t.Run("rejects zero message id", func(t *testing.T) {
		service := NewFeedbackService(finder, &fakeFeedbackStore{})

		_, err := service.Submit(SubmitFeedbackInput{Rating: "good"})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("propagates lookup failures", func(t *testing.T) {
		lookupErr := errors.New("db gone")
		service := NewFeedbackService(&fakeMessageFinder{err: lookupErr}, &fakeFeedbackStore{})

		_, err := service.Submit(SubmitFeedbackInput{MessageID: 42, Rating: "good"})
		assert.ErrorIs(t, err, lookupErr)
	})
}

func TestListFeedback(t *testing.T) {
	finder := &fakeMessageFinder{messages: map[uint]*model.Message{
		1: {ID: 1, SessionID: 3},
		2: {ID: 2, SessionID: 4},
	}}
	store := &fakeFeedbackStore{}
	service := NewFeedbackService(finder, store)

	_, err := service.Submit(SubmitFeedbackInput{MessageID: 1, Rating: "good"})
	require.NoError(t, err)
	_, err = service.Submit(SubmitFeedbackInput{MessageID: 2, Rating: "bad"})
	require.NoError(t, err)

	listed, err := service.List(3)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, uint(1), listed[0].MessageID)

	_, err = service.List(0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

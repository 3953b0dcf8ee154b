package app

import (
	"errors"
	"strings"

	"docuchat/internal/model"
)

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrInvalidRating   = errors.New("rating must be good or bad")
)

// MessageFinder looks up a single message. Implemented by the message
// repository.
type MessageFinder interface {
	GetByID(id uint) (*model.Message, error)
}

// FeedbackStore persists and lists feedback records.
type FeedbackStore interface {
	Create(feedback *model.Feedback) error
	ListBySessionID(sessionID uint) ([]model.Feedback, error)
}

// FeedbackService records human ratings of delivered answers. These are
// analysis-only and unrelated to the internal review loop.
type FeedbackService struct {
	messages MessageFinder
	store    FeedbackStore
}

type SubmitFeedbackInput struct {
	MessageID uint
	Rating    string
	Comments  string
}

func NewFeedbackService(messages MessageFinder, store FeedbackStore) *FeedbackService {
	return &FeedbackService{
		messages: messages,
		store:    store,
	}
}

// Submit validates and stores one feedback record, linked to the rated
// message's session. Nothing is written when validation fails.
func (s *FeedbackService) Submit(input SubmitFeedbackInput) (*model.Feedback, error) {
	if input.MessageID == 0 {
		return nil, ErrInvalidInput
	}

	rating := strings.TrimSpace(strings.ToLower(input.Rating))
	if rating != model.RatingGood && rating != model.RatingBad {
		return nil, ErrInvalidRating
	}

	message, err := s.messages.GetByID(input.MessageID)
	if err != nil {
		return nil, err
	}
	if message == nil {
		return nil, ErrMessageNotFound
	}

	feedback := &model.Feedback{
		SessionID: message.SessionID,
		MessageID: message.ID,
		Rating:    rating,
		Comments:  input.Comments,
	}
	if err := s.store.Create(feedback); err != nil {
		return nil, err
	}
	return feedback, nil
}

func (s *FeedbackService) List(sessionID uint) ([]model.Feedback, error) {
	if sessionID == 0 {
		return nil, ErrInvalidInput
	}
	return s.store.ListBySessionID(sessionID)
}

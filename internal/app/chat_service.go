package app

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"docuchat/internal/model"
	"docuchat/internal/repository"
)

var (
	ErrSessionNotFound = errors.New("session not found")
)

// HistoryCache caches session history listings. Implemented by the redis
// cache; nil disables caching.
type HistoryCache interface {
	GetHistory(ctx context.Context, sessionID uint) ([]model.Message, bool, error)
	SetHistory(ctx context.Context, sessionID uint, messages []model.Message) error
	Invalidate(ctx context.Context, sessionID uint) error
	IsDirty(ctx context.Context, sessionID uint) (bool, error)
}

// ChatService manages session lifecycle and history reads. Answer generation
// lives in the agent package; the websocket bridge connects the two.
type ChatService struct {
	sessionRepo  *repository.SessionRepository
	messageRepo  *repository.MessageRepository
	documentRepo *repository.DocumentRepository
	historyCache HistoryCache
}

type CreateSessionInput struct {
	UserID uint
	Title  string
}

func NewChatService(
	sessionRepo *repository.SessionRepository,
	messageRepo *repository.MessageRepository,
	documentRepo *repository.DocumentRepository,
	historyCache HistoryCache,
) *ChatService {
	return &ChatService{
		sessionRepo:  sessionRepo,
		messageRepo:  messageRepo,
		documentRepo: documentRepo,
		historyCache: historyCache,
	}
}

func (s *ChatService) CreateSession(input CreateSessionInput) (*model.Session, error) {
	if input.UserID == 0 {
		return nil, ErrInvalidInput
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = "New Chat"
	}

	session := &model.Session{
		PublicID: uuid.NewString(),
		UserID:   input.UserID,
		Title:    title,
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, err
	}
	return session, nil
}

// GetOrCreateSessionByPublicID resolves the session a websocket client named
// in its connect request, creating it on first contact. An empty public id
// always creates a fresh session.
func (s *ChatService) GetOrCreateSessionByPublicID(userID uint, publicID string) (*model.Session, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}

	publicID = strings.TrimSpace(publicID)
	if publicID != "" {
		session, err := s.sessionRepo.GetByPublicIDAndUserID(publicID, userID)
		if err != nil {
			return nil, err
		}
		if session != nil {
			return session, nil
		}
		if _, err := uuid.Parse(publicID); err != nil {
			return nil, ErrInvalidInput
		}
	}
	if publicID == "" {
		publicID = uuid.NewString()
	}

	session := &model.Session{
		PublicID: publicID,
		UserID:   userID,
		Title:    "New Chat",
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *ChatService) ListSessions(userID uint) ([]model.Session, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	return s.sessionRepo.ListByUserID(userID)
}

func (s *ChatService) DeleteSession(userID, sessionID uint) error {
	if userID == 0 || sessionID == 0 {
		return ErrInvalidInput
	}
	session, err := s.sessionRepo.GetByIDAndUserID(sessionID, userID)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrSessionNotFound
	}
	if err := s.messageRepo.DeleteBySessionID(sessionID); err != nil {
		return err
	}
	if err := s.documentRepo.DeleteBySessionID(sessionID); err != nil {
		return err
	}
	if err := s.sessionRepo.DeleteByIDAndUserID(sessionID, userID); err != nil {
		return err
	}
	if s.historyCache != nil {
		_ = s.historyCache.Invalidate(context.Background(), sessionID)
	}
	return nil
}

func (s *ChatService) GetHistory(userID, sessionID uint, limit int) ([]model.Message, error) {
	if userID == 0 || sessionID == 0 {
		return nil, ErrInvalidInput
	}

	session, err := s.sessionRepo.GetByIDAndUserID(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	ctx := context.Background()
	if s.historyCache != nil {
		dirty, err := s.historyCache.IsDirty(ctx, sessionID)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.historyCache.GetHistory(ctx, sessionID); cacheErr == nil && hit {
				return trimMessages(cached, limit), nil
			}
		}
	}

	messages, err := s.messageRepo.ListBySessionID(sessionID, limit)
	if err != nil {
		return nil, err
	}
	if s.historyCache != nil {
		if dirty, dirtyErr := s.historyCache.IsDirty(ctx, sessionID); dirtyErr == nil && !dirty {
			_ = s.historyCache.SetHistory(ctx, sessionID, messages)
		}
	}
	return messages, nil
}

func trimMessages(messages []model.Message, limit int) []model.Message {
	if limit <= 0 || limit >= len(messages) {
		return messages
	}
	return messages[len(messages)-limit:]
}

package app

import (
	"strings"

	"docuchat/internal/model"
	"docuchat/internal/repository"
)

// DocumentService stores already-extracted document text for a session. File
// parsing happens at the transport boundary; this service only ever sees
// {title, extracted text} pairs.
type DocumentService struct {
	sessionRepo  *repository.SessionRepository
	documentRepo *repository.DocumentRepository
}

type IngestDocumentInput struct {
	UserID    uint
	SessionID uint
	Title     string
	Content   string
}

func NewDocumentService(sessionRepo *repository.SessionRepository, documentRepo *repository.DocumentRepository) *DocumentService {
	return &DocumentService{
		sessionRepo:  sessionRepo,
		documentRepo: documentRepo,
	}
}

// Ingest stores one document. Content may be empty (extraction failure); the
// record is created regardless so the upload stays visible.
func (s *DocumentService) Ingest(input IngestDocumentInput) (*model.Document, error) {
	if input.UserID == 0 || input.SessionID == 0 {
		return nil, ErrInvalidInput
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrInvalidInput
	}

	session, err := s.sessionRepo.GetByIDAndUserID(input.SessionID, input.UserID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	doc := &model.Document{
		SessionID: input.SessionID,
		Title:     title,
		Content:   input.Content,
	}
	if err := s.documentRepo.Create(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *DocumentService) List(userID, sessionID uint) ([]model.Document, error) {
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
	return s.documentRepo.ListBySessionID(sessionID)
}

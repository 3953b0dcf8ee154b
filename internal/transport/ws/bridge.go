package ws

import (
	"context"
	"errors"
	"sync/atomic"

	"go.uber.org/zap"

	"docuchat/internal/agent"
	"docuchat/internal/model"
)

const (
	errorMessageUnavailable = "The assistant is temporarily unavailable. Please try again."
	errorMessageContext     = "Could not load the conversation. Please try again."
	errorMessageSave        = "Your message could not be saved. Please try again."
)

// Assembler builds the generation context for one turn.
type Assembler interface {
	Assemble(sessionID uint) (agent.GenerationContext, error)
}

// Resolver runs the refinement loop to a final answer or fallback.
type Resolver interface {
	Resolve(ctx context.Context, genCtx agent.GenerationContext, question string) (agent.Resolution, error)
}

// MessageStore appends messages durably.
type MessageStore interface {
	Create(message *model.Message) error
}

// AuditPublisher ships resolved-turn records to the analysis pipeline.
type AuditPublisher interface {
	Publish(ctx context.Context, audit model.TurnAudit) error
}

// HistoryInvalidator drops cached history after new messages land.
type HistoryInvalidator interface {
	Invalidate(ctx context.Context, sessionID uint) error
}

// Bridge processes the inbound events of one connection strictly in order.
// Per-session serialization across connections comes from SessionLocks.
type Bridge struct {
	session   *model.Session
	assembler Assembler
	resolver  Resolver
	messages  MessageStore
	audits    AuditPublisher
	history   HistoryInvalidator
	emitter   Emitter
	locks     *SessionLocks
	logger    *zap.Logger

	inbound chan InboundEvent
	closed  atomic.Bool
}

func NewBridge(
	session *model.Session,
	assembler Assembler,
	resolver Resolver,
	messages MessageStore,
	audits AuditPublisher,
	history HistoryInvalidator,
	emitter Emitter,
	locks *SessionLocks,
	logger *zap.Logger,
) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	if locks == nil {
		locks = NewSessionLocks()
	}
	return &Bridge{
		session:   session,
		assembler: assembler,
		resolver:  resolver,
		messages:  messages,
		audits:    audits,
		history:   history,
		emitter:   emitter,
		locks:     locks,
		logger:    logger.With(zap.Uint("session_id", session.ID)),
		inbound:   make(chan InboundEvent, 16),
	}
}

// Enqueue hands an inbound event to the processing loop. Returns false when
// the queue is full; the caller decides how to surface backpressure.
func (b *Bridge) Enqueue(evt InboundEvent) bool {
	select {
	case b.inbound <- evt:
		return true
	default:
		return false
	}
}

// MarkClosed records that the client connection is gone. An in-flight
// resolution runs to completion but its result is discarded.
func (b *Bridge) MarkClosed() {
	b.closed.Store(true)
}

// Run drains the inbound queue until ctx is cancelled. One event is fully
// processed, terminal event included, before the next one starts.
func (b *Bridge) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-b.inbound:
			if evt.Type != "message" {
				continue
			}
			b.handleMessage(ctx, evt.Text)
		}
	}
}

func (b *Bridge) handleMessage(ctx context.Context, text string) {
	release := b.locks.Acquire(b.session.ID)
	defer release()

	_ = b.emitter.EmitTyping(true)
	// The typing-off event fires exactly once per inbound event, whatever
	// the outcome.
	defer func() {
		_ = b.emitter.EmitTyping(false)
	}()

	genCtx, err := b.assembler.Assemble(b.session.ID)
	if err != nil {
		b.logger.Error("assemble context failed", zap.Error(err))
		_ = b.emitter.EmitError(errorMessageContext)
		return
	}

	resolution, err := b.resolver.Resolve(ctx, genCtx, text)
	if err != nil {
		if !errors.Is(err, agent.ErrInference) {
			b.logger.Error("resolution failed", zap.Error(err))
		} else {
			b.logger.Warn("inference backend unavailable", zap.Error(err))
		}
		if b.closed.Load() {
			return
		}
		_ = b.emitter.EmitError(errorMessageUnavailable)
		return
	}

	if b.closed.Load() {
		b.logger.Info("connection gone, discarding resolved turn")
		return
	}

	// Both messages persist only after a result exists, user first so the
	// stored order matches the conversation.
	userMessage := &model.Message{
		SessionID: b.session.ID,
		Role:      model.RoleUser,
		Content:   text,
	}
	if err := b.messages.Create(userMessage); err != nil {
		b.logger.Error("persist user message failed", zap.Error(err))
		_ = b.emitter.EmitError(errorMessageSave)
		return
	}
	assistantMessage := &model.Message{
		SessionID: b.session.ID,
		Role:      model.RoleAssistant,
		Content:   resolution.Answer,
	}
	if err := b.messages.Create(assistantMessage); err != nil {
		b.logger.Error("persist assistant message failed", zap.Error(err))
		_ = b.emitter.EmitError(errorMessageSave)
		return
	}

	if b.history != nil {
		if err := b.history.Invalidate(ctx, b.session.ID); err != nil {
			b.logger.Warn("invalidate history cache failed", zap.Error(err))
		}
	}

	if b.audits != nil {
		audit := model.TurnAudit{
			SessionID: b.session.ID,
			Question:  text,
			Answer:    resolution.Answer,
			Attempts:  resolution.Attempts,
			Approved:  resolution.Approved,
		}
		if err := b.audits.Publish(ctx, audit); err != nil {
			b.logger.Warn("publish turn audit failed", zap.Error(err))
		}
	}

	_ = b.emitter.EmitMessage(resolution.Answer)
}

package ws

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docuchat/internal/agent"
	"docuchat/internal/model"
)

type recordingEmitter struct {
	events []string
}

func (e *recordingEmitter) EmitTyping(isTyping bool) error {
	e.events = append(e.events, fmt.Sprintf("typing:%t", isTyping))
	return nil
}

func (e *recordingEmitter) EmitMessage(text string) error {
	e.events = append(e.events, "message:"+text)
	return nil
}

func (e *recordingEmitter) EmitError(message string) error {
	e.events = append(e.events, "error:"+message)
	return nil
}

type stubAssembler struct {
	genCtx agent.GenerationContext
	err    error
}

func (a *stubAssembler) Assemble(sessionID uint) (agent.GenerationContext, error) {
	return a.genCtx, a.err
}

type stubResolver struct {
	resolution agent.Resolution
	err        error
	onResolve  func()

	mu        sync.Mutex
	questions []string
}

func (r *stubResolver) Resolve(ctx context.Context, genCtx agent.GenerationContext, question string) (agent.Resolution, error) {
	r.mu.Lock()
	r.questions = append(r.questions, question)
	r.mu.Unlock()
	if r.onResolve != nil {
		r.onResolve()
	}
	return r.resolution, r.err
}

func (r *stubResolver) seenQuestions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.questions...)
}

type memMessageStore struct {
	created []model.Message
	err     error
}

func (s *memMessageStore) Create(message *model.Message) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, *message)
	return nil
}

type memAuditPublisher struct {
	audits []model.TurnAudit
}

func (p *memAuditPublisher) Publish(ctx context.Context, audit model.TurnAudit) error {
	p.audits = append(p.audits, audit)
	return nil
}

type memInvalidator struct {
	sessionIDs []uint
}

func (i *memInvalidator) Invalidate(ctx context.Context, sessionID uint) error {
	i.sessionIDs = append(i.sessionIDs, sessionID)
	return nil
}

func newTestBridge(resolver *stubResolver, assembler *stubAssembler, store *memMessageStore, audits *memAuditPublisher, invalidator *memInvalidator, emitter *recordingEmitter) *Bridge {
	session := &model.Session{}
	session.ID = 7
	return NewBridge(session, assembler, resolver, store, audits, invalidator, emitter, NewSessionLocks(), nil)
}

func TestHandleMessageHappyPath(t *testing.T) {
	emitter := &recordingEmitter{}
	store := &memMessageStore{}
	audits := &memAuditPublisher{}
	invalidator := &memInvalidator{}
	resolver := &stubResolver{resolution: agent.Resolution{Answer: "hello there", Attempts: 2, Approved: true}}
	bridge := newTestBridge(resolver, &stubAssembler{}, store, audits, invalidator, emitter)

	bridge.handleMessage(context.Background(), "hi")

	assert.Equal(t, []string{"typing:true", "message:hello there", "typing:false"}, emitter.events)

	require.Len(t, store.created, 2)
	assert.Equal(t, model.RoleUser, store.created[0].Role)
	assert.Equal(t, "hi", store.created[0].Content)
	assert.Equal(t, model.RoleAssistant, store.created[1].Role)
	assert.Equal(t, "hello there", store.created[1].Content)

	require.Len(t, audits.audits, 1)
	assert.Equal(t, uint(7), audits.audits[0].SessionID)
	assert.Equal(t, "hi", audits.audits[0].Question)
	assert.Equal(t, 2, audits.audits[0].Attempts)
	assert.True(t, audits.audits[0].Approved)

	assert.Equal(t, []uint{7}, invalidator.sessionIDs)
}

func TestHandleMessageInferenceFailure(t *testing.T) {
	emitter := &recordingEmitter{}
	store := &memMessageStore{}
	resolver := &stubResolver{err: fmt.Errorf("%w: backend down", agent.ErrInference)}
	bridge := newTestBridge(resolver, &stubAssembler{}, store, &memAuditPublisher{}, &memInvalidator{}, emitter)

	bridge.handleMessage(context.Background(), "hi")

	assert.Equal(t, []string{"typing:true", "error:" + errorMessageUnavailable, "typing:false"}, emitter.events)
	assert.Empty(t, store.created, "a failed turn persists nothing")
}

func TestHandleMessageAssembleFailure(t *testing.T) {
	emitter := &recordingEmitter{}
	store := &memMessageStore{}
	assembler := &stubAssembler{err: errors.New("db gone")}
	bridge := newTestBridge(&stubResolver{}, assembler, store, &memAuditPublisher{}, &memInvalidator{}, emitter)

	bridge.handleMessage(context.Background(), "hi")

	assert.Equal(t, []string{"typing:true", "error:" + errorMessageContext, "typing:false"}, emitter.events)
	assert.Empty(t, store.created)
}

func TestHandleMessagePersistFailure(t *testing.T) {
	emitter := &recordingEmitter{}
	store := &memMessageStore{err: errors.New("disk full")}
	resolver := &stubResolver{resolution: agent.Resolution{Answer: "ok", Attempts: 1, Approved: true}}
	bridge := newTestBridge(resolver, &stubAssembler{}, store, &memAuditPublisher{}, &memInvalidator{}, emitter)

	bridge.handleMessage(context.Background(), "hi")

	assert.Equal(t, []string{"typing:true", "error:" + errorMessageSave, "typing:false"}, emitter.events)
}

func TestHandleMessageDiscardsAfterClose(t *testing.T) {
	emitter := &recordingEmitter{}
	store := &memMessageStore{}
	audits := &memAuditPublisher{}
	resolver := &stubResolver{resolution: agent.Resolution{Answer: "late", Attempts: 1, Approved: true}}
	bridge := newTestBridge(resolver, &stubAssembler{}, store, audits, &memInvalidator{}, emitter)

	// The connection drops while the resolution is in flight.
	resolver.onResolve = bridge.MarkClosed

	bridge.handleMessage(context.Background(), "hi")

	assert.Equal(t, []string{"typing:true", "typing:false"}, emitter.events)
	assert.Empty(t, store.created, "discarded turns leave no messages")
	assert.Empty(t, audits.audits)
}

func TestRunIgnoresUnknownEventTypes(t *testing.T) {
	emitter := &recordingEmitter{}
	store := &memMessageStore{}
	resolver := &stubResolver{resolution: agent.Resolution{Answer: "pong", Attempts: 1, Approved: true}}
	bridge := newTestBridge(resolver, &stubAssembler{}, store, &memAuditPublisher{}, &memInvalidator{}, emitter)

	require.True(t, bridge.Enqueue(InboundEvent{Type: "ping"}))
	require.True(t, bridge.Enqueue(InboundEvent{Type: "message", Text: "real"}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		bridge.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return len(resolver.seenQuestions()) == 1
	}, time.Second, 10*time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, []string{"real"}, resolver.seenQuestions(), "only message events reach the resolver")
}

func TestEnqueueReportsBackpressure(t *testing.T) {
	bridge := newTestBridge(&stubResolver{}, &stubAssembler{}, &memMessageStore{}, &memAuditPublisher{}, &memInvalidator{}, &recordingEmitter{})

	for i := 0; i < cap(bridge.inbound); i++ {
		require.True(t, bridge.Enqueue(InboundEvent{Type: "message", Text: "q"}))
	}
	assert.False(t, bridge.Enqueue(InboundEvent{Type: "message", Text: "overflow"}))
}

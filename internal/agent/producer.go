package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrInference marks any backend failure: request error, timeout, or an
// empty completion. It signals unavailability, never a quality rejection.
var ErrInference = errors.New("inference backend failure")

// noDocumentsSentinel is what the producer renders when the session has no
// documents at all, as opposed to documents that extracted to empty text.
const noDocumentsSentinel = "No documents available"

// Producer turns a generation context, a question and optional reviewer
// feedback into one candidate answer. Exactly one completion call per
// invocation; all retry logic lives in the orchestrator.
type Producer struct {
	completer Completer
}

func NewProducer(completer Completer) *Producer {
	return &Producer{completer: completer}
}

// Generate produces a candidate answer. feedback is empty on the first
// attempt and carries the reviewer's rejection reasons on later ones.
func (p *Producer) Generate(ctx context.Context, genCtx GenerationContext, question, feedback string) (string, error) {
	prompt := buildDraftPrompt(genCtx, question, feedback)

	raw, err := p.completer.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: draft completion: %v", ErrInference, err)
	}

	answer := strings.TrimSpace(raw)
	if answer == "" {
		return "", fmt.Errorf("%w: draft completion returned empty text", ErrInference)
	}
	return answer, nil
}

func buildDraftPrompt(genCtx GenerationContext, question, feedback string) string {
	documents := genCtx.Documents
	docGuidance := "Utilize document context where applicable."
	if !genCtx.HasDocuments {
		documents = noDocumentsSentinel
		docGuidance = "No documents available - rely on general knowledge."
	}

	var history strings.Builder
	for _, turn := range genCtx.History {
		history.WriteString(fmt.Sprintf("%s: %s\n", renderRole(turn.Role), turn.Content))
	}

	// The wording of the feedback slot changes with feedback presence; the
	// first attempt explicitly asks for a natural answer rather than just
	// omitting the block.
	feedbackSection := "Provide a natural conversational response."
	if strings.TrimSpace(feedback) != "" {
		feedbackSection = fmt.Sprintf(
			"FEEDBACK FROM PREVIOUS ATTEMPT:\n%s\nThe previous attempt was rejected for the reasons above. Fix them.",
			feedback,
		)
	}

	var b strings.Builder
	b.WriteString("You are a helpful AI assistant. Below is the content from uploaded documents and our conversation history.\n\n")
	b.WriteString("DOCUMENTS CONTENT:\n")
	b.WriteString(documents)
	b.WriteString("\n\nCONVERSATION HISTORY:\n")
	b.WriteString(history.String())
	b.WriteString("\n")
	b.WriteString(feedbackSection)
	b.WriteString("\n")
	b.WriteString(docGuidance)
	b.WriteString("\n\nINSTRUCTIONS:\n")
	b.WriteString("1. Provide accurate, detailed responses based on context\n")
	b.WriteString("2. Maintain conversational flow\n")
	b.WriteString("3. Address all aspects of the user's query\n")
	b.WriteString("4. If unsure, ask clarifying questions\n")
	b.WriteString("\nQUESTION:\n")
	b.WriteString(question)
	return b.String()
}

func renderRole(role string) string {
	switch role {
	case "assistant":
		return "Assistant"
	default:
		return "User"
	}
}

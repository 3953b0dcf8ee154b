package agent

import (
	"context"
	"fmt"
	"strings"
)

const criterionCount = 5

// criterionDocumentUsage is the index of the only criterion that is
// conditional: it is excluded from scoring when no document text exists.
const criterionDocumentUsage = 1

var criterionFeedback = [criterionCount]string{
	"Not relevant to question",
	"Poor document context usage",
	"Lacks logical flow",
	"Incomplete answer",
	"Didn't follow instructions",
}

// ReviewResult is the reviewer's decision on one candidate answer. Feedback
// is only meaningful when Approved is false; it is deterministic for a given
// set of failed criteria and is never shown to the end user.
type ReviewResult struct {
	Approved bool
	Feedback string
}

// Reviewer judges a candidate answer against a fixed five-point rubric via
// the inference backend.
type Reviewer struct {
	completer Completer
}

func NewReviewer(completer Completer) *Reviewer {
	return &Reviewer{completer: completer}
}

// Evaluate scores the answer. When document text is present the answer must
// pass 3 of 5 criteria; without documents the document-usage criterion is
// auto-satisfied and the bar is 2 of the remaining 4, since judging document
// usage against an answer that had no documents to use would be meaningless.
func (r *Reviewer) Evaluate(ctx context.Context, answer string, genCtx GenerationContext, question string) (ReviewResult, error) {
	prompt := buildReviewPrompt(answer, genCtx, question)

	raw, err := r.completer.Complete(ctx, prompt)
	if err != nil {
		return ReviewResult{}, fmt.Errorf("%w: review completion: %v", ErrInference, err)
	}
	if strings.TrimSpace(raw) == "" {
		return ReviewResult{}, fmt.Errorf("%w: review completion returned empty text", ErrInference)
	}

	aspects := parseEvaluation(raw)
	return compileReview(aspects, genCtx.HasDocumentText()), nil
}

func buildReviewPrompt(answer string, genCtx GenerationContext, question string) string {
	docNote := "No document context was supplied; ignore document usage."
	if genCtx.HasDocumentText() {
		docNote = "Document context was supplied with the question."
	}

	return fmt.Sprintf(`Evaluate this response STRICTLY in YES/NO format.
%s

1. Relevant to question: %s?
2. Uses document context properly if given?
3. Logically coherent?
4. Complete answer?
5. Follows instructions?

Response: %s

Answer ONLY in this format:
1. YES/NO
2. YES/NO
3. YES/NO
4. YES/NO
5. YES/NO`, docNote, question, answer)
}

// parseEvaluation maps the backend's free-text reply to the fixed boolean
// vector. Line i must affirm "i+1. YES" at its ordinal position; a missing
// or malformed line counts as NO, never as an error.
func parseEvaluation(raw string) [criterionCount]bool {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.ToUpper(strings.TrimSpace(line))
		if line != "" {
			lines = append(lines, line)
		}
	}

	var aspects [criterionCount]bool
	for i := 0; i < criterionCount; i++ {
		if i < len(lines) {
			aspects[i] = strings.HasPrefix(lines[i], fmt.Sprintf("%d. YES", i+1))
		}
	}
	return aspects
}

func compileReview(aspects [criterionCount]bool, docsPresent bool) ReviewResult {
	score := 0
	threshold := 3
	for i, ok := range aspects {
		if !docsPresent && i == criterionDocumentUsage {
			continue
		}
		if ok {
			score++
		}
	}
	if !docsPresent {
		threshold = 2
	}

	if score >= threshold {
		return ReviewResult{Approved: true}
	}

	var failed []string
	for i, ok := range aspects {
		if !docsPresent && i == criterionDocumentUsage {
			continue
		}
		if !ok {
			failed = append(failed, "- "+criterionFeedback[i])
		}
	}
	return ReviewResult{
		Approved: false,
		Feedback: "Improvements needed:\n" + strings.Join(failed, "\n"),
	}
}

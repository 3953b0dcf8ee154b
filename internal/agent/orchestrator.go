package agent

import (
	"context"

	"go.uber.org/zap"
)

// FallbackAnswer is delivered when every attempt was rejected. Exhaustion is
// a designed outcome of the loop, not an error: the user always gets some
// response.
const FallbackAnswer = "Unable to generate satisfactory response after multiple attempts"

const defaultMaxAttempts = 3

// Drafter produces one candidate answer per call.
type Drafter interface {
	Generate(ctx context.Context, genCtx GenerationContext, question, feedback string) (string, error)
}

// Evaluator judges one candidate answer per call.
type Evaluator interface {
	Evaluate(ctx context.Context, answer string, genCtx GenerationContext, question string) (ReviewResult, error)
}

// Resolution is the terminal outcome of one refinement run. Approved is
// false when Answer is the fallback.
type Resolution struct {
	Answer   string
	Attempts int
	Approved bool
}

// Orchestrator drives bounded draft/review refinement. Attempts run strictly
// sequentially: each draft after the first depends on the previous
// rejection's feedback.
type Orchestrator struct {
	drafter     Drafter
	evaluator   Evaluator
	maxAttempts int
	logger      *zap.Logger
}

func NewOrchestrator(drafter Drafter, evaluator Evaluator, maxAttempts int, logger *zap.Logger) *Orchestrator {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		drafter:     drafter,
		evaluator:   evaluator,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// Resolve runs the loop to a terminal state. A backend failure aborts the
// whole resolution and propagates as ErrInference; quality exhaustion does
// not, it resolves to the fallback answer.
func (o *Orchestrator) Resolve(ctx context.Context, genCtx GenerationContext, question string) (Resolution, error) {
	feedback := ""

	for attempt := 1; attempt <= o.maxAttempts; attempt++ {
		answer, err := o.drafter.Generate(ctx, genCtx, question, feedback)
		if err != nil {
			return Resolution{}, err
		}

		review, err := o.evaluator.Evaluate(ctx, answer, genCtx, question)
		if err != nil {
			return Resolution{}, err
		}

		if review.Approved {
			o.logger.Debug("answer approved",
				zap.Int("attempt", attempt),
			)
			return Resolution{Answer: answer, Attempts: attempt, Approved: true}, nil
		}

		o.logger.Debug("answer rejected",
			zap.Int("attempt", attempt),
			zap.String("feedback", review.Feedback),
		)
		feedback = review.Feedback
	}

	o.logger.Info("refinement exhausted, using fallback answer",
		zap.Int("attempts", o.maxAttempts),
	)
	return Resolution{Answer: FallbackAnswer, Attempts: o.maxAttempts, Approved: false}, nil
}

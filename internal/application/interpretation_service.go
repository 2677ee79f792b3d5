package application

import (
	"context"
	"fmt"
	"time"

	"tarot-reading/internal/domain"
	"tarot-reading/internal/ports/output"
	"tarot-reading/internal/prompt"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "tarot-reading/internal/application"

// InterpretationService struct - validates an interpretation request against a
// session, renders the matching prompt and calls the model once.
// It never mutates the session it is given.
type InterpretationService struct {
	client  output.ModelClient
	timeout time.Duration
	tracer  trace.Tracer
}

// NewInterpretationService func - timeout <= 0 leaves the model call bounded only by ctx
func NewInterpretationService(client output.ModelClient, timeout time.Duration) *InterpretationService {
	return &InterpretationService{
		client:  client,
		timeout: timeout,
		tracer:  otel.Tracer(tracerName),
	}
}

// Interpret returns the model's raw text for request.
// Validation failures are returned before the model is called; model
// failures come back as *domain.InterpretationFailedError.
func (s *InterpretationService) Interpret(ctx context.Context, session *domain.ReadingSession, request domain.InterpretationRequest) (string, error) {
	if session == nil || request == nil {
		return "", fmt.Errorf("%w: insufficient or malformed interpretation request", domain.ErrInvalidRequest)
	}

	kind := kindOf(request)
	text, err := s.BuildPrompt(session, request)
	if err != nil {
		logrus.Warnf("Rejected %s interpretation for session %s: %v", kind, session.ID, err)
		return "", err
	}

	attrs := []attribute.KeyValue{
		attribute.String("tarot.kind", string(kind)),
		attribute.Int("tarot.card_count", session.CardCount()),
		attribute.Int("tarot.prompt_length", len(text)),
	}
	if index, ok := cardIndex(request); ok {
		attrs = append(attrs, attribute.Int("tarot.card_index", index))
	}
	ctx, span := s.tracer.Start(ctx, "tarot.interpret", trace.WithAttributes(attrs...))
	defer span.End()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	logrus.Debugf("Sending %s prompt (%d bytes) for session %s", kind, len(text), session.ID)
	start := time.Now()
	out, err := s.client.Generate(ctx, text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "model call failed")
		logrus.Errorf("Model call for %s interpretation failed after %v: %v", kind, time.Since(start), err)
		return "", &domain.InterpretationFailedError{Kind: kind, Cause: err}
	}

	logrus.Infof("Model call for %s interpretation completed in %v", kind, time.Since(start))
	return out, nil
}

// BuildPrompt dispatches request to the matching prompt renderer
func (s *InterpretationService) BuildPrompt(session *domain.ReadingSession, request domain.InterpretationRequest) (string, error) {
	switch r := request.(type) {
	case domain.SingleRequest:
		return prompt.RenderSingle(session.DrawnCards, r.CardIndex, r.Question)
	case domain.FeedbackRequest:
		return prompt.RenderFeedback(session.DrawnCards, r.CardIndex, r.Turns, r.Feedback)
	case domain.FinalRequest:
		return prompt.RenderFinal(session.DrawnCards, r.Interactions, r.Question)
	default:
		return "", fmt.Errorf("%w: insufficient or malformed interpretation request (%T)", domain.ErrInvalidRequest, request)
	}
}

// kindOf names the variant without calling methods on it, so a nil pointer
// variant is reported instead of dereferenced
func kindOf(request domain.InterpretationRequest) domain.InterpretationKind {
	switch request.(type) {
	case domain.SingleRequest:
		return domain.InterpretationSingle
	case domain.FeedbackRequest:
		return domain.InterpretationFeedback
	case domain.FinalRequest:
		return domain.InterpretationFinal
	}
	return "unknown"
}

func cardIndex(request domain.InterpretationRequest) (int, bool) {
	switch r := request.(type) {
	case domain.SingleRequest:
		return r.CardIndex, true
	case domain.FeedbackRequest:
		return r.CardIndex, true
	}
	return 0, false
}

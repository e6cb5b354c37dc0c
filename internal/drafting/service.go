package drafting

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	id "rtidesk/pkg/domain"
	dErrors "rtidesk/pkg/domain-errors"
	"rtidesk/pkg/requestcontext"
)

const (
	opDraft   = "draft"
	opSuggest = "suggest"
	opReview  = "review"
)

// Service drafts, reviews and routes RTI applications through a Generator.
// It keeps no state between calls and makes exactly one generator call per
// operation.
type Service struct {
	generator Generator
	logger    *slog.Logger
	metrics   *Metrics
	tracer    trace.Tracer
	timeout   time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithTimeout bounds each generator call. Zero leaves only the caller's deadline.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.timeout = d
	}
}

// New builds a Service. A nil generator is allowed: every operation then
// fails with a configuration error before any outbound call.
func New(generator Generator, opts ...Option) *Service {
	s := &Service{
		generator: generator,
		logger:    slog.Default(),
		tracer:    otel.Tracer("rtidesk/drafting"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Draft writes a formal RTI application from the request fields.
func (s *Service) Draft(ctx context.Context, req DraftRequest) (string, error) {
	lang, err := req.Validate()
	if err != nil {
		return "", s.fail(ctx, opDraft, err)
	}
	s.logger.InfoContext(ctx, "drafting rti application",
		"request_id", requestcontext.RequestID(ctx),
		"subject", req.Subject(),
		"language", lang.String(),
	)

	text, err := s.generate(ctx, opDraft, draftPrompt(req, lang), attribute.String("rti.language", lang.String()))
	if err != nil {
		return "", s.fail(ctx, opDraft, dErrors.Wrap(err, codeFor(err), "Failed to generate RTI content"))
	}
	text = PlainText(text)
	if text == "" {
		return "", s.fail(ctx, opDraft, dErrors.New(dErrors.CodeGeneration, "Failed to generate RTI content"))
	}
	return text, nil
}

// SuggestDepartmentAndPIO asks for the department and PIO designation most
// likely to hold the requested information.
func (s *Service) SuggestDepartmentAndPIO(ctx context.Context, subject, details string) (Suggestion, error) {
	subject = strings.TrimSpace(subject)
	details = strings.TrimSpace(details)
	if subject == "" && details == "" {
		return Suggestion{}, s.fail(ctx, opSuggest, dErrors.Validation("subject or details is required", "subject", "details"))
	}

	raw, err := s.generate(ctx, opSuggest, suggestPrompt(subject, details))
	if err != nil {
		return Suggestion{}, s.fail(ctx, opSuggest, dErrors.Wrap(err, codeFor(err), "Failed to suggest department and PIO"))
	}
	suggestion, err := parseSuggestion(raw)
	if err != nil {
		return Suggestion{}, s.fail(ctx, opSuggest, err)
	}
	return suggestion, nil
}

// Review returns an improved revision of content in lang.
func (s *Service) Review(ctx context.Context, content string, lang id.Language) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", s.fail(ctx, opReview, dErrors.Validation("content is required", "content"))
	}
	if lang == "" {
		lang = id.DefaultLanguage
	}

	text, err := s.generate(ctx, opReview, reviewPrompt(content, lang), attribute.String("rti.language", lang.String()))
	if err != nil {
		return "", s.fail(ctx, opReview, dErrors.Wrap(err, codeFor(err), "Failed to review RTI content"))
	}
	text = PlainText(text)
	if text == "" {
		return "", s.fail(ctx, opReview, dErrors.New(dErrors.CodeGeneration, "Failed to review RTI content"))
	}
	return text, nil
}

// generate performs the single outbound call for an operation.
func (s *Service) generate(ctx context.Context, operation, prompt string, attrs ...attribute.KeyValue) (string, error) {
	if s.generator == nil {
		return "", dErrors.New(dErrors.CodeConfiguration, "Gemini API key is not configured")
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	ctx, span := s.tracer.Start(ctx, "drafting."+operation,
		trace.WithAttributes(append(attrs, attribute.Int("rti.prompt_length", len(prompt)))...))
	defer span.End()

	start := time.Now()
	text, err := s.generator.Generate(ctx, prompt)
	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.New("generator returned empty text")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.record(operation, "error", start)
		return "", err
	}
	s.record(operation, "ok", start)
	return text, nil
}

func (s *Service) record(operation, result string, start time.Time) {
	if s.metrics != nil {
		s.metrics.observe(operation, result, start)
	}
}

func (s *Service) fail(ctx context.Context, operation string, err error) error {
	level := slog.LevelWarn
	if !dErrors.HasCode(err, dErrors.CodeValidation) {
		level = slog.LevelError
	}
	s.logger.Log(ctx, level, "drafting failed",
		"operation", operation,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	return err
}

// codeFor keeps configuration errors as they are; every other generator
// failure, including deadline expiry, is a generation error.
func codeFor(err error) dErrors.Code {
	if dErrors.HasCode(err, dErrors.CodeConfiguration) {
		return dErrors.CodeConfiguration
	}
	return dErrors.CodeGeneration
}

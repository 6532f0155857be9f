// Package predict turns validated measurements into advice using the loaded artifacts.
package predict

import (
	"context"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"diabetescheck/advice"
	"diabetescheck/ml"
	"diabetescheck/monitoring"
)

// ErrArtifactsUnavailable is returned by New when the scaler or classifier is missing.
var ErrArtifactsUnavailable = errors.New("scaler and classifier must both be loaded")

// Service applies the scaler and classifier to a FeatureVector.
// It is safe for concurrent use; the artifacts are never modified after New.
type Service struct {
	artifacts Artifacts
	cache     *lru.Cache[ml.FeatureVector, int]
	metrics   *monitoring.Metrics
	log       *zap.Logger
}

type Option func(*Service) error

// WithCache keeps up to size labels keyed by raw FeatureVector. Size 0 disables caching.
func WithCache(size int) Option {
	return func(s *Service) error {
		if size <= 0 {
			s.cache = nil
			return nil
		}
		cache, err := lru.New[ml.FeatureVector, int](size)
		if err != nil {
			return err
		}
		s.cache = cache
		return nil
	}
}

func WithMetrics(m *monitoring.Metrics) Option {
	return func(s *Service) error {
		s.metrics = m
		return nil
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Service) error {
		if log != nil {
			s.log = log
		}
		return nil
	}
}

// New returns a Service over loaded artifacts.
func New(artifacts Artifacts, opts ...Option) (*Service, error) {
	if artifacts.Scaler == nil || artifacts.Classifier == nil {
		return nil, ErrArtifactsUnavailable
	}
	s := &Service{artifacts: artifacts, log: zap.NewNop()}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Predict scales v, classifies it and returns the advice for the label.
func (s *Service) Predict(ctx context.Context, v ml.FeatureVector) (advice.Result, error) {
	start := time.Now()

	label, err := s.label(v)
	if err != nil {
		if s.metrics != nil {
			s.metrics.PredictionErrors.Inc()
		}
		s.log.Error("classifier failed", zap.Error(err))
		return advice.Result{}, fmt.Errorf("predict: %w", err)
	}

	result := advice.ForLabel(label)
	if s.metrics != nil {
		s.metrics.ObservePrediction(string(result.Outcome), time.Since(start))
	}
	s.log.Debug("prediction", zap.Int("label", label), zap.String("outcome", string(result.Outcome)))
	return result, nil
}

func (s *Service) label(v ml.FeatureVector) (int, error) {
	if s.cache != nil {
		if label, ok := s.cache.Get(v); ok {
			s.observeCache(true)
			return label, nil
		}
		s.observeCache(false)
	}

	scaled := s.artifacts.Scaler.Transform(v)
	label, err := s.artifacts.Classifier.Predict(scaled)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		s.cache.Add(v, label)
	}
	return label, nil
}

func (s *Service) observeCache(hit bool) {
	if s.metrics != nil {
		s.metrics.ObserveCache(hit)
	}
}

// Evaluate validates raw inputs and predicts. The classifier is not consulted
// when validation fails; the returned error then wraps an ml validation error.
func (s *Service) Evaluate(ctx context.Context, raw []string) (advice.Result, error) {
	v, err := ml.ParseFeatures(raw)
	if err != nil {
		s.observeValidation(err)
		return advice.Result{}, err
	}
	return s.Predict(ctx, v)
}

// EvaluateNamed is Evaluate for inputs keyed by field key.
func (s *Service) EvaluateNamed(ctx context.Context, values map[string]string) (advice.Result, error) {
	v, err := ml.ParseNamedFeatures(values)
	if err != nil {
		s.observeValidation(err)
		return advice.Result{}, err
	}
	return s.Predict(ctx, v)
}

func (s *Service) observeValidation(err error) {
	reason, field := ValidationReason(err), ""
	var verr *ml.ValidationError
	if errors.As(err, &verr) {
		field = verr.Field.Name
	}
	if s.metrics != nil {
		s.metrics.ObserveValidationFailure(reason, field)
	}
	s.log.Debug("rejected input", zap.String("reason", reason), zap.String("field", field))
}

// Artifacts returns the loaded artifacts.
func (s *Service) Artifacts() Artifacts {
	return s.artifacts
}

// ValidationReason classifies a validation error for responses and metrics.
func ValidationReason(err error) string {
	switch {
	case errors.Is(err, ml.ErrMissingField):
		return "missing_field"
	case errors.Is(err, ml.ErrParse):
		return "parse_error"
	case errors.Is(err, ml.ErrFieldCount):
		return "field_count"
	default:
		return ""
	}
}

// IsValidationError reports whether err is a user input error rather than a service failure.
func IsValidationError(err error) bool {
	return ValidationReason(err) != ""
}

// UserMessage returns the text shown to the user for a validation error.
func UserMessage(err error) string {
	var verr *ml.ValidationError
	switch {
	case errors.Is(err, ml.ErrMissingField):
		return advice.MissingFieldsMessage
	case errors.As(err, &verr):
		return fmt.Sprintf(advice.ParseErrorMessage, verr.Field.Label)
	case errors.Is(err, ml.ErrFieldCount):
		return fmt.Sprintf("Exactly %d values are required.", ml.NumFeatures)
	default:
		return "Prediction failed, please try again later."
	}
}

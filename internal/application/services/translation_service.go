package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fundroad/fundroad-go/internal/infrastructure/observability/logging"
	"github.com/fundroad/fundroad-go/internal/infrastructure/observability/performance"
	"github.com/fundroad/fundroad-go/internal/infrastructure/translation"
)

var (
	ErrEmptyText     = errors.New("text is required")
	ErrMissingTarget = errors.New("target_lang is required")
)

// TranslationService translates through the configured provider and always
// has a text to return: the original when translation fails.
type TranslationService struct {
	provider    translation.Translator
	timeout     time.Duration
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewTranslationService creates a new translation service
func NewTranslationService(provider translation.Translator, timeout time.Duration, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *TranslationService {
	return &TranslationService{provider: provider, timeout: timeout, logger: logger, perfTracker: perfTracker}
}

// Translate returns the translated text, or the original text alongside the error.
func (s *TranslationService) Translate(ctx context.Context, req translation.Request) (string, error) {
	if strings.TrimSpace(req.Text) == "" {
		return "", ErrEmptyText
	}
	if strings.TrimSpace(req.TargetLang) == "" {
		return req.Text, ErrMissingTarget
	}
	if s.provider == nil {
		return req.Text, translation.ErrNotConfigured
	}

	marker := s.perfTracker.StartOperationWithContext(ctx, "functions:translate", "")
	defer marker.Complete()
	marker.AddMetadata("provider", s.provider.Name())

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := s.provider.Translate(ctx, req)
	if err != nil {
		marker.SetError(err)
		s.logger.Functions().Error("Translation failed, returning original text",
			"provider", s.provider.Name(), "target", req.TargetLang, "error", err.Error(), "duration", time.Since(start))
		return req.Text, err
	}

	s.logger.Functions().Debug("Translation completed",
		"provider", s.provider.Name(), "target", req.TargetLang, "chars", len(req.Text), "duration", time.Since(start))
	return out, nil
}

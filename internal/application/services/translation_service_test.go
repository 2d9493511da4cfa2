package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundroad/fundroad-go/internal/infrastructure/observability/logging"
	"github.com/fundroad/fundroad-go/internal/infrastructure/translation"
)

type stubTranslator struct {
	out string
	err error
	got translation.Request
}

func (s *stubTranslator) Name() string { return "stub" }

func (s *stubTranslator) Translate(ctx context.Context, req translation.Request) (string, error) {
	s.got = req
	return s.out, s.err
}

type slowTranslator struct{}

func (slowTranslator) Name() string { return "slow" }

func (slowTranslator) Translate(ctx context.Context, req translation.Request) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestTranslateSuccess(t *testing.T) {
	stub := &stubTranslator{out: "Hello"}
	svc := NewTranslationService(stub, time.Second, logging.NewDiscardLogger(), nil)

	out, err := svc.Translate(context.Background(), translation.Request{Text: "Bonjour", TargetLang: "EN"})
	require.NoError(t, err)
	assert.Equal(t, "Hello", out)
	assert.Equal(t, "Bonjour", stub.got.Text)
}

func TestTranslateFallsBackToOriginal(t *testing.T) {
	stub := &stubTranslator{err: errOffline}
	svc := NewTranslationService(stub, time.Second, logging.NewDiscardLogger(), nil)

	out, err := svc.Translate(context.Background(), translation.Request{Text: "Bonjour", TargetLang: "EN"})
	assert.ErrorIs(t, err, errOffline)
	assert.Equal(t, "Bonjour", out)
}

func TestTranslateTimeout(t *testing.T) {
	svc := NewTranslationService(slowTranslator{}, 10*time.Millisecond, logging.NewDiscardLogger(), nil)

	out, err := svc.Translate(context.Background(), translation.Request{Text: "Bonjour", TargetLang: "EN"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "Bonjour", out)
}

func TestTranslateInputErrors(t *testing.T) {
	svc := NewTranslationService(&stubTranslator{out: "x"}, time.Second, logging.NewDiscardLogger(), nil)

	out, err := svc.Translate(context.Background(), translation.Request{Text: "  ", TargetLang: "EN"})
	assert.ErrorIs(t, err, ErrEmptyText)
	assert.Equal(t, "", out)

	out, err = svc.Translate(context.Background(), translation.Request{Text: "Bonjour"})
	assert.ErrorIs(t, err, ErrMissingTarget)
	assert.Equal(t, "Bonjour", out)

	unconfigured := NewTranslationService(nil, time.Second, logging.NewDiscardLogger(), nil)
	out, err = unconfigured.Translate(context.Background(), translation.Request{Text: "Bonjour", TargetLang: "EN"})
	assert.ErrorIs(t, err, translation.ErrNotConfigured)
	assert.Equal(t, "Bonjour", out)
}

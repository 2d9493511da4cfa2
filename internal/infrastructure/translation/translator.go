// Package translation provides the machine translation providers behind the
// translate edge function.
package translation

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrNotConfigured = errors.New("translation provider is not configured")
	ErrEmptyResult   = errors.New("translation provider returned no text")
)

// Request is one translation job. SourceLang is optional; providers detect it when empty.
type Request struct {
	Text       string
	TargetLang string
	SourceLang string
}

// Translator is implemented by each provider.
type Translator interface {
	Name() string
	Translate(ctx context.Context, req Request) (string, error)
}

// NormalizeLang upper-cases a language code and keeps the region only for the
// variants providers distinguish ("EN-GB", "PT-BR").
func NormalizeLang(code string) string {
	code = strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(code, "_", "-")))
	if base, region, ok := strings.Cut(code, "-"); ok {
		switch base {
		case "EN", "PT", "ZH":
			return base + "-" + region
		}
		return base
	}
	return code
}

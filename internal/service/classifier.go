package service

import (
	"strings"
	"unicode"

	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/provider"
)

const maxErrorLength = 255

// ClassifyFailure maps a publish failure onto the reason stored on the post.
func ClassifyFailure(err error) string {
	if perr, ok := provider.AsError(err); ok {
		switch perr.Class {
		case provider.ClassPermission:
			if perr.DuplicateContent() {
				return models.ReasonDuplicateContent
			}
			return models.ReasonPermissionDenied
		case provider.ClassAuth:
			return models.ReasonAuthenticationFailed
		}
	}
	if err == nil {
		return "unknown error"
	}
	return sanitizeMessage(err.Error())
}

// sanitizeMessage drops control characters, collapses whitespace and caps
// the result at maxErrorLength runes.
func sanitizeMessage(msg string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, msg)
	cleaned = strings.Join(strings.Fields(cleaned), " ")

	runes := []rune(cleaned)
	if len(runes) > maxErrorLength {
		cleaned = string(runes[:maxErrorLength])
	}
	if cleaned == "" {
		return "unknown error"
	}
	return cleaned
}

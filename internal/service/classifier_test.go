package service

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/provider"
	"github.com/stretchr/testify/require"
)

func TestClassifyFailure(t *testing.T) {
	require.Equal(t, models.ReasonDuplicateContent, ClassifyFailure(&provider.Error{Class: provider.ClassPermission, Detail: "Duplicate content"}))
	require.Equal(t, models.ReasonPermissionDenied, ClassifyFailure(&provider.Error{Class: provider.ClassPermission, Detail: "suspended"}))
	require.Equal(t, models.ReasonAuthenticationFailed, ClassifyFailure(&provider.Error{Class: provider.ClassAuth}))
	require.Equal(t, "rate limited", ClassifyFailure(errors.New("rate\n limited\x00")))
}

func TestClassifyFailureWrapped(t *testing.T) {
	err := errors.Join(errors.New("publish"), &provider.Error{Class: provider.ClassPermission, Detail: "duplicate content"})
	require.Equal(t, models.ReasonDuplicateContent, ClassifyFailure(err))
}

func TestSanitizeMessageTruncatesRunes(t *testing.T) {
	msg := strings.Repeat("é", 300)
	got := sanitizeMessage(msg)
	require.Equal(t, 255, utf8.RuneCountInString(got))
	require.Equal(t, "unknown error", sanitizeMessage("\x01\x02 "))
}

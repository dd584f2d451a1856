package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Client is the slice of the posting provider's API the dispatcher needs.
type Client interface {
	VerifyIdentity(ctx context.Context, accessToken string) (*Identity, error)
	Publish(ctx context.Context, accessToken, text string) (string, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
}

// Authenticator drives the interactive OAuth 2.0 login with PKCE.
type Authenticator interface {
	AuthCodeURL(state, verifier string) string
	Exchange(ctx context.Context, code, verifier string) (*TokenPair, error)
}

type Identity struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	Name            string `json:"name"`
	ProfileImageURL string `json:"profile_image_url"`
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

type ErrorClass int

const (
	ClassOther ErrorClass = iota
	ClassAuth
	ClassPermission
)

func (c ErrorClass) String() string {
	switch c {
	case ClassAuth:
		return "auth"
	case ClassPermission:
		return "permission"
	default:
		return "other"
	}
}

// Error is a failure reported by the provider API.
type Error struct {
	Class      ErrorClass
	StatusCode int
	Title      string
	Detail     string
}

func (e *Error) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = e.Title
	}
	if msg == "" {
		return fmt.Sprintf("provider returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, msg)
}

const duplicateContentMarker = "duplicate content"

// DuplicateContent reports whether the provider refused the post because the
// same text was already published.
func (e *Error) DuplicateContent() bool {
	return e.Class == ClassPermission && strings.Contains(strings.ToLower(e.Detail), duplicateContentMarker)
}

// ClassifyStatus maps an HTTP status code onto the coarse error class.
func ClassifyStatus(status int) ErrorClass {
	switch status {
	case 401:
		return ClassAuth
	case 403:
		return ClassPermission
	default:
		return ClassOther
	}
}

// AsError unwraps err into a provider error when it carries one.
func AsError(err error) (*Error, bool) {
	var perr *Error
	if errors.As(err, &perr) {
		return perr, true
	}
	return nil, false
}

package service

import (
	"context"

	"github.com/maheshrc27/postpilot/internal/provider"
	"github.com/stretchr/testify/mock"
)

// MockProvider is a mock implementation of provider.Client.
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) VerifyIdentity(ctx context.Context, accessToken string) (*provider.Identity, error) {
	args := m.Called(ctx, accessToken)
	identity, _ := args.Get(0).(*provider.Identity)
	return identity, args.Error(1)
}

func (m *MockProvider) Publish(ctx context.Context, accessToken, text string) (string, error) {
	args := m.Called(ctx, accessToken, text)
	return args.String(0), args.Error(1)
}

func (m *MockProvider) Refresh(ctx context.Context, refreshToken string) (*provider.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	pair, _ := args.Get(0).(*provider.TokenPair)
	return pair, args.Error(1)
}

func (m *MockProvider) AuthCodeURL(state, verifier string) string {
	args := m.Called(state, verifier)
	return args.String(0)
}

func (m *MockProvider) Exchange(ctx context.Context, code, verifier string) (*provider.TokenPair, error) {
	args := m.Called(ctx, code, verifier)
	pair, _ := args.Get(0).(*provider.TokenPair)
	return pair, args.Error(1)
}

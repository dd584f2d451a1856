package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

var loginScopes = []string{"tweet.read", "users.read", "tweet.write", "offline.access"}

type XConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURI  string
	APIBaseURL   string
	AuthURL      string
	TokenURL     string
	Timeout      time.Duration
}

// XClient talks to the X API v2 and its OAuth 2.0 token endpoint.
type XClient struct {
	baseURL    string
	oauth      *oauth2.Config
	httpClient *http.Client
}

var (
	_ Client        = (*XClient)(nil)
	_ Authenticator = (*XClient)(nil)
)

func NewXClient(cfg XConfig) *XClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	authStyle := oauth2.AuthStyleInHeader
	if cfg.ClientSecret == "" {
		// public clients send client_id in the form body
		authStyle = oauth2.AuthStyleInParams
	}

	return &XClient{
		baseURL: strings.TrimRight(cfg.APIBaseURL, "/"),
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURI,
			Scopes:       loginScopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: authStyle,
			},
		},
		httpClient: &http.Client{Timeout: timeout},
	}
}

type xUserResponse struct {
	Data   *Identity `json:"data"`
	Title  string    `json:"title"`
	Detail string    `json:"detail"`
}

type xTweetRequest struct {
	Text string `json:"text"`
}

type xTweetResponse struct {
	Data *struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

type xProblem struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Type   string `json:"type"`
	Status int    `json:"status"`
}

func (c *XClient) VerifyIdentity(ctx context.Context, accessToken string) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/users/me?user.fields=profile_image_url", nil)
	if err != nil {
		return nil, fmt.Errorf("build users/me request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var out xUserResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode users/me response: %w", err)
	}
	if out.Data == nil || out.Data.ID == "" {
		return nil, errors.New("users/me response has no user")
	}
	return out.Data, nil
}

func (c *XClient) Publish(ctx context.Context, accessToken, text string) (string, error) {
	payload, err := json.Marshal(xTweetRequest{Text: text})
	if err != nil {
		return "", fmt.Errorf("encode tweet: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tweets", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build tweet request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return "", err
	}

	var out xTweetResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode tweet response: %w", err)
	}
	if out.Data == nil || out.Data.ID == "" {
		return "", errors.New("tweet response has no id")
	}
	return out.Data.ID, nil
}

func (c *XClient) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, errors.New("refresh token is empty")
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := c.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	return pairFromToken(token), nil
}

func (c *XClient) AuthCodeURL(state, verifier string) string {
	return c.oauth.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
}

func (c *XClient) Exchange(ctx context.Context, code, verifier string) (*TokenPair, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := c.oauth.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	return pairFromToken(token), nil
}

func (c *XClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		return nil, problemError(resp.StatusCode, body)
	}
	return body, nil
}

func problemError(status int, body []byte) *Error {
	perr := &Error{Class: ClassifyStatus(status), StatusCode: status}

	var problem xProblem
	if err := json.Unmarshal(body, &problem); err == nil {
		perr.Title = problem.Title
		perr.Detail = problem.Detail
	} else {
		perr.Detail = strings.TrimSpace(string(body))
	}
	return perr
}

func pairFromToken(token *oauth2.Token) *TokenPair {
	return &TokenPair{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Expiry:       token.Expiry,
	}
}

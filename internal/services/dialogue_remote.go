package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// RemoteProvider talks to the companion backend's dialogue API. Every
// request carries a short-lived HS256 device token. Any transport or
// protocol failure surfaces as an error so the fallback wrapper can serve
// the canned scripts instead; errors from here never reach the user.
type RemoteProvider struct {
	baseURL  string
	deviceID string
	secret   []byte
	client   *http.Client
	now      func() time.Time
}

type deviceClaims struct {
	DeviceID string `json:"did"`
	jwt.RegisteredClaims
}

func NewRemoteProvider(baseURL, deviceID string, secret []byte, timeout time.Duration) *RemoteProvider {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &RemoteProvider{
		baseURL:  baseURL,
		deviceID: deviceID,
		secret:   secret,
		client:   &http.Client{Timeout: timeout},
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (p *RemoteProvider) signToken() (string, error) {
	now := p.now()
	claims := deviceClaims{
		DeviceID: p.deviceID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(5 * time.Minute)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.secret)
}

type remoteDialogueRequest struct {
	Type    string `json:"type"` // "init" or "chat"
	Bucket  string `json:"bucket,omitempty"`
	Message string `json:"message,omitempty"`
}

type remoteDialogueResponse struct {
	Success bool `json:"success"`
	Data    []struct {
		Content      string `json:"content"`
		WaitDuration int    `json:"waitDuration"` // milliseconds
	} `json:"data"`
	Error string `json:"error,omitempty"`
}

func (p *RemoteProvider) call(ctx context.Context, req remoteDialogueRequest) ([]DialogueLine, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/dialogue", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	token, err := p.signToken()
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dialogue api status %d", resp.StatusCode)
	}
	var out remoteDialogueResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, NewUnavailableError(out.Error)
	}
	lines := make([]DialogueLine, 0, len(out.Data))
	for _, d := range out.Data {
		delay := time.Duration(d.WaitDuration) * time.Millisecond
		if delay <= 0 {
			delay = defaultLineDelay
		}
		lines = append(lines, DialogueLine{Text: d.Content, Delay: delay})
	}
	return lines, nil
}

func (p *RemoteProvider) OpeningLines(ctx context.Context, bucket HourBucket) ([]DialogueLine, error) {
	return p.call(ctx, remoteDialogueRequest{Type: "init", Bucket: string(bucket)})
}

func (p *RemoteProvider) Reply(ctx context.Context, userText string) ([]DialogueLine, error) {
	return p.call(ctx, remoteDialogueRequest{Type: "chat", Message: userText})
}

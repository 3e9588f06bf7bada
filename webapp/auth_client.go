package webapp

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrUpstreamUnavailable marks a backend call that failed or timed out.
// Pages must fail closed on it: treat the caller as unauthenticated or
// the operation as failed, never hang or retry.
var ErrUpstreamUnavailable = errors.New("backend service unavailable")

// ErrUnauthenticated marks a backend 401: the cached token is expired or
// otherwise rejected. Pages clear the session and send the browser back
// to the login page.
var ErrUnauthenticated = errors.New("session is no longer valid")

// AuthClient talks to the auth API over HTTP.
type AuthClient struct {
	httpClient *http.Client
	baseURL    string
}

func NewAuthClient(baseURL string, timeout time.Duration) *AuthClient {
	return &AuthClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token. The error message for
// a rejected login comes from the API body so the page can show it.
func (c *AuthClient) Login(username, password string) (string, error) {
	body, _ := json.Marshal(loginPayload{Username: username, Password: password})

	resp, err := c.httpClient.Post(c.baseURL+"/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", ErrUpstreamUnavailable
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login failed: %s", apiError(raw))
	}

	var parsed struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil || parsed.Token == "" {
		return "", errors.New("token not found in server response")
	}
	return parsed.Token, nil
}

// Register creates a new account. The email is sent empty so the auth
// API synthesizes a unique one. Returns the API's message, which may
// include a degraded-success warning.
func (c *AuthClient) Register(username, password string) (string, error) {
	body, _ := json.Marshal(registerPayload{Username: username, Email: "", Password: password})

	resp, err := c.httpClient.Post(c.baseURL+"/auth/register", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", ErrUpstreamUnavailable
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("registration failed: %s", apiError(raw))
	}

	var parsed struct {
		Message string `json:"message"`
		Warning string `json:"warning"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "registered", nil
	}
	if parsed.Warning != "" {
		return parsed.Message + " (" + parsed.Warning + ")", nil
	}
	return parsed.Message, nil
}

// apiError pulls the error field out of an API error body, falling back
// to the raw text.
func apiError(raw []byte) string {
	var parsed struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Error != "" {
		return parsed.Error
	}
	return string(raw)
}

// Package calendar mirrors bookings to Google Calendar.
package calendar

import (
	"bytes"
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultBaseURL  = "https://www.googleapis.com/calendar/v3"
	defaultTokenURL = "https://oauth2.googleapis.com/token"
	calendarScope   = "https://www.googleapis.com/auth/calendar"
	jwtBearerGrant  = "urn:ietf:params:oauth:grant-type:jwt-bearer"

	assertionLifetime = time.Hour
	tokenRefreshSlack = time.Minute
)

// ErrEventNotFound is returned when the calendar no longer has the event.
var ErrEventNotFound = errors.New("calendar: event not found")

// ServiceAccountKey holds the fields of a Google service-account JSON key that the
// client needs.
type ServiceAccountKey struct {
	ClientEmail  string `json:"client_email"`
	PrivateKey   string `json:"private_key"`
	PrivateKeyID string `json:"private_key_id"`
	TokenURI     string `json:"token_uri"`
}

// LoadServiceAccountKey reads a service-account key file.
func LoadServiceAccountKey(path string) (ServiceAccountKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ServiceAccountKey{}, fmt.Errorf("read service account key: %w", err)
	}
	var key ServiceAccountKey
	if err := json.Unmarshal(data, &key); err != nil {
		return ServiceAccountKey{}, fmt.Errorf("decode service account key: %w", err)
	}
	if key.ClientEmail == "" || key.PrivateKey == "" {
		return ServiceAccountKey{}, errors.New("service account key is missing client_email or private_key")
	}
	return key, nil
}

// EventTime is a calendar event boundary.
type EventTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone,omitempty"`
}

// Attendee is an invited party; rooms are invited as resources.
type Attendee struct {
	Email    string `json:"email"`
	Resource bool   `json:"resource,omitempty"`
}

// Event is the subset of the Calendar v3 event resource written by the service.
type Event struct {
	ID          string     `json:"id,omitempty"`
	Summary     string     `json:"summary"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	Start       EventTime  `json:"start"`
	End         EventTime  `json:"end"`
	Attendees   []Attendee `json:"attendees,omitempty"`
}

// APIError is a non-2xx response from the token or calendar endpoint.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("calendar: unexpected status %d: %s", e.StatusCode, e.Body)
}

// GoogleClient talks to the Calendar v3 REST API as a service account.
type GoogleClient struct {
	httpClient *http.Client
	baseURL    string
	tokenURL   string
	email      string
	keyID      string
	signingKey *rsa.PrivateKey
	now        func() time.Time

	mu     sync.Mutex
	token  string
	expiry time.Time
}

// ClientOption customises a GoogleClient.
type ClientOption func(*GoogleClient)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *GoogleClient) { c.httpClient = client }
}

// WithBaseURL points the client at another Calendar API root.
func WithBaseURL(base string) ClientOption {
	return func(c *GoogleClient) { c.baseURL = strings.TrimRight(base, "/") }
}

// WithTokenURL overrides the OAuth token endpoint.
func WithTokenURL(tokenURL string) ClientOption {
	return func(c *GoogleClient) { c.tokenURL = tokenURL }
}

// WithClock injects the time source used for assertions and token expiry.
func WithClock(now func() time.Time) ClientOption {
	return func(c *GoogleClient) { c.now = now }
}

// NewGoogleClient builds a client from a service-account key.
func NewGoogleClient(key ServiceAccountKey, opts ...ClientOption) (*GoogleClient, error) {
	signingKey, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(key.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("parse service account private key: %w", err)
	}

	client := &GoogleClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultBaseURL,
		tokenURL:   defaultTokenURL,
		email:      key.ClientEmail,
		keyID:      key.PrivateKeyID,
		signingKey: signingKey,
		now:        time.Now,
	}
	if key.TokenURI != "" {
		client.tokenURL = key.TokenURI
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type assertionClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// accessToken returns a cached bearer token, exchanging a fresh signed assertion
// when the cached one is about to expire.
func (c *GoogleClient) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.token != "" && now.Add(tokenRefreshSlack).Before(c.expiry) {
		return c.token, nil
	}

	claims := assertionClaims{
		Scope: calendarScope,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.email,
			Audience:  jwt.ClaimStrings{c.tokenURL},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(assertionLifetime)),
		},
	}
	assertion := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if c.keyID != "" {
		assertion.Header["kid"] = c.keyID
	}
	signed, err := assertion.SignedString(c.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token assertion: %w", err)
	}

	form := url.Values{}
	form.Set("grant_type", jwtBearerGrant)
	form.Set("assertion", signed)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var tok tokenResponse
	if err := c.do(req, &tok); err != nil {
		return "", fmt.Errorf("exchange token assertion: %w", err)
	}
	if tok.AccessToken == "" {
		return "", errors.New("exchange token assertion: empty access token")
	}

	c.token = tok.AccessToken
	c.expiry = now.Add(time.Duration(tok.ExpiresIn) * time.Second)
	return c.token, nil
}

// CreateEvent inserts event into calendarID and returns the new event id.
func (c *GoogleClient) CreateEvent(ctx context.Context, calendarID string, event Event) (string, error) {
	var created Event
	if err := c.call(ctx, http.MethodPost, c.eventsURL(calendarID, ""), event, &created); err != nil {
		return "", fmt.Errorf("create event: %w", err)
	}
	return created.ID, nil
}

// PatchEvent overwrites the writable fields of an existing event.
func (c *GoogleClient) PatchEvent(ctx context.Context, calendarID, eventID string, event Event) error {
	if err := c.call(ctx, http.MethodPatch, c.eventsURL(calendarID, eventID), event, nil); err != nil {
		return fmt.Errorf("patch event %s: %w", eventID, err)
	}
	return nil
}

// DeleteEvent removes an event. Deleting an event that is already gone succeeds.
func (c *GoogleClient) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	err := c.call(ctx, http.MethodDelete, c.eventsURL(calendarID, eventID), nil, nil)
	if err != nil && !errors.Is(err, ErrEventNotFound) {
		return fmt.Errorf("delete event %s: %w", eventID, err)
	}
	return nil
}

func (c *GoogleClient) eventsURL(calendarID, eventID string) string {
	u := c.baseURL + "/calendars/" + url.PathEscape(calendarID) + "/events"
	if eventID != "" {
		u += "/" + url.PathEscape(eventID)
	}
	return u
}

func (c *GoogleClient) call(ctx context.Context, method, endpoint string, body, out any) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *GoogleClient) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		_, _ = io.Copy(io.Discard, resp.Body)
		return ErrEventNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"time"

	apperrors "jaekwon721/nikewatcher/pkg/errors"

	"golang.org/x/net/html/charset"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/132.0.0.0 Safari/537.36"

// Session wraps an HTTP client owned by exactly one worker. Sessions are not
// shared between workers so connection state and header fingerprints stay
// independent per category.
type Session struct {
	client *http.Client
}

// NewSession creates a session with its own transport and timeout
func NewSession() *Session {
	return &Session{
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: &http.Transport{},
		},
	}
}

// setBrowserHeaders sets headers matching an ordinary browser page load
func setBrowserHeaders(req *http.Request) {
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("User-Agent", userAgent)
}

// setAPIHeaders sets headers matching the storefront's own wall client
func setAPIHeaders(req *http.Request) {
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("nike-api-caller-id", "nike:dotcom:browse:wall.client:2.0")
	req.Header.Set("Origin", "https://www.nike.com")
	req.Header.Set("Referer", "https://www.nike.com/")
	req.Header.Set("User-Agent", userAgent)
}

// get issues the request and checks the status code, mapping rate limiting
// and other non-200 responses to typed errors
func (s *Session) get(ctx context.Context, url string, setHeaders func(*http.Request)) ([]byte, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, apperrors.NewTransport(url, "failed to create request", err)
	}
	setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, nil, apperrors.NewTransport(url, "failed to fetch URL", err)
	}
	defer resp.Body.Close()

	if slices.Contains([]int{http.StatusTooManyRequests, 430}, resp.StatusCode) {
		return nil, nil, apperrors.NewRateLimit(url, resp.Header.Get("Retry-After"))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, nil, apperrors.NewTransport(url, fmt.Sprintf("unexpected status code: %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, apperrors.NewTransport(url, "failed to read response body", err)
	}

	return body, resp.Header, nil
}

// GetHTML fetches a page with the browser profile and returns the body
// converted to UTF-8 if necessary
func (s *Session) GetHTML(ctx context.Context, url string) (io.Reader, error) {
	body, header, err := s.get(ctx, url, setBrowserHeaders)
	if err != nil {
		return nil, err
	}

	encoding, name, _ := charset.DetermineEncoding(body, header.Get("Content-Type"))
	if name == "utf-8" || name == "UTF-8" {
		return bytes.NewReader(body), nil
	}

	utf8Reader := encoding.NewDecoder().Reader(bytes.NewReader(body))
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, utf8Reader); err != nil {
		return nil, apperrors.NewTransport(url, "failed to convert body to UTF-8", err)
	}
	return &buf, nil
}

// GetJSON fetches a URL with the API profile and decodes the JSON body into v
func (s *Session) GetJSON(ctx context.Context, url string, v interface{}) error {
	body, _, err := s.get(ctx, url, setAPIHeaders)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		return apperrors.NewParsing(url, "failed to decode JSON response", err)
	}
	return nil
}

package httpfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/localpad/localpad/internal/ports"
)

const maxBodyBytes = 1 << 20

// Source fetches one entry from a public JSON endpoint. Any failure —
// network error, non-2xx status, malformed body — is an error; callers are
// expected to chain a local fallback.
type Source struct {
	client *http.Client
	url    string
}

var _ ports.FeedSource = (*Source)(nil)

func NewSource(client *http.Client, url string) *Source {
	if client == nil {
		client = http.DefaultClient
	}
	return &Source{client: client, url: url}
}

// payload covers the shapes the public fact/quote endpoints actually
// return; the first non-empty field wins.
type payload struct {
	Fact    string `json:"fact"`
	Text    string `json:"text"`
	Quote   string `json:"quote"`
	Content string `json:"content"`
	Author  string `json:"author"`
}

func (s *Source) Fetch(ctx context.Context) (ports.FeedEntry, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return ports.FeedEntry{}, fmt.Errorf("create request: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", "pad/feed")

	response, err := s.client.Do(request)
	if err != nil {
		return ports.FeedEntry{}, fmt.Errorf("perform request: %w", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxBodyBytes))
	if err != nil {
		return ports.FeedEntry{}, fmt.Errorf("read response: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return ports.FeedEntry{}, fmt.Errorf("status %d: %s", response.StatusCode, strings.TrimSpace(string(body)))
	}

	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return ports.FeedEntry{}, fmt.Errorf("decode payload: %w", err)
	}

	text := firstNonEmpty(p.Fact, p.Text, p.Quote, p.Content)
	if text == "" {
		return ports.FeedEntry{}, fmt.Errorf("payload carries no usable text")
	}

	source := s.url
	if p.Author != "" {
		source = p.Author
	}

	return ports.FeedEntry{Text: text, Source: source}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

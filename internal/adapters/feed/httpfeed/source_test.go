package httpfeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceFetchFact(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"fact":"Cats sleep 70% of their lives."}`))
	}))
	defer server.Close()

	entry, err := NewSource(server.Client(), server.URL).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Cats sleep 70% of their lives.", entry.Text)
	assert.Equal(t, server.URL, entry.Source)
}

func TestSourceFetchQuoteWithAuthor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"quote":"Simplicity is complicated.","author":"Rob Pike"}`))
	}))
	defer server.Close()

	entry, err := NewSource(server.Client(), server.URL).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Simplicity is complicated.", entry.Text)
	assert.Equal(t, "Rob Pike", entry.Source)
}

func TestSourceFetchRejectsNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := NewSource(server.Client(), server.URL).Fetch(context.Background())
	require.ErrorContains(t, err, "status 502")
}

func TestSourceFetchRejectsEmptyPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"author":"nobody"}`))
	}))
	defer server.Close()

	_, err := NewSource(server.Client(), server.URL).Fetch(context.Background())
	require.ErrorContains(t, err, "no usable text")
}

func TestSourceFetchRejectsMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	_, err := NewSource(server.Client(), server.URL).Fetch(context.Background())
	require.ErrorContains(t, err, "decode payload")
}

func TestSourceFetchHonorsContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSource(server.Client(), server.URL).Fetch(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

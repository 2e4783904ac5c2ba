package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL_Success(t *testing.T) {
	var gotUA, gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotHeader = r.Header.Get("X-Test")
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html><body><h1>Test</h1></body></html>"))
	}))
	defer server.Close()

	opts := DefaultOptions()
	opts.Headers = map[string]string{"X-Test": "yes"}

	result, err := URL(context.Background(), server.URL, opts)
	require.NoError(t, err)
	assert.Equal(t, server.URL, result.URL)
	assert.Contains(t, result.Body, "<h1>Test</h1>")
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, DefaultUserAgent, gotUA)
	assert.Equal(t, "yes", gotHeader)
}

func TestURL_InvalidURL(t *testing.T) {
	_, err := URL(context.Background(), "not-a-valid-url", nil)
	require.Error(t, err)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "invalid URL")
}

func TestURL_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.Error(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, http.StatusTooManyRequests, result.StatusCode)

	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusTooManyRequests, fetchErr.StatusCode)
	assert.Contains(t, err.Error(), "429")
}

func TestDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<ul><li class="job"><a href="/j/1"> Backend   Engineer </a></li></ul>`))
	}))
	defer server.Close()

	doc, err := Document(context.Background(), server.URL, nil)
	require.NoError(t, err)

	job := doc.Find("li.job")
	assert.Equal(t, 1, job.Length())
	assert.Equal(t, "Backend Engineer", Text(job, "a"))
	assert.Equal(t, "/j/1", Attr(job, "a", "href"))
	assert.Empty(t, Attr(job, "span", "title"))
}

func TestJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"count": 2}`))
	}))
	defer server.Close()

	var payload struct {
		Count int `json:"count"`
	}
	require.NoError(t, JSON(context.Background(), server.URL, nil, &payload))
	assert.Equal(t, 2, payload.Count)
}

func TestJSON_Malformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"count":`))
	}))
	defer server.Close()

	var payload map[string]any
	err := JSON(context.Background(), server.URL, nil, &payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode JSON")
}

func TestBuildURL(t *testing.T) {
	got, err := BuildURL("https://example.com/jobs?sort=date", map[string]string{
		"q":     "python, backend",
		"l":     "Germany",
		"empty": "",
	})
	require.NoError(t, err)
	assert.Contains(t, got, "q=python%2C+backend")
	assert.Contains(t, got, "l=Germany")
	assert.Contains(t, got, "sort=date")
	assert.NotContains(t, got, "empty")
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a b c", CleanText("  a \n b\t\tc "))
	assert.Equal(t, "line one\nline two", CleanMultiline("  line one \n\n   \n line two"))
}

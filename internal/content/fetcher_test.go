package content

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func llmServer(t *testing.T, status int, content string, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		var req llmRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req.Messages[1].Content, "User Interests: AI, Robotics")
		assert.Contains(t, req.Messages[1].Content, "User Location: Berlin")

		w.WriteHeader(status)
		fmt.Fprintf(w, `{"choices":[{"message":{"content":%q}}]}`, content)
	}))
	t.Cleanup(srv.Close)
	return srv
}

var testReq = Request{Interests: "AI, Robotics", Location: "Berlin"}

func TestFetch(t *testing.T) {
	ctx := context.Background()

	t.Run("PrimarySucceeds", func(t *testing.T) {
		var secondary int32
		glm := llmServer(t, http.StatusOK, "  Robots take Berlin by storm  ", nil)
		ds := llmServer(t, http.StatusOK, "unused", &secondary)

		f := NewFetcher([]Provider{
			{Name: SourceGLM, URL: glm.URL, APIKey: "key", Model: "glm"},
			{Name: SourceDeepSeek, URL: ds.URL, APIKey: "key", Model: "ds"},
		}, time.Second, nil)

		res := f.Fetch(ctx, testReq)
		assert.Equal(t, "Robots take Berlin by storm", res.Snippet)
		assert.False(t, res.Fallback)
		assert.Equal(t, SourceGLM, res.Source)
		assert.Zero(t, atomic.LoadInt32(&secondary))
	})

	t.Run("PrimaryFailureDoesNotTrySecondary", func(t *testing.T) {
		var primary, secondary int32
		glm := llmServer(t, http.StatusInternalServerError, "", &primary)
		ds := llmServer(t, http.StatusOK, "DeepSeek headlines", &secondary)

		f := NewFetcher([]Provider{
			{Name: SourceGLM, URL: glm.URL, APIKey: "key"},
			{Name: SourceDeepSeek, URL: ds.URL, APIKey: "key"},
		}, time.Second, nil)

		res := f.Fetch(ctx, testReq)
		assert.True(t, res.Fallback)
		assert.Equal(t, Fallback, res.Snippet)
		assert.Equal(t, int32(1), atomic.LoadInt32(&primary))
		assert.Zero(t, atomic.LoadInt32(&secondary))
	})

	t.Run("SecondaryUsedWhenPrimaryUnconfigured", func(t *testing.T) {
		ds := llmServer(t, http.StatusOK, "DeepSeek headlines", nil)

		f := NewFetcher([]Provider{
			{Name: SourceGLM, URL: "http://unused"},
			{Name: SourceDeepSeek, URL: ds.URL, APIKey: "key"},
		}, time.Second, nil)

		res := f.Fetch(ctx, testReq)
		assert.Equal(t, "DeepSeek headlines", res.Snippet)
		assert.Equal(t, SourceDeepSeek, res.Source)
	})

	t.Run("EmptyOutputFallsBack", func(t *testing.T) {
		glm := llmServer(t, http.StatusOK, "   ", nil)
		f := NewFetcher([]Provider{{Name: SourceGLM, URL: glm.URL, APIKey: "key"}}, time.Second, nil)

		res := f.Fetch(ctx, testReq)
		assert.True(t, res.Fallback)
		assert.Equal(t, Fallback, res.Snippet)
	})

	t.Run("NoProvidersConfigured", func(t *testing.T) {
		f := NewFetcher([]Provider{{Name: SourceGLM, URL: "http://unused"}}, time.Second, nil)
		res := f.Fetch(ctx, testReq)
		assert.True(t, res.Fallback)
		assert.Equal(t, SourceFallback, res.Source)
	})

	t.Run("CancelledContext", func(t *testing.T) {
		var hits int32
		glm := llmServer(t, http.StatusOK, "never seen", &hits)
		f := NewFetcher([]Provider{{Name: SourceGLM, URL: glm.URL, APIKey: "key"}}, time.Second, nil)

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		res := f.Fetch(cctx, testReq)
		assert.True(t, res.Fallback)
		assert.Zero(t, atomic.LoadInt32(&hits))
	})

	t.Run("SlowProviderTimesOut", func(t *testing.T) {
		slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		t.Cleanup(slow.Close)

		f := NewFetcher([]Provider{{Name: SourceGLM, URL: slow.URL, APIKey: "key"}}, 50*time.Millisecond, nil)
		res := f.Fetch(ctx, testReq)
		assert.True(t, res.Fallback)
	})
}

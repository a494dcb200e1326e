package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m := New()
	m.AuthAction("login", "success")
	m.AuthAction("login", "success")
	m.AuthAction("signup", "failed")
	m.ProfileSync("created")
	m.ContentFetch("fallback")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	out := string(body)
	assert.Contains(t, out, `newsaccess_auth_actions_total{action="login",status="success"} 2`)
	assert.Contains(t, out, `newsaccess_auth_actions_total{action="signup",status="failed"} 1`)
	assert.Contains(t, out, `newsaccess_profile_sync_total{result="created"} 1`)
	assert.Contains(t, out, `newsaccess_content_fetch_total{source="fallback"} 1`)
	assert.Contains(t, out, "go_goroutines")
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.AuthAction("login", "success")
		m.ProfileSync("created")
		m.ContentFetch("glm")
	})
}

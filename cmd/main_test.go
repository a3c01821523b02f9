package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aukilabs/hitscan/featureflag"
	"github.com/aukilabs/hitscan/models"
	"github.com/stretchr/testify/require"
)

func testConfig() config {
	return config{
		Addr:               ":4000",
		AdminAddr:          ":18190",
		PublicEndpoint:     "http://localhost:4000",
		ClientIdleTimeout:  time.Minute,
		LogSummaryInterval: time.Minute,
	}
}

func TestServiceMux(t *testing.T) {
	ready := func() bool { return true }
	service := newServiceMux(context.Background(), testConfig(), &models.WorldStore{}, featureflag.New(nil), ready)

	tests := []struct {
		path    string
		pattern string
	}{
		{path: "/worlds", pattern: "/worlds"},
		{path: "/worlds/42/raycast", pattern: "/worlds/"},
		{path: "/health", pattern: "/health"},
		{path: "/ready", pattern: "/ready"},
		{path: "/version", pattern: "/version"},
		{path: "/smoke-test", pattern: "/"},
		{path: "/metrics", pattern: "/"},
	}

	for _, test := range tests {
		t.Run(test.path, func(t *testing.T) {
			_, pattern := service.Handler(httptest.NewRequest(http.MethodPost, test.path, nil))
			require.Equal(t, test.pattern, pattern)
		})
	}
}

func TestAdminMux(t *testing.T) {
	ready := func() bool { return true }
	admin := newAdminMux(context.Background(), testConfig(), ready)

	for _, path := range []string{"/smoke-test", "/metrics", "/health", "/ready"} {
		t.Run(path, func(t *testing.T) {
			_, pattern := admin.Handler(httptest.NewRequest(http.MethodPost, path, nil))
			require.Equal(t, path, pattern)
		})
	}

	t.Run("smoke test rejects an invalid body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		admin.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/smoke-test", strings.NewReader("{")))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestValidateConfig(t *testing.T) {
	require.NoError(t, validateConfig(testConfig()))

	conf := testConfig()
	conf.ClientIdleTimeout = 0
	require.Error(t, validateConfig(conf))

	conf = testConfig()
	conf.LogSummaryInterval = 0
	require.Error(t, validateConfig(conf))

	conf = testConfig()
	conf.PublicEndpoint = "not an url"
	require.Error(t, validateConfig(conf))
}

package server

import (
	"bytes"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/campushub/modgate/pkg/config"
	handlers "github.com/campushub/modgate/pkg/handlers/http"
	"github.com/campushub/modgate/pkg/infra/prometheus"
	"github.com/campushub/modgate/pkg/server/middleware"
	"github.com/campushub/modgate/pkg/server/router"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticHandler struct {
	body string
}

func (h staticHandler) Handle(c *fiber.Ctx) error {
	return c.SendString(h.body)
}

type otherTransport struct{}

func (t otherTransport) GetTransport() handlers.HandlerTransport { return t }

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.Port = 0
	return cfg
}

func TestServer_Routes(t *testing.T) {
	logger, _ := test.NewNullLogger()
	transport := &handlers.HandlerTransportDTO{
		ModerateHandler:   staticHandler{body: "moderated"},
		GetVersionHandler: staticHandler{body: "v"},
	}
	mw := middleware.NewTransport(middleware.NewRequestIDMiddleware())

	srv, err := New(testConfig(), logger, router.NewModerationRouter(mw, transport, ""))
	require.NoError(t, err)
	app := srv.(*moderationServer).Router

	tests := []struct {
		method string
		path   string
		status int
		body   string
	}{
		{"POST", "/api/v1/moderate", fiber.StatusOK, "moderated"},
		{"POST", "/api/moderate-content", fiber.StatusOK, "moderated"},
		{"GET", "/version", fiber.StatusOK, "v"},
		{"GET", HealthPath, fiber.StatusOK, ""},
		{"GET", AdminHealthPath, fiber.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(tt.method, tt.path, bytes.NewReader(nil)), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.body != "" {
				b, _ := io.ReadAll(resp.Body)
				assert.Equal(t, tt.body, string(b))
				assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))
			}
		})
	}
}

func TestServer_InvalidTransport(t *testing.T) {
	logger, _ := test.NewNullLogger()
	_, err := New(testConfig(), logger, router.NewModerationRouter(nil, otherTransport{}, ""))
	assert.ErrorIs(t, err, router.ErrInvalidHandlerTransport)
}

func TestMetricsApp(t *testing.T) {
	prometheus.Initialize(prometheus.DefaultMetricsConfig())
	app := newMetricsApp()
	resp, err := app.Test(httptest.NewRequest("GET", MetricsPath, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	b, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(b), "go_goroutines")
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/oarkflow/porter/config"
	"github.com/oarkflow/porter/logging"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	s, err := New(cfg, Options{Logger: logging.Discard(), Registry: prometheus.NewRegistry()})
	require.NoError(t, err)
	return s
}

func do(t *testing.T, s *Server, req *http.Request) (int, []byte) {
	t.Helper()
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	code, body := do(t, s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"ok","language":"english"}`, string(body))
}

func TestStemJSON(t *testing.T) {
	s := newTestServer(t, nil)
	code, body := do(t, s, jsonRequest(http.MethodPost, "/v1/stem", `{"word":"Caresses"}`))
	require.Equal(t, http.StatusOK, code)

	var resp StemResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, StemResponse{Word: "Caresses", Stem: "caress"}, resp)
}

func TestStemParam(t *testing.T) {
	s := newTestServer(t, nil)
	code, body := do(t, s, httptest.NewRequest(http.MethodGet, "/v1/stem/relational", nil))
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"word":"relational","stem":"relat"}`, string(body))
}

func TestStemBadRequests(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.Batch.MaxWords = 2 })

	tests := []struct {
		name string
		req  *http.Request
		code int
	}{
		{"malformed", jsonRequest(http.MethodPost, "/v1/stem", `{"word":`), http.StatusBadRequest},
		{"empty word", jsonRequest(http.MethodPost, "/v1/stem", `{"word":""}`), http.StatusBadRequest},
		{"empty batch", jsonRequest(http.MethodPost, "/v1/stem/batch", `{"words":[]}`), http.StatusBadRequest},
		{"batch too large", jsonRequest(http.MethodPost, "/v1/stem/batch", `{"words":["a","b","c"]}`),
			http.StatusRequestEntityTooLarge},
		{"unknown route", httptest.NewRequest(http.MethodGet, "/v2/stem", nil), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := do(t, s, tt.req)
			require.Equal(t, tt.code, code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(body, &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestStemBatchJSON(t *testing.T) {
	s := newTestServer(t, nil)
	code, body := do(t, s, jsonRequest(http.MethodPost, "/v1/stem/batch",
		`{"words":["caresses","ponies","agreed","plastered","go"]}`))
	require.Equal(t, http.StatusOK, code)

	var resp BatchResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, []string{"caress", "poni", "agre", "plaster", "go"}, resp.Stems)
}

func TestStemBatchMsgpack(t *testing.T) {
	s := newTestServer(t, nil)
	payload, err := msgpack.Marshal(BatchRequest{Words: []string{"conditional", "sensational"}})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/stem/batch", bytes.NewReader(payload))
	req.Header.Set(fiber.HeaderContentType, MIMEMsgpack)
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, MIMEMsgpack, resp.Header.Get(fiber.HeaderContentType))

	var out BatchResponse
	require.NoError(t, msgpack.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, []string{"condit", "sensat"}, out.Stems)
}

func TestStemAcceptJSONForMsgpackBody(t *testing.T) {
	s := newTestServer(t, nil)
	payload, err := msgpack.Marshal(StemRequest{Word: "ponies"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/stem", bytes.NewReader(payload))
	req.Header.Set(fiber.HeaderContentType, MIMEMsgpack)
	req.Header.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	code, body := do(t, s, req)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"word":"ponies","stem":"poni"}`, string(body))
}

func TestStemFailsOpenOnInvalidUTF8(t *testing.T) {
	s := newTestServer(t, nil)
	payload, err := msgpack.Marshal(StemRequest{Word: "pon\xffies"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/stem", bytes.NewReader(payload))
	req.Header.Set(fiber.HeaderContentType, MIMEMsgpack)
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out StemResponse
	require.NoError(t, msgpack.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "pon\xffies", out.Stem)
}

func TestJWT(t *testing.T) {
	secret := "test-secret"
	s := newTestServer(t, func(c *config.Config) { c.Auth.JWTSecret = secret })

	code, _ := do(t, s, jsonRequest(http.MethodPost, "/v1/stem", `{"word":"ponies"}`))
	require.Equal(t, http.StatusUnauthorized, code)

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "tester",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	req := jsonRequest(http.MethodPost, "/v1/stem", `{"word":"ponies"}`)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+tok)
	code, body := do(t, s, req)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"word":"ponies","stem":"poni"}`, string(body))

	code, _ = do(t, s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, code, "health is not behind auth")
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) {
		c.Server.RateLimit = config.RateLimit{Max: 2, Window: time.Minute}
	})
	for i := 0; i < 2; i++ {
		code, _ := do(t, s, httptest.NewRequest(http.MethodGet, "/v1/stem/ponies", nil))
		require.Equal(t, http.StatusOK, code)
	}
	code, _ := do(t, s, httptest.NewRequest(http.MethodGet, "/v1/stem/ponies", nil))
	assert.Equal(t, http.StatusTooManyRequests, code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	do(t, s, httptest.NewRequest(http.MethodGet, "/v1/stem/ponies", nil))
	do(t, s, httptest.NewRequest(http.MethodGet, "/v1/stem/ponies", nil))

	code, body := do(t, s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, code)
	text := string(body)
	assert.Contains(t, text, `porter_stem_requests_total{endpoint="stem_get"} 2`)
	assert.Contains(t, text, `porter_cache_lookups_total{result="hit"} 1`)
	assert.Contains(t, text, `porter_stem_words_total 2`)
}

func TestReload(t *testing.T) {
	s := newTestServer(t, nil)
	cfg := config.Default()
	cfg.Stemmer.LowercaseFold = false
	require.NoError(t, s.Reload(cfg))

	code, body := do(t, s, jsonRequest(http.MethodPost, "/v1/stem", `{"word":"PONIES"}`))
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"word":"PONIES","stem":"PONIES"}`, string(body))

	bad := config.Default()
	bad.Stemmer.Language = "german"
	require.Error(t, s.Reload(bad))
	_, body = do(t, s, jsonRequest(http.MethodPost, "/v1/stem", `{"word":"PONIES"}`))
	assert.JSONEq(t, `{"word":"PONIES","stem":"PONIES"}`, string(body), "failed reload keeps the old binder")
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Stemmer.Language = "latin"
	_, err := New(cfg, Options{Logger: logging.Discard(), Registry: prometheus.NewRegistry()})
	require.ErrorIs(t, err, config.ErrInvalid)
}

func TestRunShutsDownOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	s := newTestServer(t, func(c *config.Config) { c.Server.Address = addr })
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	url := fmt.Sprintf("http://%s/healthz", addr)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}

package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appscans "github.com/bryanwahyu/automarket-intake/internal/application/scans"
	domain "github.com/bryanwahyu/automarket-intake/internal/domain/scans"
	"github.com/bryanwahyu/automarket-intake/internal/infra/db/memory"
	"github.com/bryanwahyu/automarket-intake/internal/metrics"
	"github.com/bryanwahyu/automarket-intake/internal/middleware"
)

type downRepo struct{}

func (downRepo) Append(context.Context, *domain.ScanRecord) error {
	return domain.ErrStoreUnavailable
}
func (downRepo) ListRecent(context.Context, int) ([]*domain.ScanRecord, error) {
	return nil, domain.ErrStoreUnavailable
}

type tickingClock struct{ t time.Time }

func (c *tickingClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestServer(t *testing.T, repo domain.Repository) *httptest.Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	svc := &appscans.Service{
		Repo:    repo,
		Grader:  &domain.Grader{AnalysisDelay: 0},
		Mileage: appscans.FixedMileage(50000),
		Clock:   &tickingClock{t: time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC)},
	}
	h := NewRouter(svc, Options{
		AllowedOrigins: []string{"http://localhost:5173"},
		Metrics:        metrics.New(reg),
		Gatherer:       reg,
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func postVIN(t *testing.T, srv *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+"/api/intake", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestIntakeThenHistory(t *testing.T) {
	srv := newTestServer(t, memory.NewScanRepository())

	resp := postVIN(t, srv, `"WBA3A5C51CF256657"`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postVIN(t, srv, `"1HGCM82633A004352"`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var res map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, "4.2", res["grade"])
	assert.Equal(t, 18500.0, res["estimatedValue"])
	assert.Equal(t, []any{"Clean CarFax", "Minor rock chips on hood", "Ready for Retail"}, res["notes"])
	assert.NotContains(t, res, "id")
	assert.NotContains(t, res, "scannedAt")

	hresp, err := http.Get(srv.URL + "/api/intake")
	require.NoError(t, err)
	defer hresp.Body.Close()
	require.Equal(t, http.StatusOK, hresp.StatusCode)

	var list []map[string]any
	require.NoError(t, json.NewDecoder(hresp.Body).Decode(&list))
	require.Len(t, list, 2)
	assert.Equal(t, "1HGCM82633A004352", list[0]["vin"])
	assert.Equal(t, "4.2", list[0]["grade"])
	assert.Equal(t, "Clean CarFax, Minor rock chips on hood, Ready for Retail", list[0]["notes"])
	assert.Contains(t, list[0], "id")
	assert.Contains(t, list[0], "scannedAt")
	assert.Contains(t, list[0], "processingLatencyMs")
	assert.Equal(t, "WBA3A5C51CF256657", list[1]["vin"])
}

func TestHistoryReturnsTenNewestFirst(t *testing.T) {
	srv := newTestServer(t, memory.NewScanRepository())
	for i := 0; i < 12; i++ {
		require.Equal(t, http.StatusOK, postVIN(t, srv, `"AAAA`+string(rune('A'+i))+`"`).StatusCode)
	}

	resp, err := http.Get(srv.URL + "/api/intake")
	require.NoError(t, err)
	defer resp.Body.Close()

	var list []domain.ScanRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 10)
	assert.Equal(t, "AAAAL", list[0].Vin)
	for i := 1; i < len(list); i++ {
		assert.True(t, list[i-1].ScannedAt.After(list[i].ScannedAt))
	}
}

func TestHistoryEmptyIsArray(t *testing.T) {
	srv := newTestServer(t, memory.NewScanRepository())

	resp, err := http.Get(srv.URL + "/api/intake")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(body))
}

func TestIntakeBadBody(t *testing.T) {
	repo := memory.NewScanRepository()
	srv := newTestServer(t, repo)

	bad := []string{
		`1HGCM82633A004352`,
		`{"vin":"x"}`,
		``,
		`""`,
		`"1HGCM82633A004352" {not json`,
		`"1HGCM82633A004352" "2T1BURHE0JC000000"`,
	}
	for _, body := range bad {
		resp := postVIN(t, srv, body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "body %q", body)
	}
	stored, err := repo.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestIntakeShortVINIsGradedNA(t *testing.T) {
	srv := newTestServer(t, memory.NewScanRepository())

	resp := postVIN(t, srv, `"123"`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res domain.InspectionResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, domain.InspectionResult{Grade: "N/A", EstimatedValue: 0, Notes: []string{"Invalid VIN"}}, res)
}

func TestStoreFailureIsGenericServerError(t *testing.T) {
	srv := newTestServer(t, downRepo{})

	resp := postVIN(t, srv, `"1HGCM82633A004352"`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, map[string]string{"error": "intake failed"}, body)

	hresp, err := http.Get(srv.URL + "/api/intake")
	require.NoError(t, err)
	defer hresp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, hresp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, memory.NewScanRepository())

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/intake", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "content-type,x-custom")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestCORSRejectsUnknownOrigin(t *testing.T) {
	srv := newTestServer(t, memory.NewScanRepository())

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/intake", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://evil.test")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRateLimitedIntake(t *testing.T) {
	svc := &appscans.Service{
		Repo:    memory.NewScanRepository(),
		Grader:  &domain.Grader{},
		Mileage: appscans.FixedMileage(50000),
	}
	srv := httptest.NewServer(NewRouter(svc, Options{RateLimiter: middleware.NewRateLimiter(1, 1)}))
	defer srv.Close()

	assert.Equal(t, http.StatusOK, postVIN(t, srv, `"AAAA0"`).StatusCode)
	assert.Equal(t, http.StatusTooManyRequests, postVIN(t, srv, `"AAAA0"`).StatusCode)
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	srv := newTestServer(t, memory.NewScanRepository())
	postVIN(t, srv, `"AAAA0"`)

	for _, path := range []string{"/health", "/alive"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "http_requests_total")
}

package platform

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	solarerrors "github.com/sadeghmontazeri/solar/pkg/errors"
)

func TestLoadProfileBuiltins(t *testing.T) {
	p, err := LoadProfile("")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != DefaultProfileName || p.ContractYears != 20 {
		t.Fatalf("unexpected default profile: %+v", p)
	}

	short, err := LoadProfile("satba-8")
	if err != nil {
		t.Fatal(err)
	}
	if short.ContractYears != 8 || short.HorizonYears != 20 {
		t.Fatalf("unexpected satba-8 profile: contract=%d horizon=%d", short.ContractYears, short.HorizonYears)
	}
	if err := short.Validate(); err != nil {
		t.Fatalf("satba-8 should validate: %v", err)
	}
}

func TestLoadProfileYAMLKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tehran.yaml")
	body := `
name: tehran-pilot
contract_years: 10
localization_factor: 1.3
benchmarks:
  - name: Bond
    annual_rate: 0.18
yield:
  cache_ttl: 2h
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadProfile(path)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "tehran-pilot" || p.ContractYears != 10 || p.LocalizationFactor != 1.3 {
		t.Fatalf("overrides not applied: %+v", p)
	}
	if p.BaseRate != 3820 || p.DegradationRate != 0.007 {
		t.Fatalf("defaults lost: base=%v degradation=%v", p.BaseRate, p.DegradationRate)
	}
	if len(p.Benchmarks) != 1 || p.Benchmarks[0].Name != "Bond" {
		t.Fatalf("benchmarks = %+v", p.Benchmarks)
	}
	if p.Yield.CacheTTL != 2*time.Hour {
		t.Fatalf("cache ttl = %v", p.Yield.CacheTTL)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("SOLAR_CONTRACT_YEARS", "8")
	t.Setenv("SOLAR_LOCALIZATION_FACTOR", "1.0")
	t.Setenv("SOLAR_TOU_FACTOR", "0.9")
	t.Setenv("SOLAR_OFFLINE", "true")

	p := DefaultProfile().ApplyEnv()
	if p.ContractYears != 8 || p.LocalizationFactor != 1.0 || p.TimeOfUseFactor != 0.9 || !p.Yield.Offline {
		t.Fatalf("env not applied: %+v", p)
	}
}

func TestValidateRejectsBadProfiles(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Profile)
	}{
		{"horizon shorter than contract", func(p *Profile) { p.HorizonYears = 5 }},
		{"zero localization", func(p *Profile) { p.LocalizationFactor = 0 }},
		{"negative degradation", func(p *Profile) { p.DegradationRate = -0.01 }},
		{"occupancy above one", func(p *Profile) { p.OccupancyRatio = 1.2 }},
		{"duplicate benchmark", func(p *Profile) {
			p.Benchmarks = []BenchmarkRate{{Name: "Gold", AnnualRate: 0.3}, {Name: "Gold", AnnualRate: 0.2}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultProfile()
			tt.mutate(&p)
			err := p.Validate()
			if !errors.Is(err, solarerrors.ErrConfiguration) {
				t.Fatalf("expected configuration error, got %v", err)
			}
		})
	}
}

func TestLoadDotEnvSkipsMissingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("SOLAR_TEST_DOTENV=loaded\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("SOLAR_TEST_DOTENV") })

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatal(err)
	}
	if got := GetEnv("SOLAR_TEST_DOTENV", ""); got != "loaded" {
		t.Fatalf("got %q", got)
	}
}

func TestGetJSONRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		if r.URL.Query().Get("lat") != "35.7" {
			t.Errorf("missing query: %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(2, time.Second)
	c.Backoff = time.Millisecond
	var out struct {
		OK bool `json:"ok"`
	}
	if err := c.GetJSON(context.Background(), srv.URL, url.Values{"lat": {"35.7"}}, &out); err != nil {
		t.Fatal(err)
	}
	if !out.OK || atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("ok=%v calls=%d", out.OK, calls)
	}
}

func TestGetJSONDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewHTTPClient(3, time.Second)
	c.Backoff = time.Millisecond
	err := c.GetJSON(context.Background(), srv.URL, nil, &struct{}{})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status error, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestBasicAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	unconfigured := BasicAuth("", "")(ok)
	rec := httptest.NewRecorder()
	unconfigured.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("unconfigured status = %d", rec.Code)
	}

	guarded := BasicAuth("ops", "secret")(ok)
	rec = httptest.NewRecorder()
	guarded.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth("ops", "secret")
	rec = httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("authorized status = %d", rec.Code)
	}
}

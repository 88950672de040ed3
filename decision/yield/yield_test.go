package yield

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	solarerrors "github.com/sadeghmontazeri/solar/pkg/errors"
	"github.com/sadeghmontazeri/solar/pkg/platform"
)

const pvgisBody = `{
  "outputs": {
    "monthly": {"fixed": [
      {"month": 1, "E_m": 410.5}, {"month": 2, "E_m": 460.1}, {"month": 3, "E_m": 590.0},
      {"month": 4, "E_m": 640.2}, {"month": 5, "E_m": 720.9}, {"month": 6, "E_m": 760.4},
      {"month": 7, "E_m": 770.0}, {"month": 8, "E_m": 750.3}, {"month": 9, "E_m": 680.8},
      {"month": 10, "E_m": 590.6}, {"month": 11, "E_m": 450.2}, {"month": 12, "E_m": 390.0}
    ]},
    "totals": {"fixed": {"E_y": 7214.0}}
  }
}`

func TestFromGregorian(t *testing.T) {
	tests := map[int]Month{1: Dey, 2: Bahman, 3: Esfand, 4: Farvardin, 9: Shahrivar, 12: Azar}
	for g, want := range tests {
		got, ok := FromGregorian(g)
		if !ok || got != want {
			t.Errorf("FromGregorian(%d) = %s, want %s", g, got, want)
		}
	}
	if _, ok := FromGregorian(13); ok {
		t.Error("month 13 should be rejected")
	}
}

func TestMonthJSONKeys(t *testing.T) {
	b, err := json.Marshal(map[Month]float64{Tir: 1})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"Tir":1}` {
		t.Fatalf("got %s", b)
	}
	var back map[Month]float64
	if err := json.Unmarshal(b, &back); err != nil || back[Tir] != 1 {
		t.Fatalf("round trip failed: %v %v", back, err)
	}
}

func TestPVGISClientParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v5_2/PVcalc" {
			t.Errorf("path = %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("peakpower") != "4.64" || q.Get("angle") != "35" || q.Get("loss") != "14" || q.Get("mountingplace") != "building" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Write([]byte(pvgisBody))
	}))
	defer srv.Close()

	c := NewPVGISClient(WithEndpoint(srv.URL + "/api/v5_2/"))
	est, err := c.Estimate(context.Background(), Request{Latitude: 35.6892, Longitude: 51.389, CapacityKW: 4.64, TiltDeg: 35})
	if err != nil {
		t.Fatal(err)
	}
	if est.Source != SourcePVGIS || est.YearlyKWh != 7214 {
		t.Fatalf("unexpected estimate: %+v", est)
	}
	if est.MonthlyKWh[Dey] != 410.5 || est.MonthlyKWh[Farvardin] != 640.2 || est.MonthlyKWh[Azar] != 390 {
		t.Fatalf("months mapped wrong: %v", est.MonthlyKWh)
	}
}

func TestPVGISClientFailuresAreExternalDataUnavailable(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) }},
		{"bad request", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadRequest) }},
		{"garbage", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("<html>")) }},
		{"empty totals", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{"outputs":{}}`)) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			c := NewPVGISClient(WithEndpoint(srv.URL))
			_, err := c.Estimate(context.Background(), Request{Latitude: 35, Longitude: 51, CapacityKW: 5, TiltDeg: 30})
			if !errors.Is(err, solarerrors.ErrExternalDataUnavailable) {
				t.Fatalf("expected external data error, got %v", err)
			}
		})
	}
}

func TestPVGISClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(pvgisBody))
	}))
	defer srv.Close()

	c := NewPVGISClient(WithEndpoint(srv.URL), WithHTTPClient(platform.NewHTTPClient(0, 20*time.Millisecond)))
	_, err := c.Estimate(context.Background(), Request{Latitude: 35, Longitude: 51, CapacityKW: 5, TiltDeg: 30})
	if !errors.Is(err, solarerrors.ErrExternalDataUnavailable) {
		t.Fatalf("expected external data error, got %v", err)
	}
}

func TestGHIClamp(t *testing.T) {
	tests := []struct{ lat, want float64 }{
		{25, 2100},
		{35.6892, 2100 - 10.6892*25},
		{0, 2300},
		{60, 1600},
	}
	for _, tt := range tests {
		if got := GHI(tt.lat); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("GHI(%v) = %v, want %v", tt.lat, got, tt.want)
		}
	}
}

func TestLocalEstimatorSharesSumToYearly(t *testing.T) {
	est := NewLocalEstimator().Compute(Request{Latitude: 30, Longitude: 52, CapacityKW: 5, TiltDeg: 30})
	wantYearly := 5 * 1975 * 0.78
	if math.Abs(est.YearlyKWh-wantYearly) > 1e-9 {
		t.Fatalf("yearly = %v, want %v", est.YearlyKWh, wantYearly)
	}
	if len(est.MonthlyKWh) != 12 {
		t.Fatalf("got %d months", len(est.MonthlyKWh))
	}
	var sum float64
	for _, v := range est.MonthlyKWh {
		sum += v
	}
	if math.Abs(sum-est.YearlyKWh) > 1e-6 {
		t.Fatalf("monthly sum %v != yearly %v", sum, est.YearlyKWh)
	}
	if est.Source != SourceLocal || est.GHI != 1975 {
		t.Fatalf("unexpected metadata: %+v", est)
	}
}

func TestCacheEvictsOnRead(t *testing.T) {
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	c := NewCache(time.Hour)
	c.SetClock(func() time.Time { return now })

	key := KeyFor(Request{Latitude: 35.6892, Longitude: 51.389, CapacityKW: 4.64, TiltDeg: 35})
	c.Put(key, Estimate{YearlyKWh: 100, MonthlyKWh: map[Month]float64{Tir: 10}})

	now = now.Add(59 * time.Minute)
	got, ok := c.Get(key)
	if !ok || got.YearlyKWh != 100 {
		t.Fatal("expected a live entry")
	}
	got.MonthlyKWh[Tir] = 999
	again, _ := c.Get(key)
	if again.MonthlyKWh[Tir] != 10 {
		t.Fatal("cached value was mutated through a returned copy")
	}

	now = now.Add(time.Minute)
	if _, ok := c.Get(key); ok {
		t.Fatal("entry should have expired at the TTL")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry not evicted, len=%d", c.Len())
	}
}

func TestKeyForRounds(t *testing.T) {
	a := KeyFor(Request{Latitude: 35.6892, Longitude: 51.3890, CapacityKW: 4.641, TiltDeg: 35.04})
	b := KeyFor(Request{Latitude: 35.6911, Longitude: 51.3949, CapacityKW: 4.6449, TiltDeg: 34.96})
	if a != b {
		t.Fatalf("keys differ: %+v vs %+v", a, b)
	}
	c := KeyFor(Request{Latitude: 35.70, Longitude: 51.3890, CapacityKW: 4.64, TiltDeg: 35})
	if a == c {
		t.Fatal("different latitude should produce a different key")
	}
}

func TestCachedProviderOnlyCachesSuccess(t *testing.T) {
	var calls int32
	fail := true
	inner := ProviderFunc(func(ctx context.Context, req Request) (Estimate, error) {
		atomic.AddInt32(&calls, 1)
		if fail {
			return Estimate{}, errors.New("down")
		}
		return Estimate{YearlyKWh: 42, Source: SourcePVGIS}, nil
	})
	p := NewCachedProvider(inner, NewCache(time.Hour), zerolog.Nop())
	req := Request{Latitude: 35, Longitude: 51, CapacityKW: 5, TiltDeg: 30}

	if _, err := p.Estimate(context.Background(), req); err == nil {
		t.Fatal("expected error")
	}
	fail = false
	for i := 0; i < 3; i++ {
		est, err := p.Estimate(context.Background(), req)
		if err != nil || est.YearlyKWh != 42 {
			t.Fatalf("estimate = %+v, err = %v", est, err)
		}
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("inner called %d times, want 2", got)
	}
}

func TestResolverFallsBackWithSameRequest(t *testing.T) {
	req := Request{Latitude: 29.6, Longitude: 52.5, CapacityKW: 6.2, TiltDeg: 30}
	failing := ProviderFunc(func(ctx context.Context, r Request) (Estimate, error) {
		return Estimate{}, solarerrors.NewExternalDataUnavailableError("PVGIS", errors.New("timeout"))
	})

	r := NewResolver(failing, NewLocalEstimator(), zerolog.Nop())
	est := r.Resolve(context.Background(), req)
	want := NewLocalEstimator().Compute(req)

	if !est.Fallback || est.Source != SourceLocal {
		t.Fatalf("expected local fallback, got %+v", est)
	}
	if est.YearlyKWh != want.YearlyKWh {
		t.Fatalf("fallback yearly = %v, want %v", est.YearlyKWh, want.YearlyKWh)
	}
	if !strings.Contains(est.Note, "timeout") {
		t.Fatalf("note = %q", est.Note)
	}
}

func TestResolverPrefersPrimary(t *testing.T) {
	primary := ProviderFunc(func(ctx context.Context, r Request) (Estimate, error) {
		return Estimate{YearlyKWh: 7000, Source: SourcePVGIS}, nil
	})
	est := NewResolver(primary, NewLocalEstimator(), zerolog.Nop()).Resolve(context.Background(), Request{CapacityKW: 5})
	if est.Fallback || est.Source != SourcePVGIS {
		t.Fatalf("unexpected estimate: %+v", est)
	}

	offline := NewResolver(nil, NewLocalEstimator(), zerolog.Nop()).Resolve(context.Background(), Request{Latitude: 35, CapacityKW: 5})
	if offline.Source != SourceLocal || offline.Fallback {
		t.Fatalf("offline estimate: %+v", offline)
	}
}

func TestApplyShading(t *testing.T) {
	base := Estimate{YearlyKWh: 1000, MonthlyKWh: map[Month]float64{Tir: 100}}
	tests := []struct {
		shading Shading
		want    float64
	}{
		{ShadingNone, 1000},
		{ShadingLight, 900},
		{ShadingModerate, 800},
	}
	for _, tt := range tests {
		got := ApplyShading(base, tt.shading)
		if math.Abs(got.YearlyKWh-tt.want) > 1e-9 || math.Abs(got.MonthlyKWh[Tir]-tt.want/10) > 1e-9 {
			t.Errorf("%s: got %+v", tt.shading, got)
		}
	}
	if base.MonthlyKWh[Tir] != 100 {
		t.Fatal("ApplyShading mutated its input")
	}
	if _, err := ParseShading("heavy"); err == nil {
		t.Fatal("expected unknown category error")
	}
	if s, err := ParseShading(" Light "); err != nil || s != ShadingLight {
		t.Fatalf("ParseShading = %v, %v", s, err)
	}
}

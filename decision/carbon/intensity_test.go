package carbon

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
)

func TestStaticSource(t *testing.T) {
	var s StaticSource
	in, _ := s.Intensity(context.Background(), "")
	if in.Zone != DefaultZone || in.GramsPerKWh != 570 || in.Source != SourceStatic {
		t.Fatalf("default zone = %+v", in)
	}
	in, _ = s.Intensity(context.Background(), "xx")
	if in.Zone != "XX" || in.GramsPerKWh != GlobalAverage || in.Source != SourceGlobalAverage {
		t.Fatalf("unknown zone = %+v", in)
	}
}

func TestElectricityMapsCachesAndAuthenticates(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.Header.Get("auth-token") != "tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Path != "/carbon-intensity/latest" || r.URL.Query().Get("zone") != "IR" {
			t.Errorf("unexpected request %s", r.URL)
		}
		w.Write([]byte(`{"zone":"IR","carbonIntensity":512.5}`))
	}))
	defer srv.Close()

	c := NewElectricityMapsClient("tok", zerolog.Nop()).WithEndpoint(srv.URL + "/")
	for i := 0; i < 2; i++ {
		in, err := c.Intensity(context.Background(), "ir")
		if err != nil {
			t.Fatal(err)
		}
		if in.GramsPerKWh != 512.5 || in.Source != SourceElectricityMaps {
			t.Fatalf("intensity = %+v", in)
		}
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestElectricityMapsFallsBackToStatic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewElectricityMapsClient("bad", zerolog.Nop()).WithEndpoint(srv.URL)
	in, err := c.Intensity(context.Background(), "TR")
	if err != nil {
		t.Fatal(err)
	}
	if in.Source != SourceStatic || in.GramsPerKWh != 420 {
		t.Fatalf("fallback = %+v", in)
	}
}

func TestAvoided(t *testing.T) {
	f := Avoided(Intensity{Zone: "IR", GramsPerKWh: 500}, []float64{8000, 7944, 7888})
	if f.FirstYearKg != 4000 {
		t.Fatalf("first year = %v", f.FirstYearKg)
	}
	if math.Abs(f.LifetimeKg-11916) > 1e-9 || math.Abs(f.LifetimeTonnes-11.916) > 1e-9 {
		t.Fatalf("lifetime = %v kg, %v t", f.LifetimeKg, f.LifetimeTonnes)
	}
	if f.ProductionYears != 3 {
		t.Fatalf("years = %d", f.ProductionYears)
	}
}

package geo

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"dispatch/internal/circuit"
	gmaps "dispatch/internal/maps"
	"dispatch/internal/types"
)

type stubGeocoder struct {
	result gmaps.GeocodeResult
	err    error
	calls  int
}

func (s *stubGeocoder) Geocode(_ context.Context, _ string) (gmaps.GeocodeResult, error) {
	s.calls++
	return s.result, s.err
}

func newTestResolver(g Geocoder) *Resolver {
	return NewResolver(g, circuit.NewBreaker("geocoding", 5, 30*time.Second), slog.New(slog.DiscardHandler))
}

var anchor = types.Point{Lat: 34.0522, Lng: -118.2437}

func TestResolvePrecheckRejectsVagueText(t *testing.T) {
	stub := &stubGeocoder{}
	r := newTestResolver(stub)

	for _, text := range []string{"", "my house", "the corner by the park", "   ...  "} {
		_, err := r.Resolve(context.Background(), text, anchor, 25)
		if !errors.Is(err, ErrNeedSpecificAddress) {
			t.Errorf("Resolve(%q) err = %v, want ErrNeedSpecificAddress", text, err)
		}
	}
	if stub.calls != 0 {
		t.Errorf("geocoder called %d times for vague text", stub.calls)
	}
}

func TestResolvePrecheckAcceptsZIPOnly(t *testing.T) {
	stub := &stubGeocoder{result: gmaps.GeocodeResult{Formatted: "Beverly Hills, CA 90210", Point: types.Point{Lat: 34.09, Lng: -118.4}}}
	r := newTestResolver(stub)

	if _, err := r.Resolve(context.Background(), "somewhere in 90210", anchor, 25); err != nil {
		t.Fatalf("Resolve() err = %v", err)
	}
	if stub.calls != 1 {
		t.Errorf("geocoder calls = %d, want 1", stub.calls)
	}
}

func TestResolveInsideServiceArea(t *testing.T) {
	stub := &stubGeocoder{result: gmaps.GeocodeResult{
		Formatted: "789 Sunset Blvd, Beverly Hills, CA 90210",
		Point:     types.Point{Lat: 34.0901, Lng: -118.4065},
	}}
	r := newTestResolver(stub)

	got, err := r.Resolve(context.Background(), "  789 Sunset Blvd,  90210. ", anchor, 25)
	if err != nil {
		t.Fatalf("Resolve() err = %v", err)
	}
	if !got.Geocoded || !got.InServiceArea {
		t.Errorf("got %+v, want geocoded in-area", got)
	}
	if got.DistanceMiles <= 0 || got.DistanceMiles > 25 {
		t.Errorf("DistanceMiles = %v, want (0,25]", got.DistanceMiles)
	}
}

func TestResolveOutsideServiceArea(t *testing.T) {
	stub := &stubGeocoder{result: gmaps.GeocodeResult{
		Formatted: "456 Remote Rd, Ridgecrest, CA 93555",
		Point:     types.Point{Lat: 35.6225, Lng: -117.6709},
	}}
	r := newTestResolver(stub)

	got, err := r.Resolve(context.Background(), "456 Remote Rd, 93555", anchor, 25)
	if err != nil {
		t.Fatalf("Resolve() err = %v", err)
	}
	if got.InServiceArea {
		t.Errorf("InServiceArea = true for a %v mile address", got.DistanceMiles)
	}
}

func TestResolveZeroResultIsGeocodeFailed(t *testing.T) {
	stub := &stubGeocoder{err: gmaps.ErrNoResult}
	r := newTestResolver(stub)

	_, err := r.Resolve(context.Background(), "789 Nowhere St, 00000", anchor, 25)
	if !errors.Is(err, ErrGeocodeFailed) {
		t.Fatalf("err = %v, want ErrGeocodeFailed", err)
	}
	// Zero results are deterministic, so no retries.
	if stub.calls != 1 {
		t.Errorf("geocoder calls = %d, want 1", stub.calls)
	}
}

func TestResolveProviderErrorRetriesThenFails(t *testing.T) {
	stub := &stubGeocoder{err: errors.New("503")}
	r := newTestResolver(stub)

	_, err := r.Resolve(context.Background(), "789 Sunset Blvd, 90210", anchor, 25)
	if !errors.Is(err, ErrGeocodeFailed) {
		t.Fatalf("err = %v, want ErrGeocodeFailed", err)
	}
	if stub.calls != 3 {
		t.Errorf("geocoder calls = %d, want 3 (1 try + 2 retries)", stub.calls)
	}
}

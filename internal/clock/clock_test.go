package clock

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func timeServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestSyncAppliesOffsetFromFirstSource(t *testing.T) {
	remote := time.Now().UTC().Add(45 * time.Minute)
	server := timeServer(t, `{"utc_datetime":"`+remote.Format(time.RFC3339Nano)+`"}`, http.StatusOK)

	c, err := New([]string{server.URL}, "UTC", time.Hour)
	if err != nil {
		t.Fatalf("new clock failed: %v", err)
	}
	if err := c.Sync(context.Background()); err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if c.Degraded() {
		t.Fatal("expected healthy clock after sync")
	}
	drift := c.Now().Sub(time.Now().Add(45 * time.Minute))
	if drift < -5*time.Second || drift > 5*time.Second {
		t.Fatalf("expected Now near remote time, drift %v", drift)
	}
}

func TestSyncFallsThroughToSecondSource(t *testing.T) {
	broken := timeServer(t, `oops`, http.StatusInternalServerError)
	remote := time.Now().UTC().Add(10 * time.Minute)
	working := timeServer(t, `{"dateTime":"`+remote.Format("2006-01-02T15:04:05.999999")+`"}`, http.StatusOK)

	c, err := New([]string{broken.URL, working.URL}, "UTC", time.Hour)
	if err != nil {
		t.Fatalf("new clock failed: %v", err)
	}
	if err := c.Sync(context.Background()); err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if c.Degraded() {
		t.Fatal("expected healthy clock after fallback sync")
	}
}

func TestSyncAllSourcesDownDegradesToLocalTime(t *testing.T) {
	broken := timeServer(t, `oops`, http.StatusInternalServerError)

	c, err := New([]string{broken.URL}, "UTC", time.Hour)
	if err != nil {
		t.Fatalf("new clock failed: %v", err)
	}
	if err := c.Sync(context.Background()); err == nil {
		t.Fatal("expected sync error when every source is down")
	}
	if !c.Degraded() {
		t.Fatal("expected degraded mode")
	}
	drift := c.Now().Sub(time.Now())
	if drift < -5*time.Second || drift > 5*time.Second {
		t.Fatalf("expected local time fallback, drift %v", drift)
	}
}

func TestDegradedClearsOnRecovery(t *testing.T) {
	broken := timeServer(t, `oops`, http.StatusInternalServerError)
	c, err := New([]string{broken.URL}, "UTC", time.Hour)
	if err != nil {
		t.Fatalf("new clock failed: %v", err)
	}
	c.Sync(context.Background())
	if !c.Degraded() {
		t.Fatal("expected degraded mode")
	}

	remote := time.Now().UTC()
	working := timeServer(t, `{"utc_datetime":"`+remote.Format(time.RFC3339Nano)+`"}`, http.StatusOK)
	c.sources = []string{working.URL}
	if err := c.Sync(context.Background()); err != nil {
		t.Fatalf("recovery sync failed: %v", err)
	}
	if c.Degraded() {
		t.Fatal("expected degraded flag cleared after recovery")
	}
}

func TestStartOfTodayUsesConfiguredZone(t *testing.T) {
	c, err := New(nil, "America/New_York", time.Hour)
	if err != nil {
		t.Fatalf("new clock failed: %v", err)
	}
	start := c.StartOfToday()
	if start.Hour() != 0 || start.Minute() != 0 || start.Second() != 0 {
		t.Fatalf("expected midnight, got %v", start)
	}
	if start.Location().String() != "America/New_York" {
		t.Fatalf("expected New York zone, got %v", start.Location())
	}
}

func TestParseRemoteTimeFormats(t *testing.T) {
	cases := []string{
		"2025-06-10T08:30:00.123456789Z",
		"2025-06-10T08:30:00+02:00",
		"2025-06-10T08:30:00.123456",
		"2025-06-10T08:30:00",
	}
	for _, raw := range cases {
		if _, err := parseRemoteTime(raw); err != nil {
			t.Fatalf("expected %q to parse, got %v", raw, err)
		}
	}
	if _, err := parseRemoteTime("10/06/2025 08:30"); err == nil {
		t.Fatal("expected unrecognized format error")
	}
}

package clock

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"
)

// Clock supplies trusted time for the daily batch jobs. It keeps an
// offset between local time and the first reachable external source and
// refreshes it on an interval. When every source is unreachable the
// clock flags degraded mode and serves local time; this is non-fatal.
type Clock struct {
	sources     []string
	location    *time.Location
	client      *http.Client
	resyncEvery time.Duration

	mu       sync.RWMutex
	offset   time.Duration
	degraded bool
	synced   bool
}

func New(sources []string, timezone string, resyncEvery time.Duration) (*Clock, error) {
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, err
	}
	// External sources are polled no more often than hourly.
	if resyncEvery < time.Hour {
		resyncEvery = time.Hour
	}
	return &Clock{
		sources:     sources,
		location:    location,
		client:      &http.Client{Timeout: 10 * time.Second},
		resyncEvery: resyncEvery,
	}, nil
}

func (c *Clock) Now() time.Time {
	c.mu.RLock()
	offset := c.offset
	c.mu.RUnlock()
	return time.Now().Add(offset).In(c.location)
}

func (c *Clock) StartOfToday() time.Time {
	now := c.Now()
	year, month, day := now.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, c.location)
}

func (c *Clock) Location() *time.Location {
	return c.location
}

func (c *Clock) Degraded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.degraded
}

// Sync tries each source in order; the first success wins. All sources
// failing sets degraded mode and keeps the previous offset.
func (c *Clock) Sync(ctx context.Context) error {
	for _, source := range c.sources {
		remote, err := c.fetch(ctx, source)
		if err != nil {
			log.Printf("time source %s unreachable: %v", source, err)
			continue
		}
		offset := time.Until(remote)
		c.mu.Lock()
		c.offset = offset
		c.degraded = false
		c.synced = true
		c.mu.Unlock()
		return nil
	}
	c.mu.Lock()
	c.degraded = true
	c.mu.Unlock()
	log.Printf("all time sources unreachable, falling back to local clock")
	return errors.New("all time sources unreachable")
}

// Start runs the initial sync and re-arms it on the resync interval
// until ctx is cancelled.
func (c *Clock) Start(ctx context.Context) {
	if err := c.Sync(ctx); err != nil {
		log.Printf("initial clock sync failed: %v", err)
	}
	go func() {
		ticker := time.NewTicker(c.resyncEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := c.Sync(ctx); err != nil {
					log.Printf("clock resync failed: %v", err)
				}
			}
		}
	}()
}

// timePayload covers the response shapes of the supported HTTP time
// endpoints (worldtimeapi and timeapi.io).
type timePayload struct {
	UTCDateTime     string `json:"utc_datetime"`
	DateTime        string `json:"dateTime"`
	CurrentDateTime string `json:"currentDateTime"`
}

func (c *Clock) fetch(ctx context.Context, source string) (time.Time, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return time.Time{}, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return time.Time{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return time.Time{}, errors.New("unexpected status " + resp.Status)
	}
	var payload timePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return time.Time{}, err
	}
	for _, raw := range []string{payload.UTCDateTime, payload.DateTime, payload.CurrentDateTime} {
		if raw == "" {
			continue
		}
		if parsed, err := parseRemoteTime(raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, errors.New("no parsable timestamp in response")
}

func parseRemoteTime(raw string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999",
		"2006-01-02T15:04:05",
	}
	for _, format := range formats {
		if parsed, err := time.Parse(format, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, errors.New("unrecognized timestamp format: " + raw)
}

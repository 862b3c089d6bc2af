package bridge

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDevice records the payloads POSTed to the custom app endpoint.
type fakeDevice struct {
	mu       sync.Mutex
	payloads [][]byte
	appNames []string
}

func (d *fakeDevice) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		d.mu.Lock()
		d.payloads = append(d.payloads, body)
		d.appNames = append(d.appNames, r.URL.Query().Get("name"))
		d.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
}

func (d *fakeDevice) received() [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([][]byte(nil), d.payloads...)
}

func newTestBridge(t *testing.T, cloudHandler http.Handler) (*Bridge, *fakeDevice) {
	t.Helper()

	device := &fakeDevice{}
	deviceSrv := httptest.NewServer(device.handler())
	t.Cleanup(deviceSrv.Close)

	cloudSrv := httptest.NewServer(cloudHandler)
	t.Cleanup(cloudSrv.Close)

	cfg := &Config{
		CloudURL:            cloudSrv.URL,
		DeviceIP:            strings.TrimPrefix(deviceSrv.URL, "http://"),
		AppName:             "glucose",
		PollIntervalSeconds: 60,
		TimeoutSeconds:      2,
	}
	require.NoError(t, cfg.Validate())

	return New(cfg, zerolog.Nop()), device
}

func TestRunOnce_RelaysCloudPayload(t *testing.T) {
	payload := `{"text":"149","draw":[{"dt":[0,0,"149","#00ff00"]}]}`
	cloud := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/glucose", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, payload)
	})

	b, device := newTestBridge(t, cloud)
	b.RunOnce(context.Background())

	received := device.received()
	require.Len(t, received, 1)
	assert.JSONEq(t, payload, string(received[0]))
	assert.Equal(t, "glucose", device.appNames[0])

	stats := b.Statistics()
	assert.Equal(t, 1, stats.Cycles)
	assert.Equal(t, 0, stats.CloudErrors)
}

func TestRunOnce_CloudFailurePushesErrorGlyph(t *testing.T) {
	cloud := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	b, device := newTestBridge(t, cloud)
	b.RunOnce(context.Background())

	received := device.received()
	require.Len(t, received, 1)

	var glyph map[string]any
	require.NoError(t, json.Unmarshal(received[0], &glyph))
	assert.Equal(t, "---", glyph["text"])
	assert.Equal(t, true, glyph["noScroll"])
	assert.Equal(t, true, glyph["center"])

	stats := b.Statistics()
	assert.Equal(t, 1, stats.CloudErrors)
	assert.Equal(t, 1, stats.GlyphsDisplayed)
}

func TestRunOnce_InvalidCloudJSONCountsAsFailure(t *testing.T) {
	cloud := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html>not json</html>")
	})

	b, device := newTestBridge(t, cloud)
	b.RunOnce(context.Background())

	// The glyph replaces the unparseable payload.
	received := device.received()
	require.Len(t, received, 1)
	assert.Contains(t, string(received[0]), "---")
	assert.Equal(t, 1, b.Statistics().CloudErrors)
}

func TestRunOnce_RecoveryResetsFailureCount(t *testing.T) {
	var failing bool
	var mu sync.Mutex
	cloud := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		if failing {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, `{"text":"110"}`)
	})

	b, device := newTestBridge(t, cloud)
	ctx := context.Background()

	mu.Lock()
	failing = true
	mu.Unlock()
	for i := 0; i < maxConsecutiveFailures; i++ {
		b.RunOnce(ctx)
	}
	require.Len(t, device.received(), maxConsecutiveFailures) // a glyph per failure

	mu.Lock()
	failing = false
	mu.Unlock()
	b.RunOnce(ctx)

	received := device.received()
	require.Len(t, received, maxConsecutiveFailures+1)
	assert.Contains(t, string(received[len(received)-1]), `"110"`)

	stats := b.Statistics()
	assert.Equal(t, maxConsecutiveFailures, stats.CloudErrors)
	assert.Equal(t, maxConsecutiveFailures, stats.GlyphsDisplayed)
}

func TestConfig_Precedence(t *testing.T) {
	t.Setenv("BRIDGE_CLOUD_URL", "http://from-env")
	t.Setenv("BRIDGE_APP_NAME", "env-app")

	cfg := &Config{CloudURL: "http://from-flag"}
	cfg.ApplyEnv()
	cfg.ApplyDefaults()

	assert.Equal(t, "http://from-flag", cfg.CloudURL, "explicit value wins over env")
	assert.Equal(t, "env-app", cfg.AppName, "env fills unset fields")
	assert.Equal(t, DefaultPollIntervalSeconds, cfg.PollIntervalSeconds)
	assert.Equal(t, DefaultTimeoutSeconds, cfg.TimeoutSeconds)
}

func TestConfig_Validate(t *testing.T) {
	cfg := &Config{DeviceIP: "192.168.1.50"}
	cfg.ApplyDefaults()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cloud URL")

	cfg.CloudURL = "http://example.com"
	assert.NoError(t, cfg.Validate())
}

func TestConfig_LoadFile(t *testing.T) {
	path := t.TempDir() + "/bridge.yaml"
	content := "cloud_url: http://cloud.example\ndevice_ip: 10.0.0.7\npoll_interval_seconds: 30\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg := &Config{}
	require.NoError(t, cfg.LoadFile(path))
	assert.Equal(t, "http://cloud.example", cfg.CloudURL)
	assert.Equal(t, "10.0.0.7", cfg.DeviceIP)
	assert.Equal(t, 30, cfg.PollIntervalSeconds)

	assert.Error(t, (&Config{}).LoadFile(path+".missing"))
}

package dispatcher

import (
	"encoding/json"
	"image"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/clepsy/deskagent/internal/config"
	"github.com/clepsy/deskagent/internal/events"
	"github.com/clepsy/deskagent/internal/health"
)

func testSnapshot(backendURL string) *config.Snapshot {
	cfg := config.Default()
	cfg.Pairing.Active = true
	cfg.Pairing.BackendURL = backendURL
	cfg.Pairing.DeviceToken = "test-token"
	return config.NewSnapshot(cfg)
}

func TestDispatchDesktopCheckSuccess(t *testing.T) {
	var gotPath, gotAuth, gotContentType string
	var gotData map[string]any
	var gotScreenshot []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")

		mediaType, params, err := mime.ParseMediaType(gotContentType)
		if err != nil || mediaType != "multipart/form-data" {
			t.Errorf("unexpected content type: %s", gotContentType)
		}
		mr := multipart.NewReader(r.Body, params["boundary"])
		for {
			part, err := mr.NextPart()
			if err != nil {
				break
			}
			switch part.FormName() {
			case "screenshot":
				buf := make([]byte, 1<<16)
				n, _ := part.Read(buf)
				gotScreenshot = buf[:n]
			case "data":
				json.NewDecoder(part).Decode(&gotData)
			}
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := health.New()
	d := New(testSnapshot(srv.URL), store)

	ev := events.DesktopCheck{
		ID:         "check-1",
		Screenshot: image.NewRGBA(image.Rect(0, 0, 4, 4)),
		ActiveWindow: events.WindowInfo{
			Title:        "Mozilla Firefox",
			AppName:      "firefox",
			Bbox:         events.Bbox{Left: 1, Top: 2, Width: 800, Height: 600},
			MonitorNames: []string{"DP-1"},
		},
		Timestamp:                 time.Now(),
		TimeSinceLastUserActivity: 3 * time.Second,
		Bbox:                      events.Bbox{Left: 1, Top: 2, Width: 800, Height: 600},
	}
	d.dispatch(t.Context(), ev)

	if gotPath != "/sources/aggregator/desktop/screenshot-input" {
		t.Errorf("path = %q, want the documented screenshot-input path", gotPath)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if len(gotScreenshot) == 0 {
		t.Error("expected non-empty screenshot part")
	}

	activeWindow, _ := gotData["active_window"].(map[string]any)
	if activeWindow == nil {
		t.Fatal("expected active_window object in data field")
	}
	if activeWindow["title"] != "Mozilla Firefox" {
		t.Errorf("active_window.title = %v", activeWindow["title"])
	}
	bbox, _ := activeWindow["bbox"].(map[string]any)
	if bbox == nil {
		t.Fatal("expected nested active_window.bbox object")
	}
	if bbox["left"] != float64(1) || bbox["width"] != float64(800) {
		t.Errorf("active_window.bbox = %v", bbox)
	}
	if _, ok := gotData["metadata"]; ok {
		t.Error("did not expect a top-level metadata field")
	}

	snap := store.Snapshot()
	if snap.LastDataSentStatus != health.StatusSuccess {
		t.Errorf("LastDataSentStatus = %v, want Success", snap.LastDataSentStatus)
	}
}

func TestDispatchDesktopCheckServerErrorRecordsFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	store := health.New()
	d := New(testSnapshot(srv.URL), store)

	ev := events.DesktopCheck{
		ID:         "check-2",
		Screenshot: image.NewRGBA(image.Rect(0, 0, 2, 2)),
		Timestamp:  time.Now(),
	}
	d.dispatch(t.Context(), ev)

	snap := store.Snapshot()
	if snap.LastDataSentStatus != health.StatusFail {
		t.Errorf("LastDataSentStatus = %v, want Fail after a 500 response", snap.LastDataSentStatus)
	}
}

func TestDispatchAfkStartSuccess(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	store := health.New()
	d := New(testSnapshot(srv.URL), store)

	ev := events.AfkStart{
		ID:                        "afk-1",
		Timestamp:                 time.Now(),
		TimeSinceLastUserActivity: 5 * time.Minute,
	}
	d.dispatch(t.Context(), ev)

	if gotPath != "/sources/aggregator/desktop/afk-input" {
		t.Errorf("path = %q, want the documented afk-input path", gotPath)
	}
	if gotBody["id"] != "afk-1" {
		t.Errorf("body id = %v", gotBody["id"])
	}
	if _, ok := gotBody["timestamp"]; !ok {
		t.Error("expected timestamp field in afk start body")
	}

	snap := store.Snapshot()
	if snap.LastDataSentStatus != health.StatusSuccess {
		t.Errorf("LastDataSentStatus = %v, want Success", snap.LastDataSentStatus)
	}
}

func TestDispatchDiscardsWhenUnpaired(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Pairing.Active = false
	cfg.Pairing.BackendURL = srv.URL
	store := health.New()
	d := New(config.NewSnapshot(cfg), store)

	d.dispatch(t.Context(), events.AfkStart{ID: "afk-2", Timestamp: time.Now()})

	if called {
		t.Error("expected no request to be sent while unpaired")
	}
	snap := store.Snapshot()
	if snap.LastDataSentStatus != health.StatusNone {
		t.Errorf("LastDataSentStatus = %v, want None (unrecorded) while unpaired", snap.LastDataSentStatus)
	}
}

package hyprland

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errNoOutput = errors.New("no output")

func TestProviderActiveWindow(t *testing.T) {
	p := New()
	calls := 0
	p.runHyprctl = func(args ...string) ([]byte, error) {
		calls++
		if len(args) == 2 && args[1] == "monitors" {
			return []byte(`[{"id":0,"name":"DP-1","x":0,"y":0,"width":1920,"height":1080}]`), nil
		}
		return []byte(`{"at":[100,100],"size":[800,600],"class":"firefox","title":"Mozilla Firefox","monitor":0}`), nil
	}

	wi, monitors, err := p.ActiveWindow(context.Background(), 0, time.Millisecond)
	if err != nil {
		t.Fatalf("ActiveWindow() error = %v", err)
	}
	if wi.Title != "Mozilla Firefox" || wi.AppName != "firefox" {
		t.Errorf("unexpected window info: %+v", wi)
	}
	if wi.Bbox.Left != 100 || wi.Bbox.Top != 100 || wi.Bbox.Width != 800 || wi.Bbox.Height != 600 {
		t.Errorf("unexpected bbox: %+v", wi.Bbox)
	}
	if len(monitors) != 1 || monitors[0].Width != 1920 {
		t.Errorf("unexpected monitors: %+v", monitors)
	}
	if len(wi.MonitorNames) != 1 || wi.MonitorNames[0] != "DP-1" {
		t.Errorf("unexpected monitor names: %+v", wi.MonitorNames)
	}
}

func TestProviderActiveWindowRetries(t *testing.T) {
	p := New()
	attempts := 0
	p.runHyprctl = func(args ...string) ([]byte, error) {
		if len(args) == 2 && args[1] == "monitors" {
			return []byte(`[{"id":0,"name":"DP-1","x":0,"y":0,"width":1920,"height":1080}]`), nil
		}
		attempts++
		if attempts < 2 {
			return nil, errNoOutput
		}
		return []byte(`{"at":[0,0],"size":[100,100],"class":"x","title":"y","monitor":0}`), nil
	}

	_, _, err := p.ActiveWindow(context.Background(), 2, time.Millisecond)
	if err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}

package sway

import (
	"context"
	"testing"
	"time"
)

const sampleTree = `{
  "type": "root",
  "nodes": [
    {
      "type": "output",
      "name": "eDP-1",
      "rect": {"x": 0, "y": 0, "width": 1920, "height": 1080},
      "nodes": [
        {
          "type": "con",
          "focused": false,
          "nodes": [
            {
              "type": "con",
              "focused": true,
              "app_id": "alacritty",
              "name": "term",
              "rect": {"x": 100, "y": 100, "width": 800, "height": 600}
            }
          ]
        }
      ]
    }
  ]
}`

const sampleOutputs = `[{"name":"eDP-1","active":true,"rect":{"x":0,"y":0,"width":1920,"height":1080}}]`

func TestProviderActiveWindow(t *testing.T) {
	p := New()
	p.runSwaymsg = func(args ...string) ([]byte, error) {
		if len(args) == 2 && args[1] == "get_outputs" {
			return []byte(sampleOutputs), nil
		}
		return []byte(sampleTree), nil
	}

	wi, outputs, err := p.ActiveWindow(context.Background(), 0, time.Millisecond)
	if err != nil {
		t.Fatalf("ActiveWindow() error = %v", err)
	}
	if wi.AppName != "alacritty" || wi.Title != "term" {
		t.Errorf("unexpected window info: %+v", wi)
	}
	if wi.Bbox.Left != 100 || wi.Bbox.Width != 800 {
		t.Errorf("unexpected bbox: %+v", wi.Bbox)
	}
	if len(outputs) != 1 || outputs[0].Width != 1920 {
		t.Errorf("unexpected outputs: %+v", outputs)
	}
	if len(wi.MonitorNames) != 1 || wi.MonitorNames[0] != "eDP-1" {
		t.Errorf("unexpected monitor names: %+v", wi.MonitorNames)
	}
}

func TestFindFocusedNoMatch(t *testing.T) {
	_, ok := findFocused(node{Type: "root"})
	if ok {
		t.Errorf("expected no focused node in an empty tree")
	}
}

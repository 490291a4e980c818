//go:build linux

package platform

import (
	"testing"

	"github.com/1broseidon/winrestore/internal/x11"
)

func TestMonitorBounds(t *testing.T) {
	tests := []struct {
		name     string
		monitors []x11.Monitor
		want     Rect
	}{
		{
			name:     "single monitor",
			monitors: []x11.Monitor{{X: 0, Y: 0, Width: 1920, Height: 1080}},
			want:     Rect{Right: 1920, Bottom: 1080},
		},
		{
			name: "left monitor at negative offset",
			monitors: []x11.Monitor{
				{X: 0, Y: 0, Width: 1920, Height: 1080},
				{X: -1280, Y: 200, Width: 1280, Height: 1024},
			},
			want: Rect{Left: -1280, Top: 0, Right: 1920, Bottom: 1224},
		},
		{
			name: "stacked monitors",
			monitors: []x11.Monitor{
				{X: 0, Y: 1080, Width: 2560, Height: 1440},
				{X: 320, Y: 0, Width: 1920, Height: 1080},
			},
			want: Rect{Left: 0, Top: 0, Right: 2560, Bottom: 2520},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := monitorBounds(tt.monitors); got != tt.want {
				t.Fatalf("monitorBounds() = %v, want %v", got, tt.want)
			}
		})
	}
}

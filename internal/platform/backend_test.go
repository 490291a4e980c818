package platform

import (
	"errors"
	"fmt"
	"testing"
)

func TestRect_DeltaIsSumOfAbsoluteDifferences(t *testing.T) {
	a := Rect{Left: 100, Top: 100, Right: 900, Bottom: 700}
	b := Rect{Left: 50, Top: 120, Right: 500, Bottom: 400}

	if got := a.Delta(a); got != 0 {
		t.Fatalf("expected zero delta for identical rects, got %d", got)
	}
	// 50 + 20 + 400 + 300
	if got := a.Delta(b); got != 770 {
		t.Fatalf("expected delta 770, got %d", got)
	}
	if a.Delta(b) != b.Delta(a) {
		t.Fatalf("expected delta to be symmetric")
	}
}

func TestRect_WidthHeightUnion(t *testing.T) {
	left := Rect{Left: -1920, Top: 0, Right: 0, Bottom: 1080}
	right := Rect{Left: 0, Top: -200, Right: 2560, Bottom: 1240}

	u := left.Union(right)
	want := Rect{Left: -1920, Top: -200, Right: 2560, Bottom: 1240}
	if u != want {
		t.Fatalf("Union() = %v, want %v", u, want)
	}
	if u.Width() != 4480 || u.Height() != 1440 {
		t.Fatalf("expected 4480x1440, got %dx%d", u.Width(), u.Height())
	}
}

func TestExpected_RecognizesWrappedSentinels(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "access denied", err: fmt.Errorf("GetWindowRect: %w", ErrAccessDenied), want: true},
		{name: "gone", err: fmt.Errorf("%w: BadWindow", ErrWindowGone), want: true},
		{name: "other", err: errors.New("connection reset"), want: false},
		{name: "nil", err: nil, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Expected(tt.err); got != tt.want {
				t.Fatalf("Expected(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestWindowID_StringIsHex(t *testing.T) {
	if got := WindowID(0x3a00007).String(); got != "0x3a00007" {
		t.Fatalf("String() = %q", got)
	}
}

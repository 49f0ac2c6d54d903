package main

import (
	"slices"
	"testing"

	"github.com/samcharles93/mosaic/internal/tensor"
)

func TestParseBackground(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in       string
		channels int
		want     []float32
		wantErr  bool
	}{
		{in: "", channels: 4, want: nil},
		{in: "0.5", channels: 2, want: []float32{0.5, 1}},
		{in: "0.25", channels: 4, want: []float32{0.25, 0.25, 0.25, 1}},
		{in: "1, 0, 0.5", channels: 4, want: []float32{1, 0, 0.5, 1}},
		{in: "1,0", channels: 4, wantErr: true},
		{in: "red", channels: 2, wantErr: true},
		{in: "1.5", channels: 2, wantErr: true},
	}
	for _, tc := range tests {
		got, err := parseBackground(tc.in, tc.channels)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("parseBackground(%q): expected error, got %v", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parseBackground(%q): %v", tc.in, err)
		}
		if !slices.Equal(got, tc.want) {
			t.Fatalf("parseBackground(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestCoverageMask(t *testing.T) {
	t.Parallel()

	valid := []bool{true, false, true}
	for _, bg := range []bool{false, true} {
		out, err := tensor.NewBufferFromData(tensor.Shape{Rows: 1, Cols: 3, Channels: 2},
			[]float32{0.5, 0.3, 0.7, 0.9, 0.2, 2})
		if err != nil {
			t.Fatal(err)
		}
		covered := coverageMask(out, valid, bg)
		if covered != 2 {
			t.Fatalf("background=%t: covered = %d, want 2", bg, covered)
		}
		wantMid := float32(0)
		if bg {
			wantMid = 1
		}
		want := []float32{1, wantMid, 1}
		for col, w := range want {
			if got := out.At(0, col, 1); got != w {
				t.Fatalf("background=%t: mask at %d = %v, want %v", bg, col, got, w)
			}
		}
		if out.At(0, 1, 0) != 0.7 {
			t.Fatalf("colour channel changed: %v", out.At(0, 1, 0))
		}
	}
}

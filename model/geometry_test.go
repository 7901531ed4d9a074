package model

import "testing"

// TestMatrix tests transformation and composition order.
func TestMatrix(t *testing.T) {
	p := Point{X: 1, Y: 2}

	tests := []struct {
		name string
		m    Matrix
		want Point
	}{
		{"identity", Identity(), Point{1, 2}},
		{"translate", Translate(10, 20), Point{11, 22}},
		{"scale", Scale(2, 3), Point{2, 6}},
		{"scale then translate", Scale(2, 2).Multiply(Translate(5, 0)), Point{7, 4}},
		{"translate then scale", Translate(5, 0).Multiply(Scale(2, 2)), Point{12, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.Transform(p); got != tt.want {
				t.Errorf("Transform(%v) = %v, want %v", p, got, tt.want)
			}
		})
	}
}

package service

import "testing"

func TestChangeFraction(t *testing.T) {
	tests := []struct {
		name              string
		current, previous float64
		want              float64
	}{
		{"both zero", 0, 0, 0},
		{"zero baseline", 7, 0, 1},
		{"half increase", 150, 100, 0.5},
		{"decrease", 1, 3, -0.67},
		{"drop to zero", 0, 4, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ChangeFraction(tt.current, tt.previous); got != tt.want {
				t.Fatalf("ChangeFraction(%v, %v) = %v, want %v", tt.current, tt.previous, got, tt.want)
			}
		})
	}
}

func TestChangePercentagePoints(t *testing.T) {
	tests := []struct {
		name              string
		current, previous float64
		want              float64
	}{
		{"both zero", 0, 0, 0},
		{"zero baseline", 3, 0, 100},
		{"half increase", 150, 100, 50},
		{"rounded after scaling", 1, 3, -66.67},
		{"small change", 1001, 1000, 0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ChangePercentagePoints(tt.current, tt.previous); got != tt.want {
				t.Fatalf("ChangePercentagePoints(%v, %v) = %v, want %v", tt.current, tt.previous, got, tt.want)
			}
		})
	}
}

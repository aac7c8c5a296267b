package ocr

import "testing"

func TestHeuristicConfidence(t *testing.T) {
	tests := []struct {
		name string
		txt  string
		min  float32
		max  float32
	}{
		{"empty", "", 0.19, 0.21},
		{"garbage", "qwerty asdf", 0.19, 0.21},
		{"amount only", "pagado 450.00", 0.34, 0.36},
		{
			"full invoice",
			"NCF: B0100000123\nRNC: 123456789\nFecha: 10/02/2026\nTotal: RD$1,500.00",
			0.85, 1.0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HeuristicConfidence(tt.txt)
			if got < tt.min || got > tt.max {
				t.Fatalf("HeuristicConfidence(%q) = %v, want within [%v, %v]", tt.txt, got, tt.min, tt.max)
			}
		})
	}
}

func TestHeuristicConfidenceCapped(t *testing.T) {
	long := "NCF: B0100000123 RNC: 101019921 RD$ 1,500.00 10/02/2026 "
	for len(long) < 200 {
		long += long
	}
	if got := HeuristicConfidence(long); got > 1.0 {
		t.Fatalf("confidence above cap: %v", got)
	}
}

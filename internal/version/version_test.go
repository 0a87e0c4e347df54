package version

import "testing"

func TestOrdinal(t *testing.T) {
	tests := []struct {
		name string
		v    string
		want int64
	}{
		{"plain three segments", "3.55.1", 3_0055_0001_0000},
		{"four segments", "3.55.1.2", 3_0055_0001_0002},
		{"single segment", "4", 4_0000_0000_0000},
		{"v prefix stripped", "v1.2.0", 1_0002_0000_0000},
		{"beta qualifier ignored", "3.56.0-beta1", 3_0056_0000_0000},
		{"rc qualifier on segment", "3.55.1-rc2", 3_0055_0001_0000},
		{"empty", "", -1},
		{"not a version", "dev", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Ordinal(tt.v); got != tt.want {
				t.Errorf("Ordinal(%q) = %d, want %d", tt.v, got, tt.want)
			}
		})
	}
}

func TestOrdinalOrdering(t *testing.T) {
	older := Ordinal("3.55.1")
	newer := Ordinal("3.56.0")

	if older >= newer {
		t.Errorf("expected Ordinal(3.55.1)=%d < Ordinal(3.56.0)=%d", older, newer)
	}

	if Ordinal("3.55.1") != Ordinal("3.55.1.0") {
		t.Error("missing segments should compare equal to zero segments")
	}
}

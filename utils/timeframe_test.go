package utils

import (
	"testing"
	"time"
)

func TestTimeframeCutoff(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		timeframe string
		want      time.Time
		wantErr   bool
	}{
		{"24h", now.Add(-24 * time.Hour), false},
		{"7d", now.Add(-7 * 24 * time.Hour), false},
		{"30d", now.Add(-30 * 24 * time.Hour), false},
		{"all", time.Time{}, false},
		{"", time.Time{}, false},
		{"1y", time.Time{}, true},
		{"24H", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run("timeframe "+tt.timeframe, func(t *testing.T) {
			got, err := TimeframeCutoff(tt.timeframe, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr = %v", err, tt.wantErr)
			}
			if !got.Equal(tt.want) {
				t.Errorf("cutoff = %v, want %v", got, tt.want)
			}
		})
	}
}

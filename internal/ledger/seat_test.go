package ledger

import "testing"

func TestLowestFreeSeat(t *testing.T) {
	tests := []struct {
		name     string
		occupied []int
		capacity int
		want     int
	}{
		{
			name:     "empty trip",
			occupied: nil,
			capacity: 20,
			want:     1,
		},
		{
			name:     "gap from a released seat",
			occupied: []int{1, 3},
			capacity: 20,
			want:     2,
		},
		{
			name:     "contiguous prefix",
			occupied: []int{1, 2, 3},
			capacity: 20,
			want:     4,
		},
		{
			name:     "full",
			occupied: []int{1, 2, 3},
			capacity: 3,
			want:     0,
		},
		{
			name:     "single seat vehicle",
			occupied: nil,
			capacity: 1,
			want:     1,
		},
		{
			name:     "only high seats held",
			occupied: []int{5, 6},
			capacity: 6,
			want:     1,
		},
		{
			name:     "zero capacity",
			occupied: nil,
			capacity: 0,
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lowestFreeSeat(tt.occupied, tt.capacity)
			if got != tt.want {
				t.Fatalf("lowestFreeSeat(%v, %d) = %d, want %d", tt.occupied, tt.capacity, got, tt.want)
			}
		})
	}
}

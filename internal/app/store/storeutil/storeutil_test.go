package storeutil

import "testing"

func TestPaginate(t *testing.T) {
	tests := []struct {
		name      string
		limit     int64
		page      int64
		wantLimit int64
		wantSkip  int64
	}{
		{"first page", 10, 1, 10, 0},
		{"third page", 10, 3, 10, 20},
		{"default limit", 0, 2, DefaultLimit, DefaultLimit},
		{"negative page", 10, -4, 10, 0},
		{"capped limit", 5000, 2, MaxLimit, MaxLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Paginate(tt.limit, tt.page)
			if *opts.Limit != tt.wantLimit || *opts.Skip != tt.wantSkip {
				t.Errorf("Paginate(%d, %d) = limit %d skip %d, want %d %d",
					tt.limit, tt.page, *opts.Limit, *opts.Skip, tt.wantLimit, tt.wantSkip)
			}
		})
	}
}

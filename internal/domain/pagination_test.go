package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecompute(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		limit     int
		page      int
		wantPage  int
		wantPages int
	}{
		{"empty listing still has one page", 0, 20, 1, 1, 1},
		{"exact multiple", 40, 20, 2, 2, 2},
		{"partial last page", 41, 20, 3, 3, 3},
		{"page above total pages clamps down", 10, 20, 5, 1, 1},
		{"page zero clamps up", 10, 20, 0, 1, 1},
		{"negative page clamps up", 10, 20, -3, 1, 1},
		{"negative total treated as empty", -5, 20, 1, 1, 1},
		{"zero limit treated as one", 3, 0, 2, 2, 3},
		{"single item", 1, 20, 1, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := Recompute(tt.total, tt.limit, tt.page)
			assert.Equal(t, tt.wantPage, meta.Page)
			assert.Equal(t, tt.wantPages, meta.TotalPages)
			assert.GreaterOrEqual(t, meta.TotalPages, 1)
			assert.GreaterOrEqual(t, meta.Page, 1)
			assert.LessOrEqual(t, meta.Page, meta.TotalPages)
		})
	}
}

func TestAdjust(t *testing.T) {
	t.Run("shrinking total clamps current page", func(t *testing.T) {
		meta := Recompute(21, 5, 5)
		assert.Equal(t, 5, meta.TotalPages)

		meta = meta.Adjust(-1)
		assert.Equal(t, 20, meta.Total)
		assert.Equal(t, 4, meta.TotalPages)
		assert.Equal(t, 4, meta.Page)
	})

	t.Run("growing total keeps current page", func(t *testing.T) {
		meta := Recompute(20, 5, 2)
		meta = meta.Adjust(+1)
		assert.Equal(t, 21, meta.Total)
		assert.Equal(t, 5, meta.TotalPages)
		assert.Equal(t, 2, meta.Page)
	})
}

package response

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPageResponse(t *testing.T) {
	tests := []struct {
		total, pageSize, wantPages int
	}{
		{0, 20, 0},
		{20, 20, 1},
		{21, 20, 2},
		{5, 0, 0},
	}
	for _, tt := range tests {
		p := NewPageResponse([]int{1}, 1, tt.pageSize, tt.total)
		assert.Equal(t, tt.wantPages, p.TotalPages, "total=%d size=%d", tt.total, tt.pageSize)
	}

	empty := NewPageResponse[string](nil, 1, 20, 0)
	assert.NotNil(t, empty.Items)
	assert.Empty(t, empty.Items)
}

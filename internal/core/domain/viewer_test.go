package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampScale(t *testing.T) {
	assert.Equal(t, MinScale, ClampScale(0.1))
	assert.Equal(t, MaxScale, ClampScale(10))
	assert.Equal(t, 1.25, ClampScale(1.25))
}

func TestClampPage(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		pageCount int
		expected  int
	}{
		{name: "within range", page: 3, pageCount: 5, expected: 3},
		{name: "below range", page: 0, pageCount: 5, expected: 1},
		{name: "above range", page: 9, pageCount: 5, expected: 5},
		{name: "unknown page count", page: 4, pageCount: 0, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClampPage(tt.page, tt.pageCount))
		})
	}
}

func TestProgress_Done(t *testing.T) {
	assert.False(t, Progress{Completed: 1, Total: 3}.Done())
	assert.True(t, Progress{Completed: 3, Total: 3}.Done())
	assert.True(t, Progress{}.Done())
}

package pdfops

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPagesToSelector(t *testing.T) {
	tests := []struct {
		name  string
		pages []int
		want  []string
	}{
		{"empty", nil, nil},
		{"single page", []int{4}, []string{"4"}},
		{"contiguous run", []int{1, 2, 3}, []string{"1-3"}},
		{"mixed", []int{1, 2, 3, 7, 9, 10}, []string{"1-3", "7", "9-10"}},
		{"unsorted with duplicates", []int{5, 1, 5, 2, 3}, []string{"1-3", "5"}},
		{"ignores non-positive", []int{0, -1, 2}, []string{"2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pagesToSelector(tt.pages))
		})
	}
}

func TestPageOrderSelector(t *testing.T) {
	assert.Equal(t, []string{"3", "1", "2", "1"}, pageOrderSelector([]int{3, 1, 2, 1}))
	assert.Empty(t, pageOrderSelector(nil))
}

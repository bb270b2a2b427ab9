package vdom

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLongestIncreasingSubsequence(t *testing.T) {
	tests := []struct {
		name string
		in   []int
		want []int
	}{
		{"unmatched entries skipped", []int{0, 3, 1, 2, 0, 4}, []int{2, 3, 5}},
		{"already sorted", []int{1, 2, 3, 4}, []int{0, 1, 2, 3}},
		{"reversed", []int{4, 3, 2, 1}, []int{3}},
		{"single move to end", []int{3, 4, 2}, []int{0, 1}},
		{"all unmatched", []int{0, 0}, nil},
		{"empty", nil, nil},
		{"interleaved", []int{2, 1, 5, 3, 6, 4, 8, 9, 7}, []int{1, 3, 5, 6, 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := longestIncreasingSubsequence(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("LIS(%v) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestLongestIncreasingSubsequenceValues(t *testing.T) {
	in := []int{0, 3, 1, 2, 0, 4}
	var values []int
	for _, i := range longestIncreasingSubsequence(in) {
		values = append(values, in[i])
	}
	if diff := cmp.Diff([]int{1, 2, 4}, values); diff != "" {
		t.Errorf("subsequence values mismatch (-want +got):\n%s", diff)
	}
}

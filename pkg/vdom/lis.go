package vdom

// longestIncreasingSubsequence returns the indexes of a longest strictly
// increasing subsequence of arr, ignoring 0 entries. Entries are old-index
// plus one, so 0 marks a slot with no old node.
//
// It runs in O(n log n): result[k] is the index of the smallest tail of
// any increasing run of length k+1, and prev links each index to its
// predecessor for the final walk back.
func longestIncreasingSubsequence(arr []int) []int {
	prev := make([]int, len(arr))
	result := make([]int, 0, len(arr))

	for i, v := range arr {
		if v == 0 {
			continue
		}
		if n := len(result); n == 0 || arr[result[n-1]] < v {
			if n > 0 {
				prev[i] = result[n-1]
			}
			result = append(result, i)
			continue
		}

		lo, hi := 0, len(result)-1
		for lo < hi {
			mid := (lo + hi) >> 1
			if arr[result[mid]] < v {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		if v < arr[result[lo]] {
			if lo > 0 {
				prev[i] = result[lo-1]
			}
			result[lo] = i
		}
	}

	if len(result) == 0 {
		return nil
	}
	k := result[len(result)-1]
	for u := len(result) - 1; u >= 0; u-- {
		result[u] = k
		k = prev[k]
	}
	return result
}

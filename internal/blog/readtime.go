package blog

import "strings"

// DefaultWordsPerMinute is the reading speed assumed for read times.
const DefaultWordsPerMinute = 200

// ReadTime estimates how many whole minutes source takes to read. It never
// returns less than one.
func ReadTime(source string, wordsPerMinute int) int {
	if wordsPerMinute <= 0 {
		wordsPerMinute = DefaultWordsPerMinute
	}
	words := len(strings.Fields(source))
	return max((words+wordsPerMinute-1)/wordsPerMinute, 1)
}

package extractor

import "sort"

// LineIndex maps byte offsets to 1-based line numbers. Line starts are
// computed once per file and each lookup is a binary search, which keeps
// per-match line resolution cheap even on large files with many matches.
type LineIndex struct {
	starts []int // byte offset of the first character of each line
}

// NewLineIndex builds the index for one file's content.
func NewLineIndex(content []byte) *LineIndex {
	starts := make([]int, 1, 64)
	starts[0] = 0
	for i, b := range content {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{starts: starts}
}

// LineAt returns the 1-based line number containing the byte offset.
// Offsets past the end of content map to the last line.
func (li *LineIndex) LineAt(offset int) int {
	if offset < 0 {
		return 1
	}
	// First line start strictly greater than offset; the offset's line is
	// the one before it.
	i := sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > offset })
	return i
}

// LineText returns the text of the 1-based line, without its newline.
// Out-of-range lines return "".
func (li *LineIndex) LineText(content []byte, line int) string {
	if line < 1 || line > len(li.starts) {
		return ""
	}
	start := li.starts[line-1]
	end := len(content)
	if line < len(li.starts) {
		end = li.starts[line] - 1 // drop the trailing newline
	}
	if end > len(content) {
		end = len(content)
	}
	if start > end {
		return ""
	}
	return string(content[start:end])
}

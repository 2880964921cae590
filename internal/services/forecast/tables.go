package forecast

import (
	"strconv"
	"strings"
)

// Pattern window lengths and Markov order are fixed by the model design.
var patternWindowLengths = []int{3, 4, 5, 6, 7, 8}

const markovOrder = 3

// digitStats accumulates next-digit occurrences after a sequence key.
type digitStats struct {
	counts [10]int
	total  int
}

func (s *digitStats) add(digit int) {
	s.counts[digit]++
	s.total++
}

// majority returns the most frequent next digit and its count.
func (s *digitStats) majority() (digit, count int) {
	for d, c := range s.counts {
		if c > count {
			digit, count = d, c
		}
	}
	return digit, count
}

// PatternTable maps fixed-length digit sequences to next-digit stats.
// Rebuilt from scratch each training pass; stale entries must not survive.
type PatternTable map[string]*digitStats

// patternKey joins digits into a compact sequence string, e.g. "50713".
func patternKey(digits []int) string {
	var sb strings.Builder
	for _, d := range digits {
		sb.WriteByte(byte('0' + d))
	}
	return sb.String()
}

// buildPatternTable scans the chronological digit sequence once per window
// length, counting the digit following each occurrence.
func buildPatternTable(digits []int) PatternTable {
	t := make(PatternTable)
	for _, l := range patternWindowLengths {
		for i := 0; i+l < len(digits); i++ {
			key := patternKey(digits[i : i+l])
			st, ok := t[key]
			if !ok {
				st = &digitStats{}
				t[key] = st
			}
			st.add(digits[i+l])
		}
	}
	return t
}

// MarkovTable maps dash-joined digit sequences of length 1..markovOrder to
// next-digit stats. Also rebuilt wholesale each pass.
type MarkovTable map[string]*digitStats

// markovKey joins digits with dashes, e.g. "5-5-5".
func markovKey(digits []int) string {
	parts := make([]string, len(digits))
	for i, d := range digits {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, "-")
}

func buildMarkovTable(digits []int) MarkovTable {
	t := make(MarkovTable)
	for order := 1; order <= markovOrder; order++ {
		for i := 0; i+order < len(digits); i++ {
			key := markovKey(digits[i : i+order])
			st, ok := t[key]
			if !ok {
				st = &digitStats{}
				t[key] = st
			}
			st.add(digits[i+order])
		}
	}
	return t
}

// TrendWindows are bit slices over the buffer head, recomputed each pass.
type TrendWindows struct {
	Short  []int // 10 most recent bits
	Medium []int // 30
	Long   []int // 60
}

func buildTrendWindows(bits []int) TrendWindows {
	tail := func(n int) []int {
		if n > len(bits) {
			n = len(bits)
		}
		return bits[len(bits)-n:]
	}
	return TrendWindows{Short: tail(10), Medium: tail(30), Long: tail(60)}
}

func bitRatio(bits []int) float64 {
	if len(bits) == 0 {
		return 0.5
	}
	ones := 0
	for _, b := range bits {
		if b == 1 {
			ones++
		}
	}
	return float64(ones) / float64(len(bits))
}

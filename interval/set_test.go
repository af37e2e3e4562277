package interval

import (
	"testing"

	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func TestNewSet(t *testing.T) {
	tests := []struct {
		entries []Entry
		want    []int
	}{
		{nil, nil},
		{[]Entry{{5, 15}, {7, 17}, {20, 25}}, []int{5, 17, 20, 25}},
		{[]Entry{{20, 25}, {5, 15}, {15, 18}}, []int{5, 18, 20, 25}},
		{[]Entry{{3, 3}, {0, 1}}, []int{0, 1}},
		{[]Entry{{0, 10}, {2, 4}}, []int{0, 10}},
	}
	for _, test := range tests {
		s, err := NewSet(test.entries)
		assert.NoError(t, err)
		expect.EQ(t, s.endpoints, test.want, "entries: %v", test.entries)
	}
	_, err := NewSet([]Entry{{4, 2}})
	expect.True(t, err != nil)
	_, err = NewSet([]Entry{{-1, 2}})
	expect.True(t, err != nil)
}

func TestSetQueries(t *testing.T) {
	s, err := NewSet([]Entry{{5, 17}, {20, 25}})
	assert.NoError(t, err)
	expect.False(t, s.Contains(4))
	expect.True(t, s.Contains(5))
	expect.True(t, s.Contains(16))
	expect.False(t, s.Contains(17))
	expect.True(t, s.Contains(24))
	expect.False(t, s.Contains(25))
	expect.EQ(t, s.Entries(), []Entry{{5, 17}, {20, 25}})
	expect.EQ(t, s.Invert(30).Entries(), []Entry{{0, 5}, {17, 20}, {25, 30}})
	expect.EQ(t, s.Invert(22).Entries(), []Entry{{0, 5}, {17, 20}})
	expect.EQ(t, s.Invert(30).Invert(30).Entries(), s.Entries())
	var empty Set
	expect.EQ(t, empty.Invert(4).Entries(), []Entry{{0, 4}})
}

func TestZeroRuns(t *testing.T) {
	counts := []int{3, 3, 3, 0, 0, 0, 0, 0, 3, 3}
	expect.EQ(t, ZeroRuns(counts), []Entry{{3, 8}})
	run, ok := LongestZeroRun(counts)
	expect.True(t, ok)
	expect.EQ(t, run, Entry{3, 8})

	run, ok = LongestZeroRun([]int{0, 0, 1, 0, 0, 1, 0})
	expect.True(t, ok)
	expect.EQ(t, run, Entry{0, 2})

	run, ok = LongestZeroRun(make([]int, 16))
	expect.True(t, ok)
	expect.EQ(t, run, Entry{0, 16})

	_, ok = LongestZeroRun([]int{1, 2})
	expect.False(t, ok)
	expect.EQ(t, Entry{0, 10}.Overlap(Entry{5, 20}), 5)
	expect.EQ(t, Entry{0, 10}.Overlap(Entry{10, 20}), 0)
}

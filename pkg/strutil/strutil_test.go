package strutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFields(t *testing.T) {
	assert.Equal(t, []string{"shortest", "12", "34"}, Fields("  shortest  12 34 "))
	assert.Empty(t, Fields("   "))
}

func TestSplit(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, Split("a,b,c", ","))
	assert.Equal(t, []string{"a", "b"}, Split(" a  b ", ""))
	assert.Equal(t, []string{"", ""}, Split(",", ","))
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "a,b,c", Join(",", []string{"a", "b", "c"}))
	assert.Equal(t, "", Join(",", nil))
}

func TestStrip(t *testing.T) {
	assert.Equal(t, "x y", Strip("  x y\t\n"))
	assert.Equal(t, "x y\t\n", LStrip("  x y\t\n"))
	assert.Equal(t, "  x y", RStrip("  x y\t\n"))
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Walk", Capitalize("wALK"))
	assert.Equal(t, "", Capitalize(""))
}

func TestReplace(t *testing.T) {
	assert.Equal(t, "a-b-c", Replace("a b c", " ", "-"))
}

func TestSlice(t *testing.T) {
	assert.Equal(t, "ell", Slice("hello", 1, 4))
	assert.Equal(t, "llo", Slice("hello", -3, 0))
	assert.Equal(t, "hell", Slice("hello", 0, -1))
	assert.Equal(t, "", Slice("hello", 4, 2))
}

func TestEditDistance(t *testing.T) {
	assert.Equal(t, 0, EditDistance("fastest", "fastest", false))
	assert.Equal(t, 1, EditDistance("fastest", "fastes", false))
	assert.Equal(t, 3, EditDistance("kitten", "sitting", false))
	assert.Equal(t, 0, EditDistance("Help", "help", true))
	assert.Equal(t, 1, EditDistance("Help", "help", false))
	assert.Equal(t, 4, EditDistance("", "exit", false))
}

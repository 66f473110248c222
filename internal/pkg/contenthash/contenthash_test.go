package contenthash

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSumDeterministic(t *testing.T) {
	fields := map[string]string{
		"name":   String("Problem Set 4"),
		"due_at": nullValue,
		"points": Float64Ptr(ptrFloat(100)),
	}

	first := Sum(fields)
	second := Sum(fields)

	assert.Equal(t, first, second)
	require.Len(t, first, 64)
	assert.Regexp(t, `^[0-9a-f]{64}$`, first)
}

func TestSumChangesWhenFieldChanges(t *testing.T) {
	base := map[string]string{
		"title":   String("Week 3 update"),
		"message": String("<p>Lecture moved to Rice 130.</p>"),
	}
	changed := map[string]string{
		"title":   String("Week 3 update"),
		"message": String("<p>Lecture moved to Rice 340.</p>"),
	}

	assert.NotEqual(t, Sum(base), Sum(changed))
}

func TestSumSeparatorsCannotCollide(t *testing.T) {
	// A value containing the pair separator must not hash the same as two
	// distinct fields spelling out the same bytes.
	joined := map[string]string{
		"a": String("1\nb=2"),
	}
	split := map[string]string{
		"a": String("1"),
		"b": String("2"),
	}

	assert.NotEqual(t, Sum(joined), Sum(split))
}

func TestSumEscapedNames(t *testing.T) {
	left := map[string]string{
		`a\`: String("x"),
	}
	right := map[string]string{
		"a": String(`\x`),
	}

	assert.NotEqual(t, Sum(left), Sum(right))
}

func TestStringPtrNilDistinctFromEmpty(t *testing.T) {
	empty := ""

	assert.NotEqual(t, StringPtr(nil), StringPtr(&empty))
	assert.NotEqual(t,
		Sum(map[string]string{"description": StringPtr(nil)}),
		Sum(map[string]string{"description": StringPtr(&empty)}),
	)
}

func TestRenderersAreTypeTagged(t *testing.T) {
	one := float64(1)

	assert.NotEqual(t, String("1"), Float64Ptr(&one))
	assert.NotEqual(t, String("1"), Int64(1))
	assert.Equal(t, "z", StringPtr(nil))
	assert.Equal(t, "z", TimePtr(nil))
	assert.Equal(t, "z", Float64Ptr(nil))
	assert.Equal(t, "z", Int64Ptr(nil))
}

func TestTimePtrNormalizesZone(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	utc := time.Date(2025, 9, 12, 16, 0, 0, 0, time.UTC)
	eastern := utc.In(loc)

	assert.Equal(t, TimePtr(&utc), TimePtr(&eastern))
}

func TestFloat64PtrStableFormatting(t *testing.T) {
	hundred := float64(100)
	fractional := 12.5

	assert.Equal(t, "f:100", Float64Ptr(&hundred))
	assert.Equal(t, "f:12.5", Float64Ptr(&fractional))
}

func ptrFloat(v float64) *float64 { return &v }

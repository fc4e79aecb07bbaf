package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitEvenExactThirds(t *testing.T) {
	out := SplitEven(100000, 3)

	assert.Equal(t, []Cents{33333, 33333, 33334}, out)
}

func TestSplitEvenNoRemainder(t *testing.T) {
	assert.Equal(t, []Cents{67500, 67500}, SplitEven(135000, 2))
	assert.Equal(t, []Cents{45000, 45000, 45000}, SplitEven(135000, 3))
}

func TestSplitEvenSinglePart(t *testing.T) {
	assert.Equal(t, []Cents{135000}, SplitEven(135000, 1))
}

func TestSplitEvenZeroTotal(t *testing.T) {
	assert.Equal(t, []Cents{0, 0, 0}, SplitEven(0, 3))
}

func TestSplitEvenRemainderGoesToTrailingSlots(t *testing.T) {
	out := SplitEven(10, 3)

	assert.Equal(t, []Cents{3, 3, 4}, out)

	out = SplitEven(11, 3)
	assert.Equal(t, []Cents{3, 4, 4}, out)
}

func TestSplitEvenAlwaysSumsToTotal(t *testing.T) {
	totals := []Cents{0, 1, 99, 100, 13500, 135001, 141000, 999999}
	for _, total := range totals {
		for parts := 1; parts <= 12; parts++ {
			out := SplitEven(total, parts)

			base := total / Cents(parts)
			var sum Cents
			for _, v := range out {
				assert.GreaterOrEqual(t, v, Cents(0))
				assert.LessOrEqual(t, v-base, Cents(1), "every slot stays within one cent of the floor share")
				sum += v
			}
			assert.Equal(t, total, sum, "total=%d parts=%d", total, parts)
			assert.Len(t, out, parts)
		}
	}
}

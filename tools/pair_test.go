package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderPair(t *testing.T) {
	lo, hi := OrderPair("200", "100")
	assert.Equal(t, "100", lo)
	assert.Equal(t, "200", hi)

	// 参数顺序无关
	lo2, hi2 := OrderPair("100", "200")
	assert.Equal(t, lo, lo2)
	assert.Equal(t, hi, hi2)

	// 数值序而不是字典序：长度短的数值更小
	lo, hi = OrderPair("999", "1000")
	assert.Equal(t, "999", lo)
	assert.Equal(t, "1000", hi)
}

func TestLessID(t *testing.T) {
	assert.True(t, LessID("9", "10"))
	assert.False(t, LessID("10", "9"))
	assert.True(t, LessID("123", "124"))
	assert.False(t, LessID("124", "123"))
	assert.False(t, LessID("124", "124"))
}

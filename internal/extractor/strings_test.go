package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnescapeJS(t *testing.T) {
	assert.Equal(t, "plain", unescapeJS("plain"))
	assert.Equal(t, "a\nb\tc", unescapeJS(`a\nb\tc`))
	assert.Equal(t, `it's "q" \`, unescapeJS(`it\'s \"q\" \\`))
	assert.Equal(t, "A é", unescapeJS(`\x41 é`))
	assert.Equal(t, "😀", unescapeJS(`\u{1F600}`))
	assert.Equal(t, "😀", unescapeJS(`😀`))
	assert.Equal(t, "ab", unescapeJS("a\\\nb"))
	assert.Equal(t, "q", unescapeJS(`\q`))
}

func TestUnescapePHP(t *testing.T) {
	t.Run("Single Quoted", func(t *testing.T) {
		assert.Equal(t, `it's \ \n`, unescapePHPSingle(`it\'s \\ \n`))
	})

	t.Run("Double Quoted", func(t *testing.T) {
		assert.Equal(t, "a\nb\t$c \"d\"", unescapePHPDouble(`a\nb\t\$c \"d\"`))
		assert.Equal(t, "AA", unescapePHPDouble(`\101\x41`))
		assert.Equal(t, "é", unescapePHPDouble(`\u{e9}`))
		assert.Equal(t, `\q é`, unescapePHPDouble(`\q é`))
	})
}

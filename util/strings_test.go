package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeepCopyString(t *testing.T) {
	src := "hello world"
	copied := DeepCopyString(src[:5])
	assert.Equal(t, "hello", copied)
}

func TestStringBytesConversion(t *testing.T) {
	buf := []byte("abcdef")
	s := StringFromBytes(buf)
	assert.Equal(t, "abcdef", s)

	b := BytesFromString(s)
	assert.Equal(t, buf, b)
}

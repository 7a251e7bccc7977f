package handler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTooLong(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		s    string
		max  int
		want bool
	}{
		{name: "empty", s: "", max: 5, want: false},
		{name: "at limit", s: "abcde", max: 5, want: false},
		{name: "over limit", s: "abcdef", max: 5, want: true},
		// Each rune here is 3 bytes; the limit counts characters, so a
		// comment written in a non-Latin script is not cut short.
		{name: "multibyte at limit", s: strings.Repeat("あ", 5), max: 5, want: false},
		{name: "multibyte over limit", s: strings.Repeat("あ", 6), max: 5, want: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tooLong(tc.s, tc.max))
		})
	}
}

func TestMessageAndReviewLimitsCountRunes(t *testing.T) {
	t.Parallel()

	// 2000 three-byte characters is exactly the limit even though the
	// byte length is three times larger.
	body := strings.Repeat("ま", maxMessageLen)
	assert.False(t, tooLong(body, maxMessageLen))
	assert.True(t, tooLong(body+"!", maxMessageLen))

	comment := strings.Repeat("é", maxReviewLen)
	assert.False(t, tooLong(comment, maxReviewLen))
	assert.True(t, tooLong(comment+"é", maxReviewLen))
}

package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Stinging Nettle", "stinging-nettle"},
		{"  Wild Garlic!  ", "wild-garlic"},
		{"Achillea millefolium", "achillea-millefolium"},
		{"st. john's wort", "st-johns-wort"},
		{"already-a-slug", "already-a-slug"},
		{"Under_score/and.dots", "under-score-and-dots"},
		{"---", ""},
		{"!!!", ""},
		{"", ""},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, Make(tc.in))
		})
	}
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("stinging-nettle"))
	assert.True(t, IsValid("mint2"))

	assert.False(t, IsValid(""))
	assert.False(t, IsValid("Mint"))
	assert.False(t, IsValid("mint leaf"))
	assert.False(t, IsValid("мята"))
}

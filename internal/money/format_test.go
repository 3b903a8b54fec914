package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{3500.5, "3,500.50"},
		{630.09, "630.09"},
		{1234567.891, "1,234,567.89"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Format(tc.in))
	}
}

func TestFormatRs(t *testing.T) {
	assert.Equal(t, "Rs. 4,130.59", FormatRs(4130.59))
}

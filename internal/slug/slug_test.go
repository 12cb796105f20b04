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
		{"Hello World", "hello-world"},
		{"  General  Discussion  ", "general-discussion"},
		{"Café au lait!", "cafe-au-lait"},
		{"Über-Äpfel & Birnen", "uber-apfel-birnen"},
		{"What's new in Go 1.24?", "what-s-new-in-go-1-24"},
		{"already-a-slug", "already-a-slug"},
		{"UPPERCASE", "uppercase"},
		{"---", ""},
		{"", ""},
		{"日本語", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Make(tc.in), "input %q", tc.in)
	}
}

func TestMake_Stable(t *testing.T) {
	assert.Equal(t, Make("Some Thread Title"), Make("Some Thread Title"))
}

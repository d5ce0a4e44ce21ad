package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidDeviceID(t *testing.T) {
	cases := []struct {
		name string
		id   string
		want bool
	}{
		{"simple", "device-1", true},
		{"underscore", "a_b", true},
		{"digits only", "12345", true},
		{"max length", strings.Repeat("a", 64), true},
		{"empty", "", false},
		{"too long", strings.Repeat("a", 65), false},
		{"whitespace", "a b", false},
		{"punctuation", "a!b", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isValidDeviceID(tc.id))
		})
	}
}

package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	testCases := []struct {
		name     string
		expected string
	}{
		{name: "City Club", expected: "city club"},
		{name: "\n\t  City   Club\tMAÂRIF  ", expected: "city club maârif"},
		{name: "", expected: ""},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, NormalizeName(test.name))
	}
}

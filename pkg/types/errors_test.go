package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindingsErrorExitCode(t *testing.T) {
	testCases := []struct {
		name     string
		findings FindingsError
		expected int
	}{
		{"errors only", FindingsError{Errors: 3, Warnings: 7}, 3},
		{"warnings included", FindingsError{Errors: 3, Warnings: 7, IncludeWarnings: true}, 10},
		{"capped", FindingsError{Errors: 300}, 125},
		{"zero", FindingsError{}, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.findings.ExitCode())
		})
	}
}

func TestFindingsErrorMessage(t *testing.T) {
	assert.Equal(t, "audit found 2 error(s)", (&FindingsError{Errors: 2}).Error())
	assert.Equal(t, "audit found 2 error(s) and 1 warning(s)",
		(&FindingsError{Errors: 2, Warnings: 1, IncludeWarnings: true}).Error())
}

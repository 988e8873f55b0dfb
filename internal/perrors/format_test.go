package perrors

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatForCLI_BasicError(t *testing.T) {
	err := New(ErrCodeIO, "file 'context.md' not found", nil)

	result := FormatForCLI(err)

	assert.Contains(t, result, "file 'context.md' not found")
	assert.Contains(t, result, "["+ErrCodeIO+"]")
}

func TestFormatForCLI_IncludesDetails(t *testing.T) {
	err := LockAcquisitionError("lock held by another process", nil).
		WithDetail("projectHash", "abc12345")

	result := FormatForCLI(err)

	assert.Contains(t, result, "lock held by another process")
	assert.Contains(t, result, "projectHash=abc12345")
	assert.Contains(t, result, "hint=")
}

func TestFormatForCLI_StandardError(t *testing.T) {
	err := errors.New("something went wrong")

	result := FormatForCLI(err)

	assert.Equal(t, "something went wrong", result)
}

func TestFormatForCLI_NilError(t *testing.T) {
	assert.Empty(t, FormatForCLI(nil))
}

func TestFormatForCLI_ShortFormat(t *testing.T) {
	err := New(ErrCodeCacheCorrupt, "cache metadata is corrupt", nil)

	result := FormatForCLI(err)

	lines := strings.Split(strings.TrimSpace(result), "\n")
	assert.LessOrEqual(t, len(lines), 5, "should be concise")
}

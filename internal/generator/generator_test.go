package generator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEchoGeneratorReturnsTaskVerbatim(t *testing.T) {
	g := NewEchoGenerator()
	result, err := g.Generate(context.Background(), "some system context", "draft a summary", DeterministicOptions(1000))
	require.NoError(t, err)
	assert.Contains(t, result.Text, "draft a summary")
	assert.Positive(t, result.OutputTokens)
}

func TestDeterministicOptionsFixedSettings(t *testing.T) {
	opts := DeterministicOptions(500)
	assert.Zero(t, opts.Temperature)
	assert.Equal(t, 1.0, opts.TopP)
	assert.Zero(t, opts.Seed)
	assert.Equal(t, 500, opts.MaxTokens)
}

package extractive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cag/internal/domain"
)

func TestGenerate(t *testing.T) {
	g := New(1)
	knowledge := "Redis keeps data in memory. MySQL uses structured query language."

	out, err := g.Generate(context.Background(), domain.BuildPrompt(knowledge, "Which uses structured query language?"))
	require.NoError(t, err)
	assert.Equal(t, "MySQL uses structured query language.", out)
	assert.Equal(t, "extractive", g.Name())
}

func TestGenerateWithoutContext(t *testing.T) {
	out, err := New(2).Generate(context.Background(), domain.BuildPrompt("", "anything"))
	require.NoError(t, err)
	assert.Equal(t, noContext, out)
}

func TestGenerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(2).Generate(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

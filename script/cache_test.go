package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vcrobe/lumin/diagnostic"
)

type countingValidator struct {
	calls int
}

func (c *countingValidator) Validate(src string, kind SnippetKind) []diagnostic.Issue {
	c.calls++
	if src == "bad" {
		return []diagnostic.Issue{diagnostic.Errorf(diagnostic.Range{End: 3}, "bad %s", kind)}
	}
	return nil
}

func TestValidator_MemoizesByKindAndSource(t *testing.T) {
	inner := &countingValidator{}
	v, err := NewValidator(inner, 8)
	require.NoError(t, err)

	assert.Empty(t, v.Validate("x", SnippetExpression))
	assert.Empty(t, v.Validate("x", SnippetExpression))
	assert.Equal(t, 1, inner.calls)

	v.Validate("x", SnippetModule)
	assert.Equal(t, 2, inner.calls, "kind is part of the key")

	issues := v.Validate("bad", SnippetExpression)
	require.Len(t, issues, 1)
	assert.Equal(t, "bad expression", issues[0].Message)
	assert.Equal(t, issues, v.Validate("bad", SnippetExpression))

	hits, misses := v.Stats()
	assert.Equal(t, 2, hits)
	assert.Equal(t, 3, misses)
}

func TestValidator_EvictsLeastRecentlyUsed(t *testing.T) {
	inner := &countingValidator{}
	v, err := NewValidator(inner, 2)
	require.NoError(t, err)

	v.Validate("a", SnippetExpression)
	v.Validate("b", SnippetExpression)
	v.Validate("c", SnippetExpression) // evicts a
	v.Validate("a", SnippetExpression)

	assert.Equal(t, 4, inner.calls)
}

func TestNewValidator_DefaultsSize(t *testing.T) {
	v, err := NewValidator(&countingValidator{}, 0)
	require.NoError(t, err)
	assert.NotNil(t, v)
}

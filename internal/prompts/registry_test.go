package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistryLoadsAllTemplates(t *testing.T) {
	registry, err := NewRegistry()
	require.NoError(t, err)

	for name := range systemInstructions {
		assert.True(t, registry.Has(name), "missing template %s", name)
	}
	assert.Len(t, registry.Names(), len(systemInstructions))
}

func TestRenderSubstitutesVariables(t *testing.T) {
	registry, err := NewRegistry()
	require.NoError(t, err)

	system, user, err := registry.Render("classify_intent", map[string]string{
		"text": "记得买牛奶",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, system)
	assert.Contains(t, user, "记得买牛奶")
	assert.False(t, strings.Contains(user, "{{text}}"))
}

func TestRenderUnknownTemplateFails(t *testing.T) {
	registry, err := NewRegistry()
	require.NoError(t, err)

	_, _, err = registry.Render("no_such_template", nil)
	assert.Error(t, err)
}

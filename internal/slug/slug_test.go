package slug

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Ingenieur Logiciel": "ingenieur-logiciel",
		"  Genie   Civil  ":  "genie-civil",
		"ENSPM 2024!":        "enspm-2024",
		"---":                "",
		"Ingénieur Réseaux":  "ing-nieur-r-seaux",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "input %q", in)
	}
}

func TestNew(t *testing.T) {
	s, err := New("Chef de Projet")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(s, "chef-de-projet-"))
	assert.Len(t, s, len("chef-de-projet-")+6)

	t.Run("empty base still yields a usable slug", func(t *testing.T) {
		s, err := New("  !!  ")
		require.NoError(t, err)
		assert.Len(t, s, 6)
	})

	t.Run("suffix makes consecutive slugs differ", func(t *testing.T) {
		a, err := New("doublon")
		require.NoError(t, err)
		b, err := New("doublon")
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})
}

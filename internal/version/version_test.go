package version

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestVersionStrings ensures every rendering embeds the semantic version.
func TestVersionStrings(t *testing.T) {
	t.Parallel()

	require.NotEmpty(t, Short())
	require.Contains(t, Full(), Short())
	require.Contains(t, Full(), Commit)
	require.Equal(t, "altsource-updater/"+Short(), UserAgent())
}

// TestNewCommand checks both output modes of the version subcommand.
func TestNewCommand(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	cmd := NewCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--short"})
	require.NoError(t, cmd.Execute())
	require.Equal(t, Short()+"\n", out.String())

	out.Reset()

	cmd = NewCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())
	require.Equal(t, Full()+"\n", out.String())
}

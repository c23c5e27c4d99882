package steam

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVDF_LibraryFolders(t *testing.T) {
	vdf := `
"libraryfolders"
{
	"0"
	{
		"path"		"/home/user/.steam/steam"
		"label"		""
		"apps"
		{
			"602960"		"4153458211"
		}
	}
	"1"
	{
		"path"		"/mnt/games/steam"
		"label"		"Games"
	}
}
`
	root, err := ParseVDF(strings.NewReader(vdf))
	require.NoError(t, err)

	assert.Equal(t, []string{"/home/user/.steam/steam", "/mnt/games/steam"}, libraryPaths(root))

	lf, ok := root.Map("libraryfolders")
	require.True(t, ok)
	first, ok := lf.Map("0")
	require.True(t, ok)
	assert.Equal(t, "", first.String("label"))
	apps, ok := first.Map("apps")
	require.True(t, ok)
	assert.Equal(t, uint64(4153458211), apps.Uint("602960"))
}

func TestParseVDF_CommentsEscapesAndBareWords(t *testing.T) {
	vdf := `// written by steam
"AppState"
{
	appid 602960 // trailing
	"installdir"	"Baro\"trauma"
	"path"	"C:\\Games"
}
"Other" { "k" "v" }
`
	root, err := ParseVDF(strings.NewReader(vdf))
	require.NoError(t, err)

	state, ok := root.Map("AppState")
	require.True(t, ok)
	assert.Equal(t, "602960", state.String("appid"))
	assert.Equal(t, `Baro"trauma`, state.String("installdir"))
	assert.Equal(t, `C:\Games`, state.String("path"))

	other, ok := root.Map("Other")
	require.True(t, ok)
	assert.Equal(t, "v", other.String("k"))
}

func TestParseVDF_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		vdf     string
		wantErr string
	}{
		{name: "key without value", vdf: `"libraryfolders"`, wantErr: "unexpected end after key"},
		{name: "unclosed block", vdf: `"a" { "b" "c"`, wantErr: "unclosed block"},
		{name: "stray close", vdf: `}`, wantErr: "unexpected }"},
		{name: "unclosed quote", vdf: `"a" "b`, wantErr: "unclosed quote"},
		{name: "brace as value", vdf: `"a" { "b" }`, wantErr: "missing value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseVDF(strings.NewReader(tt.vdf))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseVDF_Empty(t *testing.T) {
	root, err := ParseVDF(strings.NewReader("  \n"))
	require.NoError(t, err)
	assert.Empty(t, root)
}

func TestParseAppManifest(t *testing.T) {
	acf := `
"AppState"
{
	"appid"		"602960"
	"name"		"Barotrauma"
	"installdir"		"Barotrauma"
}
`
	m, err := ParseAppManifest(strings.NewReader(acf))
	require.NoError(t, err)
	assert.Equal(t, AppManifest{AppID: "602960", Name: "Barotrauma", InstallDir: "Barotrauma"}, m)

	_, err = ParseAppManifest(strings.NewReader(`"Other" {}`))
	assert.Error(t, err)
}

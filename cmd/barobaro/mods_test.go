package main

import (
	"encoding/json"
	"errors"
	"testing"

	"barobaro/internal/domain"
	"barobaro/internal/gateway"
	"barobaro/internal/gateway/gatewaytest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedMods gives the backend two installed mods, one enabled, one mod
// list and metadata for the first mod
func seedMods(b *gatewaytest.Backend) {
	b.Installed = []domain.Mod{{SteamWorkshopID: 1, Name: "Alpha"}, {SteamWorkshopID: 2, Name: "Beta"}}
	b.Enabled = []domain.Mod{{SteamWorkshopID: 2, Name: "Beta"}}
	b.Lists = []domain.ModList{{ProfileName: "Survival", BasePackage: "Vanilla", Mods: []string{"1", "3"}}}
	b.Metadata[1] = domain.Mod{SteamWorkshopID: 1, Name: "Alpha", Creator: "someone", Size: 1234567, LastModified: 1700000000}
}

func TestModsCmd_Structure(t *testing.T) {
	assert.Equal(t, "mods", modsCmd.Use)

	var subCmds []string
	for _, cmd := range modsCmd.Commands() {
		subCmds = append(subCmds, cmd.Name())
	}
	for _, name := range []string{"list", "enabled", "download", "install", "metadata", "info", "workshop", "subscribed"} {
		assert.Contains(t, subCmds, name)
	}
}

func TestModsList(t *testing.T) {
	backend := useBackend(t)
	seedMods(backend)

	out, err := run(t, "mods", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Alpha")
	assert.Contains(t, out, "Beta")
	assert.Contains(t, out, "someone")
	assert.Contains(t, out, "1,234,567")
	assert.Contains(t, out, "2023-11-14")
	assert.Equal(t, 1, backend.Count(gateway.CmdRetrieveModMetadata))
}

func TestModsList_Profile(t *testing.T) {
	backend := useBackend(t)
	seedMods(backend)

	out, err := run(t, "mods", "list", "--profile", "Survival", "--no-metadata")
	require.NoError(t, err)
	assert.Contains(t, out, "IN PROFILE")
	assert.Contains(t, out, "✓")
	assert.Zero(t, backend.Count(gateway.CmdRetrieveModMetadata))

	_, err = run(t, "mods", "list", "--profile", "Missing")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestModsList_MetadataFailureStillLists(t *testing.T) {
	backend := useBackend(t)
	seedMods(backend)
	backend.Fail(gateway.CmdRetrieveModMetadata, errors.New("steam api down"))

	out, err := run(t, "mods", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Alpha")
	assert.NotContains(t, out, "someone")
}

func TestModsList_Empty(t *testing.T) {
	useBackend(t)

	out, err := run(t, "mods", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No mods installed.")
}

func TestModsEnabled_JSON(t *testing.T) {
	backend := useBackend(t)
	seedMods(backend)

	out, err := run(t, "mods", "enabled", "--json")
	require.NoError(t, err)

	var mods []domain.Mod
	require.NoError(t, json.Unmarshal([]byte(out), &mods))
	require.Len(t, mods, 1)
	assert.Equal(t, domain.WorkshopID(2), mods[0].SteamWorkshopID)
}

func TestModsDownload(t *testing.T) {
	backend := useBackend(t)

	out, err := run(t, "mods", "download", "77", "https://steamcommunity.com/sharedfiles/filedetails/?id=78", "77")
	require.NoError(t, err)
	assert.Contains(t, out, "Downloaded 2 mod(s)")

	backend.Lock()
	defer backend.Unlock()
	assert.Equal(t, []domain.WorkshopID{77, 78}, backend.Downloaded)
}

func TestModsDownload_BadRef(t *testing.T) {
	backend := useBackend(t)

	_, err := run(t, "mods", "download", "https://example.com/?id=abc")
	require.Error(t, err)
	assert.Zero(t, backend.Count(gateway.CmdDownloadMods))
}

func TestModsInstall(t *testing.T) {
	backend := useBackend(t)

	out, err := run(t, "mods", "install", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ 5")
	assert.Equal(t, 1, backend.Count(gateway.CmdInstallMods))
}

func TestModsInstall_PartialFailure(t *testing.T) {
	backend := useBackend(t)
	backend.Reply(gateway.CmdInstallMods, []domain.InstallOutcome{
		{ModID: 5, Success: true},
		{ModID: 6, Success: false, Message: "checksum mismatch"},
	})

	out, err := run(t, "mods", "install", "5", "6")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2")
	assert.Contains(t, out, "✗ 6: checksum mismatch")
}

func TestModsMetadata(t *testing.T) {
	backend := useBackend(t)
	seedMods(backend)

	out, err := run(t, "mods", "metadata")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated 1 installed and 0 enabled mod(s)")
}

func TestModsInfo(t *testing.T) {
	backend := useBackend(t)
	seedMods(backend)
	backend.Hashes[1] = "abc123"
	backend.Sizes[1] = 4096

	out, err := run(t, "mods", "info", "1", "--verify")
	require.NoError(t, err)
	assert.Contains(t, out, "Alpha")
	assert.Contains(t, out, "someone")
	assert.Contains(t, out, domain.WorkshopURL(1))
	assert.Contains(t, out, "4,096 bytes")
	assert.Contains(t, out, "abc123")

	_, err = run(t, "mods", "info", "99")
	assert.ErrorIs(t, err, domain.ErrModNotFound)
}

func TestModsWorkshop(t *testing.T) {
	backend := useBackend(t)
	backend.Metadata[77] = domain.Mod{SteamWorkshopID: 77, Name: "Gamma", Creator: "other", Size: 2048}
	backend.Barotrauma[77] = true

	out, err := run(t, "mods", "workshop", "77", "78")
	require.NoError(t, err)
	assert.Contains(t, out, "Gamma")
	assert.Contains(t, out, "2,048")
	assert.Regexp(t, `77\s+Gamma\s+other\s+2,048\s+yes`, out)
	assert.Regexp(t, `78\s+-\s+-\s+0\s+no`, out)
}

func TestModsSubscribed(t *testing.T) {
	backend := useBackend(t)
	seedMods(backend)
	root, _ := fakeSteam(t)

	out, err := run(t, "mods", "subscribed", "--steam-root", root)
	require.NoError(t, err)
	// item 1 is installed already
	assert.Regexp(t, `(?m)^5\s+50\s`, out)
	assert.NotRegexp(t, `(?m)^1\s+10\s`, out)
}

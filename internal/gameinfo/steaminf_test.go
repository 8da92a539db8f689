package gameinfo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSteamInf(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, SteamInfFile), []byte(content), 0644))
}

func TestParseSteamInf(t *testing.T) {
	dir := t.TempDir()
	writeSteamInf(t, dir, "PatchVersion=1.0\nClientVersion=5873 \nVersionDate=Apr 25 2025\nVersionTime=10:12:00\n")

	info, err := ParseSteamInf(filepath.Join(dir, SteamInfFile))
	require.NoError(t, err)
	assert.Equal(t, "5873", info.ClientVersion)
	assert.Equal(t, "Apr 25 2025", info.VersionDate)
}

func TestParseSteamInf_Incomplete(t *testing.T) {
	dir := t.TempDir()
	writeSteamInf(t, dir, "ClientVersion=5873\n")

	_, err := ParseSteamInf(filepath.Join(dir, SteamInfFile))
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestLoad(t *testing.T) {
	dataDir, outDir := t.TempDir(), t.TempDir()
	writeSteamInf(t, dataDir, "ClientVersion=42\r\nVersionDate=Jan 02 2025\r\n")

	info := Load(dataDir, outDir)
	require.NotNil(t, info)

	data, err := os.ReadFile(filepath.Join(outDir, VersionInfoFile))
	require.NoError(t, err)
	assert.JSONEq(t, `{"clientVersion":"42","versionDate":"Jan 02 2025"}`, string(data))

	read, err := ReadVersionInfo(outDir)
	require.NoError(t, err)
	assert.Equal(t, info, read)
}

func TestLoad_MissingManifest(t *testing.T) {
	assert.Nil(t, Load(t.TempDir(), t.TempDir()))
}

func TestReadVersionInfo_Missing(t *testing.T) {
	_, err := ReadVersionInfo(t.TempDir())
	assert.Error(t, err)
}

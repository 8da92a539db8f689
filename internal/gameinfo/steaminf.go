// Package gameinfo reads the build identity of the extracted game files.
package gameinfo

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// SteamInfFile is the name of the build manifest at the data root.
const SteamInfFile = "steam.inf"

// VersionInfoFile is the artifact the version is written to.
const VersionInfoFile = "version_info.json"

// ErrIncomplete is returned when steam.inf lacks ClientVersion or VersionDate.
var ErrIncomplete = errors.New("steam.inf lacks ClientVersion or VersionDate")

// VersionInfo identifies the game build the artifacts were produced from.
type VersionInfo struct {
	ClientVersion string `json:"clientVersion"`
	VersionDate   string `json:"versionDate"`
}

// ParseSteamInf reads ClientVersion and VersionDate from a steam.inf file.
func ParseSteamInf(path string) (*VersionInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open steam.inf: %w", err)
	}
	defer f.Close()

	info := &VersionInfo{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "ClientVersion="):
			info.ClientVersion = fieldValue(line)
		case strings.HasPrefix(line, "VersionDate="):
			info.VersionDate = fieldValue(line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan steam.inf: %w", err)
	}

	if info.ClientVersion == "" || info.VersionDate == "" {
		return nil, ErrIncomplete
	}
	return info, nil
}

// fieldValue returns the text between the first and second '=' of line.
func fieldValue(line string) string {
	parts := strings.SplitN(line, "=", 3)
	return strings.TrimSpace(parts[1])
}

// Write stores the version info as indented JSON in outDir.
func (v *VersionInfo) Write(outDir string) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode version info: %w", err)
	}
	path := filepath.Join(outDir, VersionInfoFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write version info: %w", err)
	}
	return path, nil
}

// Load reads steam.inf from dataDir and writes version_info.json to outDir.
// A missing or incomplete manifest is logged and reported as nil.
func Load(dataDir, outDir string) *VersionInfo {
	info, err := ParseSteamInf(filepath.Join(dataDir, SteamInfFile))
	if err != nil {
		log.Warn().Err(err).Msg("Could not parse steam.inf, continuing without version info")
		return nil
	}
	path, err := info.Write(outDir)
	if err != nil {
		log.Error().Err(err).Msg("Failed to write version info")
		return info
	}
	log.Info().
		Str("client_version", info.ClientVersion).
		Str("version_date", info.VersionDate).
		Str("path", path).
		Msg("Version info written")
	return info
}

// ReadVersionInfo loads a previously written version_info.json from outDir.
func ReadVersionInfo(outDir string) (*VersionInfo, error) {
	data, err := os.ReadFile(filepath.Join(outDir, VersionInfoFile))
	if err != nil {
		return nil, fmt.Errorf("read version info: %w", err)
	}
	info := &VersionInfo{}
	if err := json.Unmarshal(data, info); err != nil {
		return nil, fmt.Errorf("decode version info: %w", err)
	}
	return info, nil
}

// Package gdf has functions for loading game data using the GDF (Grotto
// Definition Format) game data file format, a TOML-based format that is used
// to define game worlds for the engine to run.
package gdf

import (
	"errors"
	"os"
	"unicode"

	"github.com/BurntSushi/toml"

	"github.com/dgould/grotto/internal/game"
)

const MaxManifestRecursionDepth = 32

var (
	// ErrManifestEmpty is the error returned when a manifest file is read
	// successfully but specifies no additional files to load.
	ErrManifestEmpty = errors.New("does not list any valid files to include")

	// ErrManifestStackOverflow is the error returned when the recursion level
	// of MaxManifestRecursionDepth is reached and an additional Manifest is
	// then specified, which would cause recursion to go deeper.
	ErrManifestStackOverflow = errors.New("too many manifests deep")

	// ErrManifestCircularRef is the error returned when a manifest specifies
	// any series of files that with their own manifests refer back to the
	// original manifest, and therefore cannot be followed.
	ErrManifestCircularRef = errors.New("manifest inclusion chain refers back to itself")
)

// Manifest contains data loaded from one or more GDF Manifest files.
type Manifest struct {
	Files []string
}

// FileInfo contains the essential information all GDF format files must
// contain. It can be obtained from a file by reading it into memory and
// calling ScanFileInfo on the bytes.
type FileInfo struct {
	Format string `toml:"format"`
	Type   string `toml:"type"`
}

// LoadResourceBundle loads a world up from the given GDF file. The file's
// type is auto-detected and decoding is handled appropriately; the type can
// either be "DATA" type or "MANIFEST" type; if it's manifest type, the files
// listed in it relative to it will also be loaded. All files included will be
// combined into one single set of data before being checked, and if a
// manifest is encountered, all files in it are recursively included.
//
// The returned world has already passed Validate and is ready to start
// instances on.
func LoadResourceBundle(path string) (*game.World, error) {
	unmarshaled, err := recursiveUnmarshalResource(path, nil)
	if err != nil {
		return nil, err
	}

	return parseWorldData(unmarshaled)
}

// LoadManifestFile loads manifest data from a GDF file.
func LoadManifestFile(path string) (manif Manifest, err error) {
	manifestData, loadErr := os.ReadFile(path)
	if loadErr != nil {
		return manif, loadErr
	}

	unmarshaled, err := unmarshalManifest(manifestData)
	if err != nil {
		return manif, err
	}
	return Manifest{Files: unmarshaled.Files}, nil
}

// LoadWorldDataFile loads a world from a single world definition file,
// ignoring any manifests.
func LoadWorldDataFile(path string) (*game.World, error) {
	worldData, loadErr := os.ReadFile(path)
	if loadErr != nil {
		return nil, loadErr
	}

	unmarshaled, err := unmarshalWorldData(worldData)
	if err != nil {
		return nil, err
	}

	return parseWorldData(unmarshaled)
}

// ParseWorldData loads a world from in-memory world definition bytes. It is
// what server-side world storage uses; the bytes are the same as a world
// definition file's contents.
func ParseWorldData(data []byte) (*game.World, error) {
	unmarshaled, err := unmarshalWorldData(data)
	if err != nil {
		return nil, err
	}

	return parseWorldData(unmarshaled)
}

// ScanFileInfo takes the given bytes and attempts to read the GDF format
// common header info from them. The bytes are read up to the first instance
// of a table definition header and those bytes are parsed for the info. If
// there is an error reading the info, returns a non-nil error.
func ScanFileInfo(data []byte) (FileInfo, error) {
	// only run the toml parser up to the end of the top-lev table
	var topLevelEnd int = -1
	var onNewLine bool
	for b := range data {
		if onNewLine {
			if data[b] == '[' {
				topLevelEnd = b
				break
			}
		}

		if data[b] == '\n' {
			onNewLine = true
		} else if !unicode.IsSpace(rune(data[b])) {
			onNewLine = false
		}
	}

	scanData := data
	if topLevelEnd != -1 {
		scanData = data[:topLevelEnd]
	}

	var info FileInfo
	err := toml.Unmarshal(scanData, &info)
	return info, err
}

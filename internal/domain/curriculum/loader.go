package curriculum

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/songs.json
var dataFS embed.FS

const defaultDataFile = "data/songs.json"

// Default returns the curriculum compiled into the binary.
func Default() (*Store, error) {
	raw, err := dataFS.ReadFile(defaultDataFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadCurriculum, err)
	}
	return Parse(raw, FormatJSON)
}

// Load reads a curriculum file. Files ending in .yaml or .yml are parsed as
// YAML, everything else as JSON. An empty path returns Default().
func Load(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadCurriculum, err)
	}
	return Parse(raw, formatForPath(path))
}

// Format identifies a curriculum encoding.
type Format string

// Supported curriculum encodings.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func formatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Parse decodes and validates a song list.
func Parse(raw []byte, format Format) (*Store, error) {
	var songs []Song
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(raw, &songs); err != nil {
			return nil, fmt.Errorf("%w: yaml: %w", ErrLoadCurriculum, err)
		}
	case FormatJSON:
		if err := json.Unmarshal(raw, &songs); err != nil {
			return nil, fmt.Errorf("%w: json: %w", ErrLoadCurriculum, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrLoadCurriculum, format)
	}

	if err := Validate(songs); err != nil {
		return nil, err
	}
	return NewStore(songs), nil
}

// Validate rejects songs without a title or artist and songs whose tier is
// not recognised.
func Validate(songs []Song) error {
	for i, s := range songs {
		switch {
		case strings.TrimSpace(s.Title) == "":
			return fmt.Errorf("%w: song %d: missing title", ErrInvalidSong, i)
		case strings.TrimSpace(s.Artist) == "":
			return fmt.Errorf("%w: song %d (%s): missing artist", ErrInvalidSong, i, s.Title)
		case !IsTier(s.Tier()):
			return fmt.Errorf("%w: song %d (%s): unknown tier in %q", ErrInvalidSong, i, s.Title, s.DifficultyLevel)
		}
	}
	return nil
}

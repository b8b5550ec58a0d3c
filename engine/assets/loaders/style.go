package loaders

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/extruder/engine/metadata"
	"github.com/spaghettifunk/extruder/engine/style"
)

// StyleLoader reads TOML style sheets: named styles under [styles.<name>]
// and skin libraries under [libraries.<name>].
type StyleLoader struct{}

func (sl *StyleLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	sheet, err := DecodeStyleSheet(data)
	if err != nil {
		return nil, fmt.Errorf("style sheet %s: %w", path, err)
	}

	return &metadata.Resource{
		Type:     metadata.ResourceTypeStyleSheet,
		Name:     strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		FullPath: path,
		DataSize: uint64(len(data)),
		Data:     sheet,
	}, nil
}

func (sl *StyleLoader) Unload(*metadata.Resource) error {
	return nil
}

func DecodeStyleSheet(data []byte) (*style.StyleSheet, error) {
	sheet := style.NewStyleSheet()
	if err := toml.Unmarshal(data, sheet); err != nil {
		return nil, err
	}
	sheet.Normalize()
	return sheet, nil
}

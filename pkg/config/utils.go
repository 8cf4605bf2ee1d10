package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v2"
)

// initConfig decodes file into target. The extension of the file name
// selects the decoder: .toml, .yaml/.yml or .json.
func initConfig(file *os.File, target any) error {
	var err error
	switch ext := filepath.Ext(file.Name()); ext {
	case ".toml":
		_, err = toml.NewDecoder(file).Decode(target)
	case ".yaml", ".yml":
		err = yaml.NewDecoder(file).Decode(target)
	case ".json":
		err = json.NewDecoder(file).Decode(target)
	default:
		return fmt.Errorf("unsupported config format %q for %s, expected .toml, .yaml or .json", ext, file.Name())
	}
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", file.Name(), err)
	}
	return nil
}

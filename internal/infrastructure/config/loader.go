package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/cmdverify/assets"
	"github.com/doeshing/cmdverify/internal/domain"
	"github.com/doeshing/cmdverify/internal/pkg/filesystem"
	"github.com/doeshing/cmdverify/internal/ports"
)

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "CMDVERIFY_CONFIG"

// CandidateNames are probed in the project root, in order.
var CandidateNames = []string{".cmdverify.yaml", ".cmdverify.yml", ".cmdverify.toml"}

// FileLoader loads .cmdverify.yaml (or .toml) from the project root on top of
// the embedded defaults.
type FileLoader struct {
	root         string
	overridePath string
}

// NewFileLoader builds a new loader. path, when set, wins over the environment
// and the root candidates.
func NewFileLoader(root, path string) *FileLoader {
	return &FileLoader{root: root, overridePath: path}
}

// Load implements ports.ConfigProvider.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	cfg, err := Defaults()
	if err != nil {
		return domain.Config{}, err
	}

	path, explicit := l.Path()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return domain.Config{}, domain.NewConfigurationError("read config", err,
			fmt.Sprintf("check that %s exists and is readable", path))
	}

	if err := decode(path, data, &cfg); err != nil {
		return domain.Config{}, domain.NewConfigurationError("parse config", fmt.Errorf("%s: %w", path, err),
			"fix the syntax error or run `cmdverify init --force` to regenerate the file")
	}
	return cfg, nil
}

// Path returns the config file that Load reads and whether the user named it
// explicitly. An empty path means no file was found.
func (l *FileLoader) Path() (string, bool) {
	if l.overridePath != "" {
		return l.resolve(l.overridePath), true
	}
	if custom := os.Getenv(EnvConfigPath); custom != "" {
		return l.resolve(custom), true
	}
	for _, name := range CandidateNames {
		candidate := filepath.Join(l.root, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, false
		}
	}
	return "", false
}

// Defaults decodes the embedded default configuration.
func Defaults() (domain.Config, error) {
	var cfg domain.Config
	if err := yaml.Unmarshal(assets.DefaultConfigYAML, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("decode embedded defaults: %w", err)
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *domain.Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		_, err := toml.NewDecoder(bytes.NewReader(data)).Decode(cfg)
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (l *FileLoader) resolve(path string) string {
	path = expandPath(path)
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(l.root, path)
}

func expandPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if len(path) > 1 && path[:2] == "~/" {
		return filepath.Join(filesystem.UserHomeDir(), path[2:])
	}
	return filepath.Clean(path)
}

// WriteDefault writes the embedded defaults to path, refusing to overwrite
// unless force is set.
func WriteDefault(path string, force bool) error {
	return writeAsset(path, assets.DefaultConfigYAML, force)
}

// WriteDefaultKnowledgeBase writes the starter knowledge base to path.
func WriteDefaultKnowledgeBase(path string, force bool) error {
	return writeAsset(path, assets.DefaultKnowledgeJSON, force)
}

func writeAsset(path string, data []byte, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return err
	}
	return filesystem.WriteFileAtomic(path, data, domain.FilePermissions)
}

var _ ports.ConfigProvider = (*FileLoader)(nil)

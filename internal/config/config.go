// Package config loads repository-local settings from .git/gogit.toml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/KostasZigo/gitcore/internal/constants"
	"github.com/klauspost/compress/zlib"
)

// Config mirrors the layout of gogit.toml:
//
//	[user]
//	name = "Ada Lovelace"
//	email = "ada@example.com"
//
//	[core]
//	compression = 9
//	branch = "main"
type Config struct {
	User User `toml:"user"`
	Core Core `toml:"core"`
}

type User struct {
	Name  string `toml:"name"`
	Email string `toml:"email"`
}

type Core struct {
	// Compression is the zlib level for new objects, -1 for the library default.
	Compression int    `toml:"compression"`
	Branch      string `toml:"branch"`
}

// Default returns the settings used when no config file exists.
func Default() *Config {
	return &Config{
		Core: Core{
			Compression: zlib.DefaultCompression,
			Branch:      constants.DefaultBranch,
		},
	}
}

// Path returns the config file location for a repository root.
func Path(repoPath string) string {
	return filepath.Join(repoPath, constants.GitDir, constants.ConfigFile)
}

// Load reads the config of the repository at repoPath.
// A missing file yields Default(); keys absent from the file keep their defaults.
func Load(repoPath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(Path(repoPath))
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	meta, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", constants.ConfigFile, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		return nil, fmt.Errorf("unknown keys in %s: %s", constants.ConfigFile, strings.Join(keys, ", "))
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Core.Compression < zlib.HuffmanOnly || c.Core.Compression > zlib.BestCompression {
		return fmt.Errorf("invalid core.compression %d: must be between %d and %d",
			c.Core.Compression, zlib.HuffmanOnly, zlib.BestCompression)
	}
	if err := ValidateBranch(c.Core.Branch); err != nil {
		return fmt.Errorf("invalid core.branch: %w", err)
	}
	return nil
}

// ValidateBranch rejects names that cannot live under refs/heads.
func ValidateBranch(name string) error {
	switch {
	case name == "":
		return errors.New("empty branch name")
	case strings.ContainsAny(name, " \t\n:~^?*[\\"),
		strings.Contains(name, ".."),
		strings.Contains(name, "//"),
		strings.Contains(name, "@{"),
		strings.HasPrefix(name, "/"),
		strings.HasPrefix(name, "-"),
		strings.HasPrefix(name, "."),
		strings.HasSuffix(name, "/"),
		strings.HasSuffix(name, "."),
		strings.HasSuffix(name, ".lock"):
		return fmt.Errorf("invalid branch name %q", name)
	}
	return nil
}

// Save writes c to the config file of the repository at repoPath.
func Save(repoPath string, c *Config) (retErr error) {
	f, err := os.OpenFile(Path(repoPath), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, constants.FilePerms)
	if err != nil {
		return fmt.Errorf("failed to open config: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil && retErr == nil {
			retErr = fmt.Errorf("failed to close config: %w", err)
		}
	}()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Identity returns "Name <email>" for the configured user, or "" when unset.
func (c *Config) Identity() string {
	if c.User.Name == "" || c.User.Email == "" {
		return ""
	}
	return fmt.Sprintf("%s <%s>", c.User.Name, c.User.Email)
}

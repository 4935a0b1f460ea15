package settings

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// SecretsFile is the per-operator secure tier: a 0600 yaml file of
// credential key/value pairs, written by `prospect-cli keys set`.
type SecretsFile struct {
	path   string
	values map[string]string
}

// DefaultSecretsPath returns the standard credentials location under the
// user config dir.
func DefaultSecretsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", eris.Wrap(err, "settings: user config dir")
	}
	return filepath.Join(dir, "prospect-cli", "credentials.yaml"), nil
}

// LoadSecrets reads the secrets file at path. A missing file yields an
// empty store, not an error.
func LoadSecrets(path string) (*SecretsFile, error) {
	s := &SecretsFile{path: path, values: map[string]string{}}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "settings: read %s", path)
	}
	if err := yaml.Unmarshal(raw, &s.values); err != nil {
		return nil, eris.Wrapf(err, "settings: parse %s", path)
	}
	return s, nil
}

func (s *SecretsFile) Name() string { return "credentials file" }

func (s *SecretsFile) Lookup(key string) (string, bool, error) {
	val, ok := s.values[key]
	return val, ok, nil
}

// Set stores a credential in memory; Save persists it.
func (s *SecretsFile) Set(key, value string) {
	s.values[key] = value
}

// Save writes the secrets file with owner-only permissions.
func (s *SecretsFile) Save() error {
	raw, err := yaml.Marshal(s.values)
	if err != nil {
		return eris.Wrap(err, "settings: marshal secrets")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return eris.Wrapf(err, "settings: mkdir %s", filepath.Dir(s.path))
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return eris.Wrapf(err, "settings: write %s", s.path)
	}
	return nil
}

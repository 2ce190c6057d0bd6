package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/plutus-ledger/plutus/internal/model"
)

// LoadDotEnv loads KEY=value pairs from path into the process environment.
// Variables that are already set win. A missing file is ignored unless required.
func LoadDotEnv(path string, required bool) error {
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if !required && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading env file %s: %w", path, err)
}

// Environ returns the process environment as a map.
func Environ() map[string]string {
	m := make(map[string]string)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			m[k] = v
		}
	}
	return m
}

// Resolve layers a source's settings: environment variables named
// prefix+ASSET_ACCOUNT etc. win over the config file, which wins over defaults.
func Resolve(file SourceConfig, defaults Accounts, prefix string, environ map[string]string) (SourceConfig, error) {
	var resolved SourceConfig
	if err := env.Parse(&resolved, env.Options{Prefix: prefix, Environment: environ}); err != nil {
		return SourceConfig{}, fmt.Errorf("parsing %s* environment: %w", prefix, err)
	}
	if err := mergo.Merge(&resolved, file); err != nil {
		return SourceConfig{}, fmt.Errorf("merging config file settings: %w", err)
	}
	if err := mergo.Merge(&resolved.Accounts, defaults); err != nil {
		return SourceConfig{}, fmt.Errorf("merging default accounts: %w", err)
	}
	return resolved, nil
}

// AccountSet is the validated form of Accounts.
type AccountSet struct {
	Asset     model.Account
	Liability model.Account
	Points    model.Account
	Unknown   model.Account
}

// Parse validates every account name.
func (a Accounts) Parse() (AccountSet, error) {
	var set AccountSet
	fields := []struct {
		key  string
		name string
		dst  *model.Account
	}{
		{"asset_account", a.Asset, &set.Asset},
		{"liability_account", a.Liability, &set.Liability},
		{"points_account", a.Points, &set.Points},
		{"unknown_account", a.Unknown, &set.Unknown},
	}
	for _, f := range fields {
		acct, err := model.ParseAccount(f.name)
		if err != nil {
			return AccountSet{}, fmt.Errorf("%s: %w", f.key, err)
		}
		*f.dst = acct
	}
	return set, nil
}

package model

import (
	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"
)

const (
	defaultBranch   = "main"
	defaultManifest = "manifest.json"
)

// WatchTarget is a repository the webhook endpoint acts on
type WatchTarget struct {
	Owner    string `yaml:"owner"`
	Repo     string `yaml:"repo"`
	Branch   string `yaml:"branch"`
	Manifest string `yaml:"manifest"`
}

// FullName returns the owner/repo form used by GitHub payloads
func (t *WatchTarget) FullName() string {
	return t.Owner + "/" + t.Repo
}

// BranchRef returns the fully qualified ref of the watched branch
func (t *WatchTarget) BranchRef() string {
	return "refs/heads/" + t.Branch
}

// WatchConfig is the set of repositories watched by the serve command
type WatchConfig struct {
	Targets []WatchTarget `yaml:"targets"`
}

// ParseWatchConfig parses YAML watch configuration, applies defaults and
// validates that every target names a repository
func ParseWatchConfig(data []byte) (*WatchConfig, error) {
	var cfg WatchConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, goerr.Wrap(err, "failed to parse watch config YAML")
	}

	if len(cfg.Targets) == 0 {
		return nil, goerr.New("watch config has no targets")
	}

	for i := range cfg.Targets {
		t := &cfg.Targets[i]
		if t.Owner == "" || t.Repo == "" {
			return nil, goerr.New("watch target requires owner and repo",
				goerr.V("index", i))
		}
		if t.Branch == "" {
			t.Branch = defaultBranch
		}
		if t.Manifest == "" {
			t.Manifest = defaultManifest
		}
	}

	return &cfg, nil
}

// Lookup returns the target matching the given repository full name, or nil
func (c *WatchConfig) Lookup(fullName string) *WatchTarget {
	for i := range c.Targets {
		if c.Targets[i].FullName() == fullName {
			return &c.Targets[i]
		}
	}
	return nil
}

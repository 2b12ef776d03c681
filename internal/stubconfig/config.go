package stubconfig

import (
	"fmt"
	"io/ioutil"
	"os"
	"os/user"
	"path"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	configDir  = ".rvstub"
	configFile = "config.yml"
)

// Config defines the options available through the dotfile config, all of
// them defaults that CLI flags may override for a single run.
type Config struct {
	// ListenAddr is the default TCP address the stub listens on.
	ListenAddr string `yaml:"listen-addr"`

	// RunTimeoutSeconds is the default value of the user-settable run
	// timeout (0 = unlimited), mutable at runtime via "monitor timeout".
	RunTimeoutSeconds int `yaml:"run-timeout-seconds"`

	// ExitOnKill records whether a 'k' packet terminates the server
	// (true) or is a no-op left for "monitor reset" to handle (false). It
	// is loaded and saved with the file, but cmd/rvstub does not read it:
	// the kill mode comes from the --exit-on-kill flag alone.
	ExitOnKill bool `yaml:"exit-on-kill"`

	// TraceFlags seeds the initial named boolean trace flags.
	TraceFlags map[string]bool `yaml:"trace-flags"`
}

// RunTimeout returns RunTimeoutSeconds as a time.Duration.
func (c *Config) RunTimeout() time.Duration {
	return time.Duration(c.RunTimeoutSeconds) * time.Second
}

func defaultConfig() *Config {
	return &Config{
		ListenAddr: "localhost:2331",
		TraceFlags: map[string]bool{
			"syscall": false,
			"step":    false,
		},
	}
}

// LoadConfig attempts to populate a Config from the dotfile config.yml,
// creating a default one on first run. It never returns an error: like
// delve's LoadConfig, a failure to read or parse configuration falls back
// to sensible defaults so the server can still start.
func LoadConfig() *Config {
	if err := createConfigPath(); err != nil {
		fmt.Fprintf(os.Stderr, "could not create config directory: %v\n", err)
		return defaultConfig()
	}
	fullPath, err := GetConfigFilePath(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to get config file path: %v\n", err)
		return defaultConfig()
	}

	data, err := ioutil.ReadFile(fullPath)
	if err != nil {
		cfg := defaultConfig()
		if werr := SaveConfig(cfg); werr != nil {
			fmt.Fprintf(os.Stderr, "unable to write default config: %v\n", werr)
		}
		return cfg
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "unable to decode config file: %v\n", err)
		return defaultConfig()
	}
	return cfg
}

// SaveConfig marshals and saves cfg to the dotfile config.
func SaveConfig(cfg *Config) error {
	fullPath, err := GetConfigFilePath(configFile)
	if err != nil {
		return err
	}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return ioutil.WriteFile(fullPath, out, 0644)
}

func createConfigPath() error {
	dir, err := GetConfigFilePath("")
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// GetConfigFilePath returns the full path to the given config file name
// under the user's home directory.
func GetConfigFilePath(file string) (string, error) {
	home := "."
	if usr, err := user.Current(); err == nil {
		home = usr.HomeDir
	}
	return path.Join(home, configDir, file), nil
}

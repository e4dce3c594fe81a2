// Package config loads settings from flags, environment, .env and an optional config file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	ghconfig "github.com/cli/go-gh/v2/pkg/config"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	appName             = "gh-pr-status"
	DefaultAPIURL       = "https://api.github.com"
	DefaultMinApprovals = 2

	enterpriseAPIPath = "/api/v3"
)

// Config is the validated configuration of one invocation
type Config struct {
	APIURL          string
	Host            string
	MinApprovals    int
	LogLevel        string
	Token           string
	AppID           int64
	InstallationID  int64
	PrivateKeyPath  string
	FavoritesFile   string
	IgnoredContexts map[string][]string
}

// Init wires env, .env and flags into v. Flags that are not present in flags are skipped.
func Init(v *viper.Viper, flags *pflag.FlagSet) {
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	_ = godotenv.Load()
	if flags != nil {
		for flag, key := range flagKeys {
			if f := flags.Lookup(flag); f != nil {
				_ = v.BindPFlag(key, f)
			}
		}
	}
	setDefaults(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyAPIURL, DefaultAPIURL)
	v.SetDefault(KeyMinApprovals, DefaultMinApprovals)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyFavoritesFile, filepath.Join(ghconfig.StateDir(), appName, "favorites.yml"))
}

// Load reads the optional config file and returns the validated configuration
func Load(v *viper.Viper) (Config, error) {
	if err := readConfigFile(v); err != nil {
		return Config{}, err
	}

	cfg := Config{
		APIURL:          strings.TrimSuffix(v.GetString(KeyAPIURL), "/"),
		MinApprovals:    v.GetInt(KeyMinApprovals),
		LogLevel:        v.GetString(KeyLogLevel),
		Token:           v.GetString(KeyToken),
		AppID:           v.GetInt64(KeyAppID),
		InstallationID:  v.GetInt64(KeyInstallationID),
		PrivateKeyPath:  v.GetString(KeyPrivateKeyPath),
		FavoritesFile:   v.GetString(KeyFavoritesFile),
		IgnoredContexts: v.GetStringMapStringSlice(KeyIgnoredContexts),
	}

	if cfg.MinApprovals < 1 {
		return Config{}, fmt.Errorf("invalid %s: must be at least 1, got %d", KeyMinApprovals, cfg.MinApprovals)
	}
	if cfg.AppID != 0 && (cfg.InstallationID == 0 || cfg.PrivateKeyPath == "") {
		return Config{}, fmt.Errorf("%s requires %s and %s", KeyAppID, KeyInstallationID, KeyPrivateKeyPath)
	}

	host, err := HostFromAPIURL(cfg.APIURL)
	if err != nil {
		return Config{}, err
	}
	cfg.Host = host
	return cfg, nil
}

func readConfigFile(v *viper.Viper) error {
	if file := v.GetString(KeyConfigFile); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", file, err)
		}
		return nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(ghconfig.ConfigDir(), appName))
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// HostFromAPIURL maps an API base URL to the host go-gh expects:
// https://api.github.com -> github.com, https://ghe.example.com/api/v3 -> ghe.example.com.
// go-gh rebuilds the base URL from the host alone, so only https URLs in one of those
// shapes are accepted.
func HostFromAPIURL(apiURL string) (string, error) {
	u, err := url.Parse(apiURL)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid %s %q", KeyAPIURL, apiURL)
	}
	if u.Scheme != "https" {
		return "", fmt.Errorf("invalid %s %q: only https is supported", KeyAPIURL, apiURL)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return "", fmt.Errorf("invalid %s %q: query and fragment are not allowed", KeyAPIURL, apiURL)
	}

	host := u.Host
	path := strings.TrimSuffix(u.Path, "/")
	if host == "api.github.com" || (strings.HasPrefix(host, "api.") && strings.HasSuffix(host, ".ghe.com")) {
		if path != "" {
			return "", fmt.Errorf("invalid %s %q: expected no path for %s", KeyAPIURL, apiURL, host)
		}
		if host == "api.github.com" {
			return "github.com", nil
		}
		return strings.TrimPrefix(host, "api."), nil
	}
	if path != "" && path != enterpriseAPIPath {
		return "", fmt.Errorf("invalid %s %q: GitHub Enterprise Server URLs must end in %s", KeyAPIURL, apiURL, enterpriseAPIPath)
	}
	return host, nil
}

// IgnoredContextsFor returns the CI contexts ignored for repo
func (c Config) IgnoredContextsFor(repo string) []string {
	return c.IgnoredContexts[strings.ToLower(repo)]
}

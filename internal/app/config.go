package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type fileConfig struct {
	TZ             string                `toml:"tz"`
	Output         string                `toml:"output"`
	Fields         string                `toml:"fields"`
	Profile        string                `toml:"profile"`
	Duration       string                `toml:"duration"`
	OrganizerName  string                `toml:"organizer_name"`
	OrganizerEmail string                `toml:"organizer_email"`
	Profiles       map[string]fileConfig `toml:"profiles"`
}

const projectConfigPath = ".calendar-link.toml"

func resolveGlobalOptions(cmd *cobra.Command, defaults *globalOptions) (*globalOptions, error) {
	resolved := *defaults

	profile := firstNonEmpty(env("CALENDAR_LINK_PROFILE"), defaults.Profile)
	if flagValueChanged(cmd, "profile") {
		profile = defaults.Profile
	}
	if profile == "" {
		profile = "default"
	}
	resolved.Profile = profile

	userPath := defaultUserConfigPath()
	configPath := firstNonEmpty(env("CALENDAR_LINK_CONFIG"), userPath)
	if flagValueChanged(cmd, "config") {
		configPath = defaults.Config
	}

	verbose := defaults.Verbose && flagValueChanged(cmd, "verbose")
	load := func(path string) {
		if cfg, ok := readConfigFile(path); ok {
			applyFileConfig(&resolved, cfg, profile)
			if verbose {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "calendar-link: config=%s\n", path)
			}
		}
	}
	load(userPath)
	load(projectConfigPath)
	if configPath != "" && configPath != userPath && configPath != projectConfigPath {
		load(configPath)
	}

	applyEnv(&resolved)
	applyFlags(cmd, &resolved, defaults)

	if resolved.Config == "" {
		resolved.Config = configPath
	}
	return &resolved, nil
}

func applyFileConfig(dst *globalOptions, cfg fileConfig, profile string) {
	if p, ok := cfg.Profiles[profile]; ok {
		cfg = mergeFileConfig(cfg, p)
	}
	if cfg.TZ != "" {
		dst.TZ = cfg.TZ
	}
	if cfg.Fields != "" {
		dst.Fields = cfg.Fields
	}
	if cfg.Duration != "" {
		dst.DefaultDuration = cfg.Duration
	}
	if cfg.OrganizerName != "" {
		dst.OrganizerName = cfg.OrganizerName
	}
	if cfg.OrganizerEmail != "" {
		dst.OrganizerEmail = cfg.OrganizerEmail
	}
	if cfg.Output != "" {
		setOutputMode(dst, cfg.Output)
	}
}

func mergeFileConfig(base, overlay fileConfig) fileConfig {
	if overlay.TZ != "" {
		base.TZ = overlay.TZ
	}
	if overlay.Output != "" {
		base.Output = overlay.Output
	}
	if overlay.Fields != "" {
		base.Fields = overlay.Fields
	}
	if overlay.Profile != "" {
		base.Profile = overlay.Profile
	}
	if overlay.Duration != "" {
		base.Duration = overlay.Duration
	}
	if overlay.OrganizerName != "" {
		base.OrganizerName = overlay.OrganizerName
	}
	if overlay.OrganizerEmail != "" {
		base.OrganizerEmail = overlay.OrganizerEmail
	}
	return base
}

func setOutputMode(dst *globalOptions, mode string) {
	switch strings.ToLower(mode) {
	case "json":
		dst.JSON, dst.JSONL, dst.Plain = true, false, false
	case "jsonl":
		dst.JSON, dst.JSONL, dst.Plain = false, true, false
	case "plain":
		dst.JSON, dst.JSONL, dst.Plain = false, false, true
	}
}

func applyEnv(dst *globalOptions) {
	if v := env("CALENDAR_LINK_TIMEZONE"); v != "" {
		dst.TZ = v
	}
	if v := env("CALENDAR_LINK_FIELDS"); v != "" {
		dst.Fields = v
	}
	if v := env("CALENDAR_LINK_OUTPUT"); v != "" {
		setOutputMode(dst, v)
	}
}

func applyFlags(cmd *cobra.Command, dst, fromFlags *globalOptions) {
	copyIfChanged(cmd, "json", func() { dst.JSON = fromFlags.JSON })
	copyIfChanged(cmd, "jsonl", func() { dst.JSONL = fromFlags.JSONL })
	copyIfChanged(cmd, "plain", func() { dst.Plain = fromFlags.Plain })
	copyIfChanged(cmd, "fields", func() { dst.Fields = fromFlags.Fields })
	copyIfChanged(cmd, "quiet", func() { dst.Quiet = fromFlags.Quiet })
	copyIfChanged(cmd, "verbose", func() { dst.Verbose = fromFlags.Verbose })
	copyIfChanged(cmd, "profile", func() { dst.Profile = fromFlags.Profile })
	copyIfChanged(cmd, "config", func() { dst.Config = fromFlags.Config })
	copyIfChanged(cmd, "tz", func() { dst.TZ = fromFlags.TZ })
	copyIfChanged(cmd, "schema-version", func() { dst.SchemaVersion = fromFlags.SchemaVersion })

	// A single explicit output flag overrides env/config output mode.
	var set []string
	for _, name := range []string{"json", "jsonl", "plain"} {
		if v, err := cmd.Flags().GetBool(name); err == nil && v && flagValueChanged(cmd, name) {
			set = append(set, name)
		}
	}
	if len(set) == 1 {
		setOutputMode(dst, set[0])
	}
}

func copyIfChanged(cmd *cobra.Command, name string, fn func()) {
	if flagValueChanged(cmd, name) {
		fn()
	}
}

func flagValueChanged(cmd *cobra.Command, name string) bool {
	for _, fs := range []*pflag.FlagSet{cmd.Flags(), cmd.InheritedFlags()} {
		if f := fs.Lookup(name); f != nil && f.Changed {
			return true
		}
	}
	return false
}

func readConfigFile(path string) (fileConfig, bool) {
	if strings.TrimSpace(path) == "" {
		return fileConfig{}, false
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, false
	}
	var cfg fileConfig
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return fileConfig{}, false
	}
	return cfg, true
}

func defaultUserConfigPath() string {
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, "calendar-link", "config.toml")
	}
	home := strings.TrimSpace(os.Getenv("HOME"))
	if home == "" {
		return ""
	}
	return filepath.Join(home, ".config", "calendar-link", "config.toml")
}

func env(k string) string { return strings.TrimSpace(os.Getenv(k)) }

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

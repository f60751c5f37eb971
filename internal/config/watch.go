package config

import (
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// LoadAndWatch loads the configuration like Load and, when a config file
// was read, calls onChange with the re-validated configuration every time the
// file changes. Invalid edits are logged and skipped.
func LoadAndWatch(onChange func(*Config)) (*Config, error) {
	cfg, v, err := load()
	if err != nil {
		return nil, err
	}
	if v.ConfigFileUsed() == "" || onChange == nil {
		return cfg, nil
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		next, err := decode(v)
		if err != nil {
			slog.Warn("ignoring invalid config change",
				slog.String("file", e.Name),
				slog.String("error", err.Error()))
			return
		}
		slog.Info("config file changed", slog.String("file", e.Name), slog.String("op", e.Op.String()))
		onChange(next)
	})
	v.WatchConfig()

	return cfg, nil
}

// Loads the okmarker settings from an optional JSON file,
// command line flags and built-in defaults.
package annoconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// FileName is the name of the configuration file looked up by Load.
const FileName = "okmarker.cfg.json"

// Editor holds the tuning of the manipulation engine.
type Editor struct {
	// Movement below this threshold, on both axes, is a click
	// and not a drag.
	ClickThreshold    float64 `json:"clickThreshold" mapstructure:"clickThreshold"`
	DefaultBoxWidth   float64 `json:"defaultBoxWidth" mapstructure:"defaultBoxWidth"`
	DefaultBoxHeight  float64 `json:"defaultBoxHeight" mapstructure:"defaultBoxHeight"`
	DefaultLineLength float64 `json:"defaultLineLength" mapstructure:"defaultLineLength"`

	LongPressDelay     time.Duration `json:"longPressDelay" mapstructure:"longPressDelay"`
	LongPressTolerance float64       `json:"longPressTolerance" mapstructure:"longPressTolerance"`

	GripSize float64 `json:"gripSize" mapstructure:"gripSize"`

	StrokeColor string  `json:"strokeColor" mapstructure:"strokeColor"`
	StrokeWidth float64 `json:"strokeWidth" mapstructure:"strokeWidth"`
	FillColor   string  `json:"fillColor" mapstructure:"fillColor"`
	FontFamily  string  `json:"fontFamily" mapstructure:"fontFamily"`
	FontSize    float64 `json:"fontSize" mapstructure:"fontSize"`
}

// Retry bounds the polling of resources not ready yet.
type Retry struct {
	Attempts int           `json:"attempts" mapstructure:"attempts"`
	Delay    time.Duration `json:"delay" mapstructure:"delay"`
}

// Store configures the snapshot database.
type Store struct {
	// Path of the sqlite file. Empty means in memory.
	Path string `json:"path" mapstructure:"path"`
}

type Settings struct {
	LogLevel string `json:"logLevel" mapstructure:"logLevel"`
	Editor   Editor `json:"editor" mapstructure:"editor"`
	Retry    Retry  `json:"retry" mapstructure:"retry"`
	Store    Store  `json:"store" mapstructure:"store"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		LogLevel: "info",
		Editor: Editor{
			ClickThreshold:     10,
			DefaultBoxWidth:    50,
			DefaultBoxHeight:   20,
			DefaultLineLength:  50,
			LongPressDelay:     500 * time.Millisecond,
			LongPressTolerance: 5,
			GripSize:           10,
			StrokeColor:        "#ff0000",
			StrokeWidth:        3,
			FillColor:          "#ff0000",
			FontFamily:         "Helvetica, Arial, sans-serif",
			FontSize:           16,
		},
		Retry: Retry{Attempts: 10, Delay: 100 * time.Millisecond},
		Store: Store{Path: "okmarker.db"},
	}
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("logLevel", d.LogLevel)

	v.SetDefault("editor.clickThreshold", d.Editor.ClickThreshold)
	v.SetDefault("editor.defaultBoxWidth", d.Editor.DefaultBoxWidth)
	v.SetDefault("editor.defaultBoxHeight", d.Editor.DefaultBoxHeight)
	v.SetDefault("editor.defaultLineLength", d.Editor.DefaultLineLength)
	v.SetDefault("editor.longPressDelay", d.Editor.LongPressDelay)
	v.SetDefault("editor.longPressTolerance", d.Editor.LongPressTolerance)
	v.SetDefault("editor.gripSize", d.Editor.GripSize)
	v.SetDefault("editor.strokeColor", d.Editor.StrokeColor)
	v.SetDefault("editor.strokeWidth", d.Editor.StrokeWidth)
	v.SetDefault("editor.fillColor", d.Editor.FillColor)
	v.SetDefault("editor.fontFamily", d.Editor.FontFamily)
	v.SetDefault("editor.fontSize", d.Editor.FontSize)

	v.SetDefault("retry.attempts", d.Retry.Attempts)
	v.SetDefault("retry.delay", d.Retry.Delay)

	v.SetDefault("store.path", d.Store.Path)
}

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"log-level": "logLevel",
	"db":        "store.path",
}

// RegisterFlags adds the flags understood by Load to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("log-level", "", "log level (debug, info, warn, error)")
	fs.String("db", "", "path of the snapshot database")
}

// Load reads the configuration file found in configDir, if any,
// and sets default values. Flags from RegisterFlags, when given and
// explicitly set, take precedence over the file.
func Load(configDir string, flags *pflag.FlagSet) (Settings, error) {
	v := viper.New()
	setDefaults(v)

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Settings{}, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	path := filepath.Join(configDir, FileName)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("error reading config file: %w", err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return Settings{}, fmt.Errorf("error reading config file: %w", err)
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return s, nil
}

// Package config loads the WIPE controller configuration from a TOML
// file.  Every key is optional; missing keys keep their defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Interpreter struct {
	ProgramBytes int    `toml:"program_bytes"`
	MaxSymbols   int    `toml:"max_symbols"`
	MaxLine      int    `toml:"max_line"`
	CancelChar   string `toml:"cancel_char"`
	TraceDump    bool   `toml:"trace_dump"`
}

type Storage struct {
	EEPROMBytes int    `toml:"eeprom_bytes"`
	Image       string `toml:"image"`
}

// Network selects where WASP packets go: "log" writes them to the
// log, "serial" to a device as hex frames, "http" to a gateway, and
// "none" drops them
type Network struct {
	Transport  string `toml:"transport"`
	Device     string `toml:"device"`
	GatewayURL string `toml:"gateway_url"`
	Timeout    string `toml:"timeout"`
}

type Log struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

type Config struct {
	Interpreter Interpreter `toml:"interpreter"`
	Storage     Storage     `toml:"storage"`
	Network     Network     `toml:"network"`
	Log         Log         `toml:"log"`
}

func Default() Config {

	return Config{
		Interpreter: Interpreter{
			ProgramBytes: 1024,
			MaxSymbols:   200,
			MaxLine:      80,
			CancelChar:   "~",
		},
		Storage: Storage{
			EEPROMBytes: 1024,
		},
		Network: Network{
			Transport: "log",
			Timeout:   "500ms",
		},
		Log: Log{
			Level: "warn",
			File:  "stderr",
		},
	}
}

// Load reads path over the defaults and validates the result
func Load(path string) (Config, error) {

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

func (c Config) Validate() error {

	in := c.Interpreter

	switch {
	case in.ProgramBytes < 64 || in.ProgramBytes > 65535:
		return fmt.Errorf("interpreter.program_bytes %d out of range", in.ProgramBytes)

	case in.MaxSymbols < 1:
		return fmt.Errorf("interpreter.max_symbols must be positive")

	case in.MaxLine < 16 || in.MaxLine > 255:
		return fmt.Errorf("interpreter.max_line %d out of range", in.MaxLine)

	case len(in.CancelChar) != 1:
		return fmt.Errorf("interpreter.cancel_char must be a single character")
	}

	if c.Storage.EEPROMBytes < 64 || c.Storage.EEPROMBytes > 65535 {
		return fmt.Errorf("storage.eeprom_bytes %d out of range", c.Storage.EEPROMBytes)
	}

	switch c.Network.Transport {
	case "log", "none":

	case "serial":
		if c.Network.Device == "" {
			return fmt.Errorf("network.device is required for the serial transport")
		}

	case "http":
		if c.Network.GatewayURL == "" {
			return fmt.Errorf("network.gateway_url is required for the http transport")
		}

	default:
		return fmt.Errorf("unknown network.transport %q", c.Network.Transport)
	}

	if _, err := c.Timeout(); err != nil {
		return err
	}

	if _, err := c.Level(); err != nil {
		return err
	}

	return nil
}

// Timeout is the parsed network.timeout
func (c Config) Timeout() (time.Duration, error) {

	d, err := time.ParseDuration(c.Network.Timeout)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("bad network.timeout %q", c.Network.Timeout)
	}

	return d, nil
}

// Level is the parsed log.level
func (c Config) Level() (zapcore.Level, error) {

	var l zapcore.Level

	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return l, fmt.Errorf("bad log.level %q", c.Log.Level)
	}

	return l, nil
}

// Logger builds the process logger.  Console output belongs to the
// interpreter, so logs go to stderr or a file
func (c Config) Logger() (*zap.Logger, error) {

	level, err := c.Level()
	if err != nil {
		return nil, err
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.OutputPaths = []string{c.Log.File}
	zc.ErrorOutputPaths = []string{"stderr"}
	zc.Sampling = nil

	return zc.Build()
}

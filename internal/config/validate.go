package config

import (
	"errors"
	"fmt"
	"regexp"
)

var hexColorPattern = regexp.MustCompile(`^#?[0-9a-fA-F]{6}$`)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateEncoder(); err != nil {
		return err
	}
	if err := c.validateChromaKey(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateEncoder() error {
	switch c.Encoder.Preset {
	case "high", "balanced", "compact":
	default:
		return fmt.Errorf("encoder.preset must be one of high, balanced, compact (got %q)", c.Encoder.Preset)
	}
	switch c.Encoder.DitherMode {
	case "bayer", "floyd_steinberg", "sierra2", "sierra2_4a", "none":
	default:
		return fmt.Errorf("encoder.dither_mode %q is not a recognized paletteuse dither", c.Encoder.DitherMode)
	}
	if c.Encoder.BayerScale < 0 || c.Encoder.BayerScale > 5 {
		return errors.New("encoder.bayer_scale must be between 0 and 5")
	}
	return nil
}

func (c *Config) validateChromaKey() error {
	if !hexColorPattern.MatchString(c.ChromaKey.Color) {
		return fmt.Errorf("chroma_key.color %q is not a hex RGB color", c.ChromaKey.Color)
	}
	if c.ChromaKey.Similarity < 0 || c.ChromaKey.Similarity > 1 {
		return errors.New("chroma_key.similarity must be between 0 and 1")
	}
	if c.ChromaKey.Blend < 0 || c.ChromaKey.Blend > 1 {
		return errors.New("chroma_key.blend must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got %q)", c.Logging.Level)
	}
	return nil
}

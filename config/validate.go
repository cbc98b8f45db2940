package config

import (
	"errors"
	"fmt"
	"strings"
)

var validLogLevels = []string{"debug", "info", "warn", "error", "fatal"}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLayout(); err != nil {
		return err
	}
	if err := c.validateOSC(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLayout() error {
	if c.Layout.Advance < 1 {
		return errors.New("layout.advance must be at least 1")
	}
	if strings.TrimSpace(c.Layout.GoKey) == "" {
		return errors.New("layout.go_key must be set")
	}
	return nil
}

func (c *Config) validateOSC() error {
	if !c.OSC.Enabled {
		return nil
	}
	if c.OSC.ListenHost == "" {
		return errors.New("osc.listen_host must be set when osc.enabled is true")
	}
	if !validPort(c.OSC.ListenPort) {
		return fmt.Errorf("osc.listen_port must be between 1 and 65535, got %d", c.OSC.ListenPort)
	}
	if c.OSC.FeedbackHost != "" && !validPort(c.OSC.FeedbackPort) {
		return fmt.Errorf("osc.feedback_port must be between 1 and 65535, got %d", c.OSC.FeedbackPort)
	}
	if c.OSC.Prefix != "" && !strings.HasPrefix(c.OSC.Prefix, "/") {
		return fmt.Errorf("osc.prefix must start with '/', got %q", c.OSC.Prefix)
	}
	return nil
}

func (c *Config) validateLogging() error {
	for _, level := range validLogLevels {
		if c.Logging.Level == level {
			return nil
		}
	}
	return fmt.Errorf("logging.level must be one of %s, got %q", strings.Join(validLogLevels, ", "), c.Logging.Level)
}

func validPort(port int) bool {
	return port > 0 && port <= 65535
}

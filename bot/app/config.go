// Package app wires the payment bot into the core Telegram runtime.
package app

import (
	"fmt"
	"strings"

	coreconfig "github.com/m3rciful/paybot/core/config"
	coredatabase "github.com/m3rciful/paybot/core/database"
)

const defaultPayeeName = "Premium Membership"

// PaymentConfig describes where users send money.
type PaymentConfig struct {
	UPIID     string `yaml:"upi_id" envconfig:"UPI_ID"`
	PayeeName string `yaml:"payee_name" envconfig:"UPI_PAYEE_NAME"`
	// QRModuleSize is the pixel size of one QR module; 0 keeps the encoder default.
	QRModuleSize uint8 `yaml:"qr_module_size" envconfig:"QR_MODULE_SIZE"`
}

// Config is the full bot configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Payment  PaymentConfig       `yaml:"payment"`
	Database coredatabase.Config `yaml:"database"`
}

// CoreConfig exposes the embedded runtime configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// Load reads .env, the YAML file at path and the environment, then validates.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.ReadSources(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates core, payment and database settings and fills defaults.
func (c *Config) Normalize() error {
	if err := coreconfig.Normalize(&c.Config); err != nil {
		return err
	}
	c.Payment.UPIID = strings.TrimSpace(c.Payment.UPIID)
	if c.Payment.UPIID == "" {
		return fmt.Errorf("payment.upi_id is required")
	}
	if !strings.Contains(c.Payment.UPIID, "@") {
		return fmt.Errorf("payment.upi_id %q must look like name@bank", c.Payment.UPIID)
	}
	c.Payment.PayeeName = strings.TrimSpace(c.Payment.PayeeName)
	if c.Payment.PayeeName == "" {
		c.Payment.PayeeName = defaultPayeeName
	}
	if err := c.Database.Normalize(); err != nil {
		return err
	}
	return nil
}

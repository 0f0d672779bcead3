package main

import (
	"github.com/qubeio/microbees/config"
	"github.com/qubeio/microbees/logger"
	"github.com/qubeio/microbees/observability"
	"github.com/qubeio/microbees/server"
	"github.com/qubeio/microbees/tenant"
	"github.com/qubeio/microbees/token"
)

// appConfig is the full service configuration.
type appConfig struct {
	Base          config.BaseConfig    `yaml:"base" mapstructure:"base"`
	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Logging       logger.Config        `yaml:"logging" mapstructure:"logging"`
	Auth          token.Config         `yaml:"auth" mapstructure:"auth"`
	Store         tenant.Config        `yaml:"store" mapstructure:"store"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

func (c *appConfig) applyDefaults() {
	c.Base.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Logging.ApplyDefaults()
	c.Auth.ApplyDefaults()
	c.Store.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

func (c *appConfig) validate() error {
	if err := c.Base.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	return c.Store.Validate()
}

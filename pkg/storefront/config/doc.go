/*
Package config loads storefront settings from YAML or JSON.

# Overview

Config wraps a decoded document and reads values by dotted path, returning
the caller's default when a key is missing or has the wrong type:

	cfg, err := config.FromFile("storefront.yaml")
	if err != nil {
	    log.Fatal(err)
	}
	depth := cfg.Int("broker.max_depth", 32)

Settings is the typed view used to wire a storefront:

	settings, err := config.Load(os.Getenv("STOREFRONT_CONFIG"))
	logger := settings.Logger(os.Stderr)

# Thread Safety

Config is safe for concurrent read access. The underlying map is not
modified after creation.
*/
package config

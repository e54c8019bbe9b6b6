/*
Package config provides type-safe configuration extraction and deep merging
over map[string]any trees.

# Basic Usage

Create a Config from any map and extract values with defaults:

	cfg := config.New(map[string]any{
	    "timeout": "30s",
	    "retries": 3,
	    "server":  map[string]any{"host": "localhost"},
	})

	timeout := cfg.Duration("timeout", 10*time.Second) // 30s
	retries := cfg.Int("retries", 5)                   // 3
	host := cfg.String("server.host", "")              // "localhost"
	missing := cfg.String("missing", "default")        // "default"

# Merging

Merge applies a partial patch to a live configuration in place. Maps merge
per key, slices per index, and a longer slice patch extends the target:

	cfg.Merge(map[string]any{
	    "retries": 5,
	    "server":  map[string]any{"port": 8080},
	})
	// server is now {"host": "localhost", "port": 8080}

Merging into the zero Config fails with ErrNotConfigured.

# File Loading

Load configuration from YAML, JSON or HCL files:

	cfg, err := config.FromFile("config.hcl")

	// Or load from bytes
	cfg, err = config.FromYAML(yamlBytes)
	cfg, err = config.FromJSON(jsonBytes)
	cfg, err = config.FromHCL(hclBytes)

# Thread Safety

Accessors are safe for concurrent use. Merge writes to the underlying map
and must not run concurrently with any other method.
*/
package config

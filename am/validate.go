package am

import "github.com/teranos/jsbind/errors"

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	switch c.Output.Format {
	case "", FormatJSON, FormatYAML, FormatText:
	default:
		return errors.WithHint(
			errors.Wrapf(errors.ErrValidation, "output.format %q is not supported", c.Output.Format),
			"use one of: json, yaml, text")
	}

	// Workers: 0 = default, negative = invalid
	if c.Expand.Workers < 0 {
		return errors.Wrapf(errors.ErrValidation, "expand.workers must be >= 0, got %d", c.Expand.Workers)
	}

	// Max overloads: 0 = unbounded, negative = invalid
	if c.Expand.MaxOverloads < 0 {
		return errors.Wrapf(errors.ErrValidation, "expand.max_overloads must be >= 0, got %d", c.Expand.MaxOverloads)
	}

	if c.Catalog.Enabled && c.Catalog.Path == "" {
		return errors.Wrap(errors.ErrValidation, "catalog.path cannot be empty when the catalog is enabled")
	}

	if c.Watch.DebounceMS < 0 {
		return errors.Wrapf(errors.ErrValidation, "watch.debounce_ms must be >= 0, got %d", c.Watch.DebounceMS)
	}
	if c.Watch.MaxRunsPerMinute < 0 {
		return errors.Wrapf(errors.ErrValidation, "watch.max_runs_per_minute must be >= 0, got %d", c.Watch.MaxRunsPerMinute)
	}

	for i, m := range c.Input.Manifests {
		if m == "" {
			return errors.Wrapf(errors.ErrValidation, "input.manifests[%d] is empty", i)
		}
	}

	return nil
}

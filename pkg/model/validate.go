package model

import "fmt"

// Validate checks configuration correctness. It performs declarative
// validation only and does not mutate the configuration.
func Validate(cfg *Config) error {
	if cfg.Input.Width <= 0 || cfg.Input.Height <= 0 {
		return fmt.Errorf("model %q: input plane must be positive, got %dx%d",
			cfg.Name, cfg.Input.Width, cfg.Input.Height)
	}
	if len(cfg.Layers) == 0 {
		return fmt.Errorf("model %q: at least one layer required", cfg.Name)
	}
	for i, l := range cfg.Layers {
		switch l.Kind {
		case Dense:
			if l.Units <= 0 {
				return fmt.Errorf("model %q: layer %d: dense units must be positive", cfg.Name, i)
			}
			if l.Filters != 0 || l.Kernel != 0 {
				return fmt.Errorf("model %q: layer %d: filters/kernel are conv2d-only", cfg.Name, i)
			}
		case Conv2D:
			if i != 0 {
				return fmt.Errorf("model %q: layer %d: conv2d must be the first layer", cfg.Name, i)
			}
			if l.Filters <= 0 || l.Kernel <= 0 {
				return fmt.Errorf("model %q: layer %d: conv2d needs positive filters and kernel", cfg.Name, i)
			}
			if l.Kernel > cfg.Input.Width || l.Kernel > cfg.Input.Height {
				return fmt.Errorf("model %q: layer %d: kernel %d exceeds input plane %dx%d",
					cfg.Name, i, l.Kernel, cfg.Input.Width, cfg.Input.Height)
			}
		default:
			return fmt.Errorf("model %q: layer %d: unknown kind %q", cfg.Name, i, l.Kind)
		}
		if l.Clamp != nil && l.Clamp[0] > l.Clamp[1] {
			return fmt.Errorf("model %q: layer %d: clamp range [%d,%d] inverted",
				cfg.Name, i, l.Clamp[0], l.Clamp[1])
		}
	}
	return nil
}

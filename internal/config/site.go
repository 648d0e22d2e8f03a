package config

import "time"

// SiteConfig holds per-host settings for crawling.
// This allows adjusting behavior for individual sites without changing
// the global flags, e.g. a slower delay for a fragile host or extra
// headers a site requires.
type SiteConfig struct {
	// Headers are extra HTTP headers sent with requests to this host.
	Headers map[string]string `yaml:"headers,omitempty"`

	// UserAgent overrides the global User-Agent for this host.
	UserAgent string `yaml:"userAgent,omitempty"`

	// DelaySeconds overrides the global request delay for this host,
	// in (possibly fractional) seconds. Zero means use the global delay.
	DelaySeconds float64 `yaml:"delaySeconds,omitempty"`
}

// Delay returns the per-site delay as a duration, or zero when unset.
func (sc SiteConfig) Delay() time.Duration {
	return time.Duration(sc.DelaySeconds * float64(time.Second))
}

// File represents the structure of the .linkharvest configuration file.
type File struct {
	// Sites maps hostnames (e.g. "example.com") to their settings.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains settings applied to all hosts unless overridden
	// in the host-specific section.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the merged configuration for a host.
// Host-specific values override defaults field by field.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults

	if sc, ok := cf.Sites[host]; ok {
		if len(sc.Headers) > 0 {
			if result.Headers == nil {
				result.Headers = make(map[string]string)
			} else {
				// Copy so merging never mutates the defaults map.
				merged := make(map[string]string, len(result.Headers)+len(sc.Headers))
				for k, v := range result.Headers {
					merged[k] = v
				}
				result.Headers = merged
			}
			for k, v := range sc.Headers {
				result.Headers[k] = v
			}
		}
		if sc.UserAgent != "" {
			result.UserAgent = sc.UserAgent
		}
		if sc.DelaySeconds > 0 {
			result.DelaySeconds = sc.DelaySeconds
		}
	}

	return result
}

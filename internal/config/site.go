package config

import (
	"strings"
	"time"
)

// Settings are global options that can be set in the config file.
// Zero values leave the corresponding Config field untouched.
type Settings struct {
	MaxPages      int           `yaml:"maxPages,omitempty"`
	CrawlDelay    time.Duration `yaml:"crawlDelay,omitempty"`
	Timeout       time.Duration `yaml:"timeout,omitempty"`
	MinWordCount  int           `yaml:"minWordCount,omitempty"`
	MinHeadings   int           `yaml:"minHeadings,omitempty"`
	MinParagraphs int           `yaml:"minParagraphs,omitempty"`
	Concurrency   int           `yaml:"concurrency,omitempty"`
	LinksPerPage  int           `yaml:"linksPerPage,omitempty"`
	Retries       int           `yaml:"retries,omitempty"`
	UserAgent     string        `yaml:"userAgent,omitempty"`
	Format        string        `yaml:"format,omitempty"`
	SaveDir       string        `yaml:"saveDir,omitempty"`
}

// SiteConfig holds settings for a single website.
type SiteConfig struct {
	// Cookie is an HTTP cookie sent to this site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra HTTP headers sent to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// MaxPages overrides the global page budget for this site.
	MaxPages int `yaml:"maxPages,omitempty"`

	// IgnorePatterns are URL path globs that are never crawled.
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`

	// FollowPatterns are URL path globs; when set, only matching links are
	// crawled. The seed URL is always fetched.
	FollowPatterns []string `yaml:"followPatterns,omitempty"`
}

// File is the structure of the .aicompliance.yaml configuration file.
type File struct {
	// Settings are global defaults for every run.
	Settings Settings `yaml:"settings,omitempty"`

	// Sites maps host names (e.g. "example.com") to their settings.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults apply to every site unless a site entry overrides them.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the settings for host merged over the defaults.
// Host lookup is case-insensitive and ignores a leading "www.".
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults
	if cf.Defaults.Headers != nil {
		result.Headers = make(map[string]string, len(cf.Defaults.Headers))
		for k, v := range cf.Defaults.Headers {
			result.Headers[k] = v
		}
	}

	siteConfig, ok := cf.lookup(host)
	if !ok {
		return result
	}

	if siteConfig.Cookie != "" {
		result.Cookie = siteConfig.Cookie
	}
	if siteConfig.MaxPages != 0 {
		result.MaxPages = siteConfig.MaxPages
	}
	if len(siteConfig.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string)
		}
		for k, v := range siteConfig.Headers {
			result.Headers[k] = v
		}
	}
	if len(siteConfig.IgnorePatterns) > 0 {
		result.IgnorePatterns = siteConfig.IgnorePatterns
	}
	if len(siteConfig.FollowPatterns) > 0 {
		result.FollowPatterns = siteConfig.FollowPatterns
	}
	return result
}

func (cf *File) lookup(host string) (SiteConfig, bool) {
	host = strings.ToLower(host)
	if sc, ok := cf.Sites[host]; ok {
		return sc, true
	}
	candidates := []string{host, strings.TrimPrefix(host, "www.")}
	for key, sc := range cf.Sites {
		k := strings.ToLower(key)
		for _, c := range candidates {
			if k == c || strings.TrimPrefix(k, "www.") == c {
				return sc, true
			}
		}
	}
	return SiteConfig{}, false
}

// ApplyFile copies the non-zero global settings of f into c and keeps f
// for per-site lookups.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	c.SiteConfigs = f

	s := f.Settings
	if s.MaxPages != 0 {
		c.MaxPages = s.MaxPages
	}
	if s.CrawlDelay != 0 {
		c.CrawlDelay = s.CrawlDelay
	}
	if s.Timeout != 0 {
		c.Timeout = s.Timeout
	}
	if s.MinWordCount != 0 {
		c.MinWordCount = s.MinWordCount
	}
	if s.MinHeadings != 0 {
		c.MinHeadings = s.MinHeadings
	}
	if s.MinParagraphs != 0 {
		c.MinParagraphs = s.MinParagraphs
	}
	if s.Concurrency != 0 {
		c.Concurrency = s.Concurrency
	}
	if s.LinksPerPage != 0 {
		c.LinksPerPage = s.LinksPerPage
	}
	if s.Retries != 0 {
		c.Retries = s.Retries
	}
	if s.UserAgent != "" {
		c.UserAgent = s.UserAgent
	}
	if s.Format != "" {
		c.Format = s.Format
	}
	if s.SaveDir != "" {
		c.SaveDir = s.SaveDir
	}
}

// SiteConfigFor returns the per-site settings for host. The zero value is
// returned when no config file was loaded.
func (c *Config) SiteConfigFor(host string) SiteConfig {
	if c.SiteConfigs == nil {
		return SiteConfig{}
	}
	return c.SiteConfigs.GetSiteConfig(host)
}

package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Browser    BrowserConfig    `mapstructure:"browser"`
	Session    SessionConfig    `mapstructure:"session"`
	Navigation NavigationConfig `mapstructure:"navigation"`
	Extract    ExtractConfig    `mapstructure:"extract"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline"`
	Store      StoreConfig      `mapstructure:"store"`
	Auth       AuthConfig       `mapstructure:"auth"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Webhook    WebhookConfig    `mapstructure:"webhook"`
	Log        LogConfig        `mapstructure:"log"`
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string `mapstructure:"host"` // default: "127.0.0.1"
	Port int    `mapstructure:"port"` // default: 8080
	Mode string `mapstructure:"mode"` // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool `mapstructure:"headless"` // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool `mapstructure:"no_sandbox"`

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string `mapstructure:"bin"`

	// DefaultProxy is the proxy URL for all requests.
	DefaultProxy string `mapstructure:"proxy"`

	// Stealth injects the anti-automation-detection script into the session page.
	Stealth bool `mapstructure:"stealth"` // default: true

	// BlockedResourceTypes lists resource types to block.
	// default: ["Image", "Font", "Media"]
	BlockedResourceTypes []string `mapstructure:"blocked_resources"`

	// AcceptLanguage pins the profile language so positional text layouts stay stable.
	AcceptLanguage string `mapstructure:"accept_language"` // default: "en-US,en;q=0.9"

	// NavigationTimeout is the max time for a single page load.
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout"` // default: 30s

	// ActionTimeout is the deadline for one click, keystroke batch or text read.
	ActionTimeout time.Duration `mapstructure:"action_timeout"` // default: 10s
}

// SessionConfig describes the already-authenticated session the scraper uses.
type SessionConfig struct {
	// CDPURL attaches to a running, signed-in Chrome instead of launching one.
	CDPURL string `mapstructure:"cdp_url"`

	// CookieName and CookieDomain describe the session cookie.
	CookieName   string `mapstructure:"cookie_name"`   // default: "li_at"
	CookieDomain string `mapstructure:"cookie_domain"` // default: ".linkedin.com"

	// Cookie is the session cookie value. When empty it is read from the
	// OS keyring entry named by KeyringAccount.
	Cookie         string `mapstructure:"cookie"`
	KeyringAccount string `mapstructure:"keyring_account"` // default: "default"
}

// NavigationConfig controls how founder profiles are located.
type NavigationConfig struct {
	// Strategy is "roster" (company people page search) or "global" (site search).
	Strategy string `mapstructure:"strategy"` // default: "roster"

	// Query is "name" or "name+company"; empty picks the strategy's default.
	Query string `mapstructure:"query"`

	// Pick is "first" (accept the first result) or "best" (closest name match).
	Pick string `mapstructure:"pick"` // default: "first"

	// MatchThreshold is the minimum Jaro-Winkler similarity for Pick "best".
	MatchThreshold float64 `mapstructure:"match_threshold"` // default: 0.85

	RosterSearchSelector string `mapstructure:"roster_search_selector"`
	RosterResultSelector string `mapstructure:"roster_result_selector"`
	GlobalSearchSelector string `mapstructure:"global_search_selector"`
	GlobalResultSelector string `mapstructure:"global_result_selector"`

	// ClearRightPresses and ClearBackspaces bound the global search-box clear.
	ClearRightPresses int `mapstructure:"clear_right_presses"` // default: 50
	ClearBackspaces   int `mapstructure:"clear_backspaces"`    // default: 80

	// WaitTimeout bounds every wait-for-element poll during navigation.
	WaitTimeout time.Duration `mapstructure:"wait_timeout"` // default: 10s

	// ActionsPerSecond paces founder lookups on the shared session.
	ActionsPerSecond float64 `mapstructure:"actions_per_second"` // default: 0.5

	// BaseURL is the site root. The global variant starts there when the
	// company page does not load. Empty disables the fallback.
	BaseURL string `mapstructure:"base_url"` // default: "https://www.linkedin.com/"
}

// ExtractConfig holds the profile layout: selectors and positional line offsets.
type ExtractConfig struct {
	ConnectionsSelector string `mapstructure:"connections_selector"`
	LocationSelector    string `mapstructure:"location_selector"`
	EducationSelector   string `mapstructure:"education_selector"`
	ExperienceSelector  string `mapstructure:"experience_selector"`

	SchoolLine int `mapstructure:"school_line"` // default: 0
	DegreeLine int `mapstructure:"degree_line"` // default: 2
	FieldLine  int `mapstructure:"field_line"`  // default: 4

	TitleLine   int `mapstructure:"title_line"`   // default: 0
	CompanyLine int `mapstructure:"company_line"` // default: 2
	DatesLine   int `mapstructure:"dates_line"`   // default: 4

	// GroupedPlaceholder on line 0 marks a sub-entry of a grouped company
	// block; its company name is on GroupedCompanyLine.
	GroupedPlaceholder string `mapstructure:"grouped_placeholder"`  // default: "Company Name"
	GroupedCompanyLine int    `mapstructure:"grouped_company_line"` // default: 1

	EducationScrollFraction  float64 `mapstructure:"education_scroll_fraction"`  // default: 0.5
	ExperienceScrollFraction float64 `mapstructure:"experience_scroll_fraction"` // default: 0.333

	// LazyLoadPause is the minimum pause after each scroll; LazyLoadTimeout
	// bounds the poll for lazily rendered experience nodes.
	LazyLoadPause   time.Duration `mapstructure:"lazy_load_pause"`   // default: 750ms
	LazyLoadTimeout time.Duration `mapstructure:"lazy_load_timeout"` // default: 5s

	// DriftThreshold is the DOM fingerprint distance above which a profile
	// is reported as using a different markup layout. 0 disables.
	DriftThreshold int `mapstructure:"drift_threshold"` // default: 16
}

// PipelineConfig bounds the per-record work.
type PipelineConfig struct {
	FounderTimeout time.Duration `mapstructure:"founder_timeout"` // default: 90s
	CompanyTimeout time.Duration `mapstructure:"company_timeout"` // default: 10m
}

// StoreConfig controls persistence of the aggregation store.
type StoreConfig struct {
	Path       string `mapstructure:"path"`        // default: "company_data.json"
	SQLitePath string `mapstructure:"sqlite_path"` // optional export target
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	Enabled bool     `mapstructure:"enabled"` // default: true
	APIKeys []string `mapstructure:"api_keys"`
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"rps"`   // default: 2
	Burst             int     `mapstructure:"burst"` // default: 4
}

// WebhookConfig controls batch completion notifications.
type WebhookConfig struct {
	URL    string `mapstructure:"url"`
	Secret string `mapstructure:"secret"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // default: "info"
	Format string `mapstructure:"format"` // "json" or "text"; default: "json"
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
			Mode: "release",
		},
		Browser: BrowserConfig{
			Headless:             true,
			Stealth:              true,
			BlockedResourceTypes: []string{"Image", "Font", "Media"},
			AcceptLanguage:       "en-US,en;q=0.9",
			NavigationTimeout:    30 * time.Second,
			ActionTimeout:        10 * time.Second,
		},
		Session: SessionConfig{
			CookieName:     "li_at",
			CookieDomain:   ".linkedin.com",
			KeyringAccount: "default",
		},
		Navigation: NavigationConfig{
			Strategy:             "roster",
			Pick:                 "first",
			MatchThreshold:       0.85,
			RosterSearchSelector: "#people-search-keywords",
			RosterResultSelector: `a[data-control-name="people_profile_card_name_link"]`,
			GlobalSearchSelector: "input.search-global-typeahead__input",
			GlobalResultSelector: `a[data-control-name="search_srp_result"]`,
			ClearRightPresses:    50,
			ClearBackspaces:      80,
			WaitTimeout:          10 * time.Second,
			ActionsPerSecond:     0.5,
			BaseURL:              "https://www.linkedin.com/",
		},
		Extract: ExtractConfig{
			ConnectionsSelector:      "ul.pv-top-card--list.pv-top-card--list-bullet.mt1 > li.inline-block",
			LocationSelector:         "li.t-16.t-black.t-normal.inline-block",
			EducationSelector:        "div.pv-entity__degree-info",
			ExperienceSelector:       `a[data-control-name="background_details_company"]`,
			SchoolLine:               0,
			DegreeLine:               2,
			FieldLine:                4,
			TitleLine:                0,
			CompanyLine:              2,
			DatesLine:                4,
			GroupedPlaceholder:       "Company Name",
			GroupedCompanyLine:       1,
			EducationScrollFraction:  0.5,
			ExperienceScrollFraction: 1.0 / 3,
			LazyLoadPause:            750 * time.Millisecond,
			LazyLoadTimeout:          5 * time.Second,
			DriftThreshold:           16,
		},
		Pipeline: PipelineConfig{
			FounderTimeout: 90 * time.Second,
			CompanyTimeout: 10 * time.Minute,
		},
		Store: StoreConfig{
			Path: "company_data.json",
		},
		Auth: AuthConfig{
			Enabled: true,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 2,
			Burst:             4,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration from an optional YAML file and FOUNDERSCOPE_*
// environment variables on top of Default. An empty path looks for
// ./founderscope.yaml and tolerates its absence.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("founderscope")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("FOUNDERSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, Default())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !eris.As(err, &notFound) {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.mode", d.Server.Mode)

	v.SetDefault("browser.headless", d.Browser.Headless)
	v.SetDefault("browser.no_sandbox", d.Browser.NoSandbox)
	v.SetDefault("browser.bin", d.Browser.BrowserBin)
	v.SetDefault("browser.proxy", d.Browser.DefaultProxy)
	v.SetDefault("browser.stealth", d.Browser.Stealth)
	v.SetDefault("browser.blocked_resources", d.Browser.BlockedResourceTypes)
	v.SetDefault("browser.accept_language", d.Browser.AcceptLanguage)
	v.SetDefault("browser.navigation_timeout", d.Browser.NavigationTimeout)
	v.SetDefault("browser.action_timeout", d.Browser.ActionTimeout)

	v.SetDefault("session.cdp_url", d.Session.CDPURL)
	v.SetDefault("session.cookie_name", d.Session.CookieName)
	v.SetDefault("session.cookie_domain", d.Session.CookieDomain)
	v.SetDefault("session.cookie", d.Session.Cookie)
	v.SetDefault("session.keyring_account", d.Session.KeyringAccount)

	v.SetDefault("navigation.strategy", d.Navigation.Strategy)
	v.SetDefault("navigation.query", d.Navigation.Query)
	v.SetDefault("navigation.pick", d.Navigation.Pick)
	v.SetDefault("navigation.match_threshold", d.Navigation.MatchThreshold)
	v.SetDefault("navigation.roster_search_selector", d.Navigation.RosterSearchSelector)
	v.SetDefault("navigation.roster_result_selector", d.Navigation.RosterResultSelector)
	v.SetDefault("navigation.global_search_selector", d.Navigation.GlobalSearchSelector)
	v.SetDefault("navigation.global_result_selector", d.Navigation.GlobalResultSelector)
	v.SetDefault("navigation.clear_right_presses", d.Navigation.ClearRightPresses)
	v.SetDefault("navigation.clear_backspaces", d.Navigation.ClearBackspaces)
	v.SetDefault("navigation.wait_timeout", d.Navigation.WaitTimeout)
	v.SetDefault("navigation.actions_per_second", d.Navigation.ActionsPerSecond)
	v.SetDefault("navigation.base_url", d.Navigation.BaseURL)

	v.SetDefault("extract.connections_selector", d.Extract.ConnectionsSelector)
	v.SetDefault("extract.location_selector", d.Extract.LocationSelector)
	v.SetDefault("extract.education_selector", d.Extract.EducationSelector)
	v.SetDefault("extract.experience_selector", d.Extract.ExperienceSelector)
	v.SetDefault("extract.school_line", d.Extract.SchoolLine)
	v.SetDefault("extract.degree_line", d.Extract.DegreeLine)
	v.SetDefault("extract.field_line", d.Extract.FieldLine)
	v.SetDefault("extract.title_line", d.Extract.TitleLine)
	v.SetDefault("extract.company_line", d.Extract.CompanyLine)
	v.SetDefault("extract.dates_line", d.Extract.DatesLine)
	v.SetDefault("extract.grouped_placeholder", d.Extract.GroupedPlaceholder)
	v.SetDefault("extract.grouped_company_line", d.Extract.GroupedCompanyLine)
	v.SetDefault("extract.education_scroll_fraction", d.Extract.EducationScrollFraction)
	v.SetDefault("extract.experience_scroll_fraction", d.Extract.ExperienceScrollFraction)
	v.SetDefault("extract.lazy_load_pause", d.Extract.LazyLoadPause)
	v.SetDefault("extract.lazy_load_timeout", d.Extract.LazyLoadTimeout)
	v.SetDefault("extract.drift_threshold", d.Extract.DriftThreshold)

	v.SetDefault("pipeline.founder_timeout", d.Pipeline.FounderTimeout)
	v.SetDefault("pipeline.company_timeout", d.Pipeline.CompanyTimeout)

	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("store.sqlite_path", d.Store.SQLitePath)

	v.SetDefault("auth.enabled", d.Auth.Enabled)
	v.SetDefault("auth.api_keys", d.Auth.APIKeys)

	v.SetDefault("rate_limit.rps", d.RateLimit.RequestsPerSecond)
	v.SetDefault("rate_limit.burst", d.RateLimit.Burst)

	v.SetDefault("webhook.url", d.Webhook.URL)
	v.SetDefault("webhook.secret", d.Webhook.Secret)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

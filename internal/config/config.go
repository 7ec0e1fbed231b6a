package config

// AppConfig holds application-level settings.
type AppConfig struct {
	LogLevel string `mapstructure:"log_level"`
	Output   string `mapstructure:"output"` // text, json, yaml, markdown
}

// SearchConfig controls the upstream discussion-search API.
type SearchConfig struct {
	ByDateURL         string  `mapstructure:"by_date_url"`
	ByPointsURL       string  `mapstructure:"by_points_url"`
	Timeout           string  `mapstructure:"timeout"`             // duration string, e.g., "10s"
	RequestsPerSecond float64 `mapstructure:"requests_per_second"` // 0 means unlimited
	UserAgent         string  `mapstructure:"user_agent"`
}

// FilterDefaults are the filters used when no flag/query parameter overrides them.
type FilterDefaults struct {
	Type     string `mapstructure:"type"`      // all, story, comment
	URLMatch string `mapstructure:"url_match"` // full, partial
	Sort     string `mapstructure:"sort"`      // date, points
}

// RedisConfig holds redis connection settings. An empty Addr disables the failure stream.
type RedisConfig struct {
	Addr                string `mapstructure:"addr"`
	Username            string `mapstructure:"username"`
	Password            string `mapstructure:"password"`
	DB                  int    `mapstructure:"db"`
	FailureStream       string `mapstructure:"failure_stream"`
	FailureStreamMaxLen int64  `mapstructure:"failure_stream_max_len"`
}

// OpenAIConfig controls the optional discussion digest.
type OpenAIConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
	BaseURL  string `mapstructure:"base_url"`
	Language string `mapstructure:"language"`
}

// ServerConfig controls the JSON API.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// Config is the top-level configuration structure.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Search   SearchConfig   `mapstructure:"search"`
	Defaults FilterDefaults `mapstructure:"defaults"`
	Redis    RedisConfig    `mapstructure:"redis"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Server   ServerConfig   `mapstructure:"server"`
}

// FillDefaults applies default values if not provided.
func (c *Config) FillDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.App.Output == "" {
		c.App.Output = "text"
	}
	if c.Search.ByDateURL == "" {
		c.Search.ByDateURL = "https://hn.algolia.com/api/v1/search_by_date"
	}
	if c.Search.ByPointsURL == "" {
		c.Search.ByPointsURL = "https://hn.algolia.com/api/v1/search"
	}
	if c.Search.Timeout == "" {
		c.Search.Timeout = "10s"
	}
	if c.Search.UserAgent == "" {
		c.Search.UserAgent = "hn-discuss/1.0"
	}
	// Same initial filters as the extension popup.
	if c.Defaults.Type == "" {
		c.Defaults.Type = "all"
	}
	if c.Defaults.URLMatch == "" {
		c.Defaults.URLMatch = "partial"
	}
	if c.Defaults.Sort == "" {
		c.Defaults.Sort = "date"
	}
	if c.Redis.FailureStream == "" {
		c.Redis.FailureStream = "hn:search:failures"
	}
	if c.Redis.FailureStreamMaxLen == 0 {
		c.Redis.FailureStreamMaxLen = 1000
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o-mini"
	}
	if c.OpenAI.Language == "" {
		c.OpenAI.Language = "English"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = "127.0.0.1:8787"
	}
}

package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"hn-discuss/internal/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	appCfg  config.Config
)

// rootCmd is the base command called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "hn-discuss",
	Short: "Find Hacker News discussions about a web page",
	Long: "Looks up stories and comments that reference a page URL on the HN search API,\n" +
		"with story/comment/url-match/sort filters and incremental paging.",
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	pf.String("type", "", "content type: all, story, comment")
	pf.String("url-match", "", "url match: full, partial")
	pf.String("sort", "", "sort: date, points")
	pf.StringP("format", "o", "", "output format: text, json, yaml, markdown")
	pf.String("log-level", "", "log level: debug, info, warn, error")

	v := viper.GetViper()
	_ = v.BindPFlag("defaults.type", pf.Lookup("type"))
	_ = v.BindPFlag("defaults.url_match", pf.Lookup("url-match"))
	_ = v.BindPFlag("defaults.sort", pf.Lookup("sort"))
	_ = v.BindPFlag("app.output", pf.Lookup("format"))
	_ = v.BindPFlag("app.log_level", pf.Lookup("log-level"))
}

func initConfig() {
	// .env is optional
	_ = godotenv.Load()

	v := viper.GetViper()
	v.SetEnvPrefix("HN_DISCUSS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only covers keys viper already knows; bind the secrets explicitly.
	_ = v.BindEnv("openai.api_key", "HN_DISCUSS_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("redis.addr", "HN_DISCUSS_REDIS_ADDR")
	_ = v.BindEnv("redis.password", "HN_DISCUSS_REDIS_PASSWORD")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/hn-discuss")
		v.AddConfigPath("configs")
	}

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			fmt.Fprintf(os.Stderr, "error reading config: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", v.ConfigFileUsed())
	}

	if err := v.Unmarshal(&appCfg); err != nil {
		fmt.Fprintf(os.Stderr, "error parsing config: %v\n", err)
		os.Exit(1)
	}

	appCfg.FillDefaults()
	setupLogging(appCfg.App.LogLevel)
}

func setupLogging(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

// GetConfig exposes the loaded configuration to subcommands.
func GetConfig() config.Config {
	return appCfg
}

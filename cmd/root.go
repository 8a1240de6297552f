package cmd

import (
	"context"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"xorkevin.dev/klog"
)

type (
	Cmd struct {
		rootCmd    *cobra.Command
		logger     klog.Logger
		log        *klog.LevelLogger
		version    string
		rootFlags  rootFlags
		queryFlags queryFlags
		dumpFlags  dumpFlags
		docFlags   docFlags
	}

	rootFlags struct {
		cfgFile  string
		logLevel string
	}
)

func New() *Cmd {
	return &Cmd{}
}

func (c *Cmd) Execute() {
	buildinfo := ReadVCSBuildInfo()
	c.version = buildinfo.ModVersion
	if overrideVersion := os.Getenv("FORGERESULT_OVERRIDE_VERSION"); overrideVersion != "" {
		c.version = overrideVersion
	}
	rootCmd := &cobra.Command{
		Use:   "forgeresult",
		Short: "A query result utility",
		Long: `A query result utility to page through the rows of SQL queries and of
query results cached in redis.`,
		Version:           c.version,
		PersistentPreRun:  c.initConfig,
		DisableAutoGenTag: true,
	}
	rootCmd.PersistentFlags().StringVar(&c.rootFlags.cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/.forgeresult.yaml)")
	rootCmd.PersistentFlags().StringVar(&c.rootFlags.logLevel, "log-level", "info", "log level")
	c.rootCmd = rootCmd

	rootCmd.AddCommand(c.getQueryCmd())
	rootCmd.AddCommand(c.getDumpCmd())
	rootCmd.AddCommand(c.getDocCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set.
func (c *Cmd) initConfig(cmd *cobra.Command, args []string) {
	c.logger = klog.New(
		klog.OptMinLevelStr(c.rootFlags.logLevel),
		klog.OptHandler(klog.NewTextSlogHandler(os.Stderr)),
	)
	c.log = klog.NewLevelLogger(c.logger)

	if c.rootFlags.cfgFile != "" {
		viper.SetConfigFile(c.rootFlags.cfgFile)
	} else {
		viper.SetConfigName(".forgeresult")
		viper.AddConfigPath(".")

		// Search config in XDG_CONFIG_HOME directory with name ".forgeresult" (without extension).
		if cfgdir, err := os.UserConfigDir(); err == nil {
			viper.AddConfigPath(cfgdir)
		}
	}

	viper.SetDefault("sql.driver", "oracle")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)

	viper.SetEnvPrefix("FORGERESULT")
	viper.AutomaticEnv() // read in environment variables that match
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		c.log.Debug(context.Background(), "Using config file", klog.AString("file", viper.ConfigFileUsed()))
	} else {
		c.log.Debug(context.Background(), "Failed reading config file", klog.AString("err", err.Error()))
	}
}

func (c *Cmd) redisClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     viper.GetString("redis.addr"),
		Password: viper.GetString("redis.password"),
		DB:       viper.GetInt("redis.db"),
	})
}

func (c *Cmd) logFatal(err error) {
	c.log.Err(context.Background(), err)
	os.Exit(1)
}

package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"

	"asset-aggregator/conf"
)

var Version string

func main() {
	app := cli.NewApp()
	app.Version = Version
	app.Name = "aggctl"
	app.Usage = "asset aggregator command line interface"
	app.Commands = append(
		app.Commands,
		&enrichCommand,
		&browseCommand,
	)
	app.Flags = []cli.Flag{configFlag, verboseFlag}
	app.Before = func(ctx *cli.Context) error {
		level := "warn"
		if ctx.Bool(verboseFlag.Name) {
			level = "debug"
		}
		conf.InitLogger(level)
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Println(fmt.Errorf("error: %v", err))
		os.Exit(1)
	}
}

var (
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "optional aggregator yaml config, env overrides still apply",
	}
	verboseFlag = &cli.BoolFlag{
		Name:  "verbose",
		Usage: "debug logging",
	}
)

// loadConfig config file when given, defaults plus env otherwise
func loadConfig(ctx *cli.Context) (*conf.Config, error) {
	v := viper.New()
	if path := ctx.String(configFlag.Name); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	cfg := conf.Load(v)
	log.Debugf("Explorer base url: %s", cfg.Explorer.BaseUrl)
	return cfg, nil
}

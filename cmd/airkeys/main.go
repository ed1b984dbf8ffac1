package main

import (
	"os"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"

	"github.com/ayusman/airkeys/internal/config"
	"github.com/ayusman/airkeys/internal/logging"
)

// CLI is the airkeys command line.
type CLI struct {
	Settings config.Settings `embed:""`

	Run      RunCmd      `cmd:"" default:"1" help:"Start the virtual keyboard (default)."`
	Sessions SessionsCmd `cmd:"" help:"List recorded typing sessions."`
	Plugins  PluginsCmd  `cmd:"" help:"List installed plugins."`
}

func main() {
	userCfg := config.UserConfigPath(os.Args[1:])
	jsonPaths, yamlPaths, tomlPaths := config.CandidatePaths(userCfg)

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("airkeys"),
		kong.Description("Type in the air: a camera-driven virtual keyboard."),
		kong.UsageOnError(),
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)

	logger, closeFiles, err := logging.Setup(cli.Settings.Log.Level, cli.Settings.Log.File)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() {
		for _, c := range closeFiles {
			_ = c.Close()
		}
	}()

	cli.Settings.ApplyDefaults()

	ctx.Bind(logger)
	ctx.Bind(&cli.Settings)

	err = ctx.Run()
	ctx.FatalIfErrorf(err)
}

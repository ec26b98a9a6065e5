package cmd

import (
	"context"

	"github.com/jkoenig1013/geoio/internal/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRoot builds the geoio command tree
func NewRoot(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "geoio",
		Short:         "windowed, coordinate-aware access to large multi-band rasters",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			switch viper.GetString("log-format") {
			case "json":
				log.Structured()
			default:
				log.Console()
			}
			if path := viper.GetString("log-file"); path != "" {
				log.File(path)
			}
		},
	}

	pf := cmd.PersistentFlags()
	pf.String("log-format", "console", "log output format (console, json)")
	pf.String("log-file", "", "write logs to a rotating file instead of stderr")
	viper.BindPFlag("log-format", pf.Lookup("log-format"))
	viper.BindPFlag("log-file", pf.Lookup("log-file"))

	viper.SetEnvPrefix("GEOIO")
	viper.AutomaticEnv()

	cmd.AddCommand(
		newInfoCmd(ctx),
		newStretchCmd(ctx),
		newTileCmd(ctx),
	)
	return cmd
}

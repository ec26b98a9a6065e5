package cmd

import (
	"context"
	"fmt"

	"github.com/jkoenig1013/geoio/interface/raster/gdal"
	"github.com/jkoenig1013/geoio/internal/image"
	"github.com/spf13/cobra"
)

func newInfoCmd(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "info <raster>",
		Short: "print a summary of a raster file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := image.New(ctx, gdal.Library(), args[0])
			if err != nil {
				return err
			}
			defer g.Close()
			fmt.Fprint(cmd.OutOrStdout(), g.String())
			return nil
		},
	}
}

package cmd

import (
	"context"
	"fmt"

	"github.com/jkoenig1013/geoio/interface/raster/gdal"
	"github.com/jkoenig1013/geoio/internal/image"
	"github.com/spf13/cobra"
)

func newStretchCmd(ctx context.Context) *cobra.Command {
	var (
		bands       []int
		low, high   float64
		approximate bool
	)
	cmd := &cobra.Command{
		Use:   "stretch <raster>",
		Short: "estimate display-contrast cut values from the cumulative histogram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := image.New(ctx, gdal.Library(), args[0])
			if err != nil {
				return err
			}
			defer g.Close()

			opts := []image.StretchOption{image.Percentiles(low, high)}
			if len(bands) > 0 {
				opts = append(opts, image.StretchBands(bands...))
			}
			if approximate {
				opts = append(opts, image.Approximate())
			}
			lo, hi, err := g.StretchValues(ctx, opts...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%g %g\n", lo, hi)
			return nil
		},
	}
	cmd.Flags().IntSliceVar(&bands, "bands", nil, "bands to estimate (1-based, default all)")
	cmd.Flags().Float64Var(&low, "low", 0.02, "low cut percentile, as a fraction of 1")
	cmd.Flags().Float64Var(&high, "high", 0.98, "high cut percentile, as a fraction of 1")
	cmd.Flags().BoolVar(&approximate, "approximate", false, "estimate on a subset of the full resolution data")
	return cmd
}

package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/jkoenig1013/geoio/interface/raster/gdal"
	"github.com/jkoenig1013/geoio/internal/image"
	"github.com/jkoenig1013/geoio/internal/log"
	"github.com/spf13/cobra"
)

func newTileCmd(ctx context.Context) *cobra.Command {
	var (
		size   []int
		stride []int
		outDir string
	)
	cmd := &cobra.Command{
		Use:   "tile <raster>",
		Short: "cut a raster into tiles",
		Long: `tile reads a raster window by window and writes each window as its own
raster file next to the input, named <stem>_<x>_<y>.tif. Without --out, the
windows are only listed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := image.New(ctx, gdal.Library(), args[0])
			if err != nil {
				return err
			}
			defer g.Close()

			it, err := g.IterWindow(size, stride, image.ReturnLocation())
			if err != nil {
				return err
			}

			stem := filepath.Base(args[0])
			stem = stem[:len(stem)-len(filepath.Ext(stem))]
			n := 0
			for {
				res, err := it.Next(ctx)
				if err != nil {
					return err
				}
				if res == nil {
					break
				}
				w := res.Location
				if outDir == "" {
					fmt.Fprintf(cmd.OutOrStdout(), "%d %d %d %d\n", w.X0, w.Y0, w.SizeX, w.SizeY)
					continue
				}
				out := filepath.Join(outDir, fmt.Sprintf("%s_%d_%d.tif", stem, w.X0, w.Y0))
				gt := g.Meta().GeoTransform
				gt[0], gt[3] = tileOrigin(g, w.X0, w.Y0)
				if err := image.Write(ctx, gdal.Library(), out, res.Block, "GTiff", gt, g.Meta().Projection); err != nil {
					return err
				}
				n++
			}
			if outDir != "" {
				log.Logger(ctx).Sugar().Infof("wrote %d tiles to %s", n, outDir)
			}
			return nil
		},
	}
	cmd.Flags().IntSliceVar(&size, "size", nil, "tile size in pixels, 1 or 2 values (default: natural block size)")
	cmd.Flags().IntSliceVar(&stride, "stride", nil, "step between tiles in pixels, 1 or 2 values (default: tile size)")
	cmd.Flags().StringVar(&outDir, "out", "", "directory to write the tiles to")
	return cmd
}

func tileOrigin(g *image.GeoImage, x0, y0 int) (float64, float64) {
	xs, ys, _ := g.RasterToProj([]float64{float64(x0)}, []float64{float64(y0)})
	return xs[0], ys[0]
}

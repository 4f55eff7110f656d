package cli

import (
	"bytes"
	"context"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shaiso/daxgen/internal/graphio"
)

// NewFormatsCmd создаёт команду formats.
func NewFormatsCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported graph formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := r.output(cmd)
			printFormats(out, graphio.DefaultRegistry().Formats())
			return nil
		},
	}
}

func printFormats(out *Output, formats []graphio.FormatInfo) {
	rows := make([][]string, len(formats))
	for i, f := range formats {
		rows[i] = []string{f.Name, strings.Join(f.Extensions, ", "), strconv.FormatBool(f.CanEncode)}
	}
	out.Print([]string{"FORMAT", "EXTENSIONS", "ENCODE"}, rows, formats)
}

// NewConvertCmd создаёт команду convert.
func NewConvertCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "convert SOURCE TARGET",
		Short: "Re-encode a graph in another format",
		Long: `Convert loads SOURCE and writes it to TARGET in the format given by
TARGET's extension. Node attributes and node/edge order are kept.`,
		Example: `  daxgen convert graph.gexf graph.json
  daxgen convert pg:lsst s3://graphs/lsst.msgpack`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, app *App, out *Output) error {
				svc, err := app.Service(ctx)
				if err != nil {
					return err
				}

				g, err := svc.Loader().Load(ctx, args[0])
				if err != nil {
					return err
				}

				var buf bytes.Buffer
				if err := svc.Loader().Registry().Encode(args[1], &buf, g); err != nil {
					return err
				}

				router, err := app.Storage(ctx)
				if err != nil {
					return err
				}
				ref, err := router.Put(ctx, args[1], buf.Bytes(), "application/octet-stream")
				if err != nil {
					return err
				}

				out.Success("Graph written to " + ref.URI)
				return nil
			})
		},
	}
}

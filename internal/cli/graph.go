package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/daxgen/internal/domain"
)

// NewGraphCmd создаёт группу команд для хранилища графов.
func NewGraphCmd(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Manage graphs in the PostgreSQL graph store",
		Long: `Graphs pushed to the store can be used as generator sources with
the pg:<name> prefix, e.g. "daxgen generate pg:lsst -o wf.dax -c rc.txt".`,
	}

	cmd.AddCommand(
		newGraphPushCmd(r),
		newGraphListCmd(r),
		newGraphShowCmd(r),
		newGraphDeleteCmd(r),
	)

	return cmd
}

func newGraphPushCmd(r *runner) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "push SOURCE",
		Short: "Store a graph under a name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, app *App, out *Output) error {
				svc, err := app.Service(ctx)
				if err != nil {
					return err
				}
				graphs, err := app.GraphRepo(ctx)
				if err != nil {
					return err
				}

				g, err := svc.Loader().Load(ctx, args[0])
				if err != nil {
					return err
				}
				stored, err := graphs.Save(ctx, name, g)
				if err != nil {
					return err
				}

				out.Success(fmt.Sprintf("Graph stored: %s", stored.Name))
				printGraphs(out, []domain.StoredGraph{*stored})
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Graph name (required)")
	cmd.MarkFlagRequired("name")

	return cmd
}

func newGraphListCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored graphs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, app *App, out *Output) error {
				graphs, err := app.GraphRepo(ctx)
				if err != nil {
					return err
				}

				list, err := graphs.List(ctx)
				if err != nil {
					return err
				}

				printGraphs(out, list)
				return nil
			})
		},
	}
}

func newGraphShowCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Show a stored graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, app *App, out *Output) error {
				graphs, err := app.GraphRepo(ctx)
				if err != nil {
					return err
				}

				stored, err := graphs.Get(ctx, args[0])
				if err != nil {
					return fmt.Errorf("graph %s: %w", args[0], err)
				}

				printGraphs(out, []domain.StoredGraph{*stored})
				return nil
			})
		},
	}
}

func newGraphDeleteCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a stored graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, app *App, out *Output) error {
				graphs, err := app.GraphRepo(ctx)
				if err != nil {
					return err
				}

				if err := graphs.Delete(ctx, args[0]); err != nil {
					return fmt.Errorf("graph %s: %w", args[0], err)
				}

				out.Success("Graph deleted: " + args[0])
				return nil
			})
		},
	}
}

func printGraphs(out *Output, graphs []domain.StoredGraph) {
	rows := make([][]string, len(graphs))
	for i, g := range graphs {
		rows[i] = []string{
			g.Name,
			strconv.Itoa(g.Nodes),
			strconv.Itoa(g.Edges),
			g.UpdatedAt.Format(time.RFC3339),
		}
	}
	out.Print([]string{"NAME", "NODES", "EDGES", "UPDATED"}, rows, graphs)
}

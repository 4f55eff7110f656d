package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shaiso/daxgen/internal/service"
)

// Пути артефактов по умолчанию.
const (
	DefaultWorkflowPath = "wf.dax"
	DefaultCatalogPath  = "rc.txt"
)

// GenerateSummary — итог generate для JSON-вывода.
type GenerateSummary struct {
	RunID        string `json:"run_id"`
	Name         string `json:"name"`
	Workflow     string `json:"workflow"`
	Catalog      string `json:"catalog"`
	Jobs         int    `json:"jobs"`
	Dependencies int    `json:"dependencies"`
	Files        int    `json:"files"`
	Replicas     int    `json:"replicas"`
}

// NewGenerateCmd создаёт команду generate.
func NewGenerateCmd(r *runner) *cobra.Command {
	var (
		workflowPath string
		catalogPath  string
		name         string
		site         string
		strict       bool
	)

	cmd := &cobra.Command{
		Use:   "generate SOURCE",
		Short: "Generate a DAX workflow and replica catalog from a graph",
		Long: `Generate reads a bipartite file/task graph and writes a Pegasus DAX
workflow and a replica catalog.

SOURCE is a local path, s3://bucket/key or pg:<graph-name>. The input
format is chosen by file extension (see "daxgen formats"). Without -o
and -c the artifacts go to wf.dax and rc.txt in the current directory.`,
		Example: `  daxgen generate graph.json
  daxgen generate graph.json -o workflow.dax -c rc.txt
  daxgen generate s3://graphs/lsst.graphml -o s3://wf/lsst.dax -c s3://wf/rc.txt --var butler=/repo`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, app *App, out *Output) error {
				if cmd.Flags().Changed("site") {
					app.Config.DefaultSite = site
				}
				if cmd.Flags().Changed("strict") {
					app.Config.StrictAcyclic = strict
				}

				svc, err := app.Service(ctx)
				if err != nil {
					return err
				}

				res, err := svc.Run(ctx, service.Request{
					Source:       args[0],
					WorkflowPath: workflowPath,
					CatalogPath:  catalogPath,
					Options:      service.Options{Name: name},
				})
				if err != nil {
					return err
				}

				stats := res.Workflow.Stats()
				summary := GenerateSummary{
					RunID:        res.Workflow.RunID.String(),
					Name:         res.Workflow.Name,
					Workflow:     res.WorkflowRef.URI,
					Catalog:      res.CatalogRef.URI,
					Jobs:         stats.Jobs,
					Dependencies: stats.Dependencies,
					Files:        stats.Files,
					Replicas:     stats.Replicas,
				}

				out.Success(fmt.Sprintf("Workflow %q written to %s, replica catalog to %s",
					summary.Name, summary.Workflow, summary.Catalog))
				out.Print(
					[]string{"RUN", "JOBS", "DEPENDENCIES", "FILES", "REPLICAS"},
					[][]string{{
						summary.RunID,
						strconv.Itoa(summary.Jobs),
						strconv.Itoa(summary.Dependencies),
						strconv.Itoa(summary.Files),
						strconv.Itoa(summary.Replicas),
					}},
					summary,
				)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&workflowPath, "output", "o", DefaultWorkflowPath, "Workflow (DAX) output path")
	cmd.Flags().StringVarP(&catalogPath, "catalog", "c", DefaultCatalogPath, "Replica catalog output path")
	cmd.Flags().StringVar(&name, "name", "", "Workflow name (default from config)")
	cmd.Flags().StringVar(&site, "site", "", "Default site for replicas without sites")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on cyclic job dependencies")

	return cmd
}

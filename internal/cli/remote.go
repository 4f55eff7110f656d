package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shaiso/daxgen/internal/graphio"
)

// NewRemoteCmd создаёт группу команд для работы с сервером daxgen по HTTP.
func NewRemoteCmd(clientFn func() *Client, outputFn func(*cobra.Command) *Output, varsFn func() []string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Work with a daxgen API server",
	}

	cmd.AddCommand(
		newRemoteCompileCmd(clientFn, outputFn, varsFn),
		newRemoteSubmitCmd(clientFn, outputFn, varsFn),
		newRemoteFormatsCmd(clientFn, outputFn),
		newRemoteGraphsCmd(clientFn, outputFn),
	)

	return cmd
}

func newRemoteCompileCmd(clientFn func() *Client, outputFn func(*cobra.Command) *Output, varsFn func() []string) *cobra.Command {
	var (
		input   string
		name    string
		stored  bool
		dax     string
		catalog string
	)

	cmd := &cobra.Command{
		Use:   "compile FILE|NAME",
		Short: "Compile a graph on the server",
		Long: `Compile a local graph file on the server, or a stored graph with --stored.

Without -o and -c the DAX document is written to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn(cmd)

			vars, err := parseVars(varsFn())
			if err != nil {
				return err
			}
			opts := CompileOpts{Input: input, Name: name, Vars: vars}

			var wf *WorkflowResponse
			if stored {
				wf, err = client.CompileStored(args[0], opts)
			} else {
				data, rerr := os.ReadFile(args[0])
				if rerr != nil {
					return rerr
				}
				if opts.Input == "" {
					opts.Input = graphio.Ext(args[0])
				}
				wf, err = client.Compile(data, opts)
			}
			if err != nil {
				return err
			}

			if out.JSONMode() {
				out.JSON(wf)
				return nil
			}

			if dax == "" && catalog == "" {
				out.Raw([]byte(wf.DAX))
				return nil
			}
			if dax != "" {
				if err := os.WriteFile(dax, []byte(wf.DAX), 0o644); err != nil {
					return err
				}
			}
			if catalog != "" {
				if err := os.WriteFile(catalog, []byte(wf.Catalog), 0o644); err != nil {
					return err
				}
			}
			out.Success(fmt.Sprintf("Workflow %s compiled: run %s, %d jobs", wf.Name, wf.RunID, wf.Stats["jobs"]))
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Graph format (default: by file extension)")
	cmd.Flags().StringVar(&name, "name", "", "Workflow name")
	cmd.Flags().BoolVar(&stored, "stored", false, "Compile a graph stored on the server by name")
	cmd.Flags().StringVarP(&dax, "output", "o", "", "Write DAX to file")
	cmd.Flags().StringVarP(&catalog, "catalog", "c", "", "Write replica catalog to file")

	return cmd
}

func newRemoteSubmitCmd(clientFn func() *Client, outputFn func(*cobra.Command) *Output, varsFn func() []string) *cobra.Command {
	var req SubmitRequest

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Queue a generation request on the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn(cmd)

			vars, err := parseVars(varsFn())
			if err != nil {
				return err
			}
			req.Vars = vars

			id, err := client.Submit(req)
			if err != nil {
				return err
			}

			if out.JSONMode() {
				out.JSON(map[string]string{"message_id": id})
				return nil
			}
			out.Success(fmt.Sprintf("Request queued: %s", id))
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Source, "source", "", "Graph URI (required)")
	cmd.Flags().StringVar(&req.WorkflowPath, "workflow", "", "Output URI for the DAX document (required)")
	cmd.Flags().StringVar(&req.CatalogPath, "catalog", "", "Output URI for the replica catalog (required)")
	cmd.Flags().StringVar(&req.Name, "name", "", "Workflow name")
	cmd.MarkFlagRequired("source")
	cmd.MarkFlagRequired("workflow")
	cmd.MarkFlagRequired("catalog")

	return cmd
}

func newRemoteFormatsCmd(clientFn func() *Client, outputFn func(*cobra.Command) *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List graph formats supported by the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn(cmd)

			formats, err := client.Formats()
			if err != nil {
				return err
			}

			headers := []string{"NAME", "EXTENSIONS", "ENCODE"}
			rows := make([][]string, len(formats))
			for i, f := range formats {
				rows[i] = []string{f.Name, strings.Join(f.Extensions, ", "), strconv.FormatBool(f.CanEncode)}
			}

			out.Print(headers, rows, formats)
			return nil
		},
	}
}

func newRemoteGraphsCmd(clientFn func() *Client, outputFn func(*cobra.Command) *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graphs",
		Short: "Manage graphs stored on the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn(cmd)

			graphs, err := client.ListGraphs()
			if err != nil {
				return err
			}
			printRemoteGraphs(out, graphs)
			return nil
		},
	}

	var input string
	push := &cobra.Command{
		Use:   "push NAME FILE",
		Short: "Upload a graph to the server",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn(cmd)

			data, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			format := input
			if format == "" {
				format = graphio.Ext(args[1])
			}

			g, err := client.PushGraph(args[0], format, data)
			if err != nil {
				return err
			}
			out.Success(fmt.Sprintf("Graph stored: %s", g.Name))
			printRemoteGraphs(out, []GraphResponse{*g})
			return nil
		},
	}
	push.Flags().StringVar(&input, "input", "", "Graph format (default: by file extension)")

	remove := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a graph stored on the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := clientFn().DeleteGraph(args[0]); err != nil {
				return err
			}
			outputFn(cmd).Success(fmt.Sprintf("Graph %s deleted", args[0]))
			return nil
		},
	}

	cmd.AddCommand(push, remove)
	return cmd
}

func printRemoteGraphs(out *Output, graphs []GraphResponse) {
	headers := []string{"NAME", "NODES", "EDGES", "UPDATED"}
	rows := make([][]string, len(graphs))
	for i, g := range graphs {
		rows[i] = []string{g.Name, strconv.Itoa(g.Nodes), strconv.Itoa(g.Edges), g.UpdatedAt}
	}
	out.Print(headers, rows, graphs)
}

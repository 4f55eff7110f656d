package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// NewRootCmd создаёт корневую команду daxgen.
func NewRootCmd(version string) *cobra.Command {
	opts := &GlobalOptions{}

	rootCmd := &cobra.Command{
		Use:           "daxgen",
		Short:         "daxgen — compile file/task graphs into Pegasus DAX workflows",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "HCL config file")
	flags.StringVar(&opts.LogLevel, "log-level", "", "Log level: DEBUG, INFO, WARN, ERROR")
	flags.StringVar(&opts.LogFormat, "log-format", "", "Log format: json or text")
	flags.StringArrayVar(&opts.Vars, "var", nil, "Template variable key=value (repeatable)")
	flags.BoolVar(&opts.JSON, "json", false, "Output in JSON format")
	flags.StringVar(&opts.APIURL, "api-url", "http://localhost:8080", "API server URL for remote commands")

	r := &runner{opts: opts}
	clientFn := func() *Client { return NewClient(opts.APIURL) }

	rootCmd.AddCommand(
		NewGenerateCmd(r),
		NewInspectCmd(r),
		NewFormatsCmd(r),
		NewConvertCmd(r),
		NewGraphCmd(r),
		NewServeCmd(r),
		NewWorkerCmd(r),
		NewRemoteCmd(clientFn, r.output, func() []string { return opts.Vars }),
	)

	return rootCmd
}

// runner создаёт App для команды и закрывает его после выполнения.
type runner struct {
	opts *GlobalOptions
}

// run выполняет fn с готовыми App и Output.
func (r *runner) run(cmd *cobra.Command, fn func(ctx context.Context, app *App, out *Output) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	app, err := r.opts.NewApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close(context.WithoutCancel(ctx))

	return fn(ctx, app, r.output(cmd))
}

func (r *runner) output(cmd *cobra.Command) *Output {
	return NewOutput(r.opts.JSON, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

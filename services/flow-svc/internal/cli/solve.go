package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"flowtrace/pkg/domain"
	"flowtrace/services/flow-svc/internal/examples"
	"flowtrace/services/flow-svc/internal/input"
	"flowtrace/services/flow-svc/internal/report"
	"flowtrace/services/flow-svc/internal/service"
)

// solveOpts флаги команды solve
type solveOpts struct {
	example       string        // встроенный пример
	file          string        // файл сети: .json, .yaml, .toml
	source        int           // переопределение источника
	sink          int           // переопределение стока
	format        string        // формат отчёта
	output        string        // файл отчёта, пусто - stdout
	noSnapshots   bool          // не сохранять остаточные матрицы шагов
	maxIterations int           // 0 - из конфигурации
	timeout       time.Duration // 0 - из конфигурации
}

var errExampleAndFile = errors.New("--example and --file are mutually exclusive")

func newSolveCmd(a *app) *cobra.Command {
	opts := solveOpts{format: string(report.FormatMarkdown)}

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Compute the maximum flow of a network and print its trace",
		Long: `Compute the maximum flow of a built-in example or a network file and
write the step log as a report. Without --example and --file the default
example is used.`,
		Example: `  flowtrace solve --example clrs
  flowtrace solve --file network.yaml --format csv --out trace.csv
  flowtrace solve --example diamond --sink 2 --format svg -o diamond.svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			net, err := opts.network()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("source") {
				net.Source = opts.source
			}
			if cmd.Flags().Changed("sink") {
				net.Sink = opts.sink
			}
			return runSolve(cmd.Context(), a, net, &opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&opts.example, "example", "e", "", fmt.Sprintf("built-in example: %v", examples.Names()))
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "network file (.json, .yaml, .toml)")
	cmd.Flags().IntVar(&opts.source, "source", 0, "override the source vertex")
	cmd.Flags().IntVar(&opts.sink, "sink", 0, "override the sink vertex")
	cmd.Flags().StringVar(&opts.format, "format", opts.format, "report format: json, csv, markdown, xlsx, pdf, dot, svg")
	cmd.Flags().StringVarP(&opts.output, "out", "o", "", "write the report to a file instead of stdout")
	cmd.Flags().BoolVar(&opts.noSnapshots, "no-snapshots", false, "do not record residual matrices per step")
	cmd.Flags().IntVar(&opts.maxIterations, "max-iterations", 0, "stop after this many augmentations (0: config value)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "computation timeout (0: config value)")

	return cmd
}

// network загружает сеть из примера или файла
func (o *solveOpts) network() (*domain.Network, error) {
	switch {
	case o.example != "" && o.file != "":
		return nil, errExampleAndFile
	case o.file != "":
		return input.LoadFile(o.file)
	default:
		name := o.example
		if name == "" {
			name = examples.Default
		}
		ex, ok := examples.Get(name)
		if !ok {
			return nil, fmt.Errorf("unknown example %q, available: %v", name, examples.Names())
		}
		net := ex.Network
		return &net, nil
	}
}

func runSolve(ctx context.Context, a *app, net *domain.Network, opts *solveOpts, stdout, stderr io.Writer) error {
	svc := service.NewFlowService(a.cfg.App.Version, a.cfg.Solver,
		service.WithReports(report.NewRegistry(report.OptionsFromConfig(a.cfg.Report))),
	)

	runOpts := service.RunOptions{
		MaxIterations: opts.maxIterations,
		Timeout:       opts.timeout,
		NoCache:       true,
		NoHistory:     true,
	}
	if opts.noSnapshots {
		off := false
		runOpts.RecordSnapshots = &off
	}

	res, err := svc.Solve(ctx, &service.SolveRequest{
		Name:    net.Name,
		Matrix:  net.Matrix,
		Source:  net.Source,
		Sink:    net.Sink,
		Options: runOpts,
	})
	if err != nil {
		return err
	}

	rep, err := svc.ResultReport(ctx, res, opts.format)
	if err != nil {
		return err
	}

	if opts.output == "" {
		_, err = stdout.Write(rep.Content)
		return err
	}

	if err := os.WriteFile(opts.output, rep.Content, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Fprintf(stderr, "max flow %d in %d augmentations, %s report written to %s\n",
		res.Trace.MaxFlow, res.Trace.StepCount(), rep.Format, opts.output)
	return nil
}

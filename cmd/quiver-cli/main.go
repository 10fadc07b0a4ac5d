package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/olekukonko/tablewriter"

	"github.com/paveg/quiver"
	"github.com/paveg/quiver/internal/config"
	"github.com/paveg/quiver/internal/version"
)

const (
	formatIPC     = "ipc"
	formatParquet = "parquet"
)

func customUsage() {
	fmt.Fprintf(os.Stderr, "Quiver table adapter CLI (version %s)\n\n", version.Version)
	fmt.Fprintf(os.Stderr, "Usage: quiver-cli [options] FILE\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	fmt.Fprintf(os.Stderr, "  --format ipc|parquet\n\t\tInput encoding (default: ipc)\n")
	fmt.Fprintf(os.Stderr, "  --config FILE\n\t\tJSON or YAML configuration file\n")
	fmt.Fprintf(os.Stderr, "  --append FILE\n\t\tAppend the rows of another payload before rendering\n")
	fmt.Fprintf(os.Stderr, "  --rows N\n\t\tNumber of grid rows to render (default: max_display_rows)\n")
	fmt.Fprintf(os.Stderr, "  -v, --version\n\t\tPrint version information and exit\n")
	fmt.Fprintf(os.Stderr, "  -h, --help\n\t\tShow this help message and exit\n")
}

type cliOptions struct {
	format     string
	configFile string
	appendFile string
	rows       int
}

func main() {
	versionFlag := flag.Bool("v", false, "Print version and exit")
	flag.BoolVar(versionFlag, "version", false, "Print version and exit") // alias
	var opts cliOptions
	flag.StringVar(&opts.format, "format", formatIPC, "Input encoding")
	flag.StringVar(&opts.configFile, "config", "", "Configuration file")
	flag.StringVar(&opts.appendFile, "append", "", "Payload to append")
	flag.IntVar(&opts.rows, "rows", 0, "Number of grid rows to render")

	//nolint:reassign // Standard Go pattern for customizing flag usage message
	flag.Usage = customUsage
	flag.Parse()

	if *versionFlag {
		fmt.Print(version.Info().String())
		return
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(os.Stdout, logger, flag.Arg(0), opts); err != nil {
		logger.Error("quiver-cli failed", "error", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.LoadFromEnv(), nil
	}
	return config.LoadFromFile(path)
}

func run(out io.Writer, logger *slog.Logger, path string, opts cliOptions) error {
	cfg, err := loadConfig(opts.configFile)
	if err != nil {
		return err
	}
	if cfg.VerboseLogging {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	qopts := []quiver.Option{quiver.WithConfig(cfg), quiver.WithLogger(logger)}

	q, err := open(path, opts.format, qopts)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	defer q.Release()

	if opts.appendFile != "" {
		increment, err := open(opts.appendFile, opts.format, qopts)
		if err != nil {
			return fmt.Errorf("reading %s: %w", opts.appendFile, err)
		}
		defer increment.Release()

		combined, err := q.AddRows(increment)
		if err != nil {
			return err
		}
		defer combined.Release()
		q = combined
	}

	rows := opts.rows
	if rows <= 0 {
		rows = cfg.MaxDisplayRows
	}
	describe(out, q)
	if err := render(out, q, rows); err != nil {
		return err
	}
	if cfg.MetricsCollection {
		reportMetrics(out, quiver.GlobalMetrics())
	}
	return nil
}

func reportMetrics(out io.Writer, summary quiver.MetricsSummary) {
	ops := make([]string, 0, len(summary.OperationCounts))
	for op := range summary.OperationCounts {
		ops = append(ops, op)
	}
	sort.Strings(ops)

	fmt.Fprintf(out, "Operations: %d (failed %d, rows %d, %s)\n",
		summary.TotalOperations, summary.TotalFailures, summary.TotalRows, summary.TotalDuration)
	for _, op := range ops {
		fmt.Fprintf(out, "  %s: %d\n", op, summary.OperationCounts[op])
	}
}

func open(path, format string, opts []quiver.Option) (*quiver.Quiver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case formatIPC:
		return quiver.New(data, nil, opts...)
	case formatParquet:
		return quiver.FromParquet(bytes.NewReader(data), opts...)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

func describe(out io.Writer, q *quiver.Quiver) {
	d := q.Dimensions()
	fmt.Fprintf(out, "Rows: %d (header %d, data %d)\n", d.Rows, d.HeaderRows, d.DataRows)
	fmt.Fprintf(out, "Columns: %d (header %d, data %d)\n", d.Columns, d.HeaderColumns, d.DataColumns)
	fmt.Fprintf(out, "Index names: %q\n", q.IndexNames())

	types := q.Types()
	indexTypes := make([]string, len(types.Index))
	for i, t := range types.Index {
		indexTypes[i] = quiver.TypeName(t)
	}
	dataTypes := make([]string, len(types.Data))
	for i, t := range types.Data {
		dataTypes[i] = quiver.TypeName(t)
	}
	fmt.Fprintf(out, "Index types: %v\n", indexTypes)
	fmt.Fprintf(out, "Data types: %v\n", dataTypes)
	if caption := q.Caption(); caption != "" {
		fmt.Fprintf(out, "Caption: %s\n", caption)
	}
}

// render draws the first rows of the grid. Header rows become the table
// header, joined per column.
func render(out io.Writer, q *quiver.Quiver, rows int) error {
	d := q.Dimensions()
	if d.Columns == 0 {
		return nil
	}

	table := tablewriter.NewWriter(out)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	header := make([]string, d.Columns)
	for row := 0; row < d.HeaderRows; row++ {
		for col := 0; col < d.Columns; col++ {
			cell, err := q.Cell(row, col)
			if err != nil {
				return err
			}
			if content := cell.DisplayString(); content != "" {
				if header[col] != "" {
					header[col] += " / "
				}
				header[col] += content
			}
		}
	}
	table.SetHeader(header)

	last := min(d.Rows, d.HeaderRows+rows)
	for row := d.HeaderRows; row < last; row++ {
		line := make([]string, d.Columns)
		for col := 0; col < d.Columns; col++ {
			cell, err := q.Cell(row, col)
			if err != nil {
				return err
			}
			line[col] = cell.DisplayString()
		}
		table.Append(line)
	}
	table.Render()

	if hidden := d.Rows - last; hidden > 0 {
		fmt.Fprintf(out, "... %d more rows\n", hidden)
	}
	return nil
}

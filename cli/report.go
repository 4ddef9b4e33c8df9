package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"dwellmetrics/api/analytics"
	"dwellmetrics/api/config"
	"dwellmetrics/api/database"
	"dwellmetrics/api/logging"
	"dwellmetrics/api/store"
	"dwellmetrics/api/utils"
)

type reportOptions struct {
	user      string
	path      string
	dateRange string
	start     string
	end       string
	tz        string
	file      string
	workers   int
	topN      int
}

func newReportCmd(root *rootOptions) *cobra.Command {
	opts := &reportOptions{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a tracking report as JSON",
		Long: `Compute the composite tracking report once and print it as JSON.

Examples:
  dwellmetrics report                                  # All time, all users
  dwellmetrics report --range 7d --user 42             # Last week for one user
  dwellmetrics report --path /docs --tz Europe/Rome    # One page, local buckets
  dwellmetrics report --file export.json --range all   # From an exported events file`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.user, "user", "u", "", "Filter by user id")
	f.StringVarP(&opts.path, "path", "p", "", "Filter by page URL (\"all\" for every page)")
	f.StringVarP(&opts.dateRange, "range", "r", analytics.RangeAll, "Date range: today, 24h, 7d, 30d, all")
	f.StringVar(&opts.start, "start", "", "Custom window start (RFC3339)")
	f.StringVar(&opts.end, "end", "", "Custom window end (RFC3339)")
	f.StringVar(&opts.tz, "tz", "", "IANA time zone for hour and month buckets")
	f.StringVarP(&opts.file, "file", "f", "", "Read events from a JSON export instead of the database")
	f.IntVar(&opts.workers, "workers", 0, "Sessions reconstructed in parallel (default: configured or CPU count)")
	f.IntVar(&opts.topN, "top", 0, "Entries kept in ranked chart series (default: configured)")
	return cmd
}

func runReport(cmd *cobra.Command, root *rootOptions, opts *reportOptions) error {
	ctx := cmd.Context()

	q, err := opts.query()
	if err != nil {
		return err
	}

	var (
		source   analytics.EventSource
		settings config.AnalyticsConfig
		logger   logrus.FieldLogger
	)
	if opts.file != "" {
		source = store.NewFileEventSource(opts.file)
		settings = config.AnalyticsConfig{QueryTimeout: analytics.DefaultQueryTimeout, TopN: analytics.DefaultTopN}
		logger = logging.Discard()
	} else {
		cfg, err := config.Load(root.envFiles...)
		if err != nil {
			return err
		}
		log := logging.New(cfg.LogLevel, cfg.Server.Release)
		log.SetOutput(cmd.ErrOrStderr())
		logger = log

		events, closeStore, err := openReportStore(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer closeStore()
		source = events
		settings = cfg.Analytics
	}

	if opts.workers > 0 {
		settings.Workers = opts.workers
	}
	if opts.topN > 0 {
		settings.TopN = opts.topN
	}

	svc := analytics.NewService(source, newEngine(settings),
		analytics.WithTimeout(settings.QueryTimeout),
		analytics.WithLogger(logger),
	)
	report, err := svc.Report(ctx, q)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func (o *reportOptions) query() (analytics.Query, error) {
	start, err := utils.ParseTimeParam("start", o.start)
	if err != nil {
		return analytics.Query{}, err
	}
	end, err := utils.ParseTimeParam("end", o.end)
	if err != nil {
		return analytics.Query{}, err
	}
	loc, err := utils.ParseLocation(o.tz)
	if err != nil {
		return analytics.Query{}, err
	}
	return analytics.Query{
		UserID:    o.user,
		Path:      o.path,
		DateRange: o.dateRange,
		Start:     start,
		End:       end,
		Location:  loc,
	}, nil
}

func openReportStore(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (store.EventStore, func(), error) {
	if cfg.Analytics.Backend != config.BackendPostgres {
		return openEventStore(ctx, cfg, nil, logger)
	}
	pg, err := database.NewPostgresDB(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, nil, err
	}
	events, closeEvents, err := openEventStore(ctx, cfg, pg, logger)
	if err != nil {
		pg.Close()
		return nil, nil, err
	}
	return events, func() {
		closeEvents()
		pg.Close()
	}, nil
}

package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/spektr-org/bizlens/api"
	"github.com/spektr-org/bizlens/insights"
	"github.com/spektr-org/bizlens/logging"
	"github.com/spektr-org/bizlens/schema"
	"github.com/spektr-org/bizlens/store"
)

func (a *app) queryCommand() *cobra.Command {
	var (
		params  map[string]string
		format  string
		outFile string
	)
	cmd := &cobra.Command{
		Use:   "query <view>",
		Short: "Compute one view",
		Example: `  bizlens query category-popularity --param city=Tampa
  bizlens query open-day-feedback -p min_star=4 --format csv --out feedback.csv
  bizlens query traffic -p city=Reno --format chart`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			return a.withService(cmd.Context(), func(s *insights.Service) error {
				res, err := s.Execute(cmd.Context(), insights.Request{View: args[0], Params: params})
				if err != nil {
					return err
				}
				return writeTo(outFile, func(w *os.File) error { return writeResult(w, res, format) })
			})
		},
	}
	cmd.Flags().StringToStringVarP(&params, "param", "p", nil, "view parameter as key=value, repeatable")
	cmd.Flags().StringVarP(&format, "format", "f", FormatJSON, "output format: json, pretty, csv, text, chart")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "write output to file instead of stdout")
	return cmd
}

func (a *app) dashboardCommand() *cobra.Command {
	var (
		city    string
		minStar int
		pretty  bool
	)
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Compute every city view concurrently",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withService(cmd.Context(), func(s *insights.Service) error {
				d, err := s.Dashboard(cmd.Context(), city, minStar)
				if err != nil {
					return err
				}
				format := FormatJSON
				if pretty {
					format = FormatPretty
				}
				return writeJSON(os.Stdout, d, format)
			})
		},
	}
	cmd.Flags().StringVar(&city, "city", "", "city to analyse (required)")
	cmd.Flags().IntVar(&minStar, "min-star", 4, "minimum review rating of the feedback view")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent the JSON output")
	_ = cmd.MarkFlagRequired("city")
	return cmd
}

func (a *app) serveCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the views over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			return a.withService(cmd.Context(), func(s *insights.Service) error {
				return api.New(s, a.cfg.Server).Run(cmd.Context())
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

func (a *app) viewsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "views",
		Short: "List the available views and their parameters",
		// The catalogue needs no configuration or data.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "VIEW\tPARAMETERS\tDESCRIPTION")
			for _, v := range schema.Catalog() {
				var ps []string
				for _, p := range v.Params {
					name := p.Name
					if !p.Required {
						name = "[" + name + "]"
					}
					ps = append(ps, name)
				}
				params := strings.Join(ps, " ")
				if params == "" {
					params = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", v.Name, params, v.Description)
			}
			return tw.Flush()
		},
	}
}

func (a *app) importCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load the JSON-lines dataset into the configured database",
		Long: `Reads the JSON-lines files from --data-dir (or data.dir) and writes
them into the yelp_* tables of the postgres or sqlite database named by
data.source and data.dsn, creating the tables first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data := a.cfg.Data
			if data.Source == "jsonl" {
				return fmt.Errorf("import needs data.source postgres or sqlite, got %q", data.Source)
			}
			ctx := cmd.Context()

			snap, err := store.LoadJSONLines(ctx, data.Dir)
			if err != nil {
				return err
			}
			db, err := store.Open(data.Source, data.DSN)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Migrate(ctx); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			if err := db.Import(ctx, snap); err != nil {
				return err
			}
			logging.Info().Str("source", data.Source).Interface("counts", snap.Counts()).Msg("dataset imported")
			return nil
		},
	}
	return cmd
}

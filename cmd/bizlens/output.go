package main

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"

	"github.com/spektr-org/bizlens/engine"
	"github.com/spektr-org/bizlens/helpers"
	"github.com/spektr-org/bizlens/insights"
	"github.com/spektr-org/bizlens/logging"
)

// Output formats of the query command.
const (
	FormatJSON   = "json"
	FormatPretty = "pretty"
	FormatCSV    = "csv"
	FormatText   = "text"
	FormatChart  = "chart"
)

func checkFormat(format string) error {
	switch format {
	case FormatJSON, FormatPretty, FormatCSV, FormatText, FormatChart:
		return nil
	}
	return fmt.Errorf("unknown format %q (json, pretty, csv, text, chart)", format)
}

// ============================================================================
// RESULT OUTPUT
// ============================================================================

func writeResult(w io.Writer, res *insights.Result, format string) error {
	switch format {
	case FormatCSV:
		return helpers.WriteTableCSV(w, res.Table)
	case FormatChart:
		if res.Chart == nil {
			return fmt.Errorf("view %s has no chart", res.View)
		}
		return helpers.WriteChartCSV(w, res.Chart)
	case FormatText:
		_, err := fmt.Fprint(w, engine.BuildText(res.Table, engine.DefaultTextLines).String())
		return err
	default:
		return writeJSON(w, res, format)
	}
}

// ============================================================================
// JSON OUTPUT
// ============================================================================

func writeJSON(w io.Writer, v any, format string) error {
	var (
		out []byte
		err error
	)
	if format == FormatPretty {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// writeTo runs fn against path, or stdout when path is empty.
func writeTo(path string, fn func(*os.File) error) error {
	if path == "" {
		return fn(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logging.Info().Str("path", path).Msg("output written")
	return nil
}

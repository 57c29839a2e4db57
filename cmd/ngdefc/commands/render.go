package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"ngdefc/internal/metadata"
	"ngdefc/internal/pipeline"
	"ngdefc/packages/compiler/util"
)

var (
	errorLabel   = color.New(color.FgRed, color.Bold)
	pathLabel    = color.New(color.FgYellow)
	okLabel      = color.New(color.FgGreen)
	problemLabel = color.New(color.FgRed)
	hintLabel    = color.New(color.FgCyan)
)

// printDiagnostic writes err as a colored diagnostic for path.
func printDiagnostic(w io.Writer, path string, err error) {
	var verr *metadata.ValidationError
	if errors.As(err, &verr) {
		errorLabel.Fprint(w, "error")
		fmt.Fprint(w, ": ")
		pathLabel.Fprint(w, path)
		fmt.Fprintln(w, ": document does not match the metadata schema")
		for _, p := range verr.Problems {
			problemLabel.Fprintf(w, "  - %s: %s\n", p.Field, p.Description)
		}
		return
	}

	errorLabel.Fprint(w, "error")
	if kind := compileErrorKind(err); kind != "" {
		fmt.Fprintf(w, "[%s]", kind)
	}
	fmt.Fprint(w, ": ")
	pathLabel.Fprint(w, path)
	fmt.Fprintf(w, ": %v\n", trimPathPrefix(err.Error(), path))
}

func compileErrorKind(err error) string {
	var cerr *util.CompileError
	if !errors.As(err, &cerr) || cerr.Kind == nil {
		return ""
	}
	return cerr.Kind.Error()
}

func trimPathPrefix(msg, path string) string {
	return strings.TrimPrefix(msg, path+": ")
}

// renderSummary lays the unit results out as a table.
func renderSummary(w io.Writer, results []pipeline.DocumentResult) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateColumns = false

	tbl.AppendHeader(table.Row{"Document", "Unit", "Kind", "Status", "Time", "Size", "Constants"})

	var (
		units, failed int
		bytes         uint64
	)
	for _, doc := range results {
		if len(doc.Units) == 0 && doc.Err != nil {
			tbl.AppendRow(table.Row{doc.Path, "-", "-", "error", "-", "-", "-"})
			failed++
			continue
		}
		for _, u := range doc.Units {
			units++
			status := "ok"
			if u.Err != nil {
				status = "error"
				failed++
			}
			bytes += uint64(u.EmittedBytes)
			tbl.AppendRow(table.Row{
				doc.Path, u.Name, string(u.Kind), status,
				u.Duration.Round(time.Microsecond).String(),
				humanize.Bytes(uint64(u.EmittedBytes)),
				u.PooledConstants,
			})
		}
	}

	tbl.AppendFooter(table.Row{
		fmt.Sprintf("%d document(s)", len(results)),
		fmt.Sprintf("%d unit(s)", units),
		"",
		fmt.Sprintf("%d failed", failed),
		"",
		humanize.Bytes(bytes),
		"",
	})
	tbl.Render()
}

func printOK(w io.Writer, path, msg string) {
	okLabel.Fprint(w, "ok")
	fmt.Fprint(w, ": ")
	pathLabel.Fprint(w, path)
	fmt.Fprintf(w, ": %s\n", msg)
}

func printHint(w io.Writer, msg string) {
	hintLabel.Fprintf(w, "  hint: %s\n", msg)
}

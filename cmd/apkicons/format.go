package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/jward/apkicons"
)

// formatIconsText formats CLIIcon results as aligned columns.
func formatIconsText(w io.Writer, icons []CLIIcon) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SCOPE\tTYPE\tCAPTION\tSIZE\tPATH")
	for _, icon := range icons {
		size := "-"
		if icon.Width > 0 {
			size = fmt.Sprintf("%dx%d", icon.Width, icon.Height)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", icon.Scope, icon.Type, icon.Caption, size, icon.Path)
	}
	tw.Flush()
}

// formatScopesText formats CLIScope results as aligned columns.
func formatScopesText(w io.Writer, scopes []CLIScope) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SCOPE\tICON\tROUND ICON\tBANNER")
	for _, s := range scopes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.Caption, orDash(s.Icon), orDash(s.RoundIcon), orDash(s.Banner))
	}
	tw.Flush()
}

func formatEditsText(w io.Writer, edits []CLIEdit) {
	for _, e := range edits {
		fmt.Fprintf(w, "%s %s\n", e.Action, e.Path)
	}
}

// formatDiffText prints one line per change, prefixed +, - or ~.
func formatDiffText(w io.Writer, d apkicons.SnapshotDiff) {
	if d.Empty() {
		fmt.Fprintln(w, "No changes")
		return
	}
	for _, r := range d.Added {
		fmt.Fprintf(w, "+ %s (%s %s)\n", r.Path, r.Scope, r.Type)
	}
	for _, r := range d.Removed {
		fmt.Fprintf(w, "- %s (%s %s)\n", r.Path, r.Scope, r.Type)
	}
	for _, r := range d.Changed {
		fmt.Fprintf(w, "~ %s (%s %s)\n", r.Path, r.Scope, r.Type)
	}
}

func formatHistoryText(w io.Writer, states []CLIIconState) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SNAPSHOT\tLABEL\tTAKEN\tHASH")
	for _, s := range states {
		hash := s.Hash
		if len(hash) > 12 {
			hash = hash[:12]
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", s.SnapshotID, orDash(s.Label), s.TakenAt.Format("2006-01-02 15:04:05"), orDash(hash))
	}
	tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// outputResult writes a result in the selected format.
func outputResult(result CLIResult) error {
	if format == "text" {
		return outputResultText(result)
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In JSON mode the error is written to stdout as a
// CLIResult envelope. In text mode it goes to stderr.
func outputError(command string, err error) error {
	errorHandled = true
	if format == "text" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return err
	}
	result := CLIResult{
		Command: command,
		Error:   err.Error(),
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
	return err
}

// outputResultText dispatches to the appropriate text formatter based on the
// result type.
func outputResultText(result CLIResult) error {
	w := stdout

	switch v := result.Results.(type) {
	case []CLIIcon:
		formatIconsText(w, v)
	case []CLIScope:
		formatScopesText(w, v)
	case []CLIEdit:
		formatEditsText(w, v)
	case []CLIIconState:
		formatHistoryText(w, v)
	case apkicons.SnapshotDiff:
		formatDiffText(w, v)
	case CLISnapshot:
		fmt.Fprintf(w, "Snapshot %d: %d icons of %s\n", v.ID, v.Icons, v.Root)
	case CLIPrune:
		fmt.Fprintf(w, "Deleted %d snapshots, kept up to %d\n", v.Deleted, v.Kept)
	case nil:
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}
	return nil
}

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(value string) error {
	for _, f := range validFormats {
		if value == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", value, strings.Join(validFormats, " or "))
}

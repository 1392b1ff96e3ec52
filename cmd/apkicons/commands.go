package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/jward/apkicons"
	"github.com/jward/apkicons/internal/manifest"
	"github.com/jward/apkicons/internal/runtime"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List projected icons in display order",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var flagType string

func init() {
	listCmd.Flags().StringVar(&flagType, "type", "", "only list icons of this type: icon|roundIcon|banner")
}

func runList(cmd *cobra.Command, args []string) error {
	var only string
	if flagType != "" {
		t, ok := manifest.ParseIconType(flagType)
		if !ok {
			return outputError("list", fmt.Errorf("unknown icon type %q", flagType))
		}
		only = t.String()
	}

	p, err := openProject()
	if err != nil {
		return outputError("list", err)
	}
	defer p.Close()

	icons := cliIcons(p.model)
	if only != "" {
		icons = slices.DeleteFunc(icons, func(icon CLIIcon) bool { return icon.Type != only })
	}
	total := len(icons)
	return outputResult(CLIResult{Command: "list", Results: icons, TotalCount: &total})
}

var scopesCmd = &cobra.Command{
	Use:   "scopes",
	Short: "List the manifest scopes and their icon references",
	Args:  cobra.NoArgs,
	RunE:  runScopes,
}

func runScopes(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return outputError("scopes", err)
	}
	defer p.Close()

	var out []CLIScope
	for _, s := range p.model.Scopes() {
		out = append(out, toCLIScope(s))
	}
	return outputResult(CLIResult{Command: "scopes", Results: out})
}

var replaceCmd = &cobra.Command{
	Use:   "replace <resource> <image>",
	Short: "Overwrite one icon resource with the content of an image file",
	Args:  cobra.ExactArgs(2),
	RunE:  runReplace,
}

func runReplace(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return outputError("replace", err)
	}
	defer p.Close()

	idx, err := p.iconIndex(args[0])
	if err != nil {
		return outputError("replace", err)
	}
	path := p.model.GetIconPath(idx)
	if err := p.model.ReplaceResource(idx, args[1]); err != nil {
		return outputError("replace", err)
	}
	return outputResult(CLIResult{Command: "replace", Results: []CLIEdit{{Action: "replaced", Path: path}}})
}

var removeCmd = &cobra.Command{
	Use:   "remove <resource>...",
	Short: "Delete icon resources from the project",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRemove,
}

func runRemove(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return outputError("remove", err)
	}
	defer p.Close()

	var edits []CLIEdit
	for _, arg := range args {
		idx, err := p.iconIndex(arg)
		if err != nil {
			return outputError("remove", err)
		}
		path := p.model.GetIconPath(idx)
		if err := p.model.RemoveResource(idx); err != nil {
			return outputError("remove", err)
		}
		edits = append(edits, CLIEdit{Action: "removed", Path: path})
	}
	return outputResult(CLIResult{Command: "remove", Results: edits})
}

var replaceAppCmd = &cobra.Command{
	Use:   "replace-app <image>",
	Short: "Render an image into every application icon variant",
	Long:  "Scales the image to each application icon, round icon and banner variant, keeping each variant's pixel size and file format.",
	Args:  cobra.ExactArgs(1),
	RunE:  runReplaceApp,
}

func runReplaceApp(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return outputError("replace-app", err)
	}
	defer p.Close()

	report, replaceErr := p.model.ReplaceApplicationIcons(args[0])
	var edits []CLIEdit
	for _, path := range report.Written {
		edits = append(edits, CLIEdit{Action: "replaced", Path: path})
	}
	for _, path := range report.Skipped {
		edits = append(edits, CLIEdit{Action: "skipped", Path: path})
	}
	for _, path := range report.Failed {
		edits = append(edits, CLIEdit{Action: "failed", Path: path})
	}
	if replaceErr != nil {
		// Partial success still reports what was written.
		result := CLIResult{Command: "replace-app", Results: edits, Error: replaceErr.Error()}
		if format == "text" {
			return outputError("replace-app", replaceErr)
		}
		errorHandled = true
		_ = outputResult(result)
		return replaceErr
	}
	return outputResult(CLIResult{Command: "replace-app", Results: edits})
}

var flagLabel string

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Record the current icons in the snapshot database",
	Args:  cobra.NoArgs,
	RunE:  runSnapshot,
}

func init() {
	snapshotCmd.Flags().StringVar(&flagLabel, "label", "", "label stored with the snapshot")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return outputError("snapshot", err)
	}
	defer p.Close()

	s, err := p.openStore()
	if err != nil {
		return outputError("snapshot", err)
	}
	defer s.Close()

	id, err := apkicons.SaveSnapshot(s, p.dir, flagLabel, p.model)
	if err != nil {
		return outputError("snapshot", err)
	}
	return outputResult(CLIResult{Command: "snapshot", Results: CLISnapshot{
		ID: id, Root: p.dir, Label: flagLabel, Icons: p.model.Len(),
	}})
}

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Compare the current icons against the latest snapshot",
	Args:  cobra.NoArgs,
	RunE:  runDiff,
}

func runDiff(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return outputError("diff", err)
	}
	defer p.Close()

	s, err := p.openStore()
	if err != nil {
		return outputError("diff", err)
	}
	defer s.Close()

	prev, ok, err := apkicons.LatestSnapshot(s, p.dir)
	if err != nil {
		return outputError("diff", err)
	}
	if !ok {
		return outputError("diff", fmt.Errorf("no snapshot recorded for %s (run 'apkicons snapshot' first)", p.dir))
	}
	return outputResult(CLIResult{Command: "diff", Results: apkicons.DiffSnapshots(prev, p.model.Snapshot())})
}

var historyCmd = &cobra.Command{
	Use:   "history <resource>",
	Short: "Show the recorded states of one icon across snapshots",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return outputError("history", err)
	}
	defer p.Close()

	path, err := p.resourcePath(args[0])
	if err != nil {
		return outputError("history", err)
	}
	s, err := p.openStore()
	if err != nil {
		return outputError("history", err)
	}
	defer s.Close()

	icons, err := s.IconHistory(p.dir, path)
	if err != nil {
		return outputError("history", err)
	}
	var out []CLIIconState
	for _, icon := range icons {
		snap, err := s.SnapshotByID(icon.SnapshotID)
		if err != nil {
			return outputError("history", err)
		}
		state := CLIIconState{SnapshotID: icon.SnapshotID, Scope: icon.Scope, Type: icon.Type, Hash: icon.Hash}
		if snap != nil {
			state.Label = snap.Label
			state.TakenAt = snap.TakenAt
		}
		out = append(out, state)
	}
	total := len(out)
	return outputResult(CLIResult{Command: "history", Results: out, TotalCount: &total})
}

var flagKeep int

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the newest snapshots",
	Args:  cobra.NoArgs,
	RunE:  runPrune,
}

func init() {
	pruneCmd.Flags().IntVar(&flagKeep, "keep", 10, "number of snapshots to keep")
}

func runPrune(cmd *cobra.Command, args []string) error {
	if flagKeep < 0 {
		return outputError("prune", fmt.Errorf("--keep must not be negative, got %d", flagKeep))
	}
	p, err := openProject()
	if err != nil {
		return outputError("prune", err)
	}
	defer p.Close()

	s, err := p.openStore()
	if err != nil {
		return outputError("prune", err)
	}
	defer s.Close()

	n, err := s.PruneSnapshots(p.dir, flagKeep)
	if err != nil {
		return outputError("prune", err)
	}
	return outputResult(CLIResult{Command: "prune", Results: CLIPrune{Deleted: n, Kept: flagKeep}})
}

var runCmd = &cobra.Command{
	Use:   "run <script.risor>",
	Short: "Run a Risor batch script against the project's icons",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return outputError("run", err)
	}
	defer p.Close()

	s, err := p.openStore()
	if err != nil {
		return outputError("run", err)
	}
	defer s.Close()

	script, err := filepath.Abs(args[0])
	if err != nil {
		return outputError("run", err)
	}
	rt := runtime.NewRuntime(p.model,
		runtime.WithScriptsDir(filepath.Dir(script)),
		runtime.WithStore(s, p.dir),
		runtime.WithLogger(p.log.WithField("script", filepath.Base(script))),
	)
	if err := rt.RunScript(cmd.Context(), script, map[string]any{"project_dir": p.dir}); err != nil {
		return outputError("run", err)
	}
	icons := cliIcons(p.model)
	total := len(icons)
	return outputResult(CLIResult{Command: "run", Results: icons, TotalCount: &total})
}

// iconIndex maps a resource argument to its icon row.
func (p *project) iconIndex(arg string) (apkicons.Index, error) {
	path, err := p.resourcePath(arg)
	if err != nil {
		return apkicons.Index{}, err
	}
	idx, err := p.model.IndexForPath(path)
	if errors.Is(err, apkicons.ErrInvalidIndex) {
		return apkicons.Index{}, fmt.Errorf("%s is not referenced as an icon by the manifest", path)
	}
	return idx, err
}

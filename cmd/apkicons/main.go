package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jward/apkicons"
	"github.com/jward/apkicons/internal/config"
	"github.com/jward/apkicons/internal/manifest"
	"github.com/jward/apkicons/internal/restree"
)

var (
	flagConfig  string
	flagFormat  string
	flagProject string
	flagDB      string
)

// cfg and format are resolved by the root command before any subcommand runs.
var (
	cfg    *config.Config
	format = "json"
)

// stdout is where results are written.
var stdout io.Writer = os.Stdout

// errorHandled is set by outputError so main() doesn't double-print.
var errorHandled bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "apkicons",
	Short:         "Inspect and replace the icons of a decoded APK",
	Long:          "apkicons projects the launcher icons, round icons and banners declared by a decoded AndroidManifest.xml onto the resource files that implement them.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if flagFormat != "" {
			if err := validateFormat(flagFormat); err != nil {
				return err
			}
		}
		loaded, err := config.Load(config.LoadOptions{ConfigFile: flagConfig})
		if err != nil {
			return err
		}
		cfg = loaded
		format = cfg.Format
		if flagFormat != "" {
			format = flagFormat
		}
		return nil
	},
	// No Run: prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: $HOME/.config/apkicons/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "", "output format: json|text (default from config)")
	rootCmd.PersistentFlags().StringVarP(&flagProject, "project", "p", ".", "decoded APK project directory")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "snapshot database path (default: .apkicons/snapshot.db in the project)")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(scopesCmd)
	rootCmd.AddCommand(replaceCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(replaceAppCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(runCmd)
}

// project is an opened APK directory: its resource tree and icon model.
type project struct {
	dir   string
	log   *logrus.Logger
	tree  *restree.Tree
	model *apkicons.Model
}

// openProject loads the project directory named by --project and projects
// its icons using the manifest or scope file from config.
func openProject() (*project, error) {
	dir, err := resolveProjectDir(flagProject)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger(os.Stderr)

	scopes, err := loadScopes(dir)
	if err != nil {
		return nil, err
	}
	tree, err := restree.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", dir, err)
	}
	m, err := apkicons.New(tree, scopes,
		apkicons.WithLogger(logger.WithField("project", dir)),
		apkicons.WithIconCacheSize(cfg.IconCacheSize),
	)
	if err != nil {
		return nil, err
	}
	return &project{dir: dir, log: logger, tree: tree, model: m}, nil
}

func (p *project) Close() error {
	return p.model.Close()
}

// loadScopes reads the scope file from config when set, else the manifest.
func loadScopes(dir string) ([]*apkicons.Scope, error) {
	var (
		man *apkicons.Manifest
		err error
	)
	if cfg.Scopes != "" {
		man, err = manifest.LoadScopes(inProject(dir, cfg.Scopes))
	} else {
		man, err = manifest.Load(inProject(dir, cfg.Manifest))
	}
	if err != nil {
		return nil, err
	}
	return man.Scopes, nil
}

// openStore opens the snapshot database for the project.
func (p *project) openStore() (*apkicons.Store, error) {
	dbPath := flagDB
	if dbPath == "" {
		dbPath = cfg.DB
	}
	dbPath = inProject(p.dir, dbPath)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", filepath.Dir(dbPath), err)
	}
	return apkicons.OpenStore(dbPath)
}

// resourcePath converts a path argument to a project-relative source path.
// Paths relative to the working directory and absolute paths inside the
// project are both accepted.
func (p *project) resourcePath(arg string) (string, error) {
	if !filepath.IsAbs(arg) {
		if _, err := os.Stat(filepath.Join(p.dir, arg)); err == nil {
			return filepath.ToSlash(filepath.Clean(arg)), nil
		}
	}
	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", arg, err)
	}
	rel, err := filepath.Rel(p.dir, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside the project %s", arg, p.dir)
	}
	return filepath.ToSlash(rel), nil
}

// resolveProjectDir returns the absolute path of the project directory.
func resolveProjectDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("directory not found: %s", abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}
	return abs, nil
}

func inProject(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

package commands

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/lazyconf/lazyconf/pkg/conf"
	"github.com/lazyconf/lazyconf/pkg/engine"
	"github.com/lazyconf/lazyconf/pkg/funclib"
	"github.com/lazyconf/lazyconf/pkg/loader"
	"github.com/lazyconf/lazyconf/pkg/schema"
)

func newResolveCommand() *cobra.Command {
	var (
		schemaPath   string
		watch        bool
		injectRootAs string
		preserveType bool
		globals      []string
	)

	cmd := &cobra.Command{
		Use:   "resolve <config-file>",
		Short: "Resolve a configuration document",
		Long: `Resolve a configuration document and print the result as YAML.

The document may be YAML, JSON, or TOML. Without --schema every position
is resolved under the "any" schema.`,
		Example: `  # Resolve a document
  lazyconf resolve ./config.yaml

  # Resolve against a schema, re-running on file changes
  lazyconf resolve --schema ./schema.yaml --watch ./config.yaml

  # Expose extra names to ${...} expressions
  lazyconf resolve --set env=prod --inject-root-as cfg ./config.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := args[0]

			opts, err := buildOptions(injectRootAs, preserveType, globals)
			if err != nil {
				return err
			}

			run := func() error {
				out, err := resolveFile(configPath, schemaPath, opts)
				if err != nil {
					return err
				}
				fmt.Print(string(out))
				return nil
			}

			if !watch {
				return run()
			}
			return watchAndRun(cmd, run, configPath, schemaPath)
		},
	}

	cmd.Flags().StringVar(&schemaPath, "schema", "", "schema document path")
	cmd.Flags().BoolVar(&watch, "watch", false, "re-resolve whenever the input files change")
	cmd.Flags().StringVar(&injectRootAs, "inject-root-as", "", "expose the configuration root under this name")
	cmd.Flags().BoolVar(&preserveType, "preserve-type", false, "mirror the input shape, dropping synthesized defaults")
	cmd.Flags().StringArrayVar(&globals, "set", nil, "extra global as name=value (repeatable)")

	return cmd
}

func buildOptions(injectRootAs string, preserveType bool, globals []string) ([]engine.Option, error) {
	opts := []engine.Option{
		engine.WithFunctions(funclib.Default()),
		engine.WithPreserveType(preserveType),
		engine.WithLogger(log.Logger),
	}
	if injectRootAs != "" {
		opts = append(opts, engine.WithInjectRootAs(injectRootAs))
	}
	if len(globals) > 0 {
		values := make(map[string]conf.Value, len(globals))
		for _, g := range globals {
			name, value, ok := strings.Cut(g, "=")
			if !ok {
				return nil, fmt.Errorf("invalid --set %q, expected name=value", g)
			}
			values[name] = conf.Str(value)
		}
		opts = append(opts, engine.WithGlobals(values))
	}
	return opts, nil
}

func resolveFile(configPath, schemaPath string, opts []engine.Option) ([]byte, error) {
	raw, err := loader.LoadFile(configPath)
	if err != nil {
		return nil, err
	}

	var sch schema.Schema = schema.Any{}
	if schemaPath != "" {
		if sch, err = loader.LoadSchemaFile(schemaPath); err != nil {
			return nil, err
		}
	}

	resolved, err := engine.Resolve(raw, sch, opts...)
	if err != nil {
		return nil, err
	}
	return loader.DumpYAML(resolved)
}

// watchAndRun re-runs the resolution whenever one of the input files is
// rewritten. The first run's error is fatal; later failures are logged
// and watching continues.
func watchAndRun(cmd *cobra.Command, run func() error, paths ...string) error {
	if err := run(); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer watcher.Close()

	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := watcher.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
	}
	log.Info().Strs("paths", paths).Msg("Watching for changes")

	ctx := cmd.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			log.Info().Str("file", event.Name).Msg("Input changed, re-resolving")
			if err := run(); err != nil {
				log.Error().Err(err).Msg("Resolution failed")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Msg("Watcher error")
		}
	}
}

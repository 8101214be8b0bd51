package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
)

func replayCmd(flags *globalFlags) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "replay <trace>...",
		Short: "Replay recorded traces into episode documents",
		Long: `Replay reads JSON-lines trace files and writes one episode document per
trace. Arguments may be glob patterns, including ** for recursive matches.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(flags.logLevel)
			cfg, err := loadConfig(flags.configPath, logger)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if outDir != "" {
				cfg.Output.Dir = outDir
			}

			paths, err := expandTraces(args)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("no trace files match %v", args)
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			for _, path := range paths {
				id := ""
				if len(paths) == 1 {
					id = cfg.Episode.ID
				}
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("open trace: %w", err)
				}
				res, err := a.replay(ctx, f, id)
				f.Close()
				if res != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: episode %s, %d events, %d objects\n",
						path, res.EpisodeID, res.Events(), res.Objects())
				}
				if err != nil {
					return fmt.Errorf("replay %s: %w", path, err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (overrides output.dir)")
	return cmd
}

// expandTraces resolves glob patterns to a sorted, de-duplicated list of
// regular files.
func expandTraces(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(filepath.Clean(pattern))
		if err != nil {
			return nil, fmt.Errorf("glob error: %w", err)
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || info.IsDir() || seen[m] {
				continue
			}
			seen[m] = true
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out, nil
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragline-cli/internal/logger"
)

var ingestWatch bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [path...]",
	Short: "Ingest documents into the index",
	Long: `Ingests one or more files into the vector index. Supported formats:
plain text (.txt, .md, .csv), images (.png, .jpg, .jpeg, .gif, .bmp),
and PDFs. Directories are walked recursively.

With --watch, keeps running and re-ingests files as they change.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "watch paths and re-ingest on change")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	paths, err := expandPaths(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return errors.New("no ingestable files found")
	}

	entries := ingestService.IngestBatch(ctx, paths)

	var ok, failed int
	for _, entry := range entries {
		if entry.Err != nil {
			failed++
			cmd.Printf("  FAIL %s: %v\n", entry.Path, entry.Err)
			continue
		}
		ok++
		cmd.Printf("  ok   %s (%s, %d chunks, id %s)\n",
			entry.Path, entry.Result.Metadata.FileType, entry.Result.ChunksCreated, entry.Result.DocumentID)
	}
	cmd.Printf("Ingested %d file(s), %d failed.\n", ok, failed)

	if !ingestWatch {
		return nil
	}
	return watchAndIngest(ctx, cmd, args)
}

// expandPaths resolves arguments into a flat file list, walking
// directories.
func expandPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", arg, err)
		}
	}
	return paths, nil
}

// watchAndIngest re-ingests files as they are written. Events are
// debounced because editors fire several writes per save.
func watchAndIngest(ctx context.Context, cmd *cobra.Command, args []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	for _, arg := range args {
		if err := watcher.Add(arg); err != nil {
			return fmt.Errorf("watching %s: %w", arg, err)
		}
	}

	cmd.Println("Watching for changes, Ctrl-C to stop.")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	const debounce = 500 * time.Millisecond
	pending := make(map[string]struct{})
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		for path := range pending {
			result, err := ingestService.Ingest(ctx, path)
			if err != nil {
				logger.Warn("re-ingest %s failed: %v", path, err)
				continue
			}
			cmd.Printf("  re-ingested %s (%d chunks)\n", path, result.ChunksCreated)
		}
		pending = make(map[string]struct{})
	}

	for {
		select {
		case event, open := <-watcher.Events:
			if !open {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			pending[event.Name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			timerC = timer.C

		case <-timerC:
			flush()
			timerC = nil

		case err, open := <-watcher.Errors:
			if !open {
				return nil
			}
			logger.Warn("watcher error: %v", err)

		case <-sig:
			cmd.Println("Stopping watch.")
			return nil

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

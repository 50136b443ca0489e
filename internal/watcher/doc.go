// Package watcher reruns a job when the shot log file changes.
//
// The parent directory is watched rather than the file itself so that
// SQLite journal writes and replace-by-rename updates are both seen. Bursts
// of events are collapsed: the callback runs once the file has been quiet
// for the debounce interval. Callbacks never overlap.
//
// Example usage:
//
//	w, err := watcher.New("nba_shots.db", 2*time.Second, func(ctx context.Context) error {
//		_, err := pipeline.New(opts).Run(ctx)
//		return err
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := w.Run(ctx); err != nil {
//		log.Fatal(err)
//	}
package watcher

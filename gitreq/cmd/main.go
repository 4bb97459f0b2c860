// Command git-req checks out and lists the open merge
// requests of the repository's origin on GitHub, GitLab
// or Bitbucket.
//
//	git-req <id>               fetch and check out request <id>
//	git-req list               list open requests
//	git-req project-id         print or set the cached project id
//	git-req clear              forget the cached project id
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)

	err := newRootCmd().ExecuteContext(ctx)

	cancel()

	if err != nil {
		slog.Debug("fatal", "error", err)
		fmt.Fprintln(os.Stderr, "git-req:", err)
		os.Exit(1)
	}
}

// setupLogging installs the default slog handler on
// stderr. Debug output is only shown with --verbose.
func setupLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(
		os.Stderr,
		&slog.HandlerOptions{Level: level},
	)))
}

// Package cli implements taskctl, the administration tool for the task store.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"task-service/pkg/task"
)

// Opener opens the task store behind a database URL.
type Opener func(ctx context.Context, url string) (task.Store, error)

const commandTimeout = 30 * time.Second

type root struct {
	cmd         *cobra.Command
	open        Opener
	databaseURL string
	redisURL    string
}

// NewRootCommand builds the taskctl command tree. Stores are opened with open.
func NewRootCommand(open Opener) *cobra.Command {
	r := &root{open: open}
	r.cmd = &cobra.Command{
		Use:   "taskctl",
		Short: "Manage the task store directly",
		Long: `taskctl reads and writes tasks without going through the HTTP API.

EXAMPLES:
  taskctl init                                  # Create the tasks table
  taskctl create --name="Write docs"            # Add a task
  taskctl list --format=short                   # One line per task
  taskctl update <id> --description="draft"     # Change fields
  taskctl delete <id>                           # Remove a task`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultURL := os.Getenv("DATABASE_URL")
	if defaultURL == "" {
		defaultURL = "sqlite://tasks.db"
	}
	r.cmd.PersistentFlags().StringVar(&r.databaseURL, "database-url", defaultURL, "Database URL (overrides DATABASE_URL)")
	r.cmd.PersistentFlags().StringVar(&r.redisURL, "redis-url", os.Getenv("REDIS_URL"), "Redis URL of the server's cache; writes evict from it (overrides REDIS_URL)")

	r.cmd.AddCommand(
		r.initCommand(),
		r.listCommand(),
		r.getCommand(),
		r.createCommand(),
		r.updateCommand(),
		r.deleteCommand(),
	)
	return r.cmd
}

// withStore opens the store for the duration of fn. With a Redis URL the
// store is wrapped in a cache that never fills, so writes evict what the
// server has cached.
func (r *root) withStore(cmd *cobra.Command, fn func(ctx context.Context, store task.Store) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	var client *redis.Client
	if r.redisURL != "" {
		opts, err := redis.ParseURL(r.redisURL)
		if err != nil {
			return fmt.Errorf("parse redis url: %w", err)
		}
		client = redis.NewClient(opts)
		defer client.Close()
	}

	store, err := r.open(ctx, r.databaseURL)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()
	if client != nil {
		store = task.NewCache(store, client, 0)
	}
	return fn(ctx, store)
}

func printJSON(w io.Writer, v any) error {
	enc := sonic.ConfigStd.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

func truncStr(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func printShortTasks(w io.Writer, tasks []task.Task) {
	for _, t := range tasks {
		fmt.Fprintf(w, "%-8s  %-30s  %s\n", truncStr(t.ID, 8), truncStr(t.Name, 30), truncStr(t.Description, 60))
	}
}

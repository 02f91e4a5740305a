package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"task-service/pkg/task"
)

func (r *root) initCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the tasks table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Opening the store already ensures the table.
			return r.withStore(cmd, func(ctx context.Context, store task.Store) error {
				fmt.Fprintln(cmd.OutOrStdout(), `{"status":"ok","message":"tasks table initialized"}`)
				return nil
			})
		},
	}
}

func (r *root) listCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "short" {
				return fmt.Errorf("unknown format %q: want json or short", format)
			}
			return r.withStore(cmd, func(ctx context.Context, store task.Store) error {
				tasks, err := store.List(ctx)
				if err != nil {
					return fmt.Errorf("list tasks: %w", err)
				}
				if format == "short" {
					printShortTasks(cmd.OutOrStdout(), tasks)
					return nil
				}
				return printJSON(cmd.OutOrStdout(), tasks)
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json or short")
	return cmd
}

func (r *root) getCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withStore(cmd, func(ctx context.Context, store task.Store) error {
				t, err := store.Get(ctx, args[0])
				if err != nil {
					return fmt.Errorf("get task: %w", err)
				}
				return printJSON(cmd.OutOrStdout(), t)
			})
		},
	}
}

func (r *root) createCommand() *cobra.Command {
	var name, description string
	cmd := &cobra.Command{
		Use:   "create --name=<name> [--description=<text>]",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return errors.New("--name is required")
			}
			data := map[string]any{"name": name}
			if description != "" {
				data["description"] = description
			}
			return r.withStore(cmd, func(ctx context.Context, store task.Store) error {
				t, err := store.Create(ctx, data)
				if err != nil {
					return fmt.Errorf("create task: %w", err)
				}
				return printJSON(cmd.OutOrStdout(), t)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Task name")
	cmd.Flags().StringVar(&description, "description", "", "Task description")
	return cmd
}

func (r *root) updateCommand() *cobra.Command {
	var name, description string
	cmd := &cobra.Command{
		Use:   "update <id> [--name=<name>] [--description=<text>]",
		Short: "Change fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			updates := make(map[string]any)
			if cmd.Flags().Changed("name") {
				if name == "" {
					return errors.New("--name must not be empty")
				}
				updates["name"] = name
			}
			if cmd.Flags().Changed("description") {
				updates["description"] = description
			}
			if len(updates) == 0 {
				return errors.New("no updates specified")
			}
			return r.withStore(cmd, func(ctx context.Context, store task.Store) error {
				t, err := store.Update(ctx, args[0], updates)
				if err != nil {
					return fmt.Errorf("update task: %w", err)
				}
				return printJSON(cmd.OutOrStdout(), t)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New task name")
	cmd.Flags().StringVar(&description, "description", "", "New task description")
	return cmd
}

func (r *root) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withStore(cmd, func(ctx context.Context, store task.Store) error {
				t, err := store.Delete(ctx, args[0])
				if err != nil {
					return fmt.Errorf("delete task: %w", err)
				}
				return printJSON(cmd.OutOrStdout(), t)
			})
		},
	}
}

package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kuflow/kuflow-sdk-go/pkg/client"
)

func newTaskCmd(cli *Cli) *cobra.Command {
	c := cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
		RunE:  cli.help,
	}

	c.AddCommand(newTaskListCmd(cli))
	c.AddCommand(newTaskGetCmd(cli))
	c.AddCommand(newTaskCreateCmd(cli))
	c.AddCommand(newTaskClaimCmd(cli))
	c.AddCommand(newTaskAssignCmd(cli))
	c.AddCommand(newTaskCompleteCmd(cli))
	c.AddCommand(newTaskLogCmd(cli))

	return &c
}

func newTaskListCmd(cli *Cli) *cobra.Command {
	var (
		page       pageFlags
		processIDs []string
		states     []string
		codes      []string
		tenantIDs  []string
	)

	c := cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			opts := client.TaskFindOptions{
				PageOptions:         page.options(),
				TaskDefinitionCodes: codes,
			}

			var err error
			if opts.ProcessIDs, err = parseUUIDs(processIDs); err != nil {
				return err
			}
			if opts.TenantIDs, err = parseUUIDs(tenantIDs); err != nil {
				return err
			}
			for _, state := range states {
				opts.States = append(opts.States, client.TaskState(strings.ToUpper(state)))
			}

			result, err := cli.c.Task().Find(c.Context(), opts)
			if err != nil {
				return err
			}

			return cli.render(c, result, func() *table {
				t := taskTable(result.Content...)
				t.footer = pageFooter(result.Metadata)
				return t
			})
		},
	}

	page.bind(&c)
	c.Flags().StringSliceVar(&processIDs, "process-id", nil, "Process IDs")
	c.Flags().StringSliceVar(&states, "state", nil, "Task states: READY, CLAIMED, COMPLETED or CANCELLED")
	c.Flags().StringSliceVar(&codes, "code", nil, "Task definition codes")
	c.Flags().StringSliceVar(&tenantIDs, "tenant-id", nil, "Tenant IDs")

	return &c
}

func newTaskGetCmd(cli *Cli) *cobra.Command {
	c := cobra.Command{
		Use:   "get TASK_ID...",
		Short: "Retrieve one or more tasks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ids, err := parseUUIDs(args)
			if err != nil {
				return err
			}

			tasks := make([]client.Task, len(ids))

			g, ctx := errgroup.WithContext(c.Context())
			g.SetLimit(4)
			for i, id := range ids {
				g.Go(func() error {
					task, err := cli.c.Task().Retrieve(ctx, id)
					if err != nil {
						return fmt.Errorf("task %s: %w", id, err)
					}
					tasks[i] = *task
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			var v any = tasks
			if len(tasks) == 1 {
				v = tasks[0]
			}
			return cli.render(c, v, func() *table { return taskTable(tasks...) })
		},
	}

	return &c
}

func newTaskCreateCmd(cli *Cli) *cobra.Command {
	var (
		id        string
		processID string
		code      string
		ownerID   string
	)

	c := cobra.Command{
		Use:   "create",
		Short: "Create a task in a process",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			params := client.TaskCreateParams{TaskDefinitionCode: code}

			var err error
			if params.ID, err = parseOptionalUUID(id); err != nil {
				return err
			}
			if params.ProcessID, err = uuid.Parse(processID); err != nil {
				return fmt.Errorf("invalid process id %q: %w", processID, err)
			}
			if params.OwnerID, err = parseOptionalUUID(ownerID); err != nil {
				return err
			}

			task, err := cli.c.Task().Create(c.Context(), params)
			if err != nil {
				return err
			}
			return cli.render(c, task, func() *table { return taskTable(*task) })
		},
	}

	c.Flags().StringVar(&id, "id", "", "Task ID")
	c.Flags().StringVar(&processID, "process-id", "", "Process ID")
	c.Flags().StringVar(&code, "code", "", "Task definition code")
	c.Flags().StringVar(&ownerID, "owner-id", "", "Owner principal ID")

	_ = c.MarkFlagRequired("process-id")
	_ = c.MarkFlagRequired("code")

	return &c
}

func newTaskClaimCmd(cli *Cli) *cobra.Command {
	c := cobra.Command{
		Use:   "claim TASK_ID",
		Short: "Claim a ready task",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return cli.taskAction(c, args[0], cli.c.Task().Claim)
		},
	}

	return &c
}

func newTaskAssignCmd(cli *Cli) *cobra.Command {
	var (
		ownerID    string
		ownerEmail string
	)

	c := cobra.Command{
		Use:   "assign TASK_ID",
		Short: "Assign a task to a principal",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			owner, err := parseOptionalUUID(ownerID)
			if err != nil {
				return err
			}

			params := client.TaskAssignParams{OwnerID: owner, OwnerEmail: ownerEmail}
			return cli.taskAction(c, args[0], func(ctx context.Context, id uuid.UUID) (*client.Task, error) {
				return cli.c.Task().Assign(ctx, id, params)
			})
		},
	}

	c.Flags().StringVar(&ownerID, "owner-id", "", "Owner principal ID")
	c.Flags().StringVar(&ownerEmail, "owner-email", "", "Owner email")

	c.MarkFlagsOneRequired("owner-id", "owner-email")
	c.MarkFlagsMutuallyExclusive("owner-id", "owner-email")

	return &c
}

func newTaskCompleteCmd(cli *Cli) *cobra.Command {
	c := cobra.Command{
		Use:   "complete TASK_ID",
		Short: "Complete a claimed task",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return cli.taskAction(c, args[0], cli.c.Task().Complete)
		},
	}

	return &c
}

func newTaskLogCmd(cli *Cli) *cobra.Command {
	var level string

	c := cobra.Command{
		Use:   "log TASK_ID MESSAGE",
		Short: "Append a log entry to a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			params := client.TaskAppendLogParams{
				Message: args[1],
				Level:   client.TaskLogLevel(strings.ToUpper(level)),
			}
			return cli.taskAction(c, args[0], func(ctx context.Context, id uuid.UUID) (*client.Task, error) {
				return cli.c.Task().AppendLog(ctx, id, params)
			})
		},
	}

	c.Flags().StringVar(&level, "level", string(client.TaskLogLevelInfo), "Log level: INFO, WARN or ERROR")

	return &c
}

func (c *Cli) taskAction(cmd *cobra.Command, arg string, fn func(context.Context, uuid.UUID) (*client.Task, error)) error {
	id, err := uuid.Parse(arg)
	if err != nil {
		return fmt.Errorf("invalid task id %q: %w", arg, err)
	}

	task, err := fn(cmd.Context(), id)
	if err != nil {
		return err
	}
	return c.render(cmd, task, func() *table { return taskTable(*task) })
}

func taskTable(tasks ...client.Task) *table {
	t := newTable("ID", "STATE", "CODE", "PROCESS", "OWNER")
	for _, task := range tasks {
		var owner string
		if task.Owner != nil {
			owner = task.Owner.ID.String()
			if task.Owner.User != nil {
				owner = task.Owner.User.Email
			}
		}
		t.addRow(task.ID.String(), string(task.State), task.TaskDefinition.Code, task.ProcessID.String(), owner)
	}
	return t
}

package tasks

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/openkcm/taskmanager-client/internal/business"
	"github.com/openkcm/taskmanager-client/internal/cmdutils"
	"github.com/openkcm/taskmanager-client/internal/config"
	"github.com/openkcm/taskmanager-client/pkg/apiclient"
)

func Cmd(buildInfo string, printer *cmdutils.Printer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Manage personal tasks",
	}

	cmd.AddCommand(
		listCmd(buildInfo, printer),
		getCmd(buildInfo, printer),
		createCmd(buildInfo, printer),
		updateCmd(buildInfo, printer),
		deleteCmd(buildInfo, printer),
		watchCmd(buildInfo, printer),
	)

	return cmd
}

func listCmd(buildInfo string, printer *cmdutils.Printer) *cobra.Command {
	var status string

	cmd := cmdutils.ClientCommand(
		"list",
		"List tasks",
		"List the tasks of the logged-in user, optionally filtered by status.",
		buildInfo,
		cobra.NoArgs,
		func(ctx context.Context, c *apiclient.Client, _ []string) error {
			tasks, err := c.ListTasks(ctx, apiclient.TaskStatus(status))
			if err != nil {
				return err
			}

			return printer.Print(tasks)
		},
	)

	cmd.Flags().StringVar(&status, "status", "", "only list tasks with this status")

	return cmd
}

func getCmd(buildInfo string, printer *cmdutils.Printer) *cobra.Command {
	return cmdutils.ClientCommand(
		"get <task-id>",
		"Show a task",
		"Show a single task.",
		buildInfo,
		cobra.ExactArgs(1),
		func(ctx context.Context, c *apiclient.Client, args []string) error {
			id, err := cmdutils.ParseID("task id", args[0])
			if err != nil {
				return err
			}

			task, err := c.GetTask(ctx, id)
			if err != nil {
				return err
			}

			return printer.Print(task)
		},
	)
}

// taskFlags holds the task fields settable from the command line.
type taskFlags struct {
	title       string
	description string
	status      string
	priority    string
	dueDate     string
	assignedTo  int64
}

func (f *taskFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.title, "title", "", "title")
	flags.StringVar(&f.description, "description", "", "description")
	flags.StringVar(&f.status, "status", "", "status: pending, in-progress or completed")
	flags.StringVar(&f.priority, "priority", "", "priority: low, medium or high")
	flags.StringVar(&f.dueDate, "due-date", "", "due date as YYYY-MM-DD")
	flags.Int64Var(&f.assignedTo, "assigned-to", 0, "id of the assignee")
}

// input returns the fields whose flags were given.
func (f *taskFlags) input(flags *pflag.FlagSet) apiclient.TaskInput {
	var in apiclient.TaskInput
	if flags.Changed("title") {
		in.Title = &f.title
	}
	if flags.Changed("description") {
		in.Description = &f.description
	}
	if flags.Changed("status") {
		in.Status = apiclient.Ptr(apiclient.TaskStatus(f.status))
	}
	if flags.Changed("priority") {
		in.Priority = apiclient.Ptr(apiclient.TaskPriority(f.priority))
	}
	if flags.Changed("due-date") {
		in.DueDate = &f.dueDate
	}
	if flags.Changed("assigned-to") {
		in.AssignedTo = &f.assignedTo
	}

	return in
}

func createCmd(buildInfo string, printer *cmdutils.Printer) *cobra.Command {
	var (
		cmd   *cobra.Command
		flags taskFlags
	)

	cmd = cmdutils.ClientCommand(
		"create",
		"Create a task",
		"Create a personal task. The status defaults to pending.",
		buildInfo,
		cobra.NoArgs,
		func(ctx context.Context, c *apiclient.Client, _ []string) error {
			task, err := c.CreateTask(ctx, flags.input(cmd.Flags()))
			if err != nil {
				return err
			}

			return printer.Print(task)
		},
	)

	flags.register(cmd.Flags())

	return cmd
}

func updateCmd(buildInfo string, printer *cmdutils.Printer) *cobra.Command {
	var (
		cmd   *cobra.Command
		flags taskFlags
	)

	cmd = cmdutils.ClientCommand(
		"update <task-id>",
		"Update a task",
		"Update a task. Only the given flags are changed.",
		buildInfo,
		cobra.ExactArgs(1),
		func(ctx context.Context, c *apiclient.Client, args []string) error {
			id, err := cmdutils.ParseID("task id", args[0])
			if err != nil {
				return err
			}

			task, err := c.UpdateTask(ctx, id, flags.input(cmd.Flags()))
			if err != nil {
				return err
			}

			return printer.Print(task)
		},
	)

	flags.register(cmd.Flags())

	return cmd
}

func deleteCmd(buildInfo string, printer *cmdutils.Printer) *cobra.Command {
	return cmdutils.ClientCommand(
		"delete <task-id>",
		"Delete a task",
		"Delete a task.",
		buildInfo,
		cobra.ExactArgs(1),
		func(ctx context.Context, c *apiclient.Client, args []string) error {
			id, err := cmdutils.ParseID("task id", args[0])
			if err != nil {
				return err
			}

			if err := c.DeleteTask(ctx, id); err != nil {
				return err
			}

			printer.Message("Task %d deleted", id)

			return nil
		},
	)
}

func watchCmd(buildInfo string, printer *cmdutils.Printer) *cobra.Command {
	var status string

	report := func(_ context.Context, changes []business.TaskChange) error {
		return printer.Print(changes)
	}

	cmd := cmdutils.CobraCommand(
		"watch",
		"Watch tasks for changes",
		"Poll the task list and print the tasks that were added, removed or changed. Runs until interrupted.",
		buildInfo,
		cmdutils.RunAsService,
		func(ctx context.Context, cfg *config.Config) error {
			return business.WatchTasksMain(apiclient.TaskStatus(status), report)(ctx, cfg)
		},
	)

	cmd.Flags().StringVar(&status, "status", "", "only watch tasks with this status")

	return cmd
}

package teams

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/openkcm/taskmanager-client/internal/cmdutils"
	"github.com/openkcm/taskmanager-client/pkg/apiclient"
)

func Cmd(buildInfo string, printer *cmdutils.Printer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teams",
		Short: "Manage teams and their tasks",
	}

	cmd.AddCommand(
		listCmd(buildInfo, printer),
		createCmd(buildInfo, printer),
		detailsCmd(buildInfo, printer),
		addMemberCmd(buildInfo, printer),
		availableUsersCmd(buildInfo, printer),
		memberTasksCmd(buildInfo, printer),
		taskCmd(buildInfo, printer),
	)

	return cmd
}

func listCmd(buildInfo string, printer *cmdutils.Printer) *cobra.Command {
	return cmdutils.ClientCommand(
		"list",
		"List teams",
		"List the teams the logged-in user owns or belongs to.",
		buildInfo,
		cobra.NoArgs,
		func(ctx context.Context, c *apiclient.Client, _ []string) error {
			teams, err := c.ListTeams(ctx)
			if err != nil {
				return err
			}

			return printer.Print(teams)
		},
	)
}

func createCmd(buildInfo string, printer *cmdutils.Printer) *cobra.Command {
	var in apiclient.TeamInput

	cmd := cmdutils.ClientCommand(
		"create",
		"Create a team",
		"Create a team owned by the logged-in user.",
		buildInfo,
		cobra.NoArgs,
		func(ctx context.Context, c *apiclient.Client, _ []string) error {
			msg, err := c.CreateTeam(ctx, in)
			if err != nil {
				return err
			}

			return printer.Print(msg)
		},
	)

	cmd.Flags().StringVar(&in.Name, "name", "", "team name")
	cmd.Flags().StringVar(&in.Description, "description", "", "team description")

	return cmd
}

func detailsCmd(buildInfo string, printer *cmdutils.Printer) *cobra.Command {
	return cmdutils.ClientCommand(
		"details <team-id>",
		"Show a team",
		"Show a team with its members and tasks.",
		buildInfo,
		cobra.ExactArgs(1),
		func(ctx context.Context, c *apiclient.Client, args []string) error {
			teamID, err := cmdutils.ParseID("team id", args[0])
			if err != nil {
				return err
			}

			details, err := c.TeamDetails(ctx, teamID)
			if err != nil {
				return err
			}

			return printer.Print(details)
		},
	)
}

func addMemberCmd(buildInfo string, printer *cmdutils.Printer) *cobra.Command {
	return cmdutils.ClientCommand(
		"add-member <team-id> <username>",
		"Add a member to a team",
		"Add a user to a team. Only the team owner may add members.",
		buildInfo,
		cobra.ExactArgs(2),
		func(ctx context.Context, c *apiclient.Client, args []string) error {
			teamID, err := cmdutils.ParseID("team id", args[0])
			if err != nil {
				return err
			}

			msg, err := c.AddMember(ctx, teamID, args[1])
			if err != nil {
				return err
			}

			return printer.Print(msg)
		},
	)
}

func availableUsersCmd(buildInfo string, printer *cmdutils.Printer) *cobra.Command {
	return cmdutils.ClientCommand(
		"available-users <team-id>",
		"List users that can join a team",
		"List the users that are not yet members of a team.",
		buildInfo,
		cobra.ExactArgs(1),
		func(ctx context.Context, c *apiclient.Client, args []string) error {
			teamID, err := cmdutils.ParseID("team id", args[0])
			if err != nil {
				return err
			}

			users, err := c.AvailableUsers(ctx, teamID)
			if err != nil {
				return err
			}

			return printer.Print(users)
		},
	)
}

func memberTasksCmd(buildInfo string, printer *cmdutils.Printer) *cobra.Command {
	return cmdutils.ClientCommand(
		"member-tasks <team-id> <member-id>",
		"List the tasks of a team member",
		"List the team tasks assigned to a member.",
		buildInfo,
		cobra.ExactArgs(2),
		func(ctx context.Context, c *apiclient.Client, args []string) error {
			ids, err := cmdutils.ParseIDs(args, "team id", "member id")
			if err != nil {
				return err
			}

			tasks, err := c.MemberTasks(ctx, ids[0], ids[1])
			if err != nil {
				return err
			}

			return printer.Print(tasks)
		},
	)
}

func taskCmd(buildInfo string, printer *cmdutils.Printer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage team tasks",
	}

	cmd.AddCommand(
		taskCreateCmd(buildInfo, printer),
		taskStatusCmd(buildInfo, printer),
		taskDeleteCmd(buildInfo, printer),
	)

	return cmd
}

func taskCreateCmd(buildInfo string, printer *cmdutils.Printer) *cobra.Command {
	var (
		cmd        *cobra.Command
		in         apiclient.TeamTaskInput
		priority   string
		status     string
		assignedTo int64
	)

	cmd = cmdutils.ClientCommand(
		"create <team-id>",
		"Create a team task",
		"Create a task in a team. The status defaults to pending and the priority to medium.",
		buildInfo,
		cobra.ExactArgs(1),
		func(ctx context.Context, c *apiclient.Client, args []string) error {
			teamID, err := cmdutils.ParseID("team id", args[0])
			if err != nil {
				return err
			}

			in.Priority = apiclient.TaskPriority(priority)
			in.Status = apiclient.TaskStatus(status)
			if cmd.Flags().Changed("assigned-to") {
				in.AssignedTo = &assignedTo
			}

			msg, err := c.CreateTeamTask(ctx, teamID, in)
			if err != nil {
				return err
			}

			return printer.Print(msg)
		},
	)

	cmd.Flags().StringVar(&in.Title, "title", "", "title")
	cmd.Flags().StringVar(&in.Description, "description", "", "description")
	cmd.Flags().StringVar(&in.DueDate, "due-date", "", "due date as YYYY-MM-DD")
	cmd.Flags().StringVar(&priority, "priority", "", "priority: low, medium or high")
	cmd.Flags().StringVar(&status, "status", "", "status: pending, in-progress or completed")
	cmd.Flags().Int64Var(&assignedTo, "assigned-to", 0, "id of the assigned member")

	return cmd
}

func taskStatusCmd(buildInfo string, printer *cmdutils.Printer) *cobra.Command {
	return cmdutils.ClientCommand(
		"status <team-id> <task-id> <status>",
		"Change the status of a team task",
		"Change the status of a team task to pending, in-progress or completed.",
		buildInfo,
		cobra.ExactArgs(3),
		func(ctx context.Context, c *apiclient.Client, args []string) error {
			ids, err := cmdutils.ParseIDs(args, "team id", "task id")
			if err != nil {
				return err
			}

			msg, err := c.UpdateTeamTaskStatus(ctx, ids[0], ids[1], apiclient.TaskStatus(args[2]))
			if err != nil {
				return err
			}

			return printer.Print(msg)
		},
	)
}

func taskDeleteCmd(buildInfo string, printer *cmdutils.Printer) *cobra.Command {
	return cmdutils.ClientCommand(
		"delete <team-id> <task-id>",
		"Delete a team task",
		"Delete a team task.",
		buildInfo,
		cobra.ExactArgs(2),
		func(ctx context.Context, c *apiclient.Client, args []string) error {
			ids, err := cmdutils.ParseIDs(args, "team id", "task id")
			if err != nil {
				return err
			}

			msg, err := c.DeleteTeamTask(ctx, ids[0], ids[1])
			if err != nil {
				return err
			}

			return printer.Print(msg)
		},
	)
}

package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

func (c *Client) ListTeams(ctx context.Context) ([]Team, error) {
	return doJSON[[]Team](ctx, c, &Request{Method: http.MethodGet, Path: "teams/"})
}

// CreateTeam creates a team owned by the current user.
func (c *Client) CreateTeam(ctx context.Context, in TeamInput) (Message, error) {
	if err := in.validate(); err != nil {
		return Message{}, err
	}

	return doJSON[Message](ctx, c, &Request{Method: http.MethodPost, Path: "teams/create/", Body: in})
}

func (c *Client) TeamDetails(ctx context.Context, teamID int64) (TeamDetails, error) {
	return doJSON[TeamDetails](ctx, c, &Request{Method: http.MethodGet, Path: teamPath(teamID, "details/")})
}

func (c *Client) AddMember(ctx context.Context, teamID int64, username string) (Message, error) {
	if strings.TrimSpace(username) == "" {
		return Message{}, &ValidationError{Fields: []FieldError{{Field: "username", Message: "This field is required."}}}
	}

	return doJSON[Message](ctx, c, &Request{
		Method: http.MethodPost,
		Path:   teamPath(teamID, "add-member/"),
		Body:   map[string]string{"username": username},
	})
}

// AvailableUsers lists the users that can still be added to the team.
func (c *Client) AvailableUsers(ctx context.Context, teamID int64) ([]Member, error) {
	out, err := doJSON[struct {
		AvailableUsers []Member `json:"available_users"`
	}](ctx, c, &Request{Method: http.MethodGet, Path: teamPath(teamID, "available-users/")})
	if err != nil {
		return nil, err
	}

	return out.AvailableUsers, nil
}

func (c *Client) CreateTeamTask(ctx context.Context, teamID int64, in TeamTaskInput) (Message, error) {
	if err := in.validate(c.now()); err != nil {
		return Message{}, err
	}
	if in.Status == "" {
		in.Status = TaskStatusPending
	}
	if in.Priority == "" {
		in.Priority = TaskPriorityMedium
	}

	return doJSON[Message](ctx, c, &Request{Method: http.MethodPost, Path: teamPath(teamID, "tasks/create/"), Body: in})
}

func (c *Client) UpdateTeamTaskStatus(ctx context.Context, teamID, taskID int64, status TaskStatus) (Message, error) {
	if !status.Valid() {
		return Message{}, &ValidationError{Fields: []FieldError{{Field: "status", Message: "Must be one of pending, in-progress, completed."}}}
	}

	return doJSON[Message](ctx, c, &Request{
		Method: http.MethodPatch,
		Path:   teamPath(teamID, fmt.Sprintf("tasks/%d/update-status/", taskID)),
		Body:   map[string]TaskStatus{"status": status},
	})
}

func (c *Client) DeleteTeamTask(ctx context.Context, teamID, taskID int64) (Message, error) {
	return doJSON[Message](ctx, c, &Request{
		Method: http.MethodDelete,
		Path:   teamPath(teamID, fmt.Sprintf("tasks/%d/delete/", taskID)),
	})
}

// MemberTasks lists the tasks of one team member.
func (c *Client) MemberTasks(ctx context.Context, teamID, memberID int64) (MemberTasks, error) {
	return doJSON[MemberTasks](ctx, c, &Request{
		Method: http.MethodGet,
		Path:   teamPath(teamID, fmt.Sprintf("members/%d/tasks/", memberID)),
	})
}

func teamPath(teamID int64, suffix string) string {
	return fmt.Sprintf("teams/%d/%s", teamID, suffix)
}

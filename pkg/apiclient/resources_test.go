package apiclient_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkcm/taskmanager-client/pkg/apiclient"
	"github.com/openkcm/taskmanager-client/pkg/tokenstore"
	tokenstoremock "github.com/openkcm/taskmanager-client/pkg/tokenstore/mock"
)

func newLoggedInClient(t *testing.T) (*fakeAPI, *apiclient.Client) {
	t.Helper()

	api := newFakeAPI(t)
	api.setValidAccess("valid")
	store := tokenstoremock.NewInMemStore(tokenstoremock.WithTokens("valid", "refresh-1"))

	return api, newTestClient(t, api, store)
}

func TestClient_Login(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		creds     apiclient.Credentials
		wantStore bool
		errAssert assert.ErrorAssertionFunc
	}{
		{
			name:      "Success",
			status:    http.StatusOK,
			body:      `{"access":"access-1","refresh":"refresh-1"}`,
			creds:     apiclient.Credentials{Username: "alice", Password: "secret1"},
			wantStore: true,
			errAssert: assert.NoError,
		},
		{
			name:      "Wrong credentials",
			status:    http.StatusUnauthorized,
			body:      `{"detail":"No active account found with the given credentials"}`,
			creds:     apiclient.Credentials{Username: "alice", Password: "wrong"},
			errAssert: assert.Error,
		},
		{
			name:      "Missing token pair",
			status:    http.StatusOK,
			body:      `{"access":"access-1"}`,
			creds:     apiclient.Credentials{Username: "alice", Password: "secret1"},
			errAssert: assert.Error,
		},
		{
			name:      "Missing username",
			creds:     apiclient.Credentials{Password: "secret1"},
			errAssert: assert.Error,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI(t)
			api.handleJSON(http.MethodPost, "login/", tt.status, tt.body)
			store := tokenstoremock.NewInMemStore()
			c := newTestClient(t, api, store)

			tokens, err := c.Login(t.Context(), tt.creds)
			tt.errAssert(t, err)

			access, accessOK := store.Value(tokenstore.KeyAccessToken)
			refresh, refreshOK := store.Value(tokenstore.KeyRefreshToken)
			if !tt.wantStore {
				assert.False(t, accessOK)
				assert.False(t, refreshOK)
				return
			}

			assert.Equal(t, apiclient.TokenPair{Access: "access-1", Refresh: "refresh-1"}, tokens)
			assert.Equal(t, "access-1", access)
			assert.Equal(t, "refresh-1", refresh)

			calls := api.requestsTo("login/")
			require.Len(t, calls, 1)
			assert.Empty(t, calls[0].Authorization)
			assert.JSONEq(t, `{"username":"alice","password":"secret1"}`, calls[0].Body)
		})
	}
}

func TestClient_Register(t *testing.T) {
	tests := []struct {
		name       string
		reg        apiclient.Registration
		wantFields []apiclient.FieldError
		wantCalls  int
	}{
		{
			name:      "Success",
			reg:       apiclient.Registration{Username: "bob", Email: "bob@example.com", Password: "secret1"},
			wantCalls: 1,
		},
		{
			name:       "Short password",
			reg:        apiclient.Registration{Username: "bob", Email: "bob@example.com", Password: "12345"},
			wantFields: []apiclient.FieldError{{Field: "password", Message: "Password must be at least 6 characters."}},
		},
		{
			name: "Missing fields",
			reg:  apiclient.Registration{},
			wantFields: []apiclient.FieldError{
				{Field: "username", Message: "This field is required."},
				{Field: "email", Message: "This field is required."},
				{Field: "password", Message: "This field is required."},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI(t)
			api.handleJSON(http.MethodPost, "register/", http.StatusCreated, `{"message":"User created"}`)
			c := newTestClient(t, api, tokenstoremock.NewInMemStore())

			msg, err := c.Register(t.Context(), tt.reg)
			assert.Len(t, api.requestsTo("register/"), tt.wantCalls)

			if tt.wantFields != nil {
				assert.ErrorIs(t, err, apiclient.ErrValidation)
				if diff := cmp.Diff(tt.wantFields, apiclient.NormalizeErrors(err)); diff != "" {
					t.Errorf("Register() fields mismatch (-want +got):\n%s", diff)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "User created", msg.Message)
		})
	}
}

func TestClient_Register_ServerValidation(t *testing.T) {
	api := newFakeAPI(t)
	api.handleJSON(http.MethodPost, "register/", http.StatusBadRequest, `{"username":["A user with that username already exists."]}`)
	c := newTestClient(t, api, tokenstoremock.NewInMemStore())

	_, err := c.Register(t.Context(), apiclient.Registration{Username: "bob", Email: "bob@example.com", Password: "secret1"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apiclient.StatusCode(err))
	assert.Equal(t, []apiclient.FieldError{{Field: "username", Message: "A user with that username already exists."}}, apiclient.NormalizeErrors(err))
}

func TestClient_Logout(t *testing.T) {
	api := newFakeAPI(t)
	store := tokenstoremock.NewInMemStore(tokenstoremock.WithTokens("valid", "refresh-1"))
	c := newTestClient(t, api, store)

	require.NoError(t, c.Logout(t.Context()))

	_, ok := store.Value(tokenstore.KeyAccessToken)
	assert.False(t, ok)
	_, ok = store.Value(tokenstore.KeyRefreshToken)
	assert.False(t, ok)
	assert.Empty(t, api.requestsTo("logout/"))
}

func TestClient_IsSuperuser(t *testing.T) {
	api, c := newLoggedInClient(t)
	api.handleJSON(http.MethodGet, "check-superuser/", http.StatusOK, `{"is_superuser":true}`)

	got, err := c.IsSuperuser(t.Context())
	require.NoError(t, err)
	assert.True(t, got)
}

func TestClient_Profile(t *testing.T) {
	api, c := newLoggedInClient(t)
	api.handleJSON(http.MethodGet, "profile/", http.StatusOK, `{"username":"alice","email":"alice@example.com","phone":null,"bio":"Hi"}`)
	api.handle(http.MethodPatch, "profile/", func(w http.ResponseWriter, r *http.Request) {
		var upd map[string]string
		_ = json.NewDecoder(r.Body).Decode(&upd)
		body, _ := json.Marshal(map[string]string{"username": "alice", "email": "alice@example.com", "phone": upd["phone"], "bio": "Hi"})
		writeJSON(w, http.StatusOK, string(body))
	})

	profile, err := c.Profile(t.Context())
	require.NoError(t, err)
	assert.Equal(t, apiclient.Profile{Username: "alice", Email: "alice@example.com", Bio: "Hi"}, profile)

	updated, err := c.UpdateProfile(t.Context(), apiclient.ProfileUpdate{Phone: apiclient.Ptr("+49 170 1234567")})
	require.NoError(t, err)
	assert.Equal(t, "+49 170 1234567", updated.Phone)

	calls := api.requestsTo("profile/")
	require.Len(t, calls, 2)
	assert.JSONEq(t, `{"phone":"+49 170 1234567"}`, calls[1].Body)

	_, err = c.UpdateProfile(t.Context(), apiclient.ProfileUpdate{Phone: apiclient.Ptr("12345")})
	require.ErrorIs(t, err, apiclient.ErrValidation)
	assert.Len(t, api.requestsTo("profile/"), 2)
}

func TestClient_Tasks(t *testing.T) {
	api, c := newLoggedInClient(t)
	api.handleJSON(http.MethodGet, "tasks/", http.StatusOK, taskListBody)
	api.handleJSON(http.MethodGet, "tasks/1/", http.StatusOK, `{"id":1,"title":"Write report","team":3,"assigned_to":null,"status":"pending","priority":"high","due_date":"2030-01-01"}`)
	api.handleJSON(http.MethodPatch, "tasks/1/", http.StatusOK, `{"id":1,"title":"Write report","status":"completed","priority":"high"}`)
	api.handle(http.MethodDelete, "tasks/1/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("List with status filter", func(t *testing.T) {
		tasks, err := c.ListTasks(t.Context(), apiclient.TaskStatusPending)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC), tasks[0].CreatedAt.UTC())

		calls := api.requestsTo("tasks/")
		require.NotEmpty(t, calls)
		assert.Equal(t, "status=pending", calls[len(calls)-1].Query)
	})

	t.Run("List with unknown status", func(t *testing.T) {
		_, err := c.ListTasks(t.Context(), "archived")
		assert.ErrorIs(t, err, apiclient.ErrValidation)
	})

	t.Run("Get", func(t *testing.T) {
		task, err := c.GetTask(t.Context(), 1)
		require.NoError(t, err)
		assert.Equal(t, "Write report", task.Title)
		require.NotNil(t, task.Team)
		assert.Equal(t, int64(3), *task.Team)
		assert.Nil(t, task.AssignedTo)
	})

	t.Run("Update", func(t *testing.T) {
		task, err := c.UpdateTask(t.Context(), 1, apiclient.TaskInput{Status: apiclient.Ptr(apiclient.TaskStatusCompleted)})
		require.NoError(t, err)
		assert.Equal(t, apiclient.TaskStatusCompleted, task.Status)

		calls := api.requestsTo("tasks/1/")
		assert.JSONEq(t, `{"status":"completed"}`, calls[len(calls)-1].Body)
	})

	t.Run("Update keeps past due dates", func(t *testing.T) {
		_, err := c.UpdateTask(t.Context(), 1, apiclient.TaskInput{DueDate: apiclient.Ptr("2000-01-01")})
		assert.NoError(t, err)
	})

	t.Run("Delete", func(t *testing.T) {
		assert.NoError(t, c.DeleteTask(t.Context(), 1))
	})
}

func TestClient_CreateTask_Validation(t *testing.T) {
	tests := []struct {
		name      string
		in        apiclient.TaskInput
		wantField string
	}{
		{name: "Missing title", in: apiclient.TaskInput{}, wantField: "title"},
		{name: "Due date in the past", in: apiclient.TaskInput{Title: apiclient.Ptr("t"), DueDate: apiclient.Ptr("2000-01-01")}, wantField: "due_date"},
		{name: "Malformed due date", in: apiclient.TaskInput{Title: apiclient.Ptr("t"), DueDate: apiclient.Ptr("01/01/2030")}, wantField: "due_date"},
		{name: "Unknown priority", in: apiclient.TaskInput{Title: apiclient.Ptr("t"), Priority: apiclient.Ptr(apiclient.TaskPriority("urgent"))}, wantField: "priority"},
		{name: "Unknown status", in: apiclient.TaskInput{Title: apiclient.Ptr("t"), Status: apiclient.Ptr(apiclient.TaskStatus("done"))}, wantField: "status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, c := newLoggedInClient(t)

			_, err := c.CreateTask(t.Context(), tt.in)

			var validationErr *apiclient.ValidationError
			require.ErrorAs(t, err, &validationErr)
			require.Len(t, validationErr.Fields, 1)
			assert.Equal(t, tt.wantField, validationErr.Fields[0].Field)
			assert.Empty(t, api.requestsTo("tasks/"))
		})
	}
}

func TestClient_Teams(t *testing.T) {
	api, c := newLoggedInClient(t)
	api.handleJSON(http.MethodGet, "teams/", http.StatusOK, `[{"id":3,"name":"Platform","description":"Infra"}]`)
	api.handleJSON(http.MethodPost, "teams/create/", http.StatusCreated, `{"message":"Team created successfully"}`)
	api.handleJSON(http.MethodGet, "teams/3/details/", http.StatusOK, `{
		"id":3,"name":"Platform","description":"Infra","owner":"alice","is_owner":true,
		"members":[{"id":1,"username":"alice","role":"owner","is_current_user":true},{"id":2,"username":"bob","role":"member"}],
		"tasks":[{"id":5,"title":"Rotate keys","status":"in-progress","priority":"high","assigned_to":{"id":2,"username":"bob"},"created_by":{"id":1,"username":"alice"},"is_assigned_to_me":false}]
	}`)
	api.handleJSON(http.MethodPost, "teams/3/add-member/", http.StatusOK, `{"message":"bob added to team"}`)
	api.handleJSON(http.MethodGet, "teams/3/available-users/", http.StatusOK, `{"available_users":[{"id":4,"username":"carol","email":"carol@example.com"}]}`)

	teams, err := c.ListTeams(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []apiclient.Team{{ID: 3, Name: "Platform", Description: "Infra"}}, teams)

	msg, err := c.CreateTeam(t.Context(), apiclient.TeamInput{Name: "Platform", Description: "Infra"})
	require.NoError(t, err)
	assert.Equal(t, "Team created successfully", msg.Message)

	_, err = c.CreateTeam(t.Context(), apiclient.TeamInput{})
	require.ErrorIs(t, err, apiclient.ErrValidation)
	assert.Len(t, api.requestsTo("teams/create/"), 1)

	details, err := c.TeamDetails(t.Context(), 3)
	require.NoError(t, err)
	assert.True(t, details.IsOwner)
	require.Len(t, details.Members, 2)
	assert.True(t, details.Members[0].IsCurrentUser)
	require.Len(t, details.Tasks, 1)
	require.NotNil(t, details.Tasks[0].AssignedTo)
	assert.Equal(t, "bob", details.Tasks[0].AssignedTo.Username)
	assert.Equal(t, apiclient.TaskStatusInProgress, details.Tasks[0].Status)

	msg, err = c.AddMember(t.Context(), 3, "bob")
	require.NoError(t, err)
	assert.Equal(t, "bob added to team", msg.Message)
	calls := api.requestsTo("teams/3/add-member/")
	require.Len(t, calls, 1)
	assert.JSONEq(t, `{"username":"bob"}`, calls[0].Body)

	_, err = c.AddMember(t.Context(), 3, " ")
	assert.ErrorIs(t, err, apiclient.ErrValidation)

	users, err := c.AvailableUsers(t.Context(), 3)
	require.NoError(t, err)
	assert.Equal(t, []apiclient.Member{{ID: 4, Username: "carol", Email: "carol@example.com"}}, users)
}

func TestClient_TeamTasks(t *testing.T) {
	api, c := newLoggedInClient(t)
	api.handleJSON(http.MethodPost, "teams/3/tasks/create/", http.StatusCreated, `{"message":"Task created successfully"}`)
	api.handleJSON(http.MethodPatch, "teams/3/tasks/5/update-status/", http.StatusOK, `{"message":"Task status updated successfully"}`)
	api.handle(http.MethodDelete, "teams/3/tasks/5/delete/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	api.handleJSON(http.MethodGet, "teams/3/members/2/tasks/", http.StatusOK, `{"member":{"id":2,"username":"bob"},"tasks":[{"id":5,"title":"Rotate keys","status":"pending","priority":"medium"}]}`)

	msg, err := c.CreateTeamTask(t.Context(), 3, apiclient.TeamTaskInput{Title: "Rotate keys", AssignedTo: apiclient.Ptr(int64(2))})
	require.NoError(t, err)
	assert.Equal(t, "Task created successfully", msg.Message)
	calls := api.requestsTo("teams/3/tasks/create/")
	require.Len(t, calls, 1)
	assert.JSONEq(t, `{"title":"Rotate keys","description":"","priority":"medium","status":"pending","assigned_to":2}`, calls[0].Body)

	_, err = c.CreateTeamTask(t.Context(), 3, apiclient.TeamTaskInput{Title: "Rotate keys", DueDate: "2000-01-01"})
	assert.ErrorIs(t, err, apiclient.ErrValidation)

	msg, err = c.UpdateTeamTaskStatus(t.Context(), 3, 5, apiclient.TaskStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, "Task status updated successfully", msg.Message)
	calls = api.requestsTo("teams/3/tasks/5/update-status/")
	require.Len(t, calls, 1)
	assert.JSONEq(t, `{"status":"completed"}`, calls[0].Body)

	_, err = c.UpdateTeamTaskStatus(t.Context(), 3, 5, "done")
	assert.ErrorIs(t, err, apiclient.ErrValidation)

	msg, err = c.DeleteTeamTask(t.Context(), 3, 5)
	require.NoError(t, err)
	assert.Empty(t, msg.Message)

	memberTasks, err := c.MemberTasks(t.Context(), 3, 2)
	require.NoError(t, err)
	require.NotNil(t, memberTasks.Member)
	assert.Equal(t, "bob", memberTasks.Member.Username)
	require.Len(t, memberTasks.Tasks, 1)
	assert.Equal(t, "Rotate keys", memberTasks.Tasks[0].Title)
}

func TestClient_ListLogs(t *testing.T) {
	api, c := newLoggedInClient(t)
	api.handleJSON(http.MethodGet, "logs/", http.StatusOK, `[
		{"user":"alice","action":"Created task","task_id":5,"timestamp":"2026-10-18T09:15:30.123456"},
		{"user":"bob","action":"Deleted task","task_id":null,"timestamp":"2026-10-18T10:00:00+02:00"}
	]`)

	logs, err := c.ListLogs(t.Context())
	require.NoError(t, err)
	require.Len(t, logs, 2)

	require.NotNil(t, logs[0].TaskID)
	assert.Equal(t, int64(5), *logs[0].TaskID)
	assert.Equal(t, time.Date(2026, 10, 18, 9, 15, 30, 123456000, time.UTC), logs[0].Timestamp.Time)
	assert.Nil(t, logs[1].TaskID)
	assert.Equal(t, time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC), logs[1].Timestamp.UTC())
}

func TestClient_ListLogs_Forbidden(t *testing.T) {
	api, c := newLoggedInClient(t)
	api.handleJSON(http.MethodGet, "logs/", http.StatusForbidden, `{"detail":"You do not have permission to perform this action."}`)

	_, err := c.ListLogs(t.Context())
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, apiclient.StatusCode(err))
	assert.Zero(t, api.refreshCount())
}

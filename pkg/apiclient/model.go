package apiclient

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	default:
		return false
	}
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	default:
		return false
	}
}

// DateLayout is the layout of due dates.
const DateLayout = "2006-01-02"

type Task struct {
	ID          int64        `json:"id" yaml:"id"`
	Team        *int64       `json:"team" yaml:"team"`
	Title       string       `json:"title" yaml:"title"`
	Description string       `json:"description" yaml:"description"`
	CreatedBy   *int64       `json:"created_by" yaml:"created_by"`
	AssignedTo  *int64       `json:"assigned_to" yaml:"assigned_to"`
	Status      TaskStatus   `json:"status" yaml:"status"`
	Priority    TaskPriority `json:"priority" yaml:"priority"`
	DueDate     string       `json:"due_date" yaml:"due_date"`
	CreatedAt   Timestamp    `json:"created_at" yaml:"created_at"`
	UpdatedAt   Timestamp    `json:"updated_at" yaml:"updated_at"`
}

// TaskInput is the payload of task creation and partial updates. Nil fields
// are left out of the request.
type TaskInput struct {
	Title       *string       `json:"title,omitempty"`
	Description *string       `json:"description,omitempty"`
	Status      *TaskStatus   `json:"status,omitempty"`
	Priority    *TaskPriority `json:"priority,omitempty"`
	DueDate     *string       `json:"due_date,omitempty"`
	AssignedTo  *int64        `json:"assigned_to,omitempty"`
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

type Team struct {
	ID          int64  `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

type TeamInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Member struct {
	ID            int64  `json:"id" yaml:"id"`
	Username      string `json:"username" yaml:"username"`
	Email         string `json:"email,omitempty" yaml:"email,omitempty"`
	FirstName     string `json:"first_name,omitempty" yaml:"first_name,omitempty"`
	LastName      string `json:"last_name,omitempty" yaml:"last_name,omitempty"`
	Role          string `json:"role,omitempty" yaml:"role,omitempty"`
	IsCurrentUser bool   `json:"is_current_user,omitempty" yaml:"is_current_user,omitempty"`
}

type TeamTask struct {
	ID             int64        `json:"id" yaml:"id"`
	Title          string       `json:"title" yaml:"title"`
	Description    string       `json:"description" yaml:"description"`
	Status         TaskStatus   `json:"status" yaml:"status"`
	Priority       TaskPriority `json:"priority" yaml:"priority"`
	DueDate        string       `json:"due_date" yaml:"due_date"`
	AssignedTo     *Member      `json:"assigned_to" yaml:"assigned_to"`
	CreatedBy      *Member      `json:"created_by" yaml:"created_by"`
	IsAssignedToMe bool         `json:"is_assigned_to_me" yaml:"is_assigned_to_me"`
	CreatedAt      Timestamp    `json:"created_at" yaml:"created_at"`
}

type TeamTaskInput struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Priority    TaskPriority `json:"priority"`
	DueDate     string       `json:"due_date,omitempty"`
	AssignedTo  *int64       `json:"assigned_to,omitempty"`
	Status      TaskStatus   `json:"status"`
}

type TeamDetails struct {
	ID          int64      `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Owner       string     `json:"owner" yaml:"owner"`
	IsOwner     bool       `json:"is_owner" yaml:"is_owner"`
	Members     []Member   `json:"members" yaml:"members"`
	Tasks       []TeamTask `json:"tasks" yaml:"tasks"`
}

type MemberTasks struct {
	Member *Member    `json:"member,omitempty" yaml:"member,omitempty"`
	Tasks  []TeamTask `json:"tasks" yaml:"tasks"`
}

type Profile struct {
	Username string `json:"username" yaml:"username"`
	Email    string `json:"email" yaml:"email"`
	Phone    string `json:"phone" yaml:"phone"`
	Bio      string `json:"bio" yaml:"bio"`
	Role     string `json:"role,omitempty" yaml:"role,omitempty"`
}

type ProfileUpdate struct {
	Phone *string `json:"phone,omitempty"`
	Bio   *string `json:"bio,omitempty"`
}

type ActivityLog struct {
	ID        int64     `json:"id,omitempty" yaml:"id,omitempty"`
	User      string    `json:"user" yaml:"user"`
	Action    string    `json:"action" yaml:"action"`
	TaskID    *int64    `json:"task_id" yaml:"task_id"`
	Timestamp Timestamp `json:"timestamp" yaml:"timestamp"`
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Message is the answer of endpoints that only report an outcome.
type Message struct {
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

// localTimestampLayout is used by the activity log, which stores naive
// timestamps.
const localTimestampLayout = "2006-01-02T15:04:05.999999"

// Timestamp accepts RFC 3339 timestamps as well as timestamps without a zone,
// which are taken as UTC.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decoding timestamp: %w", err)
	}

	s = strings.TrimSpace(s)
	if s == "" {
		t.Time = time.Time{}
		return nil
	}

	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = parsed
		return nil
	}

	parsed, err := time.ParseInLocation(localTimestampLayout, s, time.UTC)
	if err != nil {
		return fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	t.Time = parsed

	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}

	return json.Marshal(t.Format(time.RFC3339Nano))
}

func (t Timestamp) MarshalYAML() (any, error) {
	if t.IsZero() {
		return "", nil
	}

	return t.Format(time.RFC3339), nil
}

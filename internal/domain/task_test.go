package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask(t *testing.T) {
	t.Parallel()

	creator := uuid.New()

	task, err := NewTask("Write report", "quarterly numbers", "", creator)
	require.NoError(t, err)
	assert.Equal(t, TaskStatusPending, task.Status)
	assert.Equal(t, TaskPriorityMedium, task.Priority, "priority defaults to medium")
	assert.Equal(t, creator, task.CreatedBy)
	assert.Nil(t, task.AssignedTo)
}

func TestTaskValidate(t *testing.T) {
	t.Parallel()

	valid := Task{
		ID:        uuid.New(),
		Title:     "Write report",
		Status:    TaskStatusPending,
		Priority:  TaskPriorityHigh,
		CreatedBy: uuid.New(),
	}

	tests := []struct {
		name    string
		mutate  func(task *Task)
		wantErr error
	}{
		{"valid task", func(task *Task) {}, nil},
		{"empty ID", func(task *Task) { task.ID = uuid.Nil }, ErrEmptyTaskID},
		{"empty title", func(task *Task) { task.Title = "" }, ErrEmptyTaskTitle},
		{"empty creator", func(task *Task) { task.CreatedBy = uuid.Nil }, ErrEmptyCreator},
		{"bad status", func(task *Task) { task.Status = "done" }, ErrInvalidStatus},
		{"bad priority", func(task *Task) { task.Priority = "critical" }, ErrInvalidPriority},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			task := valid
			tt.mutate(&task)

			err := task.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTaskVisibleTo(t *testing.T) {
	t.Parallel()

	creator := uuid.New()
	assignee := uuid.New()
	stranger := uuid.New()

	task := Task{
		ID:         uuid.New(),
		Title:      "Write report",
		Status:     TaskStatusPending,
		Priority:   TaskPriorityLow,
		CreatedBy:  creator,
		AssignedTo: &assignee,
	}

	assert.True(t, task.VisibleTo(creator, RoleUser), "creator sees own task")
	assert.True(t, task.VisibleTo(assignee, RoleUser), "assignee sees assigned task")
	assert.True(t, task.VisibleTo(stranger, RoleAdmin), "admin sees everything")
	assert.False(t, task.VisibleTo(stranger, RoleUser), "stranger sees nothing")
}

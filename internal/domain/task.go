package domain

import "time"

// TaskStatus enumerates lifecycle states for tasks.
type TaskStatus string

const (
	TaskStatusToDo          TaskStatus = "to_do"
	TaskStatusSeen          TaskStatus = "seen"
	TaskStatusPendingReview TaskStatus = "pending_review"
	TaskStatusCompleted     TaskStatus = "completed"
)

var (
	PendingTaskStatuses   = []TaskStatus{TaskStatusToDo, TaskStatusSeen, TaskStatusPendingReview}
	CompletedTaskStatuses = []TaskStatus{TaskStatusCompleted}
)

// AssignmentType is the granularity a task targets.
type AssignmentType string

const (
	AssignmentDepartment    AssignmentType = "department"
	AssignmentSubDepartment AssignmentType = "sub_department"
	AssignmentIndividual    AssignmentType = "individual"
)

// AssignmentTypes lists every assignment granularity.
var AssignmentTypes = []AssignmentType{AssignmentDepartment, AssignmentSubDepartment, AssignmentIndividual}

// TaskCompletion is a completed task attributed to one department.
// DepartmentKey is the target department, the target sub-department, or the
// assignee's sub-department for individual tasks.
type TaskCompletion struct {
	TaskID        string
	DepartmentKey string
	CompletedAt   time.Time
}

// Package lifecycle holds the state machines of KuFlow tasks and processes.
package lifecycle

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/kuflow/kuflow-sdk-go/pkg/client"
)

var ErrInvalidTransition = errors.New("invalid state transition")

// TaskTransitions lists the states each task state may move to.
var TaskTransitions = map[client.TaskState][]client.TaskState{
	client.TaskStateReady:     {client.TaskStateClaimed, client.TaskStateCancelled},
	client.TaskStateClaimed:   {client.TaskStateClaimed, client.TaskStateCompleted, client.TaskStateCancelled},
	client.TaskStateCompleted: {},
	client.TaskStateCancelled: {},
}

// ProcessTransitions lists the states each process state may move to.
var ProcessTransitions = map[client.ProcessState][]client.ProcessState{
	client.ProcessStateRunning:   {client.ProcessStateCompleted, client.ProcessStateCancelled},
	client.ProcessStateCompleted: {},
	client.ProcessStateCancelled: {},
}

func CanTransitionTask(from, to client.TaskState) bool {
	return slices.Contains(TaskTransitions[from], to)
}

func CanTransitionProcess(from, to client.ProcessState) bool {
	return slices.Contains(ProcessTransitions[from], to)
}

func IsFinalTask(s client.TaskState) bool {
	return s == client.TaskStateCompleted || s == client.TaskStateCancelled
}

func IsFinalProcess(s client.ProcessState) bool {
	return s == client.ProcessStateCompleted || s == client.ProcessStateCancelled
}

// TaskMachine applies actions to a task in place.
type TaskMachine struct {
	task *client.Task
	now  func() time.Time
}

func NewTaskMachine(task *client.Task) *TaskMachine {
	return &TaskMachine{task: task, now: func() time.Time { return time.Now().UTC() }}
}

// Transition moves the task to target and stamps the modification time.
func (m *TaskMachine) Transition(target client.TaskState) error {
	if !CanTransitionTask(m.task.State, target) {
		return fmt.Errorf("%w: task %s from %s to %s", ErrInvalidTransition, m.task.ID, m.task.State, target)
	}
	m.task.State = target
	m.touch()
	return nil
}

// Claim gives a READY task to owner.
func (m *TaskMachine) Claim(owner client.Principal) error {
	if m.task.State != client.TaskStateReady {
		return fmt.Errorf("%w: task %s is %s, only READY tasks can be claimed", ErrInvalidTransition, m.task.ID, m.task.State)
	}
	if err := m.Transition(client.TaskStateClaimed); err != nil {
		return err
	}
	m.task.Owner = &owner
	return nil
}

// Assign gives an open task to owner, claimed or not.
func (m *TaskMachine) Assign(owner client.Principal) error {
	if err := m.Transition(client.TaskStateClaimed); err != nil {
		return err
	}
	m.task.Owner = &owner
	return nil
}

func (m *TaskMachine) Complete() error {
	if m.task.State != client.TaskStateClaimed {
		return fmt.Errorf("%w: task %s is %s, only CLAIMED tasks can be completed", ErrInvalidTransition, m.task.ID, m.task.State)
	}
	return m.Transition(client.TaskStateCompleted)
}

func (m *TaskMachine) Cancel() error {
	return m.Transition(client.TaskStateCancelled)
}

// AppendLog records a log entry on a task that is not finished.
func (m *TaskMachine) AppendLog(message string, level client.TaskLogLevel) error {
	if IsFinalTask(m.task.State) {
		return fmt.Errorf("%w: task %s is %s, logs are closed", ErrInvalidTransition, m.task.ID, m.task.State)
	}
	now := m.now()
	m.task.Logs = append(m.task.Logs, client.TaskLog{
		ID:        uuid.New(),
		CreatedAt: now,
		Message:   message,
		Level:     level,
	})
	m.task.LastModifiedAt = &now
	return nil
}

func (m *TaskMachine) touch() {
	now := m.now()
	m.task.LastModifiedAt = &now
}

// ProcessMachine applies actions to a process in place.
type ProcessMachine struct {
	process *client.Process
	now     func() time.Time
}

func NewProcessMachine(process *client.Process) *ProcessMachine {
	return &ProcessMachine{process: process, now: func() time.Time { return time.Now().UTC() }}
}

func (m *ProcessMachine) Transition(target client.ProcessState) error {
	if !CanTransitionProcess(m.process.State, target) {
		return fmt.Errorf("%w: process %s from %s to %s", ErrInvalidTransition, m.process.ID, m.process.State, target)
	}
	m.process.State = target
	m.touch()
	return nil
}

func (m *ProcessMachine) Complete() error {
	return m.Transition(client.ProcessStateCompleted)
}

func (m *ProcessMachine) Cancel() error {
	return m.Transition(client.ProcessStateCancelled)
}

// ChangeInitiator replaces the initiator of a running process.
func (m *ProcessMachine) ChangeInitiator(initiatorID uuid.UUID) error {
	if IsFinalProcess(m.process.State) {
		return fmt.Errorf("%w: process %s is %s", ErrInvalidTransition, m.process.ID, m.process.State)
	}
	m.process.InitiatorID = &initiatorID
	m.touch()
	return nil
}

func (m *ProcessMachine) touch() {
	now := m.now()
	m.process.LastModifiedAt = &now
}

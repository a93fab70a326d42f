package store

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Tasks returns the task list. A record that decodes to the wrong
// shape is reset to empty rather than propagated.
func (s *Store) Tasks() ([]Task, error) {
	var tasks []Task
	if err := s.getRecord(KeyTasks, &tasks); err != nil {
		if !errors.Is(err, ErrBadShape) {
			return nil, err
		}
		if err := s.setRecord(KeyTasks, []Task{}); err != nil {
			return nil, err
		}
		return []Task{}, nil
	}
	return tasks, nil
}

func (s *Store) AddTask(text string, priority TaskPriority) (*Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("empty task text")
	}
	switch priority {
	case PriorityHigh, PriorityMedium, PriorityLow:
	default:
		priority = PriorityMedium
	}

	tasks, err := s.Tasks()
	if err != nil {
		return nil, err
	}
	task := Task{
		ID:        uuid.NewString(),
		Text:      text,
		Priority:  priority,
		CreatedAt: time.Now().UnixMilli(),
	}
	tasks = append(tasks, task)
	if err := s.setRecord(KeyTasks, tasks); err != nil {
		return nil, err
	}
	return &task, nil
}

// ToggleTask flips completion for the task with the given id.
// Unknown ids are ignored.
func (s *Store) ToggleTask(id string) error {
	tasks, err := s.Tasks()
	if err != nil {
		return err
	}
	for i := range tasks {
		if tasks[i].ID == id {
			tasks[i].Completed = !tasks[i].Completed
			return s.setRecord(KeyTasks, tasks)
		}
	}
	return nil
}

func (s *Store) DeleteTask(id string) error {
	tasks, err := s.Tasks()
	if err != nil {
		return err
	}
	kept := tasks[:0]
	for _, t := range tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(tasks) {
		return nil
	}
	return s.setRecord(KeyTasks, kept)
}

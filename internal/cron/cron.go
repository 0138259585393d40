// Package cron runs the background maintenance jobs.
package cron

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Dexter0900/TaskEngineX/internal/notification"
	"github.com/Dexter0900/TaskEngineX/internal/repository"
)

// Scheduler owns the periodic jobs: due-date reminders, orphan subtask
// cleanup and notification pruning.
type Scheduler struct {
	cron             *cron.Cron
	notifier         *notification.Service
	taskRepo         repository.TaskRepository
	subtaskRepo      repository.SubtaskRepository
	notificationRepo repository.NotificationRepository
}

func NewScheduler(notifier *notification.Service, repos *repository.Repositories) *Scheduler {
	return &Scheduler{
		cron:             cron.New(),
		notifier:         notifier,
		taskRepo:         repos.Task,
		subtaskRepo:      repos.Subtask,
		notificationRepo: repos.Notification,
	}
}

func (s *Scheduler) Start() {
	// Due date reminders every day at 9 AM.
	s.cron.AddFunc("0 9 * * *", func() {
		log.Println("⏰ [cron] running due date reminder check")
		s.sendDueDateReminders()
	})

	// Orphaned subtask sweep every night. The foreign key should make this
	// a no-op; a nonzero count is worth investigating.
	s.cron.AddFunc("30 3 * * *", func() {
		log.Println("⏰ [cron] running orphan subtask sweep")
		s.sweepOrphanSubtasks()
	})

	// Prune read notifications every Sunday at midnight.
	s.cron.AddFunc("0 0 * * 0", func() {
		log.Println("⏰ [cron] running notification cleanup")
		s.cleanupNotifications()
	})

	s.cron.Start()
	log.Println("⏰ [cron] scheduler started")
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("⏰ [cron] scheduler stopped")
}

func (s *Scheduler) sendDueDateReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tasks, err := s.taskRepo.FindDueSoon(ctx, 24*time.Hour)
	if err != nil {
		log.Printf("⚠️ [cron] due date query failed: %v", err)
		return
	}
	for _, task := range tasks {
		target := task.UserID
		if task.AssignedTo != nil {
			target = *task.AssignedTo
		}
		s.notifier.Notify(target, "task:due-soon", "Task due soon",
			task.Title+" is due within 24 hours",
			map[string]any{"taskId": task.ID})
	}
	if len(tasks) > 0 {
		log.Printf("⏰ [cron] sent %d due date reminders", len(tasks))
	}
}

func (s *Scheduler) sweepOrphanSubtasks() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed, err := s.subtaskRepo.DeleteOrphans(ctx)
	if err != nil {
		log.Printf("⚠️ [cron] orphan sweep failed: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("⚠️ [cron] removed %d orphaned subtasks", removed)
	}
}

func (s *Scheduler) cleanupNotifications() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed, err := s.notificationRepo.DeleteOlderThan(ctx, 30*24*time.Hour)
	if err != nil {
		log.Printf("⚠️ [cron] notification cleanup failed: %v", err)
		return
	}
	log.Printf("⏰ [cron] pruned %d old notifications", removed)
}

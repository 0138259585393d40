// Package queue is a Redis-backed job queue for outbound email. The service
// layer enqueues; worker goroutines pop jobs with BRPOP and hand them to the
// SMTP sender, so a slow mail provider never blocks a request.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Dexter0900/TaskEngineX/internal/email"
)

const (
	queueKey    = "queue:email"
	popTimeout  = 5 * time.Second
	maxAttempts = 3
)

// Job kinds.
const (
	jobMagicLink      = "magic-link"
	jobTaskAssigned   = "task-assigned"
	jobApprovalResult = "approval-result"
)

type job struct {
	Kind     string `json:"kind"`
	To       string `json:"to"`
	Name     string `json:"name"`
	Link     string `json:"link,omitempty"`
	Task     string `json:"task,omitempty"`
	Assigner string `json:"assigner,omitempty"`
	Approved bool   `json:"approved,omitempty"`
	Attempt  int    `json:"attempt"`
}

// EmailQueue implements service.Mailer by pushing jobs to Redis.
type EmailQueue struct {
	client *redis.Client
	sender *email.Sender

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewEmailQueue(client *redis.Client, sender *email.Sender) *EmailQueue {
	return &EmailQueue{client: client, sender: sender}
}

// Start launches the worker goroutines.
func (q *EmailQueue) Start(workers int) {
	ctx, cancel := context.WithCancel(context.Background())
	q.cancel = cancel
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx)
	}
	log.Printf("📬 [queue] email queue started with %d workers", workers)
}

// Stop cancels the workers and waits for in-flight jobs to finish.
func (q *EmailQueue) Stop() {
	if q.cancel != nil {
		q.cancel()
	}
	q.wg.Wait()
}

func (q *EmailQueue) SendMagicLink(to, name, link string) error {
	return q.enqueue(job{Kind: jobMagicLink, To: to, Name: name, Link: link})
}

func (q *EmailQueue) SendTaskAssigned(to, name, taskTitle, assignerName string) error {
	return q.enqueue(job{Kind: jobTaskAssigned, To: to, Name: name, Task: taskTitle, Assigner: assignerName})
}

func (q *EmailQueue) SendApprovalResult(to, name, taskTitle string, approved bool) error {
	return q.enqueue(job{Kind: jobApprovalResult, To: to, Name: name, Task: taskTitle, Approved: approved})
}

func (q *EmailQueue) enqueue(j job) error {
	data, err := json.Marshal(j)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return q.client.LPush(ctx, queueKey, data).Err()
}

func (q *EmailQueue) worker(ctx context.Context) {
	defer q.wg.Done()
	for {
		res, err := q.client.BRPop(ctx, popTimeout, queueKey).Result()
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			if errors.Is(err, redis.Nil) {
				continue
			}
			log.Printf("⚠️ [queue] pop failed: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		// BRPop returns [key, value].
		if len(res) != 2 {
			continue
		}
		q.process([]byte(res[1]))
	}
}

func (q *EmailQueue) process(data []byte) {
	var j job
	if err := json.Unmarshal(data, &j); err != nil {
		log.Printf("⚠️ [queue] dropping malformed job: %v", err)
		return
	}

	var err error
	switch j.Kind {
	case jobMagicLink:
		err = q.sender.SendMagicLink(j.To, j.Name, j.Link)
	case jobTaskAssigned:
		err = q.sender.SendTaskAssigned(j.To, j.Name, j.Task, j.Assigner)
	case jobApprovalResult:
		err = q.sender.SendApprovalResult(j.To, j.Name, j.Task, j.Approved)
	default:
		log.Printf("⚠️ [queue] dropping job with unknown kind %q", j.Kind)
		return
	}

	if err != nil {
		j.Attempt++
		if j.Attempt >= maxAttempts {
			log.Printf("⚠️ [queue] giving up on %s job to %s after %d attempts: %v", j.Kind, j.To, j.Attempt, err)
			return
		}
		log.Printf("⚠️ [queue] %s job to %s failed (attempt %d), requeueing: %v", j.Kind, j.To, j.Attempt, err)
		if err := q.enqueue(j); err != nil {
			log.Printf("⚠️ [queue] requeue failed: %v", err)
		}
	}
}

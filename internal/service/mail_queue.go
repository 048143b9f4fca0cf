package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

var (
	ErrQueueFull   = errors.New("mail queue full")
	ErrQueueClosed = errors.New("mail queue closed")
)

const (
	jobPending int32 = iota
	jobRunning
	jobAbandoned
)

type MailJob struct {
	ID   string
	Mail *VerificationMail
	Ctx  context.Context
	Done chan error

	state atomic.Int32
}

// claim moves a pending job to to. Only one of the worker and the
// requester can win it.
func (j *MailJob) claim(to int32) bool {
	return j.state.CompareAndSwap(jobPending, to)
}

// MailQueue bounds how many mails are sent at once. It is a Mailer itself,
// SendVerificationMail blocks until a worker has sent the mail so callers
// still see delivery errors. A caller whose context ends only gets
// ctx.Err() back while its mail hasn't been picked up yet.
type MailQueue struct {
	mailer  Mailer
	jobs    chan *MailJob
	running atomic.Int32
	workers int

	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
	wg        sync.WaitGroup
}

// NewMailQueue initializes a new mail queue that holds at most size
// waiting jobs
func NewMailQueue(mailer Mailer, workers, size int) *MailQueue {
	if workers < 1 {
		workers = 1
	}

	zap.L().Debug("Initializing mail queue", zap.Int("workers", workers), zap.Int("size", size))

	return &MailQueue{
		mailer:  mailer,
		jobs:    make(chan *MailJob, size),
		workers: workers,
	}
}

func (q *MailQueue) StartWorkerPool() {
	for range q.workers {
		q.wg.Add(1)
		go q.worker()
	}
}

func (q *MailQueue) worker() {
	defer q.wg.Done()

	for job := range q.jobs {
		err := q.send(job)

		job.Done <- err
		close(job.Done)

		q.running.Add(-1)

		if err != nil {
			zap.L().Error("Mail job finished with an error", zap.String("job_id", job.ID), zap.Error(err))
		} else {
			zap.L().Debug("Mail job finished successfully", zap.String("job_id", job.ID))
		}
	}
}

func (q *MailQueue) send(job *MailJob) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mailer panicked: %v", r)
		}
	}()

	// The requester already gave up
	if !job.claim(jobRunning) {
		return context.Canceled
	}

	// Once started the mail is sent through even if the requester leaves,
	// the requester waits for the result in that case
	return q.mailer.SendVerificationMail(context.WithoutCancel(job.Ctx), job.Mail)
}

func (q *MailQueue) Enqueue(job *MailJob) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.jobs <- job:
		q.running.Add(1)
		zap.L().Debug("New mail job enqueued", zap.Int32("enqueued", q.running.Load()), zap.String("job_id", job.ID))
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *MailQueue) SendVerificationMail(ctx context.Context, m *VerificationMail) error {
	id, err := gonanoid.New(12)
	if err != nil {
		return fmt.Errorf("failed to generate job ID, %w", err)
	}

	job := &MailJob{
		ID:   id,
		Mail: m,
		Ctx:  ctx,
		Done: make(chan error, 1),
	}

	if err := q.Enqueue(job); err != nil {
		return err
	}

	select {
	case err := <-job.Done:
		return err
	case <-ctx.Done():
		if job.claim(jobAbandoned) {
			return ctx.Err()
		}

		// A worker is already sending it
		return <-job.Done
	}
}

// Close stops accepting jobs and waits for the queued ones to finish
func (q *MailQueue) Close() {
	q.closeOnce.Do(func() {
		q.mu.Lock()
		q.closed = true
		close(q.jobs)
		q.mu.Unlock()
	})

	q.wg.Wait()
}

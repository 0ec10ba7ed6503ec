package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Kisangi1/The-SOL-NEW/internal/database"
	"github.com/Kisangi1/The-SOL-NEW/internal/mailer"
	"github.com/Kisangi1/The-SOL-NEW/internal/metrics"
	"github.com/Kisangi1/The-SOL-NEW/internal/models"
)

// MailWorker consumes the notifications outbox and delivers emails.
// Tasks flow through three layers: an in-memory channel for the happy
// path, a redis list for durability across restarts, and the DB outbox
// table as the source of truth picked up by polling.
type MailWorker struct {
	db            *database.DB
	sender        mailer.Sender
	redis         *redis.Client
	retryPolicy   RetryPolicy
	queue         chan models.Notification
	redisQueueKey string
	deadLetterKey string
	pollInterval  time.Duration
	batchSize     int
	logger        *log.Logger
}

// NewMailWorker builds a worker with sane defaults.
func NewMailWorker(db *database.DB, sender mailer.Sender, redisClient *redis.Client, retry RetryPolicy, logger *log.Logger) *MailWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = 1 * time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}
	if logger == nil {
		logger = log.Default()
	}

	return &MailWorker{
		db:            db,
		sender:        sender,
		redis:         redisClient,
		retryPolicy:   retry,
		queue:         make(chan models.Notification, models.WorkerQueueSize),
		redisQueueKey: "mail:queue",
		deadLetterKey: "mail:deadletter",
		pollInterval:  2 * time.Second,
		batchSize:     20,
		logger:        logger,
	}
}

// SetPolling overrides the outbox polling interval and batch size.
// Zero values keep the defaults.
func (w *MailWorker) SetPolling(interval time.Duration, batchSize int) {
	if interval > 0 {
		w.pollInterval = interval
	}
	if batchSize > 0 {
		w.batchSize = batchSize
	}
}

// Enqueue persists a notification to the outbox and schedules it via
// redis or the in-memory queue. The outbox row survives even if both
// queues are unavailable; polling will pick it up.
func (w *MailWorker) Enqueue(ctx context.Context, template, recipient, payload string) error {
	if template == "" {
		return errors.New("template is required")
	}
	if recipient == "" {
		return errors.New("recipient is required")
	}

	notification := models.Notification{
		Template:  template,
		Recipient: recipient,
		Payload:   payload,
		Status:    "pending",
	}

	if err := w.db.CreateNotification(ctx, &notification); err != nil {
		return fmt.Errorf("persist notification: %w", err)
	}

	// Try redis first for durability.
	if w.redis != nil {
		if err := w.pushRedis(ctx, notification); err != nil {
			w.logger.Printf("mail_worker: redis push failed, fallback to memory queue: %v", err)
		} else {
			w.markQueued(ctx, notification.ID)
			return nil
		}
	}

	// Fallback to in-memory queue if redis missing or failed.
	select {
	case w.queue <- notification:
		w.markQueued(ctx, notification.ID)
	default:
		w.logger.Printf("mail_worker: in-memory queue full, notification %d dropped to polling", notification.ID)
	}

	return nil
}

// markQueued claims the row for the queue that holds it, so the DB
// polling backstop does not deliver the same notification twice.
// Polling reclaims queued rows after a timeout in case the queue copy
// is lost.
func (w *MailWorker) markQueued(ctx context.Context, id int64) {
	if err := w.db.UpdateNotificationStatus(ctx, id, "queued", "", nil); err != nil {
		w.logger.Printf("mail_worker: mark queued %d: %v", id, err)
	}
}

// Start launches main loop; stops when ctx is done.
func (w *MailWorker) Start(ctx context.Context) {
	w.logger.Printf("mail_worker: started")
	defer w.logger.Printf("mail_worker: stopped")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if n, ok := w.tryLocalQueue(); ok {
			w.processNotification(ctx, &n)
			continue
		}

		if n, ok := w.tryRedis(ctx); ok {
			w.processNotification(ctx, &n)
			continue
		}

		pending, err := w.db.GetPendingNotifications(ctx, w.batchSize)
		if err != nil {
			w.logger.Printf("mail_worker: fetch pending: %v", err)
			time.Sleep(w.pollInterval)
			continue
		}
		if len(pending) == 0 {
			time.Sleep(w.pollInterval)
			continue
		}

		for i := range pending {
			w.processNotification(ctx, &pending[i])
		}
	}
}

func (w *MailWorker) tryLocalQueue() (models.Notification, bool) {
	select {
	case n := <-w.queue:
		return n, true
	default:
		return models.Notification{}, false
	}
}

func (w *MailWorker) tryRedis(ctx context.Context) (models.Notification, bool) {
	if w.redis == nil {
		return models.Notification{}, false
	}
	res, err := w.redis.BRPop(ctx, time.Second, w.redisQueueKey).Result()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, redis.Nil) {
			return models.Notification{}, false
		}
		w.logger.Printf("mail_worker: redis BRPOP error: %v", err)
		return models.Notification{}, false
	}
	if len(res) != 2 {
		return models.Notification{}, false
	}
	var n models.Notification
	if err := json.Unmarshal([]byte(res[1]), &n); err != nil {
		w.logger.Printf("mail_worker: decode redis notification: %v", err)
		return models.Notification{}, false
	}
	return n, true
}

func (w *MailWorker) processNotification(ctx context.Context, n *models.Notification) {
	if err := w.sender.Send(n.Template, n.Recipient, n.Payload); err != nil {
		metrics.IncEmail(n.Template, "failed")
		w.retryOrFail(ctx, n, err)
		return
	}

	metrics.IncEmail(n.Template, "sent")
	if err := w.db.UpdateNotificationStatus(ctx, n.ID, "completed", "", nil); err != nil {
		w.logger.Printf("mail_worker: mark completed %d: %v", n.ID, err)
	}
}

func (w *MailWorker) retryOrFail(ctx context.Context, n *models.Notification, cause error) {
	attempt := n.RetryCount + 1
	if w.retryPolicy.Exhausted(attempt) {
		if err := w.db.UpdateNotificationStatus(ctx, n.ID, "failed", cause.Error(), nil); err != nil {
			w.logger.Printf("mail_worker: mark failed %d: %v", n.ID, err)
		}
		w.pushDeadLetter(ctx, n)
		return
	}

	nextDelay := w.retryPolicy.NextDelay(attempt)
	nextTime := time.Now().Add(nextDelay)
	if err := w.db.UpdateNotificationStatus(ctx, n.ID, "retry", cause.Error(), &nextTime); err != nil {
		w.logger.Printf("mail_worker: mark retry %d: %v", n.ID, err)
	}
}

func (w *MailWorker) pushRedis(ctx context.Context, n models.Notification) error {
	if w.redis == nil {
		return errors.New("redis client is nil")
	}
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return w.redis.LPush(ctx, w.redisQueueKey, data).Err()
}

func (w *MailWorker) pushDeadLetter(ctx context.Context, n *models.Notification) {
	if w.redis == nil {
		return
	}
	data, err := json.Marshal(n)
	if err != nil {
		w.logger.Printf("mail_worker: encode deadletter %d: %v", n.ID, err)
		return
	}
	if err := w.redis.LPush(ctx, w.deadLetterKey, data).Err(); err != nil {
		w.logger.Printf("mail_worker: deadletter push %d: %v", n.ID, err)
	}
}

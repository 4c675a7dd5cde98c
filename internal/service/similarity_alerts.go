package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"golang.org/x/time/rate"

	"github.com/noah-isme/campus-api/internal/observability"
)

// SimilarityAlert is emitted when a freshly built report contains suspect groups.
type SimilarityAlert struct {
	AssignmentID      uint       `json:"assignment_id"`
	CourseID          uint       `json:"course_id"`
	Threshold         int        `json:"threshold"`
	Groups            [][]string `json:"groups"`
	FlaggedStudentIDs []string   `json:"flagged_student_ids"`
	GeneratedAt       time.Time  `json:"generated_at"`
}

// AlertPublisher delivers similarity alerts to downstream consumers.
type AlertPublisher interface {
	PublishSimilarityAlert(ctx context.Context, alert SimilarityAlert) error
}

type natsAlertPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSAlertPublisher publishes alerts as JSON on subject. A nil connection or empty subject
// yields a publisher that drops alerts.
func NewNATSAlertPublisher(conn *nats.Conn, subject string) AlertPublisher {
	if conn == nil || subject == "" {
		return noopAlertPublisher{}
	}
	return &natsAlertPublisher{conn: conn, subject: subject}
}

func (p *natsAlertPublisher) PublishSimilarityAlert(ctx context.Context, alert SimilarityAlert) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(alert)
	if err != nil {
		return err
	}

	msg := nats.NewMsg(p.subject)
	msg.Data = payload
	msg.Header.Set("Content-Type", "application/json")
	if correlation := observability.CorrelationID(ctx); correlation != "" {
		msg.Header.Set("X-Correlation-ID", correlation)
	}
	return p.conn.PublishMsg(msg)
}

// ErrAlertThrottled is returned when an assignment already raised an alert within the interval.
var ErrAlertThrottled = errors.New("similarity alert throttled")

type throttledAlertPublisher struct {
	next     AlertPublisher
	every    time.Duration
	mu       sync.Mutex
	limiters map[uint]*rate.Limiter
}

// NewThrottledAlertPublisher lets at most one alert per assignment through every interval.
// Reports rebuilt after each resubmission would otherwise repeat the same alert. A non-positive
// interval disables throttling.
func NewThrottledAlertPublisher(next AlertPublisher, every time.Duration) AlertPublisher {
	if every <= 0 {
		return next
	}
	return &throttledAlertPublisher{
		next:     next,
		every:    every,
		limiters: make(map[uint]*rate.Limiter),
	}
}

func (p *throttledAlertPublisher) PublishSimilarityAlert(ctx context.Context, alert SimilarityAlert) error {
	if !p.limiter(alert.AssignmentID).Allow() {
		return ErrAlertThrottled
	}
	return p.next.PublishSimilarityAlert(ctx, alert)
}

func (p *throttledAlertPublisher) limiter(assignmentID uint) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	limiter, ok := p.limiters[assignmentID]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(p.every), 1)
		p.limiters[assignmentID] = limiter
	}
	return limiter
}

type noopAlertPublisher struct{}

func (noopAlertPublisher) PublishSimilarityAlert(context.Context, SimilarityAlert) error {
	return nil
}

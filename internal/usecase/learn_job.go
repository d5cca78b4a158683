package usecase

import (
	"context"
	"fmt"

	"SignalPulse/internal/domain/models"
	"SignalPulse/pkg/queue"
)

// LearnMessageType is the queue message type carrying accuracy reports.
const LearnMessageType = "accuracy_report"

// LearnJob consumes queued accuracy reports and applies them to the
// signal engine. Decoupling learning from the HTTP request keeps the
// learn endpoint fast and tolerant of engine lock contention.
type LearnJob struct {
	svc *SignalService
}

func NewLearnJob(svc *SignalService) *LearnJob {
	return &LearnJob{svc: svc}
}

func (j *LearnJob) Name() string { return "apply-accuracy-report" }

func (j *LearnJob) Type() string { return LearnMessageType }

func (j *LearnJob) Handle(ctx context.Context, payload interface{}) error {
	req, err := queue.ParsePayload[models.LearnRequest](payload)
	if err != nil {
		return fmt.Errorf("parse accuracy report: %w", err)
	}
	return j.svc.ApplyReport(ctx, req)
}

var _ queue.Job = (*LearnJob)(nil)

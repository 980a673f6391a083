package service

import (
	"context"

	"github.com/LoweKTH/MarketingAgentFactory/internal/domain"
)

// generationJob carries one asynchronous generation through the background
// runner. Execute guarantees the task reaches a terminal state: any pipeline
// error, including recovered panics, drives the task to failed before the
// error is surfaced to the runner for logging.
type generationJob struct {
	svc  *contentService
	task *domain.Task
	req  *GenerationRequest
}

func (j *generationJob) ID() string {
	return j.task.TaskID
}

func (j *generationJob) Execute(ctx context.Context) error {
	_, err := j.svc.executePipeline(ctx, j.task, j.req)
	if err != nil {
		j.svc.failTask(ctx, j.task.TaskID, err)
		return err
	}
	return nil
}

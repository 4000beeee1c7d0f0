package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskLeadScoreRecompute = "leads.score.recompute"

const TaskDealHoursRecompute = "deals.hours.recompute"

type LeadScoreRecomputePayload struct {
	LeadID string `json:"leadId"`
}

type DealHoursRecomputePayload struct {
	DealID string `json:"dealId"`
}

func NewLeadScoreRecomputeTask(payload LeadScoreRecomputePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadScoreRecompute, data), nil
}

func ParseLeadScoreRecomputePayload(task *asynq.Task) (LeadScoreRecomputePayload, error) {
	var payload LeadScoreRecomputePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadScoreRecomputePayload{}, err
	}
	return payload, nil
}

func NewDealHoursRecomputeTask(payload DealHoursRecomputePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDealHoursRecompute, data), nil
}

func ParseDealHoursRecomputePayload(task *asynq.Task) (DealHoursRecomputePayload, error) {
	var payload DealHoursRecomputePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return DealHoursRecomputePayload{}, err
	}
	return payload, nil
}

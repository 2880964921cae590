package usecase

import (
	"context"
	"fmt"
	"time"

	"DrawPulse/internal/domain/models"
	domrepo "DrawPulse/internal/domain/repository"
)

// HistoryUseCase provides business logic for retrieving resolved decisions.
type HistoryUseCase struct {
	store domrepo.OutcomeStore
}

func NewHistoryUseCase(store domrepo.OutcomeStore) *HistoryUseCase {
	return &HistoryUseCase{store: store}
}

type GetHistoryParams struct {
	From  time.Time
	To    time.Time
	Limit int
}

type GetHistoryResult struct {
	From      time.Time
	To        time.Time
	Count     int
	Wins      int
	Decisions []models.ResolvedDecision
}

func (uc *HistoryUseCase) GetHistory(ctx context.Context, p GetHistoryParams) (*GetHistoryResult, error) {
	if p.To.IsZero() {
		p.To = time.Now()
	}
	if p.From.IsZero() {
		p.From = p.To.Add(-24 * time.Hour)
	}
	if p.From.After(p.To) {
		return nil, fmt.Errorf("from must be <= to")
	}
	if p.Limit <= 0 {
		p.Limit = 50
	}
	if p.Limit > 500 {
		p.Limit = 500
	}

	decisions, err := uc.store.DecisionHistory(ctx, p.From, p.To, p.Limit)
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}

	wins := 0
	for _, d := range decisions {
		if d.Correct {
			wins++
		}
	}

	return &GetHistoryResult{
		From:      p.From,
		To:        p.To,
		Count:     len(decisions),
		Wins:      wins,
		Decisions: decisions,
	}, nil
}

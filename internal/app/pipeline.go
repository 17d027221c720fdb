package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/grantwise/matchd/internal/domain/explain"
	"github.com/grantwise/matchd/internal/domain/model"
	"github.com/grantwise/matchd/internal/domain/scoring"
	"github.com/grantwise/matchd/pkg/logger"
	"github.com/grantwise/matchd/pkg/metrics"
)

// Run executes the match pipeline for one profile: fetch profile, build the
// feature vector, score every candidate, filter, sort, persist and notify.
// Callers get either the full ordered result list or a run-level error,
// never a partial set. Individual malformed candidates are logged and
// skipped without failing the run.
func (s *Service) Run(ctx context.Context, profileID string) ([]model.MatchResult, error) {
	start := time.Now()
	defer func() {
		metrics.RecordPipelineDuration(float64(time.Since(start).Milliseconds()))
	}()

	profile, err := s.profiles.FetchProfile(ctx, profileID)
	if err != nil {
		metrics.RecordPipelineFailure()
		return nil, fmt.Errorf("fetch profile %s: %w", profileID, err)
	}
	candidates, err := s.sources.FetchCandidates(ctx)
	if err != nil {
		metrics.RecordPipelineFailure()
		return nil, fmt.Errorf("fetch candidates: %w", err)
	}

	fv := s.builder.Build(profile)
	results := s.scoreAll(ctx, profile, fv, candidates)

	if err := s.store.SaveRun(ctx, profileID, results); err != nil {
		metrics.RecordPipelineFailure()
		return nil, fmt.Errorf("persist results for %s: %w", profileID, err)
	}
	metrics.RecordPipelineRun()

	for i := range results {
		n := s.buildNotification(profile, results[i])
		if _, _, err := s.SubmitNotification(ctx, n); err != nil {
			s.logger.Warn(ctx, "match notification rejected",
				logger.String("profileID", profileID),
				logger.String("candidateID", results[i].CandidateID),
				logger.Error(err),
			)
		}
	}
	return results, nil
}

// scoreAll scores candidates concurrently. Scoring is pure and shares no
// state, so candidates fan out across workers; results re-enter in input
// order, which keeps the final sort stable and deterministic regardless of
// scheduling.
func (s *Service) scoreAll(ctx context.Context, profile model.Profile, fv model.FeatureVector, candidates []model.Candidate) []model.MatchResult {
	type slot struct {
		result model.MatchResult
		ok     bool
	}
	slots := make([]slot, len(candidates))

	var wg sync.WaitGroup
	sem := make(chan struct{}, s.workerCount)
	for i := range candidates {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			c := candidates[i]
			if err := scoring.ValidateCandidate(c); err != nil {
				metrics.RecordCandidateSkipped()
				s.logger.Warn(ctx, "skipping malformed candidate",
					logger.String("candidateID", c.ID),
					logger.Error(err),
				)
				return
			}
			cs, overall := s.scorer.Score(profile, fv, c)
			metrics.RecordCandidateScored()
			if overall <= s.threshold {
				return
			}
			ex := explain.Generate(explain.Input{
				Candidate: c,
				Scores:    cs,
				Overall:   overall,
				Now:       s.nowFn(),
			})
			slots[i] = slot{
				result: model.MatchResult{
					CandidateID: c.ID,
					Score:       overall,
					Categories:  cs,
					ReasonCodes: ex.ReasonCodes,
					Explanation: ex.Explanation,
					Actions:     ex.Actions,
					Confidence:  scoring.Confidence(overall),
				},
				ok: true,
			}
		}(i)
	}
	wg.Wait()

	// Collect in input order, then stable-sort by score descending so
	// equal scores keep their original candidate-source order.
	results := make([]model.MatchResult, 0, len(candidates))
	for i := range slots {
		if slots[i].ok {
			results = append(results, slots[i].result)
			metrics.RecordMatchFound(slots[i].result.Score)
		}
	}
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})
	return results
}

// buildNotification turns one qualifying result into an organization-wide
// notification. Urgent deadlines escalate the priority; high-confidence
// matches ride above normal.
func (s *Service) buildNotification(profile model.Profile, r model.MatchResult) model.Notification {
	priority := model.PriorityNormal
	switch {
	case containsCode(r.ReasonCodes, explain.CodeDeadlineSoon):
		priority = model.PriorityUrgent
	case r.Confidence == "high":
		priority = model.PriorityHigh
	}
	return model.Notification{
		ID:                   uuid.NewString(),
		TargetOrganizationID: profile.OrganizationID,
		Type:                 "match.result",
		Title:                "New subsidy match",
		Message:              r.Explanation,
		Data: map[string]any{
			"profile_id":   profile.ID,
			"candidate_id": r.CandidateID,
			"score":        r.Score,
			"confidence":   r.Confidence,
			"reason_codes": r.ReasonCodes,
		},
		Priority: priority,
		Status:   model.StatusPending,
	}
}

func containsCode(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}

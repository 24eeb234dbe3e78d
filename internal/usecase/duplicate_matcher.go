package usecase

import (
	"context"

	"civiq/internal/domain/entity"
	"civiq/internal/domain/repository"
	"civiq/internal/infrastructure/geo"
	"civiq/pkg/errors"
	"civiq/pkg/logger"
)

const (
	DefaultDuplicateRadiusMeters = 50.0
	DefaultDuplicateThreshold    = 0.9

	nearestCandidateLimit = 5
)

type DuplicateResult struct {
	IsDuplicate bool
	// Report is the matched report after the increment. It may be nil when
	// the increment failed, in which case MatchedReportID is still set.
	Report          *entity.Report
	MatchedReportID string
	CountUpdated    bool
	Similarity      float64
	// Vector is the embedding of the submitted description, handed back so
	// the caller can index a new report without embedding twice.
	Vector []float32
}

type DuplicateMatcher struct {
	reportRepo   repository.ReportRepository
	index        repository.ReportIndex
	embedder     *ReadyEmbedder
	radiusMeters float64
	threshold    float64
	log          logger.Logger
}

func NewDuplicateMatcher(
	reportRepo repository.ReportRepository,
	index repository.ReportIndex,
	embedder *ReadyEmbedder,
	radiusMeters float64,
	threshold float64,
	log logger.Logger,
) *DuplicateMatcher {
	if radiusMeters <= 0 {
		radiusMeters = DefaultDuplicateRadiusMeters
	}
	if threshold <= 0 {
		threshold = DefaultDuplicateThreshold
	}
	return &DuplicateMatcher{
		reportRepo:   reportRepo,
		index:        index,
		embedder:     embedder,
		radiusMeters: radiusMeters,
		threshold:    threshold,
		log:          log,
	}
}

func (m *DuplicateMatcher) IsReady() bool {
	return m.embedder.IsReady()
}

// FindOrRegisterDuplicate looks for an existing report of the same issue type
// within the radius whose description is more similar than the threshold.
// On a hit the existing report's duplicate count is bumped. It never creates
// reports or index entries.
func (m *DuplicateMatcher) FindOrRegisterDuplicate(ctx context.Context, description, issueType string, lat, lon float64) (*DuplicateResult, error) {
	vector, err := m.embedder.Embed(ctx, description)
	if err != nil {
		return nil, err
	}

	candidates, err := m.index.Nearest(ctx, repository.NearestQuery{
		Vector:     vector,
		IssueType:  issueType,
		CellTokens: geo.CoveringTokens(lat, lon, m.radiusMeters),
		Limit:      nearestCandidateLimit,
	})
	if err != nil {
		return nil, errors.Dependency("Failed to query report index", err)
	}

	best, ok := m.bestMatch(candidates, lat, lon)
	if !ok || best.Similarity <= m.threshold {
		return &DuplicateResult{Vector: vector}, nil
	}

	result := &DuplicateResult{
		IsDuplicate:     true,
		MatchedReportID: best.ReportID,
		Similarity:      best.Similarity,
		Vector:          vector,
	}

	updated, err := m.reportRepo.IncrementDuplicateCount(ctx, best.ReportID)
	if err != nil {
		m.log.Warn("duplicate detected but count update failed",
			"report_id", best.ReportID,
			"error", err,
		)
		return result, nil
	}

	result.Report = updated
	result.CountUpdated = true
	m.log.Info("duplicate report detected",
		"report_id", best.ReportID,
		"similarity", best.Similarity,
		"duplicate_count", updated.DuplicateCount,
	)
	return result, nil
}

// bestMatch drops candidates outside the radius and returns the most similar survivor.
func (m *DuplicateMatcher) bestMatch(candidates []repository.IndexCandidate, lat, lon float64) (entity.IndexMatch, bool) {
	var best entity.IndexMatch
	found := false
	for _, c := range candidates {
		d := geo.DistanceMeters(lat, lon, c.Lat, c.Lon)
		if d > m.radiusMeters {
			continue
		}
		if !found || c.Similarity > best.Similarity {
			best = entity.IndexMatch{ReportID: c.ReportID, Similarity: c.Similarity, DistanceMeters: d}
			found = true
		}
	}
	return best, found
}

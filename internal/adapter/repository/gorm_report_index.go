package repository

import (
	"context"
	"math"
	"sort"
	"time"

	"gorm.io/gorm"

	"civiq/internal/domain/entity"
	"civiq/internal/domain/repository"
	"civiq/pkg/errors"
)

// gormReportIndex narrows candidates with the (issue_type, cell_token) index
// and ranks the survivors by cosine similarity in process. A 50m covering
// touches a handful of level-16 cells, so the scanned set stays small.
type gormReportIndex struct {
	db *gorm.DB
}

func NewGormReportIndex(db *gorm.DB) repository.ReportIndex {
	return &gormReportIndex{db: db}
}

func (r *gormReportIndex) Put(ctx context.Context, entry *entity.IndexEntry) error {
	row := &indexRow{
		ReportID:  entry.ReportID,
		IssueType: entry.IssueType,
		CellToken: entry.CellToken,
		Lat:       entry.Lat,
		Lon:       entry.Lon,
		Embedding: vectorColumn(entry.Vector),
		CreatedAt: time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return errors.Dependency("Failed to write index entry", err)
	}
	return nil
}

func (r *gormReportIndex) Nearest(ctx context.Context, q repository.NearestQuery) ([]repository.IndexCandidate, error) {
	if len(q.CellTokens) == 0 || len(q.Vector) == 0 {
		return nil, nil
	}

	var rows []indexRow
	err := r.db.WithContext(ctx).
		Where("issue_type = ? AND cell_token IN ?", q.IssueType, q.CellTokens).
		Find(&rows).Error
	if err != nil {
		return nil, errors.Dependency("Failed to query report index", err)
	}

	candidates := make([]repository.IndexCandidate, 0, len(rows))
	for _, row := range rows {
		candidates = append(candidates, repository.IndexCandidate{
			ReportID:   row.ReportID,
			Lat:        row.Lat,
			Lon:        row.Lon,
			Similarity: cosineSimilarity(q.Vector, row.Embedding),
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Similarity > candidates[j].Similarity
	})
	if q.Limit > 0 && len(candidates) > q.Limit {
		candidates = candidates[:q.Limit]
	}
	return candidates, nil
}

// cosineSimilarity returns 0 for mismatched or zero vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

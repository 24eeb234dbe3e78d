package repository

import (
	"context"

	"civiq/internal/domain/entity"
)

// NearestQuery asks for the closest report vectors of one issue type inside
// the S2 cells covering the search radius.
type NearestQuery struct {
	Vector     []float32
	IssueType  string
	CellTokens []string
	Limit      int
}

// IndexCandidate is a raw hit before exact geo filtering.
type IndexCandidate struct {
	ReportID   string
	Lat        float64
	Lon        float64
	Similarity float64
}

type ReportIndex interface {
	Put(ctx context.Context, entry *entity.IndexEntry) error
	Nearest(ctx context.Context, q NearestQuery) ([]IndexCandidate, error)
}

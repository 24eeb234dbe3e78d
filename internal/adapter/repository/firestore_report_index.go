package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"civiq/internal/domain/entity"
	"civiq/internal/domain/repository"
	"civiq/pkg/errors"
)

const (
	embeddingField = "embedding"
	distanceField  = "vectorDistance"

	// Firestore caps "in" filters at 30 values.
	maxInFilterValues = 30
)

type indexDocument struct {
	ReportID  string             `firestore:"reportId"`
	IssueType string             `firestore:"issueType"`
	Lat       float64            `firestore:"lat"`
	Lon       float64            `firestore:"lon"`
	CellToken string             `firestore:"cellToken"`
	Embedding firestore.Vector32 `firestore:"embedding"`
	CreatedAt time.Time          `firestore:"createdAt"`

	// Only present on FindNearest results.
	Distance float64 `firestore:"vectorDistance,omitempty"`
}

// firestoreReportIndex keeps one document per located report and answers
// nearest-neighbour queries with Firestore vector search. The composite
// vector index (issueType, cellToken, embedding) must exist.
type firestoreReportIndex struct {
	client *firestore.Client
}

func NewFirestoreReportIndex(client *firestore.Client) repository.ReportIndex {
	return &firestoreReportIndex{
		client: client,
	}
}

func (r *firestoreReportIndex) Put(ctx context.Context, entry *entity.IndexEntry) error {
	doc := indexDocument{
		ReportID:  entry.ReportID,
		IssueType: entry.IssueType,
		Lat:       entry.Lat,
		Lon:       entry.Lon,
		CellToken: entry.CellToken,
		Embedding: firestore.Vector32(entry.Vector),
		CreatedAt: time.Now(),
	}

	_, err := r.client.Collection(reportIndexCollection).Doc(entry.ReportID).Set(ctx, doc)
	if err != nil {
		return errors.Dependency("Failed to write index entry", err)
	}
	return nil
}

func (r *firestoreReportIndex) Nearest(ctx context.Context, q repository.NearestQuery) ([]repository.IndexCandidate, error) {
	if len(q.CellTokens) == 0 || len(q.Vector) == 0 {
		return nil, nil
	}
	cells := q.CellTokens
	if len(cells) > maxInFilterValues {
		cells = cells[:maxInFilterValues]
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 1
	}

	vectorQuery := r.client.Collection(reportIndexCollection).
		Where("issueType", "==", q.IssueType).
		Where("cellToken", "in", cells).
		FindNearest(embeddingField, firestore.Vector32(q.Vector), limit, firestore.DistanceMeasureCosine,
			&firestore.FindNearestOptions{DistanceResultField: distanceField})

	iter := vectorQuery.Documents(ctx)
	defer iter.Stop()

	candidates := []repository.IndexCandidate{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Dependency("Failed to query report index", err)
		}

		var doc indexDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, errors.Internal("Failed to parse index entry", err)
		}
		candidates = append(candidates, repository.IndexCandidate{
			ReportID: doc.ReportID,
			Lat:      doc.Lat,
			Lon:      doc.Lon,
			// Cosine distance is 1 - cos(theta).
			Similarity: 1 - doc.Distance,
		})
	}
	return candidates, nil
}

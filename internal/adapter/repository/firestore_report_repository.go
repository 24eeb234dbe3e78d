package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"civiq/internal/domain/entity"
	"civiq/internal/domain/repository"
	"civiq/pkg/errors"
)

type firestoreReportRepository struct {
	client *firestore.Client
}

func NewFirestoreReportRepository(client *firestore.Client) repository.ReportRepository {
	return &firestoreReportRepository{
		client: client,
	}
}

func (r *firestoreReportRepository) Create(ctx context.Context, report *entity.Report) error {
	_, err := r.client.Collection(reportsCollection).Doc(report.ID).Create(ctx, report)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return errors.Conflict("Report already exists")
		}
		return errors.Dependency("Failed to create report", err)
	}
	return nil
}

func (r *firestoreReportRepository) GetByID(ctx context.Context, id string) (*entity.Report, error) {
	doc, err := r.client.Collection(reportsCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Report", err)
		}
		return nil, errors.Dependency("Failed to get report", err)
	}

	var report entity.Report
	if err := doc.DataTo(&report); err != nil {
		return nil, errors.Internal("Failed to parse report data", err)
	}
	return &report, nil
}

func (r *firestoreReportRepository) UpdateStatus(ctx context.Context, report *entity.Report) error {
	_, err := r.client.Collection(reportsCollection).Doc(report.ID).Update(ctx, []firestore.Update{
		{Path: "status", Value: string(report.Status)},
		{Path: "inProgressAt", Value: report.InProgressAt},
		{Path: "resolvedAt", Value: report.ResolvedAt},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Report", err)
		}
		return errors.Dependency("Failed to update report status", err)
	}
	return nil
}

// IncrementDuplicateCount does the read-modify-write inside a transaction.
func (r *firestoreReportRepository) IncrementDuplicateCount(ctx context.Context, id string) (*entity.Report, error) {
	ref := r.client.Collection(reportsCollection).Doc(id)

	var updated entity.Report
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return err
		}
		if err := doc.DataTo(&updated); err != nil {
			return err
		}
		updated.DuplicateCount++
		return tx.Update(ref, []firestore.Update{{Path: "duplicateCount", Value: updated.DuplicateCount}})
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Report", err)
		}
		return nil, errors.Dependency("Failed to update duplicate count", err)
	}
	return &updated, nil
}

func (r *firestoreReportRepository) ListByOwner(ctx context.Context, ownerID string) ([]*entity.Report, error) {
	query := r.client.Collection(reportsCollection).
		Where("ownerId", "==", ownerID).
		OrderBy("submittedAt", firestore.Desc)
	return r.collect(query.Documents(ctx))
}

func (r *firestoreReportRepository) ListAll(ctx context.Context, limit int) ([]*entity.Report, error) {
	query := r.client.Collection(reportsCollection).OrderBy("submittedAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}
	return r.collect(query.Documents(ctx))
}

func (r *firestoreReportRepository) CountByStatus(ctx context.Context, reportStatus entity.ReportStatus) (int64, error) {
	count, err := countQuery(ctx, r.client.Collection(reportsCollection).Where("status", "==", string(reportStatus)))
	if err != nil {
		return 0, errors.Dependency("Failed to count reports", err)
	}
	return count, nil
}

func (r *firestoreReportRepository) CountByOwnerAndStatus(ctx context.Context, ownerID string, reportStatus entity.ReportStatus) (int64, error) {
	query := r.client.Collection(reportsCollection).
		Where("ownerId", "==", ownerID).
		Where("status", "==", string(reportStatus))
	count, err := countQuery(ctx, query)
	if err != nil {
		return 0, errors.Dependency("Failed to count reports", err)
	}
	return count, nil
}

func (r *firestoreReportRepository) collect(iter *firestore.DocumentIterator) ([]*entity.Report, error) {
	defer iter.Stop()

	reports := []*entity.Report{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Dependency("Failed to list reports", err)
		}

		var report entity.Report
		if err := doc.DataTo(&report); err != nil {
			return nil, errors.Internal("Failed to parse report data", err)
		}
		reports = append(reports, &report)
	}
	return reports, nil
}

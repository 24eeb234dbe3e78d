package usecase

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"civiq/internal/domain/entity"
	"civiq/internal/domain/repository"
	"civiq/internal/domain/service"
	"civiq/internal/infrastructure/geo"
	"civiq/pkg/errors"
	"civiq/pkg/logger"
)

const (
	MessageReportSubmitted = "Report submitted successfully!"
	MessageDuplicateReport = "Duplicate report detected. We've added your voice to the existing report."
)

var unsafeObjectChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

type AdminNotifier interface {
	NotifyAdminsOfReport(ctx context.Context, report *entity.Report) (*entity.FanoutResult, error)
}

type MediaInput struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

type SubmitReportInput struct {
	OwnerID     string
	IssueType   string
	Description string
	Lat         *float64
	Lon         *float64
	Media       *MediaInput
}

type SubmitResult struct {
	IsDuplicate bool           `json:"isDuplicate"`
	ReportID    string         `json:"reportId"`
	Report      *entity.Report `json:"report,omitempty"`
	Message     string         `json:"message"`
}

type SubmissionUseCase struct {
	reportRepo    repository.ReportRepository
	index         repository.ReportIndex
	matcher       *DuplicateMatcher
	files         service.FileUploadService
	admins        AdminNotifier
	tasks         *TaskRunner
	uploadTimeout time.Duration
	fanoutTimeout time.Duration
	now           func() time.Time
	log           logger.Logger
}

func NewSubmissionUseCase(
	reportRepo repository.ReportRepository,
	index repository.ReportIndex,
	matcher *DuplicateMatcher,
	files service.FileUploadService,
	admins AdminNotifier,
	tasks *TaskRunner,
	uploadTimeout time.Duration,
	fanoutTimeout time.Duration,
	log logger.Logger,
) *SubmissionUseCase {
	return &SubmissionUseCase{
		reportRepo:    reportRepo,
		index:         index,
		matcher:       matcher,
		files:         files,
		admins:        admins,
		tasks:         tasks,
		uploadTimeout: uploadTimeout,
		fanoutTimeout: fanoutTimeout,
		now:           time.Now,
		log:           log,
	}
}

func (uc *SubmissionUseCase) SubmitReport(ctx context.Context, in SubmitReportInput) (*SubmitResult, error) {
	issueType := strings.TrimSpace(in.IssueType)
	description := strings.TrimSpace(in.Description)
	if issueType == "" || description == "" {
		return nil, errors.Validation("Issue type and description are required")
	}
	if (in.Lat == nil) != (in.Lon == nil) {
		return nil, errors.Validation("Latitude and longitude must be provided together")
	}
	located := in.Lat != nil && in.Lon != nil
	if located && !geo.ValidCoordinates(*in.Lat, *in.Lon) {
		return nil, errors.Validation("Coordinates are out of range")
	}

	var vector []float32
	if located {
		if !uc.matcher.IsReady() {
			return nil, errors.NotReady("Duplicate detection is starting up, please retry shortly")
		}

		match, err := uc.matcher.FindOrRegisterDuplicate(ctx, description, issueType, *in.Lat, *in.Lon)
		switch {
		case err != nil && errors.Is(err, errors.CodeNotReady):
			return nil, err
		case err != nil:
			// Without a duplicate decision the report is treated as new.
			uc.log.Warn("duplicate check failed, continuing as new report", "error", err)
		case match.IsDuplicate:
			return &SubmitResult{
				IsDuplicate: true,
				ReportID:    match.MatchedReportID,
				Report:      match.Report,
				Message:     MessageDuplicateReport,
			}, nil
		default:
			vector = match.Vector
		}
	}

	now := uc.now()

	var mediaURL string
	if in.Media != nil && in.Media.Body != nil {
		url, err := uc.uploadMedia(ctx, in.OwnerID, in.Media, now)
		if err != nil {
			return nil, err
		}
		mediaURL = url
	}

	report := &entity.Report{
		ID:             uuid.New().String(),
		OwnerID:        in.OwnerID,
		IssueType:      issueType,
		Description:    description,
		MediaURL:       mediaURL,
		Lat:            in.Lat,
		Lon:            in.Lon,
		Status:         entity.StatusSubmitted,
		SubmittedAt:    now,
		DuplicateCount: 1,
	}

	if err := uc.reportRepo.Create(ctx, report); err != nil {
		if mediaURL != "" {
			if delErr := uc.files.DeleteFile(context.WithoutCancel(ctx), mediaURL); delErr != nil {
				uc.log.Warn("failed to remove orphaned media", "url", mediaURL, "error", delErr)
			}
		}
		return nil, err
	}

	if located && vector != nil {
		entry := &entity.IndexEntry{
			ReportID:  report.ID,
			IssueType: issueType,
			Lat:       *in.Lat,
			Lon:       *in.Lon,
			CellToken: geo.CellToken(*in.Lat, *in.Lon),
			Vector:    vector,
		}
		if err := uc.index.Put(ctx, entry); err != nil {
			uc.log.Error("failed to index report", "report_id", report.ID, "error", err)
		}
	}

	uc.tasks.Go(ctx, "notify_admins", uc.fanoutTimeout, func(ctx context.Context) error {
		result, err := uc.admins.NotifyAdminsOfReport(ctx, report)
		if err != nil {
			return err
		}
		if result.Failed > 0 {
			uc.log.Warn("some admins were not notified", "report_id", report.ID, "failed", result.Failed)
		}
		return nil
	})

	uc.log.Info("report submitted",
		"report_id", report.ID,
		"owner", logger.MaskID(report.OwnerID),
		"issue_type", issueType,
		"located", located,
	)

	return &SubmitResult{
		IsDuplicate: false,
		ReportID:    report.ID,
		Report:      report,
		Message:     MessageReportSubmitted,
	}, nil
}

func (uc *SubmissionUseCase) uploadMedia(ctx context.Context, ownerID string, media *MediaInput, now time.Time) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.uploadTimeout)
	defer cancel()

	objectName := MediaObjectName(ownerID, media.Filename, now)
	url, err := uc.files.UploadFile(ctx, media.Body, media.ContentType, objectName)
	if err != nil {
		return "", errors.Dependency("Failed to upload media", err)
	}
	return url, nil
}

// MediaObjectName is "<ownerID>/<unix millis>_<sanitised file name>".
func MediaObjectName(ownerID, filename string, now time.Time) string {
	name := unsafeObjectChars.ReplaceAllString(filepath.Base(filename), "_")
	if name == "" || name == "." || name == "_" {
		name = "upload"
	}
	return fmt.Sprintf("%s/%d_%s", ownerID, now.UnixMilli(), name)
}

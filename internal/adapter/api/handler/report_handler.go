package handler

import (
	stderrors "errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"civiq/internal/domain/entity"
	"civiq/internal/usecase"
	"civiq/pkg/errors"
	"civiq/pkg/logger"
	"civiq/pkg/response"
	"civiq/pkg/utils"
)

type ReportHandler struct {
	submission     *usecase.SubmissionUseCase
	lifecycle      *usecase.LifecycleUseCase
	queries        *usecase.ReportQueryUseCase
	maxUploadBytes int64
}

func NewReportHandler(
	submission *usecase.SubmissionUseCase,
	lifecycle *usecase.LifecycleUseCase,
	queries *usecase.ReportQueryUseCase,
	maxUploadBytes int64,
) *ReportHandler {
	return &ReportHandler{
		submission:     submission,
		lifecycle:      lifecycle,
		queries:        queries,
		maxUploadBytes: maxUploadBytes,
	}
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// SubmitReport accepts multipart/form-data with issueType, description,
// optional lat/lon and an optional file.
func (h *ReportHandler) SubmitReport(c echo.Context) error {
	uid, _, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}

	lat, err := utils.ParseOptionalFloat(c.FormValue("lat"))
	if err != nil {
		return response.Error(c, errors.Validation("lat must be a number"))
	}
	lon, err := utils.ParseOptionalFloat(c.FormValue("lon"))
	if err != nil {
		return response.Error(c, errors.Validation("lon must be a number"))
	}

	input := usecase.SubmitReportInput{
		OwnerID:     uid,
		IssueType:   c.FormValue("issueType"),
		Description: c.FormValue("description"),
		Lat:         lat,
		Lon:         lon,
	}

	fileHeader, err := c.FormFile("file")
	switch {
	case err == nil:
		if h.maxUploadBytes > 0 && fileHeader.Size > h.maxUploadBytes {
			return response.Error(c, errors.BadRequest("File is too large", nil))
		}
		file, err := fileHeader.Open()
		if err != nil {
			return response.Error(c, errors.BadRequest("Failed to read uploaded file", err))
		}
		defer file.Close()

		input.Media = &usecase.MediaInput{
			Filename:    fileHeader.Filename,
			ContentType: fileHeader.Header.Get("Content-Type"),
			Body:        file,
		}
	case stderrors.Is(err, http.ErrMissingFile), stderrors.Is(err, http.ErrNotMultipart):
	default:
		return response.Error(c, errors.BadRequest("Invalid multipart form", err))
	}

	result, err := h.submission.SubmitReport(c.Request().Context(), input)
	if err != nil {
		if !errors.Is(err, errors.CodeValidation) {
			logger.Error("report submission failed for %s: %v", logger.MaskID(uid), err)
		}
		return response.Error(c, err)
	}

	if result.IsDuplicate {
		return response.SuccessWithMessage(c, result.Message, result)
	}
	return response.Created(c, result.Message, result)
}

func (h *ReportHandler) ListOwnReports(c echo.Context) error {
	uid, _, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}

	reports, err := h.queries.ListOwn(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, reports)
}

func (h *ReportHandler) ListAllReports(c echo.Context) error {
	reports, err := h.queries.ListAll(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, reports)
}

func (h *ReportHandler) ListPublicReports(c echo.Context) error {
	reports, err := h.queries.ListPublic(c.Request().Context(), utils.GetLimitParam(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, reports)
}

func (h *ReportHandler) UpdateStatus(c echo.Context) error {
	uid, _, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req updateStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	report, err := h.lifecycle.SetStatus(c.Request().Context(), c.Param("id"), entity.ReportStatus(req.Status), uid)
	if err != nil {
		return response.Error(c, err)
	}
	return response.SuccessWithMessage(c, "Report status updated", report)
}

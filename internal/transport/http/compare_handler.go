package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"sidebyside/internal/dataprocessing"
	apierrors "sidebyside/internal/errors"
	"sidebyside/internal/exporter"
	"sidebyside/internal/middleware"
	"sidebyside/internal/services"
	"sidebyside/internal/validation"
	"sidebyside/pkg/contracts/domain"
)

// multipartMemory is the part of a multipart form kept in memory; the
// rest spills to temporary files.
const multipartMemory = 8 << 20

// Comparer runs one comparison. Implemented by services.ComparisonService.
type Comparer interface {
	Compare(ctx context.Context, req services.CompareRequest) (*domain.ComparisonReport, error)
}

// CompareHandler handles survey uploads.
type CompareHandler struct {
	service        Comparer
	validator      *middleware.Validator
	errorHandler   *apierrors.ErrorHandler
	maxUploadBytes int64
	logger         *slog.Logger
}

// compareForm holds the optional text fields of the upload form.
type compareForm struct {
	PrimarySource   string `json:"primary_source" validate:"omitempty,sourcetag"`
	SecondarySource string `json:"secondary_source" validate:"omitempty,sourcetag,nefield=PrimarySource"`
}

// NewCompareHandler creates a compare handler. maxUploadBytes bounds each
// survey file.
func NewCompareHandler(service Comparer, errorHandler *apierrors.ErrorHandler, maxUploadBytes int64, logger *slog.Logger) *CompareHandler {
	return &CompareHandler{
		service:        service,
		validator:      middleware.NewValidator(),
		errorHandler:   errorHandler,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With(slog.String("handler", "compare")),
	}
}

// Routes returns the compare routes, mounted at /api/compare.
func (h *CompareHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.ContentTypeValidator("multipart/form-data"))

	r.Post("/", h.Compare)
	r.Post("/report", h.Report)
	return r
}

// Compare handles POST /api/compare
func (h *CompareHandler) Compare(w http.ResponseWriter, r *http.Request) {
	report, ok := h.run(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, report)
}

// Report handles POST /api/compare/report and answers with an HTML page.
func (h *CompareHandler) Report(w http.ResponseWriter, r *http.Request) {
	report, ok := h.run(w, r)
	if !ok {
		return
	}
	render.HTML(w, r, string(exporter.RenderHTML(report)))
}

// run decodes the upload and compares it. On a survey failure the error
// report is returned with the response status already set.
func (h *CompareHandler) run(w http.ResponseWriter, r *http.Request) (*domain.ComparisonReport, bool) {
	ctx := r.Context()
	reqID := middleware.GetReqID(ctx)

	req, err := h.readRequest(w, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}

	report, err := h.service.Compare(ctx, req)
	if report == nil {
		if errors.Is(err, services.ErrInvalidInput) {
			err = apierrors.InvalidRequestWithError(err)
		}
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}

	if err != nil {
		status := surveyStatus(err)
		h.logger.WarnContext(ctx, "survey rejected",
			slog.String("request_id", reqID),
			slog.Int("status", status),
			slog.String("error", err.Error()))
		render.Status(r, status)
		return report, true
	}

	h.logger.InfoContext(ctx, "comparison served",
		slog.String("request_id", reqID),
		slog.String("report_id", report.ID),
		slog.String("primary_file", report.PrimaryFile),
		slog.String("secondary_file", report.SecondaryFile))
	return report, true
}

func (h *CompareHandler) readRequest(w http.ResponseWriter, r *http.Request) (services.CompareRequest, error) {
	// Two files plus form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, 2*h.maxUploadBytes+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return services.CompareRequest{}, tooLarge
		}
		return services.CompareRequest{}, apierrors.InvalidRequestWithError(err)
	}
	defer r.MultipartForm.RemoveAll()

	form := compareForm{
		PrimarySource:   strings.TrimSpace(r.FormValue("primary_source")),
		SecondarySource: strings.TrimSpace(r.FormValue("secondary_source")),
	}
	if err := h.validator.ValidateStruct(form); err != nil {
		return services.CompareRequest{}, err
	}

	primary, err := readUpload(r, "primary", form.PrimarySource)
	if err != nil {
		return services.CompareRequest{}, err
	}
	secondary, err := readUpload(r, "secondary", form.SecondarySource)
	if err != nil {
		return services.CompareRequest{}, err
	}
	return services.CompareRequest{Primary: primary, Secondary: secondary}, nil
}

func readUpload(r *http.Request, field, source string) (services.Upload, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return services.Upload{}, apierrors.ErrValidation(field, fmt.Sprintf("%s survey file is required", field))
	}
	if err != nil {
		return services.Upload{}, apierrors.InvalidRequestWithError(err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return services.Upload{}, apierrors.InvalidRequestWithError(err)
	}
	return services.Upload{Filename: header.Filename, Data: data, Source: source}, nil
}

// surveyStatus maps a per-file failure to the status sent with the error report.
func surveyStatus(err error) int {
	switch {
	case errors.Is(err, dataprocessing.ErrUnsupportedFileType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, validation.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusUnprocessableEntity
	}
}

package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "sidebyside/internal/errors"
	"sidebyside/internal/services"
	"sidebyside/internal/shared/testutil"
	"sidebyside/internal/validation"
	"sidebyside/pkg/contracts/domain"
)

type part struct {
	field    string
	filename string
	data     []byte
}

func multipartBody(t *testing.T, fields map[string]string, parts ...part) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, p := range parts {
		fw, err := w.CreateFormFile(p.field, p.filename)
		require.NoError(t, err)
		_, err = fw.Write(p.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func mwdPart(t *testing.T) part {
	return part{field: "primary", filename: "mwd.xlsx", data: testutil.TemplateSurveyWorkbook(t,
		testutil.Station{"100", "1", "10"},
		testutil.Station{"200", "2", "20"},
	)}
}

func ddPart(t *testing.T) part {
	return part{field: "secondary", filename: "dd.csv", data: testutil.KeywordSurveyCSV(t,
		testutil.Station{"100", "1", "10"},
		testutil.Station{"200", "2.5", "20"},
	)}
}

func newCompareRouter(t *testing.T) (http.Handler, *testutil.BufferedSlogHandler) {
	t.Helper()
	logger, logs := testutil.NewTestLogger(t)
	svc := services.NewComparisonService(nil, logger,
		services.WithValidator(validation.NewFileValidator(logger, 1<<20)))
	h := NewCompareHandler(svc, apierrors.NewErrorHandler(logger, false), 1<<20, logger)

	r := chi.NewRouter()
	r.Mount("/api/compare", h.Routes())
	return r, logs
}

func post(t *testing.T, router http.Handler, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCompareHandler_Compare(t *testing.T) {
	router, logs := newCompareRouter(t)

	body, ct := multipartBody(t, nil, mwdPart(t), ddPart(t))
	rec := post(t, router, "/api/compare", body, ct)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var report domain.ComparisonReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "MWD", report.PrimarySource)
	assert.Equal(t, "DD", report.SecondarySource)
	assert.Equal(t, "mwd.xlsx", report.PrimaryFile)
	require.NotNil(t, report.Stats)
	assert.Equal(t, 2, report.Stats.RowsCompared)
	assert.Equal(t, 1, report.Stats.RowMismatches)
	assert.Equal(t, 1, report.Stats.FieldMismatch[domain.FieldINC])
	require.Len(t, report.MismatchTable, 1)
	assert.Contains(t, report.Summary, "INC Mismatches: 1\n")
	assert.True(t, logs.ContainsMessage("comparison served"))
}

func TestCompareHandler_SurveyFailures(t *testing.T) {
	tests := []struct {
		name      string
		secondary part
		status    int
	}{
		{
			name:      "layout not recognized",
			secondary: part{field: "secondary", filename: "dd.csv", data: []byte("a,b\nc,d\n")},
			status:    http.StatusUnprocessableEntity,
		},
		{
			name:      "unsupported extension",
			secondary: part{field: "secondary", filename: "dd.pdf", data: []byte("%PDF")},
			status:    http.StatusUnsupportedMediaType,
		},
		{
			name:      "file too large",
			secondary: part{field: "secondary", filename: "dd.csv", data: bytes.Repeat([]byte("1"), 1<<20+1)},
			status:    http.StatusRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, logs := newCompareRouter(t)

			body, ct := multipartBody(t, nil, mwdPart(t), tt.secondary)
			rec := post(t, router, "/api/compare", body, ct)

			require.Equal(t, tt.status, rec.Code, rec.Body.String())

			var report domain.ComparisonReport
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
			assert.True(t, strings.HasPrefix(report.Summary, "❌ Error parsing files:\n"), report.Summary)
			assert.NotEmpty(t, report.Error)
			assert.Empty(t, report.PrimaryRows)
			assert.Empty(t, report.MismatchTable)
			assert.Empty(t, report.PrimaryExport)
			assert.True(t, logs.ContainsMessage("survey rejected"))
		})
	}
}

func TestCompareHandler_BadRequests(t *testing.T) {
	tests := []struct {
		name      string
		fields    map[string]string
		parts     func(t *testing.T) []part
		errorCode string
	}{
		{
			name:      "missing secondary file",
			parts:     func(t *testing.T) []part { return []part{mwdPart(t)} },
			errorCode: "VALIDATION_FAILED",
		},
		{
			name:      "invalid source tag",
			fields:    map[string]string{"primary_source": "M W D"},
			parts:     func(t *testing.T) []part { return []part{mwdPart(t), ddPart(t)} },
			errorCode: "VALIDATION_FAILED",
		},
		{
			name:      "identical source tags",
			fields:    map[string]string{"primary_source": "MWD", "secondary_source": "MWD"},
			parts:     func(t *testing.T) []part { return []part{mwdPart(t), ddPart(t)} },
			errorCode: "VALIDATION_FAILED",
		},
		{
			name:      "tag collides with default",
			fields:    map[string]string{"primary_source": "DD"},
			parts:     func(t *testing.T) []part { return []part{mwdPart(t), ddPart(t)} },
			errorCode: "INVALID_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newCompareRouter(t)

			body, ct := multipartBody(t, tt.fields, tt.parts(t)...)
			rec := post(t, router, "/api/compare", body, ct)

			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

			var problem map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
			assert.Equal(t, tt.errorCode, problem["error_code"])
		})
	}
}

func TestCompareHandler_RejectsNonMultipart(t *testing.T) {
	router, _ := newCompareRouter(t)

	rec := post(t, router, "/api/compare", bytes.NewBufferString(`{}`), "application/json")
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestCompareHandler_Report(t *testing.T) {
	router, _ := newCompareRouter(t)

	body, ct := multipartBody(t, nil, mwdPart(t), ddPart(t))
	rec := post(t, router, "/api/compare/report", body, ct)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	html := rec.Body.String()
	assert.Contains(t, html, "<title>MWD vs DD survey comparison</title>")
	assert.Contains(t, html, "Row Mismatches: 1")
	assert.Contains(t, html, "<strong>2.50</strong>")
}

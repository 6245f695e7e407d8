package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "sidebyside/internal/errors"
)

type compareForm struct {
	PrimarySource   string `json:"primary_source" validate:"required,sourcetag,nefield=SecondarySource"`
	SecondarySource string `json:"secondary_source" validate:"required,sourcetag"`
}

func TestValidator_ValidateStruct(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name       string
		form       compareForm
		wantFields []string
	}{
		{"valid", compareForm{PrimarySource: "MWD", SecondarySource: "DD"}, nil},
		{"missing source", compareForm{SecondarySource: "DD"}, []string{"primary_source"}},
		{"same sources", compareForm{PrimarySource: "DD", SecondarySource: "DD"}, []string{"primary_source"}},
		{"bad tag", compareForm{PrimarySource: "MWD survey!", SecondarySource: "DD"}, []string{"primary_source"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateStruct(tt.form)
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}
			var apiErr *apierrors.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
			details, ok := apiErr.Details.(apierrors.ValidationErrors)
			require.True(t, ok)
			fields := make([]string, len(details.Errors))
			for i, e := range details.Errors {
				fields[i] = e.Field
			}
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}

func TestContentTypeValidator(t *testing.T) {
	handler := ContentTypeValidator("multipart/form-data")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name        string
		method      string
		contentType string
		want        int
	}{
		{"multipart", http.MethodPost, "multipart/form-data; boundary=x", http.StatusOK},
		{"json", http.MethodPost, "application/json", http.StatusUnsupportedMediaType},
		{"missing", http.MethodPost, "", http.StatusBadRequest},
		{"get skips", http.MethodGet, "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/compare", strings.NewReader(""))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestQueryParamValidator(t *testing.T) {
	v := NewQueryParamValidator(nil, apierrors.NewErrorHandler(nil, false))

	tests := []struct {
		query  string
		want   int
		wantOK bool
	}{
		{"", 50, true},
		{"limit=10", 10, true},
		{"limit=abc", 0, false},
		{"limit=0", 0, false},
		{"limit=1000", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/comparisons?"+tt.query, nil)
			got, ok := v.ValidateInt(rec, req, "limit", 1, 500, 50)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
			if !ok {
				assert.Equal(t, http.StatusBadRequest, rec.Code)
			}
		})
	}
}

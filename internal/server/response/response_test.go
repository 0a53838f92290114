package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dserrors "github.com/OHIF/Viewers-sub030/pkg/errors"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestOK(t *testing.T) {
	w := httptest.NewRecorder()
	OK(w, map[string]string{"status": "ok"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"data":{"status":"ok"},"error":null}`, w.Body.String())
}

func TestCreated(t *testing.T) {
	w := httptest.NewRecorder()
	Created(w, []int{1})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Nil(t, decode(t, w).Error)
}

func TestErrorFromType(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"structural", dserrors.NewStructuralInputError(true, "first group is empty"), http.StatusBadRequest, "STRUCTURAL_INPUT"},
		{"parse", dserrors.NewParseError("yaml", "", "bad", nil), http.StatusBadRequest, "PARSE_ERROR"},
		{"not found", dserrors.NewNotFoundError("display set", "x"), http.StatusNotFound, "NOT_FOUND"},
		{"validation", dserrors.NewValidationError("uid", nil, "required"), http.StatusBadRequest, "BAD_REQUEST"},
		{"handler", dserrors.NewHandlerError("stack", "1.2", errors.New("boom")), http.StatusUnprocessableEntity, "HANDLER_FAILURE"},
		{"wrapped not found", errors.Join(errors.New("ctx"), dserrors.NewNotFoundError("display set", "y")), http.StatusNotFound, "NOT_FOUND"},
		{"other", errors.New("disk on fire"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ErrorFromType(w, tt.err)
			assert.Equal(t, tt.status, w.Code)
			resp := decode(t, w)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Nil(t, resp.Data)
		})
	}
}

func TestInternalErrorHidesCause(t *testing.T) {
	w := httptest.NewRecorder()
	InternalError(w, errors.New("secret path /etc/x"))
	assert.NotContains(t, w.Body.String(), "secret")
}

func TestTooLarge(t *testing.T) {
	w := httptest.NewRecorder()
	TooLarge(w, 64<<20)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "Bodies are limited to 64 MiB", decode(t, w).Error.Details)
}

func TestMethodNotAllowed(t *testing.T) {
	w := httptest.NewRecorder()
	MethodNotAllowed(w, http.MethodPut)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Contains(t, decode(t, w).Error.Details, "PUT")
}

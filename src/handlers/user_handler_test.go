package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func authedRequest(method, target, body string, userID int64) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	return req.WithContext(context.WithValue(req.Context(), "user_id", userID))
}

func TestGetMeUnauthenticated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	rec := httptest.NewRecorder()

	GetMe(nil)(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestDeleteAccountRequiresMatchingID(t *testing.T) {
	req := authedRequest(http.MethodDelete, "/api/me", `{"user_id": 2}`, 1)
	rec := httptest.NewRecorder()

	DeleteAccount(nil)(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeleteAccountBadBody(t *testing.T) {
	req := authedRequest(http.MethodDelete, "/api/me", "not json", 1)
	rec := httptest.NewRecorder()

	DeleteAccount(nil)(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteAccountUnauthenticated(t *testing.T) {
	req := httptest.NewRequest(http.MethodDelete, "/api/me", strings.NewReader(`{"user_id": 0}`))
	rec := httptest.NewRecorder()

	DeleteAccount(nil)(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

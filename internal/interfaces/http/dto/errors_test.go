package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	cases := map[string]int{
		ErrCodeNotFound:            http.StatusNotFound,
		ErrCodeAlreadyExists:       http.StatusConflict,
		ErrCodeAlreadyLoaded:       http.StatusConflict,
		ErrCodeConcurrencyConflict: http.StatusConflict,
		ErrCodeCustomerMismatch:    http.StatusUnprocessableEntity,
		ErrCodeNotExpected:         http.StatusUnprocessableEntity,
		ErrCodeIncompleteLoad:      http.StatusUnprocessableEntity,
		ErrCodeInvalidState:        http.StatusUnprocessableEntity,
		ErrCodeInvalidInput:        http.StatusBadRequest,
		ErrCodeForbidden:           http.StatusForbidden,
		ErrCodeRateLimited:         http.StatusTooManyRequests,
		"SOMETHING_ELSE":           http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, GetHTTPStatus(code), code)
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	assert.Equal(t, ErrCodeNotFound, NormalizeErrorCode("NOT_FOUND"))
	assert.Equal(t, ErrCodeCustomerMismatch, NormalizeErrorCode("CUSTOMER_MISMATCH"))
	assert.Equal(t, ErrCodeNotExpected, NormalizeErrorCode("NOT_EXPECTED"))
	assert.Equal(t, "ERR_CUSTOM", NormalizeErrorCode("ERR_CUSTOM"))
}

func TestListRequest_WithDefaults(t *testing.T) {
	r := ListRequest{}.WithDefaults()
	assert.Equal(t, 1, r.Page)
	assert.Equal(t, 20, r.PageSize)

	r = ListRequest{Page: 3, PageSize: 50}.WithDefaults()
	assert.Equal(t, 3, r.Page)
	assert.Equal(t, 50, r.PageSize)
}

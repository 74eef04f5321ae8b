package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTable(t *testing.T) {
	want := map[Code]int{
		CodeValidation:    http.StatusBadRequest,
		CodeUnauthorized:  http.StatusUnauthorized,
		CodeForbidden:     http.StatusForbidden,
		CodeNotFound:      http.StatusNotFound,
		CodeConflict:      http.StatusConflict,
		CodeStateConflict: http.StatusUnprocessableEntity,
		CodeQuotaExceeded: http.StatusPaymentRequired,
		CodeIdempotency:   http.StatusConflict,
		CodeRateLimit:     http.StatusTooManyRequests,
		CodeInternal:      http.StatusInternalServerError,
		CodeDependency:    http.StatusServiceUnavailable,
	}
	require.Len(t, metadataByCode, len(want), "every code needs a status")
	for code, status := range want {
		assert.Equal(t, status, MetadataFor(code).HTTPStatus, code)
	}
}

func TestOnlyServerErrorsAreRetryable(t *testing.T) {
	for code, meta := range metadataByCode {
		assert.Equal(t, meta.HTTPStatus >= 500, meta.Retryable, code)
	}
}

func TestQuotaDetailsReachClients(t *testing.T) {
	meta := MetadataFor(CodeQuotaExceeded)
	assert.True(t, meta.DetailsAllowed)
	assert.Contains(t, meta.PublicMessage, "upgrade")
	assert.False(t, MetadataFor(CodeInternal).DetailsAllowed)
}

func TestUnknownCodeFallsBackToInternal(t *testing.T) {
	assert.Equal(t, MetadataFor(CodeInternal), MetadataFor("SOMETHING_UNKNOWN"))
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "NOT_FOUND: draft missing", New(CodeNotFound, "draft missing").Error())

	wrapped := Wrap(CodeDependency, stdErrors.New("dial tcp: refused"), "load tenant")
	assert.Equal(t, "DEPENDENCY_ERROR: load tenant: dial tcp: refused", wrapped.Error())

	var nilErr *Error
	assert.Empty(t, nilErr.Error())
	assert.Equal(t, CodeInternal, nilErr.Code())
	assert.Nil(t, nilErr.WithDetails("x"))
}

func TestWrapKeepsCauseAndDetails(t *testing.T) {
	cause := stdErrors.New("duplicate slug")
	err := Wrap(CodeConflict, cause, "create tenant").WithDetails(map[string]any{"slug": "studio-bella"})

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "create tenant", err.Message())
	assert.Equal(t, map[string]any{"slug": "studio-bella"}, err.Details())
	assert.Nil(t, Wrap(CodeInternal, nil, "no cause").Unwrap())
}

func TestAsFindsOutermostTypedError(t *testing.T) {
	inner := New(CodeStateConflict, "appointment already completed")
	outer := Wrap(CodeDependency, fmt.Errorf("checkout: %w", inner), "persist")

	got := As(fmt.Errorf("handler: %w", outer))
	require.NotNil(t, got)
	assert.Equal(t, CodeDependency, got.Code())
	assert.Nil(t, As(nil))
	assert.Nil(t, As(stdErrors.New("plain")))
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("checkout: %w", New(CodeStateConflict, "already completed"))
	assert.True(t, IsCode(err, CodeStateConflict))
	assert.False(t, IsCode(err, CodeNotFound))
	assert.False(t, IsCode(stdErrors.New("plain"), CodeInternal))
}

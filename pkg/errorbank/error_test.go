package errorbank

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
)

func TestAppErrorMapping(t *testing.T) {
	cases := []struct {
		err    *AppError
		status int
		code   codes.Code
	}{
		{BadRequest("x"), http.StatusBadRequest, codes.InvalidArgument},
		{Forbidden("x"), http.StatusForbidden, codes.PermissionDenied},
		{NotFound("x"), http.StatusNotFound, codes.NotFound},
		{Invalid(map[string]string{"a": "b"}), http.StatusUnprocessableEntity, codes.InvalidArgument},
		{Conflict("x"), http.StatusConflict, codes.AlreadyExists},
		{Internal("x"), http.StatusInternalServerError, codes.Internal},
	}
	for _, tc := range cases {
		t.Run(string(tc.err.Kind()), func(t *testing.T) {
			assert.Equal(t, tc.status, tc.err.StatusCode())
			assert.Equal(t, tc.code, tc.err.GRPCCode())
		})
	}
}

func TestInvalid(t *testing.T) {
	fields := map[string]string{"buyer_phone": "must contain digits only"}
	err := Invalid(fields)
	fields["buyer_phone"] = "mutated"

	assert.Equal(t, KindValidation, err.Kind())
	assert.Equal(t, "must contain digits only", err.FieldErrors()["buyer_phone"])
	assert.Nil(t, NotFound("x").FieldErrors())
}

func TestFromAndIs(t *testing.T) {
	wrapped := fmt.Errorf("load: %w", NotFound("transaction not found"))
	assert.True(t, Is(wrapped, KindNotFound))
	assert.False(t, Is(wrapped, KindValidation))
	assert.Equal(t, KindNotFound, From(wrapped).Kind())

	plain := errors.New("boom")
	appErr := From(plain)
	assert.Equal(t, KindInternal, appErr.Kind())
	assert.ErrorIs(t, appErr, plain)
	assert.Nil(t, From(nil))
}

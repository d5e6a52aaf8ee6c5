package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/placereviews/auth-api/internal/dto"
	"github.com/placereviews/auth-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		err     error
		table   statusTable
		status  int
		message string
		logged  bool
	}{
		{
			name:    "mapped kind",
			err:     &service.Error{Kind: service.KindNotFound, Message: service.MsgAccountNotFound},
			table:   sendCodeStatus,
			status:  http.StatusNotFound,
			message: service.MsgAccountNotFound,
		},
		{
			name:    "same kind differs per endpoint",
			err:     &service.Error{Kind: service.KindNotFound, Message: service.MsgAccountNotFound},
			table:   verifyCodeStatus,
			status:  http.StatusUnauthorized,
			message: service.MsgAccountNotFound,
		},
		{
			name:    "wrapped service error",
			err:     fmt.Errorf("signin: %w", &service.Error{Kind: service.KindAuth, Message: service.MsgInvalidCredentials}),
			table:   signinStatus,
			status:  http.StatusUnauthorized,
			message: service.MsgInvalidCredentials,
		},
		{
			name:    "kind missing from table",
			err:     &service.Error{Kind: service.KindConflict, Message: service.MsgEmailTaken},
			table:   sendCodeStatus,
			status:  http.StatusInternalServerError,
			message: msgInternal,
			logged:  true,
		},
		{
			name:    "unclassified error",
			err:     errors.New("pq: deadlock detected"),
			table:   signupStatus,
			status:  http.StatusInternalServerError,
			message: msgInternal,
			logged:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.ErrorLevel)
			h := NewAuthHandler(nil, zap.New(core), false)

			router := gin.New()
			router.POST("/x", func(c *gin.Context) { h.respondError(c, tt.err, tt.table) })

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/x", nil))

			assert.Equal(t, tt.status, rec.Code)

			var resp dto.Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tt.message, resp.Message)

			if tt.logged {
				assert.Equal(t, 1, logs.Len())
			} else {
				assert.Zero(t, logs.Len())
			}
		})
	}
}

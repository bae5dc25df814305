package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"backend-socialfeed/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", ErrDuplicateUsername, fiber.StatusBadRequest},
		{"unauthenticated", ErrUnauthenticated, fiber.StatusUnauthorized},
		{"invalid token", ErrInvalidToken, fiber.StatusUnauthorized},
		{"invalid credentials", ErrInvalidCredentials, fiber.StatusUnauthorized},
		{"not found", ErrPostNotFound, fiber.StatusNotFound},
		{"wrapped", fmt.Errorf("outer: %w", ErrUserNotFound), fiber.StatusNotFound},
		{"plain", errors.New("boom"), fiber.StatusInternalServerError},
		{"fiber", fiber.NewError(fiber.StatusTeapot, "tea"), fiber.StatusTeapot},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Status(tc.err))
		})
	}
}

func TestIsMatchesKindAndMessage(t *testing.T) {
	err := fmt.Errorf("register: %w", New(Validation, "Username has already been taken"))
	require.ErrorIs(t, err, ErrDuplicateUsername)
	require.NotErrorIs(t, err, ErrDuplicateEmail)
	require.ErrorIs(t, err, &Error{Kind: Validation})
}

func TestPublicMessageHidesInternal(t *testing.T) {
	cause := errors.New("connection refused")
	require.Equal(t, "Internal Server Error", PublicMessage(Wrap(Internal, "load feed", cause)))
	require.Equal(t, "Internal Server Error", PublicMessage(cause))
	require.Equal(t, "Post not found", PublicMessage(ErrPostNotFound))
	require.Equal(t, "invalid payload", PublicMessage(fiber.NewError(fiber.StatusBadRequest, "invalid payload")))
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("redis down")
	err := Wrap(Internal, "invalidate feed", cause)
	require.ErrorIs(t, err, cause)
	require.Equal(t, "invalidate feed: redis down", err.Error())
	require.Equal(t, Internal, KindOf(err))
}

func TestErrorHandlerRendersJSON(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger.NewNoopLogger())})
	app.Get("/missing", func(c *fiber.Ctx) error { return fmt.Errorf("get post: %w", ErrPostNotFound) })
	app.Get("/broken", func(c *fiber.Ctx) error { return errors.New("pool exhausted") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body struct {
		Error struct {
			Message string `json:"message"`
			Status  int    `json:"status"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "Post not found", body.Error.Message)
	require.Equal(t, http.StatusNotFound, body.Error.Status)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/broken", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "Internal Server Error", body.Error.Message)
}

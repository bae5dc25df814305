package auth

import (
	"testing"

	"backend-socialfeed/internal/apperr"
	"backend-socialfeed/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func testHasher() BcryptHasher {
	return NewBcryptHasher(bcrypt.MinCost)
}

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: apperr.ErrorHandler(logger.NewNoopLogger())})
}

package middlewares

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDBMiddlewareExposesHandle(t *testing.T) {
	db := &gorm.DB{}
	app := fiber.New()
	app.Use(DBMiddleware(db))
	app.Get("/ping", func(c *fiber.Ctx) error {
		got, ok := c.Locals("db").(*gorm.DB)
		require.True(t, ok)
		assert.Same(t, db, got)
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

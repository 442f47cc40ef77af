package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamID(t *testing.T) {
	app := fiber.New()
	app.Get("/things/:id", func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return c.SendStatus(fiber.StatusBadRequest)
		}
		return c.JSON(fiber.Map{"id": id})
	})

	cases := []struct {
		param string
		want  int
	}{
		{"42", fiber.StatusOK},
		{"0", fiber.StatusBadRequest},
		{"-5", fiber.StatusBadRequest},
		{"abc", fiber.StatusBadRequest},
	}
	for _, tc := range cases {
		resp, err := app.Test(httptest.NewRequest("GET", "/things/"+tc.param, nil))
		require.NoError(t, err)
		assert.Equal(t, tc.want, resp.StatusCode, "id=%q", tc.param)
	}
}

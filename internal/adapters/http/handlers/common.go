package handlers

import (
	"errors"
	"strconv"

	"roomhub/internal/adapters/http/middleware"
	"roomhub/internal/core/domain"

	"github.com/gofiber/fiber/v2"
)

// principal pulls the authenticated caller out of the request; the
// auth middleware guarantees it on protected routes.
func principal(c *fiber.Ctx) (domain.Principal, bool) {
	return middleware.Principal(c)
}

// paramID parses the :id path parameter; zero is never a valid id
func paramID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, errors.New("id must be positive")
	}
	return uint(id), nil
}

// queryUint parses an optional uint query parameter, nil when absent
func queryUint(c *fiber.Ctx, key string) *uint {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil
	}
	u := uint(v)
	return &u
}

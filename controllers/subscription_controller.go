package controller

import (
	"github.com/gofiber/fiber/v2"
)

// Billing is intentionally a stub: the product runs in demo mode with a
// single free plan and no payment processor.

func GetSubscription(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"plan":   "FREE",
		"status": "FREE",
	})
}

func CreateSubscription(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"plan":    "FREE",
		"status":  "FREE",
		"message": "Demo mode - subscriptions disabled",
	})
}

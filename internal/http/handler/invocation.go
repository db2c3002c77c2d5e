package handler

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"taskapi/internal/http/middleware"
	"taskapi/internal/registry"
	"taskapi/internal/service"
	"taskapi/internal/unit"
)

// invokeRequest is the body accepted by CreateInvocation.
type invokeRequest struct {
	Component string `json:"component"`
	Operation string `json:"operation"`
	Payload   any    `json:"payload"`
}

// archiveURLResponse wraps the presigned snapshot URL.
type archiveURLResponse struct {
	URL string `json:"url"`
}

// HealthCheck reports readiness by pinging the database.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a simple liveness endpoint.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ListComponents returns every registered component definition.
func ListComponents(reg *registry.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"data": reg.List()})
	}
}

// CreateInvocation runs a component operation and records the invocation.
// metrics may be nil (e.g. in tests); invocations are then not counted.
func CreateInvocation(svc service.InvocationService, metrics *middleware.PrometheusMiddleware) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req invokeRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
		}

		res, err := svc.Invoke(c.UserContext(), req.Component, req.Operation, req.Payload)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrComponentRequired):
				return writeError(c, fiber.StatusBadRequest, "COMPONENT_REQUIRED", "component is required")
			case errors.Is(err, service.ErrOperationRequired):
				return writeError(c, fiber.StatusBadRequest, "OPERATION_REQUIRED", "operation is required")
			case errors.Is(err, registry.ErrUnknownComponent):
				return writeError(c, fiber.StatusNotFound, "UNKNOWN_COMPONENT", "component not found")
			case errors.Is(err, unit.ErrUnknownOperation):
				return writeError(c, fiber.StatusUnprocessableEntity, "UNKNOWN_OPERATION", "operation not offered by component")
			case errors.Is(err, service.ErrPayloadInvalid):
				return writeError(c, fiber.StatusUnprocessableEntity, "INVALID_PAYLOAD", "payload is not processable")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}

		if metrics != nil {
			metrics.RecordInvocation(res.Invocation.Component, res.Invocation.Operation, res.Invocation.Status)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// ListInvocations returns stored invocation records with limit & offset.
func ListInvocations(svc service.InvocationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limitStr := c.Query("limit", "10")
		offsetStr := c.Query("offset", "0")
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// GetInvocation returns an invocation record by ID.
func GetInvocation(svc service.InvocationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		inv, err := svc.Get(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "invocation not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(inv)
	}
}

// GetInvocationArchive returns a presigned URL for the archived snapshot.
func GetInvocationArchive(svc service.InvocationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		url, err := svc.ArchiveURL(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "invocation not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(archiveURLResponse{URL: url})
	}
}

// DeleteInvocation removes an invocation record and its archived snapshot.
func DeleteInvocation(svc service.InvocationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "invocation not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

package http

import (
	"fmt"
	"reflect"
	"strings"

	"minichess/internal/core"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(createGameStructLevel, core.CreateGameRequest{})
	return v
}

// createGameStructLevel rejects custom positions that are ambiguous or lack a
// King before they reach the processor
func createGameStructLevel(sl validator.StructLevel) {
	req := sl.Current().Interface().(core.CreateGameRequest)

	if req.FEN != "" && len(req.Layout) > 0 {
		sl.ReportError(req.FEN, "FEN", "fen", "excluded_with", "Layout")
	}
	if len(req.Layout) == 0 {
		return
	}

	var white, black bool
	for _, row := range req.Layout {
		for _, code := range row {
			switch code {
			case "K":
				white = true
			case "k":
				black = true
			}
		}
	}
	if !white || !black {
		sl.ReportError(req.Layout, "Layout", "layout", "kings", "")
	}
}

// validationMiddleware parses and validates request bodies by route
func validationMiddleware(c *fiber.Ctx) error {
	method := c.Method()
	if method == fiber.MethodGet || method == fiber.MethodDelete || method == fiber.MethodOptions {
		return c.Next()
	}

	path := c.Path()
	var requestType any

	switch {
	case strings.HasSuffix(path, "/games") && method == fiber.MethodPost:
		requestType = &core.CreateGameRequest{}
	case strings.HasSuffix(path, "/players") && method == fiber.MethodPut:
		requestType = &core.ConfigurePlayersRequest{}
	case strings.HasSuffix(path, "/moves") && method == fiber.MethodPost:
		requestType = &core.MoveRequest{}
	case strings.HasSuffix(path, "/undo") && method == fiber.MethodPost:
		requestType = &core.UndoRequest{}
	default:
		return c.Next()
	}

	if err := c.BodyParser(requestType); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "invalid request body",
			Code:    core.ErrInvalidRequest,
			Details: err.Error(),
		})
	}

	if err := validate.Struct(requestType); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "validation failed",
			Code:    validationCode(err),
			Details: validationDetails(err),
		})
	}

	c.Locals("validatedBody", requestType)
	c.Locals("validated", true)

	return c.Next()
}

// validatedBody returns the request body stored by validationMiddleware
func validatedBody[T any](c *fiber.Ctx) (*T, bool) {
	if validated, ok := c.Locals("validated").(bool); !ok || !validated {
		return nil, false
	}
	body, ok := c.Locals("validatedBody").(*T)
	return body, ok
}

// validationCode singles out layout problems so clients can tell them apart
func validationCode(err error) string {
	if errs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range errs {
			if fe.Tag() == "kings" {
				return core.ErrInvalidLayout
			}
			if fe.Field() == "Variant" {
				return core.ErrInvalidVariant
			}
		}
	}
	return core.ErrInvalidRequest
}

func validationDetails(err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}

	var details strings.Builder
	for _, fe := range errs {
		if details.Len() > 0 {
			details.WriteString("; ")
		}
		switch fe.Tag() {
		case "required":
			details.WriteString(fmt.Sprintf("%s is required", fe.Field()))
		case "oneof":
			details.WriteString(fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param()))
		case "min":
			if fe.Kind() == reflect.String {
				details.WriteString(fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param()))
			} else {
				details.WriteString(fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
			}
		case "max":
			if fe.Kind() == reflect.String {
				details.WriteString(fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
			} else {
				details.WriteString(fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param()))
			}
		case "kings":
			details.WriteString(fmt.Sprintf("%s must contain both kings", fe.Field()))
		case "excluded_with":
			details.WriteString(fmt.Sprintf("%s cannot be combined with %s", fe.Field(), fe.Param()))
		default:
			details.WriteString(fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
		}
	}
	return details.String()
}

func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

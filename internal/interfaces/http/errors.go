package http

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jhoicas/inventario-lotes/internal/application/dto"
	"github.com/jhoicas/inventario-lotes/internal/domain"
)

// Códigos estables de error expuestos por la API.
const (
	CodeNotFound          = "NOT_FOUND"
	CodeValidation        = "VALIDATION"
	CodeInvalidBody       = "INVALID_BODY"
	CodeMissingID         = "MISSING_ID"
	CodeDuplicate         = "DUPLICATE"
	CodeConflict          = "CONFLICT"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeForbidden         = "FORBIDDEN"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeInternal          = "INTERNAL"
)

// respondError traduce un error de dominio a status HTTP + ErrorResponse.
// Los errores no reconocidos se devuelven como 500 sin exponer el detalle.
func respondError(c *fiber.Ctx, err error) error {
	status, code := fiber.StatusInternalServerError, CodeInternal
	msg := "error interno"
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		status, code, msg = fiber.StatusNotFound, CodeNotFound, err.Error()
	case errors.Is(err, domain.ErrInvalidInput):
		status, code, msg = fiber.StatusBadRequest, CodeValidation, err.Error()
	case errors.Is(err, domain.ErrDuplicate), errors.Is(err, domain.ErrEmailAlreadyExists):
		status, code, msg = fiber.StatusConflict, CodeDuplicate, err.Error()
	case errors.Is(err, domain.ErrInsufficientStock):
		status, code, msg = fiber.StatusConflict, CodeInsufficientStock, err.Error()
	case errors.Is(err, domain.ErrConflict):
		status, code, msg = fiber.StatusConflict, CodeConflict, err.Error()
	case errors.Is(err, domain.ErrForbidden):
		status, code, msg = fiber.StatusForbidden, CodeForbidden, err.Error()
	case errors.Is(err, domain.ErrUnauthorized):
		status, code, msg = fiber.StatusUnauthorized, CodeUnauthorized, err.Error()
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func badRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: CodeNotFound, Message: msg})
}

// pageFrom lee limit/offset del query string con los límites por defecto.
func pageFrom(c *fiber.Ctx) dto.PageRequest {
	p := dto.PageRequest{
		Limit:  c.QueryInt("limit", dto.DefaultPageLimit),
		Offset: c.QueryInt("offset", 0),
	}
	p.DefaultPage()
	return p
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil && len(s) == 36
}

// pathID devuelve el :id de la ruta. Un id que no es UUID no puede existir: domain.ErrNotFound.
func pathID(c *fiber.Ctx) (string, error) {
	id := c.Params("id")
	if !isUUID(id) {
		return "", fmt.Errorf("%w: id %q", domain.ErrNotFound, id)
	}
	return id, nil
}

// checkRefID valida un id opcional recibido en el cuerpo o en el query string. Vacío es válido.
func checkRefID(field, v string) error {
	if v == "" || isUUID(v) {
		return nil
	}
	return fmt.Errorf("%w: %s no es un UUID", domain.ErrInvalidInput, field)
}

func checkLabelIDs(ids []string) error {
	for _, id := range ids {
		if !isUUID(id) {
			return fmt.Errorf("%w: id %q no es un UUID", domain.ErrInvalidInput, id)
		}
	}
	return nil
}

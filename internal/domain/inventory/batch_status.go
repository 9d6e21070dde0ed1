package inventory

import (
	"fmt"
	"strings"

	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

// ParseBatchStatus valida un estado de lote recibido como texto.
func ParseBatchStatus(s string) (entity.BatchStatus, error) {
	st := entity.BatchStatus(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case entity.BatchStatusPending, entity.BatchStatusAvailable, entity.BatchStatusLocked,
		entity.BatchStatusExpired, entity.BatchStatusDisposed:
		return st, nil
	}
	return "", fmt.Errorf("%w: estado de lote desconocido %q", domain.ErrInvalidInput, s)
}

// IsConsumable indica si se puede descontar stock de un lote en ese estado.
func IsConsumable(st entity.BatchStatus) bool {
	return st == entity.BatchStatusAvailable
}

package batch

import (
	"context"

	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción de BD con un BatchRepository atado a esa tx.
type TxRunner interface {
	RunBatch(ctx context.Context, fn func(batches repository.BatchRepository) error) error
}

// SnapshotCache guarda la última versión leída de cada lote. Get devuelve (nil, nil) si no está.
type SnapshotCache interface {
	Get(ctx context.Context, id string) (*entity.Batch, error)
	Set(ctx context.Context, b *entity.Batch) error
	Delete(ctx context.Context, id string) error
}

// EventPublisher difunde cambios de lotes a los suscriptores. No debe bloquear.
type EventPublisher interface {
	Publish(ev entity.BatchEvent)
}

// Recorder registra métricas de negocio de lotes.
type Recorder interface {
	ObserveReconcile(c inventory.ReconcileCase)
	ObserveConsumption(amount float64)
}

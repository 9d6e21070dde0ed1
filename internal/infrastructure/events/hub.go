// Package events difunde en proceso los cambios de lotes a suscriptores (logs, métricas, futuros webhooks).
package events

import (
	"sync"
	"sync/atomic"

	"github.com/jhoicas/inventario-lotes/internal/application/batch"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

var _ batch.EventPublisher = (*Hub)(nil)

// Hub fan-out de eventos. Publish nunca bloquea: si el buffer de un suscriptor está lleno el evento
// se descarta para ese suscriptor y se cuenta.
type Hub struct {
	mu      sync.RWMutex
	subs    map[int]chan entity.BatchEvent
	nextID  int
	closed  bool
	dropped atomic.Uint64
	onDrop  func()
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan entity.BatchEvent)}
}

// OnDrop registra un callback por cada evento descartado (métricas). Llamar antes de publicar.
func (h *Hub) OnDrop(fn func()) {
	h.mu.Lock()
	h.onDrop = fn
	h.mu.Unlock()
}

// Subscribe devuelve un canal con el buffer pedido (mínimo 1) y la función para darse de baja.
// Con el hub cerrado el canal llega ya cerrado.
func (h *Hub) Subscribe(buffer int) (<-chan entity.BatchEvent, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan entity.BatchEvent, buffer)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	id := h.nextID
	h.nextID++
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if c, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(c)
			}
		})
	}
}

// Publish entrega ev a cada suscriptor sin esperar.
func (h *Hub) Publish(ev entity.BatchEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			h.dropped.Add(1)
			if h.onDrop != nil {
				h.onDrop()
			}
		}
	}
}

// Dropped total de entregas descartadas desde el arranque.
func (h *Hub) Dropped() uint64 { return h.dropped.Load() }

// Subscribers cantidad de suscriptores activos.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close cierra todos los canales; publicaciones posteriores se ignoran.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		close(ch)
		delete(h.subs, id)
	}
}

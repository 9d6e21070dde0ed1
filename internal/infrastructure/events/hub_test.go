package events_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/infrastructure/events"
)

func ev(id string) entity.BatchEvent {
	return entity.BatchEvent{Type: entity.BatchEventUpdated, BatchID: id, At: time.Now()}
}

func TestHub_EntregaATodos(t *testing.T) {
	h := events.NewHub()
	a, unsubA := h.Subscribe(4)
	b, unsubB := h.Subscribe(4)
	defer unsubA()
	defer unsubB()

	h.Publish(ev("b1"))

	assert.Equal(t, "b1", (<-a).BatchID)
	assert.Equal(t, "b1", (<-b).BatchID)
	assert.Equal(t, 2, h.Subscribers())
}

func TestHub_NoBloqueaYCuentaDescartes(t *testing.T) {
	h := events.NewHub()
	var drops int
	h.OnDrop(func() { drops++ })
	ch, unsub := h.Subscribe(1)
	defer unsub()

	h.Publish(ev("b1"))
	h.Publish(ev("b2")) // buffer lleno
	h.Publish(ev("b3"))

	assert.Equal(t, uint64(2), h.Dropped())
	assert.Equal(t, 2, drops)
	assert.Equal(t, "b1", (<-ch).BatchID)
}

func TestHub_UnsubscribeCierraCanal(t *testing.T) {
	h := events.NewHub()
	ch, unsub := h.Subscribe(1)
	unsub()
	unsub() // idempotente

	_, ok := <-ch
	assert.False(t, ok)
	assert.Zero(t, h.Subscribers())
	assert.NotPanics(t, func() { h.Publish(ev("b1")) })
}

func TestHub_Close(t *testing.T) {
	h := events.NewHub()
	ch, unsub := h.Subscribe(1)
	h.Close()
	h.Close()

	_, ok := <-ch
	assert.False(t, ok)
	assert.NotPanics(t, unsub)
	assert.NotPanics(t, func() { h.Publish(ev("b1")) })

	late, _ := h.Subscribe(1)
	_, ok = <-late
	assert.False(t, ok, "suscribirse tras Close devuelve un canal cerrado")
}

func TestHub_PublicacionConcurrente(t *testing.T) {
	h := events.NewHub()
	ch, unsub := h.Subscribe(1000)
	defer unsub()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				h.Publish(ev("b"))
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 500, len(ch))
	assert.Zero(t, h.Dropped())
}

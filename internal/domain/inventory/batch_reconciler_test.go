package inventory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/inventory"
)

var testNow = time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func state(q, r int64) *inventory.BatchState {
	return &inventory.BatchState{Quantity: dec(q), RemainingQuantity: decPtr(r)}
}

func statusPtr(s entity.BatchStatus) *entity.BatchStatus { return &s }

// ──────────────────────────────────────────────────────────────────────────────
// Escenarios de referencia
// ──────────────────────────────────────────────────────────────────────────────

func TestReconcileBatch_Escenarios(t *testing.T) {
	tests := []struct {
		name          string
		prev          *inventory.BatchState
		patch         inventory.BatchPatch
		wantRemaining int64
		wantStatus    *entity.BatchStatus
		wantCase      inventory.ReconcileCase
	}{
		{
			name:          "corrección al alza conserva 40 consumidos",
			prev:          state(100, 60),
			patch:         inventory.BatchPatch{Quantity: decPtr(120)},
			wantRemaining: 80,
			wantCase:      inventory.ReconcileQuantityDelta,
		},
		{
			name:          "corrección a la baja sin consumo",
			prev:          state(100, 100),
			patch:         inventory.BatchPatch{Quantity: decPtr(50)},
			wantRemaining: 50,
			wantCase:      inventory.ReconcileQuantityDelta,
		},
		{
			name:          "remaining explícito en cero desecha el lote",
			prev:          state(100, 30),
			patch:         inventory.BatchPatch{RemainingQuantity: decPtr(0)},
			wantRemaining: 0,
			wantStatus:    statusPtr(entity.BatchStatusDisposed),
			wantCase:      inventory.ReconcileExplicit,
		},
		{
			name:          "remaining explícito negativo se recorta a cero",
			prev:          state(100, 30),
			patch:         inventory.BatchPatch{RemainingQuantity: decPtr(-5)},
			wantRemaining: 0,
			wantStatus:    statusPtr(entity.BatchStatusDisposed),
			wantCase:      inventory.ReconcileExplicit,
		},
		{
			name:          "dato previo inconsistente no inventa consumo negativo",
			prev:          state(10, 25),
			patch:         inventory.BatchPatch{Quantity: decPtr(8)},
			wantRemaining: 8,
			wantCase:      inventory.ReconcileQuantityDelta,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, c := inventory.ReconcileBatch(tt.prev, tt.patch, testNow)

			assert.Equal(t, tt.wantCase, c)
			require.NotNil(t, out.RemainingQuantity)
			assert.True(t, dec(tt.wantRemaining).Equal(*out.RemainingQuantity),
				"remaining esperado %d, obtenido %s", tt.wantRemaining, out.RemainingQuantity)
			if tt.wantStatus == nil {
				assert.Nil(t, out.Status)
			} else {
				require.NotNil(t, out.Status)
				assert.Equal(t, *tt.wantStatus, *out.Status)
			}
			assert.Equal(t, testNow, out.UpdatedAt)
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Propiedades
// ──────────────────────────────────────────────────────────────────────────────

func TestReconcileBatch_ConsumoPreservado(t *testing.T) {
	for qPrev := int64(0); qPrev <= 30; qPrev += 5 {
		for rPrev := int64(0); rPrev <= qPrev; rPrev += 5 {
			for qNew := int64(0); qNew <= 40; qNew += 5 {
				out, _ := inventory.ReconcileBatch(state(qPrev, rPrev), inventory.BatchPatch{Quantity: decPtr(qNew)}, testNow)
				require.NotNil(t, out.RemainingQuantity)

				consumedBefore := qPrev - rPrev
				want := qNew - consumedBefore
				if want < 0 {
					want = 0
				}
				assert.True(t, dec(want).Equal(*out.RemainingQuantity),
					"Q=%d R=%d Qnuevo=%d: remaining %s", qPrev, rPrev, qNew, out.RemainingQuantity)
				if want > 0 {
					assert.True(t, dec(consumedBefore).Equal(dec(qNew).Sub(*out.RemainingQuantity)))
				}
			}
		}
	}
}

func TestReconcileBatch_ExplicitoIgnoraDeltaDeCantidad(t *testing.T) {
	out, c := inventory.ReconcileBatch(state(100, 60), inventory.BatchPatch{
		Quantity:          decPtr(500),
		RemainingQuantity: decPtr(7),
	}, testNow)

	assert.Equal(t, inventory.ReconcileExplicit, c)
	assert.True(t, dec(7).Equal(*out.RemainingQuantity))
	assert.True(t, dec(500).Equal(*out.Quantity), "quantity del patch se conserva")
	assert.Nil(t, out.Status, "remaining > 0 no toca el estado")
}

func TestReconcileBatch_EstadoExplicitoNoSeSobrescribe(t *testing.T) {
	out, _ := inventory.ReconcileBatch(state(100, 30), inventory.BatchPatch{
		RemainingQuantity: decPtr(0),
		Status:            statusPtr(entity.BatchStatusLocked),
	}, testNow)

	require.NotNil(t, out.Status)
	assert.Equal(t, entity.BatchStatusLocked, *out.Status)
}

func TestReconcileBatch_SinCambiosDeCantidadSoloAgregaTimestamp(t *testing.T) {
	notes := "revisado"
	in := inventory.BatchPatch{Notes: &notes, Status: statusPtr(entity.BatchStatusLocked)}

	out, c := inventory.ReconcileBatch(state(100, 30), in, testNow)

	assert.Equal(t, inventory.ReconcileNone, c)
	expected := in
	expected.UpdatedAt = testNow
	assert.Equal(t, expected, out)
}

func TestReconcileBatch_NuncaNegativo(t *testing.T) {
	cases := []struct {
		prev  *inventory.BatchState
		patch inventory.BatchPatch
	}{
		{state(5, 20), inventory.BatchPatch{Quantity: decPtr(0)}},
		{state(100, 0), inventory.BatchPatch{Quantity: decPtr(10)}},
		{state(100, -50), inventory.BatchPatch{Quantity: decPtr(20)}},
		{state(0, 0), inventory.BatchPatch{Quantity: decPtr(-3)}},
		{state(10, 10), inventory.BatchPatch{RemainingQuantity: decPtr(-1000)}},
	}
	for _, tc := range cases {
		out, _ := inventory.ReconcileBatch(tc.prev, tc.patch, testNow)
		require.NotNil(t, out.RemainingQuantity)
		assert.False(t, out.RemainingQuantity.IsNegative(), "remaining %s", out.RemainingQuantity)
	}
}

func TestReconcileBatch_RemainingDesconocidoSeAsumeIgualACantidad(t *testing.T) {
	prev := &inventory.BatchState{Quantity: dec(100)}

	out, _ := inventory.ReconcileBatch(prev, inventory.BatchPatch{Quantity: decPtr(90)}, testNow)

	assert.True(t, dec(90).Equal(*out.RemainingQuantity))
}

func TestReconcileBatch_SinEstadoPrevio(t *testing.T) {
	out, c := inventory.ReconcileBatch(nil, inventory.BatchPatch{Quantity: decPtr(42)}, testNow)

	assert.Equal(t, inventory.ReconcileQuantityDelta, c)
	assert.True(t, dec(42).Equal(*out.RemainingQuantity))
}

func TestReconcileBatch_NoMutaElPatchDeEntrada(t *testing.T) {
	in := inventory.BatchPatch{RemainingQuantity: decPtr(-5)}

	_, _ = inventory.ReconcileBatch(state(10, 10), in, testNow)

	assert.True(t, dec(-5).Equal(*in.RemainingQuantity))
	assert.Nil(t, in.Status)
	assert.True(t, in.UpdatedAt.IsZero())
}

// ──────────────────────────────────────────────────────────────────────────────
// ApplyBatchPatch
// ──────────────────────────────────────────────────────────────────────────────

func TestApplyBatchPatch(t *testing.T) {
	supplier := "sup-1"
	b := &entity.Batch{
		ID:                "b-1",
		MaterialID:        "m-1",
		SupplierID:        &supplier,
		Quantity:          dec(100),
		RemainingQuantity: dec(60),
		Status:            entity.BatchStatusAvailable,
		BatchNumber:       "L-001",
	}
	patch, _ := inventory.ReconcileBatch(inventory.StateOf(b), inventory.BatchPatch{
		Quantity:   decPtr(120),
		SupplierID: new(string),
	}, testNow)

	inventory.ApplyBatchPatch(b, patch)

	assert.True(t, dec(120).Equal(b.Quantity))
	assert.True(t, dec(80).Equal(b.RemainingQuantity))
	assert.Nil(t, b.SupplierID, "cadena vacía desasigna el proveedor")
	assert.Equal(t, "m-1", b.MaterialID)
	assert.Equal(t, "L-001", b.BatchNumber)
	assert.Equal(t, entity.BatchStatusAvailable, b.Status)
	assert.Equal(t, testNow, b.UpdatedAt)
}

func TestReconcileCase_String(t *testing.T) {
	assert.Equal(t, "none", inventory.ReconcileNone.String())
	assert.Equal(t, "explicit", inventory.ReconcileExplicit.String())
	assert.Equal(t, "quantity_delta", inventory.ReconcileQuantityDelta.String())
}

func TestCheckQuantity(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"0", true},
		{"12.5", true},
		{"0.0001", true},
		{"10.50000", true},
		{"99999999999999.9999", true},
		{"0.00001", false},
		{"9.99999", false},
		{"100000000000000", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			err := inventory.CheckQuantity("quantity", decimal.RequireFromString(tt.in))
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

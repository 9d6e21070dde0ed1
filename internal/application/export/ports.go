package export

import "context"

// Sheet hoja de cálculo ya tabulada: encabezado y filas con valores crudos (string, float64, time.Time).
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]any
}

// SpreadsheetWriter serializa hojas a un libro XLSX.
type SpreadsheetWriter interface {
	Write(ctx context.Context, sheets ...Sheet) ([]byte, error)
}

// BatchLabel datos impresos en la etiqueta de un lote.
type BatchLabel struct {
	MaterialCode string
	MaterialName string
	BatchNumber  string
	Barcode      string // contenido Code-128 y QR
	Remaining    string
	Unit         string
	Expiry       string // dd/mm/aaaa o vacío
}

// MaterialLabel datos impresos en la etiqueta de un material.
type MaterialLabel struct {
	Code    string
	Name    string
	Unit    string
	Barcode string // EAN-13
}

// LabelPrinter genera el PDF de etiquetas.
type LabelPrinter interface {
	BatchLabels(ctx context.Context, companyName string, labels []BatchLabel) ([]byte, error)
	MaterialLabels(ctx context.Context, companyName string, labels []MaterialLabel) ([]byte, error)
}

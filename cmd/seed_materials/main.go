// seed_materials genera un script SQL para cargar el catálogo de materiales de una empresa
// a partir del CSV exportado por la hoja de cálculo heredada (ISO-8859-1, separado por ';').
//
// Columnas: code;name;category;unit;min_stock[;barcode]. La primera fila es encabezado.
// Sin code se deriva del nombre; sin barcode se asigna un EAN-13 a partir de -seq-start.
//
// Uso: go run ./cmd/seed_materials -company <uuid> [-in materiales.csv] [-out seed_materials.sql]
package main

import (
	"bufio"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/inventario-lotes/internal/domain/inventory"
)

type seedMaterial struct {
	Code     string
	Name     string
	Category string
	Unit     string
	MinStock decimal.Decimal
	Barcode  string
}

func main() {
	companyID := flag.String("company", "", "UUID de la empresa dueña del catálogo")
	in := flag.String("in", "materiales.csv", "CSV de entrada (ISO-8859-1)")
	out := flag.String("out", "seed_materials.sql", "script SQL de salida")
	utf8In := flag.Bool("utf8", false, "el CSV ya viene en UTF-8")
	seqStart := flag.Int64("seq-start", 900000, "secuencia inicial para EAN-13 generados")
	flag.Parse()

	if _, err := uuid.Parse(*companyID); err != nil {
		fmt.Fprintf(os.Stderr, "-company debe ser un UUID válido: %v\n", err)
		os.Exit(2)
	}

	f, err := os.Open(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	var r io.Reader = f
	if !*utf8In {
		r = transform.NewReader(f, charmap.ISO8859_1.NewDecoder())
	}
	materials, skipped, err := parseMaterials(r)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	dst, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer dst.Close()

	w := bufio.NewWriter(dst)
	if err := writeSQL(w, *companyID, *seqStart, materials); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	if err := w.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d materiales, %d filas omitidas\n", *out, len(materials), skipped)
}

// parseMaterials lee el CSV ya decodificado. Filas sin nombre o unidad se omiten;
// códigos repetidos conservan la primera aparición.
func parseMaterials(r io.Reader) ([]seedMaterial, int, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("encabezado: %w", err)
	}

	var out []seedMaterial
	seen := make(map[string]bool)
	skipped := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, skipped, err
		}
		if len(rec) < 4 {
			skipped++
			continue
		}
		m := seedMaterial{
			Code:     strings.ToUpper(strings.TrimSpace(rec[0])),
			Name:     strings.TrimSpace(rec[1]),
			Category: strings.TrimSpace(rec[2]),
			Unit:     strings.ToLower(strings.TrimSpace(rec[3])),
		}
		if m.Name == "" || m.Unit == "" {
			skipped++
			continue
		}
		if m.Code == "" {
			m.Code = inventory.MaterialCode(m.Name)
		}
		if len(rec) > 4 {
			// la hoja heredada usa coma decimal
			raw := strings.ReplaceAll(strings.TrimSpace(rec[4]), ",", ".")
			if raw != "" {
				d, err := decimal.NewFromString(raw)
				if err != nil || d.IsNegative() {
					skipped++
					continue
				}
				m.MinStock = d
			}
		}
		if len(rec) > 5 {
			bc := strings.TrimSpace(rec[5])
			if inventory.ValidEAN13(bc) {
				m.Barcode = bc
			}
		}
		if m.Code == "" || seen[m.Code] {
			skipped++
			continue
		}
		seen[m.Code] = true
		out = append(out, m)
	}
	return out, skipped, nil
}

// writeSQL emite INSERTs idempotentes: el id se deriva de empresa+código y un código existente
// solo actualiza los datos descriptivos.
func writeSQL(w io.Writer, companyID string, seqStart int64, materials []seedMaterial) error {
	ns := uuid.MustParse(companyID)
	seq := seqStart
	var b strings.Builder
	b.WriteString("-- Catálogo de materiales\n")
	fmt.Fprintf(&b, "-- Empresa %s, %d materiales\n\n", companyID, len(materials))
	b.WriteString("BEGIN;\n\n")
	for _, m := range materials {
		barcode := m.Barcode
		if barcode == "" {
			barcode = inventory.NewMaterialBarcode(seq)
			seq++
		}
		id := uuid.NewSHA1(ns, []byte(m.Code))
		fmt.Fprintf(&b, "INSERT INTO materials (id, company_id, code, name, category, unit, barcode, min_stock)\n")
		fmt.Fprintf(&b, "VALUES ('%s', '%s', '%s', '%s', '%s', '%s', '%s', %s)\n",
			id, companyID, escapeSQL(m.Code), escapeSQL(m.Name), escapeSQL(m.Category),
			escapeSQL(m.Unit), barcode, m.MinStock.String())
		b.WriteString("ON CONFLICT (company_id, code) DO UPDATE SET name = EXCLUDED.name, category = EXCLUDED.category,\n")
		b.WriteString("  unit = EXCLUDED.unit, min_stock = EXCLUDED.min_stock, updated_at = now();\n")
	}
	if seq > seqStart {
		b.WriteString("\n-- Los EAN-13 generados en la API no deben chocar con los de este script\n")
		fmt.Fprintf(&b, "SELECT setval('material_barcode_seq', GREATEST((SELECT last_value FROM material_barcode_seq), %d));\n", seq)
	}
	b.WriteString("\nCOMMIT;\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

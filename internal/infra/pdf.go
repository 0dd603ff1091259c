package infra

// pdf.go: work order ticket rendered with go-pdf/fpdf.
// The layout follows the shop's paper ticket: order number, client,
// vehicle, service lines and the total charged.

import (
	"bytes"
	"fmt"
	"strconv"

	"taller/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerateOrdenPDF renders an A5 ticket for a work order. The order must be
// loaded with its Cliente and Detalles.Producto.
func GenerateOrdenPDF(orden *model.OrdenTrabajo, taller string) ([]byte, error) {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 148, Ht: 210},
	})
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 20

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, tr(taller), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, tr("Orden de Trabajo"), "", 1, "C", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW/2, 6, tr(fmt.Sprintf("N° %d", orden.NumeroOrdenPapel)), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW/2, 6, orden.FechaIngreso.Format("02/01/2006 15:04"), "", 1, "R", false, 0, "")
	pdf.Ln(1)

	// ── Cliente / vehículo ───────────────────────────────────────────────────
	linea := func(label, valor string) {
		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(28, 5, tr(label), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		pdf.CellFormat(contentW-28, 5, tr(valor), "", 1, "L", false, 0, "")
	}
	if orden.Cliente != nil {
		linea("Cliente:", orden.Cliente.Nombre)
		if orden.Cliente.RUT != nil {
			linea("RUT:", *orden.Cliente.RUT)
		}
		if orden.Cliente.Telefono != nil {
			linea("Teléfono:", *orden.Cliente.Telefono)
		}
	}
	linea("Patente:", orden.PatenteVehiculo)
	if orden.Kilometraje != nil {
		linea("Kilometraje:", formatMiles(int64(*orden.Kilometraje))+" km")
	}
	linea("Realizado por:", orden.RealizadoPor)
	if orden.RevisadoPor != nil {
		linea("Revisado por:", *orden.RevisadoPor)
	}
	pdf.Ln(2)

	// ── Items ────────────────────────────────────────────────────────────────
	col1 := contentW * 0.50
	col2 := contentW * 0.12
	col3 := contentW * 0.19
	col4 := contentW * 0.19

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(col1, 6, "Servicio", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 6, "Cant", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 6, "Precio", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 6, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	for _, d := range orden.Detalles {
		nombre := d.ServicioNombre
		if d.Producto != nil {
			nombre += " (" + d.Producto.SKU + ")"
		}
		if r := []rune(nombre); len(r) > 40 {
			nombre = string(r[:39]) + "…"
		}
		pdf.CellFormat(col1, 5, tr(nombre), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, strconv.Itoa(d.Cantidad), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, FormatCLP(d.Precio), "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 5, FormatCLP(d.Subtotal()), "", 1, "R", false, 0, "")
		if d.Descripcion != nil && *d.Descripcion != "" {
			pdf.SetFont("Helvetica", "I", 7)
			pdf.MultiCell(col1, 4, tr(*d.Descripcion), "", "L", false)
			pdf.SetFont("Helvetica", "", 8)
		}
	}

	pdf.Ln(1)
	pdf.Line(10, pdf.GetY(), pageW-10, pdf.GetY())
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(col1+col2+col3, 7, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col4, 7, FormatCLP(orden.TotalCobrado), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render: %w", err)
	}
	return buf.Bytes(), nil
}

// FormatCLP renders an amount in Chilean pesos: 350000 → "$350.000".
func FormatCLP(monto int64) string {
	if monto < 0 {
		return "-$" + formatMiles(-monto)
	}
	return "$" + formatMiles(monto)
}

func formatMiles(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	pre := len(s) % 3
	if pre > 0 {
		out = append(out, s[:pre]...)
	}
	for i := pre; i < len(s); i += 3 {
		if len(out) > 0 {
			out = append(out, '.')
		}
		out = append(out, s[i:i+3]...)
	}
	return string(out)
}

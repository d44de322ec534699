package dte

import "github.com/shopspring/decimal"

// TasaIVADefault tasa de IVA vigente en Chile (Ley sobre Impuesto a las Ventas
// y Servicios, art. 14).
var TasaIVADefault = decimal.RequireFromString("0.19")

// CalcularTotales computa los montos del documento a partir de los totales de
// línea: neto = suma de líneas, IVA = round(neto x tasa, 2),
// total = round(neto + IVA, 2).
func CalcularTotales(items []Item, tasaIVA decimal.Decimal) (neto, iva, total decimal.Decimal) {
	neto = decimal.Zero
	for _, it := range items {
		neto = neto.Add(it.Total)
	}
	iva = neto.Mul(tasaIVA).Round(2)
	total = neto.Add(iva).Round(2)
	return neto, iva, total
}

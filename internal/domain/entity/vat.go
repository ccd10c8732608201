package entity

import (
	"fmt"
	"strings"
)

// VatType clasificación fiscal de la factura en el libro remoto.
// Los valores enteros son los códigos del libro.
type VatType int

const (
	VatTypeNational                   VatType = 1 // factura nacional normal
	VatTypeNationalReverseCharge      VatType = 2 // IVA revertido dentro de NL
	VatTypeInternationalReverseCharge VatType = 3 // IVA revertido a empresa en la UE
	VatTypeExport                     VatType = 4 // exportación fuera de la UE
	VatTypeMarginScheme               VatType = 5 // régimen de margen (segunda mano)
	VatTypeForeignVat                 VatType = 6 // IVA extranjero (MOSS, servicios digitales a particulares UE)
)

// String devuelve el nombre legible.
func (v VatType) String() string {
	switch v {
	case VatTypeNational:
		return "National"
	case VatTypeNationalReverseCharge:
		return "NationalReverseCharge"
	case VatTypeInternationalReverseCharge:
		return "InternationalReverseCharge"
	case VatTypeExport:
		return "Export"
	case VatTypeMarginScheme:
		return "MarginScheme"
	case VatTypeForeignVat:
		return "ForeignVat"
	default:
		return fmt.Sprintf("VatType(%d)", int(v))
	}
}

// Code devuelve el código numérico usado en el cable.
func (v VatType) Code() string {
	return fmt.Sprintf("%d", int(v))
}

// PricingMode indica si los importes de línea incluyen o no el IVA.
type PricingMode string

const (
	PricingExclusive PricingMode = "Exclusive"
	PricingInclusive PricingMode = "Inclusive"
)

// ParsePricingMode interpreta el modo de precios (sin distinguir mayúsculas).
func ParsePricingMode(s string) (PricingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "exclusive":
		return PricingExclusive, nil
	case "inclusive":
		return PricingInclusive, nil
	default:
		return "", fmt.Errorf("modo de precios desconocido %q (usar Exclusive|Inclusive)", s)
	}
}

// Nature naturaleza por defecto de lo facturado.
type Nature string

const (
	NatureService Nature = "Service"
	NatureProduct Nature = "Product"
)

// ParseNature interpreta la naturaleza (sin distinguir mayúsculas).
func ParseNature(s string) (Nature, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "service":
		return NatureService, nil
	case "product":
		return NatureProduct, nil
	default:
		return "", fmt.Errorf("naturaleza desconocida %q (usar Service|Product)", s)
	}
}

// PaymentStatus estado de pago de una entrada en el libro remoto.
type PaymentStatus int

const (
	PaymentStatusUnknown PaymentStatus = 0
	PaymentStatusDue     PaymentStatus = 1
	PaymentStatusPaid    PaymentStatus = 2
)

// Code devuelve el código numérico usado en el cable.
func (p PaymentStatus) Code() string {
	return fmt.Sprintf("%d", int(p))
}

// LedgerStatus resultado de una llamada al libro remoto.
type LedgerStatus int

const (
	LedgerStatusSuccess     LedgerStatus = 0
	LedgerStatusErrors      LedgerStatus = 1
	LedgerStatusWarnings    LedgerStatus = 2
	LedgerStatusUnspecified LedgerStatus = -1
)

// Accepted indica si el libro aceptó la petición (con o sin avisos).
func (s LedgerStatus) Accepted() bool {
	return s == LedgerStatusSuccess || s == LedgerStatusWarnings
}

// String devuelve el nombre legible.
func (s LedgerStatus) String() string {
	switch s {
	case LedgerStatusSuccess:
		return "success"
	case LedgerStatusErrors:
		return "error(s)"
	case LedgerStatusWarnings:
		return "warning(s)"
	default:
		return "unspecified"
	}
}

// ParseLedgerStatus convierte el código del cable. Códigos desconocidos devuelven error.
func ParseLedgerStatus(code string) (LedgerStatus, error) {
	switch strings.TrimSpace(code) {
	case "0":
		return LedgerStatusSuccess, nil
	case "1":
		return LedgerStatusErrors, nil
	case "2":
		return LedgerStatusWarnings, nil
	default:
		return LedgerStatusUnspecified, fmt.Errorf("código de estado desconocido %q", code)
	}
}

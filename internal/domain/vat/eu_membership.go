package vat

import (
	"strings"
	"time"
)

// MembershipRule periodo de pertenencia a la UE de un código de país.
// Until es exclusivo; cero => abierto.
type MembershipRule struct {
	Code  string
	From  time.Time
	Until time.Time
}

// active indica si la regla aplica en la fecha dada.
func (r MembershipRule) active(at time.Time) bool {
	if !r.From.IsZero() && at.Before(r.From) {
		return false
	}
	if !r.Until.IsZero() && !at.Before(r.Until) {
		return false
	}
	return true
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// BrexitDate primer día en que GB/UK dejan de contar como miembros.
var BrexitDate = date(2021, time.January, 1)

// DefaultMembershipRules tabla fechada de miembros de la UE.
// Para altas o bajas futuras se añade una fila, no se tocan los llamadores.
var DefaultMembershipRules = []MembershipRule{
	{Code: "BE"}, {Code: "BG"}, {Code: "CY"}, {Code: "DK"}, {Code: "DE"},
	{Code: "EE"}, {Code: "FI"}, {Code: "FR"}, {Code: "GR"}, {Code: "HU"},
	{Code: "IE"}, {Code: "IT"}, {Code: "HR"}, {Code: "LV"}, {Code: "LT"},
	{Code: "LU"}, {Code: "MT"}, {Code: "NL"}, {Code: "AT"}, {Code: "PL"},
	{Code: "PT"}, {Code: "RO"}, {Code: "SI"}, {Code: "SK"}, {Code: "ES"},
	{Code: "CZ"}, {Code: "SE"},
	{Code: "GB", Until: BrexitDate},
	{Code: "UK", Until: BrexitDate},
}

// Membership resuelve la pertenencia a la UE a partir de una tabla de reglas.
type Membership struct {
	rules map[string][]MembershipRule
}

// NewMembership construye el resolvedor. Con rules nil usa DefaultMembershipRules.
func NewMembership(rules []MembershipRule) *Membership {
	if rules == nil {
		rules = DefaultMembershipRules
	}
	m := &Membership{rules: make(map[string][]MembershipRule, len(rules))}
	for _, r := range rules {
		code := strings.ToUpper(strings.TrimSpace(r.Code))
		r.Code = code
		m.rules[code] = append(m.rules[code], r)
	}
	return m
}

// IsMember indica si el país es miembro de la UE en la fecha dada.
// Códigos desconocidos no son miembros.
func (m *Membership) IsMember(countryCode string, at time.Time) bool {
	for _, r := range m.rules[strings.ToUpper(strings.TrimSpace(countryCode))] {
		if r.active(at) {
			return true
		}
	}
	return false
}

// Members devuelve los códigos miembros en la fecha dada (sin orden garantizado).
func (m *Membership) Members(at time.Time) []string {
	out := make([]string, 0, len(m.rules))
	for code := range m.rules {
		if m.IsMember(code, at) {
			out = append(out, code)
		}
	}
	return out
}

var defaultMembership = NewMembership(nil)

// IsEuMember consulta la tabla por defecto.
func IsEuMember(countryCode string, at time.Time) bool {
	return defaultMembership.IsMember(countryCode, at)
}

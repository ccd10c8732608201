package vat_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/acumulus-sync/internal/domain/vat"
)

func d(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestIsEuMember_Brexit(t *testing.T) {
	for _, code := range []string{"GB", "UK", "gb", "uk"} {
		assert.True(t, vat.IsEuMember(code, d("2020-12-31")), "%s es miembro antes de 2021", code)
		assert.False(t, vat.IsEuMember(code, d("2021-01-01")), "%s deja de ser miembro el 2021-01-01", code)
		assert.False(t, vat.IsEuMember(code, d("2024-06-01")), "%s no es miembro después", code)
	}
}

func TestIsEuMember_MiembrosYDesconocidos(t *testing.T) {
	assert.True(t, vat.IsEuMember("DE", d("2010-01-01")))
	assert.True(t, vat.IsEuMember(" be ", d("2030-01-01")))
	assert.True(t, vat.IsEuMember("NL", d("2021-01-01")))
	assert.False(t, vat.IsEuMember("US", d("2020-01-01")))
	assert.False(t, vat.IsEuMember("", d("2020-01-01")))
	assert.False(t, vat.IsEuMember("XX", d("2020-01-01")))
}

func TestMembership_TablaExtensible(t *testing.T) {
	rules := append([]vat.MembershipRule{}, vat.DefaultMembershipRules...)
	rules = append(rules, vat.MembershipRule{Code: "IS", From: d("2030-01-01")})
	m := vat.NewMembership(rules)

	assert.False(t, m.IsMember("IS", d("2029-12-31")))
	assert.True(t, m.IsMember("IS", d("2030-01-01")))
	assert.Len(t, m.Members(d("2020-06-01")), 29, "27 miembros + GB + UK")
	assert.Len(t, m.Members(d("2021-06-01")), 27)
}

package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jdmorgan/trading-portal/internal/domain/entity"
)

func TestSanitizePhone_SoloDigitos(t *testing.T) {
	cases := map[string]string{
		"+1 (604) 555-0100": "16045550100",
		"  44 7700 900 ":    "447700900",
		"sin número":        "",
		"٣٤٥":               "",
		"":                  "",
	}
	for in, want := range cases {
		got := entity.SanitizePhone(in)
		assert.Equal(t, want, got, "entrada %q", in)
		assert.Equal(t, got, entity.SanitizePhone(got), "debe ser idempotente")
	}
}

func TestIsDigits(t *testing.T) {
	assert.True(t, entity.IsDigits("0123"))
	assert.False(t, entity.IsDigits(""))
	assert.False(t, entity.IsDigits("12a"))
}

func TestNewMemberID(t *testing.T) {
	assert.Equal(t, "JD-AB12C", entity.NewMemberID("ab12cdef"))
	assert.Equal(t, "JD-XY", entity.NewMemberID("xy"))
}

func TestAccessPolicy_CuentaPrivilegiada(t *testing.T) {
	p := entity.NewAccessPolicy(" Info@JDMorgan.ca ")

	assert.Equal(t, "info@jdmorgan.ca", p.PrivilegedEmail())
	assert.True(t, p.IsPrivilegedEmail("INFO@jdmorgan.ca"))

	byUsername := &entity.User{Username: "info@jdmorgan.ca", Role: entity.RoleClient}
	assert.True(t, p.IsPrivileged(byUsername))
	assert.True(t, p.IsAdmin(byUsername))
	assert.True(t, p.IsApproved(byUsername), "la cuenta privilegiada siempre está aprobada")

	regular := &entity.User{Email: "ana@example.com", Role: entity.RoleClient}
	assert.False(t, p.IsAdmin(regular))
	assert.False(t, p.IsApproved(regular))
	assert.False(t, p.IsAdmin(nil))

	admin := &entity.User{Email: "ops@example.com", Role: entity.RoleAdmin}
	assert.True(t, p.IsAdmin(admin))
}

func TestAccessPolicy_SinEmailConfigurado(t *testing.T) {
	p := entity.NewAccessPolicy("")
	assert.False(t, p.IsPrivilegedEmail(""))
	assert.False(t, p.IsPrivileged(&entity.User{}))
}

func TestMemberType_Valid(t *testing.T) {
	assert.True(t, entity.MemberProjectManager.Valid())
	assert.False(t, entity.MemberType("Gold").Valid())
}

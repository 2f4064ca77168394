package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnglishPlural(t *testing.T) {
	p := NewPrinter("en")
	assert.Contains(t, p.Sprintf(MsgPasswordExpiringSoon, 3), "3 days")
	assert.Contains(t, p.Sprintf(MsgPasswordExpiringSoon, 1), "1 day.")
}

func TestIndonesian(t *testing.T) {
	p := NewPrinter("id")
	assert.Equal(t, "Anda tidak memiliki akses ke toko ini.", p.Sprintf(MsgStoreMismatch))
	assert.Contains(t, p.Sprintf(MsgPasswordExpiringSoon, 3), "3 hari")
}

func TestUnknownLanguageFallsBackToEnglish(t *testing.T) {
	assert.Equal(t, MsgTenantMismatch, NewPrinter("not a tag!").Sprintf(MsgTenantMismatch))
	var p *Printer
	assert.Equal(t, MsgUnauthenticated, p.Sprintf(MsgUnauthenticated))
}

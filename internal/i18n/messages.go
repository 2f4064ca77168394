// Package i18n holds the user-facing messages of the access layer in English
// and Indonesian.
package i18n

import (
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys. The English text doubles as the key.
const (
	MsgUnauthenticated        = "Unauthenticated."
	MsgLoginRequired          = "Please log in to continue."
	MsgMustChangePassword     = "You must change your password before continuing."
	MsgPasswordExpired        = "Your password has expired. Please set a new password."
	MsgPasswordExpiringSoon   = "Your password will expire in %d days. Please change it soon."
	MsgNoTenant               = "Your account is not assigned to a tenant."
	MsgTenantMismatch         = "You do not have access to this tenant."
	MsgNoStore                = "Your account is not assigned to a store."
	MsgStoreMismatch          = "You do not have access to this store."
	MsgForbidden              = "You do not have permission to access this page."
	MsgWelcomeBack            = "Welcome back."
	MsgInvalidCredentials     = "Invalid email or password."
	MsgPasswordChanged        = "Your password has been changed."
	MsgCurrentPasswordInvalid = "The current password is incorrect."
)

var catalogue = build()

func build() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))

	set := func(key, en, id string) {
		_ = b.SetString(language.English, key, en)
		_ = b.SetString(language.Indonesian, key, id)
	}
	set(MsgUnauthenticated, MsgUnauthenticated, "Belum terautentikasi.")
	set(MsgLoginRequired, MsgLoginRequired, "Silakan masuk terlebih dahulu.")
	set(MsgMustChangePassword, MsgMustChangePassword, "Anda harus mengganti password sebelum melanjutkan.")
	set(MsgPasswordExpired, MsgPasswordExpired, "Password Anda telah kedaluwarsa. Silakan buat password baru.")
	set(MsgNoTenant, MsgNoTenant, "Akun Anda tidak terdaftar pada tenant mana pun.")
	set(MsgTenantMismatch, MsgTenantMismatch, "Anda tidak memiliki akses ke tenant ini.")
	set(MsgNoStore, MsgNoStore, "Akun Anda tidak terdaftar pada toko mana pun.")
	set(MsgStoreMismatch, MsgStoreMismatch, "Anda tidak memiliki akses ke toko ini.")
	set(MsgForbidden, MsgForbidden, "Anda tidak memiliki izin untuk mengakses halaman ini.")
	set(MsgWelcomeBack, MsgWelcomeBack, "Selamat datang kembali.")
	set(MsgInvalidCredentials, MsgInvalidCredentials, "Email atau password tidak valid.")
	set(MsgPasswordChanged, MsgPasswordChanged, "Password Anda berhasil diganti.")
	set(MsgCurrentPasswordInvalid, MsgCurrentPasswordInvalid, "Password saat ini salah.")

	_ = b.Set(language.English, MsgPasswordExpiringSoon, plural.Selectf(1, "%d",
		"=1", "Your password will expire in %d day. Please change it soon.",
		"other", "Your password will expire in %d days. Please change it soon.",
	))
	_ = b.SetString(language.Indonesian, MsgPasswordExpiringSoon,
		"Password Anda akan kedaluwarsa dalam %d hari. Segera ganti password Anda.")
	return b
}

// Printer formats messages for one language.
type Printer struct {
	p *message.Printer
}

// NewPrinter returns a printer for the BCP 47 tag lang, falling back to
// English for unknown or unsupported tags.
func NewPrinter(lang string) *Printer {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	matcher := language.NewMatcher(catalogue.Languages())
	matched, _, _ := matcher.Match(tag)
	return &Printer{p: message.NewPrinter(matched, message.Catalog(catalogue))}
}

// Sprintf formats the message identified by key.
func (p *Printer) Sprintf(key string, args ...any) string {
	if p == nil {
		return NewPrinter("en").Sprintf(key, args...)
	}
	return p.p.Sprintf(key, args...)
}

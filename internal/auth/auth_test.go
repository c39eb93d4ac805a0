package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vox/internal/audit"
)

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name     string
		cred     Credential
		wantPriv Privilege
		wantMsg  string
		wantSev  audit.Severity
	}{
		{"no credential", Anonymous(), Basic, MessageBasic, audit.SeverityInfo},
		{"correct secret", Secret("admin123"), Admin, MessageAdmin, audit.SeverityInfo},
		{"wrong secret", Secret("letmein"), Basic, MessageFailed, audit.SeverityWarning},
		{"secret differs in case", Secret("ADMIN123"), Basic, MessageFailed, audit.SeverityWarning},
		{"empty secret", Secret(""), Basic, MessageFailed, audit.SeverityWarning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &audit.Memory{}
			a := New("admin123", rec, nil)

			d := a.Authenticate(tt.cred)

			assert.True(t, d.Authenticated, "authentication must never reject")
			assert.Equal(t, tt.wantPriv, d.Privilege)
			assert.Equal(t, tt.wantMsg, d.Message)

			entries := rec.Entries()
			if assert.Len(t, entries, 1) {
				assert.Equal(t, tt.wantSev, entries[0].Severity)
			}
		})
	}
}

func TestAuthenticate_EmptyConfiguredSecretDisablesAdmin(t *testing.T) {
	a := New("", nil, nil)

	d := a.Authenticate(Secret(""))

	assert.True(t, d.Authenticated)
	assert.Equal(t, Basic, d.Privilege)
	assert.Equal(t, MessageFailed, d.Message)
}

func TestPrivilege_String(t *testing.T) {
	assert.Equal(t, "BASIC", Basic.String())
	assert.Equal(t, "ADMIN", Admin.String())
}

func TestCredential_Present(t *testing.T) {
	assert.False(t, Anonymous().Present())
	assert.True(t, Secret("").Present())
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_LookupAndDomains(t *testing.T) {
	calendar := AuthorizationDomain{ServiceName: "cl", Scope: "https://www.google.com/calendar/feeds/"}
	contacts := AuthorizationDomain{ServiceName: "cp", Scope: "https://www.google.com/m8/feeds/"}

	r, err := NewRegistry(contacts, calendar)
	require.NoError(t, err)

	got, ok := r.Lookup("cl")
	assert.True(t, ok)
	assert.Equal(t, calendar, got)

	_, ok = r.Lookup("missing")
	assert.False(t, ok)

	assert.Equal(t, []AuthorizationDomain{calendar, contacts}, r.Domains())
}

func TestRegistry_Register(t *testing.T) {
	d := AuthorizationDomain{ServiceName: "cl", Scope: "scope-a"}

	tests := []struct {
		name    string
		domain  AuthorizationDomain
		wantErr bool
	}{
		{"identical re-registration", d, false},
		{"conflicting scope", AuthorizationDomain{ServiceName: "cl", Scope: "scope-b"}, true},
		{"empty service name", AuthorizationDomain{Scope: "scope-c"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRegistry(d)
			require.NoError(t, err)

			err = r.Register(tt.domain)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrDomainConflict)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAuthorizationDomain_Comparable(t *testing.T) {
	a := AuthorizationDomain{ServiceName: "cl", Scope: "s"}
	b := AuthorizationDomain{ServiceName: "cl", Scope: "s"}

	m := map[AuthorizationDomain]string{a: "token"}
	assert.Equal(t, "token", m[b])
}

package jwt_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-lotes/pkg/jwt"
)

func TestIssuer_GenerateYParse(t *testing.T) {
	iss, err := jwt.NewIssuer("secreto", "inventario-lotes", 5)
	require.NoError(t, err)

	tok, err := iss.Generate("u1", "c1", "bodeguero")
	require.NoError(t, err)

	claims, err := iss.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "c1", claims.CompanyID)
	assert.Equal(t, "bodeguero", claims.Role)
	assert.Equal(t, "u1", claims.Subject)
}

func TestIssuer_RechazaTokensAjenos(t *testing.T) {
	iss, _ := jwt.NewIssuer("secreto", "inventario-lotes", 5)
	otroSecreto, _ := jwt.NewIssuer("otro", "inventario-lotes", 5)
	otroEmisor, _ := jwt.NewIssuer("secreto", "otra-app", 5)

	for name, src := range map[string]*jwt.Issuer{"firma": otroSecreto, "emisor": otroEmisor} {
		t.Run(name, func(t *testing.T) {
			tok, err := src.Generate("u1", "c1", "admin")
			require.NoError(t, err)
			_, err = iss.Parse(tok)
			assert.True(t, errors.Is(err, jwt.ErrInvalidToken))
		})
	}

	_, err := iss.Parse("no.es.jwt")
	assert.True(t, errors.Is(err, jwt.ErrInvalidToken))
}

func TestNewIssuer_SecretVacio(t *testing.T) {
	_, err := jwt.NewIssuer("", "x", 5)
	assert.Error(t, err)
}

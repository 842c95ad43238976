package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Valid(t *testing.T) {
	raw := []byte(`{"pkg_code":"P1","shop_id":"S1","package_status_id":5,"webhook_url":"/hooks/p1"}`)
	e, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "P1", e.PkgCode)
	assert.Equal(t, "S1", e.ShopID)
	assert.Equal(t, "/hooks/p1", e.WebhookURL)
	assert.Equal(t, raw, e.Raw())
}

func TestDecode_PackageStatusIDPreservesStringForm(t *testing.T) {
	raw := []byte(`{"pkg_code":"P1","shop_id":"S1","package_status_id":"delivered","webhook_url":"/hooks/p1"}`)
	e, err := Decode(raw)
	require.NoError(t, err)
	assert.JSONEq(t, `"delivered"`, string(e.PackageStatusID))
}

func TestDecode_MissingFields(t *testing.T) {
	cases := []string{
		`{"shop_id":"S1","package_status_id":5,"webhook_url":"/h"}`,
		`{"pkg_code":"P1","package_status_id":5,"webhook_url":"/h"}`,
		`{"pkg_code":"P1","shop_id":"S1","webhook_url":"/h"}`,
		`{"pkg_code":"P1","shop_id":"S1","package_status_id":5,"webhook_url":""}`,
		`{"pkg_code":"","shop_id":"S1","package_status_id":5,"webhook_url":"/h"}`,
	}
	for _, c := range cases {
		_, err := Decode([]byte(c))
		assert.ErrorIs(t, err, ErrInvalidEvent)
	}
}

func TestDecode_InvalidJSON(t *testing.T) {
	_, err := Decode([]byte(`not json`))
	require.Error(t, err)
}

func TestWebhookBody(t *testing.T) {
	e, err := Decode([]byte(`{"pkg_code":"P1","shop_id":"S1","package_status_id":5,"webhook_url":"/h"}`))
	require.NoError(t, err)

	body, err := e.WebhookBody()
	require.NoError(t, err)
	assert.JSONEq(t, `{"pkg_code":"P1","package_status_id":5}`, string(body))
}

package natsadapter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/locationwizard/internal/core/domain"
)

func TestLookupSubject(t *testing.T) {
	assert.Equal(t, "location.lookup.iv", LookupSubject("IV"))
	assert.Equal(t, "location.lookup.unknown", LookupSubject(domain.Unknown))
	assert.Equal(t, "location.lookup.unknown", LookupSubject(" "))
	assert.Equal(t, "location.lookup.zone_iv", LookupSubject("Zone IV"))
	assert.Equal(t, "location.lookup.v_a", LookupSubject("V.A"))
	assert.Equal(t, "location.lookup.__", LookupSubject("*>"))
}

func TestParseEncoding(t *testing.T) {
	enc, err := ParseEncoding("")
	require.NoError(t, err)
	assert.Equal(t, EncodingJSON, enc)

	enc, err = ParseEncoding("Protobuf")
	require.NoError(t, err)
	assert.Equal(t, EncodingProtobuf, enc)

	_, err = ParseEncoding("avro")
	assert.Error(t, err)
}

func TestProtobufPayloadKeepsNullFactors(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	event := &domain.LookupEvent{
		ID:         "7d9f2c1e-3b7a-4f55-9a64-0a7c5e1b2d31",
		Result:     domain.NewLocationResult(0, 0),
		RiskLevel:  domain.Unknown,
		WindClass:  domain.Unknown,
		OccurredAt: at,
	}

	msg, err := encodeMsg(EncodingProtobuf, LookupSubject(event.Result.SeismicZone), event)
	require.NoError(t, err)
	assert.Equal(t, contentTypeProtobuf, msg.Header.Get("Content-Type"))
	assert.NotEqual(t, byte('{'), msg.Data[0])

	got, err := DecodeLookupEvent(msg)
	require.NoError(t, err)
	assert.Equal(t, event.ID, got.ID)
	assert.Nil(t, got.Result.ZoneFactor)
	assert.Nil(t, got.Result.BasicWindSpeed)
	assert.Equal(t, domain.Unknown, got.Result.SeismicZone)
	assert.True(t, at.Equal(got.OccurredAt))
}

func TestJSONPayload(t *testing.T) {
	z := 0.24
	res := domain.NewLocationResult(28.6139, 77.209)
	res.SeismicZone = "IV"
	res.ZoneFactor = &z

	msg, err := encodeMsg(EncodingJSON, LookupSubject("IV"), &domain.LookupEvent{ID: "a", Result: res})
	require.NoError(t, err)
	assert.Equal(t, contentTypeJSON, msg.Header.Get("Content-Type"))
	assert.Contains(t, string(msg.Data), `"zone_factor":0.24`)

	got, err := DecodeLookupEvent(msg)
	require.NoError(t, err)
	require.NotNil(t, got.Result.ZoneFactor)
	assert.Equal(t, 0.24, *got.Result.ZoneFactor)
}

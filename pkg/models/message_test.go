package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalRecord_ValuesFollowColumnOrder(t *testing.T) {
	rec := CanonicalRecord{
		UserID:         "u-1",
		AppVersion:     5,
		DeviceType:     "android",
		MaskedIP:       "ip-hash",
		Locale:         "en-US",
		MaskedDeviceID: "device-hash",
		CreateDate:     time.Date(2026, 10, 17, 15, 4, 5, 0, time.UTC),
	}

	values := rec.Values("2006-01-02")
	require.Len(t, values, len(Columns))
	assert.Equal(t, []interface{}{"u-1", 5, "android", "ip-hash", "en-US", "device-hash", "2026-10-17"}, values)
}

func TestRawMessageBuilder(t *testing.T) {
	msg, err := NewRawMessageBuilder().
		WithID("m-1").
		WithField("ip", "1.2.3.4").
		WithField("device_id", "abc").
		Build()
	require.NoError(t, err)
	assert.Equal(t, "m-1", msg.ID)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(msg.Body), &body))
	assert.Equal(t, "1.2.3.4", body["ip"])

	raw := NewRawMessageBuilder().WithID("m-2").WithRawBody("{not json").MustBuild()
	assert.Equal(t, "{not json", raw.Body)
}

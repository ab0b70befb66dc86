package compile

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestCurrent(t *testing.T) {
	old := IpAddr
	IpAddr = "10.0.0.5"
	t.Cleanup(func() { IpAddr = old })

	info := Current(":8080")
	assert.Equal(t, Name, info.Name)
	assert.Equal(t, Os(), info.OS)
	require.Len(t, info.Endpoints, 1)
	assert.Equal(t, "http://10.0.0.5:8080", info.Endpoints[0].String())

	data, err := json.Marshal(info)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:8080", gjson.GetBytes(data, "endpoints.0").String())

	var back Info
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, info.Endpoints, back.Endpoints)

	assert.Empty(t, Current("bad-addr").Endpoints)
}

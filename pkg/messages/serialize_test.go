package messages

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeserializeMessage(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantType string
		wantErr  bool
	}{
		{name: "join", data: `{"type":"join","payload":{"name":"ann"}}`, wantType: MessageTypeClientJoin},
		{name: "no payload", data: `{"type":"roll"}`, wantType: MessageTypeClientRoll},
		{name: "missing type", data: `{"payload":{}}`, wantErr: true},
		{name: "not json", data: `roll`, wantErr: true},
		{name: "too large", data: `{"type":"join","payload":{"name":"` + strings.Repeat("a", MessageBufferSize) + `"}}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DeserializeMessage([]byte(tt.data))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, got.Type)
		})
	}
}

func TestDecodePayload(t *testing.T) {
	ready := &ClientReady{}
	require.NoError(t, DecodePayload(&Message{Type: MessageTypeClientReady, Payload: json.RawMessage(`{"ready":true}`)}, ready))
	require.NotNil(t, ready.Ready)
	assert.True(t, *ready.Ready)

	empty := &ClientReady{}
	require.NoError(t, DecodePayload(&Message{Type: MessageTypeClientReady}, empty))
	assert.Nil(t, empty.Ready)

	amount := &ClientSetStartAmount{}
	assert.Error(t, DecodePayload(&Message{Type: MessageTypeClientSetStartAmount, Payload: json.RawMessage(`{"amount":"lots"}`)}, amount))
}

func TestSerializeState(t *testing.T) {
	admin := "p1"
	msg, err := NewMessage(MessageTypeServerState, &ServerState{
		RoomID: "123456",
		Players: []PlayerState{
			{ID: "p1", Name: "ann", Kind: "human", Pos: 3, Money: 1440, Ready: true},
		},
		Properties: []PropertyState{
			{ID: 0, Name: "GO", Cost: 0},
			{ID: 1, Name: "Mediterranean Avenue", Cost: 60, OwnerID: &admin},
		},
		Started:     true,
		Status:      "active",
		AdminID:     &admin,
		StartAmount: 1500,
	})
	require.NoError(t, err)

	b, err := SerializeMessage(msg)
	require.NoError(t, err)

	decoded := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, "state", decoded["type"])

	payload := decoded["payload"].(map[string]interface{})
	assert.Nil(t, payload["currentTurn"])
	assert.Nil(t, payload["lastMove"])
	assert.Equal(t, "p1", payload["adminId"])
	properties := payload["properties"].([]interface{})
	assert.Nil(t, properties[0].(map[string]interface{})["ownerId"])
	assert.Equal(t, "p1", properties[1].(map[string]interface{})["ownerId"])
	player := payload["players"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, float64(3), player["pos"])
	assert.Equal(t, float64(1440), player["money"])
}

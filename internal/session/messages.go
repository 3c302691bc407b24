package session

import "encoding/json"

// Client protocol error and warning codes.
const (
	codeNoAPIKey           = "no_api_key"
	codeConnectFailed      = "openai_connection_failed"
	codeConnectionLost     = "openai_connection_lost"
	codeNotConnected       = "openai_not_connected"
	codeUnknownMessageType = "unknown_message_type"
	codeBufferTooSmall     = "audio_buffer_too_small"
)

// clientMessage is the envelope for control messages received from the
// browser client.
type clientMessage struct {
	Type    string `json:"type"`
	Audio   string `json:"audio,omitempty"`
	EventID string `json:"event_id,omitempty"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorMessage struct {
	Type  string    `json:"type"`
	Error errorBody `json:"error"`
}

type warningMessage struct {
	Type    string    `json:"type"`
	Warning errorBody `json:"warning"`
}

type ackMessage struct {
	Type    string `json:"type"`
	EventID string `json:"event_id,omitempty"`
}

type statusMessage struct {
	Type    string `json:"type"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func errorJSON(code, message string) []byte {
	b, _ := json.Marshal(errorMessage{Type: "error", Error: errorBody{Code: code, Message: message}})
	return b
}

func warningJSON(code, message string) []byte {
	b, _ := json.Marshal(warningMessage{Type: "warning", Warning: errorBody{Code: code, Message: message}})
	return b
}

func ackJSON(msgType, eventID string) []byte {
	b, _ := json.Marshal(ackMessage{Type: msgType + ".ack", EventID: eventID})
	return b
}

package ws

import "encoding/json"

// Envelope es el marco de todos los eventos del canal en tiempo real:
// {"event": "...", "data": ...} sobre un frame de texto.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

const (
	EventJoinChat         = "joinChat"
	EventSendMessage      = "sendMessage"
	EventPreviousMessages = "previousMessages"
	EventMessage          = "message"
)

// JoinChatData declara "soy remetente, hablo con destinatario".
type JoinChatData struct {
	Remetente    string `json:"remetente"`
	Destinatario string `json:"destinatario"`
}

type SendMessageData struct {
	Remetente    string `json:"remetente"`
	Destinatario string `json:"destinatario"`
	Mensagem     string `json:"mensagem"`
}

// MessageData es el payload entregado en vivo al canal del destinatario.
type MessageData struct {
	Remetente string `json:"remetente"`
	Mensagem  string `json:"mensagem"`
}

func marshalEvent(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}

package ws

import (
	"context"

	"go.uber.org/zap"
)

type commandKind int

const (
	cmdJoin commandKind = iota
	cmdLeave
	cmdEmit
	cmdUnregister
)

type command struct {
	kind     commandKind
	client   *Client
	identity string
	payload  []byte
}

// Hub enruta eventos hacia canales de conversación nombrados por identidad
// de usuario. Las tablas de membresía se mutan únicamente dentro de Run,
// alimentado por un único canal de comandos FIFO; no hay locks.
type Hub struct {
	logger   *zap.Logger
	commands chan command

	channels   map[string]map[*Client]struct{}
	identities map[*Client]string

	done chan struct{}
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:     logger,
		commands:   make(chan command),
		channels:   make(map[string]map[*Client]struct{}),
		identities: make(map[*Client]string),
		done:       make(chan struct{}),
	}
}

// Run procesa comandos hasta que el contexto se cancela; al salir cierra
// todas las conexiones vivas. Debe correr en su propia goroutine.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for client := range h.identities {
				client.Close()
			}
			return
		case cmd := <-h.commands:
			h.apply(cmd)
		}
	}
}

func (h *Hub) apply(cmd command) {
	switch cmd.kind {
	case cmdJoin:
		h.join(cmd.client, cmd.identity)
	case cmdLeave:
		h.leave(cmd.client, cmd.identity)
	case cmdEmit:
		h.emit(cmd.identity, cmd.payload)
	case cmdUnregister:
		if identity, ok := h.identities[cmd.client]; ok {
			h.leave(cmd.client, identity)
		}
	}
}

// join mueve la conexión a su nuevo canal; una conexión pertenece a lo sumo
// a un canal, así que unirse implica salir del anterior.
func (h *Hub) join(client *Client, identity string) {
	prev, joined := h.identities[client]
	if joined && prev == identity {
		return
	}
	if joined {
		h.leave(client, prev)
	}

	members, ok := h.channels[identity]
	if !ok {
		members = make(map[*Client]struct{})
		h.channels[identity] = members
	}
	members[client] = struct{}{}
	h.identities[client] = identity
	h.logger.Info("channel join",
		zap.String("client_id", client.id),
		zap.String("channel", identity),
	)
}

func (h *Hub) leave(client *Client, identity string) {
	members, ok := h.channels[identity]
	if !ok {
		return
	}
	if _, member := members[client]; !member {
		return
	}
	delete(members, client)
	if len(members) == 0 {
		delete(h.channels, identity)
	}
	if h.identities[client] == identity {
		delete(h.identities, client)
	}
	h.logger.Info("channel leave",
		zap.String("client_id", client.id),
		zap.String("channel", identity),
	)
}

// emit copia el payload al buffer de cada miembro del canal. Un canal sin
// miembros descarta el evento en silencio: entrega a lo sumo una vez, sin
// buffering para destinatarios ausentes.
func (h *Hub) emit(identity string, payload []byte) {
	for client := range h.channels[identity] {
		if !client.enqueue(payload) {
			h.logger.Warn("emit dropped, send buffer full or client closed",
				zap.String("client_id", client.id),
				zap.String("channel", identity),
			)
		}
	}
}

func (h *Hub) dispatch(cmd command) {
	select {
	case h.commands <- cmd:
	case <-h.done:
	}
}

// Join suscribe la conexión al canal identity, dejando el canal previo.
func (h *Hub) Join(client *Client, identity string) {
	h.dispatch(command{kind: cmdJoin, client: client, identity: identity})
}

// Leave saca la conexión del canal identity; no-op si no es miembro.
func (h *Hub) Leave(client *Client, identity string) {
	h.dispatch(command{kind: cmdLeave, client: client, identity: identity})
}

// Emit entrega el payload a todas las conexiones unidas al canal identity.
func (h *Hub) Emit(identity string, payload []byte) {
	h.dispatch(command{kind: cmdEmit, identity: identity, payload: payload})
}

// Unregister saca la conexión del canal que ocupe, si alguno.
func (h *Hub) Unregister(client *Client) {
	h.dispatch(command{kind: cmdUnregister, client: client})
}

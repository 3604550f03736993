package domain

import "time"

// Mensagem es un mensaje persistido entre dos usuarios. El timestamp lo
// asigna la base de datos al insertar.
type Mensagem struct {
	ID           int64     `json:"id"`
	Remetente    string    `json:"remetente"`
	Destinatario string    `json:"destinatario"`
	Mensagem     string    `json:"mensagem"`
	Timestamp    time.Time `json:"timestamp"`
}

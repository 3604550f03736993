package domain

// Usuario representa una cuenta registrada. El nombre es la identidad
// primaria y también la clave del canal de conversación.
type Usuario struct {
	Nome  string `json:"nome"`
	Senha string `json:"senha"`
}

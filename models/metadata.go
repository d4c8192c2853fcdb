package models

import "time"

// TokenMetadata guarda a referência base mutável de um token e o mapa aberto
// de atributos chave→valor. Só o criador ou o dono atual podem mutar; o
// registro vive enquanto o token existir.
type TokenMetadata struct {
	TokenID       int64             `json:"token_id" db:"token_id"`
	BaseReference string            `json:"base_reference" db:"base_reference"`
	LastUpdate    time.Time         `json:"last_update" db:"last_update"`
	Attributes    map[string]string `json:"attributes"`
}

package user

import "time"

type User struct {
	ID             int64     `json:"id" db:"id"`
	Email          string    `json:"email" db:"email"`
	PasswordHash   string    `json:"-" db:"senha_hash"`
	Name           string    `json:"nome" db:"nome"`
	Phone          *string   `json:"telefone,omitempty" db:"telefone"`
	Address        *string   `json:"endereco,omitempty" db:"endereco"`
	AvatarFilename *string   `json:"avatar_filename,omitempty" db:"avatar_filename"`
	IsAdmin        bool      `json:"is_admin" db:"is_admin"`
	CreatedAt      time.Time `json:"criado_em" db:"criado_em"`
	UpdatedAt      time.Time `json:"atualizado_em" db:"atualizado_em"`
}

// ProfileUpdate carries the optional profile fields; nil means "leave as is".
type ProfileUpdate struct {
	Name    *string
	Phone   *string
	Address *string
}

// Package sql embute as migrações goose do banco de membros.
package sql

import "embed"

// Migrations contém os arquivos .sql deste diretório; o diretório base para o goose é ".".
//
//go:embed *.sql
var Migrations embed.FS

package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

// PoolConfig define os limites do pool de conexões.
type PoolConfig struct {
	MaxOpenConns int
	MaxIdleConns int
}

// NewPostgresDB inicializa e configura o pool de conexões com o PostgreSQL.
// Retorna a conexão *sql.DB pronta para uso.
func NewPostgresDB(dataSourceName string, pool PoolConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("falha ao abrir a conexão com o DB: %w", err)
	}

	// Garante que as credenciais e o servidor estão corretos
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("falha ao realizar o ping inicial no DB: %w", err)
	}

	if pool.MaxOpenConns <= 0 {
		pool.MaxOpenConns = 25
	}
	if pool.MaxIdleConns <= 0 {
		pool.MaxIdleConns = 10
	}
	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	return db, nil
}

// SQLSTATEs do PostgreSQL usados pelos repositórios.
const (
	uniqueViolation = "23505"
	checkViolation  = "23514"
)

// IsUniqueViolation informa se o erro é uma violação de unicidade. Quando constraint
// não é vazio, exige também o nome da constraint. Sem *pq.Error na cadeia, recorre ao
// texto da mensagem ("duplicate key").
func IsUniqueViolation(err error, constraint string) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code != uniqueViolation {
			return false
		}
		return constraint == "" || pqErr.Constraint == constraint
	}
	msg := strings.ToLower(err.Error())
	if constraint != "" && strings.Contains(msg, strings.ToLower(constraint)) {
		return true
	}
	return strings.Contains(msg, "duplicate key")
}

// IsCheckViolation informa se o erro é a violação da CHECK constraint informada.
func IsCheckViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == checkViolation && (constraint == "" || pqErr.Constraint == constraint)
}

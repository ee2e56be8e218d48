// Package cli implementa os subcomandos do membrosctl.
package cli

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"gomembros/internal/pkg/database"
	"gomembros/internal/pkg/logger"
)

var (
	okMark   = color.New(color.FgGreen).Sprint("OK")
	warnMark = color.New(color.FgYellow).Sprint("!")
	failMark = color.New(color.FgRed).Sprint("ERRO")
)

// openDB abre o PostgreSQL a partir de --database-url ou $DATABASE_URL.
func openDB(cmd *cobra.Command) (*sql.DB, error) {
	dsn, _ := cmd.Flags().GetString("database-url")
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	if dsn == "" {
		return nil, fmt.Errorf("informe --database-url ou defina DATABASE_URL")
	}
	return database.NewPostgresDB(dsn, database.PoolConfig{MaxOpenConns: 2, MaxIdleConns: 1})
}

func cliLogger(cmd *cobra.Command) logger.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	return logger.NewLogger(level)
}

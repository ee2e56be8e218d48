package cli

import (
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	migrations "gomembros/sql"
)

// MigrateCmd executa as migrações goose embutidas no binário.
func MigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate [up|down|status|redo|reset|version|up-to VERSION|down-to VERSION]",
		Short: "Aplica as migrações do banco (goose)",
		Long: `Executa um comando do goose sobre as migrações SQL embutidas.

Sem argumentos, aplica todas as pendentes (up).`,
		RunE: runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, args []string) error {
	command := "up"
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}

	db, err := openDB(cmd)
	if err != nil {
		return fmt.Errorf("goose: falha ao conectar ao DB: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	if err := goose.RunContext(cmd.Context(), command, db, ".", args...); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s goose %s\n", failMark, command)
		return fmt.Errorf("goose %s: %w", command, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s goose %s\n", okMark, command)
	return nil
}

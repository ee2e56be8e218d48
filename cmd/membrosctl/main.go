package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"gomembros/internal/cli"
)

func main() {
	// .env é opcional; sem ele valem as variáveis do ambiente.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "membrosctl",
		Short: "Ferramentas de operação do cadastro de membros",
		Long: `membrosctl reúne as tarefas de operação do cadastro de membros:
migrações do banco, cálculo e auditoria de matrículas e emissão de tokens de desenvolvimento.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("database-url", "", "DSN do PostgreSQL (padrão: $DATABASE_URL)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Nível de log (debug, info, warn, error)")

	rootCmd.AddCommand(cli.MigrateCmd())
	rootCmd.AddCommand(cli.RegistrationCmd())
	rootCmd.AddCommand(cli.TokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

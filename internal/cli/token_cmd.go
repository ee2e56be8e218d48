package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"gomembros/internal/domain"
	"gomembros/internal/pkg/token"
)

// TokenCmd emite tokens de desenvolvimento. Em produção os tokens vêm do provedor de autenticação.
func TokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Tokens JWT de desenvolvimento",
	}

	issue := &cobra.Command{
		Use:   "emitir",
		Short: "Emite um JWT assinado com JWT_SECRET_KEY",
		Args:  cobra.NoArgs,
		RunE:  runIssueToken,
	}
	issue.Flags().String("usuario", "", "ID do usuário (claim sub)")
	issue.Flags().String("papel", string(domain.RoleSecretary), "Papel do usuário (admin, secretaria, authenticated)")
	issue.Flags().String("segredo", "", "Segredo HMAC (padrão: $JWT_SECRET_KEY)")
	issue.Flags().Duration("validade", time.Hour, "Validade do token")
	_ = issue.MarkFlagRequired("usuario")

	cmd.AddCommand(issue)
	return cmd
}

func runIssueToken(cmd *cobra.Command, _ []string) error {
	userID, _ := cmd.Flags().GetString("usuario")
	role, _ := cmd.Flags().GetString("papel")
	secret, _ := cmd.Flags().GetString("segredo")
	expiry, _ := cmd.Flags().GetDuration("validade")

	if secret == "" {
		secret = os.Getenv("JWT_SECRET_KEY")
	}
	if secret == "" {
		return fmt.Errorf("informe --segredo ou defina JWT_SECRET_KEY")
	}
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("--usuario não pode ser vazio")
	}

	svc := token.NewService(secret, expiry, os.Getenv("JWT_ISSUER"))
	signed, err := svc.GenerateToken(userID, role)
	if err != nil {
		return fmt.Errorf("falha ao assinar token: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), signed)
	return nil
}

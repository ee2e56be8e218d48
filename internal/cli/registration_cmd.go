package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"gomembros/internal/domain"
	"gomembros/internal/pkg/cache"
	"gomembros/internal/registration"
	"gomembros/internal/repository/memberrepo"
)

// RegistrationCmd agrupa as operações de matrícula.
func RegistrationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "matricula",
		Aliases: []string{"registration"},
		Short:   "Cálculo, normalização e auditoria de matrículas",
	}
	cmd.AddCommand(nextRegistrationCmd())
	cmd.AddCommand(normalizeRegistrationCmd())
	cmd.AddCommand(auditRegistrationCmd())
	return cmd
}

func nextRegistrationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "proxima",
		Short: "Mostra a próxima base de matrícula livre no rol",
		Args:  cobra.NoArgs,
		RunE:  runNextRegistration,
	}
}

func normalizeRegistrationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "normalizar",
		Short: "Aplica a grafia do cargo e o sufixo da matrícula sem gravar nada",
		Long: `Recalcula cargo e matrícula a partir do sexo e do cargo informados.

Exemplo:
  membrosctl matricula normalizar --sexo F --cargo "1° Tesoureiro" --matricula 12`,
		Args: cobra.NoArgs,
		RunE: runNormalizeRegistration,
	}
	cmd.Flags().String("sexo", "", "Sexo do membro (Masculino, Feminino, M ou F)")
	cmd.Flags().String("cargo", "", "Cargo eclesiástico ou administrativo")
	cmd.Flags().String("matricula", "", "Matrícula atual (BASE ou BASE-SUFIXO)")
	_ = cmd.MarkFlagRequired("sexo")
	return cmd
}

func auditRegistrationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auditar",
		Short: "Procura matrículas malformadas ou com base repetida",
		Args:  cobra.NoArgs,
		RunE:  runAuditRegistration,
	}
}

// Sem Redis: a CLI usa cache.NewNop e toda consulta vai ao banco.
func openRepository(cmd *cobra.Command) (*memberrepo.MemberRepository, func(), error) {
	db, err := openDB(cmd)
	if err != nil {
		return nil, nil, err
	}
	repo := memberrepo.NewMemberRepository(db, cache.NewNop(), 10*time.Second, 0, cliLogger(cmd))
	return repo, func() { db.Close() }, nil
}

func runNextRegistration(cmd *cobra.Command, _ []string) error {
	repo, closeDB, err := openRepository(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	roster, err := repo.ListRegistrationNumbers(cmd.Context(), "")
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", registration.AllocateNextBase(roster))
	return nil
}

func runNormalizeRegistration(cmd *cobra.Command, _ []string) error {
	sexFlag, _ := cmd.Flags().GetString("sexo")
	role, _ := cmd.Flags().GetString("cargo")
	reg, _ := cmd.Flags().GetString("matricula")

	sex, err := parseSex(sexFlag)
	if err != nil {
		return err
	}

	in := registration.Fields{Sex: sex, Role: strings.TrimSpace(role), RegistrationNumber: strings.TrimSpace(reg)}
	out, changed := registration.Normalize(in)

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "cargo:     %s\n", out.Role)
	fmt.Fprintf(w, "matrícula: %s\n", out.RegistrationNumber)
	if changed {
		fmt.Fprintf(w, "%s alterado (antes: %q / %q)\n", warnMark, in.Role, in.RegistrationNumber)
	} else {
		fmt.Fprintf(w, "%s já normalizado\n", okMark)
	}
	if out.RegistrationNumber != "" && !registration.WellFormed(out.RegistrationNumber, out.Role) {
		fmt.Fprintf(w, "%s a base da matrícula não é numérica\n", failMark)
	}
	return nil
}

func runAuditRegistration(cmd *cobra.Command, _ []string) error {
	repo, closeDB, err := openRepository(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	members, err := repo.FindAll(cmd.Context(), domain.MemberFilter{})
	if err != nil {
		return err
	}

	entries := make([]registration.Entry, 0, len(members))
	for _, m := range members {
		entries = append(entries, registration.Entry{ID: m.ID, RegistrationNumber: m.RegistrationNumber, Role: m.Role})
	}

	w := cmd.OutOrStdout()
	issues := registration.Audit(entries)
	if len(issues) == 0 {
		fmt.Fprintf(w, "%s %d matrículas conferidas\n", okMark, len(entries))
		return nil
	}

	reason := color.New(color.FgYellow)
	for _, is := range issues {
		fmt.Fprintf(w, "%s %-12s %s  %s\n", failMark, is.RegistrationNumber, is.ID, reason.Sprint(is.Reason))
	}
	return fmt.Errorf("%d problema(s) no rol de %d matrículas", len(issues), len(entries))
}

// parseSex aceita o nome completo ou a inicial.
func parseSex(v string) (domain.Sex, error) {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "M", "MASCULINO":
		return domain.SexMale, nil
	case "F", "FEMININO":
		return domain.SexFemale, nil
	}
	return "", fmt.Errorf("sexo inválido: %q (use Masculino ou Feminino)", v)
}

package registration

// Funções sobre o rol (lista de matrículas já atribuídas).

// WellFormed verifica a forma de uma matrícula salva: base só de dígitos ASCII e,
// se houver sufixo, ele precisa ser um dos códigos conhecidos e corresponder ao cargo.
func WellFormed(reg string, role string) bool {
	base := BaseOf(reg)
	if base == "" {
		return false
	}
	for i := 0; i < len(base); i++ {
		if base[i] < '0' || base[i] > '9' {
			return false
		}
	}

	suffix := SuffixOf(reg)
	if suffix == SuffixNone {
		return ResolveSuffix(role) == SuffixNone
	}
	return suffix.Valid() && suffix == ResolveSuffix(role)
}

// Conflicts informa se alguma matrícula do rol já usa a mesma base (pelo valor inteiro,
// ignorando sufixos). "007" e "7-PRE" conflitam.
func Conflicts(reg string, roster []string) bool {
	n, ok := ParseBase(reg)
	if !ok {
		return false
	}
	for _, other := range roster {
		if m, ok := ParseBase(other); ok && m == n {
			return true
		}
	}
	return false
}

// Less ordena matrículas numericamente pela base ("2" antes de "10"); matrículas sem
// base numérica vão para o fim. Empates caem na comparação do texto completo.
func Less(a, b string) bool {
	na, okA := ParseBase(a)
	nb, okB := ParseBase(b)
	switch {
	case okA && okB && na != nb:
		return na < nb
	case okA != okB:
		return okA
	}
	return a < b
}

// Entry é uma linha do rol para auditoria.
type Entry struct {
	ID                 string
	RegistrationNumber string
	Role               string
}

// Issue descreve um problema encontrado no rol.
type Issue struct {
	ID                 string
	RegistrationNumber string
	Reason             string
}

const (
	ReasonMalformed     = "matrícula malformada ou sufixo incompatível com o cargo"
	ReasonDuplicateBase = "base repetida no rol"
)

// Audit percorre o rol na ordem recebida. A primeira ocorrência de uma base é aceita;
// as seguintes são reportadas como repetidas.
func Audit(entries []Entry) []Issue {
	var issues []Issue
	seen := make(map[uint64]struct{}, len(entries))
	for _, e := range entries {
		if !WellFormed(e.RegistrationNumber, e.Role) {
			issues = append(issues, Issue{ID: e.ID, RegistrationNumber: e.RegistrationNumber, Reason: ReasonMalformed})
		}
		n, ok := ParseBase(e.RegistrationNumber)
		if !ok {
			continue
		}
		if _, dup := seen[n]; dup {
			issues = append(issues, Issue{ID: e.ID, RegistrationNumber: e.RegistrationNumber, Reason: ReasonDuplicateBase})
			continue
		}
		seen[n] = struct{}{}
	}
	return issues
}

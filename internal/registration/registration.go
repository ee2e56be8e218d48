// Package registration deriva a matrícula e a grafia do cargo de um membro.
//
// A matrícula tem a forma BASE ou BASE-SUFIXO. BASE é uma sequência de dígitos única no rol
// (comparada pelo valor inteiro); SUFIXO marca os cargos administrativos. Todas as funções
// são puras e totais: entradas malformadas degradam para vazio/zero, nunca para erro.
package registration

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"gomembros/internal/domain"
)

// Suffix é o código administrativo anexado à base da matrícula.
type Suffix string

const (
	SuffixNone          Suffix = ""
	SuffixPresident     Suffix = "PRE"
	SuffixVicePresident Suffix = "VIC"
	SuffixTreasurer     Suffix = "TES"
	SuffixSecretary     Suffix = "SEC"
)

// Valid informa se o sufixo pertence ao conjunto fechado {PRE, VIC, TES, SEC}.
func (s Suffix) Valid() bool {
	switch s {
	case SuffixPresident, SuffixVicePresident, SuffixTreasurer, SuffixSecretary:
		return true
	}
	return false
}

// Cargos trocados pela string inteira.
var feminineWholeRoles = [...][2]string{
	{"Diácono", "Diaconisa"},
	{"Cooperador", "Cooperadora"},
	{"Missionário", "Missionária"},
}

// Raízes trocadas por substring, preservando o ordinal ("1° Tesoureiro").
var feminineRoots = [...][2]string{
	{"Tesoureiro", "Tesoureira"},
	{"Secretário", "Secretária"},
}

// NormalizeRoleForSex reescreve o cargo na forma gramatical do sexo informado.
// Cargos sem variante de gênero, e sexos desconhecidos, passam inalterados.
func NormalizeRoleForSex(role string, sex domain.Sex) string {
	from, to := 0, 1
	switch sex {
	case domain.SexFemale:
	case domain.SexMale:
		from, to = 1, 0
	default:
		return role
	}

	for _, pair := range feminineWholeRoles {
		if role == pair[from] {
			role = pair[to]
		}
	}
	for _, pair := range feminineRoots {
		if strings.Contains(role, pair[from]) {
			role = strings.Replace(role, pair[from], pair[to], 1)
		}
	}
	return role
}

// ResolveSuffix classifica o cargo (já normalizado) pelo sufixo administrativo.
// A ordem importa: "Vice-Presidente" contém "Presidente" e precisa cair em VIC.
func ResolveSuffix(role string) Suffix {
	switch {
	case strings.Contains(role, "Presidente") && !strings.Contains(role, "Vice"):
		return SuffixPresident
	case strings.Contains(role, "Vice-Presidente"):
		return SuffixVicePresident
	case strings.Contains(role, "Tesoureir"):
		return SuffixTreasurer
	case strings.Contains(role, "Secretári"):
		return SuffixSecretary
	}
	return SuffixNone
}

// BaseOf extrai a base da matrícula: o trecho antes do primeiro "-", sem espaços.
func BaseOf(reg string) string {
	base, _, _ := strings.Cut(reg, "-")
	return strings.TrimSpace(base)
}

// SuffixOf devolve o trecho após o primeiro "-", sem espaços (vazio se não houver).
func SuffixOf(reg string) Suffix {
	_, suffix, found := strings.Cut(reg, "-")
	if !found {
		return SuffixNone
	}
	return Suffix(strings.TrimSpace(suffix))
}

// Compose monta a matrícula a partir da base de current e do sufixo.
// Reaplicar com o mesmo sufixo devolve o mesmo valor.
func Compose(current string, suffix Suffix) string {
	base := BaseOf(current)
	if suffix == SuffixNone {
		return base
	}
	return base + "-" + string(suffix)
}

// ParseBase interpreta a base da matrícula como inteiro não negativo.
// Como parseInt, lê apenas os dígitos iniciais ("12abc" -> 12). Sem dígitos ou
// estouro de uint64, ok=false.
func ParseBase(reg string) (uint64, bool) {
	base := BaseOf(reg)
	end := 0
	for end < len(base) && base[end] >= '0' && base[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.ParseUint(base[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// AllocateNextBase calcula a próxima base livre para um novo cadastro.
//
// O máximo é numérico (evita o "10" ordenado antes do "2" como texto). O candidato
// ainda é conferido contra as matrículas existentes, literalmente, antes de ser devolvido.
func AllocateNextBase(existing []string) string {
	used := make(map[string]struct{}, len(existing))
	for _, raw := range existing {
		if v := strings.TrimSpace(raw); v != "" {
			used[v] = struct{}{}
		}
	}

	var max uint64
	for v := range used {
		if n, ok := ParseBase(v); ok && n > max {
			max = n
		}
	}

	if max == math.MaxUint64 {
		return nextBigBase(max, used)
	}

	next := max + 1
	for {
		if _, taken := used[strconv.FormatUint(next, 10)]; !taken {
			break
		}
		next++
	}
	return strconv.FormatUint(next, 10)
}

// nextBigBase continua a contagem além de uint64, com a mesma conferência literal.
func nextBigBase(max uint64, used map[string]struct{}) string {
	one := big.NewInt(1)
	next := new(big.Int).SetUint64(max)
	for {
		next.Add(next, one)
		if _, taken := used[next.String()]; !taken {
			return next.String()
		}
	}
}

// Fields é o recorte da ficha que a normalização lê e escreve.
type Fields struct {
	Sex                domain.Sex
	Role               string
	RegistrationNumber string
}

// Normalize recalcula cargo e matrícula a partir do sexo e do cargo atuais.
// changed=false quando os valores já estavam normalizados; o chamador não deve
// reescrever a ficha nesse caso.
func Normalize(f Fields) (Fields, bool) {
	role := NormalizeRoleForSex(f.Role, f.Sex)
	reg := Compose(f.RegistrationNumber, ResolveSuffix(role))

	if role == f.Role && reg == f.RegistrationNumber {
		return f, false
	}
	return Fields{Sex: f.Sex, Role: role, RegistrationNumber: reg}, true
}

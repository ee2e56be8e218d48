package domain

// Catálogos estáticos da secretaria. São expostos por funções que devolvem cópias,
// para que nenhum chamador consiga alterar as tabelas.

var ecclesiasticalRoles = [...]string{
	"Membro", "Músico", "Cooperador", "Diácono", "Presbítero", "Evangelista", "Pastor", "Missionário",
}

var administrativeRoles = [...]string{
	"Presidente de Honra",
	"Presidente",
	"Vice-Presidente",
	"1° Tesoureiro",
	"2° Tesoureiro",
	"1° Secretário",
	"2° Secretário",
}

var statusOptions = [...]MemberStatus{
	StatusActive, StatusSuspended, StatusDismissed, StatusInactive, StatusDeceased,
}

var maritalOptions = [...]MaritalStatus{
	MaritalSingle, MaritalMarried, MaritalWidowed, MaritalOther,
}

var ufList = [...]string{
	"AC", "AL", "AP", "AM", "BA", "CE", "DF", "ES", "GO", "MA", "MT", "MS", "MG", "PA",
	"PB", "PR", "PE", "PI", "RJ", "RN", "RS", "RO", "RR", "SC", "SP", "SE", "TO",
}

// DefaultRole é o cargo de um novo cadastro.
const DefaultRole = "Membro"

// DefaultCongregation é a congregação de um novo cadastro.
const DefaultCongregation = "SEDE"

// ChurchInfo reúne os dados institucionais impressos em fichas e relatórios.
type ChurchInfo struct {
	Name              string `json:"name"`
	HonorPresident    string `json:"honor_president"`
	NationalPresident string `json:"national_president"`
	VicePresident     string `json:"vice_president"`
	Address           string `json:"address"`
	CNPJ              string `json:"cnpj"`
}

// Congregation descreve uma congregação da igreja.
type Congregation struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Pastor  string `json:"pastor"`
}

var congregations = [...]Congregation{
	{
		Code:    "SEDE",
		Name:    "IGREJA EVANGÉLICA PENTECOSTAL JARDIM DE ORAÇÃO INDEPENDENTE SÉDE",
		Address: "Rua da Felicidade, 226 - Bairro São Sebastião II - CEP: 78.730-280 - Rondonópolis/MT",
		Pastor:  "Pr. Odair Barbosa Fernandes",
	},
	{
		Code:    "PEDRA 90",
		Name:    "IGREJA EV. PENTECOSTAL JARDIM DE ORAÇÃO INDEPENDENTE PEDRA 90",
		Address: "Rua A6, 3076 - Bairro: Pedra 90 - Rondonópolis/MT",
		Pastor:  "Pb. Ednaldo Silva Souza",
	},
	{
		Code:    "PEDRA PRETA",
		Name:    "IGREJA EV. PENTECOSTAL JARDIM DE ORAÇÃO INDEPENDENTE PEDRA PRETA",
		Address: "Rua Arcanjo Felipe Meira, S/N° - Bairro: Jardim Morumbi - Pedra Preta/MT",
		Pastor:  "Pb. Neterson Oliveira de Souza",
	},
}

// Church retorna os dados institucionais da igreja.
func Church() ChurchInfo {
	return ChurchInfo{
		Name:              "IGREJA EVANGÉLICA PENTECOSTAL - JARDIM DE ORAÇÃO INDEPENDENTE - SÉDE",
		HonorPresident:    "Pr. José Hilário do Nascimento",
		NationalPresident: "Pr. Odair Barbosa Fernandes",
		VicePresident:     "Pr. Nelson Ramos de Oliveira",
		Address:           "Rua da Felicidade, 226 - Bairro São Sebastião II - CEP: 78.730-280 - Rondonópolis/MT",
		CNPJ:              "06.098.136/0001-62",
	}
}

func EcclesiasticalRoles() []string { return append([]string(nil), ecclesiasticalRoles[:]...) }

func AdministrativeRoles() []string { return append([]string(nil), administrativeRoles[:]...) }

func StatusOptions() []MemberStatus { return append([]MemberStatus(nil), statusOptions[:]...) }

func MaritalOptions() []MaritalStatus { return append([]MaritalStatus(nil), maritalOptions[:]...) }

func UFList() []string { return append([]string(nil), ufList[:]...) }

func Congregations() []Congregation { return append([]Congregation(nil), congregations[:]...) }

// CongregationByCode busca a congregação pelo código; ok=false se não existir.
func CongregationByCode(code string) (Congregation, bool) {
	for _, c := range congregations {
		if c.Code == code {
			return c, true
		}
	}
	return Congregation{}, false
}

// ValidSex informa se o valor é um dos sexos aceitos.
func ValidSex(s Sex) bool {
	return s == SexMale || s == SexFemale
}

// ValidStatus informa se o valor pertence à lista de situações.
func ValidStatus(s MemberStatus) bool {
	for _, opt := range statusOptions {
		if opt == s {
			return true
		}
	}
	return false
}

// ValidMaritalStatus informa se o valor pertence à lista de estados civis.
func ValidMaritalStatus(m MaritalStatus) bool {
	for _, opt := range maritalOptions {
		if opt == m {
			return true
		}
	}
	return false
}

// ValidUF informa se a sigla é uma UF brasileira.
func ValidUF(uf string) bool {
	for _, opt := range ufList {
		if opt == uf {
			return true
		}
	}
	return false
}

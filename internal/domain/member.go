package domain

import (
	"time"
)

// Sex é o sexo do membro; define a grafia (masculina/feminina) do cargo.
type Sex string

const (
	SexMale   Sex = "Masculino"
	SexFemale Sex = "Feminino"
)

// MemberStatus representa a situação do membro na igreja.
type MemberStatus string

const (
	StatusActive    MemberStatus = "ATIVO"
	StatusSuspended MemberStatus = "SUSPENSO"
	StatusDismissed MemberStatus = "DESLIGADO"
	StatusInactive  MemberStatus = "INATIVO"
	StatusDeceased  MemberStatus = "FALECIDO"
)

// MaritalStatus representa o estado civil do membro.
type MaritalStatus string

const (
	MaritalSingle  MaritalStatus = "Solteiro(a)"
	MaritalMarried MaritalStatus = "Casado(a)"
	MaritalWidowed MaritalStatus = "Viúvo(a)"
	MaritalOther   MaritalStatus = "Outro"
)

// Member representa a ficha de um membro da igreja (a Entidade).
// Datas são mantidas como strings ISO (YYYY-MM-DD); vazio significa "não informado".
type Member struct {
	ID     string `json:"id"`
	UserID string `json:"user_id,omitempty"` // Quem cadastrou/salvou por último (auth provider)

	RegistrationNumber string `json:"registration_number"` // Matrícula: BASE ou BASE-SUFIXO
	RegistrationDate   string `json:"registration_date"`

	FullName string `json:"full_name"`
	CPF      string `json:"cpf"`
	RG       string `json:"rg"`
	Sex      Sex    `json:"sex"`

	FatherName string `json:"father_name"`
	MotherName string `json:"mother_name"`

	Naturalness string `json:"naturalness"`
	BirthDate   string `json:"birth_date"`
	BaptismDate string `json:"baptism_date"`

	MaritalStatus   MaritalStatus `json:"marital_status"`
	ChurchEntryDate string        `json:"church_entry_date"`
	AnointingDate   string        `json:"anointing_date"`

	Role         string `json:"role"`
	Congregation string `json:"congregation"`

	Email string `json:"email"`
	Phone string `json:"phone"`
	Photo string `json:"photo,omitempty"` // URL ou data URL

	AddressStreet       string `json:"address_street"`
	AddressNumber       string `json:"address_number"`
	AddressNeighborhood string `json:"address_neighborhood"`
	AddressCity         string `json:"address_city"`
	AddressState        string `json:"address_state"`
	AddressCep          string `json:"address_cep"`
	AddressComplement   string `json:"address_complement"`

	Status MemberStatus `json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MemberNote é uma anotação administrativa (Pastor / Administrador) sobre um membro.
type MemberNote struct {
	ID        string    `json:"id"`
	MemberID  string    `json:"member_id"`
	Text      string    `json:"text"`
	CreatedBy string    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// MemberOrder define a ordenação da listagem de membros.
type MemberOrder string

const (
	OrderByRegistration MemberOrder = "registration"
	OrderByName         MemberOrder = "name"
)

// MemberFilter define os parâmetros de busca e paginação da listagem.
type MemberFilter struct {
	Term         string // Busca em nome, CPF e matrícula
	Congregation string
	Status       MemberStatus
	Role         string
	Order        MemberOrder
	Page         int
	Limit        int
}

// RegistrationFields é o recorte da ficha usado pela normalização de matrícula/cargo.
type RegistrationFields struct {
	Sex                Sex    `json:"sex"`
	Role               string `json:"role"`
	RegistrationNumber string `json:"registration_number"`
}

// NormalizedRegistration é a resposta da normalização: os campos corrigidos e se algo mudou.
type NormalizedRegistration struct {
	Role               string `json:"role"`
	RegistrationNumber string `json:"registration_number"`
	Suffix             string `json:"suffix,omitempty"`
	Changed            bool   `json:"changed"`
}

// MemberStats agrega a contagem do rol para relatórios.
type MemberStats struct {
	Congregation   string         `json:"congregation,omitempty"` // Vazio = relatório geral
	Total          int            `json:"total"`
	ByRole         map[string]int `json:"by_role"`
	ByStatus       map[string]int `json:"by_status"`
	ByCongregation map[string]int `json:"by_congregation"`
}

// MemberPage é uma página da listagem, já ordenada.
type MemberPage struct {
	Items []Member `json:"items"`
	Total int      `json:"total"` // Total de membros que atendem ao filtro (antes da paginação)
	Page  int      `json:"page"`
	Limit int      `json:"limit"`
}

package memberservice

import (
	"context"
	stderrors "errors"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"gomembros/internal/domain"
	apperror "gomembros/internal/errors"
	"gomembros/internal/pkg/logger"
	"gomembros/internal/registration"
)

// Limites da listagem paginada.
const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// MaxNoteLength é o tamanho máximo (em caracteres) de uma anotação.
const MaxNoteLength = 2000

// Valores iniciais de um cadastro novo, além dos catálogos.
const (
	draftNaturalness = "Rondonópolis - MT"
	draftCity        = "Rondonópolis"
	draftState       = "MT"
)

const isoDate = "2006-01-02"

// MemberRepository define o contrato que o Serviço de Membros espera da camada de Persistência.
type MemberRepository interface {
	Save(ctx context.Context, member domain.Member) (domain.Member, error)
	FindByID(ctx context.Context, id string) (domain.Member, error)
	FindAll(ctx context.Context, filter domain.MemberFilter) ([]domain.Member, error)
	Update(ctx context.Context, member domain.Member) (domain.Member, error)
	Delete(ctx context.Context, id string) error
	ListRegistrationNumbers(ctx context.Context, excludeID string) ([]string, error)
	SaveNote(ctx context.Context, note domain.MemberNote) (domain.MemberNote, error)
	FindNotes(ctx context.Context, memberID string) ([]domain.MemberNote, error)
}

// Recorder recebe os eventos contados em métricas.
type Recorder interface {
	IncrementMembersCreated()
	IncrementMembersUpdated()
	IncrementMembersDeleted()
	IncrementRegistrationsAllocated()
	IncrementRegistrationConflict(source string)
}

// Service concentra as regras do cadastro de membros.
type Service struct {
	repo    MemberRepository
	metrics Recorder
	logger  logger.Logger
	now     func() time.Time
}

// NewService cria e retorna uma nova instância do Serviço de Membros.
func NewService(repo MemberRepository, metrics Recorder, logger logger.Logger) *Service {
	return &Service{repo: repo, metrics: metrics, logger: logger, now: time.Now}
}

// NextRegistrationNumber calcula a próxima base de matrícula livre no rol.
func (s *Service) NextRegistrationNumber(ctx context.Context) (string, error) {
	roster, err := s.repo.ListRegistrationNumbers(ctx, "")
	if err != nil {
		s.logger.Error("Falha ao carregar o rol para calcular matrícula.", err)
		return "", err
	}

	next := registration.AllocateNextBase(roster)
	s.metrics.IncrementRegistrationsAllocated()
	s.logger.Debug("Matrícula calculada.", map[string]interface{}{"registration_number": next, "roster_size": len(roster)})
	return next, nil
}

// NewDraft devolve a ficha inicial de um novo membro, já com matrícula e data de cadastro.
func (s *Service) NewDraft(ctx context.Context) (domain.Member, error) {
	next, err := s.NextRegistrationNumber(ctx)
	if err != nil {
		return domain.Member{}, err
	}

	return domain.Member{
		RegistrationNumber: next,
		RegistrationDate:   s.now().Format(isoDate),
		Sex:                domain.SexMale,
		Naturalness:        draftNaturalness,
		Role:               domain.DefaultRole,
		Congregation:       domain.DefaultCongregation,
		AddressCity:        draftCity,
		AddressState:       draftState,
		Status:             domain.StatusActive,
	}, nil
}

// Normalize aplica a grafia do cargo e o sufixo da matrícula sem persistir nada.
func (s *Service) Normalize(fields domain.RegistrationFields) domain.NormalizedRegistration {
	out, changed := registration.Normalize(registration.Fields{
		Sex:                fields.Sex,
		Role:               fields.Role,
		RegistrationNumber: fields.RegistrationNumber,
	})
	return domain.NormalizedRegistration{
		Role:               out.Role,
		RegistrationNumber: out.RegistrationNumber,
		Suffix:             string(registration.ResolveSuffix(out.Role)),
		Changed:            changed,
	}
}

// CreateMember cadastra um membro. Sem matrícula informada, a próxima base livre é alocada.
func (s *Service) CreateMember(ctx context.Context, member domain.Member) (domain.Member, error) {
	s.logger.Debug("Iniciando cadastro de membro no serviço.", map[string]interface{}{"full_name": member.FullName})

	member.ID = ""

	roster, err := s.repo.ListRegistrationNumbers(ctx, "")
	if err != nil {
		s.logger.Error("Falha ao carregar o rol no cadastro.", err)
		return domain.Member{}, err
	}

	if strings.TrimSpace(member.RegistrationNumber) == "" {
		member.RegistrationNumber = registration.AllocateNextBase(roster)
		s.metrics.IncrementRegistrationsAllocated()
	}

	if err := s.prepare(&member); err != nil {
		s.logger.Warn("Falha na validação do cadastro de membro.", map[string]interface{}{"error": err.Error()})
		return domain.Member{}, err
	}

	if registration.Conflicts(member.RegistrationNumber, roster) {
		s.metrics.IncrementRegistrationConflict("roster")
		s.logger.Warn("Matrícula já usada no rol.", map[string]interface{}{"registration_number": member.RegistrationNumber})
		return domain.Member{}, apperror.NewDuplicateRegistrationError(nil)
	}

	created, err := s.repo.Save(ctx, member)
	if err != nil {
		s.countDatabaseConflict(err)
		s.logger.Error("Falha ao cadastrar membro no repositório.", err)
		return domain.Member{}, err
	}

	s.metrics.IncrementMembersCreated()
	s.logger.Info("Membro cadastrado com sucesso.", map[string]interface{}{"id": created.ID, "registration_number": created.RegistrationNumber})
	return created, nil
}

// GetMemberByID busca um membro pelo ID após validações de formato.
func (s *Service) GetMemberByID(ctx context.Context, id string) (domain.Member, error) {
	if err := validateID(id); err != nil {
		s.logger.Warn("ID de membro inválido fornecido.", map[string]interface{}{"id": id})
		return domain.Member{}, err
	}

	member, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Member{}, err // Erros do repositório já são NotFoundError ou DBError
	}
	return member, nil
}

// ListMembers filtra, ordena e pagina o rol.
func (s *Service) ListMembers(ctx context.Context, filter domain.MemberFilter) (domain.MemberPage, error) {
	filter, err := normalizeFilter(filter)
	if err != nil {
		s.logger.Warn("Filtro de listagem inválido.", map[string]interface{}{"error": err.Error()})
		return domain.MemberPage{}, err
	}

	members, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Falha ao listar membros no repositório.", err)
		return domain.MemberPage{}, err
	}

	sortMembers(members, filter.Order)

	page := domain.MemberPage{Total: len(members), Page: filter.Page, Limit: filter.Limit}
	// Compara antes de multiplicar: páginas enormes estourariam o int.
	start := len(members)
	if filter.Page-1 <= len(members)/filter.Limit {
		start = min((filter.Page-1)*filter.Limit, len(members))
	}
	end := start + filter.Limit
	if end > len(members) {
		end = len(members)
	}
	page.Items = append([]domain.Member{}, members[start:end]...)

	s.logger.Debug("Listagem de membros concluída.", map[string]interface{}{"total": page.Total, "page": page.Page})
	return page, nil
}

// UpdateMember regrava a ficha de um membro. Matrícula vazia mantém a atual.
func (s *Service) UpdateMember(ctx context.Context, member domain.Member) (domain.Member, error) {
	s.logger.Debug("Iniciando atualização de membro no serviço.", map[string]interface{}{"id": member.ID})

	if err := validateID(member.ID); err != nil {
		s.logger.Warn("ID de membro inválido fornecido para atualização.", map[string]interface{}{"id": member.ID})
		return domain.Member{}, err
	}

	current, err := s.repo.FindByID(ctx, member.ID)
	if err != nil {
		return domain.Member{}, err
	}
	if strings.TrimSpace(member.RegistrationNumber) == "" {
		member.RegistrationNumber = current.RegistrationNumber
	}

	if err := s.prepare(&member); err != nil {
		s.logger.Warn("Falha na validação da atualização de membro.", map[string]interface{}{"id": member.ID, "error": err.Error()})
		return domain.Member{}, err
	}

	roster, err := s.repo.ListRegistrationNumbers(ctx, member.ID)
	if err != nil {
		s.logger.Error("Falha ao carregar o rol na atualização.", err)
		return domain.Member{}, err
	}
	if registration.Conflicts(member.RegistrationNumber, roster) {
		s.metrics.IncrementRegistrationConflict("roster")
		s.logger.Warn("Matrícula já usada por outro membro.", map[string]interface{}{"id": member.ID, "registration_number": member.RegistrationNumber})
		return domain.Member{}, apperror.NewDuplicateRegistrationError(nil)
	}

	updated, err := s.repo.Update(ctx, member)
	if err != nil {
		s.countDatabaseConflict(err)
		s.logger.Error("Falha ao atualizar membro no repositório.", err)
		return domain.Member{}, err
	}

	s.metrics.IncrementMembersUpdated()
	s.logger.Info("Membro atualizado com sucesso.", map[string]interface{}{"id": updated.ID, "registration_number": updated.RegistrationNumber})
	return updated, nil
}

// DeleteMember exclui definitivamente um membro e suas anotações.
func (s *Service) DeleteMember(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		s.logger.Warn("ID de membro inválido fornecido para exclusão.", map[string]interface{}{"id": id})
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.metrics.IncrementMembersDeleted()
	s.logger.Info("Membro excluído com sucesso.", map[string]interface{}{"id": id})
	return nil
}

// Stats agrega o rol por cargo, situação e congregação. congregation vazio = relatório geral.
func (s *Service) Stats(ctx context.Context, congregation string) (domain.MemberStats, error) {
	congregation = strings.TrimSpace(congregation)
	if congregation != "" {
		if _, ok := domain.CongregationByCode(congregation); !ok {
			return domain.MemberStats{}, apperror.NewValidationError("Congregação desconhecida: " + congregation)
		}
	}

	members, err := s.repo.FindAll(ctx, domain.MemberFilter{Congregation: congregation})
	if err != nil {
		s.logger.Error("Falha ao carregar membros para o relatório.", err)
		return domain.MemberStats{}, err
	}

	stats := domain.MemberStats{
		Congregation:   congregation,
		Total:          len(members),
		ByRole:         map[string]int{},
		ByStatus:       map[string]int{},
		ByCongregation: map[string]int{},
	}
	for _, m := range members {
		stats.ByRole[m.Role]++
		stats.ByStatus[string(m.Status)]++
		stats.ByCongregation[m.Congregation]++
	}
	return stats, nil
}

// AddNote registra uma anotação administrativa sobre o membro.
func (s *Service) AddNote(ctx context.Context, memberID, text, createdBy string) (domain.MemberNote, error) {
	if err := validateID(memberID); err != nil {
		return domain.MemberNote{}, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return domain.MemberNote{}, apperror.NewValidationError("A anotação não pode ser vazia.")
	}
	if utf8.RuneCountInString(text) > MaxNoteLength {
		return domain.MemberNote{}, apperror.NewValidationError("A anotação excede o tamanho máximo permitido.")
	}

	if _, err := s.repo.FindByID(ctx, memberID); err != nil {
		return domain.MemberNote{}, err
	}

	note, err := s.repo.SaveNote(ctx, domain.MemberNote{MemberID: memberID, Text: text, CreatedBy: createdBy})
	if err != nil {
		s.logger.Error("Falha ao salvar anotação no repositório.", err)
		return domain.MemberNote{}, err
	}
	return note, nil
}

// ListNotes lista as anotações de um membro existente.
func (s *Service) ListNotes(ctx context.Context, memberID string) ([]domain.MemberNote, error) {
	if err := validateID(memberID); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByID(ctx, memberID); err != nil {
		return nil, err
	}
	return s.repo.FindNotes(ctx, memberID)
}

// prepare aplica padrões, valida catálogos, normaliza datas e recalcula cargo/matrícula.
func (s *Service) prepare(m *domain.Member) error {
	m.FullName = strings.TrimSpace(m.FullName)
	if m.FullName == "" {
		return apperror.NewValidationError("O nome completo é obrigatório.")
	}

	if m.Sex == "" {
		m.Sex = domain.SexMale
	}
	if strings.TrimSpace(m.Role) == "" {
		m.Role = domain.DefaultRole
	}
	if m.Congregation == "" {
		m.Congregation = domain.DefaultCongregation
	}
	if m.Status == "" {
		m.Status = domain.StatusActive
	}
	m.RegistrationNumber = strings.TrimSpace(m.RegistrationNumber)
	m.AddressState = strings.ToUpper(strings.TrimSpace(m.AddressState))

	if !domain.ValidSex(m.Sex) {
		return apperror.NewValidationError("Sexo deve ser Masculino ou Feminino.")
	}
	if !domain.ValidStatus(m.Status) {
		return apperror.NewValidationError("Situação inválida: " + string(m.Status))
	}
	if m.MaritalStatus != "" && !domain.ValidMaritalStatus(m.MaritalStatus) {
		return apperror.NewValidationError("Estado civil inválido: " + string(m.MaritalStatus))
	}
	if m.AddressState != "" && !domain.ValidUF(m.AddressState) {
		return apperror.NewValidationError("UF inválida: " + m.AddressState)
	}
	if _, ok := domain.CongregationByCode(m.Congregation); !ok {
		return apperror.NewValidationError("Congregação desconhecida: " + m.Congregation)
	}

	m.RegistrationDate = NormalizeDate(m.RegistrationDate)
	m.BirthDate = NormalizeDate(m.BirthDate)
	m.BaptismDate = NormalizeDate(m.BaptismDate)
	m.ChurchEntryDate = NormalizeDate(m.ChurchEntryDate)
	m.AnointingDate = NormalizeDate(m.AnointingDate)

	fields, _ := registration.Normalize(registration.Fields{Sex: m.Sex, Role: m.Role, RegistrationNumber: m.RegistrationNumber})
	m.Role = fields.Role
	m.RegistrationNumber = fields.RegistrationNumber

	if !registration.WellFormed(m.RegistrationNumber, m.Role) {
		return apperror.NewValidationError("Matrícula inválida: use apenas dígitos na base (ex.: 42 ou 42-SEC).")
	}
	return nil
}

func (s *Service) countDatabaseConflict(err error) {
	var conflict *apperror.ConflictError
	if stderrors.As(err, &conflict) {
		s.metrics.IncrementRegistrationConflict("database")
	}
}

// NormalizeDate converte "YYYY-MM-DD" ou "DD/MM/YYYY" para ISO. Qualquer outro valor,
// inclusive datas inexistentes, vira "" (não informado).
func NormalizeDate(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	for _, layout := range []string{isoDate, "02/01/2006"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format(isoDate)
		}
	}
	return ""
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.NewValidationError("O ID do membro deve ser um UUID válido.")
	}
	return nil
}

func normalizeFilter(f domain.MemberFilter) (domain.MemberFilter, error) {
	f.Term = strings.TrimSpace(f.Term)
	f.Congregation = strings.TrimSpace(f.Congregation)
	f.Role = strings.TrimSpace(f.Role)

	switch f.Order {
	case "":
		f.Order = domain.OrderByRegistration
	case domain.OrderByRegistration, domain.OrderByName:
	default:
		return f, apperror.NewValidationError("Ordenação inválida: use registration ou name.")
	}
	if f.Status != "" && !domain.ValidStatus(f.Status) {
		return f, apperror.NewValidationError("Situação inválida: " + string(f.Status))
	}

	if f.Page < 1 {
		f.Page = 1
	}
	switch {
	case f.Limit <= 0:
		f.Limit = DefaultPageSize
	case f.Limit > MaxPageSize:
		f.Limit = MaxPageSize
	}
	return f, nil
}

func sortMembers(members []domain.Member, order domain.MemberOrder) {
	if order == domain.OrderByName {
		sort.SliceStable(members, func(i, j int) bool {
			return strings.ToLower(members[i].FullName) < strings.ToLower(members[j].FullName)
		})
		return
	}
	sort.SliceStable(members, func(i, j int) bool {
		return registration.Less(members[i].RegistrationNumber, members[j].RegistrationNumber)
	})
}

package memberrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"gomembros/internal/domain"
	"gomembros/internal/errors"
	"gomembros/internal/pkg/cache"
	"gomembros/internal/pkg/database"
	"gomembros/internal/pkg/logger"
)

// Nomes das constraints criadas pelas migrações em sql/.
const (
	registrationUniqueConstraint = "members_registration_number_uq"
	registrationFormatConstraint = "members_registration_number_format"
)

// Define a chave de cache para membros.
const memberCacheKey = "member:%s"

// MemberRepository persiste fichas de membros e anotações no PostgreSQL,
// com cache-aside no Redis para a leitura por ID.
type MemberRepository struct {
	DB        *sql.DB
	Cache     cache.Client
	DBTimeout time.Duration
	CacheTTL  time.Duration
	logger    logger.Logger
}

// NewMemberRepository cria e retorna uma nova instância do Repositório de Membros.
func NewMemberRepository(db *sql.DB, cacheClient cache.Client, dbTimeout, cacheTTL time.Duration, log logger.Logger) *MemberRepository {
	return &MemberRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		CacheTTL:  cacheTTL,
		logger:    log,
	}
}

// Colunas opcionais voltam como "" (e datas como YYYY-MM-DD) para o domínio.
const selectMemberColumns = `
        id, COALESCE(user_id, ''), registration_number, COALESCE(registration_date::text, ''),
        full_name, COALESCE(cpf, ''), COALESCE(rg, ''), COALESCE(sex, ''),
        COALESCE(father_name, ''), COALESCE(mother_name, ''),
        COALESCE(naturalness, ''), COALESCE(birth_date::text, ''), COALESCE(baptism_date::text, ''),
        COALESCE(marital_status, ''), COALESCE(church_entry_date::text, ''), COALESCE(anointing_date::text, ''),
        COALESCE(role, ''), COALESCE(congregation, ''),
        COALESCE(email, ''), COALESCE(phone, ''), COALESCE(photo_url, ''),
        COALESCE(address_street, ''), COALESCE(address_number, ''), COALESCE(address_neighborhood, ''),
        COALESCE(address_city, ''), COALESCE(address_state, ''), COALESCE(address_cep, ''),
        COALESCE(address_complement, ''),
        status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMember(row rowScanner) (domain.Member, error) {
	var m domain.Member
	err := row.Scan(
		&m.ID, &m.UserID, &m.RegistrationNumber, &m.RegistrationDate,
		&m.FullName, &m.CPF, &m.RG, &m.Sex,
		&m.FatherName, &m.MotherName,
		&m.Naturalness, &m.BirthDate, &m.BaptismDate,
		&m.MaritalStatus, &m.ChurchEntryDate, &m.AnointingDate,
		&m.Role, &m.Congregation,
		&m.Email, &m.Phone, &m.Photo,
		&m.AddressStreet, &m.AddressNumber, &m.AddressNeighborhood,
		&m.AddressCity, &m.AddressState, &m.AddressCep,
		&m.AddressComplement,
		&m.Status, &m.CreatedAt, &m.UpdatedAt,
	)
	return m, err
}

// writableArgs devolve, na ordem das colunas graváveis, os valores da ficha.
// Campos vazios viram NULL.
func writableArgs(m domain.Member) []interface{} {
	return []interface{}{
		nullIfEmpty(m.UserID),
		m.RegistrationNumber,
		nullIfEmpty(m.RegistrationDate),
		m.FullName,
		nullIfEmpty(m.CPF),
		nullIfEmpty(m.RG),
		nullIfEmpty(string(m.Sex)),
		nullIfEmpty(m.FatherName),
		nullIfEmpty(m.MotherName),
		nullIfEmpty(m.Naturalness),
		nullIfEmpty(m.BirthDate),
		nullIfEmpty(m.BaptismDate),
		nullIfEmpty(string(m.MaritalStatus)),
		nullIfEmpty(m.ChurchEntryDate),
		nullIfEmpty(m.AnointingDate),
		nullIfEmpty(m.Role),
		nullIfEmpty(m.Congregation),
		nullIfEmpty(m.Email),
		nullIfEmpty(m.Phone),
		nullIfEmpty(m.Photo),
		nullIfEmpty(m.AddressStreet),
		nullIfEmpty(m.AddressNumber),
		nullIfEmpty(m.AddressNeighborhood),
		nullIfEmpty(m.AddressCity),
		nullIfEmpty(m.AddressState),
		nullIfEmpty(m.AddressCep),
		nullIfEmpty(m.AddressComplement),
		string(m.Status),
	}
}

func nullIfEmpty(v string) interface{} {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}

// mapWriteError traduz as violações de constraint da matrícula para erros de domínio.
func mapWriteError(msg string, err error) error {
	switch {
	case database.IsUniqueViolation(err, registrationUniqueConstraint):
		return errors.NewDuplicateRegistrationError(err)
	case database.IsCheckViolation(err, registrationFormatConstraint):
		return errors.NewValidationError("Matrícula em formato inválido.")
	}
	return errors.NewDBError(msg, err)
}

// Save insere um novo membro no banco de dados.
func (r *MemberRepository) Save(ctx context.Context, member domain.Member) (domain.Member, error) {
	r.logger.Debug("Iniciando Save de membro no repositório.", map[string]interface{}{"registration_number": member.RegistrationNumber})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if member.ID == "" {
		member.ID = uuid.New().String()
	}
	now := time.Now().UTC()

	query := `
        INSERT INTO members (
            id, user_id, registration_number, registration_date,
            full_name, cpf, rg, sex,
            father_name, mother_name,
            naturalness, birth_date, baptism_date,
            marital_status, church_entry_date, anointing_date,
            role, congregation,
            email, phone, photo_url,
            address_street, address_number, address_neighborhood,
            address_city, address_state, address_cep,
            address_complement,
            status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
                $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31)
        RETURNING created_at, updated_at`

	args := append([]interface{}{member.ID}, writableArgs(member)...)
	args = append(args, now, now)

	err := r.DB.QueryRowContext(ctxTimeout, query, args...).Scan(&member.CreatedAt, &member.UpdatedAt)
	if err != nil {
		r.logger.Error("Falha ao inserir membro no DB.", err)
		return domain.Member{}, mapWriteError("Falha ao cadastrar membro", err)
	}

	r.logger.Info("Membro cadastrado com sucesso.", map[string]interface{}{"id": member.ID, "registration_number": member.RegistrationNumber})
	return member, nil
}

// FindByID busca um membro pelo ID, utilizando a estratégia Cache-Aside.
func (r *MemberRepository) FindByID(ctx context.Context, id string) (domain.Member, error) {
	key := fmt.Sprintf(memberCacheKey, id)

	cachedData, err := r.Cache.Get(ctx, key)
	if err == nil {
		var member domain.Member
		if json.Unmarshal([]byte(cachedData), &member) == nil {
			r.logger.Debug("Membro servido do cache.", map[string]interface{}{"id": id})
			return member, nil
		}
	} else if err != cache.ErrCacheMiss {
		r.logger.Warn("Falha ao ler membro do cache; consultando o DB.", map[string]interface{}{"id": id, "error": err.Error()})
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + selectMemberColumns + `
        FROM members
        WHERE id = $1`

	member, err := scanMember(r.DB.QueryRowContext(ctxTimeout, query, id))
	if err == sql.ErrNoRows {
		r.logger.Info("Membro não encontrado.", map[string]interface{}{"id": id})
		return domain.Member{}, errors.NewNotFoundError(fmt.Sprintf("Membro com ID %s não encontrado.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar membro no DB.", err)
		return domain.Member{}, errors.NewDBError("Falha ao buscar membro", err)
	}

	if memberJSON, marshalErr := json.Marshal(member); marshalErr == nil {
		if setErr := r.Cache.Set(ctx, key, memberJSON, r.CacheTTL); setErr != nil {
			r.logger.Warn("Falha ao gravar membro no cache.", map[string]interface{}{"id": id, "error": setErr.Error()})
		}
	}

	return member, nil
}

// buildFindAllQuery monta o SELECT filtrado. A ordenação final e a paginação
// ficam com o serviço (ordem numérica da matrícula).
func buildFindAllQuery(filter domain.MemberFilter) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	next := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if term := strings.TrimSpace(filter.Term); term != "" {
		p := next("%" + escapeLike(term) + "%")
		conds = append(conds, fmt.Sprintf("(full_name ILIKE %[1]s OR cpf ILIKE %[1]s OR registration_number ILIKE %[1]s)", p))
	}
	if filter.Congregation != "" {
		conds = append(conds, "congregation = "+next(filter.Congregation))
	}
	if filter.Status != "" {
		conds = append(conds, "status = "+next(string(filter.Status)))
	}
	if filter.Role != "" {
		conds = append(conds, "role = "+next(filter.Role))
	}

	query := `SELECT ` + selectMemberColumns + `
        FROM members`
	if len(conds) > 0 {
		query += "\n        WHERE " + strings.Join(conds, " AND ")
	}
	query += "\n        ORDER BY full_name, id"
	return query, args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// FindAll busca os membros que atendem ao filtro (termo, congregação, situação e cargo).
func (r *MemberRepository) FindAll(ctx context.Context, filter domain.MemberFilter) ([]domain.Member, error) {
	r.logger.Debug("Iniciando FindAll de membros no repositório.", map[string]interface{}{"term": filter.Term, "congregation": filter.Congregation})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query, args := buildFindAllQuery(filter)
	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		r.logger.Error("Falha ao executar FindAll de membros.", err)
		return nil, errors.NewDBError("Falha ao buscar membros", err)
	}
	defer rows.Close()

	members := []domain.Member{}
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			r.logger.Error("Falha ao mapear membro na iteração de FindAll.", err)
			return nil, errors.NewDBError("Falha ao mapear membros do DB", err)
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Erro após iteração das linhas de membros.", err)
		return nil, errors.NewDBError("Erro após iteração de membros", err)
	}

	r.logger.Debug("FindAll concluído.", map[string]interface{}{"total_members": len(members)})
	return members, nil
}

// Update grava a ficha inteira de um membro existente e invalida o cache.
func (r *MemberRepository) Update(ctx context.Context, member domain.Member) (domain.Member, error) {
	r.logger.Debug("Iniciando Update de membro no repositório.", map[string]interface{}{"id": member.ID})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        UPDATE members SET
            user_id = $1, registration_number = $2, registration_date = $3,
            full_name = $4, cpf = $5, rg = $6, sex = $7,
            father_name = $8, mother_name = $9,
            naturalness = $10, birth_date = $11, baptism_date = $12,
            marital_status = $13, church_entry_date = $14, anointing_date = $15,
            role = $16, congregation = $17,
            email = $18, phone = $19, photo_url = $20,
            address_street = $21, address_number = $22, address_neighborhood = $23,
            address_city = $24, address_state = $25, address_cep = $26,
            address_complement = $27,
            status = $28, updated_at = $29
        WHERE id = $30
        RETURNING created_at, updated_at`

	args := append(writableArgs(member), time.Now().UTC(), member.ID)

	err := r.DB.QueryRowContext(ctxTimeout, query, args...).Scan(&member.CreatedAt, &member.UpdatedAt)
	if err == sql.ErrNoRows {
		r.logger.Info("Membro não encontrado para atualização.", map[string]interface{}{"id": member.ID})
		return domain.Member{}, errors.NewNotFoundError(fmt.Sprintf("Membro com ID %s não encontrado para atualização.", member.ID))
	}
	if err != nil {
		r.logger.Error("Falha ao atualizar membro no DB.", err)
		return domain.Member{}, mapWriteError("Falha ao atualizar membro", err)
	}

	r.invalidate(ctx, member.ID)
	r.logger.Info("Membro atualizado com sucesso.", map[string]interface{}{"id": member.ID, "registration_number": member.RegistrationNumber})
	return member, nil
}

// Delete remove um membro (e, em cascata, suas anotações).
func (r *MemberRepository) Delete(ctx context.Context, id string) error {
	r.logger.Debug("Iniciando Delete de membro no repositório.", map[string]interface{}{"id": id})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM members WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Falha ao excluir membro do DB.", err)
		return errors.NewDBError("Falha ao excluir membro", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.logger.Error("Falha ao verificar linhas afetadas após Delete.", err)
		return errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		r.logger.Info("Membro não encontrado para exclusão.", map[string]interface{}{"id": id})
		return errors.NewNotFoundError(fmt.Sprintf("Membro com ID %s não encontrado para exclusão.", id))
	}

	r.invalidate(ctx, id)
	r.logger.Info("Membro excluído com sucesso.", map[string]interface{}{"id": id})
	return nil
}

func (r *MemberRepository) invalidate(ctx context.Context, id string) {
	if err := r.Cache.Delete(ctx, fmt.Sprintf(memberCacheKey, id)); err != nil && err != cache.ErrCacheMiss {
		r.logger.Warn("Falha ao invalidar membro no cache.", map[string]interface{}{"id": id, "error": err.Error()})
	}
}

// ListRegistrationNumbers devolve as matrículas do rol. excludeID (se informado)
// deixa de fora a ficha em edição.
func (r *MemberRepository) ListRegistrationNumbers(ctx context.Context, excludeID string) ([]string, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT registration_number
        FROM members
        WHERE $1 = '' OR id::text <> $1`

	rows, err := r.DB.QueryContext(ctxTimeout, query, excludeID)
	if err != nil {
		r.logger.Error("Falha ao listar matrículas.", err)
		return nil, errors.NewDBError("Falha ao listar matrículas", err)
	}
	defer rows.Close()

	var regs []string
	for rows.Next() {
		var reg string
		if err := rows.Scan(&reg); err != nil {
			return nil, errors.NewDBError("Falha ao mapear matrícula", err)
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Erro após iteração de matrículas", err)
	}
	return regs, nil
}

// SaveNote insere uma anotação administrativa.
func (r *MemberRepository) SaveNote(ctx context.Context, note domain.MemberNote) (domain.MemberNote, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if note.ID == "" {
		note.ID = uuid.New().String()
	}
	note.CreatedAt = time.Now().UTC()

	query := `
        INSERT INTO member_notes (id, member_id, text, created_by, created_at)
        VALUES ($1, $2, $3, $4, $5)`

	_, err := r.DB.ExecContext(ctxTimeout, query, note.ID, note.MemberID, note.Text, nullIfEmpty(note.CreatedBy), note.CreatedAt)
	if err != nil {
		r.logger.Error("Falha ao inserir anotação no DB.", err)
		return domain.MemberNote{}, errors.NewDBError("Falha ao salvar anotação", err)
	}

	r.logger.Info("Anotação registrada.", map[string]interface{}{"id": note.ID, "member_id": note.MemberID})
	return note, nil
}

// FindNotes lista as anotações de um membro, da mais recente para a mais antiga.
func (r *MemberRepository) FindNotes(ctx context.Context, memberID string) ([]domain.MemberNote, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT id, member_id, text, COALESCE(created_by, ''), created_at
        FROM member_notes
        WHERE member_id = $1
        ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctxTimeout, query, memberID)
	if err != nil {
		r.logger.Error("Falha ao listar anotações.", err)
		return nil, errors.NewDBError("Falha ao listar anotações", err)
	}
	defer rows.Close()

	notes := []domain.MemberNote{}
	for rows.Next() {
		var n domain.MemberNote
		if err := rows.Scan(&n.ID, &n.MemberID, &n.Text, &n.CreatedBy, &n.CreatedAt); err != nil {
			return nil, errors.NewDBError("Falha ao mapear anotação", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Erro após iteração de anotações", err)
	}
	return notes, nil
}

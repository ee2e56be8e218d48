package member

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"gomembros/internal/domain"
	apperror "gomembros/internal/errors"
	"gomembros/internal/pkg/logger"
	"gomembros/internal/pkg/middleware"
)

// MemberService define o contrato que o Handler espera da camada de Serviço.
type MemberService interface {
	NextRegistrationNumber(ctx context.Context) (string, error)
	NewDraft(ctx context.Context) (domain.Member, error)
	Normalize(fields domain.RegistrationFields) domain.NormalizedRegistration
	CreateMember(ctx context.Context, member domain.Member) (domain.Member, error)
	GetMemberByID(ctx context.Context, id string) (domain.Member, error)
	ListMembers(ctx context.Context, filter domain.MemberFilter) (domain.MemberPage, error)
	UpdateMember(ctx context.Context, member domain.Member) (domain.Member, error)
	DeleteMember(ctx context.Context, id string) error
	Stats(ctx context.Context, congregation string) (domain.MemberStats, error)
	AddNote(ctx context.Context, memberID, text, createdBy string) (domain.MemberNote, error)
	ListNotes(ctx context.Context, memberID string) ([]domain.MemberNote, error)
}

// RegistrationNumberResponse é a resposta de GET /v1/registration/next.
type RegistrationNumberResponse struct {
	RegistrationNumber string `json:"registration_number" example:"43"`
}

// NoteRequest é o corpo de POST /v1/members/{id}/notes.
type NoteRequest struct {
	Text string `json:"text" example:"Carta de transferência recebida."`
}

// Handler agrupa todos os métodos de Handler de membros.
type Handler struct {
	Service MemberService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc MemberService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// handleServiceResponse processa erros de serviço e envia respostas padronizadas ao cliente.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)
		if data != nil {
			if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
				h.Logger.Error("Falha ao codificar JSON de resposta", jsonErr)
			}
		}
		return
	}

	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		h.Logger.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
	} else {
		h.Logger.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{"path": r.URL.Path})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(domain.ErrorResponse{Code: status, Category: category, Message: message})
}

func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.NewValidationError("Payload inválido. Verifique o formato JSON.")
	}
	return nil
}

// NextRegistrationHandler lida com a requisição GET /v1/registration/next.
// @Summary Próxima matrícula livre
// @Description Calcula a próxima base de matrícula a partir do rol (maior base numérica + 1).
// @Tags registration
// @Produce json
// @Success 200 {object} member.RegistrationNumberResponse
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security ApiKeyAuth
// @Router /registration/next [get]
func (h *Handler) NextRegistrationHandler(w http.ResponseWriter, r *http.Request) {
	next, err := h.Service.NextRegistrationNumber(r.Context())
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, RegistrationNumberResponse{RegistrationNumber: next}, nil, http.StatusOK)
}

// NormalizeRegistrationHandler lida com a requisição POST /v1/registration/normalize.
// @Summary Normaliza cargo e matrícula
// @Description Ajusta a grafia do cargo ao sexo e o sufixo administrativo da matrícula, sem gravar nada.
// @Tags registration
// @Accept json
// @Produce json
// @Param fields body domain.RegistrationFields true "Sexo, cargo e matrícula atuais"
// @Success 200 {object} domain.NormalizedRegistration
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Security ApiKeyAuth
// @Router /registration/normalize [post]
func (h *Handler) NormalizeRegistrationHandler(w http.ResponseWriter, r *http.Request) {
	var fields domain.RegistrationFields
	if err := decodeJSON(r, &fields); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, h.Service.Normalize(fields), nil, http.StatusOK)
}

// DraftMemberHandler lida com a requisição GET /v1/members/draft.
// @Summary Ficha inicial de novo membro
// @Description Retorna a ficha em branco com matrícula alocada, data de cadastro e valores padrão.
// @Tags members
// @Produce json
// @Success 200 {object} domain.Member
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security ApiKeyAuth
// @Router /members/draft [get]
func (h *Handler) DraftMemberHandler(w http.ResponseWriter, r *http.Request) {
	draft, err := h.Service.NewDraft(r.Context())
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, draft, nil, http.StatusOK)
}

// ListMembersHandler lida com a requisição GET /v1/members.
// @Summary Lista membros
// @Description Busca por nome, CPF ou matrícula, com filtros, ordenação e paginação.
// @Tags members
// @Produce json
// @Param q query string false "Termo de busca (nome, CPF ou matrícula)"
// @Param congregation query string false "Congregação"
// @Param status query string false "Situação (ATIVO, SUSPENSO, DESLIGADO, INATIVO, FALECIDO)"
// @Param role query string false "Cargo"
// @Param order query string false "registration (padrão) ou name"
// @Param page query int false "Página (a partir de 1)"
// @Param limit query int false "Itens por página (máx. 100)"
// @Success 200 {object} domain.MemberPage
// @Failure 400 {object} domain.ErrorResponse "Filtro inválido"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security ApiKeyAuth
// @Router /members [get]
func (h *Handler) ListMembersHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := intParam(q.Get("page"), "page")
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	limit, err := intParam(q.Get("limit"), "limit")
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	filter := domain.MemberFilter{
		Term:         q.Get("q"),
		Congregation: q.Get("congregation"),
		Status:       domain.MemberStatus(q.Get("status")),
		Role:         q.Get("role"),
		Order:        domain.MemberOrder(q.Get("order")),
		Page:         page,
		Limit:        limit,
	}

	result, err := h.Service.ListMembers(r.Context(), filter)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, result, nil, http.StatusOK)
}

func intParam(v, name string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, apperror.NewValidationError(fmt.Sprintf("Parâmetro %s deve ser um inteiro não negativo.", name))
	}
	return n, nil
}

// CreateMemberHandler lida com a requisição POST /v1/members.
// @Summary Cadastra um membro
// @Description Cadastra a ficha; sem matrícula informada, a próxima livre é alocada. Cargo e sufixo são normalizados.
// @Tags members
// @Accept json
// @Produce json
// @Param member body domain.Member true "Ficha do membro"
// @Success 201 {object} domain.Member "Membro cadastrado com sucesso"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 409 {object} domain.ErrorResponse "Matrícula já existe"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security ApiKeyAuth
// @Router /members [post]
func (h *Handler) CreateMemberHandler(w http.ResponseWriter, r *http.Request) {
	var member domain.Member
	if err := decodeJSON(r, &member); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	member.UserID = currentUserID(r)

	created, err := h.Service.CreateMember(r.Context(), member)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, created, nil, http.StatusCreated)
}

// GetMemberByIDHandler lida com a requisição GET /v1/members/{id}.
// @Summary Obtém um membro por ID
// @Tags members
// @Produce json
// @Param id path string true "ID do Membro"
// @Success 200 {object} domain.Member "Membro encontrado"
// @Failure 400 {object} domain.ErrorResponse "ID inválido"
// @Failure 404 {object} domain.ErrorResponse "Membro não encontrado"
// @Security ApiKeyAuth
// @Router /members/{id} [get]
func (h *Handler) GetMemberByIDHandler(w http.ResponseWriter, r *http.Request) {
	member, err := h.Service.GetMemberByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, member, nil, http.StatusOK)
}

// UpdateMemberHandler lida com a requisição PUT /v1/members/{id}.
// @Summary Atualiza um membro
// @Description Regrava a ficha inteira. Matrícula vazia mantém a atual.
// @Tags members
// @Accept json
// @Produce json
// @Param id path string true "ID do Membro"
// @Param member body domain.Member true "Ficha do membro"
// @Success 200 {object} domain.Member "Membro atualizado com sucesso"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 404 {object} domain.ErrorResponse "Membro não encontrado"
// @Failure 409 {object} domain.ErrorResponse "Matrícula já existe"
// @Security ApiKeyAuth
// @Router /members/{id} [put]
func (h *Handler) UpdateMemberHandler(w http.ResponseWriter, r *http.Request) {
	var member domain.Member
	if err := decodeJSON(r, &member); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	member.ID = chi.URLParam(r, "id")
	member.UserID = currentUserID(r)

	updated, err := h.Service.UpdateMember(r.Context(), member)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, updated, nil, http.StatusOK)
}

// DeleteMemberHandler lida com a requisição DELETE /v1/members/{id}.
// @Summary Exclui um membro
// @Description Remove definitivamente a ficha e suas anotações. Restrito a administradores.
// @Tags members
// @Param id path string true "ID do Membro"
// @Success 204 "Nenhum conteúdo"
// @Failure 403 {object} domain.ErrorResponse "Sem permissão"
// @Failure 404 {object} domain.ErrorResponse "Membro não encontrado"
// @Security ApiKeyAuth
// @Router /members/{id} [delete]
func (h *Handler) DeleteMemberHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteMember(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, nil, nil, http.StatusNoContent)
}

// ListNotesHandler lida com a requisição GET /v1/members/{id}/notes.
// @Summary Lista anotações do membro
// @Tags members
// @Produce json
// @Param id path string true "ID do Membro"
// @Success 200 {array} domain.MemberNote
// @Failure 404 {object} domain.ErrorResponse "Membro não encontrado"
// @Security ApiKeyAuth
// @Router /members/{id}/notes [get]
func (h *Handler) ListNotesHandler(w http.ResponseWriter, r *http.Request) {
	notes, err := h.Service.ListNotes(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, notes, nil, http.StatusOK)
}

// AddNoteHandler lida com a requisição POST /v1/members/{id}/notes.
// @Summary Adiciona anotação ao membro
// @Tags members
// @Accept json
// @Produce json
// @Param id path string true "ID do Membro"
// @Param note body member.NoteRequest true "Texto da anotação"
// @Success 201 {object} domain.MemberNote
// @Failure 400 {object} domain.ErrorResponse "Anotação inválida"
// @Failure 404 {object} domain.ErrorResponse "Membro não encontrado"
// @Security ApiKeyAuth
// @Router /members/{id}/notes [post]
func (h *Handler) AddNoteHandler(w http.ResponseWriter, r *http.Request) {
	var req NoteRequest
	if err := decodeJSON(r, &req); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	note, err := h.Service.AddNote(r.Context(), chi.URLParam(r, "id"), req.Text, currentUserID(r))
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, note, nil, http.StatusCreated)
}

// StatsHandler lida com a requisição GET /v1/reports/members.
// @Summary Relatório do rol
// @Description Totais por cargo, situação e congregação. Sem congregation, relatório geral.
// @Tags reports
// @Produce json
// @Param congregation query string false "Congregação"
// @Success 200 {object} domain.MemberStats
// @Failure 400 {object} domain.ErrorResponse "Congregação desconhecida"
// @Security ApiKeyAuth
// @Router /reports/members [get]
func (h *Handler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Stats(r.Context(), r.URL.Query().Get("congregation"))
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, stats, nil, http.StatusOK)
}

func currentUserID(r *http.Request) string {
	claims, ok := middleware.GetUserClaimsFromContext(r.Context())
	if !ok {
		return ""
	}
	return claims.UserID
}

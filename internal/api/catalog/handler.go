// Package catalog expõe os catálogos estáticos da secretaria (cargos, situações, UFs,
// congregações e dados da igreja).
package catalog

import (
	"encoding/json"
	"net/http"

	"gomembros/internal/domain"
	apperror "gomembros/internal/errors"
	"gomembros/internal/pkg/logger"
	"gomembros/internal/registration"
)

// Response é o catálogo completo usado pelos formulários.
type Response struct {
	EcclesiasticalRoles []string               `json:"ecclesiastical_roles"`
	AdministrativeRoles []string               `json:"administrative_roles"`
	Statuses            []domain.MemberStatus  `json:"statuses"`
	MaritalStatuses     []domain.MaritalStatus `json:"marital_statuses"`
	UFs                 []string               `json:"ufs"`
	Congregations       []domain.Congregation  `json:"congregations"`
	Church              domain.ChurchInfo      `json:"church"`
}

// Handler serve GET /v1/catalog.
type Handler struct {
	Logger logger.Logger
}

// NewHandler cria uma nova instância do Handler de catálogos.
func NewHandler(log logger.Logger) *Handler {
	return &Handler{Logger: log}
}

// Build monta o catálogo. Com sexo informado, os cargos vêm na grafia correspondente.
func Build(sex domain.Sex) Response {
	return Response{
		EcclesiasticalRoles: gendered(domain.EcclesiasticalRoles(), sex),
		AdministrativeRoles: gendered(domain.AdministrativeRoles(), sex),
		Statuses:            domain.StatusOptions(),
		MaritalStatuses:     domain.MaritalOptions(),
		UFs:                 domain.UFList(),
		Congregations:       domain.Congregations(),
		Church:              domain.Church(),
	}
}

func gendered(roles []string, sex domain.Sex) []string {
	for i, role := range roles {
		roles[i] = registration.NormalizeRoleForSex(role, sex)
	}
	return roles
}

// GetCatalogHandler lida com a requisição GET /v1/catalog.
// @Summary Catálogos do cadastro
// @Description Cargos (na grafia do sexo informado), situações, estados civis, UFs, congregações e dados da igreja.
// @Tags catalog
// @Produce json
// @Param sexo query string false "Masculino ou Feminino"
// @Success 200 {object} catalog.Response
// @Failure 400 {object} domain.ErrorResponse "Sexo inválido"
// @Security ApiKeyAuth
// @Router /catalog [get]
func (h *Handler) GetCatalogHandler(w http.ResponseWriter, r *http.Request) {
	sex := domain.Sex(r.URL.Query().Get("sexo"))
	if sex != "" && !domain.ValidSex(sex) {
		h.writeJSON(w, http.StatusBadRequest, errorBody(apperror.NewValidationError("sexo deve ser Masculino ou Feminino.")))
		return
	}
	h.writeJSON(w, http.StatusOK, Build(sex))
}

func errorBody(err error) domain.ErrorResponse {
	status, category, message := apperror.MapToHTTPStatus(err)
	return domain.ErrorResponse{Code: status, Category: category, Message: message}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("Falha ao codificar JSON de resposta", err)
	}
}

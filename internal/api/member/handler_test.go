package member_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gomembros/internal/api/member"
	"gomembros/internal/domain"
	apperror "gomembros/internal/errors"
	"gomembros/internal/pkg/logger"
	"gomembros/internal/pkg/middleware"
)

// MockMemberService é uma implementação mock da interface MemberService
type MockMemberService struct {
	mock.Mock
}

func (m *MockMemberService) NextRegistrationNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockMemberService) NewDraft(ctx context.Context) (domain.Member, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Member), args.Error(1)
}

func (m *MockMemberService) Normalize(fields domain.RegistrationFields) domain.NormalizedRegistration {
	args := m.Called(fields)
	return args.Get(0).(domain.NormalizedRegistration)
}

func (m *MockMemberService) CreateMember(ctx context.Context, mem domain.Member) (domain.Member, error) {
	args := m.Called(ctx, mem)
	return args.Get(0).(domain.Member), args.Error(1)
}

func (m *MockMemberService) GetMemberByID(ctx context.Context, id string) (domain.Member, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Member), args.Error(1)
}

func (m *MockMemberService) ListMembers(ctx context.Context, filter domain.MemberFilter) (domain.MemberPage, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(domain.MemberPage), args.Error(1)
}

func (m *MockMemberService) UpdateMember(ctx context.Context, mem domain.Member) (domain.Member, error) {
	args := m.Called(ctx, mem)
	return args.Get(0).(domain.Member), args.Error(1)
}

func (m *MockMemberService) DeleteMember(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMemberService) Stats(ctx context.Context, congregation string) (domain.MemberStats, error) {
	args := m.Called(ctx, congregation)
	return args.Get(0).(domain.MemberStats), args.Error(1)
}

func (m *MockMemberService) AddNote(ctx context.Context, memberID, text, createdBy string) (domain.MemberNote, error) {
	args := m.Called(ctx, memberID, text, createdBy)
	return args.Get(0).(domain.MemberNote), args.Error(1)
}

func (m *MockMemberService) ListNotes(ctx context.Context, memberID string) ([]domain.MemberNote, error) {
	args := m.Called(ctx, memberID)
	return args.Get(0).([]domain.MemberNote), args.Error(1)
}

// withUser simula o AuthMiddleware anexando as claims ao contexto.
func withUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), middleware.UserClaimsKey, middleware.UserClaims{UserID: "user-1", Role: domain.RoleSecretary})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func newTestRouter(svc *MockMemberService) http.Handler {
	h := member.NewHandler(svc, logger.NewLogger("debug"))

	r := chi.NewRouter()
	r.Use(withUser)
	r.Get("/v1/registration/next", h.NextRegistrationHandler)
	r.Post("/v1/registration/normalize", h.NormalizeRegistrationHandler)
	r.Get("/v1/members", h.ListMembersHandler)
	r.Post("/v1/members", h.CreateMemberHandler)
	r.Get("/v1/members/draft", h.DraftMemberHandler)
	r.Get("/v1/members/{id}", h.GetMemberByIDHandler)
	r.Put("/v1/members/{id}", h.UpdateMemberHandler)
	r.Delete("/v1/members/{id}", h.DeleteMemberHandler)
	r.Get("/v1/members/{id}/notes", h.ListNotesHandler)
	r.Post("/v1/members/{id}/notes", h.AddNoteHandler)
	r.Get("/v1/reports/members", h.StatsHandler)
	return r
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) domain.ErrorResponse {
	var body domain.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestNextRegistrationHandler(t *testing.T) {
	svc := new(MockMemberService)
	svc.On("NextRegistrationNumber", mock.Anything).Return("43", nil)

	rec := serve(newTestRouter(svc), http.MethodGet, "/v1/registration/next", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"registration_number":"43"}`, rec.Body.String())
}

func TestNormalizeRegistrationHandler(t *testing.T) {
	svc := new(MockMemberService)
	in := domain.RegistrationFields{Sex: domain.SexFemale, Role: "Diácono", RegistrationNumber: "9"}
	svc.On("Normalize", in).Return(domain.NormalizedRegistration{Role: "Diaconisa", RegistrationNumber: "9", Changed: true})

	rec := serve(newTestRouter(svc), http.MethodPost, "/v1/registration/normalize",
		`{"sex":"Feminino","role":"Diácono","registration_number":"9"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"role":"Diaconisa","registration_number":"9","changed":true}`, rec.Body.String())
}

func TestNormalizeRegistrationHandler_InvalidJSON(t *testing.T) {
	svc := new(MockMemberService)

	rec := serve(newTestRouter(svc), http.MethodPost, "/v1/registration/normalize", `{`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, rec).Category)
	svc.AssertNotCalled(t, "Normalize", mock.Anything)
}

func TestCreateMemberHandler_SetsUserAndReturns201(t *testing.T) {
	svc := new(MockMemberService)
	svc.On("CreateMember", mock.Anything, mock.MatchedBy(func(m domain.Member) bool {
		return m.FullName == "Ana" && m.UserID == "user-1"
	})).Return(domain.Member{ID: "id-1", FullName: "Ana", RegistrationNumber: "3"}, nil)

	rec := serve(newTestRouter(svc), http.MethodPost, "/v1/members", `{"full_name":"Ana"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var body domain.Member
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "3", body.RegistrationNumber)
	svc.AssertExpectations(t)
}

func TestCreateMemberHandler_Conflict(t *testing.T) {
	svc := new(MockMemberService)
	svc.On("CreateMember", mock.Anything, mock.Anything).Return(domain.Member{}, apperror.NewDuplicateRegistrationError(nil))

	rec := serve(newTestRouter(svc), http.MethodPost, "/v1/members", `{"full_name":"Ana","registration_number":"3"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "CONFLICT", body.Category)
	assert.Contains(t, body.Message, "Gere uma nova matrícula")
}

func TestGetMemberByIDHandler_UsesPathParam(t *testing.T) {
	svc := new(MockMemberService)
	svc.On("GetMemberByID", mock.Anything, "abc").Return(domain.Member{}, apperror.NewNotFoundError("Membro com ID abc não encontrado."))

	rec := serve(newTestRouter(svc), http.MethodGet, "/v1/members/abc", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	svc.AssertExpectations(t)
}

func TestDraftMemberHandler_RoutedBeforeID(t *testing.T) {
	svc := new(MockMemberService)
	svc.On("NewDraft", mock.Anything).Return(domain.Member{RegistrationNumber: "8", Role: "Membro"}, nil)

	rec := serve(newTestRouter(svc), http.MethodGet, "/v1/members/draft", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"registration_number":"8"`)
	svc.AssertNotCalled(t, "GetMemberByID", mock.Anything, mock.Anything)
}

func TestUpdateMemberHandler(t *testing.T) {
	svc := new(MockMemberService)
	svc.On("UpdateMember", mock.Anything, mock.MatchedBy(func(m domain.Member) bool {
		return m.ID == "id-9" && m.FullName == "José"
	})).Return(domain.Member{ID: "id-9", FullName: "José"}, nil)

	rec := serve(newTestRouter(svc), http.MethodPut, "/v1/members/id-9", `{"id":"outro","full_name":"José"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestDeleteMemberHandler(t *testing.T) {
	svc := new(MockMemberService)
	svc.On("DeleteMember", mock.Anything, "id-9").Return(nil)

	rec := serve(newTestRouter(svc), http.MethodDelete, "/v1/members/id-9", "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestListMembersHandler_ParsesQuery(t *testing.T) {
	svc := new(MockMemberService)
	want := domain.MemberFilter{
		Term:         "silva",
		Congregation: "SEDE",
		Status:       domain.StatusActive,
		Role:         "Pastor",
		Order:        domain.OrderByName,
		Page:         2,
		Limit:        10,
	}
	svc.On("ListMembers", mock.Anything, want).Return(domain.MemberPage{Items: []domain.Member{}, Total: 0, Page: 2, Limit: 10}, nil)

	rec := serve(newTestRouter(svc), http.MethodGet,
		"/v1/members?q=silva&congregation=SEDE&status=ATIVO&role=Pastor&order=name&page=2&limit=10", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestListMembersHandler_InvalidPage(t *testing.T) {
	svc := new(MockMemberService)

	rec := serve(newTestRouter(svc), http.MethodGet, "/v1/members?page=dois", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "ListMembers", mock.Anything, mock.Anything)
}

func TestNotesHandlers(t *testing.T) {
	svc := new(MockMemberService)
	svc.On("AddNote", mock.Anything, "id-1", "Batizado em 2020", "user-1").Return(domain.MemberNote{ID: "n1", MemberID: "id-1", Text: "Batizado em 2020"}, nil)
	svc.On("ListNotes", mock.Anything, "id-1").Return([]domain.MemberNote{{ID: "n1"}}, nil)
	router := newTestRouter(svc)

	rec := serve(router, http.MethodPost, "/v1/members/id-1/notes", `{"text":"Batizado em 2020"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = serve(router, http.MethodGet, "/v1/members/id-1/notes", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"n1"`)
	svc.AssertExpectations(t)
}

func TestStatsHandler(t *testing.T) {
	svc := new(MockMemberService)
	svc.On("Stats", mock.Anything, "PEDRA 90").Return(domain.MemberStats{Congregation: "PEDRA 90", Total: 4}, nil)

	rec := serve(newTestRouter(svc), http.MethodGet, "/v1/reports/members?congregation=PEDRA+90", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":4`)
}

func TestHandler_InternalErrorHidesCause(t *testing.T) {
	svc := new(MockMemberService)
	svc.On("NextRegistrationNumber", mock.Anything).Return("", apperror.NewDBError("Falha ao listar matrículas", assert.AnError))

	rec := serve(newTestRouter(svc), http.MethodGet, "/v1/registration/next", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
}

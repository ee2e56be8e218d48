package memberservice_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gomembros/internal/domain"
	apperror "gomembros/internal/errors"
	"gomembros/internal/pkg/logger"
	"gomembros/internal/pkg/metrics"
	"gomembros/internal/service/memberservice"
)

// MockMemberRepository é uma implementação mock da interface MemberRepository
type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) Save(ctx context.Context, member domain.Member) (domain.Member, error) {
	args := m.Called(ctx, member)
	return args.Get(0).(domain.Member), args.Error(1)
}

func (m *MockMemberRepository) FindByID(ctx context.Context, id string) (domain.Member, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Member), args.Error(1)
}

func (m *MockMemberRepository) FindAll(ctx context.Context, filter domain.MemberFilter) ([]domain.Member, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Member), args.Error(1)
}

func (m *MockMemberRepository) Update(ctx context.Context, member domain.Member) (domain.Member, error) {
	args := m.Called(ctx, member)
	return args.Get(0).(domain.Member), args.Error(1)
}

func (m *MockMemberRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMemberRepository) ListRegistrationNumbers(ctx context.Context, excludeID string) ([]string, error) {
	args := m.Called(ctx, excludeID)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockMemberRepository) SaveNote(ctx context.Context, note domain.MemberNote) (domain.MemberNote, error) {
	args := m.Called(ctx, note)
	return args.Get(0).(domain.MemberNote), args.Error(1)
}

func (m *MockMemberRepository) FindNotes(ctx context.Context, memberID string) ([]domain.MemberNote, error) {
	args := m.Called(ctx, memberID)
	return args.Get(0).([]domain.MemberNote), args.Error(1)
}

func newTestService() (*memberservice.Service, *MockMemberRepository, *metrics.Metrics) {
	repo := new(MockMemberRepository)
	m := metrics.New()
	return memberservice.NewService(repo, m, logger.NewLogger("debug")), repo, m
}

// --- Matrícula ---

func TestNextRegistrationNumber(t *testing.T) {
	svc, repo, m := newTestService()
	repo.On("ListRegistrationNumbers", mock.Anything, "").Return([]string{"1", "2-PRE", "10", "abc"}, nil)

	next, err := svc.NextRegistrationNumber(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, "11", next)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RegistrationsAllocated))
	repo.AssertExpectations(t)
}

func TestNewDraft(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.On("ListRegistrationNumbers", mock.Anything, "").Return([]string{}, nil)

	draft, err := svc.NewDraft(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "1", draft.RegistrationNumber)
	assert.Equal(t, domain.DefaultRole, draft.Role)
	assert.Equal(t, domain.DefaultCongregation, draft.Congregation)
	assert.Equal(t, domain.SexMale, draft.Sex)
	assert.Equal(t, domain.StatusActive, draft.Status)
	assert.Equal(t, "MT", draft.AddressState)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, draft.RegistrationDate)
	assert.Empty(t, draft.ID)
}

func TestNormalize(t *testing.T) {
	svc, _, _ := newTestService()

	out := svc.Normalize(domain.RegistrationFields{Sex: domain.SexFemale, Role: "1° Tesoureiro", RegistrationNumber: "12"})
	assert.True(t, out.Changed)
	assert.Equal(t, "1° Tesoureira", out.Role)
	assert.Equal(t, "12-TES", out.RegistrationNumber)
	assert.Equal(t, "TES", out.Suffix)

	out = svc.Normalize(domain.RegistrationFields{Sex: domain.SexMale, Role: "Membro", RegistrationNumber: "12"})
	assert.False(t, out.Changed)
	assert.Empty(t, out.Suffix)
}

// --- CreateMember ---

func TestCreateMember_Success_AllocatesAndNormalizes(t *testing.T) {
	svc, repo, m := newTestService()
	repo.On("ListRegistrationNumbers", mock.Anything, "").Return([]string{"1", "2"}, nil)
	repo.On("Save", mock.Anything, mock.MatchedBy(func(member domain.Member) bool {
		return member.RegistrationNumber == "3-SEC" &&
			member.Role == "1° Secretária" &&
			member.FullName == "Maria da Silva" &&
			member.BirthDate == "1985-03-15" &&
			member.Congregation == domain.DefaultCongregation &&
			member.Status == domain.StatusActive
	})).Return(domain.Member{ID: "novo", RegistrationNumber: "3-SEC", Role: "1° Secretária"}, nil)

	created, err := svc.CreateMember(context.Background(), domain.Member{
		FullName:  "  Maria da Silva ",
		Sex:       domain.SexFemale,
		Role:      "1° Secretário",
		BirthDate: "15/03/1985",
	})

	require.NoError(t, err)
	assert.Equal(t, "3-SEC", created.RegistrationNumber)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MembersCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RegistrationsAllocated))
	repo.AssertExpectations(t)
}

func TestCreateMember_KeepsInformedRegistration(t *testing.T) {
	svc, repo, m := newTestService()
	repo.On("ListRegistrationNumbers", mock.Anything, "").Return([]string{"1"}, nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(domain.Member{}, nil).Run(func(args mock.Arguments) {
		assert.Equal(t, "40-PRE", args.Get(1).(domain.Member).RegistrationNumber)
	})

	_, err := svc.CreateMember(context.Background(), domain.Member{FullName: "João", Role: "Presidente", RegistrationNumber: "40-VIC"})

	assert.NoError(t, err)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.RegistrationsAllocated))
}

func TestCreateMember_Fail_MissingName(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.On("ListRegistrationNumbers", mock.Anything, "").Return([]string{}, nil)

	_, err := svc.CreateMember(context.Background(), domain.Member{FullName: "   "})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	assert.Contains(t, err.Error(), "nome completo")
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCreateMember_Fail_CatalogValidation(t *testing.T) {
	cases := map[string]domain.Member{
		"sexo":        {FullName: "A", Sex: "Outro"},
		"situação":    {FullName: "A", Status: "VISITANTE"},
		"estado":      {FullName: "A", MaritalStatus: "Noivo(a)"},
		"uf":          {FullName: "A", AddressState: "XX"},
		"congregação": {FullName: "A", Congregation: "FILIAL 9"},
		"matrícula":   {FullName: "A", RegistrationNumber: "12a"},
	}
	for name, member := range cases {
		t.Run(name, func(t *testing.T) {
			svc, repo, _ := newTestService()
			repo.On("ListRegistrationNumbers", mock.Anything, "").Return([]string{}, nil)

			_, err := svc.CreateMember(context.Background(), member)

			assert.IsType(t, &apperror.ValidationError{}, err)
			repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateMember_Fail_RosterConflict(t *testing.T) {
	svc, repo, m := newTestService()
	repo.On("ListRegistrationNumbers", mock.Anything, "").Return([]string{"7-PRE"}, nil)

	_, err := svc.CreateMember(context.Background(), domain.Member{FullName: "Ana", RegistrationNumber: "007"})

	assert.IsType(t, &apperror.ConflictError{}, err)
	assert.Contains(t, err.Error(), apperror.DuplicateRegistrationMsg)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RegistrationConflicts.WithLabelValues("roster")))
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCreateMember_Fail_DatabaseConflict(t *testing.T) {
	svc, repo, m := newTestService()
	repo.On("ListRegistrationNumbers", mock.Anything, "").Return([]string{}, nil)
	dbErr := apperror.NewDuplicateRegistrationError(&pq.Error{Code: "23505"})
	repo.On("Save", mock.Anything, mock.Anything).Return(domain.Member{}, dbErr)

	_, err := svc.CreateMember(context.Background(), domain.Member{FullName: "Ana"})

	assert.Equal(t, dbErr, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RegistrationConflicts.WithLabelValues("database")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.MembersCreated))
}

func TestCreateMember_Fail_RosterError(t *testing.T) {
	svc, repo, _ := newTestService()
	dbErr := apperror.NewDBError("Falha ao listar matrículas", errors.New("timeout"))
	repo.On("ListRegistrationNumbers", mock.Anything, "").Return([]string(nil), dbErr)

	_, err := svc.CreateMember(context.Background(), domain.Member{FullName: "Ana"})

	assert.IsType(t, &apperror.InternalError{}, err)
}

// --- GetMemberByID / DeleteMember ---

func TestGetMemberByID_Fail_InvalidID(t *testing.T) {
	svc, repo, _ := newTestService()

	_, err := svc.GetMemberByID(context.Background(), "invalid-uuid")

	assert.IsType(t, &apperror.ValidationError{}, err)
	assert.Contains(t, err.Error(), "UUID válido")
	repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestGetMemberByID_NotFound(t *testing.T) {
	svc, repo, _ := newTestService()
	id := uuid.New().String()
	repo.On("FindByID", mock.Anything, id).Return(domain.Member{}, apperror.NewNotFoundError("Membro não encontrado."))

	_, err := svc.GetMemberByID(context.Background(), id)

	assert.IsType(t, &apperror.NotFoundError{}, err)
	repo.AssertExpectations(t)
}

func TestDeleteMember(t *testing.T) {
	svc, repo, m := newTestService()
	id := uuid.New().String()
	repo.On("Delete", mock.Anything, id).Return(nil)

	assert.NoError(t, svc.DeleteMember(context.Background(), id))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MembersDeleted))
	repo.AssertExpectations(t)
}

// --- UpdateMember ---

func TestUpdateMember_KeepsRegistrationAndExcludesSelf(t *testing.T) {
	svc, repo, m := newTestService()
	id := uuid.New().String()
	repo.On("FindByID", mock.Anything, id).Return(domain.Member{ID: id, RegistrationNumber: "5"}, nil)
	repo.On("ListRegistrationNumbers", mock.Anything, id).Return([]string{"1", "2"}, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(member domain.Member) bool {
		return member.RegistrationNumber == "5-VIC" && member.Role == "Vice-Presidente"
	})).Return(domain.Member{ID: id, RegistrationNumber: "5-VIC"}, nil)

	updated, err := svc.UpdateMember(context.Background(), domain.Member{ID: id, FullName: "José", Role: "Vice-Presidente"})

	require.NoError(t, err)
	assert.Equal(t, "5-VIC", updated.RegistrationNumber)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MembersUpdated))
	repo.AssertExpectations(t)
}

func TestUpdateMember_Fail_ConflictWithOtherMember(t *testing.T) {
	svc, repo, _ := newTestService()
	id := uuid.New().String()
	repo.On("FindByID", mock.Anything, id).Return(domain.Member{ID: id, RegistrationNumber: "5"}, nil)
	repo.On("ListRegistrationNumbers", mock.Anything, id).Return([]string{"6"}, nil)

	_, err := svc.UpdateMember(context.Background(), domain.Member{ID: id, FullName: "José", RegistrationNumber: "6"})

	assert.IsType(t, &apperror.ConflictError{}, err)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateMember_Fail_NotFound(t *testing.T) {
	svc, repo, _ := newTestService()
	id := uuid.New().String()
	repo.On("FindByID", mock.Anything, id).Return(domain.Member{}, apperror.NewNotFoundError("x"))

	_, err := svc.UpdateMember(context.Background(), domain.Member{ID: id, FullName: "José"})

	assert.IsType(t, &apperror.NotFoundError{}, err)
}

// --- ListMembers ---

func TestListMembers_NumericOrderAndPagination(t *testing.T) {
	svc, repo, _ := newTestService()
	rows := []domain.Member{
		{FullName: "C", RegistrationNumber: "10"},
		{FullName: "A", RegistrationNumber: "2-PRE"},
		{FullName: "B", RegistrationNumber: "1"},
	}
	repo.On("FindAll", mock.Anything, mock.MatchedBy(func(f domain.MemberFilter) bool {
		return f.Term == "silva" && f.Order == domain.OrderByRegistration && f.Limit == 2
	})).Return(rows, nil)

	page, err := svc.ListMembers(context.Background(), domain.MemberFilter{Term: " silva ", Limit: 2})

	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 1, page.Page)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "1", page.Items[0].RegistrationNumber)
	assert.Equal(t, "2-PRE", page.Items[1].RegistrationNumber)

	page, err = svc.ListMembers(context.Background(), domain.MemberFilter{Term: "silva", Limit: 2, Page: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "10", page.Items[0].RegistrationNumber)
}

func TestListMembers_OrderByNameAndLimitCap(t *testing.T) {
	svc, repo, _ := newTestService()
	rows := []domain.Member{{FullName: "beatriz"}, {FullName: "Ana"}}
	repo.On("FindAll", mock.Anything, mock.MatchedBy(func(f domain.MemberFilter) bool {
		return f.Limit == memberservice.MaxPageSize
	})).Return(rows, nil)

	page, err := svc.ListMembers(context.Background(), domain.MemberFilter{Order: domain.OrderByName, Limit: 1000})

	require.NoError(t, err)
	assert.Equal(t, memberservice.MaxPageSize, page.Limit)
	assert.Equal(t, "Ana", page.Items[0].FullName)
}

func TestListMembers_PageBeyondEnd(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.On("FindAll", mock.Anything, mock.Anything).Return([]domain.Member{{RegistrationNumber: "1"}}, nil)

	page, err := svc.ListMembers(context.Background(), domain.MemberFilter{Page: 5})

	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	assert.Empty(t, page.Items)
}

func TestListMembers_HugePageDoesNotOverflow(t *testing.T) {
	svc, repo, _ := newTestService()
	rows := []domain.Member{{RegistrationNumber: "1"}, {RegistrationNumber: "2"}}
	repo.On("FindAll", mock.Anything, mock.Anything).Return(rows, nil)

	var page domain.MemberPage
	var err error
	assert.NotPanics(t, func() {
		page, err = svc.ListMembers(context.Background(), domain.MemberFilter{Page: math.MaxInt64 / 50, Limit: 100})
	})

	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Empty(t, page.Items)
}

func TestListMembers_Fail_InvalidFilter(t *testing.T) {
	svc, repo, _ := newTestService()

	_, err := svc.ListMembers(context.Background(), domain.MemberFilter{Order: "idade"})
	assert.IsType(t, &apperror.ValidationError{}, err)

	_, err = svc.ListMembers(context.Background(), domain.MemberFilter{Status: "VISITANTE"})
	assert.IsType(t, &apperror.ValidationError{}, err)

	repo.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything)
}

// --- Stats ---

func TestStats(t *testing.T) {
	svc, repo, _ := newTestService()
	rows := []domain.Member{
		{Role: "Membro", Status: domain.StatusActive, Congregation: "SEDE"},
		{Role: "Membro", Status: domain.StatusInactive, Congregation: "SEDE"},
		{Role: "Diaconisa", Status: domain.StatusActive, Congregation: "SEDE"},
	}
	repo.On("FindAll", mock.Anything, domain.MemberFilter{Congregation: "SEDE"}).Return(rows, nil)

	stats, err := svc.Stats(context.Background(), "SEDE")

	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, map[string]int{"Membro": 2, "Diaconisa": 1}, stats.ByRole)
	assert.Equal(t, map[string]int{"ATIVO": 2, "INATIVO": 1}, stats.ByStatus)
	assert.Equal(t, map[string]int{"SEDE": 3}, stats.ByCongregation)
}

func TestStats_Fail_UnknownCongregation(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Stats(context.Background(), "FILIAL 9")

	assert.IsType(t, &apperror.ValidationError{}, err)
}

// --- Anotações ---

func TestAddNote(t *testing.T) {
	svc, repo, _ := newTestService()
	id := uuid.New().String()
	repo.On("FindByID", mock.Anything, id).Return(domain.Member{ID: id}, nil)
	repo.On("SaveNote", mock.Anything, domain.MemberNote{MemberID: id, Text: "Transferido da PEDRA 90", CreatedBy: "user-1"}).
		Return(domain.MemberNote{ID: "n1", MemberID: id, Text: "Transferido da PEDRA 90"}, nil)

	note, err := svc.AddNote(context.Background(), id, "  Transferido da PEDRA 90 ", "user-1")

	require.NoError(t, err)
	assert.Equal(t, "n1", note.ID)
	repo.AssertExpectations(t)
}

func TestAddNote_Fail_Empty(t *testing.T) {
	svc, repo, _ := newTestService()

	_, err := svc.AddNote(context.Background(), uuid.New().String(), "   ", "user-1")

	assert.IsType(t, &apperror.ValidationError{}, err)
	repo.AssertNotCalled(t, "SaveNote", mock.Anything, mock.Anything)
}

func TestListNotes_MemberNotFound(t *testing.T) {
	svc, repo, _ := newTestService()
	id := uuid.New().String()
	repo.On("FindByID", mock.Anything, id).Return(domain.Member{}, apperror.NewNotFoundError("x"))

	_, err := svc.ListNotes(context.Background(), id)

	assert.IsType(t, &apperror.NotFoundError{}, err)
	repo.AssertNotCalled(t, "FindNotes", mock.Anything, mock.Anything)
}

// --- Datas ---

func TestNormalizeDate(t *testing.T) {
	cases := map[string]string{
		"2024-02-29":  "2024-02-29",
		"29/02/2024":  "2024-02-29",
		" 01/12/1990": "1990-12-01",
		"":            "",
		"31/02/2024":  "",
		"2024-2-1":    "",
		"ontem":       "",
	}
	for in, want := range cases {
		assert.Equal(t, want, memberservice.NormalizeDate(in), in)
	}
}

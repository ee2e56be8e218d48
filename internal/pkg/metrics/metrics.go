package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa os contadores Prometheus do cadastro de membros.
type Metrics struct {
	registry *prometheus.Registry

	MembersCreated         prometheus.Counter
	MembersUpdated         prometheus.Counter
	MembersDeleted         prometheus.Counter
	RegistrationConflicts  *prometheus.CounterVec
	RegistrationsAllocated prometheus.Counter
}

// New cria e registra as métricas num registry próprio (sem estado global),
// junto com os coletores padrão de Go e do processo.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: reg,
		MembersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "membros_members_created_total",
			Help: "Total de membros cadastrados.",
		}),
		MembersUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "membros_members_updated_total",
			Help: "Total de fichas de membro atualizadas.",
		}),
		MembersDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "membros_members_deleted_total",
			Help: "Total de membros excluídos.",
		}),
		RegistrationConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "membros_registration_conflicts_total",
			Help: "Matrículas recusadas por já existirem no rol, por origem da detecção.",
		}, []string{"source"}),
		RegistrationsAllocated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "membros_registrations_allocated_total",
			Help: "Total de matrículas novas calculadas.",
		}),
	}

	reg.MustRegister(m.MembersCreated, m.MembersUpdated, m.MembersDeleted, m.RegistrationConflicts, m.RegistrationsAllocated)
	return m
}

// Handler expõe o registry no formato de exposição do Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry devolve o registry (útil em testes).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) IncrementMembersCreated() { m.MembersCreated.Inc() }

func (m *Metrics) IncrementMembersUpdated() { m.MembersUpdated.Inc() }

func (m *Metrics) IncrementMembersDeleted() { m.MembersDeleted.Inc() }

func (m *Metrics) IncrementRegistrationsAllocated() { m.RegistrationsAllocated.Inc() }

// IncrementRegistrationConflict conta uma matrícula duplicada. source é "roster"
// (checagem antes de salvar) ou "database" (constraint de unicidade).
func (m *Metrics) IncrementRegistrationConflict(source string) {
	m.RegistrationConflicts.WithLabelValues(source).Inc()
}

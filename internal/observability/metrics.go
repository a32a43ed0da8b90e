package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AnunciosIngeridos = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "anuncios_ingeridos_total",
			Help: "Total de registros brutos recebidos pelo pipeline",
		},
	)
	AnunciosRejeitados = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "anuncios_rejeitados_total",
			Help: "Total de registros rejeitados na normalização",
		},
	)
	AnunciosDuplicados = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "anuncios_duplicados_total",
			Help: "Total de anúncios classificados como duplicados",
		},
	)
	AnunciosSincronizados = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "anuncios_sincronizados_total",
			Help: "Total de anúncios transferidos para o destino",
		},
	)
	AnunciosComFalha = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "anuncios_falha_sync_total",
			Help: "Total de falhas de transferência para o destino",
		},
	)
	ExecucaoDuracao = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "execucao_duracao_segundos",
			Help:    "Duração de cada execução completa do pipeline",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
	)
)

func Start(port string) {
	prometheus.MustRegister(
		AnunciosIngeridos,
		AnunciosRejeitados,
		AnunciosDuplicados,
		AnunciosSincronizados,
		AnunciosComFalha,
		ExecucaoDuracao,
	)
	http.Handle("/metrics", promhttp.Handler())
	go http.ListenAndServe(":"+port, nil)
}

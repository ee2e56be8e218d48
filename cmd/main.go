package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Nossos pacotes de infraestrutura e utilitários
	"gomembros/config"
	"gomembros/internal/domain"
	"gomembros/internal/pkg/cache"
	"gomembros/internal/pkg/database"
	"gomembros/internal/pkg/logger"
	"gomembros/internal/pkg/metrics"
	"gomembros/internal/pkg/token"

	// Camadas do Cadastro de Membros para Injeção de Dependências
	"gomembros/internal/api/catalog"
	"gomembros/internal/api/member"
	"gomembros/internal/api/router"
	"gomembros/internal/repository/memberrepo"
	"gomembros/internal/service/memberservice"
)

// @title API do Cadastro de Membros
// @version 1.0
// @description Cadastro de membros da igreja: fichas, matrículas, anotações e relatórios.
// @host localhost:8080
// @BasePath /v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	// 0. CARREGAR VARIÁVEIS DE AMBIENTE (.env)
	// Sem .env seguimos com o ambiente do sistema (ex: Docker).
	if err := godotenv.Load(); err != nil {
		log.Println("Aviso: arquivo .env não encontrado ou erro de leitura. Carregando configs apenas do ambiente do sistema.")
	}

	// 1. Configuração e Logger
	cfg := config.LoadConfig()
	appLog, err := logger.NewLoggerWithConfig(logger.Conf{
		Level:  cfg.LogLevel,
		Output: cfg.LogOutput,
		File:   cfg.LogFile,
	})
	if err != nil {
		log.Fatalf("Falha ao inicializar o logger: %v", err)
	}
	appLog.Info("Inicializando serviço de membros...", map[string]interface{}{"env": cfg.Environment})

	// 2. Conexão com Recursos de Infraestrutura

	// A. Banco de Dados (PostgreSQL)
	db, err := database.NewPostgresDB(cfg.DatabaseURL, database.PoolConfig{
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	})
	if err != nil {
		appLog.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()
	appLog.Info("Conexão PostgreSQL estabelecida.", nil)

	// B. Cache (Redis)
	cacheClient := cache.NewRedisClient(cfg.RedisAddr, appLog)
	appLog.Info("Cliente Redis inicializado.", map[string]interface{}{"addr": cfg.RedisAddr})

	// C. Métricas e Tokens
	appMetrics := metrics.New()
	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry, cfg.JWTIssuer)

	// 3. INJEÇÃO DE DEPENDÊNCIAS
	// Ordem: Repository -> Service -> Handler
	memberRepo := memberrepo.NewMemberRepository(db, cacheClient, cfg.DBTimeout, cfg.MemberCacheTTL, appLog)
	memberSvc := memberservice.NewService(memberRepo, appMetrics, appLog)
	memberHandler := member.NewHandler(memberSvc, appLog)
	catalogHandler := catalog.NewHandler(appLog)
	appLog.Debug("Camadas de membros inicializadas.", nil)

	// 4. Configuração e Início do Roteador/Servidor
	r := router.NewRouter(memberHandler, catalogHandler, router.Options{
		TokenService:         tokenSvc,
		Cache:                cacheClient,
		RateLimitMaxRequests: cfg.RateLimitMaxRequests,
		RateLimitPeriod:      cfg.RateLimitPeriod,
		AdminRoles:           domain.ParseRoles(cfg.AdminRoles),
		Metrics:              appMetrics.Handler(),
		Logger:               appLog,
		TrustProxy:           cfg.TrustProxy,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Execução e Graceful Shutdown
	go func() {
		appLog.Info("Servidor ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	appLog.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLog.Error("Desligamento do servidor forçado.", err)
	}

	appLog.Info("Servidor encerrado com sucesso.", nil)
	if syncer, ok := appLog.(interface{ Sync() error }); ok {
		syncer.Sync()
	}
}

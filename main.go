package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/ferreirogomes/galeria/blockchain_listener"
	"github.com/ferreirogomes/galeria/config"
	"github.com/ferreirogomes/galeria/handlers"
	"github.com/ferreirogomes/galeria/services"
	"github.com/ferreirogomes/galeria/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Falha ao carregar configuração: %v", err)
	}

	zlog, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Falha ao criar logger: %v", err)
	}
	defer zlog.Sync()
	logger := zlog.Sugar()

	db, err := storage.NewDB(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalw("falha fatal ao conectar ao banco de dados e aplicar migrações", "erro", err)
	}
	defer db.Close()

	if err := db.EnsureMarketplaceConfig(cfg.PlatformOwnerID, cfg.InitialFeeBps); err != nil {
		logger.Fatalw("falha ao inicializar configuração do marketplace", "erro", err)
	}

	var ledger services.Ledger
	if cfg.LedgerDisabled {
		logger.Warn("integração on-chain desligada; usando ledger local")
		ledger = services.OfflineLedger{}
	} else {
		solanaLedger, err := services.NewSolanaLedgerService(cfg.SolanaRPCURL, cfg.FeePayerKey, logger)
		if err != nil {
			logger.Fatalw("falha ao inicializar serviço Solana", "erro", err)
		}
		ledger = solanaLedger
	}

	marketplaceService := services.NewMarketplaceService(db, ledger, logger)
	accountService := services.NewAccountService(db, logger)

	accountHandler := handlers.NewAccountHandler(accountService)
	tokenHandler := handlers.NewTokenHandler(marketplaceService)
	marketHandler := handlers.NewMarketHandler(marketplaceService)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// O listener da blockchain roda em goroutine separada e reconcilia a
	// posse quando NFTs se movem fora do marketplace.
	if !cfg.LedgerDisabled {
		listener, err := blockchain_listener.NewBlockchainListener(
			cfg.SolanaRPCURL, cfg.SolanaWSURL, db, cfg.FeePayerKey, logger)
		if err != nil {
			logger.Fatalw("falha ao inicializar listener da blockchain", "erro", err)
		}
		go listener.StartListening(ctx)
		logger.Info("listener da blockchain iniciado")
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.URLFormat)

	r.Route("/accounts", func(r chi.Router) {
		r.Post("/", accountHandler.CreateAccount)
		r.Get("/{id}", accountHandler.GetAccountByID)
		r.Get("/{id}/balance", accountHandler.GetBalance)
		r.Post("/{id}/deposit", accountHandler.Deposit)
		r.Get("/{id}/tokens", accountHandler.GetAccountTokens)
	})

	r.Route("/tokens", func(r chi.Router) {
		r.Post("/", tokenHandler.CreateAndList)
		r.Get("/supply", tokenHandler.GetSupply)
		r.Get("/{id}", tokenHandler.GetTokenByID)
		r.Get("/{id}/listing", tokenHandler.GetListing)
		r.Get("/{id}/royalties", tokenHandler.GetRoyalties)
		r.Get("/{id}/metadata", tokenHandler.GetMetadata)
		r.Put("/{id}/metadata", tokenHandler.UpdateMetadata)
		r.Get("/{id}/attributes/{key}", tokenHandler.GetAttribute)
		r.Get("/{id}/events", tokenHandler.GetEvents)
		r.Get("/{id}/ownership", tokenHandler.GetOwnership)
		r.Get("/{id}/last-update", tokenHandler.GetLastUpdate)
		r.Get("/{id}/exists", tokenHandler.GetExists)
	})

	r.Route("/market", func(r chi.Router) {
		r.Post("/purchase", marketHandler.Purchase)
		r.Post("/cancel", marketHandler.Cancel)
		r.Get("/fee-rate", marketHandler.GetFeeRate)
		r.Put("/fee-rate", marketHandler.SetFeeRate)
		r.Post("/withdraw", marketHandler.Withdraw)
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		<-ctx.Done()
		logger.Info("encerrando servidor...")
		_ = server.Shutdown(context.Background())
	}()

	logger.Infow("servidor backend rodando", "porta", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalw("falha ao servir", "erro", err)
	}
}

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"

	"github.com/stockdesk/stockdesk/internal/app"
	"github.com/stockdesk/stockdesk/internal/dispatch"
	"github.com/stockdesk/stockdesk/internal/invoices"
	"github.com/stockdesk/stockdesk/internal/mail"
	"github.com/stockdesk/stockdesk/internal/masterdata/clients"
	"github.com/stockdesk/stockdesk/internal/masterdata/products"
	"github.com/stockdesk/stockdesk/internal/masterdata/suppliers"
	"github.com/stockdesk/stockdesk/internal/orders"
	"github.com/stockdesk/stockdesk/internal/platform/cache"
	"github.com/stockdesk/stockdesk/internal/platform/db"
	"github.com/stockdesk/stockdesk/internal/render"
	"github.com/stockdesk/stockdesk/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping server startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, duplicate-send suppression disabled", slog.Any("error", err))
	}
	defer func() {
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}
	}()

	vatPercent, err := decimal.NewFromString(cfg.DocVATPercent)
	if err != nil {
		logger.Error("parse DOC_VAT_PERCENT", slog.Any("error", err))
		os.Exit(1)
	}

	supplierRepo := suppliers.NewRepository(pool)
	supplierService := suppliers.NewService(supplierRepo)
	productRepo := products.NewRepository(pool)
	productService := products.NewService(productRepo)
	clientRepo := clients.NewRepository(pool)
	clientService := clients.NewService(clientRepo)

	sequence := orders.NewPGSequence(pool)
	orderRepo := orders.NewRepository(pool)
	if err := sequence.Sync(ctx); err != nil {
		logger.Error("sync order counter", slog.Any("error", err))
		os.Exit(1)
	}
	resolver := orders.NewResolver(supplierService, productService)
	orderService := orders.NewService(logger, orderRepo, sequence, resolver)

	invoiceRepo := invoices.NewRepository(pool)
	invoiceService := invoices.NewService(logger, invoiceRepo, clientService, supplierService)

	renderer := render.New(render.Options{
		CurrencyPrefix: cfg.DocCurrency,
		VATPercent:     vatPercent,
	})
	transport := mail.NewSMTPTransport(mail.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.SMTPFrom,
		Timeout:  cfg.SMTPTimeout,
	})
	var sendLock dispatch.SendLock
	if redisClient != nil {
		sendLock = dispatch.NewRedisSendLock(redisClient, time.Minute)
	}
	pipeline := dispatch.NewPipeline(logger, orderService, renderer, transport, sendLock, dispatch.IssuerConfig{
		Name:    cfg.CompanyName,
		Email:   cfg.CompanyEmail,
		Phone:   cfg.CompanyPhone,
		Address: cfg.CompanyAddress,
	})

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	orderHandler := orders.NewHandler(logger, orderService)
	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		SupplierHandler: suppliers.NewHandler(logger, supplierService),
		ProductHandler:  products.NewHandler(logger, productService),
		ClientHandler:   clients.NewHandler(logger, clientService),
		OrderHandler:    orderHandler,
		DispatchHandler: dispatch.NewHandler(logger, pipeline, orderHandler),
		InvoiceHandler:  invoices.NewHandler(logger, invoiceService),
		JobHandler:      jobs.NewHandler(asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr}), jobsClient, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		logger.Error("http server", slog.Any("error", err))
		os.Exit(1)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}

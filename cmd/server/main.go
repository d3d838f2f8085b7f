package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"supply_order_back_end/internal/cache"
	"supply_order_back_end/internal/cart"
	"supply_order_back_end/internal/config"
	"supply_order_back_end/internal/database"
	"supply_order_back_end/internal/handlers/admin"
	"supply_order_back_end/internal/handlers/carts"
	"supply_order_back_end/internal/handlers/catalog"
	"supply_order_back_end/internal/handlers/orders"
	"supply_order_back_end/internal/middleware"
	"supply_order_back_end/internal/ordering"
	"supply_order_back_end/internal/routes"
	"supply_order_back_end/internal/services"
	"supply_order_back_end/internal/store"
	"supply_order_back_end/internal/telemetry"
	"supply_order_back_end/internal/utils"
)

const serviceName = "supply-order-back-end"

func main() {
	cfg := config.Load()
	ctx := context.Background()

	shutdownTracing, err := telemetry.Init(ctx, serviceName, os.Getenv("TRACE_EXPORTER"))
	if err != nil {
		log.Printf("⚠️ Traces désactivées: %v", err)
	}

	database.ConnectDatabases(cfg.LedgerBackend == config.BackendScylla)
	defer database.CloseScylla()

	backend := openStore(cfg)

	var products store.ProductStore = backend
	var employees store.EmployeeStore = backend
	if database.Redis != nil {
		catalogCache := cache.NewCatalog(database.Redis, backend, backend, cache.CatalogCacheTTL)
		products, employees = catalogCache, catalogCache
		log.Println("✅ Cache Redis du catalogue activé")
	}

	var renderer ordering.Renderer = utils.HTMLRenderer{}
	if cfg.PDFEnabled {
		renderer = utils.ChromePDFRenderer{Timeout: 30 * time.Second}
	}

	svc := ordering.NewService(products, employees, backend, renderer)
	svc.Company = ordering.CompanyInfo{Name: cfg.CompanyName, Sites: cfg.CompanySites}

	var cartStore cart.Store = cart.NewMemoryStore()
	var cartWatch carts.Watcher
	var apiLimiter *cache.RateLimiter
	var events orders.EventSource
	if database.Redis != nil {
		redisCarts := cart.NewRedisStore(database.Redis, cart.DefaultTTL)
		cartStore, cartWatch = redisCarts, redisCarts
		bus := cache.NewEventBus(database.Redis)
		svc.Events = bus
		events = bus
		svc.Limiter = cache.NewRateLimiter(database.Redis, "submit", cfg.SubmitRateLimit, time.Minute)
		apiLimiter = cache.NewRateLimiter(database.Redis, "api", middleware.APIMaxRequests, middleware.APIWindow)
	}

	ordersHandler := &orders.Handler{Orders: svc, Events: events, Origins: cfg.CORSOrigins}
	adminHandler := &admin.Handler{
		Products:     products,
		Audit:        backend,
		JWTSecret:    cfg.JWTSecret,
		PasswordHash: cfg.AdminPasswordHash,
	}
	catalogHandler := &catalog.Handler{Products: products, Employees: employees}

	if database.MinIO != nil {
		objects := services.NewObjectStorage(database.MinIO, database.MinIOBucket())
		svc.Archive = objects
		ordersHandler.Documents = objects
		adminHandler.Images = objects
	}

	if database.Elastic != nil {
		search := services.NewSearch(database.Elastic)
		svc.Index = search
		catalogHandler.Search = search
		adminHandler.Search = search
		go indexCatalog(search, products)
	}

	if cfg.SMTPHost != "" && len(cfg.OrderNotifyTo) > 0 {
		svc.Notifier = &services.OrderMailer{
			SMTP: utils.SMTPConfig{
				Host:     cfg.SMTPHost,
				Port:     cfg.SMTPPort,
				Username: cfg.SMTPUser,
				Password: cfg.SMTPPassword,
				From:     cfg.SMTPFrom,
			},
			Recipients: cfg.OrderNotifyTo,
			BaseURL:    cfg.BaseURL,
		}
		log.Printf("📧 Notifications de commande vers %d destinataire(s)", len(cfg.OrderNotifyTo))
	} else {
		log.Println("⚠️ SMTP non configuré, pas de notification de commande")
	}

	r := gin.Default()
	routes.RegisterRoutes(r, routes.Deps{
		Catalog:     catalogHandler,
		Carts:       &carts.Handler{Carts: cartStore, Products: products, Orders: svc, Watch: cartWatch, Origins: cfg.CORSOrigins},
		Orders:      ordersHandler,
		Admin:       adminHandler,
		JWTSecret:   cfg.JWTSecret,
		CORSOrigins: cfg.CORSOrigins,
		Redis:       database.Redis,
		APILimiter:  apiLimiter,
		Backend:     cfg.LedgerBackend,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: otelhttp.NewHandler(r, serviceName),
	}

	go func() {
		log.Printf("🚀 Serveur de commandes lancé sur le port %s (registre: %s)", cfg.Port, cfg.LedgerBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Serveur arrêté: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("⏹️ Arrêt du serveur...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Arrêt forcé: %v", err)
	}
	if shutdownTracing != nil {
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Printf("⚠️ Export des traces interrompu: %v", err)
		}
	}
}

// openStore ouvre le backend du registre choisi par LEDGER_BACKEND
func openStore(cfg *config.Config) store.Store {
	switch cfg.LedgerBackend {
	case config.BackendScylla:
		s, err := store.NewScyllaStore(database.Scylla)
		if err != nil {
			log.Fatalf("❌ Backend ScyllaDB: %v", err)
		}
		log.Println("✅ Registre ScyllaDB")
		return s
	case config.BackendSheet:
		log.Println("✅ Registre tableur:", cfg.SheetAPIURL)
		return store.NewSheetStore(cfg.SheetAPIURL, telemetry.NewTracedHTTPClient(30*time.Second))
	}

	m := store.NewMemoryStore()
	m.Seed(demoProducts, demoEmployees)
	log.Println("⚠️ Registre en mémoire (données perdues à l'arrêt)")
	return m
}

// indexCatalog alimente l'index produits au démarrage
func indexCatalog(search *services.Search, products store.ProductStore) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	list, err := products.ListProducts(ctx)
	if err != nil {
		log.Printf("⚠️ Indexation du catalogue impossible: %v", err)
		return
	}
	if err := search.IndexProducts(ctx, list); err != nil {
		log.Printf("⚠️ Indexation du catalogue incomplète: %v", err)
		return
	}
	log.Printf("✅ %d produits indexés", len(list))
}

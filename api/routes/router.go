package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sangreguerrer/Netology-Final/api/controllers"
	"github.com/sangreguerrer/Netology-Final/api/middleware"
	authsvc "github.com/sangreguerrer/Netology-Final/internal/auth"
	basketsvc "github.com/sangreguerrer/Netology-Final/internal/basket"
	catalogsvc "github.com/sangreguerrer/Netology-Final/internal/catalog"
	checkoutsvc "github.com/sangreguerrer/Netology-Final/internal/checkout"
	contactssvc "github.com/sangreguerrer/Netology-Final/internal/contacts"
	inventorysvc "github.com/sangreguerrer/Netology-Final/internal/inventory"
	notificationsvc "github.com/sangreguerrer/Netology-Final/internal/notifications"
	orderssvc "github.com/sangreguerrer/Netology-Final/internal/orders"
	userssvc "github.com/sangreguerrer/Netology-Final/internal/users"
	"github.com/sangreguerrer/Netology-Final/pkg/config"
	"github.com/sangreguerrer/Netology-Final/pkg/logger"
	pkgredis "github.com/sangreguerrer/Netology-Final/pkg/redis"
)

// Dependencies carries everything the router wires into handlers.
type Dependencies struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            controllers.Pinger
	Redis         *pkgredis.Client
	Auth          authsvc.Service
	Basket        basketsvc.Service
	Checkout      checkoutsvc.Service
	Orders        orderssvc.Service
	Contacts      contactssvc.Service
	Catalog       catalogsvc.Service
	Partner       userssvc.PartnerService
	Inventory     inventorysvc.Service
	Notifications notificationsvc.Repository
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": deps.DB,
			"redis":    deps.Redis,
		}))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.Register(deps.Auth, logg))
		r.Post("/confirm", controllers.Confirm(deps.Auth, logg))
		r.Post("/login", controllers.Login(deps.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(deps.Redis, cfg.Checkout.IdempotencyTTL, logg))

		r.Route("/basket", func(r chi.Router) {
			r.Get("/", controllers.BasketGet(deps.Basket, logg))
			r.Post("/", controllers.BasketAdd(deps.Basket, logg))
			r.Put("/", controllers.BasketUpdate(deps.Basket, logg))
			r.Delete("/", controllers.BasketRemove(deps.Basket, logg))
		})

		r.Post("/order", controllers.PlaceOrder(deps.Checkout, logg))
		r.Get("/orders", controllers.OrderHistory(deps.Orders, logg))

		r.Route("/contacts", func(r chi.Router) {
			r.Get("/", controllers.ContactsList(deps.Contacts, logg))
			r.Post("/", controllers.ContactCreate(deps.Contacts, logg))
			r.Put("/", controllers.ContactUpdate(deps.Contacts, logg))
			r.Delete("/", controllers.ContactRemove(deps.Contacts, logg))
		})

		r.Get("/products", controllers.ProductsList(deps.Catalog, logg))
		r.Get("/categories", controllers.CategoriesList(deps.Catalog, logg))

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.NotificationsList(deps.Notifications, logg))
			r.Post("/{id}/read", controllers.NotificationRead(deps.Notifications, logg))
		})

		r.Route("/partner", func(r chi.Router) {
			r.Use(middleware.RequireShop(logg))
			r.Get("/state", controllers.PartnerState(deps.Partner, logg))
			r.Post("/state", controllers.PartnerSetState(deps.Partner, logg))
			r.Get("/orders", controllers.PartnerOrders(deps.Partner, deps.Orders, logg))
			r.Post("/stock", controllers.PartnerStockReload(deps.Partner, deps.Inventory, logg))
		})
	})

	return r
}

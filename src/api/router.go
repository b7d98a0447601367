package api

import (
	"net/http"

	"github.com/Chixide1/ZenWealth-sub001/src/cache"
	"github.com/Chixide1/ZenWealth-sub001/src/handlers"
	"github.com/Chixide1/ZenWealth-sub001/src/ledger"
	"github.com/Chixide1/ZenWealth-sub001/src/middleware"
	"github.com/Chixide1/ZenWealth-sub001/src/provider"
	"github.com/Chixide1/ZenWealth-sub001/src/store"
	syncer "github.com/Chixide1/ZenWealth-sub001/src/sync"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/plaid/plaid-go/v41/plaid"
)

type Deps struct {
	Pool         *pgxpool.Pool
	Store        store.LedgerStore
	Provider     provider.Provider
	PlaidClient  *plaid.APIClient
	Orchestrator *syncer.Orchestrator
	Pager        *ledger.Pager
	PageCache    *cache.PageCache
}

func NewRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", handlers.Login(deps.Pool))
		r.Post("/register", handlers.Register(deps.Pool))
		r.Post("/plaid/webhook", handlers.ProviderWebhook(deps.PlaidClient, deps.Orchestrator))

		// Protected routes
		r.With(middleware.JWTAuthMiddleware).Group(func(r chi.Router) {
			r.Post("/link/token", handlers.CreateLinkToken(deps.Provider))
			r.Post("/link/exchange", handlers.ExchangePublicToken(deps.Provider, deps.Store))

			r.Get("/connections", handlers.GetConnections(deps.Store))
			r.Delete("/connections/{connection_id}", handlers.UnlinkConnection(deps.Provider, deps.Store, deps.PageCache))
			r.Get("/connections/{connection_id}/accounts", handlers.GetAccounts(deps.Store))

			r.Get("/transactions", handlers.GetTransactions(deps.Orchestrator, deps.Pager, deps.PageCache))
			r.Post("/transactions/sync", handlers.SyncTransactions(deps.Orchestrator))
		})
	})

	return r
}

package http

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"warga/internal/cache"
	"warga/internal/core"
	"warga/internal/log"
	"warga/internal/middleware/ratelimit"
	"warga/internal/middleware/security"
	"warga/internal/middleware/trace"
	"warga/internal/services"
	"warga/internal/storage"
)

// Options tunes the server. Zero values use defaults.
type Options struct {
	Logger        *log.Logger
	RecapCacheTTL time.Duration
	SessionTTL    time.Duration
	RateLimit     ratelimit.Config
}

// Server is the JSON API over one services.App.
type Server struct {
	http.Server
	app      *services.App
	logger   *log.Logger
	limiter  *ratelimit.Limiter
	detector *security.Detector

	sessions   *cache.LRUCache[core.User]
	recaps     *cache.LRUCache[core.MonthlyRecap]
	recapGroup singleflight.Group
	recapMu    sync.Mutex // guards recapGen and pairs it with recaps writes
	recapGen   uint64
	janitor    *cache.Janitor

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// server.
func NewServer(addr string, app *services.App, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 12 * time.Hour
	}
	if opts.RateLimit.RequestsPerMinute == 0 {
		opts.RateLimit = ratelimit.DefaultConfig()
	}

	s := &Server{
		app:      app,
		logger:   opts.Logger.WithComponent(log.ComponentHTTP),
		limiter:  ratelimit.NewLimiter(opts.RateLimit),
		detector: security.NewDetector(),
		sessions: cache.NewLRUCache[core.User](1000, opts.SessionTTL),
		recaps:   cache.NewLRUCache[core.MonthlyRecap](120, opts.RecapCacheTTL),
		janitor:  cache.NewJanitor(opts.Logger),
	}

	// Any write can change a recap.
	app.State.Subscribe(func(key string) {
		if key != storage.KeyUser {
			s.invalidateRecaps()
		}
	})

	s.janitor.Register(s.sessions)
	s.janitor.Register(s.recaps)
	s.janitor.Start(context.Background(), 10*time.Minute)

	mux := http.NewServeMux()
	s.routes(mux)

	var handler http.Handler = mux
	handler = s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, s.detector.ExtractClientIP(r), log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded, try again later"})
	})(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.detector.Middleware(handler)
	handler = trace.NewMiddleware(opts.Logger, s.detector.ExtractClientIP).Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	staff := []core.Role{core.RoleAdmin, core.RoleTreasurer}
	admin := []core.Role{core.RoleAdmin}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/session", s.handleLogin)
	mux.HandleFunc("DELETE /api/session", s.handleLogout)
	mux.HandleFunc("GET /api/session", s.require(s.handleCurrentUser, staff...))

	mux.HandleFunc("GET /api/residents", s.require(s.handleListResidents, staff...))
	mux.HandleFunc("POST /api/residents", s.require(s.handleCreateResident, admin...))
	mux.HandleFunc("GET /api/residents/{id}", s.require(s.handleGetResident, staff...))
	mux.HandleFunc("PUT /api/residents/{id}", s.require(s.handleUpdateResident, admin...))
	mux.HandleFunc("DELETE /api/residents/{id}", s.require(s.handleDeleteResident, admin...))
	mux.HandleFunc("GET /api/households", s.require(s.handleListHouseholds, staff...))

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/arrears/{noKK}", s.handleArrears)
	mux.HandleFunc("GET /api/public/recap", s.handlePublicRecap)

	mux.HandleFunc("GET /api/dues/rates", s.require(s.handleGetRates, staff...))
	mux.HandleFunc("PUT /api/dues/rates", s.require(s.handleSetRates, staff...))
	mux.HandleFunc("POST /api/dues/payments", s.require(s.handleRecordPayment, staff...))
	mux.HandleFunc("GET /api/dues/history", s.require(s.handlePaymentHistory, staff...))

	mux.HandleFunc("GET /api/expenses", s.require(s.handleListExpenses, staff...))
	mux.HandleFunc("POST /api/expenses", s.require(s.handleCreateExpense, staff...))
	mux.HandleFunc("DELETE /api/expenses/{id}", s.require(s.handleDeleteExpense, staff...))
	mux.HandleFunc("GET /api/incomes", s.require(s.handleListIncomes, staff...))
	mux.HandleFunc("POST /api/incomes", s.require(s.handleCreateIncome, staff...))
	mux.HandleFunc("DELETE /api/incomes/{id}", s.require(s.handleDeleteIncome, staff...))

	mux.HandleFunc("GET /api/recap", s.require(s.handleRecap, staff...))
	mux.HandleFunc("GET /api/reports/{type}", s.require(s.handleReport, staff...))

	mux.HandleFunc("GET /api/admin-lists", s.require(s.handleAllAdminLists, admin...))
	mux.HandleFunc("GET /api/admin-lists/{category}", s.require(s.handleGetAdminList, admin...))
	mux.HandleFunc("POST /api/admin-lists/{category}", s.require(s.handleAddAdminListItem, admin...))
	mux.HandleFunc("DELETE /api/admin-lists/{category}/{item}", s.require(s.handleRemoveAdminListItem, admin...))
}

// Shutdown stops background work and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.janitor.Stop()
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	if err := s.app.State.Ping(ctx); err != nil {
		s.logger.WarnContext(r.Context(), "Readiness check failed", log.FieldError, err.Error())
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func recapKey(year, month int) string {
	return strconv.Itoa(year) + "-" + strconv.Itoa(month)
}

func (s *Server) invalidateRecaps() {
	s.recapMu.Lock()
	defer s.recapMu.Unlock()
	s.recapGen++
	s.recaps.Purge()
}

func (s *Server) recapGeneration() uint64 {
	s.recapMu.Lock()
	defer s.recapMu.Unlock()
	return s.recapGen
}

// storeRecap caches rc unless a write happened since gen was read. The
// check and the store share the lock taken by invalidateRecaps.
func (s *Server) storeRecap(key string, gen uint64, rc core.MonthlyRecap) bool {
	s.recapMu.Lock()
	defer s.recapMu.Unlock()
	if s.recapGen != gen {
		return false
	}
	s.recaps.Set(key, rc)
	return true
}

// recap returns the cached recap for a month, computing it once for
// concurrent callers on a miss.
func (s *Server) recap(ctx context.Context, year, month int) (core.MonthlyRecap, error) {
	key := recapKey(year, month)
	if rc, ok := s.recaps.Get(key); ok {
		s.logger.DebugContext(ctx, "Recap cache hit", log.FieldYear, year, log.FieldMonth, month)
		return rc, nil
	}
	v, err, _ := s.recapGroup.Do(key, func() (any, error) {
		gen := s.recapGeneration()
		rc, err := s.app.Reports.Recap(year, month)
		if err != nil {
			return core.MonthlyRecap{}, err
		}
		s.storeRecap(key, gen, rc)
		return rc, nil
	})
	if err != nil {
		return core.MonthlyRecap{}, err
	}
	return v.(core.MonthlyRecap), nil
}

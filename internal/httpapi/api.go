package httpapi

import (
	"net/http"

	"zenclass.org/internal/auth"
	"zenclass.org/internal/booking"
	"zenclass.org/internal/obs"
)

// API is the HTTP layer: routing, the authentication filter and the
// translation of service outcomes into status codes.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string

	auth     *auth.Service
	codec    *auth.TokenCodec
	resolver *auth.Resolver
	users    auth.UserStore
	bookings *booking.Service

	rateBurst  int
	ratePerSec int
}

// Config wires the collaborating services into the API.
type Config struct {
	Version    string
	ReadyProbe ReadyProbe
	Auth       *auth.Service
	Codec      *auth.TokenCodec
	Resolver   *auth.Resolver
	Users      auth.UserStore
	Bookings   *booking.Service
}

func New(cfg Config) *API {
	a := &API{
		mux:        http.NewServeMux(),
		readyProbe: cfg.ReadyProbe,
		version:    cfg.Version,
		auth:       cfg.Auth,
		codec:      cfg.Codec,
		resolver:   cfg.Resolver,
		users:      cfg.Users,
		bookings:   cfg.Bookings,
		rateBurst:  50,
		ratePerSec: 25,
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/api/info", a.Info)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	// credential issuing endpoints bypass the authorization gate
	a.mux.HandleFunc("/api/auth/login", a.handleLogin)
	a.mux.HandleFunc("/api/auth/register", a.handleRegister)

	// protected resources
	a.mux.Handle("/api/session", a.requireAuth(http.HandlerFunc(a.handleSessionCollection)))
	a.mux.Handle("/api/session/", a.requireAuth(http.HandlerFunc(a.handleSessionResource)))
	a.mux.Handle("/api/teacher", a.requireAuth(http.HandlerFunc(a.handleTeacherCollection)))
	a.mux.Handle("/api/teacher/", a.requireAuth(http.HandlerFunc(a.handleTeacherResource)))
	a.mux.Handle("/api/user/", a.requireAuth(http.HandlerFunc(a.handleUserResource)))

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the fully wrapped handler chain. The identity filter runs
// inside the generic middleware so every route, public or protected, sees a
// populated context when a valid credential is present.
func (a *API) Handler() http.Handler {
	h := a.withAuth(a.mux)
	h = MaxBodyBytes(h, 1<<20)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = LoggingJSON(h)
	h = RequestID(h)
	h = CORS(h)
	h = SecurityHeaders(h)
	return obs.Instrument(h)
}

package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	billing "meridian/contexts/billing/customer-meter-service"
	billingerrors "meridian/contexts/billing/customer-meter-service/domain/errors"
	billinghttp "meridian/contexts/billing/customer-meter-service/transport/http"
	authorization "meridian/contexts/identity-access/authorization-service"
	authzerrors "meridian/contexts/identity-access/authorization-service/domain/errors"
	authzhttp "meridian/contexts/identity-access/authorization-service/transport/http"
	organizations "meridian/contexts/organizations/organization-service"
	orgerrors "meridian/contexts/organizations/organization-service/domain/errors"
	orghttp "meridian/contexts/organizations/organization-service/transport/http"
	"meridian/internal/platform/observability"

	_ "meridian/internal/platform/httpserver/docs"
)

type Server struct {
	mux           *http.ServeMux
	logger        *slog.Logger
	addr          string
	auth          *Authenticator
	metrics       *observability.MetricsCollector
	organizations organizations.Module
	billing       billing.Module
	authorization authorization.Module
}

func New(
	organizationsModule organizations.Module,
	billingModule billing.Module,
	authorizationModule authorization.Module,
	auth *Authenticator,
	metrics *observability.MetricsCollector,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:           http.NewServeMux(),
		logger:        logger,
		addr:          addr,
		auth:          auth,
		metrics:       metrics,
		organizations: organizationsModule,
		billing:       billingModule,
		authorization: authorizationModule,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the routed mux, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))
	}

	s.route("GET /v1/organizations", s.handleListOrganizations)
	s.route("POST /v1/organizations", s.handleCreateOrganization)
	s.route("GET /v1/organizations/{organization_id}", s.handleGetOrganization)
	s.route("PATCH /v1/organizations/{organization_id}", s.handleUpdateOrganization)
	s.route("GET /v1/organizations/{organization_id}/account", s.handleGetAccount)
	s.route("PATCH /v1/organizations/{organization_id}/account", s.handleSetAccount)
	s.route("GET /v1/organizations/{organization_id}/members", s.handleListMembers)

	s.route("POST /v1/events", s.handleIngestEvent)
	s.route("GET /v1/customers/{customer_id}/meters", s.handleListCustomerMeters)

	s.route("POST /api/authz/v1/check", s.handleAuthzCheck)
}

// route wires a handler with request metrics keyed by the route pattern, so
// path parameters do not explode label cardinality.
func (s *Server) route(pattern string, handler http.HandlerFunc) {
	if s.metrics == nil {
		s.mux.HandleFunc(pattern, handler)
		return
	}
	s.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		handler(recorder, r)
		s.metrics.HTTPRequestsTotal.WithLabelValues(r.Method, pattern, strconv.Itoa(recorder.status)).Inc()
		s.metrics.HTTPRequestDuration.WithLabelValues(r.Method, pattern).Observe(time.Since(started).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) principal(w http.ResponseWriter, r *http.Request) (Principal, bool) {
	principal, err := s.auth.Principal(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_token", "bearer token could not be verified")
		return Principal{}, false
	}
	return principal, true
}

func (s *Server) handleListOrganizations(w http.ResponseWriter, r *http.Request) {
	principal, ok := s.principal(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	limit := 0
	offset := 0
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
			return
		}
		limit = parsed
	}
	if raw := query.Get("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_offset", "offset must be an integer")
			return
		}
		offset = parsed
	}

	resp, err := s.organizations.Handler.ListOrganizationsHandler(r.Context(), principal.orgCaller(), query.Get("slug"), limit, offset)
	if err != nil {
		writeOrganizationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateOrganization(w http.ResponseWriter, r *http.Request) {
	principal, ok := s.principal(w, r)
	if !ok {
		return
	}

	var req orghttp.CreateOrganizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.organizations.Handler.CreateOrganizationHandler(r.Context(), principal.orgCaller(), req)
	if err != nil {
		writeOrganizationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetOrganization(w http.ResponseWriter, r *http.Request) {
	principal, ok := s.principal(w, r)
	if !ok {
		return
	}
	organizationID, ok := parsePathID(w, r, "organization_id")
	if !ok {
		return
	}

	resp, err := s.organizations.Handler.GetOrganizationHandler(r.Context(), principal.orgCaller(), organizationID)
	if err != nil {
		writeOrganizationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateOrganization(w http.ResponseWriter, r *http.Request) {
	principal, ok := s.principal(w, r)
	if !ok {
		return
	}
	organizationID, ok := parsePathID(w, r, "organization_id")
	if !ok {
		return
	}

	var req orghttp.UpdateOrganizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.organizations.Handler.UpdateOrganizationHandler(r.Context(), principal.orgCaller(), organizationID, req)
	if err != nil {
		writeOrganizationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	principal, ok := s.principal(w, r)
	if !ok {
		return
	}
	organizationID, ok := parsePathID(w, r, "organization_id")
	if !ok {
		return
	}

	resp, err := s.organizations.Handler.GetAccountHandler(r.Context(), principal.orgCaller(), organizationID)
	if err != nil {
		writeOrganizationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetAccount(w http.ResponseWriter, r *http.Request) {
	principal, ok := s.principal(w, r)
	if !ok {
		return
	}
	organizationID, ok := parsePathID(w, r, "organization_id")
	if !ok {
		return
	}

	var req orghttp.SetAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_account_id", "account_id must be a uuid")
		return
	}

	resp, err := s.organizations.Handler.SetAccountHandler(r.Context(), principal.orgCaller(), organizationID, accountID)
	if err != nil {
		writeOrganizationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	principal, ok := s.principal(w, r)
	if !ok {
		return
	}
	organizationID, ok := parsePathID(w, r, "organization_id")
	if !ok {
		return
	}

	resp, err := s.organizations.Handler.ListMembersHandler(r.Context(), principal.orgCaller(), organizationID)
	if err != nil {
		writeOrganizationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleIngestEvent(w http.ResponseWriter, r *http.Request) {
	principal, ok := s.principal(w, r)
	if !ok {
		return
	}

	var req billinghttp.IngestEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_customer_id", "customer_id must be a uuid")
		return
	}

	resp, err := s.billing.Handler.IngestEventHandler(r.Context(), principal.billingCaller(), customerID, req)
	if err != nil {
		writeBillingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListCustomerMeters(w http.ResponseWriter, r *http.Request) {
	principal, ok := s.principal(w, r)
	if !ok {
		return
	}
	customerID, ok := parsePathID(w, r, "customer_id")
	if !ok {
		return
	}

	resp, err := s.billing.Handler.ListCustomerMetersHandler(r.Context(), principal.billingCaller(), customerID)
	if err != nil {
		writeBillingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAuthzCheck(w http.ResponseWriter, r *http.Request) {
	var req authzhttp.CheckAccessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.authorization.Handler.CheckAccessHandler(r.Context(), req)
	if err != nil {
		writeAuthzDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeOrganizationDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, orgerrors.ErrOrganizationNotFound):
		writeError(w, http.StatusNotFound, "organization_not_found", err.Error())
	case errors.Is(err, orgerrors.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, "account_not_found", err.Error())
	case errors.Is(err, orgerrors.ErrSlugTaken):
		writeError(w, http.StatusConflict, "slug_taken", err.Error())
	case errors.Is(err, orgerrors.ErrNotPermitted):
		writeError(w, http.StatusForbidden, "not_permitted", err.Error())
	case errors.Is(err, orgerrors.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, orgerrors.ErrInvalidOrganizationInput):
		writeError(w, http.StatusBadRequest, "invalid_organization_input", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeBillingDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, billingerrors.ErrCustomerNotFound):
		writeError(w, http.StatusNotFound, "customer_not_found", err.Error())
	case errors.Is(err, billingerrors.ErrNotPermitted):
		writeError(w, http.StatusForbidden, "not_permitted", err.Error())
	case errors.Is(err, billingerrors.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, billingerrors.ErrInvalidEventInput):
		writeError(w, http.StatusBadRequest, "invalid_event_input", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeAuthzDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authzerrors.ErrInvalidSubjectID),
		errors.Is(err, authzerrors.ErrInvalidAccessType),
		errors.Is(err, authzerrors.ErrInvalidResource):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, orghttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func parsePathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_"+name, name+" must be a uuid")
		return uuid.UUID{}, false
	}
	return id, true
}

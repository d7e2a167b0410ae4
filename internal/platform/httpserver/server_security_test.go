package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	billing "meridian/contexts/billing/customer-meter-service"
	billingentities "meridian/contexts/billing/customer-meter-service/domain/entities"
	authorization "meridian/contexts/identity-access/authorization-service"
	organizations "meridian/contexts/organizations/organization-service"
	orgmemory "meridian/contexts/organizations/organization-service/adapters/memory"
	orgentities "meridian/contexts/organizations/organization-service/domain/entities"
	"meridian/internal/platform/authz"
	"meridian/internal/platform/observability"
)

const testSecret = "test-secret"

type stubEnqueuer struct {
	calls []string
}

func (e *stubEnqueuer) Enqueue(_ context.Context, taskName string, targetID uuid.UUID) error {
	e.calls = append(e.calls, taskName+":"+targetID.String())
	return nil
}

type testEnv struct {
	server   *Server
	orgStore *orgmemory.Store
	billing  billing.Module
	tasks    *stubEnqueuer
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	orgStore := orgmemory.NewStore()
	bridge := authz.NewBridge(orgStore, orgmemory.SystemClock{}, nil, nil)
	tasks := &stubEnqueuer{}

	orgModule := organizations.NewModule(organizations.Dependencies{
		Organizations: orgStore,
		Accounts:      orgStore,
		Members:       orgStore,
		Authorizer:    bridge,
		Tasks:         tasks,
		Clock:         orgmemory.SystemClock{},
		IDGenerator:   orgmemory.UUIDGenerator{},
	})
	orgModule.Store = orgStore
	billingModule := billing.NewInMemoryModule(bridge, tasks, nil)
	authzModule := authorization.NewInMemoryModule(nil)

	server := New(
		orgModule,
		billingModule,
		authzModule,
		NewAuthenticator(testSecret),
		observability.NewMetricsCollector(),
		nil,
		":0",
	)
	return testEnv{server: server, orgStore: orgStore, billing: billingModule, tasks: tasks}
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func userToken(t *testing.T, userID uuid.UUID) string {
	return signToken(t, jwt.MapClaims{"sub": userID.String(), "kind": "user"})
}

func doRequest(t *testing.T, env testEnv, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(recorder, req)
	return recorder
}

func seedPrivateOrganization(env testEnv, memberID uuid.UUID, admin bool) orgentities.Organization {
	organization := orgentities.Organization{
		ID:         uuid.New(),
		Name:       "Acme",
		Slug:       "acme",
		Public:     false,
		CreatedAt:  time.Now(),
		ModifiedAt: time.Now(),
	}
	env.orgStore.AddOrganization(organization)
	env.orgStore.AddMember(orgentities.Member{
		UserID:         memberID,
		OrganizationID: organization.ID,
		Admin:          admin,
		CreatedAt:      time.Now(),
	})
	return organization
}

func TestInvalidTokenRejected(t *testing.T) {
	env := newTestEnv(t)
	recorder := doRequest(t, env, http.MethodGet, "/v1/organizations", "not-a-jwt", nil)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", recorder.Code)
	}
}

func TestPrivateOrganizationHiddenFromStrangers(t *testing.T) {
	env := newTestEnv(t)
	memberID := uuid.New()
	organization := seedPrivateOrganization(env, memberID, false)

	// A member sees the organization.
	recorder := doRequest(t, env, http.MethodGet, "/v1/organizations/"+organization.ID.String(), userToken(t, memberID), nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("member read status = %d, want 200", recorder.Code)
	}

	// A stranger gets the same 404 as for a missing organization.
	recorder = doRequest(t, env, http.MethodGet, "/v1/organizations/"+organization.ID.String(), userToken(t, uuid.New()), nil)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("stranger read status = %d, want 404", recorder.Code)
	}
	missing := doRequest(t, env, http.MethodGet, "/v1/organizations/"+uuid.New().String(), userToken(t, uuid.New()), nil)
	if missing.Code != http.StatusNotFound {
		t.Fatalf("missing read status = %d, want 404", missing.Code)
	}
	if recorder.Body.String() != missing.Body.String() {
		t.Errorf("denied and missing responses differ:\n%s\n%s", recorder.Body.String(), missing.Body.String())
	}
}

func TestPlainMemberCannotUpdateOrganization(t *testing.T) {
	env := newTestEnv(t)
	memberID := uuid.New()
	organization := seedPrivateOrganization(env, memberID, false)

	name := "Renamed"
	recorder := doRequest(t, env, http.MethodPatch, "/v1/organizations/"+organization.ID.String(), userToken(t, memberID), map[string]any{"name": name})
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("plain member update status = %d, want 403", recorder.Code)
	}
}

func TestCreateOrganization(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]any{"name": "New Org", "slug": "new-org", "public": true}
	recorder := doRequest(t, env, http.MethodPost, "/v1/organizations", userToken(t, uuid.New()), body)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201: %s", recorder.Code, recorder.Body.String())
	}

	anonymous := doRequest(t, env, http.MethodPost, "/v1/organizations", "", body)
	if anonymous.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous create status = %d, want 401", anonymous.Code)
	}
}

func TestMemberListingRequiresMembership(t *testing.T) {
	env := newTestEnv(t)
	memberID := uuid.New()
	organization := seedPrivateOrganization(env, memberID, false)

	path := "/v1/organizations/" + organization.ID.String() + "/members"
	if recorder := doRequest(t, env, http.MethodGet, path, "", nil); recorder.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous roster status = %d, want 401", recorder.Code)
	}
	if recorder := doRequest(t, env, http.MethodGet, path, userToken(t, memberID), nil); recorder.Code != http.StatusOK {
		t.Fatalf("member roster status = %d, want 200", recorder.Code)
	}
}

func TestEventIngestionAuthorization(t *testing.T) {
	env := newTestEnv(t)
	adminID := uuid.New()
	organization := seedPrivateOrganization(env, adminID, true)

	customer := billingentities.Customer{
		ID:             uuid.New(),
		OrganizationID: organization.ID,
		ExternalID:     "cus_1",
		CreatedAt:      time.Now(),
	}
	env.billing.Store.AddCustomer(customer)

	body := map[string]any{"customer_id": customer.ID.String(), "name": "api.request", "value": 3}

	recorder := doRequest(t, env, http.MethodPost, "/v1/events", userToken(t, adminID), body)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("admin ingest status = %d, want 201: %s", recorder.Code, recorder.Body.String())
	}
	if len(env.tasks.calls) == 0 {
		t.Error("ingestion must schedule a recomputation task")
	}

	// A stranger cannot even learn the customer exists.
	recorder = doRequest(t, env, http.MethodPost, "/v1/events", userToken(t, uuid.New()), body)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("stranger ingest status = %d, want 404", recorder.Code)
	}
}

func TestCustomerMeterListing(t *testing.T) {
	env := newTestEnv(t)
	adminID := uuid.New()
	organization := seedPrivateOrganization(env, adminID, true)

	customer := billingentities.Customer{ID: uuid.New(), OrganizationID: organization.ID}
	env.billing.Store.AddCustomer(customer)

	path := "/v1/customers/" + customer.ID.String() + "/meters"
	if recorder := doRequest(t, env, http.MethodGet, path, userToken(t, adminID), nil); recorder.Code != http.StatusOK {
		t.Fatalf("member meters status = %d, want 200", recorder.Code)
	}
	if recorder := doRequest(t, env, http.MethodGet, path, userToken(t, uuid.New()), nil); recorder.Code != http.StatusNotFound {
		t.Fatalf("stranger meters status = %d, want 404", recorder.Code)
	}
}

func TestAuthzCheckEndpoint(t *testing.T) {
	env := newTestEnv(t)
	body := map[string]any{
		"subject_kind":  "anonymous",
		"access":        "read",
		"resource_type": "organization",
		"resource_id":   uuid.New().String(),
		"resource":      map[string]any{"public": true},
	}
	recorder := doRequest(t, env, http.MethodPost, "/api/authz/v1/check", "", body)
	if recorder.Code != http.StatusOK {
		t.Fatalf("authz check status = %d, want 200: %s", recorder.Code, recorder.Body.String())
	}

	var resp struct {
		Allowed bool   `json:"allowed"`
		Reason  string `json:"reason"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Allowed {
		t.Errorf("anonymous read of a public organization should be allowed, reason %q", resp.Reason)
	}
}

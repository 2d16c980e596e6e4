package http

import (
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/recycle-disposals/internal/auth"
	"github.com/nurpe/recycle-disposals/internal/excel"
	"github.com/nurpe/recycle-disposals/internal/http/middleware"
	"github.com/nurpe/recycle-disposals/internal/metrics"
	"github.com/nurpe/recycle-disposals/internal/model"
	"github.com/nurpe/recycle-disposals/internal/pdf"
	"github.com/nurpe/recycle-disposals/internal/service"
	"github.com/nurpe/recycle-disposals/internal/testutil"
)

type testEnv struct {
	router       http.Handler
	store        *testutil.Store
	company      model.Company
	companyToken string
	worker       model.Worker
	workerToken  string
	otherToken   string
	plastic      model.Material
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	testutil.SetupRouter()

	store := testutil.NewStore()
	m := metrics.New()
	deps := service.Deps{
		Tx:        store,
		Disposals: store,
		Companies: store,
		Workers:   store,
		Catalog:   store,
		Publisher: &testutil.MemoryPublisher{},
		Metrics:   m,
		Log:       zerolog.Nop(),
	}
	handler := NewHandler(Services{
		Disposals: service.NewDisposalService(deps),
		Companies: service.NewCompanyService(deps),
		Catalog:   service.NewCatalogService(deps),
		Workers:   service.NewWorkerService(deps),
		Reports:   service.NewReportService(deps, excel.NewGenerator(), pdf.NewGenerator()),
	}, zerolog.Nop())
	router := NewRouter(handler, middleware.Auth(auth.NewParser(testutil.JWTSecret)), RouterOptions{
		Environment: "test",
		Log:         zerolog.Nop(),
		Metrics:     m,
	})

	env := &testEnv{router: router, store: store}
	env.company = store.AddCompany(model.Company{
		Name:      "Green Works",
		Addresses: []model.Address{{Name: "HQ", Street: "Abay 1", City: "Almaty", Country: "KZ"}},
	})
	env.companyToken = testutil.GenerateTestToken(model.Principal{UserID: env.company.UserID, Role: model.RoleCompany})
	env.worker = store.AddWorker(model.Worker{Name: "Aidar"})
	env.workerToken = testutil.GenerateTestToken(model.Principal{UserID: env.worker.UserID, Role: model.RoleWorker})
	other := store.AddWorker(model.Worker{Name: "Dana"})
	env.otherToken = testutil.GenerateTestToken(model.Principal{UserID: other.UserID, Role: model.RoleWorker})
	env.plastic = store.AddMaterial(model.Material{
		Name:             "PET bottles",
		Type:             model.MaterialPlastic,
		Unit:             model.UnitKg,
		ConversionFactor: 1,
		PricePerUnit:     5,
		Impact:           model.ImpactCoefficients{CO2SavedPerUnit: 2},
	})
	return env
}

func (e *testEnv) createDisposal(t *testing.T) model.Disposal {
	t.Helper()
	rec := testutil.DoRequest(e.router, http.MethodPost, "/disposals", map[string]interface{}{
		"company":       e.company.ID.String(),
		"disposal_date": "2026-05-01",
		"address_name":  "HQ",
	}, e.companyToken)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var d model.Disposal
	require.NoError(t, testutil.ParseResponse(rec, &d))
	return d
}

func TestRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	rec := testutil.DoRequest(env.router, http.MethodGet, "/disposals", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = testutil.DoRequest(env.router, http.MethodGet, "/disposals", nil, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = testutil.DoRequest(env.router, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDisposalLifecycle(t *testing.T) {
	env := newTestEnv(t)
	d := env.createDisposal(t)
	assert.Equal(t, model.DisposalPending, d.Status)
	path := "/disposals/" + d.ID.String()

	rec := testutil.DoRequest(env.router, http.MethodPut, path+"/add-material", map[string]interface{}{
		"material": env.plastic.ID.String(),
		"quantity": 3,
	}, env.companyToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, testutil.ParseResponse(rec, &d))
	assert.InDelta(t, 15, d.TotalPrice, 1e-9)

	rec = testutil.DoRequest(env.router, http.MethodGet, path+"/calculate-stats", nil, env.workerToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var totals model.ImpactTotals
	require.NoError(t, testutil.ParseResponse(rec, &totals))
	assert.InDelta(t, 6, totals.CO2Saved, 1e-9)

	rec = testutil.DoRequest(env.router, http.MethodPut, path+"/accept", nil, env.workerToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = testutil.DoRequest(env.router, http.MethodPut, path+"/accept", nil, env.otherToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = testutil.DoRequest(env.router, http.MethodPut, path+"/complete", nil, env.workerToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var completed model.Disposal
	require.NoError(t, testutil.ParseResponse(rec, &completed))
	assert.Equal(t, d.ID, completed.ID)
	assert.Equal(t, model.DisposalCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)

	rec = testutil.DoRequest(env.router, http.MethodGet, "/companies/"+env.company.ID.String(), nil, env.companyToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var view model.Company
	require.NoError(t, testutil.ParseResponse(rec, &view))
	assert.Equal(t, int64(1), view.Stats.TotalDisposals)
	assert.InDelta(t, 6, view.Stats.CO2Saved, 1e-9)

	rec = testutil.DoRequest(env.router, http.MethodPut, path+"/complete", nil, env.workerToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = testutil.DoRequest(env.router, http.MethodPut, "/companies/"+env.company.ID.String()+"/add-disposal", map[string]string{
		"disposal_id": d.ID.String(),
	}, env.companyToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var company model.Company
	require.NoError(t, testutil.ParseResponse(rec, &company))
	assert.Equal(t, int64(1), company.Stats.TotalDisposals)
}

func TestRejectWithoutReason(t *testing.T) {
	env := newTestEnv(t)
	d := env.createDisposal(t)
	path := "/disposals/" + d.ID.String() + "/reject"

	rec := testutil.DoRequest(env.router, http.MethodPut, path, map[string]string{}, env.workerToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, model.DisposalPending, env.store.Disposal(d.ID).Status)

	rec = testutil.DoRequest(env.router, http.MethodPut, path, map[string]string{"rejection_message": "Closed"}, env.workerToken)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestErrorMapping(t *testing.T) {
	env := newTestEnv(t)
	d := env.createDisposal(t)

	rec := testutil.DoRequest(env.router, http.MethodGet, "/disposals/"+uuid.NewString(), nil, env.workerToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = testutil.DoRequest(env.router, http.MethodGet, "/disposals/not-a-uuid", nil, env.workerToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = testutil.DoRequest(env.router, http.MethodPut, "/companies/"+env.company.ID.String()+"/name", map[string]string{
		"name": "Hijacked",
	}, env.workerToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = testutil.DoRequest(env.router, http.MethodPut, "/disposals/"+d.ID.String()+"/accept", nil, env.workerToken)
	require.Equal(t, http.StatusOK, rec.Code)
	env.store.FailOn("SaveCompanyStats", errors.New("connection reset"))
	rec = testutil.DoRequest(env.router, http.MethodPut, "/disposals/"+d.ID.String()+"/complete", nil, env.workerToken)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, model.DisposalAccepted, env.store.Disposal(d.ID).Status)

	env.store.FailOn("ListWorkers", errors.New("boom"))
	rec = testutil.DoRequest(env.router, http.MethodGet, "/workers", nil, env.workerToken)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, testutil.ParseResponse(rec, &body))
	assert.Equal(t, "internal error", body["error"])
}

func TestPickUpScheduleConflict(t *testing.T) {
	env := newTestEnv(t)
	path := "/companies/" + env.company.ID.String() + "/pick-up-schedule"
	body := map[string]string{"day": "Monday", "time": "09:00", "address_name": "HQ"}

	rec := testutil.DoRequest(env.router, http.MethodPut, path, body, env.companyToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = testutil.DoRequest(env.router, http.MethodPut, path, body, env.companyToken)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = testutil.DoRequest(env.router, http.MethodPut, path, map[string]string{"day": "Monday"}, env.companyToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = testutil.DoRequest(env.router, http.MethodDelete, path, nil, env.companyToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var company model.Company
	require.NoError(t, testutil.ParseResponse(rec, &company))
	assert.Empty(t, company.PickUpSchedule)
}

func TestMaterialSearch(t *testing.T) {
	env := newTestEnv(t)

	rec := testutil.DoRequest(env.router, http.MethodGet, "/materials/search?search=pet&type=plastic", nil, env.workerToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var page service.MaterialPage
	require.NoError(t, testutil.ParseResponse(rec, &page))
	assert.Equal(t, int64(1), page.TotalItems)
	require.Len(t, page.Materials, 1)

	rec = testutil.DoRequest(env.router, http.MethodGet, "/materials/search?page=zero", nil, env.workerToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = testutil.DoRequest(env.router, http.MethodGet, "/materials/search?type=wood", nil, env.workerToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportDownloads(t *testing.T) {
	env := newTestEnv(t)
	path := "/companies/" + env.company.ID.String()

	rec := testutil.DoRequest(env.router, http.MethodGet, path+"/impact-report", nil, env.companyToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "impact-report_green-works_")

	rec = testutil.DoRequest(env.router, http.MethodGet, path+"/certificate", nil, env.companyToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))

	rec = testutil.DoRequest(env.router, http.MethodGet, path+"/certificate", nil, env.workerToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	testutil.DoRequest(env.router, http.MethodGet, "/workers", nil, env.workerToken)

	rec := testutil.DoRequest(env.router, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",route="/workers",status="200"} 1`)
}

func TestWorkerLocation(t *testing.T) {
	env := newTestEnv(t)
	path := "/workers/" + env.worker.ID.String() + "/location"

	rec := testutil.DoRequest(env.router, http.MethodPut, path, map[string]float64{"lat": 43.2, "lng": 76.9}, env.workerToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = testutil.DoRequest(env.router, http.MethodPut, path, map[string]float64{"lat": 43.2}, env.workerToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

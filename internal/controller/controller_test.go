package controller

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"regdesk-be/internal/entity"
	"regdesk-be/internal/pkg/logger"
	"regdesk-be/internal/pkg/metrics"
	"regdesk-be/internal/pkg/serverutils"
	"regdesk-be/internal/repository/repotest"
	"regdesk-be/internal/service"
	"regdesk-be/pkg/admin/category"
	adminEvents "regdesk-be/pkg/admin/events"
	"regdesk-be/pkg/admin/expiry"
	"regdesk-be/pkg/admin/lifecycle"
	"regdesk-be/pkg/admin/transfer"
	"regdesk-be/pkg/changefeed"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "controller-secret"

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testApp struct {
	app    *fiber.App
	store  *repotest.Store
	token  string
	farmer *entity.Category
	fisher *entity.Category
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	store := repotest.NewStore()
	log := logger.NewNop()
	m := metrics.New(prometheus.NewRegistry())
	publisher := &adminEvents.Recorder{}
	directory := category.NewDirectory(store.Factory(), log)
	manager := lifecycle.NewManager(directory, &changefeed.Counter{}, publisher, m, log)
	workflow := transfer.NewWorkflow(directory, publisher, m, log)

	app := fiber.New(fiber.Config{ErrorHandler: serverutils.ErrorHandler(log)})
	admin := app.Group("/api/admin", serverutils.AdminMiddleware(secret))
	NewRegistrationController(service.NewRegistrationService(store.Factory(), manager, expiry.NewClassifier(3), time.UTC, log)).RegisterRoutes(admin)
	NewCategoryController(service.NewCategoryService(store.Factory(), directory)).RegisterRoutes(admin)
	NewTransferController(service.NewTransferService(store.Factory(), workflow, directory)).RegisterRoutes(admin)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": "admin", "user_id": uuid.NewString(), "email": "desk@example.com",
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	return &testApp{
		app:    app,
		store:  store,
		token:  token,
		farmer: store.AddCategory(&entity.Category{NameEnglish: "Farmer", NameMalayalam: "കർഷകൻ", ExpiryDays: 30, IsActive: true}),
		fisher: store.AddCategory(&entity.Category{NameEnglish: "Fisher", NameMalayalam: "മത്സ്യത്തൊഴിലാളി", ExpiryDays: 90, IsActive: true}),
	}
}

func (a *testApp) do(t *testing.T, method, path, body string) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+a.token)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := a.app.Test(req)
	require.NoError(t, err)

	raw, _ := io.ReadAll(resp.Body)
	var env envelope
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &env))
	}
	return resp, env
}

func (a *testApp) pending(name string) *entity.Registration {
	return a.store.AddRegistration(&entity.Registration{
		CustomerId:   "C-" + uuid.NewString()[:6],
		FullName:     name,
		MobileNumber: "9847011111",
		CategoryId:   a.farmer.Id,
		Status:       entity.RegistrationStatusPending,
	})
}

func TestRoutesRequireAdminToken(t *testing.T) {
	a := newTestApp(t)
	resp, err := a.app.Test(httptest.NewRequest("GET", "/api/admin/registrations", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRegistrationLifecycleEndpoints(t *testing.T) {
	a := newTestApp(t)
	reg := a.pending("Meera")
	base := "/api/admin/registrations/" + reg.Id.String()

	resp, env := a.do(t, "GET", "/api/admin/registrations?status=pending", "")
	assert.Equal(t, 200, resp.StatusCode)
	assert.True(t, env.Success)
	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, category.Color("Farmer"), rows[0]["category_color"])

	resp, env = a.do(t, "POST", base+"/approve", "")
	assert.Equal(t, 200, resp.StatusCode)
	var detail map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Equal(t, "approved", detail["status"])
	assert.Equal(t, "desk@example.com", detail["approved_by"])

	// approved -> rejected is not a legal transition
	resp, env = a.do(t, "POST", base+"/reject", "")
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.False(t, env.Success)

	resp, _ = a.do(t, "POST", base+"/restore", "")
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, entity.RegistrationStatusPending, a.store.Registration(reg.Id).Status)

	resp, _ = a.do(t, "GET", base+"/events", "")
	assert.Equal(t, 200, resp.StatusCode)
}

func TestRegistrationErrorsMapToStatusCodes(t *testing.T) {
	a := newTestApp(t)
	reg := a.pending("Ravi")

	resp, _ := a.do(t, "GET", "/api/admin/registrations/not-a-uuid", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = a.do(t, "POST", "/api/admin/registrations/"+uuid.NewString()+"/approve", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = a.do(t, "GET", "/api/admin/registrations?expiry_days=abc", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = a.do(t, "GET", "/api/admin/registrations?status=archived", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = a.do(t, "DELETE", "/api/admin/registrations/"+reg.Id.String(), "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.NotNil(t, a.store.Registration(reg.Id))

	resp, _ = a.do(t, "DELETE", "/api/admin/registrations/"+reg.Id.String()+"?confirm=true", "")
	assert.Equal(t, 200, resp.StatusCode)
	assert.Nil(t, a.store.Registration(reg.Id))
}

func TestExportSendsCSVAttachment(t *testing.T) {
	a := newTestApp(t)
	a.pending("Meera")

	resp, _ := a.do(t, "GET", "/api/admin/registrations/export", "")
	require.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "registrations-export-")
}

func TestCategoryEndpoints(t *testing.T) {
	a := newTestApp(t)

	resp, _ := a.do(t, "POST", "/api/admin/categories", `{"name_english":"Weaver"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, env := a.do(t, "POST", "/api/admin/categories", `{"name_english":"Weaver","name_malayalam":"നെയ്ത്തുകാരൻ","expiry_days":45}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	id := created["id"].(string)

	resp, _ = a.do(t, "DELETE", "/api/admin/categories/"+id, "")
	assert.Equal(t, 200, resp.StatusCode)

	_, env = a.do(t, "GET", "/api/admin/categories", "")
	var active []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &active))
	assert.Len(t, active, 2)

	_, env = a.do(t, "GET", "/api/admin/categories?all=true", "")
	var all []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &all))
	assert.Len(t, all, 3)

	resp, _ = a.do(t, "GET", "/api/admin/categories/"+uuid.NewString(), "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestTransferEndpoints(t *testing.T) {
	a := newTestApp(t)
	reg := a.pending("Suresh")

	resp, _ := a.do(t, "POST", "/api/admin/transfers",
		`{"registration_id":"`+reg.Id.String()+`","to_category_id":"`+a.farmer.Id.String()+`"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body := `{"registration_id":"` + reg.Id.String() + `","to_category_id":"` + a.fisher.Id.String() + `","reason":"moved to coast"}`
	resp, env := a.do(t, "POST", "/api/admin/transfers", body)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "pending", created["status"])

	resp, _ = a.do(t, "POST", "/api/admin/transfers", body)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	id := created["id"].(string)
	resp, env = a.do(t, "POST", "/api/admin/transfers/"+id+"/approve", "")
	require.Equal(t, 200, resp.StatusCode)
	var resolved map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &resolved))
	assert.Equal(t, "approved", resolved["status"])
	assert.Equal(t, "desk@example.com", resolved["resolved_by"])

	// Resolution never moves the registration
	assert.Equal(t, a.farmer.Id, a.store.Registration(reg.Id).CategoryId)

	resp, _ = a.do(t, "POST", "/api/admin/transfers/"+id+"/reject", "")
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp, _ = a.do(t, "GET", "/api/admin/transfers?status=bogus", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = a.do(t, "GET", "/api/admin/transfers?status=approved", "")
	assert.Equal(t, 200, resp.StatusCode)
}

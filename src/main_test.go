package main

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"strings"
	"testing"
	"time"

	"pms/src/db"
	"pms/src/lib"
	"pms/src/middlewares"
	"pms/src/types"
	"pms/src/utils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type TestSuite struct {
	suite.Suite
	DB            *gorm.DB
	Mock          sqlmock.Sqlmock
	CustomerToken string
	OperatorToken string
}

func NewMockDB() (*gorm.DB, sqlmock.Sqlmock) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}
	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 conn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening gorm database", err)
	}
	return gormDB, mock
}

func (s *TestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("passdate", passDateValidatorFunc)
		v.RegisterValidation("gtdate", gtfield)
	}

	d, mock := NewMockDB()
	db.NewDB(d)
	s.DB = d
	s.Mock = mock

	customer, err := utils.GenerateJWT("someone@example.com", 1, types.ROLE_CUSTOMER)
	s.Require().NoError(err)
	s.CustomerToken = customer
	operator, err := utils.GenerateJWT("desk@example.com", 2, types.ROLE_OPERATOR)
	s.Require().NoError(err)
	s.OperatorToken = operator
}

func (s *TestSuite) TearDownSuite() {
	inner, err := s.DB.DB()
	if err != nil {
		log.Printf("Error accessing inner db instance: %s\n", err.Error())
		return
	}
	inner.Close()
}

// newRouter wires the same route groups main does, minus the server socket.
func (s *TestSuite) newRouter() *gin.Engine {
	router := setupRouter()
	guestAuthRoutes(router)

	authorized := router.Group(apiPrefix)
	authorized.Use(middlewares.AuthMiddleware)
	queueHandlers(authorized)

	staff := router.Group(apiPrefix)
	staff.Use(middlewares.AuthMiddleware, middlewares.RequireRole(types.ROLE_OPERATOR))
	transactionHandlers(staff)
	passHandlers(staff)
	return router
}

// expectUser queues the lookup AuthMiddleware performs on every request.
func (s *TestSuite) expectUser(id uint, email, role string) {
	rows := sqlmock.
		NewRows([]string{"id", "email", "uid", "role"}).
		AddRow(id, email, "uid-1", role)
	s.Mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users"`)).WillReturnRows(rows)
}

func (s *TestSuite) TestPingRoute() {
	router := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
	assert.Equal(s.T(), "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func (s *TestSuite) TestMaintenanceMode() {
	os.Setenv("MAINTENANCE_MODE", "true")
	defer os.Unsetenv("MAINTENANCE_MODE")

	router := setupRouter()
	router = maintenanceModeMiddleware(router)
	apiv1Group(router)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 503, w.Code)
}

func (s *TestSuite) TestQueueRequiresAuth() {
	router := s.newRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/queue/tokens", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 401, w.Code)
}

func (s *TestSuite) TestIssueTokenRejectsBadType() {
	router := s.newRouter()
	s.expectUser(1, "someone@example.com", types.ROLE_CUSTOMER)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/queue/tokens?type=123", nil)
	req.Header.Set("Authorization", "Bearer "+s.CustomerToken)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 400, w.Code)
}

func (s *TestSuite) TestCloseTokenRequiresCode() {
	router := s.newRouter()
	s.expectUser(1, "someone@example.com", types.ROLE_CUSTOMER)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/queue/tokens/close", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer "+s.CustomerToken)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 400, w.Code)
	rbytes, err := io.ReadAll(w.Body)
	assert.Nil(s.T(), err)
	errMsg := gjson.Get(string(rbytes), "error").String()
	assert.NotEmpty(s.T(), errMsg)
}

func (s *TestSuite) TestTransactionsRequireOperatorRole() {
	router := s.newRouter()
	s.expectUser(1, "someone@example.com", types.ROLE_CUSTOMER)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/transactions", nil)
	req.Header.Set("Authorization", "Bearer "+s.CustomerToken)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 403, w.Code)
}

func (s *TestSuite) TestOpenTransactionRejectsInvertedDates() {
	router := s.newRouter()
	s.expectUser(2, "desk@example.com", types.ROLE_OPERATOR)

	jbody := map[string]any{
		"ticket_code": "P1",
		"contractor":  1,
		"store":       1,
		"pass_type":   1,
		"start_date":  "2026-09-10",
		"end_date":    "2026-09-01",
	}
	sbody, _ := json.Marshal(&jbody)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/transactions", strings.NewReader(string(sbody)))
	req.Header.Set("Authorization", "Bearer "+s.OperatorToken)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 400, w.Code)
}

// A failing cache (as opposed to a cache miss) must abort the download
// rather than silently regenerating the asset.
func (s *TestSuite) TestDownloadPassCodeCacheUnavailable() {
	router := s.newRouter()

	d, mock := NewMockDB()
	mock.MatchExpectationsInOrder(false)
	db.NewDB(d)
	defer db.NewDB(s.DB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users"`)).
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "email", "uid", "role"}).
			AddRow(2, "desk@example.com", "uid-2", types.ROLE_OPERATOR))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "passes"`)).
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "unique_id", "contractor_id", "store_id", "pass_type_id", "status"}).
			AddRow(5, "9e0c2f6b", 1, 2, 3, types.PASS_ACTIVE))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "contractors"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "stores"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "pass_types"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	lib.NewRedisClient(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 10 * time.Millisecond,
		MaxRetries:  -1,
	}))
	defer lib.NewRedisClient(nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/passes/5/download/code", nil)
	req.Header.Set("Authorization", "Bearer "+s.OperatorToken)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 400, w.Code)
}

func (s *TestSuite) TestLoginRequiresPassword() {
	router := setupRouter()
	guestAuthRoutes(router)

	jbody := map[string]any{
		"email": "someone@example.com",
	}
	sbody, _ := json.Marshal(&jbody)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/auth/login", strings.NewReader(string(sbody)))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 400, w.Code)
	rbytes, err := io.ReadAll(w.Body)
	assert.Nil(s.T(), err)
	errMsg := gjson.Get(string(rbytes), "error").String()
	assert.NotEmpty(s.T(), errMsg)
}

func TestSuiteRun(t *testing.T) {
	suite.Run(t, new(TestSuite))
}

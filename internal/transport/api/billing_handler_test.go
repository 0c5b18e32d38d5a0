package api_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"

	"github.com/fsdevblog/lavka-pay/internal/domain"
	"github.com/fsdevblog/lavka-pay/internal/service"
	"github.com/fsdevblog/lavka-pay/internal/transport/api"
	"github.com/fsdevblog/lavka-pay/internal/transport/api/mocks"
	"github.com/fsdevblog/lavka-pay/internal/transport/api/testutils"
)

type BillingHandlerTestSuite struct {
	suite.Suite
	mockCtrl    *gomock.Controller
	mockBilling *mocks.MockBillingServicer
	router      *gin.Engine
}

func TestBillingHandlerSuite(t *testing.T) {
	suite.Run(t, new(BillingHandlerTestSuite))
}

func (s *BillingHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.mockCtrl = gomock.NewController(s.T())
	s.mockBilling = mocks.NewMockBillingServicer(s.mockCtrl)

	s.router = api.New(api.RouterArgs{
		SettlementService: mocks.NewMockSettlementServicer(s.mockCtrl),
		CreditService:     mocks.NewMockCreditServicer(s.mockCtrl),
		RefundService:     mocks.NewMockRefundServicer(s.mockCtrl),
		BillingService:    s.mockBilling,
		JWTSecretKey:      jwtSecret,
		WebhookSecret:     []byte("whsec_test"),
		AdminKey:          "admin-key",
	})
}

func (s *BillingHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *BillingHandlerTestSuite) TestRun() {
	s.mockBilling.EXPECT().
		RunForPeriod(gomock.Any(), int32(8), int32(2026)).
		Return(&service.BillingRunResult{
			PeriodMonth:    8,
			PeriodYear:     2026,
			ShopsProcessed: 3,
			FeesCreated:    2,
			FeesCollected:  2,
			Skipped:        1,
		}, nil)

	resp, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPost,
		URL:    "/api/admin/billing/run",
		Body:   strings.NewReader(`{"month": 8, "year": 2026}`),
	}, testutils.WithHeader("X-Admin-Key", "admin-key"))
	s.Require().NoError(err)
	defer func() { _ = resp.Body.Close() }()

	s.Equal(http.StatusOK, resp.StatusCode)

	var out api.BillingRunResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&out))
	s.Equal(int32(8), out.PeriodMonth)
	s.Equal(3, out.ShopsProcessed)
	s.Equal(2, out.FeesCreated)
	s.Equal(1, out.Skipped)
}

func (s *BillingHandlerTestSuite) TestRunDuplicatePeriod() {
	s.mockBilling.EXPECT().
		RunForPeriod(gomock.Any(), int32(8), int32(2026)).
		Return(&service.BillingRunResult{
			PeriodMonth:    8,
			PeriodYear:     2026,
			ShopsProcessed: 3,
			Skipped:        3,
		}, domain.ErrDuplicatePeriod)

	resp, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPost,
		URL:    "/api/admin/billing/run",
		Body:   strings.NewReader(`{"month": 8, "year": 2026}`),
	}, testutils.WithHeader("X-Admin-Key", "admin-key"))
	s.Require().NoError(err)
	defer func() { _ = resp.Body.Close() }()

	s.Equal(http.StatusConflict, resp.StatusCode)

	var out api.BillingRunResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&out))
	s.Equal(3, out.Skipped)
}

func (s *BillingHandlerTestSuite) TestRunWithoutAdminKey() {
	resp, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPost,
		URL:    "/api/admin/billing/run",
		Body:   strings.NewReader(`{"month": 8, "year": 2026}`),
	})
	s.Require().NoError(err)
	defer func() { _ = resp.Body.Close() }()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *BillingHandlerTestSuite) TestRunWrongAdminKey() {
	resp, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPost,
		URL:    "/api/admin/billing/run",
		Body:   strings.NewReader(`{"month": 8, "year": 2026}`),
	}, testutils.WithHeader("X-Admin-Key", "wrong"))
	s.Require().NoError(err)
	defer func() { _ = resp.Body.Close() }()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *BillingHandlerTestSuite) TestRunInvalidMonth() {
	resp, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPost,
		URL:    "/api/admin/billing/run",
		Body:   strings.NewReader(`{"month": 13, "year": 2026}`),
	}, testutils.WithHeader("X-Admin-Key", "admin-key"))
	s.Require().NoError(err)
	defer func() { _ = resp.Body.Close() }()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

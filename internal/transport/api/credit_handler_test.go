package api_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"

	"github.com/fsdevblog/lavka-pay/internal/domain"
	"github.com/fsdevblog/lavka-pay/internal/service"
	"github.com/fsdevblog/lavka-pay/internal/service/tokens"
	"github.com/fsdevblog/lavka-pay/internal/transport/api"
	"github.com/fsdevblog/lavka-pay/internal/transport/api/mocks"
	"github.com/fsdevblog/lavka-pay/internal/transport/api/testutils"
)

type CreditHandlerTestSuite struct {
	suite.Suite
	mockCtrl   *gomock.Controller
	mockCredit *mocks.MockCreditServicer
	router     *gin.Engine
}

func TestCreditHandlerSuite(t *testing.T) {
	suite.Run(t, new(CreditHandlerTestSuite))
}

func (s *CreditHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.mockCtrl = gomock.NewController(s.T())
	s.mockCredit = mocks.NewMockCreditServicer(s.mockCtrl)

	s.router = api.New(api.RouterArgs{
		SettlementService: mocks.NewMockSettlementServicer(s.mockCtrl),
		CreditService:     s.mockCredit,
		RefundService:     mocks.NewMockRefundServicer(s.mockCtrl),
		BillingService:    mocks.NewMockBillingServicer(s.mockCtrl),
		JWTSecretKey:      jwtSecret,
		WebhookSecret:     []byte("whsec_test"),
		AdminKey:          "admin-key",
	})
}

func (s *CreditHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *CreditHandlerTestSuite) TestIndex() {
	expiresAt := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)
	balance := &service.CreditBalance{
		TotalCents:     1200,
		AvailableCents: 800,
		ExpiredCents:   400,
		Entries: []domain.CreditEntry{
			{AmountCents: 300, Reason: "WELCOME_BONUS", ExpiresAt: &expiresAt},
			{AmountCents: 500, Reason: "REFUND_FOR_ORDER_7"},
		},
	}

	s.mockCredit.EXPECT().
		AvailableCredit(gomock.Any(), int64(1), gomock.Any()).
		Return(balance, nil)

	token, tokenErr := tokens.GenerateUserJWT(1, time.Hour, jwtSecret)
	s.Require().NoError(tokenErr)

	resp, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    "/api/user/credit",
	}, testutils.WithHeader("Authorization", "Bearer "+token))
	s.Require().NoError(err)
	defer func() { _ = resp.Body.Close() }()

	s.Equal(http.StatusOK, resp.StatusCode)

	var out api.CreditBalanceResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&out))

	s.Equal(int64(1200), out.TotalCents)
	s.Equal(int64(800), out.AvailableCents)
	s.Equal(int64(400), out.ExpiredCents)
	s.Require().Len(out.Entries, 2)
	s.Require().NotNil(out.Entries[0].ExpiresAt)
	s.Equal("2026-09-30T00:00:00Z", *out.Entries[0].ExpiresAt)
	s.Nil(out.Entries[1].ExpiresAt)
}

func (s *CreditHandlerTestSuite) TestIndexUnauthorized() {
	resp, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    "/api/user/credit",
	})
	s.Require().NoError(err)
	defer func() { _ = resp.Body.Close() }()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *CreditHandlerTestSuite) TestIndexExpiredToken() {
	token, tokenErr := tokens.GenerateUserJWT(1, -time.Hour, jwtSecret)
	s.Require().NoError(tokenErr)

	resp, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    "/api/user/credit",
	}, testutils.WithHeader("Authorization", "Bearer "+token))
	s.Require().NoError(err)
	defer func() { _ = resp.Body.Close() }()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

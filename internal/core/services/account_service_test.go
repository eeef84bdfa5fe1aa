package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/corefin/ledgercore/internal/apperrors"
	"github.com/corefin/ledgercore/internal/core/domain"
	portsrepo "github.com/corefin/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/corefin/ledgercore/internal/core/ports/services"
	"github.com/corefin/ledgercore/internal/core/services"
	"github.com/corefin/ledgercore/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// MockAccountRepository is a mock type for the AccountRepositoryFacade interface
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, accountTypes []domain.AccountType, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, accountTypes, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

// MockBalanceReader is a mock type for the BalanceReader interface
type MockBalanceReader struct {
	mock.Mock
}

func (m *MockBalanceReader) FindBalance(ctx context.Context, accountID string, fiscalYear, fiscalPeriod int) (*domain.AccountBalance, error) {
	args := m.Called(ctx, accountID, fiscalYear, fiscalPeriod)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountBalance), args.Error(1)
}

func (m *MockBalanceReader) FindCurrentBalance(ctx context.Context, accountID string) (*domain.AccountBalance, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountBalance), args.Error(1)
}

func (m *MockBalanceReader) ListBalances(ctx context.Context, fiscalYear, fiscalPeriod int) ([]*domain.AccountBalance, error) {
	args := m.Called(ctx, fiscalYear, fiscalPeriod)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AccountBalance), args.Error(1)
}

var (
	_ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)
	_ portsrepo.BalanceReader           = (*MockBalanceReader)(nil)
)

type AccountServiceTestSuite struct {
	suite.Suite
	mockRepo     *MockAccountRepository
	mockBalances *MockBalanceReader
	clock        *fixedClock
	service      portssvc.AccountSvcFacade
}

func (s *AccountServiceTestSuite) SetupTest() {
	s.mockRepo = new(MockAccountRepository)
	s.mockBalances = new(MockBalanceReader)
	s.clock = &fixedClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	s.service = services.NewAccountService(s.mockRepo, s.mockBalances, s.clock, &seqIDs{})
}

func (s *AccountServiceTestSuite) TestCreateAccount_Success() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		Code:         "1000",
		Name:         "Cash",
		AccountType:  domain.Asset,
		CurrencyCode: "USD",
	}

	s.mockRepo.On("FindAccountByCode", ctx, "1000").Return(nil, apperrors.ErrNotFound).Once()
	s.mockRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(nil).Once()

	account, err := s.service.CreateAccount(ctx, req, "creator")

	s.Require().NoError(err)
	s.Require().NotNil(account)
	s.Equal("1000", account.Code)
	s.Equal(domain.Asset, account.AccountType)
	s.True(account.IsActive)
	s.NotEmpty(account.AccountID)
	s.Equal("creator", account.CreatedBy)
	s.True(account.CreatedAt.Equal(s.clock.Now()))
	s.mockRepo.AssertExpectations(s.T())
}

func (s *AccountServiceTestSuite) TestCreateAccount_DuplicateCode() {
	ctx := context.Background()
	existing := &domain.Account{AccountID: "a-1", Code: "1000"}
	s.mockRepo.On("FindAccountByCode", ctx, "1000").Return(existing, nil).Once()

	_, err := s.service.CreateAccount(ctx, dto.CreateAccountRequest{
		Code:         "1000",
		Name:         "Cash",
		AccountType:  domain.Asset,
		CurrencyCode: "USD",
	}, "creator")

	s.ErrorIs(err, apperrors.ErrDuplicate)
	s.mockRepo.AssertNotCalled(s.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (s *AccountServiceTestSuite) TestCreateAccount_Validation() {
	ctx := context.Background()

	_, err := s.service.CreateAccount(ctx, dto.CreateAccountRequest{
		Name: "Nameless Code", AccountType: domain.Asset, CurrencyCode: "USD",
	}, "creator")
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.service.CreateAccount(ctx, dto.CreateAccountRequest{
		Code: "1000", Name: "Cash", AccountType: "WEIRD", CurrencyCode: "USD",
	}, "creator")
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.service.CreateAccount(ctx, dto.CreateAccountRequest{
		Code: "1000", Name: "Cash", AccountType: domain.Asset,
	}, "creator")
	s.ErrorIs(err, apperrors.ErrValidation)

	s.mockRepo.AssertNotCalled(s.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (s *AccountServiceTestSuite) TestGetAccountByID_NotFound() {
	ctx := context.Background()
	s.mockRepo.On("FindAccountByID", ctx, "missing").Return(nil, apperrors.ErrNotFound).Once()

	_, err := s.service.GetAccountByID(ctx, "missing")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *AccountServiceTestSuite) TestListAccounts_DefaultsLimit() {
	ctx := context.Background()
	s.mockRepo.On("ListAccounts", ctx, []domain.AccountType(nil), 50, 0).
		Return([]domain.Account{}, nil).Once()

	_, err := s.service.ListAccounts(ctx, nil, 0, 0)
	s.NoError(err)
	s.mockRepo.AssertExpectations(s.T())
}

func (s *AccountServiceTestSuite) TestUpdateAccount_Name() {
	ctx := context.Background()
	existing := &domain.Account{AccountID: "a-1", Code: "1000", Name: "Cash", IsActive: true}
	s.mockRepo.On("FindAccountByID", ctx, "a-1").Return(existing, nil).Once()
	s.mockRepo.On("UpdateAccount", ctx, mock.MatchedBy(func(a domain.Account) bool {
		return a.Name == "Petty Cash"
	})).Return(nil).Once()

	name := "Petty Cash"
	updated, err := s.service.UpdateAccount(ctx, "a-1", dto.UpdateAccountRequest{Name: &name}, "editor")

	s.Require().NoError(err)
	s.Equal("Petty Cash", updated.Name)
	s.Equal("editor", updated.LastUpdatedBy)
	s.mockRepo.AssertExpectations(s.T())
}

func (s *AccountServiceTestSuite) TestUpdateAccount_NoChanges() {
	ctx := context.Background()
	existing := &domain.Account{AccountID: "a-1", Code: "1000", Name: "Cash"}
	s.mockRepo.On("FindAccountByID", ctx, "a-1").Return(existing, nil).Once()

	_, err := s.service.UpdateAccount(ctx, "a-1", dto.UpdateAccountRequest{}, "editor")
	s.NoError(err)
	s.mockRepo.AssertNotCalled(s.T(), "UpdateAccount", mock.Anything, mock.Anything)
}

func (s *AccountServiceTestSuite) TestDeactivateAccount_Success() {
	ctx := context.Background()
	existing := &domain.Account{AccountID: "a-1", Code: "1000", IsActive: true}
	s.mockRepo.On("FindAccountByID", ctx, "a-1").Return(existing, nil).Once()
	s.mockBalances.On("FindCurrentBalance", ctx, "a-1").Return(nil, apperrors.ErrNotFound).Once()
	s.mockRepo.On("UpdateAccount", ctx, mock.MatchedBy(func(a domain.Account) bool {
		return !a.IsActive
	})).Return(nil).Once()

	err := s.service.DeactivateAccount(ctx, "a-1", "admin")
	s.NoError(err)
	s.mockRepo.AssertExpectations(s.T())
}

func (s *AccountServiceTestSuite) TestDeactivateAccount_BlockedByBalance() {
	ctx := context.Background()
	existing := &domain.Account{AccountID: "a-1", Code: "1000", IsActive: true}
	balance := &domain.AccountBalance{
		AccountID:      "a-1",
		CurrencyCode:   "USD",
		ClosingBalance: decimal.NewFromInt(25),
	}
	s.mockRepo.On("FindAccountByID", ctx, "a-1").Return(existing, nil).Once()
	s.mockBalances.On("FindCurrentBalance", ctx, "a-1").Return(balance, nil).Once()

	err := s.service.DeactivateAccount(ctx, "a-1", "admin")
	s.ErrorIs(err, apperrors.ErrAccountHasBalance)
	s.mockRepo.AssertNotCalled(s.T(), "UpdateAccount", mock.Anything, mock.Anything)
}

func (s *AccountServiceTestSuite) TestDeactivateAccount_AlreadyInactive() {
	ctx := context.Background()
	existing := &domain.Account{AccountID: "a-1", Code: "1000", IsActive: false}
	s.mockRepo.On("FindAccountByID", ctx, "a-1").Return(existing, nil).Once()

	err := s.service.DeactivateAccount(ctx, "a-1", "admin")
	s.NoError(err)
	s.mockBalances.AssertNotCalled(s.T(), "FindCurrentBalance", mock.Anything, mock.Anything)
}

func (s *AccountServiceTestSuite) TestReactivateAccount() {
	ctx := context.Background()
	existing := &domain.Account{AccountID: "a-1", Code: "1000", IsActive: false}
	s.mockRepo.On("FindAccountByID", ctx, "a-1").Return(existing, nil).Once()
	s.mockRepo.On("UpdateAccount", ctx, mock.MatchedBy(func(a domain.Account) bool {
		return a.IsActive
	})).Return(nil).Once()

	err := s.service.ReactivateAccount(ctx, "a-1", "admin")
	s.NoError(err)
	s.mockRepo.AssertExpectations(s.T())
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}

package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/apperrors"
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/domain"
	portssvc "github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/ports/services"
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/services"
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/dto"
)

// MockWorkPackageRepository is a mock type for the WorkPackageRepositoryFacade interface
type MockWorkPackageRepository struct {
	mock.Mock
}

func (m *MockWorkPackageRepository) FindWorkPackageByID(ctx context.Context, workPackageID string) (*domain.WorkPackage, error) {
	args := m.Called(ctx, workPackageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkPackage), args.Error(1)
}

func (m *MockWorkPackageRepository) ListWorkPackagesByWorkspace(ctx context.Context, workspaceID string) ([]domain.WorkPackage, error) {
	args := m.Called(ctx, workspaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WorkPackage), args.Error(1)
}

func (m *MockWorkPackageRepository) SaveWorkPackage(ctx context.Context, pkg domain.WorkPackage) error {
	args := m.Called(ctx, pkg)
	return args.Error(0)
}

func (m *MockWorkPackageRepository) UpdateWorkPackageMetadata(ctx context.Context, workPackageID string, metadata domain.PackageMetadata, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, workPackageID, metadata, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockWorkPackageRepository) DeleteWorkPackage(ctx context.Context, workPackageID string) error {
	args := m.Called(ctx, workPackageID)
	return args.Error(0)
}

// MockContractRepository is a mock type for the ContractRepositoryFacade interface
type MockContractRepository struct {
	mock.Mock
}

func (m *MockContractRepository) FindContractByID(ctx context.Context, contractID string) (*domain.Contract, error) {
	args := m.Called(ctx, contractID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Contract), args.Error(1)
}

func (m *MockContractRepository) FindClientByID(ctx context.Context, clientID string) (*domain.Client, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *MockContractRepository) ListContractorReferences(ctx context.Context, workspaceID string) (map[string][]string, error) {
	args := m.Called(ctx, workspaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]string), args.Error(1)
}

func (m *MockContractRepository) ReassignContractor(ctx context.Context, contractID string, contractorID string, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, contractID, contractorID, updatedBy, updatedAt)
	return args.Error(0)
}

// MockIndividualRepository is a mock type for the IndividualRepositoryFacade interface
type MockIndividualRepository struct {
	mock.Mock
}

func (m *MockIndividualRepository) FindIndividualByID(ctx context.Context, individualID string) (*domain.Individual, error) {
	args := m.Called(ctx, individualID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Individual), args.Error(1)
}

func (m *MockIndividualRepository) ListIndividuals(ctx context.Context, workspaceID string) ([]domain.Individual, error) {
	args := m.Called(ctx, workspaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Individual), args.Error(1)
}

func (m *MockIndividualRepository) SaveIndividual(ctx context.Context, individual domain.Individual) error {
	args := m.Called(ctx, individual)
	return args.Error(0)
}

func (m *MockIndividualRepository) UpdateIndividual(ctx context.Context, individual domain.Individual) error {
	args := m.Called(ctx, individual)
	return args.Error(0)
}

func (m *MockIndividualRepository) DeleteIndividual(ctx context.Context, individualID string) error {
	args := m.Called(ctx, individualID)
	return args.Error(0)
}

// --- Test Suite Setup ---

type WorkPackageServiceTestSuite struct {
	suite.Suite
	mockPkgRepo      *MockWorkPackageRepository
	mockTaskRepo     *MockTaskRepository
	mockContractRepo *MockContractRepository
	mockIndRepo      *MockIndividualRepository
	service          portssvc.WorkPackageSvcFacade

	workspaceID  string
	userID       string
	contractID   string
	clientID     string
	contractorID string
}

func (suite *WorkPackageServiceTestSuite) SetupTest() {
	suite.mockPkgRepo = new(MockWorkPackageRepository)
	suite.mockTaskRepo = new(MockTaskRepository)
	suite.mockContractRepo = new(MockContractRepository)
	suite.mockIndRepo = new(MockIndividualRepository)
	suite.service = services.NewWorkPackageService(suite.mockPkgRepo, suite.mockTaskRepo, suite.mockContractRepo, suite.mockIndRepo)

	suite.workspaceID = uuid.NewString()
	suite.userID = uuid.NewString()
	suite.contractID = uuid.NewString()
	suite.clientID = uuid.NewString()
	suite.contractorID = uuid.NewString()
}

func (suite *WorkPackageServiceTestSuite) expectContractResolution() {
	contract := &domain.Contract{
		ContractID:   suite.contractID,
		WorkspaceID:  suite.workspaceID,
		ClientID:     suite.clientID,
		ContractorID: suite.contractorID,
		HourlyRate:   decimal.NewFromInt(1000),
		RateType:     domain.RateHour,
		Active:       true,
	}
	suite.mockContractRepo.On("FindContractByID", mock.Anything, suite.contractID).Return(contract, nil).Once()
	suite.mockContractRepo.On("FindClientByID", mock.Anything, suite.clientID).Return(&domain.Client{ClientID: suite.clientID}, nil).Once()
	suite.mockIndRepo.On("FindIndividualByID", mock.Anything, suite.contractorID).Return(&domain.Individual{IndividualID: suite.contractorID}, nil).Once()
}

// --- Test Cases ---

// Two tasks of 3h and 2h at 1000/h with 20% VAT included: 5h, 5000 total,
// 833 VAT.
func (suite *WorkPackageServiceTestSuite) TestAssemble_TotalsAndVAT() {
	ctx := context.Background()
	vat := decimal.NewFromInt(20)
	req := dto.AssembleWorkPackageRequest{
		TaskIDs:     []string{"t1", "t2"},
		ContractID:  suite.contractID,
		Period:      "2026-07",
		HourlyRate:  decimal.NewFromInt(1000),
		RateType:    "hour",
		VATIncluded: true,
		VATPercent:  &vat,
	}

	suite.expectContractResolution()
	suite.mockTaskRepo.On("FindTasksByIDs", ctx, req.TaskIDs).Return(map[string]domain.Task{
		"t1": {TaskID: "t1", Key: "PRJ-1", WorkspaceID: suite.workspaceID, Billable: true, Hours: decimal.NewFromInt(3)},
		"t2": {TaskID: "t2", Key: "PRJ-2", WorkspaceID: suite.workspaceID, ForceIncluded: true, Hours: decimal.NewFromInt(2)},
	}, nil).Once()
	suite.mockPkgRepo.On("SaveWorkPackage", ctx, mock.AnythingOfType("domain.WorkPackage")).Return(nil).Once()

	pkg, err := suite.service.Assemble(ctx, suite.workspaceID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(pkg)
	suite.True(pkg.TotalHours.Equal(decimal.NewFromInt(5)), "total hours, got %s", pkg.TotalHours)
	suite.True(pkg.TotalAmount.Equal(decimal.NewFromInt(5000)), "total amount, got %s", pkg.TotalAmount)
	suite.True(pkg.VATAmount.Equal(decimal.NewFromInt(833)), "vat amount, got %s", pkg.VATAmount)
	suite.Equal(suite.clientID, pkg.ClientID)
	suite.Equal(suite.contractorID, pkg.ContractorID)
	suite.Len(pkg.TaskSnapshots, 2)
	suite.Equal(domain.DefaultAudience, pkg.Metadata.PreparedFor)
	suite.mockPkgRepo.AssertExpectations(suite.T())
	suite.mockTaskRepo.AssertExpectations(suite.T())
}

func (suite *WorkPackageServiceTestSuite) TestAssemble_UnknownContract() {
	ctx := context.Background()
	req := dto.AssembleWorkPackageRequest{
		TaskIDs:    []string{"t1"},
		ContractID: suite.contractID,
		Period:     "2026-07",
		HourlyRate: decimal.NewFromInt(1000),
		RateType:   "hour",
	}

	suite.mockContractRepo.On("FindContractByID", mock.Anything, suite.contractID).Return(nil, apperrors.ErrNotFound).Once()

	pkg, err := suite.service.Assemble(ctx, suite.workspaceID, req, suite.userID)

	suite.Require().Error(err)
	suite.Nil(pkg)
	suite.ErrorIs(err, apperrors.ErrInvalidReference)
	suite.mockPkgRepo.AssertNotCalled(suite.T(), "SaveWorkPackage", mock.Anything, mock.Anything)
}

func (suite *WorkPackageServiceTestSuite) TestAssemble_LockedTaskConflict() {
	ctx := context.Background()
	otherPkg := uuid.NewString()
	req := dto.AssembleWorkPackageRequest{
		TaskIDs:    []string{"t1"},
		ContractID: suite.contractID,
		Period:     "2026-07",
		HourlyRate: decimal.NewFromInt(1000),
		RateType:   "hour",
	}

	suite.expectContractResolution()
	suite.mockTaskRepo.On("FindTasksByIDs", ctx, req.TaskIDs).Return(map[string]domain.Task{
		"t1": {TaskID: "t1", WorkspaceID: suite.workspaceID, Billable: true, Hours: decimal.NewFromInt(1), WorkPackageID: &otherPkg},
	}, nil).Once()

	pkg, err := suite.service.Assemble(ctx, suite.workspaceID, req, suite.userID)

	suite.Require().Error(err)
	suite.Nil(pkg)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockPkgRepo.AssertNotCalled(suite.T(), "SaveWorkPackage", mock.Anything, mock.Anything)
}

func (suite *WorkPackageServiceTestSuite) TestAssemble_ConcurrentLockRace() {
	ctx := context.Background()
	req := dto.AssembleWorkPackageRequest{
		TaskIDs:    []string{"t1"},
		ContractID: suite.contractID,
		Period:     "2026-07",
		HourlyRate: decimal.NewFromInt(1000),
		RateType:   "hour",
	}

	suite.expectContractResolution()
	suite.mockTaskRepo.On("FindTasksByIDs", ctx, req.TaskIDs).Return(map[string]domain.Task{
		"t1": {TaskID: "t1", WorkspaceID: suite.workspaceID, Billable: true, Hours: decimal.NewFromInt(1)},
	}, nil).Once()
	// The transactional lock loses the race inside the repository.
	suite.mockPkgRepo.On("SaveWorkPackage", ctx, mock.AnythingOfType("domain.WorkPackage")).Return(apperrors.ErrConflict).Once()

	pkg, err := suite.service.Assemble(ctx, suite.workspaceID, req, suite.userID)

	suite.Require().Error(err)
	suite.Nil(pkg)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockPkgRepo.AssertExpectations(suite.T())
}

func (suite *WorkPackageServiceTestSuite) TestAssemble_DuplicateTaskIDRejected() {
	ctx := context.Background()
	req := dto.AssembleWorkPackageRequest{
		TaskIDs:    []string{"t1", "t1"},
		ContractID: suite.contractID,
		Period:     "2026-07",
		HourlyRate: decimal.NewFromInt(1000),
		RateType:   "hour",
	}

	suite.expectContractResolution()
	suite.mockTaskRepo.On("FindTasksByIDs", ctx, req.TaskIDs).Return(map[string]domain.Task{
		"t1": {TaskID: "t1", WorkspaceID: suite.workspaceID, Billable: true, Hours: decimal.NewFromInt(1)},
	}, nil).Once()

	pkg, err := suite.service.Assemble(ctx, suite.workspaceID, req, suite.userID)

	suite.Require().Error(err)
	suite.Nil(pkg)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *WorkPackageServiceTestSuite) TestAssemble_VATPercentRequired() {
	ctx := context.Background()
	req := dto.AssembleWorkPackageRequest{
		TaskIDs:     []string{"t1"},
		ContractID:  suite.contractID,
		Period:      "2026-07",
		HourlyRate:  decimal.NewFromInt(1000),
		RateType:    "hour",
		VATIncluded: true,
	}

	pkg, err := suite.service.Assemble(ctx, suite.workspaceID, req, suite.userID)

	suite.Require().Error(err)
	suite.Nil(pkg)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *WorkPackageServiceTestSuite) TestUpdateMetadata_OnlyMetadataChanges() {
	ctx := context.Background()
	workPackageID := uuid.NewString()
	pkg := &domain.WorkPackage{
		WorkPackageID: workPackageID,
		WorkspaceID:   suite.workspaceID,
		TotalAmount:   decimal.NewFromInt(5000),
		Metadata:      domain.PackageMetadata{PreparedFor: domain.DefaultAudience},
	}
	tags := []string{"q3", "priority"}

	suite.mockPkgRepo.On("FindWorkPackageByID", ctx, workPackageID).Return(pkg, nil).Once()
	suite.mockPkgRepo.On("UpdateWorkPackageMetadata", ctx, workPackageID, mock.MatchedBy(func(md domain.PackageMetadata) bool {
		return len(md.Tags) == 2 && md.TaxCategory == "standard"
	}), suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	tax := "standard"
	updated, err := suite.service.UpdateMetadata(ctx, suite.workspaceID, workPackageID, dto.UpdatePackageMetadataRequest{
		Tags:        &tags,
		TaxCategory: &tax,
	}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(tags, updated.Metadata.Tags)
	// Financial fields stay frozen.
	suite.True(updated.TotalAmount.Equal(decimal.NewFromInt(5000)))
	suite.mockPkgRepo.AssertExpectations(suite.T())
}

func (suite *WorkPackageServiceTestSuite) TestRelease_UnlocksAndDeletes() {
	ctx := context.Background()
	workPackageID := uuid.NewString()
	pkg := &domain.WorkPackage{
		WorkPackageID: workPackageID,
		WorkspaceID:   suite.workspaceID,
		TaskSnapshots: []domain.TaskSnapshot{{TaskID: "t1"}, {TaskID: "t2"}},
	}

	suite.mockPkgRepo.On("FindWorkPackageByID", ctx, workPackageID).Return(pkg, nil).Once()
	suite.mockTaskRepo.On("UnlockTasks", ctx, []string{"t1", "t2"}, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockPkgRepo.On("DeleteWorkPackage", ctx, workPackageID).Return(nil).Once()

	err := suite.service.Release(ctx, suite.workspaceID, workPackageID, suite.userID)

	suite.Require().NoError(err)
	suite.mockPkgRepo.AssertExpectations(suite.T())
	suite.mockTaskRepo.AssertExpectations(suite.T())
}

func (suite *WorkPackageServiceTestSuite) TestRelease_UnknownPackageIsNoOp() {
	ctx := context.Background()
	workPackageID := uuid.NewString()

	suite.mockPkgRepo.On("FindWorkPackageByID", ctx, workPackageID).Return(nil, apperrors.ErrNotFound).Once()

	err := suite.service.Release(ctx, suite.workspaceID, workPackageID, suite.userID)

	suite.Require().NoError(err)
	suite.mockTaskRepo.AssertNotCalled(suite.T(), "UnlockTasks", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *WorkPackageServiceTestSuite) TestGetWorkPackage_OtherWorkspaceLooksNotFound() {
	ctx := context.Background()
	workPackageID := uuid.NewString()
	pkg := &domain.WorkPackage{WorkPackageID: workPackageID, WorkspaceID: uuid.NewString()}

	suite.mockPkgRepo.On("FindWorkPackageByID", ctx, workPackageID).Return(pkg, nil).Once()

	got, err := suite.service.GetWorkPackage(ctx, suite.workspaceID, workPackageID)

	suite.Require().Error(err)
	suite.Nil(got)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestWorkPackageServiceTestSuite(t *testing.T) {
	suite.Run(t, new(WorkPackageServiceTestSuite))
}

package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/apperrors"
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/domain"
	portssvc "github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/ports/services"
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/services"
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/dto"
)

// --- Test Suite Setup ---

type ReconcilerServiceTestSuite struct {
	suite.Suite
	mockIndRepo      *MockIndividualRepository
	mockContractRepo *MockContractRepository
	service          portssvc.ReconcilerSvcFacade

	workspaceID string
	userID      string
}

func (suite *ReconcilerServiceTestSuite) SetupTest() {
	suite.mockIndRepo = new(MockIndividualRepository)
	suite.mockContractRepo = new(MockContractRepository)
	suite.service = services.NewReconcilerService(suite.mockIndRepo, suite.mockContractRepo)

	suite.workspaceID = uuid.NewString()
	suite.userID = uuid.NewString()
}

func (suite *ReconcilerServiceTestSuite) expectDirectory(individuals []domain.Individual, references map[string][]string) {
	suite.mockIndRepo.On("ListIndividuals", mock.Anything, suite.workspaceID).Return(individuals, nil).Once()
	suite.mockContractRepo.On("ListContractorReferences", mock.Anything, suite.workspaceID).Return(references, nil).Once()
}

// --- Test Cases ---

func (suite *ReconcilerServiceTestSuite) TestReconcile_NoDuplicatesIsNoOp() {
	ctx := context.Background()
	individuals := []domain.Individual{
		{IndividualID: "a", WorkspaceID: suite.workspaceID, Name: "Anna Schmidt", Email: "anna@example.com"},
		{IndividualID: "b", WorkspaceID: suite.workspaceID, Name: "Boris Petrov", Email: "boris@example.com"},
	}
	suite.expectDirectory(individuals, map[string][]string{})

	result, err := suite.service.Reconcile(ctx, suite.workspaceID, suite.userID)

	suite.Require().NoError(err)
	suite.Len(result, 2)
	suite.mockIndRepo.AssertNotCalled(suite.T(), "UpdateIndividual", mock.Anything, mock.Anything)
	suite.mockIndRepo.AssertNotCalled(suite.T(), "DeleteIndividual", mock.Anything, mock.Anything)
}

func (suite *ReconcilerServiceTestSuite) TestReconcile_MergesByEmailAndFillsBlanks() {
	ctx := context.Background()
	individuals := []domain.Individual{
		// Sparse manual record, first encountered.
		{IndividualID: "sparse", WorkspaceID: suite.workspaceID, Name: "Anna Schmidt", Email: "Anna@Example.com", Source: domain.SourceManual, Status: domain.IndividualIncomplete},
		// Richer tracker record wins the canonical vote and absorbs nothing.
		{IndividualID: "rich", WorkspaceID: suite.workspaceID, Name: "Anna Schmidt", Email: "anna@example.com", INN: "7701234567", Passport: "4509 123456", Address: "Moscow", Source: domain.SourceTracker, Status: domain.IndividualComplete},
	}
	suite.expectDirectory(individuals, map[string][]string{})
	suite.mockIndRepo.On("DeleteIndividual", mock.Anything, "sparse").Return(nil).Once()

	result, err := suite.service.Reconcile(ctx, suite.workspaceID, suite.userID)

	suite.Require().NoError(err)
	suite.Require().Len(result, 1)
	suite.Equal("rich", result[0].IndividualID)
	suite.Equal("7701234567", result[0].INN)
	// Nothing flowed from the sparse record into the richer one.
	suite.mockIndRepo.AssertNotCalled(suite.T(), "UpdateIndividual", mock.Anything, mock.Anything)
	suite.mockIndRepo.AssertExpectations(suite.T())
}

func (suite *ReconcilerServiceTestSuite) TestReconcile_BlankFieldsFlowToCanonical() {
	ctx := context.Background()
	individuals := []domain.Individual{
		// Contract-referenced record wins despite having fewer fields filled.
		{IndividualID: "linked", WorkspaceID: suite.workspaceID, Name: "Boris Petrov", ExternalID: "trk-77", Source: domain.SourceTracker, Status: domain.IndividualIncomplete},
		{IndividualID: "detail", WorkspaceID: suite.workspaceID, Name: "Boris Petrov", ExternalID: "TRK-77", INN: "7809876543", Passport: "4510 654321", Address: "Tver", Source: domain.SourceImport, Status: domain.IndividualComplete},
	}
	suite.expectDirectory(individuals, map[string][]string{"linked": {"contract-1"}})

	suite.mockIndRepo.On("UpdateIndividual", mock.Anything, mock.MatchedBy(func(ind domain.Individual) bool {
		return ind.IndividualID == "linked" &&
			ind.INN == "7809876543" &&
			ind.Passport == "4510 654321" &&
			ind.Address == "Tver" &&
			ind.Status == domain.IndividualComplete &&
			ind.LastUpdatedBy == suite.userID
	})).Return(nil).Once()
	suite.mockIndRepo.On("DeleteIndividual", mock.Anything, "detail").Return(nil).Once()

	result, err := suite.service.Reconcile(ctx, suite.workspaceID, suite.userID)

	suite.Require().NoError(err)
	suite.Require().Len(result, 1)
	suite.Equal("linked", result[0].IndividualID)
	suite.Equal("7809876543", result[0].INN)
	suite.mockIndRepo.AssertExpectations(suite.T())
}

func (suite *ReconcilerServiceTestSuite) TestReconcile_ReferencedDuplicateSurvivesWithContractsRepointed() {
	ctx := context.Background()
	individuals := []domain.Individual{
		{IndividualID: "canon", WorkspaceID: suite.workspaceID, Name: "Clara Weiss", Email: "clara@example.com", INN: "7701112223", Passport: "4511 999888", Address: "Pskov", Status: domain.IndividualComplete},
		{IndividualID: "dup", WorkspaceID: suite.workspaceID, Name: "Clara Weiss", Email: "clara@example.com", Status: domain.IndividualIncomplete},
	}
	// Both referenced; the canonical vote goes to the richer record and the
	// loser's contracts move over instead of the record being deleted.
	suite.expectDirectory(individuals, map[string][]string{
		"canon": {"contract-a"},
		"dup":   {"contract-b", "contract-c"},
	})
	suite.mockContractRepo.On("ReassignContractor", mock.Anything, "contract-b", "canon", suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockContractRepo.On("ReassignContractor", mock.Anything, "contract-c", "canon", suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	result, err := suite.service.Reconcile(ctx, suite.workspaceID, suite.userID)

	suite.Require().NoError(err)
	suite.Len(result, 2)
	suite.mockIndRepo.AssertNotCalled(suite.T(), "DeleteIndividual", mock.Anything, mock.Anything)
	suite.mockContractRepo.AssertExpectations(suite.T())
}

func (suite *ReconcilerServiceTestSuite) TestReconcile_FirstEncounteredWinsTies() {
	ctx := context.Background()
	// Identical scores: the earlier record stays canonical.
	individuals := []domain.Individual{
		{IndividualID: "first", WorkspaceID: suite.workspaceID, Name: "Dmitri Orlov", Email: "d.orlov@example.com"},
		{IndividualID: "second", WorkspaceID: suite.workspaceID, Name: "Dmitri  Orlov", Email: "d.orlov@example.com"},
	}
	suite.expectDirectory(individuals, map[string][]string{})
	suite.mockIndRepo.On("DeleteIndividual", mock.Anything, "second").Return(nil).Once()

	result, err := suite.service.Reconcile(ctx, suite.workspaceID, suite.userID)

	suite.Require().NoError(err)
	suite.Require().Len(result, 1)
	suite.Equal("first", result[0].IndividualID)
}

func (suite *ReconcilerServiceTestSuite) TestReconcile_ExternalIDOutranksEmail() {
	ctx := context.Background()
	// Same email but different external ids: grouped by the stronger key, so
	// they stay separate records.
	individuals := []domain.Individual{
		{IndividualID: "x1", WorkspaceID: suite.workspaceID, Name: "Eva Novak", Email: "shared@example.com", ExternalID: "trk-1"},
		{IndividualID: "x2", WorkspaceID: suite.workspaceID, Name: "Eva Novak", Email: "shared@example.com", ExternalID: "trk-2"},
	}
	suite.expectDirectory(individuals, map[string][]string{})

	result, err := suite.service.Reconcile(ctx, suite.workspaceID, suite.userID)

	suite.Require().NoError(err)
	suite.Len(result, 2)
	suite.mockIndRepo.AssertNotCalled(suite.T(), "DeleteIndividual", mock.Anything, mock.Anything)
}

func (suite *ReconcilerServiceTestSuite) TestReconcile_DeleteFailureKeepsRecord() {
	ctx := context.Background()
	individuals := []domain.Individual{
		{IndividualID: "keep", WorkspaceID: suite.workspaceID, Name: "Fedor Iv", Email: "f@example.com", INN: "7700000001", Status: domain.IndividualIncomplete},
		{IndividualID: "stuck", WorkspaceID: suite.workspaceID, Name: "Fedor Iv", Email: "f@example.com", Status: domain.IndividualIncomplete},
	}
	suite.expectDirectory(individuals, map[string][]string{})
	suite.mockIndRepo.On("DeleteIndividual", mock.Anything, "stuck").Return(errors.New("db down")).Once()

	result, err := suite.service.Reconcile(ctx, suite.workspaceID, suite.userID)

	// The batch still converges; the undeleted duplicate stays visible for the
	// next run.
	suite.Require().NoError(err)
	suite.Len(result, 2)
}

func (suite *ReconcilerServiceTestSuite) TestGetIndividual_OtherWorkspaceLooksNotFound() {
	ctx := context.Background()
	ind := &domain.Individual{IndividualID: "foreign", WorkspaceID: uuid.NewString(), Name: "Greta Hall"}

	suite.mockIndRepo.On("FindIndividualByID", ctx, "foreign").Return(ind, nil).Once()

	got, err := suite.service.GetIndividual(ctx, suite.workspaceID, "foreign")

	suite.Require().Error(err)
	suite.Nil(got)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *ReconcilerServiceTestSuite) TestUpdateIndividual_RecomputesStatus() {
	ctx := context.Background()
	ind := &domain.Individual{
		IndividualID: "p1",
		WorkspaceID:  suite.workspaceID,
		Name:         "Hanna Lee",
		INN:          "7701234567",
		Passport:     "4509 123456",
		Status:       domain.IndividualIncomplete,
	}
	address := "Kazan"

	suite.mockIndRepo.On("FindIndividualByID", ctx, "p1").Return(ind, nil).Once()
	suite.mockIndRepo.On("UpdateIndividual", ctx, mock.MatchedBy(func(updated domain.Individual) bool {
		return updated.Address == "Kazan" && updated.Status == domain.IndividualComplete && updated.LastUpdatedBy == suite.userID
	})).Return(nil).Once()

	updated, err := suite.service.UpdateIndividual(ctx, suite.workspaceID, "p1", dto.UpdateIndividualRequest{Address: &address}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.IndividualComplete, updated.Status)
	suite.mockIndRepo.AssertExpectations(suite.T())
}

func (suite *ReconcilerServiceTestSuite) TestUpdateIndividual_BlankNameRejected() {
	ctx := context.Background()
	ind := &domain.Individual{IndividualID: "p2", WorkspaceID: suite.workspaceID, Name: "Ivan Kos"}
	blank := "   "

	suite.mockIndRepo.On("FindIndividualByID", ctx, "p2").Return(ind, nil).Once()

	updated, err := suite.service.UpdateIndividual(ctx, suite.workspaceID, "p2", dto.UpdateIndividualRequest{Name: &blank}, suite.userID)

	suite.Require().Error(err)
	suite.Nil(updated)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockIndRepo.AssertNotCalled(suite.T(), "UpdateIndividual", mock.Anything, mock.Anything)
}

func (suite *ReconcilerServiceTestSuite) TestUpdateIndividual_NoChangesIsNoOp() {
	ctx := context.Background()
	ind := &domain.Individual{IndividualID: "p3", WorkspaceID: suite.workspaceID, Name: "Jana Maru"}

	suite.mockIndRepo.On("FindIndividualByID", ctx, "p3").Return(ind, nil).Once()

	updated, err := suite.service.UpdateIndividual(ctx, suite.workspaceID, "p3", dto.UpdateIndividualRequest{}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("Jana Maru", updated.Name)
	suite.mockIndRepo.AssertNotCalled(suite.T(), "UpdateIndividual", mock.Anything, mock.Anything)
}

func TestReconcilerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReconcilerServiceTestSuite))
}

// --- Pure helpers ---

func TestGroupingKeyPriority(t *testing.T) {
	tests := []struct {
		name string
		ind  domain.Individual
		want string
	}{
		{"external id first", domain.Individual{ExternalID: " TRK-9 ", Email: "a@b.c", INN: "1", Name: "N"}, "ext:trk-9"},
		{"email next", domain.Individual{Email: " Anna@Example.COM ", INN: "1", Name: "N"}, "email:anna@example.com"},
		{"inn next", domain.Individual{INN: " 7701234567 ", Passport: "p", Name: "N"}, "inn:7701234567"},
		{"passport next", domain.Individual{Passport: " 4509 123456 ", Name: "N"}, "passport:4509 123456"},
		{"name normalized", domain.Individual{Name: "  Anna   Schmidt "}, "name:annaschmidt"},
		{"own id when blank", domain.Individual{IndividualID: "solo"}, "id:solo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, services.GroupingKey(tt.ind))
		})
	}
}

func TestScoreIndividual(t *testing.T) {
	full := domain.Individual{
		ExternalID: "trk-1",
		Email:      "a@b.c",
		INN:        "7701234567",
		Passport:   "4509 123456",
		Address:    "Moscow",
		Status:     domain.IndividualComplete,
	}
	assert.Equal(t, 19, services.ScoreIndividual(full, false))
	assert.Equal(t, 29, services.ScoreIndividual(full, true))
	assert.Equal(t, 0, services.ScoreIndividual(domain.Individual{Name: "Only Name"}, false))
}

package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/apperrors"
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/domain"
	portssvc "github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/ports/services"
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/services"
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/dto"
)

// MockTaskRepository is a mock type for the TaskRepositoryFacade interface
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) FindTaskByID(ctx context.Context, taskID string) (*domain.Task, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskRepository) FindTasksByIDs(ctx context.Context, taskIDs []string) (map[string]domain.Task, error) {
	args := m.Called(ctx, taskIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Task), args.Error(1)
}

func (m *MockTaskRepository) ListEligibleTasks(ctx context.Context, workspaceID string, filters domain.TaskFilters) ([]domain.Task, error) {
	args := m.Called(ctx, workspaceID, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Task), args.Error(1)
}

func (m *MockTaskRepository) UpsertTasks(ctx context.Context, workspaceID string, tasks []domain.Task) ([]domain.Task, error) {
	args := m.Called(ctx, workspaceID, tasks)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Task), args.Error(1)
}

func (m *MockTaskRepository) UpdateForceInclude(ctx context.Context, taskID string, value bool, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, taskID, value, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockTaskRepository) UnlockTasks(ctx context.Context, taskIDs []string, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, taskIDs, updatedBy, updatedAt)
	return args.Error(0)
}

// --- Test Suite Setup ---

type TaskServiceTestSuite struct {
	suite.Suite
	mockRepo *MockTaskRepository
	service  portssvc.TaskSvcFacade

	workspaceID string
	userID      string
}

func (suite *TaskServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockTaskRepository)
	suite.service = services.NewTaskService(suite.mockRepo)
	suite.workspaceID = uuid.NewString()
	suite.userID = uuid.NewString()
}

// --- Test Cases ---

func (suite *TaskServiceTestSuite) TestSetForceInclude_Success() {
	ctx := context.Background()
	taskID := uuid.NewString()
	task := &domain.Task{
		TaskID:      taskID,
		WorkspaceID: suite.workspaceID,
		Billable:    false,
		Hours:       decimal.NewFromInt(2),
	}

	suite.mockRepo.On("FindTaskByID", ctx, taskID).Return(task, nil).Once()
	suite.mockRepo.On("UpdateForceInclude", ctx, taskID, true, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	updated, err := suite.service.SetForceInclude(ctx, suite.workspaceID, taskID, true, suite.userID)

	suite.Require().NoError(err)
	suite.True(updated.ForceIncluded)
	suite.Equal(suite.userID, updated.LastUpdatedBy)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *TaskServiceTestSuite) TestSetForceInclude_NoOpWhenUnchanged() {
	ctx := context.Background()
	taskID := uuid.NewString()
	task := &domain.Task{
		TaskID:        taskID,
		WorkspaceID:   suite.workspaceID,
		ForceIncluded: true,
	}

	suite.mockRepo.On("FindTaskByID", ctx, taskID).Return(task, nil).Once()

	updated, err := suite.service.SetForceInclude(ctx, suite.workspaceID, taskID, true, suite.userID)

	suite.Require().NoError(err)
	suite.True(updated.ForceIncluded)
	// No UpdateForceInclude call expected
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *TaskServiceTestSuite) TestSetForceInclude_NotFound() {
	ctx := context.Background()
	taskID := uuid.NewString()

	suite.mockRepo.On("FindTaskByID", ctx, taskID).Return(nil, apperrors.ErrNotFound).Once()

	updated, err := suite.service.SetForceInclude(ctx, suite.workspaceID, taskID, true, suite.userID)

	suite.Require().Error(err)
	suite.Nil(updated)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *TaskServiceTestSuite) TestSetForceInclude_OtherWorkspaceLooksNotFound() {
	ctx := context.Background()
	taskID := uuid.NewString()
	task := &domain.Task{TaskID: taskID, WorkspaceID: uuid.NewString()}

	suite.mockRepo.On("FindTaskByID", ctx, taskID).Return(task, nil).Once()

	updated, err := suite.service.SetForceInclude(ctx, suite.workspaceID, taskID, true, suite.userID)

	suite.Require().Error(err)
	suite.Nil(updated)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *TaskServiceTestSuite) TestListEligible_FiltersIneligibleRows() {
	ctx := context.Background()
	lockedPackage := uuid.NewString()
	tasks := []domain.Task{
		{TaskID: "t1", WorkspaceID: suite.workspaceID, Billable: true, Hours: decimal.NewFromInt(3)},
		{TaskID: "t2", WorkspaceID: suite.workspaceID, ForceIncluded: true, Hours: decimal.NewFromInt(2)},
		// Locked task must never surface even if the repository returns it.
		{TaskID: "t3", WorkspaceID: suite.workspaceID, Billable: true, Hours: decimal.NewFromInt(1), WorkPackageID: &lockedPackage},
		// Zero hours is not billable work.
		{TaskID: "t4", WorkspaceID: suite.workspaceID, Billable: true, Hours: decimal.Zero},
	}

	suite.mockRepo.On("ListEligibleTasks", ctx, suite.workspaceID, domain.TaskFilters{}).Return(tasks, nil).Once()

	eligible, err := suite.service.ListEligible(ctx, suite.workspaceID, domain.TaskFilters{})

	suite.Require().NoError(err)
	suite.Len(eligible, 2)
	suite.Equal("t1", eligible[0].TaskID)
	suite.Equal("t2", eligible[1].TaskID)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *TaskServiceTestSuite) TestUpsertImported_DerivesHours() {
	ctx := context.Background()
	reqs := []dto.ImportTaskRequest{
		{Key: "T-1", ProjectKey: "PRJ", SecondsSpent: 5400, Billable: true}, // 1.5h from tracked time
	}

	suite.mockRepo.On("UpsertTasks", ctx, suite.workspaceID, mock.MatchedBy(func(tasks []domain.Task) bool {
		return len(tasks) == 1 && tasks[0].Hours.Equal(decimal.NewFromFloat(1.5))
	})).Return([]domain.Task{{TaskID: "saved", Hours: decimal.NewFromFloat(1.5)}}, nil).Once()

	saved, err := suite.service.UpsertImported(ctx, suite.workspaceID, reqs, suite.userID)

	suite.Require().NoError(err)
	suite.Len(saved, 1)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *TaskServiceTestSuite) TestUpsertImported_ExplicitHoursWin() {
	ctx := context.Background()
	explicit := decimal.NewFromFloat(4.25)
	reqs := []dto.ImportTaskRequest{
		{Key: "T-2", ProjectKey: "PRJ", Hours: &explicit, SecondsSpent: 60, Billable: true},
	}

	suite.mockRepo.On("UpsertTasks", ctx, suite.workspaceID, mock.MatchedBy(func(tasks []domain.Task) bool {
		return len(tasks) == 1 && tasks[0].Hours.Equal(explicit)
	})).Return([]domain.Task{{TaskID: "saved", Hours: explicit}}, nil).Once()

	_, err := suite.service.UpsertImported(ctx, suite.workspaceID, reqs, suite.userID)

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *TaskServiceTestSuite) TestUpsertImported_NegativeTimeRejected() {
	ctx := context.Background()
	reqs := []dto.ImportTaskRequest{
		{Key: "T-3", ProjectKey: "PRJ", SecondsSpent: -10},
	}

	saved, err := suite.service.UpsertImported(ctx, suite.workspaceID, reqs, suite.userID)

	suite.Require().Error(err)
	suite.Nil(saved)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpsertTasks", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TaskServiceTestSuite) TestUpsertImported_EmptyBatch() {
	ctx := context.Background()

	saved, err := suite.service.UpsertImported(ctx, suite.workspaceID, nil, suite.userID)

	suite.Require().NoError(err)
	assert.Empty(suite.T(), saved)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpsertTasks", mock.Anything, mock.Anything, mock.Anything)
}

func TestTaskServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceTestSuite))
}

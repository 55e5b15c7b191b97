package service

import (
	"context"

	"kenoanalyzer/events"
	"kenoanalyzer/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockAnalysisRunRepository is a mock implementation of AnalysisRunRepository
type MockAnalysisRunRepository struct {
	mock.Mock
}

func (m *MockAnalysisRunRepository) Create(ctx context.Context, run *models.AnalysisRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockAnalysisRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.AnalysisRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnalysisRun), args.Error(1)
}

func (m *MockAnalysisRunRepository) GetLatest(ctx context.Context) (*models.AnalysisRun, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnalysisRun), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
	analysisRunRepo AnalysisRunRepository
	eventBus        EventPublisher
}

// SetRepositories wires the repositories handed out after Begin
func (m *MockUnitOfWork) SetRepositories(analysisRunRepo AnalysisRunRepository, eventBus EventPublisher) {
	m.analysisRunRepo = analysisRunRepo
	m.eventBus = eventBus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) AnalysisRunRepository() AnalysisRunRepository {
	return m.analysisRunRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

// MockFrequencyService is a mock implementation of FrequencyService
type MockFrequencyService struct {
	mock.Mock
}

func (m *MockFrequencyService) Analyze(ctx context.Context, sources []RecordSource) (*models.FrequencyTable, *models.FrequencyStatistics, error) {
	args := m.Called(ctx, sources)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.FrequencyTable), args.Get(1).(*models.FrequencyStatistics), args.Error(2)
}

// MockSimulationService is a mock implementation of SimulationService
type MockSimulationService struct {
	mock.Mock
}

func (m *MockSimulationService) Simulate(ctx context.Context, trials int64, picks ...int) (*models.SimulationResult, error) {
	args := m.Called(ctx, trials)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SimulationResult), args.Error(1)
}

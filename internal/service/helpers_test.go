package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/vericlock-systems/vericlock/internal/calendar"
	"github.com/vericlock-systems/vericlock/internal/directory"
	"github.com/vericlock-systems/vericlock/internal/models"
	"github.com/vericlock-systems/vericlock/internal/ratelimit"
	"github.com/vericlock-systems/vericlock/internal/repository"
)

var enrolledEmbedding = []float32{0.1, 0.2, 0.3, 0.4}

type fakeExtractor struct {
	embedding []float32
	err       error
}

func (f *fakeExtractor) EnsureLoaded(_ context.Context) error {
	return nil
}

func (f *fakeExtractor) Extract(_ context.Context, _ []byte) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.embedding, nil
}

// MockDirectory is a mock implementation of DirectoryClient
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) CreateAccount(ctx context.Context, req *directory.CreateAccountRequest) (*directory.Account, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*directory.Account), args.Error(1)
}

func (m *MockDirectory) DeleteAccount(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type fixture struct {
	svc       *AttendanceService
	repo      *repository.InMemoryRepository
	extractor *fakeExtractor
	directory *MockDirectory
}

func testConfig() Config {
	return Config{
		MatchThreshold: 0.5,
		WorkStart:      models.NewDayClock(8, 0),
		LateCutoff:     models.NewDayClock(8, 15),
		FacilityClose:  models.NewDayClock(18, 0),
		CloseMode:      CloseAtFacilityClose,
		Location:       time.UTC,
	}
}

func newFixture(cfg Config) *fixture {
	repo := repository.NewInMemoryRepository()
	extractor := &fakeExtractor{embedding: enrolledEmbedding}
	dir := &MockDirectory{}

	svc := New(repo, extractor, dir, nil, ratelimit.NoOpLimiter{},
		calendar.Default(), slog.New(slog.DiscardHandler), cfg)
	return &fixture{svc: svc, repo: repo, extractor: extractor, directory: dir}
}

func (f *fixture) addEmployee(registered bool) *models.Employee {
	employee := &models.Employee{
		ID:           uuid.New().String(),
		AccountID:    uuid.New().String(),
		EmployeeCode: "EMP-" + uuid.New().String()[:8],
		FirstName:    "Ana",
		LastName:     "Reyes",
		Registered:   registered,
		CreatedAt:    time.Now(),
	}
	if registered {
		employee.Embedding = enrolledEmbedding
	}
	if err := f.repo.CreateEmployee(context.Background(), employee); err != nil {
		panic(err)
	}
	return employee
}

// at pins the service clock to a fixed instant.
func (f *fixture) at(t time.Time) {
	f.svc.now = func() time.Time { return t }
}

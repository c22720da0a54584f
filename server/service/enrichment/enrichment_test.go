package enrichment

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/rosterly/server/event"
	"github.com/hrygo/rosterly/store"
	storetest "github.com/hrygo/rosterly/store/test"
)

// mockEmbeddingService returns a fixed vector, or err, and remembers its inputs.
type mockEmbeddingService struct {
	vector []float32
	err    error
	block  bool

	calls atomic.Int32
	mu    sync.Mutex
	texts []string
}

func (m *mockEmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	m.calls.Add(1)
	m.mu.Lock()
	m.texts = append(m.texts, text)
	m.mu.Unlock()
	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.vector, nil
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		v, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	return len(m.vector)
}

func (m *mockEmbeddingService) lastText() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.texts) == 0 {
		return ""
	}
	return m.texts[len(m.texts)-1]
}

type memoryRecorder struct {
	mu       sync.Mutex
	outcomes []Outcome
}

func (r *memoryRecorder) Record(_ context.Context, o Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
}

func newEmployee(ctx context.Context, t *testing.T, ts *store.Store) *store.Employee {
	t.Helper()
	suffix := uuid.NewString()[:8]
	manager, err := ts.CreateManager(ctx, &store.Manager{
		Username:     "m-" + suffix,
		Email:        "m-" + suffix + "@example.com",
		PasswordHash: "x",
		DefaultRate:  37,
	})
	require.NoError(t, err)
	employee, err := ts.CreateEmployee(ctx, &store.Employee{
		ManagerID: manager.ID,
		FirstName: "Python",
		LastName:  "Developer",
		Email:     "python.dev-" + suffix + "@x.com",
		Mobile:    "+15550001234",
	})
	require.NoError(t, err)
	return employee
}

func employeeCreated(e *store.Employee) *event.EmployeeCreated {
	return event.NewEmployeeCreated(e.ID, e.FirstName, e.LastName, e.Email, e.Mobile)
}

func TestCanonicalText(t *testing.T) {
	assert.Equal(t, "Python | Developer | python.dev@x.com | +15550001234",
		EmployeeText("Python", "Developer", "python.dev@x.com", "+15550001234"))
	assert.Equal(t, "Acme | +1555 | acme@x.com | Hardware retail",
		ClientText("Acme", "+1555", "acme@x.com", "Hardware retail"))
	assert.Equal(t, " |  | a@x.com | ", EmployeeText("", "", "a@x.com", ""))
}

func TestEmployeeHandler_Success(t *testing.T) {
	ctx := context.Background()
	ts := storetest.NewTestingStore(ctx, t)
	employee := newEmployee(ctx, t, ts)

	vector := []float32{0.6, 0.8, 0}
	embedder := &mockEmbeddingService{vector: vector}
	handler := NewEmployeeHandler(embedder, ts, WithRecorder(NewStoreRecorder(ts)))

	require.NoError(t, handler.Handle(ctx, employeeCreated(employee)))
	assert.Equal(t, "Python | Developer | "+employee.Email+" | +15550001234", embedder.lastText())

	got, err := ts.GetEmployee(ctx, &store.FindEmployee{ID: &employee.ID})
	require.NoError(t, err)
	require.Len(t, got.Embedding, storetest.TestDimensions)
	assert.Equal(t, vector, got.Embedding)

	attempts, err := ts.ListEnrichmentAttempts(ctx, &store.FindEnrichmentAttempt{EntityID: &employee.ID})
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, store.EnrichmentSucceeded, attempts[0].Status)
	assert.Equal(t, store.EntityKindEmployee, attempts[0].Kind)
}

func TestEmployeeHandler_ProviderFailure(t *testing.T) {
	ctx := context.Background()
	ts := storetest.NewTestingStore(ctx, t)
	employee := newEmployee(ctx, t, ts)

	embedder := &mockEmbeddingService{err: errors.New("quota exceeded")}
	recorder := &memoryRecorder{}
	handler := NewEmployeeHandler(embedder, ts, WithRecorder(recorder))

	// Failures never reach the bus.
	require.NoError(t, handler.Handle(ctx, employeeCreated(employee)))

	got, err := ts.GetEmployee(ctx, &store.FindEmployee{ID: &employee.ID})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.Embedding)

	require.Len(t, recorder.outcomes, 1)
	assert.Equal(t, store.EnrichmentFailed, recorder.outcomes[0].Status)
	assert.Contains(t, recorder.outcomes[0].Error, "quota exceeded")
	assert.False(t, recorder.outcomes[0].Succeeded())
}

func TestEmployeeHandler_DimensionMismatch(t *testing.T) {
	ctx := context.Background()
	ts := storetest.NewTestingStore(ctx, t)
	employee := newEmployee(ctx, t, ts)

	handler := NewEmployeeHandler(&mockEmbeddingService{vector: []float32{1, 0}}, ts)
	outcome := handler.Enrich(ctx, employee.ID, "text")
	assert.Equal(t, store.EnrichmentFailed, outcome.Status)

	got, err := ts.GetEmployee(ctx, &store.FindEmployee{ID: &employee.ID})
	require.NoError(t, err)
	assert.Nil(t, got.Embedding)
}

func TestEmployeeHandler_DuplicateDelivery(t *testing.T) {
	ctx := context.Background()
	ts := storetest.NewTestingStore(ctx, t)
	employee := newEmployee(ctx, t, ts)

	embedder := &mockEmbeddingService{vector: []float32{0, 0, 1}}
	recorder := &memoryRecorder{}
	handler := NewEmployeeHandler(embedder, ts, WithRecorder(recorder))

	e := employeeCreated(employee)
	require.NoError(t, handler.Handle(ctx, e))
	require.NoError(t, handler.Handle(ctx, e))
	assert.Equal(t, int32(2), embedder.calls.Load())

	list, err := ts.ListEmployees(ctx, &store.FindEmployee{ManagerID: &employee.ManagerID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, []float32{0, 0, 1}, list[0].Embedding)
	for _, o := range recorder.outcomes {
		assert.True(t, o.Succeeded())
	}
}

func TestClientHandler_ThroughBus(t *testing.T) {
	ctx := context.Background()
	ts := storetest.NewTestingStore(ctx, t)
	employee := newEmployee(ctx, t, ts)
	client, err := ts.CreateClient(ctx, &store.Client{
		ManagerID:         employee.ManagerID,
		ClientName:        "Acme",
		Mobile:            "+1555",
		Email:             "acme-" + uuid.NewString()[:8] + "@x.com",
		ClientDescription: "Hardware retail",
	})
	require.NoError(t, err)

	embedder := &mockEmbeddingService{vector: []float32{1, 0, 0}}
	bus := event.NewBus(nil)
	NewClientHandler(embedder, ts).Subscribe(bus)
	NewEmployeeHandler(embedder, ts).Subscribe(bus)

	bus.Publish(ctx, event.NewClientCreated(client.ID, client.ClientName, client.Mobile, client.Email, client.ClientDescription))
	assert.Equal(t, int32(1), embedder.calls.Load(), "only the client handler runs")
	assert.Equal(t, "Acme | +1555 | "+client.Email+" | Hardware retail", embedder.lastText())

	got, err := ts.GetClient(ctx, &store.FindClient{ID: &client.ID})
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 0}, got.Embedding)
}

func TestHandler_WrongEventKind(t *testing.T) {
	handler := NewClientHandler(&mockEmbeddingService{vector: []float32{1, 0, 0}}, nil)
	err := handler.Handle(context.Background(), event.NewEmployeeCreated(uuid.New(), "a", "b", "c", "d"))
	assert.Error(t, err)
}

func TestHandler_Timeout(t *testing.T) {
	recorder := &memoryRecorder{}
	handler := NewEmployeeHandler(&mockEmbeddingService{block: true}, nil,
		WithRecorder(recorder), WithTimeout(10*time.Millisecond))

	outcome := handler.Enrich(context.Background(), uuid.New(), "text")
	assert.Equal(t, store.EnrichmentFailed, outcome.Status)
	assert.Contains(t, outcome.Error, context.DeadlineExceeded.Error())
	require.Len(t, recorder.outcomes, 1)
}

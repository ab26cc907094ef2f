package orchestrator_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crosslink-crm/crosslink/internal/conflict"
	"github.com/crosslink-crm/crosslink/internal/dedupe"
	"github.com/crosslink-crm/crosslink/internal/domain"
	"github.com/crosslink-crm/crosslink/internal/idempotency"
	"github.com/crosslink-crm/crosslink/internal/logger"
	"github.com/crosslink-crm/crosslink/internal/mapping"
	"github.com/crosslink-crm/crosslink/internal/messaging"
	"github.com/crosslink-crm/crosslink/internal/mocks"
	"github.com/crosslink-crm/crosslink/internal/orchestrator"
	"github.com/crosslink-crm/crosslink/internal/provider"
	"github.com/crosslink-crm/crosslink/internal/retry"
	"github.com/crosslink-crm/crosslink/internal/store"
	"github.com/crosslink-crm/crosslink/internal/store/schema"
)

const testTenant = "acme"

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

// testSyncerMocks contains all the mocks needed for testing the orchestrator
type testSyncerMocks struct {
	ctrl      *gomock.Controller
	store     *mocks.MockStore
	providerA *mocks.MockContactProvider
	providerB *mocks.MockContactProvider
	publisher *mocks.MockPublisher
	clock     *mocks.MockClock
	syncer    orchestrator.Syncer
}

// setupSyncer creates all the mocks and the orchestrator for testing.
// withPublisher controls whether audit events are also published.
func setupSyncer(t *testing.T, withPublisher bool) *testSyncerMocks {
	ctrl := gomock.NewController(t)

	tm := &testSyncerMocks{
		ctrl:      ctrl,
		store:     mocks.NewMockStore(ctrl),
		providerA: mocks.NewMockContactProvider(ctrl),
		providerB: mocks.NewMockContactProvider(ctrl),
		publisher: mocks.NewMockPublisher(ctrl),
		clock:     mocks.NewMockClock(ctrl),
	}

	tm.clock.EXPECT().Now().Return(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)).AnyTimes()
	// Close selects on the shutdown deadline; never fire it here
	tm.clock.EXPECT().After(gomock.Any()).DoAndReturn(func(time.Duration) <-chan time.Time {
		return make(chan time.Time)
	}).AnyTimes()

	engine := mapping.NewEngine(tm.store, 16, time.Minute)
	guard := dedupe.NewGuard(tm.store, tm.clock, 5*time.Minute, 64)
	checker := idempotency.NewChecker(tm.store)
	executor := retry.NewExecutor(retry.Config{MaxAttempts: 2}, tm.clock, nil)

	var publisher *mocks.MockPublisher
	if withPublisher {
		publisher = tm.publisher
	}
	tm.syncer = orchestrator.NewOrchestrator(
		orchestrator.Config{TieBreak: conflict.TieBreakInbound, BatchWorkers: 4, FullSyncPage: 100},
		tm.store,
		tm.providerA,
		tm.providerB,
		engine,
		guard,
		checker,
		executor,
		publisherOrNil(publisher),
		tm.clock,
	)
	t.Cleanup(tm.syncer.Close)
	return tm
}

// publisherOrNil keeps a nil interface nil instead of a typed nil
func publisherOrNil(p *mocks.MockPublisher) messaging.Publisher {
	if p == nil {
		return nil
	}
	return p
}

func testRules() []mapping.Rule {
	return []mapping.Rule{
		{SourceField: mapping.FieldEmail, TargetField: mapping.FieldEmail, Direction: mapping.DirectionBoth, Transform: mapping.TransformLowercase, Active: true},
		{SourceField: mapping.FieldFirstName, TargetField: mapping.FieldFirstName, Direction: mapping.DirectionBoth, Active: true},
		{SourceField: mapping.FieldLastName, TargetField: mapping.FieldLastName, Direction: mapping.DirectionBoth, Active: true},
	}
}

// sideARaw builds a side-A webhook payload
func sideARaw(email, firstName, updatedAt string) map[string]interface{} {
	return map[string]interface{}{
		"properties": map[string]interface{}{
			"email":            email,
			"firstname":        firstName,
			"lastmodifieddate": updatedAt,
		},
	}
}

// expectMappedPayload asserts an outbound payload carries the mapped
// fields plus a non-empty operation tag
func expectMappedPayload(t *testing.T, payload domain.FlatFields, mapped domain.FlatFields) string {
	operationID := payload[dedupe.TagField]
	assert.NotEmpty(t, operationID)
	clone := payload.Clone()
	delete(clone, dedupe.TagField)
	assert.Equal(t, mapped, clone)
	return operationID
}

func TestHandleWebhookEventUnknownSide(t *testing.T) {
	tm := setupSyncer(t, false)

	_, err := tm.syncer.HandleWebhookEvent(context.Background(), testTenant, domain.WebhookEvent{
		Side:      domain.Side("c"),
		EventType: domain.EventTypeUpdated,
		ContactID: "c-1",
	})
	assert.ErrorIs(t, err, domain.ErrUnknownSide)
}

func TestHandleWebhookEventUnknownEventType(t *testing.T) {
	tm := setupSyncer(t, false)

	_, err := tm.syncer.HandleWebhookEvent(context.Background(), testTenant, domain.WebhookEvent{
		Side:      domain.SideA,
		EventType: domain.EventType("merged"),
		ContactID: "c-1",
	})
	assert.ErrorIs(t, err, domain.ErrUnknownEventType)
}

func TestHandleWebhookEventMissingContactID(t *testing.T) {
	tm := setupSyncer(t, false)

	_, err := tm.syncer.HandleWebhookEvent(context.Background(), testTenant, domain.WebhookEvent{
		Side:      domain.SideA,
		EventType: domain.EventTypeUpdated,
	})
	assert.ErrorIs(t, err, domain.ErrMissingContactID)
}

func TestHandleWebhookEventSuppressesEcho(t *testing.T) {
	tm := setupSyncer(t, false)

	raw := sideARaw("ada@example.com", "Ada", "2026-03-01T11:00:00Z")
	raw["properties"].(map[string]interface{})[dedupe.TagField] = "op-echo"

	tm.store.EXPECT().
		SyncOperationExists(gomock.Any(), testTenant, "op-echo").
		Return(true, nil)
	tm.store.EXPECT().
		AppendSyncEvent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, input store.SyncEventInput) (string, error) {
			assert.Equal(t, domain.SyncActionSkip, input.Action)
			assert.Equal(t, "echo", input.Detail["reason"])
			return "evt-1", nil
		})

	result, err := tm.syncer.HandleWebhookEvent(context.Background(), testTenant, domain.WebhookEvent{
		Side:      domain.SideA,
		EventType: domain.EventTypeUpdated,
		ContactID: "a-1",
		Record:    raw,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SyncActionSkip, result.Action)
	assert.Equal(t, "a-1", result.SideAID)
	assert.Empty(t, result.SideBID)
}

func TestHandleWebhookEventCreatesUnmappedContact(t *testing.T) {
	tm := setupSyncer(t, false)
	raw := sideARaw("Ada@Example.COM", "Ada", "2026-03-01T11:00:00Z")

	tm.store.EXPECT().ListActiveRules(gomock.Any(), testTenant).Return(testRules(), nil)
	tm.store.EXPECT().GetMappingBySideA(gomock.Any(), testTenant, "a-1").Return(nil, nil)
	tm.providerB.EXPECT().FindByEmail(gomock.Any(), "Ada@Example.COM").Return(nil, nil)
	tm.store.EXPECT().
		PutSyncOperation(gomock.Any(), testTenant, gomock.Any(), "a-1", domain.SideB, gomock.Any()).
		Return(nil)

	mapped := domain.FlatFields{
		mapping.FieldEmail:     "ada@example.com",
		mapping.FieldFirstName: "Ada",
	}
	tm.providerB.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, payload domain.FlatFields) (*domain.ContactRecord, error) {
			expectMappedPayload(t, payload, mapped)
			return &domain.ContactRecord{ID: "b-9", UpdatedAt: "2026-03-01T11:00:01Z"}, nil
		})
	tm.store.EXPECT().
		SetContactHash(gomock.Any(), testTenant, "b-9", domain.SideB, idempotency.ComputeHash(mapped)).
		Return(nil)
	tm.store.EXPECT().UpsertMapping(gomock.Any(), testTenant, "a-1", "b-9", domain.SyncSourceSideA).Return(nil)
	tm.store.EXPECT().
		AppendSyncEvent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, input store.SyncEventInput) (string, error) {
			assert.Equal(t, domain.SyncActionCreate, input.Action)
			assert.Equal(t, domain.SyncSourceSideA, input.SourceSystem)
			assert.NotEmpty(t, input.Detail["operation_id"])
			return "evt-1", nil
		})

	result, err := tm.syncer.HandleWebhookEvent(context.Background(), testTenant, domain.WebhookEvent{
		Side:      domain.SideA,
		EventType: domain.EventTypeCreated,
		ContactID: "a-1",
		Record:    raw,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SyncActionCreate, result.Action)
	assert.Equal(t, "a-1", result.SideAID)
	assert.Equal(t, "b-9", result.SideBID)
}

func TestHandleWebhookEventAdoptsTargetByEmail(t *testing.T) {
	tm := setupSyncer(t, false)
	raw := sideARaw("ada@example.com", "Ada", "2026-03-01T11:00:00Z")

	tm.store.EXPECT().ListActiveRules(gomock.Any(), testTenant).Return(testRules(), nil)
	tm.store.EXPECT().GetMappingBySideA(gomock.Any(), testTenant, "a-1").Return(nil, nil)
	tm.providerB.EXPECT().
		FindByEmail(gomock.Any(), "ada@example.com").
		Return(&domain.ContactRecord{ID: "b-7", UpdatedAt: "2026-03-01T09:00:00Z"}, nil)
	// Link first, then run the normal update path against the match
	tm.store.EXPECT().UpsertMapping(gomock.Any(), testTenant, "a-1", "b-7", domain.SyncSourceSideA).Return(nil).Times(2)
	tm.providerB.EXPECT().
		GetByID(gomock.Any(), "b-7").
		Return(&domain.ContactRecord{ID: "b-7", UpdatedAt: "2026-03-01T09:00:00Z"}, nil)
	tm.store.EXPECT().GetContactHash(gomock.Any(), testTenant, "b-7", domain.SideB).Return("", nil)
	tm.store.EXPECT().
		PutSyncOperation(gomock.Any(), testTenant, gomock.Any(), "b-7", domain.SideB, gomock.Any()).
		Return(nil)
	tm.providerB.EXPECT().
		Update(gomock.Any(), "b-7", gomock.Any()).
		Return(nil)
	tm.store.EXPECT().SetContactHash(gomock.Any(), testTenant, "b-7", domain.SideB, gomock.Any()).Return(nil)
	tm.store.EXPECT().
		AppendSyncEvent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, input store.SyncEventInput) (string, error) {
			assert.Equal(t, domain.SyncActionUpdate, input.Action)
			return "evt-1", nil
		})

	result, err := tm.syncer.HandleWebhookEvent(context.Background(), testTenant, domain.WebhookEvent{
		Side:      domain.SideA,
		EventType: domain.EventTypeCreated,
		ContactID: "a-1",
		Record:    raw,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SyncActionUpdate, result.Action)
	assert.Equal(t, "b-7", result.SideBID)
}

func TestHandleWebhookEventUpdatesMappedContact(t *testing.T) {
	tm := setupSyncer(t, false)
	raw := sideARaw("ada@example.com", "Ada", "2026-03-01T11:00:00Z")

	tm.store.EXPECT().ListActiveRules(gomock.Any(), testTenant).Return(testRules(), nil)
	tm.store.EXPECT().
		GetMappingBySideA(gomock.Any(), testTenant, "a-1").
		Return(&schema.ContactMapping{Tenant: testTenant, SideAID: "a-1", SideBID: "b-1"}, nil)
	// Target copy is older, so the inbound write wins
	tm.providerB.EXPECT().
		GetByID(gomock.Any(), "b-1").
		Return(&domain.ContactRecord{ID: "b-1", UpdatedAt: "2026-03-01T10:00:00Z"}, nil)
	tm.store.EXPECT().GetContactHash(gomock.Any(), testTenant, "b-1", domain.SideB).Return("", nil)
	tm.store.EXPECT().
		PutSyncOperation(gomock.Any(), testTenant, gomock.Any(), "b-1", domain.SideB, gomock.Any()).
		Return(nil)

	mapped := domain.FlatFields{
		mapping.FieldEmail:     "ada@example.com",
		mapping.FieldFirstName: "Ada",
	}
	var taggedOperationID string
	tm.providerB.EXPECT().
		Update(gomock.Any(), "b-1", gomock.Any()).
		DoAndReturn(func(ctx context.Context, id string, payload domain.FlatFields) error {
			taggedOperationID = expectMappedPayload(t, payload, mapped)
			return nil
		})
	tm.store.EXPECT().
		SetContactHash(gomock.Any(), testTenant, "b-1", domain.SideB, idempotency.ComputeHash(mapped)).
		Return(nil)
	tm.store.EXPECT().UpsertMapping(gomock.Any(), testTenant, "a-1", "b-1", domain.SyncSourceSideA).Return(nil)
	tm.store.EXPECT().
		AppendSyncEvent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, input store.SyncEventInput) (string, error) {
			assert.Equal(t, domain.SyncActionUpdate, input.Action)
			assert.Equal(t, taggedOperationID, input.Detail["operation_id"])
			return "evt-1", nil
		})

	result, err := tm.syncer.HandleWebhookEvent(context.Background(), testTenant, domain.WebhookEvent{
		Side:      domain.SideA,
		EventType: domain.EventTypeUpdated,
		ContactID: "a-1",
		Record:    raw,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SyncActionUpdate, result.Action)
	assert.Equal(t, "a-1", result.SideAID)
	assert.Equal(t, "b-1", result.SideBID)
}

func TestHandleWebhookEventSkipsWhenTargetIsNewer(t *testing.T) {
	tm := setupSyncer(t, false)
	raw := sideARaw("ada@example.com", "Ada", "2026-03-01T10:00:00Z")

	tm.store.EXPECT().ListActiveRules(gomock.Any(), testTenant).Return(testRules(), nil)
	tm.store.EXPECT().
		GetMappingBySideA(gomock.Any(), testTenant, "a-1").
		Return(&schema.ContactMapping{SideAID: "a-1", SideBID: "b-1"}, nil)
	tm.store.EXPECT().GetContactHash(gomock.Any(), testTenant, "b-1", domain.SideB).Return("", nil)
	tm.providerB.EXPECT().
		GetByID(gomock.Any(), "b-1").
		Return(&domain.ContactRecord{ID: "b-1", UpdatedAt: "2026-03-01T11:30:00Z"}, nil)
	tm.store.EXPECT().
		AppendSyncEvent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, input store.SyncEventInput) (string, error) {
			assert.Equal(t, domain.SyncActionSkip, input.Action)
			assert.Equal(t, "conflict loss", input.Detail["reason"])
			assert.Contains(t, input.Detail["decision"], "side b newer")
			return "evt-1", nil
		})

	result, err := tm.syncer.HandleWebhookEvent(context.Background(), testTenant, domain.WebhookEvent{
		Side:      domain.SideA,
		EventType: domain.EventTypeUpdated,
		ContactID: "a-1",
		Record:    raw,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SyncActionSkip, result.Action)
}

func TestHandleWebhookEventSkipsUnchangedContent(t *testing.T) {
	tm := setupSyncer(t, false)
	raw := sideARaw("ada@example.com", "Ada", "2026-03-01T11:00:00Z")

	mapped := domain.FlatFields{
		mapping.FieldEmail:     "ada@example.com",
		mapping.FieldFirstName: "Ada",
	}

	tm.store.EXPECT().ListActiveRules(gomock.Any(), testTenant).Return(testRules(), nil)
	tm.store.EXPECT().
		GetMappingBySideA(gomock.Any(), testTenant, "a-1").
		Return(&schema.ContactMapping{SideAID: "a-1", SideBID: "b-1"}, nil)
	// No GetByID expectation: matching content must skip before any
	// remote call happens
	tm.store.EXPECT().
		GetContactHash(gomock.Any(), testTenant, "b-1", domain.SideB).
		Return(idempotency.ComputeHash(mapped), nil)
	tm.store.EXPECT().
		AppendSyncEvent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, input store.SyncEventInput) (string, error) {
			assert.Equal(t, domain.SyncActionSkip, input.Action)
			assert.Equal(t, "content unchanged", input.Detail["reason"])
			return "evt-1", nil
		})

	result, err := tm.syncer.HandleWebhookEvent(context.Background(), testTenant, domain.WebhookEvent{
		Side:      domain.SideA,
		EventType: domain.EventTypeUpdated,
		ContactID: "a-1",
		Record:    raw,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SyncActionSkip, result.Action)
}

func TestHandleWebhookEventRelinksStaleMapping(t *testing.T) {
	tm := setupSyncer(t, false)
	raw := sideARaw("ada@example.com", "Ada", "2026-03-01T11:00:00Z")

	tm.store.EXPECT().ListActiveRules(gomock.Any(), testTenant).Return(testRules(), nil)
	tm.store.EXPECT().
		GetMappingBySideA(gomock.Any(), testTenant, "a-1").
		Return(&schema.ContactMapping{SideAID: "a-1", SideBID: "b-gone"}, nil)
	tm.store.EXPECT().GetContactHash(gomock.Any(), testTenant, "b-gone", domain.SideB).Return("", nil)
	// The linked target contact no longer exists
	tm.providerB.EXPECT().
		GetByID(gomock.Any(), "b-gone").
		Return(nil, domain.ErrContactNotFound)
	tm.store.EXPECT().DeleteMapping(gomock.Any(), testTenant, "a-1", domain.SideA).Return(nil)
	tm.providerB.EXPECT().FindByEmail(gomock.Any(), "ada@example.com").Return(nil, nil)
	tm.store.EXPECT().
		PutSyncOperation(gomock.Any(), testTenant, gomock.Any(), "a-1", domain.SideB, gomock.Any()).
		Return(nil)
	tm.providerB.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		Return(&domain.ContactRecord{ID: "b-new"}, nil)
	tm.store.EXPECT().SetContactHash(gomock.Any(), testTenant, "b-new", domain.SideB, gomock.Any()).Return(nil)
	tm.store.EXPECT().UpsertMapping(gomock.Any(), testTenant, "a-1", "b-new", domain.SyncSourceSideA).Return(nil)
	tm.store.EXPECT().AppendSyncEvent(gomock.Any(), gomock.Any()).Return("evt-1", nil)

	result, err := tm.syncer.HandleWebhookEvent(context.Background(), testTenant, domain.WebhookEvent{
		Side:      domain.SideA,
		EventType: domain.EventTypeUpdated,
		ContactID: "a-1",
		Record:    raw,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SyncActionCreate, result.Action)
	assert.Equal(t, "b-new", result.SideBID)
}

func TestHandleWebhookEventFromSideB(t *testing.T) {
	tm := setupSyncer(t, false)
	raw := map[string]interface{}{
		"email_addresses": []interface{}{
			map[string]interface{}{"address": "alan@example.com"},
		},
		"given_name":              "Alan",
		"last_modified_date_time": "2026-03-01T11:00:00Z",
	}

	tm.store.EXPECT().ListActiveRules(gomock.Any(), testTenant).Return(testRules(), nil)
	tm.store.EXPECT().
		GetMappingBySideB(gomock.Any(), testTenant, "b-1").
		Return(&schema.ContactMapping{SideAID: "a-1", SideBID: "b-1"}, nil)
	tm.providerA.EXPECT().
		GetByID(gomock.Any(), "a-1").
		Return(&domain.ContactRecord{ID: "a-1", UpdatedAt: "2026-03-01T10:00:00Z"}, nil)
	tm.store.EXPECT().GetContactHash(gomock.Any(), testTenant, "a-1", domain.SideA).Return("", nil)
	tm.store.EXPECT().
		PutSyncOperation(gomock.Any(), testTenant, gomock.Any(), "a-1", domain.SideA, gomock.Any()).
		Return(nil)
	tm.providerA.EXPECT().Update(gomock.Any(), "a-1", gomock.Any()).Return(nil)
	tm.store.EXPECT().SetContactHash(gomock.Any(), testTenant, "a-1", domain.SideA, gomock.Any()).Return(nil)
	tm.store.EXPECT().UpsertMapping(gomock.Any(), testTenant, "a-1", "b-1", domain.SyncSourceSideB).Return(nil)
	tm.store.EXPECT().
		AppendSyncEvent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, input store.SyncEventInput) (string, error) {
			assert.Equal(t, domain.SyncSourceSideB, input.SourceSystem)
			return "evt-1", nil
		})

	result, err := tm.syncer.HandleWebhookEvent(context.Background(), testTenant, domain.WebhookEvent{
		Side:      domain.SideB,
		EventType: domain.EventTypeUpdated,
		ContactID: "b-1",
		Record:    raw,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SyncActionUpdate, result.Action)
	assert.Equal(t, domain.SideB, result.SourceSystem)
	assert.Equal(t, "a-1", result.SideAID)
	assert.Equal(t, "b-1", result.SideBID)
}

func TestHandleWebhookEventDeleteRemovesMapping(t *testing.T) {
	tm := setupSyncer(t, false)

	tm.store.EXPECT().
		GetMappingBySideA(gomock.Any(), testTenant, "a-1").
		Return(&schema.ContactMapping{SideAID: "a-1", SideBID: "b-1"}, nil)
	tm.store.EXPECT().DeleteMapping(gomock.Any(), testTenant, "a-1", domain.SideA).Return(nil)
	tm.store.EXPECT().
		AppendSyncEvent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, input store.SyncEventInput) (string, error) {
			assert.Equal(t, domain.SyncActionDelete, input.Action)
			return "evt-1", nil
		})

	result, err := tm.syncer.HandleWebhookEvent(context.Background(), testTenant, domain.WebhookEvent{
		Side:      domain.SideA,
		EventType: domain.EventTypeDeleted,
		ContactID: "a-1",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SyncActionDelete, result.Action)
	assert.Equal(t, "a-1", result.SideAID)
	assert.Equal(t, "b-1", result.SideBID)
}

func TestHandleWebhookEventDeleteWithoutMapping(t *testing.T) {
	tm := setupSyncer(t, false)

	tm.store.EXPECT().GetMappingBySideB(gomock.Any(), testTenant, "b-1").Return(nil, nil)
	tm.store.EXPECT().
		AppendSyncEvent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, input store.SyncEventInput) (string, error) {
			assert.Equal(t, domain.SyncActionSkip, input.Action)
			assert.Equal(t, "no mapping for deleted contact", input.Detail["reason"])
			return "evt-1", nil
		})

	result, err := tm.syncer.HandleWebhookEvent(context.Background(), testTenant, domain.WebhookEvent{
		Side:      domain.SideB,
		EventType: domain.EventTypeDeleted,
		ContactID: "b-1",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SyncActionSkip, result.Action)
}

func TestAuditPublishesEvent(t *testing.T) {
	tm := setupSyncer(t, true)

	tm.store.EXPECT().GetMappingBySideA(gomock.Any(), testTenant, "a-1").Return(nil, nil)
	tm.store.EXPECT().AppendSyncEvent(gomock.Any(), gomock.Any()).Return("evt-42", nil)
	tm.publisher.EXPECT().
		PublishSyncEvent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, event *domain.AuditEvent) error {
			assert.Equal(t, "evt-42", event.EventID)
			assert.Equal(t, testTenant, event.Tenant)
			assert.Equal(t, domain.SyncActionSkip, event.Action)
			assert.False(t, event.CreatedAt.IsZero())
			return nil
		})

	_, err := tm.syncer.HandleWebhookEvent(context.Background(), testTenant, domain.WebhookEvent{
		Side:      domain.SideA,
		EventType: domain.EventTypeDeleted,
		ContactID: "a-1",
	})
	require.NoError(t, err)
}

func TestAuditFailuresDoNotAbortSync(t *testing.T) {
	tm := setupSyncer(t, false)

	tm.store.EXPECT().GetMappingBySideA(gomock.Any(), testTenant, "a-1").Return(nil, nil)
	tm.store.EXPECT().
		AppendSyncEvent(gomock.Any(), gomock.Any()).
		Return("", errors.New("connection refused"))

	result, err := tm.syncer.HandleWebhookEvent(context.Background(), testTenant, domain.WebhookEvent{
		Side:      domain.SideA,
		EventType: domain.EventTypeDeleted,
		ContactID: "a-1",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SyncActionSkip, result.Action)
}

func TestProcessWebhookBatchPreservesOrder(t *testing.T) {
	tm := setupSyncer(t, false)

	// Event 0 and 2 are delete-without-mapping skips, event 1 is invalid
	tm.store.EXPECT().GetMappingBySideA(gomock.Any(), testTenant, "a-1").Return(nil, nil)
	tm.store.EXPECT().GetMappingBySideB(gomock.Any(), testTenant, "b-3").Return(nil, nil)
	tm.store.EXPECT().AppendSyncEvent(gomock.Any(), gomock.Any()).Return("evt-1", nil).Times(2)

	events := []domain.WebhookEvent{
		{Side: domain.SideA, EventType: domain.EventTypeDeleted, ContactID: "a-1"},
		{Side: domain.Side("c"), EventType: domain.EventTypeUpdated, ContactID: "x-1"},
		{Side: domain.SideB, EventType: domain.EventTypeDeleted, ContactID: "b-3"},
	}

	results := tm.syncer.ProcessWebhookBatch(context.Background(), testTenant, events)
	require.Len(t, results, 3)

	assert.Equal(t, 0, results[0].Index)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, domain.SyncActionSkip, results[0].Result.Action)

	assert.Equal(t, 1, results[1].Index)
	assert.ErrorIs(t, results[1].Err, domain.ErrUnknownSide)

	assert.Equal(t, 2, results[2].Index)
	assert.NoError(t, results[2].Err)
	assert.Equal(t, domain.SyncActionSkip, results[2].Result.Action)
}

func TestFullSyncReconcilesBothSides(t *testing.T) {
	tm := setupSyncer(t, false)

	bRaw := map[string]interface{}{
		"email_addresses": []interface{}{
			map[string]interface{}{"address": "alan@example.com"},
		},
		"given_name":              "Alan",
		"last_modified_date_time": "2026-03-01T11:00:00Z",
	}

	// Side A has nothing; side B has one unmapped contact that gets
	// created on side A.
	tm.providerA.EXPECT().
		List(gomock.Any(), "", 100).
		Return(&provider.Page{}, nil)
	tm.providerB.EXPECT().
		List(gomock.Any(), "", 100).
		Return(&provider.Page{
			Records: []domain.ContactRecord{
				{ID: "b-1", Fields: bRaw, UpdatedAt: "2026-03-01T11:00:00Z"},
			},
		}, nil)

	// Once for the unmapped filter, once inside the sync itself
	tm.store.EXPECT().GetMappingBySideB(gomock.Any(), testTenant, "b-1").Return(nil, nil).Times(2)
	tm.store.EXPECT().ListActiveRules(gomock.Any(), testTenant).Return(testRules(), nil)
	tm.providerA.EXPECT().FindByEmail(gomock.Any(), "alan@example.com").Return(nil, nil)
	tm.store.EXPECT().
		PutSyncOperation(gomock.Any(), testTenant, gomock.Any(), "b-1", domain.SideA, gomock.Any()).
		Return(nil)
	tm.providerA.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		Return(&domain.ContactRecord{ID: "a-9"}, nil)
	tm.store.EXPECT().SetContactHash(gomock.Any(), testTenant, "a-9", domain.SideA, gomock.Any()).Return(nil)
	tm.store.EXPECT().UpsertMapping(gomock.Any(), testTenant, "a-9", "b-1", domain.SyncSourceManual).Return(nil)
	tm.store.EXPECT().
		AppendSyncEvent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, input store.SyncEventInput) (string, error) {
			assert.Equal(t, domain.SyncSourceManual, input.SourceSystem)
			return "evt-1", nil
		})
	tm.store.EXPECT().SetLastFullSyncAt(gomock.Any(), testTenant, gomock.Any()).Return(nil)

	stats, err := tm.syncer.FullSync(context.Background(), testTenant)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Synced)
	assert.Equal(t, 0, stats.Skipped)
	assert.Equal(t, 0, stats.Errors)
}

func TestFullSyncPagination(t *testing.T) {
	tm := setupSyncer(t, false)

	// Two side-A pages of mapped contacts that all skip on conflict loss
	aRecord := func(id string) domain.ContactRecord {
		return domain.ContactRecord{
			ID:        id,
			Fields:    sideARaw("x@example.com", "X", "2026-03-01T09:00:00Z"),
			UpdatedAt: "2026-03-01T09:00:00Z",
		}
	}
	tm.providerA.EXPECT().
		List(gomock.Any(), "", 100).
		Return(&provider.Page{Records: []domain.ContactRecord{aRecord("a-1")}, NextCursor: "p2"}, nil)
	tm.providerA.EXPECT().
		List(gomock.Any(), "p2", 100).
		Return(&provider.Page{Records: []domain.ContactRecord{aRecord("a-2")}}, nil)
	tm.providerB.EXPECT().
		List(gomock.Any(), "", 100).
		Return(&provider.Page{}, nil)

	tm.store.EXPECT().ListActiveRules(gomock.Any(), testTenant).Return(testRules(), nil)
	for _, pair := range [][2]string{{"a-1", "b-1"}, {"a-2", "b-2"}} {
		tm.store.EXPECT().
			GetMappingBySideA(gomock.Any(), testTenant, pair[0]).
			Return(&schema.ContactMapping{SideAID: pair[0], SideBID: pair[1]}, nil)
		tm.store.EXPECT().GetContactHash(gomock.Any(), testTenant, pair[1], domain.SideB).Return("", nil)
		tm.providerB.EXPECT().
			GetByID(gomock.Any(), pair[1]).
			Return(&domain.ContactRecord{ID: pair[1], UpdatedAt: "2026-03-01T11:00:00Z"}, nil)
	}
	tm.store.EXPECT().AppendSyncEvent(gomock.Any(), gomock.Any()).Return("evt-1", nil).Times(2)
	tm.store.EXPECT().SetLastFullSyncAt(gomock.Any(), testTenant, gomock.Any()).Return(nil)

	stats, err := tm.syncer.FullSync(context.Background(), testTenant)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.Skipped)
	assert.Equal(t, 0, stats.Synced)
}

func TestFullSyncRecordsWatermarkOnFailure(t *testing.T) {
	tm := setupSyncer(t, false)

	tm.providerA.EXPECT().
		List(gomock.Any(), "", 100).
		Return(nil, &domain.StatusError{StatusCode: 400, Message: "bad request"})
	tm.store.EXPECT().SetLastFullSyncAt(gomock.Any(), testTenant, gomock.Any()).Return(nil)

	_, err := tm.syncer.FullSync(context.Background(), testTenant)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list side a contacts")
}

func TestFullSyncCountsBadRecords(t *testing.T) {
	tm := setupSyncer(t, false)

	tm.providerA.EXPECT().
		List(gomock.Any(), "", 100).
		Return(&provider.Page{
			Records: []domain.ContactRecord{
				{ID: "a-1", Fields: sideARaw("ada@example.com", "Ada", "2026-03-01T11:00:00Z")},
			},
		}, nil)
	tm.providerB.EXPECT().
		List(gomock.Any(), "", 100).
		Return(&provider.Page{}, nil)

	tm.store.EXPECT().ListActiveRules(gomock.Any(), testTenant).Return(testRules(), nil)
	tm.store.EXPECT().
		GetMappingBySideA(gomock.Any(), testTenant, "a-1").
		Return(nil, errors.New("connection refused"))
	tm.store.EXPECT().
		AppendSyncEvent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, input store.SyncEventInput) (string, error) {
			assert.Equal(t, domain.SyncActionFailed, input.Action)
			assert.Equal(t, domain.SyncSourceManual, input.SourceSystem)
			assert.Contains(t, input.Error, "connection refused")
			return "evt-1", nil
		})
	tm.store.EXPECT().SetLastFullSyncAt(gomock.Any(), testTenant, gomock.Any()).Return(nil)

	stats, err := tm.syncer.FullSync(context.Background(), testTenant)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Errors)
}

func TestHandleWebhookEventRecordsFailure(t *testing.T) {
	tm := setupSyncer(t, false)
	raw := sideARaw("ada@example.com", "Ada", "2026-03-01T11:00:00Z")

	tm.store.EXPECT().ListActiveRules(gomock.Any(), testTenant).Return(testRules(), nil)
	tm.store.EXPECT().GetMappingBySideA(gomock.Any(), testTenant, "a-1").Return(nil, nil)
	tm.providerB.EXPECT().FindByEmail(gomock.Any(), "ada@example.com").Return(nil, nil)
	tm.store.EXPECT().
		PutSyncOperation(gomock.Any(), testTenant, gomock.Any(), "a-1", domain.SideB, gomock.Any()).
		Return(nil)
	tm.providerB.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		Return(nil, &domain.StatusError{StatusCode: 400, Message: "invalid payload"})
	tm.store.EXPECT().
		AppendSyncEvent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, input store.SyncEventInput) (string, error) {
			assert.Equal(t, domain.SyncActionFailed, input.Action)
			assert.Equal(t, domain.SyncSourceSideA, input.SourceSystem)
			assert.Equal(t, "a-1", input.SideAID)
			assert.Contains(t, input.Error, "invalid payload")
			return "evt-1", nil
		})

	_, err := tm.syncer.HandleWebhookEvent(context.Background(), testTenant, domain.WebhookEvent{
		Side:      domain.SideA,
		EventType: domain.EventTypeCreated,
		ContactID: "a-1",
		Record:    raw,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create target contact")
}

func TestFullSyncCountsRecordsWithoutIDs(t *testing.T) {
	tm := setupSyncer(t, false)

	aRecord := func(id string) domain.ContactRecord {
		return domain.ContactRecord{
			ID:        id,
			Fields:    sideARaw("x@example.com", "X", "2026-03-01T09:00:00Z"),
			UpdatedAt: "2026-03-01T09:00:00Z",
		}
	}
	// The middle record surfaced without any usable identifier
	tm.providerA.EXPECT().
		List(gomock.Any(), "", 100).
		Return(&provider.Page{
			Records: []domain.ContactRecord{
				aRecord("a-1"),
				{Fields: sideARaw("y@example.com", "Y", "2026-03-01T09:00:00Z")},
				aRecord("a-2"),
			},
		}, nil)
	tm.providerB.EXPECT().
		List(gomock.Any(), "", 100).
		Return(&provider.Page{}, nil)

	tm.store.EXPECT().ListActiveRules(gomock.Any(), testTenant).Return(testRules(), nil)
	for _, pair := range [][2]string{{"a-1", "b-1"}, {"a-2", "b-2"}} {
		tm.store.EXPECT().
			GetMappingBySideA(gomock.Any(), testTenant, pair[0]).
			Return(&schema.ContactMapping{SideAID: pair[0], SideBID: pair[1]}, nil)
		tm.store.EXPECT().GetContactHash(gomock.Any(), testTenant, pair[1], domain.SideB).Return("", nil)
		tm.providerB.EXPECT().
			GetByID(gomock.Any(), pair[1]).
			Return(&domain.ContactRecord{ID: pair[1], UpdatedAt: "2026-03-01T11:00:00Z"}, nil)
	}
	var actions []domain.SyncAction
	tm.store.EXPECT().
		AppendSyncEvent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, input store.SyncEventInput) (string, error) {
			actions = append(actions, input.Action)
			if input.Action == domain.SyncActionFailed {
				assert.Contains(t, input.Error, "missing contact id")
			}
			return "evt-1", nil
		}).
		Times(3)
	tm.store.EXPECT().SetLastFullSyncAt(gomock.Any(), testTenant, gomock.Any()).Return(nil)

	stats, err := tm.syncer.FullSync(context.Background(), testTenant)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Skipped)
	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, 0, stats.Synced)
	assert.Contains(t, actions, domain.SyncActionFailed)
}

func TestFullSyncSkipsOwnWrites(t *testing.T) {
	tm := setupSyncer(t, false)

	raw := sideARaw("ada@example.com", "Ada", "2026-03-01T11:00:00Z")
	raw["properties"].(map[string]interface{})[dedupe.TagField] = "op-sweep"

	tm.providerA.EXPECT().
		List(gomock.Any(), "", 100).
		Return(&provider.Page{
			Records: []domain.ContactRecord{
				{ID: "a-1", Fields: raw, UpdatedAt: "2026-03-01T11:00:00Z"},
			},
		}, nil)
	tm.providerB.EXPECT().
		List(gomock.Any(), "", 100).
		Return(&provider.Page{}, nil)

	tm.store.EXPECT().
		SyncOperationExists(gomock.Any(), testTenant, "op-sweep").
		Return(true, nil)
	tm.store.EXPECT().
		AppendSyncEvent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, input store.SyncEventInput) (string, error) {
			assert.Equal(t, domain.SyncActionSkip, input.Action)
			assert.Equal(t, "echo", input.Detail["reason"])
			return "evt-1", nil
		})
	tm.store.EXPECT().SetLastFullSyncAt(gomock.Any(), testTenant, gomock.Any()).Return(nil)

	stats, err := tm.syncer.FullSync(context.Background(), testTenant)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 0, stats.Synced)
}

func TestCloseConsultsShutdownDeadline(t *testing.T) {
	ctrl := gomock.NewController(t)

	st := mocks.NewMockStore(ctrl)
	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().
		After(2 * time.Second).
		DoAndReturn(func(time.Duration) <-chan time.Time {
			return make(chan time.Time)
		})

	syncer := orchestrator.NewOrchestrator(
		orchestrator.Config{BatchShutdown: 2 * time.Second},
		st,
		mocks.NewMockContactProvider(ctrl),
		mocks.NewMockContactProvider(ctrl),
		mapping.NewEngine(st, 16, time.Minute),
		dedupe.NewGuard(st, clock, 5*time.Minute, 64),
		idempotency.NewChecker(st),
		retry.NewExecutor(retry.Config{MaxAttempts: 2}, clock, nil),
		nil,
		clock,
	)

	// An idle pool drains immediately, well before the deadline fires
	syncer.Close()
}

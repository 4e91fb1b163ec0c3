package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/service-desk/internal/domain"
	"github.com/spec-kit/service-desk/internal/events"
	apperrors "github.com/spec-kit/service-desk/pkg/util"
)

func newTestRequestService() (*RequestService, *fakeRequestRepo, *fakeTechnicianRepo, events.Dispatcher) {
	requests := newFakeRequestRepo()
	technicians := newFakeTechnicianRepo()
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewRequestService(RequestDependencies{
		RequestRepo:    requests,
		TechnicianRepo: technicians,
		HistoryRepo:    &fakeHistoryRepo{requests: requests},
		Dispatcher:     dispatcher,
	})
	return svc, requests, technicians, dispatcher
}

func caller(login string, role domain.Role) *domain.Caller {
	return &domain.Caller{UserID: 1, Login: login, DisplayName: login, Role: role}
}

func addTechnician(t *testing.T, technicians *fakeTechnicianRepo, login, name, phone string) *domain.Technician {
	t.Helper()
	techLogin := login
	tech := &domain.Technician{FullName: name, Phone: phone, Login: &techLogin, Specialty: "Специалист"}
	require.NoError(t, technicians.Create(context.Background(), tech))
	return tech
}

func mustCreate(t *testing.T, svc *RequestService, owner *domain.Caller) *domain.ServiceRequest {
	t.Helper()
	req, err := svc.Create(context.Background(), owner, CreateRequestInput{
		EquipmentType:      "Кондиционер",
		EquipmentModel:     "TCL TAC-12CHSA",
		ProblemDescription: "Не охлаждает воздух",
		ClientName:         "Клиент 1",
		ClientPhone:        "89151234567",
	})
	require.NoError(t, err)
	return req
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	return domainErr.Code
}

func TestCreateForcesNewStatusAndSequentialNumbers(t *testing.T) {
	svc, _, _, _ := newTestRequestService()
	client := caller("client1", domain.RoleClient)

	first := mustCreate(t, svc, client)
	second := mustCreate(t, svc, client)

	assert.Equal(t, domain.StatusNew, first.Status)
	assert.Equal(t, int64(1), first.Number)
	assert.Equal(t, int64(2), second.Number)
	assert.Equal(t, "client1", first.ClientLogin)
	assert.Nil(t, first.TechnicianID)
}

func TestCreateValidatesRequiredFields(t *testing.T) {
	svc, _, _, _ := newTestRequestService()

	_, err := svc.Create(context.Background(), caller("client1", domain.RoleClient), CreateRequestInput{
		EquipmentType: "Кондиционер",
	})
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
}

func TestListScopesClientToOwnRequests(t *testing.T) {
	svc, _, _, _ := newTestRequestService()
	mustCreate(t, svc, caller("client1", domain.RoleClient))
	mustCreate(t, svc, caller("client2", domain.RoleClient))

	own, err := svc.List(context.Background(), caller("client1", domain.RoleClient))
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "client1", own[0].ClientLogin)

	all, err := svc.List(context.Background(), caller("op1", domain.RoleOperator))
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListTechnicianScope(t *testing.T) {
	svc, _, technicians, _ := newTestRequestService()
	tech := addTechnician(t, technicians, "tech1", "Мастер 1", "89502223344")

	req := mustCreate(t, svc, caller("client1", domain.RoleClient))
	mustCreate(t, svc, caller("client2", domain.RoleClient))
	operator := caller("op1", domain.RoleOperator)
	require.NoError(t, svc.Assign(context.Background(), operator, req.Number, &tech.ID))

	assigned, err := svc.List(context.Background(), caller("tech1", domain.RoleTechnician))
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, req.Number, assigned[0].Number)
}

func TestListTechnicianWithoutDirectoryEntryIsEmpty(t *testing.T) {
	svc, _, _, _ := newTestRequestService()
	mustCreate(t, svc, caller("client1", domain.RoleClient))

	result, err := svc.List(context.Background(), caller("ghost", domain.RoleTechnician))
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestGetUnknownNumberIsNotFound(t *testing.T) {
	svc, _, _, _ := newTestRequestService()

	_, err := svc.Get(context.Background(), 42)
	assert.Equal(t, "NOT_FOUND", domainCode(t, err))
}

func TestUpdateStatusAppendsHistory(t *testing.T) {
	svc, requests, _, _ := newTestRequestService()
	req := mustCreate(t, svc, caller("client1", domain.RoleClient))
	operator := caller("op1", domain.RoleOperator)

	status := domain.StatusAwaitingParts
	require.NoError(t, svc.Update(context.Background(), operator, req.Number, RequestPatch{Status: &status}))

	updated, err := svc.Get(context.Background(), req.Number)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAwaitingParts, updated.Status)

	require.Len(t, requests.history, 1)
	assert.Equal(t, domain.StatusNew, requests.history[0].OldStatus)
	assert.Equal(t, domain.StatusAwaitingParts, requests.history[0].NewStatus)
	assert.Equal(t, "op1", requests.history[0].ChangedBy)
}

func TestUpdateCompletedStampsCompletedAtOnce(t *testing.T) {
	svc, _, _, _ := newTestRequestService()
	req := mustCreate(t, svc, caller("client1", domain.RoleClient))
	operator := caller("op1", domain.RoleOperator)

	completed := domain.StatusCompleted
	require.NoError(t, svc.Update(context.Background(), operator, req.Number, RequestPatch{Status: &completed}))
	first, err := svc.Get(context.Background(), req.Number)
	require.NoError(t, err)
	require.NotNil(t, first.CompletedAt)

	// a later status patch back to COMPLETED must not move the stamp
	inRepair := domain.StatusInRepair
	require.NoError(t, svc.Update(context.Background(), operator, req.Number, RequestPatch{Status: &inRepair}))
	require.NoError(t, svc.Update(context.Background(), operator, req.Number, RequestPatch{Status: &completed}))

	second, err := svc.Get(context.Background(), req.Number)
	require.NoError(t, err)
	require.NotNil(t, second.CompletedAt)
	assert.Equal(t, *first.CompletedAt, *second.CompletedAt)
}

func TestUpdateClientCannotTouchWorkFields(t *testing.T) {
	svc, requests, _, _ := newTestRequestService()
	client := caller("client1", domain.RoleClient)
	req := mustCreate(t, svc, client)

	status := domain.StatusCompleted
	parts := "компрессор"
	comment := "готово"
	require.NoError(t, svc.Update(context.Background(), client, req.Number, RequestPatch{
		Status:      &status,
		RepairParts: &parts,
		Comment:     &comment,
	}))

	updated, err := svc.Get(context.Background(), req.Number)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNew, updated.Status)
	assert.Empty(t, updated.RepairParts)
	assert.False(t, updated.HasComment)
	assert.Empty(t, requests.history)
}

func TestUpdateForbiddenForForeignClient(t *testing.T) {
	svc, _, _, _ := newTestRequestService()
	req := mustCreate(t, svc, caller("client1", domain.RoleClient))

	desc := "другая проблема"
	err := svc.Update(context.Background(), caller("client2", domain.RoleClient), req.Number, RequestPatch{
		ProblemDescription: &desc,
	})
	assert.Equal(t, "FORBIDDEN", domainCode(t, err))
}

func TestUpdateForbiddenForUnassignedTechnician(t *testing.T) {
	svc, _, technicians, _ := newTestRequestService()
	addTechnician(t, technicians, "tech1", "Мастер 1", "89502223344")
	req := mustCreate(t, svc, caller("client1", domain.RoleClient))

	status := domain.StatusInRepair
	err := svc.Update(context.Background(), caller("tech1", domain.RoleTechnician), req.Number, RequestPatch{
		Status: &status,
	})
	assert.Equal(t, "FORBIDDEN", domainCode(t, err))
}

func TestUpdateTechnicianCannotSetNew(t *testing.T) {
	svc, requests, technicians, _ := newTestRequestService()
	tech := addTechnician(t, technicians, "tech1", "Мастер 1", "89502223344")
	req := mustCreate(t, svc, caller("client1", domain.RoleClient))
	operator := caller("op1", domain.RoleOperator)
	require.NoError(t, svc.Assign(context.Background(), operator, req.Number, &tech.ID))
	historyBefore := len(requests.history)

	status := domain.StatusNew
	parts := "фреон"
	require.NoError(t, svc.Update(context.Background(), caller("tech1", domain.RoleTechnician), req.Number, RequestPatch{
		Status:      &status,
		RepairParts: &parts,
	}))

	updated, err := svc.Get(context.Background(), req.Number)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInRepair, updated.Status)
	assert.Equal(t, "фреон", updated.RepairParts)
	assert.Len(t, requests.history, historyBefore)
}

func TestUpdateCommentSetsHasComment(t *testing.T) {
	svc, _, _, _ := newTestRequestService()
	req := mustCreate(t, svc, caller("client1", domain.RoleClient))
	operator := caller("op1", domain.RoleOperator)

	comment := "ждём запчасти"
	require.NoError(t, svc.Update(context.Background(), operator, req.Number, RequestPatch{Comment: &comment}))

	updated, err := svc.Get(context.Background(), req.Number)
	require.NoError(t, err)
	assert.True(t, updated.HasComment)
	assert.Equal(t, "ждём запчасти", updated.CommentText)
}

func TestAssignSnapshotsTechnicianAndForcesInRepair(t *testing.T) {
	svc, requests, technicians, _ := newTestRequestService()
	tech := addTechnician(t, technicians, "tech1", "Мастер 1", "89502223344")
	req := mustCreate(t, svc, caller("client1", domain.RoleClient))
	operator := caller("op1", domain.RoleOperator)

	completed := domain.StatusCompleted
	require.NoError(t, svc.Update(context.Background(), operator, req.Number, RequestPatch{Status: &completed}))

	require.NoError(t, svc.Assign(context.Background(), operator, req.Number, &tech.ID))

	updated, err := svc.Get(context.Background(), req.Number)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInRepair, updated.Status)
	require.NotNil(t, updated.TechnicianID)
	assert.Equal(t, tech.ID, *updated.TechnicianID)
	assert.Equal(t, "Мастер 1", updated.TechnicianName)
	assert.Equal(t, "89502223344", updated.TechnicianPhone)

	// history records the status the request actually held before assignment
	last := requests.history[len(requests.history)-1]
	assert.Equal(t, domain.StatusCompleted, last.OldStatus)
	assert.Equal(t, domain.StatusInRepair, last.NewStatus)
	assert.Contains(t, last.Comment, "Мастер 1")
}

func TestAssignRejections(t *testing.T) {
	svc, _, technicians, _ := newTestRequestService()
	tech := addTechnician(t, technicians, "tech1", "Мастер 1", "89502223344")
	req := mustCreate(t, svc, caller("client1", domain.RoleClient))
	operator := caller("op1", domain.RoleOperator)

	err := svc.Assign(context.Background(), caller("client1", domain.RoleClient), req.Number, &tech.ID)
	assert.Equal(t, "FORBIDDEN", domainCode(t, err))

	err = svc.Assign(context.Background(), operator, req.Number, nil)
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))

	missingTech := int64(99)
	err = svc.Assign(context.Background(), operator, req.Number, &missingTech)
	assert.Equal(t, "NOT_FOUND", domainCode(t, err))

	err = svc.Assign(context.Background(), operator, 999, &tech.ID)
	assert.Equal(t, "NOT_FOUND", domainCode(t, err))
}

func TestSearchAppliesScopeAndTerm(t *testing.T) {
	svc, _, _, _ := newTestRequestService()
	client := caller("client1", domain.RoleClient)
	mustCreate(t, svc, client)

	other, err := svc.Create(context.Background(), caller("client2", domain.RoleClient), CreateRequestInput{
		EquipmentType:      "Холодильник",
		EquipmentModel:     "Atlant XM-4214",
		ProblemDescription: "Не морозит",
		ClientName:         "Клиент 2",
		ClientPhone:        "89152345678",
	})
	require.NoError(t, err)

	found, err := svc.Search(context.Background(), caller("op1", domain.RoleOperator), "холодильник")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, other.Number, found[0].Number)

	// same term through a client scope must not leak the foreign request
	foundByClient, err := svc.Search(context.Background(), client, "холодильник")
	require.NoError(t, err)
	assert.Empty(t, foundByClient)
}

func TestHistoryReturnsEntriesInOrder(t *testing.T) {
	svc, _, technicians, _ := newTestRequestService()
	tech := addTechnician(t, technicians, "tech1", "Мастер 1", "89502223344")
	req := mustCreate(t, svc, caller("client1", domain.RoleClient))
	operator := caller("op1", domain.RoleOperator)

	require.NoError(t, svc.Assign(context.Background(), operator, req.Number, &tech.ID))
	completed := domain.StatusCompleted
	require.NoError(t, svc.Update(context.Background(), operator, req.Number, RequestPatch{Status: &completed}))

	entries, err := svc.History(context.Background(), req.Number)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.StatusNew, entries[0].OldStatus)
	assert.Equal(t, domain.StatusInRepair, entries[0].NewStatus)
	assert.Equal(t, domain.StatusInRepair, entries[1].OldStatus)
	assert.Equal(t, domain.StatusCompleted, entries[1].NewStatus)
}

func TestMutationsPublishEvents(t *testing.T) {
	svc, _, technicians, dispatcher := newTestRequestService()
	tech := addTechnician(t, technicians, "tech1", "Мастер 1", "89502223344")

	var seen []events.EventType
	record := func(_ context.Context, event events.Event) error {
		seen = append(seen, event.Type)
		return nil
	}
	dispatcher.Subscribe(events.EventRequestCreated, record)
	dispatcher.Subscribe(events.EventStatusChanged, record)
	dispatcher.Subscribe(events.EventTechnicianAssigned, record)

	req := mustCreate(t, svc, caller("client1", domain.RoleClient))
	operator := caller("op1", domain.RoleOperator)
	require.NoError(t, svc.Assign(context.Background(), operator, req.Number, &tech.ID))
	completed := domain.StatusCompleted
	require.NoError(t, svc.Update(context.Background(), operator, req.Number, RequestPatch{Status: &completed}))

	assert.Equal(t, []events.EventType{
		events.EventRequestCreated,
		events.EventTechnicianAssigned,
		events.EventStatusChanged,
	}, seen)
}

package services

import (
	"context"
	"testing"

	"queuehub-backend/internal/adapters/persistence/models"
)

func newClient(id string, branchID, deskID uint) *SSEClient {
	return &SSEClient{ID: id, BranchID: branchID, DeskID: deskID, Channel: make(chan SSEEvent, 4)}
}

func received(c *SSEClient) bool {
	select {
	case <-c.Channel:
		return true
	default:
		return false
	}
}

func TestBroadcastBranchEventRouting(t *testing.T) {
	hub := NewSSEHub()
	branch1 := newClient("b1", 1, 0)
	branch2 := newClient("b2", 2, 0)
	global := newClient("g", 0, 0)
	desk := newClient("d", 1, 7)
	for _, c := range []*SSEClient{branch1, branch2, global, desk} {
		hub.Register(c)
	}

	hub.Broadcast(SSEEvent{Event: "queue_update", BranchID: 1})

	if !received(branch1) {
		t.Error("branch 1 viewer missed its own branch event")
	}
	if !received(global) {
		t.Error("global subscriber missed a branch event")
	}
	if received(branch2) {
		t.Error("branch 2 viewer received another branch's event")
	}
	if received(desk) {
		t.Error("desk operator view received a branch-level event")
	}
}

func TestBroadcastDeskEventRouting(t *testing.T) {
	hub := NewSSEHub()
	branch1 := newClient("b1", 1, 0)
	global := newClient("g", 0, 0)
	desk7 := newClient("d7", 1, 7)
	desk8 := newClient("d8", 1, 8)
	for _, c := range []*SSEClient{branch1, global, desk7, desk8} {
		hub.Register(c)
	}

	hub.Broadcast(SSEEvent{Event: "desk_update", BranchID: 1, DeskID: 7})

	if !received(desk7) {
		t.Error("desk 7 operator missed its desk event")
	}
	for _, c := range []*SSEClient{branch1, global, desk8} {
		if received(c) {
			t.Errorf("client %s received a desk 7 event", c.ID)
		}
	}
}

func TestBroadcastSkipsFullChannel(t *testing.T) {
	hub := NewSSEHub()
	slow := &SSEClient{ID: "slow", BranchID: 1, Channel: make(chan SSEEvent, 1)}
	fast := newClient("fast", 1, 0)
	hub.Register(slow)
	hub.Register(fast)

	slow.Channel <- SSEEvent{Event: "stale"}

	// Must return immediately even though slow's buffer is full.
	hub.Broadcast(SSEEvent{Event: "queue_update", BranchID: 1})

	if !received(fast) {
		t.Error("healthy client starved by a slow one")
	}
	if got := <-slow.Channel; got.Event != "stale" {
		t.Errorf("slow client buffer = %q, want untouched %q", got.Event, "stale")
	}
}

func TestUnregisterClosesChannel(t *testing.T) {
	hub := NewSSEHub()
	client := newClient("c", 1, 0)
	hub.Register(client)

	hub.Unregister("c")

	if _, open := <-client.Channel; open {
		t.Error("channel still open after unregister")
	}
	if hub.ClientCount() != 0 {
		t.Errorf("client count = %d, want 0", hub.ClientCount())
	}

	// Unregistering twice must be a no-op.
	hub.Unregister("c")
}

func TestShutdownDrainsAllClients(t *testing.T) {
	hub := NewSSEHub()
	a := newClient("a", 1, 0)
	b := newClient("b", 2, 0)
	hub.Register(a)
	hub.Register(b)

	hub.Shutdown()

	if hub.ClientCount() != 0 {
		t.Fatalf("client count = %d, want 0", hub.ClientCount())
	}
	for _, c := range []*SSEClient{a, b} {
		if _, open := <-c.Channel; open {
			t.Errorf("client %s channel still open after shutdown", c.ID)
		}
	}
}

func TestPublishBranchEmitsSnapshot(t *testing.T) {
	deskName := "Desk 1"
	tokens := &fakeTokenRepo{
		listServing: func(ctx context.Context, branchID uint, limit int) ([]models.Token, error) {
			return []models.Token{{
				DisplayNumber: "A006", Status: models.TokenStatusServing,
				Desk: &models.Desk{Name: deskName},
			}}, nil
		},
		listPending: func(ctx context.Context, branchID uint, limit int) ([]models.Token, error) {
			return []models.Token{{DisplayNumber: "A007", Status: models.TokenStatusPending}}, nil
		},
	}
	notify := NewNotifyService(tokens, &fakeDirectoryRepo{}, &fakeShiftRepo{}, nil)

	viewer := newClient("v", 1, 0)
	notify.Hub.Register(viewer)

	notify.PublishBranch(context.Background(), 1)

	select {
	case event := <-viewer.Channel:
		if event.Event != "queue_update" || event.BranchID != 1 {
			t.Fatalf("event = %s branch=%d, want queue_update branch=1", event.Event, event.BranchID)
		}
		snapshot, ok := event.Data.(*QueueSnapshot)
		if !ok {
			t.Fatalf("payload type = %T, want *QueueSnapshot", event.Data)
		}
		if len(snapshot.Serving) != 1 || snapshot.Serving[0].DisplayNumber != "A006" {
			t.Errorf("serving = %+v, want A006", snapshot.Serving)
		}
		if snapshot.Serving[0].DeskName != deskName {
			t.Errorf("desk name = %q, want %q", snapshot.Serving[0].DeskName, deskName)
		}
		if len(snapshot.Pending) != 1 || snapshot.Pending[0].DisplayNumber != "A007" {
			t.Errorf("pending = %+v, want A007", snapshot.Pending)
		}
	default:
		t.Fatal("no event emitted")
	}
}

func TestPublishDeskEmitsStaffState(t *testing.T) {
	tokens := &fakeTokenRepo{
		listByDesk: func(ctx context.Context, deskID uint, limit int) ([]models.Token, error) {
			return []models.Token{{DisplayNumber: "A007", Status: models.TokenStatusPending}}, nil
		},
	}
	directory := &fakeDirectoryRepo{
		deskStaffFn: func(ctx context.Context, deskID uint) ([]models.User, error) {
			return []models.User{{ID: 9, FullName: "Somsri T.", IsWorking: true, IsAvailable: true}}, nil
		},
	}
	shifts := &fakeShiftRepo{
		latestFn: func(ctx context.Context, userID uint) (*models.ShiftLog, error) {
			return &models.ShiftLog{UserID: userID, Event: models.ShiftEventCheckIn}, nil
		},
	}
	notify := NewNotifyService(tokens, directory, shifts, nil)

	operator := newClient("op", 1, 7)
	notify.Hub.Register(operator)

	notify.PublishDesk(context.Background(), 1, 7)

	select {
	case event := <-operator.Channel:
		if event.Event != "desk_update" || event.DeskID != 7 {
			t.Fatalf("event = %s desk=%d, want desk_update desk=7", event.Event, event.DeskID)
		}
		snapshot, ok := event.Data.(*DeskSnapshot)
		if !ok {
			t.Fatalf("payload type = %T, want *DeskSnapshot", event.Data)
		}
		if len(snapshot.Queue) != 1 || snapshot.Queue[0].DisplayNumber != "A007" {
			t.Errorf("queue = %+v, want A007", snapshot.Queue)
		}
		if len(snapshot.Staff) != 1 {
			t.Fatalf("staff = %+v, want one entry", snapshot.Staff)
		}
		staff := snapshot.Staff[0]
		if staff.EmployeeID != 9 || !staff.IsWorking || !staff.IsAvailable {
			t.Errorf("staff = %+v, want working and available employee 9", staff)
		}
		if staff.LastEvent != models.ShiftEventCheckIn {
			t.Errorf("last event = %q, want %q", staff.LastEvent, models.ShiftEventCheckIn)
		}
	default:
		t.Fatal("no event emitted")
	}
}

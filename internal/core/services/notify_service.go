package services

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"queuehub-backend/internal/adapters/persistence/models"
	"queuehub-backend/internal/adapters/persistence/repositories"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// redisChannel carries queue events between process instances.
const redisChannel = "queuehub:events"

// SSEEvent represents a server-sent event
type SSEEvent struct {
	Event    string      `json:"event"`
	BranchID uint        `json:"branch_id"`
	DeskID   uint        `json:"desk_id,omitempty"`
	Data     interface{} `json:"data"`
}

// SSEClient represents a connected SSE client. BranchID 0 subscribes to the
// global channel (all branches, branch_id carried for filtering); DeskID > 0
// marks a desk operator view receiving desk-scoped events.
type SSEClient struct {
	ID       string
	BranchID uint
	DeskID   uint
	Channel  chan SSEEvent
}

// SSEHub manages all SSE connections
type SSEHub struct {
	mu      sync.RWMutex
	clients map[string]*SSEClient
}

// NewSSEHub creates a new SSE hub
func NewSSEHub() *SSEHub {
	return &SSEHub{
		clients: make(map[string]*SSEClient),
	}
}

// Register adds a new SSE client
func (h *SSEHub) Register(client *SSEClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	log.Printf("📡 SSE client registered: %s (branch=%d, desk=%d) | total=%d",
		client.ID, client.BranchID, client.DeskID, len(h.clients))
}

// Unregister removes an SSE client
func (h *SSEHub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		close(client.Channel)
		delete(h.clients, clientID)
		log.Printf("📡 SSE client unregistered: %s | total=%d", clientID, len(h.clients))
	}
}

// Broadcast routes an event to matching clients. Desk events go only to that
// desk's operator views; branch events go to the branch's viewers and to
// global subscribers. Full client channels are skipped, never blocked on —
// display clients reconcile via polling anyway.
func (h *SSEHub) Broadcast(event SSEEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for _, client := range h.clients {
		if !matches(client, event) {
			continue
		}
		select {
		case client.Channel <- event:
			sent++
		default:
			log.Printf("⚠️ SSE channel full for client %s, skipping", client.ID)
		}
	}
	if sent > 0 {
		log.Printf("📡 SSE broadcast [%s] branch=%d desk=%d → %d clients",
			event.Event, event.BranchID, event.DeskID, sent)
	}
}

func matches(client *SSEClient, event SSEEvent) bool {
	if event.DeskID > 0 {
		return client.DeskID == event.DeskID
	}
	if client.DeskID > 0 {
		return false
	}
	return client.BranchID == 0 || client.BranchID == event.BranchID
}

// ClientCount returns the number of connected clients
func (h *SSEHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown closes and removes every client
func (h *SSEHub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, client := range h.clients {
		close(client.Channel)
		delete(h.clients, id)
	}
}

// ============================================================
// NotifyService — SSE hub + Redis cross-instance bridge
// ============================================================

// Snapshot limits for board payloads
const snapshotLimit = 10

// TokenView is one row of a display board payload
type TokenView struct {
	DisplayNumber  string `json:"display_number"`
	Status         string `json:"status"`
	DeskName       string `json:"desk_name"`
	SubServiceName string `json:"sub_service_name"`
	EmployeeName   string `json:"employee_name"`
}

// QueueSnapshot is the branch board payload: the most recent SERVING tokens
// and the oldest PENDING tokens
type QueueSnapshot struct {
	Serving []TokenView `json:"serving"`
	Pending []TokenView `json:"pending"`
}

// StaffStatus is the per-employee line of a desk operator payload
type StaffStatus struct {
	EmployeeID  uint   `json:"employee_id"`
	FullName    string `json:"full_name"`
	IsAvailable bool   `json:"is_available"`
	IsWorking   bool   `json:"is_working"`
	IsOnBreak   bool   `json:"is_on_break"`
	LastEvent   string `json:"last_event,omitempty"`
}

// DeskSnapshot is the desk operator payload
type DeskSnapshot struct {
	Queue []TokenView   `json:"queue"`
	Staff []StaffStatus `json:"staff"`
}

// relayEnvelope wraps an event for the Redis bridge so an instance can skip
// its own relayed publishes
type relayEnvelope struct {
	Origin string   `json:"origin"`
	Event  SSEEvent `json:"event"`
}

// NotifyService fans queue state changes out to subscribed viewers. Delivery
// is best-effort at-least-once; display clients poll as the correctness
// backstop. Construct at process start, Start the bridge, Shutdown on exit.
type NotifyService struct {
	Hub *SSEHub

	tokenRepo     repositories.TokenRepository
	directoryRepo repositories.DirectoryRepository
	shiftRepo     repositories.ShiftLogRepository

	rdb        *redis.Client
	instanceID string
	cancel     context.CancelFunc
}

// NewNotifyService creates a new notify service. rdb may be nil, in which
// case events stay within this process.
func NewNotifyService(
	tokenRepo repositories.TokenRepository,
	directoryRepo repositories.DirectoryRepository,
	shiftRepo repositories.ShiftLogRepository,
	rdb *redis.Client,
) *NotifyService {
	return &NotifyService{
		Hub:           NewSSEHub(),
		tokenRepo:     tokenRepo,
		directoryRepo: directoryRepo,
		shiftRepo:     shiftRepo,
		rdb:           rdb,
		instanceID:    uuid.NewString(),
	}
}

// Start launches the Redis subscriber that rebroadcasts events published by
// other instances into the local hub
func (s *NotifyService) Start() {
	if s.rdb == nil {
		log.Println("⚠️ Redis not configured — realtime events are instance-local")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	sub := s.rdb.Subscribe(ctx, redisChannel)

	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-sub.Channel():
				if !ok {
					return
				}
				var env relayEnvelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					log.Printf("⚠️ Notify bridge: bad payload: %v", err)
					continue
				}
				if env.Origin == s.instanceID {
					continue
				}
				s.Hub.Broadcast(env.Event)
			}
		}
	}()
	log.Println("✅ Notify bridge subscribed to Redis")
}

// Shutdown stops the bridge and drains all subscribers
func (s *NotifyService) Shutdown() {
	if s.cancel != nil {
		s.cancel()
	}
	s.Hub.Shutdown()
	log.Println("🛑 Notify service stopped")
}

// emit broadcasts locally and relays through Redis for other instances
func (s *NotifyService) emit(ctx context.Context, event SSEEvent) {
	s.Hub.Broadcast(event)

	if s.rdb == nil {
		return
	}
	payload, err := json.Marshal(relayEnvelope{Origin: s.instanceID, Event: event})
	if err != nil {
		return
	}
	if err := s.rdb.Publish(ctx, redisChannel, payload).Err(); err != nil {
		// Losses are tolerated; clients poll.
		log.Printf("⚠️ Notify bridge publish failed: %v", err)
	}
}

// PublishBranch recomputes the branch's SERVING and PENDING sets and emits
// them to the branch channel and the global channel
func (s *NotifyService) PublishBranch(ctx context.Context, branchID uint) {
	snapshot, err := s.BranchSnapshot(ctx, branchID)
	if err != nil {
		log.Printf("❌ Notify snapshot failed for branch %d: %v", branchID, err)
		return
	}
	s.emit(ctx, SSEEvent{Event: "queue_update", BranchID: branchID, Data: snapshot})
}

// PublishDesk emits the richer desk operator payload for one desk
func (s *NotifyService) PublishDesk(ctx context.Context, branchID, deskID uint) {
	snapshot, err := s.DeskSnapshot(ctx, deskID)
	if err != nil {
		log.Printf("❌ Notify desk snapshot failed for desk %d: %v", deskID, err)
		return
	}
	s.emit(ctx, SSEEvent{Event: "desk_update", BranchID: branchID, DeskID: deskID, Data: snapshot})
}

// BranchSnapshot builds the branch board payload; also served by the polling
// endpoint display clients use as their backstop
func (s *NotifyService) BranchSnapshot(ctx context.Context, branchID uint) (*QueueSnapshot, error) {
	serving, err := s.tokenRepo.ListServing(ctx, branchID, snapshotLimit)
	if err != nil {
		return nil, err
	}
	pending, err := s.tokenRepo.ListPending(ctx, branchID, snapshotLimit)
	if err != nil {
		return nil, err
	}
	return &QueueSnapshot{
		Serving: toViews(serving),
		Pending: toViews(pending),
	}, nil
}

// DeskSnapshot builds the desk operator payload: the desk's pending queue
// plus per-employee status derived from shift state
func (s *NotifyService) DeskSnapshot(ctx context.Context, deskID uint) (*DeskSnapshot, error) {
	queue, err := s.tokenRepo.ListPendingByDesk(ctx, deskID, snapshotLimit)
	if err != nil {
		return nil, err
	}
	employees, err := s.directoryRepo.ListEmployeesByDesk(ctx, deskID)
	if err != nil {
		return nil, err
	}

	staff := make([]StaffStatus, 0, len(employees))
	for _, emp := range employees {
		status := StaffStatus{
			EmployeeID:  emp.ID,
			FullName:    emp.FullName,
			IsAvailable: emp.IsAvailable,
			IsWorking:   emp.IsWorking,
			IsOnBreak:   emp.IsOnBreak,
		}
		if last, err := s.shiftRepo.LatestByUser(ctx, emp.ID); err == nil && last != nil {
			status.LastEvent = last.Event
		}
		staff = append(staff, status)
	}

	return &DeskSnapshot{
		Queue: toViews(queue),
		Staff: staff,
	}, nil
}

func toViews(tokens []models.Token) []TokenView {
	views := make([]TokenView, 0, len(tokens))
	for _, t := range tokens {
		view := TokenView{
			DisplayNumber:  t.DisplayNumber,
			Status:         t.Status,
			SubServiceName: t.SubService.Name,
		}
		if t.Desk != nil {
			view.DeskName = t.Desk.Name
		}
		if t.AssignedTo != nil {
			view.EmployeeName = t.AssignedTo.FullName
		}
		views = append(views, view)
	}
	return views
}

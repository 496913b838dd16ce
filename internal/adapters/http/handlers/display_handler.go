package handlers

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"queuehub-backend/internal/core/services"
	"queuehub-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DisplayHandler handles display board endpoints. The snapshot endpoints are
// the polling backstop; the SSE endpoints push the same payloads live.
type DisplayHandler struct {
	branchService *services.BranchService
	notifyService *services.NotifyService
}

// NewDisplayHandler creates a new display handler
func NewDisplayHandler(branchService *services.BranchService, notifyService *services.NotifyService) *DisplayHandler {
	return &DisplayHandler{
		branchService: branchService,
		notifyService: notifyService,
	}
}

// BranchBoard handles the branch display snapshot (public)
// @Summary Branch display board
// @Description Current serving and pending tokens for the branch display
// @Tags Display
// @Accept json
// @Produce json
// @Param branch_id path int true "Branch ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /display/branches/{branch_id} [get]
func (h *DisplayHandler) BranchBoard(c *fiber.Ctx) error {
	branchID, err := strconv.ParseUint(c.Params("branch_id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid branch ID")
	}

	if _, err := h.branchService.GetBranch(c.Context(), uint(branchID)); err != nil {
		if errors.Is(err, services.ErrBranchNotFound) {
			return response.NotFound(c, "Branch not found")
		}
		return response.InternalServerError(c, "Failed to get display board")
	}

	snapshot, err := h.notifyService.BranchSnapshot(c.Context(), uint(branchID))
	if err != nil {
		return response.InternalServerError(c, "Failed to get display board")
	}

	return response.Success(c, "Display board retrieved", snapshot)
}

// DeskBoard handles the desk operator snapshot
// @Summary Desk operator board
// @Description Desk queue plus per-employee shift status
// @Tags Display
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param desk_id path int true "Desk ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /display/desks/{desk_id} [get]
func (h *DisplayHandler) DeskBoard(c *fiber.Ctx) error {
	deskID, err := strconv.ParseUint(c.Params("desk_id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid desk ID")
	}

	if _, err := h.branchService.GetDesk(c.Context(), uint(deskID)); err != nil {
		if errors.Is(err, services.ErrDeskNotFound) {
			return response.NotFound(c, "Desk not found")
		}
		return response.InternalServerError(c, "Failed to get desk board")
	}

	snapshot, err := h.notifyService.DeskSnapshot(c.Context(), uint(deskID))
	if err != nil {
		return response.InternalServerError(c, "Failed to get desk board")
	}

	return response.Success(c, "Desk board retrieved", snapshot)
}

// BranchEvents streams branch queue updates over SSE (public)
// @Summary Branch display events
// @Description SSE stream of queue updates for the branch display
// @Tags Display
// @Produce text/event-stream
// @Param branch_id path int true "Branch ID"
// @Success 200 {string} string "event stream"
// @Failure 404 {object} response.Response
// @Router /display/branches/{branch_id}/events [get]
func (h *DisplayHandler) BranchEvents(c *fiber.Ctx) error {
	branchID, err := strconv.ParseUint(c.Params("branch_id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid branch ID")
	}

	if _, err := h.branchService.GetBranch(c.Context(), uint(branchID)); err != nil {
		return response.NotFound(c, "Branch not found")
	}

	clientID := fmt.Sprintf("board-%d-%d", branchID, time.Now().UnixNano())
	return h.stream(c, &services.SSEClient{
		ID:       clientID,
		BranchID: uint(branchID),
		Channel:  make(chan services.SSEEvent, 50),
	})
}

// AllBranchEvents streams queue updates for every branch (public). Used by
// head-office wallboards.
// @Summary Global display events
// @Description SSE stream of queue updates across all branches
// @Tags Display
// @Produce text/event-stream
// @Success 200 {string} string "event stream"
// @Router /display/events [get]
func (h *DisplayHandler) AllBranchEvents(c *fiber.Ctx) error {
	clientID := fmt.Sprintf("board-all-%d", time.Now().UnixNano())
	return h.stream(c, &services.SSEClient{
		ID:      clientID,
		Channel: make(chan services.SSEEvent, 50),
	})
}

// DeskEvents streams desk operator updates over SSE
// @Summary Desk operator events
// @Description SSE stream of desk queue and staff status updates
// @Tags Display
// @Produce text/event-stream
// @Security BearerAuth
// @Param desk_id path int true "Desk ID"
// @Success 200 {string} string "event stream"
// @Failure 404 {object} response.Response
// @Router /display/desks/{desk_id}/events [get]
func (h *DisplayHandler) DeskEvents(c *fiber.Ctx) error {
	deskID, err := strconv.ParseUint(c.Params("desk_id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid desk ID")
	}

	desk, err := h.branchService.GetDesk(c.Context(), uint(deskID))
	if err != nil {
		return response.NotFound(c, "Desk not found")
	}

	clientID := fmt.Sprintf("desk-%d-%d", deskID, time.Now().UnixNano())
	return h.stream(c, &services.SSEClient{
		ID:       clientID,
		BranchID: desk.BranchID,
		DeskID:   uint(deskID),
		Channel:  make(chan services.SSEEvent, 50),
	})
}

// stream registers the client on the hub and pumps its channel into the
// response until the client disconnects
func (h *DisplayHandler) stream(c *fiber.Ctx, client *services.SSEClient) error {
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("Transfer-Encoding", "chunked")
	c.Set("Access-Control-Allow-Origin", "*")

	hub := h.notifyService.Hub

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		hub.Register(client)
		defer hub.Unregister(client.ID)

		fmt.Fprintf(w, "event: connected\ndata: {\"client_id\":%q}\n\n", client.ID)
		if err := w.Flush(); err != nil {
			return
		}

		heartbeat := time.NewTicker(30 * time.Second)
		defer heartbeat.Stop()

		for {
			select {
			case event, ok := <-client.Channel:
				if !ok {
					return
				}
				writeSSEEvent(w, event)
				if err := w.Flush(); err != nil {
					log.Printf("📡 SSE client disconnected: %s", client.ID)
					return
				}

			case <-heartbeat.C:
				fmt.Fprintf(w, ": heartbeat\n\n")
				if err := w.Flush(); err != nil {
					log.Printf("📡 SSE client disconnected: %s", client.ID)
					return
				}
			}
		}
	})

	return nil
}

// writeSSEEvent writes a formatted SSE event to the writer
func writeSSEEvent(w *bufio.Writer, event services.SSEEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, payload)
}

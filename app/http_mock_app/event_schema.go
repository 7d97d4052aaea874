package http_mock_app

import (
	"fmt"
	"net/http"
	"strconv"

	"go_virtual_mock/internal/domain/iface"
	model "go_virtual_mock/internal/domain/model/mock"

	rf "github.com/go-chassis/go-chassis/v2/server/restful"
)

const (
	eventsPath = "/mock/manage/events"
	eventPath  = eventsPath + "/{eventId}"
)

// EventController 事件查询与清理接口
type EventController struct {
	EventService iface.EventService
}

func NewEventController(eventService iface.EventService) *EventController {
	return &EventController{EventService: eventService}
}

// ListEvents ?operationId=&limit=, 按时间倒序
func (c *EventController) ListEvents(b *rf.Context) {
	filter := &model.EventFilter{OperationID: b.ReadQueryParameter("operationId")}
	if limit := b.ReadQueryParameter("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			writeError(b, fmt.Errorf("%w: invalid limit %q", model.ErrInvalidConfiguration, limit))
			return
		}
		filter.Limit = n
	}

	events, err := c.EventService.ListEvents(b.Ctx, filter)
	if err != nil {
		writeError(b, err)
		return
	}
	writeJSON(b, http.StatusOK, events)
}

func (c *EventController) GetEvent(b *rf.Context) {
	event, err := c.EventService.GetEvent(b.Ctx, b.ReadPathParameter("eventId"))
	if err != nil {
		writeError(b, err)
		return
	}
	writeJSON(b, http.StatusOK, event)
}

func (c *EventController) DeleteEvent(b *rf.Context) {
	if err := c.EventService.DeleteEvent(b.Ctx, b.ReadPathParameter("eventId")); err != nil {
		writeError(b, err)
		return
	}
	b.WriteHeader(http.StatusNoContent)
}

// ClearEvents 不带 operationId 时清空全部事件
func (c *EventController) ClearEvents(b *rf.Context) {
	removed, err := c.EventService.ClearEvents(b.Ctx, b.ReadQueryParameter("operationId"))
	if err != nil {
		writeError(b, err)
		return
	}
	writeJSON(b, http.StatusOK, struct {
		Removed int64 `json:"removed"`
	}{Removed: removed})
}

func (c *EventController) URLPatterns() []rf.Route {
	return []rf.Route{
		manageRoute(http.MethodGet, eventsPath, c.ListEvents, http.StatusOK),
		manageRoute(http.MethodDelete, eventsPath, c.ClearEvents, http.StatusOK),
		manageRoute(http.MethodGet, eventPath, c.GetEvent, http.StatusOK),
		manageRoute(http.MethodDelete, eventPath, c.DeleteEvent, http.StatusNoContent),
	}
}

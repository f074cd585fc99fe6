package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"catchup/internal/hipchat"
	"catchup/internal/metrics"
	"catchup/internal/unread"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event mirrors the API-gateway invocation payload.
type Event struct {
	QueryStringParameters map[string]string `json:"queryStringParameters"`
	Headers               map[string]string `json:"headers"`
}

// Response is the invocation result. Failures are encoded as error items
// in the body; the status code is always 200.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

const noTokenMessage = "No Access Token supplied"

// Handler drives one unread-summary invocation end to end.
type Handler struct {
	clients *hipchat.Factory
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// New creates the invocation handler.
func New(clients *hipchat.Factory, logger *zap.Logger, m *metrics.Metrics) *Handler {
	return &Handler{clients: clients, logger: logger, metrics: m}
}

// Handle resolves the caller, fetches the rosters, and aggregates unread
// transcripts. Every failure path still answers 200 with a single error
// item in the body.
func (h *Handler) Handle(ctx context.Context, evt Event) Response {
	logger := h.logger.With(zap.String("invocation_id", uuid.New().String()))
	if h.metrics != nil {
		h.metrics.Invocations.Inc()
	}

	var items []unread.SummaryItem
	if token := accessToken(evt); token == "" {
		items = []unread.SummaryItem{{Name: "Error", Messages: noTokenMessage}}
	} else {
		var err error
		items, err = h.summarize(ctx, token, logger)
		if err != nil {
			logger.Error("invocation failed", zap.Error(err))
			items = []unread.SummaryItem{{Name: "Error", Messages: err.Error()}}
		}
	}

	body, err := json.Marshal(items)
	if err != nil {
		// SummaryItem is two plain strings; marshalling cannot fail on it.
		body = []byte(`[]`)
	}
	return Response{StatusCode: http.StatusOK, Body: string(body)}
}

// summarize runs the full fetch sequence. Only token introspection can
// fail here; roster fetch failures degrade to empty rosters inside the
// client.
func (h *Handler) summarize(ctx context.Context, token string, logger *zap.Logger) ([]unread.SummaryItem, error) {
	client := h.clients.Client(token)

	userID, err := client.UserID(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("resolved caller", zap.String("user_id", userID))

	rooms := client.AutoJoinRooms(ctx, userID)
	users := client.Users(ctx)

	engine := unread.NewEngine(client, logger)
	return engine.Summarize(ctx, rooms, users), nil
}

// accessToken extracts the caller token: the access_token query parameter
// wins, the x-access-token header is the fallback.
func accessToken(evt Event) string {
	if t := evt.QueryStringParameters["access_token"]; t != "" {
		return t
	}
	for k, v := range evt.Headers {
		if strings.EqualFold(k, "x-access-token") {
			return v
		}
	}
	return ""
}

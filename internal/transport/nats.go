package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/avvvet/concierge-intent/internal/config"
	xlog "github.com/avvvet/concierge-intent/internal/log"
	"github.com/avvvet/concierge-intent/internal/models"
)

// NATSTransport serves the chat pipeline over NATS request/reply with the
// same JSON bodies as POST /chat.
type NATSTransport struct {
	conn    *nats.Conn
	sub     *nats.Subscription
	config  *config.Config
	handler ChatHandler
	logger  zerolog.Logger
}

func NewNATSTransport(cfg *config.Config, handler ChatHandler, logger zerolog.Logger) (*NATSTransport, error) {
	conn, err := nats.Connect(cfg.NatsURL,
		nats.Name(cfg.ServiceName),
		nats.Timeout(cfg.NatsTimeout),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	logger.Info().Str("url", cfg.NatsURL).Msg("Connected to NATS server")

	return &NATSTransport{
		conn:    conn,
		config:  cfg,
		handler: handler,
		logger:  logger,
	}, nil
}

func (nt *NATSTransport) Start() error {
	sub, err := nt.conn.Subscribe(nt.config.NatsRequestSubject, nt.handleChatRequest)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", nt.config.NatsRequestSubject, err)
	}
	nt.sub = sub

	nt.logger.Info().Str(xlog.FieldSubject, nt.config.NatsRequestSubject).Msg("Subscribed to subject")
	return nil
}

func (nt *NATSTransport) handleChatRequest(msg *nats.Msg) {
	id := msg.Header.Get(requestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	ctx := xlog.ContextWithRequestID(context.Background(), id)
	logger := xlog.WithContext(ctx, nt.logger)

	var request models.ChatRequest
	if err := json.Unmarshal(msg.Data, &request); err != nil {
		logger.Warn().Err(err).Msg("Error parsing request")
		nt.respond(logger, msg, models.ErrorResponse{Error: models.ErrorInvalidRequest})
		return
	}

	ctx, cancel := context.WithTimeout(ctx, nt.config.RequestTimeout)
	defer cancel()

	response, err := nt.handler.Handle(ctx, request.Message, request.Params())
	if err != nil {
		_, body := errorResponse(err)
		nt.respond(logger, msg, body)
		return
	}
	nt.respond(logger, msg, response)
}

func (nt *NATSTransport) respond(logger zerolog.Logger, msg *nats.Msg, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to marshal response")
		return
	}
	if err := msg.Respond(data); err != nil {
		logger.Error().Err(err).Msg("Failed to send response")
	}
}

func (nt *NATSTransport) Close() error {
	if nt.sub != nil {
		_ = nt.sub.Drain()
	}
	if nt.conn != nil {
		nt.conn.Close()
		nt.logger.Info().Msg("NATS connection closed")
	}
	return nil
}

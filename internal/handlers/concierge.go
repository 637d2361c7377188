package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/avvvet/concierge-intent/internal/language"
	"github.com/avvvet/concierge-intent/internal/llm"
	xlog "github.com/avvvet/concierge-intent/internal/log"
	"github.com/avvvet/concierge-intent/internal/metrics"
	"github.com/avvvet/concierge-intent/internal/models"
	"github.com/avvvet/concierge-intent/internal/pms"
	"github.com/avvvet/concierge-intent/internal/prompts"
	"github.com/avvvet/concierge-intent/internal/transcript"
)

const transcriptTimeout = 2 * time.Second

// ConciergeHandler runs the chat pipeline: language hint, intent, at most one
// PMS lookup, context assembly and reply generation.
type ConciergeHandler struct {
	classifier   *IntentClassifier
	replies      *ReplyGenerator
	gateway      pms.Gateway
	transcripts  transcript.Store
	hotelName    string
	systemPrompt string
	logger       zerolog.Logger
}

func NewConciergeHandler(provider llm.LLMProvider, gateway pms.Gateway, store transcript.Store, hotelName, currency string, logger zerolog.Logger) *ConciergeHandler {
	if store == nil {
		store = transcript.NopStore{}
	}
	return &ConciergeHandler{
		classifier:   NewIntentClassifier(provider, logger),
		replies:      NewReplyGenerator(provider),
		gateway:      gateway,
		transcripts:  store,
		hotelName:    hotelName,
		systemPrompt: prompts.BuildSystemPrompt(hotelName, currency),
		logger:       logger,
	}
}

// Handle answers one guest message. Errors are classified by ErrorCode.
func (h *ConciergeHandler) Handle(ctx context.Context, message string, params models.RequestParams) (*models.ChatResponse, error) {
	start := time.Now()
	logger := xlog.WithContext(ctx, h.logger)

	message = strings.TrimSpace(message)
	if message == "" {
		metrics.RecordChat("", models.ErrorMessageRequired)
		return nil, ErrMessageRequired
	}

	lang := language.Detect(message)
	logger.Info().Str(xlog.FieldLanguage, string(lang)).Msg("Message received")

	intent, err := h.classifier.Classify(ctx, message)
	if err != nil {
		return nil, h.fail(logger, "", err)
	}
	logger.Info().Str(xlog.FieldIntent, string(intent)).Msg("Intent detected")

	status, missing, data := h.lookup(ctx, logger, intent, params)

	conversation := &models.ConversationContext{
		Hotel:         h.hotelName,
		Intent:        intent,
		Language:      lang,
		Request:       params,
		PMSStatus:     status,
		MissingFields: missing,
		Data:          data,
	}
	contextMessage, err := prompts.BuildContextMessage(conversation)
	if err != nil {
		return nil, h.fail(logger, intent, err)
	}

	reply, err := h.replies.Generate(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: h.systemPrompt},
		{Role: llm.RoleSystem, Content: contextMessage},
		{Role: llm.RoleUser, Content: message},
	}, replyTemperature)
	if err != nil {
		return nil, h.fail(logger, intent, err)
	}
	if reply == "" {
		return nil, h.fail(logger, intent, ErrEmptyGeneration)
	}

	metrics.RecordChat(string(intent), "ok")
	elapsed := time.Since(start)
	logger.Info().
		Str(xlog.FieldIntent, string(intent)).
		Str(xlog.FieldPMSStatus, status).
		Int64(xlog.FieldDuration, elapsed.Milliseconds()).
		Msg("Reply generated")

	h.record(ctx, logger, &transcript.Exchange{
		RequestID:  xlog.RequestIDFromContext(ctx),
		ReceivedAt: start.UTC(),
		Message:    message,
		Intent:     string(intent),
		Language:   string(lang),
		PMSStatus:  status,
		Reply:      reply,
		LatencyMs:  elapsed.Milliseconds(),
	})

	return &models.ChatResponse{
		Reply:    reply,
		Intent:   intent,
		Language: lang,
	}, nil
}

// lookup performs the gateway call implied by the intent and folds its
// outcome into a status. data is non-nil only when the status is ok.
func (h *ConciergeHandler) lookup(ctx context.Context, logger zerolog.Logger, intent models.Intent, params models.RequestParams) (string, []string, any) {
	var (
		operation string
		result    pms.Result
	)
	switch intent {
	case models.IntentAvailability:
		operation, result = pms.OpAvailability, h.gateway.GetAvailability(ctx, params)
	case models.IntentPricing:
		operation, result = pms.OpPricing, h.gateway.GetPricing(ctx, params)
	case models.IntentRoomsInfo:
		operation, result = pms.OpRooms, h.gateway.GetRooms(ctx)
	case models.IntentFAQ:
		operation, result = pms.OpPolicies, h.gateway.GetPolicies(ctx)
	default:
		return models.PMSStatusNotNeeded, []string{}, nil
	}

	status, missing, data := normalize(result)
	metrics.RecordPMSCall(operation, status)

	event := logger.Info()
	if status != models.PMSStatusOK {
		event = logger.Warn()
	}
	event.Str(xlog.FieldOperation, operation).
		Str(xlog.FieldPMSStatus, status).
		Strs("missing_fields", missing).
		Msg("PMS lookup finished")

	return status, missing, data
}

func normalize(result pms.Result) (string, []string, any) {
	switch {
	case result.OK && result.Data != nil:
		return models.PMSStatusOK, []string{}, result.Data
	case result.OK:
		return models.PMSStatusUnavailable, []string{}, nil
	case len(result.MissingFields) > 0:
		return models.PMSStatusMissingFields, append([]string(nil), result.MissingFields...), nil
	case result.Error == pms.ErrInvalidDates:
		return models.PMSStatusInvalidDates, []string{}, nil
	case result.Error != "":
		return result.Error, []string{}, nil
	default:
		return models.PMSStatusUnavailable, []string{}, nil
	}
}

func (h *ConciergeHandler) fail(logger zerolog.Logger, intent models.Intent, err error) error {
	code := ErrorCode(err)
	metrics.RecordChat(string(intent), code)
	logger.Error().Err(err).Str(xlog.FieldIntent, string(intent)).Str("code", code).Msg("Chat request failed")
	return err
}

// record stores the exchange; failures are logged and otherwise ignored
func (h *ConciergeHandler) record(ctx context.Context, logger zerolog.Logger, ex *transcript.Exchange) {
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), transcriptTimeout)
	defer cancel()

	if err := h.transcripts.Save(saveCtx, ex); err != nil {
		logger.Warn().Err(err).Msg("Failed to record exchange")
		return
	}
	logger.Debug().Str(xlog.FieldExchangeID, ex.ID).Msg("Exchange recorded")
}

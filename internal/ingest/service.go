// Package ingest turns uplink messages into stored observation batches.
//
// Pipeline:
//   - authorize the caller (webhook only)
//   - parse and classify the body
//   - resolve the device by EUI
//   - pick the timestamp and the payload representation
//   - flatten numeric leaves and store batch plus observations atomically
//   - mirror the committed batch to the optional Sink
//
// Messages that cannot be attributed to a registered device are accepted
// with a note instead of an error so that the network server does not retry
// them forever.
package ingest

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/tejusbharadwaj/agrotelemetry/internal/database"
	"github.com/tejusbharadwaj/agrotelemetry/internal/logging"
	"github.com/tejusbharadwaj/agrotelemetry/internal/metrics"
	"github.com/tejusbharadwaj/agrotelemetry/internal/models"
	"github.com/tejusbharadwaj/agrotelemetry/internal/normalize"
)

const StatusOK = "ok"

// Notes attached to accepted uplinks that were not stored.
const (
	NoteNotObject  = "payload is not a JSON object"
	NoteMissingEUI = "missing eui/dev_eui"
)

// Transports label where an uplink came from in logs and metrics.
const (
	TransportWebhook = "webhook"
	TransportMQTT    = "mqtt"
	TransportDirect  = "direct"
)

// Result describes the outcome of one accepted uplink.
type Result struct {
	Status   string        `json:"status"`
	RID      string        `json:"rid"`
	Note     string        `json:"note,omitempty"`
	EUI      string        `json:"eui,omitempty"`
	DeviceID int64         `json:"device_id,omitempty"`
	BatchID  int64         `json:"batch_id,omitempty"`
	Origin   models.Origin `json:"origin,omitempty"`
	Inserted int           `json:"inserted"`
}

// Sink receives every committed batch, e.g. to mirror it into a time-series
// database. Sink failures never fail the ingestion.
type Sink interface {
	Export(ctx context.Context, device *models.Device, batch *models.ObservationBatch, observations []models.Observation) error
}

// Service orchestrates the ingestion pipeline.
type Service struct {
	repo    database.IngestRepository
	secret  string
	logger  *logrus.Logger
	metrics *metrics.Metrics
	sink    Sink
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics records outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithSink mirrors committed batches to sink.
func WithSink(sink Sink) Option {
	return func(s *Service) { s.sink = sink }
}

// WithClock replaces time.Now as the fallback timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates an ingestion service. An empty secret disables the
// webhook secret check.
func NewService(repo database.IngestRepository, secret string, logger *logrus.Logger, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		secret: secret,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type transportKey struct{}

// WithTransport tags ctx with the transport name used by Process.
func WithTransport(ctx context.Context, transport string) context.Context {
	return context.WithValue(ctx, transportKey{}, transport)
}

// TransportFrom returns the transport set by WithTransport, or "direct".
func TransportFrom(ctx context.Context) string {
	if t, ok := ctx.Value(transportKey{}).(string); ok && t != "" {
		return t
	}
	return TransportDirect
}

// Ingest handles a webhook delivery: it checks secretHeader against the
// configured secret and then runs the pipeline.
func (s *Service) Ingest(ctx context.Context, body []byte, secretHeader string) (*Result, error) {
	rid := newRID()
	if err := s.authorize(rid, secretHeader); err != nil {
		return nil, err
	}
	return s.process(ctx, body, rid, TransportWebhook)
}

// Authorize checks secretHeader without reading a body, so transports can
// reject unauthenticated deliveries before buffering them.
func (s *Service) Authorize(secretHeader string) error {
	return s.authorize(newRID(), secretHeader)
}

func (s *Service) authorize(rid, secretHeader string) error {
	if s.secret == "" || subtle.ConstantTimeCompare([]byte(secretHeader), []byte(s.secret)) == 1 {
		return nil
	}
	s.logger.WithFields(logrus.Fields{
		"rid":       rid,
		"transport": TransportWebhook,
	}).Warn("Rejected uplink with invalid webhook secret")
	s.metrics.IngestOutcome(TransportWebhook, metrics.OutcomeUnauthorized)
	return fmt.Errorf("invalid webhook secret: %w", models.ErrUnauthorized)
}

// Process runs the pipeline on an already authorized uplink body.
func (s *Service) Process(ctx context.Context, body []byte) (*Result, error) {
	return s.process(ctx, body, newRID(), TransportFrom(ctx))
}

func (s *Service) process(ctx context.Context, body []byte, rid, transport string) (*Result, error) {
	log := s.logger.WithFields(logrus.Fields{
		"rid":       rid,
		"transport": transport,
	})
	result := &Result{Status: StatusOK, RID: rid}

	if !utf8.Valid(body) || !gjson.ValidBytes(body) {
		log.Warn("Rejected uplink with invalid JSON")
		s.metrics.IngestOutcome(transport, metrics.OutcomeBadRequest)
		return nil, fmt.Errorf("invalid JSON body: %w", models.ErrBadRequest)
	}

	payload := gjson.ParseBytes(body)
	if !payload.IsObject() {
		log.WithField("body", logging.Truncate(body)).Warn("Uplink payload is not a JSON object")
		s.metrics.IngestOutcome(transport, metrics.OutcomeNotObject)
		result.Note = NoteNotObject
		return result, nil
	}

	eui, ok := normalize.ExtractIdentity(payload)
	if !ok {
		log.WithField("body", logging.Truncate(body)).Warn("Uplink without eui/dev_eui")
		s.metrics.IngestOutcome(transport, metrics.OutcomeNoEUI)
		result.Note = NoteMissingEUI
		return result, nil
	}
	log = log.WithField("eui", eui)

	device, err := s.repo.DeviceByEUI(ctx, eui)
	if errors.Is(err, models.ErrNotFound) {
		log.WithField("body", logging.Truncate(body)).Warn("Uplink from unregistered device")
		s.metrics.IngestOutcome(transport, metrics.OutcomeUnknownDevice)
		result.Note = fmt.Sprintf("device not registered eui=%s", eui)
		return result, nil
	}
	if err != nil {
		log.WithError(err).Error("Failed to look up device")
		s.metrics.IngestOutcome(transport, metrics.OutcomeError)
		return nil, fmt.Errorf("looking up device %s: %w: %w", eui, models.ErrPersistence, err)
	}
	log = log.WithField("device_id", device.ID)

	observedAt, ok := normalize.ExtractTimestamp(payload)
	if !ok {
		observedAt = s.now().UTC()
	}

	uplink := normalize.Member(payload, "uplink_message")
	origin, selected := normalize.SelectPayload(uplink)

	batch := &models.ObservationBatch{
		DeviceID:   device.ID,
		ObservedAt: observedAt,
		Origin:     origin,
		RawJSON:    body,
	}
	if decoded := normalize.Member(uplink, "decoded_payload"); decoded.IsObject() {
		batch.DecodedJSON = []byte(decoded.Raw)
	}
	if normalized := normalize.Member(uplink, "normalized_payload"); normalized.IsObject() {
		batch.NormalizedJSON = []byte(normalized.Raw)
	}

	var observations []models.Observation
	if origin != models.OriginNone {
		observations = toObservations(normalize.Flatten(selected, ""))
	}

	if err := s.repo.SaveBatch(ctx, batch, observations); err != nil {
		log.WithError(err).Error("Failed to store observation batch")
		s.metrics.IngestOutcome(transport, metrics.OutcomeError)
		return nil, fmt.Errorf("storing batch for device %d: %w: %w", device.ID, models.ErrPersistence, err)
	}

	s.metrics.IngestOutcome(transport, metrics.OutcomeStored)
	s.metrics.AddObservations(len(observations))

	log.WithFields(logrus.Fields{
		"batch_id": batch.ID,
		"origin":   origin,
		"inserted": len(observations),
	}).Info("Stored uplink")

	if s.sink != nil {
		if err := s.sink.Export(ctx, device, batch, observations); err != nil {
			log.WithError(err).Warn("Failed to mirror batch")
			s.metrics.ExportFailed()
		}
	}

	result.EUI = eui
	result.DeviceID = device.ID
	result.BatchID = batch.ID
	result.Origin = origin
	result.Inserted = len(observations)
	return result, nil
}

// toObservations keeps the finite items; NaN and ±Inf cannot be stored.
func toObservations(items []normalize.Item) []models.Observation {
	observations := make([]models.Observation, 0, len(items))
	for _, it := range items {
		if math.IsNaN(it.Value) || math.IsInf(it.Value, 0) {
			continue
		}
		observations = append(observations, models.Observation{
			VariableName: it.Name,
			VariablePath: it.Path,
			Unit:         it.Unit,
			Value:        it.Value,
		})
	}
	return observations
}

// newRID returns a short correlation id for log lines of one uplink.
func newRID() string {
	return uuid.NewString()[:8]
}

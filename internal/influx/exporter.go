// Package influx mirrors committed observation batches into InfluxDB v2.
// Postgres stays the system of record; a failed export is reported to the
// caller and never retried.
package influx

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/tejusbharadwaj/agrotelemetry/internal/config"
	"github.com/tejusbharadwaj/agrotelemetry/internal/models"
)

const (
	defaultConnectTimeout = 10 * time.Second

	// Measurement is the InfluxDB measurement every observation is written to.
	Measurement = "observation"
)

var (
	// ErrConnectionFailed indicates the initial ping failed.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrDisabled indicates the mirror is disabled in configuration.
	ErrDisabled = errors.New("influxdb: disabled in configuration")
)

// pointWriter is the subset of api.WriteAPIBlocking the exporter needs.
type pointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

// Exporter writes observations synchronously, one request per batch.
type Exporter struct {
	client influxdb2.Client
	writer pointWriter
}

// Connect creates the client and verifies the server answers a ping.
func Connect(cfg config.InfluxConfig) (*Exporter, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	client := influxdb2.NewClient(cfg.URL, cfg.Token)

	ctx, cancel := context.WithTimeout(context.Background(), defaultConnectTimeout)
	defer cancel()

	healthy, err := client.Ping(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: ping failed: %w", ErrConnectionFailed, err)
	}
	if !healthy {
		client.Close()
		return nil, fmt.Errorf("%w: server not healthy", ErrConnectionFailed)
	}

	return &Exporter{
		client: client,
		writer: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
	}, nil
}

// Export writes one point per observation, stamped with the batch time.
func (e *Exporter) Export(ctx context.Context, device *models.Device, batch *models.ObservationBatch, observations []models.Observation) error {
	if len(observations) == 0 {
		return nil
	}
	if err := e.writer.WritePoint(ctx, Points(device, batch, observations)...); err != nil {
		return fmt.Errorf("writing %d points for batch %d: %w", len(observations), batch.ID, err)
	}
	return nil
}

// Close releases the underlying HTTP client.
func (e *Exporter) Close() {
	if e.client != nil {
		e.client.Close()
	}
}

// Points converts a committed batch into InfluxDB points. Identifiers and
// variable names are tags; the numeric value is the only field.
func Points(device *models.Device, batch *models.ObservationBatch, observations []models.Observation) []*write.Point {
	points := make([]*write.Point, 0, len(observations))
	for _, obs := range observations {
		tags := map[string]string{
			"eui":           device.EUI,
			"device_id":     strconv.FormatInt(device.ID, 10),
			"origin":        string(batch.Origin),
			"variable_name": obs.VariableName,
			"variable_path": obs.VariablePath,
		}
		if obs.Unit != nil && *obs.Unit != "" {
			tags["unit"] = *obs.Unit
		}
		points = append(points, write.NewPoint(
			Measurement,
			tags,
			map[string]interface{}{"value": obs.Value},
			batch.ObservedAt,
		))
	}
	return points
}

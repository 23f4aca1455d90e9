// Package agrotelemetry implements the telemetry backend for agricultural
// LoRaWAN sensors.
//
// # Architecture
//
// The service is structured into several key packages:
//   - api: HTTP routes, middleware and request validation
//   - ingest: webhook and MQTT uplink orchestration
//   - normalize: JSON walking that turns payloads into numeric observations
//   - accounts: users, API tokens, productive units and devices
//   - query: observation and series reads scoped to the caller
//   - database: PostgreSQL storage and embedded migrations
//   - grpc: standard gRPC health service
//   - mqtt, influx: optional uplink transport and time-series mirror
//   - models: Shared data structures
//
// Key Features
//
//   - Ingestion:
//     Every accepted uplink for a registered device becomes one batch
//     with its raw JSON kept alongside the extracted values. Normalized
//     payloads win over decoded ones when both are present.
//
//   - Tolerance:
//     Deliveries that cannot be attributed to a device are acknowledged
//     with 200 and a note, so the network server does not retry them.
//
//   - Ownership:
//     Reads are always scoped to the devices owned by the token's user.
//
// Example Usage
//
//	curl -H "X-API-Token: $TOKEN" \
//	    "http://localhost:8080/devices/3/series?variable_path=air.temperature"
//
// For more information about specific packages, see their respective
// documentation.
package agrotelemetry

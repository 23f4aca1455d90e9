package models

import "time"

// Origin records which representation of the uplink body produced a batch.
type Origin string

const (
	OriginNormalized Origin = "normalized"
	OriginDecoded    Origin = "decoded"
	OriginNone       Origin = "none"
)

// User is an account that owns productive units and devices.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	Token        string    `json:"-" db:"token"`
	ResetToken   *string   `json:"-" db:"reset_token"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// ProductiveUnit is a field, greenhouse or site that groups devices.
type ProductiveUnit struct {
	ID           int64     `json:"id" db:"id"`
	UserID       int64     `json:"user_id" db:"user_id"`
	Name         string    `json:"name" db:"name"`
	Area         *float64  `json:"area,omitempty" db:"area"`
	Description  *string   `json:"description,omitempty" db:"description"`
	Qualities    *string   `json:"qualities,omitempty" db:"qualities"`
	Kind         *string   `json:"kind,omitempty" db:"kind"`
	Category     *string   `json:"category,omitempty" db:"category"`
	Address      *string   `json:"address,omitempty" db:"address"`
	Georeference *string   `json:"georeference,omitempty" db:"georeference"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Device is a registered end device, keyed for ingestion by its EUI.
type Device struct {
	ID               int64     `json:"id" db:"id"`
	UserID           int64     `json:"user_id" db:"user_id"`
	ProductiveUnitID int64     `json:"productive_unit_id" db:"productive_unit_id"`
	Brand            *string   `json:"brand,omitempty" db:"brand"`
	DeviceIdentifier *string   `json:"device_identifier,omitempty" db:"device_identifier"`
	Kind             *string   `json:"kind,omitempty" db:"kind"`
	EUI              string    `json:"eui" db:"eui"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// ObservationBatch is the parent record written once per accepted uplink.
type ObservationBatch struct {
	ID             int64     `json:"id" db:"id"`
	DeviceID       int64     `json:"device_id" db:"device_id"`
	ObservedAt     time.Time `json:"observed_at" db:"observed_at"`
	Origin         Origin    `json:"origin" db:"origin"`
	RawJSON        []byte    `json:"-" db:"raw_json"`
	DecodedJSON    []byte    `json:"-" db:"decoded_json"`
	NormalizedJSON []byte    `json:"-" db:"normalized_json"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// Observation is one numeric value extracted from a batch.
type Observation struct {
	ID           int64   `json:"id" db:"id"`
	BatchID      int64   `json:"batch_id" db:"batch_id"`
	VariableName string  `json:"variable_name" db:"variable_name"`
	VariablePath string  `json:"variable_path" db:"variable_path"`
	Unit         *string `json:"unit" db:"unit"`
	Value        float64 `json:"value" db:"value"`
}

// ObservationFilter narrows an observation query. Zero values mean "no filter".
type ObservationFilter struct {
	DeviceEUI    string
	VariablePath string
	VariableName string
	Start        *time.Time
	End          *time.Time
	Limit        int
}

// ObservationRecord is an observation joined with its batch and device.
type ObservationRecord struct {
	EUI          string    `json:"eui"`
	DeviceID     int64     `json:"device_id"`
	ObservedAt   time.Time `json:"observed_at"`
	Origin       Origin    `json:"origin"`
	VariableName string    `json:"variable_name"`
	VariablePath string    `json:"variable_path"`
	Unit         *string   `json:"unit"`
	Value        float64   `json:"value"`
}

// SeriesPoint is a single point of a device time series.
type SeriesPoint struct {
	Time  time.Time `json:"t"`
	Value float64   `json:"v"`
	Unit  *string   `json:"u"`
}

// Series is the time series of one variable path on one device.
type Series struct {
	DeviceID     int64         `json:"device_id"`
	EUI          string        `json:"eui"`
	VariablePath string        `json:"variable_path"`
	Points       []SeriesPoint `json:"points"`
}

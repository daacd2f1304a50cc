// Package entity defines the serialized shapes of cleaned telemetry.
package entity

// TelemetryRecord is one cleaned telemetry row in its export shape.
// It includes parquet tags for serialization to Parquet format; the nullable
// numeric columns are optional fields so the missing marker survives into
// the columnar output.
type TelemetryRecord struct {
	Timestamp       int64    `parquet:"name=timestamp,type=INT64,convertedtype=TIMESTAMP_MILLIS"`
	SpeedOverGround *float64 `parquet:"name=speed_over_ground,type=DOUBLE,repetitiontype=OPTIONAL"`
	Longitude       *float64 `parquet:"name=longitude,type=DOUBLE,repetitiontype=OPTIONAL"`
	Latitude        *float64 `parquet:"name=latitude,type=DOUBLE,repetitiontype=OPTIONAL"`
	EngineFuelRate  *float64 `parquet:"name=engine_fuel_rate,type=DOUBLE,repetitiontype=OPTIONAL"`
	Year            int32    `parquet:"name=year,type=INT32"`
	Month           int32    `parquet:"name=month,type=INT32"`
	Day             int32    `parquet:"name=day,type=INT32"`
}

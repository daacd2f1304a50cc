// Package writer serializes the cleaned record table into compressed,
// partitioned Parquet files and publishes them to object storage.
package writer

import (
	"bytes"
	"fmt"
	"math/rand"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/xitongsys/parquet-go/parquet"
	parquetwriter "github.com/xitongsys/parquet-go/writer"

	"github.com/tidewell/aisclean/internal/domain/entity"
	"github.com/tidewell/aisclean/internal/domain/model"
	"github.com/tidewell/aisclean/internal/support/exception"
	"github.com/tidewell/aisclean/internal/support/logger"
)

const stageName = "writer"

// PartitionFile is one fully serialized output partition.
type PartitionFile struct {
	// Path is the object key of the partition file, including the
	// year=/month=/day= directory segments.
	Path string
	// Bytes is the complete Parquet file content.
	Bytes []byte
	// Rows is the number of records in the partition.
	Rows int
}

// ParquetEncoder serializes a cleaned table into one Parquet file per
// distinct year/month/day combination.
type ParquetEncoder struct {
	// baseDir is the key prefix under which partition directories are
	// created.
	baseDir string
	// compression is the Parquet compression codec name.
	compression string
}

// NewParquetEncoder creates a new ParquetEncoder. compression defaults to
// SNAPPY when empty.
func NewParquetEncoder(baseDir, compression string) (*ParquetEncoder, error) {
	if compression == "" {
		compression = "SNAPPY"
	}
	if _, err := compressionCodec(compression); err != nil {
		return nil, exception.NewPipelineError(stageName, fmt.Sprintf("invalid compression type '%s'", compression), nil, err)
	}
	return &ParquetEncoder{baseDir: baseDir, compression: compression}, nil
}

// Encode buffers the table's rows by partition key and serializes every
// partition completely in memory. Row order within a partition follows the
// table's global sort. Either all partitions encode successfully and are
// returned, or an error is returned with no files, so a failed encode can
// never publish a partial partition set.
func (e *ParquetEncoder) Encode(t *model.Table) ([]PartitionFile, error) {
	buffered := make(map[string][]*entity.TelemetryRecord)
	for _, row := range t.Rows() {
		key := partitionKey(row)
		buffered[key] = append(buffered[key], toRecord(row))
	}

	// Deterministic partition ordering for the caller.
	keys := make([]string, 0, len(buffered))
	for key := range buffered {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	codec, err := compressionCodec(e.compression)
	if err != nil {
		return nil, exception.NewPipelineError(stageName, fmt.Sprintf("invalid compression type '%s'", e.compression), nil, err)
	}

	var (
		files    []PartitionFile
		multiErr error
	)
	for _, key := range keys {
		records := buffered[key]
		content, err := e.encodePartition(records, codec)
		if err != nil {
			multiErr = multierror.Append(multiErr, exception.NewPipelineError(
				stageName,
				fmt.Sprintf("failed to encode partition '%s'", key),
				nil,
				err,
			))
			continue
		}

		fileName := fmt.Sprintf("data_%s_%s.parquet", time.Now().UTC().Format("20060102150405"), randomSuffix(8))
		files = append(files, PartitionFile{
			Path:  path.Join(e.baseDir, key, fileName),
			Bytes: content,
			Rows:  len(records),
		})
	}
	if multiErr != nil {
		return nil, multiErr
	}

	logger.Debugf("Encoded %d partitions from %d rows.", len(files), t.Len())
	return files, nil
}

// encodePartition writes one partition's records into an in-memory Parquet
// file. The row group size equals the record count so every file holds a
// single row group.
func (e *ParquetEncoder) encodePartition(records []*entity.TelemetryRecord, codec parquet.CompressionCodec) (content []byte, err error) {
	buf := new(bytes.Buffer)
	pw, err := parquetwriter.NewParquetWriterFromWriter(buf, new(entity.TelemetryRecord), int64(len(records)))
	if err != nil {
		return nil, err
	}
	pw.CompressionType = codec

	for _, record := range records {
		if err := pw.Write(record); err != nil {
			return nil, err
		}
	}

	// The library can panic on malformed schemas during WriteStop; convert
	// that to an error.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parquet writer panicked during WriteStop: %v", r)
			content = nil
		}
	}()
	if err := pw.WriteStop(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// partitionKey renders the Hive-style directory segments of a row.
func partitionKey(row *model.Row) string {
	return fmt.Sprintf("year=%04d/month=%02d/day=%02d", row.Year, row.Month, row.Day)
}

// toRecord converts a cleaned row to its export shape. Missing markers map
// to nil optional fields.
func toRecord(row *model.Row) *entity.TelemetryRecord {
	return &entity.TelemetryRecord{
		Timestamp:       row.Timestamp.UnixMilli(),
		SpeedOverGround: cellValue(row, model.ColumnSpeedOverGround),
		Longitude:       cellValue(row, model.ColumnLongitude),
		Latitude:        cellValue(row, model.ColumnLatitude),
		EngineFuelRate:  cellValue(row, model.ColumnEngineFuelRate),
		Year:            row.Year,
		Month:           row.Month,
		Day:             row.Day,
	}
}

// cellValue extracts the numeric value of a sanitized cell, or nil for the
// missing marker.
func cellValue(row *model.Row, column string) *float64 {
	cell, ok := row.Cell(column)
	if !ok {
		return nil
	}
	v, ok := cell.Number()
	if !ok {
		return nil
	}
	return &v
}

// compressionCodec returns the Parquet compression codec from a string.
func compressionCodec(compressionType string) (parquet.CompressionCodec, error) {
	switch strings.ToUpper(compressionType) {
	case "SNAPPY":
		return parquet.CompressionCodec_SNAPPY, nil
	case "GZIP":
		return parquet.CompressionCodec_GZIP, nil
	case "NONE", "":
		return parquet.CompressionCodec_UNCOMPRESSED, nil
	default:
		return 0, fmt.Errorf("unsupported compression type: %s", compressionType)
	}
}

// randomSuffix generates a random string to keep partition file names
// collision free across invocations. The shared source keeps suffixes
// distinct even for back-to-back calls.
func randomSuffix(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}

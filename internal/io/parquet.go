package io

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/metadata"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

// Read reads Parquet data and returns a table.
// Key-value metadata written by pandas ends up on the table schema.
func (r *ParquetReader) Read() (arrow.Table, error) {
	return r.ReadContext(context.Background())
}

// ReadContext is Read with a caller supplied context.
func (r *ParquetReader) ReadContext(ctx context.Context) (arrow.Table, error) {
	// Read all data into memory for Parquet reading
	data, err := io.ReadAll(r.reader)
	if err != nil {
		return nil, fmt.Errorf("reading data: %w", err)
	}
	readerAt := bytes.NewReader(data)

	pqReader, err := file.NewParquetReader(readerAt)
	if err != nil {
		return nil, fmt.Errorf("creating parquet file reader: %w", err)
	}
	defer pqReader.Close()

	batchSize := int64(r.options.BatchSize)
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	arrowReader, err := pqarrow.NewFileReader(pqReader, pqarrow.ArrowReadProperties{BatchSize: batchSize}, r.mem)
	if err != nil {
		return nil, fmt.Errorf("creating arrow file reader: %w", err)
	}

	table, err := arrowReader.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading table: %w", err)
	}
	return withFileMetadata(table, pqReader.MetaData().KeyValueMetadata()), nil
}

const arrowSchemaKey = "ARROW:schema"

// withFileMetadata moves the file's key-value metadata onto the table
// schema, where pandas readers expect it. The arrow schema entry is dropped.
func withFileMetadata(table arrow.Table, kv metadata.KeyValueMetadata) arrow.Table {
	if table.Schema().HasMetadata() || len(kv) == 0 {
		return table
	}

	allValues := kv.Values()
	keys := make([]string, 0, len(kv))
	values := make([]string, 0, len(kv))
	for i, key := range kv.Keys() {
		if key == arrowSchemaKey {
			continue
		}
		keys = append(keys, key)
		values = append(values, allValues[i])
	}
	if len(keys) == 0 {
		return table
	}

	md := arrow.NewMetadata(keys, values)
	cols := make([]arrow.Column, table.NumCols())
	for i := range cols {
		cols[i] = *table.Column(i)
	}
	result := array.NewTable(arrow.NewSchema(table.Schema().Fields(), &md), cols, table.NumRows())
	table.Release()
	return result
}

// Write writes the table to Parquet format, keeping its schema metadata.
func (w *ParquetWriter) Write(table arrow.Table) error {
	compression, err := compressionCodec(w.options.Compression)
	if err != nil {
		return err
	}

	batchSize := int64(w.options.BatchSize)
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	props := parquet.NewWriterProperties(
		parquet.WithCompression(compression),
		parquet.WithBatchSize(batchSize),
	)

	arrowProps := pqarrow.NewArrowWriterProperties(
		pqarrow.WithAllocator(memory.NewGoAllocator()),
		pqarrow.WithStoreSchema(),
	)

	writer, err := pqarrow.NewFileWriter(table.Schema(), w.writer, props, arrowProps)
	if err != nil {
		return fmt.Errorf("creating file writer: %w", err)
	}

	chunkSize := table.NumRows()
	if chunkSize <= 0 {
		chunkSize = 1
	}
	if err := writer.WriteTable(table, chunkSize); err != nil {
		_ = writer.Close()
		return fmt.Errorf("writing table: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing file writer: %w", err)
	}
	return nil
}

func compressionCodec(name string) (compress.Compression, error) {
	switch name {
	case "snappy", "":
		return compress.Codecs.Snappy, nil
	case "gzip":
		return compress.Codecs.Gzip, nil
	case "lz4":
		return compress.Codecs.Lz4Raw, nil
	case "zstd":
		return compress.Codecs.Zstd, nil
	case "brotli":
		return compress.Codecs.Brotli, nil
	case "uncompressed":
		return compress.Codecs.Uncompressed, nil
	default:
		return compress.Codecs.Uncompressed, fmt.Errorf("unsupported compression: %s", name)
	}
}

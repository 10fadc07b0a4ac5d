package io

import (
	"bytes"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// fileMagic opens every Arrow IPC file
var fileMagic = []byte("ARROW1")

// DecodeIPC decodes an in-memory IPC payload into a table
func DecodeIPC(data []byte, mem memory.Allocator) (arrow.Table, error) {
	return NewIPCReader(bytes.NewReader(data), mem).Read()
}

// EncodeIPC serializes a table into an IPC stream payload
func EncodeIPC(table arrow.Table) ([]byte, error) {
	var buf bytes.Buffer
	if err := NewIPCWriter(&buf, DefaultIPCOptions()).Write(table); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Read reads all record batches and returns them as one table.
// The schema, including its metadata, is taken from the payload.
func (r *IPCReader) Read() (arrow.Table, error) {
	data, err := io.ReadAll(r.reader)
	if err != nil {
		return nil, fmt.Errorf("reading data: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty IPC payload")
	}

	if bytes.HasPrefix(data, fileMagic) {
		return r.readFile(data)
	}
	return r.readStream(data)
}

func (r *IPCReader) readStream(data []byte) (arrow.Table, error) {
	reader, err := ipc.NewReader(bytes.NewReader(data), ipc.WithAllocator(r.mem))
	if err != nil {
		return nil, fmt.Errorf("creating IPC stream reader: %w", err)
	}
	defer reader.Release()

	var records []arrow.Record
	defer func() {
		for _, rec := range records {
			rec.Release()
		}
	}()

	for reader.Next() {
		rec := reader.Record()
		rec.Retain()
		records = append(records, rec)
	}
	if err := reader.Err(); err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading IPC stream: %w", err)
	}

	return tableFromRecords(reader.Schema(), records), nil
}

func (r *IPCReader) readFile(data []byte) (arrow.Table, error) {
	reader, err := ipc.NewFileReader(bytes.NewReader(data), ipc.WithAllocator(r.mem))
	if err != nil {
		return nil, fmt.Errorf("creating IPC file reader: %w", err)
	}
	defer reader.Close()

	var records []arrow.Record
	defer func() {
		for _, rec := range records {
			rec.Release()
		}
	}()

	for i := 0; i < reader.NumRecords(); i++ {
		rec, err := reader.Record(i)
		if err != nil {
			return nil, fmt.Errorf("reading IPC record %d: %w", i, err)
		}
		rec.Retain()
		records = append(records, rec)
	}

	return tableFromRecords(reader.Schema(), records), nil
}

// tableFromRecords keeps the row count of payloads without fields, which
// only carry their length in the record batch headers
func tableFromRecords(schema *arrow.Schema, records []arrow.Record) arrow.Table {
	if schema.NumFields() > 0 {
		return array.NewTableFromRecords(schema, records)
	}
	var rows int64
	for _, rec := range records {
		rows += rec.NumRows()
	}
	return array.NewTable(schema, nil, rows)
}

// Write writes the table as IPC record batches
func (w *IPCWriter) Write(table arrow.Table) error {
	type recordWriter interface {
		Write(rec arrow.Record) error
		Close() error
	}

	var writer recordWriter
	switch w.options.Format {
	case IPCFile:
		fw, err := ipc.NewFileWriter(w.writer, ipc.WithSchema(table.Schema()), ipc.WithAllocator(w.mem))
		if err != nil {
			return fmt.Errorf("creating IPC file writer: %w", err)
		}
		writer = fw
	case IPCStream, "":
		writer = ipc.NewWriter(w.writer, ipc.WithSchema(table.Schema()), ipc.WithAllocator(w.mem))
	default:
		return fmt.Errorf("unsupported IPC format: %s", w.options.Format)
	}

	tr := array.NewTableReader(table, -1)
	defer tr.Release()

	for tr.Next() {
		if err := writer.Write(tr.Record()); err != nil {
			_ = writer.Close()
			return fmt.Errorf("writing record: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing IPC writer: %w", err)
	}
	return nil
}

// Package io provides I/O operations for the serialized tables a quiver is
// built from.
//
// This package decodes Arrow IPC payloads (stream and file format) into arrow
// tables with their schema metadata intact, and reads and writes Parquet files,
// which keep the pandas schema sidecar in their key-value metadata.
//
// Key components:
//   - TableReader/TableWriter interfaces for pluggable I/O backends
//   - IPCReader/IPCWriter for Arrow IPC payloads
//   - ParquetReader/ParquetWriter for Parquet files
//
// Memory management: All returned tables hold Arrow memory and must be released
// by the caller with defer patterns.
package io

import (
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

const (
	// DefaultBatchSize is the default batch size for I/O operations
	DefaultBatchSize = 1000
)

// TableReader defines the interface for reading tables from various sources
type TableReader interface {
	// Read reads data from the source and returns an Arrow table
	Read() (arrow.Table, error)
}

// TableWriter defines the interface for writing tables to various destinations
type TableWriter interface {
	// Write writes the table to the destination
	Write(table arrow.Table) error
}

// IPCFormat selects the Arrow IPC framing
type IPCFormat string

const (
	// IPCStream is the streaming format pyarrow uses for in-memory payloads
	IPCStream IPCFormat = "stream"
	// IPCFile is the random access file format (Feather v2)
	IPCFile IPCFormat = "file"
)

// IPCOptions contains configuration options for IPC operations
type IPCOptions struct {
	// Format is the IPC framing to write
	Format IPCFormat
}

// DefaultIPCOptions returns default IPC options
func DefaultIPCOptions() IPCOptions {
	return IPCOptions{
		Format: IPCStream,
	}
}

// IPCReader reads Arrow IPC data and converts it to tables
type IPCReader struct {
	reader io.Reader
	mem    memory.Allocator
}

// NewIPCReader creates a new IPC reader; the framing is detected from the data
func NewIPCReader(reader io.Reader, mem memory.Allocator) *IPCReader {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	return &IPCReader{
		reader: reader,
		mem:    mem,
	}
}

// IPCWriter writes tables in Arrow IPC format
type IPCWriter struct {
	writer  io.Writer
	options IPCOptions
	mem     memory.Allocator
}

// NewIPCWriter creates a new IPC writer with the specified options
func NewIPCWriter(writer io.Writer, options IPCOptions) *IPCWriter {
	return &IPCWriter{
		writer:  writer,
		options: options,
		mem:     memory.DefaultAllocator,
	}
}

// ParquetOptions contains configuration options for Parquet operations
type ParquetOptions struct {
	// Compression type for Parquet files
	Compression string
	// BatchSize for reading/writing operations
	BatchSize int
}

// DefaultParquetOptions returns default Parquet options
func DefaultParquetOptions() ParquetOptions {
	return ParquetOptions{
		Compression: "snappy",
		BatchSize:   DefaultBatchSize,
	}
}

// ParquetReader reads Parquet data and converts it to tables
type ParquetReader struct {
	reader  io.Reader
	options ParquetOptions
	mem     memory.Allocator
}

// NewParquetReader creates a new Parquet reader with the specified options
func NewParquetReader(reader io.Reader, options ParquetOptions, mem memory.Allocator) *ParquetReader {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	return &ParquetReader{
		reader:  reader,
		options: options,
		mem:     mem,
	}
}

// ParquetWriter writes tables to Parquet format
type ParquetWriter struct {
	writer  io.Writer
	options ParquetOptions
}

// NewParquetWriter creates a new Parquet writer with the specified options
func NewParquetWriter(writer io.Writer, options ParquetOptions) *ParquetWriter {
	return &ParquetWriter{
		writer:  writer,
		options: options,
	}
}

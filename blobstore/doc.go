// Package blobstore provides the storage abstraction for benchmark
// inputs (sample datasets) and outputs (grids).
//
// BlobStore is the interface for reading and writing named blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local file system
//   - MemoryStore: in-process, for tests
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: MinIO and other S3-compatible services
//
// # Streaming
//
// Datasets and grids are read and written sequentially:
//
//	r, _ := blobstore.OpenReader(ctx, store, "randnum.dat")
//	defer r.Close()
//
//	w, _ := store.Create(ctx, "grid.dat")
//	_, _ = w.Write(data)
//	_ = w.Close() // durable after Close
package blobstore

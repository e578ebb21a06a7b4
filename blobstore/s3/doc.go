// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("gridding/run-42/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	r, err := blobstore.OpenReader(ctx, store, "randnum.dat")
//
// # Features
//
//   - Range reads for partial fetches
//   - Multipart uploads for large grids
//   - Automatic pagination for listing
//   - Configurable prefix to keep runs apart
package s3

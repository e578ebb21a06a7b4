package main

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Sookie3mo/ASC15-Gridding/blobstore"
	minioblob "github.com/Sookie3mo/ASC15-Gridding/blobstore/minio"
	s3blob "github.com/Sookie3mo/ASC15-Gridding/blobstore/s3"
	"github.com/Sookie3mo/ASC15-Gridding/engine"
)

// openStore resolves a -store value to a blob store.
func openStore(ctx context.Context, raw string) (blobstore.BlobStore, error) {
	if !strings.Contains(raw, "://") {
		return blobstore.NewLocalStore(raw), nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("store %q: %w", raw, err)
	}
	prefix := strings.TrimPrefix(u.Path, "/")

	switch u.Scheme {
	case "file":
		return blobstore.NewLocalStore(u.Path), nil
	case "s3":
		return s3blob.New(ctx, u.Host, s3blob.WithPrefix(prefix))
	case "minio", "minios":
		bucket, rest, _ := strings.Cut(prefix, "/")
		if bucket == "" {
			return nil, fmt.Errorf("store %q: missing bucket", raw)
		}
		return minioblob.New(u.Host, bucket,
			minioblob.WithPrefix(rest),
			minioblob.WithSecure(u.Scheme == "minios"),
		)
	default:
		return nil, fmt.Errorf("store %q: unsupported scheme %q", raw, u.Scheme)
	}
}

// parseSplit resolves a -split value for parts partitions. An empty value
// keeps the default. Explicit bounds must fit parts.
func parseSplit(s string, parts int) (engine.SplitPolicy, error) {
	switch s {
	case "":
		return nil, nil
	case "uniform":
		return engine.Uniform(), nil
	case "offload":
		return engine.OffloadSplit(parts), nil
	}

	fields := strings.Split(s, ",")
	bounds := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("split bound %q: %w", f, err)
		}
		bounds[i] = v
	}
	p := engine.Fractions(bounds...)
	if _, err := p.Split(parts, parts); err != nil {
		return nil, fmt.Errorf("-split %q: %w", s, err)
	}
	return p, nil
}

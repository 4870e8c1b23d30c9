// Package s3 provides the object storage client used to fetch the IIB
// index from an S3-compatible bucket.
package s3

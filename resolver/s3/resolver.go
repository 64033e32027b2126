package s3

import (
	"context"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/mwantia/layerfs/data"
	"github.com/mwantia/layerfs/resolver"
	"github.com/mwantia/layerfs/vpath"
)

const directoryContentType = "application/x-directory"

// S3Resolver serves mounted content from objects of an S3 bucket. Directories
// are common prefixes or zero-byte objects with a trailing slash.
type S3Resolver struct {
	client     *minio.Client
	bucketName string
	prefix     string
}

func NewS3Resolver(endpoint, bucketName, prefix, accessKey, secretKey string, useSsl bool) (*S3Resolver, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSsl,
	})
	if err != nil {
		return nil, err
	}

	return &S3Resolver{
		client:     client,
		bucketName: bucketName,
		prefix:     strings.Trim(prefix, "/"),
	}, nil
}

// objectKey maps a resolver path to an object key below the configured prefix.
func (sr *S3Resolver) objectKey(path string) string {
	key := strings.TrimPrefix(vpath.RemoveTrailingSeparator(vpath.Resolve("/", path)), "/")
	if sr.prefix == "" {
		return key
	}
	if key == "" {
		return sr.prefix
	}
	return sr.prefix + "/" + key
}

func dirPrefix(key string) string {
	if key == "" {
		return ""
	}
	return key + "/"
}

func isNotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}

func (sr *S3Resolver) List(ctx context.Context, path string) ([]string, error) {
	prefix := dirPrefix(sr.objectKey(path))

	var names []string
	found := prefix == ""
	for object := range sr.client.ListObjects(ctx, sr.bucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: false,
	}) {
		if object.Err != nil {
			return nil, object.Err
		}
		found = true

		name := strings.TrimSuffix(strings.TrimPrefix(object.Key, prefix), "/")
		if name == "" {
			continue // directory marker of the listed prefix itself
		}
		names = append(names, name)
	}

	if !found {
		return nil, data.NewPathError(data.ENOENT, "list", path)
	}
	return names, nil
}

func (sr *S3Resolver) Stat(ctx context.Context, path string) (*resolver.Stat, error) {
	key := sr.objectKey(path)
	if key == "" {
		return resolver.DirStat(), nil
	}

	info, err := sr.client.StatObject(ctx, sr.bucketName, key, minio.StatObjectOptions{})
	if err == nil {
		if info.ContentType == directoryContentType {
			return resolver.DirStat(), nil
		}
		return resolver.FileStat(info.Size), nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	// No object with that key, it is still a directory when anything lives below it
	for object := range sr.client.ListObjects(ctx, sr.bucketName, minio.ListObjectsOptions{
		Prefix:  dirPrefix(key),
		MaxKeys: 1,
	}) {
		if object.Err != nil {
			return nil, object.Err
		}
		return resolver.DirStat(), nil
	}

	return nil, data.NewPathError(data.ENOENT, "stat", path)
}

func (sr *S3Resolver) ReadAll(ctx context.Context, path string) ([]byte, error) {
	object, err := sr.client.GetObject(ctx, sr.bucketName, sr.objectKey(path), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer object.Close()

	content, err := io.ReadAll(object)
	if err != nil {
		if isNotFound(err) {
			return nil, data.NewPathError(data.ENOENT, "read", path)
		}
		return nil, err
	}
	return content, nil
}

package blob_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filekit/filekit/pkg/blob"
)

// fakeS3 is an in-memory S3Client backed by a map of key -> content.
type fakeS3 struct {
	objects map[string]string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string]string)}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Key] = string(data)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(data))}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if _, ok := f.objects[*in.Key]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for key := range f.objects {
		if strings.HasPrefix(key, aws.ToString(in.Prefix)) {
			out.Contents = append(out.Contents, types.Object{Key: aws.String(key)})
		}
	}
	return out, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) DeleteObjects(_ context.Context, in *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	for _, obj := range in.Delete.Objects {
		delete(f.objects, *obj.Key)
	}
	return &s3.DeleteObjectsOutput{}, nil
}

func newS3Storage(t *testing.T, client blob.S3Client) *blob.S3Storage {
	t.Helper()
	storage, err := blob.NewS3Storage(context.Background(), blob.S3Config{
		Bucket: "test-bucket",
		Region: "us-east-1",
	}, blob.WithS3Client(client))
	require.NoError(t, err)
	return storage
}

func TestNewS3Storage_Validation(t *testing.T) {
	t.Parallel()

	_, err := blob.NewS3Storage(context.Background(), blob.S3Config{Region: "us-east-1"})
	assert.ErrorIs(t, err, blob.ErrInvalidConfig)

	_, err = blob.NewS3Storage(context.Background(), blob.S3Config{Bucket: "b"})
	assert.ErrorIs(t, err, blob.ErrInvalidConfig)
}

func TestS3Storage_SaveAndOpen(t *testing.T) {
	t.Parallel()

	client := newFakeS3()
	storage := newS3Storage(t, client)
	ctx := context.Background()

	obj, err := storage.Save(ctx, strings.NewReader("payload"), "2025/03/07/a.bin")
	require.NoError(t, err)
	assert.Equal(t, "2025/03/07/a.bin", obj.Path)
	assert.Equal(t, int64(7), obj.Size)

	rc, err := storage.Open(ctx, obj.Path)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestS3Storage_OpenMissing(t *testing.T) {
	t.Parallel()

	storage := newS3Storage(t, newFakeS3())

	_, err := storage.Open(context.Background(), "missing.bin")
	assert.ErrorIs(t, err, blob.ErrObjectNotFound)
}

func TestS3Storage_Delete(t *testing.T) {
	t.Parallel()

	client := newFakeS3()
	storage := newS3Storage(t, client)
	ctx := context.Background()

	_, err := storage.Save(ctx, strings.NewReader("x"), "a.bin")
	require.NoError(t, err)

	require.NoError(t, storage.Delete(ctx, "a.bin"))
	assert.False(t, storage.Exists(ctx, "a.bin"))

	assert.ErrorIs(t, storage.Delete(ctx, "a.bin"), blob.ErrObjectNotFound)
}

func TestS3Storage_DeleteDir(t *testing.T) {
	t.Parallel()

	client := newFakeS3()
	storage := newS3Storage(t, client)
	ctx := context.Background()

	for _, key := range []string{"thumbnails/f1/a.jpg", "thumbnails/f1/b.jpg", "thumbnails/f2/c.jpg"} {
		_, err := storage.Save(ctx, strings.NewReader("x"), key)
		require.NoError(t, err)
	}

	require.NoError(t, storage.DeleteDir(ctx, "thumbnails/f1"))
	assert.False(t, storage.Exists(ctx, "thumbnails/f1/a.jpg"))
	assert.False(t, storage.Exists(ctx, "thumbnails/f1/b.jpg"))
	assert.True(t, storage.Exists(ctx, "thumbnails/f2/c.jpg"))

	assert.NoError(t, storage.DeleteDir(ctx, "thumbnails/f1"))
}

func TestS3Storage_RejectsTraversal(t *testing.T) {
	t.Parallel()

	storage := newS3Storage(t, newFakeS3())

	_, err := storage.Save(context.Background(), strings.NewReader("x"), "../escape")
	assert.ErrorIs(t, err, blob.ErrInvalidPath)
}

func TestS3Storage_URL(t *testing.T) {
	t.Parallel()

	storage, err := blob.NewS3Storage(context.Background(), blob.S3Config{
		Bucket:  "uploads",
		Region:  "eu-west-1",
		BaseURL: "https://cdn.example.com",
	}, blob.WithS3Client(newFakeS3()))
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/a/b.jpg", storage.URL("a/b.jpg"))
}

package media

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/studio-site/pkg/config"
)

func TestLocalStore_UploadAndRemove(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root, "http://localhost:8080/media/")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Upload(ctx, "projects/a.png", []byte("png"), "image/png"))
	data, err := os.ReadFile(filepath.Join(root, "projects", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	url := store.PublicURL("projects/a.png")
	assert.Equal(t, "http://localhost:8080/media/projects/a.png", url)

	key, ok := store.PathFromURL(url)
	require.True(t, ok)
	assert.Equal(t, "projects/a.png", key)

	_, ok = store.PathFromURL("https://elsewhere.example/media/projects/a.png")
	assert.False(t, ok)

	require.NoError(t, store.Remove(ctx, []string{"projects/a.png", "projects/never-existed.png"}))
	_, err = os.Stat(filepath.Join(root, "projects", "a.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStore_RejectsEscapingKeys(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/media")
	require.NoError(t, err)
	ctx := context.Background()

	assert.Error(t, store.Upload(ctx, "../outside.png", []byte("x"), "image/png"))
	assert.Error(t, store.Upload(ctx, "a/../../outside.png", []byte("x"), "image/png"))
	assert.Error(t, store.Remove(ctx, []string{".."}))
}

type fakeS3 struct {
	puts    []*s3.PutObjectInput
	deletes []*s3.DeleteObjectsInput
	failed  []types.Error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObjects(_ context.Context, in *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	f.deletes = append(f.deletes, in)
	return &s3.DeleteObjectsOutput{Errors: f.failed}, nil
}

func TestS3Store(t *testing.T) {
	client := &fakeS3{}
	store := newS3Store(client, "studio-media", "https://cdn.studio.example/")
	ctx := context.Background()

	require.NoError(t, store.Upload(ctx, "news/cover.webp", []byte("webp"), "image/webp"))
	require.Len(t, client.puts, 1)
	assert.Equal(t, "studio-media", aws.ToString(client.puts[0].Bucket))
	assert.Equal(t, "news/cover.webp", aws.ToString(client.puts[0].Key))
	assert.Equal(t, "image/webp", aws.ToString(client.puts[0].ContentType))

	url := store.PublicURL("news/cover.webp")
	assert.Equal(t, "https://cdn.studio.example/news/cover.webp", url)
	key, ok := store.PathFromURL(url)
	assert.True(t, ok)
	assert.Equal(t, "news/cover.webp", key)

	require.NoError(t, store.Remove(ctx, []string{"news/cover.webp", "team/a.jpg"}))
	require.Len(t, client.deletes, 1)
	assert.Len(t, client.deletes[0].Delete.Objects, 2)

	require.NoError(t, store.Remove(ctx, nil))
	assert.Len(t, client.deletes, 1)

	client.failed = []types.Error{{Key: aws.String("team/a.jpg"), Message: aws.String("AccessDenied")}}
	err := store.Remove(ctx, []string{"team/a.jpg"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "team/a.jpg: AccessDenied")
}

func TestNewFromConfig(t *testing.T) {
	store, err := NewFromConfig(context.Background(), &config.Config{MediaBackend: "local", MediaDir: t.TempDir(), MediaBaseURL: "/media"})
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, store)

	_, err = NewFromConfig(context.Background(), &config.Config{MediaBackend: "ftp"})
	assert.Error(t, err)

	_, err = NewFromConfig(context.Background(), &config.Config{MediaBackend: "s3"})
	assert.Error(t, err)
}

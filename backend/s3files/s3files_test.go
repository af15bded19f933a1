package s3files

import (
	"context"
	"errors"
	"io"
	"testing"

	"campusbite/backend"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	puts    []*s3.PutObjectInput
	bodies  [][]byte
	deletes []string
	err     error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, _ := io.ReadAll(in.Body)
	f.puts = append(f.puts, in)
	f.bodies = append(f.bodies, data)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deletes = append(f.deletes, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

var gif = []byte("GIF89a\x01\x00\x01\x00\x80\x00\x00\xff\xff\xff\x00\x00\x00!\xf9\x04\x01\x00\x00\x00\x00,\x00\x00\x00\x00\x01\x00\x01\x00\x00\x02\x02D\x01\x00;")

func TestUploadPutsObject(t *testing.T) {
	api := &fakeS3{}
	files := NewWithAPI(api, "food-images", "https://cdn.example.com/")

	f, err := files.Upload(context.Background(), backend.FileInput{Name: "avatar.gif", Data: gif})
	require.NoError(t, err)
	require.Len(t, api.puts, 1)
	assert.Equal(t, "food-images", aws.ToString(api.puts[0].Bucket))
	assert.Equal(t, f.ID, aws.ToString(api.puts[0].Key))
	assert.Equal(t, "image/gif", aws.ToString(api.puts[0].ContentType))
	assert.Equal(t, gif, api.bodies[0])
	assert.Equal(t, "https://cdn.example.com/"+f.ID, files.ViewURL(f.ID))

	require.NoError(t, files.Delete(context.Background(), f.ID))
	assert.Equal(t, []string{f.ID}, api.deletes)
}

func TestUploadRejectsBeforeNetwork(t *testing.T) {
	api := &fakeS3{}
	files := NewWithAPI(api, "food-images", "https://cdn.example.com")

	_, err := files.Upload(context.Background(), backend.FileInput{Name: "x.png", Data: []byte("plain text")})
	var upErr *backend.UploadError
	require.ErrorAs(t, err, &upErr)
	assert.Empty(t, api.puts)
}

func TestUploadWrapsS3Failure(t *testing.T) {
	files := NewWithAPI(&fakeS3{err: errors.New("access denied")}, "food-images", "https://cdn.example.com")
	_, err := files.Upload(context.Background(), backend.FileInput{Name: "a.gif", Data: gif})
	var upErr *backend.UploadError
	require.ErrorAs(t, err, &upErr)
	assert.Contains(t, err.Error(), "access denied")
}

package s3storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/dharsanguruparan/RecruitDesk/internal/apperr"
	"github.com/dharsanguruparan/RecruitDesk/internal/config"
)

// objectClient is the subset of *minio.Client the gateway relies on.
type objectClient interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
}

const resumesSegment = "resumes"

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9-]`)

// Storage stores resume files in a single bucket, namespaced per user.
type Storage struct {
	client objectClient
	bucket string
	region string
	ttl    time.Duration
	now    func() time.Time
}

// New creates a MinIO client from the Config.
func New(cfg *config.Config) (*Storage, error) {
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
		Region: cfg.S3Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}
	return newStorage(client, cfg.ResumeBucket, cfg.S3Region, cfg.SignedURLTTL), nil
}

func newStorage(client objectClient, bucket, region string, ttl time.Duration) *Storage {
	if ttl <= 0 || ttl > config.MaxSignedURLTTL {
		ttl = config.MaxSignedURLTTL
	}
	return &Storage{
		client: client,
		bucket: bucket,
		region: region,
		ttl:    ttl,
		now:    time.Now,
	}
}

// EnsureBucket makes sure the resume bucket exists before use.
func (s *Storage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return fmt.Errorf("make bucket %s: %w", s.bucket, err)
	}
	return nil
}

// UserPrefix is the namespace every object owned by userID lives under.
func UserPrefix(userID string) string {
	return userSegment(userID) + "/" + resumesSegment + "/"
}

// userSegment maps a user id to a path segment. Ids that are already safe are
// used as is. Others are sanitized and suffixed with "_" and a digest of the
// raw id; "_" never survives sanitizing, so distinct ids never share a
// segment.
func userSegment(userID string) string {
	clean := sanitize(userID)
	if clean == userID {
		return clean
	}
	sum := sha256.Sum256([]byte(userID))
	return clean + "_" + hex.EncodeToString(sum[:8])
}

// ObjectPath builds the storage path for a file uploaded at the given instant.
func ObjectPath(userID, fileName string, at time.Time) string {
	base, ext := splitName(path.Base(strings.ReplaceAll(fileName, `\`, "/")))
	return fmt.Sprintf("%s%d-%s.%s", UserPrefix(userID), at.UnixMilli(), sanitize(base), sanitize(ext))
}

// Upload writes the file under the user's namespace and returns its path. An
// object already present at the computed path is never overwritten; the check
// is a stat before the put, so two racing writers could still collide.
func (s *Storage) Upload(ctx context.Context, userID, fileName, contentType string, body io.Reader, size int64) (string, error) {
	objectPath := ObjectPath(userID, fileName, s.now())
	_, err := s.client.StatObject(ctx, s.bucket, objectPath, minio.StatObjectOptions{})
	switch {
	case err == nil:
		return "", apperr.New(apperr.CodeStorageWrite, "failed to upload resume: file already exists", nil)
	case !isNotFound(err):
		return "", apperr.New(apperr.CodeStorageWrite, "failed to upload resume", err)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	opts := minio.PutObjectOptions{ContentType: contentType}
	if _, err := s.client.PutObject(ctx, s.bucket, objectPath, body, size, opts); err != nil {
		return "", apperr.New(apperr.CodeStorageWrite, "failed to upload resume", err)
	}
	return objectPath, nil
}

// ResolveURL confirms the object exists by listing its parent folder, then
// returns a presigned GET URL.
func (s *Storage) ResolveURL(ctx context.Context, objectPath string) (string, error) {
	dir, name := path.Split(objectPath)
	listCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	found := false
	for obj := range s.client.ListObjects(listCtx, s.bucket, minio.ListObjectsOptions{Prefix: dir}) {
		if obj.Err != nil {
			return "", apperr.New(apperr.CodeStorageRead, "failed to get resume URL", obj.Err)
		}
		if path.Base(obj.Key) == name && strings.TrimSuffix(obj.Key, name) == dir {
			found = true
			break
		}
	}
	if !found {
		return "", apperr.NotFound("resume file not found in storage")
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, objectPath, s.ttl, url.Values{})
	if err != nil {
		return "", apperr.New(apperr.CodeStorageRead, "failed to get resume URL", err)
	}
	return u.String(), nil
}

// Delete removes the object. Deleting a missing object succeeds.
func (s *Storage) Delete(ctx context.Context, objectPath string) error {
	err := s.client.RemoveObject(ctx, s.bucket, objectPath, minio.RemoveObjectOptions{})
	if err != nil && !isNotFound(err) {
		return apperr.New(apperr.CodeStorageWrite, "failed to delete resume", err)
	}
	return nil
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.Code == "NotFound"
}

func sanitize(s string) string {
	return unsafeChars.ReplaceAllString(s, "-")
}

// splitName separates the last extension from name. A name without one is
// stored as a pdf, the only format accepted for upload.
func splitName(name string) (string, string) {
	idx := strings.LastIndex(name, ".")
	if idx <= 0 || idx == len(name)-1 {
		return strings.TrimSuffix(name, "."), "pdf"
	}
	return name[:idx], name[idx+1:]
}

// stickybans/utils/audit.go
package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"stickybans/models"
)

var (
	_ models.AuditSink = (*SlogAuditor)(nil)
	_ models.AuditSink = (*WebhookAuditor)(nil)
	_ models.AuditSink = (*S3Auditor)(nil)
	_ models.AuditSink = MultiAuditor(nil)
)

// AuditEntry is the JSON document delivered by the webhook and S3 sinks.
type AuditEntry struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func newAuditEntry(title, message string) AuditEntry {
	return AuditEntry{
		ID:        uuid.New().String(),
		Title:     title,
		Message:   message,
		Timestamp: GetSQLTime(),
	}
}

// SlogAuditor writes audit entries as structured log lines.
type SlogAuditor struct {
	Logger *slog.Logger
}

func (a *SlogAuditor) Log(ctx context.Context, title, message string) error {
	a.Logger.InfoContext(ctx, "Audit entry", "title", title, "message", message)
	return nil
}

// WebhookAuditor posts audit entries to an HTTP endpoint.
type WebhookAuditor struct {
	URL    string
	Client *http.Client
}

func NewWebhookAuditor(url string) *WebhookAuditor {
	return &WebhookAuditor{
		URL:    url,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (a *WebhookAuditor) Log(ctx context.Context, title, message string) error {
	body, err := json.Marshal(newAuditEntry(title, message))
	if err != nil {
		return fmt.Errorf("failed to encode audit entry: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build audit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.Client.Do(req)
	if err != nil {
		return fmt.Errorf("audit webhook request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("audit webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// S3Auditor archives each audit entry as its own object in an S3-compatible bucket.
type S3Auditor struct {
	Client     *minio.Client
	BucketName string
	Prefix     string
}

func NewS3Auditor(endpoint, accessKey, secretKey, bucket, region, prefix string, useSSL bool) (*S3Auditor, error) {
	// Strip scheme if present
	endpoint = strings.TrimPrefix(endpoint, "https://")
	endpoint = strings.TrimPrefix(endpoint, "http://")

	var creds *credentials.Credentials
	if accessKey == "" || secretKey == "" {
		creds = credentials.NewIAM("")
	} else {
		creds = credentials.NewStaticV4(accessKey, secretKey, "")
	}

	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  creds,
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	exists, err := minioClient.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", bucket)
	}

	return &S3Auditor{
		Client:     minioClient,
		BucketName: bucket,
		Prefix:     strings.Trim(prefix, "/"),
	}, nil
}

// ObjectKey is where an entry is stored: <prefix>/<yyyy-mm-dd>/<id>.json
func (a *S3Auditor) ObjectKey(entry AuditEntry) string {
	key := fmt.Sprintf("%s/%s.json", entry.Timestamp.Format("2006-01-02"), entry.ID)
	if a.Prefix == "" {
		return key
	}
	return a.Prefix + "/" + key
}

func (a *S3Auditor) Log(ctx context.Context, title, message string) error {
	entry := newAuditEntry(title, message)
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode audit entry: %w", err)
	}
	_, err = a.Client.PutObject(ctx, a.BucketName, a.ObjectKey(entry), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to store audit entry: %w", err)
	}
	return nil
}

// MultiAuditor delivers every entry to each sink and reports all failures.
type MultiAuditor []models.AuditSink

func (m MultiAuditor) Log(ctx context.Context, title, message string) error {
	var errs []error
	for _, sink := range m {
		if err := sink.Log(ctx, title, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Package backup uploads encrypted household snapshots to S3-compatible
// storage and restores them.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dukerupert/foyer/internal/model"
)

// ErrNotConfigured is returned when no bucket or credentials are set.
var ErrNotConfigured = errors.New("backup not configured: S3 credentials missing")

const keySuffix = ".json.enc"

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, input *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Source is the live household state being backed up. *engine.Engine
// satisfies it.
type Source interface {
	Snapshot() model.State
	Restore(ctx context.Context, st model.State) error
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	Prefix    string
}

func (c S3Config) enabled() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

// State represents the backup manager state.
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateDisabled State = "disabled"
	StateError    State = "error"
)

// Status holds the current backup manager status.
type Status struct {
	State      State      `json:"state"`
	LastBackup *time.Time `json:"last_backup,omitempty"`
	Error      string     `json:"error,omitempty"`
	InProgress bool       `json:"in_progress"`
}

// StatusCallback is called whenever the backup state changes.
type StatusCallback func(Status)

// Manager writes encrypted snapshots of a Source to object storage.
type Manager struct {
	mu       sync.RWMutex
	cfg      S3Config
	status   Status
	callback StatusCallback
	client   s3Client
	source   Source
	logger   *slog.Logger
	now      func() time.Time
}

func NewManager(cfg S3Config, src Source, logger *slog.Logger, callback StatusCallback) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "foyer/"
	}
	m := &Manager{
		cfg:      cfg,
		source:   src,
		callback: callback,
		logger:   logger.With("component", "backup"),
		now:      time.Now,
		status:   Status{State: StateDisabled},
	}
	if cfg.enabled() {
		m.client = newS3Client(cfg)
		m.status.State = StateIdle
	}
	return m
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Status returns the current backup status.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Manager) setStatus(s Status) {
	m.mu.Lock()
	m.status = s
	m.mu.Unlock()
	if m.callback != nil {
		m.callback(s)
	}
}

func (m *Manager) target() (s3Client, S3Config) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client, m.cfg
}

// RunNow encrypts the current snapshot with passphrase and uploads it. A
// fresh salt is generated per backup and stored in the object itself.
func (m *Manager) RunNow(ctx context.Context, passphrase string) (model.Backup, error) {
	client, cfg := m.target()
	if client == nil {
		return model.Backup{}, ErrNotConfigured
	}
	if passphrase == "" {
		return model.Backup{}, &model.ValidationError{Field: "passphrase", Message: "passphrase is required"}
	}

	m.mu.Lock()
	if m.status.InProgress {
		m.mu.Unlock()
		return model.Backup{}, fmt.Errorf("backup already in progress")
	}
	last := m.status.LastBackup
	m.status = Status{State: StateRunning, InProgress: true, LastBackup: last}
	running := m.status
	m.mu.Unlock()
	if m.callback != nil {
		m.callback(running)
	}

	created := m.now().UTC()
	rec := model.Backup{
		Key:       cfg.Prefix + "backup-" + created.Format("2006-01-02T150405Z") + keySuffix,
		Status:    model.BackupStatusUploading,
		CreatedAt: created,
	}

	fail := func(err error) (model.Backup, error) {
		rec.Status = model.BackupStatusFailed
		rec.ErrorMessage = err.Error()
		m.setStatus(Status{State: StateError, Error: err.Error(), LastBackup: last})
		m.logger.Error("backup failed", "key", rec.Key, "error", err)
		return rec, err
	}

	payload, err := json.Marshal(m.source.Snapshot())
	if err != nil {
		return fail(fmt.Errorf("marshal snapshot: %w", err))
	}
	salt, err := GenerateSalt()
	if err != nil {
		return fail(err)
	}
	enc, err := Encrypt(payload, passphrase, salt)
	if err != nil {
		return fail(fmt.Errorf("encrypt: %w", err))
	}

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(cfg.Bucket),
		Key:           aws.String(rec.Key),
		Body:          bytes.NewReader(enc),
		ContentLength: aws.Int64(int64(len(enc))),
		ContentType:   aws.String("application/octet-stream"),
	})
	if err != nil {
		return fail(fmt.Errorf("upload to s3: %w", err))
	}

	rec.Status = model.BackupStatusCompleted
	rec.SizeBytes = int64(len(enc))
	m.setStatus(Status{State: StateIdle, LastBackup: &created})
	m.logger.Info("backup uploaded", "key", rec.Key, "bytes", rec.SizeBytes)
	return rec, nil
}

// List returns the stored backups, newest first.
func (m *Manager) List(ctx context.Context) ([]model.Backup, error) {
	client, cfg := m.target()
	if client == nil {
		return nil, ErrNotConfigured
	}

	var out []model.Backup
	p := s3.NewListObjectsV2Paginator(client, &s3.ListObjectsV2Input{
		Bucket: aws.String(cfg.Bucket),
		Prefix: aws.String(cfg.Prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list backups: %w", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, keySuffix) {
				continue
			}
			out = append(out, model.Backup{
				Key:       key,
				SizeBytes: aws.ToInt64(obj.Size),
				Status:    model.BackupStatusCompleted,
				CreatedAt: aws.ToTime(obj.LastModified).UTC(),
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Key > out[j].Key
	})
	return out, nil
}

// Restore downloads key, decrypts it and replaces the live state. A wrong
// passphrase leaves the state untouched.
func (m *Manager) Restore(ctx context.Context, key, passphrase string) error {
	client, cfg := m.target()
	if client == nil {
		return ErrNotConfigured
	}
	if !strings.HasPrefix(key, cfg.Prefix) {
		return &model.NotFoundError{Kind: "backup", Key: key}
	}

	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("download from s3: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return fmt.Errorf("read backup: %w", err)
	}
	plain, err := Decrypt(data, passphrase)
	if err != nil {
		m.logger.Warn("backup decrypt failed", "key", key, "error", err)
		return &model.ValidationError{Field: "passphrase", Message: "wrong passphrase or damaged backup"}
	}

	var st model.State
	if err := json.Unmarshal(plain, &st); err != nil {
		return fmt.Errorf("decode backup: %w", err)
	}
	if err := m.source.Restore(ctx, st); err != nil {
		return fmt.Errorf("restore state: %w", err)
	}
	m.logger.Info("backup restored", "key", key)
	return nil
}

// Cleanup deletes backups older than the retention period and returns the
// keys removed. Individual delete failures are logged and skipped.
func (m *Manager) Cleanup(ctx context.Context, retentionDays int) ([]string, error) {
	client, cfg := m.target()
	if client == nil {
		return nil, nil
	}
	if retentionDays <= 0 {
		retentionDays = 30
	}

	backups, err := m.List(ctx)
	if err != nil {
		return nil, err
	}

	before := m.now().UTC().AddDate(0, 0, -retentionDays)
	var removed []string
	for _, b := range backups {
		if !b.CreatedAt.Before(before) {
			continue
		}
		if _, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(cfg.Bucket),
			Key:    aws.String(b.Key),
		}); err != nil {
			m.logger.Warn("delete old backup", "key", b.Key, "error", err)
			continue
		}
		removed = append(removed, b.Key)
	}
	return removed, nil
}

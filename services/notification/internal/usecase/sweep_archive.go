package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"task-notify/services/notification/internal/entity"
)

// SweepArchiver stores finished sweep reports somewhere durable.
type SweepArchiver interface {
	Archive(ctx context.Context, report *entity.SweepReport) (string, error)
}

// Uploader is satisfied by pkg/s3.Client.
type Uploader interface {
	UploadFile(key string, body io.Reader, contentType string) (string, error)
}

type s3SweepArchiver struct {
	uploader Uploader
	prefix   string
}

func NewS3SweepArchiver(uploader Uploader) SweepArchiver {
	return &s3SweepArchiver{uploader: uploader, prefix: "reminder-sweeps"}
}

func (a *s3SweepArchiver) Archive(ctx context.Context, report *entity.SweepReport) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode sweep report: %w", err)
	}

	key := fmt.Sprintf("%s/%s/%d.json", a.prefix, report.Date, report.StartedAt.Unix())
	url, err := a.uploader.UploadFile(key, bytes.NewReader(body), "application/json")
	if err != nil {
		return "", fmt.Errorf("upload sweep report %s: %w", key, err)
	}
	return url, nil
}

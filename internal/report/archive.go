package report

import (
	"bytes"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"cogsync/pkg/aws/s3"
)

const (
	archiveLoggerName = "report-archive"

	reportFolder     = "reports"
	dateFolderFormat = "2006-01-02"
	fileTimeFormat   = "150405.000"
)

type archiveDocument struct {
	Summary    summaryLine     `json:"summary"`
	Plugins    []pluginLine    `json:"plugins"`
	Collisions []collisionLine `json:"collisions"`
	Attempts   []attemptLine   `json:"attempts"`
}

// Archiver uploads published reports to an S3 bucket.
type Archiver struct {
	logger   *zap.Logger
	bucket   string
	s3Client s3.ClientIFace
}

func NewArchiver(logger *zap.Logger, bucket string) *Archiver {
	return &Archiver{
		logger:   logger.Named(archiveLoggerName),
		bucket:   bucket,
		s3Client: s3.New(),
	}
}

// Archive stores the report as reports/<date>/<time>.json and returns the key.
func (a *Archiver) Archive(r *Report) (string, error) {
	if err := a.s3Client.Connect(); err != nil {
		return "", err
	}

	body, err := json.Marshal(newArchiveDocument(r))
	if err != nil {
		return "", err
	}

	key := ArchiveKey(r)
	if err := a.s3Client.Put(bytes.NewReader(body), a.bucket, key); err != nil {
		return "", err
	}

	a.logger.Info("report archived", zap.String("bucket", a.bucket), zap.String("key", key))
	return key, nil
}

func ArchiveKey(r *Report) string {
	started := r.StartedAt.UTC()
	return strings.Join([]string{
		reportFolder,
		started.Format(dateFolderFormat),
		started.Format(fileTimeFormat) + ".json",
	}, s3.Delimiter)
}

func newArchiveDocument(r *Report) archiveDocument {
	doc := archiveDocument{
		Summary:    newSummaryLine(r),
		Plugins:    make([]pluginLine, 0, len(r.Plugins)),
		Collisions: make([]collisionLine, 0, len(r.Collisions)),
		Attempts:   make([]attemptLine, 0, len(r.Attempts)),
	}
	for _, p := range r.Plugins {
		doc.Plugins = append(doc.Plugins, newPluginLine(p))
	}
	for _, c := range r.Collisions {
		doc.Collisions = append(doc.Collisions, newCollisionLine(c))
	}
	for _, at := range r.Attempts {
		doc.Attempts = append(doc.Attempts, newAttemptLine(at))
	}
	return doc
}

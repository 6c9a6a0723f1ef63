// Package internal implements the document loader: it watches a drop
// directory, extracts text from incoming files, and submits the text
// to the server's ingestion endpoint. Processed files are moved to the
// archive directory, failed ones to the bad directory.
package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"rag/config"
	"rag/types"
)

type Loader struct {
	cfg    config.LoaderConfig
	client *http.Client
	logger *slog.Logger

	mu         sync.Mutex
	firstSeen  map[string]time.Time
	processing map[string]bool
}

func NewLoader(cfg config.LoaderConfig) *Loader {
	createDirectories(cfg.SourceDir, cfg.ArchiveDir, cfg.BadDir)
	return &Loader{
		cfg:        cfg,
		client:     &http.Client{Timeout: 2 * time.Minute},
		logger:     slog.Default(),
		firstSeen:  make(map[string]time.Time),
		processing: make(map[string]bool),
	}
}

// Watch polls the source directory and sends files to fileChan once
// they have not changed for the settle period. Files inside a
// first-level subdirectory get that subdirectory as their category.
func (l *Loader) Watch(ctx context.Context, fileChan chan<- string) {
	l.logger.Info("start monitoring folder", "dir", l.cfg.SourceDir)

	ticker := time.NewTicker(l.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("file watcher stopped")
			return
		case <-ticker.C:
			l.scan(ctx, fileChan)
		}
	}
}

func (l *Loader) scan(ctx context.Context, fileChan chan<- string) {
	current := make(map[string]bool)

	filepath.WalkDir(l.cfg.SourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		current[path] = true

		l.mu.Lock()
		if l.processing[path] {
			l.mu.Unlock()
			return nil
		}
		seen, ok := l.firstSeen[path]
		if !ok {
			l.firstSeen[path] = time.Now()
			l.mu.Unlock()
			l.logger.Info("new file detected", "file", path)
			return nil
		}
		l.mu.Unlock()

		if time.Since(seen) < l.cfg.Settle {
			return nil
		}

		l.mu.Lock()
		l.processing[path] = true
		l.mu.Unlock()

		select {
		case fileChan <- path:
		case <-ctx.Done():
			return filepath.SkipAll
		}
		return nil
	})

	// Forget files that disappeared from the directory.
	l.mu.Lock()
	for path := range l.firstSeen {
		if !current[path] {
			delete(l.firstSeen, path)
			delete(l.processing, path)
		}
	}
	l.mu.Unlock()
}

// Process extracts text from each incoming file and submits it to the
// ingestion endpoint.
func (l *Loader) Process(ctx context.Context, fileChan <-chan string) {
	for path := range fileChan {
		if err := l.processFile(ctx, path); err != nil {
			l.logger.Error("file processing failed", "file", path, "error", err)
			l.moveTo(path, l.cfg.BadDir)
			continue
		}
		l.moveTo(path, l.cfg.ArchiveDir)
	}
}

func (l *Loader) processFile(ctx context.Context, path string) error {
	text, err := l.extract(ctx, path)
	if err != nil {
		return err
	}
	params := types.IngestParams{
		Text:     text,
		Category: l.categoryFor(path),
		Title:    generateTitle(path),
	}
	return l.submit(ctx, params)
}

func (l *Loader) extract(ctx context.Context, path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return l.extractPDF(ctx, path)
	case ".txt", ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
}

func (l *Loader) extractPDF(ctx context.Context, path string) (string, error) {
	if err := validatePDF(path); err != nil {
		return "", err
	}
	if l.cfg.CropTop > 0 || l.cfg.CropBottom > 0 {
		cropped := filepath.Join(os.TempDir(), "crop_"+filepath.Base(path))
		if err := cropHeaderFooter(path, cropped, l.cfg.CropTop, l.cfg.CropBottom); err != nil {
			return "", err
		}
		defer os.Remove(cropped)
		path = cropped
	}
	return l.convert(ctx, path)
}

type converterResponse struct {
	Document struct {
		MdContent string `json:"md_content"`
	} `json:"document"`
}

// convert sends the PDF to the markdown-converter service.
func (l *Loader) convert(ctx context.Context, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("files", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", err
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.cfg.ConverterURL, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := l.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("converter status %d", resp.StatusCode)
	}
	var parsed converterResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if parsed.Document.MdContent == "" {
		return "", fmt.Errorf("converter returned empty document")
	}
	return parsed.Document.MdContent, nil
}

func (l *Loader) submit(ctx context.Context, params types.IngestParams) error {
	body, err := json.Marshal(params)
	if err != nil {
		return err
	}
	url := l.cfg.ServerURL + "/api/v1/documents"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ingestion status %d: %s", resp.StatusCode, detail)
	}

	var result types.IngestResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return err
	}
	l.logger.Info("document submitted", "document_id", result.DocumentID, "chunks", result.Chunks, "category", params.Category)
	return nil
}

func (l *Loader) categoryFor(path string) string {
	rel, err := filepath.Rel(l.cfg.SourceDir, path)
	if err != nil {
		return "general"
	}
	dir := filepath.Dir(rel)
	if dir == "." {
		return "general"
	}
	parts := strings.Split(dir, string(filepath.Separator))
	return parts[0]
}

func (l *Loader) moveTo(path, dir string) {
	dest := filepath.Join(dir, filepath.Base(path))
	if err := os.Rename(path, dest); err != nil {
		l.logger.Error("failed to move file", "file", path, "dest", dest, "error", err)
	}
}

func generateTitle(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return strings.ReplaceAll(name, "_", " ")
}

func createDirectories(dirs ...string) {
	for _, dir := range dirs {
		os.MkdirAll(dir, 0o755)
	}
}

package export

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"americano-app/internal/model"

	"golang.org/x/sync/errgroup"
)

type Published struct {
	At    time.Time      `json:"publishedAt"`
	Files []UploadResult `json:"files"`
}

// Publisher uploads the CSV summary and the JSON dump side by side under a
// timestamped prefix.
type Publisher struct {
	uploader Uploader
	prefix   string
}

func NewPublisher(u Uploader, prefix string) *Publisher {
	if prefix == "" {
		prefix = "exports"
	}
	return &Publisher{uploader: u, prefix: prefix}
}

func (p *Publisher) Publish(ctx context.Context, t model.Tournament, now time.Time) (Published, error) {
	var csvBuf, jsonBuf bytes.Buffer
	if err := WriteStandingsCSV(&csvBuf, &t); err != nil {
		return Published{}, err
	}
	if err := WriteSnapshotJSON(&jsonBuf, &t); err != nil {
		return Published{}, err
	}

	dir := path.Join(p.prefix, now.UTC().Format("20060102T150405Z"))
	files := []struct {
		name        string
		contentType string
		data        []byte
	}{
		{StandingsFileName, CSVContentType, csvBuf.Bytes()},
		{SnapshotFileName, JSONContentType, jsonBuf.Bytes()},
	}

	results := make([]UploadResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			res, err := p.uploader.Upload(gctx, path.Join(dir, f.name), f.contentType, bytes.NewReader(f.data))
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Published{}, fmt.Errorf("publish exports: %w", err)
	}
	return Published{At: now.UTC(), Files: results}, nil
}

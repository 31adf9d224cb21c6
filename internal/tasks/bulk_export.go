package tasks

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/lyrx/internal/formatter"
	"github.com/desertthunder/lyrx/internal/models"
)

const (
	DefaultWorkers   = 4
	MaxWorkers       = 10
	DefaultRateLimit = 50.0
	ManifestFile     = "export_manifest.json"
)

// SongSource is the read side of the catalog an export pulls from.
type SongSource interface {
	ListSongs(ctx context.Context) ([]models.SongSummary, error)
	GetSong(ctx context.Context, id int64) (*models.Song, error)
}

// BulkExportOpts contains configuration for bulk song exports.
type BulkExportOpts struct {
	Format     formatter.Format // Export format
	OutputDir  string           // Base output directory (default: lyrx_export_{epoch})
	NumWorkers int              // Concurrent writers (default: 4, max: 10)
	RateLimit  float64          // Catalog reads per second (default: 50)
}

// SongExportResult is the outcome of exporting one song.
type SongExportResult struct {
	SongID  int64  `json:"song_id"`
	Title   string `json:"title"`
	File    string `json:"file,omitempty"`
	Success bool   `json:"success"`
	Message string `json:"error,omitempty"`
	Error   error  `json:"-"`
}

// BulkExportResult summarizes a bulk export. It is also the manifest's content.
type BulkExportResult struct {
	Format            formatter.Format   `json:"format"`
	TotalSongs        int                `json:"total_songs"`
	SuccessfulExports int                `json:"successful_exports"`
	FailedExports     int                `json:"failed_exports"`
	OutputDirectory   string             `json:"output_directory"`
	ManifestPath      string             `json:"-"`
	ExportedAt        time.Time          `json:"exported_at"`
	Results           []SongExportResult `json:"results"`
}

type exportJob struct {
	step int
	song *models.Song
}

// Exporter writes catalog songs to disk.
type Exporter struct {
	source SongSource
	logger *log.Logger
}

// NewExporter creates an Exporter reading from source. A nil logger discards output.
func NewExporter(source SongSource, logger *log.Logger) *Exporter {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Exporter{source: source, logger: logger.WithPrefix("export")}
}

// BulkExport exports the songs with the given ids, or every song when ids is empty, concurrently with rate limiting and progress tracking.
//
// Songs that cannot be read or written are recorded as failures; the rest still export.
// Results are ordered by completion. The manifest is written even when ctx is cancelled part way.
func (e *Exporter) BulkExport(ctx context.Context, prog chan<- ProgressUpdate, ids []int64, opts BulkExportOpts) (*BulkExportResult, error) {
	if opts.Format == "" {
		opts.Format = formatter.FormatMarkdown
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("lyrx_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = DefaultWorkers
	}
	if opts.NumWorkers > MaxWorkers {
		opts.NumWorkers = MaxWorkers
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = DefaultRateLimit
	}

	if len(ids) == 0 {
		songs, err := e.source.ListSongs(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list songs: %w", err)
		}
		for _, s := range songs {
			ids = append(ids, s.ID)
		}
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	total := len(ids)
	result := &BulkExportResult{
		Format:          opts.Format,
		TotalSongs:      total,
		OutputDirectory: opts.OutputDir,
		ExportedAt:      time.Now().UTC(),
		Results:         make([]SongExportResult, 0, total),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan exportJob, total)
	results := make(chan SongExportResult, total)

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		sendProgress(prog, fetchingSongsUpdate(total))
		for i, id := range ids {
			if err := limiter.Wait(ctx); err != nil {
				return
			}

			song, err := e.source.GetSong(ctx, id)
			if err != nil {
				results <- SongExportResult{
					SongID: id,
					Title:  fmt.Sprintf("Unknown (%d)", id),
					Error:  fmt.Errorf("failed to read song: %w", err),
				}
				continue
			}

			sendProgress(prog, exportingSongUpdate(i+1, total, song.Title))
			jobs <- exportJob{step: i + 1, song: song}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		if res.Error != nil {
			res.Message = res.Error.Error()
			result.FailedExports++
			e.logger.Warn("song export failed", "id", res.SongID, "err", res.Error)
			sendProgress(prog, exportFailedUpdate(completed, total, res.Title, res.Error))
		} else {
			result.SuccessfulExports++
			sendProgress(prog, exportCompletedUpdate(completed, total, res.Title, res.File))
		}
		result.Results = append(result.Results, res)
	}

	manifestPath := filepath.Join(opts.OutputDir, ManifestFile)
	sendProgress(prog, manifestUpdate(manifestPath))
	if err := writeManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("export interrupted after %d of %d songs: %w", completed, total, err)
	}
	return result, nil
}

// exportWorker is a worker goroutine that writes songs from the jobs channel.
func (e *Exporter) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan exportJob,
	results chan<- SongExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		if ctx.Err() != nil {
			return
		}
		results <- exportSingleSong(job.song, opts)
	}
}

// exportSingleSong writes one song to {OutputDir}/{id}-{slug}{ext}.
func exportSingleSong(song *models.Song, opts BulkExportOpts) SongExportResult {
	result := SongExportResult{SongID: song.ID, Title: song.Title}

	path := filepath.Join(opts.OutputDir, formatter.DefaultExportPath(song, opts.Format))
	written, err := formatter.ExportSong(song, opts.Format, path, nil)
	if err != nil {
		result.Error = fmt.Errorf("%s export failed: %w", opts.Format, err)
		return result
	}

	result.File = written
	result.Success = true
	return result
}

func writeManifest(result *BulkExportResult, path string) error {
	data, err := formatter.MarshalJSON(result, true)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

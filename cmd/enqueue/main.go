package main

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"statement-ingest/internal/models"
	"statement-ingest/internal/queue/redisq"
	"statement-ingest/pkg/config"
	"statement-ingest/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// enqueue publishes pre-classified batch files (JSON, one batch per file) to
// the consumer queue. Batches carry no job id, so they are stored under the
// system tenant. Files already published with the same content are skipped.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	batchDir := filepath.Join("cmd", "enqueue", "batches")
	if len(os.Args) > 1 {
		batchDir = os.Args[1]
	}
	cacheFile := filepath.Join(batchDir, ".enqueue_cache.json")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}

	q := redisq.New(client, redisq.Options{Name: cfg.Queue.Name}, appLogger)
	defer q.Close()

	published, err := enqueueBatches(ctx, batchDir, cacheFile, q, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to enqueue batches", zap.Error(err))
	}

	appLogger.Info("Enqueue completed", zap.Int("published", published), zap.String("queue", cfg.Queue.Name))
}

type publisher interface {
	Publish(ctx context.Context, batch *models.ClassifiedBatch) error
}

// PublishedFile records a batch file that was already sent.
type PublishedFile struct {
	FilePath    string    `json:"file_path"`
	FileHash    string    `json:"file_hash"`
	PublishedAt time.Time `json:"published_at"`
}

type CacheData struct {
	PublishedFiles map[string]PublishedFile `json:"published_files"`
}

func loadCache(cacheFile string) (*CacheData, error) {
	cache := &CacheData{
		PublishedFiles: make(map[string]PublishedFile),
	}

	data, err := os.ReadFile(cacheFile)
	if os.IsNotExist(err) {
		return cache, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}
	if len(data) == 0 {
		return cache, nil
	}

	if err := json.Unmarshal(data, cache); err != nil {
		return nil, fmt.Errorf("failed to parse cache file: %w", err)
	}
	if cache.PublishedFiles == nil {
		cache.PublishedFiles = make(map[string]PublishedFile)
	}
	return cache, nil
}

func saveCache(cacheFile string, cache *CacheData) error {
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}

	if err := os.WriteFile(cacheFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return nil
}

func calculateFileHash(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", fmt.Errorf("failed to calculate hash: %w", err)
	}

	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}

func readBatch(path string) (*models.ClassifiedBatch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var batch models.ClassifiedBatch
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("invalid batch JSON: %w", err)
	}
	if batch.Institution == "" {
		return nil, fmt.Errorf("batch has no institution")
	}
	batch.JobID = ""
	batch.ItemCount = len(batch.Items)
	return &batch, nil
}

func enqueueBatches(ctx context.Context, batchDir, cacheFile string, q publisher, logger *zap.Logger) (int, error) {
	files, err := filepath.Glob(filepath.Join(batchDir, "*.json"))
	if err != nil {
		return 0, fmt.Errorf("failed to list batch files: %w", err)
	}
	sort.Strings(files)

	cache, err := loadCache(cacheFile)
	if err != nil {
		logger.Warn("Failed to load cache, will publish all files", zap.Error(err))
		cache = &CacheData{PublishedFiles: make(map[string]PublishedFile)}
	}

	published := 0
	for _, path := range files {
		if path == cacheFile {
			continue
		}

		fileHash, err := calculateFileHash(path)
		if err != nil {
			logger.Warn("Failed to calculate file hash, will publish anyway", zap.String("path", path), zap.Error(err))
		}
		if cached, exists := cache.PublishedFiles[path]; exists && fileHash != "" && cached.FileHash == fileHash {
			logger.Info("Batch file already published, skipping",
				zap.String("path", path),
				zap.Time("published_at", cached.PublishedAt),
			)
			continue
		}

		batch, err := readBatch(path)
		if err != nil {
			logger.Error("Skipping unreadable batch file", zap.String("path", path), zap.Error(err))
			continue
		}

		if err := q.Publish(ctx, batch); err != nil {
			return published, fmt.Errorf("publish %s: %w", path, err)
		}
		published++
		logger.Info("Published batch",
			zap.String("path", path),
			zap.String("institution", batch.Institution),
			zap.Int("items", batch.ItemCount),
		)

		cache.PublishedFiles[path] = PublishedFile{
			FilePath:    path,
			FileHash:    fileHash,
			PublishedAt: time.Now(),
		}
		if err := saveCache(cacheFile, cache); err != nil {
			logger.Warn("Failed to save cache", zap.Error(err))
		}
	}

	return published, nil
}

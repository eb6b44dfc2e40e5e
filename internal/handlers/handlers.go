package handlers

import (
	"time"

	"product-media/internal/database"
	"product-media/internal/memory"
	"product-media/internal/pipeline"
	"product-media/internal/startup"
	"product-media/internal/workers"
)

type Handlers struct {
	db            *database.Database
	pipe          *pipeline.Pipeline
	mem           *memory.Monitor
	uploadDir     string
	maxUploadSize int64
	uploadWorkers int
	startTime     time.Time
}

func New(db *database.Database, pipe *pipeline.Pipeline, mem *memory.Monitor, config *startup.Config) *Handlers {
	return &Handlers{
		db:            db,
		pipe:          pipe,
		mem:           mem,
		uploadDir:     config.UploadDir,
		maxUploadSize: config.MaxUploadMB * 1024 * 1024,
		uploadWorkers: workers.ForMixed(config.UploadWorkerCap),
		startTime:     time.Now(),
	}
}

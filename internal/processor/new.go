package processor

import (
	"github.com/nguyentantai21042004/clipnorm/internal/codec"
	"github.com/nguyentantai21042004/clipnorm/internal/config"
	"github.com/nguyentantai21042004/clipnorm/internal/logger"
	"github.com/nguyentantai21042004/clipnorm/internal/media"
)

type implProcessor struct {
	profile   media.Profile
	outputDir string
	codec     codec.Service
	params    codec.EncodeParams
	logger    logger.Logger
}

// New creates a new Processor instance writing into cfg.Paths.Output.
func New(cfg *config.Config, svc codec.Service, log logger.Logger) Processor {
	return &implProcessor{
		profile:   cfg.Profile,
		outputDir: cfg.Paths.Output,
		codec:     svc,
		params:    codec.DefaultEncodeParams(),
		logger:    log,
	}
}

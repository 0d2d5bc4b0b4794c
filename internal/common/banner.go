package common

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/banner"
)

// PrintBanner displays the application banner and the resolved pipeline settings
func PrintBanner(config *Config, logger arbor.ILogger) {
	banner.Print("docqa", GetVersion())

	logger.Debug().
		Str("generation_provider", string(config.Generation.Provider)).
		Str("embedding_model", config.Embedding.Model).
		Int("chunk_size", config.Pipeline.ChunkSize).
		Int("chunk_overlap", config.Pipeline.ChunkOverlap).
		Int("top_k", config.Pipeline.TopK).
		Str("badger_path", config.Storage.Badger.Path).
		Msg("Resolved configuration")
}

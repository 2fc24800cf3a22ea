package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rigveda-rag/internal/config"
	"rigveda-rag/internal/corpus"
	"rigveda-rag/internal/database"
	"rigveda-rag/internal/embedding"
	"rigveda-rag/internal/logging"
	"rigveda-rag/internal/models"
	"rigveda-rag/internal/processor"
)

// positionStride separates the position ranges of the mandalas so one
// mandala can be re-indexed without renumbering the others.
const positionStride = 100000

var (
	configPath    string
	verbose       bool
	pgConnString  string
	pdfPath       string
	pdfMandala    int
	embed         bool
	maxConcurrent int

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "indexer",
	Short: "Load Rigveda verses into Postgres with optional embeddings",
	Long: `indexer reads the verse corpus from the JSON mandala partitions (or one
mandala from a PDF translation), embeds each verse with Ollama and stores
the verses in a pgvector table used for similarity search.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if pgConnString != "" {
			cfg.Database.URL = pgConnString
		}
		if cfg.Database.URL == "" {
			return fmt.Errorf("database URL is required (--pg, database.url or RIGVEDA_DATABASE_URL)")
		}
		logger, err = logging.New(verbose || cfg.Logging.Verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runIndex,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the number of stored verses per mandala",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, err := database.NewDB(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer db.Close()
		return printStoredCounts(ctx, db)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&pgConnString, "pg", "", "PostgreSQL connection string (overrides config)")

	rootCmd.Flags().StringVar(&pdfPath, "pdf", "", "index one mandala from a PDF translation instead of the JSON partitions")
	rootCmd.Flags().IntVar(&pdfMandala, "mandala", 0, "mandala contained in --pdf")
	rootCmd.Flags().BoolVar(&embed, "embed", true, "create embeddings for the verses")
	rootCmd.Flags().IntVar(&maxConcurrent, "max-concurrent", max(runtime.NumCPU()/2, 1), "maximum concurrent embedding requests")

	rootCmd.AddCommand(statsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	startTime := time.Now()

	db, err := database.NewDB(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	logger.Info("database initialized")

	verses, err := readVerses(ctx)
	if err != nil {
		return err
	}
	logger.Info("verses loaded", zap.Int("verses", len(verses)), zap.Duration("elapsed", time.Since(startTime)))

	embeddingStart := time.Now()
	embedded, err := embedVerses(ctx, verses)
	if err != nil {
		return err
	}
	assignPositions(embedded)

	storeStart := time.Now()
	stored, err := db.StoreVerses(ctx, embedded)
	if err != nil {
		return fmt.Errorf("stored %d of %d verses: %w", stored, len(embedded), err)
	}

	logger.Info("indexing complete",
		zap.Int("stored", stored),
		zap.Duration("loading", embeddingStart.Sub(startTime)),
		zap.Duration("embedding", storeStart.Sub(embeddingStart)),
		zap.Duration("storage", time.Since(storeStart)),
		zap.Duration("total", time.Since(startTime)),
	)

	printVerseStatistics(verses)
	return printStoredCounts(ctx, db)
}

func readVerses(ctx context.Context) ([]models.Verse, error) {
	if pdfPath != "" {
		if pdfMandala < 1 || pdfMandala > corpus.MandalaCount {
			return nil, fmt.Errorf("--mandala must be between 1 and %d with --pdf", corpus.MandalaCount)
		}
		if _, err := os.Stat(pdfPath); err != nil {
			return nil, fmt.Errorf("PDF file not readable: %w", err)
		}
		logger.Info("extracting hymns from PDF", zap.String("path", pdfPath), zap.Int("mandala", pdfMandala))
		return processor.NewPDFProcessor().ProcessPDF(ctx, pdfPath, pdfMandala)
	}

	var source corpus.Source
	if cfg.Data.Dir != "" {
		source = corpus.NewFileSource(cfg.Data.Dir)
	} else {
		source = corpus.NewHTTPSource(cfg.Data.BaseURL, http.DefaultClient)
	}
	return corpus.NewStore(source, logger).LoadCorpus(ctx)
}

func embedVerses(ctx context.Context, verses []models.Verse) ([]embedding.EmbeddedVerse, error) {
	if !embed {
		out := make([]embedding.EmbeddedVerse, len(verses))
		for i, v := range verses {
			out[i] = embedding.EmbeddedVerse{Position: i, Verse: v}
		}
		return out, nil
	}

	embedder, err := embedding.NewOllamaEmbedder(cfg.LLM.Host, cfg.LLM.EmbeddingModel)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	embedder.MaxConcurrent = maxConcurrent

	logger.Info("creating embeddings",
		zap.String("model", cfg.LLM.EmbeddingModel), zap.Int("max_concurrent", maxConcurrent))
	embeddingStart := time.Now()

	progressFunc := func(processed, total int) {
		if processed%100 != 0 && processed != total {
			return
		}
		elapsedTime := time.Since(embeddingStart)
		estimatedTotal := elapsedTime * time.Duration(total) / time.Duration(processed)
		logger.Info("embedding progress",
			zap.Int("processed", processed),
			zap.Int("total", total),
			zap.Duration("remaining", (estimatedTotal-elapsedTime).Round(time.Second)),
		)
	}

	embedded, err := embedder.EmbedVerses(ctx, verses, progressFunc)
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings: %w", err)
	}
	return embedded, nil
}

// assignPositions numbers verses within their mandala, offset by
// positionStride per mandala.
func assignPositions(verses []embedding.EmbeddedVerse) {
	next := make(map[int]int)
	for i := range verses {
		m := verses[i].Verse.Mandala
		verses[i].Position = m*positionStride + next[m]
		next[m]++
	}
}

func printVerseStatistics(verses []models.Verse) {
	if len(verses) == 0 {
		fmt.Println("No verses indexed")
		return
	}

	var totalLength int
	perMandala := make(map[int]int)
	suktas := make(map[[2]int]bool)
	for _, v := range verses {
		totalLength += len(v.Text)
		perMandala[v.Mandala]++
		suktas[[2]int{v.Mandala, v.Sukta}] = true
	}

	fmt.Println("Verse statistics:")
	fmt.Printf("  Total verses: %d\n", len(verses))
	fmt.Printf("  Distinct suktas: %d\n", len(suktas))
	fmt.Printf("  Average verse length: %.1f characters\n", float64(totalLength)/float64(len(verses)))
	fmt.Println("  Mandala breakdown:")
	for _, m := range sortedKeys(perMandala) {
		fmt.Printf("    Mandala %d: %d verses\n", m, perMandala[m])
	}
}

func printStoredCounts(ctx context.Context, db *database.DB) error {
	counts, err := db.MandalaCounts(ctx)
	if err != nil {
		return err
	}

	total := 0
	fmt.Println("Stored verses:")
	for _, m := range sortedKeys(counts) {
		fmt.Printf("  Mandala %d: %d\n", m, counts[m])
		total += counts[m]
	}
	fmt.Printf("  Total: %d\n", total)
	return nil
}

func sortedKeys(m map[int]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

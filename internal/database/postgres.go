package database

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"rigveda-rag/internal/embedding"
	"rigveda-rag/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EmbeddingDimensions is the vector size of the verses.embedding column
// (nomic-embed-text).
const EmbeddingDimensions = 768

// DB represents the database connection
type DB struct {
	Pool *pgxpool.Pool
}

// NewDB creates a new database connection
func NewDB(ctx context.Context, connStr string) (*DB, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Initialize sets up the verses table and indices
func (db *DB) Initialize(ctx context.Context) error {
	_, err := db.Pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`)
	if err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	_, err = db.Pool.Exec(ctx, fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS verses (
            id SERIAL PRIMARY KEY,
            position INTEGER NOT NULL UNIQUE,
            veda TEXT NOT NULL,
            mandala INTEGER NOT NULL,
            sukta INTEGER NOT NULL,
            text TEXT NOT NULL,
            embedding vector(%d)
        )
    `, EmbeddingDimensions))
	if err != nil {
		return fmt.Errorf("failed to create verses table: %w", err)
	}

	_, err = db.Pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS verses_mandala_sukta_idx ON verses (mandala, sukta, position);
	`)
	if err != nil {
		return fmt.Errorf("failed to create verse indices: %w", err)
	}

	_, err = db.Pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS verses_embedding_idx ON verses
		USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)
	`)
	if err != nil {
		return fmt.Errorf("failed to create vector index: %w", err)
	}

	return nil
}

// StoreVerse upserts a verse at a corpus position. A nil embedding leaves
// any stored embedding in place.
func (db *DB) StoreVerse(ctx context.Context, position int, verse models.Verse, embedding []float64) error {
	_, err := db.Pool.Exec(ctx, upsertVerseSQL, position, verse.Source, verse.Mandala, verse.Sukta, verse.Text, vectorParam(embedding))
	return err
}

const upsertVerseSQL = `
        INSERT INTO verses (position, veda, mandala, sukta, text, embedding)
        VALUES ($1, $2, $3, $4, $5, $6::vector)
        ON CONFLICT (position) DO UPDATE SET
            veda = EXCLUDED.veda,
            mandala = EXCLUDED.mandala,
            sukta = EXCLUDED.sukta,
            text = EXCLUDED.text,
            embedding = COALESCE(EXCLUDED.embedding, verses.embedding)
    `

// StoreVerses upserts embedded verses in one batch
func (db *DB) StoreVerses(ctx context.Context, verses []embedding.EmbeddedVerse) (int, error) {
	batch := &pgx.Batch{}
	for _, v := range verses {
		batch.Queue(upsertVerseSQL, v.Position, v.Verse.Source, v.Verse.Mandala, v.Verse.Sukta, v.Verse.Text, vectorParam(v.Embedding))
	}

	results := db.Pool.SendBatch(ctx, batch)
	defer results.Close()

	stored := 0
	for range verses {
		if _, err := results.Exec(); err != nil {
			return stored, fmt.Errorf("failed to store verse: %w", err)
		}
		stored++
	}
	return stored, nil
}

// FetchPartition returns the verses of one mandala in corpus order. It lets
// the database back a corpus.Store.
func (db *DB) FetchPartition(ctx context.Context, mandala int) ([]models.Verse, error) {
	rows, err := db.Pool.Query(ctx, `
        SELECT veda, mandala, sukta, text
        FROM verses
        WHERE mandala = $1
        ORDER BY position
    `, mandala)
	if err != nil {
		return nil, fmt.Errorf("failed to query mandala %d: %w", mandala, err)
	}
	return processRows(rows)
}

// QuerySimilar finds verses closest to the query embedding
func (db *DB) QuerySimilar(ctx context.Context, embedding []float64, limit int) ([]models.Verse, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT veda, mandala, sukta, text
		FROM verses
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1::vector
		LIMIT $2
	`, vectorParam(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query similar verses: %w", err)
	}
	return processRows(rows)
}

// QuerySimilarInMandala is QuerySimilar restricted to one mandala
func (db *DB) QuerySimilarInMandala(ctx context.Context, embedding []float64, mandala, limit int) ([]models.Verse, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT veda, mandala, sukta, text
		FROM verses
		WHERE embedding IS NOT NULL AND mandala = $2
		ORDER BY embedding <=> $1::vector
		LIMIT $3
	`, vectorParam(embedding), mandala, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query similar verses: %w", err)
	}
	return processRows(rows)
}

// MandalaCounts returns the number of stored verses per mandala
func (db *DB) MandalaCounts(ctx context.Context) (map[int]int, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT mandala, COUNT(*) FROM verses GROUP BY mandala ORDER BY mandala
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count verses: %w", err)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var mandala, count int
		if err := rows.Scan(&mandala, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[mandala] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return counts, nil
}

func processRows(rows pgx.Rows) ([]models.Verse, error) {
	defer rows.Close()

	verses := []models.Verse{}
	for rows.Next() {
		var v models.Verse
		if err := rows.Scan(&v.Source, &v.Mandala, &v.Sukta, &v.Text); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		verses = append(verses, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return verses, nil
}

// vectorParam renders an embedding as a pgvector literal; nil stays NULL.
func vectorParam(embedding []float64) any {
	if embedding == nil {
		return nil
	}
	var sb strings.Builder
	sb.WriteByte('[')
	for i, f := range embedding {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(f, 'f', -1, 64))
	}
	sb.WriteByte(']')
	return sb.String()
}

// Close closes the database connection
func (db *DB) Close() {
	db.Pool.Close()
}

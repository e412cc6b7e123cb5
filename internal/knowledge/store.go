package knowledge

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/qdrant/go-client/qdrant"

	"mailagent/internal/config"
	"mailagent/internal/models"
)

// Embedder produces vector embeddings for text.
type Embedder interface {
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// Store holds the support knowledge base: chunk text and metadata live
// in SQL, vectors live in Qdrant keyed by the SQL row id.
type Store struct {
	db         *sqlx.DB
	vectors    *qdrant.Client
	embedder   Embedder
	collection string
	chunkSize  int
	topK       int
}

// embeddingDimension matches the small embedding models on both
// providers.
const embeddingDimension = 1536

// NewStore connects to Qdrant and ensures the knowledge collection
// exists with the expected vector parameters.
func NewStore(cfg *config.Config, db *sqlx.DB, embedder Embedder) (*Store, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: cfg.QdrantHost,
		Port: cfg.QdrantPort,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Qdrant: %v", err)
	}

	store := &Store{
		db:         db,
		vectors:    client,
		embedder:   embedder,
		collection: cfg.QdrantCollection,
		chunkSize:  cfg.KnowledgeChunkSize,
		topK:       cfg.KnowledgeSearchResults,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := store.ensureCollection(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *Store) ensureCollection(ctx context.Context) error {
	exists, err := s.vectors.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection %s: %v", s.collection, err)
	}
	if exists {
		return nil
	}

	fmt.Printf("[KNOWLEDGE] Creating Qdrant collection %s\n", s.collection)

	err = s.vectors.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     embeddingDimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %v", s.collection, err)
	}
	return nil
}

// Collection returns the Qdrant collection name.
func (s *Store) Collection() string {
	return s.collection
}

// Add embeds a single titled chunk and stores it in both SQL and
// Qdrant. The SQL row id doubles as the Qdrant point id.
func (s *Store) Add(ctx context.Context, title, content string) error {
	embeddings, err := s.embedder.CreateEmbeddings(ctx, []string{title + "\n" + content})
	if err != nil {
		return fmt.Errorf("failed to embed chunk %q: %v", title, err)
	}

	var id int
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO knowledge_base (title, content)
		VALUES ($1, $2)
		RETURNING id
	`, title, content).Scan(&id)
	if err != nil {
		return fmt.Errorf("failed to store chunk %q: %v", title, err)
	}

	_, err = s.vectors.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Wait:           qdrant.PtrOf(true),
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewIDNum(uint64(id)),
				Vectors: qdrant.NewVectors(embeddings[0]...),
				Payload: qdrant.NewValueMap(map[string]any{
					"title":   title,
					"content": content,
				}),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to index chunk %q: %v", title, err)
	}
	return nil
}

// AddDocument splits a bulk text source into titled chunks and stores
// each one. Returns the number of chunks stored.
func (s *Store) AddDocument(ctx context.Context, source string) (int, error) {
	chunks := chunkDocument(source, s.chunkSize)
	for _, chunk := range chunks {
		if err := s.Add(ctx, chunk.Title, chunk.Content); err != nil {
			return 0, err
		}
	}
	return len(chunks), nil
}

// Search embeds the query and returns the contents of the most similar
// chunks, best match first.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = s.topK
	}

	embeddings, err := s.embedder.CreateEmbeddings(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %v", err)
	}

	points, err := s.vectors.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(embeddings[0]...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search knowledge base: %v", err)
	}

	var contents []string
	for _, point := range points {
		if content := point.Payload["content"].GetStringValue(); content != "" {
			contents = append(contents, content)
		}
	}
	return contents, nil
}

// Chunks returns all stored chunks from SQL, newest first.
func (s *Store) Chunks(ctx context.Context) ([]models.KnowledgeChunk, error) {
	var chunks []models.KnowledgeChunk
	err := s.db.SelectContext(ctx, &chunks, `
		SELECT id, title, content, created_at
		FROM knowledge_base
		ORDER BY id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list knowledge chunks: %v", err)
	}
	return chunks, nil
}

// Count returns the number of indexed vectors.
func (s *Store) Count(ctx context.Context) (uint64, error) {
	count, err := s.vectors.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.collection,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count knowledge vectors: %v", err)
	}
	return count, nil
}

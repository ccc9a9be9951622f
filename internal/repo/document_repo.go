package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/didi/gendry/builder"
	"github.com/pgvector/pgvector-go"

	"github.com/petwell/petwell/internal/model"
	"github.com/petwell/petwell/internal/pkg/dbutil"
)

// DocumentRepo persists both corpora. The two tables share one column shape;
// every operation is addressed to exactly one corpus.
type DocumentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

func corpusTable(corpus model.Corpus) (string, error) {
	switch corpus {
	case model.CorpusPersonal:
		return "personal_documents", nil
	case model.CorpusShared:
		return "shared_documents", nil
	default:
		return "", fmt.Errorf("unknown corpus: %s", corpus)
	}
}

// Upsert writes documents keyed by id. A repeated id overwrites content,
// metadata, embedding and mtime in place; ctime and the ownership columns
// from the first write stay untouched. Concurrent writes to the same id
// resolve last-write-wins at the row level.
func (r *DocumentRepo) Upsert(ctx context.Context, corpus model.Corpus, docs []model.Document) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	table, err := corpusTable(corpus)
	if err != nil {
		return 0, err
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (id, owner_id, pet_id, doc_type, content, metadata, embedding, ctime, mtime)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			doc_type = EXCLUDED.doc_type,
			content = EXCLUDED.content,
			metadata = EXCLUDED.metadata,
			embedding = EXCLUDED.embedding,
			mtime = EXCLUDED.mtime
	`, table)
	for _, doc := range docs {
		meta := doc.Metadata
		if meta == nil {
			meta = map[string]string{}
		}
		metaBlob, err := json.Marshal(meta)
		if err != nil {
			return 0, err
		}
		var embedding interface{}
		if len(doc.Embedding) > 0 {
			embedding = pgvector.NewVector(doc.Embedding)
		}
		if _, err := r.db.ExecContext(ctx, query,
			doc.ID, doc.OwnerID, doc.PetID, doc.DocType,
			doc.Content, metaBlob, embedding, doc.Ctime, doc.Mtime,
		); err != nil {
			return 0, err
		}
	}
	return len(docs), nil
}

// DocumentFilter narrows a corpus scan. Zero values mean "no filter" for
// their field; a pet filter still matches rows with an empty pet_id.
type DocumentFilter struct {
	OwnerID  string
	PetID    string
	DocTypes []string
	Limit    int
}

func (r *DocumentRepo) Query(ctx context.Context, corpus model.Corpus, filter DocumentFilter) ([]model.Document, error) {
	table, err := corpusTable(corpus)
	if err != nil {
		return nil, err
	}
	where := map[string]interface{}{
		"_orderby": "mtime desc",
	}
	if filter.OwnerID != "" {
		where["owner_id"] = filter.OwnerID
	}
	if filter.PetID != "" {
		// Rows without a pet binding still match, so the filter must run in
		// SQL before the limit is applied.
		where["pet_id in"] = []string{filter.PetID, ""}
	}
	if len(filter.DocTypes) > 0 {
		where["doc_type in"] = filter.DocTypes
	}
	if filter.Limit > 0 {
		where["_limit"] = []uint{uint(filter.Limit)}
	}
	sqlStr, args, err := builder.BuildSelect(table, where,
		[]string{"id", "owner_id", "pet_id", "doc_type", "content", "metadata", "ctime", "mtime"})
	if err != nil {
		return nil, err
	}
	sqlStr, args, err = dbutil.In(sqlStr, args...)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var docs []model.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// SearchVectors ranks a corpus by cosine similarity against queryVec,
// descending. The shared corpus is never owner-filtered; a personal search
// always is. Ties fall back to the statement's scan order.
func (r *DocumentRepo) SearchVectors(ctx context.Context, corpus model.Corpus, queryVec []float32, filter DocumentFilter, k int) ([]model.ScoredDocument, error) {
	table, err := corpusTable(corpus)
	if err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`
		SELECT id, owner_id, pet_id, doc_type, content, metadata, ctime, mtime,
			1 - (embedding <=> ?) AS score
		FROM %s
		WHERE embedding IS NOT NULL
	`, table)
	vec := pgvector.NewVector(queryVec)
	args := []interface{}{vec}
	if corpus == model.CorpusPersonal && filter.OwnerID != "" {
		query += " AND owner_id = ?"
		args = append(args, filter.OwnerID)
	}
	if filter.PetID != "" {
		query += " AND (pet_id = ? OR pet_id = '')"
		args = append(args, filter.PetID)
	}
	if len(filter.DocTypes) > 0 {
		query += " AND doc_type IN (?)"
		args = append(args, filter.DocTypes)
	}
	query += " ORDER BY embedding <=> ? LIMIT ?"
	args = append(args, vec, k)

	query, args, err = dbutil.In(query, args...)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var results []model.ScoredDocument
	for rows.Next() {
		var item model.ScoredDocument
		var metaBlob []byte
		if err := rows.Scan(
			&item.ID, &item.OwnerID, &item.PetID, &item.DocType,
			&item.Content, &metaBlob, &item.Ctime, &item.Mtime, &item.Score,
		); err != nil {
			return nil, err
		}
		if len(metaBlob) > 0 {
			if err := json.Unmarshal(metaBlob, &item.Metadata); err != nil {
				return nil, err
			}
		}
		item.Corpus = corpus
		results = append(results, item)
	}
	return results, rows.Err()
}

type docScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row docScanner) (*model.Document, error) {
	var doc model.Document
	var metaBlob []byte
	if err := row.Scan(
		&doc.ID, &doc.OwnerID, &doc.PetID, &doc.DocType,
		&doc.Content, &metaBlob, &doc.Ctime, &doc.Mtime,
	); err != nil {
		return nil, err
	}
	if len(metaBlob) > 0 {
		if err := json.Unmarshal(metaBlob, &doc.Metadata); err != nil {
			return nil, err
		}
	}
	return &doc, nil
}

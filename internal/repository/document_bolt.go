package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/futig/explainer-backend/internal/entity"
	"go.etcd.io/bbolt"
)

var bucketDocuments = []byte("documents")

// DocumentBolt keeps the registry in a local bbolt file. Used when no
// database is configured.
type DocumentBolt struct {
	db *bbolt.DB
}

func NewDocumentBolt(path string) (*DocumentBolt, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create registry directory: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketDocuments)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create registry bucket: %w", err)
	}

	return &DocumentBolt{db: db}, nil
}

func (r *DocumentBolt) Save(_ context.Context, doc *entity.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDocuments).Put([]byte(doc.ID), data)
	})
}

func (r *DocumentBolt) Get(_ context.Context, id string) (*entity.Document, error) {
	var doc entity.Document
	err := r.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketDocuments).Get([]byte(id))
		if data == nil {
			return entity.ErrDocumentNotFound
		}
		return json.Unmarshal(data, &doc)
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// List returns documents newest first.
func (r *DocumentBolt) List(_ context.Context) ([]*entity.Document, error) {
	docs := make([]*entity.Document, 0)
	err := r.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDocuments).ForEach(func(_, v []byte) error {
			var doc entity.Document
			if err := json.Unmarshal(v, &doc); err != nil {
				return err
			}
			docs = append(docs, &doc)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	slices.SortStableFunc(docs, func(a, b *entity.Document) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return docs, nil
}

func (r *DocumentBolt) Delete(_ context.Context, id string) (bool, error) {
	existed := false
	err := r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketDocuments)
		if b.Get([]byte(id)) == nil {
			return nil
		}
		existed = true
		return b.Delete([]byte(id))
	})
	if err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}
	return existed, nil
}

func (r *DocumentBolt) Count(_ context.Context) (int, error) {
	var n int
	err := r.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketDocuments).Stats().KeyN
		return nil
	})
	return n, err
}

func (r *DocumentBolt) Close() error {
	return r.db.Close()
}

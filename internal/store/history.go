// Package store persists which article URLs previous runs already surfaced,
// so repeated runs only publish unseen articles. The pipeline itself never
// touches this store; it belongs to the caller.
package store

import (
	"crypto/sha1" //nolint:gosec // non-cryptographic key derivation
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/PulsoRadial/radar/internal/domain"
)

var bucketArticles = []byte("articles")

// record is the value stored per seen URL.
type record struct {
	Title  string    `json:"title"`
	Source string    `json:"source"`
	SeenAt time.Time `json:"seen_at"`
}

// History is a bbolt-backed seen-URL store keyed by SHA-1 of the article URL.
type History struct {
	db *bolt.DB
}

// Open opens (or creates) the history database at path.
func Open(path string) (*History, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketArticles)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create history bucket: %w", err)
	}

	return &History{db: db}, nil
}

// Close closes the underlying database.
func (h *History) Close() error {
	return h.db.Close()
}

// Seen reports whether the URL was recorded by a previous run.
func (h *History) Seen(url string) (bool, error) {
	var seen bool
	err := h.db.View(func(tx *bolt.Tx) error {
		seen = tx.Bucket(bucketArticles).Get(urlKey(url)) != nil
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("read history: %w", err)
	}
	return seen, nil
}

// MarkSeen records the articles' URLs as seen.
func (h *History) MarkSeen(articles []domain.Article) error {
	if len(articles) == 0 {
		return nil
	}

	err := h.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketArticles)
		for _, art := range articles {
			val, err := json.Marshal(record{
				Title:  art.Title,
				Source: art.Source,
				SeenAt: time.Now().UTC(),
			})
			if err != nil {
				return err
			}
			if err := bucket.Put(urlKey(art.URL), val); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}

// FilterNew returns the articles whose URLs have not been seen before,
// preserving input order.
func (h *History) FilterNew(articles []domain.Article) ([]domain.Article, error) {
	out := make([]domain.Article, 0, len(articles))
	err := h.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketArticles)
		for _, art := range articles {
			if bucket.Get(urlKey(art.URL)) == nil {
				out = append(out, art)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return out, nil
}

// urlKey derives the bucket key for a URL.
func urlKey(url string) []byte {
	sum := sha1.Sum([]byte(url))
	return []byte(hex.EncodeToString(sum[:]))
}

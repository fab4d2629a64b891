package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

var _ Store = (*RedisStore)(nil)

// RedisStore keeps each document as a JSON string and a per-scope sorted set of ids
// scored by insertion sequence. Conditional writes use WATCH/MULTI.
type RedisStore struct {
	client *redis.Client
	prefix string
}

type redisDocument struct {
	Version int64  `json:"version"`
	Fields  Fields `json:"fields"`
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "docstore:"}
}

func (s *RedisStore) docKey(scope Scope, id string) string {
	return s.prefix + "doc:" + string(scope) + ":" + id
}

func (s *RedisStore) indexKey(scope Scope) string {
	return s.prefix + "idx:" + string(scope)
}

func (s *RedisStore) seqKey() string {
	return s.prefix + "seq"
}

func decodeRedisDocument(id string, raw []byte) (*Document, error) {
	var stored redisDocument
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", id, err)
	}
	if stored.Fields == nil {
		stored.Fields = Fields{}
	}
	return &Document{ID: id, Version: stored.Version, Fields: stored.Fields}, nil
}

func encodeRedisDocument(doc *Document) ([]byte, error) {
	return json.Marshal(redisDocument{Version: doc.Version, Fields: doc.Fields})
}

func (s *RedisStore) Get(ctx context.Context, scope Scope, id string) (*Document, error) {
	raw, err := s.client.Get(ctx, s.docKey(scope, id)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return decodeRedisDocument(id, raw)
}

func (s *RedisStore) List(ctx context.Context, scope Scope) ([]Document, error) {
	ids, err := s.client.ZRange(ctx, s.indexKey(scope), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list document ids: %w", err)
	}
	docs := make([]Document, 0, len(ids))
	if len(ids) == 0 {
		return docs, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.docKey(scope, id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			// removed between ZRANGE and MGET
			continue
		}
		doc, err := decodeRedisDocument(ids[i], []byte(raw))
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

func (s *RedisStore) Add(ctx context.Context, scope Scope, fields Fields) (*Document, error) {
	return s.Set(ctx, scope, uuid.New().String(), fields)
}

func (s *RedisStore) Set(ctx context.Context, scope Scope, id string, fields Fields) (*Document, error) {
	seq, err := s.client.Incr(ctx, s.seqKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("allocate sequence: %w", err)
	}

	key := s.docKey(scope, id)
	var result *Document
	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		doc := &Document{ID: id, Version: 1, Fields: fields.Clone()}
		raw, err := tx.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			prev, decodeErr := decodeRedisDocument(id, raw)
			if decodeErr != nil {
				return decodeErr
			}
			doc.Version = prev.Version + 1
		case err != redis.Nil:
			return err
		}

		payload, err := encodeRedisDocument(doc)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			pipe.ZAddNX(ctx, s.indexKey(scope), &redis.Z{Score: float64(seq), Member: id})
			return nil
		})
		if err != nil {
			return err
		}
		result = doc
		return nil
	}, key)
	if err == redis.TxFailedErr {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("set document: %w", err)
	}
	return result, nil
}

func (s *RedisStore) Update(ctx context.Context, scope Scope, id string, fields Fields, expectedVersion int64) (*Document, error) {
	key := s.docKey(scope, id)
	var result *Document
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		doc, err := decodeRedisDocument(id, raw)
		if err != nil {
			return err
		}
		if expectedVersion != AnyVersion && doc.Version != expectedVersion {
			return ErrConflict
		}
		doc.Fields.Merge(fields)
		doc.Version++

		payload, err := encodeRedisDocument(doc)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		if err != nil {
			return err
		}
		result = doc
		return nil
	}, key)

	switch {
	case err == nil:
		return result, nil
	case err == redis.TxFailedErr, errors.Is(err, ErrConflict):
		return nil, ErrConflict
	case errors.Is(err, ErrNotFound):
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("update document: %w", err)
	}
}

func (s *RedisStore) Delete(ctx context.Context, scope Scope, id string) (bool, error) {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, s.docKey(scope, id))
		pipe.ZRem(ctx, s.indexKey(scope), id)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}
	return del.Val() > 0, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close(context.Context) error {
	return s.client.Close()
}

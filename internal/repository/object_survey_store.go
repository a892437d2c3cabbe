package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/qri-io/jsonschema"
	"go.uber.org/zap"

	"github.com/noah-isme/survey-api/internal/models"
	"github.com/noah-isme/survey-api/pkg/objectstore"
)

const jsonContentType = "application/json"

// SurveyIndex is the per-type document listing stored survey blobs.
type SurveyIndex struct {
	LastUpdated  time.Time          `json:"last_updated"`
	TotalSurveys int                `json:"total_surveys"`
	Entries      []SurveyIndexEntry `json:"entries"`
}

// SurveyIndexEntry points at one survey blob.
type SurveyIndexEntry struct {
	ID         string            `json:"id"`
	UserName   string            `json:"user_name"`
	SurveyType models.SurveyType `json:"survey_type"`
	CreatedAt  time.Time         `json:"created_at"`
	BlobKey    string            `json:"blob_key"`
}

// ObjectSurveyStore keeps one JSON blob per survey and one index document
// per survey type in an object-store bucket. Index updates are serialized
// per type within the process; readers tolerate index entries whose blob
// is missing or invalid.
type ObjectSurveyStore struct {
	bucket  objectstore.Bucket
	prefix  string
	logger  *zap.Logger
	now     func() time.Time
	locks   map[models.SurveyType]*sync.Mutex
	schemas map[models.SurveyType]*jsonschema.Schema
}

// NewObjectSurveyStore constructs the store rooted at prefix.
func NewObjectSurveyStore(bucket objectstore.Bucket, prefix string, logger *zap.Logger) (*ObjectSurveyStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	store := &ObjectSurveyStore{
		bucket:  bucket,
		prefix:  strings.Trim(prefix, "/"),
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
		locks:   make(map[models.SurveyType]*sync.Mutex, len(models.SurveyTypes)),
		schemas: make(map[models.SurveyType]*jsonschema.Schema, len(models.SurveyTypes)),
	}
	for _, surveyType := range models.SurveyTypes {
		schema, err := blobSchema(surveyType)
		if err != nil {
			return nil, err
		}
		store.locks[surveyType] = &sync.Mutex{}
		store.schemas[surveyType] = schema
	}
	return store, nil
}

func (s *ObjectSurveyStore) Upsert(ctx context.Context, record models.SurveyRecord) (models.SurveyRecord, error) {
	surveyType := record.SurveyType()
	lock, ok := s.locks[surveyType]
	if !ok {
		return nil, fmt.Errorf("unsupported survey type %q", surveyType)
	}
	lock.Lock()
	defer lock.Unlock()

	meta := record.Meta()
	meta.CreatedAt = s.now()
	payload, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encode survey: %w", err)
	}
	key := s.blobKey(surveyType, meta.UserName)
	if err := s.bucket.Put(ctx, key, bytes.NewReader(payload), int64(len(payload)), jsonContentType); err != nil {
		return nil, fmt.Errorf("write survey blob: %w", err)
	}

	index, err := s.loadIndex(ctx, surveyType)
	if err != nil {
		return nil, err
	}
	entry := SurveyIndexEntry{
		ID:         models.SurveyID(surveyType, meta.UserName),
		UserName:   meta.UserName,
		SurveyType: surveyType,
		CreatedAt:  meta.CreatedAt,
		BlobKey:    key,
	}
	index.Entries = append(removeEntry(index.Entries, meta.UserName), entry)
	if err := s.saveIndex(ctx, surveyType, index); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *ObjectSurveyStore) FindByUser(ctx context.Context, surveyType models.SurveyType, userName string) (models.SurveyRecord, error) {
	if _, ok := s.locks[surveyType]; !ok {
		return nil, fmt.Errorf("unsupported survey type %q", surveyType)
	}
	return s.readBlob(ctx, surveyType, s.blobKey(surveyType, userName))
}

func (s *ObjectSurveyStore) ListByType(ctx context.Context, surveyType models.SurveyType) ([]models.SurveyRecord, error) {
	if _, ok := s.locks[surveyType]; !ok {
		return nil, fmt.Errorf("unsupported survey type %q", surveyType)
	}
	index, err := s.loadIndex(ctx, surveyType)
	if err != nil {
		return nil, err
	}

	records := make([]models.SurveyRecord, 0, len(index.Entries))
	for _, entry := range index.Entries {
		record, err := s.readBlob(ctx, surveyType, entry.BlobKey)
		switch {
		case errors.Is(err, ErrSurveyNotFound):
			s.logger.Warn("skipping index entry without blob", zap.String("id", entry.ID), zap.String("blob_key", entry.BlobKey))
			continue
		case errors.Is(err, errInvalidBlob):
			s.logger.Warn("skipping invalid survey blob", zap.String("id", entry.ID), zap.Error(err))
			continue
		case err != nil:
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *ObjectSurveyStore) Delete(ctx context.Context, surveyType models.SurveyType, userName string) (models.SurveyRecord, error) {
	lock, ok := s.locks[surveyType]
	if !ok {
		return nil, fmt.Errorf("unsupported survey type %q", surveyType)
	}
	lock.Lock()
	defer lock.Unlock()

	key := s.blobKey(surveyType, userName)
	record, err := s.readBlob(ctx, surveyType, key)
	if err != nil && !errors.Is(err, errInvalidBlob) {
		return nil, err
	}
	if err := s.bucket.Remove(ctx, key); err != nil {
		return nil, fmt.Errorf("remove survey blob: %w", err)
	}

	index, err := s.loadIndex(ctx, surveyType)
	if err != nil {
		return nil, err
	}
	index.Entries = removeEntry(index.Entries, userName)
	if err := s.saveIndex(ctx, surveyType, index); err != nil {
		return nil, err
	}
	if record == nil {
		empty, _ := models.NewSurveyRecord(surveyType)
		empty.Meta().UserName = userName
		record = empty
	}
	return record, nil
}

// Reindex rebuilds every type index from the blobs found under its prefix
// and returns the number of entries per type.
func (s *ObjectSurveyStore) Reindex(ctx context.Context) (map[models.SurveyType]int, error) {
	counts := make(map[models.SurveyType]int, len(models.SurveyTypes))
	for _, surveyType := range models.SurveyTypes {
		n, err := s.reindexType(ctx, surveyType)
		if err != nil {
			return counts, err
		}
		counts[surveyType] = n
	}
	return counts, nil
}

func (s *ObjectSurveyStore) reindexType(ctx context.Context, surveyType models.SurveyType) (int, error) {
	lock := s.locks[surveyType]
	lock.Lock()
	defer lock.Unlock()

	keys, err := s.bucket.List(ctx, s.blobPrefix(surveyType))
	if err != nil {
		return 0, fmt.Errorf("list %s blobs: %w", surveyType, err)
	}

	index := &SurveyIndex{Entries: make([]SurveyIndexEntry, 0, len(keys))}
	for _, key := range keys {
		record, err := s.readBlob(ctx, surveyType, key)
		if err != nil {
			s.logger.Warn("reindex skipped blob", zap.String("blob_key", key), zap.Error(err))
			continue
		}
		meta := record.Meta()
		index.Entries = append(index.Entries, SurveyIndexEntry{
			ID:         models.SurveyID(surveyType, meta.UserName),
			UserName:   meta.UserName,
			SurveyType: surveyType,
			CreatedAt:  meta.CreatedAt,
			BlobKey:    key,
		})
	}
	if err := s.saveIndex(ctx, surveyType, index); err != nil {
		return 0, err
	}
	s.logger.Info("survey index rebuilt", zap.String("survey_type", string(surveyType)), zap.Int("entries", len(index.Entries)))
	return len(index.Entries), nil
}

// Ping checks that the index of the first survey type is reachable.
func (s *ObjectSurveyStore) Ping(ctx context.Context) error {
	_, err := s.loadIndex(ctx, models.SurveyTypeStudent)
	return err
}

var errInvalidBlob = errors.New("invalid survey blob")

func (s *ObjectSurveyStore) readBlob(ctx context.Context, surveyType models.SurveyType, key string) (models.SurveyRecord, error) {
	data, err := s.bucket.Get(ctx, key)
	if err != nil {
		if errors.Is(err, objectstore.ErrObjectNotFound) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("read survey blob: %w", err)
	}

	keyErrs, err := s.schemas[surveyType].ValidateBytes(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", errInvalidBlob, key, err)
	}
	if len(keyErrs) > 0 {
		return nil, fmt.Errorf("%w %s: %s", errInvalidBlob, key, keyErrs[0].Error())
	}

	record, _ := models.NewSurveyRecord(surveyType)
	if err := json.Unmarshal(data, record); err != nil {
		return nil, fmt.Errorf("%w %s: %v", errInvalidBlob, key, err)
	}
	return record, nil
}

func (s *ObjectSurveyStore) loadIndex(ctx context.Context, surveyType models.SurveyType) (*SurveyIndex, error) {
	data, err := s.bucket.Get(ctx, s.indexKey(surveyType))
	if err != nil {
		if errors.Is(err, objectstore.ErrObjectNotFound) {
			return &SurveyIndex{Entries: make([]SurveyIndexEntry, 0)}, nil
		}
		return nil, fmt.Errorf("read %s index: %w", surveyType, err)
	}
	var index SurveyIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("decode %s index: %w", surveyType, err)
	}
	return &index, nil
}

func (s *ObjectSurveyStore) saveIndex(ctx context.Context, surveyType models.SurveyType, index *SurveyIndex) error {
	sort.SliceStable(index.Entries, func(i, j int) bool {
		if !index.Entries[i].CreatedAt.Equal(index.Entries[j].CreatedAt) {
			return index.Entries[i].CreatedAt.After(index.Entries[j].CreatedAt)
		}
		return index.Entries[i].ID < index.Entries[j].ID
	})
	index.LastUpdated = s.now()
	index.TotalSurveys = len(index.Entries)

	payload, err := json.Marshal(index)
	if err != nil {
		return fmt.Errorf("encode %s index: %w", surveyType, err)
	}
	if err := s.bucket.Put(ctx, s.indexKey(surveyType), bytes.NewReader(payload), int64(len(payload)), jsonContentType); err != nil {
		return fmt.Errorf("write %s index: %w", surveyType, err)
	}
	return nil
}

func (s *ObjectSurveyStore) blobPrefix(surveyType models.SurveyType) string {
	return path.Join(s.prefix, string(surveyType), "surveys") + "/"
}

func (s *ObjectSurveyStore) blobKey(surveyType models.SurveyType, userName string) string {
	return s.blobPrefix(surveyType) + url.PathEscape(userName) + ".json"
}

func (s *ObjectSurveyStore) indexKey(surveyType models.SurveyType) string {
	return path.Join(s.prefix, string(surveyType), "index.json")
}

func removeEntry(entries []SurveyIndexEntry, userName string) []SurveyIndexEntry {
	out := entries[:0]
	for _, entry := range entries {
		if entry.UserName != userName {
			out = append(out, entry)
		}
	}
	return out
}

// blobSchema builds the JSON schema every stored blob of surveyType must
// satisfy: a non-empty user name, a timestamp and nullable text answers.
func blobSchema(surveyType models.SurveyType) (*jsonschema.Schema, error) {
	schema, ok := models.SchemaFor(surveyType)
	if !ok {
		return nil, fmt.Errorf("no question schema for %q", surveyType)
	}
	nullableText := map[string]interface{}{"type": []string{"string", "null"}}
	properties := map[string]interface{}{
		"user_name":       map[string]interface{}{"type": "string", "minLength": 1},
		"created_at":      map[string]interface{}{"type": "string", "minLength": 1},
		"image_url":       nullableText,
		"image_public_id": nullableText,
	}
	for _, col := range schema.Columns() {
		properties[col] = nullableText
	}
	raw, err := json.Marshal(map[string]interface{}{
		"$schema":    "http://json-schema.org/draft-07/schema#",
		"type":       "object",
		"required":   []string{"user_name", "created_at"},
		"properties": properties,
	})
	if err != nil {
		return nil, fmt.Errorf("encode %s blob schema: %w", surveyType, err)
	}
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal(raw, rs); err != nil {
		return nil, fmt.Errorf("compile %s blob schema: %w", surveyType, err)
	}
	return rs, nil
}

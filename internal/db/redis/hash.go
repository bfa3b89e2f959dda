package redis

import (
	"context"
	"fmt"
	"sort"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/mdsearch/internal/db"
)

// HGetAll returns all fields of a hash. A missing key yields an empty map.
func (s *Store) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	cmd := s.b().Hgetall().Key(key).Build()
	m, err := s.do(ctx, cmd).AsStrMap()
	if err != nil {
		return nil, &db.Error{Op: db.OpHGetAll, Err: err}
	}
	return m, nil
}

// HMGet returns the requested fields of a hash. Missing fields are omitted.
func (s *Store) HMGet(ctx context.Context, key string, fields ...string) (map[string]string, error) {
	if len(fields) == 0 {
		return map[string]string{}, nil
	}
	cmd := s.b().Hmget().Key(key).Field(fields...).Build()
	vals, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpHMGet, Err: err}
	}

	out := make(map[string]string, len(fields))
	for i, v := range vals {
		if i >= len(fields) || v.IsNil() {
			continue
		}
		str, err := v.ToString()
		if err != nil {
			return nil, &db.Error{Op: db.OpHMGet, Err: fmt.Errorf("field %s: %w", fields[i], err)}
		}
		out[fields[i]] = str
	}
	return out, nil
}

// HGet returns one hash field.
func (s *Store) HGet(ctx context.Context, key, field string) (string, error) {
	cmd := s.b().Hget().Key(key).Field(field).Build()
	v, err := s.do(ctx, cmd).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return "", db.ErrKeyNotFound
		}
		return "", &db.Error{Op: db.OpHGet, Err: err}
	}
	return v, nil
}

// SMembers returns the members of a set.
func (s *Store) SMembers(ctx context.Context, key string) ([]string, error) {
	cmd := s.b().Smembers().Key(key).Build()
	members, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, &db.Error{Op: db.OpSMembers, Err: err}
	}
	sort.Strings(members)
	return members, nil
}

// XAdd appends an entry to a stream trimmed to roughly maxLen entries.
// A non-positive maxLen disables trimming.
func (s *Store) XAdd(ctx context.Context, stream string, maxLen int64, fields map[string]string) (string, error) {
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)

	var args []string
	if maxLen > 0 {
		args = append(args, "MAXLEN", "~", fmt.Sprint(maxLen))
	}
	args = append(args, "*")
	for _, k := range names {
		args = append(args, k, fields[k])
	}

	cmd := s.b().Arbitrary("XADD").Keys(stream).Args(args...).Build()
	id, err := s.do(ctx, cmd).ToString()
	if err != nil {
		return "", &db.Error{Op: db.OpXAdd, Err: err}
	}
	return id, nil
}

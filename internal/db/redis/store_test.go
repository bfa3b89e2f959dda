package redis

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/mdsearch/internal/db"
)

// --- client.go tests ---

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

// --- hash.go tests ---

func TestHGetAll_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("HGETALL", "md:1")).
		Return(mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{
			"_id":    mock.RedisString("1"),
			"_title": mock.RedisString("Rivers"),
		})))

	s := NewStoreForTest(c)
	m, err := s.HGetAll(context.Background(), "md:1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m["_title"] != "Rivers" {
		t.Errorf("expected Rivers, got %q", m["_title"])
	}
}

func TestHGetAll_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("HGETALL", "md:1")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	_, err := s.HGetAll(context.Background(), "md:1")
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %T", err)
	}
}

func TestHMGet_SkipsMissing(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("HMGET", "md:1", "_id", "_uuid")).
		Return(mock.Result(mock.RedisArray(mock.RedisString("1"), mock.RedisNil())))

	s := NewStoreForTest(c)
	m, err := s.HMGet(context.Background(), "md:1", "_id", "_uuid")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m) != 1 || m["_id"] != "1" {
		t.Errorf("expected only _id, got %v", m)
	}
}

func TestHMGet_NoFields(t *testing.T) {
	s := NewStoreForTest(nil) // client not called
	m, err := s.HMGet(context.Background(), "md:1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m) != 0 {
		t.Errorf("expected empty map, got %v", m)
	}
}

func TestHGet_Nil(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("HGET", "regions", "r1")).
		Return(mock.Result(mock.RedisNil()))

	s := NewStoreForTest(c)
	_, err := s.HGet(context.Background(), "regions", "r1")
	if !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestSMembers_Sorted(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("SMEMBERS", "user:7:groups")).
		Return(mock.Result(mock.RedisArray(mock.RedisString("3"), mock.RedisString("1"))))

	s := NewStoreForTest(c)
	got, err := s.SMembers(context.Background(), "user:7:groups")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(got, []string{"1", "3"}) {
		t.Errorf("expected [1 3], got %v", got)
	}
}

func TestXAdd_TrimsAndOrdersFields(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("XADD", "searchlog", "MAXLEN", "~", "1000", "*", "hits", "3", "query", "q")).
		Return(mock.Result(mock.RedisString("1-0")))

	s := NewStoreForTest(c)
	id, err := s.XAdd(context.Background(), "searchlog", 1000, map[string]string{"query": "q", "hits": "3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "1-0" {
		t.Errorf("expected id 1-0, got %q", id)
	}
}

func TestXAdd_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "XADD" && cmd[2] == "*"
		})).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	_, err := s.XAdd(context.Background(), "searchlog", 0, map[string]string{"query": "q"})
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %T", err)
	}
}

// --- helpers ---

func isDBError(err error) bool {
	var dbErr *db.Error
	return errors.As(err, &dbErr)
}

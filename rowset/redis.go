package rowset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"xorkevin.dev/forgeresult/result"
	"xorkevin.dev/kerrors"
)

const (
	columnsKeySuffix = ":columns"
	storeBatchSize   = 128
)

var (
	// ErrNotFound is returned when no result is cached at a key
	ErrNotFound errNotFound
)

type (
	errNotFound struct{}
)

func (e errNotFound) Error() string {
	return "Result not found"
}

type (
	// ListReader is the subset of [redis.Cmdable] used to read a cached result
	ListReader interface {
		LLen(ctx context.Context, key string) *redis.IntCmd
		LIndex(ctx context.Context, key string, index int64) *redis.StringCmd
		LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
		Del(ctx context.Context, keys ...string) *redis.IntCmd
	}

	// ListWriter is the subset of [redis.Cmdable] used to cache a result
	ListWriter interface {
		Del(ctx context.Context, keys ...string) *redis.IntCmd
		RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
		Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	}

	// Redis is a row set over a result cached in a redis list. Row n is the
	// JSON array at index n of the list at key, and the column names are the
	// list at key:columns.
	//
	// The row count is read once when opened. ctx bounds every redis call made
	// by the row set.
	Redis struct {
		ctx          context.Context
		client       ListReader
		key          string
		columns      []string
		total        int
		pos          int
		freed        bool
		deleteOnFree bool
	}

	// RedisOpt is an option for [OpenRedis]
	RedisOpt = func(r *Redis)
)

var _ result.RowSet = (*Redis)(nil)

// OptRedisDeleteOnFree deletes the cached result when the row set is freed
func OptRedisDeleteOnFree(del bool) RedisOpt {
	return func(r *Redis) {
		r.deleteOnFree = del
	}
}

// OpenRedis opens the result cached at key
func OpenRedis(ctx context.Context, client ListReader, key string, opts ...RedisOpt) (*Redis, error) {
	columns, err := client.LRange(ctx, columnsKey(key), 0, -1).Result()
	if err != nil {
		return nil, kerrors.WithMsg(err, fmt.Sprintf("Failed to read columns of %s", key))
	}
	if len(columns) == 0 {
		return nil, kerrors.WithKind(nil, ErrNotFound, fmt.Sprintf("No result cached at %s", key))
	}
	n, err := client.LLen(ctx, key).Result()
	if err != nil {
		return nil, kerrors.WithMsg(err, fmt.Sprintf("Failed to read row count of %s", key))
	}
	r := &Redis{
		ctx:     ctx,
		client:  client,
		key:     key,
		columns: columns,
		total:   int(n),
	}
	for _, i := range opts {
		i(r)
	}
	return r, nil
}

func columnsKey(key string) string {
	return key + columnsKeySuffix
}

// Columns returns the cached column names
func (r *Redis) Columns() []string {
	return r.columns
}

// NumRows returns the row count read when the row set was opened
func (r *Redis) NumRows() int {
	return r.total
}

// DataSeek positions the row set at offset without reading from redis
func (r *Redis) DataSeek(offset int) error {
	if r.freed {
		return kerrors.WithKind(nil, result.ErrExhausted, "Row set freed")
	}
	if offset < 0 || offset >= r.total {
		return kerrors.WithKind(nil, result.ErrOutOfRange, fmt.Sprintf("Offset %d out of range of %d rows", offset, r.total))
	}
	r.pos = offset
	return nil
}

// FetchAssoc reads the row at the position and advances by one row
func (r *Redis) FetchAssoc() (result.Row, error) {
	if r.freed {
		return nil, kerrors.WithKind(nil, result.ErrExhausted, "Row set freed")
	}
	if r.pos >= r.total {
		return nil, kerrors.WithKind(nil, result.ErrExhausted, "No rows remaining")
	}
	s, err := r.client.LIndex(r.ctx, r.key, int64(r.pos)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, kerrors.WithKind(err, result.ErrExhausted, fmt.Sprintf("Row %d of %s no longer cached", r.pos, r.key))
		}
		return nil, kerrors.WithMsg(err, fmt.Sprintf("Failed to read row %d of %s", r.pos, r.key))
	}
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var values []interface{}
	if err := dec.Decode(&values); err != nil {
		return nil, kerrors.WithMsg(err, fmt.Sprintf("Invalid row %d of %s", r.pos, r.key))
	}
	r.pos++
	return result.NewRow(r.columns, values), nil
}

// FetchObject reads the row at the position into a new value of typ and
// advances by one row
func (r *Redis) FetchObject(typ reflect.Type, args []interface{}) (interface{}, error) {
	row, err := r.FetchAssoc()
	if err != nil {
		return nil, err
	}
	return decodeObject(row, typ, args)
}

// Free releases the row set, deleting the cached result if
// [OptRedisDeleteOnFree] is set
func (r *Redis) Free() error {
	if r.freed {
		return nil
	}
	r.freed = true
	if !r.deleteOnFree {
		return nil
	}
	if err := r.client.Del(r.ctx, r.key, columnsKey(r.key)).Err(); err != nil {
		return kerrors.WithMsg(err, fmt.Sprintf("Failed to delete cached result %s", r.key))
	}
	return nil
}

// StoreRedis caches every row of res at key for [OpenRedis], replacing any
// result already at key, and returns the number of rows written. Byte slice
// values are stored as strings. A ttl of 0 caches the result without
// expiration.
//
// The column list is written last, so [OpenRedis] does not find a partially
// written result. On failure every key written is deleted.
func StoreRedis(ctx context.Context, client ListWriter, key string, res *result.Result, ttl time.Duration) (_ int, retErr error) {
	if res.Mode().IsTyped() {
		return 0, kerrors.WithKind(nil, result.ErrConfig, "Only assoc results may be cached")
	}
	columns := res.Columns()
	if len(columns) == 0 {
		return 0, kerrors.WithKind(nil, result.ErrConfig, "Result does not report its columns")
	}
	if err := client.Del(ctx, key, columnsKey(key)).Err(); err != nil {
		return 0, kerrors.WithMsg(err, fmt.Sprintf("Failed to clear %s", key))
	}
	defer func() {
		if retErr == nil {
			return
		}
		if err := client.Del(ctx, key, columnsKey(key)).Err(); err != nil {
			retErr = errors.Join(retErr, kerrors.WithMsg(err, fmt.Sprintf("Failed to clear partially written %s", key)))
		}
	}()

	count := 0
	batch := make([]interface{}, 0, storeBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := client.RPush(ctx, key, batch...).Err(); err != nil {
			return kerrors.WithMsg(err, fmt.Sprintf("Failed to write rows of %s", key))
		}
		count += len(batch)
		batch = batch[:0]
		return nil
	}
	if err := res.Each(func(offset int, row interface{}) error {
		values := row.(result.Row).Values()
		for n, i := range values {
			if b, ok := i.([]byte); ok {
				values[n] = string(b)
			}
		}
		b, err := json.Marshal(values)
		if err != nil {
			return kerrors.WithMsg(err, fmt.Sprintf("Failed to encode row %d", offset))
		}
		batch = append(batch, string(b))
		if len(batch) >= storeBatchSize {
			return flush()
		}
		return nil
	}); err != nil {
		return 0, err
	}
	if err := flush(); err != nil {
		return 0, err
	}

	cols := make([]interface{}, 0, len(columns))
	for _, i := range columns {
		cols = append(cols, i)
	}
	if err := client.RPush(ctx, columnsKey(key), cols...).Err(); err != nil {
		return 0, kerrors.WithMsg(err, fmt.Sprintf("Failed to write columns of %s", key))
	}

	if ttl > 0 {
		for _, i := range []string{key, columnsKey(key)} {
			if err := client.Expire(ctx, i, ttl).Err(); err != nil {
				return 0, kerrors.WithMsg(err, fmt.Sprintf("Failed to set expiration of %s", i))
			}
		}
	}
	return count, nil
}

package dataset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "modernc.org/sqlite"

	"posecorpus/internal/pose"
	"posecorpus/internal/services"
)

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond

	// rows per transaction while appending
	appendBatchSize = 256

	metaPoseType = "pose_type"
	metaWidth    = "width"
)

// Container is a SQLite file holding one feature matrix per example, keyed
// by a dense zero-based ordinal.
type Container struct {
	db       *sql.DB
	path     string
	writable bool

	tx       *sql.Tx
	pending  int
	count    int
	width    int
	poseType string
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = busyRetryInitialBackoff
	bo.MaxInterval = busyRetryMaxBackoff
	return backoff.Retry(func() error {
		err := op()
		if err != nil && !isSQLiteBusy(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(bo, busyRetryAttempts), ctx))
}

func openDB(path string, pragmas []string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// one connection keeps the append transaction and reads consistent
	db.SetMaxOpenConns(1)
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	return db, nil
}

// Create starts a new empty container at path, replacing any existing file.
func Create(ctx context.Context, path string, poseType pose.Type) (*Container, error) {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, services.Wrap(services.ErrConfiguration, "dataset", "create", p, err)
		}
	}
	db, err := openDB(path, []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	})
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "dataset", "create", path, err)
	}
	c := &Container{db: db, path: path, writable: true, width: -1, poseType: string(poseType)}
	if err := c.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := retryOnBusy(ctx, func() error {
		_, err := c.db.ExecContext(ctx, "INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)", metaPoseType, c.poseType)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("record pose type: %w", err)
	}
	return c, nil
}

// Open opens an existing container for reading.
func Open(ctx context.Context, path string) (*Container, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "dataset", "open", path, err)
	}
	if info.IsDir() {
		return nil, services.Wrap(services.ErrConfiguration, "dataset", "open", path+" is a directory", nil)
	}
	db, err := openDB(path, []string{"PRAGMA busy_timeout = 5000"})
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "dataset", "open", path, err)
	}
	c := &Container{db: db, path: path, width: -1}
	if err := c.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, services.Wrap(services.ErrDataCorruption, "dataset", "open", path, err)
	}
	if err := c.loadMeta(ctx); err != nil {
		_ = db.Close()
		return nil, services.Wrap(services.ErrDataCorruption, "dataset", "open", path, err)
	}
	return c, nil
}

func (c *Container) loadMeta(ctx context.Context) error {
	rows, err := c.db.QueryContext(ctx, "SELECT key, value FROM meta")
	if err != nil {
		return fmt.Errorf("read meta: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return fmt.Errorf("scan meta: %w", err)
		}
		switch key {
		case metaPoseType:
			c.poseType = value
		case metaWidth:
			width, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("meta width %q: %w", value, err)
			}
			c.width = width
		}
	}
	return rows.Err()
}

// Path returns the container file path.
func (c *Container) Path() string { return c.path }

// PoseType returns the pose family recorded when the container was created.
func (c *Container) PoseType() pose.Type { return pose.Type(c.poseType) }

// Width returns the feature width shared by every row, or -1 for an empty
// container.
func (c *Container) Width() int { return c.width }

// Append stores f as the next example.
func (c *Container) Append(ctx context.Context, f pose.Features) error {
	if !c.writable {
		return services.Wrap(services.ErrValidation, "dataset", "append", c.path+" is opened read-only", nil)
	}
	if c.width >= 0 && f.Width != c.width {
		return services.Wrap(services.ErrDataCorruption, "dataset", "append",
			fmt.Sprintf("%s holds width %d, got %d", c.path, c.width, f.Width), nil)
	}
	if c.tx == nil {
		var tx *sql.Tx
		if err := retryOnBusy(ctx, func() error {
			var err error
			tx, err = c.db.BeginTx(ctx, nil)
			return err
		}); err != nil {
			return fmt.Errorf("begin append tx: %w", err)
		}
		c.tx = tx
	}
	if c.width < 0 {
		if _, err := c.tx.ExecContext(ctx, "INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)", metaWidth, strconv.Itoa(f.Width)); err != nil {
			return fmt.Errorf("record width: %w", err)
		}
		c.width = f.Width
	}
	if _, err := c.tx.ExecContext(ctx,
		"INSERT INTO examples (ordinal, frames, width, data) VALUES (?, ?, ?, ?)",
		c.count, f.Frames, f.Width, encodeFeatures(f),
	); err != nil {
		return fmt.Errorf("insert example %d: %w", c.count, err)
	}
	c.count++
	c.pending++
	if c.pending >= appendBatchSize {
		return c.Flush(ctx)
	}
	return nil
}

// Flush commits appended rows.
func (c *Container) Flush(ctx context.Context) error {
	if c.tx == nil {
		return nil
	}
	tx := c.tx
	c.tx = nil
	c.pending = 0
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit examples: %w", err)
	}
	return nil
}

// Count returns the number of stored examples.
func (c *Container) Count(ctx context.Context) (int, error) {
	if err := c.Flush(ctx); err != nil {
		return 0, err
	}
	var n int
	if err := c.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM examples").Scan(&n); err != nil {
		return 0, fmt.Errorf("count examples: %w", err)
	}
	return n, nil
}

// Get returns the example at ordinal.
func (c *Container) Get(ctx context.Context, ordinal int) (pose.Features, error) {
	if err := c.Flush(ctx); err != nil {
		return pose.Features{}, err
	}
	var frames, width int
	var data []byte
	err := c.db.QueryRowContext(ctx, "SELECT frames, width, data FROM examples WHERE ordinal = ?", ordinal).Scan(&frames, &width, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return pose.Features{}, services.Wrap(services.ErrValidation, "dataset", "get",
			fmt.Sprintf("%s has no example %d", c.path, ordinal), nil)
	}
	if err != nil {
		return pose.Features{}, fmt.Errorf("read example %d: %w", ordinal, err)
	}
	f, err := decodeFeatures(frames, width, data)
	if err != nil {
		return pose.Features{}, services.Wrap(services.ErrDataCorruption, "dataset", "get", c.path, err)
	}
	return f, nil
}

// Iterate calls fn for every example in ordinal order.
func (c *Container) Iterate(ctx context.Context, fn func(ordinal int, f pose.Features) error) error {
	if err := c.Flush(ctx); err != nil {
		return err
	}
	rows, err := c.db.QueryContext(ctx, "SELECT ordinal, frames, width, data FROM examples ORDER BY ordinal")
	if err != nil {
		return fmt.Errorf("query examples: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ordinal, frames, width int
		var data []byte
		if err := rows.Scan(&ordinal, &frames, &width, &data); err != nil {
			return fmt.Errorf("scan example: %w", err)
		}
		f, err := decodeFeatures(frames, width, data)
		if err != nil {
			return services.Wrap(services.ErrDataCorruption, "dataset", "iterate",
				fmt.Sprintf("%s example %d", c.path, ordinal), err)
		}
		if err := fn(ordinal, f); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Close commits pending rows and closes the database.
func (c *Container) Close(ctx context.Context) error {
	if c == nil || c.db == nil {
		return nil
	}
	flushErr := c.Flush(ctx)
	closeErr := c.db.Close()
	c.db = nil
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}

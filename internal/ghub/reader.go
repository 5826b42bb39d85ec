package ghub

import (
	"context"
	"database/sql"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// latestSettingsQuery selects the newest configuration blob. G HUB appends a
// row per save, so the highest _id is the current configuration.
const latestSettingsQuery = "SELECT FILE FROM DATA ORDER BY _id DESC LIMIT 1"

// Store reads settings from a G HUB settings database at Path.
type Store struct {
	Path string
}

// NewStore returns a Store for the database at path.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Read returns the newest settings document. See ReadSettings.
func (s *Store) Read(ctx context.Context) (Document, error) {
	return ReadSettings(ctx, s.Path)
}

// ReadSettings opens the settings database at path read-only, fetches the
// most recently written configuration blob and parses it.
//
// A missing file or an empty table yields ErrNotFound, an unparsable blob
// ErrParse and any other database failure ErrQuery. The connection is closed
// before returning.
func ReadSettings(ctx context.Context, path string) (Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNotFound, "no settings file at %s", path)
		}
		return nil, errors.Wrapf(err, "stat %s", path)
	}
	if info.IsDir() {
		return nil, errors.Wrapf(ErrNotFound, "%s is a directory", path)
	}

	dsn, err := readOnlyDSN(path)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrapf(ErrQuery, "open %s: %v", path, err)
	}
	defer func() { _ = conn.Close() }()
	conn.SetMaxOpenConns(1)

	return querySettings(ctx, conn)
}

// querySettings runs latestSettingsQuery against db and parses the result.
func querySettings(ctx context.Context, db *sql.DB) (Document, error) {
	var blob []byte
	err := db.QueryRowContext(ctx, latestSettingsQuery).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrap(ErrNotFound, "settings table is empty")
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errors.Wrapf(ErrQuery, "%v", err)
	}

	return ParseDocument(blob)
}

// readOnlyDSN builds a SQLite URI that opens path in read-only mode.
func readOnlyDSN(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrapf(err, "resolving %s", path)
	}
	p := filepath.ToSlash(abs)
	// Windows drive paths need a leading slash: file:///C:/...
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	u := url.URL{Scheme: "file", Path: p, RawQuery: "mode=ro"}
	return u.String(), nil
}

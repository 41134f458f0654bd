// internal/site/store.go
//
// Content-store selection.
//
// Context
// -------
// `content.driver` picks where documents live:
//
//   • fs     – content.FSStore over content.dir.
//   • mysql  – content.SQLStore over go-sql-driver/mysql.  The DSN is kept in
//              YAML as a template with one `%s` for the password, and the
//              password itself may be a `vault:` reference, keeping
//              credentials out of flat files and git history.
//   • sqlite – content.SQLStore over modernc.org/sqlite; DSN is a file path.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.

package site

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/yanizio/quill/internal/config"
	"github.com/yanizio/quill/internal/content"
	"github.com/yanizio/quill/internal/database"
	"github.com/yanizio/quill/internal/vault"
)

// SecretResolver turns a configured secret (plain or reference) into its
// value.
type SecretResolver func(ctx context.Context, value string) (string, error)

func vaultSecrets(ctx context.Context, value string) (string, error) {
	return vault.Resolve(ctx, value, vault.Lazy(ctx))
}

// OpenStore opens the store named by c.Driver.  db is nil for "fs".
func OpenStore(ctx context.Context, c config.Content, secrets SecretResolver) (content.Store, *sqlx.DB, error) {
	switch c.Driver {
	case "", "fs":
		if fi, err := os.Stat(c.Dir); err != nil || !fi.IsDir() {
			return nil, nil, fmt.Errorf("site: content dir %q is not a directory", c.Dir)
		}
		return content.NewFSStore(c.Dir), nil, nil

	case "mysql", "sqlite":
		dsn := c.DSN
		if strings.Contains(dsn, "%s") {
			if secrets == nil {
				secrets = vaultSecrets
			}
			pw, err := secrets(ctx, c.Password)
			if err != nil {
				return nil, nil, fmt.Errorf("site: content password: %w", err)
			}
			dsn = fmt.Sprintf(dsn, pw)
		}
		db, err := database.OpenWithOptions(ctx, c.Driver, dsn, database.DefaultOptions())
		if err != nil {
			return nil, nil, err
		}
		return content.NewSQLStore(db), db, nil
	}
	return nil, nil, fmt.Errorf("site: unknown content driver %q", c.Driver)
}

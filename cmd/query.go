package cmd

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/sijms/go-ora/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"xorkevin.dev/forgeresult/result"
	"xorkevin.dev/forgeresult/rowset"
	"xorkevin.dev/forgeresult/sqldb"
	"xorkevin.dev/kerrors"
	"xorkevin.dev/klog"
)

type (
	queryFlags struct {
		page     pageFlags
		cacheKey string
		cacheTTL time.Duration
	}
)

func (c *Cmd) getQueryCmd() *cobra.Command {
	queryCmd := &cobra.Command{
		Use:   "query sql [args ...]",
		Short: "Runs a query and writes its rows",
		Long: `Runs a query and writes its rows as JSON lines

The database is selected by the sql.driver and sql.dsn config values. The
oracle driver is built in.

Positional args after the query are passed as query parameters. With --cache
the full result is also cached in redis at the given key for forgeresult dump.`,
		Args:              cobra.MinimumNArgs(1),
		Run:               c.execQuery,
		DisableAutoGenTag: true,
	}
	queryCmd.PersistentFlags().IntVar(&c.queryFlags.page.offset, "offset", 0, "first row to write")
	queryCmd.PersistentFlags().IntVarP(&c.queryFlags.page.limit, "limit", "n", 0, "max number of rows to write (0 for all)")
	queryCmd.PersistentFlags().StringVarP(&c.queryFlags.page.output, "output", "o", "-", "output file (- for stdout)")
	queryCmd.PersistentFlags().StringVar(&c.queryFlags.cacheKey, "cache", "", "redis key to cache the result at")
	queryCmd.PersistentFlags().DurationVar(&c.queryFlags.cacheTTL, "ttl", 0, "expiration of the cached result (0 for none)")
	return queryCmd
}

func (c *Cmd) execQuery(cmd *cobra.Command, args []string) {
	queryArgs := make([]interface{}, 0, len(args)-1)
	for _, i := range args[1:] {
		queryArgs = append(queryArgs, i)
	}
	if err := c.runQuery(cmd.Context(), args[0], queryArgs); err != nil {
		c.logFatal(err)
		return
	}
}

func (c *Cmd) runQuery(ctx context.Context, query string, args []interface{}) error {
	driver := viper.GetString("sql.driver")
	ctx = klog.CtxWithAttrs(ctx, klog.AString("driver", driver))

	db, err := sql.Open(driver, viper.GetString("sql.dsn"))
	if err != nil {
		return kerrors.WithMsg(err, "Failed to open database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			c.log.Err(ctx, kerrors.WithMsg(err, "Failed to close database"))
		}
	}()

	q := sqldb.New(sqldb.Wrap(db), c.logger)
	res, err := q.Query(ctx, result.Assoc(), query, args...)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Close(); err != nil {
			c.log.Err(ctx, kerrors.WithMsg(err, "Failed to close result"))
		}
	}()

	if key := c.queryFlags.cacheKey; key != "" {
		client := c.redisClient()
		defer func() {
			if err := client.Close(); err != nil {
				c.log.Err(ctx, kerrors.WithMsg(err, "Failed to close redis client"))
			}
		}()
		n, err := rowset.StoreRedis(ctx, client, key, res, c.queryFlags.cacheTTL)
		if err != nil {
			return kerrors.WithMsg(err, "Failed to cache result")
		}
		c.log.Info(ctx, "Cached result",
			klog.AString("key", key),
			klog.AAny("rows", n),
		)
	}

	n, err := writeOutput(c.queryFlags.page.output, res, c.queryFlags.page)
	if err != nil {
		return err
	}
	c.log.Debug(ctx, "Wrote rows",
		klog.AAny("rows", n),
		klog.AAny("total", res.Count()),
	)
	return nil
}

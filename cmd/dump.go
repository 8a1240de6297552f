package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"xorkevin.dev/forgeresult/result"
	"xorkevin.dev/forgeresult/rowset"
	"xorkevin.dev/kerrors"
	"xorkevin.dev/klog"
)

type (
	dumpFlags struct {
		page   pageFlags
		delete bool
	}
)

func (c *Cmd) getDumpCmd() *cobra.Command {
	dumpCmd := &cobra.Command{
		Use:   "dump key",
		Short: "Writes the rows of a cached result",
		Long: `Writes the rows of a result cached in redis by forgeresult query --cache as
JSON lines

The redis server is selected by the redis.addr, redis.password, and redis.db
config values.`,
		Args:              cobra.ExactArgs(1),
		Run:               c.execDump,
		DisableAutoGenTag: true,
	}
	dumpCmd.PersistentFlags().IntVar(&c.dumpFlags.page.offset, "offset", 0, "first row to write")
	dumpCmd.PersistentFlags().IntVarP(&c.dumpFlags.page.limit, "limit", "n", 0, "max number of rows to write (0 for all)")
	dumpCmd.PersistentFlags().StringVarP(&c.dumpFlags.page.output, "output", "o", "-", "output file (- for stdout)")
	dumpCmd.PersistentFlags().BoolVar(&c.dumpFlags.delete, "delete", false, "delete the cached result after writing")
	return dumpCmd
}

func (c *Cmd) execDump(cmd *cobra.Command, args []string) {
	if err := c.runDump(cmd.Context(), args[0]); err != nil {
		c.logFatal(err)
		return
	}
}

func (c *Cmd) runDump(ctx context.Context, key string) error {
	ctx = klog.CtxWithAttrs(ctx, klog.AString("key", key))

	client := c.redisClient()
	defer func() {
		if err := client.Close(); err != nil {
			c.log.Err(ctx, kerrors.WithMsg(err, "Failed to close redis client"))
		}
	}()

	rows, err := rowset.OpenRedis(ctx, client, key, rowset.OptRedisDeleteOnFree(c.dumpFlags.delete))
	if err != nil {
		return err
	}
	res := result.New(rows, result.Assoc())
	defer func() {
		if err := res.Close(); err != nil {
			c.log.Err(ctx, kerrors.WithMsg(err, "Failed to close result"))
		}
	}()

	n, err := writeOutput(c.dumpFlags.page.output, res, c.dumpFlags.page)
	if err != nil {
		return err
	}
	c.log.Debug(ctx, "Wrote rows",
		klog.AAny("rows", n),
		klog.AAny("total", res.Count()),
	)
	return nil
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/flowmesh/objectstore/objectstore"
)

// runCommand executes one command against an open store
func runCommand(ctx context.Context, store *objectstore.Store, args []string, out io.Writer) error {
	cmd, args := args[0], args[1:]

	switch cmd {
	case "set":
		if len(args) < 2 || len(args) > 3 {
			return usage("set KEY VALUE [EXPIRES]")
		}
		var expires objectstore.Expiry
		if len(args) == 3 {
			expires = parseExpiryArg(args[2])
		}
		if err := store.Set(ctx, args[0], encodeArg(args[1]), expires); err != nil {
			return err
		}
		return printExpiry(ctx, store, args[0], out)

	case "get":
		if len(args) != 1 {
			return usage("get KEY")
		}
		v, err := objectstore.Lookup[json.RawMessage](ctx, store, args[0])
		if err != nil {
			return err
		}
		raw, ok := v.Get()
		if !ok {
			return fmt.Errorf("key %s not found", args[0])
		}
		fmt.Fprintln(out, string(raw))
		return nil

	case "exists":
		if len(args) != 1 {
			return usage("exists KEY")
		}
		exists, err := store.Exists(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(out, exists)
		return nil

	case "del":
		if len(args) != 1 {
			return usage("del KEY")
		}
		deleted, err := store.Delete(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(out, deleted)
		return nil

	case "expires":
		if len(args) < 1 || len(args) > 2 {
			return usage("expires KEY [EXPIRES]")
		}
		if len(args) == 2 {
			updated, err := store.SetExpires(ctx, args[0], parseExpiryArg(args[1]))
			if err != nil {
				return err
			}
			if !updated {
				return fmt.Errorf("key %s not found", args[0])
			}
		}
		return printExpiry(ctx, store, args[0], out)

	case "keys":
		if len(args) > 1 {
			return usage("keys [PREFIX]")
		}
		prefix := ""
		if len(args) == 1 {
			prefix = args[0]
		}
		keys, err := store.Keys(ctx, prefix)
		if err != nil {
			return err
		}
		for _, key := range keys {
			fmt.Fprintln(out, key)
		}
		return nil

	case "sweep":
		removed, err := store.DeleteOld(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "removed %d stale records\n", removed)
		return nil

	case "stats":
		n, err := store.Len(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "records: %s\n", humanize.Comma(int64(n)))
		if info, err := os.Stat(store.Location()); err == nil {
			fmt.Fprintf(out, "size: %s\n", humanize.Bytes(uint64(info.Size())))
		}
		return nil

	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func usage(synopsis string) error {
	return fmt.Errorf("usage: objstore [flags] %s", synopsis)
}

// encodeArg keeps JSON arguments as is and stores anything else as a JSON
// string, so values round-trip through both codecs as json.RawMessage
func encodeArg(arg string) json.RawMessage {
	if json.Valid([]byte(arg)) {
		return json.RawMessage(arg)
	}
	quoted, _ := json.Marshal(arg)
	return json.RawMessage(quoted)
}

// parseExpiryArg reads an all-digit argument as a Unix timestamp and
// anything else as an expression
func parseExpiryArg(arg string) objectstore.Expiry {
	if sec, err := strconv.ParseInt(arg, 10, 64); err == nil {
		return objectstore.Unix(sec)
	}
	return objectstore.In(arg)
}

func printExpiry(ctx context.Context, store *objectstore.Store, key string, out io.Writer) error {
	expires, err := store.GetExpires(ctx, key)
	if err != nil {
		return err
	}
	t, ok := expires.Get()
	if !ok {
		return fmt.Errorf("key %s not found", key)
	}
	fmt.Fprintf(out, "%s expires %s (%s)\n", key, t.Format(time.RFC3339), humanize.Time(t))
	return nil
}

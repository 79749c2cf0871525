package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/lintang-b-s/minirel/lib"
	"github.com/lintang-b-s/minirel/lib/buffer"
	"github.com/lintang-b-s/minirel/lib/index"
	"github.com/lintang-b-s/minirel/lib/page"
	"github.com/lintang-b-s/minirel/types"
)

type inspectConfig struct {
	rel     string
	indexNo int
	tree    bool
	leaves  bool
	pool    bool
}

func main() {
	lib.ConfigureLogging()
	opts, err := lib.OptionsFromEnv()
	if err != nil {
		slog.Error("invalid options", "err", err)
		os.Exit(1)
	}

	var cfg inspectConfig
	flag.StringVar(&opts.DBDir, "dir", opts.DBDir, "database directory")
	flag.IntVar(&opts.PageSize, "page-size", opts.PageSize, "page size the index was built with")
	flag.StringVar(&cfg.rel, "rel", "fake", "relation name")
	flag.IntVar(&cfg.indexNo, "index", 0, "index number")
	flag.BoolVar(&cfg.tree, "tree", false, "print every node depth first")
	flag.BoolVar(&cfg.leaves, "leaves", false, "print the leaf chain")
	flag.BoolVar(&cfg.pool, "pool", false, "print buffer pool frames after the walk")
	flag.Parse()

	if err := opts.Validate(); err != nil {
		slog.Error("invalid options", "err", err)
		os.Exit(2)
	}
	if err := inspect(os.Stdout, opts, cfg); err != nil {
		slog.Error("inspect failed", "err", err)
		os.Exit(1)
	}
}

func inspect(w io.Writer, opts *lib.Options, cfg inspectConfig) (err error) {
	pool := buffer.NewBufferPool(opts.BufferPoolSize, opts.PageSize)
	store, err := page.NewStore(opts, pool)
	if err != nil {
		return err
	}
	m := index.NewManager(store, opts)

	id, err := m.OpenIndex(cfg.rel, cfg.indexNo)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := m.CloseIndex(id); cerr != nil && err == nil {
			err = cerr
		}
	}()
	idx, err := m.Index(id)
	if err != nil {
		return err
	}

	h := idx.Header()
	info, err := os.Stat(lib.DBPath(opts.DBDir, idx.Name()))
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "index      %s (%s)\n", idx.Name(), humanize.Bytes(uint64(info.Size())))
	fmt.Fprintf(w, "key        %s(%d)\n", h.AttrType, h.AttrLength)
	fmt.Fprintf(w, "maxKeys    %d\n", h.MaxKeys)
	fmt.Fprintf(w, "nodes      %s\n", humanize.Comma(int64(h.NumNodes)))
	fmt.Fprintf(w, "records    %s\n", humanize.Comma(int64(h.NumRecs)))
	fmt.Fprintf(w, "root       %d\n", h.Root.PageNum)

	var leaves, levels int
	err = m.Walk(id, func(n index.NodeInfo) error {
		if n.Leaf {
			leaves++
		}
		levels = max(levels, n.Level+1)
		if cfg.tree {
			fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", n.Level), describe(n, h.AttrType))
		}
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "height     %d\n", levels)
	fmt.Fprintf(w, "leaves     %s\n", humanize.Comma(int64(leaves)))

	if cfg.leaves {
		err = m.Leaves(id, func(n index.NodeInfo) error {
			fmt.Fprintln(w, describe(n, h.AttrType))
			return nil
		})
		if err != nil {
			return err
		}
	}
	if cfg.pool {
		pool.Dump(w)
	}
	return nil
}

func describe(n index.NodeInfo, attrType types.AttrType) string {
	keys := make([]string, 0, len(n.Keys))
	for _, k := range n.Keys {
		keys = append(keys, index.FormatKey(k, attrType))
	}
	if !n.Leaf {
		return fmt.Sprintf("node %d parent %d keys [%s] children %v", n.PageNum, n.Parent, strings.Join(keys, " "), n.Children)
	}
	kind := "leaf"
	if n.Dup {
		kind = "dup leaf"
	}
	return fmt.Sprintf("%s %d parent %d prev %d next %d keys [%s]", kind, n.PageNum, n.Parent, n.Prev, n.Next, strings.Join(keys, " "))
}

package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/dustin/go-humanize"
	"github.com/lintang-b-s/minirel/lib"
	"github.com/lintang-b-s/minirel/lib/buffer"
	"github.com/lintang-b-s/minirel/lib/index"
	"github.com/lintang-b-s/minirel/lib/page"
	"github.com/lintang-b-s/minirel/lib/util"
	"github.com/lintang-b-s/minirel/types"
)

type loadConfig struct {
	rel      string
	indexNo  int
	attrType types.AttrType
	attrLen  int
	records  int
	workers  int
	seed     uint64
}

type record struct {
	key []byte
	rid types.RecordID
}

type loadStats struct {
	inserted int
	rejected int
	scanned  int
	elapsed  time.Duration
	fileSize int64
	pool     buffer.Stats
}

func main() {
	lib.ConfigureLogging()

	opts, err := lib.OptionsFromEnv()
	if err != nil {
		slog.Error("invalid options", "err", err)
		os.Exit(1)
	}

	var (
		cfg     loadConfig
		keyType string
		attrLen int
		seed    int64
	)
	pageSize := flag.Int("page-size", opts.PageSize, "page size in bytes")
	flag.StringVar(&opts.DBDir, "dir", opts.DBDir, "database directory")
	flag.StringVar(&cfg.rel, "rel", "fake", "relation name, the index file is <rel>.<index>")
	flag.IntVar(&cfg.indexNo, "index", 0, "index number")
	flag.StringVar(&keyType, "type", "int", "key type: int, real or string")
	flag.IntVar(&attrLen, "len", 16, "key length for string keys")
	flag.IntVar(&cfg.records, "n", 100000, "number of fake records")
	flag.IntVar(&cfg.workers, "workers", runtime.NumCPU(), "key encoding workers")
	flag.Int64Var(&seed, "seed", 0, "fake data seed")
	flag.Parse()

	opts.PageSize = *pageSize
	cfg.seed = uint64(seed)
	switch keyType {
	case "int":
		cfg.attrType, cfg.attrLen = types.IntType, 4
	case "real":
		cfg.attrType, cfg.attrLen = types.RealType, 4
	case "string":
		cfg.attrType, cfg.attrLen = types.StringType, attrLen
	default:
		slog.Error("unknown key type", "type", keyType)
		os.Exit(2)
	}
	if err := opts.Validate(); err != nil {
		slog.Error("invalid options", "err", err)
		os.Exit(2)
	}

	stats, err := bulkLoad(opts, cfg)
	if err != nil {
		slog.Error("bulk load failed", "err", err)
		os.Exit(1)
	}

	fmt.Printf("inserted %s records (%s rejected) in %v\n",
		humanize.Comma(int64(stats.inserted)), humanize.Comma(int64(stats.rejected)), stats.elapsed)
	fmt.Printf("full scan returned %s records, index file %s\n",
		humanize.Comma(int64(stats.scanned)), humanize.Bytes(uint64(stats.fileSize)))
	fmt.Printf("buffer pool: %d frames, %d resident, %d dirty\n",
		stats.pool.Frames, stats.pool.Resident, stats.pool.Dirty)
}

// bulkLoad. worker membuat key fake secara paralel, satu goroutine (caller) melakukan semua insert.
func bulkLoad(opts *lib.Options, cfg loadConfig) (stats loadStats, err error) {
	if err := os.MkdirAll(opts.DBDir, 0755); err != nil {
		return stats, err
	}
	pool := buffer.NewBufferPool(opts.BufferPoolSize, opts.PageSize)
	store, err := page.NewStore(opts, pool)
	if err != nil {
		return stats, err
	}
	m := index.NewManager(store, opts)

	if m.IndexExists(cfg.rel, cfg.indexNo) {
		if err := m.DestroyIndex(cfg.rel, cfg.indexNo); err != nil {
			return stats, err
		}
	}
	if err := m.CreateIndex(cfg.rel, cfg.indexNo, cfg.attrType, cfg.attrLen, false); err != nil {
		return stats, err
	}
	id, err := m.OpenIndex(cfg.rel, cfg.indexNo)
	if err != nil {
		return stats, err
	}
	defer func() {
		if cerr := m.CloseIndex(id); cerr != nil && err == nil {
			err = cerr
		}
		if err == nil {
			stats.fileSize, err = indexFileSize(opts, cfg)
		}
	}()
	idx, err := m.Index(id)
	if err != nil {
		return stats, err
	}

	start := time.Now()
	wp := util.NewWorkerPool[util.Job[int], record](max(cfg.workers, 1), 1024)
	wp.Start(cfg.fakeRecord)
	go func() {
		for i := 0; i < cfg.records; i++ {
			wp.AddJob(util.Job[int]{ID: i, JobItem: i})
		}
		wp.CloseQueue()
		wp.Wait()
	}()

	var loadErr error
	for rec := range wp.CollectResults() {
		if loadErr != nil {
			continue
		}
		err := idx.Insert(rec.key, rec.rid)
		switch {
		case err == nil:
			stats.inserted++
		case errors.Is(err, index.ErrTooManyRecordsPerKey), errors.Is(err, index.ErrDuplicateRecordID):
			stats.rejected++
		default:
			loadErr = err
		}
		if n := stats.inserted + stats.rejected; n%50000 == 0 {
			slog.Info("bulk load progress", "records", humanize.Comma(int64(n)), "elapsed", time.Since(start))
		}
	}
	if loadErr != nil {
		return stats, loadErr
	}
	stats.elapsed = time.Since(start)

	if stats.scanned, err = countEntries(m, id); err != nil {
		return stats, err
	}
	stats.pool = pool.Stats()
	slog.Info("index built", "index", idx.Name(), "nodes", idx.Header().NumNodes, "records", idx.Header().NumRecs)
	return stats, nil
}

// fakeRecord. key fake untuk record ke job.ID. setiap job punya faker sendiri.
func (cfg loadConfig) fakeRecord(job util.Job[int]) record {
	faker := gofakeit.New(cfg.seed + uint64(job.ID))
	var key []byte
	switch cfg.attrType {
	case types.IntType:
		key = index.IntKey(int32(faker.IntRange(-1<<30, 1<<30)))
	case types.RealType:
		key = index.RealKey(faker.Float32Range(-1e6, 1e6))
	default:
		key = index.StringKey(faker.Name(), cfg.attrLen)
	}
	return record{
		key: key,
		rid: types.NewRecordID(int32(job.ID/100), int32(job.ID%100)),
	}
}

func countEntries(m *index.Manager, id int) (int, error) {
	sd, err := m.OpenScan(id, index.EQ, nil)
	if err != nil {
		return 0, err
	}
	defer m.CloseScan(sd)

	n := 0
	for {
		_, err := m.FindNext(sd)
		if errors.Is(err, index.ErrEOF) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		n++
	}
}

func indexFileSize(opts *lib.Options, cfg loadConfig) (int64, error) {
	info, err := os.Stat(lib.DBPath(opts.DBDir, lib.IndexFileName(cfg.rel, cfg.indexNo)))
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Command rotbldump inspects a rotbl file from the command line.
//
// Usage:
//
//	rotbldump --file=<path> [options]
//
// Commands:
//
//	scan         Dump the table: overview, block index, then every key-value pair in key order
//	get          Look up a single key
//	stat         Show summary statistics and meta
//
// Reference: aalhour/rockyardkv cmd/sstdump/main.go for the overall
// flag-driven, single-binary-multi-command CLI shape.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/drmingdrmer/rotbl"
	"github.com/drmingdrmer/rotbl/internal/storage"
)

var (
	filePath = flag.String("file", "", "Path to the rotbl file (required)")
	command  = flag.String("command", "scan", "Command: scan, get, stat")
	key      = flag.String("key", "", "Key to look up (for --command=get)")
	limit    = flag.Int("limit", 0, "Limit number of output lines for scan (0 = unlimited)")
	help     = flag.Bool("help", false, "Print help")
)

func main() {
	flag.Parse()

	if *help {
		printUsage()
		return
	}
	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "Error: --file flag is required")
		printUsage()
		os.Exit(1)
	}

	store := storage.NewFS()
	tbl, err := rotbl.Open(store, *filePath, rotbl.DefaultConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "open %s: %v\n", *filePath, err)
		os.Exit(1)
	}
	defer tbl.Close()

	switch *command {
	case "scan":
		err = cmdScan(tbl)
	case "get":
		err = cmdGet(tbl)
	case "stat":
		err = cmdStat(tbl)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", *command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func cmdScan(tbl *rotbl.Table) error {
	n := 0
	for line, err := range tbl.Dump() {
		if err != nil {
			return fmt.Errorf("dump: %w", err)
		}
		fmt.Println(line)
		n++
		if *limit > 0 && n >= *limit {
			break
		}
	}
	return nil
}

func cmdGet(tbl *rotbl.Table) error {
	if *key == "" {
		return fmt.Errorf("--key is required for --command=get")
	}
	v, err := tbl.Get(*key)
	if err != nil {
		return err
	}
	if v.IsTombstone() {
		fmt.Printf("%s -> <tombstone@%d>\n", *key, v.Seq())
		return nil
	}
	data, _ := v.IntoData()
	fmt.Printf("%s -> %q@%d\n", *key, data, v.Seq())
	return nil
}

func cmdStat(tbl *rotbl.Table) error {
	meta := tbl.Meta()
	stat := tbl.Stat()
	fmt.Printf("table_id: %d\n", tbl.TableID())
	fmt.Printf("seq: %d\n", meta.Seq())
	fmt.Printf("user_data: %s\n", meta.UserData())
	fmt.Printf("block_num: %d\n", stat.BlockNum)
	fmt.Printf("key_num: %d\n", stat.KeyNum)
	fmt.Printf("data_size: %d\n", stat.DataSize)
	fmt.Printf("index_size: %d\n", stat.IndexSize)
	fmt.Printf("block_avg_size: %d\n", stat.BlockAvgSize())
	fmt.Printf("file_size: %d\n", tbl.FileSize())
	return nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: rotbldump --file=<path> [--command=scan|get|stat] [--key=<key>] [--limit=<n>]")
	flag.PrintDefaults()
}

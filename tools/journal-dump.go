package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/klauspost/compress/zstd"
)

func check(err error) {
	if err != nil {
		panic(err)
	}
}

// Prints the events of one or more journal files (state/journal/*.jsonl.zst)
// as plain JSON lines, or counts them by kind with -summary.
func main() {
	kind := flag.String("kind", "", "only events of this kind (dig, vein, refuel, ...)")
	summary := flag.Bool("summary", false, "print event counts per kind and block instead of events")
	flag.Parse()
	counts := map[string]int{}
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()
	for _, path := range flag.Args() {
		f, err := os.Open(path)
		check(err)
		dec, err := zstd.NewReader(f)
		check(err)
		sc := bufio.NewScanner(dec)
		sc.Buffer(make([]byte, 64*1024), 1024*1024)
		for sc.Scan() {
			var ev struct {
				Kind  string `json:"kind"`
				Name  string `json:"name"`
				Count int    `json:"count"`
			}
			if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
				fmt.Fprintf(os.Stderr, "%s: bad line: %v\n", path, err)
				continue
			}
			if *kind != "" && ev.Kind != *kind {
				continue
			}
			if *summary {
				key := ev.Kind
				if ev.Name != "" {
					key += " " + ev.Name
				}
				n := ev.Count
				if n == 0 {
					n = 1
				}
				counts[key] += n
				continue
			}
			out.Write(sc.Bytes())
			out.WriteByte('\n')
		}
		check(sc.Err())
		dec.Close()
		f.Close()
	}
	if *summary {
		keys := make([]string, 0, len(counts))
		for k := range counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(out, "%8d %s\n", counts[k], k)
		}
	}
}

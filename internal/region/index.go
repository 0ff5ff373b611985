package region

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Index maps region names to every Region carrying that name across the
// samples tree. Name collisions are preserved here and surface as Ambiguous
// at resolution time; the index never picks a winner. An Index is read-only
// once built.
type Index struct {
	byName     map[string][]Region
	structural []FileError
}

// Lookup returns every region named name, sorted by file then start line.
func (x *Index) Lookup(name string) []Region {
	return x.byName[name]
}

// Regions returns all indexed regions sorted by file then start line.
func (x *Index) Regions() []Region {
	var all []Region
	for _, rs := range x.byName {
		all = append(all, rs...)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].File != all[j].File {
			return all[i].File < all[j].File
		}
		return all[i].StartLine < all[j].StartLine
	})
	return all
}

// Structural returns per-file indexing errors sorted by file then line.
func (x *Index) Structural() []FileError {
	return x.structural
}

// Scan walks the samples tree rooted at root and indexes every region.
// Files are scanned in parallel, bounded by workers (<=0 means NumCPU);
// results are merged and sorted so the index is deterministic regardless of
// completion order. An unreadable root is fatal; unreadable or malformed
// individual files become FileErrors.
func Scan(ctx context.Context, root string, syn *Syntax, workers int) (*Index, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil // unreadable entries are skipped, not fatal
		}
		if d.IsDir() {
			if name := d.Name(); path != root && (strings.HasPrefix(name, ".") || name == "bin" || name == "obj") {
				return filepath.SkipDir
			}
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning samples tree %s: %w", root, err)
	}

	idx := &Index{byName: make(map[string][]Region)}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, path := range files {
		path := path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				rel = path
			}
			rel = filepath.ToSlash(rel)

			data, readErr := os.ReadFile(path)
			if readErr != nil {
				mu.Lock()
				idx.structural = append(idx.structural, FileError{File: rel, Msg: readErr.Error()})
				mu.Unlock()
				return nil
			}

			regions, errs := scanFile(rel, string(data), syn)
			mu.Lock()
			for _, r := range regions {
				idx.byName[r.Name] = append(idx.byName[r.Name], r)
			}
			idx.structural = append(idx.structural, errs...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for name := range idx.byName {
		rs := idx.byName[name]
		sort.Slice(rs, func(i, j int) bool {
			if rs[i].File != rs[j].File {
				return rs[i].File < rs[j].File
			}
			return rs[i].StartLine < rs[j].StartLine
		})
	}
	sort.Slice(idx.structural, func(i, j int) bool {
		if idx.structural[i].File != idx.structural[j].File {
			return idx.structural[i].File < idx.structural[j].File
		}
		return idx.structural[i].Line < idx.structural[j].Line
	})

	return idx, nil
}

type openRegion struct {
	name      string
	startLine int // 1-based line of the start delimiter
}

// scanFile extracts regions from one file's text. Regions may nest, but a
// nested region reusing an enclosing region's name is an ambiguous boundary
// and a hard error, as is a second region with a name already used in the
// same file. Delimiter lines are excluded from content.
func scanFile(rel, text string, syn *Syntax) ([]Region, []FileError) {
	var (
		regions []Region
		errs    []FileError
		stack   []openRegion
		seen    = map[string]bool{}
	)

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if m := syn.Start.FindStringSubmatch(line); m != nil {
			name := m[1]
			if onStack(stack, name) {
				errs = append(errs, FileError{
					File: rel, Line: i + 1,
					Msg: fmt.Sprintf("region %q nested inside a region of the same name", name),
				})
				continue
			}
			if seen[name] {
				errs = append(errs, FileError{
					File: rel, Line: i + 1,
					Msg: fmt.Sprintf("region %q defined more than once in this file", name),
				})
				continue
			}
			seen[name] = true
			stack = append(stack, openRegion{name: name, startLine: i + 1})
			continue
		}

		if syn.End.MatchString(line) {
			if len(stack) == 0 {
				errs = append(errs, FileError{
					File: rel, Line: i + 1,
					Msg: "region end with no open region",
				})
				continue
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			regions = append(regions, Region{
				File:      rel,
				Name:      open.name,
				StartLine: open.startLine + 1,
				EndLine:   i,
				Content:   strings.Join(lines[open.startLine:i], "\n"),
			})
			continue
		}
	}

	for _, open := range stack {
		errs = append(errs, FileError{
			File: rel, Line: open.startLine,
			Msg: fmt.Sprintf("region %q has no matching end before end of file", open.name),
		})
	}

	return regions, errs
}

func onStack(stack []openRegion, name string) bool {
	for _, o := range stack {
		if o.name == name {
			return true
		}
	}
	return false
}

package reviews

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// LoadOptions restrict which source files a Load takes in.
type LoadOptions struct {
	Filter Filter
	Years  []int // calendar years of source directories; empty keeps all
}

// sourceFile is one event stream file found under the root.
type sourceFile struct {
	path     string
	category Category
	year     int
	tag      string
	yaml     bool
}

// Load builds the portfolio from a directory tree laid out as
// <root>/<Category>/<year>/[<tag>/]<files>, where Category is ISA, Taxable
// or Pension and year is the four digit calendar year the records belong
// to. Files are .jsonl event streams or .yaml hand-written notes; notes
// load after every stream of the same vintage, since they usually patch
// events the exports missed. Cross-account transfers are detected once the
// whole tree is in.
func Load(root string, opts LoadOptions) (*Portfolio, error) {
	if err := opts.Filter.Validate(); err != nil {
		return nil, err
	}
	files, err := discover(root, opts)
	if err != nil {
		return nil, err
	}

	// process in vintage order; notes go last within each vintage
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].year != files[j].year {
			return files[i].year < files[j].year
		}
		return !files[i].yaml && files[j].yaml
	})

	b := NewBuilder()
	for _, f := range files {
		events, err := loadFile(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.path, err)
		}
		slog.Debug("loaded events", "file", f.path, "events", len(events))
		b.Add(f.category, f.tag, events...)
	}

	p := b.Build()
	p.DetectTransfers()
	slog.Info("portfolio loaded", "root", root, "files", len(files), "ledgers", p.Len())
	return p, nil
}

func loadFile(f sourceFile) ([]Event, error) {
	r, err := os.Open(f.path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	if f.yaml {
		return DecodeYAMLNotes(r)
	}
	return DecodeEvents(r)
}

// discover walks the fixed depth tree and collects recognized files that
// pass the filters.
func discover(root string, opts LoadOptions) ([]sourceFile, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading portfolio root: %w", err)
	}

	var files []sourceFile
	for _, catDir := range entries {
		if !catDir.IsDir() {
			continue
		}
		category, err := ParseCategory(catDir.Name())
		if err != nil {
			slog.Debug("skipping directory, not an account category", "dir", catDir.Name())
			continue
		}
		if len(opts.Filter.Categories) > 0 && !slices.Contains(opts.Filter.Categories, category) {
			continue
		}

		catPath := filepath.Join(root, catDir.Name())
		yearDirs, err := os.ReadDir(catPath)
		if err != nil {
			return nil, err
		}
		for _, yearDir := range yearDirs {
			year, ok := parseYearDir(yearDir.Name())
			if !yearDir.IsDir() || !ok {
				slog.Debug("skipping entry, not a year directory",
					"category", category, "entry", yearDir.Name())
				continue
			}
			if len(opts.Years) > 0 && !slices.Contains(opts.Years, year) {
				continue
			}

			yearPath := filepath.Join(catPath, yearDir.Name())
			inner, err := os.ReadDir(yearPath)
			if err != nil {
				return nil, err
			}
			for _, e := range inner {
				if e.IsDir() {
					// tag directory
					tag := e.Name()
					if !matchTag(opts.Filter, tag) {
						continue
					}
					tagged, err := os.ReadDir(filepath.Join(yearPath, tag))
					if err != nil {
						return nil, err
					}
					for _, f := range tagged {
						if f.IsDir() {
							continue
						}
						files = appendSource(files, filepath.Join(yearPath, tag, f.Name()), category, year, tag)
					}
					continue
				}
				if !matchTag(opts.Filter, "") {
					continue
				}
				files = appendSource(files, filepath.Join(yearPath, e.Name()), category, year, "")
			}
		}
	}
	return files, nil
}

func appendSource(files []sourceFile, path string, category Category, year int, tag string) []sourceFile {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl":
		return append(files, sourceFile{path: path, category: category, year: year, tag: tag})
	case ".yaml", ".yml":
		return append(files, sourceFile{path: path, category: category, year: year, tag: tag, yaml: true})
	default:
		slog.Debug("skipping file, not an event stream", "file", path)
		return files
	}
}

func parseYearDir(name string) (int, bool) {
	if len(name) != 4 {
		return 0, false
	}
	year, err := strconv.Atoi(name)
	if err != nil {
		return 0, false
	}
	return year, true
}

func matchTag(f Filter, tag string) bool {
	if tag == "" {
		tag = noTag
	}
	if len(f.IncludeTags) > 0 && !slices.Contains(f.IncludeTags, tag) {
		return false
	}
	return !slices.Contains(f.ExcludeTags, tag)
}

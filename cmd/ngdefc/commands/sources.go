package commands

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"ngdefc/internal/metadata"
	"ngdefc/internal/pipeline"
)

var documentExtensions = map[string]bool{".yaml": true, ".yml": true, ".json": true}

// expandPaths replaces every directory argument with the metadata documents
// found below it, in lexical order.
func expandPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		if arg == "-" {
			paths = append(paths, arg)
			continue
		}
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != arg && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if documentExtensions[strings.ToLower(filepath.Ext(path))] {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", arg, err)
		}
	}
	return paths, nil
}

func readSources(args []string) ([]pipeline.Source, error) {
	paths, err := expandPaths(args)
	if err != nil {
		return nil, err
	}
	sources := make([]pipeline.Source, 0, len(paths))
	for _, path := range paths {
		data, err := metadata.ReadSource(path)
		if err != nil {
			return nil, err
		}
		sources = append(sources, pipeline.Source{Path: path, Data: data})
	}
	return sources, nil
}

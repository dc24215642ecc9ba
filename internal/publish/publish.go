package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"tugestor-cli/internal/model"
)

type WriteOptions struct {
	IncludeDone bool
	Overwrite   bool
}

type WriteResult struct {
	Written []string `json:"written"`
}

// WriteTasks writes index.md plus one tasks/<id>.md page per task under toDir.
func WriteTasks(tasks []model.Task, cats []model.Category, toDir string, opt WriteOptions) (WriteResult, error) {
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	toDir = filepath.Clean(toDir)

	tasksDir := filepath.Join(toDir, "tasks")
	if err := os.MkdirAll(tasksDir, 0o755); err != nil {
		return WriteResult{}, err
	}

	ropt := RenderOptions{IncludeDone: opt.IncludeDone}
	indexPath := filepath.Join(toDir, "index.md")
	if err := writeFile(indexPath, []byte(RenderIndexMarkdown(tasks, cats, ropt)), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}

	// Stop on first error.
	written := []string{indexPath}
	for _, t := range filterTasks(tasks, ropt) {
		p := filepath.Join(tasksDir, strconv.FormatInt(t.ID, 10)+".md")
		if err := writeFile(p, []byte(RenderTaskMarkdown(t)), opt.Overwrite); err != nil {
			return WriteResult{}, err
		}
		written = append(written, p)
	}
	return WriteResult{Written: written}, nil
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}

// Package selector lists candidate videos and asks the user to pick one.
package selector

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	DefaultDir       = "./to_transcribe"
	DefaultExtension = ".mp4"

	Prompt = "Enter the number of the video file to translate: "
)

// Candidates returns the files in dir with the given extension, sorted by name.
func Candidates(dir, ext string) ([]string, error) {
	if strings.TrimSpace(dir) == "" {
		dir = DefaultDir
	}
	ext = normalizeExt(ext)

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("read input directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input path %s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s files in %s: %w", ext, dir, err)
	}

	// Only names are matched; dir itself may contain glob metacharacters.
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), ext) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		fi, err := os.Stat(path)
		if err != nil || fi.IsDir() {
			continue
		}
		files = append(files, path)
	}
	sort.Strings(files)
	return files, nil
}

// Selector picks one video from Dir by asking the user for its number.
type Selector struct {
	Dir       string
	Extension string
	Logger    *zap.Logger
}

// New returns a Selector over dir for files ending in ext.
func New(dir, ext string, logger *zap.Logger) *Selector {
	return &Selector{Dir: dir, Extension: ext, Logger: logger}
}

// Select lists the candidates, prompts on out and reads one line from in.
// It returns the chosen path, or "" when nothing valid was selected.
func (s *Selector) Select(in io.Reader, out io.Writer) string {
	log := s.log()
	log.Info("selecting target")

	files, err := Candidates(s.Dir, s.Extension)
	if err != nil {
		log.Error("failed to list video files", zap.Error(err))
		return ""
	}

	return s.choose(files, in, out)
}

func (s *Selector) choose(files []string, in io.Reader, out io.Writer) string {
	log := s.log()
	if len(files) == 0 {
		log.Error("no video files found to transcribe", zap.String("dir", s.Dir), zap.String("extension", normalizeExt(s.Extension)))
		return ""
	}

	log.Info("available video files:")
	for i, file := range files {
		log.Info(fmt.Sprintf("%d: %s", i+1, filepath.Base(file)))
	}

	if out != nil {
		fmt.Fprint(out, Prompt)
	}

	line, err := readLine(in)
	if err != nil {
		log.Error("invalid input", zap.Error(err))
		return ""
	}

	index, err := strconv.Atoi(line)
	if err != nil {
		log.Error("invalid input", zap.String("input", line))
		return ""
	}

	if index < 1 || index > len(files) {
		log.Error("invalid selection", zap.Int("selection", index), zap.Int("available", len(files)))
		return ""
	}

	target := files[index-1]
	log.Info("target selected", zap.String("target", target))
	return target
}

// List writes the 1-based numbered candidate list to out.
func (s *Selector) List(out io.Writer) (int, error) {
	files, err := Candidates(s.Dir, s.Extension)
	if err != nil {
		return 0, err
	}
	for i, file := range files {
		if _, err := fmt.Fprintf(out, "%d: %s\n", i+1, filepath.Base(file)); err != nil {
			return 0, err
		}
	}
	return len(files), nil
}

func (s *Selector) log() *zap.Logger {
	if s == nil || s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func readLine(in io.Reader) (string, error) {
	if in == nil {
		return "", errors.New("no input available")
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	if errors.Is(err, io.EOF) && line == "" {
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimSpace(line), nil
}

func normalizeExt(ext string) string {
	ext = strings.TrimSpace(ext)
	if ext == "" {
		return DefaultExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

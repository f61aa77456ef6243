package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/YatinKare/DesignDual/internal/model"
)

var canvasExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

var audioExtensions = map[string]bool{
	".webm": true,
	".mp3":  true,
	".wav":  true,
	".m4a":  true,
	".ogg":  true,
}

// Store writes submission artifacts to local disk under one directory per
// submission.
type Store struct {
	baseDir        string
	maxCanvasBytes int64
	maxAudioBytes  int64
}

// NewStore creates the artifact store rooted at baseDir.
func NewStore(baseDir string, maxCanvasMB, maxAudioMB int) *Store {
	return &Store{
		baseDir:        baseDir,
		maxCanvasBytes: int64(maxCanvasMB) * 1024 * 1024,
		maxAudioBytes:  int64(maxAudioMB) * 1024 * 1024,
	}
}

// SaveCanvas stores one phase's whiteboard snapshot and returns its path.
func (s *Store) SaveCanvas(submissionID string, phase model.PhaseName, file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !canvasExtensions[ext] {
		return "", fmt.Errorf("unsupported canvas format %q, expected png or jpeg", ext)
	}
	if file.Size > s.maxCanvasBytes {
		return "", fmt.Errorf("canvas for phase %s exceeds %dMB limit", phase, s.maxCanvasBytes/(1024*1024))
	}
	return s.save(submissionID, fmt.Sprintf("canvas_%s%s", phase, ext), file)
}

// SaveAudio stores one phase's narration recording and returns its path.
func (s *Store) SaveAudio(submissionID string, phase model.PhaseName, file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !audioExtensions[ext] {
		return "", fmt.Errorf("unsupported audio format %q", ext)
	}
	if file.Size > s.maxAudioBytes {
		return "", fmt.Errorf("audio for phase %s exceeds %dMB limit", phase, s.maxAudioBytes/(1024*1024))
	}
	return s.save(submissionID, fmt.Sprintf("audio_%s%s", phase, ext), file)
}

func (s *Store) save(submissionID, name string, file *multipart.FileHeader) (string, error) {
	dir := filepath.Join(s.baseDir, submissionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	path := filepath.Join(dir, name)
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// Remove deletes all artifacts for a submission.
func (s *Store) Remove(submissionID string) error {
	return os.RemoveAll(filepath.Join(s.baseDir, submissionID))
}

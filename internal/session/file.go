package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Shravani-Dhumal/Verifixia/internal/common/config"
	"github.com/Shravani-Dhumal/Verifixia/internal/common/errors"
	"github.com/Shravani-Dhumal/Verifixia/internal/common/logger"
	"github.com/Shravani-Dhumal/Verifixia/internal/models"
)

// DefaultFileName is the on-disk analog of the browser storage key the
// product has always used for its session.
const DefaultFileName = "verifixia_auth_session.json"

// FileStore persists the session as one JSON file. Writes are atomic
// (temp file + rename); readers in other processes observe changes through
// a modification-time poll, the cross-process analog of a storage event.
type FileStore struct {
	path string
	poll time.Duration
	log  logger.Logger
	now  func() time.Time

	notifier *notifier

	mu        sync.Mutex
	watchStop chan struct{}
	lastStamp fileStamp
}

type fileStamp struct {
	modTime time.Time
	size    int64
	exists  bool
}

// NewFileStore builds a store over cfg.Path, defaulting to
// verifixia_auth_session.json under the user config directory.
func NewFileStore(cfg config.FileConfig, log logger.Logger) (*FileStore, error) {
	path := cfg.Path
	if path == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			base = os.TempDir()
		}
		path = filepath.Join(base, "verifixia", DefaultFileName)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.NewSessionStorageError(err)
	}

	fs := &FileStore{
		path:     path,
		poll:     cfg.PollInterval(),
		log:      log.WithFields(map[string]interface{}{"store": "file"}),
		now:      time.Now,
		notifier: newNotifier(),
	}
	fs.lastStamp = fs.stat()
	return fs, nil
}

// Path returns the backing file location.
func (fs *FileStore) Path() string { return fs.path }

func (fs *FileStore) Read() *models.Session {
	raw, err := os.ReadFile(fs.path)
	if err != nil {
		return nil
	}

	var s models.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		fs.log.Debug("discarding corrupt session file", map[string]interface{}{
			"path":  fs.path,
			"error": err.Error(),
		})
		return nil
	}

	if !s.Valid(fs.now()) {
		return nil
	}
	return &s
}

func (fs *FileStore) Write(s *models.Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return errors.NewSessionStorageError(err)
	}

	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return errors.NewSessionStorageError(err)
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		return errors.NewSessionStorageError(err)
	}

	fs.markClean()
	fs.notifier.broadcast(fs.currentUser())
	return nil
}

func (fs *FileStore) Clear() error {
	if err := os.Remove(fs.path); err != nil && !os.IsNotExist(err) {
		return errors.NewSessionStorageError(err)
	}

	fs.markClean()
	fs.notifier.broadcast(nil)
	return nil
}

func (fs *FileStore) Subscribe(fn func(*models.User)) func() {
	id := fs.notifier.add(fn)
	fs.ensureWatcher()

	// Immediate delivery with the current state, before any change.
	fn(fs.currentUser())

	var once sync.Once
	return func() {
		once.Do(func() {
			fs.notifier.remove(id)
			fs.maybeStopWatcher()
		})
	}
}

func (fs *FileStore) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.watchStop != nil {
		close(fs.watchStop)
		fs.watchStop = nil
	}
	return nil
}

func (fs *FileStore) currentUser() *models.User {
	if s := fs.Read(); s != nil {
		return s.User
	}
	return nil
}

func (fs *FileStore) stat() fileStamp {
	info, err := os.Stat(fs.path)
	if err != nil {
		return fileStamp{}
	}
	return fileStamp{modTime: info.ModTime(), size: info.Size(), exists: true}
}

// markClean records the post-write file state so the poll watcher does not
// re-announce our own change.
func (fs *FileStore) markClean() {
	fs.mu.Lock()
	fs.lastStamp = fs.stat()
	fs.mu.Unlock()
}

func (fs *FileStore) ensureWatcher() {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.watchStop != nil {
		return
	}
	stop := make(chan struct{})
	fs.watchStop = stop
	go fs.watch(stop)
}

func (fs *FileStore) maybeStopWatcher() {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.notifier.count() == 0 && fs.watchStop != nil {
		close(fs.watchStop)
		fs.watchStop = nil
	}
}

// watch polls the session file and broadcasts when another process changed
// it. Poll granularity is the configured interval; same-process writes are
// delivered synchronously and skipped here.
func (fs *FileStore) watch(stop chan struct{}) {
	ticker := time.NewTicker(fs.poll)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			cur := fs.stat()
			fs.mu.Lock()
			changed := cur != fs.lastStamp
			if changed {
				fs.lastStamp = cur
			}
			fs.mu.Unlock()
			if changed {
				fs.notifier.broadcast(fs.currentUser())
			}
		}
	}
}

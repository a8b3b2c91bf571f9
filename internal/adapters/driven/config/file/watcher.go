package file

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/hirescope/internal/logger"
	"github.com/custodia-labs/hirescope/internal/tokenizer"
)

// LexiconWatcher reloads a lexicon file when it changes and hands the result
// to an apply callback, typically (*tokenizer.Tokenizer).SetLexicon.
//
// The parent directory is watched rather than the file so that editors which
// replace the file on save keep triggering reloads.
type LexiconWatcher struct {
	path    string
	apply   func(*tokenizer.Lexicon)
	watcher *fsnotify.Watcher

	closeOnce sync.Once
	done      chan struct{}
}

// NewLexiconWatcher starts watching path. The file does not need to exist yet.
func NewLexiconWatcher(path string, apply func(*tokenizer.Lexicon)) (*LexiconWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve lexicon path: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	return &LexiconWatcher{
		path:    abs,
		apply:   apply,
		watcher: w,
		done:    make(chan struct{}),
	}, nil
}

// Run processes events until ctx is cancelled or Close is called.
func (lw *LexiconWatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-lw.done:
			return
		case event, ok := <-lw.watcher.Events:
			if !ok {
				return
			}
			lw.handleEvent(event)
		case err, ok := <-lw.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("lexicon watcher: %v", err)
		}
	}
}

// handleEvent reloads the lexicon for writes, creates and renames of the
// watched file. It reports whether a new lexicon was applied.
func (lw *LexiconWatcher) handleEvent(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != lw.path {
		return false
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	lex, err := LoadLexicon(lw.path)
	if err != nil {
		logger.Warn("lexicon reload failed, keeping current lexicon: %v", err)
		return false
	}
	stop, comp := lex.Len()
	logger.Info("lexicon reloaded: %d stopwords, %d compounds", stop, comp)
	lw.apply(lex)
	return true
}

// Close stops the watcher.
func (lw *LexiconWatcher) Close() error {
	var err error
	lw.closeOnce.Do(func() {
		close(lw.done)
		err = lw.watcher.Close()
	})
	return err
}

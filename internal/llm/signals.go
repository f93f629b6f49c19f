package llm

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Signals coordinates run control through the .crewforge directory.
// A kill file stops the run; notes.md is shared context injected into
// every agent's system prompt; per-agent message files carry delegation
// handoffs between crew mates.
type Signals struct {
	dir string

	mu          sync.RWMutex
	stopSignal  bool
	pauseSignal bool

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewSignals creates a signal manager rooted at workDir/.crewforge.
func NewSignals(workDir string) (*Signals, error) {
	dir := filepath.Join(workDir, ".crewforge")

	dirs := []string{
		dir,
		filepath.Join(dir, "signals"),
		filepath.Join(dir, "agents"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0755); err != nil {
			return nil, err
		}
	}

	notesPath := filepath.Join(dir, "notes.md")
	if _, err := os.Stat(notesPath); os.IsNotExist(err) {
		initial := `# Run Notes

Shared facts, decisions, and constraints for this crew run.
Agents read this file before each task; append anything later
agents should know.
`
		if err := os.WriteFile(notesPath, []byte(initial), 0644); err != nil {
			return nil, err
		}
	}

	s := &Signals{
		dir:  dir,
		done: make(chan struct{}),
	}

	// Start file watcher for immediate signals.
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		// Continue without watcher - will use stat fallback
		return s, nil
	}
	s.watcher = watcher

	signalsDir := filepath.Join(dir, "signals")
	if err := watcher.Add(signalsDir); err != nil {
		watcher.Close()
		s.watcher = nil
		return s, nil
	}

	go s.watchSignals()

	return s, nil
}

// watchSignals monitors the signals directory for kill/pause files.
func (s *Signals) watchSignals() {
	for {
		select {
		case <-s.done:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			s.mu.Lock()
			base := filepath.Base(event.Name)
			if base == "kill" && (event.Op&fsnotify.Create != 0 || event.Op&fsnotify.Write != 0) {
				s.stopSignal = true
			} else if base == "pause" {
				// Pause follows the file: created means paused,
				// removed means resumed.
				if event.Op&fsnotify.Create != 0 || event.Op&fsnotify.Write != 0 {
					s.pauseSignal = true
				} else if event.Op&fsnotify.Remove != 0 {
					s.pauseSignal = false
				}
			}
			s.mu.Unlock()
		case <-s.watcher.Errors:
			// Ignore errors, keep watching
		}
	}
}

// ReadNotes returns the current contents of the shared notes file.
func (s *Signals) ReadNotes() string {
	path := filepath.Join(s.dir, "notes.md")
	content, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(content)
}

// AppendNote adds a timestamped note to the shared notes file.
func (s *Signals) AppendNote(note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, "notes.md")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	timestamp := time.Now().Format("2006-01-02 15:04")
	_, err = f.WriteString("\n- " + timestamp + ": " + note + "\n")
	return err
}

// ShouldStop returns true if a stop signal has been received.
func (s *Signals) ShouldStop() bool {
	// Also check file directly in case watcher missed it
	killPath := filepath.Join(s.dir, "signals", "kill")
	if _, err := os.Stat(killPath); err == nil {
		s.mu.Lock()
		s.stopSignal = true
		s.mu.Unlock()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stopSignal
}

// ShouldPause reports whether the pause signal file is present. Unlike
// stop, pause is not sticky: removing the file resumes the run.
func (s *Signals) ShouldPause() bool {
	pausePath := filepath.Join(s.dir, "signals", "pause")
	_, err := os.Stat(pausePath)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pauseSignal = err == nil
	return s.pauseSignal
}

// SendKill creates a kill signal file.
func (s *Signals) SendKill() error {
	path := filepath.Join(s.dir, "signals", "kill")
	return os.WriteFile(path, []byte(time.Now().Format(time.RFC3339)), 0644)
}

// SendPause creates a pause signal file.
func (s *Signals) SendPause() error {
	path := filepath.Join(s.dir, "signals", "pause")
	return os.WriteFile(path, []byte(time.Now().Format(time.RFC3339)), 0644)
}

// SendResume removes the pause signal file.
func (s *Signals) SendResume() error {
	s.mu.Lock()
	s.pauseSignal = false
	s.mu.Unlock()

	err := os.Remove(filepath.Join(s.dir, "signals", "pause"))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// ClearSignals removes all signal files and resets signal state.
func (s *Signals) ClearSignals() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopSignal = false
	s.pauseSignal = false

	os.Remove(filepath.Join(s.dir, "signals", "kill"))
	os.Remove(filepath.Join(s.dir, "signals", "pause"))
}

// WriteAgentMessage writes a handoff message for a specific agent role.
func (s *Signals) WriteAgentMessage(role, message string) error {
	path := filepath.Join(s.dir, "agents", sanitizeRole(role)+".md")
	return os.WriteFile(path, []byte(message), 0644)
}

// ReadAgentMessage reads the handoff message for a specific agent role.
func (s *Signals) ReadAgentMessage(role string) string {
	path := filepath.Join(s.dir, "agents", sanitizeRole(role)+".md")
	content, _ := os.ReadFile(path)
	return string(content)
}

// ClearAgentMessage removes the message file for an agent role.
func (s *Signals) ClearAgentMessage(role string) error {
	path := filepath.Join(s.dir, "agents", sanitizeRole(role)+".md")
	return os.Remove(path)
}

// Dir returns the path to the .crewforge directory.
func (s *Signals) Dir() string {
	return s.dir
}

// Close shuts down the signal manager.
func (s *Signals) Close() {
	close(s.done)
	if s.watcher != nil {
		s.watcher.Close()
	}
}

// sanitizeRole turns an agent role into a safe filename.
func sanitizeRole(role string) string {
	out := make([]rune, 0, len(role))
	for _, r := range role {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out = append(out, r)
		case r == ' ', r == '/', r == '\\':
			out = append(out, '_')
		}
	}
	return string(out)
}

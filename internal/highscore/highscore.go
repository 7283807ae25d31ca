// Package highscore persists the best score per difficulty.
package highscore

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
	"sync"

	"github.com/quasilyte/gdata/v2"

	"github.com/tomz197/dropcatch/internal/round"
)

// KeyPrefix is prepended to the difficulty name to form the storage key.
const KeyPrefix = "bestScore_"

// LocalProfile is the profile used by the single-player binary.
const LocalProfile = "local"

// Key returns the storage key for a difficulty.
func Key(difficulty string) string {
	return KeyPrefix + difficulty
}

// MemoryStore keeps best scores in memory. It is used when no archive can be
// opened and in tests.
type MemoryStore struct {
	mu   sync.Mutex
	best map[string]int
}

var _ round.HighScoreStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{best: make(map[string]int)}
}

// Get returns the stored best, or 0 when nothing was stored.
func (m *MemoryStore) Get(difficulty string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.best[Key(difficulty)], nil
}

// Set overwrites the stored best.
func (m *MemoryStore) Set(difficulty string, score int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.best[Key(difficulty)] = score
	return nil
}

// Archive stores best scores on disk through gdata. Each player profile is
// one gdata object and each difficulty one property of it.
type Archive struct {
	mu      sync.Mutex
	manager *gdata.Manager
}

// OpenArchive opens the gdata storage for appName.
func OpenArchive(appName string) (*Archive, error) {
	manager, err := gdata.Open(gdata.Config{
		AppName: appName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open save data: %w", err)
	}
	return &Archive{manager: manager}, nil
}

// Local returns the store of the single local player.
func (a *Archive) Local() *Store {
	return &Store{archive: a, object: LocalProfile}
}

// Profile returns the store for a named remote player. Remote profiles never
// share the LocalProfile object.
func (a *Archive) Profile(name string) *Store {
	return &Store{archive: a, object: SanitizeProfile(name)}
}

// maxProfileStem is how many sanitised name characters a profile keeps.
const maxProfileStem = 24

// SanitizeProfile turns a username into a gdata object key: "player_", the
// lowercased letters, digits, '-' and '_' of the name, and a hash of the raw
// name. Names that sanitise alike still get distinct keys.
func SanitizeProfile(name string) string {
	var b strings.Builder
	b.WriteString("player_")
	stem := 0
	for _, r := range strings.ToLower(name) {
		if stem >= maxProfileStem {
			break
		}
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
			stem++
		}
	}
	if stem > 0 {
		b.WriteByte('_')
	}
	h := fnv.New32a()
	h.Write([]byte(name))
	fmt.Fprintf(&b, "%08x", h.Sum32())
	return b.String()
}

func (a *Archive) load(object, prop string) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.manager.ObjectPropExists(object, prop) {
		return 0, nil
	}
	data, err := a.manager.LoadObjectProp(object, prop)
	if err != nil {
		return 0, fmt.Errorf("failed to load %s/%s: %w", object, prop, err)
	}
	score, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("corrupt %s/%s: %w", object, prop, err)
	}
	return score, nil
}

func (a *Archive) save(object, prop string, score int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.manager.SaveObjectProp(object, prop, []byte(strconv.Itoa(score))); err != nil {
		return fmt.Errorf("failed to save %s/%s: %w", object, prop, err)
	}
	return nil
}

// Store is a per-profile view of an Archive.
type Store struct {
	archive *Archive
	object  string
}

var _ round.HighScoreStore = (*Store)(nil)

// Name returns the sanitised profile name.
func (s *Store) Name() string {
	return s.object
}

// Get returns the stored best, or 0 when nothing was stored.
func (s *Store) Get(difficulty string) (int, error) {
	return s.archive.load(s.object, Key(difficulty))
}

// Set overwrites the stored best.
func (s *Store) Set(difficulty string, score int) error {
	return s.archive.save(s.object, Key(difficulty), score)
}

package remote

import (
	"sort"
	"strings"

	"github.com/girs-server/girsd/internal/prefix"
)

// Match names the remote command a key belongs to.
type Match struct {
	Remote  string
	Command string
}

// Database indexes remotes by name and remote commands by Key.
type Database struct {
	remotes map[string]*Remote
	byKey   map[string]Match
}

// NewDatabase creates a database from sets, in order.
func NewDatabase(sets ...*Set) *Database {
	db := &Database{
		remotes: make(map[string]*Remote),
		byKey:   make(map[string]Match),
	}
	for _, set := range sets {
		db.Add(set)
	}
	return db
}

// Add merges set into the database. A remote with the same name (ignoring
// case) replaces the earlier one along with the keys it indexed; a command
// with an already indexed key takes over that key.
func (db *Database) Add(set *Set) {
	if set == nil {
		return
	}
	for _, r := range set.Remotes {
		folded := strings.ToLower(r.Name)
		if old, exists := db.remotes[folded]; exists {
			db.unindex(old)
		}
		db.remotes[folded] = r
		for _, name := range r.CommandNames() {
			cmd := r.Commands[name]
			db.byKey[cmd.Key().String()] = Match{Remote: r.Name, Command: cmd.Name}
		}
	}
}

// unindex drops the keys still owned by r.
func (db *Database) unindex(r *Remote) {
	for key, m := range db.byKey {
		if m.Remote == r.Name {
			delete(db.byKey, key)
		}
	}
}

// Remote resolves a remote name prefix, ignoring case. An exact name wins
// over longer names.
func (db *Database) Remote(typed string) (*Remote, error) {
	names := make([]string, 0, len(db.remotes))
	for key := range db.remotes {
		names = append(names, key)
	}
	matches := prefix.Match(names, typed, true)
	switch len(matches) {
	case 0:
		return nil, &LookupError{Code: ErrNoSuchRemote, Name: typed}
	case 1:
		return db.remotes[matches[0]], nil
	default:
		return nil, &LookupError{Code: ErrAmbiguousRemote, Name: typed}
	}
}

// Command resolves a remote prefix and then a command prefix within it,
// with the same discipline as Remote.
func (db *Database) Command(remoteTyped, commandTyped string) (*Remote, *Command, error) {
	r, err := db.Remote(remoteTyped)
	if err != nil {
		return nil, nil, err
	}
	matches := prefix.Match(r.CommandNames(), commandTyped, true)
	switch len(matches) {
	case 0:
		return nil, nil, &LookupError{Code: ErrNoSuchCommand, Remote: r.Name, Name: commandTyped}
	case 1:
		return r, r.Commands[matches[0]], nil
	default:
		return nil, nil, &LookupError{Code: ErrAmbiguousCommand, Remote: r.Name, Name: commandTyped}
	}
}

// Lookup returns the remote command registered for exactly key.
func (db *Database) Lookup(key Key) (Match, bool) {
	m, ok := db.byKey[key.String()]
	return m, ok
}

// RemoteNames returns the remote names, sorted case-insensitively.
func (db *Database) RemoteNames() []string {
	names := make([]string, 0, len(db.remotes))
	for _, r := range db.remotes {
		names = append(names, r.Name)
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return names
}

// Len returns the number of indexed keys.
func (db *Database) Len() int {
	return len(db.byKey)
}
